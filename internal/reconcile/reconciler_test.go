package reconcile

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxidecomputer/rfd-pipeline/internal/github"
	"github.com/oxidecomputer/rfd-pipeline/internal/hooks"
	"github.com/oxidecomputer/rfd-pipeline/internal/render"
	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
	"github.com/oxidecomputer/rfd-pipeline/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeAdapter struct {
	fileBytes   []byte
	fileSHA     string
	fileHTMLURL string
	fileErr     error
	exists      bool
	existsErr   error
}

func (f *fakeAdapter) GetFile(ctx context.Context, owner, repo, branch, filePath string) ([]byte, string, string, error) {
	if f.fileErr != nil {
		return nil, "", "", f.fileErr
	}
	return f.fileBytes, f.fileSHA, f.fileHTMLURL, nil
}

func (f *fakeAdapter) ListImages(ctx context.Context, owner, repo, branch, dir string) ([]github.Image, error) {
	return nil, nil
}

func (f *fakeAdapter) FindChangeRequests(ctx context.Context, owner, repo, branch string) ([]github.ChangeRequest, error) {
	return nil, nil
}

func (f *fakeAdapter) ExistsInRemote(ctx context.Context, owner, repo, branch string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeAdapter) UpsertFile(ctx context.Context, owner, repo, branch, filePath string, content []byte, message string) error {
	return nil
}

func (f *fakeAdapter) DeleteFile(ctx context.Context, owner, repo, branch, filePath, message, sha string) error {
	return nil
}

func (f *fakeAdapter) CreatePullRequest(ctx context.Context, owner, repo, branch, defaultBranch, title, body string) (github.ChangeRequest, error) {
	return github.ChangeRequest{}, nil
}

func (f *fakeAdapter) UpdatePullRequestTitle(ctx context.Context, owner, repo string, number int, title string) error {
	return nil
}

func (f *fakeAdapter) SetLabels(ctx context.Context, owner, repo string, number int, labels []string) error {
	return nil
}

type fakeStore struct {
	get      *storage.DocumentRecord
	getErr   error
	upserted *storage.DocumentRecord
}

func (s *fakeStore) GetDocument(ctx context.Context, number int) (*storage.DocumentRecord, error) {
	return s.get, s.getErr
}

func (s *fakeStore) UpsertDocument(ctx context.Context, record *storage.DocumentRecord) error {
	s.upserted = record
	return nil
}

func (s *fakeStore) ListDocuments(ctx context.Context) ([]*storage.DocumentRecord, error) {
	return nil, nil
}

func testIntent(number int, branch string) rfd.UpdateIntent {
	return rfd.UpdateIntent{
		Number: number,
		Branch: rfd.Branch{Owner: "oxidecomputer", Repo: "rfd", BranchName: branch, DefaultBranchName: "master"},
		File:   rfd.RepoDirectory(number) + "/README.md",
	}
}

func newTestReconciler(adapter *fakeAdapter, store *fakeStore) *Reconciler {
	chain := &hooks.Chain{}
	deps := hooks.Deps{Logger: testLogger()}
	renderer := render.New(render.DefaultConfig(), testLogger())
	cfg := Config{ShortURLHost: "rfd.shared.example.com", RenderedLinkHost: "rfd.example.com"}
	return New(adapter, renderer, store, chain, deps, cfg, testLogger())
}

func TestReconcileDropsInvalidIntent(t *testing.T) {
	adapter := &fakeAdapter{}
	store := &fakeStore{}
	r := newTestReconciler(adapter, store)

	intent := testIntent(7, "not-a-valid-branch-name")
	err := r.Reconcile(context.Background(), intent)
	require.NoError(t, err)
	assert.Nil(t, store.upserted)
}

func TestReconcileDiscardsWhenBranchGone(t *testing.T) {
	adapter := &fakeAdapter{exists: false}
	store := &fakeStore{}
	r := newTestReconciler(adapter, store)

	intent := testIntent(7, "0007")
	err := r.Reconcile(context.Background(), intent)
	require.NoError(t, err)
	assert.Nil(t, store.upserted)
}

func TestReconcileDiscardsWhenFileGone(t *testing.T) {
	adapter := &fakeAdapter{exists: true, fileErr: rfd.ErrNotFound}
	store := &fakeStore{}
	r := newTestReconciler(adapter, store)

	intent := testIntent(7, "0007")
	err := r.Reconcile(context.Background(), intent)
	require.NoError(t, err)
	assert.Nil(t, store.upserted)
}

func TestReconcileBuildsAndPersistsNewRecord(t *testing.T) {
	raw := "# RFD 7 Example\n\nstate: ideation\ndiscussion:\n"
	adapter := &fakeAdapter{exists: true, fileBytes: []byte(raw), fileSHA: "abc123", fileHTMLURL: "https://github.com/o/r/blob/master/rfd/0007/README.md"}
	store := &fakeStore{getErr: storage.ErrNotFound}
	r := newTestReconciler(adapter, store)

	intent := testIntent(7, "0007")
	err := r.Reconcile(context.Background(), intent)
	require.NoError(t, err)
	require.NotNil(t, store.upserted)
	assert.Equal(t, 7, store.upserted.Number)
	assert.Equal(t, "Example", store.upserted.Title)
	assert.Equal(t, "abc123", store.upserted.SHA)
	assert.Equal(t, "https://github.com/o/r/blob/master/rfd/0007/README.md", store.upserted.Link, "a document seen for the first time derives its link from the fetched file")
}

func TestReconcileKeepsExistingLinkOnUpdate(t *testing.T) {
	raw := "# RFD 7 Example\n\nstate: discussion\ndiscussion:\n"
	adapter := &fakeAdapter{exists: true, fileBytes: []byte(raw), fileSHA: "def456", fileHTMLURL: "https://github.com/o/r/blob/master/rfd/0007/README.md"}
	prev := &storage.DocumentRecord{Number: 7, Link: "https://github.com/o/r/blob/master/rfd/0007/README.md"}
	store := &fakeStore{get: prev}
	r := newTestReconciler(adapter, store)

	intent := testIntent(7, "0007")
	err := r.Reconcile(context.Background(), intent)
	require.NoError(t, err)
	require.NotNil(t, store.upserted)
	assert.Equal(t, prev.Link, store.upserted.Link)
}

func TestReconcileCarriesForwardPDFLinksFromPreviousRecord(t *testing.T) {
	raw := "# RFD 7 Example\n\nstate: discussion\ndiscussion:\n"
	adapter := &fakeAdapter{exists: true, fileBytes: []byte(raw), fileSHA: "def456"}
	prev := &storage.DocumentRecord{
		Number:        7,
		PDFLinkSource: "rfd/0007/pdfs/RFD 7 Example.pdf",
		PDFLinkDrive:  "https://drive.example.com/x",
		PDFFilename:   "RFD 7 Example.pdf",
	}
	store := &fakeStore{get: prev}
	r := newTestReconciler(adapter, store)

	intent := testIntent(7, "0007")
	err := r.Reconcile(context.Background(), intent)
	require.NoError(t, err)
	require.NotNil(t, store.upserted)
	assert.Equal(t, prev.PDFLinkSource, store.upserted.PDFLinkSource)
	assert.Equal(t, prev.PDFLinkDrive, store.upserted.PDFLinkDrive)
	assert.Equal(t, prev.PDFFilename, store.upserted.PDFFilename)
}
