package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxidecomputer/rfd-pipeline/internal/config"
	"github.com/oxidecomputer/rfd-pipeline/internal/github"
	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
)

const webhookSecret = "test-secret"

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.GitHub.WebhookSecret = webhookSecret
	cfg.Docs.Owner = "oxidecomputer"
	cfg.Docs.Repo = "rfd"
	cfg.Docs.DefaultBranch = "master"
	return cfg
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeAdapter struct {
	fileContents map[string][]byte
	upserted     map[string][]byte
	deleted      []string
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{fileContents: map[string][]byte{}, upserted: map[string][]byte{}}
}

func (f *fakeAdapter) GetFile(ctx context.Context, owner, repo, branch, filePath string) ([]byte, string, string, error) {
	content, ok := f.fileContents[filePath]
	if !ok {
		return nil, "", "", rfd.ErrNotFound
	}
	return content, "sha-" + filePath, "", nil
}

func (f *fakeAdapter) ListImages(ctx context.Context, owner, repo, branch, dir string) ([]github.Image, error) {
	return nil, nil
}

func (f *fakeAdapter) FindChangeRequests(ctx context.Context, owner, repo, branch string) ([]github.ChangeRequest, error) {
	return nil, nil
}

func (f *fakeAdapter) ExistsInRemote(ctx context.Context, owner, repo, branch string) (bool, error) {
	return true, nil
}

func (f *fakeAdapter) UpsertFile(ctx context.Context, owner, repo, branch, filePath string, content []byte, message string) error {
	f.upserted[filePath] = content
	return nil
}

func (f *fakeAdapter) DeleteFile(ctx context.Context, owner, repo, branch, filePath, message, sha string) error {
	f.deleted = append(f.deleted, filePath)
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

type fakeDispatcher struct {
	dispatched []rfd.UpdateIntent
	err        error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, intents []*rfd.UpdateIntent) error {
	if f.err != nil {
		return f.err
	}
	for _, intent := range intents {
		f.dispatched = append(f.dispatched, *intent)
	}
	return nil
}

func (f *fakeDispatcher) Stop() {}

func signedRequest(t *testing.T, body []byte, eventType string) *http.Request {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(body)
	sig := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/github", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Hub-Signature-256", sig)
	req.Header.Set("X-GitHub-Event", eventType)
	return req
}

func pushPayload(t *testing.T, owner, repo string, commits []map[string]any) []byte {
	t.Helper()
	payload := map[string]any{
		"ref": "refs/heads/master",
		"repository": map[string]any{
			"name":           repo,
			"default_branch": "master",
			"owner":          map[string]any{"login": owner},
		},
		"commits": commits,
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return data
}

func TestHandlePushRejectsBadSignature(t *testing.T) {
	adapter := newFakeAdapter()
	dispatcher := &fakeDispatcher{}
	h := NewWebhookHandler(testConfig(), adapter, dispatcher, testLogger())

	body := pushPayload(t, "oxidecomputer", "rfd", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/github", bytes.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", "sha256=deadbeef")
	req.Header.Set("X-GitHub-Event", "push")

	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandlePushIgnoresOtherRepositories(t *testing.T) {
	adapter := newFakeAdapter()
	dispatcher := &fakeDispatcher{}
	h := NewWebhookHandler(testConfig(), adapter, dispatcher, testLogger())

	body := pushPayload(t, "someone-else", "other-repo", nil)
	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, body, "push"))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, dispatcher.dispatched)
}

func TestHandlePushDispatchesUpdateIntent(t *testing.T) {
	adapter := newFakeAdapter()
	dispatcher := &fakeDispatcher{}
	h := NewWebhookHandler(testConfig(), adapter, dispatcher, testLogger())

	commits := []map[string]any{
		{
			"id":        "abc123",
			"timestamp": "2026-01-02T15:04:05Z",
			"added":     []string{"rfd/0007/README.md"},
			"modified":  []string{},
			"removed":   []string{},
		},
	}
	body := pushPayload(t, "oxidecomputer", "rfd", commits)
	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, body, "push"))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, dispatcher.dispatched, 1)
	assert.Equal(t, 7, dispatcher.dispatched[0].Number)
}

func TestHandlePushMirrorsImagesOnDefaultBranch(t *testing.T) {
	adapter := newFakeAdapter()
	adapter.fileContents["rfd/0007/diagram.png"] = []byte("pngdata")
	dispatcher := &fakeDispatcher{}
	h := NewWebhookHandler(testConfig(), adapter, dispatcher, testLogger())

	commits := []map[string]any{
		{
			"id":        "abc123",
			"timestamp": "2026-01-02T15:04:05Z",
			"added":     []string{"rfd/0007/diagram.png"},
			"modified":  []string{},
			"removed":   []string{},
		},
	}
	body := pushPayload(t, "oxidecomputer", "rfd", commits)
	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, body, "push"))

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, dispatcher.dispatched)
	require.Contains(t, adapter.upserted, "src/public/static/images/0007/diagram.png")
	assert.Equal(t, []byte("pngdata"), adapter.upserted["src/public/static/images/0007/diagram.png"])
}

func TestHandlePushIgnoresUnhandledEventTypes(t *testing.T) {
	adapter := newFakeAdapter()
	dispatcher := &fakeDispatcher{}
	h := NewWebhookHandler(testConfig(), adapter, dispatcher, testLogger())

	body := []byte(`{}`)
	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, body, "ping"))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}
