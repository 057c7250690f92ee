package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxidecomputer/rfd-pipeline/internal/config"
	"github.com/oxidecomputer/rfd-pipeline/internal/github"
	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
)

type fakeAdapter struct {
	github.Adapter
	getFileContent []byte
	getFileErr     error
	requestedPath  string
}

func (f *fakeAdapter) GetFile(ctx context.Context, owner, repo, branch, filePath string) ([]byte, string, string, error) {
	f.requestedPath = filePath
	if f.getFileErr != nil {
		return nil, "", "", f.getFileErr
	}
	return f.getFileContent, "sha", "", nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestApplyRepoOverridesMissingFileKeepsDefaults(t *testing.T) {
	t.Cleanup(func() {
		rfd.SetDocumentsDirectory("rfd")
		rfd.SetImageExtensions([]string{"png", "jpg", "jpeg", "gif", "svg", "webp", "bmp"})
	})

	adapter := &fakeAdapter{getFileErr: rfd.ErrNotFound}
	cfg := &config.Config{Docs: config.DocsConfig{Owner: "o", Repo: "r", DefaultBranch: "main"}}

	applyRepoOverrides(context.Background(), cfg, adapter, testLogger())

	assert.Equal(t, ".rfd.yml", adapter.requestedPath)
	assert.Equal(t, "rfd/0017", rfd.RepoDirectory(17))
	assert.True(t, rfd.IsImagePath("diagram.svg"))
}

func TestApplyRepoOverridesAppliesFileContents(t *testing.T) {
	t.Cleanup(func() {
		rfd.SetDocumentsDirectory("rfd")
		rfd.SetImageExtensions([]string{"png", "jpg", "jpeg", "gif", "svg", "webp", "bmp"})
	})

	adapter := &fakeAdapter{getFileContent: []byte("documents_directory: docs\nimage_extensions: [tiff]\n")}
	cfg := &config.Config{Docs: config.DocsConfig{Owner: "o", Repo: "r", DefaultBranch: "main"}}

	applyRepoOverrides(context.Background(), cfg, adapter, testLogger())

	assert.Equal(t, "docs/0017", rfd.RepoDirectory(17))
	assert.True(t, rfd.IsImagePath("scan.tiff"))
	assert.False(t, rfd.IsImagePath("diagram.svg"))
}

func TestCreateGitHubClientRequiresCredentials(t *testing.T) {
	cfg := &config.Config{}
	_, _, err := createGitHubClient(context.Background(), cfg, testLogger())
	require.Error(t, err)
}
