package filestorage

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestFindFolderReturnsID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/drives/RFDs/folders", r.URL.Path)
		_, _ = w.Write([]byte(`{"folders":[{"id":"abc123","name":"pdfs"}]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, SharedName: "RFDs", Timeout: 5 * time.Second}, testLogger())
	id, err := c.FindFolder(t.Context(), "pdfs")
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
}

func TestFindFolderNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"folders":[]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, SharedName: "RFDs", Timeout: 5 * time.Second}, testLogger())
	_, err := c.FindFolder(t.Context(), "missing")
	require.ErrorIs(t, err, rfd.ErrNotFound)
}

func TestUploadOrReplaceSendsMultipart(t *testing.T) {
	var gotParentID string
	var gotBytes []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(10<<20))
		gotParentID = r.FormValue("parent_id")
		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		gotBytes, _ = io.ReadAll(file)
		_, _ = w.Write([]byte(`{"url":"https://drive.example/files/1"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, SharedName: "RFDs", Timeout: 5 * time.Second}, testLogger())
	fileURL, err := c.UploadOrReplace(t.Context(), "folder-1", "RFD 0001 Title.pdf", []byte("pdf-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "folder-1", gotParentID)
	assert.Equal(t, []byte("pdf-bytes"), gotBytes)
	assert.Equal(t, "https://drive.example/files/1", fileURL)
}

func TestDeleteByNameTreatsMissingAsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, SharedName: "RFDs", Timeout: 5 * time.Second}, testLogger())
	err := c.DeleteByName(t.Context(), "folder-1", "gone.pdf")
	assert.NoError(t, err)
}
