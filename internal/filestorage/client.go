// Package filestorage provides the file-storage client (§6): folder
// lookup by name within a named shared drive, upload-or-replace by
// filename under a parent folder, and delete-by-name. It backs hooks
// 2 (UpdatePDFs) and 8 (DeleteOldPDFs).
package filestorage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
)

// Config configures the file-storage HTTP endpoint.
type Config struct {
	BaseURL    string
	APIKey     string
	SharedName string
	Timeout    time.Duration
}

// Client is the file-storage surface the hook chain needs.
//
//go:generate mockgen -destination=../../mocks/mock_filestorage.go -package=mocks github.com/oxidecomputer/rfd-pipeline/internal/filestorage Client
type Client interface {
	// FindFolder locates a folder by name under the configured shared
	// drive, returning its ID. rfd.ErrNotFound if absent.
	FindFolder(ctx context.Context, name string) (folderID string, err error)
	// UploadOrReplace uploads filename under parentFolderID, replacing
	// any existing file with the same name.
	UploadOrReplace(ctx context.Context, parentFolderID, filename string, data []byte) (fileURL string, err error)
	// DeleteByName deletes a file by name under parentFolderID.
	// Missing files are treated as success (§4.6 hook 8).
	DeleteByName(ctx context.Context, parentFolderID, filename string) error
}

type client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// New constructs a file-storage Client.
func New(cfg Config, logger *slog.Logger) Client {
	return &client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type folderListResponse struct {
	Folders []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"folders"`
}

func (c *client) FindFolder(ctx context.Context, name string) (string, error) {
	endpoint := fmt.Sprintf("%s/drives/%s/folders?name=%s",
		strings.TrimSuffix(c.cfg.BaseURL, "/"), url.PathEscape(c.cfg.SharedName), url.QueryEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("filestorage: build find-folder request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("filestorage: find folder %q: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: folder %q", rfd.ErrNotFound, name)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("filestorage: find folder %q: unexpected status %d", name, resp.StatusCode)
	}

	var out folderListResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("filestorage: decode find-folder response: %w", err)
	}
	for _, f := range out.Folders {
		if f.Name == name {
			return f.ID, nil
		}
	}
	return "", fmt.Errorf("%w: folder %q", rfd.ErrNotFound, name)
}

type uploadResponse struct {
	URL string `json:"url"`
}

func (c *client) UploadOrReplace(ctx context.Context, parentFolderID, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("parent_id", parentFolderID); err != nil {
		return "", fmt.Errorf("filestorage: build multipart request: %w", err)
	}
	if err := writer.WriteField("mode", "replace"); err != nil {
		return "", fmt.Errorf("filestorage: build multipart request: %w", err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("filestorage: build multipart request: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("filestorage: build multipart request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("filestorage: build multipart request: %w", err)
	}

	endpoint := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/files"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("filestorage: build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("filestorage: upload %q: %w", filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("filestorage: upload %q: unexpected status %d", filename, resp.StatusCode)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("filestorage: decode upload response: %w", err)
	}

	c.logger.DebugContext(ctx, "uploaded file", "filename", filename, "parent_id", parentFolderID)
	return out.URL, nil
}

func (c *client) DeleteByName(ctx context.Context, parentFolderID, filename string) error {
	endpoint := fmt.Sprintf("%s/files?parent_id=%s&name=%s",
		strings.TrimSuffix(c.cfg.BaseURL, "/"), url.QueryEscape(parentFolderID), url.QueryEscape(filename))

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("filestorage: build delete request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("filestorage: delete %q: %w", filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.logger.DebugContext(ctx, "delete target already absent, treating as success", "filename", filename)
		return nil
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("filestorage: delete %q: unexpected status %d", filename, resp.StatusCode)
	}
	return nil
}

func (c *client) authorize(req *http.Request) {
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
}
