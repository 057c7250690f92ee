// Package searchindex provides the search index client (§6): a single
// "reindex document N" operation. Failure here is always non-fatal to
// the hook chain (§4.6, hook 1), so the client surfaces ordinary
// wrapped errors rather than a typed-sentinel set.
package searchindex

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Config configures the search index HTTP endpoint.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client reindexes documents in the external search index.
//
//go:generate mockgen -destination=../../mocks/mock_searchindex.go -package=mocks github.com/oxidecomputer/rfd-pipeline/internal/searchindex Client
type Client interface {
	Reindex(ctx context.Context, number int) error
}

type client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// New constructs a search index Client.
func New(cfg Config, logger *slog.Logger) Client {
	return &client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type reindexRequest struct {
	Number int `json:"number"`
}

// Reindex requests a reindex of the given document number. Idempotent:
// repeated calls for the same number converge on the index's own
// latest-wins semantics.
func (c *client) Reindex(ctx context.Context, number int) error {
	body, err := json.Marshal(reindexRequest{Number: number})
	if err != nil {
		return fmt.Errorf("searchindex: encode request: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/documents/reindex"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("searchindex: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("searchindex: reindex %d: %w", number, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("searchindex: reindex %d: unexpected status %d", number, resp.StatusCode)
	}

	c.logger.DebugContext(ctx, "reindexed document", "rfd_number", number)
	return nil
}
