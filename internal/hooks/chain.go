// Package hooks implements the ordered Hook Chain (§4.6) that runs
// after every successful document upsert: search reindexing, PDF
// publication, short-URL regeneration, and change-request lifecycle
// management. Each hook is independent and idempotent; a hook failure
// is logged and the chain continues, following the teacher's
// chain-continues-on-error pattern for multi-step job execution.
package hooks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oxidecomputer/rfd-pipeline/internal/filestorage"
	"github.com/oxidecomputer/rfd-pipeline/internal/github"
	"github.com/oxidecomputer/rfd-pipeline/internal/render"
	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
	"github.com/oxidecomputer/rfd-pipeline/internal/searchindex"
	"github.com/oxidecomputer/rfd-pipeline/internal/storage"
)

// Hook is a single step of the chain. It may read/write external
// systems and mutate newRecord; it returns an error only to be logged,
// never to abort the chain.
type Hook interface {
	Name() string
	Run(ctx context.Context, deps Deps, intent rfd.UpdateIntent, old *storage.DocumentRecord, newRecord *storage.DocumentRecord) error
}

// Deps bundles every external collaborator a hook might need. Hooks
// receive the same Deps value so the chain stays trivial to extend.
type Deps struct {
	Adapter       github.Adapter
	Renderer      *render.Renderer
	SearchIndex   searchindex.Client
	FileStorage   filestorage.Client
	Store         storage.Store
	Logger        *slog.Logger
	DocsOwner     string
	DocsRepo      string
	ConfigsOwner  string
	ConfigsRepo   string
	DefaultBranch string
	PDFFolderName string
}

// Chain runs hooks in order, continuing past individual failures
// (§4.6 "Failure policy").
type Chain struct {
	hooks  []Hook
	logger *slog.Logger
}

// Default builds the chain in the spec's mandated order.
func Default(logger *slog.Logger) *Chain {
	return &Chain{
		logger: logger,
		hooks: []Hook{
			updateSearchHook{},
			updatePDFsHook{},
			generateShortURLsHook{},
			createPullRequestHook{},
			updatePullRequestHook{},
			updateDiscussionURLHook{},
			ensureDefaultBranchPublishedHook{},
			deleteOldPDFsHook{},
		},
	}
}

// Run executes every hook in order against (old, new, intent),
// stopping early only if ctx is cancelled between hooks (§5
// "Cancellation").
func (c *Chain) Run(ctx context.Context, deps Deps, intent rfd.UpdateIntent, old *storage.DocumentRecord, newRecord *storage.DocumentRecord) {
	for _, h := range c.hooks {
		if err := ctx.Err(); err != nil {
			c.logger.WarnContext(ctx, "hook chain cancelled", "rfd_number", newRecord.Number, "remaining_hook", h.Name())
			return
		}
		if err := h.Run(ctx, deps, intent, old, newRecord); err != nil {
			c.logger.ErrorContext(ctx, "hook failed", "rfd_number", newRecord.Number, "hook", h.Name(), "error", err)
		}
	}
}

func wrapHookErr(name string, err error) error {
	return fmt.Errorf("%s: %w", name, err)
}
