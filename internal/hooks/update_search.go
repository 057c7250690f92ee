package hooks

import (
	"context"

	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
	"github.com/oxidecomputer/rfd-pipeline/internal/storage"
)

// updateSearchHook reindexes the document. It runs first because it
// is cheap and safe regardless of what happens downstream (§4.6
// "Ordering rationale").
type updateSearchHook struct{}

func (updateSearchHook) Name() string { return "UpdateSearch" }

func (updateSearchHook) Run(ctx context.Context, deps Deps, _ rfd.UpdateIntent, _ *storage.DocumentRecord, newRecord *storage.DocumentRecord) error {
	if err := deps.SearchIndex.Reindex(ctx, newRecord.Number); err != nil {
		return wrapHookErr("UpdateSearch", err)
	}
	return nil
}
