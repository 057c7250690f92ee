package hooks

import (
	"context"
	"fmt"

	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
	"github.com/oxidecomputer/rfd-pipeline/internal/storage"
)

// ensureDefaultBranchPublishedHook marks a document published once it
// lands on the default branch. Like UpdateDiscussionUrl, the triggered
// re-push terminates because this hook's own precondition then fails.
type ensureDefaultBranchPublishedHook struct{}

func (ensureDefaultBranchPublishedHook) Name() string { return "EnsureDefaultBranchPublished" }

func (ensureDefaultBranchPublishedHook) Run(ctx context.Context, deps Deps, intent rfd.UpdateIntent, _ *storage.DocumentRecord, newRecord *storage.DocumentRecord) error {
	if !intent.Branch.IsDefault() || newRecord.State == string(rfd.StatePublished) {
		return nil
	}

	content := newRecord.ToDocument().Content
	raw, changed := content.SetState(rfd.StatePublished)
	if !changed {
		return nil
	}

	message := fmt.Sprintf("Mark RFD %s published", newRecord.NumberString)
	if err := deps.Adapter.UpsertFile(ctx, deps.DocsOwner, deps.DocsRepo, intent.Branch.BranchName, intent.File, []byte(raw), message); err != nil {
		return wrapHookErr("EnsureDefaultBranchPublished", err)
	}

	newRecord.Content = raw
	newRecord.State = string(rfd.StatePublished)
	return nil
}
