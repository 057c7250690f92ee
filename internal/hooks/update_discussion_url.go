package hooks

import (
	"context"
	"fmt"

	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
	"github.com/oxidecomputer/rfd-pipeline/internal/storage"
)

// updateDiscussionURLHook rewrites the document's discussion line to
// point at its change-request URL. This triggers another push webhook;
// the idempotence of the earlier hooks on unchanged content prevents a
// loop, since this hook's own precondition then fails (§4.6 hook 6).
type updateDiscussionURLHook struct{}

func (updateDiscussionURLHook) Name() string { return "UpdateDiscussionUrl" }

func (updateDiscussionURLHook) Run(ctx context.Context, deps Deps, intent rfd.UpdateIntent, _ *storage.DocumentRecord, newRecord *storage.DocumentRecord) error {
	existing, err := deps.Adapter.FindChangeRequests(ctx, deps.DocsOwner, deps.DocsRepo, intent.Branch.BranchName)
	if err != nil {
		return wrapHookErr("UpdateDiscussionUrl", err)
	}
	if len(existing) == 0 {
		return nil
	}
	cr := existing[0]
	if newRecord.Discussion == cr.HTMLURL {
		return nil
	}

	content := newRecord.ToDocument().Content
	raw, changed := content.SetDiscussionLink(cr.HTMLURL)
	if !changed {
		return nil
	}

	message := fmt.Sprintf("Update discussion link for RFD %s", newRecord.NumberString)
	if err := deps.Adapter.UpsertFile(ctx, deps.DocsOwner, deps.DocsRepo, intent.Branch.BranchName, intent.File, []byte(raw), message); err != nil {
		return wrapHookErr("UpdateDiscussionUrl", err)
	}

	newRecord.Content = raw
	newRecord.Discussion = cr.HTMLURL
	return nil
}
