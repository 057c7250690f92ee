package hooks

import (
	"context"

	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
	"github.com/oxidecomputer/rfd-pipeline/internal/storage"
)

// updatePullRequestHook keeps an open change-request's title and state
// label in sync with the document.
type updatePullRequestHook struct{}

func (updatePullRequestHook) Name() string { return "UpdatePullRequest" }

func (updatePullRequestHook) Run(ctx context.Context, deps Deps, intent rfd.UpdateIntent, _ *storage.DocumentRecord, newRecord *storage.DocumentRecord) error {
	existing, err := deps.Adapter.FindChangeRequests(ctx, deps.DocsOwner, deps.DocsRepo, intent.Branch.BranchName)
	if err != nil {
		return wrapHookErr("UpdatePullRequest", err)
	}
	if len(existing) == 0 {
		return nil
	}
	cr := existing[0]
	if len(existing) > 1 && deps.Logger != nil {
		deps.Logger.WarnContext(ctx, "multiple open change-requests for branch, using the first",
			"branch", intent.Branch.BranchName, "count", len(existing))
	}

	if cr.Title != newRecord.Name {
		if err := deps.Adapter.UpdatePullRequestTitle(ctx, deps.DocsOwner, deps.DocsRepo, cr.Number, newRecord.Name); err != nil {
			return wrapHookErr("UpdatePullRequest", err)
		}
	}

	labels := stateLabels(rfd.State(newRecord.State))
	if err := deps.Adapter.SetLabels(ctx, deps.DocsOwner, deps.DocsRepo, cr.Number, labels); err != nil {
		return wrapHookErr("UpdatePullRequest", err)
	}
	return nil
}

func stateLabels(state rfd.State) []string {
	switch state {
	case rfd.StateDiscussion:
		return []string{":thought_balloon: discussion"}
	case rfd.StateIdeation:
		return []string{":hatching_chick: ideation"}
	default:
		return nil
	}
}
