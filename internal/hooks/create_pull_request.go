package hooks

import (
	"context"

	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
	"github.com/oxidecomputer/rfd-pipeline/internal/storage"
)

const pullRequestBody = "This pull request was opened automatically because this RFD entered discussion. " +
	"Review and discuss inline; merging happens automatically once the discussion concludes."

// createPullRequestHook opens a change-request once a document enters
// discussion on a non-default branch, if one doesn't already exist.
type createPullRequestHook struct{}

func (createPullRequestHook) Name() string { return "CreatePullRequest" }

func (createPullRequestHook) Run(ctx context.Context, deps Deps, intent rfd.UpdateIntent, _ *storage.DocumentRecord, newRecord *storage.DocumentRecord) error {
	if intent.Branch.IsDefault() || newRecord.State != string(rfd.StateDiscussion) {
		return nil
	}

	existing, err := deps.Adapter.FindChangeRequests(ctx, deps.DocsOwner, deps.DocsRepo, intent.Branch.BranchName)
	if err != nil {
		return wrapHookErr("CreatePullRequest", err)
	}
	if len(existing) > 0 {
		return nil
	}

	_, err = deps.Adapter.CreatePullRequest(ctx, deps.DocsOwner, deps.DocsRepo, intent.Branch.BranchName, deps.DefaultBranch, newRecord.Name, pullRequestBody)
	if err != nil {
		return wrapHookErr("CreatePullRequest", err)
	}
	return nil
}
