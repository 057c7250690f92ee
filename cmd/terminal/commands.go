package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/oxidecomputer/rfd-pipeline/internal/app"
	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
	"github.com/oxidecomputer/rfd-pipeline/internal/wire"
)

func initializeAppCmd() tea.Cmd {
	return func() tea.Msg {
		application, cleanup, err := wire.InitializeApp(context.Background())
		if err != nil {
			return appInitializedMsg{err: err}
		}

		if err := application.Cfg.ValidateForCLI(); err != nil {
			cleanup()
			return appInitializedMsg{err: fmt.Errorf("cli configuration validation failed: %w", err)}
		}

		return appInitializedMsg{app: application}
	}
}

func loadDocsCmd(application *app.App) tea.Cmd {
	return func() tea.Msg {
		docs, err := application.Store.ListDocuments(context.Background())
		return docsLoadedMsg{docs: docs, err: err}
	}
}

// reconcileDocCmd re-runs reconciliation for the given RFD number on
// the documents repository's default branch, mirroring what a push
// webhook would trigger.
func reconcileDocCmd(application *app.App, number int) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		cfg := application.Cfg
		branch := rfd.Branch{
			Owner:             cfg.Docs.Owner,
			Repo:              cfg.Docs.Repo,
			BranchName:        cfg.Docs.DefaultBranch,
			DefaultBranchName: cfg.Docs.DefaultBranch,
		}

		file, err := resolveDocumentFile(ctx, application, branch, number)
		if err != nil {
			return reconcileCompleteMsg{number: number, err: err}
		}

		intent := rfd.UpdateIntent{Number: number, Branch: branch, File: file}
		if err := application.Reconciler.Reconcile(ctx, intent); err != nil {
			return reconcileCompleteMsg{number: number, err: err}
		}
		return reconcileCompleteMsg{number: number}
	}
}

func resolveDocumentFile(ctx context.Context, application *app.App, branch rfd.Branch, number int) (string, error) {
	dir := rfd.RepoDirectory(number)
	for _, name := range []string{"README.adoc", "README.md"} {
		candidate := dir + "/" + name
		if _, _, _, err := application.Adapter.GetFile(ctx, branch.Owner, branch.Repo, branch.BranchName, candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, rfd.ErrNotFound) {
			return "", fmt.Errorf("failed to probe %s: %w", candidate, err)
		}
	}
	return "", fmt.Errorf("no document file found under %s on branch %q", dir, branch.BranchName)
}
