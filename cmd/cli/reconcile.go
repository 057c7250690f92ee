package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
	"github.com/oxidecomputer/rfd-pipeline/internal/wire"
)

var reconcileBranch string

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <rfd-number>",
	Short: "Manually re-run reconciliation for one RFD",
	Long:  `Fetches the current document state for the given RFD number and branch, then runs the full reconcile procedure as if a webhook push had just arrived for it.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx := context.Background()
		var number int
		if _, err := fmt.Sscanf(args[0], "%d", &number); err != nil {
			return fmt.Errorf("invalid RFD number %q: %w", args[0], err)
		}

		application, cleanup, err := wire.InitializeApp(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize app services: %w", err)
		}
		defer cleanup()

		cfg := application.Cfg
		branchName := reconcileBranch
		if branchName == "" {
			branchName = cfg.Docs.DefaultBranch
		}
		branch := rfd.Branch{
			Owner:             cfg.Docs.Owner,
			Repo:              cfg.Docs.Repo,
			BranchName:        branchName,
			DefaultBranchName: cfg.Docs.DefaultBranch,
		}

		file, err := resolveDocumentFile(ctx, application.Adapter, branch, number)
		if err != nil {
			return err
		}

		intent := rfd.UpdateIntent{Number: number, Branch: branch, File: file}
		if !intent.Valid() {
			return fmt.Errorf("branch %q is not a valid home for RFD %s", branchName, rfd.NumberString(number))
		}

		if err := application.Reconciler.Reconcile(ctx, intent); err != nil {
			return fmt.Errorf("reconcile failed: %w", err)
		}
		fmt.Printf("reconciled RFD %s on branch %q\n", rfd.NumberString(number), branchName)
		return nil
	},
}

// resolveDocumentFile tries each supported document filename in turn,
// since the CLI (unlike the webhook path) doesn't already know which
// extension the tracked document uses.
func resolveDocumentFile(ctx context.Context, adapter interface {
	GetFile(ctx context.Context, owner, repo, branch, filePath string) ([]byte, string, string, error)
}, branch rfd.Branch, number int) (string, error) {
	dir := rfd.RepoDirectory(number)
	for _, name := range []string{"README.adoc", "README.md"} {
		candidate := dir + "/" + name
		if _, _, _, err := adapter.GetFile(ctx, branch.Owner, branch.Repo, branch.BranchName, candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, rfd.ErrNotFound) {
			return "", fmt.Errorf("failed to probe %s: %w", candidate, err)
		}
	}
	return "", fmt.Errorf("no document file found under %s on branch %q", dir, branch.BranchName)
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	reconcileCmd.Flags().StringVar(&reconcileBranch, "branch", "", "branch to reconcile (defaults to the configured documents default branch)")
	rootCmd.AddCommand(reconcileCmd)
}
