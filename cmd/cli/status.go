package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
	"github.com/oxidecomputer/rfd-pipeline/internal/wire"
)

var outputJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Shows the last-reconciled state of every tracked RFD",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		application, cleanup, err := wire.InitializeApp(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize app services: %w", err)
		}
		defer cleanup()

		docs, err := application.Store.ListDocuments(ctx)
		if err != nil {
			return fmt.Errorf("failed to retrieve documents: %w", err)
		}

		if outputJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(docs)
		}

		if len(docs) == 0 {
			slog.Info("No RFDs are currently tracked.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "NUMBER\tTITLE\tSTATE\tSHA\tUPDATED")
		for _, doc := range docs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				doc.NumberString,
				doc.Title,
				colorizeState(rfd.State(doc.State)),
				shortSHA(doc.SHA),
				doc.UpdatedAt.Format(time.RFC822),
			)
		}
		return w.Flush()
	},
}

// colorizeState applies a color matching each lifecycle stage's
// urgency: green once published, yellow while still under discussion,
// dim once abandoned.
func colorizeState(state rfd.State) string {
	switch state {
	case rfd.StatePublished, rfd.StateCommitted:
		return color.GreenString(string(state))
	case rfd.StateDiscussion:
		return color.YellowString(string(state))
	case rfd.StateAbandoned:
		return color.New(color.FgHiBlack).Sprint(string(state))
	default:
		return string(state)
	}
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	statusCmd.Flags().BoolVar(&outputJSON, "json", false, "Output status as JSON")
	rootCmd.AddCommand(statusCmd)
}
