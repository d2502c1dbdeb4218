package commands

import (
	"github.com/aiprep-dev/aiprep/cmd/aiprep/opts"
	"github.com/aiprep-dev/aiprep/pkg/history"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// NewHistoryCmd creates a new history command
func NewHistoryCmd(opts *opts.RootOpts) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the recorded change history",
		Long: `History lists every change the apply command has recorded, newest last,
with the backup file that preserves each pre-edit state.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			recorder := history.NewRecorder(opts.Config.Backup.Dir, opts.Config.Backup.HistoryFile)
			entries, err := recorder.List(ctx)
			if err != nil {
				return errors.Errorf("loading history: %w", err)
			}
			if len(entries) == 0 {
				pterm.Info.Println("No changes recorded yet.")
				return nil
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}

			rows := pterm.TableData{{"ID", "TIME", "ACTION", "FILE", "SUMMARY"}}
			for _, e := range entries {
				rows = append(rows, []string{e.ID, e.Timestamp, e.Action, e.File, e.Summary})
			}
			if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
				return errors.Errorf("rendering history: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the most recent N entries")

	return cmd
}
