package commands

import (
	"github.com/aiprep-dev/aiprep/cmd/aiprep/opts"
	"github.com/aiprep-dev/aiprep/pkg/patch"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// NewApplyCmd creates a new apply command
func NewApplyCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <instructions.json>",
		Short: "Apply JSON edit instructions to files",
		Long: `Apply reads a JSON array of edit instructions and applies each one to
the file it names. It will:
1. Back up every target file before touching it
2. Resolve anchors exactly, falling back to fuzzy matching
3. Apply the replace/insert/append/prepend edit
4. Record each applied change in the history log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "apply").Logger().WithContext(ctx)

			instructions, err := patch.LoadInstructions(ctx, args[0])
			if err != nil {
				return errors.Errorf("loading instructions: %w", err)
			}

			engine := patch.New(patch.Options{
				BackupDir:   opts.Config.Backup.Dir,
				HistoryPath: opts.Config.Backup.HistoryFile,
				Console:     opts.Console,
			})
			if _, err := engine.ApplyAll(ctx, instructions); err != nil {
				return errors.Errorf("applying instructions: %w", err)
			}

			return nil
		},
	}

	return cmd
}
