package commands

import (
	"github.com/aiprep-dev/aiprep/cmd/aiprep/opts"
	"github.com/aiprep-dev/aiprep/pkg/gitindex"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// NewIndexCmd creates a new index command
func NewIndexCmd(opts *opts.RootOpts) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "index [dir]",
		Short: "Index a git repository's tracked files into one text file",
		Long: `Index concatenates every tracked file of a git repository into a single
annotated document, with per-file size and last-commit metadata. Binary
and oversized files are listed but their content is omitted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "index").Logger().WithContext(ctx)

			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			cfg := opts.Config.Index
			if output == "" {
				output = cfg.Output
			}

			indexer, err := gitindex.Open(gitindex.Options{
				Dir:         dir,
				Output:      output,
				MaxFileSize: cfg.MaxFileSize,
			})
			if err != nil {
				return errors.Errorf("opening repository: %w", err)
			}

			count, err := indexer.Run(ctx)
			if err != nil {
				return errors.Errorf("indexing repository: %w", err)
			}

			opts.Console.Successf("Indexed %d file(s) into '%s'", count, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default from config)")

	return cmd
}
