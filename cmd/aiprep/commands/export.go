package commands

import (
	"github.com/aiprep-dev/aiprep/cmd/aiprep/opts"
	"github.com/aiprep-dev/aiprep/pkg/export"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// NewExportCmd creates a new export command
func NewExportCmd(opts *opts.RootOpts) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [dir]",
		Short: "Export a codebase to a single XML document",
		Long: `Export walks a directory tree and writes every matching source file into
one XML document, with a directory tree overview and line-numbered file
content. Hidden directories, .gitignore'd paths and lock files are
skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "export").Logger().WithContext(ctx)

			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			cfg := opts.Config.Export
			if output == "" {
				output = cfg.Output
			}

			exporter := export.New(export.Options{
				Root:        root,
				Output:      output,
				Extensions:  cfg.Extensions,
				IgnoreDirs:  cfg.IgnoreDirs,
				SkipFiles:   cfg.SkipFiles,
				MaxJSONSize: cfg.MaxJSONSize,
			})
			count, err := exporter.Run(ctx)
			if err != nil {
				return errors.Errorf("exporting codebase: %w", err)
			}

			opts.Console.Successf("Exported %d file(s) to '%s'", count, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default from config)")

	return cmd
}
