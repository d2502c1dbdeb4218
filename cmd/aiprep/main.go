package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aiprep-dev/aiprep/cmd/aiprep/commands"
	"github.com/aiprep-dev/aiprep/cmd/aiprep/opts"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	// Setup logging
	setupLogging()
	ctx := log.Logger.WithContext(context.Background())

	rootOpts := &opts.RootOpts{}

	// Create root command
	rootCmd := &cobra.Command{
		Use:   "aiprep",
		Short: "Developer tools for AI assisted code editing",
		Long: `aiprep bridges AI coding assistants and a local codebase. It applies
JSON edit instructions to files with fuzzy anchor matching, exports a
codebase to a single XML document, and indexes a git repository's
tracked files for review.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Flags are parsed by now; dependencies can see them.
			setupLogging()
			ro, err := newRootOpts(cmd.Context())
			if err != nil {
				return err
			}
			*rootOpts = *ro
			return nil
		},
	}

	// Add shared flags
	addRootFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(
		commands.NewApplyCmd(rootOpts),
		commands.NewExportCmd(rootOpts),
		commands.NewIndexCmd(rootOpts),
		commands.NewHistoryCmd(rootOpts),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "aiprep: %v\n", err)
		os.Exit(1)
	}
}
