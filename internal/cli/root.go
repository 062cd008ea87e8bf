// Package cli implements the chainmirror command tree.
package cli

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
}

// NewRootCommand creates the root command for the chainmirror CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "chainmirror",
		Short: "chainmirror - on-chain account mirror",
		Long: `chainmirror consumes an on-chain change feed and maintains a
relational mirror of tracked program state, reconciled under
last-writer-wins keyed by slot.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(opts.Verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// configureLogging installs the process-wide slog handler.
// Logs go to stderr so command output stays machine-readable.
func configureLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := tint.NewHandler(os.Stderr, &tint.Options{Level: level})
	slog.SetDefault(slog.New(handler))
}
