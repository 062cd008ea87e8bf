package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/holaplex/chainmirror/internal/config"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Print bool
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a config file",
		Long: `Validate a CUE config file against the embedded schema.

With --print, the effective configuration (defaults applied) is printed
as YAML.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Print, "print", false, "print the effective configuration as YAML")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if opts.Print {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("render config: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
	return nil
}
