package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sarchlab/rebalance/config"
	"github.com/spf13/cobra"
)

func newConfigCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Print and check configuration files.",
	}

	c.AddCommand(
		&cobra.Command{
			Use:   "defaults",
			Short: "Print the default configuration as YAML.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				data, err := config.Encode(config.Defaults())
				if err != nil {
					return err
				}

				_, err = cmd.OutOrStdout().Write(data)

				return err
			},
		},
		&cobra.Command{
			Use:   "validate <file>",
			Short: "Check a configuration file against the allowed ranges.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return validateConfig(cmd, args[0])
			},
		},
	)

	return c
}

func validateConfig(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	cfg, err := config.Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	clamped := cfg.Clone()
	if changed := clamped.Clamp(); len(changed) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "out of range, would be clamped: %s\n",
			strings.Join(changed, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", path)

	return nil
}
