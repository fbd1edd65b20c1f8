package cmd

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/nibzard/todo-cli/internal/config"
)

func newConfigCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the effective configuration and where each value came from",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return showConfig(rt)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show the configuration file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path := rt.cfg.ConfigFile
				if path == "" {
					path = config.UserConfigPath() + " (not found)"
				}
				fmt.Fprintln(rt.out, path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "example",
			Short: "Print an example configuration file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprint(rt.out, config.ExampleConfig())
				return nil
			},
		},
	)
	return cmd
}

func showConfig(rt *runtime) error {
	fmt.Fprintln(rt.out, "# Effective configuration")
	if rt.cfg.ConfigFile != "" {
		fmt.Fprintf(rt.out, "# File: %s\n", rt.cfg.ConfigFile)
	}
	if err := toml.NewEncoder(rt.out).Encode(rt.cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	fmt.Fprintln(rt.out)
	fmt.Fprintln(rt.out, "# Sources")
	for _, key := range config.Keys() {
		fmt.Fprintf(rt.out, "# %-20s %s\n", key, rt.cfg.Sources[key])
	}
	return nil
}
