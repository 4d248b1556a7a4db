package main

import (
	"fmt"

	"github.com/danmuck/docwire/internal/config"
	"github.com/danmuck/docwire/internal/logging"
	"github.com/spf13/cobra"
)

func newConfigCmd(root *rootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write or validate a docwire.toml",
		// Skips the root config load so a broken file can still be inspected.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.ConfigureRuntime()
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [PATH]",
		Short: "Write the default config template",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configTarget(root, args)
			if err := config.WriteTemplate(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	validateCmd := &cobra.Command{
		Use:   "validate [PATH]",
		Short: "Load a config and its schema files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configTarget(root, args)
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			reg, err := cfg.Registry()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "validated %s (%d schemas)\n", path, len(reg.Names()))
			return nil
		},
	}

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}

func configTarget(root *rootOpts, args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	if root.configPath != "" {
		return root.configPath
	}
	return config.DefaultPath
}
