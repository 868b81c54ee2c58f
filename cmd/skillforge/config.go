// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skillforge/skillforge/internal/config"
)

// newConfigCommand creates the `skillforge config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage skillforge configuration",
		Long: `Manage skillforge configuration.

Configuration is read from the first of:
  - the file given with --config
  - Linux: ~/.config/skillforge/config.toml
    macOS: ~/Library/Application Support/skillforge/config.toml
    Windows: %APPDATA%\skillforge\config.toml
  - ./skillforge.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, app)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd, app, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(cmd, app)
		},
	})

	return cfgCmd
}

func showConfig(cmd *cobra.Command, app *App) error {
	stdout := cmd.OutOrStdout()

	source, err := app.Config.Resolve(app.loadOptions())
	if err != nil {
		return err
	}
	if source == "" {
		source = SubtitleStyle.Render("(using defaults)")
	}
	fmt.Fprintf(stdout, "# %s: %s\n\n", CmdStyle.Render("Config file"), source)

	data, err := config.Encode(app.cfg)
	if err != nil {
		return err
	}
	_, err = stdout.Write(data)
	return err
}

func initConfig(cmd *cobra.Command, app *App, force bool) error {
	path := app.configFile
	if path == "" {
		var err error
		if path, err = config.ConfigFilePath(); err != nil {
			return err
		}
	}

	written, err := config.WriteDefault(path, force)
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	if !written {
		fmt.Fprintf(stdout, "%s Configuration already exists at %s (use --force to overwrite)\n", warningIcon(), path)
		return nil
	}
	fmt.Fprintf(stdout, "%s Created default configuration at %s\n", successIcon(), path)
	return nil
}

func showConfigPath(cmd *cobra.Command, app *App) error {
	stdout := cmd.OutOrStdout()

	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(stdout, "Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName))

	source, err := app.Config.Resolve(app.loadOptions())
	if err != nil {
		return err
	}
	if source == "" {
		source = "(none, using defaults)"
	}
	fmt.Fprintf(stdout, "Active file: %s\n", source)
	return nil
}
