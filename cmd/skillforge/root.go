// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for skillforge.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/skillforge/skillforge/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "skillforge",
		Short: "Validate, audit and scaffold agent skill folders",
		Long: TitleStyle.Render("skillforge") + SubtitleStyle.Render(" - Validate, audit and scaffold agent skill folders") + `

A skill is a folder with a SKILL.md whose header names and describes it,
an optional skill.spec.json manifest, and helper scripts under scripts/.
skillforge checks the header, links, manifest, entry point, dependencies
and script syntax, and reports errors and warnings.

` + SubtitleStyle.Render("Examples:") + `
  skillforge validate .claude/skills/release-notes
  skillforge audit --skills-dir .claude/skills
  skillforge create --name release-notes --description "Drafts release notes"
  skillforge explain manifest
  skillforge config show`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.setup(cmd.Context(), cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configFile, "config", "", "config file (default is $XDG_CONFIG_HOME/skillforge/config.toml)")

	rootCmd.AddCommand(newValidateCommand(app))
	rootCmd.AddCommand(newAuditCommand(app))
	rootCmd.AddCommand(newCreateCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))
	rootCmd.AddCommand(newExplainCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

func writeWarning(w io.Writer, msg string) {
	fmt.Fprintln(w, WarningStyle.Render("Warning: ")+msg)
}
