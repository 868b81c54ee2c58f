// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillforge/skillforge/internal/issue"
	"github.com/skillforge/skillforge/internal/watch"
	"github.com/skillforge/skillforge/pkg/skillcheck"
)

// newValidateCommand creates the `skillforge validate` command.
func newValidateCommand(app *App) *cobra.Command {
	var (
		format    string
		watchMode bool
	)

	cmd := &cobra.Command{
		Use:   "validate <skill-dir>",
		Short: "Validate one skill folder",
		Long: `Validate one skill folder.

Checks performed, in order:
  - SKILL.md exists and starts with a header
  - header fields (name, description, allowed-tools)
  - relative Markdown links resolve inside the folder
  - skill.spec.json parses and agrees with the header
  - the manifest entry point exists
  - requirements.txt is present for archetypes that need one
  - scripts/ parse (Python, Go, shell) and their imports are declared

Errors fail the run (exit status 1). Warnings are reported only.

With --watch the folder is validated again whenever a file in it changes,
until interrupted. The exit status is then always 0.

Examples:
  skillforge validate .claude/skills/release-notes
  skillforge validate ./my-skill --format json
  skillforge validate ./my-skill --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if watchMode {
				return runValidateWatch(cmd, app, args[0], format)
			}
			return runValidate(cmd, app, args[0], format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text or json")
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "validate again whenever the folder changes")

	return cmd
}

func runValidate(cmd *cobra.Command, app *App, dir, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	passed, err := validateOnce(cmd, app, dir, format)
	if err != nil {
		return err
	}
	if !passed {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return &ExitError{Code: 1}
	}
	return nil
}

// runValidateWatch validates dir, then again after every batch of changes,
// until the command context is canceled.
func runValidateWatch(cmd *cobra.Command, app *App, dir, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	if _, err := validateOnce(cmd, app, dir, format); err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	w, err := watch.New(watch.Config{
		Dir:      dir,
		Debounce: app.cfg.Debounce(),
		Logger:   app.logger,
		OnChange: func(_ context.Context, changed []string) error {
			fmt.Fprintln(stdout)
			fmt.Fprintf(stdout, "%s Changed: %s\n", infoIcon(), strings.Join(changed, ", "))
			_, err := validateOnce(cmd, app, dir, format)
			return err
		},
	})
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("watch skill").
			WithResource(dir).
			WithSuggestion("Pass an existing skill folder").
			WithSuggestion("On Linux, raise fs.inotify.max_user_watches if the limit was reached").
			Wrap(err).
			BuildError()
	}

	if format == formatText {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, SubtitleStyle.Render("Watching for changes (Ctrl+C to stop)"))
	}
	return w.Run(cmd.Context())
}

// validateOnce validates dir and writes the result. It reports whether the
// skill passed; an error means validation could not run at all.
func validateOnce(cmd *cobra.Command, app *App, dir, format string) (bool, error) {
	result, err := skillcheck.Validate(cmd.Context(), dir, app.checkOptions()...)
	if err != nil {
		return false, issue.NewErrorContext().
			WithOperation("validate skill").
			WithResource(dir).
			WithSuggestion("Pass the skill folder, the one that contains SKILL.md").
			WithSuggestion("Use 'skillforge audit' to check every skill in a folder").
			WithGuide(issue.DocumentNotFoundId).
			Wrap(err).
			BuildError()
	}

	stdout := cmd.OutOrStdout()
	if format == formatJSON {
		if err := writeJSON(stdout, result); err != nil {
			return false, err
		}
		return result.Passed(), nil
	}

	absPath, absErr := filepath.Abs(dir)
	if absErr != nil {
		absPath = dir
	}
	fmt.Fprintln(stdout, TitleStyle.Render("Skill Validation"))
	fmt.Fprintf(stdout, "%s Path: %s\n", infoIcon(), pathStyle.Render(absPath))
	fmt.Fprintln(stdout)
	writeResult(stdout, result)
	return result.Passed(), nil
}
