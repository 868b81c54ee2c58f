// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillforge/skillforge/internal/issue"
	"github.com/skillforge/skillforge/pkg/skillcheck"
)

// newAuditCommand creates the `skillforge audit` command.
func newAuditCommand(app *App) *cobra.Command {
	var (
		skillsDir string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Validate every skill folder in a directory",
		Long: `Validate every immediate subfolder of a skills directory, in name order.

The directory defaults to audit.skills_dir from the configuration
(.claude/skills). The exit status is 1 when any skill fails.

Examples:
  skillforge audit
  skillforge audit --skills-dir ~/.claude/skills --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if skillsDir == "" {
				skillsDir = app.cfg.Audit.SkillsDir
			}
			return runAudit(cmd, app, skillsDir, format)
		},
	}

	cmd.Flags().StringVarP(&skillsDir, "skills-dir", "d", "", "directory containing skill folders (default from config)")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text or json")

	return cmd
}

func runAudit(cmd *cobra.Command, app *App, skillsDir, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	report, err := skillcheck.Audit(cmd.Context(), skillsDir, app.checkOptions()...)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("audit skills").
			WithResource(skillsDir).
			WithSuggestion("Check that the skills directory exists").
			WithSuggestion("Set it with --skills-dir or audit.skills_dir in the configuration").
			Wrap(err).
			BuildError()
	}

	stdout := cmd.OutOrStdout()
	if format == formatJSON {
		if err := writeJSON(stdout, report); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(stdout, TitleStyle.Render("Skill Audit"))
		fmt.Fprintf(stdout, "%s Path: %s\n", infoIcon(), pathStyle.Render(skillsDir))

		for _, skill := range report.Skills {
			fmt.Fprintln(stdout)
			fmt.Fprintln(stdout, TitleStyle.Render("=== "+skill.Name+" ==="))
			writeResult(stdout, skill.Result)
		}

		fmt.Fprintln(stdout)
		if failures := report.Failures(); failures > 0 {
			fmt.Fprintf(stdout, "%s Audit finished with %d validation failure(s) in %d skill(s)\n",
				errorIcon(), failures, len(report.Skills))
		} else {
			fmt.Fprintf(stdout, "%s Audit finished (%d skill(s), no validation failures)\n",
				successIcon(), len(report.Skills))
		}
	}

	if !report.Passed() {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return &ExitError{Code: 1}
	}
	return nil
}
