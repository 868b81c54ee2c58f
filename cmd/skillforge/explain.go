// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillforge/skillforge/internal/issue"
)

// newExplainCommand creates the `skillforge explain` command.
func newExplainCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "explain [guide]",
		Short: "Explain a validation problem and how to fix it",
		Long: `Render a troubleshooting guide. Without an argument, list the guides.

Validation output names the guide for each failing check.

Examples:
  skillforge explain
  skillforge explain manifest`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: issue.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				listGuides(cmd)
				return nil
			}
			return explainGuide(cmd, app, args[0])
		},
	}
}

func listGuides(cmd *cobra.Command) {
	stdout := cmd.OutOrStdout()
	fmt.Fprintln(stdout, TitleStyle.Render("Guides"))
	fmt.Fprintln(stdout)
	for _, g := range issue.Values() {
		fmt.Fprintf(stdout, "  %-18s %s\n", CmdStyle.Render(g.Name()), SubtitleStyle.Render(guideTitle(g)))
	}
}

func explainGuide(cmd *cobra.Command, app *App, name string) error {
	guide := issue.Lookup(name)
	if guide == nil {
		return issue.NewErrorContext().
			WithOperation("explain").
			WithResource(name).
			WithSuggestion("Known guides: " + strings.Join(issue.Names(), ", ")).
			Wrap(errors.New("unknown guide")).
			BuildError()
	}

	rendered, err := guide.Render(glamourStyle(app.cfg.UI.Color))
	if err != nil {
		return fmt.Errorf("render guide: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}

// guideTitle returns the first heading of a guide.
func guideTitle(g *issue.Issue) string {
	for _, line := range strings.Split(string(g.MarkdownMsg()), "\n") {
		if title, ok := strings.CutPrefix(line, "# "); ok {
			return title
		}
	}
	return ""
}
