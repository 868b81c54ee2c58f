// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillforge/skillforge/internal/issue"
	"github.com/skillforge/skillforge/pkg/skillscaffold"
)

// newCreateCommand creates the `skillforge create` command.
func newCreateCommand(app *App) *cobra.Command {
	var req skillscaffold.Request

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new skill folder from a template",
		Long: `Create a new skill folder from a template.

The folder is named after --name, or after --title turned into a slug.
It gets a SKILL.md, a skill.spec.json manifest and a starter script for the
chosen archetype. Allowed tools follow the risk level: Write is only
granted from medium risk upwards.

Archetypes: ` + strings.Join(skillscaffold.ArchetypeNames(), ", ") + `
Risk levels: ` + strings.Join(skillscaffold.RiskLevels(), ", ") + `

Examples:
  skillforge create --name release-notes --description "Drafts release notes from merged PRs"
  skillforge create --title "Deploy Helper" --description "Deploys when asked" --archetype basic --risk high`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("archetype") {
				req.Archetype = app.cfg.Scaffold.Archetype
			}
			if !cmd.Flags().Changed("risk") {
				req.Risk = app.cfg.Scaffold.Risk
			}
			if !cmd.Flags().Changed("output-dir") {
				req.OutputDir = app.cfg.Scaffold.OutputDir
			}
			return runCreate(cmd, app, req)
		},
	}

	cmd.Flags().StringVarP(&req.Name, "name", "n", "", "skill name (lowercase letters, digits, hyphens)")
	cmd.Flags().StringVarP(&req.Title, "title", "t", "", "human-readable title (derived from the name when empty)")
	cmd.Flags().StringVar(&req.Description, "description", "", "what the skill does and when to use it")
	cmd.Flags().StringVarP(&req.Archetype, "archetype", "a", skillscaffold.DefaultArchetype, "template to start from")
	cmd.Flags().StringVarP(&req.Risk, "risk", "r", skillscaffold.DefaultRisk, "risk level: low, medium or high")
	cmd.Flags().StringVarP(&req.OutputDir, "output-dir", "o", "", "directory that receives the skill folder (default from config)")
	cmd.Flags().BoolVar(&req.Force, "force", false, "replace an existing skill folder")

	return cmd
}

func runCreate(cmd *cobra.Command, app *App, req skillscaffold.Request) error {
	skill, err := skillscaffold.Create(req, app.scaffoldOptions()...)
	if err != nil {
		ctx := issue.NewErrorContext().WithOperation("create skill")
		switch {
		case errors.Is(err, skillscaffold.ErrExists):
			ctx.WithSuggestion("Pick another --name").
				WithSuggestion("Pass --force to replace the folder").
				WithGuide(issue.SkillExistsId)
		case errors.Is(err, skillscaffold.ErrMissingName), errors.Is(err, skillscaffold.ErrInvalidName):
			ctx.WithSuggestion("Use --name with lowercase letters, digits and hyphens, e.g. release-notes")
		case errors.Is(err, skillscaffold.ErrMissingDescription):
			ctx.WithSuggestion("Describe what the skill does and when to use it with --description")
		}
		return ctx.Wrap(err).BuildError()
	}

	stdout := cmd.OutOrStdout()
	fmt.Fprintf(stdout, "%s Created skill '%s' at: %s\n", successIcon(), skill.Manifest.Name, pathStyle.Render(skill.Dir))
	for _, f := range skill.Files {
		fmt.Fprintf(stdout, "  %s %s\n", infoIcon(), f)
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, SubtitleStyle.Render("Next:"))
	fmt.Fprintf(stdout, "  - edit:      %s\n", filepath.Join(skill.Dir, "SKILL.md"))
	fmt.Fprintf(stdout, "  - validate:  %s\n", CmdStyle.Render("skillforge validate "+skill.Dir))
	return nil
}
