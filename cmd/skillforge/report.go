// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/skillforge/skillforge/internal/issue"
	"github.com/skillforge/skillforge/pkg/skillcheck"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON:
		return nil
	default:
		return fmt.Errorf("unknown format %q (use %s or %s)", format, formatText, formatJSON)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// writeResult prints the verdict, then the numbered errors and warnings.
func writeResult(w io.Writer, r *skillcheck.Result) {
	if r.Passed() {
		fmt.Fprintf(w, "%s Validation passed\n", successIcon())
	} else {
		fmt.Fprintf(w, "%s Validation failed with %d error(s)\n", errorIcon(), len(r.Errors))
		fmt.Fprintln(w)
		writeIssues(w, r.Errors)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %d warning(s):\n", warningIcon(), len(r.Warnings))
		fmt.Fprintln(w)
		writeIssues(w, r.Warnings)
	}

	if guides := guideNames(r.Errors); len(guides) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s Guides: %s (run %s)\n", infoIcon(),
			strings.Join(guides, ", "), CmdStyle.Render("skillforge explain <guide>"))
	}
}

func writeIssues(w io.Writer, issues []skillcheck.Issue) {
	for i, iss := range issues {
		num := itemNumberStyle.Render(fmt.Sprintf("  %d.", i+1))
		category := categoryStyle.Render(fmt.Sprintf("[%s]", iss.Category))
		fmt.Fprintf(w, "%s %s %s\n", num, category, iss.Message)
	}
}

// guideFor picks the explain guide for a finding.
func guideFor(iss skillcheck.Issue) *issue.Issue {
	if iss.Category == skillcheck.CategoryHeader && iss.Message == "Missing "+skillcheck.DocumentFile {
		return issue.Get(issue.DocumentNotFoundId)
	}
	return issue.ForCategory(string(iss.Category))
}

// guideNames lists the distinct guides for issues, in first-seen order.
func guideNames(issues []skillcheck.Issue) []string {
	var names []string
	seen := map[string]bool{}
	for _, iss := range issues {
		g := guideFor(iss)
		if g == nil || seen[g.Name()] {
			continue
		}
		seen[g.Name()] = true
		names = append(names, g.Name())
	}
	return names
}
