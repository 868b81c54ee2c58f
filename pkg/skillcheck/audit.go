// SPDX-License-Identifier: MPL-2.0

package skillcheck

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type (
	// SkillReport is the result for one folder of an audit.
	SkillReport struct {
		Name   string  `json:"name"`
		Result *Result `json:"result"`
	}

	// AuditReport collects the results of validating every skill folder
	// under a directory.
	AuditReport struct {
		Dir    string        `json:"dir"`
		Skills []SkillReport `json:"skills"`
	}
)

// Failures counts the skills that did not pass.
func (a *AuditReport) Failures() int {
	n := 0
	for _, s := range a.Skills {
		if !s.Result.Passed() {
			n++
		}
	}
	return n
}

// Passed reports whether every skill passed.
func (a *AuditReport) Passed() bool {
	return a.Failures() == 0
}

// Audit validates each immediate subdirectory of skillsDir in name order.
// Regular files in skillsDir are ignored. Cancelling ctx stops the audit
// before the next folder.
func Audit(ctx context.Context, skillsDir string, opts ...Option) (*AuditReport, error) {
	if err := requireDir(skillsDir); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(skillsDir)
	if err != nil {
		return nil, fmt.Errorf("read skills directory: %w", err)
	}

	o := buildOptions(opts)
	report := &AuditReport{Dir: skillsDir, Skills: []SkillReport{}}
	for _, entry := range entries {
		path := filepath.Join(skillsDir, entry.Name())
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		o.logger.Debug("auditing skill", "name", entry.Name())

		result, err := Validate(ctx, path, WithPolicy(o.policy), WithLogger(o.logger))
		if err != nil {
			return nil, fmt.Errorf("validate %s: %w", entry.Name(), err)
		}
		report.Skills = append(report.Skills, SkillReport{Name: entry.Name(), Result: result})
	}
	return report, nil
}
