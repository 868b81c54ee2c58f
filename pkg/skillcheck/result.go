// SPDX-License-Identifier: MPL-2.0

package skillcheck

import "fmt"

// Severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Categories name the check that produced an issue.
const (
	CategoryHeader       Category = "header"
	CategoryField        Category = "field"
	CategoryTools        Category = "tools"
	CategoryLink         Category = "link"
	CategoryManifest     Category = "manifest"
	CategoryEntryPoint   Category = "entry_point"
	CategoryDependencies Category = "dependencies"
	CategorySource       Category = "source"
)

type (
	// Severity separates blocking errors from advisory warnings.
	Severity string

	// Category groups issues by the pipeline stage that found them.
	Category string

	// Issue is one finding of a validation run. Issues are domain results,
	// not Go errors: a run that finds problems still returns a nil error.
	//
	//nolint:errname // Findings are collected and reported, not returned.
	Issue struct {
		Category Category `json:"category"`
		Severity Severity `json:"severity"`
		Message  string   `json:"message"`
		// Path is the folder-relative file the issue is about, when there is one.
		Path string `json:"path,omitempty"`
	}

	// Result holds the ordered findings of one validation run.
	Result struct {
		// Dir is the validated skill folder as given by the caller.
		Dir      string  `json:"dir"`
		Errors   []Issue `json:"errors"`
		Warnings []Issue `json:"warnings"`
	}
)

func newResult(dir string) *Result {
	return &Result{Dir: dir, Errors: []Issue{}, Warnings: []Issue{}}
}

// String returns the human-readable message.
func (i Issue) String() string { return i.Message }

// Error implements the error interface so an issue can be wrapped when a
// caller wants to fail fast on the first finding.
func (i Issue) Error() string {
	return fmt.Sprintf("[%s] %s", i.Category, i.Message)
}

// AddError appends a blocking finding.
func (r *Result) AddError(category Category, path, message string) {
	r.Errors = append(r.Errors, Issue{Category: category, Severity: SeverityError, Message: message, Path: path})
}

// AddWarning appends an advisory finding.
func (r *Result) AddWarning(category Category, path, message string) {
	r.Warnings = append(r.Warnings, Issue{Category: category, Severity: SeverityWarning, Message: message, Path: path})
}

// Passed reports whether the run found no errors. Warnings never fail a run.
func (r *Result) Passed() bool {
	return len(r.Errors) == 0
}

// ErrorMessages returns the error messages in order.
func (r *Result) ErrorMessages() []string { return messages(r.Errors) }

// WarningMessages returns the warning messages in order.
func (r *Result) WarningMessages() []string { return messages(r.Warnings) }

func messages(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.Message
	}
	return out
}
