// SPDX-License-Identifier: MPL-2.0

package skillcheck

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/skillforge/skillforge/internal/testutil"
)

func TestDefaultPolicy(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	if len(p.AllowedTools) != 5 {
		t.Errorf("AllowedTools = %v, want five tools", p.AllowedTools)
	}
	if len(p.DependencyHints) != 5 || p.DependencyHints[0].Hint != "requests>=2.31.0" {
		t.Errorf("DependencyHints = %v", p.DependencyHints)
	}
	if p.Checkers == nil {
		t.Error("Checkers = nil")
	}
}

func TestWithPolicyCopiesTables(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	p.Checkers = nil
	o := buildOptions([]Option{WithPolicy(p)})

	p.AllowedTools[0] = "Changed"
	if o.policy.AllowedTools[0] != "Read" {
		t.Error("run policy observed a later edit of the caller's table")
	}
	if o.policy.Checkers == nil {
		t.Error("nil registry was not replaced with the default one")
	}
}

func TestWithLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	skill := testutil.NewSkill(t, "logged").Valid()
	if _, err := Validate(context.Background(), skill.Dir, WithLogger(logger)); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"frontmatter extracted", "manifest loaded", "validation finished", "skill=logged"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestResultJSONShape(t *testing.T) {
	t.Parallel()

	r := newResult("dir")
	if r.Errors == nil || r.Warnings == nil {
		t.Error("new results must have non-nil slices")
	}
	r.AddWarning(CategorySource, "scripts", "Missing scripts/ directory")
	if !r.Passed() {
		t.Error("warnings must not fail a result")
	}
	if got := r.Warnings[0].Error(); got != "[source] Missing scripts/ directory" {
		t.Errorf("Error() = %q", got)
	}
	if got := r.Warnings[0].String(); got != "Missing scripts/ directory" {
		t.Errorf("String() = %q", got)
	}
}
