// SPDX-License-Identifier: MPL-2.0

package skillcheck

import (
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/slices"

	"github.com/skillforge/skillforge/pkg/frontmatter"
	"github.com/skillforge/skillforge/pkg/sourcescan"
)

type (
	// DependencyHint maps an imported module to the text expected somewhere
	// in requirements.txt when a script uses it.
	DependencyHint struct {
		Module string `mapstructure:"module" toml:"module"`
		Hint   string `mapstructure:"hint" toml:"hint"`
	}

	// Policy is the table set a validation run checks against.
	Policy struct {
		// Rules drive the header field validator.
		Rules frontmatter.Rules
		// AllowedTools is the allowed-tools whitelist.
		AllowedTools []string
		// ArchetypesRequiringDeps lists archetypes that usually ship a
		// requirements.txt.
		ArchetypesRequiringDeps []string
		// DependencyHints are checked in order.
		DependencyHints []DependencyHint
		// Checkers selects the syntax checker for each file in scripts/.
		Checkers *sourcescan.Registry
	}

	// Option configures Validate and Audit.
	Option func(*options)

	options struct {
		policy Policy
		logger *log.Logger
	}
)

// DefaultAllowedTools is the built-in allowed-tools whitelist.
func DefaultAllowedTools() []string {
	return []string{"Read", "Write", "Grep", "Glob", "Bash"}
}

// DefaultArchetypesRequiringDeps is the built-in list of archetypes that
// usually ship a requirements.txt.
func DefaultArchetypesRequiringDeps() []string {
	return []string{"api-wrapper", "mcp-bridge"}
}

// DefaultDependencyHints is the built-in dependency hint table.
func DefaultDependencyHints() []DependencyHint {
	return []DependencyHint{
		{Module: "requests", Hint: "requests>=2.31.0"},
		{Module: "httpx", Hint: "httpx"},
		{Module: "numpy", Hint: "numpy"},
		{Module: "pandas", Hint: "pandas"},
		{Module: "mcp", Hint: "mcp"},
	}
}

// DefaultPolicy returns the built-in tables.
func DefaultPolicy() Policy {
	return Policy{
		Rules:                   frontmatter.DefaultRules(),
		AllowedTools:            DefaultAllowedTools(),
		ArchetypesRequiringDeps: DefaultArchetypesRequiringDeps(),
		DependencyHints:         DefaultDependencyHints(),
		Checkers:                sourcescan.DefaultRegistry(),
	}
}

// clone copies the slices so a run cannot observe later edits made by the
// caller. A nil registry falls back to the default one.
func (p Policy) clone() Policy {
	out := Policy{
		Rules: frontmatter.Rules{
			Recognized:           slices.Clone(p.Rules.Recognized),
			ReservedWords:        slices.Clone(p.Rules.ReservedWords),
			MaxDescriptionLength: p.Rules.MaxDescriptionLength,
		},
		AllowedTools:            slices.Clone(p.AllowedTools),
		ArchetypesRequiringDeps: slices.Clone(p.ArchetypesRequiringDeps),
		DependencyHints:         slices.Clone(p.DependencyHints),
		Checkers:                p.Checkers,
	}
	if out.Checkers == nil {
		out.Checkers = sourcescan.DefaultRegistry()
	}
	return out
}

// WithPolicy replaces DefaultPolicy.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p.clone()
	}
}

// WithLogger sets the logger used to trace pipeline stages. Runs are silent
// by default.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		policy: DefaultPolicy(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
