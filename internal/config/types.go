// SPDX-License-Identifier: MPL-2.0

package config

import (
	"time"

	"golang.org/x/exp/slices"

	"github.com/skillforge/skillforge/pkg/skillcheck"
	"github.com/skillforge/skillforge/pkg/skillscaffold"
)

const (
	// ColorAuto colors output when stdout is a terminal.
	ColorAuto ColorMode = "auto"
	// ColorAlways forces colored output.
	ColorAlways ColorMode = "always"
	// ColorNever disables colored output.
	ColorNever ColorMode = "never"

	// DefaultSkillsDir is where audit looks and create writes by default.
	DefaultSkillsDir = ".claude/skills"
	// DefaultDebounceMillis is the validate --watch quiet period.
	DefaultDebounceMillis = 500
)

type (
	// ColorMode controls terminal styling.
	ColorMode string

	// Config is the root configuration.
	Config struct {
		UI       UIConfig       `mapstructure:"ui" toml:"ui"`
		Audit    AuditConfig    `mapstructure:"audit" toml:"audit"`
		Watch    WatchConfig    `mapstructure:"watch" toml:"watch"`
		Scaffold ScaffoldConfig `mapstructure:"scaffold" toml:"scaffold"`
		Policy   PolicyConfig   `mapstructure:"policy" toml:"policy"`
	}

	// UIConfig holds output settings.
	UIConfig struct {
		// Verbose enables debug logging, same as --verbose.
		Verbose bool `mapstructure:"verbose" toml:"verbose"`
		// Color is one of auto, always, never.
		Color ColorMode `mapstructure:"color" toml:"color"`
	}

	// AuditConfig holds settings for the audit command.
	AuditConfig struct {
		// SkillsDir is the folder whose subfolders are audited.
		SkillsDir string `mapstructure:"skills_dir" toml:"skills_dir"`
	}

	// WatchConfig holds settings for validate --watch.
	WatchConfig struct {
		// DebounceMillis is the quiet period before a re-run.
		DebounceMillis int `mapstructure:"debounce_ms" toml:"debounce_ms"`
	}

	// ScaffoldConfig holds defaults for the create command.
	ScaffoldConfig struct {
		OutputDir string `mapstructure:"output_dir" toml:"output_dir"`
		Archetype string `mapstructure:"archetype" toml:"archetype"`
		Risk      string `mapstructure:"risk" toml:"risk"`
	}

	// PolicyConfig overrides the validation tables. Empty lists keep the
	// built-in tables.
	PolicyConfig struct {
		AllowedTools            []string                    `mapstructure:"allowed_tools" toml:"allowed_tools"`
		ArchetypesRequiringDeps []string                    `mapstructure:"archetypes_requiring_deps" toml:"archetypes_requiring_deps"`
		MaxDescriptionLength    int                         `mapstructure:"max_description_length" toml:"max_description_length"`
		DependencyHints         []skillcheck.DependencyHint `mapstructure:"dependency_hints" toml:"dependency_hints"`
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	policy := skillcheck.DefaultPolicy()
	return &Config{
		UI: UIConfig{
			Verbose: false,
			Color:   ColorAuto,
		},
		Audit: AuditConfig{
			SkillsDir: DefaultSkillsDir,
		},
		Watch: WatchConfig{
			DebounceMillis: DefaultDebounceMillis,
		},
		Scaffold: ScaffoldConfig{
			OutputDir: DefaultSkillsDir,
			Archetype: skillscaffold.DefaultArchetype,
			Risk:      skillscaffold.DefaultRisk,
		},
		Policy: PolicyConfig{
			AllowedTools:            policy.AllowedTools,
			ArchetypesRequiringDeps: policy.ArchetypesRequiringDeps,
			MaxDescriptionLength:    policy.Rules.MaxDescriptionLength,
			DependencyHints:         policy.DependencyHints,
		},
	}
}

// ValidationPolicy builds the skillcheck policy described by the
// configuration, starting from the built-in tables.
func (c *Config) ValidationPolicy() skillcheck.Policy {
	p := skillcheck.DefaultPolicy()
	if c == nil {
		return p
	}
	if len(c.Policy.AllowedTools) > 0 {
		p.AllowedTools = slices.Clone(c.Policy.AllowedTools)
	}
	if len(c.Policy.ArchetypesRequiringDeps) > 0 {
		p.ArchetypesRequiringDeps = slices.Clone(c.Policy.ArchetypesRequiringDeps)
	}
	if c.Policy.MaxDescriptionLength > 0 {
		p.Rules.MaxDescriptionLength = c.Policy.MaxDescriptionLength
	}
	if len(c.Policy.DependencyHints) > 0 {
		p.DependencyHints = slices.Clone(c.Policy.DependencyHints)
	}
	return p
}

// Debounce returns the watch quiet period as a duration.
func (c *Config) Debounce() time.Duration {
	if c == nil || c.Watch.DebounceMillis <= 0 {
		return DefaultDebounceMillis * time.Millisecond
	}
	return time.Duration(c.Watch.DebounceMillis) * time.Millisecond
}
