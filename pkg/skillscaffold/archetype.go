// SPDX-License-Identifier: MPL-2.0

package skillscaffold

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/skillforge/skillforge/pkg/skillmanifest"
)

// Defaults applied by Create when a request leaves a field empty.
const (
	DefaultArchetype = "api-wrapper"
	DefaultRisk      = skillmanifest.RiskLow
)

var (
	archetypes = []Archetype{
		{Name: "api-wrapper", Title: "API Wrapper", EntryPoint: "scripts/wrapper.py", RequiresDeps: true},
		{Name: "basic", Title: "Basic Logic", EntryPoint: "scripts/main.py"},
		{Name: "mcp-bridge", Title: "MCP Bridge", EntryPoint: "scripts/bridge.py", RequiresDeps: true},
	}

	riskLevels = []string{skillmanifest.RiskLow, skillmanifest.RiskMedium, skillmanifest.RiskHigh}

	slugStripRE = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRE = regexp.MustCompile(`\s+`)
	slugDashRE  = regexp.MustCompile(`-{2,}`)
)

// Archetype is a starting layout for a new skill.
type Archetype struct {
	// Name identifies the archetype on the command line and in the manifest.
	Name string
	// Title is a short human-readable label.
	Title string
	// EntryPoint is the folder-relative script the manifest points at.
	EntryPoint string
	// RequiresDeps is true when the layout ships a requirements.txt.
	RequiresDeps bool
}

// Archetypes lists the available archetypes, default first.
func Archetypes() []Archetype {
	out := make([]Archetype, len(archetypes))
	copy(out, archetypes)
	return out
}

// ArchetypeNames lists the archetype names in display order.
func ArchetypeNames() []string {
	names := make([]string, len(archetypes))
	for i, a := range archetypes {
		names[i] = a.Name
	}
	return names
}

// LookupArchetype finds an archetype by name.
func LookupArchetype(name string) (Archetype, bool) {
	for _, a := range archetypes {
		if a.Name == name {
			return a, true
		}
	}
	return Archetype{}, false
}

// RiskLevels lists the accepted risk levels, lowest first.
func RiskLevels() []string {
	return append([]string(nil), riskLevels...)
}

// AllowedToolsFor returns the tools a new skill advertises for a risk level.
// Write is only granted from medium risk upwards.
func AllowedToolsFor(risk string) []string {
	tools := []string{"Read", "Grep", "Glob", "Bash"}
	if risk == skillmanifest.RiskMedium || risk == skillmanifest.RiskHigh {
		tools = append(tools, "Write")
	}
	return tools
}

// Slugify derives a skill name from a free-form title: lowercase ASCII
// letters, digits and single hyphens, at most 64 characters.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStripRE.ReplaceAllString(s, "")
	s = slugSpaceRE.ReplaceAllString(s, "-")
	s = slugDashRE.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 64 {
		s = s[:64]
	}
	return s
}

// TitleFromName turns "git-commit-helper" into "Git Commit Helper".
func TitleFromName(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "-", " "))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
