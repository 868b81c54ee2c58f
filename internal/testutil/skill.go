// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

// Defaults used by SkillFixture.Valid.
const (
	FixtureDescription = "Draft commit messages when the user asks for one."
	FixtureEntryPoint  = "scripts/main.py"
	FixtureScript      = "import sys\n\n\ndef main():\n    return 0\n\n\nif __name__ == \"__main__\":\n    sys.exit(main())\n"
)

// SkillFixture lays out a skill folder on disk. Methods return the fixture
// so calls can be chained; every write fails the test on error.
type SkillFixture struct {
	t    testing.TB
	Name string
	Dir  string
}

// NewSkill returns a fixture for an empty folder named name inside a fresh
// temporary directory.
func NewSkill(t testing.TB, name string) *SkillFixture {
	t.Helper()
	return NewSkillIn(t, t.TempDir(), name)
}

// NewSkillIn returns a fixture for an empty folder parent/name.
func NewSkillIn(t testing.TB, parent, name string) *SkillFixture {
	t.Helper()
	dir := filepath.Join(parent, name)
	MustMkdirAll(t, dir)
	return &SkillFixture{t: t, Name: name, Dir: dir}
}

// Path joins a slash-separated folder-relative path onto the fixture dir.
func (f *SkillFixture) Path(rel string) string {
	return filepath.Join(f.Dir, filepath.FromSlash(rel))
}

// WithFile writes a folder-relative file.
func (f *SkillFixture) WithFile(rel, content string) *SkillFixture {
	f.t.Helper()
	MustWriteFile(f.t, f.Path(rel), content)
	return f
}

// WithDir creates a folder-relative directory.
func (f *SkillFixture) WithDir(rel string) *SkillFixture {
	f.t.Helper()
	MustMkdirAll(f.t, f.Path(rel))
	return f
}

// WithDocument writes SKILL.md verbatim.
func (f *SkillFixture) WithDocument(content string) *SkillFixture {
	f.t.Helper()
	return f.WithFile("SKILL.md", content)
}

// WithHeader writes SKILL.md with a header made of the given "key: value"
// lines, followed by body.
func (f *SkillFixture) WithHeader(body string, lines ...string) *SkillFixture {
	f.t.Helper()
	return f.WithDocument(Document(body, lines...))
}

// WithManifest writes skill.spec.json verbatim.
func (f *SkillFixture) WithManifest(content string) *SkillFixture {
	f.t.Helper()
	return f.WithFile("skill.spec.json", content)
}

// Valid writes a skill that passes validation without warnings: a basic
// archetype with a matching header and manifest and a runnable entry point.
func (f *SkillFixture) Valid() *SkillFixture {
	f.t.Helper()
	return f.
		WithHeader("# "+f.Name+"\n\nSee [the script](scripts/main.py).\n",
			"name: "+f.Name,
			"description: "+FixtureDescription,
			"allowed-tools: Read, Grep").
		WithManifest(Manifest(map[string]string{
			"name":        f.Name,
			"description": FixtureDescription,
			"archetype":   "basic",
			"risk_level":  "low",
			"entry_point": FixtureEntryPoint,
		})).
		WithFile(FixtureEntryPoint, FixtureScript)
}

// Document builds SKILL.md content from header lines and a body.
func Document(body string, lines ...string) string {
	var b strings.Builder
	b.WriteString("---\n")
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.String()
}

// Manifest renders string fields as a JSON object with sorted keys.
func Manifest(fields map[string]string) string {
	out, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		panic(err)
	}
	return string(out) + "\n"
}
