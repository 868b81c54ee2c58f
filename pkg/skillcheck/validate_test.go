// SPDX-License-Identifier: MPL-2.0

package skillcheck

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/skillforge/skillforge/internal/testutil"
)

func validate(t *testing.T, dir string, opts ...Option) *Result {
	t.Helper()
	result, err := Validate(context.Background(), dir, opts...)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	return result
}

func wantMessages(t *testing.T, kind string, got, want []string) {
	t.Helper()
	if len(want) == 0 {
		want = []string{}
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("%s =\n  %q\nwant\n  %q", kind, got, want)
	}
}

func TestValidateValidSkill(t *testing.T) {
	t.Parallel()

	skill := testutil.NewSkill(t, "commit-helper").Valid()
	result := validate(t, skill.Dir)

	if !result.Passed() {
		t.Errorf("Passed() = false, errors: %q", result.ErrorMessages())
	}
	wantMessages(t, "warnings", result.WarningMessages(), nil)
	if result.Dir != skill.Dir {
		t.Errorf("Dir = %q, want %q", result.Dir, skill.Dir)
	}
}

func TestValidateMissingDocument(t *testing.T) {
	t.Parallel()

	skill := testutil.NewSkill(t, "empty").
		WithManifest(`{"entry_point": "scripts/missing.py"}`)
	result := validate(t, skill.Dir)

	wantMessages(t, "errors", result.ErrorMessages(), []string{"Missing SKILL.md"})
	wantMessages(t, "warnings", result.WarningMessages(), nil)
	if result.Passed() {
		t.Error("Passed() = true, want false")
	}
}

func TestValidateNotADirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	testutil.MustWriteFile(t, file, "x")

	if _, err := Validate(context.Background(), file); !errors.Is(err, ErrNotDirectory) {
		t.Errorf("Validate(file) error = %v, want ErrNotDirectory", err)
	}
	if _, err := Validate(context.Background(), filepath.Join(dir, "absent")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Validate(absent) error = %v, want not-exist", err)
	}
}

func TestValidateCancelledContext(t *testing.T) {
	t.Parallel()

	skill := testutil.NewSkill(t, "s").Valid()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Validate(ctx, skill.Dir); !errors.Is(err, context.Canceled) {
		t.Errorf("Validate() error = %v, want context.Canceled", err)
	}
}

func TestValidateHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		document     string
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name:       "no header",
			document:   "# Just a document\n",
			wantErrors: []string{"SKILL.md must start with YAML frontmatter delimited by --- lines"},
		},
		{
			name:       "unterminated header",
			document:   "---\nname: s\ndescription: d\n",
			wantErrors: []string{"SKILL.md must start with YAML frontmatter delimited by --- lines"},
		},
		{
			name:     "field errors",
			document: testutil.Document("body\n", "name: My Skill", "description: uses <b>tags</b>", "owner: alice"),
			wantErrors: []string{
				"Unknown frontmatter keys: owner. Allowed: allowed-tools, description, license, metadata, name",
				"Invalid name. Must match ^[a-z0-9-]{1,64}$",
				"Invalid description: must not contain XML tags",
			},
		},
		{
			name:     "unknown tools",
			document: testutil.Document("body\n", "name: s", "description: d", "allowed-tools: [Read, WebFetch, Edit]"),
			wantErrors: []string{
				"Unknown tool(s) in allowed-tools: WebFetch, Edit. Known: Bash, Glob, Grep, Read, Write",
			},
		},
		{
			name:     "empty allowed-tools is fine",
			document: testutil.Document("body\n", "name: s", "description: d", "allowed-tools:"),
		},
		{
			name:     "header that is not YAML",
			document: testutil.Document("body\n", "name: s", "description: d", "license: [unclosed"),
			wantWarnings: []string{
				"SKILL.md frontmatter is not valid YAML: ",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			skill := testutil.NewSkill(t, "s").
				WithDocument(tt.document).
				WithManifest(`{"entry_point": "scripts/main.py"}`).
				WithFile("scripts/main.py", "print('hi')\n")
			result := validate(t, skill.Dir)

			wantMessages(t, "errors", result.ErrorMessages(), tt.wantErrors)

			warnings := result.WarningMessages()
			if len(warnings) != len(tt.wantWarnings) {
				t.Fatalf("warnings = %q, want %d matching %q", warnings, len(tt.wantWarnings), tt.wantWarnings)
			}
			for i, prefix := range tt.wantWarnings {
				if !strings.HasPrefix(warnings[i], prefix) {
					t.Errorf("warning[%d] = %q, want prefix %q", i, warnings[i], prefix)
				}
			}
		})
	}
}

func TestValidateLinks(t *testing.T) {
	t.Parallel()

	body := strings.Join([]string{
		"# Links",
		"",
		"[ok](reference.md) and [anchored](reference.md#usage).",
		"[missing](docs/missing.md) and [missing anchor](gone.md#part).",
		"[web](https://example.com/x.md), [section](#setup), [mail](mailto:a@b.c).",
		"![diagram](img/diagram.png)",
		"[spaced](my notes.md) and [spaced ok](reference notes.md).",
		"",
		"```",
		"[in code](not-a-link.md)",
		"```",
		"",
	}, "\n")

	skill := testutil.NewSkill(t, "s").
		WithHeader(body, "name: s", "description: d").
		WithFile("reference.md", "# Reference\n").
		WithFile("reference notes.md", "# Notes\n").
		WithManifest(`{"entry_point": "scripts/main.py"}`).
		WithFile("scripts/main.py", "pass\n")
	result := validate(t, skill.Dir)

	wantMessages(t, "errors", result.ErrorMessages(), []string{
		"Broken link target: docs/missing.md",
		"Broken link target: gone.md",
		"Broken link target: mailto:a@b.c",
		"Broken link target: img/diagram.png",
		"Broken link target: my notes.md",
	})
	for _, is := range result.Errors {
		if is.Category != CategoryLink {
			t.Errorf("issue %q has category %q, want %q", is.Message, is.Category, CategoryLink)
		}
	}
}

func TestValidateLinksWithoutHeader(t *testing.T) {
	t.Parallel()

	skill := testutil.NewSkill(t, "s").
		WithDocument("# No header\n\nSee [guide](guide.md).\n").
		WithManifest(`{"entry_point": "scripts/main.py"}`).
		WithFile("scripts/main.py", "pass\n")
	result := validate(t, skill.Dir)

	wantMessages(t, "errors", result.ErrorMessages(), []string{
		"SKILL.md must start with YAML frontmatter delimited by --- lines",
		"Broken link target: guide.md",
	})
}

func TestValidateManifest(t *testing.T) {
	t.Parallel()

	header := []string{"name: foo", "description: Does foo things."}

	tests := []struct {
		name         string
		manifest     string // empty means no file
		files        map[string]string
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name:       "missing manifest skips manifest checks",
			wantErrors: []string{"Missing skill.spec.json"},
		},
		{
			name:       "malformed manifest",
			manifest:   `{"name": `,
			wantErrors: []string{"Invalid skill.spec.json: unexpected end of JSON input (line 1, column 9)"},
		},
		{
			name:       "non-object manifest",
			manifest:   `["foo"]`,
			wantErrors: []string{"Invalid skill.spec.json: top-level value must be a JSON object"},
		},
		{
			name:     "name drift",
			manifest: `{"name": "bar", "entry_point": "scripts/main.py"}`,
			wantWarnings: []string{
				"skill.spec.json name 'bar' does not match SKILL.md name 'foo'",
			},
		},
		{
			name:     "description drift",
			manifest: `{"description": "Something else.", "entry_point": "scripts/main.py"}`,
			wantWarnings: []string{
				"skill.spec.json description differs from SKILL.md description",
			},
		},
		{
			name:     "empty manifest fields are not compared",
			manifest: `{"name": "", "description": "", "entry_point": "scripts/main.py"}`,
		},
		{
			name:         "missing entry point field",
			manifest:     `{"name": "foo"}`,
			wantWarnings: []string{"skill.spec.json missing entry_point"},
		},
		{
			name:       "entry point not on disk",
			manifest:   `{"entry_point": "scripts/wrapper.py"}`,
			wantErrors: []string{"Entry point not found: scripts/wrapper.py"},
		},
		{
			name:     "archetype needing deps without requirements",
			manifest: `{"archetype": "api-wrapper", "entry_point": "scripts/main.py"}`,
			wantWarnings: []string{
				"Archetype 'api-wrapper' typically needs requirements.txt (deps). Missing.",
			},
		},
		{
			name:     "archetype needing deps with requirements",
			manifest: `{"archetype": "mcp-bridge", "entry_point": "scripts/main.py"}`,
			files:    map[string]string{"requirements.txt": "mcp\n"},
		},
		{
			name:     "schema violation is a warning",
			manifest: `{"risk_level": "extreme", "entry_point": "scripts/main.py"}`,
			wantWarnings: []string{
				"skill.spec.json schema: risk_level: ",
			},
		},
		{
			name:       "oversized manifest still runs manifest checks",
			manifest:   `{"entry_point": "scripts/gone.py", "description": "` + strings.Repeat("a", 1<<20) + `"}`,
			wantErrors: []string{"Entry point not found: scripts/gone.py"},
			wantWarnings: []string{
				"skill.spec.json schema: not checked: ",
				"skill.spec.json description differs from SKILL.md description",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			skill := testutil.NewSkill(t, "foo").
				WithHeader("# Foo\n", header...).
				WithFile("scripts/main.py", "print('foo')\n")
			if tt.manifest != "" {
				skill.WithManifest(tt.manifest)
			}
			for rel, content := range tt.files {
				skill.WithFile(rel, content)
			}
			result := validate(t, skill.Dir)

			wantMessages(t, "errors", result.ErrorMessages(), tt.wantErrors)

			warnings := result.WarningMessages()
			if len(tt.wantWarnings) == 0 {
				wantMessages(t, "warnings", warnings, nil)
				return
			}
			if len(warnings) != len(tt.wantWarnings) {
				t.Fatalf("warnings = %q, want %d starting with %q", warnings, len(tt.wantWarnings), tt.wantWarnings)
			}
			for i, prefix := range tt.wantWarnings {
				if i >= len(warnings) || !strings.HasPrefix(warnings[i], prefix) {
					t.Errorf("warnings = %q, want [%d] to start with %q", warnings, i, prefix)
				}
			}
		})
	}
}

func TestValidateEntryPointProperty(t *testing.T) {
	t.Parallel()

	manifest := `{"name": "foo", "description": "d", "entry_point": "scripts/main.ext"}`

	missing := testutil.NewSkill(t, "foo").
		WithHeader("", "name: foo", "description: d").
		WithManifest(manifest).
		WithDir("scripts")
	result := validate(t, missing.Dir)
	wantMessages(t, "errors", result.ErrorMessages(), []string{"Entry point not found: scripts/main.ext"})

	present := testutil.NewSkill(t, "foo").
		WithHeader("", "name: foo", "description: d").
		WithManifest(manifest).
		WithFile("scripts/main.ext", "anything")
	result = validate(t, present.Dir)
	wantMessages(t, "errors", result.ErrorMessages(), nil)
}

func TestValidateScripts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		files        map[string]string
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name:         "no scripts directory",
			wantWarnings: []string{"Missing scripts/ directory"},
		},
		{
			name: "python syntax error",
			files: map[string]string{
				"scripts/main.py":   "pass\n",
				"scripts/broken.py": "def f(x]:\n    pass\n",
			},
			wantErrors: []string{"Python syntax error in broken.py: closing parenthesis ']' does not match opening parenthesis '(' (line 1)"},
		},
		{
			name: "shell and go syntax errors in name order",
			files: map[string]string{
				"scripts/main.py":  "pass\n",
				"scripts/tool.go":  "package main\n\nfunc main() {\n",
				"scripts/setup.sh": "if true; then\n",
			},
			wantErrors: []string{
				"Shell syntax error in setup.sh: ",
				"Go syntax error in tool.go: ",
			},
		},
		{
			name: "python grammar errors",
			files: map[string]string{
				"scripts/main.py":  "import requests\nreturn return\n",
				"scripts/print.py": "print \"hi\"\n",
				"scripts/util.py":  "x = = 1\n",
			},
			wantErrors: []string{
				"Python syntax error in main.py: invalid syntax (line 2)",
				"Python syntax error in print.py: Missing parentheses in call to 'print' (line 1)",
				"Python syntax error in util.py: invalid syntax (line 1)",
			},
		},
		{
			name: "unregistered files are ignored",
			files: map[string]string{
				"scripts/main.py":     "pass\n",
				"scripts/notes.txt":   "import requests (\n",
				"scripts/nested/x.py": "this is ( not python",
			},
		},
		{
			name: "dependency hints",
			files: map[string]string{
				"scripts/main.py":  "import requests\nimport numpy as np\nfrom pandas import DataFrame\n",
				"scripts/other.py": "import httpx\nimport os\n",
				"requirements.txt": "requests\nnumpy==1.26\n",
			},
			wantWarnings: []string{
				"Script imports 'requests' but requirements.txt does not mention it (expected like: requests>=2.31.0)",
				"Script imports 'httpx' but requirements.txt does not mention it (expected like: httpx)",
				"Script imports 'pandas' but requirements.txt does not mention it (expected like: pandas)",
			},
		},
		{
			name: "imports of a broken script are not counted",
			files: map[string]string{
				"scripts/main.py":  "pass\n",
				"scripts/bad.py":   "import mcp\nx = (\n",
				"requirements.txt": "",
			},
			wantErrors: []string{"Python syntax error in bad.py: '(' was never closed (line 2)"},
		},
		{
			name: "hints without requirements file",
			files: map[string]string{
				"scripts/main.py": "from mcp.server import Server\n",
			},
			wantWarnings: []string{
				"Script imports 'mcp' but requirements.txt does not mention it (expected like: mcp)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			skill := testutil.NewSkill(t, "s").
				WithHeader("", "name: s", "description: d").
				WithManifest(`{"entry_point": "SKILL.md"}`)
			for rel, content := range tt.files {
				skill.WithFile(rel, content)
			}
			result := validate(t, skill.Dir)

			errs := result.ErrorMessages()
			if len(errs) != len(tt.wantErrors) {
				t.Fatalf("errors = %q, want %q", errs, tt.wantErrors)
			}
			for i, prefix := range tt.wantErrors {
				if !strings.HasPrefix(errs[i], prefix) {
					t.Errorf("error[%d] = %q, want prefix %q", i, errs[i], prefix)
				}
			}
			wantMessages(t, "warnings", result.WarningMessages(), tt.wantWarnings)
		})
	}
}

func TestValidateUnreadableScript(t *testing.T) {
	t.Parallel()

	skill := testutil.NewSkill(t, "s").
		WithHeader("", "name: s", "description: d").
		WithManifest(`{"entry_point": "SKILL.md"}`).
		WithDir("scripts")
	if err := os.Symlink(filepath.Join(skill.Dir, "nowhere.py"), skill.Path("scripts/dangling.py")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	result := validate(t, skill.Dir)
	wantMessages(t, "errors", result.ErrorMessages(), nil)
	warnings := result.WarningMessages()
	if len(warnings) != 1 || !strings.HasPrefix(warnings[0], "Could not analyze imports in dangling.py: ") {
		t.Errorf("warnings = %q, want one import-analysis warning", warnings)
	}
}

func TestValidateIdempotent(t *testing.T) {
	t.Parallel()

	skill := testutil.NewSkill(t, "messy").
		WithHeader("[a](missing.md)\n", "name: Messy", "description: d", "owner: me").
		WithManifest(`{"name": "other", "archetype": "api-wrapper", "entry_point": "scripts/x.py"}`).
		WithFile("scripts/main.py", "import requests\n").
		WithFile("scripts/bad.py", "x = 'unterminated\n")

	first := validate(t, skill.Dir)
	second := validate(t, skill.Dir)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ between runs:\n%+v\n%+v", first, second)
	}
	if first.Passed() {
		t.Error("Passed() = true for a folder with errors")
	}
}

func TestValidateWithPolicy(t *testing.T) {
	t.Parallel()

	policy := DefaultPolicy()
	policy.AllowedTools = append(policy.AllowedTools, "WebFetch")
	policy.DependencyHints = []DependencyHint{{Module: "yaml", Hint: "pyyaml"}}
	policy.ArchetypesRequiringDeps = nil

	skill := testutil.NewSkill(t, "s").
		WithHeader("", "name: s", "description: d", "allowed-tools: Read, WebFetch").
		WithManifest(`{"archetype": "api-wrapper", "entry_point": "scripts/main.py"}`).
		WithFile("scripts/main.py", "import yaml\nimport requests\n")

	result := validate(t, skill.Dir, WithPolicy(policy))
	wantMessages(t, "errors", result.ErrorMessages(), nil)
	wantMessages(t, "warnings", result.WarningMessages(), []string{
		"Script imports 'yaml' but requirements.txt does not mention it (expected like: pyyaml)",
	})
}

func TestIssueCategories(t *testing.T) {
	t.Parallel()

	skill := testutil.NewSkill(t, "s").
		WithHeader("", "name: s", "description: d", "allowed-tools: Nope").
		WithManifest(`{"entry_point": "scripts/none.py"}`).
		WithFile("scripts/main.py", "(\n")
	result := validate(t, skill.Dir)

	var got []Category
	for _, is := range result.Errors {
		if is.Severity != SeverityError {
			t.Errorf("issue %q severity = %q", is.Message, is.Severity)
		}
		got = append(got, is.Category)
	}
	want := []Category{CategoryTools, CategoryEntryPoint, CategorySource}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("categories = %v, want %v", got, want)
	}
	if result.Errors[2].Path != "scripts/main.py" {
		t.Errorf("source issue path = %q, want scripts/main.py", result.Errors[2].Path)
	}
}

func TestLinkTargets(t *testing.T) {
	t.Parallel()

	src := "[a](one.md) `[b](code.md)` ![c](two.png)\n\n[ref]: three.md\n\nUse [ref].\n\n<https://auto.link>\n"
	got := linkTargets([]byte(src))
	want := []string{"one.md", "two.png", "three.md"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("linkTargets() = %q, want %q", got, want)
	}
}

func TestLinkTargetsWithSpaces(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want []string
	}{
		{name: "space in destination", src: "See [a](my file.md).\n", want: []string{"my file.md"}},
		{name: "image with space", src: "![chart](img/q1 chart.png)\n", want: []string{"img/q1 chart.png"}},
		{name: "after a regular link", src: "[x](one.md) then [a](my file.md)\n", want: []string{"one.md", "my file.md"}},
		{name: "inside emphasis", src: "*see [a](my file.md)*\n", want: []string{"my file.md"}},
		{name: "in heading", src: "# Read [a](two words.md)\n", want: []string{"two words.md"}},
		{name: "in code span", src: "Use `[a](my file.md)` literally.\n", want: nil},
		{name: "in fenced block", src: "```\n[a](my file.md)\n```\n", want: nil},
		{name: "link with title", src: "[a](one.md \"Title\")\n", want: []string{"one.md"}},
		{name: "prose in parentheses", src: "[note] (see below)\n", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := linkTargets([]byte(tt.src)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("linkTargets(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}
