// SPDX-License-Identifier: MPL-2.0

package skillcheck

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/slices"

	"github.com/skillforge/skillforge/pkg/frontmatter"
	"github.com/skillforge/skillforge/pkg/skillmanifest"
	"github.com/skillforge/skillforge/pkg/sourcescan"
)

// Well-known names inside a skill folder.
const (
	DocumentFile     = "SKILL.md"
	ManifestFile     = skillmanifest.FileName
	RequirementsFile = "requirements.txt"
	ScriptsDir       = "scripts"
)

// ErrNotDirectory is returned when the path to validate is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// run carries the state of one validation pass over a folder.
type run struct {
	dir    string
	policy Policy
	logger *log.Logger
	result *Result

	header   *frontmatter.Block
	manifest *skillmanifest.Manifest
}

// Validate checks the skill folder at dir and returns every finding.
//
// The returned error is reserved for problems that prevent validation from
// starting at all: dir missing or not a directory, or ctx being done. Any
// problem with the folder's content is reported in the Result.
func Validate(ctx context.Context, dir string, opts ...Option) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := requireDir(dir); err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	r := &run{
		dir:    dir,
		policy: o.policy,
		logger: o.logger.With("skill", filepath.Base(dir)),
		result: newResult(dir),
	}
	if err := r.execute(ctx); err != nil {
		return nil, err
	}

	r.logger.Debug("validation finished",
		"errors", len(r.result.Errors), "warnings", len(r.result.Warnings))
	return r.result, nil
}

func requireDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("skill folder: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}
	return nil
}

func (r *run) execute(ctx context.Context) error {
	text, ok := r.readDocument()
	if !ok {
		return nil
	}

	r.checkHeader(text)
	r.checkLinks(text)

	if r.loadManifest() {
		r.crossCheck()
		r.checkEntryPoint()
		r.checkArchetypeDeps()
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	r.checkScripts()
	return nil
}

// readDocument loads SKILL.md. A missing document ends the run with a single
// error.
func (r *run) readDocument() (string, bool) {
	data, err := os.ReadFile(filepath.Join(r.dir, DocumentFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		r.result.AddError(CategoryHeader, DocumentFile, "Missing SKILL.md")
		return "", false
	case err != nil:
		r.result.AddError(CategoryHeader, DocumentFile, fmt.Sprintf("Could not read SKILL.md: %v", err))
		return "", false
	}
	return string(data), true
}

func (r *run) checkHeader(text string) {
	r.header = frontmatter.Extract(text)
	if r.header == nil {
		r.logger.Debug("no frontmatter found")
		r.result.AddError(CategoryHeader, DocumentFile,
			"SKILL.md must start with YAML frontmatter delimited by --- lines")
		return
	}
	r.logger.Debug("frontmatter extracted", "keys", r.header.Keys, "lines", r.header.EndLine)

	for _, msg := range frontmatter.Validate(r.header.Fields, r.policy.Rules) {
		r.result.AddError(CategoryField, DocumentFile, msg)
	}

	if raw, _ := r.header.Get(frontmatter.FieldAllowedTools); strings.TrimSpace(raw) != "" {
		var unknown []string
		for _, tool := range frontmatter.ParseAllowedTools(raw) {
			if !slices.Contains(r.policy.AllowedTools, tool) {
				unknown = append(unknown, tool)
			}
		}
		if len(unknown) > 0 {
			known := slices.Clone(r.policy.AllowedTools)
			slices.Sort(known)
			r.result.AddError(CategoryTools, DocumentFile, fmt.Sprintf(
				"Unknown tool(s) in allowed-tools: %s. Known: %s",
				strings.Join(unknown, ", "), strings.Join(known, ", ")))
		}
	}

	if err := frontmatter.LintYAML(r.header); err != nil {
		r.result.AddWarning(CategoryHeader, DocumentFile,
			fmt.Sprintf("SKILL.md frontmatter is not valid YAML: %v", err))
	}
}

// checkLinks reports relative link targets that do not exist.
func (r *run) checkLinks(text string) {
	body := text
	if r.header != nil {
		body = r.header.Body
	}

	for _, target := range linkTargets([]byte(body)) {
		if strings.Contains(target, "://") || strings.HasPrefix(target, "#") {
			continue
		}
		if i := strings.Index(target, "#"); i >= 0 {
			target = target[:i]
		}
		if target == "" {
			continue
		}
		if !exists(r.resolve(target)) {
			r.result.AddError(CategoryLink, DocumentFile, "Broken link target: "+target)
		}
	}
}

// loadManifest reports whether skill.spec.json was loaded.
func (r *run) loadManifest() bool {
	m, err := skillmanifest.Load(filepath.Join(r.dir, ManifestFile))
	if err != nil {
		var parseErr *skillmanifest.ParseError
		switch {
		case errors.Is(err, skillmanifest.ErrNotFound):
			r.result.AddError(CategoryManifest, ManifestFile, "Missing skill.spec.json")
		case errors.As(err, &parseErr):
			r.result.AddError(CategoryManifest, ManifestFile, "Invalid skill.spec.json: "+parseErr.Reason())
		default:
			r.result.AddError(CategoryManifest, ManifestFile, fmt.Sprintf("Invalid skill.spec.json: %v", err))
		}
		r.logger.Debug("manifest not loaded", "error", err)
		return false
	}

	r.manifest = m
	for _, v := range m.Violations {
		msg := "skill.spec.json schema: " + v.Message
		if v.CUEPath != "" {
			msg = fmt.Sprintf("skill.spec.json schema: %s: %s", v.CUEPath, v.Message)
		}
		r.result.AddWarning(CategoryManifest, ManifestFile, msg)
	}
	r.logger.Debug("manifest loaded", "archetype", m.Archetype, "entry_point", m.EntryPoint)
	return true
}

// crossCheck flags drift between the header and the manifest.
func (r *run) crossCheck() {
	if r.header == nil {
		return
	}

	headerName, _ := r.header.Get(frontmatter.FieldName)
	headerName = strings.TrimSpace(headerName)
	if r.manifest.Name != "" && r.manifest.Name != headerName {
		r.result.AddWarning(CategoryManifest, ManifestFile, fmt.Sprintf(
			"skill.spec.json name '%s' does not match SKILL.md name '%s'", r.manifest.Name, headerName))
	}

	headerDesc, _ := r.header.Get(frontmatter.FieldDescription)
	if r.manifest.Description != "" && r.manifest.Description != strings.TrimSpace(headerDesc) {
		r.result.AddWarning(CategoryManifest, ManifestFile,
			"skill.spec.json description differs from SKILL.md description")
	}
}

func (r *run) checkEntryPoint() {
	entry := strings.TrimSpace(r.manifest.EntryPoint)
	if entry == "" {
		r.result.AddWarning(CategoryEntryPoint, ManifestFile, "skill.spec.json missing entry_point")
		return
	}
	if !exists(r.resolve(entry)) {
		r.result.AddError(CategoryEntryPoint, entry, "Entry point not found: "+entry)
	}
}

func (r *run) checkArchetypeDeps() {
	archetype := strings.TrimSpace(r.manifest.Archetype)
	if !slices.Contains(r.policy.ArchetypesRequiringDeps, archetype) {
		return
	}
	if !exists(filepath.Join(r.dir, RequirementsFile)) {
		r.result.AddWarning(CategoryDependencies, RequirementsFile, fmt.Sprintf(
			"Archetype '%s' typically needs requirements.txt (deps). Missing.", archetype))
	}
}

// resolve joins a folder-relative path onto the skill folder. Absolute paths
// are used as given.
func (r *run) resolve(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(r.dir, filepath.FromSlash(rel))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// checkScripts syntax-checks every file in scripts/ that has a registered
// checker and compares the union of their imports against requirements.txt.
func (r *run) checkScripts() {
	entries, err := os.ReadDir(filepath.Join(r.dir, ScriptsDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.result.AddWarning(CategorySource, ScriptsDir, "Missing scripts/ directory")
		} else {
			r.result.AddWarning(CategorySource, ScriptsDir, fmt.Sprintf("Could not list scripts/ directory: %v", err))
		}
		return
	}

	imports := make(sourcescan.ImportSet)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		checker, ok := r.policy.Checkers.For(entry.Name())
		if !ok {
			continue
		}
		if found, ok := r.checkScript(checker, entry.Name()); ok {
			imports.Union(found)
		}
	}
	r.logger.Debug("scripts scanned", "imports", imports.Sorted())

	requirements := r.readRequirements()
	for _, hint := range r.policy.DependencyHints {
		if imports.Has(hint.Module) && !strings.Contains(requirements, hint.Hint) {
			r.result.AddWarning(CategoryDependencies, RequirementsFile, fmt.Sprintf(
				"Script imports '%s' but requirements.txt does not mention it (expected like: %s)",
				hint.Module, hint.Hint))
		}
	}
}

// checkScript reports whether the script parsed, and if so its imports.
func (r *run) checkScript(checker sourcescan.Checker, name string) (sourcescan.ImportSet, bool) {
	rel := ScriptsDir + "/" + name
	src, err := os.ReadFile(filepath.Join(r.dir, ScriptsDir, name))
	if err != nil {
		r.result.AddWarning(CategorySource, rel, fmt.Sprintf("Could not analyze imports in %s: %v", name, err))
		return nil, false
	}

	if err := checker.Check(name, src); err != nil {
		r.result.AddError(CategorySource, rel, syntaxMessage(checker.Kind(), name, err))
		return nil, false
	}

	found, err := checker.Imports(name, src)
	if err != nil {
		r.result.AddWarning(CategorySource, rel, fmt.Sprintf("Could not analyze imports in %s: %v", name, err))
		return nil, false
	}
	r.logger.Debug("script checked", "file", name, "kind", checker.Kind(), "imports", len(found))
	return found, true
}

func syntaxMessage(kind, name string, err error) string {
	var se *sourcescan.SyntaxError
	if !errors.As(err, &se) {
		return fmt.Sprintf("%s syntax error in %s: %v", kind, name, err)
	}
	if se.Line > 0 {
		return fmt.Sprintf("%s syntax error in %s: %s (line %d)", kind, name, se.Msg, se.Line)
	}
	return fmt.Sprintf("%s syntax error in %s: %s", kind, name, se.Msg)
}

// readRequirements returns requirements.txt, or "" when it cannot be read.
func (r *run) readRequirements() string {
	data, err := os.ReadFile(filepath.Join(r.dir, RequirementsFile))
	if err != nil {
		return ""
	}
	return string(data)
}
