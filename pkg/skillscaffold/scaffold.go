// SPDX-License-Identifier: MPL-2.0

// Package skillscaffold creates new skill folders from embedded archetype
// templates.
//
// Template files live under templates/<archetype>/. A ".tpl" suffix is
// dropped from the output name, and every "{{VAR}}" placeholder is replaced
// with the matching request value. The manifest (skill.spec.json) is not a
// template: it is generated from the request so that it always agrees with
// the SKILL.md header.
package skillscaffold

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/skillforge/skillforge/pkg/skillmanifest"
)

const templateSuffix = ".tpl"

var (
	//go:embed templates
	templateFS embed.FS

	nameRE = regexp.MustCompile(`^[a-z0-9-]{1,64}$`)

	// ErrExists is returned when the target folder exists and Force is off.
	ErrExists = errors.New("skill folder already exists")
	// ErrInvalidName is returned for names outside ^[a-z0-9-]{1,64}$.
	ErrInvalidName = errors.New("invalid name: must match ^[a-z0-9-]{1,64}$")
	// ErrMissingName is returned when neither a name nor a title is given.
	ErrMissingName = errors.New("a name or a title is required")
	// ErrMissingDescription is returned when the description is empty.
	ErrMissingDescription = errors.New("a description is required")
	// ErrUnknownArchetype is returned for an archetype that has no templates.
	ErrUnknownArchetype = errors.New("unknown archetype")
	// ErrUnknownRisk is returned for a risk level outside low/medium/high.
	ErrUnknownRisk = errors.New("unknown risk level")
)

type (
	// Request describes the skill to create.
	Request struct {
		// Name is the folder and skill name. Derived from Title when empty.
		Name string
		// Title is the human-readable heading. Derived from Name when empty.
		Title string
		// Description says what the skill does and when to use it.
		Description string
		// Archetype selects the template set (DefaultArchetype when empty).
		Archetype string
		// Risk is low, medium or high (DefaultRisk when empty).
		Risk string
		// OutputDir receives the new folder.
		OutputDir string
		// Force replaces an existing folder.
		Force bool
	}

	// Skill is a newly created skill folder.
	Skill struct {
		// Dir is OutputDir joined with the skill name.
		Dir string
		// Files lists the written files, slash-separated and sorted.
		Files []string
		// Manifest is the content written to skill.spec.json.
		Manifest *skillmanifest.Manifest
	}

	// Option configures Create.
	Option func(*options)

	options struct {
		logger *log.Logger
	}
)

// WithLogger sets the logger used to report written files.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Create validates req, fills in defaults and writes the new skill folder.
func Create(req Request, opts ...Option) (*Skill, error) {
	o := options{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(&o)
	}

	req, archetype, err := normalize(req)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(req.OutputDir, req.Name)
	if err := prepareDir(dir, req.Force); err != nil {
		return nil, err
	}

	vars := variables(req, archetype)
	files, err := renderTemplates(archetype.Name, dir, vars, o.logger)
	if err != nil {
		return nil, err
	}

	manifest := &skillmanifest.Manifest{
		Name:        req.Name,
		Title:       req.Title,
		Description: req.Description,
		Archetype:   archetype.Name,
		RiskLevel:   req.Risk,
		EntryPoint:  archetype.EntryPoint,
		Triggers:    []string{"TODO: add trigger 1", "TODO: add trigger 2", "TODO: add trigger 3"},
		AntiTriggers: []string{
			"TODO: add anti-trigger 1", "TODO: add anti-trigger 2",
		},
		AcceptanceTests: []string{
			"TODO: add acceptance test 1", "TODO: add acceptance test 2", "TODO: add acceptance test 3",
		},
	}
	data, err := manifest.Marshal()
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, skillmanifest.FileName), data, 0o644); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	files = append(files, skillmanifest.FileName)
	slices.Sort(files)

	o.logger.Debug("skill created", "dir", dir, "archetype", archetype.Name, "files", len(files))
	return &Skill{Dir: dir, Files: files, Manifest: manifest}, nil
}

func normalize(req Request) (Request, Archetype, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)

	if req.Name == "" {
		if req.Title == "" {
			return req, Archetype{}, ErrMissingName
		}
		req.Name = Slugify(req.Title)
	}
	if !nameRE.MatchString(req.Name) {
		return req, Archetype{}, fmt.Errorf("%q: %w", req.Name, ErrInvalidName)
	}
	if req.Title == "" {
		req.Title = TitleFromName(req.Name)
	}
	if req.Description == "" {
		return req, Archetype{}, ErrMissingDescription
	}

	if req.Archetype == "" {
		req.Archetype = DefaultArchetype
	}
	archetype, ok := LookupArchetype(req.Archetype)
	if !ok {
		return req, Archetype{}, fmt.Errorf("%q: %w (known: %s)",
			req.Archetype, ErrUnknownArchetype, strings.Join(ArchetypeNames(), ", "))
	}

	req.Risk = strings.ToLower(strings.TrimSpace(req.Risk))
	if req.Risk == "" {
		req.Risk = DefaultRisk
	}
	if !slices.Contains(riskLevels, req.Risk) {
		return req, Archetype{}, fmt.Errorf("%q: %w (known: %s)",
			req.Risk, ErrUnknownRisk, strings.Join(riskLevels, ", "))
	}

	if req.OutputDir == "" {
		req.OutputDir = "."
	}
	return req, archetype, nil
}

// prepareDir creates dir, first removing an existing entry when force is set.
func prepareDir(dir string, force bool) error {
	if _, err := os.Lstat(dir); err == nil {
		if !force {
			return fmt.Errorf("%s: %w", dir, ErrExists)
		}
		if err := safeRemove(dir); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create skill folder: %w", err)
	}
	return nil
}

// safeRemove deletes target without following symlinks: a symlink is
// unlinked and what it points at is left alone.
func safeRemove(target string) error {
	info, err := os.Lstat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("inspect %s: %w", target, err)
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		if err := os.Remove(target); err != nil {
			return fmt.Errorf("remove symlink %s: %w", target, err)
		}
		return nil
	}
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("remove %s: %w", target, err)
	}
	return nil
}

func variables(req Request, a Archetype) map[string]string {
	return map[string]string{
		"SKILL_NAME":         req.Name,
		"SKILL_TITLE":        req.Title,
		"DESCRIPTION":        req.Description,
		"DESCRIPTION_SCALAR": headerScalar(req.Description),
		"RISK_LEVEL":         req.Risk,
		"ALLOWED_TOOLS":      strings.Join(AllowedToolsFor(req.Risk), ", "),
		"ARCHETYPE":          a.Name,
		"ENTRY_POINT":        a.EntryPoint,
	}
}

// Render replaces every {{VAR}} placeholder in text. Unknown placeholders
// are left untouched.
func Render(text string, vars map[string]string) string {
	keys := maps.Keys(vars)
	slices.Sort(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{{"+k+"}}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// headerScalar quotes s when writing it bare would not read back as the same
// YAML string.
func headerScalar(s string) string {
	plain := !strings.Contains(s, ": ") && !strings.Contains(s, " #") &&
		!strings.HasSuffix(s, ":") && !strings.ContainsAny(s[:1], "!&*-?[]{}|>'\"%@`,#")
	switch {
	case plain:
		return s
	case !strings.Contains(s, "'"):
		return "'" + s + "'"
	case !strings.ContainsAny(s, "\"\\"):
		return `"` + s + `"`
	default:
		return s
	}
}

func renderTemplates(archetype, dir string, vars map[string]string, logger *log.Logger) ([]string, error) {
	root := path.Join("templates", archetype)
	var written []string

	err := fs.WalkDir(templateFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel := strings.TrimSuffix(strings.TrimPrefix(p, root+"/"), templateSuffix)
		content, err := templateFS.ReadFile(p)
		if err != nil {
			return err
		}

		out := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(out, []byte(Render(string(content), vars)), 0o644); err != nil {
			return err
		}
		logger.Debug("wrote file", "path", rel)
		written = append(written, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("render %s templates: %w", archetype, err)
	}
	return written, nil
}
