// SPDX-License-Identifier: MPL-2.0

// Package skillmanifest loads skill.spec.json, the JSON manifest that sits
// next to a skill's SKILL.md.
//
// Loading is lenient: any well-formed JSON object is accepted, fields of an
// unexpected type are left empty, and the document is additionally checked
// against an embedded CUE schema whose violations are reported separately so
// callers can treat them as advisory.
package skillmanifest

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/skillforge/skillforge/pkg/cueutil"
)

// FileName is the manifest's name inside a skill folder.
const FileName = "skill.spec.json"

// Risk levels accepted by the schema.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

var (
	//go:embed manifest_schema.cue
	schema []byte

	// ErrNotFound is returned by Load when the manifest file does not exist.
	ErrNotFound = errors.New("manifest not found")

	// ErrNotObject is returned when the manifest is valid JSON but its
	// top-level value is not an object.
	ErrNotObject = errors.New("top-level value must be a JSON object")
)

type (
	// Manifest is the decoded content of skill.spec.json.
	Manifest struct {
		Name            string   `json:"name,omitempty"`
		Title           string   `json:"title,omitempty"`
		Description     string   `json:"description,omitempty"`
		Archetype       string   `json:"archetype,omitempty"`
		RiskLevel       string   `json:"risk_level,omitempty"`
		EntryPoint      string   `json:"entry_point,omitempty"`
		Triggers        []string `json:"triggers,omitempty"`
		AntiTriggers    []string `json:"anti_triggers,omitempty"`
		AcceptanceTests []string `json:"acceptance_tests,omitempty"`

		// Violations lists schema mismatches found while parsing. They do not
		// prevent the manifest from being used.
		Violations []*cueutil.ValidationError `json:"-"`
	}

	// ParseError reports a manifest that is not a well-formed JSON object.
	ParseError struct {
		File string
		Err  error
	}
)

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Reason())
}

// Unwrap returns the underlying decode error.
func (e *ParseError) Unwrap() error { return e.Err }

// Reason describes the failure without the file name. JSON syntax errors
// carry the line and column of the offending byte.
func (e *ParseError) Reason() string {
	return e.Err.Error()
}

// Load reads and parses the manifest at path. A missing file yields an error
// wrapping ErrNotFound; malformed content yields a *ParseError.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes a manifest. filename is only used in messages.
func Parse(data []byte, filename string) (*Manifest, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{File: filename, Err: describeJSONError(data, err)}
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, &ParseError{File: filename, Err: ErrNotObject}
	}

	m := &Manifest{
		Name:            stringField(obj, "name"),
		Title:           stringField(obj, "title"),
		Description:     stringField(obj, "description"),
		Archetype:       stringField(obj, "archetype"),
		RiskLevel:       stringField(obj, "risk_level"),
		EntryPoint:      stringField(obj, "entry_point"),
		Triggers:        listField(obj, "triggers"),
		AntiTriggers:    listField(obj, "anti_triggers"),
		AcceptanceTests: listField(obj, "acceptance_tests"),
	}

	// The schema check is advisory; an oversized manifest is still usable.
	if int64(len(data)) > cueutil.DefaultMaxFileSize {
		m.Violations = []*cueutil.ValidationError{{
			FilePath: filename,
			Message:  fmt.Sprintf("not checked: %d bytes exceeds the %d byte limit", len(data), cueutil.DefaultMaxFileSize),
		}}
		return m, nil
	}

	violations, err := cueutil.Check(schema, data, "#Manifest", cueutil.WithFilename(filename))
	if err != nil {
		return nil, fmt.Errorf("check manifest schema: %w", err)
	}
	m.Violations = violations
	return m, nil
}

// Marshal renders m as indented JSON with a trailing newline.
func (m *Manifest) Marshal() ([]byte, error) {
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func listField(obj map[string]any, key string) []string {
	items, ok := obj[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// describeJSONError adds a line and column to syntax errors.
func describeJSONError(data []byte, err error) error {
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return err
	}
	pos := min(max(int(syntaxErr.Offset)-1, 0), len(data))
	before := string(data[:pos])
	line := strings.Count(before, "\n") + 1
	col := pos - strings.LastIndex(before, "\n")
	return fmt.Errorf("%w (line %d, column %d)", err, line, col)
}
