// SPDX-License-Identifier: MPL-2.0

// Package sourcescan checks the syntax of skill scripts and collects the
// top-level modules they import.
//
// Each supported file kind is handled by a [Checker]. A [Registry] maps file
// extensions to checkers; files with an unregistered extension are not
// checked at all.
package sourcescan

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type (
	// Checker validates the syntax of one kind of source file and extracts the
	// root identifiers of the modules it imports.
	Checker interface {
		// Kind is a human-readable name for the language ("Python", "Go", ...).
		Kind() string
		// Check returns a *SyntaxError when src does not parse.
		Check(name string, src []byte) error
		// Imports returns the root module identifiers src references.
		Imports(name string, src []byte) (ImportSet, error)
	}

	// SyntaxError describes a parse failure in a source file.
	SyntaxError struct {
		// File is the name the source was checked under.
		File string
		// Line is the 1-based line of the failure, or 0 when unknown.
		Line int
		// Msg describes the failure.
		Msg string
	}

	// ImportSet is a set of top-level module identifiers.
	ImportSet map[string]struct{}

	// Registry maps lowercase file extensions (".py") to checkers.
	Registry struct {
		checkers map[string]Checker
	}
)

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}

// Add inserts id into the set.
func (s ImportSet) Add(id string) {
	if id != "" {
		s[id] = struct{}{}
	}
}

// Has reports whether id is in the set.
func (s ImportSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Union adds every identifier of other to s.
func (s ImportSet) Union(other ImportSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// Sorted returns the identifiers in lexical order.
func (s ImportSet) Sorted() []string {
	ids := maps.Keys(s)
	slices.Sort(ids)
	return ids
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{checkers: make(map[string]Checker)}
}

// DefaultRegistry returns a registry with the Python, Go and shell checkers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(PythonChecker{}, ".py")
	r.Register(GoChecker{}, ".go")
	r.Register(ShellChecker{}, ".sh", ".bash")
	return r
}

// Register associates c with each extension, replacing earlier entries.
func (r *Registry) Register(c Checker, extensions ...string) {
	for _, ext := range extensions {
		r.checkers[strings.ToLower(ext)] = c
	}
}

// For returns the checker registered for path's extension.
func (r *Registry) For(path string) (Checker, bool) {
	if r == nil {
		return nil, false
	}
	c, ok := r.checkers[strings.ToLower(filepath.Ext(path))]
	return c, ok
}

// Extensions lists the registered extensions in lexical order.
func (r *Registry) Extensions() []string {
	exts := maps.Keys(r.checkers)
	slices.Sort(exts)
	return exts
}
