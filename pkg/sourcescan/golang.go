// SPDX-License-Identifier: MPL-2.0

package sourcescan

import (
	"errors"
	"go/parser"
	"go/scanner"
	"go/token"
	"strconv"
	"strings"
)

// GoChecker parses Go sources with go/parser.
type GoChecker struct{}

// Kind implements Checker.
func (GoChecker) Kind() string { return "Go" }

// Check implements Checker.
func (GoChecker) Check(name string, src []byte) error {
	_, err := parser.ParseFile(token.NewFileSet(), name, src, parser.SkipObjectResolution)
	return goSyntaxError(name, err)
}

// Imports implements Checker. Standard library paths reduce to their first
// element ("net/http" -> "net"); domain-qualified paths keep host, owner and
// repository ("github.com/spf13/cobra/doc" -> "github.com/spf13/cobra").
func (GoChecker) Imports(name string, src []byte) (ImportSet, error) {
	f, err := parser.ParseFile(token.NewFileSet(), name, src, parser.ImportsOnly)
	if err != nil {
		return nil, goSyntaxError(name, err)
	}

	set := make(ImportSet)
	for _, spec := range f.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		set.Add(goImportRoot(path))
	}
	return set, nil
}

func goImportRoot(path string) string {
	parts := strings.Split(path, "/")
	switch {
	case !strings.Contains(parts[0], "."):
		return parts[0]
	case len(parts) <= 3:
		return path
	default:
		return strings.Join(parts[:3], "/")
	}
}

func goSyntaxError(name string, err error) error {
	if err == nil {
		return nil
	}
	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		return &SyntaxError{File: name, Line: list[0].Pos.Line, Msg: list[0].Msg}
	}
	return &SyntaxError{File: name, Msg: err.Error()}
}
