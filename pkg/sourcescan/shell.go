// SPDX-License-Identifier: MPL-2.0

package sourcescan

import (
	"bytes"
	"errors"
	"path"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// ShellChecker parses shell scripts as Bash with mvdan.cc/sh.
type ShellChecker struct{}

// Kind implements Checker.
func (ShellChecker) Kind() string { return "Shell" }

// Check implements Checker.
func (ShellChecker) Check(name string, src []byte) error {
	_, err := parseShell(name, src)
	return err
}

// Imports implements Checker. Shell has no module system; the files a script
// pulls in with "source" or "." are reported by base name without extension.
// Targets built from expansions are ignored.
func (ShellChecker) Imports(name string, src []byte) (ImportSet, error) {
	file, err := parseShell(name, src)
	if err != nil {
		return nil, err
	}

	set := make(ImportSet)
	syntax.Walk(file, func(node syntax.Node) bool {
		call, ok := node.(*syntax.CallExpr)
		if !ok || len(call.Args) < 2 {
			return true
		}
		switch call.Args[0].Lit() {
		case "source", ".":
			target := call.Args[1].Lit()
			if target == "" {
				return true
			}
			base := path.Base(target)
			set.Add(strings.TrimSuffix(base, path.Ext(base)))
		}
		return true
	})
	return set, nil
}

func parseShell(name string, src []byte) (*syntax.File, error) {
	file, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(bytes.NewReader(src), name)
	if err == nil {
		return file, nil
	}

	var parseErr syntax.ParseError
	if errors.As(err, &parseErr) {
		return nil, &SyntaxError{File: name, Line: int(parseErr.Pos.Line()), Msg: parseErr.Text}
	}
	var langErr syntax.LangError
	if errors.As(err, &langErr) {
		return nil, &SyntaxError{File: name, Line: int(langErr.Pos.Line()), Msg: langErr.Feature + " is not supported"}
	}
	return nil, &SyntaxError{File: name, Msg: err.Error()}
}
