// SPDX-License-Identifier: MPL-2.0

package sourcescan

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// python2Statements are statements the grammar still accepts for Python 2
// compatibility but Python 3 rejects.
var python2Statements = map[string]string{
	"print_statement": "Missing parentheses in call to 'print'",
	"exec_statement":  "Missing parentheses in call to 'exec'",
}

// firstGrammarError returns the first ERROR or MISSING node in document
// order, or a Python 2 statement, as a *SyntaxError without a file name.
func firstGrammarError(n *sitter.Node) *SyntaxError {
	if n == nil || n.IsNull() {
		return nil
	}
	line := int(n.StartPoint().Row) + 1
	switch {
	case n.Type() == "ERROR", n.IsMissing():
		return &SyntaxError{Line: line, Msg: "invalid syntax"}
	case python2Statements[n.Type()] != "":
		return &SyntaxError{Line: line, Msg: python2Statements[n.Type()]}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if se := firstGrammarError(n.Child(i)); se != nil {
			return se
		}
	}
	return nil
}

// collectPythonImports walks the tree and adds the root module of every
// import statement.
func collectPythonImports(n *sitter.Node, src []byte, set ImportSet) {
	if n == nil || n.IsNull() {
		return
	}
	switch n.Type() {
	case "import_statement":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == "aliased_import" {
				child = child.ChildByFieldName("name")
			}
			set.Add(dottedRoot(child, src))
		}
		return
	case "import_from_statement":
		module := n.ChildByFieldName("module_name")
		if module != nil && module.Type() == "relative_import" {
			module = firstNamedOfType(module, "dotted_name")
		}
		set.Add(dottedRoot(module, src))
		return
	case "future_import_statement":
		set.Add("__future__")
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		collectPythonImports(n.NamedChild(i), src, set)
	}
}

// dottedRoot returns "a" for the dotted_name "a.b.c".
func dottedRoot(n *sitter.Node, src []byte) string {
	if n == nil || n.IsNull() || n.Type() != "dotted_name" {
		return ""
	}
	root, _, _ := strings.Cut(n.Content(src), ".")
	return strings.TrimSpace(root)
}

func firstNamedOfType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() == typ {
			return child
		}
	}
	return nil
}
