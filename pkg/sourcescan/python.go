// SPDX-License-Identifier: MPL-2.0

package sourcescan

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

const (
	pyName pyTokenKind = iota
	pyOp
	pyString
	pyNumber
)

const pyTabSize = 8

// pyStringPrefixes lists the (lowercased) prefixes allowed before a quote.
var pyStringPrefixes = map[string]bool{
	"r": true, "u": true, "b": true, "f": true, "t": true,
	"br": true, "rb": true, "fr": true, "rf": true, "tr": true, "rt": true,
}

type (
	// PythonChecker checks Python 3 sources. A tokenizer tracks string
	// literals, bracket nesting and indentation; the tree-sitter grammar
	// then rejects malformed statements such as "x = = 1".
	PythonChecker struct{}

	pyTokenKind int

	pyToken struct {
		kind pyTokenKind
		text string
		line int
	}

	// pyLogicalLine is one logical line: physical lines joined by open
	// brackets or backslash continuations.
	pyLogicalLine struct {
		indent int
		line   int
		tokens []pyToken
	}

	pyBracket struct {
		char byte
		line int
	}

	pyLexer struct {
		src  []byte
		pos  int
		line int

		brackets []pyBracket
		current  *pyLogicalLine
		lines    []pyLogicalLine
	}
)

// Kind implements Checker.
func (PythonChecker) Kind() string { return "Python" }

// Check implements Checker. The source is tokenized first, which reports
// string, bracket and indentation errors with the interpreter's wording; the
// token stream is then parsed with the tree-sitter Python grammar.
func (PythonChecker) Check(name string, src []byte) error {
	_, err := parsePython(name, src)
	return err
}

// Imports implements Checker. Every "import a.b" and "from a.b import c"
// statement contributes its first dotted component, wherever it appears in
// the file. Relative imports contribute the named package ("from .pkg import
// x" -> "pkg"); "from . import x" contributes nothing.
func (PythonChecker) Imports(name string, src []byte) (ImportSet, error) {
	root, err := parsePython(name, src)
	if err != nil {
		return nil, err
	}
	set := make(ImportSet)
	collectPythonImports(root, src, set)
	return set, nil
}

// parsePython returns the module node of src, or a *SyntaxError.
func parsePython(name string, src []byte) (*sitter.Node, error) {
	lines, err := tokenizePython(src)
	if err != nil {
		return nil, wrapPySyntax(name, err)
	}
	if err := checkPythonIndentation(lines); err != nil {
		return nil, wrapPySyntax(name, err)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	root := tree.RootNode()
	if se := firstGrammarError(root); se != nil {
		return nil, wrapPySyntax(name, se)
	}
	return root, nil
}

func wrapPySyntax(name string, err error) error {
	if err == nil {
		return nil
	}
	var se *SyntaxError
	if errors.As(err, &se) {
		se.File = name
		return se
	}
	return &SyntaxError{File: name, Msg: err.Error()}
}

func pySyntaxError(line int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

func tokenizePython(src []byte) ([]pyLogicalLine, error) {
	lx := &pyLexer{src: src, line: 1}
	if err := lx.run(); err != nil {
		return nil, err
	}
	return lx.lines, nil
}

func (lx *pyLexer) run() error {
	for lx.pos < len(lx.src) {
		if lx.current == nil && len(lx.brackets) == 0 {
			if !lx.beginLine() {
				continue
			}
		}
		if err := lx.next(); err != nil {
			return err
		}
	}

	if n := len(lx.brackets); n > 0 {
		open := lx.brackets[n-1]
		return pySyntaxError(open.line, "'%c' was never closed", open.char)
	}
	lx.endLine()
	return nil
}

// beginLine measures the indentation of a new physical line. Blank and
// comment-only lines are consumed and reported as false.
func (lx *pyLexer) beginLine() bool {
	col := lx.measureIndent()
	if lx.pos >= len(lx.src) {
		return false
	}

	switch lx.src[lx.pos] {
	case '\n', '\r':
		lx.consumeNewline()
		return false
	case '#':
		lx.skipComment()
		return false
	}
	lx.current = &pyLogicalLine{indent: col, line: lx.line}
	return true
}

// measureIndent consumes leading whitespace and returns its width, with tabs
// advancing to the next multiple of eight.
func (lx *pyLexer) measureIndent() int {
	col := 0
	for ; lx.pos < len(lx.src); lx.pos++ {
		switch lx.src[lx.pos] {
		case ' ':
			col++
		case '\t':
			col = (col/pyTabSize + 1) * pyTabSize
		case '\f':
			col = 0
		default:
			return col
		}
	}
	return col
}

func (lx *pyLexer) next() error {
	c := lx.src[lx.pos]
	switch {
	case c == ' ' || c == '\t' || c == '\f':
		lx.pos++
	case c == '#':
		lx.skipComment()
	case c == '\n' || c == '\r':
		lx.consumeNewline()
		if len(lx.brackets) == 0 {
			lx.endLine()
		}
	case c == '\\':
		return lx.continuation()
	case c == '"' || c == '\'':
		return lx.readString(lx.pos)
	case isPyIdentStart(c):
		start := lx.pos
		for lx.pos < len(lx.src) && isPyIdentPart(lx.src[lx.pos]) {
			lx.pos++
		}
		word := string(lx.src[start:lx.pos])
		if lx.pos < len(lx.src) && (lx.src[lx.pos] == '"' || lx.src[lx.pos] == '\'') &&
			pyStringPrefixes[strings.ToLower(word)] {
			return lx.readString(start)
		}
		lx.emit(pyName, word)
	case isDigit(c) || (c == '.' && lx.pos+1 < len(lx.src) && isDigit(lx.src[lx.pos+1])):
		lx.readNumber()
	case c == '(' || c == '[' || c == '{':
		lx.brackets = append(lx.brackets, pyBracket{char: c, line: lx.line})
		lx.pos++
		lx.emit(pyOp, string(c))
	case c == ')' || c == ']' || c == '}':
		return lx.closeBracket(c)
	case c == ':' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '=':
		lx.pos += 2
		lx.emit(pyOp, ":=")
	default:
		lx.pos++
		lx.emit(pyOp, string(c))
	}
	return nil
}

func (lx *pyLexer) emit(kind pyTokenKind, text string) {
	if lx.current == nil {
		lx.current = &pyLogicalLine{line: lx.line}
	}
	lx.current.tokens = append(lx.current.tokens, pyToken{kind: kind, text: text, line: lx.line})
}

func (lx *pyLexer) endLine() {
	if lx.current != nil && len(lx.current.tokens) > 0 {
		lx.lines = append(lx.lines, *lx.current)
	}
	lx.current = nil
}

func (lx *pyLexer) consumeNewline() {
	if lx.src[lx.pos] == '\r' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '\n' {
		lx.pos++
	}
	lx.pos++
	lx.line++
}

func (lx *pyLexer) skipComment() {
	for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' && lx.src[lx.pos] != '\r' {
		lx.pos++
	}
}

func (lx *pyLexer) continuation() error {
	lx.pos++
	if lx.pos < len(lx.src) && (lx.src[lx.pos] == '\n' || lx.src[lx.pos] == '\r') {
		lx.consumeNewline()
		return nil
	}
	if lx.pos >= len(lx.src) {
		return pySyntaxError(lx.line, "unexpected EOF while parsing")
	}
	return pySyntaxError(lx.line, "unexpected character after line continuation character")
}

func (lx *pyLexer) closeBracket(c byte) error {
	n := len(lx.brackets)
	if n == 0 {
		return pySyntaxError(lx.line, "unmatched '%c'", c)
	}
	open := lx.brackets[n-1]
	if pyClosing(open.char) != c {
		if open.line == lx.line {
			return pySyntaxError(lx.line, "closing parenthesis '%c' does not match opening parenthesis '%c'", c, open.char)
		}
		return pySyntaxError(lx.line, "closing parenthesis '%c' does not match opening parenthesis '%c' on line %d", c, open.char, open.line)
	}
	lx.brackets = lx.brackets[:n-1]
	lx.pos++
	lx.emit(pyOp, string(c))
	return nil
}

// readString consumes a string literal whose prefix starts at start and
// whose opening quote is at lx.pos.
func (lx *pyLexer) readString(start int) error {
	quote := lx.src[lx.pos]
	startLine := lx.line
	triple := lx.pos+2 < len(lx.src) && lx.src[lx.pos+1] == quote && lx.src[lx.pos+2] == quote

	if triple {
		lx.pos += 3
		for lx.pos < len(lx.src) {
			c := lx.src[lx.pos]
			switch {
			case c == '\\':
				lx.pos++
				if lx.pos < len(lx.src) && (lx.src[lx.pos] == '\n' || lx.src[lx.pos] == '\r') {
					lx.consumeNewline()
					continue
				}
				lx.pos++
			case c == '\n' || c == '\r':
				lx.consumeNewline()
			case c == quote && lx.pos+2 < len(lx.src) && lx.src[lx.pos+1] == quote && lx.src[lx.pos+2] == quote:
				lx.pos += 3
				lx.emitString(start, startLine)
				return nil
			default:
				lx.pos++
			}
		}
		return pySyntaxError(startLine, "unterminated triple-quoted string literal (detected at line %d)", lx.line)
	}

	lx.pos++
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '\\':
			lx.pos++
			if lx.pos < len(lx.src) && (lx.src[lx.pos] == '\n' || lx.src[lx.pos] == '\r') {
				lx.consumeNewline()
				continue
			}
			lx.pos++
		case c == '\n' || c == '\r':
			return pySyntaxError(startLine, "unterminated string literal (detected at line %d)", lx.line)
		case c == quote:
			lx.pos++
			lx.emitString(start, startLine)
			return nil
		default:
			lx.pos++
		}
	}
	return pySyntaxError(startLine, "unterminated string literal (detected at line %d)", lx.line)
}

func (lx *pyLexer) emitString(start, line int) {
	if lx.current == nil {
		lx.current = &pyLogicalLine{line: line}
	}
	lx.current.tokens = append(lx.current.tokens, pyToken{kind: pyString, text: string(lx.src[start:lx.pos]), line: line})
}

func (lx *pyLexer) readNumber() {
	start := lx.pos
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case isPyIdentPart(c) || c == '.':
			lx.pos++
		case (c == '+' || c == '-') && lx.pos > start && (lx.src[lx.pos-1] == 'e' || lx.src[lx.pos-1] == 'E') &&
			!strings.HasPrefix(strings.ToLower(string(lx.src[start:lx.pos])), "0x"):
			lx.pos++
		default:
			lx.emit(pyNumber, string(lx.src[start:lx.pos]))
			return
		}
	}
	lx.emit(pyNumber, string(lx.src[start:lx.pos]))
}

// checkPythonIndentation verifies the block structure implied by
// indentation: a line ending in ":" must be followed by a deeper line, a
// deeper line must follow a ":" line, and dedents must land on an enclosing
// level.
func checkPythonIndentation(lines []pyLogicalLine) error {
	levels := []int{0}
	opensBlock := false

	for _, ll := range lines {
		top := levels[len(levels)-1]
		switch {
		case ll.indent > top:
			if !opensBlock {
				return pySyntaxError(ll.line, "unexpected indent")
			}
			levels = append(levels, ll.indent)
		case opensBlock:
			return pySyntaxError(ll.line, "expected an indented block")
		case ll.indent < top:
			for len(levels) > 1 && levels[len(levels)-1] > ll.indent {
				levels = levels[:len(levels)-1]
			}
			if levels[len(levels)-1] != ll.indent {
				return pySyntaxError(ll.line, "unindent does not match any outer indentation level")
			}
		}

		last := ll.tokens[len(ll.tokens)-1]
		opensBlock = last.kind == pyOp && last.text == ":"
	}

	if opensBlock {
		last := lines[len(lines)-1]
		return pySyntaxError(last.tokens[len(last.tokens)-1].line+1, "expected an indented block")
	}
	return nil
}

func pyClosing(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	default:
		return '}'
	}
}

func isPyIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isPyIdentPart(c byte) bool {
	return isPyIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
