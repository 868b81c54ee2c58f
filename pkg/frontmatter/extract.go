// SPDX-License-Identifier: MPL-2.0

package frontmatter

import (
	"regexp"
	"strings"
)

const (
	// Delimiter opens and closes a header block. It must sit on its own line;
	// trailing whitespace is tolerated.
	Delimiter = "---"
)

const (
	stateKeyScan scanState = iota
	stateBlockScalar
)

const (
	styleLiteral blockStyle = iota
	styleFolded
)

var (
	delimiterPattern = regexp.MustCompile(`^---\s*$`)
	keyLinePattern   = regexp.MustCompile(`^([A-Za-z0-9_-]+)\s*:\s*(.*)$`)
)

type (
	// Block is a header extracted from the top of a document.
	//
	// Fields holds one value per key; when a key appears more than once the last
	// value wins. Keys lists every key once, in order of first appearance.
	Block struct {
		// Keys lists field names in the order they first appeared.
		Keys []string
		// Fields maps each field name to its (possibly multi-line) value.
		Fields map[string]string
		// StartLine is the 0-based line index of the opening delimiter.
		StartLine int
		// EndLine is the 0-based line index of the closing delimiter.
		EndLine int
		// Raw is the header text between the delimiters.
		Raw string
		// Body is the document text after the closing delimiter.
		Body string
	}

	scanState  int
	blockStyle int

	// scanner walks the header lines with an explicit two-state machine:
	// key-scan looks for "key: value" lines, block-scalar accumulates the
	// indented continuation of a "|" or ">" value.
	scanner struct {
		lines []string
		pos   int
		state scanState
		out   *Block

		blockKey   string
		blockStyle blockStyle
		blockLines []string
	}
)

// Get returns the value stored for key.
func (b *Block) Get(key string) (string, bool) {
	if b == nil {
		return "", false
	}
	v, ok := b.Fields[key]
	return v, ok
}

func (b *Block) set(key, value string) {
	if _, exists := b.Fields[key]; !exists {
		b.Keys = append(b.Keys, key)
	}
	b.Fields[key] = value
}

// Extract isolates the header at the top of text and parses it.
// It returns nil when text does not start with a delimiter line or the header
// is never closed. Lines the grammar does not understand are skipped.
func Extract(text string) *Block {
	lines := splitLines(text)
	if len(lines) == 0 || !delimiterPattern.MatchString(lines[0]) {
		return nil
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if delimiterPattern.MatchString(lines[i]) {
			end = i
			break
		}
	}
	if end < 0 {
		return nil
	}

	block := &Block{
		Fields:    make(map[string]string),
		StartLine: 0,
		EndLine:   end,
		Raw:       strings.Join(lines[1:end], "\n"),
		Body:      strings.Join(lines[end+1:], "\n"),
	}

	s := &scanner{lines: lines[1:end], out: block}
	s.run()

	return block
}

func (s *scanner) run() {
	for s.pos < len(s.lines) {
		switch s.state {
		case stateKeyScan:
			s.scanKey()
		case stateBlockScalar:
			s.scanBlockLine()
		}
	}
	if s.state == stateBlockScalar {
		s.finishBlock()
	}
}

func (s *scanner) scanKey() {
	line := s.lines[s.pos]
	s.pos++

	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return
	}
	// Only unindented lines may introduce a key.
	if isIndented(line) {
		return
	}

	m := keyLinePattern.FindStringSubmatch(line)
	if m == nil {
		return
	}
	key := m[1]
	value := strings.TrimSpace(m[2])

	switch {
	case strings.HasPrefix(value, "|"):
		s.beginBlock(key, styleLiteral)
	case strings.HasPrefix(value, ">"):
		s.beginBlock(key, styleFolded)
	default:
		s.out.set(key, stripQuotes(value))
	}
}

func (s *scanner) beginBlock(key string, style blockStyle) {
	s.blockKey = key
	s.blockStyle = style
	s.blockLines = nil
	s.state = stateBlockScalar
}

// scanBlockLine consumes indented and blank lines. The first non-blank
// unindented line ends the block and is left for key-scan to process.
func (s *scanner) scanBlockLine() {
	line := s.lines[s.pos]
	if strings.TrimSpace(line) != "" && !isIndented(line) {
		s.finishBlock()
		return
	}
	s.blockLines = append(s.blockLines, line)
	s.pos++
}

func (s *scanner) finishBlock() {
	lines := dedent(s.blockLines)

	var value string
	if s.blockStyle == styleLiteral {
		value = strings.TrimRight(strings.Join(lines, "\n"), "\n")
	} else {
		value = fold(lines)
	}
	s.out.set(s.blockKey, value)

	s.blockKey = ""
	s.blockLines = nil
	s.state = stateKeyScan
}

// dedent removes the indentation of the first non-blank line from every line.
// Lines indented less than that lose all of their leading whitespace; blank
// lines become empty.
func dedent(lines []string) []string {
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent = leadingWhitespace(line)
		break
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lead := leadingWhitespace(line)
		if lead >= indent {
			out[i] = line[indent:]
		} else {
			out[i] = line[lead:]
		}
	}
	return out
}

// fold joins non-blank lines with single spaces. A blank line becomes a
// newline and the next segment starts without a joining space.
func fold(lines []string) string {
	var sb strings.Builder
	lineStart := true
	for _, line := range lines {
		segment := strings.TrimSpace(line)
		if segment == "" {
			sb.WriteByte('\n')
			lineStart = true
			continue
		}
		if !lineStart {
			sb.WriteByte(' ')
		}
		sb.WriteString(segment)
		lineStart = false
	}
	return strings.TrimSpace(sb.String())
}

// stripQuotes removes one layer of matching single or double quotes.
func stripQuotes(s string) string {
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if first == last && (first == '"' || first == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

func isIndented(line string) bool {
	return line != "" && (line[0] == ' ' || line[0] == '\t')
}

func leadingWhitespace(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
