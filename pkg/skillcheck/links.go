// SPDX-License-Identifier: MPL-2.0

package skillcheck

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// spacedLink matches an inline link whose destination contains a space.
// CommonMark does not treat that as a link, but authors mean one.
var spacedLink = regexp.MustCompile(`!?\[[^\]\n]*\]\(([^()<>"'\n]*\S[ \t]+\S[^()<>"'\n]*)\)`)

// linkTargets returns the destinations of every inline or reference link and
// image in a Markdown document. Code spans and fenced blocks are not links
// and are not reported. Destinations with an unescaped space, which the
// Markdown parser leaves as plain text, follow the links of their block.
func linkTargets(src []byte) []string {
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var targets []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Link:
			if entering {
				targets = append(targets, strings.TrimSpace(string(node.Destination)))
			}
		case *ast.Image:
			if entering {
				targets = append(targets, strings.TrimSpace(string(node.Destination)))
			}
		case *ast.Paragraph, *ast.TextBlock, *ast.Heading:
			if !entering {
				targets = append(targets, spacedTargets(n, src)...)
			}
		}
		return ast.WalkContinue, nil
	})
	return targets
}

// spacedTargets scans the plain text of one block for links the parser
// rejected because of a space in the destination.
func spacedTargets(block ast.Node, src []byte) []string {
	var buf bytes.Buffer
	plainText(block, src, &buf)

	var out []string
	for _, m := range spacedLink.FindAllSubmatch(buf.Bytes(), -1) {
		out = append(out, strings.TrimSpace(string(m[1])))
	}
	return out
}

// plainText writes the literal text of n's inline children. Code spans,
// links and raw HTML become line breaks so nothing matches across them.
func plainText(n ast.Node, src []byte, buf *bytes.Buffer) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(node.Value)
		case *ast.CodeSpan, *ast.Link, *ast.Image, *ast.AutoLink, *ast.RawHTML:
			buf.WriteByte('\n')
		default:
			plainText(c, src, buf)
		}
	}
}
