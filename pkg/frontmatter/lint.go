// SPDX-License-Identifier: MPL-2.0

package frontmatter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrHeaderNotMapping is returned by LintYAML when the header parses as YAML
// but is not a key/value mapping.
var ErrHeaderNotMapping = errors.New("header is not a mapping")

// yamlLineRef matches the "line N" yaml.v3 puts in its messages.
var yamlLineRef = regexp.MustCompile(`\bline (\d+)\b`)

// headerError is a yaml.v3 error with its line numbers moved from the
// header span to the whole document.
type headerError struct {
	msg   string
	cause error
}

func (e *headerError) Error() string { return e.msg }
func (e *headerError) Unwrap() error { return e.cause }

// LintYAML parses the header span with a full YAML parser. Extract accepts
// headers that YAML rejects (for example an unquoted value containing ": "),
// so a failure here means other consumers may not read the header the same
// way. A nil block or an empty header is not an error. Line numbers in the
// returned error count from the top of the document.
func LintYAML(block *Block) error {
	if block == nil {
		return nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(block.Raw), &doc); err != nil {
		return &headerError{msg: shiftLines(err.Error(), block.StartLine+1), cause: err}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil
	}
	if root := doc.Content[0]; root.Kind != yaml.MappingNode {
		return fmt.Errorf("%w (line %d)", ErrHeaderNotMapping, root.Line+block.StartLine+1)
	}
	return nil
}

func shiftLines(msg string, offset int) string {
	return yamlLineRef.ReplaceAllStringFunc(msg, func(ref string) string {
		n, err := strconv.Atoi(ref[len("line "):])
		if err != nil {
			return ref
		}
		return "line " + strconv.Itoa(n+offset)
	})
}
