// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
	"golang.org/x/exp/slices"
)

// ValidationError is one schema violation.
type ValidationError struct {
	// FilePath is the document being checked.
	FilePath string

	// CUEPath is the JSON path to the offending value (e.g., "triggers[1]").
	// Empty for violations that concern the document as a whole.
	CUEPath string

	// Message describes the violation.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.CUEPath != "" {
		return fmt.Sprintf("%s: %s: %s", e.FilePath, e.CUEPath, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// Violations flattens a CUE error into one ValidationError per path, sorted
// by path. The alternatives of a failed disjunction are folded into the
// violation of the disjunction itself. A non-CUE error becomes a single
// pathless violation; nil yields nil.
func Violations(err error, filePath string) []*ValidationError {
	if err == nil {
		return nil
	}

	cueErrors := errors.Errors(err)
	if len(cueErrors) == 0 {
		return []*ValidationError{{FilePath: filePath, Message: err.Error()}}
	}

	var (
		order    []string
		messages = make(map[string][]string, len(cueErrors))
	)
	for _, e := range cueErrors {
		path := formatPath(errors.Path(e))
		msg := trimPathPrefix(e.Error(), errors.Path(e))
		if _, ok := messages[path]; !ok {
			order = append(order, path)
		}
		if !slices.Contains(messages[path], msg) {
			messages[path] = append(messages[path], msg)
		}
	}

	out := make([]*ValidationError, 0, len(order))
	for _, path := range order {
		out = append(out, &ValidationError{FilePath: filePath, CUEPath: path, Message: foldMessages(messages[path])})
	}
	slices.SortStableFunc(out, func(a, b *ValidationError) int {
		return strings.Compare(a.CUEPath, b.CUEPath)
	})
	return out
}

// foldMessages joins the messages reported for one path. A disjunction
// summary ("3 errors in empty disjunction:") is replaced by the list of
// its alternatives.
func foldMessages(msgs []string) string {
	var (
		disjunction  bool
		alternatives []string
	)
	for _, msg := range msgs {
		if strings.Contains(msg, "empty disjunction") {
			disjunction = true
			continue
		}
		alternatives = append(alternatives, msg)
	}
	switch {
	case disjunction && len(alternatives) > 0:
		return "no alternative matches (" + strings.Join(alternatives, "; ") + ")"
	case disjunction:
		return strings.TrimSuffix(msgs[0], ":")
	}
	return strings.Join(alternatives, "; ")
}

// trimPathPrefix removes the "a.b.c: " prefix CUE puts in front of some
// messages, since the path is reported separately.
func trimPathPrefix(msg string, path []string) string {
	if len(path) == 0 {
		return msg
	}
	prefix := strings.Join(path, ".")
	if !strings.HasPrefix(msg, prefix) {
		return msg
	}
	rest := strings.TrimPrefix(msg, prefix)
	if !strings.HasPrefix(rest, ":") {
		return msg
	}
	return strings.TrimSpace(strings.TrimPrefix(rest, ":"))
}

// formatPath converts a CUE path such as ["#Manifest", "triggers", "1"]
// into the JSON path notation "triggers[1]". Leading definition names are
// not part of the document and are dropped.
func formatPath(path []string) string {
	for len(path) > 0 && strings.HasPrefix(path[0], "#") {
		path = path[1:]
	}
	var b strings.Builder
	for i, part := range path {
		switch {
		case i > 0 && isIndex(part):
			b.WriteString("[" + part + "]")
		case i > 0:
			b.WriteString("." + part)
		default:
			b.WriteString(part)
		}
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize returns an error when data is larger than maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes",
			filename, len(data), maxSize)
	}
	return nil
}
