// SPDX-License-Identifier: MPL-2.0

package frontmatter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	// FieldName is the required skill identifier.
	FieldName = "name"
	// FieldDescription is the required what-and-when summary.
	FieldDescription = "description"
	// FieldAllowedTools is the optional comma-separated tool list.
	FieldAllowedTools = "allowed-tools"
	// FieldLicense is the optional license identifier.
	FieldLicense = "license"
	// FieldMetadata is the optional free-form metadata field.
	FieldMetadata = "metadata"

	// MaxNameLength bounds the name field.
	MaxNameLength = 64
	// DefaultMaxDescriptionLength bounds the description field.
	DefaultMaxDescriptionLength = 1024
)

var (
	namePattern   = regexp.MustCompile(`^[a-z0-9-]{1,64}$`)
	markupPattern = regexp.MustCompile(`<[^>]+>`)
)

// Rules is the policy applied by Validate.
type Rules struct {
	// Recognized lists the top-level keys a header may use.
	Recognized []string
	// ReservedWords may not appear anywhere in the name (case-insensitive).
	ReservedWords []string
	// MaxDescriptionLength is the maximum description length in characters.
	MaxDescriptionLength int
}

// DefaultRules returns the standard header policy.
func DefaultRules() Rules {
	return Rules{
		Recognized:           []string{FieldName, FieldDescription, FieldAllowedTools, FieldLicense, FieldMetadata},
		ReservedWords:        []string{"anthropic", "claude"},
		MaxDescriptionLength: DefaultMaxDescriptionLength,
	}
}

// Validate checks header fields against rules and returns one message per
// violation. Every rule runs even after an earlier one fails. An empty result
// means the fields are valid.
func Validate(fields map[string]string, rules Rules) []string {
	var errs []string

	if unknown := unknownKeys(fields, rules.Recognized); len(unknown) > 0 {
		allowed := slices.Clone(rules.Recognized)
		slices.Sort(allowed)
		errs = append(errs, fmt.Sprintf("Unknown frontmatter keys: %s. Allowed: %s",
			strings.Join(unknown, ", "), strings.Join(allowed, ", ")))
	}

	errs = append(errs, validateName(strings.TrimSpace(fields[FieldName]), rules)...)
	errs = append(errs, validateDescription(strings.TrimSpace(fields[FieldDescription]), rules)...)

	return errs
}

func unknownKeys(fields map[string]string, recognized []string) []string {
	var unknown []string
	for _, key := range maps.Keys(fields) {
		if !slices.Contains(recognized, key) {
			unknown = append(unknown, key)
		}
	}
	slices.Sort(unknown)
	return unknown
}

func validateName(name string, rules Rules) []string {
	if name == "" {
		return []string{"Missing required frontmatter field: " + FieldName}
	}

	var errs []string
	if !namePattern.MatchString(name) {
		errs = append(errs, "Invalid name. Must match "+namePattern.String())
	}
	if markupPattern.MatchString(name) {
		errs = append(errs, "Invalid name: must not contain XML tags")
	}
	lowered := strings.ToLower(name)
	for _, word := range rules.ReservedWords {
		if strings.Contains(lowered, strings.ToLower(word)) {
			errs = append(errs, "Invalid name: must not contain reserved words "+quoteWords(rules.ReservedWords))
			break
		}
	}
	return errs
}

func validateDescription(desc string, rules Rules) []string {
	if desc == "" {
		return []string{"Missing required frontmatter field: " + FieldDescription}
	}

	var errs []string
	limit := rules.MaxDescriptionLength
	if limit <= 0 {
		limit = DefaultMaxDescriptionLength
	}
	if utf8.RuneCountInString(desc) > limit {
		errs = append(errs, fmt.Sprintf("Description too long (>%d characters)", limit))
	}
	if markupPattern.MatchString(desc) {
		errs = append(errs, "Invalid description: must not contain XML tags")
	}
	return errs
}

// quoteWords renders ["a", "b", "c"] as `"a", "b" or "c"`.
func quoteWords(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = `"` + w + `"`
	}
	if len(quoted) < 2 {
		return strings.Join(quoted, "")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + " or " + quoted[len(quoted)-1]
}

// ParseAllowedTools splits an allowed-tools value into trimmed tool names,
// keeping their order. An enclosing "[...]" is tolerated.
func ParseAllowedTools(value string) []string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return nil
	}
	raw = strings.Trim(raw, "[]")

	var tools []string
	for _, part := range strings.Split(raw, ",") {
		if tool := strings.TrimSpace(part); tool != "" {
			tools = append(tools, tool)
		}
	}
	return tools
}
