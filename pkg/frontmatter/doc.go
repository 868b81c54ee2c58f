// SPDX-License-Identifier: MPL-2.0

// Package frontmatter extracts and validates the header block at the top of a
// SKILL.md document.
//
// A header is delimited by "---" lines:
//
//	---
//	name: git-commit-helper
//	description: >
//	  Summarize staged changes and draft
//	  a commit message.
//	allowed-tools: Read, Grep, Bash
//	---
//
//	# Git Commit Helper
//
// Parsing is permissive: [Extract] never fails on unknown keys, stray
// indentation or lines it does not understand; it simply skips them. All
// policy decisions are made by [Validate], which reports every violation at
// once so a single run surfaces the complete defect list.
//
// Only a small subset of YAML is understood: top-level "key: value" scalars
// (optionally quoted) and "|" / ">" block scalars. [LintYAML] re-reads the
// same span with a real YAML parser for callers that want to flag headers
// other tools would reject.
package frontmatter
