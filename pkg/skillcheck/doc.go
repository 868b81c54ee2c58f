// SPDX-License-Identifier: MPL-2.0

// Package skillcheck validates skill folders.
//
// A skill folder holds a SKILL.md document that starts with a frontmatter
// header, a skill.spec.json manifest, and optionally a scripts/ directory
// and a requirements.txt. [Validate] runs the checks in a fixed order and
// sorts each finding into errors, which fail the skill, or warnings, which
// are advisory:
//
//  1. SKILL.md must exist; without it the run stops with a single error.
//  2. The header must be present and its fields must satisfy the policy
//     rules and the allowed-tools whitelist.
//  3. Relative link targets in the document must exist.
//  4. skill.spec.json must exist and be a well-formed JSON object. When it
//     cannot be loaded the manifest-dependent checks (5 to 7) are skipped.
//  5. Manifest name and description drifting from the header are warned on.
//  6. The manifest's entry point must exist.
//  7. Archetypes that usually need dependencies should ship requirements.txt.
//  8. Every script with a registered checker must parse, and imports with a
//     known dependency hint must be declared in requirements.txt.
//
// [Audit] applies Validate to every folder in a skills directory.
package skillcheck
