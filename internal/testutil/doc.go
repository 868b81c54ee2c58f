// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include file operations (MustWriteFile, MustReadFile,
// MustMkdirAll) and the SkillFixture builder, which lays out skill folders
// (SKILL.md, skill.spec.json, scripts/) inside a test's temporary directory.
package testutil
