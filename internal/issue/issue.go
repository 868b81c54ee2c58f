// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Id identifies a guide.
type Id int

const (
	DocumentNotFoundId Id = iota + 1
	HeaderInvalidId
	FieldInvalidId
	UnknownToolId
	BrokenLinkId
	ManifestInvalidId
	EntryPointMissingId
	DependenciesMissingId
	SourceSyntaxErrorId
	ConfigLoadFailedId
	SkillExistsId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

// Issue is a Markdown troubleshooting guide for one kind of problem.
type Issue struct {
	id       Id          // ID used to lookup the issue
	name     string      // slug accepted by 'skillforge explain'
	category string      // validation category the guide covers, if any
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) Name() string {
	return i.name
}

func (i *Issue) Category() string {
	return i.category
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the guide, followed by its links, with glamour.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("\n- <" + string(link) + ">")
		}
		for _, link := range i.extLinks {
			md.WriteString("\n- <" + string(link) + ">")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	skillsDocs HttpLink = "https://docs.anthropic.com/en/docs/claude-code/skills"

	documentNotFoundIssue = &Issue{
		id:       DocumentNotFoundId,
		name:     "missing-skill-md",
		category: "header",
		mdMsg: `
# No SKILL.md found!

Every skill folder needs a ` + "`SKILL.md`" + ` at its top level. Nothing else in
the folder is checked until it exists.

## Things you can try:
- Check that you passed the skill folder itself, not its parent:
~~~
$ skillforge validate .claude/skills/my-skill
~~~

- Audit every skill in a folder instead:
~~~
$ skillforge audit --skills-dir .claude/skills
~~~

- Create a new skill from a template:
~~~
$ skillforge create --name my-skill --description "What it does and when to use it"
~~~`,
		docLinks: []HttpLink{skillsDocs},
	}

	headerInvalidIssue = &Issue{
		id:       HeaderInvalidId,
		name:     "header",
		category: "header",
		mdMsg: `
# The SKILL.md header is missing or malformed!

The header is a block of ` + "`key: value`" + ` lines between two lines that
contain only ` + "`---`" + `, at the very top of the file.

## Things you can try:
- Make the first line of the file exactly ` + "`---`" + `
- Close the header with another ` + "`---`" + ` line
- Use one of the recognized keys: name, description, allowed-tools, license, metadata

## Example header:
~~~markdown
---
name: release-notes
description: Drafts release notes from merged pull requests. Use when the user asks for a changelog.
allowed-tools: Read, Grep, Bash
---
~~~`,
		docLinks: []HttpLink{skillsDocs},
	}

	fieldInvalidIssue = &Issue{
		id:       FieldInvalidId,
		name:     "fields",
		category: "field",
		mdMsg: `
# A header field is invalid!

## Rules:
- **name**: 1 to 64 characters of lowercase letters, digits and hyphens.
  It must not contain "anthropic" or "claude", nor any XML tag.
- **description**: required, at most 1024 characters, no XML tags.
- Only name, description, allowed-tools, license and metadata are recognized.

## Things you can try:
- Rename ` + "`My_Skill`" + ` to ` + "`my-skill`" + `
- Move long explanations from the description into the body of SKILL.md
- Put custom keys under metadata`,
		docLinks: []HttpLink{skillsDocs},
	}

	unknownToolIssue = &Issue{
		id:       UnknownToolId,
		name:     "allowed-tools",
		category: "tools",
		mdMsg: `
# Unknown tool in allowed-tools!

` + "`allowed-tools`" + ` is a comma-separated list. Each entry must be a known tool;
a parenthesized qualifier such as ` + "`Bash(git:*)`" + ` is allowed.

## Things you can try:
- Check the spelling and capitalization of each tool
- Remove tools the skill does not need
- Extend the whitelist in your configuration file:
~~~toml
[policy]
allowed_tools = ["Read", "Write", "Grep", "Glob", "Bash", "WebFetch"]
~~~`,
	}

	brokenLinkIssue = &Issue{
		id:       BrokenLinkId,
		name:     "links",
		category: "link",
		mdMsg: `
# Broken relative link!

A Markdown link in SKILL.md points at a file that is not in the skill folder.
Links with a scheme (` + "`https://`" + `) and in-page anchors (` + "`#usage`" + `) are not checked.

## Things you can try:
- Make link targets relative to the skill folder: ` + "`[run](scripts/main.py)`" + `
- Add the missing file, or remove the link`,
	}

	manifestInvalidIssue = &Issue{
		id:       ManifestInvalidId,
		name:     "manifest",
		category: "manifest",
		mdMsg: `
# skill.spec.json is missing or invalid!

The manifest must be a JSON object. When it is missing or does not parse,
the manifest checks (name cross-check, entry point and dependencies) are skipped.

## Example manifest:
~~~json
{
  "name": "release-notes",
  "archetype": "basic",
  "risk_level": "low",
  "entry_point": "scripts/main.py"
}
~~~`,
	}

	entryPointMissingIssue = &Issue{
		id:       EntryPointMissingId,
		name:     "entry-point",
		category: "entry_point",
		mdMsg: `
# Entry point not found!

The ` + "`entry_point`" + ` in skill.spec.json names a file, relative to the skill
folder, that does not exist.

## Things you can try:
- Fix the path in the manifest
- Add the script at that path`,
	}

	dependenciesMissingIssue = &Issue{
		id:       DependenciesMissingId,
		name:     "dependencies",
		category: "dependencies",
		mdMsg: `
# Dependency may be missing from requirements.txt!

A script in scripts/ imports a third-party module that is not mentioned in
requirements.txt. This is a warning: the skill still passes.

## Things you can try:
- Add the package to requirements.txt:
~~~
requests>=2.31.0
~~~

- Teach the checker about other modules in your configuration file:
~~~toml
[[policy.dependency_hints]]
module = "yaml"
hint = "pyyaml"
~~~`,
	}

	sourceSyntaxErrorIssue = &Issue{
		id:       SourceSyntaxErrorId,
		name:     "syntax",
		category: "source",
		mdMsg: `
# Syntax error in a script!

A file in scripts/ does not parse. Python, Go and shell scripts are checked.

## Things you can try:
- Check the reported line for unclosed brackets, quotes or blocks
- Run the file through its own toolchain, for example:
~~~
$ python -m py_compile scripts/main.py
$ bash -n scripts/setup.sh
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id:   ConfigLoadFailedId,
		name: "config",
		mdMsg: `
# Failed to load configuration!

skillforge reads TOML from the file given with --config, otherwise from
config.toml in your configuration directory, otherwise from ./skillforge.toml.
The built-in defaults are used while the file is broken.

## Things you can try:
- Show where the configuration is read from:
~~~
$ skillforge config path
~~~

- Write a fresh file with every default:
~~~
$ skillforge config init --force
~~~`,
	}

	skillExistsIssue = &Issue{
		id:   SkillExistsId,
		name: "skill-exists",
		mdMsg: `
# The skill folder already exists!

create never overwrites a folder unless asked to.

## Things you can try:
- Pick another --name
- Replace the folder (a symlink is removed, never followed):
~~~
$ skillforge create --name my-skill --description "..." --force
~~~`,
	}

	issues = map[Id]*Issue{
		documentNotFoundIssue.Id():    documentNotFoundIssue,
		headerInvalidIssue.Id():       headerInvalidIssue,
		fieldInvalidIssue.Id():        fieldInvalidIssue,
		unknownToolIssue.Id():         unknownToolIssue,
		brokenLinkIssue.Id():          brokenLinkIssue,
		manifestInvalidIssue.Id():     manifestInvalidIssue,
		entryPointMissingIssue.Id():   entryPointMissingIssue,
		dependenciesMissingIssue.Id(): dependenciesMissingIssue,
		sourceSyntaxErrorIssue.Id():   sourceSyntaxErrorIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		skillExistsIssue.Id():         skillExistsIssue,
	}
)

// Values returns every guide ordered by Id.
func Values() []*Issue {
	out := maps.Values(issues)
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}

// Lookup finds a guide by its name.
func Lookup(name string) *Issue {
	for _, i := range issues {
		if i.name == name {
			return i
		}
	}
	return nil
}

// ForCategory returns the guide for a validation category. The header
// category maps to the header guide; a missing SKILL.md is looked up by Id.
func ForCategory(category string) *Issue {
	if category == headerInvalidIssue.category {
		return headerInvalidIssue
	}
	for _, i := range Values() {
		if i.category == category {
			return i
		}
	}
	return nil
}

// Names lists the guide names in Id order.
func Names() []string {
	values := Values()
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = v.name
	}
	return names
}
