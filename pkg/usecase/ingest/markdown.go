package ingest

import (
	"regexp"
	"strings"
)

// minBodyLen drops near-empty sections such as lone horizontal rules or
// heading-only stubs.
const minBodyLen = 20

// Section is one heading-delimited block of a markdown export.
type Section struct {
	Heading string
	Body    string
}

// splitSections splits markdown on level-two headings. The text before the
// first heading becomes a section of its own with its first line, stripped
// of heading markers, as the heading.
func splitSections(content string) []Section {
	var sections []Section

	for _, part := range strings.Split(content, "\n## ") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		heading := part
		body := ""
		if idx := strings.Index(part, "\n"); idx >= 0 {
			heading = part[:idx]
			body = strings.TrimSpace(part[idx+1:])
		}
		heading = strings.TrimSpace(strings.ReplaceAll(heading, "#", ""))

		sections = append(sections, Section{Heading: heading, Body: body})
	}

	return sections
}

var multiNewline = regexp.MustCompile(`\n+`)

// cleanBody strips bold markers and collapses newline runs, matching the
// shape of the session export files.
func cleanBody(body string) string {
	body = strings.ReplaceAll(body, "**", "")
	return multiNewline.ReplaceAllString(body, "\n")
}

// SplitSectionsForTest is a test helper that exposes splitSections
func SplitSectionsForTest(content string) []Section {
	return splitSections(content)
}
