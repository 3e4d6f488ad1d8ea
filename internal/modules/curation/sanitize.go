package curation

import (
	"regexp"
	"strings"
)

var (
	lineBreak  = regexp.MustCompile(`\r\n|\r|\n`)
	listPrefix = regexp.MustCompile(`^(?:[-•]\s+|\d+[.)]\s+)`)
)

// Sanitize turns a model reply into plain text: emphasis markers are removed and
// bullet or numbered-list prefixes are stripped from every line. Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "*", "")

	lines := lineBreak.Split(text, -1)
	for i, line := range lines {
		lines[i] = stripListPrefix(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// stripListPrefix repeats until nothing changes so nested markers like "1. - x" collapse fully.
func stripListPrefix(line string) string {
	line = strings.TrimSpace(line)
	for {
		next := strings.TrimSpace(listPrefix.ReplaceAllString(line, ""))
		if next == line {
			return line
		}
		line = next
	}
}
