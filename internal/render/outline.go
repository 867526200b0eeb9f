package render

import (
	"regexp"
	"strings"
)

var headingRe = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*\s*$`)

// Heading is one entry of the document outline.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Line  int    `json:"line"` // zero-based line in the joined content
}

// Outline scans markdown line by line for ATX headings, skipping fenced code.
func Outline(markdown string) []Heading {
	var out []Heading
	inFence := false
	for i, line := range strings.Split(markdown, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		m := headingRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out = append(out, Heading{Level: len(m[1]), Text: m[2], Line: i})
	}
	return out
}

// Title returns the text of the first level-1 heading, or "".
func Title(markdown string) string {
	for _, h := range Outline(markdown) {
		if h.Level == 1 {
			return h.Text
		}
	}
	return ""
}
