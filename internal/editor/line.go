package editor

import "strings"

// LineKind classifies a single source line during segmentation.
type LineKind int

const (
	LinePlain LineKind = iota
	LineFenceOpen
	LineFenceClose
	LineTable
)

func (k LineKind) String() string {
	switch k {
	case LineFenceOpen:
		return "fence-open"
	case LineFenceClose:
		return "fence-close"
	case LineTable:
		return "table"
	default:
		return "plain"
	}
}

// ClassifyLine decides what lines[i] does given whether a fenced region is
// currently open. Fences do not nest: inside a fence the next fence line
// closes it and everything else is code.
func ClassifyLine(lines []string, i int, inFence bool) LineKind {
	if i < 0 || i >= len(lines) {
		return LinePlain
	}
	line := lines[i]
	if isFenceLine(line) {
		if inFence {
			return LineFenceClose
		}
		return LineFenceOpen
	}
	if !inFence && strings.HasPrefix(strings.TrimSpace(line), "|") {
		return LineTable
	}
	return LinePlain
}
