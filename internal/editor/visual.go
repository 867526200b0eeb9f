package editor

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Offsets handed to and from the frontend count characters (runes).

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func clampOffset(s string, offset int) int {
	if offset < 0 {
		return 0
	}
	if n := runeLen(s); offset > n {
		return n
	}
	return offset
}

// splitAt splits s at a rune offset, clamping it into range.
func splitAt(s string, offset int) (string, string) {
	offset = clampOffset(s, offset)
	i := 0
	for pos := range s {
		if i == offset {
			return s[:pos], s[pos:]
		}
		i++
	}
	return s, ""
}

// insertAt inserts text into s at a rune offset.
func insertAt(s string, offset int, text string) string {
	before, after := splitAt(s, offset)
	return before + text + after
}

// leadingWhitespace returns the indentation of the line containing offset.
func leadingWhitespace(s string, offset int) string {
	before, after := splitAt(s, offset)
	line := before[strings.LastIndexByte(before, '\n')+1:]
	if nl := strings.IndexByte(after, '\n'); nl >= 0 {
		line += after[:nl]
	} else {
		line += after
	}
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// visualRow returns the row index of offset within s and the total number of
// rows. Rows are logical lines, additionally wrapped every wrapWidth display
// cells when wrapWidth > 0. Widths are measured per grapheme cluster.
func visualRow(s string, offset, wrapWidth int) (row, rows int) {
	offset = clampOffset(s, offset)
	pos := 0
	found := false
	for _, line := range strings.Split(s, "\n") {
		lineRows, caretRow := wrapRows(line, offset-pos, wrapWidth)
		if !found && offset <= pos+runeLen(line) {
			row = rows + caretRow
			found = true
		}
		rows += lineRows
		pos += runeLen(line) + 1
	}
	return row, rows
}

// wrapRows counts the wrapped rows of a single line and locates the row of
// caret (a rune offset into line; out-of-range values are tolerated).
func wrapRows(line string, caret, wrapWidth int) (rows, caretRow int) {
	if wrapWidth <= 0 || line == "" {
		return 1, 0
	}
	rows = 1
	width, idx := 0, 0
	state := -1
	rest := line
	for len(rest) > 0 {
		var cluster string
		var w int
		cluster, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if width+w > wrapWidth && width > 0 {
			rows++
			width = 0
		}
		if idx == caret {
			caretRow = rows - 1
		}
		width += w
		idx += runeLen(cluster)
	}
	if caret >= idx {
		caretRow = rows - 1
	}
	return rows, caretRow
}

// onFirstVisualLine reports whether offset sits on the first visual row.
func onFirstVisualLine(s string, offset, wrapWidth int) bool {
	row, _ := visualRow(s, offset, wrapWidth)
	return row == 0
}

// onLastVisualLine reports whether offset sits on the last visual row.
func onLastVisualLine(s string, offset, wrapWidth int) bool {
	row, rows := visualRow(s, offset, wrapWidth)
	return row == rows-1
}
