package app

import (
	"unicode/utf8"

	"mdnotes/internal/editor"
)

// documentOffset converts a caret inside blockID into a rune offset in the
// joined document content. Unknown blocks map to the start.
func documentOffset(blocks []editor.Block, blockID string, caret int) int {
	offset := 0
	for _, b := range blocks {
		n := utf8.RuneCountInString(b.Content)
		if b.ID == blockID {
			return offset + min(max(caret, 0), n)
		}
		offset += n + 1 // joining newline
	}
	return 0
}
