package editor

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a fresh block id.
func NewID() string {
	return uuid.New().String()
}

// Segment partitions markdown into blocks: one per fenced code region, one
// per run of table lines, and one per remaining line (blank lines included).
// Join(Segment(s)) == s. An empty input yields a single empty text block.
func Segment(markdown string, newID func() string) []Block {
	if newID == nil {
		newID = NewID
	}
	lines := strings.Split(markdown, "\n")
	blocks := make([]Block, 0, len(lines))

	for i := 0; i < len(lines); {
		switch ClassifyLine(lines, i, false) {
		case LineFenceOpen:
			start := i
			kind := KindCodeOpen
			for i++; i < len(lines); i++ {
				if ClassifyLine(lines, i, true) == LineFenceClose {
					kind = KindCodeClosed
					i++
					break
				}
			}
			blocks = append(blocks, Block{
				ID:      newID(),
				Content: strings.Join(lines[start:i], "\n"),
				Kind:    kind,
			})

		case LineTable:
			start := i
			for i < len(lines) && ClassifyLine(lines, i, false) == LineTable {
				i++
			}
			blocks = append(blocks, Block{
				ID:      newID(),
				Content: strings.Join(lines[start:i], "\n"),
				Kind:    KindTable,
			})

		default:
			blocks = append(blocks, Block{ID: newID(), Content: lines[i], Kind: KindText})
			i++
		}
	}
	return blocks
}
