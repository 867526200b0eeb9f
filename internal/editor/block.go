package editor

import "strings"

// Kind is the explicit state of a block. It is recomputed from content on
// every mutation so handlers never have to re-scan fences.
type Kind string

const (
	KindText       Kind = "text"
	KindTable      Kind = "table"
	KindCodeOpen   Kind = "codeOpen"
	KindCodeClosed Kind = "codeClosed"
)

// Type is the coarse block type exposed to collaborators.
type Type string

const (
	TypeText  Type = "text"
	TypeTable Type = "table"
)

const fence = "```"

// Block is one independently editable unit of the document.
type Block struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Kind    Kind   `json:"kind"`
}

// Type projects the kind onto text/table. Code blocks are text blocks.
func (b Block) Type() Type {
	if b.Kind == KindTable {
		return TypeTable
	}
	return TypeText
}

// IsCode reports whether the block is a fenced code region.
func (b Block) IsCode() bool {
	return b.Kind == KindCodeOpen || b.Kind == KindCodeClosed
}

// KindOf derives the kind of a non-table block from its content.
func KindOf(content string) Kind {
	if !isFenceLine(content) {
		return KindText
	}
	if fenceCount(content) < 2 {
		return KindCodeOpen
	}
	return KindCodeClosed
}

func isFenceLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), fence)
}

// fenceCount counts lines that open or close a fence.
func fenceCount(content string) int {
	n := 0
	for _, line := range strings.Split(content, "\n") {
		if isFenceLine(line) {
			n++
		}
	}
	return n
}

// Join concatenates block contents with newlines.
func Join(blocks []Block) string {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = b.Content
	}
	return strings.Join(parts, "\n")
}
