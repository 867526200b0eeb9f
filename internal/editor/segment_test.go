package editor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("b%d", n)
	}
}

func contents(blocks []Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.Content
	}
	return out
}

func TestClassifyLine(t *testing.T) {
	lines := []string{"```go", "| not a table |", "  ```", "| a |", "text", "   | b |"}
	assert.Equal(t, LineFenceOpen, ClassifyLine(lines, 0, false))
	assert.Equal(t, LinePlain, ClassifyLine(lines, 1, true))
	assert.Equal(t, LineFenceClose, ClassifyLine(lines, 2, true))
	assert.Equal(t, LineTable, ClassifyLine(lines, 3, false))
	assert.Equal(t, LinePlain, ClassifyLine(lines, 4, false))
	assert.Equal(t, LineTable, ClassifyLine(lines, 5, false))
	assert.Equal(t, LinePlain, ClassifyLine(lines, 9, false))
}

func TestSegment_HeadingBlankText(t *testing.T) {
	blocks := Segment("# Title\n\nSome text", seqIDs())
	require.Len(t, blocks, 3)
	assert.Equal(t, []string{"# Title", "", "Some text"}, contents(blocks))
	for _, b := range blocks {
		assert.Equal(t, KindText, b.Kind)
		assert.Equal(t, TypeText, b.Type())
	}
}

func TestSegment_FencedCode(t *testing.T) {
	blocks := Segment("before\n```js\ncode\n```\nafter", seqIDs())
	require.Len(t, blocks, 3)
	assert.Equal(t, "```js\ncode\n```", blocks[1].Content)
	assert.Equal(t, KindCodeClosed, blocks[1].Kind)
	assert.Equal(t, TypeText, blocks[1].Type())
}

func TestSegment_UnclosedFenceAbsorbsRest(t *testing.T) {
	blocks := Segment("intro\n```\nx\n| y |", seqIDs())
	require.Len(t, blocks, 2)
	assert.Equal(t, "```\nx\n| y |", blocks[1].Content)
	assert.Equal(t, KindCodeOpen, blocks[1].Kind)

	only := Segment("```", seqIDs())
	require.Len(t, only, 1)
	assert.Equal(t, KindCodeOpen, only[0].Kind)
}

func TestSegment_Table(t *testing.T) {
	blocks := Segment("| A | B |\n| --- | --- |\n| 1 | 2 |", seqIDs())
	require.Len(t, blocks, 1)
	assert.Equal(t, KindTable, blocks[0].Kind)
	assert.Equal(t, TypeTable, blocks[0].Type())
}

func TestSegment_Empty(t *testing.T) {
	blocks := Segment("", seqIDs())
	require.Len(t, blocks, 1)
	assert.Equal(t, "", blocks[0].Content)
	assert.Equal(t, KindText, blocks[0].Kind)
}

func TestSegment_UniqueIDs(t *testing.T) {
	blocks := Segment("a\nb\nc\n", nil)
	seen := map[string]bool{}
	for _, b := range blocks {
		assert.NotEmpty(t, b.ID)
		assert.False(t, seen[b.ID])
		seen[b.ID] = true
	}
}

var roundTripInputs = []string{
	"",
	"a",
	"a\n",
	"\n\n\n",
	"# Title\n\nSome text",
	"  indented\n\ttabbed\n",
	"```go\nfunc main() {}\n```\n\ntext",
	"```\nunclosed\n| pipe |",
	"| a | b |\n| --- | --- |\n| 1 | 2 |\n\nafter",
	"| a |\n| --- |\ntext\n| b |\n| --- |",
	"mixed\r\nline endings\r\n",
	"héllo wörld 🎉\n- [ ] task",
}

func TestSegment_RoundTrip(t *testing.T) {
	for _, in := range roundTripInputs {
		assert.Equal(t, in, Join(Segment(in, nil)), "input %q", in)
	}
}

func TestSegment_Idempotent(t *testing.T) {
	for _, in := range roundTripInputs {
		first := Segment(in, nil)
		second := Segment(Join(first), nil)
		assert.Equal(t, contents(first), contents(second), "input %q", in)
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindText, KindOf("plain"))
	assert.Equal(t, KindText, KindOf(""))
	assert.Equal(t, KindCodeOpen, KindOf("```py"))
	assert.Equal(t, KindCodeOpen, KindOf("  ```\nx = 1"))
	assert.Equal(t, KindCodeClosed, KindOf("```\nx\n```"))
	assert.Equal(t, KindText, KindOf("text\n```"))
}
