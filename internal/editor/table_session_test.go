package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdnotes/internal/table"
)

func TestTableSession_MutationsWriteBack(t *testing.T) {
	s, rec := newTestStore(t, "intro\n| A | B |\n| --- | --- |\n| 1 | 2 |")
	ts, err := s.OpenTable("b2")
	require.NoError(t, err)

	require.NoError(t, ts.SetCell(0, 1, "two"))
	b, _ := s.Block("b2")
	assert.Equal(t, "| A | B |\n| --- | --- |\n| 1 | two |", b.Content)
	assert.Equal(t, KindTable, b.Kind)

	require.NoError(t, ts.AddRow(0))
	require.NoError(t, ts.SetAlignment(1, table.AlignRight))
	require.NoError(t, ts.AddColumn(1))
	b, _ = s.Block("b2")
	assert.Equal(t, "| A | B | New |\n| --- | ---: | --- |\n| 1 | two |  |\n|  |  |  |", b.Content)
	assert.Equal(t, "intro\n"+b.Content, s.Content())
	assert.Len(t, rec.calls, 4)
}

func TestTableSession_RefusedMutationsDoNotNotify(t *testing.T) {
	s, rec := newTestStore(t, "| A |\n| --- |\n| 1 |")
	ts, err := s.OpenTable("b1")
	require.NoError(t, err)

	require.NoError(t, ts.RemoveColumn(0))
	require.NoError(t, ts.MoveRow(0, 5))
	assert.Empty(t, rec.calls)
	assert.Equal(t, 1, ts.Table().Columns())

	require.NoError(t, ts.RemoveRow(0))
	assert.Equal(t, [][]string{{""}}, ts.Table().Rows)
}

func TestTableSession_NotATable(t *testing.T) {
	s, _ := newTestStore(t, "| lonely |")
	_, err := s.OpenTable("b1")
	assert.ErrorIs(t, err, table.ErrNotTable)
	b, _ := s.Block("b1")
	assert.Equal(t, "| lonely |", b.Content)

	_, err = s.OpenTable("zzz")
	assert.ErrorIs(t, err, ErrBlockNotFound)
}

func TestTableSession_RefusesCodeAndText(t *testing.T) {
	s, rec := newTestStore(t, "```\nx | y\n```\nplain | text")
	for _, id := range []string{"b1", "b2"} {
		_, err := s.OpenTable(id)
		assert.ErrorIs(t, err, table.ErrNotTable, id)
	}
	b, _ := s.Block("b1")
	assert.Equal(t, KindCodeClosed, b.Kind)
	assert.Equal(t, "```\nx | y\n```\nplain | text", s.Content())
	assert.Empty(t, rec.calls)
}

func TestTableSession_CellSyntaxSurvivesReload(t *testing.T) {
	s, _ := newTestStore(t, "| A | B |\n| --- | --- |\n| 1 | 2 |")
	ts, err := s.OpenTable("b1")
	require.NoError(t, err)

	require.NoError(t, ts.SetCell(0, 0, "x|y"))
	require.NoError(t, ts.SetCell(0, 1, "p\nq"))
	require.NoError(t, ts.SetCell(-1, 0, "  padded  "))

	reloaded := Segment(s.Content(), seqIDs())
	require.Len(t, reloaded, 1)
	assert.Equal(t, KindTable, reloaded[0].Kind)

	tbl, err := table.Parse(reloaded[0].Content)
	require.NoError(t, err)
	assert.Equal(t, []string{"padded", "B"}, tbl.Headers)
	assert.Equal(t, [][]string{{"x|y", "p<br>q"}}, tbl.Rows)
	assert.Equal(t, ts.Table(), tbl)
}
