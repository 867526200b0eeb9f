package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *Table {
	t.Helper()
	tbl, err := Parse("| A | B |\n| --- | ---: |\n| 1 | 2 |\n| 3 | 4 |")
	require.NoError(t, err)
	return tbl
}

func assertShape(t *testing.T, tbl *Table) {
	t.Helper()
	require.NotEmpty(t, tbl.Rows)
	require.Len(t, tbl.Alignments, len(tbl.Headers))
	for _, row := range tbl.Rows {
		require.Len(t, row, len(tbl.Headers))
	}
}

func TestSetCell(t *testing.T) {
	tbl := sample(t)
	require.NoError(t, tbl.SetCell(1, 0, "x"))
	require.NoError(t, tbl.SetCell(-1, 1, "Head"))
	assert.Equal(t, "x", tbl.Rows[1][0])
	assert.Equal(t, "Head", tbl.Headers[1])

	require.NoError(t, tbl.SetCell(0, 0, " two\nlines "))
	assert.Equal(t, "two<br>lines", tbl.Rows[0][0])

	assert.Error(t, tbl.SetCell(5, 0, "x"))
	assert.Error(t, tbl.SetCell(0, 2, "x"))
}

func TestAddColumn(t *testing.T) {
	tbl := sample(t)
	tbl.AddColumn(0)
	assertShape(t, tbl)
	assert.Equal(t, []string{"A", "New", "B"}, tbl.Headers)
	assert.Equal(t, []Alignment{AlignLeft, AlignLeft, AlignRight}, tbl.Alignments)
	assert.Equal(t, []string{"1", "", "2"}, tbl.Rows[0])

	tbl.AddColumn(99)
	assert.Equal(t, "New", tbl.Headers[3])
	tbl.AddColumn(-1)
	assert.Equal(t, "New", tbl.Headers[0])
	assertShape(t, tbl)
}

func TestRemoveColumn(t *testing.T) {
	tbl := sample(t)
	assert.True(t, tbl.RemoveColumn(0))
	assert.Equal(t, []string{"B"}, tbl.Headers)
	assert.Equal(t, []Alignment{AlignRight}, tbl.Alignments)
	assert.Equal(t, [][]string{{"2"}, {"4"}}, tbl.Rows)

	assert.False(t, tbl.RemoveColumn(0), "single column must stay")
	assert.Len(t, tbl.Headers, 1)
	assertShape(t, tbl)
}

func TestAddRow(t *testing.T) {
	tbl := sample(t)
	tbl.AddRow(0)
	assert.Equal(t, [][]string{{"1", "2"}, {"", ""}, {"3", "4"}}, tbl.Rows)
	tbl.AddRow(-1)
	assert.Equal(t, []string{"", ""}, tbl.Rows[0])
	assertShape(t, tbl)
}

func TestRemoveRow(t *testing.T) {
	tbl := sample(t)
	assert.True(t, tbl.RemoveRow(0))
	assert.Equal(t, [][]string{{"3", "4"}}, tbl.Rows)

	assert.True(t, tbl.RemoveRow(0))
	assert.Equal(t, [][]string{{"", ""}}, tbl.Rows, "last row is replaced by an empty row")

	assert.False(t, tbl.RemoveRow(3))
	assertShape(t, tbl)
}

func TestSetAlignment(t *testing.T) {
	tbl := sample(t)
	assert.True(t, tbl.SetAlignment(0, AlignCenter))
	assert.Equal(t, AlignCenter, tbl.Alignments[0])
	assert.False(t, tbl.SetAlignment(2, AlignCenter))
	assert.False(t, tbl.SetAlignment(0, Alignment("justify")))
}

func TestMoveRow(t *testing.T) {
	tbl := sample(t)
	tbl.AddRow(1)
	require.NoError(t, tbl.SetCell(2, 0, "5"))

	assert.True(t, tbl.MoveRow(2, 0))
	assert.Equal(t, "5", tbl.Rows[0][0])
	assert.Equal(t, "1", tbl.Rows[1][0])
	assert.Equal(t, "3", tbl.Rows[2][0])

	before := tbl.Clone()
	assert.False(t, tbl.MoveRow(0, 3))
	assert.False(t, tbl.MoveRow(-1, 0))
	assert.Equal(t, before, tbl)
}
