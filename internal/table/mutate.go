package table

import "fmt"

// Mutations report whether the table changed. A false return leaves the
// table untouched.

// SetCell replaces the value at (row, col). Row -1 addresses the header.
// The value is stored as CellValue returns it.
func (t *Table) SetCell(row, col int, value string) error {
	value = CellValue(value)
	if col < 0 || col >= len(t.Headers) {
		return fmt.Errorf("set cell: column %d out of range", col)
	}
	if row == -1 {
		t.Headers[col] = value
		return nil
	}
	if row < 0 || row >= len(t.Rows) {
		return fmt.Errorf("set cell: row %d out of range", row)
	}
	t.Rows[row][col] = value
	return nil
}

// AddColumn inserts a column after afterIndex with header "New", left
// alignment and an empty cell in every row. afterIndex is clamped to
// [-1, columns-1]; -1 inserts at the front.
func (t *Table) AddColumn(afterIndex int) {
	at := clamp(afterIndex, -1, len(t.Headers)-1) + 1
	t.Headers = insertAt(t.Headers, at, "New")
	t.Alignments = insertAt(t.Alignments, at, AlignLeft)
	for i, row := range t.Rows {
		t.Rows[i] = insertAt(row, at, "")
	}
}

// RemoveColumn deletes column index. It refuses to remove the last column.
func (t *Table) RemoveColumn(index int) bool {
	if len(t.Headers) <= 1 || index < 0 || index >= len(t.Headers) {
		return false
	}
	t.Headers = removeAt(t.Headers, index)
	t.Alignments = removeAt(t.Alignments, index)
	for i, row := range t.Rows {
		t.Rows[i] = removeAt(row, index)
	}
	return true
}

// AddRow inserts an empty row after afterIndex (clamped like AddColumn).
func (t *Table) AddRow(afterIndex int) {
	at := clamp(afterIndex, -1, len(t.Rows)-1) + 1
	t.Rows = insertAt(t.Rows, at, emptyRow(len(t.Headers)))
}

// RemoveRow deletes row index. Removing the only row leaves one empty row.
func (t *Table) RemoveRow(index int) bool {
	if index < 0 || index >= len(t.Rows) {
		return false
	}
	t.Rows = removeAt(t.Rows, index)
	if len(t.Rows) == 0 {
		t.Rows = [][]string{emptyRow(len(t.Headers))}
	}
	return true
}

// SetAlignment changes the alignment of column col.
func (t *Table) SetAlignment(col int, a Alignment) bool {
	if col < 0 || col >= len(t.Alignments) || !a.Valid() {
		return false
	}
	t.Alignments[col] = a
	return true
}

// MoveRow moves row from to position to. Out-of-range indexes are a no-op.
func (t *Table) MoveRow(from, to int) bool {
	if from < 0 || from >= len(t.Rows) || to < 0 || to >= len(t.Rows) || from == to {
		return false
	}
	row := t.Rows[from]
	t.Rows = removeAt(t.Rows, from)
	t.Rows = insertAt(t.Rows, to, row)
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func insertAt[T any](s []T, at int, v T) []T {
	out := make([]T, 0, len(s)+1)
	out = append(out, s[:at]...)
	out = append(out, v)
	return append(out, s[at:]...)
}

func removeAt[T any](s []T, at int) []T {
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:at]...)
	return append(out, s[at+1:]...)
}
