package editor

import (
	"fmt"

	"mdnotes/internal/table"
)

// TableSession is structured editing of one table block. Each mutation
// serializes the table and writes it back to the owning block.
type TableSession struct {
	store   *Store
	blockID string
	table   *table.Table
}

// OpenTable parses the table block id. A block of any other kind, or content
// that is not a table, yields table.ErrNotTable and the block is left untouched.
func (s *Store) OpenTable(id string) (*TableSession, error) {
	b, ok := s.Block(id)
	if !ok {
		return nil, fmt.Errorf("open table %s: %w", id, ErrBlockNotFound)
	}
	if b.Kind != KindTable {
		return nil, fmt.Errorf("open table %s: %w", id, table.ErrNotTable)
	}
	t, err := table.Parse(b.Content)
	if err != nil {
		return nil, fmt.Errorf("open table %s: %w", id, err)
	}
	return &TableSession{store: s, blockID: id, table: t}, nil
}

// BlockID returns the owning block id.
func (ts *TableSession) BlockID() string { return ts.blockID }

// Table returns a copy of the current grid.
func (ts *TableSession) Table() *table.Table { return ts.table.Clone() }

func (ts *TableSession) commit() error {
	return ts.store.UpdateBlockContent(ts.blockID, ts.table.Markdown())
}

// SetCell sets one cell. Row -1 is the header row.
func (ts *TableSession) SetCell(row, col int, value string) error {
	if err := ts.table.SetCell(row, col, value); err != nil {
		return err
	}
	return ts.commit()
}

// AddColumn inserts a column after afterIndex; -1 inserts at the front.
func (ts *TableSession) AddColumn(afterIndex int) error {
	ts.table.AddColumn(afterIndex)
	return ts.commit()
}

// RemoveColumn deletes a column. The last remaining column is kept.
func (ts *TableSession) RemoveColumn(index int) error {
	if !ts.table.RemoveColumn(index) {
		return nil
	}
	return ts.commit()
}

// AddRow inserts an empty row after afterIndex; -1 inserts at the top.
func (ts *TableSession) AddRow(afterIndex int) error {
	ts.table.AddRow(afterIndex)
	return ts.commit()
}

// RemoveRow deletes a data row. Removing the only row leaves an empty one.
func (ts *TableSession) RemoveRow(index int) error {
	if !ts.table.RemoveRow(index) {
		return nil
	}
	return ts.commit()
}

// SetAlignment changes the alignment of column col.
func (ts *TableSession) SetAlignment(col int, a table.Alignment) error {
	if !ts.table.SetAlignment(col, a) {
		return nil
	}
	return ts.commit()
}

// MoveRow moves a data row from one index to another.
func (ts *TableSession) MoveRow(from, to int) error {
	if !ts.table.MoveRow(from, to) {
		return nil
	}
	return ts.commit()
}
