package service

import (
	"context"
	"fmt"

	"mdnotes/internal/editor"
	"mdnotes/internal/table"
)

// Table operations accepted by TableEdit.
const (
	TableSetCell      = "set_cell"
	TableAddRow       = "add_row"
	TableRemoveRow    = "remove_row"
	TableAddColumn    = "add_column"
	TableRemoveColumn = "remove_column"
	TableSetAlignment = "set_alignment"
	TableMoveRow      = "move_row"
)

// TableOps lists every supported operation.
var TableOps = []string{
	TableSetCell, TableAddRow, TableRemoveRow, TableAddColumn,
	TableRemoveColumn, TableSetAlignment, TableMoveRow,
}

// TableEdit is one structured table mutation as sent by the frontend or an
// agent. Row -1 addresses the header in set_cell; add_row and add_column
// insert after Row and Col.
type TableEdit struct {
	Op    string `json:"op"`
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	To    int    `json:"to"`
	Value string `json:"value"`
}

// Func validates the edit and returns it as a TableSession mutation.
func (e TableEdit) Func() (func(*editor.TableSession) error, error) {
	switch e.Op {
	case TableSetCell:
		return func(ts *editor.TableSession) error { return ts.SetCell(e.Row, e.Col, e.Value) }, nil
	case TableAddRow:
		return func(ts *editor.TableSession) error { return ts.AddRow(e.Row) }, nil
	case TableRemoveRow:
		return func(ts *editor.TableSession) error { return ts.RemoveRow(e.Row) }, nil
	case TableAddColumn:
		return func(ts *editor.TableSession) error { return ts.AddColumn(e.Col) }, nil
	case TableRemoveColumn:
		return func(ts *editor.TableSession) error { return ts.RemoveColumn(e.Col) }, nil
	case TableSetAlignment:
		a := table.Alignment(e.Value)
		if !a.Valid() {
			return nil, fmt.Errorf("invalid alignment %q", e.Value)
		}
		return func(ts *editor.TableSession) error { return ts.SetAlignment(e.Col, a) }, nil
	case TableMoveRow:
		return func(ts *editor.TableSession) error { return ts.MoveRow(e.Row, e.To) }, nil
	}
	return nil, fmt.Errorf("unknown table op %q", e.Op)
}

// EditTable applies e to the table block at index of document id and
// returns the resulting grid. The open document is edited in place so block
// ids survive and the change is autosaved; any other document is segmented,
// edited and written back.
func (s *DocumentService) EditTable(ctx context.Context, id string, index int, e TableEdit) (*table.Table, error) {
	fn, err := e.Func()
	if err != nil {
		return nil, err
	}

	if sess := s.sessionFor(id); sess != nil {
		blocks := sess.Blocks()
		if index < 0 || index >= len(blocks) {
			return nil, fmt.Errorf("block index %d out of range", index)
		}
		tbl, err := sess.EditTable(blocks[index].ID, fn)
		if err != nil {
			return nil, err
		}
		s.emitter.Emit(ctx, EventDocumentReloaded, ReloadedEvent{DocumentID: id, Blocks: sess.Blocks()})
		return tbl, nil
	}

	doc, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("edit table: %w", err)
	}
	store := editor.NewStore(doc.Content, editor.WithLogger(s.logger))
	b, ok := store.At(index)
	if !ok {
		return nil, fmt.Errorf("block index %d out of range", index)
	}
	ts, err := store.OpenTable(b.ID)
	if err != nil {
		return nil, err
	}
	if err := fn(ts); err != nil {
		return nil, err
	}
	if err := s.docs.SetContent(ctx, id, store.Content()); err != nil {
		return nil, fmt.Errorf("edit table: %w", err)
	}
	s.listChanged(ctx)
	return ts.Table(), nil
}
