package editor

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	ErrBlockNotFound   = errors.New("block not found")
	ErrIndexOutOfRange = errors.New("block index out of range")
)

// CursorRequest asks the rendering layer to focus a block and place the caret
// at Offset characters. It is read and cleared on the next paint.
type CursorRequest struct {
	BlockID string `json:"blockId"`
	Offset  int    `json:"offset"`
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides the block id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithOnChange registers the callback receiving the joined markdown after
// every mutation batch.
func WithOnChange(fn func(content string)) Option {
	return func(s *Store) { s.onChange = fn }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store owns the ordered block sequence of one open document, the focused
// block and the pending cursor request. It is not safe for concurrent use:
// it is driven by one event loop.
type Store struct {
	blocks   []Block
	focused  string
	cursor   *CursorRequest
	newID    func() string
	onChange func(string)
	logger   *zap.Logger

	batchDepth int
	dirty      bool
}

// NewStore segments markdown into a new Store.
func NewStore(markdown string, opts ...Option) *Store {
	s := &Store{newID: NewID, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.blocks = Segment(markdown, s.newID)
	return s
}

// SetOnChange replaces the change callback.
func (s *Store) SetOnChange(fn func(content string)) {
	s.onChange = fn
}

// Replace discards every block and re-segments markdown. Used when the whole
// document is replaced (source mode, external reload), never on keystrokes.
func (s *Store) Replace(markdown string) {
	s.blocks = Segment(markdown, s.newID)
	s.focused = ""
	s.cursor = nil
	s.notify()
}

// Len returns the number of blocks.
func (s *Store) Len() int { return len(s.blocks) }

// Blocks returns a copy of the block sequence.
func (s *Store) Blocks() []Block {
	return append([]Block(nil), s.blocks...)
}

// At returns the block at index.
func (s *Store) At(index int) (Block, bool) {
	if index < 0 || index >= len(s.blocks) {
		return Block{}, false
	}
	return s.blocks[index], true
}

// Index returns the position of id, or -1.
func (s *Store) Index(id string) int {
	for i, b := range s.blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// Block returns the block with id.
func (s *Store) Block(id string) (Block, bool) {
	return s.At(s.Index(id))
}

// Content returns the joined markdown.
func (s *Store) Content() string {
	return Join(s.blocks)
}

// Focused returns the id of the focused block ("" when none).
func (s *Store) Focused() string { return s.focused }

// Focus marks id as focused. Unknown ids are ignored.
func (s *Store) Focus(id string) bool {
	if s.Index(id) < 0 {
		return false
	}
	s.focused = id
	return true
}

// Batch runs fn and emits a single change notification for all mutations
// performed inside it.
func (s *Store) Batch(fn func()) {
	s.batchDepth++
	defer func() {
		s.batchDepth--
		if s.batchDepth == 0 && s.dirty {
			s.dirty = false
			s.emit()
		}
	}()
	fn()
}

func (s *Store) notify() {
	if s.batchDepth > 0 {
		s.dirty = true
		return
	}
	s.emit()
}

func (s *Store) emit() {
	if s.onChange != nil {
		s.onChange(s.Content())
	}
}

// ── Mutations ──────────────────────────────────────────────

// UpdateBlockContent replaces the content of id. Non-table blocks have their
// kind recomputed; a table block stays a table.
func (s *Store) UpdateBlockContent(id, content string) error {
	i := s.Index(id)
	if i < 0 {
		return fmt.Errorf("update %s: %w", id, ErrBlockNotFound)
	}
	b := &s.blocks[i]
	if b.Content == content {
		return nil
	}
	b.Content = content
	if b.Kind != KindTable {
		b.Kind = KindOf(content)
	}
	s.notify()
	return nil
}

// SplitAt sets the block at index to before and inserts a new block holding
// after right behind it. The new block is returned.
func (s *Store) SplitAt(index int, before, after string) (Block, error) {
	if index < 0 || index >= len(s.blocks) {
		return Block{}, fmt.Errorf("split %d: %w", index, ErrIndexOutOfRange)
	}
	var nb Block
	s.Batch(func() {
		b := &s.blocks[index]
		b.Content = before
		if b.Kind != KindTable {
			b.Kind = KindOf(before)
		}
		nb = s.insert(index+1, Block{Content: after})
		s.notify()
	})
	return nb, nil
}

// MergeWithPrevious removes id and moves focus to the end of the previous
// block, whose content is left unchanged. The first block is never removed.
func (s *Store) MergeWithPrevious(id string) error {
	i := s.Index(id)
	if i < 0 {
		return fmt.Errorf("merge %s: %w", id, ErrBlockNotFound)
	}
	if i == 0 {
		return nil
	}
	prev := s.blocks[i-1]
	s.blocks = append(s.blocks[:i], s.blocks[i+1:]...)
	s.RequestCursor(prev.ID, runeLen(prev.Content))
	s.notify()
	return nil
}

// ConvertToTable turns the block at index into a table block holding
// tableMarkdown and inserts a fresh empty text block after it, focused.
func (s *Store) ConvertToTable(index int, tableMarkdown string) (Block, error) {
	if index < 0 || index >= len(s.blocks) {
		return Block{}, fmt.Errorf("convert %d: %w", index, ErrIndexOutOfRange)
	}
	var nb Block
	s.Batch(func() {
		s.blocks[index].Content = tableMarkdown
		s.blocks[index].Kind = KindTable
		nb = s.insert(index+1, Block{Kind: KindText})
		s.RequestCursor(nb.ID, 0)
		s.notify()
	})
	return nb, nil
}

// InsertAfter inserts b after index (-1 inserts at the front). A missing id
// is generated and a missing kind derived from the content.
func (s *Store) InsertAfter(index int, b Block) (Block, error) {
	if index < -1 || index >= len(s.blocks) {
		return Block{}, fmt.Errorf("insert after %d: %w", index, ErrIndexOutOfRange)
	}
	nb := s.insert(index+1, b)
	s.notify()
	return nb, nil
}

// RemoveBlock deletes id. Focus moves to the previous block (or the next one
// when id was first). The last remaining block is emptied instead.
func (s *Store) RemoveBlock(id string) error {
	i := s.Index(id)
	if i < 0 {
		return fmt.Errorf("remove %s: %w", id, ErrBlockNotFound)
	}
	if len(s.blocks) == 1 {
		s.blocks[0].Content = ""
		s.blocks[0].Kind = KindText
		s.RequestCursor(s.blocks[0].ID, 0)
		s.notify()
		return nil
	}
	s.blocks = append(s.blocks[:i], s.blocks[i+1:]...)
	target := s.blocks[max(i-1, 0)]
	offset := 0
	if i > 0 {
		offset = runeLen(target.Content)
	}
	s.RequestCursor(target.ID, offset)
	s.notify()
	return nil
}

func (s *Store) insert(at int, b Block) Block {
	if b.ID == "" {
		b.ID = s.newID()
	}
	if b.Kind == "" {
		b.Kind = KindOf(b.Content)
	}
	s.blocks = append(s.blocks, Block{})
	copy(s.blocks[at+1:], s.blocks[at:])
	s.blocks[at] = b
	return b
}

// ── Cursor requests ────────────────────────────────────────

// RequestCursor records where focus and caret should land after the next
// render. It supersedes any earlier pending request.
func (s *Store) RequestCursor(id string, offset int) {
	s.cursor = &CursorRequest{BlockID: id, Offset: offset}
	s.focused = id
}

// PendingCursor returns the pending request without clearing it.
func (s *Store) PendingCursor() (CursorRequest, bool) {
	if s.cursor == nil {
		return CursorRequest{}, false
	}
	return *s.cursor, true
}

// TakeCursor returns and clears the pending request. The offset is clamped to
// the block's content length; a request for a block that no longer exists is
// dropped.
func (s *Store) TakeCursor() (CursorRequest, bool) {
	req := s.cursor
	s.cursor = nil
	if req == nil {
		return CursorRequest{}, false
	}
	b, ok := s.Block(req.BlockID)
	if !ok {
		if s.focused == req.BlockID {
			s.focused = ""
		}
		s.logger.Debug("dropping cursor request for missing block", zap.String("blockId", req.BlockID))
		return CursorRequest{}, false
	}
	return CursorRequest{BlockID: b.ID, Offset: clampOffset(b.Content, req.Offset)}, true
}
