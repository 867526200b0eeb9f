package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bep/debounce"
	"go.uber.org/zap"

	"mdnotes/internal/domain"
	"mdnotes/internal/editor"
	"mdnotes/internal/table"
)

// ─────────────────────────────────────────────────────────────
// Session — one open document: block store, handler and autosave
// ─────────────────────────────────────────────────────────────

// SaveStatus is the persistence state of an open document.
type SaveStatus string

const (
	StatusSaved   SaveStatus = "saved"
	StatusUnsaved SaveStatus = "unsaved"
	StatusSaving  SaveStatus = "saving"
)

// StatusEvent is the payload of document:status.
type StatusEvent struct {
	DocumentID string     `json:"documentId"`
	Status     SaveStatus `json:"status"`
	Error      string     `json:"error,omitempty"`
}

// ReloadedEvent is the payload of document:reloaded.
type ReloadedEvent struct {
	DocumentID string         `json:"documentId"`
	Blocks     []editor.Block `json:"blocks"`
}

// Session owns the editor state of the open document. Every edit marks the
// document unsaved and schedules a debounced write to the DocumentStore.
// The in-memory blocks stay authoritative when a write fails.
type Session struct {
	mu      sync.Mutex
	saveMu  sync.Mutex // serializes writes to the store
	ctx     context.Context
	docID   string
	title   string
	store   *editor.Store
	handler *editor.Handler
	docs    domain.DocumentStore
	emitter EventEmitter
	logger  *zap.Logger
	debSave func(func())

	saved   string // content last written to (or read from) the store
	status  SaveStatus
	lastErr string
	closed  bool
}

type sessionConfig struct {
	delay     time.Duration
	wrapWidth int
	logger    *zap.Logger
}

func newSession(ctx context.Context, doc *domain.Document, docs domain.DocumentStore, emitter EventEmitter, cfg sessionConfig) *Session {
	s := &Session{
		ctx:     context.WithoutCancel(ctx),
		docID:   doc.ID,
		title:   doc.Title,
		docs:    docs,
		emitter: emitter,
		logger:  cfg.logger.With(zap.String("document", doc.ID)),
		debSave: debounce.New(cfg.delay),
		saved:   doc.Content,
		status:  StatusSaved,
	}
	s.store = editor.NewStore(doc.Content, editor.WithLogger(s.logger), editor.WithOnChange(s.onChange))
	s.handler = editor.NewHandler(s.store, editor.WithWrapWidth(cfg.wrapWidth), editor.WithHandlerLogger(s.logger))
	return s
}

// onChange runs under s.mu: every store mutation happens inside a locked method.
func (s *Session) onChange(content string) {
	if s.closed {
		return
	}
	if content == s.saved {
		s.setStatusLocked(StatusSaved, "")
		return
	}
	s.setStatusLocked(StatusUnsaved, s.lastErr)
	s.debSave(s.autosave)
}

func (s *Session) autosave() {
	if err := s.Flush(s.ctx); err != nil {
		s.logger.Warn("autosave failed", zap.Error(err))
	}
}

func (s *Session) setStatusLocked(status SaveStatus, errMsg string) {
	if s.status == status && s.lastErr == errMsg {
		return
	}
	s.status = status
	s.lastErr = errMsg
	if s.emitter != nil {
		s.emitter.Emit(s.ctx, EventDocumentStatus, StatusEvent{DocumentID: s.docID, Status: status, Error: errMsg})
	}
}

// Flush writes the current content now if it differs from the stored one.
func (s *Session) Flush(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	id := s.docID
	content := s.store.Content()
	if content == s.saved {
		s.setStatusLocked(StatusSaved, "")
		s.mu.Unlock()
		return nil
	}
	s.setStatusLocked(StatusSaving, "")
	s.mu.Unlock()

	err := s.docs.SetContent(ctx, id, content)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.setStatusLocked(StatusUnsaved, err.Error())
		return fmt.Errorf("save %s: %w", id, err)
	}
	s.saved = content
	if s.store.Content() == content {
		s.setStatusLocked(StatusSaved, "")
	} else {
		// edited while the write was in flight; the debounce is already armed
		s.setStatusLocked(StatusUnsaved, "")
	}
	s.logger.Debug("document saved", zap.Int("bytes", len(content)))
	return nil
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.store.SetOnChange(nil)
}

// ── Accessors ──────────────────────────────────────────────

func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docID
}

func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

func (s *Session) setIdentity(id, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docID = id
	s.title = title
}

// Status returns the current save status.
func (s *Session) Status() StatusEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatusEvent{DocumentID: s.docID, Status: s.status, Error: s.lastErr}
}

// Dirty reports whether there are edits not yet written to the store.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Content() != s.saved
}

// Blocks returns a copy of the block sequence.
func (s *Session) Blocks() []editor.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Blocks()
}

// Content returns the joined Markdown.
func (s *Session) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Content()
}

// ── Editing ────────────────────────────────────────────────

// KeyDown forwards a keydown to the handler. True means it was consumed.
func (s *Session) KeyDown(ev editor.KeyEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handler.KeyDown(ev)
}

// Paste forwards a paste to the handler. True means it was consumed.
func (s *Session) Paste(ev editor.PasteEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handler.Paste(ev)
}

// Input records native typing inside a block.
func (s *Session) Input(blockID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handler.Input(blockID, content)
}

// Focus marks a block as focused.
func (s *Session) Focus(blockID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Focus(blockID)
}

// Focused returns the focused block id.
func (s *Session) Focused() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Focused()
}

// TakeCursor returns and clears the pending cursor request.
func (s *Session) TakeCursor() (editor.CursorRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.TakeCursor()
}

// InsertImage places an image reference at blockID.
func (s *Session) InsertImage(blockID, dataURI string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handler.InsertImage(blockID, dataURI)
}

// RemoveBlock deletes a block.
func (s *Session) RemoveBlock(blockID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.RemoveBlock(blockID)
}

// EditTable opens the table block and applies fn to it. The resulting grid
// is returned.
func (s *Session) EditTable(blockID string, fn func(ts *editor.TableSession) error) (*table.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, err := s.store.OpenTable(blockID)
	if err != nil {
		return nil, err
	}
	if fn != nil {
		if err := fn(ts); err != nil {
			return nil, err
		}
	}
	return ts.Table(), nil
}

// ReplaceContent re-segments the whole document (source mode, MCP writes).
// The change is autosaved like any edit.
func (s *Session) ReplaceContent(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Replace(content)
}

// reload applies content read from the store after an external change.
// It is refused while there are unsaved edits or when nothing changed.
func (s *Session) reload(content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.store.Content() != s.saved || content == s.saved {
		return false
	}
	s.saved = content
	s.store.Replace(content)
	return true
}
