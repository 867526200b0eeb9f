package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mdnotes/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Document Service — documents, the open session and revisions
// ─────────────────────────────────────────────────────────────

// ErrNoSession is returned when an editor operation arrives with no open document.
var ErrNoSession = errors.New("no open document")

// RevisionStore keeps content snapshots. Implemented by storage.RevisionStore.
type RevisionStore interface {
	PushRevision(ctx context.Context, documentID, label, content string) (*domain.Revision, error)
	ListRevisions(ctx context.Context, documentID string) ([]domain.Revision, error)
	GetRevision(ctx context.Context, id string) (*domain.Revision, error)
	ClearDocument(ctx context.Context, documentID string) error
}

// DocumentService manages documents and the single open editing session.
type DocumentService struct {
	docs      domain.DocumentStore
	revisions RevisionStore
	emitter   EventEmitter
	logger    *zap.Logger
	delay     time.Duration
	wrapWidth int

	mu      sync.Mutex
	session *Session
}

// DocumentOption configures a DocumentService.
type DocumentOption func(*DocumentService)

// WithAutosaveDelay sets the debounce between the last edit and the write.
func WithAutosaveDelay(d time.Duration) DocumentOption {
	return func(s *DocumentService) { s.delay = d }
}

// WithWrapWidth sets the soft-wrap width used for arrow navigation.
func WithWrapWidth(w int) DocumentOption {
	return func(s *DocumentService) { s.wrapWidth = w }
}

func WithLogger(l *zap.Logger) DocumentOption {
	return func(s *DocumentService) { s.logger = l }
}

// WithRevisions enables snapshots on open and restore.
func WithRevisions(r RevisionStore) DocumentOption {
	return func(s *DocumentService) { s.revisions = r }
}

// NewDocumentService creates a DocumentService.
func NewDocumentService(docs domain.DocumentStore, emitter EventEmitter, opts ...DocumentOption) *DocumentService {
	s := &DocumentService{
		docs:    docs,
		emitter: emitter,
		logger:  zap.NewNop(),
		delay:   800 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.emitter == nil {
		s.emitter = NopEmitter{}
	}
	return s
}

// Store returns the underlying DocumentStore.
func (s *DocumentService) Store() domain.DocumentStore {
	return s.docs
}

func (s *DocumentService) listChanged(ctx context.Context) {
	s.emitter.Emit(ctx, EventDocumentsChanged, nil)
}

// List returns all documents, most recently updated first.
func (s *DocumentService) List(ctx context.Context) ([]domain.DocumentSummary, error) {
	docs, err := s.docs.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if docs == nil {
		docs = []domain.DocumentSummary{}
	}
	return docs, nil
}

// Get returns a document. The open document reports its live content.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess := s.sessionFor(id); sess != nil {
		doc.Content = sess.Content()
	}
	return doc, nil
}

// Create stores a new document.
func (s *DocumentService) Create(ctx context.Context, title, content string) (*domain.Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled"
	}
	doc := &domain.Document{ID: uuid.New().String(), Title: title, Content: content}
	if err := s.docs.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	s.logger.Info("document created", zap.String("id", doc.ID))
	s.listChanged(ctx)
	return doc, nil
}

// Open makes id the active document. The previous session is flushed and
// discarded; the document is re-segmented from its stored content.
func (s *DocumentService) Open(ctx context.Context, id string) (*Session, error) {
	doc, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	prev := s.session
	s.session = nil
	s.mu.Unlock()
	if prev != nil {
		if err := prev.Flush(ctx); err != nil {
			s.logger.Warn("flush before switching documents", zap.Error(err))
		}
		prev.close()
	}

	if s.revisions != nil {
		if _, err := s.revisions.PushRevision(ctx, doc.ID, "opened", doc.Content); err != nil {
			s.logger.Warn("push revision", zap.Error(err))
		}
	}

	sess := newSession(ctx, doc, s.docs, s.emitter, sessionConfig{
		delay:     s.delay,
		wrapWidth: s.wrapWidth,
		logger:    s.logger,
	})

	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
	s.logger.Info("document opened", zap.String("id", doc.ID), zap.Int("blocks", len(sess.Blocks())))
	return sess, nil
}

// Active returns the open session.
func (s *DocumentService) Active() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, ErrNoSession
	}
	return s.session, nil
}

func (s *DocumentService) sessionFor(id string) *Session {
	s.mu.Lock()
	sess := s.session
	s.mu.Unlock()
	if sess != nil && sess.ID() == id {
		return sess
	}
	return nil
}

// Rename changes a document's title and returns its id after the rename.
func (s *DocumentService) Rename(ctx context.Context, id, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errors.New("title must not be empty")
	}
	sess := s.sessionFor(id)
	if sess != nil {
		// folder stores move the file; write pending edits to the old name first
		if err := sess.Flush(ctx); err != nil {
			return "", err
		}
	}
	newID, err := s.docs.RenameDocument(ctx, id, title)
	if err != nil {
		return "", fmt.Errorf("rename document: %w", err)
	}
	if sess != nil {
		sess.setIdentity(newID, title)
	}
	s.listChanged(ctx)
	return newID, nil
}

// Delete removes a document and its revisions.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if sess := s.sessionFor(id); sess != nil {
		sess.close()
		s.mu.Lock()
		if s.session == sess {
			s.session = nil
		}
		s.mu.Unlock()
	}
	if err := s.docs.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if s.revisions != nil {
		if err := s.revisions.ClearDocument(ctx, id); err != nil {
			s.logger.Warn("clear revisions", zap.Error(err))
		}
	}
	s.logger.Info("document deleted", zap.String("id", id))
	s.listChanged(ctx)
	return nil
}

// WriteContent replaces a document's content. The open document is
// re-segmented and written immediately.
func (s *DocumentService) WriteContent(ctx context.Context, id, content string) error {
	if sess := s.sessionFor(id); sess != nil {
		sess.ReplaceContent(content)
		s.emitter.Emit(ctx, EventDocumentReloaded, ReloadedEvent{DocumentID: id, Blocks: sess.Blocks()})
		return sess.Flush(ctx)
	}
	if err := s.docs.SetContent(ctx, id, content); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	s.listChanged(ctx)
	return nil
}

// AppendMarkdown adds markdown at the end of a document, separated by a
// blank line.
func (s *DocumentService) AppendMarkdown(ctx context.Context, id, markdown string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	content := doc.Content
	switch {
	case strings.TrimSpace(content) == "":
		content = markdown
	case strings.HasSuffix(content, "\n\n"):
		content += markdown
	case strings.HasSuffix(content, "\n"):
		content += "\n" + markdown
	default:
		content += "\n\n" + markdown
	}
	return s.WriteContent(ctx, id, content)
}

// ExternalChange applies content that changed outside the app (the folder
// watcher, another process). The open document is reloaded unless it has
// unsaved edits.
func (s *DocumentService) ExternalChange(ctx context.Context, id, content string) bool {
	sess := s.sessionFor(id)
	if sess == nil {
		return false
	}
	if !sess.reload(content) {
		return false
	}
	s.logger.Info("document reloaded after external change", zap.String("id", id))
	s.emitter.Emit(ctx, EventDocumentReloaded, ReloadedEvent{DocumentID: id, Blocks: sess.Blocks()})
	return true
}

// RefreshActive re-reads the open document from the store and applies it
// as an external change.
func (s *DocumentService) RefreshActive(ctx context.Context) (bool, error) {
	s.mu.Lock()
	sess := s.session
	s.mu.Unlock()
	if sess == nil {
		return false, nil
	}
	doc, err := s.docs.GetDocument(ctx, sess.ID())
	if err != nil {
		return false, err
	}
	return s.ExternalChange(ctx, doc.ID, doc.Content), nil
}

// ListRevisions returns a document's snapshots, newest first.
func (s *DocumentService) ListRevisions(ctx context.Context, id string) ([]domain.Revision, error) {
	if s.revisions == nil {
		return []domain.Revision{}, nil
	}
	revs, err := s.revisions.ListRevisions(ctx, id)
	if err != nil {
		return nil, err
	}
	if revs == nil {
		revs = []domain.Revision{}
	}
	return revs, nil
}

// RestoreRevision snapshots the current content and replaces it with the
// revision's content.
func (s *DocumentService) RestoreRevision(ctx context.Context, revisionID string) error {
	if s.revisions == nil {
		return errors.New("revisions are disabled")
	}
	rev, err := s.revisions.GetRevision(ctx, revisionID)
	if err != nil {
		return err
	}
	cur, err := s.Get(ctx, rev.DocumentID)
	if err != nil {
		return err
	}
	if _, err := s.revisions.PushRevision(ctx, rev.DocumentID, "before restore", cur.Content); err != nil {
		return fmt.Errorf("snapshot before restore: %w", err)
	}
	return s.WriteContent(ctx, rev.DocumentID, rev.Content)
}

// Flush writes pending edits of the open document.
func (s *DocumentService) Flush(ctx context.Context) error {
	s.mu.Lock()
	sess := s.session
	s.mu.Unlock()
	if sess == nil {
		return nil
	}
	return sess.Flush(ctx)
}

// Close flushes and discards the open session.
func (s *DocumentService) Close(ctx context.Context) error {
	s.mu.Lock()
	sess := s.session
	s.session = nil
	s.mu.Unlock()
	if sess == nil {
		return nil
	}
	err := sess.Flush(ctx)
	sess.close()
	return err
}
