package app

import (
	"go.uber.org/zap"

	"mdnotes/internal/domain"
)

// ============================================================
// Documents
// ============================================================

func (a *App) ListDocuments() ([]domain.DocumentSummary, error) {
	return a.docs.List(a.ctx)
}

// CreateDocument creates an empty document and opens it.
func (a *App) CreateDocument(title string) (*DocumentView, error) {
	doc, err := a.docs.Create(a.ctx, title, "")
	if err != nil {
		return nil, err
	}
	return a.openDocument(doc.ID)
}

func (a *App) OpenDocument(id string) (*DocumentView, error) {
	return a.openDocument(id)
}

func (a *App) openDocument(id string) (*DocumentView, error) {
	sess, err := a.docs.Open(a.ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.settings.SetLastDocument(id); err != nil {
		a.logger.Warn("remember last document", zap.Error(err))
	}
	if a.files != nil {
		a.files.Follow(id)
	}
	return documentView(sess), nil
}

// ActiveDocument returns the open document, or nil.
func (a *App) ActiveDocument() *DocumentView {
	sess, err := a.docs.Active()
	if err != nil {
		return nil
	}
	return documentView(sess)
}

// RenameDocument returns the document id after the rename; folder-backed
// documents are files, so their id changes with the title.
func (a *App) RenameDocument(id, title string) (string, error) {
	newID, err := a.docs.Rename(a.ctx, id, title)
	if err != nil {
		return "", err
	}
	if newID != id {
		if a.settings.LastDocument() == id {
			a.settings.SetLastDocument(newID)
		}
		if sess, err := a.docs.Active(); err == nil && sess.ID() == newID && a.files != nil {
			a.files.Follow(newID)
		}
	}
	return newID, nil
}

func (a *App) DeleteDocument(id string) error {
	wasOpen := false
	if sess, err := a.docs.Active(); err == nil && sess.ID() == id {
		wasOpen = true
	}
	if err := a.docs.Delete(a.ctx, id); err != nil {
		return err
	}
	if wasOpen {
		if a.files != nil {
			a.files.Unfollow()
		}
		a.settings.SetLastDocument("")
	}
	return nil
}

// SaveDocument writes pending edits now instead of waiting for autosave.
func (a *App) SaveDocument() error {
	return a.docs.Flush(a.ctx)
}

// ============================================================
// Source mode
// ============================================================

// GetSource returns the raw Markdown of the open document.
func (a *App) GetSource() (string, error) {
	sess, err := a.docs.Active()
	if err != nil {
		return "", err
	}
	return sess.Content(), nil
}

// SetSource replaces the open document's Markdown and re-segments it.
func (a *App) SetSource(content string) (*DocumentView, error) {
	sess, err := a.docs.Active()
	if err != nil {
		return nil, err
	}
	if err := a.docs.WriteContent(a.ctx, sess.ID(), content); err != nil {
		return nil, err
	}
	return documentView(sess), nil
}

// ============================================================
// Revisions
// ============================================================

func (a *App) ListRevisions(documentID string) ([]domain.Revision, error) {
	return a.docs.ListRevisions(a.ctx, documentID)
}

// RestoreRevision replaces the document content with a snapshot; the
// current content is snapshotted first.
func (a *App) RestoreRevision(revisionID string) error {
	return a.docs.RestoreRevision(a.ctx, revisionID)
}
