package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"mdnotes/internal/domain"
)

// MaxRevisions is the number of snapshots kept per document.
const MaxRevisions = 40

// ErrRevisionNotFound is returned by GetRevision for unknown ids.
var ErrRevisionNotFound = errors.New("revision not found")

// RevisionStore keeps content snapshots per document in SQLite.
// Revision ids are ULIDs so lexical order is creation order.
type RevisionStore struct {
	db *DB
}

func NewRevisionStore(db *DB) *RevisionStore {
	return &RevisionStore{db: db}
}

// PushRevision stores a snapshot and prunes the oldest beyond MaxRevisions.
func (s *RevisionStore) PushRevision(ctx context.Context, documentID, label, content string) (*domain.Revision, error) {
	rev := &domain.Revision{
		ID:         ulid.Make().String(),
		DocumentID: documentID,
		Label:      label,
		Content:    content,
		Size:       len(content),
		CreatedAt:  time.Now(),
	}
	_, err := s.db.Conn().ExecContext(ctx,
		`INSERT INTO revisions (id, document_id, label, content, size, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rev.ID, rev.DocumentID, rev.Label, rev.Content, rev.Size, rev.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert revision: %w", err)
	}

	if err := s.prune(ctx, documentID, MaxRevisions); err != nil {
		return nil, err
	}
	return rev, nil
}

// ListRevisions returns a document's revisions newest first, without content.
func (s *RevisionStore) ListRevisions(ctx context.Context, documentID string) ([]domain.Revision, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT id, document_id, label, size, created_at
		 FROM revisions WHERE document_id = ? ORDER BY id DESC`, documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var revs []domain.Revision
	for rows.Next() {
		var r domain.Revision
		if err := rows.Scan(&r.ID, &r.DocumentID, &r.Label, &r.Size, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		revs = append(revs, r)
	}
	return revs, rows.Err()
}

func (s *RevisionStore) GetRevision(ctx context.Context, id string) (*domain.Revision, error) {
	r := &domain.Revision{}
	err := s.db.Conn().QueryRowContext(ctx,
		`SELECT id, document_id, label, content, size, created_at FROM revisions WHERE id = ?`, id,
	).Scan(&r.ID, &r.DocumentID, &r.Label, &r.Content, &r.Size, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get revision %s: %w", id, ErrRevisionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get revision: %w", err)
	}
	return r, nil
}

// ClearDocument removes all revisions of a document.
func (s *RevisionStore) ClearDocument(ctx context.Context, documentID string) error {
	_, err := s.db.Conn().ExecContext(ctx, `DELETE FROM revisions WHERE document_id = ?`, documentID)
	if err != nil {
		return fmt.Errorf("clear revisions: %w", err)
	}
	return nil
}

func (s *RevisionStore) prune(ctx context.Context, documentID string, keep int) error {
	_, err := s.db.Conn().ExecContext(ctx,
		`DELETE FROM revisions WHERE document_id = ? AND id NOT IN (
			SELECT id FROM revisions WHERE document_id = ? ORDER BY id DESC LIMIT ?
		)`, documentID, documentID, keep,
	)
	if err != nil {
		return fmt.Errorf("prune revisions: %w", err)
	}
	return nil
}
