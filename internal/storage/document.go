package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mdnotes/internal/domain"
)

// DocumentStore implements domain.DocumentStore on the local SQLite database.
type DocumentStore struct {
	db *DB
}

func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func (s *DocumentStore) ListDocuments(ctx context.Context) ([]domain.DocumentSummary, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT id, title, updated_at FROM documents ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.DocumentSummary
	for rows.Next() {
		var d domain.DocumentSummary
		if err := rows.Scan(&d.ID, &d.Title, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *DocumentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	d := &domain.Document{}
	err := s.db.Conn().QueryRowContext(ctx,
		`SELECT id, title, content, created_at, updated_at FROM documents WHERE id = ?`, id,
	).Scan(&d.ID, &d.Title, &d.Content, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get document %s: %w", id, domain.ErrDocumentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

func (s *DocumentStore) CreateDocument(ctx context.Context, d *domain.Document) error {
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	_, err := s.db.Conn().ExecContext(ctx,
		`INSERT INTO documents (id, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.Title, d.Content, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (s *DocumentStore) SetContent(ctx context.Context, id, content string) error {
	return s.update(ctx, `UPDATE documents SET content = ?, updated_at = ? WHERE id = ?`, content, id)
}

func (s *DocumentStore) RenameDocument(ctx context.Context, id, title string) (string, error) {
	return id, s.update(ctx, `UPDATE documents SET title = ?, updated_at = ? WHERE id = ?`, title, id)
}

func (s *DocumentStore) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return requireAffected(res, id)
}

// Fingerprint changes whenever any document is created, edited or deleted.
// Polled by the app to pick up writes from the standalone MCP process.
func (s *DocumentStore) Fingerprint(ctx context.Context) (string, error) {
	var count int
	var latest sql.NullString
	err := s.db.Conn().QueryRowContext(ctx,
		`SELECT COUNT(*), MAX(updated_at) FROM documents`,
	).Scan(&count, &latest)
	if err != nil {
		return "", fmt.Errorf("document fingerprint: %w", err)
	}
	return fmt.Sprintf("%d:%s", count, latest.String), nil
}

func (s *DocumentStore) update(ctx context.Context, query, value, id string) error {
	res, err := s.db.Conn().ExecContext(ctx, query, value, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	return nil
}
