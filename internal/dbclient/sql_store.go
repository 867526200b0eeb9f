package dbclient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"mdnotes/internal/domain"
)

// dialect captures the differences between the SQL engines.
type dialect struct {
	driver     string
	idType     string
	textType   string
	timeType   string
	dollarArgs bool // $1, $2 instead of ?
}

// rebind rewrites ? placeholders for engines that number their arguments.
func (d dialect) rebind(query string) string {
	if !d.dollarArgs {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// sqlStore is the shared DocumentStore for MySQL, Postgres, and SQLite.
type sqlStore struct {
	d     dialect
	db    *sql.DB
	table string
}

func newSQLStore(d dialect, dsn, table string) (*sqlStore, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driver, err)
	}
	// Sensible pool settings for a desktop app
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)
	if d.driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	return &sqlStore{d: d, db: db, table: table}, nil
}

func (s *sqlStore) q(query string) string {
	return s.d.rebind(strings.ReplaceAll(query, "{table}", s.table))
}

func (s *sqlStore) ensureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id %s PRIMARY KEY,
		title %s NOT NULL,
		content %s NOT NULL,
		created_at %s NOT NULL,
		updated_at %s NOT NULL
	)`, s.table, s.d.idType, s.d.textType, s.d.textType, s.d.timeType, s.d.timeType)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create %s table: %w", s.table, err)
	}
	return nil
}

func (s *sqlStore) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *sqlStore) ListDocuments(ctx context.Context) ([]domain.DocumentSummary, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT id, title, updated_at FROM {table} ORDER BY updated_at DESC`))
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

func (s *sqlStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	d := &domain.Document{}
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT id, title, content, created_at, updated_at FROM {table} WHERE id = ?`), id,
	).Scan(&d.ID, &d.Title, &d.Content, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get document %s: %w", id, domain.ErrDocumentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

func (s *sqlStore) CreateDocument(ctx context.Context, d *domain.Document) error {
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO {table} (id, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`),
		d.ID, d.Title, d.Content, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (s *sqlStore) SetContent(ctx context.Context, id, content string) error {
	return s.exec(ctx, `UPDATE {table} SET content = ?, updated_at = ? WHERE id = ?`, id, content, time.Now().UTC(), id)
}

func (s *sqlStore) RenameDocument(ctx context.Context, id, title string) (string, error) {
	return id, s.exec(ctx, `UPDATE {table} SET title = ?, updated_at = ? WHERE id = ?`, id, title, time.Now().UTC(), id)
}

func (s *sqlStore) DeleteDocument(ctx context.Context, id string) error {
	return s.exec(ctx, `DELETE FROM {table} WHERE id = ?`, id, id)
}

func (s *sqlStore) exec(ctx context.Context, query, id string, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	res, err := s.db.ExecContext(ctx, s.q(query), args...)
	if err != nil {
		return fmt.Errorf("%s document: %w", strings.ToLower(strings.Fields(query)[0]), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	return nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
