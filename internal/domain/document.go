package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDocumentNotFound is returned by every DocumentStore for unknown ids.
var ErrDocumentNotFound = errors.New("document not found")

// Document is one Markdown note. Content is the joined text of its blocks.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DocumentSummary is a Document without its content, used for listings.
type DocumentSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DocumentStore persists documents. Implementations exist for the local
// SQLite database, a folder of .md files, remote SQL servers and MongoDB.
type DocumentStore interface {
	ListDocuments(ctx context.Context) ([]DocumentSummary, error)
	GetDocument(ctx context.Context, id string) (*Document, error)
	CreateDocument(ctx context.Context, d *Document) error
	SetContent(ctx context.Context, id, content string) error
	// RenameDocument returns the document's id after the rename. Stores that
	// key documents by file name return a new id.
	RenameDocument(ctx context.Context, id, title string) (string, error)
	DeleteDocument(ctx context.Context, id string) error
}
