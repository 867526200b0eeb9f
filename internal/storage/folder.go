package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"mdnotes/internal/domain"
)

// Ext is the file extension of documents in a FolderStore.
const Ext = ".md"

// FolderStore implements domain.DocumentStore on a directory of Markdown
// files. A document's id is its file name and its title the base name.
type FolderStore struct {
	dir string
}

// NewFolderStore creates dir if needed.
func NewFolderStore(dir string) (*FolderStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create notes folder: %w", err)
	}
	return &FolderStore{dir: dir}, nil
}

// Dir returns the watched directory.
func (s *FolderStore) Dir() string {
	return s.dir
}

// Path returns the file backing a document id.
func (s *FolderStore) Path(id string) string {
	return filepath.Join(s.dir, filepath.Base(id))
}

func (s *FolderStore) ListDocuments(ctx context.Context) ([]domain.DocumentSummary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list folder: %w", err)
	}

	var docs []domain.DocumentSummary
	for _, e := range entries {
		if e.IsDir() || !IsDocumentFile(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		docs = append(docs, domain.DocumentSummary{
			ID:        e.Name(),
			Title:     titleOf(e.Name()),
			UpdatedAt: info.ModTime(),
		})
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UpdatedAt.After(docs[j].UpdatedAt)
	})
	return docs, ctx.Err()
}

func (s *FolderStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	path := s.Path(id)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("get document %s: %w", id, domain.ErrDocumentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat document: %w", err)
	}
	return &domain.Document{
		ID:        filepath.Base(id),
		Title:     titleOf(id),
		Content:   string(data),
		CreatedAt: info.ModTime(),
		UpdatedAt: info.ModTime(),
	}, nil
}

// CreateDocument derives the file name from d.Title when d.ID is empty.
// Existing files are never overwritten.
func (s *FolderStore) CreateDocument(_ context.Context, d *domain.Document) error {
	if d.Title == "" {
		d.Title = "Untitled"
	}
	name, err := s.freeName(d.Title)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.Path(name), []byte(d.Content), 0644); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	info, err := os.Stat(s.Path(name))
	if err != nil {
		return fmt.Errorf("stat document: %w", err)
	}
	d.ID = name
	d.Title = titleOf(name)
	d.CreatedAt = info.ModTime()
	d.UpdatedAt = info.ModTime()
	return nil
}

func (s *FolderStore) SetContent(_ context.Context, id, content string) error {
	path := s.Path(id)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	// write-then-rename so watchers never observe a truncated file
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

func (s *FolderStore) RenameDocument(_ context.Context, id, title string) (string, error) {
	from := s.Path(id)
	if _, err := os.Stat(from); errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	if titleOf(id) == sanitizeTitle(title) {
		return filepath.Base(id), nil
	}
	name, err := s.freeName(title)
	if err != nil {
		return "", err
	}
	if err := os.Rename(from, s.Path(name)); err != nil {
		return "", fmt.Errorf("rename document: %w", err)
	}
	return name, nil
}

func (s *FolderStore) DeleteDocument(_ context.Context, id string) error {
	err := os.Remove(s.Path(id))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// freeName returns "<title>.md", or "<title> 2.md" and so on when taken.
func (s *FolderStore) freeName(title string) (string, error) {
	base := sanitizeTitle(title)
	if base == "" {
		base = "Untitled"
	}
	for n := 1; n < 1000; n++ {
		name := base + Ext
		if n > 1 {
			name = base + " " + strconv.Itoa(n) + Ext
		}
		if _, err := os.Stat(s.Path(name)); errors.Is(err, os.ErrNotExist) {
			return name, nil
		}
	}
	return "", fmt.Errorf("no free file name for %q", title)
}

// IsDocumentFile reports whether name looks like a document of a FolderStore.
func IsDocumentFile(name string) bool {
	return strings.HasSuffix(name, Ext) && !strings.HasPrefix(name, ".")
}

func titleOf(name string) string {
	return strings.TrimSuffix(filepath.Base(name), Ext)
}

func sanitizeTitle(title string) string {
	title = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	return strings.TrimLeft(title, ".")
}
