package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"mdnotes/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Settings — window size, view mode and last document
// ─────────────────────────────────────────────────────────────
//
// Stored in SQLite as key-value rows in app_settings.

// WindowSize holds the saved window dimensions.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ViewMode is the editor layout.
type ViewMode string

const (
	ViewEdit    ViewMode = "edit"    // hybrid block editor
	ViewSplit   ViewMode = "split"   // raw source next to the rendered preview
	ViewSource  ViewMode = "source"  // raw source only
	ViewPreview ViewMode = "preview" // rendered only
)

func (m ViewMode) Valid() bool {
	switch m {
	case ViewEdit, ViewSplit, ViewSource, ViewPreview:
		return true
	}
	return false
}

// SettingsService persists UI state between sessions.
type SettingsService struct {
	db *storage.DB
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(db *storage.DB) *SettingsService {
	return &SettingsService{db: db}
}

const (
	settingWindowWidth  = "window_width"
	settingWindowHeight = "window_height"
	settingViewMode     = "view_mode"
	settingLastDocument = "last_document"
	defaultWindowWidth  = 1280
	defaultWindowHeight = 800
)

// LoadWindowSize returns the saved window dimensions, or sensible defaults.
func (s *SettingsService) LoadWindowSize() WindowSize {
	w, h := defaultWindowWidth, defaultWindowHeight
	if s.db == nil {
		return WindowSize{Width: w, Height: h}
	}
	if v, err := strconv.Atoi(s.get(settingWindowWidth)); err == nil && v >= 800 {
		w = v
	}
	if v, err := strconv.Atoi(s.get(settingWindowHeight)); err == nil && v >= 600 {
		h = v
	}
	return WindowSize{Width: w, Height: h}
}

// SaveWindowSize persists the current window dimensions.
func (s *SettingsService) SaveWindowSize(width, height int) error {
	if err := s.set(settingWindowWidth, strconv.Itoa(width)); err != nil {
		return err
	}
	return s.set(settingWindowHeight, strconv.Itoa(height))
}

// ViewMode returns the saved layout, defaulting to the block editor.
func (s *SettingsService) ViewMode() ViewMode {
	m := ViewMode(s.get(settingViewMode))
	if !m.Valid() {
		return ViewEdit
	}
	return m
}

func (s *SettingsService) SetViewMode(m ViewMode) error {
	if !m.Valid() {
		return fmt.Errorf("unknown view mode %q", m)
	}
	return s.set(settingViewMode, string(m))
}

// LastDocument returns the id of the document open at the last shutdown.
func (s *SettingsService) LastDocument() string {
	return s.get(settingLastDocument)
}

func (s *SettingsService) SetLastDocument(id string) error {
	return s.set(settingLastDocument, id)
}

func (s *SettingsService) get(key string) string {
	if s.db == nil {
		return ""
	}
	var v string
	err := s.db.Conn().QueryRow(`SELECT value FROM app_settings WHERE key = ?`, key).Scan(&v)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return ""
	}
	return v
}

func (s *SettingsService) set(key, value string) error {
	if s.db == nil {
		return fmt.Errorf("settings: no db")
	}
	_, err := s.db.Conn().Exec(
		`INSERT INTO app_settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}
