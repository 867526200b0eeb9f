package editor

import (
	"strings"

	"go.uber.org/zap"

	"mdnotes/internal/table"
)

// ─────────────────────────────────────────────────────────────
// Edit Event Handler — keyboard and paste events against a Store
// ─────────────────────────────────────────────────────────────

// Key names follow KeyboardEvent.key in the WebView.
type Key string

const (
	KeyEnter     Key = "Enter"
	KeyBackspace Key = "Backspace"
	KeyTab       Key = "Tab"
	KeyArrowUp   Key = "ArrowUp"
	KeyArrowDown Key = "ArrowDown"
)

const codeIndent = "    "

// KeyEvent is a keydown on a focused block. Caret is a character offset.
type KeyEvent struct {
	Key       Key    `json:"key"`
	Shift     bool   `json:"shift"`
	Composing bool   `json:"composing"`
	BlockID   string `json:"blockId"`
	Caret     int    `json:"caret"`
}

// PasteEvent carries plain-text clipboard data pasted into a block.
type PasteEvent struct {
	BlockID   string `json:"blockId"`
	Caret     int    `json:"caret"`
	Text      string `json:"text"`
	Composing bool   `json:"composing"`
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithWrapWidth makes arrow navigation treat soft-wrapped rows of width
// display cells as separate visual lines.
func WithWrapWidth(width int) HandlerOption {
	return func(h *Handler) { h.wrapWidth = width }
}

// WithHandlerLogger sets the logger.
func WithHandlerLogger(l *zap.Logger) HandlerOption {
	return func(h *Handler) { h.logger = l }
}

// Handler interprets input events and mutates the Store. Methods return true
// when the event was consumed and the native behavior must be suppressed.
type Handler struct {
	store     *Store
	wrapWidth int
	logger    *zap.Logger
}

// NewHandler creates a Handler for store.
func NewHandler(store *Store, opts ...HandlerOption) *Handler {
	h := &Handler{store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Store returns the underlying store.
func (h *Handler) Store() *Store { return h.store }

// Input records a native edit inside a block (plain typing).
func (h *Handler) Input(blockID, content string) error {
	h.store.Focus(blockID)
	return h.store.UpdateBlockContent(blockID, content)
}

// KeyDown handles a keydown event. Nothing is handled while an IME
// composition is in progress.
func (h *Handler) KeyDown(ev KeyEvent) bool {
	if ev.Composing {
		return false
	}
	idx := h.store.Index(ev.BlockID)
	if idx < 0 {
		h.logger.Debug("keydown on unknown block", zap.String("blockId", ev.BlockID))
		return false
	}
	b := h.store.blocks[idx]
	h.store.Focus(b.ID)
	caret := clampOffset(b.Content, ev.Caret)

	switch ev.Key {
	case KeyEnter:
		if ev.Shift {
			return false
		}
		return h.enter(idx, b, caret)
	case KeyBackspace:
		return h.backspace(idx, b)
	case KeyTab:
		return h.tab(b, caret)
	case KeyArrowUp:
		return h.arrowUp(idx, b, caret)
	case KeyArrowDown:
		return h.arrowDown(idx, b, caret)
	}
	return false
}

func (h *Handler) enter(idx int, b Block, caret int) bool {
	switch {
	case b.Kind == KindTable:
		return false

	case b.Kind == KindCodeOpen:
		indent := leadingWhitespace(b.Content, caret)
		_ = h.store.UpdateBlockContent(b.ID, insertAt(b.Content, caret, "\n"+indent))
		h.store.RequestCursor(b.ID, caret+1+runeLen(indent))
		return true

	case b.Kind == KindText && isTableTrigger(b.Content):
		if _, err := h.store.ConvertToTable(idx, tableFromHeaderRow(b.Content)); err != nil {
			return false
		}
		return true
	}

	before, after := splitAt(b.Content, caret)
	nb, err := h.store.SplitAt(idx, before, after)
	if err != nil {
		return false
	}
	h.store.RequestCursor(nb.ID, 0)
	return true
}

// isTableTrigger matches a single bare header row such as "| a | b |".
func isTableTrigger(content string) bool {
	return !strings.Contains(content, "\n") &&
		strings.HasPrefix(strings.TrimSpace(content), "|") &&
		strings.Count(content, "|") >= 2
}

// tableFromHeaderRow builds header, delimiter and one blank data row.
func tableFromHeaderRow(row string) string {
	headers := table.ParseRow(row)
	aligns := make([]table.Alignment, len(headers))
	for i := range aligns {
		aligns[i] = table.AlignLeft
	}
	return table.Serialize(headers, aligns, [][]string{make([]string, len(headers))})
}

func (h *Handler) backspace(idx int, b Block) bool {
	if b.Content != "" || idx == 0 {
		return false
	}
	return h.store.MergeWithPrevious(b.ID) == nil
}

func (h *Handler) tab(b Block, caret int) bool {
	if !b.IsCode() {
		return false
	}
	_ = h.store.UpdateBlockContent(b.ID, insertAt(b.Content, caret, codeIndent))
	h.store.RequestCursor(b.ID, caret+len(codeIndent))
	return true
}

func (h *Handler) arrowUp(idx int, b Block, caret int) bool {
	if idx == 0 || !onFirstVisualLine(b.Content, caret, h.wrapWidth) {
		return false
	}
	prev := h.store.blocks[idx-1]
	h.store.RequestCursor(prev.ID, runeLen(prev.Content))
	return true
}

func (h *Handler) arrowDown(idx int, b Block, caret int) bool {
	if idx == len(h.store.blocks)-1 || !onLastVisualLine(b.Content, caret, h.wrapWidth) {
		return false
	}
	h.store.RequestCursor(h.store.blocks[idx+1].ID, 0)
	return true
}

// Paste distributes multi-line text over new blocks. Single-line pastes are
// left to the native input. In code blocks the text is inserted literally.
func (h *Handler) Paste(ev PasteEvent) bool {
	if ev.Composing {
		return false
	}
	text := strings.ReplaceAll(ev.Text, "\r\n", "\n")
	if !strings.Contains(text, "\n") {
		return false
	}
	idx := h.store.Index(ev.BlockID)
	if idx < 0 {
		return false
	}
	b := h.store.blocks[idx]
	if b.Kind == KindTable {
		return false
	}
	caret := clampOffset(b.Content, ev.Caret)

	if b.IsCode() {
		_ = h.store.UpdateBlockContent(b.ID, insertAt(b.Content, caret, text))
		h.store.RequestCursor(b.ID, caret+runeLen(text))
		return true
	}

	frags := strings.Split(text, "\n")
	last := frags[len(frags)-1]
	before, after := splitAt(b.Content, caret)

	h.store.Batch(func() {
		_ = h.store.UpdateBlockContent(b.ID, before+frags[0])
		at := idx
		for _, f := range frags[1 : len(frags)-1] {
			_, _ = h.store.InsertAfter(at, Block{Content: f})
			at++
		}
		nb, _ := h.store.InsertAfter(at, Block{Content: last + after})
		h.store.RequestCursor(nb.ID, runeLen(last))
	})
	return true
}
