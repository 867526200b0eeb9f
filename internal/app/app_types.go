package app

import (
	"mdnotes/internal/editor"
	"mdnotes/internal/service"
)

// DocumentView is what the frontend needs to render an opened document.
type DocumentView struct {
	ID     string              `json:"id"`
	Title  string              `json:"title"`
	Blocks []editor.Block      `json:"blocks"`
	Status service.StatusEvent `json:"status"`
}

// EditorState is returned by every editor event. Cursor is set when the
// frontend must move the caret (read-and-cleared on the backend).
type EditorState struct {
	Handled bool                  `json:"handled"`
	Blocks  []editor.Block        `json:"blocks"`
	Focused string                `json:"focused"`
	Cursor  *editor.CursorRequest `json:"cursor,omitempty"`
	Status  service.StatusEvent   `json:"status"`
}

func documentView(sess *service.Session) *DocumentView {
	return &DocumentView{
		ID:     sess.ID(),
		Title:  sess.Title(),
		Blocks: sess.Blocks(),
		Status: sess.Status(),
	}
}

func editorState(sess *service.Session, handled bool) *EditorState {
	st := &EditorState{
		Handled: handled,
		Blocks:  sess.Blocks(),
		Focused: sess.Focused(),
		Status:  sess.Status(),
	}
	if c, ok := sess.TakeCursor(); ok {
		st.Cursor = &c
	}
	return st
}
