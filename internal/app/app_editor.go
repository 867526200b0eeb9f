package app

import (
	"fmt"
	"os"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"mdnotes/internal/editor"
	"mdnotes/internal/media"
	"mdnotes/internal/service"
	"mdnotes/internal/table"
)

// ============================================================
// Block editor events
// ============================================================

// EditorInput stores the new content of a focused text block.
func (a *App) EditorInput(blockID, content string) (*EditorState, error) {
	sess, err := a.docs.Active()
	if err != nil {
		return nil, err
	}
	if err := sess.Input(blockID, content); err != nil {
		return nil, err
	}
	return editorState(sess, true), nil
}

// EditorKeyDown handles Enter, Backspace and the arrow keys. When Handled
// is false the frontend applies the browser default.
func (a *App) EditorKeyDown(ev editor.KeyEvent) (*EditorState, error) {
	sess, err := a.docs.Active()
	if err != nil {
		return nil, err
	}
	return editorState(sess, sess.KeyDown(ev)), nil
}

func (a *App) EditorPaste(ev editor.PasteEvent) (*EditorState, error) {
	sess, err := a.docs.Active()
	if err != nil {
		return nil, err
	}
	return editorState(sess, sess.Paste(ev)), nil
}

// EditorFocus makes blockID the block shown as raw Markdown.
func (a *App) EditorFocus(blockID string) (*EditorState, error) {
	sess, err := a.docs.Active()
	if err != nil {
		return nil, err
	}
	return editorState(sess, sess.Focus(blockID)), nil
}

func (a *App) RemoveBlock(blockID string) (*EditorState, error) {
	sess, err := a.docs.Active()
	if err != nil {
		return nil, err
	}
	if err := sess.RemoveBlock(blockID); err != nil {
		return nil, err
	}
	return editorState(sess, true), nil
}

// ============================================================
// Tables
// ============================================================

// OpenTable returns the structured grid of a table block.
func (a *App) OpenTable(blockID string) (*table.Table, error) {
	sess, err := a.docs.Active()
	if err != nil {
		return nil, err
	}
	return sess.EditTable(blockID, nil)
}

// EditTable applies one grid mutation and writes the table back to its block.
func (a *App) EditTable(blockID string, edit service.TableEdit) (*table.Table, error) {
	sess, err := a.docs.Active()
	if err != nil {
		return nil, err
	}
	fn, err := edit.Func()
	if err != nil {
		return nil, err
	}
	return sess.EditTable(blockID, fn)
}

// ============================================================
// Images
// ============================================================

// PickImage asks for an image file and embeds it at blockID.
// A cancelled dialog returns a nil state.
func (a *App) PickImage(blockID string) (*EditorState, error) {
	path, err := wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title: "Insert Image",
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "Images", Pattern: "*.png;*.jpg;*.jpeg;*.gif;*.webp;*.svg"},
		},
	})
	if err != nil || path == "" {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return a.insertImage(blockID, data)
}

// PasteImage embeds clipboard or drag-and-drop image data (a data URI or
// plain base64) at blockID.
func (a *App) PasteImage(blockID, dataURI string) (*EditorState, error) {
	data, err := media.DecodeDataURI(dataURI)
	if err != nil {
		return nil, err
	}
	return a.insertImage(blockID, data)
}

func (a *App) insertImage(blockID string, data []byte) (*EditorState, error) {
	sess, err := a.docs.Active()
	if err != nil {
		return nil, err
	}
	uri, err := media.EncodeImage(data)
	if err != nil {
		return nil, err
	}
	if err := sess.InsertImage(blockID, uri); err != nil {
		return nil, err
	}
	return editorState(sess, true), nil
}
