package app

import (
	"encoding/base64"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"

	"mdnotes/internal/terminal"
)

// ============================================================
// Embedded Terminal ($EDITOR)
// ============================================================

// TerminalWrite sends input from xterm.js to the PTY.
func (a *App) TerminalWrite(data string) error {
	return a.term.Write(data)
}

// TerminalResize resizes the PTY.
func (a *App) TerminalResize(cols, rows int) error {
	return a.term.Resize(uint16(cols), uint16(rows))
}

// OpenInEditor opens the whole open document in the external editor with
// the cursor on the line holding caret of blockID. Pending edits are saved
// first so the editor sees them.
func (a *App) OpenInEditor(blockID string, caret int) error {
	sess, err := a.docs.Active()
	if err != nil {
		return err
	}
	if err := sess.Flush(a.ctx); err != nil {
		return err
	}
	content := sess.Content()
	line := terminal.LineAt(content, documentOffset(sess.Blocks(), blockID, caret))
	return a.term.OpenDocument(sess.ID(), a.backend.path(sess.ID()), content, line)
}

// CloseEditor closes the embedded terminal session without applying edits.
func (a *App) CloseEditor() {
	a.term.Close()
}

// onEditorExit applies the file the editor wrote back to the document.
func (a *App) onEditorExit(res terminal.ExitResult) {
	if res.Err != nil {
		a.logger.Error("read back editor file", zap.String("id", res.DocumentID), zap.Error(res.Err))
		return
	}
	if err := a.docs.WriteContent(a.ctx, res.DocumentID, res.Content); err != nil {
		a.logger.Error("apply editor changes", zap.String("id", res.DocumentID), zap.Error(err))
	}
}

// terminalDataCallback returns the callback used to forward PTY output to the frontend.
func terminalDataCallback(a *App) func(data []byte) {
	return func(data []byte) {
		encoded := base64.StdEncoding.EncodeToString(data)
		wailsRuntime.EventsEmit(a.ctx, "terminal:data", encoded)
	}
}

// terminalExitCallback returns the callback used when the editor process exits.
func terminalExitCallback(a *App) func(res terminal.ExitResult) {
	return func(res terminal.ExitResult) {
		a.onEditorExit(res)
		wailsRuntime.EventsEmit(a.ctx, "terminal:exit", map[string]any{
			"documentId": res.DocumentID,
			"cursorLine": res.CursorLine,
		})
	}
}
