package app

import (
	"fmt"
	"os"
	"strings"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"mdnotes/internal/render"
)

// ============================================================
// Rendering & export
// ============================================================

// RenderMarkdown renders a non-focused block or the whole preview.
func (a *App) RenderMarkdown(markdown string) (string, error) {
	return a.renderer.Render(markdown)
}

// CodeCSS returns the stylesheet for highlighted code blocks.
func (a *App) CodeCSS() (string, error) {
	return a.renderer.CSS()
}

// Outline lists the headings of the open document.
func (a *App) Outline() ([]render.Heading, error) {
	sess, err := a.docs.Active()
	if err != nil {
		return nil, err
	}
	out := render.Outline(sess.Content())
	if out == nil {
		out = []render.Heading{}
	}
	return out, nil
}

// ExportHTML asks for a destination and writes the open document as a
// standalone HTML page. Returns "" when the dialog is cancelled.
func (a *App) ExportHTML() (string, error) {
	sess, err := a.docs.Active()
	if err != nil {
		return "", err
	}
	path, err := wailsRuntime.SaveFileDialog(a.ctx, wailsRuntime.SaveDialogOptions{
		Title:           "Export HTML",
		DefaultFilename: exportFileName(sess.Title()),
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "HTML", Pattern: "*.html"},
		},
	})
	if err != nil || path == "" {
		return "", err
	}
	page, err := a.renderer.ExportHTML(sess.Title(), sess.Content())
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, page, 0644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

func exportFileName(title string) string {
	return strings.TrimSuffix(title, ".md") + ".html"
}
