package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

func (s *Server) registerDocumentTools() {
	// ── list_documents ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List all documents, most recently updated first"),
	), s.handleListDocuments)

	// ── read_document ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read a document. Defaults to the document open in the editor."),
		mcp.WithString("documentId",
			mcp.Description("ID of the document (optional, defaults to the open document)"),
		),
		mcp.WithString("format",
			mcp.Description("markdown (default) or html"),
			mcp.Enum("markdown", "html"),
		),
	), s.handleReadDocument)

	// ── create_document ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_document",
		mcp.WithDescription("Create a new markdown document"),
		mcp.WithString("title",
			mcp.Description("Title of the document"),
			mcp.Required(),
		),
		mcp.WithString("content",
			mcp.Description("Initial markdown content"),
		),
	), s.handleCreateDocument)

	// ── write_document ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("write_document",
		mcp.WithDescription("Replace the whole markdown content of a document. Requires user approval."),
		mcp.WithString("documentId",
			mcp.Description("ID of the document (optional, defaults to the open document)"),
		),
		mcp.WithString("content",
			mcp.Description("New markdown content"),
			mcp.Required(),
		),
	), s.handleWriteDocument)

	// ── append_markdown ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("append_markdown",
		mcp.WithDescription("Append markdown at the end of a document, separated by a blank line"),
		mcp.WithString("documentId",
			mcp.Description("ID of the document (optional, defaults to the open document)"),
		),
		mcp.WithString("markdown",
			mcp.Description("Markdown to append"),
			mcp.Required(),
		),
	), s.handleAppendMarkdown)

	// ── rename_document ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("rename_document",
		mcp.WithDescription("Rename a document. Returns the document id, which changes for folder storage."),
		mcp.WithString("documentId",
			mcp.Description("ID of the document"),
			mcp.Required(),
		),
		mcp.WithString("title",
			mcp.Description("New title"),
			mcp.Required(),
		),
	), s.handleRenameDocument)

	// ── delete_document ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_document",
		mcp.WithDescription("Delete a document and its revisions. Requires user approval."),
		mcp.WithString("documentId",
			mcp.Description("ID of the document"),
			mcp.Required(),
		),
	), s.handleDeleteDocument)
}

func (s *Server) handleListDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.docs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return jsonResult(docs)
}

func (s *Server) handleReadDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveDocumentID(req)
	if err != nil {
		return nil, err
	}
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if req.GetString("format", "markdown") == "html" {
		html, err := s.renderer.Render(doc.Content)
		if err != nil {
			return nil, err
		}
		return textResult(html), nil
	}
	return textResult(doc.Content), nil
}

func (s *Server) handleCreateDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	doc, err := s.docs.Create(ctx, title, req.GetString("content", ""))
	if err != nil {
		return nil, err
	}
	return jsonResult(map[string]string{"id": doc.ID, "title": doc.Title})
}

func (s *Server) handleWriteDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveDocumentID(req)
	if err != nil {
		return nil, err
	}
	content, ok := req.GetArguments()["content"].(string)
	if !ok {
		return nil, fmt.Errorf("content is required")
	}
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}

	meta, _ := json.Marshal(map[string]any{"documentId": id, "bytes": len(content)})
	desc := fmt.Sprintf("Replace the content of %q (%d bytes)", doc.Title, len(content))
	if err := s.approval.Request(ctx, "write_document", desc, string(meta)); err != nil {
		s.logger.Info("write_document not approved", zap.String("id", id), zap.Error(err))
		return textResult("Action rejected by user"), nil
	}

	if err := s.docs.WriteContent(ctx, id, content); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Wrote %d bytes to %s", len(content), id)), nil
}

func (s *Server) handleAppendMarkdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveDocumentID(req)
	if err != nil {
		return nil, err
	}
	markdown := req.GetString("markdown", "")
	if markdown == "" {
		return nil, fmt.Errorf("markdown is required")
	}
	if err := s.docs.AppendMarkdown(ctx, id, markdown); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Appended %d bytes to %s", len(markdown), id)), nil
}

func (s *Server) handleRenameDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("documentId", "")
	title := req.GetString("title", "")
	if id == "" || title == "" {
		return nil, fmt.Errorf("documentId and title are required")
	}
	newID, err := s.docs.Rename(ctx, id, title)
	if err != nil {
		return nil, err
	}
	return jsonResult(map[string]string{"id": newID, "title": title})
}

func (s *Server) handleDeleteDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("documentId", "")
	if id == "" {
		return nil, fmt.Errorf("documentId is required")
	}
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete document: %w", err)
	}

	meta, _ := json.Marshal(map[string]string{"documentId": id})
	desc := fmt.Sprintf("Delete document %q", doc.Title)
	if err := s.approval.Request(ctx, "delete_document", desc, string(meta)); err != nil {
		s.logger.Info("delete_document not approved", zap.String("id", id), zap.Error(err))
		return textResult("Action rejected by user"), nil
	}

	if err := s.docs.Delete(ctx, id); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Deleted %s", id)), nil
}
