package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"mdnotes/internal/editor"
	"mdnotes/internal/render"
	"mdnotes/internal/service"
)

func (s *Server) registerBlockTools() {
	// ── list_blocks ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_blocks",
		mcp.WithDescription("List the blocks of a document in order. Every line outside code fences and tables is its own block."),
		mcp.WithString("documentId",
			mcp.Description("ID of the document (optional, defaults to the open document)"),
		),
	), s.handleListBlocks)

	// ── get_outline ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_outline",
		mcp.WithDescription("List the headings of a document with their line numbers"),
		mcp.WithString("documentId",
			mcp.Description("ID of the document (optional, defaults to the open document)"),
		),
	), s.handleGetOutline)

	// ── edit_table ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("edit_table",
		mcp.WithDescription("Apply one structured edit to a table block and return the resulting table"),
		mcp.WithString("documentId",
			mcp.Description("ID of the document (optional, defaults to the open document)"),
		),
		mcp.WithNumber("blockIndex",
			mcp.Description("Index of the table block as returned by list_blocks"),
			mcp.Required(),
		),
		mcp.WithString("op",
			mcp.Description("Operation to apply"),
			mcp.Enum(service.TableOps...),
			mcp.Required(),
		),
		mcp.WithNumber("row",
			mcp.Description("Data row index starting at 0; -1 addresses the header row in set_cell"),
		),
		mcp.WithNumber("col",
			mcp.Description("Column index"),
		),
		mcp.WithNumber("to",
			mcp.Description("Destination row for move_row"),
		),
		mcp.WithString("value",
			mcp.Description("Cell text for set_cell, or left|center|right for set_alignment"),
		),
	), s.handleEditTable)
}

type blockSummary struct {
	Index   int         `json:"index"`
	ID      string      `json:"id,omitempty"`
	Type    editor.Type `json:"type"`
	Kind    editor.Kind `json:"kind"`
	Content string      `json:"content"`
}

func summarize(blocks []editor.Block, withIDs bool) []blockSummary {
	out := make([]blockSummary, len(blocks))
	for i, b := range blocks {
		out[i] = blockSummary{Index: i, Type: b.Type(), Kind: b.Kind, Content: b.Content}
		if withIDs {
			out[i].ID = b.ID
		}
	}
	return out
}

// activeSession returns the editing session when id is the open document.
func (s *Server) activeSession(id string) *service.Session {
	sess, err := s.docs.Active()
	if err != nil || sess.ID() != id {
		return nil
	}
	return sess
}

func (s *Server) handleListBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveDocumentID(req)
	if err != nil {
		return nil, err
	}
	if sess := s.activeSession(id); sess != nil {
		return jsonResult(summarize(sess.Blocks(), true))
	}
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return jsonResult(summarize(editor.Segment(doc.Content, editor.NewID), false))
}

func (s *Server) handleGetOutline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveDocumentID(req)
	if err != nil {
		return nil, err
	}
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get outline: %w", err)
	}
	outline := render.Outline(doc.Content)
	if outline == nil {
		outline = []render.Heading{}
	}
	return jsonResult(outline)
}

func (s *Server) handleEditTable(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveDocumentID(req)
	if err != nil {
		return nil, err
	}
	row := req.GetInt("row", 0)
	edit := service.TableEdit{
		Op:    req.GetString("op", ""),
		Row:   row,
		Col:   req.GetInt("col", 0),
		To:    req.GetInt("to", row),
		Value: req.GetString("value", ""),
	}
	tbl, err := s.docs.EditTable(ctx, id, req.GetInt("blockIndex", -1), edit)
	if err != nil {
		return nil, err
	}
	return jsonResult(tbl)
}
