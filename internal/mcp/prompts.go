package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("summarize_document",
		mcp.WithPromptDescription("Summarize a document and append the summary at its end"),
		mcp.WithArgument("documentId",
			mcp.ArgumentDescription("ID of the document to summarize"),
			mcp.RequiredArgument(),
		),
	), s.handleSummarizePrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("tabulate",
		mcp.WithPromptDescription("Collect facts from a document into a markdown table"),
		mcp.WithArgument("documentId",
			mcp.ArgumentDescription("ID of the document"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("columns",
			mcp.ArgumentDescription("Comma-separated column names"),
			mcp.RequiredArgument(),
		),
	), s.handleTabulatePrompt)
}

func (s *Server) handleSummarizePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	id := req.Params.Arguments["documentId"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Summarize document %s", id),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Summarize the document "%s". Follow these steps:

1. Use get_outline to see how the document is structured
2. Use read_document to read its markdown
3. Write a short summary with one bullet per top-level section
4. Use append_markdown to add it under a "## Summary" heading

Do not rewrite existing content.`, id),
				},
			},
		},
	}, nil
}

func (s *Server) handleTabulatePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	id := req.Params.Arguments["documentId"]
	columns := req.Params.Arguments["columns"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Tabulate document %s", id),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Build a table with the columns %s from the document "%s". Follow these steps:

1. Use read_document to read the markdown
2. Use append_markdown to add a GFM table with the header row and a delimiter row
3. Use list_blocks to find the new table block index
4. Fill any missing cells with edit_table (op set_cell)

Keep one fact per row.`, columns, id),
				},
			},
		},
	}, nil
}
