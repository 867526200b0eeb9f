package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"mdnotes/internal/render"
)

const (
	documentsURI      = "notes://documents"
	documentURIPrefix = "notes://document/"
)

func (s *Server) registerResources() {
	// ── notes://documents ──────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		documentsURI,
		"All Documents",
		mcp.WithMIMEType("application/json"),
	), s.handleDocumentsResource)

	// ── notes://document/{id} ──────────────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"notes://document/{id}",
			"Document Markdown",
			mcp.WithTemplateMIMEType("text/markdown"),
		),
		s.handleDocumentResource,
	)

	// ── notes://document/{id}/outline ──────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"notes://document/{id}/outline",
			"Document Outline",
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleOutlineResource,
	)
}

func (s *Server) handleDocumentsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	docs, err := s.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	data, _ := json.MarshalIndent(docs, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      documentsURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleDocumentResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	id, sub := documentIDFromURI(uri)
	if id == "" || sub != "" {
		return nil, fmt.Errorf("could not extract document id from URI: %s", uri)
	}
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     doc.Content,
		},
	}, nil
}

func (s *Server) handleOutlineResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	id, sub := documentIDFromURI(uri)
	if id == "" || sub != "outline" {
		return nil, fmt.Errorf("could not extract document id from URI: %s", uri)
	}
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	outline := render.Outline(doc.Content)
	if outline == nil {
		outline = []render.Heading{}
	}
	data, _ := json.MarshalIndent(outline, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// documentIDFromURI splits "notes://document/{id}[/{sub}]". Folder ids are
// file names, so the id is everything up to the last known suffix.
func documentIDFromURI(uri string) (id, sub string) {
	rest, ok := strings.CutPrefix(uri, documentURIPrefix)
	if !ok {
		return "", ""
	}
	if base, found := strings.CutSuffix(rest, "/outline"); found {
		return base, "outline"
	}
	return rest, ""
}
