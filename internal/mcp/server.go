package mcpserver

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"mdnotes/internal/render"
	"mdnotes/internal/service"
)

// Server is the MCP server for mdnotes.
// It exposes tools, resources, and prompts so AI agents can read and edit documents.
type Server struct {
	mcp      *server.MCPServer
	emitter  EventEmitter
	approval *ApprovalQueue
	logger   *zap.Logger

	docs     *service.DocumentService
	renderer *render.Renderer
}

// Deps holds all dependencies passed from the App layer to the MCP server.
type Deps struct {
	Emitter         EventEmitter
	Documents       *service.DocumentService
	Renderer        *render.Renderer
	ApprovalDB      *sql.DB // When set, use SQLite-based approval (standalone mode)
	ApprovalTimeout time.Duration
	Logger          *zap.Logger
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	if deps.Emitter == nil {
		deps.Emitter = service.NopEmitter{}
	}
	if deps.Renderer == nil {
		deps.Renderer = render.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	approval := NewApprovalQueue(deps.Emitter)
	if deps.ApprovalDB != nil {
		approval.SetDB(deps.ApprovalDB)
	}
	if deps.ApprovalTimeout > 0 {
		approval.SetTimeout(deps.ApprovalTimeout)
	}
	s := &Server{
		emitter:  deps.Emitter,
		approval: approval,
		logger:   deps.Logger.Named("mcp"),
		docs:     deps.Documents,
		renderer: deps.Renderer,
	}

	s.mcp = server.NewMCPServer(
		"mdnotes-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerDocumentTools()
	s.registerBlockTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("starting stdio server")
	return server.ServeStdio(s.mcp)
}

// HTTPServer returns a streamable HTTP transport for the in-app endpoint.
func (s *Server) HTTPServer() *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s.mcp)
}

// Pending lists in-process actions awaiting approval.
func (s *Server) Pending() []PendingAction {
	return s.approval.Pending()
}

// Approve forwards a user approval to the approval queue.
func (s *Server) Approve(actionID string) bool {
	return s.approval.Approve(actionID)
}

// Reject forwards a user rejection to the approval queue.
func (s *Server) Reject(actionID string) bool {
	return s.approval.Reject(actionID)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// resolveDocumentID returns the documentId argument or the open document.
func (s *Server) resolveDocumentID(req mcp.CallToolRequest) (string, error) {
	if id := req.GetString("documentId", ""); id != "" {
		return id, nil
	}
	sess, err := s.docs.Active()
	if err != nil {
		return "", fmt.Errorf("no documentId provided and no document is open")
	}
	return sess.ID(), nil
}
