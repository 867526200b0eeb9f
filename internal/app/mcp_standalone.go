package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"mdnotes/internal/config"
	mcpserver "mdnotes/internal/mcp"
	"mdnotes/internal/render"
	"mdnotes/internal/secret"
	"mdnotes/internal/service"
)

// ServeMCP runs the app as a standalone MCP server on stdin/stdout with no GUI.
// Approvals are written to the shared SQLite database and answered by the
// running app. It returns when stdin closes or the process is interrupted.
func ServeMCP(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	b, err := openBackend(ctx, cfg, secret.Default(), logger)
	if err != nil {
		return err
	}
	defer b.Close()

	docs := newDocumentService(cfg, b, service.NopEmitter{}, logger)
	defer docs.Close(context.Background())

	mcpSrv := mcpserver.New(mcpserver.Deps{
		Emitter:         service.NopEmitter{},
		Documents:       docs,
		Renderer:        render.New(),
		ApprovalDB:      b.db.Conn(), // Enable SQLite-based approval IPC
		ApprovalTimeout: cfg.MCP.ApprovalTimeout,
		Logger:          logger,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- mcpSrv.ServeStdio() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}
