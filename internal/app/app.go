package app

import (
	"context"
	"errors"
	"net/http"
	"os/exec"
	"runtime"

	"github.com/mark3labs/mcp-go/server"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"

	"mdnotes/internal/config"
	mcpserver "mdnotes/internal/mcp"
	"mdnotes/internal/render"
	"mdnotes/internal/secret"
	"mdnotes/internal/service"
	"mdnotes/internal/storage"
	"mdnotes/internal/terminal"
	"mdnotes/internal/watcher"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx    context.Context
	cfg    *config.Config
	logger *zap.Logger

	backend  *backend
	emitter  service.EventEmitter
	docs     *service.DocumentService
	settings *service.SettingsService
	backups  *service.BackupService
	renderer *render.Renderer
	term     *terminal.Manager
	files    *watcher.Watcher // folder backend only
	poller   *documentWatcher

	mcp     *mcpserver.Server
	mcpHTTP *server.StreamableHTTPServer
}

// New creates a new App. Nothing is opened until Startup.
func New(cfg *config.Config, logger *zap.Logger) *App {
	return &App{cfg: cfg, logger: logger}
}

// wailsEmitter forwards service events to the frontend. Events are always
// sent on the Wails context, whatever context the caller holds.
type wailsEmitter struct {
	ctx context.Context
}

func (e wailsEmitter) Emit(_ context.Context, event string, data any) {
	wailsRuntime.EventsEmit(e.ctx, event, data)
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	a.emitter = wailsEmitter{ctx: ctx}

	if runtime.GOOS == "darwin" {
		// macOS: disable "Press and Hold" accent popup so key repeat works in the
		// WebView and in the embedded editor.
		exec.Command("defaults", "write", "com.wails.mdnotes", "ApplePressAndHoldEnabled", "-bool", "false").Run()
	}

	b, err := openBackend(ctx, a.cfg, secret.Default(), a.logger)
	if err != nil {
		a.logger.Error("open storage", zap.Error(err))
		wailsRuntime.LogFatalf(ctx, "Failed to open storage: %v", err)
		return
	}
	a.backend = b
	a.settings = service.NewSettingsService(b.db)
	a.renderer = render.New()
	a.docs = newDocumentService(a.cfg, b, a.emitter, a.logger)

	termOpts := []terminal.Option{terminal.WithLogger(a.logger)}
	if a.cfg.Editor.Command != "" {
		termOpts = append(termOpts, terminal.WithEditor(a.cfg.Editor.Command))
	}
	a.term = terminal.New(terminalDataCallback(a), terminalExitCallback(a), termOpts...)

	if b.folder != nil {
		a.files, err = watcher.New(b.folder.Dir(), a.onFileChanged,
			watcher.WithLogger(a.logger),
			watcher.WithListChanged(func() {
				a.emitter.Emit(ctx, service.EventDocumentsChanged, nil)
			}),
		)
		if err != nil {
			a.logger.Warn("folder watcher disabled", zap.Error(err))
		}
	}

	a.poller = newDocumentWatcher(ctx, a)
	a.poller.Start()

	a.backups = service.NewBackupService(b.docs, a.cfg.Backup.Dir, a.emitter, a.logger)
	if a.cfg.Backup.Enabled {
		if err := a.backups.Start(ctx, a.cfg.Backup.Schedule); err != nil {
			a.logger.Error("scheduled backups disabled", zap.Error(err))
		}
	}

	a.mcp = mcpserver.New(mcpserver.Deps{
		Emitter:         a.emitter,
		Documents:       a.docs,
		Renderer:        a.renderer,
		ApprovalTimeout: a.cfg.MCP.ApprovalTimeout,
		Logger:          a.logger,
	})
	if addr := a.cfg.MCP.Listen; addr != "" {
		a.mcpHTTP = a.mcp.HTTPServer()
		go func() {
			a.logger.Info("mcp endpoint listening", zap.String("addr", addr))
			if err := a.mcpHTTP.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("mcp endpoint stopped", zap.Error(err))
			}
		}()
	}

	if last := a.settings.LastDocument(); last != "" {
		if _, err := a.openDocument(last); err != nil {
			a.logger.Info("last document not reopened", zap.String("id", last), zap.Error(err))
		}
	}
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.mcpHTTP != nil {
		a.mcpHTTP.Shutdown(ctx)
	}
	if a.poller != nil {
		a.poller.Stop()
	}
	if a.backups != nil {
		a.backups.Stop(ctx)
	}
	if a.term != nil {
		a.term.Close()
	}
	if a.files != nil {
		a.files.Close()
	}
	if a.docs != nil {
		if err := a.docs.Close(ctx); err != nil {
			a.logger.Error("final save failed", zap.Error(err))
		}
	}
	if a.backend != nil {
		a.backend.Close()
	}
	a.logger.Sync()
}

func newDocumentService(cfg *config.Config, b *backend, emitter service.EventEmitter, logger *zap.Logger) *service.DocumentService {
	return service.NewDocumentService(b.docs, emitter,
		service.WithAutosaveDelay(cfg.Autosave.Delay),
		service.WithWrapWidth(cfg.Editor.WrapWidth),
		service.WithRevisions(storage.NewRevisionStore(b.db)),
		service.WithLogger(logger),
	)
}

// onFileChanged applies an edit made to the open document's file by
// another program.
func (a *App) onFileChanged(id, content string) {
	a.docs.ExternalChange(a.ctx, id, content)
}
