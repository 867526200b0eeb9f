package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	mcpserver "mdnotes/internal/mcp"
	"mdnotes/internal/service"
)

// documentWatcher polls the local database for changes made by other
// processes (the standalone MCP server, a second app instance) and emits
// Wails events so the frontend auto-refreshes.
type documentWatcher struct {
	ctx      context.Context
	app      *App
	interval time.Duration

	mu     sync.Mutex
	last   string // documents fingerprint (count + max updated_at)
	stopCh chan struct{}
	// Track emitted approval IDs to avoid infinite re-emission
	emittedApprovals map[string]bool
}

func newDocumentWatcher(ctx context.Context, app *App) *documentWatcher {
	return &documentWatcher{
		ctx:              ctx,
		app:              app,
		interval:         2 * time.Second,
		emittedApprovals: map[string]bool{},
	}
}

// Start begins the polling loop. Should be called once on app startup.
func (w *documentWatcher) Start() {
	w.stopCh = make(chan struct{})
	go w.pollLoop(w.stopCh)
}

// Stop terminates the polling loop.
func (w *documentWatcher) Stop() {
	if w.stopCh != nil {
		close(w.stopCh)
		w.stopCh = nil
	}
}

func (w *documentWatcher) pollLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.checkDocuments()
			w.checkApprovals()
		case <-stop:
			return
		case <-w.ctx.Done():
			return
		}
	}
}

// checkDocuments refreshes the sidebar and reloads the open document when
// the fingerprint moved. Our own saves move it too; reloading then is a
// no-op because the content is unchanged.
func (w *documentWatcher) checkDocuments() {
	fp, ok := w.app.backend.fingerprint(w.ctx)
	if !ok {
		return
	}

	w.mu.Lock()
	changed := w.last != "" && w.last != fp
	w.last = fp
	w.mu.Unlock()

	if !changed {
		return
	}
	w.app.emitter.Emit(w.ctx, service.EventDocumentsChanged, nil)
	if _, err := w.app.docs.RefreshActive(w.ctx); err != nil {
		w.app.logger.Warn("refresh open document", zap.Error(err))
	}
}

// checkApprovals surfaces approvals requested by standalone MCP processes.
func (w *documentWatcher) checkApprovals() {
	pending, err := mcpserver.ListPendingDB(w.ctx, w.app.backend.db.Conn())
	if err != nil {
		return
	}

	seen := make(map[string]bool, len(pending))
	for _, p := range pending {
		seen[p.ID] = true
		w.mu.Lock()
		alreadySent := w.emittedApprovals[p.ID]
		w.emittedApprovals[p.ID] = true
		w.mu.Unlock()
		if !alreadySent {
			w.app.emitter.Emit(w.ctx, mcpserver.EventApprovalRequired, p)
		}
	}

	// Clean up tracking for resolved/deleted approvals (standalone MCP deletes after reading)
	w.mu.Lock()
	for id := range w.emittedApprovals {
		if !seen[id] {
			delete(w.emittedApprovals, id)
			w.app.emitter.Emit(w.ctx, mcpserver.EventApprovalDismissed, map[string]string{"id": id})
		}
	}
	w.mu.Unlock()
}
