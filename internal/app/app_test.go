package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mdnotes/internal/config"
	"mdnotes/internal/editor"
	mcpserver "mdnotes/internal/mcp"
	"mdnotes/internal/secret"
	"mdnotes/internal/service"
)

// newTestApp wires an App the way Startup does, minus the Wails runtime,
// the terminal and the background loops.
func newTestApp(t *testing.T, backend string) (*App, *service.MockEmitter) {
	t.Helper()
	ctx := context.Background()
	cfg := config.Default(t.TempDir())
	cfg.Storage.Backend = backend

	b, err := openBackend(ctx, cfg, secret.NewEnvStore(), zap.NewNop())
	require.NoError(t, err)

	emitter := &service.MockEmitter{}
	a := &App{
		ctx:      ctx,
		cfg:      cfg,
		logger:   zap.NewNop(),
		backend:  b,
		emitter:  emitter,
		settings: service.NewSettingsService(b.db),
	}
	a.docs = newDocumentService(cfg, b, emitter, a.logger)
	a.backups = service.NewBackupService(b.docs, cfg.Backup.Dir, emitter, a.logger)
	a.mcp = mcpserver.New(mcpserver.Deps{Emitter: emitter, Documents: a.docs})
	t.Cleanup(func() {
		a.docs.Close(ctx)
		b.Close()
	})
	return a, emitter
}

func TestOpenBackend_SQLite(t *testing.T) {
	a, _ := newTestApp(t, config.BackendSQLite)
	require.NotNil(t, a.backend.local)
	assert.Nil(t, a.backend.folder)
	assert.Equal(t, "", a.backend.path("x"))

	_, ok := a.backend.fingerprint(context.Background())
	assert.True(t, ok)
}

func TestOpenBackend_Folder(t *testing.T) {
	a, _ := newTestApp(t, config.BackendFolder)
	require.NotNil(t, a.backend.folder)
	assert.DirExists(t, a.cfg.Storage.Folder)
	assert.Equal(t, filepath.Join(a.cfg.Storage.Folder, "a.md"), a.backend.path("a.md"))

	_, ok := a.backend.fingerprint(context.Background())
	assert.False(t, ok)
}

func TestOpenBackend_RemoteUnreachable(t *testing.T) {
	cfg := config.Default(t.TempDir())
	cfg.Storage.Backend = config.BackendPostgres
	cfg.Storage.Host = "127.0.0.1"
	cfg.Storage.Port = 1
	cfg.Storage.Database = "notes"
	_, err := openBackend(context.Background(), cfg, secret.NewEnvStore(), zap.NewNop())
	assert.Error(t, err)
}

func TestApp_EditFlow(t *testing.T) {
	a, _ := newTestApp(t, config.BackendSQLite)

	view, err := a.CreateDocument("Notes")
	require.NoError(t, err)
	require.Len(t, view.Blocks, 1)
	assert.Equal(t, view.ID, a.settings.LastDocument())

	first := view.Blocks[0].ID
	st, err := a.EditorInput(first, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", st.Blocks[0].Content)

	st, err = a.EditorKeyDown(editor.KeyEvent{Key: editor.KeyEnter, BlockID: first, Caret: 2})
	require.NoError(t, err)
	assert.True(t, st.Handled)
	require.Len(t, st.Blocks, 2)
	assert.Equal(t, "he", st.Blocks[0].Content)
	assert.Equal(t, "llo", st.Blocks[1].Content)
	require.NotNil(t, st.Cursor)
	assert.Equal(t, editor.CursorRequest{BlockID: st.Blocks[1].ID, Offset: 0}, *st.Cursor)

	st, err = a.EditorFocus(first)
	require.NoError(t, err)
	assert.Nil(t, st.Cursor, "cursor requests are read once")

	src, err := a.GetSource()
	require.NoError(t, err)
	assert.Equal(t, "he\nllo", src)

	require.NoError(t, a.SaveDocument())
	doc, err := a.backend.docs.GetDocument(a.ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, "he\nllo", doc.Content)
}

func TestApp_SourceModeAndTables(t *testing.T) {
	a, _ := newTestApp(t, config.BackendSQLite)
	view, err := a.CreateDocument("T")
	require.NoError(t, err)

	view, err = a.SetSource("# T\n| a | b |\n| --- | --- |\n| 1 | 2 |")
	require.NoError(t, err)
	require.Len(t, view.Blocks, 2)
	tableID := view.Blocks[1].ID

	tbl, err := a.OpenTable(tableID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Headers)

	tbl, err = a.EditTable(tableID, service.TableEdit{Op: service.TableSetCell, Row: -1, Col: 0, Value: "A"})
	require.NoError(t, err)
	assert.Equal(t, "A", tbl.Headers[0])

	_, err = a.EditTable(tableID, service.TableEdit{Op: "bogus"})
	assert.Error(t, err)

	out, err := a.Outline()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "T", out[0].Text)
}

func TestApp_PasteImage(t *testing.T) {
	a, _ := newTestApp(t, config.BackendSQLite)
	view, err := a.CreateDocument("img")
	require.NoError(t, err)

	// 1x1 transparent GIF
	gif := "R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7"
	st, err := a.PasteImage(view.Blocks[0].ID, gif)
	require.NoError(t, err)
	assert.Equal(t, "![Image](data:image/gif;base64,"+gif+")", st.Blocks[0].Content)

	_, err = a.PasteImage(view.Blocks[0].ID, "aGVsbG8=")
	assert.Error(t, err)
}

func TestApp_RenameDeleteFolder(t *testing.T) {
	a, _ := newTestApp(t, config.BackendFolder)
	view, err := a.CreateDocument("Draft")
	require.NoError(t, err)
	assert.Equal(t, "Draft.md", view.ID)

	newID, err := a.RenameDocument(view.ID, "Final")
	require.NoError(t, err)
	assert.Equal(t, "Final.md", newID)
	assert.Equal(t, "Final.md", a.settings.LastDocument())
	assert.Equal(t, "Final.md", a.ActiveDocument().ID)

	require.NoError(t, a.DeleteDocument(newID))
	assert.Nil(t, a.ActiveDocument())
	assert.Equal(t, "", a.settings.LastDocument())
	_, err = os.Stat(filepath.Join(a.cfg.Storage.Folder, "Final.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestApp_RunBackup(t *testing.T) {
	a, _ := newTestApp(t, config.BackendSQLite)
	_, err := a.CreateDocument("One")
	require.NoError(t, err)

	res, err := a.RunBackup()
	require.NoError(t, err)
	assert.Equal(t, 1, res.Documents)
	assert.FileExists(t, filepath.Join(res.Dir, "One.md"))
}

func TestApp_ViewMode(t *testing.T) {
	a, _ := newTestApp(t, config.BackendSQLite)
	assert.Equal(t, service.ViewEdit, a.GetViewMode())
	require.NoError(t, a.SetViewMode("split"))
	assert.Equal(t, service.ViewSplit, a.GetViewMode())
	assert.Error(t, a.SetViewMode("wide"))
}

func TestApp_ResolveStandaloneApproval(t *testing.T) {
	a, _ := newTestApp(t, config.BackendSQLite)
	db := a.backend.db.Conn()
	_, err := db.Exec(`INSERT INTO mcp_approvals (id, tool, description) VALUES ('ap1', 'delete_document', 'Delete x')`)
	require.NoError(t, err)

	pending, err := a.PendingApprovals()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "delete_document", pending[0].Tool)

	require.NoError(t, a.RejectMCPAction("ap1"))
	var status string
	require.NoError(t, db.QueryRow(`SELECT status FROM mcp_approvals WHERE id = 'ap1'`).Scan(&status))
	assert.Equal(t, mcpserver.StatusRejected, status)

	assert.Error(t, a.ApproveMCPAction("ap1"), "already resolved")
}

func TestDocumentWatcher_ExternalWrites(t *testing.T) {
	a, emitter := newTestApp(t, config.BackendSQLite)
	ctx := a.ctx
	view, err := a.CreateDocument("Doc")
	require.NoError(t, err)

	w := newDocumentWatcher(ctx, a)
	w.checkDocuments()
	before := len(emitter.Named(service.EventDocumentsChanged))

	// another process rewrites the open document
	require.NoError(t, a.backend.local.SetContent(ctx, view.ID, "from agent"))
	w.checkDocuments()

	assert.Len(t, emitter.Named(service.EventDocumentsChanged), before+1)
	assert.NotEmpty(t, emitter.Named(service.EventDocumentReloaded))
	src, err := a.GetSource()
	require.NoError(t, err)
	assert.Equal(t, "from agent", src)

	w.checkDocuments()
	assert.Len(t, emitter.Named(service.EventDocumentsChanged), before+1, "unchanged fingerprint is quiet")
}

func TestDocumentWatcher_Approvals(t *testing.T) {
	a, emitter := newTestApp(t, config.BackendSQLite)
	db := a.backend.db.Conn()
	_, err := db.Exec(`INSERT INTO mcp_approvals (id, tool, description) VALUES ('ap1', 'write_document', 'Replace')`)
	require.NoError(t, err)

	w := newDocumentWatcher(a.ctx, a)
	w.checkApprovals()
	w.checkApprovals()
	assert.Len(t, emitter.Named(mcpserver.EventApprovalRequired), 1)

	_, err = db.Exec(`DELETE FROM mcp_approvals WHERE id = 'ap1'`)
	require.NoError(t, err)
	w.checkApprovals()
	assert.Len(t, emitter.Named(mcpserver.EventApprovalDismissed), 1)
}

func TestDocumentOffset(t *testing.T) {
	blocks := []editor.Block{{ID: "a", Content: "héllo"}, {ID: "b", Content: ""}, {ID: "c", Content: "xyz"}}
	assert.Equal(t, 2, documentOffset(blocks, "a", 2))
	assert.Equal(t, 6, documentOffset(blocks, "b", 5))
	assert.Equal(t, 9, documentOffset(blocks, "c", 2))
	assert.Equal(t, 10, documentOffset(blocks, "c", 99))
	assert.Equal(t, 0, documentOffset(blocks, "missing", 1))
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "Notes.html", exportFileName("Notes.md"))
	assert.Equal(t, "Plan.html", exportFileName("Plan"))
}
