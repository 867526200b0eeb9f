package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdnotes/internal/domain"
	"mdnotes/internal/editor"
	"mdnotes/internal/service"
	"mdnotes/internal/storage"
	"mdnotes/internal/table"
)

type fixture struct {
	db      *storage.DB
	docs    *storage.DocumentStore
	revs    *storage.RevisionStore
	emitter *service.MockEmitter
	svc     *service.DocumentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		db:      db,
		docs:    storage.NewDocumentStore(db),
		revs:    storage.NewRevisionStore(db),
		emitter: &service.MockEmitter{},
	}
	f.svc = service.NewDocumentService(f.docs, f.emitter,
		service.WithAutosaveDelay(20*time.Millisecond),
		service.WithRevisions(f.revs),
	)
	return f
}

func (f *fixture) stored(t *testing.T, id string) string {
	t.Helper()
	doc, err := f.docs.GetDocument(context.Background(), id)
	require.NoError(t, err)
	return doc.Content
}

func TestDocumentService_CreateListOpen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	doc, err := f.svc.Create(ctx, "  ", "# Hello\n\n| a | b |\n| - | - |\n| 1 | 2 |")
	require.NoError(t, err)
	assert.Equal(t, "Untitled", doc.Title)
	assert.Len(t, f.emitter.Named(service.EventDocumentsChanged), 1)

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	sess, err := f.svc.Open(ctx, doc.ID)
	require.NoError(t, err)
	blocks := sess.Blocks()
	require.Len(t, blocks, 3)
	assert.Equal(t, editor.KindTable, blocks[2].Kind)
	assert.Equal(t, service.StatusSaved, sess.Status().Status)

	revs, err := f.svc.ListRevisions(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, revs, 1)
	assert.Equal(t, "opened", revs[0].Label)

	active, err := f.svc.Active()
	require.NoError(t, err)
	assert.Same(t, sess, active)
}

func TestDocumentService_ActiveWithoutSession(t *testing.T) {
	_, err := newFixture(t).svc.Active()
	assert.ErrorIs(t, err, service.ErrNoSession)
}

func TestSession_AutosaveAfterEdit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	doc, err := f.svc.Create(ctx, "Notes", "first")
	require.NoError(t, err)
	sess, err := f.svc.Open(ctx, doc.ID)
	require.NoError(t, err)

	id := sess.Blocks()[0].ID
	require.True(t, sess.KeyDown(editor.KeyEvent{Key: editor.KeyEnter, BlockID: id, Caret: 5}))
	assert.Equal(t, service.StatusUnsaved, sess.Status().Status)
	assert.True(t, sess.Dirty())

	cur, ok := sess.TakeCursor()
	require.True(t, ok)
	require.NoError(t, sess.Input(cur.BlockID, "second"))

	assert.Eventually(t, func() bool {
		return f.stored(t, doc.ID) == "first\nsecond"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return sess.Status().Status == service.StatusSaved
	}, 2*time.Second, 10*time.Millisecond)
	assert.False(t, sess.Dirty())

	var statuses []service.SaveStatus
	for _, e := range f.emitter.Named(service.EventDocumentStatus) {
		statuses = append(statuses, e.Data.(service.StatusEvent).Status)
	}
	assert.Contains(t, statuses, service.StatusUnsaved)
	assert.Contains(t, statuses, service.StatusSaving)
	assert.Equal(t, service.StatusSaved, statuses[len(statuses)-1])
}

func TestSession_FlushWritesImmediately(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc = service.NewDocumentService(f.docs, f.emitter, service.WithAutosaveDelay(time.Hour))

	doc, err := f.svc.Create(ctx, "Notes", "a")
	require.NoError(t, err)
	sess, err := f.svc.Open(ctx, doc.ID)
	require.NoError(t, err)

	require.NoError(t, sess.Input(sess.Blocks()[0].ID, "abc"))
	assert.Equal(t, "a", f.stored(t, doc.ID))

	require.NoError(t, f.svc.Flush(ctx))
	assert.Equal(t, "abc", f.stored(t, doc.ID))
	assert.Equal(t, service.StatusSaved, sess.Status().Status)
}

type flakyStore struct {
	domain.DocumentStore
	fail atomic.Bool
}

func (s *flakyStore) SetContent(ctx context.Context, id, content string) error {
	if s.fail.Load() {
		return errors.New("disk full")
	}
	return s.DocumentStore.SetContent(ctx, id, content)
}

func TestSession_SaveFailureKeepsBlocks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	store := &flakyStore{DocumentStore: f.docs}
	svc := service.NewDocumentService(store, f.emitter, service.WithAutosaveDelay(time.Hour))

	doc, err := svc.Create(ctx, "Notes", "a")
	require.NoError(t, err)
	sess, err := svc.Open(ctx, doc.ID)
	require.NoError(t, err)

	store.fail.Store(true)
	require.NoError(t, sess.Input(sess.Blocks()[0].ID, "edited"))
	err = sess.Flush(ctx)
	require.Error(t, err)

	st := sess.Status()
	assert.Equal(t, service.StatusUnsaved, st.Status)
	assert.Equal(t, "disk full", st.Error)
	assert.Equal(t, "edited", sess.Content())

	store.fail.Store(false)
	require.NoError(t, sess.Flush(ctx))
	assert.Equal(t, "edited", f.stored(t, doc.ID))
	assert.Empty(t, sess.Status().Error)
}

func TestDocumentService_OpenFlushesPrevious(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc = service.NewDocumentService(f.docs, f.emitter, service.WithAutosaveDelay(time.Hour))

	a, err := f.svc.Create(ctx, "A", "a")
	require.NoError(t, err)
	b, err := f.svc.Create(ctx, "B", "b")
	require.NoError(t, err)

	sa, err := f.svc.Open(ctx, a.ID)
	require.NoError(t, err)
	require.NoError(t, sa.Input(sa.Blocks()[0].ID, "a2"))

	sb, err := f.svc.Open(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "a2", f.stored(t, a.ID))
	assert.Equal(t, "b", sb.Content())
}

func TestDocumentService_WriteAndAppend(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	doc, err := f.svc.Create(ctx, "Log", "")
	require.NoError(t, err)

	require.NoError(t, f.svc.AppendMarkdown(ctx, doc.ID, "one"))
	require.NoError(t, f.svc.AppendMarkdown(ctx, doc.ID, "two"))
	assert.Equal(t, "one\n\ntwo", f.stored(t, doc.ID))

	sess, err := f.svc.Open(ctx, doc.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.WriteContent(ctx, doc.ID, "```\ncode\n```"))
	assert.Equal(t, "```\ncode\n```", f.stored(t, doc.ID))
	require.Len(t, sess.Blocks(), 1)
	assert.Equal(t, editor.KindCodeClosed, sess.Blocks()[0].Kind)
	assert.Len(t, f.emitter.Named(service.EventDocumentReloaded), 1)

	got, err := f.svc.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "```\ncode\n```", got.Content)
}

func TestDocumentService_ExternalChange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc = service.NewDocumentService(f.docs, f.emitter, service.WithAutosaveDelay(time.Hour))

	doc, err := f.svc.Create(ctx, "Ext", "old")
	require.NoError(t, err)
	sess, err := f.svc.Open(ctx, doc.ID)
	require.NoError(t, err)

	assert.False(t, f.svc.ExternalChange(ctx, "other", "x"))
	assert.False(t, f.svc.ExternalChange(ctx, doc.ID, "old"), "identical content is not a change")

	assert.True(t, f.svc.ExternalChange(ctx, doc.ID, "new\n\n| a |\n| - |\n| 1 |"))
	assert.Len(t, sess.Blocks(), 3)
	assert.Equal(t, service.StatusSaved, sess.Status().Status)

	// unsaved edits win over the file on disk
	require.NoError(t, sess.Input(sess.Blocks()[0].ID, "mine"))
	assert.False(t, f.svc.ExternalChange(ctx, doc.ID, "theirs"))
	assert.Equal(t, "mine", sess.Blocks()[0].Content)
}

func TestDocumentService_RefreshActive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	doc, err := f.svc.Create(ctx, "R", "v1")
	require.NoError(t, err)
	_, err = f.svc.Open(ctx, doc.ID)
	require.NoError(t, err)

	require.NoError(t, f.docs.SetContent(ctx, doc.ID, "v2"))
	changed, err := f.svc.RefreshActive(ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	sess, _ := f.svc.Active()
	assert.Equal(t, "v2", sess.Content())
}

func TestDocumentService_RestoreRevision(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	doc, err := f.svc.Create(ctx, "Rev", "v1")
	require.NoError(t, err)
	_, err = f.svc.Open(ctx, doc.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.WriteContent(ctx, doc.ID, "v2"))

	revs, err := f.svc.ListRevisions(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, revs, 1)

	require.NoError(t, f.svc.RestoreRevision(ctx, revs[0].ID))
	assert.Equal(t, "v1", f.stored(t, doc.ID))

	revs, err = f.svc.ListRevisions(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.Equal(t, "before restore", revs[0].Label)
}

func TestDocumentService_RenameAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	doc, err := f.svc.Create(ctx, "Old", "x")
	require.NoError(t, err)
	sess, err := f.svc.Open(ctx, doc.ID)
	require.NoError(t, err)

	_, err = f.svc.Rename(ctx, doc.ID, " ")
	assert.Error(t, err)

	id, err := f.svc.Rename(ctx, doc.ID, "New")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, id)
	assert.Equal(t, "New", sess.Title())

	require.NoError(t, f.svc.Delete(ctx, doc.ID))
	_, err = f.svc.Active()
	assert.ErrorIs(t, err, service.ErrNoSession)
	_, err = f.svc.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)

	revs, err := f.revs.ListRevisions(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, revs)
}

func TestDocumentService_FolderRenameFollowsSession(t *testing.T) {
	ctx := context.Background()
	folder, err := storage.NewFolderStore(t.TempDir())
	require.NoError(t, err)
	svc := service.NewDocumentService(folder, nil, service.WithAutosaveDelay(time.Hour))

	doc, err := svc.Create(ctx, "Draft", "text")
	require.NoError(t, err)
	assert.Equal(t, "Draft.md", doc.ID)

	sess, err := svc.Open(ctx, doc.ID)
	require.NoError(t, err)
	require.NoError(t, sess.Input(sess.Blocks()[0].ID, "text!"))

	id, err := svc.Rename(ctx, doc.ID, "Final")
	require.NoError(t, err)
	assert.Equal(t, "Final.md", id)
	assert.Equal(t, "Final.md", sess.ID())

	got, err := folder.GetDocument(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "text!", got.Content)
}

func TestSession_EditTable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	doc, err := f.svc.Create(ctx, "T", "| a | b |\n| --- | --- |\n| 1 | 2 |")
	require.NoError(t, err)
	sess, err := f.svc.Open(ctx, doc.ID)
	require.NoError(t, err)

	id := sess.Blocks()[0].ID
	tbl, err := sess.EditTable(id, func(ts *editor.TableSession) error {
		if err := ts.SetCell(0, 1, "x"); err != nil {
			return err
		}
		return ts.SetAlignment(1, table.AlignRight)
	})
	require.NoError(t, err)
	assert.Equal(t, "x", tbl.Rows[0][1])
	assert.Equal(t, "| a | b |\n| --- | ---: |\n| 1 | x |", sess.Content())

	_, err = sess.EditTable("missing", nil)
	assert.ErrorIs(t, err, editor.ErrBlockNotFound)
}

func TestDocumentService_Close(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc = service.NewDocumentService(f.docs, f.emitter, service.WithAutosaveDelay(time.Hour))
	doc, err := f.svc.Create(ctx, "C", "a")
	require.NoError(t, err)
	sess, err := f.svc.Open(ctx, doc.ID)
	require.NoError(t, err)
	require.NoError(t, sess.Input(sess.Blocks()[0].ID, "b"))

	require.NoError(t, f.svc.Close(ctx))
	assert.Equal(t, "b", f.stored(t, doc.ID))
	_, err = f.svc.Active()
	assert.ErrorIs(t, err, service.ErrNoSession)
	require.NoError(t, f.svc.Close(ctx))
}
