package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReportsFollowedDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.md")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0644))

	changes := make(chan string, 8)
	w, err := New(dir, func(id, content string) {
		if id == "note.md" {
			changes <- content
		}
	})
	require.NoError(t, err)
	defer w.Close()
	w.Follow("note.md")

	require.NoError(t, os.WriteFile(path, []byte("two"), 0644))

	select {
	case got := <-changes:
		assert.Equal(t, "two", got)
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcher_IgnoresUnfollowed(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	w, err := New(dir, func(string, string) { calls.Add(1) })
	require.NoError(t, err)
	defer w.Close()

	w.Follow("a.md")
	w.Unfollow()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("x"), 0644))

	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestWatcher_ListChangedIsCoalesced(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	w, err := New(dir, nil, WithListChanged(func() { calls.Add(1) }))
	require.NoError(t, err)
	defer w.Close()

	for _, name := range []string{"a.md", "b.md", "c.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}
