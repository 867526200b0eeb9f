package terminal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEditor appends a line to the file named by its last argument.
func fakeEditor(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-editor")
	script := "#!/bin/sh\nfor last; do :; done\nprintf '\\nedited' >> \"$last\"\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func TestManager_EditsTempDocument(t *testing.T) {
	exits := make(chan ExitResult, 1)
	m := New(nil, func(r ExitResult) { exits <- r }, WithEditor(fakeEditor(t)))

	if err := m.OpenDocument("doc-1", "", "# Title", 1); err != nil {
		t.Skipf("pty unavailable: %v", err)
	}

	select {
	case res := <-exits:
		require.NoError(t, res.Err)
		assert.Equal(t, "doc-1", res.DocumentID)
		assert.Equal(t, "# Title\nedited", res.Content)
	case <-time.After(5 * time.Second):
		t.Fatal("editor did not exit")
	}
	assert.False(t, m.IsRunning())
}

func TestManager_EditsFileInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.md")
	require.NoError(t, os.WriteFile(path, []byte("body"), 0644))

	exits := make(chan ExitResult, 1)
	m := New(nil, func(r ExitResult) { exits <- r }, WithEditor(fakeEditor(t)))
	if err := m.OpenDocument("note.md", path, "", 0); err != nil {
		t.Skipf("pty unavailable: %v", err)
	}

	select {
	case res := <-exits:
		assert.Equal(t, "body\nedited", res.Content)
	case <-time.After(5 * time.Second):
		t.Fatal("editor did not exit")
	}
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "body\nedited", string(data))
}

func TestManager_WriteWithoutSession(t *testing.T) {
	m := New(nil, nil, WithEditor("/bin/true"))
	assert.Error(t, m.Write("x"))
	assert.NoError(t, m.Resize(100, 40))
}

func TestEditorArgs(t *testing.T) {
	m := New(nil, nil, WithEditor("/usr/bin/nvim"))
	args := m.editorArgs("/tmp/a.md", 3)
	assert.Equal(t, "+3", args[0])
	assert.Equal(t, "-c", args[1])
	assert.Equal(t, "/tmp/a.md", args[len(args)-1])

	m = New(nil, nil, WithEditor("/usr/bin/nano"))
	assert.Equal(t, []string{"/tmp/a.md"}, m.editorArgs("/tmp/a.md", 0))
}

func TestLineAt(t *testing.T) {
	assert.Equal(t, 1, LineAt("abc", 2))
	assert.Equal(t, 2, LineAt("a\nb", 2))
	assert.Equal(t, 3, LineAt("é\n\nx", 10))
	assert.Equal(t, 1, LineAt("", 0))
}
