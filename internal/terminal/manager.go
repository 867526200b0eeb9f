package terminal

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/creack/pty"
	"go.uber.org/zap"
)

// ExitResult is reported when the editor process ends.
type ExitResult struct {
	DocumentID string
	Content    string // file content after the editor exited
	CursorLine int    // last cursor line, 0 when unknown
	Err        error  // set when the file could not be read back
}

// Manager runs $EDITOR in a PTY on the raw Markdown of one document.
type Manager struct {
	mu      sync.Mutex
	ptmx    *os.File
	cmd     *exec.Cmd
	onData  func(data []byte)
	onExit  func(ExitResult)
	logger  *zap.Logger
	running bool
	editor  string
	// size applied to the next session
	pendingCols uint16
	pendingRows uint16
	cursorFile  string // vim writes the last cursor line here
	shellPath   string // user's login shell PATH, resolved once

	docID   string
	path    string
	tempDoc bool // path is a temp file removed after exit
}

// Option configures a Manager.
type Option func(*Manager)

// WithEditor overrides $EDITOR.
func WithEditor(name string) Option {
	return func(m *Manager) { m.editor = resolveEditor(name) }
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// resolveEditor finds the absolute path for the editor binary.
// macOS GUI apps don't inherit the shell's $PATH, so common
// installation paths are probed as a fallback.
func resolveEditor(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	if p, err := exec.LookPath(name); err == nil {
		return p
	}
	candidates := []string{
		filepath.Join("/opt/homebrew/bin", name),
		filepath.Join("/usr/local/bin", name),
		filepath.Join("/run/current-system/sw/bin", name),
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".local/bin", name),
			filepath.Join(home, ".nix-profile/bin", name),
		)
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return name
}

// resolveShellPath gets the user's full login shell PATH so the editor's
// child processes (LSPs, formatters) find installed tools.
func resolveShellPath() string {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	out, err := exec.Command(shell, "-lc", "echo $PATH").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// New creates a terminal manager. $EDITOR is used, defaulting to nvim.
func New(onData func(data []byte), onExit func(ExitResult), opts ...Option) *Manager {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "nvim"
	}
	m := &Manager{
		onData:      onData,
		onExit:      onExit,
		logger:      zap.NewNop(),
		editor:      resolveEditor(editor),
		pendingCols: 80,
		pendingRows: 24,
		cursorFile:  filepath.Join(os.TempDir(), fmt.Sprintf("mdnotes_cursor_%d", os.Getpid())),
		shellPath:   resolveShellPath(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Editor returns the resolved editor binary.
func (m *Manager) Editor() string {
	return m.editor
}

// OpenDocument starts the editor on a document at lineNumber (1-based).
// When path is empty the content is written to a temp file first;
// otherwise the file at path (a folder-backed document) is edited in place.
// A running session is closed first.
func (m *Manager) OpenDocument(docID, path, content string, lineNumber int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		m.closeInternal()
	}

	tempDoc := false
	if path == "" {
		f, err := os.CreateTemp("", "mdnotes-*.md")
		if err != nil {
			return fmt.Errorf("create temp document: %w", err)
		}
		_, werr := f.WriteString(content)
		cerr := f.Close()
		if werr != nil || cerr != nil {
			os.Remove(f.Name())
			return fmt.Errorf("write temp document: %v %v", werr, cerr)
		}
		path = f.Name()
		tempDoc = true
	}

	os.Remove(m.cursorFile)

	cmd := exec.Command(m.editor, m.editorArgs(path, lineNumber)...)
	cmd.Env = m.environ()

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Cols: m.pendingCols,
		Rows: m.pendingRows,
	})
	if err != nil {
		if tempDoc {
			os.Remove(path)
		}
		return fmt.Errorf("start pty: %w", err)
	}

	m.ptmx = ptmx
	m.cmd = cmd
	m.running = true
	m.docID = docID
	m.path = path
	m.tempDoc = tempDoc
	m.logger.Info("editor started", zap.String("editor", m.editor), zap.String("document", docID))

	go m.pump(ptmx, cmd)

	return nil
}

// editorArgs opens at lineNumber; vim-family editors also record the
// cursor line on exit.
func (m *Manager) editorArgs(path string, lineNumber int) []string {
	var args []string
	if lineNumber > 0 {
		args = append(args, fmt.Sprintf("+%d", lineNumber))
	}
	if strings.Contains(filepath.Base(m.editor), "vim") {
		args = append(args,
			"-c", fmt.Sprintf("autocmd VimLeave * call writefile([line('.')], '%s')", m.cursorFile),
		)
	}
	return append(args, path)
}

func (m *Manager) environ() []string {
	env := os.Environ()
	if m.shellPath != "" {
		replaced := false
		for i, e := range env {
			if strings.HasPrefix(e, "PATH=") {
				env[i] = "PATH=" + m.shellPath
				replaced = true
				break
			}
		}
		if !replaced {
			env = append(env, "PATH="+m.shellPath)
		}
	}
	return append(env,
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
	)
}

// pump forwards PTY output until the process exits, then reads the
// document back.
func (m *Manager) pump(ptmx *os.File, cmd *exec.Cmd) {
	buf := make([]byte, 32768)
	for {
		n, err := ptmx.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			if m.onData != nil {
				m.onData(data)
			}
		}
		if err != nil {
			break
		}
	}
	cmd.Wait()

	m.mu.Lock()
	if m.cmd != cmd {
		// closed or replaced by another session
		m.mu.Unlock()
		return
	}
	res := ExitResult{DocumentID: m.docID}
	path, tempDoc := m.path, m.tempDoc
	m.running = false
	m.cmd = nil
	m.ptmx = nil
	m.mu.Unlock()
	ptmx.Close()

	if data, err := os.ReadFile(m.cursorFile); err == nil {
		if line, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil {
			res.CursorLine = line
		}
		os.Remove(m.cursorFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("read edited document: %w", err)
	} else {
		res.Content = string(data)
	}
	if tempDoc {
		os.Remove(path)
	}

	m.logger.Info("editor exited", zap.String("document", res.DocumentID), zap.Int("line", res.CursorLine))
	if m.onExit != nil {
		m.onExit(res)
	}
}

// Write sends input data to the PTY (keystrokes from xterm.js).
func (m *Manager) Write(data string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running || m.ptmx == nil {
		return fmt.Errorf("no active terminal session")
	}

	_, err := io.WriteString(m.ptmx, data)
	return err
}

// Resize updates the PTY window size.
func (m *Manager) Resize(cols, rows uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pendingCols = cols
	m.pendingRows = rows

	if !m.running || m.ptmx == nil {
		return nil
	}

	return pty.Setsize(m.ptmx, &pty.Winsize{
		Cols: cols,
		Rows: rows,
	})
}

// IsRunning returns whether a session is active.
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Close kills the current session without reporting an exit.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeInternal()
}

func (m *Manager) closeInternal() {
	cmd, ptmx := m.cmd, m.ptmx
	m.cmd = nil
	m.ptmx = nil
	if ptmx != nil {
		ptmx.Close()
	}
	if cmd != nil && cmd.Process != nil {
		cmd.Process.Kill()
	}
	if m.tempDoc && m.path != "" {
		os.Remove(m.path)
	}
	m.running = false
	m.docID = ""
	m.path = ""
	m.tempDoc = false
}

// LineAt returns the 1-based line of a rune offset in content.
func LineAt(content string, offset int) int {
	line := 1
	i := 0
	for _, r := range content {
		if i >= offset {
			break
		}
		if r == '\n' {
			line++
		}
		i++
	}
	return line
}
