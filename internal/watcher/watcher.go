package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"mdnotes/internal/storage"
)

// ContentChangedHandler is called when the watched document changes on disk.
type ContentChangedHandler func(id, content string)

// Watcher reports external edits to a folder of Markdown documents.
// It follows one document closely (the one open in the editor) and
// reports any file added, removed or renamed in the folder.
type Watcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	logger   *zap.Logger
	onChange ContentChangedHandler
	onList   func()
	debList  func(func())

	mu       sync.RWMutex
	watching string // absolute path of the followed document
	docID    string
}

// Option configures a Watcher.
type Option func(*Watcher)

func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithListChanged registers a callback for files added, removed or renamed.
// Bursts are coalesced.
func WithListChanged(fn func()) Option {
	return func(w *Watcher) { w.onList = fn }
}

// New starts watching dir.
func New(dir string, onChange ContentChangedHandler, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(abs); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", abs, err)
	}

	w := &Watcher{
		watcher:  fw,
		dir:      abs,
		logger:   zap.NewNop(),
		onChange: onChange,
		debList:  debounce.New(150 * time.Millisecond),
	}
	for _, opt := range opts {
		opt(w)
	}

	go w.watchLoop()

	return w, nil
}

// Follow makes id the document whose content changes are reported.
func (w *Watcher) Follow(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.docID = id
	w.watching = filepath.Join(w.dir, filepath.Base(id))
}

// Unfollow stops reporting content changes.
func (w *Watcher) Unfollow() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.docID = ""
	w.watching = ""
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("folder watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if !storage.IsDocumentFile(name) {
		return
	}

	if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if w.onList != nil {
			w.debList(w.onList)
		}
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	absPath, _ := filepath.Abs(event.Name)
	w.mu.RLock()
	watched, id := w.watching, w.docID
	w.mu.RUnlock()
	if watched == "" || absPath != watched {
		return
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		w.logger.Warn("read changed document", zap.String("path", absPath), zap.Error(err))
		return
	}
	w.logger.Debug("document changed on disk", zap.String("id", id))
	if w.onChange != nil {
		w.onChange(id, string(content))
	}
}
