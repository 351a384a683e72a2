// Package watch reports debounced, content-deduplicated changes to
// Markdown-LD documents under a directory tree.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/c360studio/semweave/document"
)

const eventBuffer = 256

// Defaults applied to zero Options fields.
var (
	DefaultDebounce    = 500 * time.Millisecond
	DefaultExtensions  = []string{".md", ".markdown"}
	DefaultExcludeDirs = []string{".git", "node_modules", ".obsidian"}
)

// Options configures a Watcher.
type Options struct {
	Debounce    time.Duration
	Extensions  []string
	ExcludeDirs []string
	Logger      *slog.Logger
}

// Op is the kind of change.
type Op string

// Change kinds.
const (
	OpCreate Op = "create"
	OpModify Op = "modify"
	OpDelete Op = "delete"
)

// Event is one document change.
type Event struct {
	// Path is relative to the watched root.
	Path    string
	AbsPath string
	Op      Op
}

// Watcher watches a directory tree.
type Watcher struct {
	root       string
	debounce   time.Duration
	fsw        *fsnotify.Watcher
	logger     *slog.Logger
	extensions map[string]bool
	excludes   map[string]bool

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	hashMu sync.Mutex
	hashes map[string]string

	events  chan Event
	dropped atomic.Int64
}

// New creates a watcher for root. Call Start to begin watching.
func New(root string, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:       root,
		debounce:   opts.Debounce,
		fsw:        fsw,
		logger:     opts.Logger,
		extensions: make(map[string]bool),
		excludes:   make(map[string]bool),
		pending:    make(map[string]fsnotify.Op),
		hashes:     make(map[string]string),
		events:     make(chan Event, eventBuffer),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	for _, ext := range exts {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		w.extensions[strings.ToLower(ext)] = true
	}

	excludes := opts.ExcludeDirs
	if len(excludes) == 0 {
		excludes = DefaultExcludeDirs
	}
	for _, dir := range excludes {
		w.excludes[dir] = true
	}

	return w, nil
}

// Events returns the change stream. It is closed when the watcher stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Matches reports whether path is a watched document.
func (w *Watcher) Matches(path string) bool {
	if !w.extensions[strings.ToLower(filepath.Ext(path))] {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.Dir(rel), string(filepath.Separator)) {
		if w.skipDir(part) {
			return false
		}
	}
	return true
}

// Documents lists the watched documents currently under root, sorted.
func (w *Watcher) Documents() ([]string, error) {
	var out []string
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != w.root && w.skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.Matches(path) {
			out = append(out, path)
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

// Prime records the current content of path so an unchanged save does not
// produce an event.
func (w *Watcher) Prime(path string, content []byte) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[path] = document.ContentHash(content)
}

// Start adds watches and begins delivering events until ctx is done or
// Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(w.root); err != nil {
		return err
	}
	go w.loop(ctx)

	w.logger.Info("Watching documents",
		"root", w.root,
		"debounce", w.debounce)
	return nil
}

// Stop releases the underlying watcher.
func (w *Watcher) Stop() error {
	return w.fsw.Close()
}

// Dropped returns the number of events dropped because the consumer fell
// behind.
func (w *Watcher) Dropped() int64 {
	return w.dropped.Load()
}

func (w *Watcher) skipDir(name string) bool {
	return w.excludes[name] || (strings.HasPrefix(name, ".") && name != "." && name != "..")
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.record(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) record(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if !w.skipDir(filepath.Base(ev.Name)) {
				if err := w.addTree(ev.Name); err != nil {
					w.logger.Warn("Failed to watch new directory", "path", ev.Name, "error", err)
				}
			}
			return
		}
	}
	if !w.Matches(ev.Name) {
		return
	}

	w.pendingMu.Lock()
	w.pending[ev.Name] |= ev.Op
	w.pendingMu.Unlock()
}

func (w *Watcher) flush(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	batch := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	paths := make([]string, 0, len(batch))
	for p := range batch {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		if ev, ok := w.resolve(path); ok {
			w.send(ev)
		}
	}
}

// resolve decides the event for a path from its current content.
func (w *Watcher) resolve(path string) (Event, bool) {
	rel, _ := filepath.Rel(w.root, path)
	ev := Event{Path: rel, AbsPath: path}

	content, err := os.ReadFile(path)
	if err != nil {
		w.hashMu.Lock()
		_, known := w.hashes[path]
		delete(w.hashes, path)
		w.hashMu.Unlock()
		if !os.IsNotExist(err) {
			w.logger.Warn("Failed to read document", "path", rel, "error", err)
			return ev, false
		}
		ev.Op = OpDelete
		return ev, known
	}

	hash := document.ContentHash(content)
	w.hashMu.Lock()
	old, known := w.hashes[path]
	w.hashes[path] = hash
	w.hashMu.Unlock()

	switch {
	case known && old == hash:
		return ev, false
	case known:
		ev.Op = OpModify
	default:
		ev.Op = OpCreate
	}
	return ev, true
}

func (w *Watcher) send(ev Event) {
	select {
	case w.events <- ev:
		w.logger.Debug("Document changed", "path", ev.Path, "op", ev.Op)
	default:
		n := w.dropped.Add(1)
		w.logger.Warn("Event buffer full, dropping event", "path", ev.Path, "total_dropped", n)
	}
}
