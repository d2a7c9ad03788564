// Package watch provides the import inbox watcher: documents dropped
// into a directory are picked up, debounced, and handed to an import
// callback.
package watch

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// importable lists the file extensions the inbox reacts to. Everything
// else (editor temp files, partial downloads) is ignored.
var importable = map[string]bool{
	".docx": true,
	".xlsx": true,
	".xls":  true,
	".ods":  true,
	".pdf":  true,
	".json": true,
}

// Handler is invoked once per settled file. Errors are logged by the
// watcher; the file stays in place either way.
type Handler func(path string) error

// Config holds watcher configuration.
type Config struct {
	// DebounceInterval is how long a file must stay quiet before the
	// handler runs. Batches the multiple write events a download or
	// office-suite save produces.
	DebounceInterval time.Duration

	// Logger for watcher activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DebounceInterval: 500 * time.Millisecond,
		Logger:           log.New(log.Writer(), "[inbox] ", log.LstdFlags),
	}
}

// Watcher watches the inbox directory for new or rewritten documents.
type Watcher struct {
	dir     string
	handler Handler
	config  *Config

	watcher *fsnotify.Watcher

	pending   map[string]time.Time
	pendingMu sync.Mutex

	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// New creates an inbox watcher over dir. Start must be called before any
// events are processed.
func New(dir string, handler Handler, config *Config) (*Watcher, error) {
	if dir == "" {
		return nil, fmt.Errorf("inbox directory cannot be empty")
	}
	if handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		dir:     dir,
		handler: handler,
		config:  config,
		watcher: fsw,
		pending: make(map[string]time.Time),
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching the inbox directory.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch inbox %s: %w", w.dir, err)
	}

	w.running = true
	w.wg.Add(2)
	go w.processEvents()
	go w.processPending()

	w.config.Logger.Printf("Watching inbox %s", w.dir)
	return nil
}

// Stop stops watching and waits for in-flight processing to finish.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.done)
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	w.wg.Wait()
	return nil
}

// processEvents queues create/write events for debouncing.
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			ext := strings.ToLower(filepath.Ext(event.Name))
			if !importable[ext] {
				continue
			}
			w.pendingMu.Lock()
			w.pending[event.Name] = time.Now()
			w.pendingMu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.config.Logger.Printf("Watch error: %v", err)
		}
	}
}

// processPending runs settled files through the handler.
func (w *Watcher) processPending() {
	defer w.wg.Done()

	tick := w.config.DebounceInterval / 2
	if tick <= 0 {
		tick = 50 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
		}

		now := time.Now()
		var ready []string
		w.pendingMu.Lock()
		for path, at := range w.pending {
			if now.Sub(at) >= w.config.DebounceInterval {
				ready = append(ready, path)
				delete(w.pending, path)
			}
		}
		w.pendingMu.Unlock()

		for _, path := range ready {
			if err := w.handler(path); err != nil {
				w.config.Logger.Printf("WARNING: import of %s failed: %v", filepath.Base(path), err)
				continue
			}
			w.config.Logger.Printf("Imported %s", filepath.Base(path))
		}
	}
}
