package mediamodule

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
)

// RecordingsWatcher monitors the recordings directory and imports finished
// captures automatically. Writes are debounced so a file still being
// written out is not imported half-finished.
type RecordingsWatcher struct {
	manager *Manager
	dir     string
	logger  hclog.Logger

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu       sync.Mutex
	pending  map[string]*time.Timer
	debounce time.Duration
}

// NewRecordingsWatcher creates a watcher over dir.
func NewRecordingsWatcher(manager *Manager, dir string, logger hclog.Logger) (*RecordingsWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &RecordingsWatcher{
		manager:  manager,
		dir:      dir,
		logger:   logger,
		watcher:  watcher,
		pending:  make(map[string]*time.Timer),
		debounce: 2 * time.Second,
	}, nil
}

// Start begins watching. The directory must exist.
func (w *RecordingsWatcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	w.wg.Add(1)
	go w.watchEvents(ctx)

	w.logger.Info("watching recordings directory", "dir", w.dir)
	return nil
}

// Stop halts the watcher and waits for the event loop to drain.
func (w *RecordingsWatcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.watcher.Close()
	w.wg.Wait()

	w.mu.Lock()
	for _, timer := range w.pending {
		timer.Stop()
	}
	w.pending = make(map[string]*time.Timer)
	w.mu.Unlock()
}

func (w *RecordingsWatcher) watchEvents(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.scheduleImport(ctx, event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// scheduleImport (re)arms the debounce timer for a path; the import fires
// once writes have been quiet for the debounce window.
func (w *RecordingsWatcher) scheduleImport(ctx context.Context, path string) {
	ext := strings.ToLower(filepath.Ext(path))
	if !videoExtensions[ext] && !audioExtensions[ext] {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if _, err := w.manager.Import(ctx, path); err != nil {
			w.logger.Warn("auto import failed", "path", path, "error", err)
		}
	})
}
