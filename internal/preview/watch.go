package preview

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits for edits to settle.
const DefaultDebounce = 500 * time.Millisecond

// RebuildFunc regenerates the site.
type RebuildFunc func(ctx context.Context) error

// MatchFunc reports whether a change to the named file should trigger a rebuild.
type MatchFunc func(name string) bool

// Watcher triggers a rebuild whenever files in a directory change.
type Watcher struct {
	dir      string
	debounce time.Duration
	match    MatchFunc
	rebuild  RebuildFunc
	logger   *zap.Logger

	mu sync.Mutex
}

// NewWatcher constructs a Watcher. A non-positive debounce uses DefaultDebounce.
// A nil match accepts every file. Hidden files (editor swaps, temporary
// writes) never trigger a rebuild.
func NewWatcher(dir string, debounce time.Duration, match MatchFunc, rebuild RebuildFunc, logger *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{dir: dir, debounce: debounce, match: match, rebuild: rebuild, logger: logger}
}

// Rebuild runs the rebuild function. Concurrent calls are serialized.
func (w *Watcher) Rebuild(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rebuild(ctx)
}

// Run watches until ctx is canceled. Rebuild failures are logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching for changes", zap.String("dir", w.dir))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("source changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
			pending = true
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		case <-timer.C:
			pending = false
			w.logger.Info("rebuilding")
			if err := w.Rebuild(ctx); err != nil {
				w.logger.Error("rebuild failed", zap.Error(err))
				continue
			}
			w.logger.Info("rebuild complete")
		}
	}
}

// relevant filters out events caused by the build itself, such as the index
// written next to the sources.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return w.match == nil || w.match(name)
}
