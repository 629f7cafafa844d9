// Package watch reruns a full build whenever shader sources change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/shaderbuild/internal/logger"
	"github.com/Faultbox/shaderbuild/pkg/shader"
)

// DefaultDebounce is how long the watcher waits for a burst of events to settle.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches a shader source directory.
type Watcher struct {
	Dir      string
	Debounce time.Duration
}

// New returns a Watcher for dir.
func New(dir string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{Dir: dir, Debounce: debounce}
}

// relevant reports whether ev touches a recognized shader source.
func relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	_, ok := shader.KindOf(filepath.Base(ev.Name))
	return ok
}

// Run calls rebuild once, then again after every settled burst of changes
// to shader sources, until ctx is done. Rebuild errors are logged and do
// not stop the watcher.
func (w *Watcher) Run(ctx context.Context, rebuild func(context.Context) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.Dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.Dir, err)
	}

	log := logger.Named("watch")

	w.rebuild(ctx, rebuild)
	log.Info("watching for shader changes", zap.String("dir", w.Dir))

	// settle is nil while no rebuild is pending
	var settle <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			log.Debug("shader changed", zap.String("file", ev.Name), zap.Stringer("op", ev.Op))
			settle = time.After(w.Debounce)

		case <-settle:
			settle = nil
			w.rebuild(ctx, rebuild)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("file watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context, rebuild func(context.Context) error) {
	if err := rebuild(ctx); err != nil && ctx.Err() == nil {
		logger.Error("rebuild failed", zap.Error(err))
	}
}
