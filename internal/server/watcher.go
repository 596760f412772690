package server

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/phuslu/log"

	"github.com/goliatone/go-formruntime/pkg/orchestrator"
)

const defaultDebounce = 200 * time.Millisecond

// Watcher reloads definitions when files in the store directory change.
// Bursts of events for the same file are collapsed into one reload.
type Watcher struct {
	store    *Store
	logger   *log.Logger
	metrics  *Metrics
	debounce time.Duration
	watcher  *fsnotify.Watcher

	// reloaded is notified after each processed file, for tests.
	reloaded func(path string, err error)
}

// NewWatcher starts watching the store directory.
func NewWatcher(store *Store, logger *log.Logger, metrics *Metrics) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("server: create watcher: %w", err)
	}
	if err := fw.Add(store.Dir()); err != nil {
		fw.Close()
		return nil, fmt.Errorf("server: watch %s: %w", store.Dir(), err)
	}
	return &Watcher{
		store:    store,
		logger:   logger,
		metrics:  metrics,
		debounce: defaultDebounce,
		watcher:  fw,
	}, nil
}

// Run processes file events until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()
	pending := make(map[string]time.Time)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !orchestrator.IsDefinitionFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[filepath.Clean(event.Name)] = time.Now()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("definition watcher error")
		case now := <-ticker.C:
			for path, seen := range pending {
				if now.Sub(seen) < w.debounce {
					continue
				}
				delete(pending, path)
				w.process(ctx, path)
			}
		}
	}
}

func (w *Watcher) process(ctx context.Context, path string) {
	form, err := w.store.LoadFile(ctx, path)
	switch {
	case err == nil:
		w.logger.Info().Str("form", form.Name()).Str("path", path).Msg("definition reloaded")
	case isMissing(err):
		// removed or renamed away
		err = nil
		if name, removed := w.store.Remove(path); removed {
			w.logger.Info().Str("form", name).Str("path", path).Msg("definition removed")
		}
	default:
		w.logger.Warn().Err(err).Str("path", path).Msg("definition reload failed, keeping previous runtime")
	}

	if w.metrics != nil {
		w.metrics.reload(err)
		w.metrics.setForms(w.store.Len())
	}
	if w.reloaded != nil {
		w.reloaded(path, err)
	}
}
