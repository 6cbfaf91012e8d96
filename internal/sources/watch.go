package sources

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aemoncannon/far-search-mode/internal/logger"
)

const DefaultDebounce = 150 * time.Millisecond

// Watcher reports changes to a fixed set of files. Events are coalesced
// until the debounce interval passes without a new one.
type Watcher struct {
	fs       *fsnotify.Watcher
	tracked  map[string]struct{}
	debounce time.Duration
	changes  chan []string
	cancel   context.CancelFunc
}

// Watch starts watching paths. The parent directories are watched so that
// editors which save by rename are still seen.
func Watch(ctx context.Context, paths []string, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		fs:       fw,
		tracked:  make(map[string]struct{}, len(paths)),
		debounce: debounce,
		changes:  make(chan []string),
	}
	dirs := make(map[string]struct{})
	for _, p := range paths {
		w.tracked[p] = struct{}{}
		dirs[filepath.Dir(p)] = struct{}{}
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			logger.Warn("watch %s: %v", dir, err)
		}
	}

	ctx, w.cancel = context.WithCancel(ctx)
	go w.run(ctx)
	return w, nil
}

// Changes delivers batches of changed paths. It is closed when the
// watcher stops.
func (w *Watcher) Changes() <-chan []string {
	return w.changes
}

func (w *Watcher) Close() error {
	w.cancel()
	return w.fs.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.changes)

	pending := make(map[string]struct{})
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if _, ok := w.tracked[ev.Name]; !ok {
				continue
			}
			pending[ev.Name] = struct{}{}
			if fire == nil {
				fire = time.After(w.debounce)
			}

		case <-fire:
			fire = nil
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			sort.Strings(batch)
			pending = make(map[string]struct{})

			logger.Debug("sources changed: %v", batch)
			select {
			case w.changes <- batch:
			case <-ctx.Done():
				return
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher: %v", err)
		}
	}
}
