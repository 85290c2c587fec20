package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 250 * time.Millisecond

// Watch invalidates the listing cache when files in the root change behind
// the library's back (copied in over ssh, removed by hand). Bursts such as
// a chunked upload are coalesced. Only meaningful on a real filesystem.
func (l *Library) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("storage watch: %w", err)
	}
	if err := watcher.Add(l.root); err != nil {
		watcher.Close()
		return fmt.Errorf("storage watch %s: %w", l.root, err)
	}

	debounced := debounce.New(watchDebounce)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
					log.Debugw("storage changed", "name", event.Name, "op", event.Op.String())
					debounced(l.Invalidate)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warnw("storage watch error", "err", err)
			}
		}
	}()
	return nil
}
