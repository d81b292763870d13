// Package watch reloads the dataset file when it changes on disk.
package watch

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"hcpdash/internal/errors"
)

// LoadFunc loads the file at path
type LoadFunc func(ctx context.Context, path string) error

// Watcher calls a LoadFunc after the watched file settles
type Watcher struct {
	path     string
	debounce time.Duration
	load     LoadFunc

	ready     chan struct{}
	readyOnce sync.Once
}

// New creates a watcher for path. Bursts of writes within debounce trigger one load.
func New(path string, debounce time.Duration, load LoadFunc) *Watcher {
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		load:     load,
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the watch is in place
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is cancelled. The parent directory is watched so editors that
// replace the file by rename are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return errors.Wrapf(err, "failed to watch %s", dir)
	}
	w.readyOnce.Do(func() { close(w.ready) })
	log.Printf("[Watch] Watching %s", w.path)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				if ctx.Err() != nil {
					return
				}
				log.Printf("[Watch] %s changed, reloading", w.path)
				if err := w.load(ctx, w.path); err != nil {
					log.Printf("[Watch] Reload of %s failed: %v", w.path, err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[Watch] Watcher error: %v", err)
		}
	}
}
