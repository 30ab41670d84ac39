// Package watcher reports changes to a planner's files, coalescing bursts
// of filesystem events into a single notification.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is how long the watcher waits after the last relevant event
// before notifying.
const DefaultDelay = 100 * time.Millisecond

// watchedExt lists the file extensions whose changes are reported. The
// activity log and lock files are ignored so the planner's own bookkeeping
// does not trigger reloads.
var watchedExt = map[string]bool{".md": true, ".yml": true, ".yaml": true}

// Watcher watches planner directories. Changes are delivered on the
// channel returned by Changes.
type Watcher struct {
	fsw     *fsnotify.Watcher
	delay   time.Duration
	changes chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a Watcher monitoring the given directories.
func New(paths ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, p := range paths {
		if err := fsw.Add(p); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}

	return &Watcher{
		fsw:     fsw,
		delay:   DefaultDelay,
		changes: make(chan struct{}, 1),
	}, nil
}

// Changes returns a channel that receives a value after each burst of
// changes. Pending notifications are coalesced, so a slow reader sees at
// most one.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Run starts the watch loop. It blocks until the context is canceled or
// the watcher is closed. Errors from fsnotify go to the optional errFn.
func (w *Watcher) Run(ctx context.Context, errFn func(error)) {
	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				w.stopTimer()
				return
			}
			if relevant(event) {
				w.schedule()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				w.stopTimer()
				return
			}
			if errFn != nil {
				errFn(err)
			}
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return watchedExt[filepath.Ext(event.Name)]
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.notify)
}

func (w *Watcher) notify() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
