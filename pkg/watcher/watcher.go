// Package watcher reports changes to a single file, used to live-reload the
// wb config while the screen is up.
//
// The watcher listens on the file's directory with fsnotify, so editors that
// save by renaming a temp file over the original are seen. Where fsnotify is
// unavailable, or when polling is forced, it stats the file on an interval.
// Bursts of events are coalesced by a Debouncer; each settled burst is one
// send on Changed.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is how often a polling watcher stats the file.
const DefaultPollInterval = 2 * time.Second

// Errors returned by Start or passed to WithOnError.
var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounceDuration sets the quiet period before a change is reported.
func WithDebounceDuration(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the stat interval used in polling mode.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.pollEvery = d
		}
	}
}

// WithOnError receives watch errors; they never stop the watcher.
func WithOnError(fn func(error)) WatcherOption {
	return func(w *Watcher) {
		if fn != nil {
			w.onError = fn
		}
	}
}

// WithForcePoll skips fsnotify and polls.
func WithForcePoll(force bool) WatcherOption {
	return func(w *Watcher) { w.forcePoll = force }
}

// stamp is what polling compares between ticks.
type stamp struct {
	mtime  time.Time
	size   int64
	exists bool
}

func statFile(path string) (stamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return stamp{}, err
	}
	return stamp{mtime: info.ModTime(), size: info.Size(), exists: true}, nil
}

func (s stamp) differs(o stamp) bool {
	return s.exists != o.exists || s.size != o.size || !s.mtime.Equal(o.mtime)
}

// Watcher monitors one file. Create it with NewWatcher, then Start it.
type Watcher struct {
	path      string
	debounce  time.Duration
	pollEvery time.Duration
	forcePoll bool
	onError   func(error)

	debouncer *Debouncer
	changed   chan struct{}

	mu      sync.Mutex
	running bool
	polling bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewWatcher prepares a watcher for path. The file need not exist yet.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:      abs,
		pollEvery: DefaultPollInterval,
		onError:   func(error) {},
		changed:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Start launches the watch goroutine. It falls back to polling when fsnotify
// cannot watch the directory.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return ErrAlreadyStarted
	}

	last, err := statFile(w.path)
	if err != nil && os.IsPermission(err) {
		return ErrPermission
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.polling = w.forcePoll

	if !w.polling {
		fsw, err := w.listen()
		if err != nil {
			w.polling = true
		} else {
			w.wg.Add(1)
			go w.runEvents(ctx, fsw)
		}
	}
	if w.polling {
		w.wg.Add(1)
		go w.runPolling(ctx, last)
	}

	w.running = true
	return nil
}

func (w *Watcher) listen() (*fsnotify.Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return nil, err
	}
	return fsw, nil
}

// Stop ends watching and waits for the goroutine. Changed stays open; a
// reader blocked on it must have its own way out.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.cancel()
	w.debouncer.Cancel()
	w.mu.Unlock()

	w.wg.Wait()
}

// IsPolling reports whether the running watcher fell back to polling.
func (w *Watcher) IsPolling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polling
}

// Changed receives once per settled burst of changes.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changed
}

// Path returns the absolute watched path.
func (w *Watcher) Path() string {
	return w.path
}

func (w *Watcher) runEvents(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.wg.Done()
	defer fsw.Close()
	name := filepath.Base(w.path)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Has(fsnotify.Remove) {
				w.onError(ErrFileRemoved)
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.debouncer.Trigger(w.notify)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) runPolling(ctx context.Context, last stamp) {
	defer w.wg.Done()
	tick := time.NewTicker(w.pollEvery)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}

		cur, err := statFile(w.path)
		switch {
		case err == nil:
		case os.IsNotExist(err):
			if last.exists {
				w.onError(ErrFileRemoved)
			}
		case os.IsPermission(err):
			w.onError(ErrPermission)
			continue
		default:
			w.onError(err)
			continue
		}

		if cur.exists && cur.differs(last) {
			w.debouncer.Trigger(w.notify)
		}
		last = cur
	}
}

// notify signals Changed without blocking; one pending signal is enough.
func (w *Watcher) notify() {
	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	if !running {
		return
	}
	select {
	case w.changed <- struct{}{}:
	default:
	}
}
