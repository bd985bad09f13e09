package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for a burst of file events
// to settle before signalling.
const DefaultDebounce = 500 * time.Millisecond

// ErrAlreadyStarted is returned by Start on a running watcher.
var ErrAlreadyStarted = errors.New("watcher already started")

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the debounce duration.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithOnError sets the callback invoked on watch errors.
func WithOnError(fn func(error)) WatcherOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// Watcher signals when files appear in or leave the new/ and cur/
// directories of a maildir.
type Watcher struct {
	maildir  *Maildir
	debounce time.Duration
	onError  func(error)

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	timer    *time.Timer
	cancel   context.CancelFunc
	started  bool
	changeCh chan struct{}
}

// NewWatcher returns a stopped watcher for m.
func NewWatcher(m *Maildir, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		maildir:  m,
		debounce: DefaultDebounce,
		onError:  func(error) {},
		changeCh: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start watches every folder currently under the maildir root.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	folders, err := w.maildir.Folders()
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, folder := range folders {
		for _, sub := range []string{dirNew, dirCur} {
			if err := fsw.Add(filepath.Join(folder, sub)); err != nil {
				fsw.Close()
				return err
			}
		}
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.fsw = fsw
	w.started = true
	go w.loop(ctx, fsw.Events, fsw.Errors)
	return nil
}

// Stop ends watching. Changed is not closed.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	w.cancel()
	w.fsw.Close()
	w.fsw = nil
	if w.timer != nil {
		w.timer.Stop()
	}
	w.started = false
}

// Changed receives once per settled burst of changes.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changeCh
}

func (w *Watcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.trigger()
			}

		case err, ok := <-errs:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.notify)
}

func (w *Watcher) notify() {
	w.mu.Lock()
	started := w.started
	w.mu.Unlock()
	if !started {
		return
	}
	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}
