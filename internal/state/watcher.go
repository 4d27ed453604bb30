package state

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Paintersrp/an-presets/internal/pathutil"
)

const defaultDebounce = 150 * time.Millisecond

// StoreWatcher reports when the file backing the preset store is rewritten by
// another process. It watches the parent directory because saves replace the
// file by renaming over it.
type StoreWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	done     chan struct{}
	once     sync.Once
	mu       sync.Mutex
	timer    *time.Timer
	debounce time.Duration
	onChange func()
	onError  func(error)
	onClose  func()
}

func NewStoreWatcher(path string) (*StoreWatcher, error) {
	normalized := pathutil.NormalizePath(path)
	if normalized == "" {
		return nil, errors.New("store path cannot be empty")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := w.Add(filepath.Dir(normalized)); err != nil {
		_ = w.Close()
		return nil, err
	}

	return &StoreWatcher{
		watcher:  w,
		path:     normalized,
		done:     make(chan struct{}),
		debounce: defaultDebounce,
	}, nil
}

// Start runs the event loop in the background until Close is called.
func (w *StoreWatcher) Start() {
	if w == nil {
		return
	}

	go func() {
		for {
			select {
			case <-w.done:
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if w.isRelevant(event) {
					w.schedule()
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.mu.Lock()
				onError := w.onError
				w.mu.Unlock()
				if err != nil && onError != nil {
					onError(err)
				}
			}
		}
	}()
}

// schedule collapses a burst of events into one callback.
func (w *StoreWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.done:
			return
		default:
		}
		w.mu.Lock()
		onChange := w.onChange
		w.mu.Unlock()
		if onChange != nil {
			onChange()
		}
	})
}

func (w *StoreWatcher) Close() error {
	if w == nil {
		return nil
	}

	var closeErr error
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		closeErr = w.watcher.Close()
		if w.onClose != nil {
			w.onClose()
		}
	})

	return closeErr
}

// OnChange registers the callback run after the store file changes.
func (w *StoreWatcher) OnChange(fn func()) {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

func (w *StoreWatcher) OnError(fn func(error)) {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = fn
}

// OnClose registers a callback that is invoked exactly once when the watcher
// shuts down.
func (w *StoreWatcher) OnClose(fn func()) {
	if w == nil {
		return
	}
	w.onClose = fn
}

// SetDebounce changes how long the watcher waits for a burst of events to
// settle.
func (w *StoreWatcher) SetDebounce(d time.Duration) {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

func (w *StoreWatcher) isRelevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return false
	}
	return pathutil.NormalizePath(event.Name) == w.path
}
