package confloader

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yndnr/hyperlocal-go/internal/telemetry/logger"
)

// DefaultDebounce collapses the burst of events one save produces.
const DefaultDebounce = 100 * time.Millisecond

// relevantOps are the operations that can change a watched file's content.
const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Watcher reports changes to individual files. Parent directories are
// watched so replace-by-rename saves are seen; events for other files in
// those directories are dropped.
type Watcher struct {
	fs       *fsnotify.Watcher
	log      logger.Logger
	debounce time.Duration

	mu        sync.Mutex
	files     map[string]struct{}
	pending   map[string]*time.Timer
	callbacks []func(string)

	done     chan struct{}
	stopOnce sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger for the watcher.
func WithWatcherLogger(l logger.Logger) WatcherOption {
	return func(w *Watcher) { w.log = l }
}

// WithDebounce sets how long a file must stay quiet before callbacks run.
// Zero delivers every event immediately.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// NewWatcher creates a file watcher. Call StartAsync to begin delivery.
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fs:       fw,
		log:      logger.Default(),
		debounce: DefaultDebounce,
		files:    make(map[string]struct{}),
		pending:  make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch adds a file. Its directory must exist; the file need not.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.fs.Add(filepath.Dir(abs)); err != nil {
		w.log.Warn("failed to watch directory", "path", filepath.Dir(abs), "error", err)
		return err
	}

	w.mu.Lock()
	w.files[abs] = struct{}{}
	w.mu.Unlock()
	w.log.Debug("watching file for changes", "path", abs)
	return nil
}

// OnChange registers a callback that receives the changed file's path.
func (w *Watcher) OnChange(callback func(string)) {
	w.mu.Lock()
	w.callbacks = append(w.callbacks, callback)
	w.mu.Unlock()
}

// StartAsync delivers events from a background goroutine until Stop.
func (w *Watcher) StartAsync() {
	go w.loop()
}

// Stop ends delivery and cancels pending callbacks. It may be called more
// than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fs.Close()

		w.mu.Lock()
		for p, t := range w.pending {
			t.Stop()
			delete(w.pending, p)
		}
		w.mu.Unlock()
	})
	return err
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Op&relevantOps == 0 {
				continue
			}
			name, _ := filepath.Abs(ev.Name)
			w.schedule(name, ev.Op)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("file watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

// schedule arranges for callbacks to run once path has been quiet for the
// debounce interval.
func (w *Watcher) schedule(path string, op fsnotify.Op) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[path]; !ok {
		return
	}
	w.log.Debug("watched file changed", "file", path, "op", op.String())

	if w.debounce <= 0 {
		go w.fire(path)
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.fire(path)
	})
}

func (w *Watcher) fire(path string) {
	select {
	case <-w.done:
		return
	default:
	}
	w.mu.Lock()
	cbs := append([]func(string){}, w.callbacks...)
	w.mu.Unlock()
	for _, cb := range cbs {
		cb(path)
	}
}
