package loader

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/tasktable/pkg/logging"
)

// DefaultDebounce is the quiet period a Watcher waits for before reporting.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reports changes to a data directory's documents. Bursts of file
// events (an exporter rewriting all five files) collapse into one
// notification sent once the directory has been quiet for the debounce
// period.
type Watcher struct {
	dir      string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	log      *slog.Logger

	changes chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher creates a watcher for dir. A non-positive debounce means
// DefaultDebounce; a nil logger discards.
func NewWatcher(dir string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logging.Discard()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		dir:      dir,
		watcher:  fw,
		debounce: debounce,
		log:      logger,
		changes:  make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch data dir: %w", err)
	}
	go w.watchLoop()
	return nil
}

// Changes delivers one value per debounced burst. At most one notification
// is pending; a slow reader sees a single value for several bursts.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Stop shuts the watcher down and waits for its goroutine.
func (w *Watcher) Stop() {
	w.cancel()
	w.watcher.Close()
	<-w.done
}

// watchLoop processes file system events.
func (w *Watcher) watchLoop() {
	defer close(w.done)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			timer.Reset(w.debounce)
		case <-timer.C:
			w.notify()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Errors are logged but don't stop the watcher
			w.log.Warn("watch error", "dir", w.dir, "error", err)
		}
	}
}

// relevant reports whether an event touches one of the dataset documents.
func relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	return slices.Contains(Files, filepath.Base(event.Name))
}

func (w *Watcher) notify() {
	select {
	case w.changes <- struct{}{}:
	default:
		// A notification is already pending
	}
}
