// Package ui provides the terminal user interface for tasktable.
// This file implements the BackgroundWorker for off-thread dataset loading.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/tasktable/pkg/loader"
	"github.com/vanderheijden86/tasktable/pkg/logging"
)

// WorkerState represents the current state of the background worker.
type WorkerState int

const (
	// WorkerIdle means the worker is waiting for file changes.
	WorkerIdle WorkerState = iota
	// WorkerProcessing means the worker is loading a dataset.
	WorkerProcessing
	// WorkerStopped means the worker has been stopped.
	WorkerStopped
)

// WorkerError wraps errors with phase and retry context.
type WorkerError struct {
	Phase   string    // "load"
	Cause   error     // The underlying error
	Time    time.Time // When the error occurred
	Retries int       // Consecutive failures including this one
}

func (e WorkerError) Error() string {
	return fmt.Sprintf("%s failed: %v (retries: %d)", e.Phase, e.Cause, e.Retries)
}

func (e WorkerError) Unwrap() error {
	return e.Cause
}

// DatasetLoadedMsg is sent to the UI when a dataset has been read.
// The UI ingests it on its own goroutine.
type DatasetLoadedMsg struct {
	Dataset *loader.Dataset
	Took    time.Duration
}

// DatasetErrorMsg is sent to the UI when loading fails.
type DatasetErrorMsg struct {
	Err         error
	Recoverable bool // True if we expect to recover on next file change
}

// BackgroundWorker loads datasets off the UI goroutine. It owns the data
// directory watcher and coalesces changes that arrive while a load is running.
type BackgroundWorker struct {
	// Configuration
	dataDir string
	log     *slog.Logger
	send    func(tea.Msg)

	// State
	mu      sync.Mutex
	state   WorkerState
	dirty   bool // True if a change came in while processing
	started bool

	// Error tracking
	lastError  *WorkerError
	errorCount int

	watcher *loader.Watcher

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	loads  sync.WaitGroup
}

// WorkerConfig configures the BackgroundWorker.
type WorkerConfig struct {
	DataDir  string
	Watch    bool          // Reload when the data directory changes
	Debounce time.Duration // Watcher quiet period; loader.DefaultDebounce when zero
	Logger   *slog.Logger
	Send     func(tea.Msg) // Usually (*tea.Program).Send
}

// NewBackgroundWorker creates a new background worker.
func NewBackgroundWorker(cfg WorkerConfig) (*BackgroundWorker, error) {
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.Send == nil {
		cfg.Send = func(tea.Msg) {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &BackgroundWorker{
		dataDir: cfg.DataDir,
		log:     cfg.Logger,
		send:    cfg.Send,
		state:   WorkerIdle,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	if cfg.Watch && cfg.DataDir != "" {
		fw, err := loader.NewWatcher(cfg.DataDir, cfg.Debounce, cfg.Logger)
		if err != nil {
			cancel()
			return nil, err
		}
		w.watcher = fw
	}

	return w, nil
}

// Start begins watching for file changes. Start is idempotent.
func (w *BackgroundWorker) Start() error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	w.started = true
	w.mu.Unlock()

	if w.watcher == nil {
		// No watcher - close done channel immediately so Stop() doesn't block
		close(w.done)
		return nil
	}
	if err := w.watcher.Start(); err != nil {
		close(w.done)
		return err
	}
	go w.processLoop()
	return nil
}

// Stop halts the background worker and cleans up resources.
// Stop is idempotent.
func (w *BackgroundWorker) Stop() {
	w.mu.Lock()
	if w.state == WorkerStopped {
		w.mu.Unlock()
		return
	}
	w.state = WorkerStopped
	wasStarted := w.started
	w.mu.Unlock()

	w.cancel()
	if w.watcher != nil {
		w.watcher.Stop()
	}

	if wasStarted {
		select {
		case <-w.done:
		case <-time.After(2 * time.Second):
			w.log.Warn("worker shutdown timed out")
		}
	}
	w.loads.Wait()
}

// TriggerRefresh loads the dataset again. A refresh requested while a load
// is running is folded into one follow-up load.
func (w *BackgroundWorker) TriggerRefresh() {
	w.mu.Lock()
	switch w.state {
	case WorkerStopped:
		w.mu.Unlock()
		return
	case WorkerProcessing:
		w.dirty = true
		w.mu.Unlock()
		return
	}
	w.loads.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.loads.Done()
		w.process()
	}()
}

// State returns the current worker state.
func (w *BackgroundWorker) State() WorkerState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// LastError returns the most recent error (nil if the last load succeeded).
func (w *BackgroundWorker) LastError() *WorkerError {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastError
}

func (w *BackgroundWorker) processLoop() {
	defer close(w.done)

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.watcher.Changes():
			w.log.Debug("data dir changed", "dir", w.dataDir)
			w.process()
		}
	}
}

// process loads the dataset and reports the result to the UI.
func (w *BackgroundWorker) process() {
	w.mu.Lock()
	if w.state != WorkerIdle {
		if w.state == WorkerProcessing {
			w.dirty = true
		}
		w.mu.Unlock()
		return
	}
	w.state = WorkerProcessing
	w.dirty = false
	w.mu.Unlock()

	msg := w.load()

	w.mu.Lock()
	if w.state == WorkerStopped {
		w.mu.Unlock()
		return
	}
	wasDirty := w.dirty
	w.state = WorkerIdle
	w.mu.Unlock()

	w.send(msg)

	if wasDirty {
		w.process()
	}
}

// load runs on the worker goroutine, never on the UI goroutine.
func (w *BackgroundWorker) load() tea.Msg {
	start := time.Now()

	var ds *loader.Dataset
	werr := safeCompute("load", func() error {
		var err error
		ds, err = loader.LoadDataset(w.ctx, w.dataDir)
		return err
	})
	if werr != nil {
		w.recordError(werr)
		w.log.Warn("load dataset", "dir", w.dataDir, "error", werr.Cause, "retries", werr.Retries)
		return DatasetErrorMsg{Err: werr, Recoverable: w.watcher != nil}
	}

	w.recordError(nil)
	took := time.Since(start)
	w.log.Debug("loaded dataset", "dir", w.dataDir, "tasks", ds.Tasks.Len(), "took", took)
	return DatasetLoadedMsg{Dataset: ds, Took: took}
}

// safeCompute executes fn and recovers from any panics.
func safeCompute(phase string, fn func() error) *WorkerError {
	var result *WorkerError
	func() {
		defer func() {
			if r := recover(); r != nil {
				result = &WorkerError{
					Phase: phase,
					Cause: fmt.Errorf("panic: %v\n%s", r, debug.Stack()),
					Time:  time.Now(),
				}
			}
		}()
		if err := fn(); err != nil {
			result = &WorkerError{Phase: phase, Cause: err, Time: time.Now()}
		}
	}()
	return result
}

func (w *BackgroundWorker) recordError(err *WorkerError) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastError = err
	if err == nil {
		w.errorCount = 0
		return
	}
	w.errorCount++
	err.Retries = w.errorCount
}

// LoadDatasetCmd loads dir once, for hosts without a worker.
func LoadDatasetCmd(dir string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		ds, err := loader.LoadDataset(context.Background(), dir)
		if err != nil {
			return DatasetErrorMsg{Err: err}
		}
		return DatasetLoadedMsg{Dataset: ds, Took: time.Since(start)}
	}
}
