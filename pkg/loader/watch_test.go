package loader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestRelevant(t *testing.T) {
	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "/d/tasks.json", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/d/folder.json", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/d/contacts.json", Op: fsnotify.Rename}, true},
		{fsnotify.Event{Name: "/d/tasks.json", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/d/notes.txt", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "/d/.tasks.json.swp", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		if got := relevant(tt.event); got != tt.want {
			t.Errorf("relevant(%v): expected %v, got %v", tt.event, tt.want, got)
		}
	}
}

func TestWatcherDebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	for _, name := range Files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(`{"data": []}`), 0644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-w.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("expected a change notification")
	}

	// The burst collapses into one notification.
	select {
	case <-w.Changes():
		t.Error("expected a single notification for one burst")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Changes():
		t.Error("expected no notification for unrelated files")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherStartMissingDir(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), 0, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Start(); err == nil {
		t.Error("expected error for missing directory")
	}
	w.watcher.Close()
}
