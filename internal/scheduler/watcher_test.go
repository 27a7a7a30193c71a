package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/quill/internal/logger"
)

func TestWatcherTriggersOnChange(t *testing.T) {
	dir := t.TempDir()
	trigger := make(chan struct{}, 1)

	w := NewWatcher(dir, 20*time.Millisecond, trigger, logger.Nop())
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	// Several writes inside one debounce window.
	for i := 0; i < 3; i++ {
		writePost(t, dir, "a.md", validFM)
	}

	select {
	case <-trigger:
	case <-time.After(2 * time.Second):
		t.Fatal("no reload requested after a content change")
	}
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()
	trigger := make(chan struct{}, 1)

	w := NewWatcher(dir, 20*time.Millisecond, trigger, logger.Nop())
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	sub := filepath.Join(dir, "2024")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	select {
	case <-trigger:
	case <-time.After(2 * time.Second):
		t.Fatal("no reload requested for a new directory")
	}

	writePost(t, sub, "nested.md", validFM)
	select {
	case <-trigger:
	case <-time.After(2 * time.Second):
		t.Fatal("no reload requested for a file in a new directory")
	}
}

type warnRecorder struct {
	logger.Logger
	mu    sync.Mutex
	warns []string
}

func (r *warnRecorder) Warn(msg string, _ ...logger.Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warns = append(r.warns, msg)
}

func TestWatcherFollowLogsFailures(t *testing.T) {
	dir := t.TempDir()
	rec := &warnRecorder{Logger: logger.Nop()}

	w := NewWatcher(dir, time.Millisecond, make(chan struct{}, 1), rec)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	// A directory removed before it could be watched.
	w.follow(filepath.Join(dir, "gone"))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.warns) != 1 || rec.warns[0] != "failed to watch new content directory" {
		t.Errorf("warnings = %q, want one watch failure", rec.warns)
	}
}

func TestWatcherStartMissingDir(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "missing"), time.Millisecond, make(chan struct{}, 1), logger.Nop())
	if err := w.Start(context.Background()); err == nil {
		t.Error("Start() on a missing dir should fail")
	}
	w.Stop()
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"markdown write", fsnotify.Event{Name: "/c/a.md", Op: fsnotify.Write}, true},
		{"mdx create", fsnotify.Event{Name: "/c/a.mdx", Op: fsnotify.Create}, true},
		{"image", fsnotify.Event{Name: "/c/hero.webp", Op: fsnotify.Write}, true},
		{"directory", fsnotify.Event{Name: "/c/2024", Op: fsnotify.Remove}, true},
		{"chmod", fsnotify.Event{Name: "/c/a.md", Op: fsnotify.Chmod}, false},
		{"swap file", fsnotify.Event{Name: "/c/.a.md.swp", Op: fsnotify.Write}, false},
		{"backup", fsnotify.Event{Name: "/c/a.md~", Op: fsnotify.Write}, false},
		{"other file", fsnotify.Event{Name: "/c/notes.txt", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := relevant(tt.ev); got != tt.want {
				t.Errorf("relevant(%v) = %v, want %v", tt.ev, got, tt.want)
			}
		})
	}
}
