package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrSnakeDoc/quill/internal/content"
	"github.com/MrSnakeDoc/quill/internal/index"
	"github.com/MrSnakeDoc/quill/internal/logger"
	"github.com/MrSnakeDoc/quill/internal/post"
)

func writePost(t *testing.T, dir, name, frontmatter string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("---\n"+frontmatter+"---\nbody\n"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
}

const validFM = "title: t\ndescription: d\npubDate: 2024-01-01\n"

func newReloader(dir string, store ViewStore, idx *index.MemoryIndex, strict bool, trigger chan struct{}) *ContentReloader {
	loader := content.NewLoader(dir, post.NewSchema())
	return NewContentReloader(loader, store, idx, logger.Nop(), 0, strict, trigger)
}

func TestContentReloader_Reload(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "a.md", validFM)
	writePost(t, dir, "b.md", validFM)
	writePost(t, dir, "bad.md", "title: t\n")

	idx := index.NewMemoryIndex()
	store := newFakeStore()
	cr := newReloader(dir, store, idx, false, nil)

	if err := cr.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if idx.Count() != 2 || len(idx.Failures()) != 1 {
		t.Errorf("Count()=%d Failures()=%d, want 2/1", idx.Count(), len(idx.Failures()))
	}

	if err := os.Remove(filepath.Join(dir, "b.md")); err != nil {
		t.Fatal(err)
	}
	if err := cr.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if _, ok := idx.Retired()["b"]; !ok {
		t.Error("removed post not retired in memory")
	}
	if _, ok := store.retired["b"]; !ok {
		t.Error("removed post not retired in store")
	}

	writePost(t, dir, "b.md", validFM)
	if err := cr.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if _, ok := store.retired["b"]; ok {
		t.Error("restored post still retired in store")
	}
}

func TestContentReloader_StrictKeepsSnapshot(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "a.md", validFM)

	idx := index.NewMemoryIndex()
	cr := newReloader(dir, nil, idx, true, nil)
	if err := cr.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	writePost(t, dir, "b.md", validFM)
	writePost(t, dir, "bad.md", "title: t\npubDate: soon\n")
	if err := cr.Reload(context.Background()); err == nil {
		t.Fatal("strict Reload() should fail on invalid files")
	}

	if idx.Count() != 1 {
		t.Errorf("snapshot replaced in strict mode, Count() = %d", idx.Count())
	}
	if len(idx.Failures()) != 1 {
		t.Errorf("failure report not recorded: %v", idx.Failures())
	}
}

func TestContentReloader_StartFailsOnMissingDir(t *testing.T) {
	cr := newReloader(filepath.Join(t.TempDir(), "missing"), nil, index.NewMemoryIndex(), false, nil)
	if err := cr.Start(context.Background()); err == nil {
		t.Error("Start() should fail when the initial load fails")
	}
}

func TestContentReloader_ManualTrigger(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "a.md", validFM)

	idx := index.NewMemoryIndex()
	trigger := make(chan struct{}, 1)
	cr := newReloader(dir, nil, idx, false, trigger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := cr.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer cr.Stop()

	writePost(t, dir, "b.md", validFM)
	if !Trigger(trigger) {
		t.Fatal("Trigger() = false on an empty channel")
	}

	deadline := time.Now().Add(2 * time.Second)
	for idx.Count() != 2 {
		if time.Now().After(deadline) {
			t.Fatalf("manual trigger not processed, Count() = %d", idx.Count())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestTrigger(t *testing.T) {
	ch := make(chan struct{}, 1)
	if !Trigger(ch) {
		t.Error("first Trigger() = false")
	}
	if Trigger(ch) {
		t.Error("second Trigger() should report a pending request")
	}
}
