package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrSnakeDoc/quill/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("QUILL_LISTEN_PORT", "127.0.0.1:0")
	t.Setenv("QUILL_CONTENT_DIR", t.TempDir())
	t.Setenv("QUILL_LOG_LEVEL", "error")
	t.Setenv("QUILL_WATCH", "false")
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	return cfg
}

func TestNewWithoutRedis(t *testing.T) {
	a, err := New(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if a.redisStore != nil {
		t.Error("redis store created without QUILL_REDIS_ADDR")
	}
	if a.watcher != nil {
		t.Error("watcher created with QUILL_WATCH=false")
	}
}

func TestNewBadIconsFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.IconsFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("New() with a missing icons file should fail")
	}
}

func TestRunLoadsContentAndStops(t *testing.T) {
	cfg := testConfig(t)
	post := "---\ntitle: Hello\ndescription: First\npubDate: 2024-01-01\n---\nBody\n"
	if err := os.WriteFile(filepath.Join(cfg.ContentDir, "hello.md"), []byte(post), 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for !a.memIndex.Loaded() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := a.memIndex.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestRunFailsOnMissingContentDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.ContentDir = filepath.Join(cfg.ContentDir, "nope")

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Run(context.Background()); err == nil {
		t.Error("Run() should fail when the content dir is missing")
	}
}
