package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/quill/internal/content"
	"github.com/MrSnakeDoc/quill/internal/index"
	"github.com/MrSnakeDoc/quill/internal/logger"
	"github.com/MrSnakeDoc/quill/internal/post"
)

// fakeStore is an in-memory ViewStore.
type fakeStore struct {
	mu      sync.Mutex
	views   map[string]int64
	retired map[string]time.Time
	deleted []string
	failAll bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{views: map[string]int64{}, retired: map[string]time.Time{}}
}

var errFake = errors.New("redis down")

func (f *fakeStore) AllViews(context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errFake
	}
	out := make(map[string]int64, len(f.views))
	for k, v := range f.views {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) DeleteViews(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errFake
	}
	f.deleted = append(f.deleted, id)
	delete(f.views, id)
	delete(f.retired, id)
	return nil
}

func (f *fakeStore) SyncRetired(_ context.Context, retired map[string]time.Time, revived []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errFake
	}
	for id, at := range retired {
		if _, ok := f.retired[id]; !ok {
			f.retired[id] = at
		}
	}
	for _, id := range revived {
		delete(f.retired, id)
	}
	return nil
}

func (f *fakeStore) Retired(context.Context) (map[string]time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errFake
	}
	out := make(map[string]time.Time, len(f.retired))
	for k, v := range f.retired {
		out[k] = v
	}
	return out, nil
}

func entry(id string) *content.Entry {
	return &content.Entry{ID: id, Meta: &post.PostMetadata{Title: id, PubDate: time.Now()}}
}

func TestGarbageCollector_Collect(t *testing.T) {
	memIndex := index.NewMemoryIndex()
	memIndex.Replace(&content.Collection{Entries: []*content.Entry{entry("active")}})

	now := time.Now()
	memIndex.Retire("recently-removed", now.Add(-10*24*time.Hour)) // Removed 10 days ago
	memIndex.Retire("old-removed", now.Add(-35*24*time.Hour))      // Removed 35 days ago
	memIndex.SetViews("old-removed", 12)
	memIndex.SetViews("active", 3)

	store := newFakeStore()
	store.views["old-removed"] = 12

	// Create GC with 30 day threshold
	gc := NewGarbageCollector(store, memIndex, logger.Nop(), 24*time.Hour, 30*24*time.Hour)

	if n := gc.Collect(context.Background()); n != 1 {
		t.Errorf("Collect() = %d, want 1", n)
	}

	retired := memIndex.Retired()
	if _, ok := retired["recently-removed"]; !ok {
		t.Error("recently removed post was incorrectly collected")
	}
	if _, ok := retired["old-removed"]; ok {
		t.Error("old removed post should have been collected")
	}
	if memIndex.Views("old-removed") != 0 {
		t.Error("view counter of collected post survived")
	}
	if memIndex.Views("active") != 3 {
		t.Error("active post lost its views")
	}
	if len(store.deleted) != 1 || store.deleted[0] != "old-removed" {
		t.Errorf("store deletions = %v", store.deleted)
	}
}

func TestGarbageCollector_WithoutStore(t *testing.T) {
	memIndex := index.NewMemoryIndex()
	memIndex.Retire("gone", time.Now().Add(-48*time.Hour))

	gc := NewGarbageCollector(nil, memIndex, logger.Nop(), 0, time.Hour)
	if n := gc.Collect(context.Background()); n != 1 {
		t.Errorf("Collect() = %d, want 1", n)
	}
}

func TestGarbageCollector_StoreErrorsAreIgnored(t *testing.T) {
	memIndex := index.NewMemoryIndex()
	memIndex.Retire("gone", time.Now().Add(-48*time.Hour))
	store := newFakeStore()
	store.failAll = true

	gc := NewGarbageCollector(store, memIndex, logger.Nop(), 0, time.Hour)
	if n := gc.Collect(context.Background()); n != 1 {
		t.Errorf("Collect() = %d, want 1", n)
	}
}

func TestGarbageCollector_DefaultThreshold(t *testing.T) {
	gc := NewGarbageCollector(nil, index.NewMemoryIndex(), logger.Nop(), time.Hour, 0)
	if gc.threshold != DefaultGCThreshold {
		t.Errorf("threshold = %v, want %v", gc.threshold, DefaultGCThreshold)
	}
}

func TestGarbageCollector_StartStop(t *testing.T) {
	gc := NewGarbageCollector(nil, index.NewMemoryIndex(), logger.Nop(), time.Millisecond, time.Hour)
	if err := gc.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	gc.Stop()
	gc.Stop()
}
