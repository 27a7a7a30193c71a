package index

import (
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/quill/internal/content"
	"github.com/MrSnakeDoc/quill/internal/post"
)

func entry(id, date string, draft bool) *content.Entry {
	d, _ := time.Parse("2006-01-02", date)
	return &content.Entry{ID: id, Meta: &post.PostMetadata{Title: id, PubDate: d, IsDraft: draft}}
}

func collection(entries ...*content.Entry) *content.Collection {
	return &content.Collection{Entries: entries}
}

func ids(entries []*content.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestNewMemoryIndex(t *testing.T) {
	index := NewMemoryIndex()
	if index == nil {
		t.Fatal("NewMemoryIndex() returned nil")
	}
	if index.Count() != 0 || index.Loaded() {
		t.Errorf("NewMemoryIndex() should start empty and not loaded")
	}
	if len(index.List(true)) != 0 {
		t.Errorf("List() on empty index returned entries")
	}
}

func TestReplace(t *testing.T) {
	index := NewMemoryIndex()

	added, removed := index.Replace(collection(
		entry("b", "2024-06-15", false),
		entry("a", "2024-01-01", false),
	))
	if len(added) != 2 || len(removed) != 0 {
		t.Errorf("Replace() added=%v removed=%v", added, removed)
	}
	if !index.Loaded() || index.LastReload().IsZero() {
		t.Error("Replace() should mark the index loaded")
	}

	added, removed = index.Replace(collection(
		entry("c", "2024-07-01", false),
		entry("b", "2024-06-15", false),
	))
	if len(added) != 1 || added[0] != "c" {
		t.Errorf("added = %v, want [c]", added)
	}
	if len(removed) != 1 || removed[0] != "a" {
		t.Errorf("removed = %v, want [a]", removed)
	}
	if _, ok := index.Get("a"); ok {
		t.Error("Get(a) should fail after removal")
	}
	if _, ok := index.Retired()["a"]; !ok {
		t.Error("a should be retired")
	}

	// a comes back
	index.Replace(collection(entry("a", "2024-01-01", false)))
	if _, ok := index.Retired()["a"]; ok {
		t.Error("a should be revived")
	}
}

func TestListKeepsOrderAndFiltersDrafts(t *testing.T) {
	index := NewMemoryIndex()
	index.Replace(collection(
		entry("new", "2024-06-15", false),
		entry("draft", "2024-03-01", true),
		entry("old", "2023-12-31", false),
	))

	got := ids(index.List(false))
	if len(got) != 2 || got[0] != "new" || got[1] != "old" {
		t.Errorf("List(false) = %v", got)
	}
	if got := ids(index.List(true)); len(got) != 3 || got[1] != "draft" {
		t.Errorf("List(true) = %v", got)
	}
}

func TestSeries(t *testing.T) {
	p2 := entry("p2", "2024-02-01", false)
	p2.Meta.Series = &post.SeriesInfo{Name: "S", Slug: "s"}
	p1 := entry("p1", "2024-01-01", false)
	p1.Meta.Series = &post.SeriesInfo{Name: "S", Slug: "s"}
	p3 := entry("p3", "2024-03-01", true)
	p3.Meta.Series = &post.SeriesInfo{Name: "S", Slug: "s"}

	index := NewMemoryIndex()
	index.Replace(collection(p3, p2, p1))

	if got := ids(index.Series("s", false)); len(got) != 2 || got[0] != "p1" || got[1] != "p2" {
		t.Errorf("Series(s, false) = %v", got)
	}
	if got := index.Series("s", true); len(got) != 3 {
		t.Errorf("Series(s, true) = %v", ids(got))
	}
}

func TestViews(t *testing.T) {
	index := NewMemoryIndex()
	index.Replace(collection(entry("a", "2024-01-01", false)))

	if _, ok := index.IncrementViews("missing"); ok {
		t.Error("IncrementViews() on unknown post should fail")
	}
	index.SetViews("a", 41)
	if n, ok := index.IncrementViews("a"); !ok || n != 42 {
		t.Errorf("IncrementViews() = %d, %v", n, ok)
	}
	if index.Views("a") != 42 {
		t.Errorf("Views() = %d", index.Views("a"))
	}
}

func TestForget(t *testing.T) {
	index := NewMemoryIndex()
	index.Replace(collection(entry("a", "2024-01-01", false)))
	index.SetViews("gone", 3)
	index.Retire("gone", time.Now().Add(-time.Hour))
	index.Retire("a", time.Now())

	if _, ok := index.Retired()["a"]; ok {
		t.Error("live post should not be retired")
	}
	if index.Forget("a") {
		t.Error("Forget() should keep live posts")
	}
	if !index.Forget("gone") {
		t.Error("Forget(gone) = false")
	}
	if index.Views("gone") != 0 || len(index.Retired()) != 0 {
		t.Error("Forget() left state behind")
	}
}

func TestReport(t *testing.T) {
	index := NewMemoryIndex()
	failure := &post.ValidationFailure{ContentID: "bad"}
	index.SetReport(&content.Collection{
		Failures: []*post.ValidationFailure{failure},
		Broken:   []*content.FileError{{Path: "x.md"}},
	})

	if len(index.Failures()) != 1 || len(index.Broken()) != 1 {
		t.Errorf("report not stored")
	}
	if index.Loaded() {
		t.Error("SetReport() should not mark the index loaded")
	}
}

func TestConcurrentAccess(t *testing.T) {
	index := NewMemoryIndex()
	index.Replace(collection(entry("a", "2024-01-01", false)))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			index.IncrementViews("a")
			_ = index.List(false)
		}()
		go func() {
			defer wg.Done()
			index.Replace(collection(entry("a", "2024-01-01", false)))
		}()
	}
	wg.Wait()

	if index.Views("a") != 50 {
		t.Errorf("Views() = %d, want 50", index.Views("a"))
	}
}
