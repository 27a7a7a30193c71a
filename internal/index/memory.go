package index

import (
	"sort"
	"sync"
	"time"

	"github.com/MrSnakeDoc/quill/internal/content"
	"github.com/MrSnakeDoc/quill/internal/post"
)

// MemoryIndex is the in-memory snapshot of the blog collection served by the
// API. It is the source of truth; Redis only persists view counters.
type MemoryIndex struct {
	mu         sync.RWMutex
	entries    map[string]*content.Entry // ID -> Entry
	ordered    []*content.Entry          // newest first
	failures   []*post.ValidationFailure
	broken     []*content.FileError
	views      map[string]int64     // ID -> view count
	retired    map[string]time.Time // ID -> when the post disappeared
	lastReload time.Time
	loaded     bool
}

// NewMemoryIndex creates a new memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		entries: make(map[string]*content.Entry),
		views:   make(map[string]int64),
		retired: make(map[string]time.Time),
	}
}

// Replace swaps the snapshot for coll. Posts that were present before and are
// missing from coll are marked retired; posts that reappear are revived.
func (idx *MemoryIndex) Replace(coll *content.Collection) (added, removed []string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	now := time.Now()
	next := make(map[string]*content.Entry, len(coll.Entries))
	for _, e := range coll.Entries {
		next[e.ID] = e
		if _, existed := idx.entries[e.ID]; !existed {
			added = append(added, e.ID)
		}
		delete(idx.retired, e.ID)
	}
	for id := range idx.entries {
		if _, ok := next[id]; !ok {
			removed = append(removed, id)
			idx.retired[id] = now
		}
	}
	sort.Strings(added)
	sort.Strings(removed)

	idx.entries = next
	idx.ordered = append([]*content.Entry(nil), coll.Entries...)
	idx.failures = coll.Failures
	idx.broken = coll.Broken
	idx.lastReload = now
	idx.loaded = true
	return added, removed
}

// SetReport records the problems of a load that was not applied.
func (idx *MemoryIndex) SetReport(coll *content.Collection) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.failures = coll.Failures
	idx.broken = coll.Broken
}

// Get retrieves a post by ID
func (idx *MemoryIndex) Get(id string) (*content.Entry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	e, ok := idx.entries[id]
	return e, ok
}

// List returns posts newest first. Drafts are left out unless includeDrafts.
func (idx *MemoryIndex) List(includeDrafts bool) []*content.Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if includeDrafts {
		return append([]*content.Entry(nil), idx.ordered...)
	}
	return post.FilterDrafts(idx.ordered, entryMeta)
}

// Series returns the posts of a series in reading order (oldest first).
func (idx *MemoryIndex) Series(slug string, includeDrafts bool) []*content.Entry {
	members := post.SeriesMembers(idx.List(includeDrafts), slug, entryMeta)
	return members
}

func entryMeta(e *content.Entry) *post.PostMetadata { return e.Meta }

// Failures returns the validation failures of the last load
func (idx *MemoryIndex) Failures() []*post.ValidationFailure {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return append([]*post.ValidationFailure(nil), idx.failures...)
}

// Broken returns the unreadable files of the last load
func (idx *MemoryIndex) Broken() []*content.FileError {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return append([]*content.FileError(nil), idx.broken...)
}

// Count returns the number of posts in the index, drafts included
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.entries)
}

// Loaded reports whether a snapshot was applied at least once.
func (idx *MemoryIndex) Loaded() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.loaded
}

// LastReload returns the timestamp of the last applied snapshot
func (idx *MemoryIndex) LastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}

// ─────────────────────────────────────────────────────────────────
// View counters
// ─────────────────────────────────────────────────────────────────

// IncrementViews adds one view to a known post and returns the new count.
// Unknown IDs are ignored and return false.
func (idx *MemoryIndex) IncrementViews(id string) (int64, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.entries[id]; !ok {
		return 0, false
	}
	idx.views[id]++
	return idx.views[id], true
}

// SetViews overwrites a counter, used when syncing from Redis.
func (idx *MemoryIndex) SetViews(id string, n int64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.views[id] = n
}

// Views returns the view count of a post
func (idx *MemoryIndex) Views(id string) int64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.views[id]
}

// ─────────────────────────────────────────────────────────────────
// Retired posts
// ─────────────────────────────────────────────────────────────────

// Retire marks id as gone since at, used when restoring state from Redis.
// Posts present in the snapshot are never retired.
func (idx *MemoryIndex) Retire(id string, at time.Time) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.entries[id]; ok {
		return
	}
	idx.retired[id] = at
}

// Retired returns retired post IDs with the time they disappeared
func (idx *MemoryIndex) Retired() map[string]time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make(map[string]time.Time, len(idx.retired))
	for id, at := range idx.retired {
		out[id] = at
	}
	return out
}

// Forget drops every trace of a retired post. Live posts are kept.
func (idx *MemoryIndex) Forget(id string) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, live := idx.entries[id]; live {
		return false
	}
	delete(idx.retired, id)
	delete(idx.views, id)
	return true
}
