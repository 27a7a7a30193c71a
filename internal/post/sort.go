package post

import (
	"sort"
	"time"
)

// SortByDate orders items by publication date, newest first.
// The sort is stable: items published at the same instant keep their
// enumeration order.
func SortByDate[T any](items []T, pubDate func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return pubDate(items[i]).After(pubDate(items[j]))
	})
}

// SortPostsByDate sorts metadata records newest first.
func SortPostsByDate(posts []*PostMetadata) {
	SortByDate(posts, func(m *PostMetadata) time.Time { return m.PubDate })
}

// FilterDrafts returns the items whose metadata is not marked as a draft.
// The input slice is left untouched.
func FilterDrafts[T any](items []T, meta func(T) *PostMetadata) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !meta(it).IsDraft {
			out = append(out, it)
		}
	}
	return out
}

// SeriesMembers returns the items belonging to the series slug, oldest first,
// which is reading order for a series.
func SeriesMembers[T any](items []T, slug string, meta func(T) *PostMetadata) []T {
	var out []T
	for _, it := range items {
		if s := meta(it).Series; s != nil && s.Slug == slug {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return meta(out[i]).PubDate.Before(meta(out[j]).PubDate)
	})
	return out
}
