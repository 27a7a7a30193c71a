package post

import (
	"testing"
	"time"
)

func meta(title, date string) *PostMetadata {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return &PostMetadata{Title: title, PubDate: d}
}

func titles(posts []*PostMetadata) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSortPostsByDate(t *testing.T) {
	posts := []*PostMetadata{
		meta("a", "2024-01-01"),
		meta("b", "2024-06-15"),
		meta("c", "2023-12-31"),
	}

	SortPostsByDate(posts)

	want := []string{"b", "a", "c"}
	if got := titles(posts); !equal(got, want) {
		t.Errorf("SortPostsByDate() = %v, want %v", got, want)
	}
}

func TestSortPostsByDateStable(t *testing.T) {
	posts := []*PostMetadata{
		meta("first", "2024-03-01"),
		meta("newer", "2024-04-01"),
		meta("second", "2024-03-01"),
		meta("third", "2024-03-01"),
	}

	SortPostsByDate(posts)

	want := []string{"newer", "first", "second", "third"}
	if got := titles(posts); !equal(got, want) {
		t.Errorf("SortPostsByDate() = %v, want %v", got, want)
	}
}

func TestFilterDrafts(t *testing.T) {
	draft := meta("draft", "2024-01-02")
	draft.IsDraft = true
	posts := []*PostMetadata{meta("a", "2024-01-01"), draft, meta("b", "2024-01-03")}

	got := FilterDrafts(posts, func(m *PostMetadata) *PostMetadata { return m })

	if want := []string{"a", "b"}; !equal(titles(got), want) {
		t.Errorf("FilterDrafts() = %v, want %v", titles(got), want)
	}
	if len(posts) != 3 {
		t.Error("FilterDrafts() modified its input")
	}
}

func TestSeriesMembers(t *testing.T) {
	part2 := meta("part 2", "2024-02-01")
	part2.Series = &SeriesInfo{Name: "Go", Slug: "go"}
	part1 := meta("part 1", "2024-01-01")
	part1.Series = &SeriesInfo{Name: "Go", Slug: "go"}
	other := meta("other", "2024-01-15")
	other.Series = &SeriesInfo{Name: "Rust", Slug: "rust"}

	posts := []*PostMetadata{part2, other, meta("standalone", "2024-03-01"), part1}
	got := SeriesMembers(posts, "go", func(m *PostMetadata) *PostMetadata { return m })

	if want := []string{"part 1", "part 2"}; !equal(titles(got), want) {
		t.Errorf("SeriesMembers() = %v, want %v", titles(got), want)
	}
	if got := SeriesMembers(posts, "missing", func(m *PostMetadata) *PostMetadata { return m }); len(got) != 0 {
		t.Errorf("SeriesMembers(missing) = %v, want empty", titles(got))
	}
}
