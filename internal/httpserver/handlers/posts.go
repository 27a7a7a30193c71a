package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/quill/internal/content"
	"github.com/MrSnakeDoc/quill/internal/httpserver/deps"
	"github.com/MrSnakeDoc/quill/internal/logger"
	"github.com/MrSnakeDoc/quill/internal/post"
)

const maxListLimit = 100

// postSummary is a listing item: the metadata without the body.
type postSummary struct {
	ID             string             `json:"id"`
	Meta           *post.PostMetadata `json:"meta"`
	ReadingMinutes int                `json:"reading_minutes"`
	Views          int64              `json:"views"`
}

type postDetail struct {
	*content.Entry
	Views int64 `json:"views"`
}

type listResponse struct {
	Total int           `json:"total"`
	Posts []postSummary `json:"posts"`
}

type seriesResponse struct {
	Slug  string        `json:"slug"`
	Name  string        `json:"name"`
	Posts []postSummary `json:"posts"`
}

func summarize(d deps.Deps, entries []*content.Entry) []postSummary {
	out := make([]postSummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, postSummary{
			ID:             e.ID,
			Meta:           e.Meta,
			ReadingMinutes: e.ReadingMinutes,
			Views:          d.Index.Views(e.ID),
		})
	}
	return out
}

// ListPosts returns posts newest first. ?limit=N truncates the list.
func ListPosts(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries := d.Index.List(d.ShowDrafts)
		total := len(entries)

		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > maxListLimit {
				writeError(w, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxListLimit))
				return
			}
			if n < len(entries) {
				entries = entries[:n]
			}
		}

		writeJSON(w, http.StatusOK, listResponse{Total: total, Posts: summarize(d, entries)})
	}
}

// GetPost returns one post with its body and counts a view.
// The id may contain slashes for nested collections.
func GetPost(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.Trim(chi.URLParam(r, "*"), "/")
		e, ok := d.Index.Get(id)
		if !ok || (e.Meta.IsDraft && !d.ShowDrafts) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}

		writeJSON(w, http.StatusOK, postDetail{Entry: e, Views: countView(d, r, id)})
	}
}

// countView prefers the persistent store and falls back to the in-memory
// counter when the store is missing or failing.
func countView(d deps.Deps, r *http.Request, id string) int64 {
	if d.Store != nil {
		n, err := d.Store.IncrementViews(r.Context(), id)
		if err == nil {
			d.Index.SetViews(id, n)
			return n
		}
		d.Logger.Warn("failed to persist view, counting in memory",
			logger.String("post", id), logger.Error(err))
	}
	n, _ := d.Index.IncrementViews(id)
	return n
}

// Series lists the members of a series in reading order.
func Series(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		entries := d.Index.Series(slug, d.ShowDrafts)
		if len(entries) == 0 {
			writeError(w, http.StatusNotFound, "series not found")
			return
		}

		writeJSON(w, http.StatusOK, seriesResponse{
			Slug:  slug,
			Name:  entries[0].Meta.Series.Name,
			Posts: summarize(d, entries),
		})
	}
}
