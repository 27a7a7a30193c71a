package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/quill/internal/httpserver/deps"
	"github.com/MrSnakeDoc/quill/internal/post"
)

type brokenFile struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type failuresResponse struct {
	LastReload string                    `json:"last_reload,omitempty"`
	Invalid    []*post.ValidationFailure `json:"invalid"`
	Broken     []brokenFile              `json:"broken"`
}

// Failures exposes the validation report of the last reload.
func Failures(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := failuresResponse{
			Invalid: d.Index.Failures(),
			Broken:  []brokenFile{},
		}
		if resp.Invalid == nil {
			resp.Invalid = []*post.ValidationFailure{}
		}
		if t := d.Index.LastReload(); !t.IsZero() {
			resp.LastReload = t.UTC().Format("2006-01-02T15:04:05Z07:00")
		}
		for _, b := range d.Index.Broken() {
			resp.Broken = append(resp.Broken, brokenFile{Path: b.Path, Error: b.Err.Error()})
		}

		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, resp)
	}
}
