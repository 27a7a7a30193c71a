package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/quill/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool `json:"ready"`
	Posts int  `json:"posts"`
}

// Readyz is ready once a content snapshot has been installed, even an empty one.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready := d.Index.Loaded()
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, readyzResponse{Ready: ready, Posts: d.Index.Count()})
	}
}
