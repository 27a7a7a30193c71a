package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/quill/internal/httpserver/deps"
)

func Icons(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300")
		writeJSON(w, http.StatusOK, d.Icons)
	}
}
