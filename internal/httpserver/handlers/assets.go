package handlers

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/quill/internal/content"
	"github.com/MrSnakeDoc/quill/internal/httpserver/deps"
)

// Assets serves images stored next to the posts. Anything that is not an
// image (markdown sources included) is a 404.
func Assets(d deps.Deps, prefix string) http.Handler {
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(d.ContentDir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := strings.TrimPrefix(r.URL.Path, prefix)
		if !content.IsAssetPath(p) || hiddenSegment(p) {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=86400")
		fs.ServeHTTP(w, r)
	})
}

func hiddenSegment(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
