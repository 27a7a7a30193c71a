package mw

import (
	"net/http"
	"slices"
	"strings"
)

// CORS answers cross-origin requests from the given origins. "*" allows
// any origin. An empty list sends no CORS headers at all.
// Preflight requests are answered directly with 204.
func CORS(origins []string) func(http.Handler) http.Handler {
	wildcard := slices.Contains(origins, "*")

	return func(next http.Handler) http.Handler {
		if len(origins) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			switch {
			case wildcard:
				h.Set("Access-Control-Allow-Origin", "*")
			case slices.ContainsFunc(origins, func(o string) bool { return strings.EqualFold(o, origin) }):
				h.Set("Access-Control-Allow-Origin", origin)
			default:
				// unknown origin: serve without CORS headers, the browser blocks it
				if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type")
				h.Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			h.Set("Access-Control-Expose-Headers", "X-RateLimit-Limit, X-RateLimit-Remaining, Retry-After")
			next.ServeHTTP(w, r)
		})
	}
}
