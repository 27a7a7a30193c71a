package mw

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/quill/internal/logger"
	"github.com/MrSnakeDoc/quill/internal/utils"
)

// EnforceHost allows requests only if the Host header (without port)
// matches one of allowedHosts. Patterns like "*.example.com" match any
// subdomain. An empty list disables the check.
func EnforceHost(allowedHosts []string, log logger.Logger) func(http.Handler) http.Handler {
	if len(allowedHosts) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := strings.ToLower(utils.ParseHostNoPort(r.Host))
			for _, pattern := range allowedHosts {
				if matchHost(host, strings.ToLower(pattern)) {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Warn("host rejected", logger.String("host", r.Host), logger.String("path", r.URL.Path))
			w.WriteHeader(http.StatusForbidden)
		})
	}
}

func matchHost(host, pattern string) bool {
	if host == pattern {
		return true
	}
	// *.example.com matches sub.example.com but not example.com
	if suffix, ok := strings.CutPrefix(pattern, "*"); ok && strings.HasPrefix(suffix, ".") {
		return strings.HasSuffix(host, suffix)
	}
	return false
}
