package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/quill/internal/logger"
	"github.com/MrSnakeDoc/quill/internal/utils"
)

// AllowOnlyCIDRS restricts a route to the given IPs/CIDRs. An empty list
// disables the filter.
// trustProxy should be true when running behind a trusted reverse proxy/tunnel (e.g., cloudflared).
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !m.Allow(ip) {
				log.Warn("admin route rejected",
					logger.String("ip", ip),
					logger.String("path", r.URL.Path),
					logger.Bool("trust_proxy", trustProxy))
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
