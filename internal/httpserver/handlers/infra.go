package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/quill/internal/httpserver/deps"
)

type componentStatus struct {
	OK          bool   `json:"ok"`
	PostsLoaded *int   `json:"posts_loaded,omitempty"`
	Invalid     *int   `json:"invalid,omitempty"`
	LastReload  string `json:"last_reload,omitempty"`
	Mode        string `json:"mode,omitempty"`
	Impact      string `json:"impact,omitempty"`
	Error       string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts := d.Index.Count()
		invalid := len(d.Index.Failures()) + len(d.Index.Broken())
		lastReload := d.Index.LastReload()
		lastReloadStr := "never"
		if !lastReload.IsZero() {
			lastReloadStr = lastReload.Format("2006-01-02 15:04:05")
		}

		components := map[string]componentStatus{
			"content": {
				OK:          d.Index.Loaded() && invalid == 0,
				PostsLoaded: &posts,
				Invalid:     &invalid,
				LastReload:  lastReloadStr,
			},
			"redis": checkRedis(r.Context(), d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(d, components),
			Components: components,
		})
	}
}

func determineMode(d deps.Deps, components map[string]componentStatus) string {
	if !d.Index.Loaded() {
		return "critical"
	}
	if c := components["content"]; !c.OK {
		return "degraded" // some posts are hidden by validation errors
	}
	if c := components["redis"]; !c.OK {
		return "degraded"
	}
	return "optimal"
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{
			OK:     true,
			Mode:   "memory",
			Impact: "view-counters-not-persisted",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "view-counters-not-persisted",
			Error:  err.Error(),
		}
	}

	return componentStatus{
		OK:     true,
		Mode:   "redis",
		Impact: "view-counters-persisted",
	}
}
