package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/quill/internal/content"
	"github.com/MrSnakeDoc/quill/internal/httpserver/deps"
	"github.com/MrSnakeDoc/quill/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/quill/internal/httpserver/mw"
)

func init() { Register(registerAPI) }

func registerAPI(r chi.Router, d deps.Deps) {
	public := r.With(
		mw.CORS(d.CORSOrigins),
		mw.RateLimit(mw.RateLimitConfig{
			Burst:      d.RateBurst,
			PerMinute:  d.RatePerMin,
			TrustProxy: d.TrustProxy,
			Now:        d.TimeNow,
		}),
	)

	public.Get("/api/posts", handlers.ListPosts(d))
	public.Get("/api/posts/*", handlers.GetPost(d))
	public.Get("/api/series/{slug}", handlers.Series(d))
	public.Get("/api/icons", handlers.Icons(d))
	public.Options("/api/*", handlers.NoContent)

	r.Handle(content.DefaultAssetPrefix+"/*", handlers.Assets(d, content.DefaultAssetPrefix))
}
