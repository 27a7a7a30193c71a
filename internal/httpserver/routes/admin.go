package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/quill/internal/httpserver/deps"
	"github.com/MrSnakeDoc/quill/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/quill/internal/httpserver/mw"
)

func init() { Register(registerAdmin) }

func registerAdmin(r chi.Router, d deps.Deps) {
	a := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger), mw.EnforceHost(d.AllowedHosts, d.Logger))
	a.Post("/reload", handlers.Reload(d))
	a.Get("/infra", handlers.Infra(d))
	a.Get("/api/failures", handlers.Failures(d))
}
