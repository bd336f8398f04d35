package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/moteur/internal/httpserver/deps"
	"github.com/MrSnakeDoc/moteur/internal/httpserver/handlers"
)

func init() { Register("api", registerAPI) }

func registerAPI(r chi.Router, d deps.Deps) {
	r.Route("/api", func(api chi.Router) {
		api.Get("/search", handlers.SearchStatus(d))
		api.With(searchLimit(d)).Post("/search", handlers.SearchSubmit(d))
		api.Get("/credential", handlers.CredentialStatus(d))
		api.Put("/credential", handlers.CredentialUpdate(d))
	})
}
