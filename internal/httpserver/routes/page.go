package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/moteur/internal/httpserver/deps"
	"github.com/MrSnakeDoc/moteur/internal/httpserver/handlers"
)

func init() { Register("page", registerPage) }

func registerPage(r chi.Router, d deps.Deps) {
	r.Get("/", handlers.Index(d))
	r.With(searchLimit(d)).Post("/search", handlers.SearchForm(d))
	r.Post("/credential", handlers.CredentialForm(d))
}
