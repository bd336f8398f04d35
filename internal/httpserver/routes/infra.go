package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/moteur/internal/httpserver/deps"
	"github.com/MrSnakeDoc/moteur/internal/httpserver/handlers"
)

func init() { Register("infra", registerInfra) }

func registerInfra(r chi.Router, d deps.Deps) {
	r.With(opsOnly(d)...).Get("/infra", handlers.Infra(d))
}
