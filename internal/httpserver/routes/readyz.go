package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/moteur/internal/httpserver/deps"
	"github.com/MrSnakeDoc/moteur/internal/httpserver/handlers"
)

func init() { Register("readyz", registerReadyz) }

func registerReadyz(r chi.Router, d deps.Deps) {
	r.With(opsOnly(d)...).Get("/readyz", handlers.Readyz(d))
}
