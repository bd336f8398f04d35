package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/moteur/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready  bool   `json:"ready"`
	Reason string `json:"reason,omitempty"`
}

// Readyz reports ready once a catalog is loaded and, with the redis
// backend, the credential store answers.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Catalog == nil || d.Catalog.Get() == nil {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Reason: "catalog not loaded"})
			return
		}

		if d.RedisClient != nil {
			ctx, cancel := context.WithTimeout(r.Context(), time.Second)
			defer cancel()
			if err := d.RedisClient.Ping(ctx).Err(); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Reason: "credential store unreachable"})
				return
			}
		}

		writeJSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}
