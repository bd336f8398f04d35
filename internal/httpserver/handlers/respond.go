package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/moteur/internal/apperr"
	"github.com/MrSnakeDoc/moteur/internal/httpserver/deps"
	"github.com/MrSnakeDoc/moteur/internal/logger"
)

const maxBodyBytes = 1 << 16

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to its HTTP status. Only apperr messages reach the
// client; anything else is logged and answered with a generic text.
func writeError(w http.ResponseWriter, d deps.Deps, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		d.Logger.Error("request failed", logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: http.StatusText(http.StatusInternalServerError),
			Kind:  apperr.KindUnknown.String(),
		})
		return
	}
	writeJSON(w, ae.HTTPStatus(), errorResponse{Error: ae.Message, Kind: ae.Kind.String()})
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		return apperr.BadRequest("malformed JSON body", err)
	}
	return nil
}
