package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/MrSnakeDoc/moteur/internal/httpserver/deps"
	"github.com/MrSnakeDoc/moteur/internal/logger"
	"github.com/MrSnakeDoc/moteur/internal/search"
)

// MaxWait caps how long GET /api/search?wait=true blocks.
const MaxWait = 25 * time.Second

type searchRequest struct {
	Query string `json:"query"`
}

type credentialRequest struct {
	Credential string `json:"credential"`
}

type credentialResponse struct {
	Present bool `json:"present"`
}

// SearchStatus returns the session's snapshot, optionally waiting for the
// fetch in flight to settle. Unknown sessions get the idle snapshot.
func SearchStatus(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl, ok := peekSession(r, d)
		if !ok {
			writeJSON(w, http.StatusOK, search.IdleSnapshot())
			return
		}

		wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
		if !wait {
			writeJSON(w, http.StatusOK, ctrl.Snapshot())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), MaxWait)
		defer cancel()

		snap, err := ctrl.Wait(ctx)
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			d.Logger.Debug("wait aborted", logger.Error(err))
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// SearchSubmit starts a search. Rejected input is reported through the
// snapshot with 200, matching what the page shows.
func SearchSubmit(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d, err)
			return
		}

		ctrl := sessionFor(w, r, d)
		if id := ctrl.Submit(req.Query, d.Credential.Get()); id == 0 {
			writeJSON(w, http.StatusOK, ctrl.Snapshot())
			return
		}
		writeJSON(w, http.StatusAccepted, ctrl.Snapshot())
	}
}

// CredentialStatus reports whether a credential is set. The value itself is
// never returned.
func CredentialStatus(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, credentialResponse{Present: d.Credential.Present()})
	}
}

func CredentialUpdate(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d, err)
			return
		}

		if err := d.Credential.Set(r.Context(), req.Credential); err != nil {
			writeError(w, d, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
