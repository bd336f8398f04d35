package handlers

import (
	"bytes"
	"net/http"

	"github.com/MrSnakeDoc/moteur/internal/httpserver/deps"
	"github.com/MrSnakeDoc/moteur/internal/logger"
	"github.com/MrSnakeDoc/moteur/internal/view"
)

// Index renders the search page for the caller's session. It never creates
// a session; a new visitor sees the welcome state.
func Index(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := view.Build(currentSnapshot(r, d), d.Credential.Present(), d.Catalog.Get())

		var buf bytes.Buffer
		if err := d.Renderer.Render(&buf, page); err != nil {
			d.Logger.Error("failed to render page", logger.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			d.Logger.Debug("failed to write response", logger.Error(err))
		}
	}
}

// SearchForm handles the search form post and sends the browser back to the
// page, which shows the loading state until the fetch settles.
func SearchForm(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "malformed form", http.StatusBadRequest)
			return
		}

		ctrl := sessionFor(w, r, d)
		ctrl.Submit(r.PostFormValue("query"), d.Credential.Get())

		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// CredentialForm stores the credential typed in the header field. An empty
// value clears it.
func CredentialForm(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "malformed form", http.StatusBadRequest)
			return
		}

		if err := d.Credential.Set(r.Context(), r.PostFormValue("credential")); err != nil {
			d.Logger.Error("failed to persist credential", logger.Error(err))
		}

		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
