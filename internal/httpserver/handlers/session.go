package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/moteur/internal/httpserver/deps"
	"github.com/MrSnakeDoc/moteur/internal/logger"
	"github.com/MrSnakeDoc/moteur/internal/search"
)

// SessionCookie carries the browser session id.
const SessionCookie = "moteur_session"

// peekSession returns the caller's existing session without creating one.
func peekSession(r *http.Request, d deps.Deps) (*search.Controller, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, false
	}
	ctrl, ok := d.Sessions.Get(c.Value)
	if ok {
		ctrl.Touch()
	}
	return ctrl, ok
}

// currentSnapshot is the caller's state, or the idle state when the caller
// has no session yet.
func currentSnapshot(r *http.Request, d deps.Deps) search.Snapshot {
	if ctrl, ok := peekSession(r, d); ok {
		return ctrl.Snapshot()
	}
	return search.IdleSnapshot()
}

// sessionFor returns the controller of the caller's session, issuing a new
// cookie when the session is new or the presented id was rejected.
func sessionFor(w http.ResponseWriter, r *http.Request, d deps.Deps) *search.Controller {
	var presented string
	if c, err := r.Cookie(SessionCookie); err == nil {
		presented = c.Value
	}

	id, ctrl, created := d.Sessions.Resolve(presented)
	if created || id != presented {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			MaxAge:   int(d.SessionTTL.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   r.TLS != nil,
		})
	}
	if created {
		d.Logger.Debug("session created", logger.String("session_id", id))
	}

	ctrl.Touch()
	return ctrl
}
