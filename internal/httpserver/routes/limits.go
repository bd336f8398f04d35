package routes

import (
	"net/http"

	"github.com/MrSnakeDoc/moteur/internal/httpserver/deps"
	"github.com/MrSnakeDoc/moteur/internal/httpserver/mw"
)

// opsOnly restricts operational endpoints to the configured CIDRs and hosts.
func opsOnly(d deps.Deps) []Middleware {
	return []Middleware{
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	}
}

// searchLimit returns the shared search rate limiter, or a passthrough.
func searchLimit(d deps.Deps) Middleware {
	if d.SearchRateLimit == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return d.SearchRateLimit
}
