package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/moteur/internal/httpserver/deps"
)

type componentStatus struct {
	OK         bool   `json:"ok"`
	Count      *int   `json:"count,omitempty"`
	LastReload string `json:"last_reload,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Impact     string `json:"impact,omitempty"`
	Error      string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"catalog":    catalogStatus(d),
			"credential": credentialStatus(d),
			"sessions":   sessionStatus(d),
		}
		if d.CredentialBackend == "redis" {
			components["redis"] = checkRedis(d)
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     determineStatus(components),
			Components: components,
		})
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format("2006-01-02 15:04:05")
}

func catalogStatus(d deps.Deps) componentStatus {
	c := d.Catalog.Get()
	if c == nil {
		return componentStatus{OK: false, Error: "not loaded"}
	}
	sources := len(c.Sources)
	return componentStatus{
		OK:         true,
		Count:      &sources,
		LastReload: formatTime(d.Catalog.LastReload()),
		Mode:       d.CatalogSource,
	}
}

func credentialStatus(d deps.Deps) componentStatus {
	if !d.Credential.Present() {
		return componentStatus{
			OK:     false,
			Mode:   d.CredentialBackend,
			Impact: "searches-rejected-until-set",
		}
	}
	return componentStatus{OK: true, Mode: d.CredentialBackend}
}

func sessionStatus(d deps.Deps) componentStatus {
	count := d.Sessions.Count()
	return componentStatus{
		OK:         true,
		Count:      &count,
		LastReload: formatTime(d.Sessions.GetLastCollected()),
	}
}

// determineStatus is "critical" without a catalog or a reachable store,
// "degraded" without a credential, "operational" otherwise.
func determineStatus(components map[string]componentStatus) string {
	if c, ok := components["catalog"]; ok && !c.OK {
		return "critical"
	}
	if r, ok := components["redis"]; ok && !r.OK {
		return "critical"
	}
	if c, ok := components["credential"]; ok && !c.OK {
		return "degraded"
	}
	return "operational"
}

func checkRedis(d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     false,
			Impact: "credential-not-persisted",
			Error:  "client not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Impact: "credential-not-persisted",
			Error:  "timeout",
		}
	}

	return componentStatus{OK: true, Mode: "optimal"}
}
