package deps

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/moteur/internal/catalog"
	"github.com/MrSnakeDoc/moteur/internal/credential"
	"github.com/MrSnakeDoc/moteur/internal/logger"
	"github.com/MrSnakeDoc/moteur/internal/session"
	"github.com/MrSnakeDoc/moteur/internal/view"
)

type Deps struct {
	Logger            logger.Logger
	StartTime         time.Time
	Version           string
	Commit            string
	BuildDate         string
	GoVersion         string
	TimeNow           func() time.Time                // for testing, defaults to time.Now
	AllowedHosts      []string                        // Host headers allowed to reach ops endpoints
	AllowedCIDRS      []string                        // IPs allowed to access ops endpoints
	TrustProxy        bool                            // true if running behind a trusted reverse proxy (e.g., cloudflared)
	Catalog           *catalog.Holder                 // current listing catalog
	CatalogSource     string                          // "builtin" or the catalog file path
	Credential        *credential.Holder              // process-wide API credential
	CredentialBackend string                          // "file" | "redis"
	Sessions          *session.Registry               // one search controller per browser session
	SessionTTL        time.Duration                   // cookie lifetime, mirrors the idle eviction ttl
	Renderer          *view.Renderer                  // HTML page renderer
	RedisClient       *redis.Client                   // nil unless the redis credential backend is used
	ReloadTrigger     chan struct{}                   // Channel to trigger manual catalog reload
	SearchRateLimit   func(http.Handler) http.Handler // shared by the form and API search routes
}
