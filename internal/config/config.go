package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Generation
	GeminiModel   string        // ex: "gemini-2.5-flash"
	Temperature   float64       // sampling temperature sent with every request
	FetchTimeout  time.Duration // 0 = no timeout
	DefaultAPIKey string        // optional seed used when no credential is stored

	// Credential storage
	CredentialBackend string // "file" | "redis"
	CredentialFile    string // path used by the file backend

	// Catalog
	CatalogFile           string        // optional YAML override of the built-in catalog
	CatalogReloadInterval time.Duration // 0 disables periodic reload

	// Sessions
	SessionIdleTTL    time.Duration // sessions idle longer than this are evicted
	SessionGCInterval time.Duration // how often idle sessions are collected
	MaxSessions       int           // least recently active session is evicted beyond this

	// Search rate limit (per client IP)
	SearchBurst        int
	SearchRefillPerMin int

	// Redis (only when CredentialBackend is "redis")
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	AllowedHosts []string // optional, restrict ops endpoints to specific Host headers
	AllowedCIDRS []string // optional, restrict ops endpoints to specific IPs (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first; real environment variables win.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] failed to read .env: %v", err)
	}

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("MOTEUR_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("MOTEUR_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("MOTEUR_LOG_LEVEL", "info"),
		PrettyLog: mustBool("MOTEUR_PRETTY_LOG", true),

		// Generation
		GeminiModel:   getenv("MOTEUR_GEMINI_MODEL", "gemini-2.5-flash"),
		Temperature:   getenvFloat("MOTEUR_TEMPERATURE", 0.8),
		FetchTimeout:  mustDuration("MOTEUR_FETCH_TIMEOUT", 0),
		DefaultAPIKey: getenv("MOTEUR_DEFAULT_API_KEY", ""),

		// Credential storage
		CredentialBackend: strings.ToLower(getenv("MOTEUR_CREDENTIAL_BACKEND", BackendFile)),
		CredentialFile:    getenv("MOTEUR_CREDENTIAL_FILE", "./data/credential"),

		// Catalog
		CatalogFile:           getenv("MOTEUR_CATALOG_FILE", ""),
		CatalogReloadInterval: mustDuration("MOTEUR_CATALOG_RELOAD_INTERVAL", time.Hour),

		// Sessions
		SessionIdleTTL:    mustDuration("MOTEUR_SESSION_IDLE_TTL", 24*time.Hour),
		SessionGCInterval: mustDuration("MOTEUR_SESSION_GC_INTERVAL", time.Hour),
		MaxSessions:       getenvInt("MOTEUR_MAX_SESSIONS", 10000),

		// Rate limit
		SearchBurst:        getenvInt("MOTEUR_SEARCH_BURST", 5),
		SearchRefillPerMin: getenvInt("MOTEUR_SEARCH_REFILL_PER_MIN", 10),

		// Redis settings
		RedisUser:           getenv("MOTEUR_REDIS_USERNAME", ""),
		RedisPassword:       getenv("MOTEUR_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("MOTEUR_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("MOTEUR_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("MOTEUR_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("MOTEUR_TRUST_PROXY", false),
	}

	switch cfg.CredentialBackend {
	case BackendFile:
	case BackendRedis:
		cfg.RedisAddr = requireEnv("MOTEUR_REDIS_ADDR")
	default:
		panic(fmt.Sprintf("❌ FATAL: MOTEUR_CREDENTIAL_BACKEND must be %q or %q, got %q",
			BackendFile, BackendRedis, cfg.CredentialBackend))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		if cfg.DefaultAPIKey != "" {
			cfgCopy.DefaultAPIKey = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
