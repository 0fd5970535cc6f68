package docserver

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds the server configuration, loaded from environment variables.
type Config struct {
	ListenAddr      string
	Backend         string // "sqlite" (default) or "postgres"
	DBPath          string
	SQLiteDriver    string // "sqlite" (modernc, default) or "sqlite3" (mattn, cgo builds)
	PostgresURL     string
	APIKeys         []string // plaintext keys; empty = no auth
	RateLimit       int      // requests per API key (or IP) per minute
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
	LogFormat       string // "json" (default) or "text"
	LogLevel        string // "debug", "info" (default), "warn", "error"
}

// LoadConfig reads .env (if present) and then environment variables, with
// defaults for anything unset.
func LoadConfig() Config {
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:      getEnv("DOCSTORE_LISTEN_ADDR", ":8080"),
		Backend:         strings.ToLower(getEnv("DOCSTORE_BACKEND", BackendSQLite)),
		DBPath:          getEnv("DOCSTORE_DB_PATH", "./data/docstore.db"),
		SQLiteDriver:    getEnv("DOCSTORE_SQLITE_DRIVER", "sqlite"),
		PostgresURL:     getEnv("DOCSTORE_PG_URL", ""),
		RateLimit:       600,
		MaxBodyBytes:    2 << 20,
		ShutdownTimeout: 30 * time.Second,
		LogFormat:       getEnv("DOCSTORE_LOG_FORMAT", "json"),
		LogLevel:        getEnv("DOCSTORE_LOG_LEVEL", "info"),
	}

	if v := os.Getenv("DOCSTORE_API_KEYS"); v != "" {
		for _, k := range strings.Split(v, ",") {
			if k = strings.TrimSpace(k); k != "" {
				cfg.APIKeys = append(cfg.APIKeys, k)
			}
		}
	}
	if v := os.Getenv("DOCSTORE_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RateLimit = n
		}
	}
	if v := os.Getenv("DOCSTORE_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ShutdownTimeout = d
		}
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
