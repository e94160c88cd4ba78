package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode       Mode
	APIBaseURL string

	// Client state persistence.
	StateDriver string // cookie|sqlite|postgres|redis|memory
	StateDir    string
	StateDSN    string
	RedisAddr   string
	RedisPrefix string

	HTTPTimeout time.Duration
	CacheTTL    time.Duration
	MetricsAddr string // empty disables the metrics listener

	// Stub API server (cmd/devapi).
	HTTPAddr    string
	HMACSecret  string
	CORSOrigins []string
	DevSeed     bool
}

// FromEnv reads the process environment. A .env file in the working directory,
// when present, is loaded first and never overrides variables already set.
func FromEnv() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env ignored: %v", err)
	}
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	return Config{
		Mode:        mode,
		APIBaseURL:  strings.TrimSuffix(envOr("API_BASE_URL", "http://localhost:8080"), "/"),
		StateDriver: envOr("STATE_DRIVER", "cookie"),
		StateDir:    envOr("STATE_DIR", defaultStateDir()),
		StateDSN:    os.Getenv("STATE_DSN"),
		RedisAddr:   envOr("REDIS_ADDR", "localhost:6379"),
		RedisPrefix: envOr("REDIS_PREFIX", "assessctl:"),
		HTTPTimeout: envDuration("HTTP_TIMEOUT", 30*time.Second),
		CacheTTL:    envDuration("CACHE_TTL", 60*time.Second),
		MetricsAddr: os.Getenv("METRICS_ADDR"),
		HTTPAddr:    envOr("HTTP_ADDR", ":8080"),
		HMACSecret:  envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		DevSeed:     envBool("DEV_SEED", true),
	}
}

func defaultStateDir() string {
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "assessctl")
	}
	return "./.assessctl"
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: bad %s=%q, using %s", k, v, def)
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
