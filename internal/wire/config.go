package wire

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is read from the environment once, in Build.
type Config struct {
	DatabaseURL    string
	Port           string
	StaleTime      time.Duration
	GCTime         time.Duration
	Coalesce       time.Duration
	ContactTimeout time.Duration
	DBMaxConns     int32
}

// LoadConfig loads an optional .env file, then reads the environment.
// Variables already set in the environment win over the file.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg := Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Port:           os.Getenv("PORT"),
		StaleTime:      envDuration("QUERY_STALE_SECONDS", time.Minute),
		GCTime:         envDuration("QUERY_GC_SECONDS", 5*time.Minute),
		Coalesce:       envMillis("REALTIME_COALESCE_MS", 250*time.Millisecond),
		ContactTimeout: envDuration("AGENT_CONTACT_TIMEOUT_SECONDS", 30*time.Second),
		DBMaxConns:     envInt32("DATABASE_MAX_CONNS"),
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL not set")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	return cfg, nil
}

// envDuration reads an integer-seconds env var and returns a Duration.
// Falls back to defaultVal if the var is unset or invalid.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultVal
}

// envMillis is envDuration for integer milliseconds. Zero is allowed and
// disables coalescing.
func envMillis(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultVal
}

// envInt32 reads a positive integer env var; unset or invalid yields 0.
func envInt32(key string) int32 {
	n, err := strconv.ParseInt(os.Getenv(key), 10, 32)
	if err != nil || n < 0 {
		return 0
	}
	return int32(n)
}
