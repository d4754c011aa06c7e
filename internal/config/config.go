// Package config loads server settings from the environment, with an
// optional .env file for development.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the full server configuration.
type Config struct {
	AppName     string
	Environment string

	Host string
	Port int

	CORSOrigins []string

	// DatabasePath is the SQLite file used for archiving finished games.
	DatabasePath string

	// Engine defaults applied when a game request omits them.
	QuantumShots       int
	SearchDepth        int
	MaxSearchDepth     int
	SuperpositionProb  float64

	// CacheTTLSeconds bounds analysis cache entries; CacheSweepSpec is
	// the cron expression for the expiry sweeper.
	CacheTTLSeconds int
	CacheSweepSpec  string

	LogLevel  string
	LogPretty bool
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in when present; real environment
// variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppName:     getEnv("APP_NAME", "quantum-chess"),
		Environment: getEnv("ENVIRONMENT", "development"),

		Host: getEnv("HOST", "0.0.0.0"),
		Port: getEnvAsInt("PORT", 8000),

		CORSOrigins: splitAndTrim(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),

		DatabasePath: getEnv("DATABASE_PATH", "qchess.db"),

		QuantumShots:      getEnvAsInt("QUANTUM_SHOTS", 100),
		SearchDepth:       getEnvAsInt("SEARCH_DEPTH", 3),
		MaxSearchDepth:    getEnvAsInt("MAX_SEARCH_DEPTH", 6),
		SuperpositionProb: getEnvAsFloat("DEFAULT_SUPERPOSITION_PROB", 0.5),

		CacheTTLSeconds: getEnvAsInt("CACHE_TTL_SECONDS", 300),
		CacheSweepSpec:  getEnv("CACHE_SWEEP_SPEC", "*/5 * * * *"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", false),
	}
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// ClampDepth bounds a requested search depth to [1, MaxSearchDepth],
// falling back to the configured default for non-positive values.
func (c *Config) ClampDepth(depth int) int {
	if depth <= 0 {
		depth = c.SearchDepth
	}
	if depth > c.MaxSearchDepth {
		depth = c.MaxSearchDepth
	}
	return depth
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
