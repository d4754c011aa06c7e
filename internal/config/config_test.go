package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "quantum-chess", cfg.AppName)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, 3, cfg.SearchDepth)
	assert.Equal(t, 6, cfg.MaxSearchDepth)
	assert.Equal(t, 0.5, cfg.SuperpositionProb)
	assert.Equal(t, 100, cfg.QuantumShots)
	assert.Len(t, cfg.CORSOrigins, 2)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("SEARCH_DEPTH", "4")
	t.Setenv("DEFAULT_SUPERPOSITION_PROB", "0.25")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("CORS_ORIGINS", "https://example.com, https://other.example.com")

	cfg := Load()

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, 4, cfg.SearchDepth)
	assert.Equal(t, 0.25, cfg.SuperpositionProb)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, []string{"https://example.com", "https://other.example.com"}, cfg.CORSOrigins)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("LOG_PRETTY", "maybe")

	cfg := Load()

	assert.Equal(t, 8000, cfg.Port)
	assert.False(t, cfg.LogPretty)
}

func TestClampDepth(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 3, cfg.ClampDepth(0))
	assert.Equal(t, 3, cfg.ClampDepth(-1))
	assert.Equal(t, 2, cfg.ClampDepth(2))
	assert.Equal(t, 6, cfg.ClampDepth(10))
}
