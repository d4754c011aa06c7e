package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/yourusername/qchess/internal/cache"
)

// CacheSweep evicts expired analysis cache entries.
type CacheSweep struct {
	cache *cache.Cache
	log   zerolog.Logger
}

// NewCacheSweep creates the sweep job for c.
func NewCacheSweep(c *cache.Cache, log zerolog.Logger) *CacheSweep {
	return &CacheSweep{cache: c, log: log.With().Str("job", "cache-sweep").Logger()}
}

func (j *CacheSweep) Name() string { return "cache-sweep" }

func (j *CacheSweep) Run() error {
	if removed := j.cache.Cleanup(); removed > 0 {
		j.log.Debug().Int("removed", removed).Msg("expired cache entries swept")
	}
	return nil
}
