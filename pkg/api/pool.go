package api

import (
	"context"
	"sync/atomic"
	"time"
)

// WorkerPool bounds concurrent request processing. Game operations
// (moves, measurements, state reads) are cheap and share a wide
// semaphore; minimax searches are CPU-bound and share a narrow one.
type WorkerPool struct {
	gameSem   chan struct{}
	searchSem chan struct{}

	queuedSearch  int64
	activeSearch  int64
	totalSearches int64
}

// PoolConfig sets the pool limits.
type PoolConfig struct {
	MaxGameWorkers   int // concurrent game operations (default 100)
	MaxSearchWorkers int // concurrent searches (default 4)
}

// NewWorkerPool creates a pool, applying defaults for non-positive
// limits.
func NewWorkerPool(cfg PoolConfig) *WorkerPool {
	if cfg.MaxGameWorkers <= 0 {
		cfg.MaxGameWorkers = 100
	}
	if cfg.MaxSearchWorkers <= 0 {
		cfg.MaxSearchWorkers = 4
	}
	return &WorkerPool{
		gameSem:   make(chan struct{}, cfg.MaxGameWorkers),
		searchSem: make(chan struct{}, cfg.MaxSearchWorkers),
	}
}

// AcquireGame takes a game-operation slot, waiting until one frees or
// ctx is done.
func (p *WorkerPool) AcquireGame(ctx context.Context) error {
	select {
	case p.gameSem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReleaseGame frees a game-operation slot.
func (p *WorkerPool) ReleaseGame() {
	<-p.gameSem
}

// AcquireSearch takes a search slot, waiting until one frees or ctx is
// done.
func (p *WorkerPool) AcquireSearch(ctx context.Context) error {
	atomic.AddInt64(&p.queuedSearch, 1)
	defer atomic.AddInt64(&p.queuedSearch, -1)

	select {
	case p.searchSem <- struct{}{}:
		atomic.AddInt64(&p.activeSearch, 1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AcquireSearchWithTimeout bounds the wait for a search slot.
func (p *WorkerPool) AcquireSearchWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return p.AcquireSearch(ctx)
}

// ReleaseSearch frees a search slot.
func (p *WorkerPool) ReleaseSearch() {
	atomic.AddInt64(&p.activeSearch, -1)
	atomic.AddInt64(&p.totalSearches, 1)
	<-p.searchSem
}

// PoolStats reports search pool load.
type PoolStats struct {
	ActiveSearches int64 `json:"active_searches"`
	QueuedSearches int64 `json:"queued_searches"`
	TotalSearches  int64 `json:"total_searches"`
	MaxSearches    int   `json:"max_searches"`
	MaxGameOps     int   `json:"max_game_ops"`
}

// Stats returns current counters.
func (p *WorkerPool) Stats() PoolStats {
	return PoolStats{
		ActiveSearches: atomic.LoadInt64(&p.activeSearch),
		QueuedSearches: atomic.LoadInt64(&p.queuedSearch),
		TotalSearches:  atomic.LoadInt64(&p.totalSearches),
		MaxSearches:    cap(p.searchSem),
		MaxGameOps:     cap(p.gameSem),
	}
}
