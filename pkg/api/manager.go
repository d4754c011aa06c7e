package api

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yourusername/qchess/internal/cache"
	"github.com/yourusername/qchess/internal/config"
	"github.com/yourusername/qchess/internal/store"
	"github.com/yourusername/qchess/pkg/engine"
)

// ErrGameNotFound is returned for unknown game ids.
var ErrGameNotFound = errors.New("game not found")

// Manager owns all active games. Each game carries its own mutex: the
// engine is single-threaded per game, so every operation on a game runs
// under that game's lock while distinct games proceed in parallel.
type Manager struct {
	mu    sync.RWMutex
	games map[string]*gameSlot

	cfg     *config.Config
	archive *store.Store // nil disables archiving
	cache   *cache.Cache
	log     zerolog.Logger
}

type gameSlot struct {
	mu   sync.Mutex
	game *engine.Game
}

// NewManager creates an empty game registry. archive may be nil.
func NewManager(cfg *config.Config, archive *store.Store, c *cache.Cache, log zerolog.Logger) *Manager {
	if c == nil {
		c = cache.New(time.Duration(cfg.CacheTTLSeconds) * time.Second)
	}
	return &Manager{
		games:   make(map[string]*gameSlot),
		cfg:     cfg,
		archive: archive,
		cache:   c,
		log:     log.With().Str("component", "manager").Logger(),
	}
}

// Cache exposes the analysis cache for stats and sweeping.
func (m *Manager) Cache() *cache.Cache {
	return m.cache
}

// CreateGame starts a new game and returns its initial state.
func (m *Manager) CreateGame(req CreateGameRequest) (engine.GameSnapshot, error) {
	id := uuid.NewString()[:8]

	game, err := engine.NewGame(id, engine.GameConfig{
		Mode:               engine.GameMode(req.Mode),
		QuantumProbability: req.QuantumProbability,
		SearchDepth:        m.cfg.ClampDepth(req.SearchDepth),
		Shots:              m.cfg.QuantumShots,
		PlayerWhite:        req.PlayerWhite,
		PlayerBlack:        req.PlayerBlack,
		Log:                m.log,
	})
	if err != nil {
		return engine.GameSnapshot{}, err
	}

	m.mu.Lock()
	m.games[id] = &gameSlot{game: game}
	m.mu.Unlock()

	m.log.Info().Str("game_id", id).Str("mode", string(game.Mode())).Msg("game created")
	return game.Snapshot(), nil
}

// With runs fn holding the game's lock.
func (m *Manager) With(gameID string, fn func(*engine.Game) error) error {
	m.mu.RLock()
	slot, ok := m.games[gameID]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()
	return fn(slot.game)
}

// Snapshot returns the serialized state of a game.
func (m *Manager) Snapshot(gameID string) (engine.GameSnapshot, error) {
	var snap engine.GameSnapshot
	err := m.With(gameID, func(g *engine.Game) error {
		snap = g.Snapshot()
		return nil
	})
	return snap, err
}

// MakeMove executes a move. Validation failures surface through the
// MoveResult, not the error.
func (m *Manager) MakeMove(gameID string, req MoveRequest) (engine.MoveResult, error) {
	var result engine.MoveResult
	err := m.With(gameID, func(g *engine.Game) error {
		from, err := engine.ParseSquare(req.From)
		if err != nil {
			result = engine.MoveResult{From: req.From, To: req.To, Message: err.Error()}
			return nil
		}
		to, err := engine.ParseSquare(req.To)
		if err != nil {
			result = engine.MoveResult{From: req.From, To: req.To, Message: err.Error()}
			return nil
		}
		result, _ = g.MakeMove(from, to, req.Promotion)
		if result.Success {
			// Any successful move invalidates this game's cached analysis.
			m.invalidateAnalysis(gameID)
		}
		return nil
	})
	return result, err
}

// Resign ends a game in the opponent's favor.
func (m *Manager) Resign(gameID, color string) error {
	return m.With(gameID, func(g *engine.Game) error {
		c, err := engine.ParseColor(color)
		if err != nil {
			return err
		}
		return g.Resign(c)
	})
}

// LegalMoves returns targets for the piece at square.
func (m *Manager) LegalMoves(gameID, square string) ([]string, error) {
	var moves []string
	err := m.With(gameID, func(g *engine.Game) error {
		sq, err := engine.ParseSquare(square)
		if err != nil {
			return err
		}
		for _, t := range g.LegalMoves(sq) {
			moves = append(moves, t.String())
		}
		return nil
	})
	return moves, err
}

// AllLegalMoves maps the current player's movable squares to targets.
func (m *Manager) AllLegalMoves(gameID string) (map[string][]string, error) {
	out := make(map[string][]string)
	err := m.With(gameID, func(g *engine.Game) error {
		for sq, targets := range g.AllLegalMoves() {
			names := make([]string, 0, len(targets))
			for _, t := range targets {
				names = append(names, t.String())
			}
			out[sq.String()] = names
		}
		return nil
	})
	return out, err
}

// MeasureSquare collapses one square (or reports its classical state).
func (m *Manager) MeasureSquare(gameID, square string) (MeasuredSquare, error) {
	var out MeasuredSquare
	err := m.With(gameID, func(g *engine.Game) error {
		sq, err := engine.ParseSquare(square)
		if err != nil {
			return err
		}
		out = toMeasuredSquare(g.MeasureSquare(sq))
		m.invalidateAnalysis(gameID)
		return nil
	})
	return out, err
}

// MeasureAll collapses every superposed square.
func (m *Manager) MeasureAll(gameID string) (map[string]MeasuredSquare, error) {
	out := make(map[string]MeasuredSquare)
	err := m.With(gameID, func(g *engine.Game) error {
		for sq, outcome := range g.MeasureAll() {
			out[sq.String()] = toMeasuredSquare(outcome)
		}
		m.invalidateAnalysis(gameID)
		return nil
	})
	return out, err
}

// CreateSuperposition puts the piece at square into superposition.
func (m *Manager) CreateSuperposition(gameID, square string) error {
	return m.With(gameID, func(g *engine.Game) error {
		sq, err := engine.ParseSquare(square)
		if err != nil {
			return err
		}
		if err := g.CreateSuperposition(sq); err != nil {
			return err
		}
		m.invalidateAnalysis(gameID)
		return nil
	})
}

// CreateEntanglement entangles the pieces at the two squares.
func (m *Manager) CreateEntanglement(gameID, square1, square2 string) error {
	return m.With(gameID, func(g *engine.Game) error {
		a, err := engine.ParseSquare(square1)
		if err != nil {
			return err
		}
		b, err := engine.ParseSquare(square2)
		if err != nil {
			return err
		}
		if err := g.CreateEntanglement(a, b); err != nil {
			return err
		}
		m.invalidateAnalysis(gameID)
		return nil
	})
}

// FindBestMove searches for the side to move, caching the result until
// the position changes.
func (m *Manager) FindBestMove(gameID string) (BestMoveResponse, error) {
	var resp BestMoveResponse
	err := m.With(gameID, func(g *engine.Game) error {
		key := bestMoveKey(gameID, g)
		if hit, err := m.cache.Get(key, &resp); err == nil && hit {
			return nil
		}

		best := g.FindBestMove()
		resp = BestMoveResponse{
			GameID: gameID,
			Score:  best.Score,
			Depth:  best.Depth,
		}
		if best.Move != nil {
			resp.Move = best.Move.String()
			resp.From = best.Move.From.String()
			resp.To = best.Move.To.String()
		}
		if err := m.cache.Set(key, resp, 0); err != nil {
			m.log.Warn().Err(err).Str("game_id", gameID).Msg("best-move cache store failed")
		}
		return nil
	})
	return resp, err
}

// Delete archives a game (when a store is configured) and removes it.
func (m *Manager) Delete(gameID string) error {
	m.mu.Lock()
	slot, ok := m.games[gameID]
	if ok {
		delete(m.games, gameID)
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	m.invalidateAnalysis(gameID)

	if m.archive != nil {
		slot.mu.Lock()
		snap := slot.game.Snapshot()
		slot.mu.Unlock()
		if err := m.archive.ArchiveGame(snap); err != nil {
			m.log.Error().Err(err).Str("game_id", gameID).Msg("archive on delete failed")
		}
	}

	m.log.Info().Str("game_id", gameID).Msg("game deleted")
	return nil
}

// List summarizes every active game.
func (m *Manager) List() []GameSummary {
	m.mu.RLock()
	slots := make(map[string]*gameSlot, len(m.games))
	for id, slot := range m.games {
		slots[id] = slot
	}
	m.mu.RUnlock()

	summaries := make([]GameSummary, 0, len(slots))
	for id, slot := range slots {
		slot.mu.Lock()
		snap := slot.game.Snapshot()
		white, black := slot.game.Players()
		slot.mu.Unlock()
		summaries = append(summaries, GameSummary{
			GameID:      id,
			Mode:        string(snap.Mode),
			Status:      snap.Status,
			Turn:        snap.Turn,
			MoveCount:   snap.MoveCount,
			PlayerWhite: white,
			PlayerBlack: black,
			CreatedAt:   snap.CreatedAt.Format(time.RFC3339),
		})
	}
	return summaries
}

// Count returns the number of active games.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

func (m *Manager) invalidateAnalysis(gameID string) {
	m.cache.Delete(analysisKey(gameID))
}

// bestMoveKey folds in every counter a mutation can change, so moves,
// measurements, and superposition or entanglement creation all shift the
// key and stale search results are never served.
func bestMoveKey(gameID string, g *engine.Game) string {
	return fmt.Sprintf("bestmove:%s:%d:%d:%d:%d",
		gameID, g.MoveCount(), g.MeasurementCount(),
		g.Board().SuperpositionCount(), len(g.Board().EntanglementPairs()))
}

func analysisKey(gameID string) string {
	return "analysis:" + gameID
}

func toMeasuredSquare(out engine.MeasureOutcome) MeasuredSquare {
	ms := MeasuredSquare{Present: out.Present}
	if out.Present {
		ms.Piece = out.Piece.Type.String()
		ms.Color = out.Piece.Color.String()
	}
	return ms
}
