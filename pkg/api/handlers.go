package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/yourusername/qchess/internal/config"
	"github.com/yourusername/qchess/internal/store"
	"github.com/yourusername/qchess/pkg/engine"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Handlers implements the REST endpoints.
type Handlers struct {
	manager *Manager
	hub     *Hub
	pool    *WorkerPool
	archive *store.Store // nil disables archive endpoints
	cfg     *config.Config
	log     zerolog.Logger
}

// NewHandlers wires the endpoint implementations.
func NewHandlers(m *Manager, hub *Hub, pool *WorkerPool, archive *store.Store, cfg *config.Config, log zerolog.Logger) *Handlers {
	return &Handlers{
		manager: m,
		hub:     hub,
		pool:    pool,
		archive: archive,
		cfg:     cfg,
		log:     log.With().Str("component", "api").Logger(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeLookupError maps manager errors onto HTTP statuses.
func (h *Handlers) writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrGameNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrInvalidSquare):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// Root describes the API surface.
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    h.cfg.AppName,
		"version": Version,
		"status":  "running",
		"endpoints": map[string]string{
			"health":    "/health",
			"stats":     "/stats",
			"game":      "/api/game",
			"quantum":   "/api/quantum",
			"analysis":  "/api/analysis",
			"websocket": "/ws/{game_id}",
		},
	})
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "healthy",
		Version:     Version,
		Environment: h.cfg.Environment,
	})
}

// Stats aggregates server, cache, pool and host statistics.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		ActiveGames:          h.manager.Count(),
		CacheStats:           h.manager.Cache().Stats(),
		WebsocketConnections: h.hub.TotalConnections(),
		SearchPool:           h.pool.Stats(),
		System:               collectSystemStats(),
	}
	if h.archive != nil {
		if n, err := h.archive.Count(); err == nil {
			resp.ArchivedGames = n
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func collectSystemStats() SystemStats {
	s := SystemStats{Goroutines: runtime.NumGoroutine()}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.MemoryUsedMB = float64(vm.Used) / (1 << 20)
		s.MemoryPercent = vm.UsedPercent
	}
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		s.CPUPercent = pct[0]
	}
	return s
}

// CreateGame starts a new game.
func (h *Handlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	snap, err := h.manager.CreateGame(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, CreateGameResponse{GameID: snap.GameID, State: snap})
}

// GetGame returns current game state.
func (h *Handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	snap, err := h.manager.Snapshot(chi.URLParam(r, "gameID"))
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// ListGames summarizes active games.
func (h *Handlers) ListGames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.List())
}

// MakeMove executes a move. Rejected moves come back with success=false
// rather than an error status, matching the frontend contract.
func (h *Handlers) MakeMove(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.manager.MakeMove(gameID, req)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}

	if result.Success {
		h.broadcastState(gameID)
	}
	writeJSON(w, http.StatusOK, result)
}

// Resign ends a game for the given color.
func (h *Handlers) Resign(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	var req ResignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.manager.Resign(gameID, req.Color); err != nil {
		switch {
		case errors.Is(err, ErrGameNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, engine.ErrGameOver):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	h.broadcastState(gameID)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "game resigned"})
}

// LegalMoves lists targets for one square.
func (h *Handlers) LegalMoves(w http.ResponseWriter, r *http.Request) {
	square := chi.URLParam(r, "square")
	moves, err := h.manager.LegalMoves(chi.URLParam(r, "gameID"), square)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	if moves == nil {
		moves = []string{}
	}
	writeJSON(w, http.StatusOK, LegalMovesResponse{Square: square, LegalMoves: moves})
}

// AllLegalMoves lists every move of the side to move.
func (h *Handlers) AllLegalMoves(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	moves, err := h.manager.AllLegalMoves(gameID)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AllLegalMovesResponse{GameID: gameID, Moves: moves})
}

// DeleteGame archives and removes a game.
func (h *Handlers) DeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if err := h.manager.Delete(gameID); err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "game " + gameID + " deleted"})
}

// Evaluate scores the position for the side to move.
func (h *Handlers) Evaluate(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	var resp EvaluationResponse
	err := h.manager.With(gameID, func(g *engine.Game) error {
		ev := g.Evaluate()
		resp = EvaluationResponse{
			GameID:          gameID,
			ClassicalScore:  ev.ClassicalScore,
			QuantumScore:    ev.QuantumScore,
			CombinedScore:   ev.CombinedScore,
			Components:      ev.Components,
			Uncertainty:     math.Abs(ev.QuantumScore) * 0.1,
			EvaluationDepth: g.SearchDepth(),
			SamplesTaken:    g.Shots(),
		}
		return nil
	})
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// BestMove runs a bounded-concurrency search for the side to move.
func (h *Handlers) BestMove(w http.ResponseWriter, r *http.Request) {
	if err := h.pool.AcquireSearch(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "search capacity exhausted")
		return
	}
	defer h.pool.ReleaseSearch()

	resp, err := h.manager.FindBestMove(chi.URLParam(r, "gameID"))
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Measure collapses one square or, with an empty body/square, all of
// them.
func (h *Handlers) Measure(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	var req MeasureRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	var (
		measured map[string]MeasuredSquare
		err      error
	)
	if req.Square != "" {
		var one MeasuredSquare
		one, err = h.manager.MeasureSquare(gameID, req.Square)
		measured = map[string]MeasuredSquare{req.Square: one}
	} else {
		measured, err = h.manager.MeasureAll(gameID)
	}
	if err != nil {
		h.writeLookupError(w, err)
		return
	}

	h.broadcastState(gameID)
	writeJSON(w, http.StatusOK, MeasureResponse{GameID: gameID, Measured: measured})
}

// CreateSuperposition puts a piece into superposition.
func (h *Handlers) CreateSuperposition(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	var req SuperpositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.manager.CreateSuperposition(gameID, req.Square); err != nil {
		if errors.Is(err, engine.ErrNoPieceAtSource) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.writeLookupError(w, err)
		return
	}

	h.broadcastState(gameID)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "superposition created at " + req.Square})
}

// CreateEntanglement entangles two pieces.
func (h *Handlers) CreateEntanglement(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	var req EntangleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.manager.CreateEntanglement(gameID, req.Square1, req.Square2); err != nil {
		if errors.Is(err, engine.ErrNoPieceAtSource) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.writeLookupError(w, err)
		return
	}

	h.broadcastState(gameID)
	writeJSON(w, http.StatusOK, MessageResponse{
		Message: "entanglement created between " + req.Square1 + " and " + req.Square2,
	})
}

// Circuit reports quantum circuit metrics.
func (h *Handlers) Circuit(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	var info engine.CircuitInfo
	err := h.manager.With(gameID, func(g *engine.Game) error {
		info = g.CircuitInfo()
		return nil
	})
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CircuitResponse{GameID: gameID, CircuitInfo: info})
}

// SuperpositionStates lists the classical view of superposed squares.
func (h *Handlers) SuperpositionStates(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	states := make(map[string]engine.PieceInfo)
	err := h.manager.With(gameID, func(g *engine.Game) error {
		for sq, piece := range g.Board().SuperpositionStates() {
			states[sq.String()] = engine.PieceInfo{
				Type:                     piece.Type.String(),
				Color:                    piece.Color.String(),
				InSuperposition:          true,
				SuperpositionProbability: piece.Probability,
			}
		}
		return nil
	})
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SuperpositionStatesResponse{GameID: gameID, States: states})
}

// AnalyzePosition returns the two-sided evaluation breakdown, cached
// until the position changes.
func (h *Handlers) AnalyzePosition(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	var resp PositionAnalysisResponse
	if hit, err := h.manager.Cache().Get(analysisKey(gameID), &resp); err == nil && hit {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	err := h.manager.With(gameID, func(g *engine.Game) error {
		board := g.Board()
		super := board.SuperpositionSquares()
		pairs := board.EntanglementPairs()

		resp = PositionAnalysisResponse{
			GameID:             gameID,
			White:              engine.Evaluate(board.Board(), super, pairs, engine.White),
			Black:              engine.Evaluate(board.Board(), super, pairs, engine.Black),
			MoveCount:          g.MoveCount(),
			SuperpositionCount: len(super),
			EntanglementCount:  len(pairs),
			ProbabilitySpread:  probabilitySpread(board, super),
		}
		return nil
	})
	if err != nil {
		h.writeLookupError(w, err)
		return
	}

	if err := h.manager.Cache().Set(analysisKey(gameID), resp, 0); err != nil {
		h.log.Warn().Err(err).Str("game_id", gameID).Msg("analysis cache store failed")
	}
	writeJSON(w, http.StatusOK, resp)
}

// probabilitySpread summarizes presence probabilities across all
// superposed squares. Nil when nothing is superposed.
func probabilitySpread(board *engine.QuantumBoard, super []engine.Square) *ProbabilitySpread {
	if len(super) == 0 {
		return nil
	}
	probs := make([]float64, 0, len(super))
	for _, sq := range super {
		if piece, ok := board.PieceAt(sq); ok {
			probs = append(probs, piece.Probability)
		}
	}
	if len(probs) == 0 {
		return nil
	}

	data := stats.LoadRawData(probs)
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	stdDev, _ := stats.StandardDeviation(data)
	return &ProbabilitySpread{Mean: mean, Median: median, StdDev: stdDev}
}

// History returns the move log and captured pieces.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	snap, err := h.manager.Snapshot(gameID)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{
		GameID:         gameID,
		MoveCount:      snap.MoveCount,
		Moves:          snap.MoveHistory,
		CapturedPieces: snap.CapturedPieces,
	})
}

// SquareProbability reports the occupancy of one square, sampling the
// register for superposed pieces.
func (h *Handlers) SquareProbability(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	square := chi.URLParam(r, "square")

	resp := SquareProbabilityResponse{GameID: gameID, Square: square}
	err := h.manager.With(gameID, func(g *engine.Game) error {
		sq, err := engine.ParseSquare(square)
		if err != nil {
			return err
		}

		piece, ok := g.Board().PieceAt(sq)
		if !ok {
			return nil
		}
		resp.Occupied = true
		resp.PieceType = piece.Type.String()
		resp.Color = piece.Color.String()
		resp.InSuperposition = piece.InSuperposition
		resp.Probability = piece.Probability
		if !piece.InSuperposition {
			resp.Probability = 1.0
			return nil
		}

		// Observed presence frequency over the configured shot count.
		samples := g.SampleRegister(sq)
		if len(samples) == 0 {
			return nil
		}
		present := make([]float64, 0, len(samples))
		for _, bits := range samples {
			if bits[engine.QubitsPerSquare-1] == 0 {
				present = append(present, 1)
			} else {
				present = append(present, 0)
			}
		}
		freq, _ := stats.Mean(stats.LoadRawData(present))
		resp.SampledPresence = freq
		resp.SamplesTaken = len(samples)
		return nil
	})
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ArchivedGames lists games stored in the archive database.
func (h *Handlers) ArchivedGames(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeError(w, http.StatusNotFound, "archive not configured")
		return
	}
	games, err := h.archive.ListGames(50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if games == nil {
		games = []store.ArchivedGame{}
	}
	writeJSON(w, http.StatusOK, games)
}

// ArchivedGameMoves returns the stored move log for an archived game.
func (h *Handlers) ArchivedGameMoves(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeError(w, http.StatusNotFound, "archive not configured")
		return
	}
	gameID := chi.URLParam(r, "gameID")

	game, err := h.archive.GetGame(gameID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	moves, err := h.archive.GetMoves(gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"game":  game,
		"moves": moves,
	})
}

// broadcastState pushes the latest snapshot to this game's WebSocket
// subscribers.
func (h *Handlers) broadcastState(gameID string) {
	if h.hub == nil {
		return
	}
	snap, err := h.manager.Snapshot(gameID)
	if err != nil {
		return
	}
	h.hub.Broadcast(gameID, WSMessage{Type: "state_update", Data: snap})
}
