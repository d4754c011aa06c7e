// Package api exposes the quantum chess engine over REST and WebSocket.
package api

import (
	"github.com/yourusername/qchess/internal/cache"
	"github.com/yourusername/qchess/pkg/engine"
)

// CreateGameRequest configures a new game. All fields are optional.
type CreateGameRequest struct {
	Mode               string  `json:"mode,omitempty"`
	QuantumProbability float64 `json:"quantum_probability,omitempty"`
	SearchDepth        int     `json:"search_depth,omitempty"`
	PlayerWhite        string  `json:"player_white,omitempty"`
	PlayerBlack        string  `json:"player_black,omitempty"`
}

// CreateGameResponse returns the new game id and its initial state.
type CreateGameResponse struct {
	GameID string              `json:"game_id"`
	State  engine.GameSnapshot `json:"state"`
}

// MoveRequest asks to move a piece.
type MoveRequest struct {
	From      string `json:"from_square"`
	To        string `json:"to_square"`
	Promotion string `json:"promotion,omitempty"`
}

// ResignRequest identifies the resigning side.
type ResignRequest struct {
	Color string `json:"color"`
}

// LegalMovesResponse lists targets for one square.
type LegalMovesResponse struct {
	Square     string   `json:"square"`
	LegalMoves []string `json:"legal_moves"`
}

// AllLegalMovesResponse maps every movable square of the side to move to
// its targets.
type AllLegalMovesResponse struct {
	GameID string              `json:"game_id"`
	Moves  map[string][]string `json:"moves"`
}

// MeasureRequest selects a square to measure; empty means measure all.
type MeasureRequest struct {
	Square string `json:"square,omitempty"`
}

// MeasuredSquare is the classical outcome at one square.
type MeasuredSquare struct {
	Present bool   `json:"present"`
	Piece   string `json:"piece,omitempty"`
	Color   string `json:"color,omitempty"`
}

// MeasureResponse reports collapse outcomes keyed by square.
type MeasureResponse struct {
	GameID   string                    `json:"game_id"`
	Measured map[string]MeasuredSquare `json:"measured"`
}

// SuperpositionRequest selects the piece to superpose.
type SuperpositionRequest struct {
	Square string `json:"square"`
}

// EntangleRequest selects the two pieces to entangle.
type EntangleRequest struct {
	Square1 string `json:"square1"`
	Square2 string `json:"square2"`
}

// EvaluationResponse scores the current position for the side to move.
type EvaluationResponse struct {
	GameID          string                `json:"game_id"`
	ClassicalScore  float64               `json:"classical_score"`
	QuantumScore    float64               `json:"quantum_score"`
	CombinedScore   float64               `json:"combined_score"`
	Components      engine.EvalComponents `json:"components"`
	Uncertainty     float64               `json:"uncertainty"`
	EvaluationDepth int                   `json:"evaluation_depth"`
	SamplesTaken    int                   `json:"samples_taken"`
}

// BestMoveResponse is the search result for the side to move. Move is
// empty when no legal move exists.
type BestMoveResponse struct {
	GameID string  `json:"game_id"`
	Move   string  `json:"move,omitempty"`
	From   string  `json:"from,omitempty"`
	To     string  `json:"to,omitempty"`
	Score  float64 `json:"score"`
	Depth  int     `json:"depth"`
}

// CircuitResponse reports circuit metrics for a game.
type CircuitResponse struct {
	GameID string `json:"game_id"`
	engine.CircuitInfo
}

// SuperpositionStatesResponse lists every superposed square.
type SuperpositionStatesResponse struct {
	GameID string                      `json:"game_id"`
	States map[string]engine.PieceInfo `json:"superposition_states"`
}

// ProbabilitySpread summarizes the presence probabilities of all
// superposed squares.
type ProbabilitySpread struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// PositionAnalysisResponse is the full two-sided breakdown.
type PositionAnalysisResponse struct {
	GameID             string             `json:"game_id"`
	White              engine.Evaluation  `json:"white"`
	Black              engine.Evaluation  `json:"black"`
	MoveCount          int                `json:"move_count"`
	SuperpositionCount int                `json:"superposition_count"`
	EntanglementCount  int                `json:"entanglement_count"`
	ProbabilitySpread  *ProbabilitySpread `json:"probability_spread,omitempty"`
}

// HistoryResponse returns the move log and captures.
type HistoryResponse struct {
	GameID         string                `json:"game_id"`
	MoveCount      int                   `json:"move_count"`
	Moves          []engine.HistoryEntry `json:"moves"`
	CapturedPieces map[string][]string   `json:"captured_pieces"`
}

// SquareProbabilityResponse describes one square's occupancy, with
// sampled presence frequency for superposed squares.
type SquareProbabilityResponse struct {
	GameID            string  `json:"game_id"`
	Square            string  `json:"square"`
	Occupied          bool    `json:"occupied"`
	PieceType         string  `json:"piece_type,omitempty"`
	Color             string  `json:"color,omitempty"`
	InSuperposition   bool    `json:"in_superposition"`
	Probability       float64 `json:"probability"`
	SampledPresence   float64 `json:"sampled_presence,omitempty"`
	SamplesTaken      int     `json:"samples_taken,omitempty"`
}

// GameSummary is the list-view form of an active game.
type GameSummary struct {
	GameID      string `json:"game_id"`
	Mode        string `json:"mode"`
	Status      string `json:"status"`
	Turn        string `json:"turn"`
	MoveCount   int    `json:"move_count"`
	PlayerWhite string `json:"player_white,omitempty"`
	PlayerBlack string `json:"player_black,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a simple confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

// SystemStats is a gopsutil-backed snapshot of host resource use.
type SystemStats struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryUsedMB  float64 `json:"memory_used_mb"`
	MemoryPercent float64 `json:"memory_percent"`
	Goroutines    int     `json:"goroutines"`
}

// StatsResponse aggregates server statistics.
type StatsResponse struct {
	ActiveGames          int         `json:"active_games"`
	ArchivedGames        int         `json:"archived_games"`
	CacheStats           cache.Stats `json:"cache_stats"`
	WebsocketConnections int         `json:"websocket_connections"`
	SearchPool           PoolStats   `json:"search_pool"`
	System               SystemStats `json:"system"`
}
