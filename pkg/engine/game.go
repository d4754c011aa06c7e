package engine

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// DefaultQuantumProbability is the presence probability used for new
	// superpositions when a game does not configure one.
	DefaultQuantumProbability = 0.5

	// DefaultShots is the sample count for non-destructive register reads.
	DefaultShots = 100

	// spontaneousEventFactor scales the configured quantum probability
	// into the per-move chance of a spontaneous superposition.
	spontaneousEventFactor = 0.3
)

// GameConfig configures a new game.
type GameConfig struct {
	Mode               GameMode
	QuantumProbability float64
	SearchDepth        int
	Shots              int
	PlayerWhite        string
	PlayerBlack        string

	// Source seeds all randomness for the game. When nil a
	// time-seeded source is used.
	Source rand.Source
	Log    zerolog.Logger
}

// Game is the turn state machine for a single match. It owns the board,
// the search engine, the move log, and all per-game counters. Game is
// not safe for concurrent use; callers serialize access externally.
type Game struct {
	id     string
	config GameConfig
	board  *QuantumBoard
	search *SearchEngine
	rng    *rand.Rand
	log    zerolog.Logger

	status           GameStatus
	turn             Color
	winner           *Color
	moveCount        int
	measurementCount int
	history          []MoveRecord
	captured         map[Color][]PieceType

	createdAt time.Time
	updatedAt time.Time
}

// MoveResult reports the outcome of a move attempt.
type MoveResult struct {
	Success              bool   `json:"success"`
	From                 string `json:"from_square"`
	To                   string `json:"to_square"`
	PieceMoved           string `json:"piece_moved"`
	PieceCaptured        string `json:"piece_captured,omitempty"`
	IsCheck              bool   `json:"is_check"`
	IsCheckmate          bool   `json:"is_checkmate"`
	IsStalemate          bool   `json:"is_stalemate"`
	QuantumEvent         string `json:"quantum_event,omitempty"`
	SuperpositionCreated bool   `json:"superposition_created"`
	MeasurementTriggered bool   `json:"measurement_triggered"`
	Message              string `json:"message"`
}

// NewGame creates a game in the standard starting position.
func NewGame(id string, cfg GameConfig) (*Game, error) {
	if cfg.Mode == "" {
		cfg.Mode = ModeQuantum
	}
	if !cfg.Mode.Valid() {
		return nil, fmt.Errorf("invalid game mode %q", cfg.Mode)
	}
	if cfg.QuantumProbability <= 0 || cfg.QuantumProbability > 1 {
		cfg.QuantumProbability = DefaultQuantumProbability
	}
	if cfg.SearchDepth <= 0 {
		cfg.SearchDepth = DefaultSearchDepth
	}
	if cfg.Shots <= 0 {
		cfg.Shots = DefaultShots
	}
	src := cfg.Source
	if src == nil {
		now := time.Now()
		src = rand.NewPCG(uint64(now.UnixNano()), uint64(now.Unix()))
	}

	log := cfg.Log.With().Str("component", "game").Str("game_id", id).Logger()
	board := NewQuantumBoard(BoardConfig{
		DefaultProb: cfg.QuantumProbability,
		Source:      src,
		Log:         cfg.Log,
	})

	g := &Game{
		id:        id,
		config:    cfg,
		board:     board,
		search:    NewSearchEngine(board, cfg.SearchDepth, NewEvalCache(DefaultCacheSize), cfg.Log),
		rng:       rand.New(src),
		log:       log,
		status:    StatusActive,
		turn:      White,
		captured:  map[Color][]PieceType{White: {}, Black: {}},
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	log.Info().Str("mode", string(cfg.Mode)).Int("depth", cfg.SearchDepth).Msg("game created")
	return g, nil
}

// MakeMove attempts a move for the side to move. Validation failures
// return a failed MoveResult alongside a sentinel error. A move whose
// source piece dissolves under a forced measurement returns success with
// no board relocation and no turn change.
func (g *Game) MakeMove(from, to Square, promotion string) (MoveResult, error) {
	res := MoveResult{From: from.String(), To: to.String()}

	if g.status.Terminal() {
		res.Message = "game is over"
		return res, ErrGameOver
	}

	piece, ok := g.board.PieceAt(from)
	if !ok {
		res.Message = "no piece at source square"
		return res, ErrNoPieceAtSource
	}
	res.PieceMoved = piece.Type.String()

	if piece.Color != g.turn {
		res.Message = fmt.Sprintf("it is %s's turn", g.turn)
		return res, ErrWrongTurn
	}

	if !g.isLegalTarget(from, to) {
		res.Message = "illegal move"
		return res, ErrIllegalTarget
	}

	promo, err := parsePromotion(promotion)
	if err != nil {
		res.Message = err.Error()
		return res, err
	}

	if g.config.Mode.measuresOnContact() {
		if g.board.InSuperposition(to) {
			g.board.MeasureSquare(to)
			g.measurementCount++
			res.MeasurementTriggered = true
			res.QuantumEvent = fmt.Sprintf("Measurement triggered at %s", to)
		}
		if g.board.InSuperposition(from) {
			g.board.MeasureSquare(from)
			g.measurementCount++
			res.MeasurementTriggered = true
			survivor, alive := g.board.PieceAt(from)
			if !alive {
				g.updatedAt = time.Now()
				g.log.Info().Stringer("square", from).Msg("piece dissolved under measurement")
				res.Success = true
				res.QuantumEvent = "Piece collapsed away during measurement!"
				res.Message = "piece dissolved during quantum measurement"
				return res, nil
			}
			piece = survivor
			res.PieceMoved = piece.Type.String()
		}
	}

	spontaneous := false
	if g.config.Mode.spontaneousSuperposition() {
		b := distuv.Bernoulli{P: g.config.QuantumProbability * spontaneousEventFactor, Src: g.rng}
		if b.Rand() == 1 {
			spontaneous = true
			res.SuperpositionCreated = true
			res.QuantumEvent = fmt.Sprintf("Quantum superposition created at %s", to)
		}
	}

	// Capture is read after the forced measurements above so that a
	// target that collapsed away is not counted.
	var capturedType *PieceType
	if target, occupied := g.board.PieceAt(to); occupied {
		t := target.Type
		capturedType = &t
		res.PieceCaptured = t.String()
		g.captured[piece.Color] = append(g.captured[piece.Color], t)
	}

	g.board.ApplyMove(from, to)

	if piece.Type == Pawn && promotionRank(piece.Color) == to.Rank() {
		moved := g.board.board[to]
		moved.Type = promo
		g.board.board[to] = moved
		res.PieceMoved = promo.String()
	}

	if spontaneous {
		if err := g.board.CreateSuperposition(to); err != nil {
			g.log.Warn().Err(err).Stringer("square", to).Msg("spontaneous superposition failed")
		}
	}

	g.moveCount++
	g.history = append(g.history, MoveRecord{
		Number:       g.moveCount,
		From:         from,
		To:           to,
		Piece:        piece.Type,
		Color:        piece.Color,
		Captured:     capturedType,
		QuantumEvent: res.QuantumEvent,
	})
	g.turn = g.turn.Opposite()
	g.updatedAt = time.Now()

	res.IsCheck = g.board.IsInCheck(g.turn)
	if len(g.board.AllLegalMoves(g.turn)) == 0 {
		if res.IsCheck {
			res.IsCheckmate = true
			g.status = StatusCheckmate
			w := g.turn.Opposite()
			g.winner = &w
		} else {
			res.IsStalemate = true
			g.status = StatusStalemate
		}
	} else if res.IsCheck {
		g.status = StatusCheck
	} else {
		g.status = StatusActive
	}

	res.Success = true
	res.Message = "move executed successfully"
	return res, nil
}

// isLegalTarget reports whether to is among the pseudo-legal targets
// generated for from.
func (g *Game) isLegalTarget(from, to Square) bool {
	for _, sq := range g.board.LegalMovesFor(from) {
		if sq == to {
			return true
		}
	}
	return false
}

// parsePromotion validates the requested promotion piece. Empty means
// the default queen.
func parsePromotion(s string) (PieceType, error) {
	if s == "" {
		return Queen, nil
	}
	pt, err := ParsePieceType(s)
	if err != nil || pt == Pawn || pt == King {
		return Queen, fmt.Errorf("%w: %q", ErrInvalidPromotionPiece, s)
	}
	return pt, nil
}

func promotionRank(c Color) int {
	if c == White {
		return 7
	}
	return 0
}

// Resign ends the game in favor of the opponent.
func (g *Game) Resign(color Color) error {
	if g.status.Terminal() {
		return ErrGameOver
	}
	g.status = StatusResigned
	w := color.Opposite()
	g.winner = &w
	g.updatedAt = time.Now()
	g.log.Info().Stringer("color", color).Msg("resignation")
	return nil
}

// MeasureSquare collapses the register at sq, cascading through
// entangled partners.
func (g *Game) MeasureSquare(sq Square) MeasureOutcome {
	superposed := g.board.InSuperposition(sq)
	out := g.board.MeasureSquare(sq)
	if superposed {
		g.measurementCount++
		g.updatedAt = time.Now()
	}
	return out
}

// MeasureAll collapses every superposed square.
func (g *Game) MeasureAll() map[Square]MeasureOutcome {
	out := g.board.MeasureAll()
	g.measurementCount += len(out)
	g.updatedAt = time.Now()
	return out
}

// CreateSuperposition puts the piece at sq into superposition at the
// game's configured probability.
func (g *Game) CreateSuperposition(sq Square) error {
	if err := g.board.CreateSuperpositionProb(sq, g.config.QuantumProbability); err != nil {
		return err
	}
	g.updatedAt = time.Now()
	return nil
}

// CreateEntanglement entangles the pieces at a and b.
func (g *Game) CreateEntanglement(a, b Square) error {
	if err := g.board.CreateEntanglement(a, b); err != nil {
		return err
	}
	g.updatedAt = time.Now()
	return nil
}

// LegalMoves returns the pseudo-legal targets for the piece at sq.
func (g *Game) LegalMoves(sq Square) []Square {
	return g.board.LegalMovesFor(sq)
}

// AllLegalMoves maps each of the current player's occupied squares to
// its pseudo-legal targets. Squares with no moves are omitted.
func (g *Game) AllLegalMoves() map[Square][]Square {
	out := make(map[Square][]Square)
	for sq, p := range g.board.board {
		if p.Color != g.turn {
			continue
		}
		if targets := g.board.LegalMovesFor(sq); len(targets) > 0 {
			out[sq] = targets
		}
	}
	return out
}

// FindBestMove searches for the side to move.
func (g *Game) FindBestMove() BestMove {
	return g.search.FindBestMove(g.turn)
}

// Evaluate scores the current position from the side to move's
// perspective.
func (g *Game) Evaluate() Evaluation {
	return Evaluate(g.board.board, g.board.SuperpositionSquares(), g.board.pairs, g.turn)
}

// CircuitInfo reports the circuit metrics of the current quantum state.
func (g *Game) CircuitInfo() CircuitInfo {
	return g.board.CircuitInfo()
}

// SampleRegister draws the configured number of shots from the register
// at sq without disturbing it.
func (g *Game) SampleRegister(sq Square) [][]int {
	return g.board.SampleRegister(sq, g.config.Shots)
}

// ID returns the game identifier.
func (g *Game) ID() string { return g.id }

// Mode returns the configured game mode.
func (g *Game) Mode() GameMode { return g.config.Mode }

// Status returns the current lifecycle state.
func (g *Game) Status() GameStatus { return g.status }

// Turn returns the side to move.
func (g *Game) Turn() Color { return g.turn }

// Winner returns the winning side for decided games, nil otherwise.
func (g *Game) Winner() *Color { return g.winner }

// Players returns the configured white and black player names.
func (g *Game) Players() (white, black string) {
	return g.config.PlayerWhite, g.config.PlayerBlack
}

// MoveCount returns the number of completed moves.
func (g *Game) MoveCount() int { return g.moveCount }

// MeasurementCount returns the number of measurements performed.
func (g *Game) MeasurementCount() int { return g.measurementCount }

// History returns the move log. The returned slice is shared; callers
// must not mutate it.
func (g *Game) History() []MoveRecord { return g.history }

// Board exposes the underlying quantum board.
func (g *Game) Board() *QuantumBoard { return g.board }

// SearchDepth returns the configured search depth.
func (g *Game) SearchDepth() int { return g.config.SearchDepth }

// Shots returns the configured register sample count.
func (g *Game) Shots() int { return g.config.Shots }

// PieceInfo is the serialized view of one occupied square.
type PieceInfo struct {
	Type                     string  `json:"type"`
	Color                    string  `json:"color"`
	InSuperposition          bool    `json:"in_superposition"`
	SuperpositionProbability float64 `json:"superposition_probability"`
}

// HistoryEntry is the serialized form of a MoveRecord.
type HistoryEntry struct {
	MoveNumber   int     `json:"move_number"`
	From         string  `json:"from"`
	To           string  `json:"to"`
	Piece        string  `json:"piece"`
	Color        string  `json:"color"`
	Captured     *string `json:"captured"`
	QuantumEvent string  `json:"quantum_event,omitempty"`
}

// GameSnapshot is the full serialized game state.
type GameSnapshot struct {
	GameID              string               `json:"game_id"`
	Mode                GameMode             `json:"mode"`
	Status              string               `json:"status"`
	Turn                string               `json:"turn"`
	Winner              string               `json:"winner,omitempty"`
	Position            map[string]PieceInfo `json:"position"`
	MoveCount           int                  `json:"move_count"`
	MeasurementCount    int                  `json:"measurement_count"`
	QuantumProbability  float64              `json:"quantum_probability"`
	SuperpositionCells  []string             `json:"superposition_squares"`
	EntanglementPairs   [][2]string          `json:"entanglement_pairs"`
	MoveHistory         []HistoryEntry       `json:"move_history"`
	CapturedPieces      map[string][]string  `json:"captured_pieces"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// Snapshot serializes the complete game state.
func (g *Game) Snapshot() GameSnapshot {
	position := make(map[string]PieceInfo, len(g.board.board))
	for sq, p := range g.board.board {
		position[sq.String()] = PieceInfo{
			Type:                     p.Type.String(),
			Color:                    p.Color.String(),
			InSuperposition:          p.InSuperposition,
			SuperpositionProbability: p.Probability,
		}
	}

	super := make([]string, 0, g.board.SuperpositionCount())
	for _, sq := range g.board.SuperpositionSquares() {
		super = append(super, sq.String())
	}

	pairs := make([][2]string, 0, len(g.board.pairs))
	for _, p := range g.board.pairs {
		pairs = append(pairs, [2]string{p.A.String(), p.B.String()})
	}

	history := make([]HistoryEntry, 0, len(g.history))
	for _, rec := range g.history {
		entry := HistoryEntry{
			MoveNumber:   rec.Number,
			From:         rec.From.String(),
			To:           rec.To.String(),
			Piece:        rec.Piece.String(),
			Color:        rec.Color.String(),
			QuantumEvent: rec.QuantumEvent,
		}
		if rec.Captured != nil {
			name := rec.Captured.String()
			entry.Captured = &name
		}
		history = append(history, entry)
	}

	capturedOut := make(map[string][]string, len(g.captured))
	for color, pieces := range g.captured {
		names := make([]string, 0, len(pieces))
		for _, pt := range pieces {
			names = append(names, pt.String())
		}
		capturedOut[color.String()] = names
	}

	snap := GameSnapshot{
		GameID:             g.id,
		Mode:               g.config.Mode,
		Status:             g.status.String(),
		Turn:               g.turn.String(),
		Position:           position,
		MoveCount:          g.moveCount,
		MeasurementCount:   g.measurementCount,
		QuantumProbability: g.config.QuantumProbability,
		SuperpositionCells: super,
		EntanglementPairs:  pairs,
		MoveHistory:        history,
		CapturedPieces:     capturedOut,
		CreatedAt:          g.createdAt,
		UpdatedAt:          g.updatedAt,
	}
	if g.winner != nil {
		snap.Winner = g.winner.String()
	}
	return snap
}
