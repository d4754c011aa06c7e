package engine

import (
	"math/rand/v2"
	"sort"

	"github.com/rs/zerolog"

	"github.com/yourusername/qchess/internal/qsim"
)

// DefaultSuperpositionProb is used when CreateSuperposition is called
// without an explicit probability.
const DefaultSuperpositionProb = 0.5

// QuantumBoard owns the authoritative square-to-piece mapping, the
// per-square registers of squares currently in superposition, and the
// entanglement relation. All mutation goes through its apply/measure
// operations; callers serialize access per game.
type QuantumBoard struct {
	board       Board
	registers   map[Square]*qsim.Simulator
	pairs       []EntanglementPair
	defaultProb float64
	rng         *rand.Rand
	log         zerolog.Logger
}

// BoardConfig configures a QuantumBoard.
type BoardConfig struct {
	// DefaultProb is the presence probability used when none is given.
	// Zero means DefaultSuperpositionProb.
	DefaultProb float64
	// Source drives all measurement sampling. Nil falls back to an
	// unseeded PCG; tests inject a seeded source for reproducibility.
	Source rand.Source
	Log    zerolog.Logger
}

// NewQuantumBoard creates a board with the standard start position.
func NewQuantumBoard(cfg BoardConfig) *QuantumBoard {
	if cfg.DefaultProb <= 0 || cfg.DefaultProb > 1 {
		cfg.DefaultProb = DefaultSuperpositionProb
	}
	if cfg.Source == nil {
		cfg.Source = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	qb := &QuantumBoard{
		defaultProb: cfg.DefaultProb,
		rng:         rand.New(cfg.Source),
		log:         cfg.Log.With().Str("component", "board").Logger(),
	}
	qb.InitializeBoard()
	return qb
}

// InitializeBoard populates the standard 32-piece start position and
// clears all quantum state.
func (qb *QuantumBoard) InitializeBoard() {
	qb.board = make(Board, 32)
	qb.registers = make(map[Square]*qsim.Simulator)
	qb.pairs = nil

	backRank := [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for file := 0; file < 8; file++ {
		qb.board[NewSquare(file, 0)] = Piece{Type: backRank[file], Color: White, Probability: 1}
		qb.board[NewSquare(file, 1)] = Piece{Type: Pawn, Color: White, Probability: 1}
		qb.board[NewSquare(file, 6)] = Piece{Type: Pawn, Color: Black, Probability: 1}
		qb.board[NewSquare(file, 7)] = Piece{Type: backRank[file], Color: Black, Probability: 1}
	}
}

// PieceAt returns the piece at sq, if any.
func (qb *QuantumBoard) PieceAt(sq Square) (Piece, bool) {
	p, ok := qb.board[sq]
	return p, ok
}

// Board returns the authoritative board mapping. Callers must not mutate
// it; evaluation and serialization read it in place.
func (qb *QuantumBoard) Board() Board {
	return qb.board
}

// InSuperposition reports whether sq currently has an active register.
func (qb *QuantumBoard) InSuperposition(sq Square) bool {
	_, ok := qb.registers[sq]
	return ok
}

// SuperpositionSquares returns the squares currently in superposition in
// board order.
func (qb *QuantumBoard) SuperpositionSquares() []Square {
	squares := make([]Square, 0, len(qb.registers))
	for sq := range qb.registers {
		squares = append(squares, sq)
	}
	sort.Slice(squares, func(i, j int) bool { return squares[i] < squares[j] })
	return squares
}

// SuperpositionCount returns the number of superposed squares.
func (qb *QuantumBoard) SuperpositionCount() int {
	return len(qb.registers)
}

// EntanglementPairs returns the recorded pairs in creation order. The
// returned slice is shared; callers must not mutate it.
func (qb *QuantumBoard) EntanglementPairs() []EntanglementPair {
	return qb.pairs
}

// ApplyMove relocates the piece at from to to, unconditionally. The moved
// piece becomes classical regardless of prior state, and any quantum state
// at either square is discarded, not merged. Capture and promotion
// bookkeeping belong to the caller.
func (qb *QuantumBoard) ApplyMove(from, to Square) {
	piece, ok := qb.board[from]
	if !ok {
		return
	}
	delete(qb.board, from)
	piece.InSuperposition = false
	piece.Probability = 1
	qb.board[to] = piece
	delete(qb.registers, from)
	delete(qb.registers, to)
}

// boardSnapshot is the atomic unit saved and restored around search moves:
// board, superposition registers, and entanglement pairs together. Partial
// restore would break the invariant that InSuperposition flags match
// register existence.
type boardSnapshot struct {
	board     Board
	registers map[Square]*qsim.Simulator
	pairs     []EntanglementPair
}

// snapshot captures the current state. Register pointers are shared: the
// search never applies gates or measurements, only ApplyMove, so register
// contents are stable across a snapshot/restore cycle.
func (qb *QuantumBoard) snapshot() boardSnapshot {
	regs := make(map[Square]*qsim.Simulator, len(qb.registers))
	for sq, sim := range qb.registers {
		regs[sq] = sim
	}
	pairs := make([]EntanglementPair, len(qb.pairs))
	copy(pairs, qb.pairs)
	return boardSnapshot{
		board:     qb.board.Clone(),
		registers: regs,
		pairs:     pairs,
	}
}

// restore replaces the current state with a snapshot.
func (qb *QuantumBoard) restore(snap boardSnapshot) {
	qb.board = snap.board
	qb.registers = snap.registers
	qb.pairs = snap.pairs
}
