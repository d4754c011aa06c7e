// Package engine implements the quantum chess core: the authoritative
// board, pseudo-legal move generation, superposition and entanglement
// bookkeeping, position evaluation, alpha-beta search, and the per-game
// turn state machine.
package engine

import (
	"fmt"
)

// Color identifies a side.
type Color uint8

const (
	White Color = iota
	Black
)

// Opposite returns the other side.
func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// ParseColor parses "white" or "black".
func ParseColor(s string) (Color, error) {
	switch s {
	case "white":
		return White, nil
	case "black":
		return Black, nil
	}
	return White, fmt.Errorf("invalid color %q", s)
}

// PieceType identifies a chess piece kind.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
)

var pieceNames = [...]string{"pawn", "knight", "bishop", "rook", "queen", "king"}

func (p PieceType) String() string {
	if int(p) < len(pieceNames) {
		return pieceNames[p]
	}
	return fmt.Sprintf("piece(%d)", uint8(p))
}

// ParsePieceType parses a lowercase piece name.
func ParsePieceType(s string) (PieceType, error) {
	for i, name := range pieceNames {
		if s == name {
			return PieceType(i), nil
		}
	}
	return Pawn, fmt.Errorf("invalid piece type %q", s)
}

// Piece type encoding used by the per-square registers: 3 bits for the
// type (000 reserved for empty), 1 bit for color, 1 bit for the
// presence/superposition flag.
const (
	typeQubits = 3
	colorQubit = 3
	flagQubit  = 4

	// QubitsPerSquare is the register width used for one board square.
	QubitsPerSquare = 5
)

// Code returns the 3-bit register encoding of the piece type (001..110).
func (p PieceType) Code() int {
	return int(p) + 1
}

// pieceTypeFromCode is the inverse of Code; ok is false for 000 and 111.
func pieceTypeFromCode(code int) (PieceType, bool) {
	if code < 1 || code > 6 {
		return Pawn, false
	}
	return PieceType(code - 1), true
}

// Piece is the classical view of a board occupant. Probability is 1 for
// classical pieces and the configured presence probability while the piece
// is in superposition.
type Piece struct {
	Type            PieceType
	Color           Color
	InSuperposition bool
	Probability     float64
}

// Square addresses a board cell as 0..63, rank-major from a1.
type Square uint8

// NewSquare builds a square from zero-based file and rank.
func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

// File returns the zero-based file (a=0).
func (s Square) File() int {
	return int(s) % 8
}

// Rank returns the zero-based rank (1st rank = 0).
func (s Square) Rank() int {
	return int(s) / 8
}

// String returns the algebraic notation, e.g. "e2".
func (s Square) String() string {
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

// ParseSquare parses two-character algebraic notation (files a-h,
// ranks 1-8).
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	return NewSquare(int(s[0]-'a'), int(s[1]-'1')), nil
}

// Board maps occupied squares to pieces. One piece per square; absence
// means empty.
type Board map[Square]Piece

// Clone returns an independent copy of the board.
func (b Board) Clone() Board {
	c := make(Board, len(b))
	for sq, p := range b {
		c[sq] = p
	}
	return c
}

// EntanglementPair records a cascade relation between two superposed
// squares. The pair is unordered; A/B is just storage order.
type EntanglementPair struct {
	A Square
	B Square
}

// Contains reports whether sq is a member of the pair.
func (p EntanglementPair) Contains(sq Square) bool {
	return p.A == sq || p.B == sq
}

// Partner returns the other member of the pair.
func (p EntanglementPair) Partner(sq Square) Square {
	if p.A == sq {
		return p.B
	}
	return p.A
}

// GameStatus is the lifecycle state of a game.
type GameStatus uint8

const (
	StatusActive GameStatus = iota
	StatusCheck
	StatusCheckmate
	StatusStalemate
	StatusDraw
	StatusResigned
)

var statusNames = [...]string{"active", "check", "checkmate", "stalemate", "draw", "resigned"}

func (s GameStatus) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Terminal reports whether the game cannot continue.
func (s GameStatus) Terminal() bool {
	return s == StatusCheckmate || s == StatusStalemate || s == StatusDraw || s == StatusResigned
}

// GameMode selects how much quantum behavior a game exhibits. Classical
// and tutorial games never measure or superpose; hybrid games measure on
// contact but never create spontaneous superpositions; quantum games do
// both.
type GameMode string

const (
	ModeClassical GameMode = "classical"
	ModeQuantum   GameMode = "quantum"
	ModeHybrid    GameMode = "hybrid"
	ModeTutorial  GameMode = "tutorial"
)

// Valid reports whether the mode is one of the defined game modes.
func (m GameMode) Valid() bool {
	switch m {
	case ModeClassical, ModeQuantum, ModeHybrid, ModeTutorial:
		return true
	}
	return false
}

// measuresOnContact reports whether moves touching superposed squares
// force a measurement in this mode.
func (m GameMode) measuresOnContact() bool {
	return m == ModeQuantum || m == ModeHybrid
}

// spontaneousSuperposition reports whether completed moves may randomly
// create a superposition at the destination.
func (m GameMode) spontaneousSuperposition() bool {
	return m == ModeQuantum
}

// MoveRecord is an immutable move log entry. Appended only; never
// mutated or removed.
type MoveRecord struct {
	Number       int
	From         Square
	To           Square
	Piece        PieceType
	Color        Color
	Captured     *PieceType
	QuantumEvent string
}
