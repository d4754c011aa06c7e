package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/yourusername/qchess/internal/qsim"
)

// MeasureOutcome is the classical result of measuring one square.
type MeasureOutcome struct {
	Square  Square
	Present bool
	Piece   Piece // valid only when Present
}

// CreateSuperposition puts the piece at sq into superposition with the
// board's default presence probability.
func (qb *QuantumBoard) CreateSuperposition(sq Square) error {
	return qb.CreateSuperpositionProb(sq, qb.defaultProb)
}

// CreateSuperpositionProb puts the piece at sq into superposition: the
// piece remains on the board with probability prob and collapses away with
// probability 1-prob when measured. A fresh register is built encoding the
// piece's type and color, with the presence flag rotated by
// RY(2*acos(sqrt(prob))).
func (qb *QuantumBoard) CreateSuperpositionProb(sq Square, prob float64) error {
	piece, ok := qb.board[sq]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoPieceAtSource, sq)
	}
	if prob < 0 || prob > 1 {
		return fmt.Errorf("superposition probability %v out of range", prob)
	}

	sim := qsim.New(QubitsPerSquare, qb.rng)

	code := piece.Type.Code()
	for bit := 0; bit < typeQubits; bit++ {
		if code>>bit&1 == 1 {
			sim.X(bit)
		}
	}
	if piece.Color == Black {
		sim.X(colorQubit)
	}
	sim.RY(flagQubit, 2*math.Acos(math.Sqrt(prob)))

	qb.registers[sq] = sim
	piece.InSuperposition = true
	piece.Probability = prob
	qb.board[sq] = piece

	qb.log.Debug().Stringer("square", sq).Float64("prob", prob).Msg("superposition created")
	return nil
}

// CreateEntanglement records a cascade relation between two squares,
// auto-promoting either to superposition (at the default probability)
// first. The registers stay independent; entanglement here is the
// classical collapse-cascade rule, not a joint amplitude.
func (qb *QuantumBoard) CreateEntanglement(a, b Square) error {
	if _, ok := qb.board[a]; !ok {
		return fmt.Errorf("%w: %s", ErrNoPieceAtSource, a)
	}
	if _, ok := qb.board[b]; !ok {
		return fmt.Errorf("%w: %s", ErrNoPieceAtSource, b)
	}

	if !qb.InSuperposition(a) {
		if err := qb.CreateSuperposition(a); err != nil {
			return err
		}
	}
	if !qb.InSuperposition(b) {
		if err := qb.CreateSuperposition(b); err != nil {
			return err
		}
	}

	qb.pairs = append(qb.pairs, EntanglementPair{A: a, B: b})
	qb.log.Debug().Stringer("a", a).Stringer("b", b).Msg("entanglement created")
	return nil
}

// MeasureSquare collapses the register at sq to a classical outcome. If sq
// is not in superposition this is a no-op returning the current classical
// state. Entangled partners still in superposition are measured in
// cascade; each pair is removed before recursing so malformed or
// self-referential pairs cannot loop.
func (qb *QuantumBoard) MeasureSquare(sq Square) MeasureOutcome {
	sim, ok := qb.registers[sq]
	if !ok {
		piece, occupied := qb.board[sq]
		return MeasureOutcome{Square: sq, Present: occupied, Piece: piece}
	}

	bits, err := sim.Collapse()
	if err != nil && errors.Is(err, qsim.ErrDegenerateState) {
		qb.log.Warn().Stringer("square", sq).Err(ErrNumericDegeneracy).Msg("degenerate collapse branch")
	}

	code := bits[0] | bits[1]<<1 | bits[2]<<2
	color := White
	if bits[colorQubit] == 1 {
		color = Black
	}
	present := bits[flagQubit] == 0

	pieceType, validType := pieceTypeFromCode(code)
	if present && validType {
		qb.board[sq] = Piece{Type: pieceType, Color: color, Probability: 1}
	} else {
		// Collapsed away (or decoded an unoccupied pattern).
		delete(qb.board, sq)
		present = false
	}

	delete(qb.registers, sq)
	qb.cascadeEntangled(sq)

	qb.log.Debug().Stringer("square", sq).Bool("present", present).Msg("square measured")

	piece, occupied := qb.board[sq]
	return MeasureOutcome{Square: sq, Present: occupied, Piece: piece}
}

// cascadeEntangled measures every superposed partner of sq and deletes the
// pairs that referenced it.
func (qb *QuantumBoard) cascadeEntangled(sq Square) {
	for i := 0; i < len(qb.pairs); {
		pair := qb.pairs[i]
		if !pair.Contains(sq) {
			i++
			continue
		}
		partner := pair.Partner(sq)
		// Drop the pair first so the recursive measurement cannot
		// reprocess it.
		qb.pairs = append(qb.pairs[:i], qb.pairs[i+1:]...)
		if qb.InSuperposition(partner) {
			qb.MeasureSquare(partner)
		}
	}
}

// MeasureAll measures every superposed square and returns the outcomes.
// Membership is snapshotted up front: cascades triggered mid-iteration
// must not skip or duplicate squares.
func (qb *QuantumBoard) MeasureAll() map[Square]MeasureOutcome {
	squares := qb.SuperpositionSquares()
	results := make(map[Square]MeasureOutcome, len(squares))
	for _, sq := range squares {
		results[sq] = qb.MeasureSquare(sq)
	}
	return results
}

// SuperpositionStates returns the classical view of every superposed
// square.
func (qb *QuantumBoard) SuperpositionStates() map[Square]Piece {
	states := make(map[Square]Piece, len(qb.registers))
	for sq := range qb.registers {
		if piece, ok := qb.board[sq]; ok {
			states[sq] = piece
		}
	}
	return states
}

// RegisterProbabilities returns the basis-state probability distribution
// of the register at sq, or nil if sq is not in superposition.
func (qb *QuantumBoard) RegisterProbabilities(sq Square) []float64 {
	sim, ok := qb.registers[sq]
	if !ok {
		return nil
	}
	return sim.Probabilities()
}

// SampleRegister draws shots non-destructive samples from the register at
// sq, or nil if sq is not in superposition.
func (qb *QuantumBoard) SampleRegister(sq Square, shots int) [][]int {
	sim, ok := qb.registers[sq]
	if !ok || shots <= 0 {
		return nil
	}
	return sim.Measure(shots)
}
