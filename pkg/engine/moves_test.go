package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSq(t *testing.T, s string) Square {
	t.Helper()
	sq, err := ParseSquare(s)
	require.NoError(t, err)
	return sq
}

func squares(t *testing.T, names ...string) []Square {
	t.Helper()
	out := make([]Square, 0, len(names))
	for _, n := range names {
		out = append(out, mustSq(t, n))
	}
	return out
}

func newTestBoard(t *testing.T) *QuantumBoard {
	t.Helper()
	return NewQuantumBoard(BoardConfig{Source: rand.NewPCG(7, 13)})
}

func TestPawnOpeningMoves(t *testing.T) {
	qb := newTestBoard(t)
	got := qb.LegalMovesFor(mustSq(t, "e2"))
	assert.ElementsMatch(t, squares(t, "e3", "e4"), got)
}

func TestPawnSingleStepAfterLeavingStartRank(t *testing.T) {
	qb := newTestBoard(t)
	qb.ApplyMove(mustSq(t, "e2"), mustSq(t, "e3"))
	got := qb.LegalMovesFor(mustSq(t, "e3"))
	assert.ElementsMatch(t, squares(t, "e4"), got)
}

func TestPawnCaptures(t *testing.T) {
	qb := newTestBoard(t)
	qb.board = Board{
		mustSq(t, "e4"): {Type: Pawn, Color: White, Probability: 1},
		mustSq(t, "d5"): {Type: Pawn, Color: Black, Probability: 1},
		mustSq(t, "f5"): {Type: Knight, Color: Black, Probability: 1},
		mustSq(t, "e5"): {Type: Rook, Color: Black, Probability: 1},
	}
	got := qb.LegalMovesFor(mustSq(t, "e4"))
	// Forward blocked, both diagonals capture.
	assert.ElementsMatch(t, squares(t, "d5", "f5"), got)
}

func TestBlackPawnMovesDownBoard(t *testing.T) {
	qb := newTestBoard(t)
	got := qb.LegalMovesFor(mustSq(t, "e7"))
	assert.ElementsMatch(t, squares(t, "e6", "e5"), got)
}

func TestKnightOpeningMoves(t *testing.T) {
	qb := newTestBoard(t)
	got := qb.LegalMovesFor(mustSq(t, "b1"))
	assert.ElementsMatch(t, squares(t, "a3", "c3"), got)
}

func TestSlidingPieceBlockedAtStart(t *testing.T) {
	qb := newTestBoard(t)
	for _, s := range []string{"a1", "c1", "d1", "f1", "h1"} {
		assert.Empty(t, qb.LegalMovesFor(mustSq(t, s)), "piece at %s", s)
	}
}

func TestRookRayStopsAtCapture(t *testing.T) {
	qb := newTestBoard(t)
	delete(qb.board, mustSq(t, "a2"))
	got := qb.LegalMovesFor(mustSq(t, "a1"))
	// Up the a-file to the black pawn on a7, inclusive, never beyond.
	assert.ElementsMatch(t, squares(t, "a2", "a3", "a4", "a5", "a6", "a7"), got)
}

func TestKingStepMoves(t *testing.T) {
	qb := newTestBoard(t)
	qb.board = Board{
		mustSq(t, "e4"): {Type: King, Color: White, Probability: 1},
		mustSq(t, "e5"): {Type: Pawn, Color: White, Probability: 1},
		mustSq(t, "d3"): {Type: Pawn, Color: Black, Probability: 1},
	}
	got := qb.LegalMovesFor(mustSq(t, "e4"))
	assert.ElementsMatch(t, squares(t, "d3", "d4", "d5", "e3", "f3", "f4", "f5"), got)
}

func TestAllLegalMovesOpeningCount(t *testing.T) {
	qb := newTestBoard(t)
	moves := qb.AllLegalMoves(White)
	// 16 pawn moves plus 4 knight moves.
	assert.Len(t, moves, 20)
}

func TestEmptySquareHasNoMoves(t *testing.T) {
	qb := newTestBoard(t)
	assert.Empty(t, qb.LegalMovesFor(mustSq(t, "e4")))
}

func TestIsInCheck(t *testing.T) {
	qb := newTestBoard(t)
	qb.board = Board{
		mustSq(t, "e1"): {Type: King, Color: White, Probability: 1},
		mustSq(t, "e8"): {Type: Rook, Color: Black, Probability: 1},
	}
	assert.True(t, qb.IsInCheck(White))
	assert.False(t, qb.IsInCheck(Black))

	// A blocker on the file breaks the attack.
	qb.board[mustSq(t, "e4")] = Piece{Type: Pawn, Color: White, Probability: 1}
	assert.False(t, qb.IsInCheck(White))
}

func TestIsInCheckKnightAttack(t *testing.T) {
	qb := newTestBoard(t)
	qb.board = Board{
		mustSq(t, "h1"): {Type: King, Color: Black, Probability: 1},
		mustSq(t, "f2"): {Type: Knight, Color: White, Probability: 1},
	}
	assert.True(t, qb.IsInCheck(Black))
}

func TestIsInCheckMissingKing(t *testing.T) {
	qb := newTestBoard(t)
	qb.board = Board{
		mustSq(t, "a1"): {Type: Rook, Color: Black, Probability: 1},
	}
	assert.False(t, qb.IsInCheck(White))
}

func TestMoveString(t *testing.T) {
	m := Move{From: mustSq(t, "e2"), To: mustSq(t, "e4")}
	assert.Equal(t, "e2-e4", m.String())
}
