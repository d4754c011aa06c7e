package engine

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plainMinimax is an unpruned reference walk used to validate pruning.
func plainMinimax(qb *QuantumBoard, depth int, maximizing bool, color Color) float64 {
	if depth == 0 {
		return evaluateRaw(qb.board, qb.SuperpositionSquares(), qb.pairs, color)
	}
	current := color
	if !maximizing {
		current = color.Opposite()
	}
	moves := qb.AllLegalMoves(current)
	if len(moves) == 0 {
		if qb.IsInCheck(current) {
			if maximizing {
				return math.Inf(-1)
			}
			return math.Inf(1)
		}
		return 0
	}

	best := math.Inf(-1)
	if !maximizing {
		best = math.Inf(1)
	}
	for _, move := range moves {
		snap := qb.snapshot()
		qb.ApplyMove(move.From, move.To)
		score := plainMinimax(qb, depth-1, !maximizing, color)
		qb.restore(snap)
		if maximizing {
			best = math.Max(best, score)
		} else {
			best = math.Min(best, score)
		}
	}
	return best
}

func TestAlphaBetaMatchesPlainMinimax(t *testing.T) {
	qb := newTestBoard(t)
	// Asymmetric middlegame-ish position so scores are nonzero.
	qb.ApplyMove(mustSq(t, "e2"), mustSq(t, "e4"))
	qb.ApplyMove(mustSq(t, "d7"), mustSq(t, "d5"))
	qb.ApplyMove(mustSq(t, "g1"), mustSq(t, "f3"))

	for depth := 1; depth <= 2; depth++ {
		for _, color := range []Color{White, Black} {
			want := plainMinimax(qb, depth, true, color)
			s := NewSearchEngine(qb, depth, nil, zerolog.Nop())
			got := s.FindBestMove(color)
			assert.Equal(t, want, got.Score, "depth %d color %s", depth, color)
		}
	}
}

func TestSearchPrefersWinningCapture(t *testing.T) {
	qb := newTestBoard(t)
	qb.board = Board{
		mustSq(t, "a1"): {Type: Rook, Color: White, Probability: 1},
		mustSq(t, "h1"): {Type: King, Color: White, Probability: 1},
		mustSq(t, "a7"): {Type: Queen, Color: Black, Probability: 1},
		mustSq(t, "h8"): {Type: King, Color: Black, Probability: 1},
	}

	s := NewSearchEngine(qb, 1, NewEvalCache(1024), zerolog.Nop())
	best := s.FindBestMove(White)

	require.NotNil(t, best.Move)
	assert.Equal(t, mustSq(t, "a1"), best.Move.From)
	assert.Equal(t, mustSq(t, "a7"), best.Move.To)
	assert.Equal(t, 1, best.Depth)
}

func TestSearchRestoresPosition(t *testing.T) {
	qb := newTestBoard(t)
	require.NoError(t, qb.CreateEntanglement(mustSq(t, "d2"), mustSq(t, "e2")))

	before := qb.Board().Clone()
	super := qb.SuperpositionSquares()
	pairs := len(qb.EntanglementPairs())

	s := NewSearchEngine(qb, 2, NewEvalCache(DefaultCacheSize), zerolog.Nop())
	s.FindBestMove(White)

	assert.Equal(t, before, qb.Board())
	assert.Equal(t, super, qb.SuperpositionSquares())
	assert.Len(t, qb.EntanglementPairs(), pairs)
}

func TestSearchNoLegalMoves(t *testing.T) {
	qb := newTestBoard(t)
	qb.board = Board{
		mustSq(t, "h1"): {Type: King, Color: Black, Probability: 1},
		mustSq(t, "g1"): {Type: Pawn, Color: Black, Probability: 1},
		mustSq(t, "g2"): {Type: Pawn, Color: Black, Probability: 1},
		mustSq(t, "h2"): {Type: Pawn, Color: Black, Probability: 1},
		mustSq(t, "f2"): {Type: Knight, Color: White, Probability: 1},
		mustSq(t, "a8"): {Type: King, Color: White, Probability: 1},
	}

	s := NewSearchEngine(qb, 2, nil, zerolog.Nop())
	best := s.FindBestMove(Black)

	assert.Nil(t, best.Move)
	assert.True(t, math.IsInf(best.Score, -1))
}

func TestSearchDeterministicWithSeed(t *testing.T) {
	run := func() (Move, float64) {
		qb := NewQuantumBoard(BoardConfig{Source: rand.NewPCG(42, 99)})
		s := NewSearchEngine(qb, 2, NewEvalCache(DefaultCacheSize), zerolog.Nop())
		best := s.FindBestMove(White)
		return *best.Move, best.Score
	}
	m1, s1 := run()
	m2, s2 := run()
	assert.Equal(t, m1, m2)
	assert.Equal(t, s1, s2)
}

func TestEvalCacheRoundTrip(t *testing.T) {
	c := NewEvalCache(128)

	_, ok := c.Lookup(0xdeadbeef, 1)
	assert.False(t, ok)

	c.Add(0xdeadbeef, 1, 4.25)
	got, ok := c.Lookup(0xdeadbeef, 1)
	require.True(t, ok)
	assert.Equal(t, 4.25, got)

	// Same key under a different context is a distinct entry.
	_, ok = c.Lookup(0xdeadbeef, 2)
	assert.False(t, ok)

	c.Flush()
	_, ok = c.Lookup(0xdeadbeef, 1)
	assert.False(t, ok)
}

func TestPositionKeyDistinguishesStates(t *testing.T) {
	a := newTestBoard(t)
	b := newTestBoard(t)
	assert.Equal(t, a.positionKey(), b.positionKey())

	b.ApplyMove(mustSq(t, "e2"), mustSq(t, "e4"))
	assert.NotEqual(t, a.positionKey(), b.positionKey())

	c := newTestBoard(t)
	require.NoError(t, c.CreateSuperpositionProb(mustSq(t, "e2"), 0.5))
	assert.NotEqual(t, a.positionKey(), c.positionKey())
}
