package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateStartPositionBalanced(t *testing.T) {
	qb := newTestBoard(t)

	for _, color := range []Color{White, Black} {
		ev := Evaluate(qb.Board(), nil, nil, color)
		assert.Zero(t, ev.CombinedScore, color.String())
		assert.Zero(t, ev.ClassicalScore, color.String())
		assert.Zero(t, ev.QuantumScore, color.String())
	}
}

func TestEvaluateMaterialAdvantage(t *testing.T) {
	qb := newTestBoard(t)
	delete(qb.board, mustSq(t, "d8"))

	white := Evaluate(qb.Board(), nil, nil, White)
	black := Evaluate(qb.Board(), nil, nil, Black)

	assert.Greater(t, white.CombinedScore, 0.0)
	assert.Less(t, black.CombinedScore, 0.0)
	assert.Equal(t, white.CombinedScore, -black.CombinedScore)
	// Queen is 9 pawns of material before positional and mobility terms.
	assert.InDelta(t, 9.0, white.Components.Material, 0.01)
}

func TestEvaluateSuperposedMaterialScaled(t *testing.T) {
	qb := newTestBoard(t)
	require.NoError(t, qb.CreateSuperpositionProb(mustSq(t, "d8"), 0.5))

	ev := Evaluate(qb.Board(), qb.SuperpositionSquares(), nil, White)
	// Half the black queen's 900 centipawns back in white's favor.
	assert.InDelta(t, 4.5, ev.Components.Material, 0.01)
}

func TestEvaluateQuantumUncertaintyPeaksAtHalf(t *testing.T) {
	half := newTestBoard(t)
	require.NoError(t, half.CreateSuperpositionProb(mustSq(t, "e2"), 0.5))
	atHalf := Evaluate(half.Board(), half.SuperpositionSquares(), nil, White)

	certain := newTestBoard(t)
	require.NoError(t, certain.CreateSuperpositionProb(mustSq(t, "e2"), 1.0))
	atOne := Evaluate(certain.Board(), certain.SuperpositionSquares(), nil, White)

	// 50*(1-|2p-1|) is 50 at p=0.5 and 0 at p=1.
	assert.InDelta(t, 0.5, atHalf.QuantumScore-atOne.QuantumScore, 0.01)
}

func TestEvaluateEntanglementBonusSameColorOnly(t *testing.T) {
	same := newTestBoard(t)
	require.NoError(t, same.CreateEntanglement(mustSq(t, "d2"), mustSq(t, "e2")))
	sameEv := Evaluate(same.Board(), same.SuperpositionSquares(), same.EntanglementPairs(), White)

	mixed := newTestBoard(t)
	require.NoError(t, mixed.CreateSuperpositionProb(mustSq(t, "d2"), 0.5))
	require.NoError(t, mixed.CreateSuperpositionProb(mustSq(t, "e7"), 0.5))
	mixed.pairs = append(mixed.pairs, EntanglementPair{A: mustSq(t, "d2"), B: mustSq(t, "e7")})
	mixedEv := Evaluate(mixed.Board(), mixed.SuperpositionSquares(), mixed.EntanglementPairs(), White)

	// Same-color pair earns the 30-centipawn coordination bonus.
	assert.Greater(t, sameEv.QuantumScore, mixedEv.QuantumScore)
}

func TestEvaluatePositionalTables(t *testing.T) {
	qb := newTestBoard(t)
	qb.board = Board{
		// Central knight outvalues a rim knight by the table spread.
		mustSq(t, "d4"): {Type: Knight, Color: White, Probability: 1},
		mustSq(t, "a8"): {Type: Knight, Color: Black, Probability: 1},
	}
	ev := Evaluate(qb.Board(), nil, nil, White)
	assert.Greater(t, ev.CombinedScore, 0.0)
}

func TestEvaluateRoundsToTwoDecimals(t *testing.T) {
	qb := newTestBoard(t)
	require.NoError(t, qb.CreateSuperpositionProb(mustSq(t, "e2"), 0.333))

	ev := Evaluate(qb.Board(), qb.SuperpositionSquares(), nil, White)
	for _, v := range []float64{ev.ClassicalScore, ev.QuantumScore, ev.CombinedScore} {
		assert.Equal(t, round2(v), v)
	}
}
