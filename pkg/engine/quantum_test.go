package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSuperpositionMarksPiece(t *testing.T) {
	qb := newTestBoard(t)
	sq := mustSq(t, "e2")

	require.NoError(t, qb.CreateSuperpositionProb(sq, 0.7))

	p, ok := qb.PieceAt(sq)
	require.True(t, ok)
	assert.True(t, p.InSuperposition)
	assert.Equal(t, 0.7, p.Probability)
	assert.True(t, qb.InSuperposition(sq))
}

func TestCreateSuperpositionEmptySquare(t *testing.T) {
	qb := newTestBoard(t)
	err := qb.CreateSuperposition(mustSq(t, "e4"))
	assert.ErrorIs(t, err, ErrNoPieceAtSource)
}

func TestCreateSuperpositionProbOutOfRange(t *testing.T) {
	qb := newTestBoard(t)
	assert.Error(t, qb.CreateSuperpositionProb(mustSq(t, "e2"), 1.5))
	assert.Error(t, qb.CreateSuperpositionProb(mustSq(t, "e2"), -0.1))
}

func TestMeasureCertainlyPresent(t *testing.T) {
	qb := newTestBoard(t)
	sq := mustSq(t, "g1")

	require.NoError(t, qb.CreateSuperpositionProb(sq, 1.0))
	out := qb.MeasureSquare(sq)

	require.True(t, out.Present)
	assert.Equal(t, Knight, out.Piece.Type)
	assert.Equal(t, White, out.Piece.Color)
	assert.False(t, out.Piece.InSuperposition)
	assert.Equal(t, 1.0, out.Piece.Probability)
	assert.False(t, qb.InSuperposition(sq))
}

func TestMeasureCertainlyAbsent(t *testing.T) {
	qb := newTestBoard(t)
	sq := mustSq(t, "g8")

	require.NoError(t, qb.CreateSuperpositionProb(sq, 0.0))
	out := qb.MeasureSquare(sq)

	assert.False(t, out.Present)
	_, ok := qb.PieceAt(sq)
	assert.False(t, ok)
	assert.False(t, qb.InSuperposition(sq))
}

func TestMeasurePreservesTypeAndColor(t *testing.T) {
	qb := newTestBoard(t)
	// Every piece kind on both sides, forced to survive measurement.
	targets := []string{"a1", "b1", "c1", "d1", "e1", "a2", "d8", "e8", "h7"}
	for _, s := range targets {
		require.NoError(t, qb.CreateSuperpositionProb(mustSq(t, s), 1.0))
	}
	want := qb.Board().Clone()
	qb.MeasureAll()
	for _, s := range targets {
		sq := mustSq(t, s)
		p, ok := qb.PieceAt(sq)
		require.True(t, ok, s)
		assert.Equal(t, want[sq].Type, p.Type, s)
		assert.Equal(t, want[sq].Color, p.Color, s)
	}
}

func TestMeasureClassicalSquareIsNoop(t *testing.T) {
	qb := newTestBoard(t)
	sq := mustSq(t, "e1")

	out := qb.MeasureSquare(sq)
	require.True(t, out.Present)
	assert.Equal(t, King, out.Piece.Type)

	empty := qb.MeasureSquare(mustSq(t, "e4"))
	assert.False(t, empty.Present)
}

func TestEntanglementAutoPromotes(t *testing.T) {
	qb := newTestBoard(t)
	a, b := mustSq(t, "d2"), mustSq(t, "e2")

	require.NoError(t, qb.CreateEntanglement(a, b))

	assert.True(t, qb.InSuperposition(a))
	assert.True(t, qb.InSuperposition(b))
	require.Len(t, qb.EntanglementPairs(), 1)
	pair := qb.EntanglementPairs()[0]
	assert.True(t, pair.Contains(a))
	assert.True(t, pair.Contains(b))
}

func TestEntanglementRequiresPieces(t *testing.T) {
	qb := newTestBoard(t)
	err := qb.CreateEntanglement(mustSq(t, "e4"), mustSq(t, "e2"))
	assert.ErrorIs(t, err, ErrNoPieceAtSource)
	err = qb.CreateEntanglement(mustSq(t, "e2"), mustSq(t, "e5"))
	assert.ErrorIs(t, err, ErrNoPieceAtSource)
}

func TestMeasurementCascadesThroughPair(t *testing.T) {
	qb := newTestBoard(t)
	a, b := mustSq(t, "d2"), mustSq(t, "e2")
	require.NoError(t, qb.CreateEntanglement(a, b))

	qb.MeasureSquare(a)

	assert.False(t, qb.InSuperposition(a))
	assert.False(t, qb.InSuperposition(b))
	assert.Empty(t, qb.EntanglementPairs())
}

func TestMeasurementCascadesTransitively(t *testing.T) {
	qb := newTestBoard(t)
	a, b, c := mustSq(t, "a2"), mustSq(t, "b2"), mustSq(t, "c2")
	require.NoError(t, qb.CreateEntanglement(a, b))
	require.NoError(t, qb.CreateEntanglement(b, c))

	qb.MeasureSquare(a)

	assert.Zero(t, qb.SuperpositionCount())
	assert.Empty(t, qb.EntanglementPairs())
}

func TestMeasureAllClearsEverything(t *testing.T) {
	qb := newTestBoard(t)
	for _, s := range []string{"a2", "b2", "g7"} {
		require.NoError(t, qb.CreateSuperposition(mustSq(t, s)))
	}

	results := qb.MeasureAll()

	assert.Len(t, results, 3)
	assert.Zero(t, qb.SuperpositionCount())
	for sq, out := range results {
		_, onBoard := qb.PieceAt(sq)
		assert.Equal(t, out.Present, onBoard, sq.String())
	}
}

func TestRegisterProbabilitiesAndSampling(t *testing.T) {
	qb := newTestBoard(t)
	sq := mustSq(t, "e2")

	assert.Nil(t, qb.RegisterProbabilities(sq))
	assert.Nil(t, qb.SampleRegister(sq, 10))

	require.NoError(t, qb.CreateSuperpositionProb(sq, 0.5))

	probs := qb.RegisterProbabilities(sq)
	require.Len(t, probs, 1<<QubitsPerSquare)
	sum := 0.0
	for _, p := range probs {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	samples := qb.SampleRegister(sq, 25)
	require.Len(t, samples, 25)
	for _, bits := range samples {
		assert.Len(t, bits, QubitsPerSquare)
	}
	// Sampling is non-destructive.
	assert.True(t, qb.InSuperposition(sq))
}

func TestSuperpositionStates(t *testing.T) {
	qb := newTestBoard(t)
	require.NoError(t, qb.CreateSuperpositionProb(mustSq(t, "e2"), 0.25))

	states := qb.SuperpositionStates()
	require.Len(t, states, 1)
	p := states[mustSq(t, "e2")]
	assert.Equal(t, Pawn, p.Type)
	assert.Equal(t, 0.25, p.Probability)
}
