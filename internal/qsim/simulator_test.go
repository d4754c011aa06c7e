package qsim

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSim(t *testing.T) *Simulator {
	t.Helper()
	return New(5, rand.NewPCG(1, 2))
}

func TestInitialState(t *testing.T) {
	s := newTestSim(t)
	probs := s.Probabilities()
	assert.InDelta(t, 1.0, probs[0], NormTolerance)
	assert.InDelta(t, 1.0, s.Norm(), NormTolerance)
}

func TestXFlipsBasisState(t *testing.T) {
	s := newTestSim(t)
	s.X(0)
	probs := s.Probabilities()
	assert.InDelta(t, 1.0, probs[1], NormTolerance)

	s.X(3)
	probs = s.Probabilities()
	assert.InDelta(t, 1.0, probs[1|1<<3], NormTolerance)
}

func TestHadamardSplitsEvenly(t *testing.T) {
	s := newTestSim(t)
	s.H(0)
	probs := s.Probabilities()
	assert.InDelta(t, 0.5, probs[0], 1e-12)
	assert.InDelta(t, 0.5, probs[1], 1e-12)
}

func TestRYEncodesProbability(t *testing.T) {
	for _, p := range []float64{0.0, 0.25, 0.5, 0.75, 1.0} {
		s := newTestSim(t)
		theta := 2 * math.Acos(math.Sqrt(p))
		s.RY(4, theta)

		pOne := 0.0
		for i, prob := range s.Probabilities() {
			if i&(1<<4) != 0 {
				pOne += prob
			}
		}
		assert.InDelta(t, 1-p, pOne, 1e-12, "p=%v", p)
	}
}

func TestCX(t *testing.T) {
	// Control unset: target untouched.
	s := newTestSim(t)
	s.CX(0, 1)
	assert.InDelta(t, 1.0, s.Probabilities()[0], NormTolerance)

	// Control set: target flips.
	s.X(0)
	s.CX(0, 1)
	assert.InDelta(t, 1.0, s.Probabilities()[0b11], NormTolerance)
}

func TestCSwap(t *testing.T) {
	s := newTestSim(t)
	s.X(0)
	s.X(1)
	s.CSwap(0, 1, 2)
	// Bit 1 moved to bit 2 under an active control.
	assert.InDelta(t, 1.0, s.Probabilities()[0b101], NormTolerance)
}

func TestNormInvariantAfterGateSequence(t *testing.T) {
	s := newTestSim(t)
	s.H(0)
	s.RY(1, 1.234)
	s.X(2)
	s.CX(0, 3)
	s.CSwap(1, 2, 4)
	s.H(4)
	assert.InDelta(t, 1.0, s.Norm(), NormTolerance)
}

func TestMeasureIsNonDestructive(t *testing.T) {
	s := newTestSim(t)
	s.H(0)
	before := s.Probabilities()

	results := s.Measure(50)
	require.Len(t, results, 50)
	for _, bits := range results {
		require.Len(t, bits, 5)
	}

	after := s.Probabilities()
	assert.InDeltaSlice(t, before, after, 1e-12)
}

func TestMeasureQubitDeterministicBranches(t *testing.T) {
	s := newTestSim(t)
	s.X(2)

	bit, err := s.MeasureQubit(2)
	require.NoError(t, err)
	assert.Equal(t, 1, bit)

	bit, err = s.MeasureQubit(0)
	require.NoError(t, err)
	assert.Equal(t, 0, bit)

	assert.InDelta(t, 1.0, s.Norm(), NormTolerance)
}

func TestMeasureQubitCollapses(t *testing.T) {
	s := newTestSim(t)
	s.H(1)

	bit, err := s.MeasureQubit(1)
	require.NoError(t, err)

	// After collapse the qubit is definite.
	pOne := 0.0
	for i, prob := range s.Probabilities() {
		if i&(1<<1) != 0 {
			pOne += prob
		}
	}
	assert.InDelta(t, float64(bit), pOne, 1e-12)
	assert.InDelta(t, 1.0, s.Norm(), NormTolerance)
}

func TestCollapseReturnsBasisState(t *testing.T) {
	s := newTestSim(t)
	s.X(0)
	s.X(3)
	s.H(4)

	bits, err := s.Collapse()
	require.NoError(t, err)
	require.Len(t, bits, 5)
	assert.Equal(t, 1, bits[0])
	assert.Equal(t, 0, bits[1])
	assert.Equal(t, 0, bits[2])
	assert.Equal(t, 1, bits[3])

	// Collapsed register is a single basis state.
	count := 0
	for _, p := range s.Probabilities() {
		if p > 1e-12 {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestReset(t *testing.T) {
	s := newTestSim(t)
	s.H(0)
	s.X(3)
	s.Reset()
	assert.InDelta(t, 1.0, s.Probabilities()[0], NormTolerance)
}
