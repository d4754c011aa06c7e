// Package qsim implements a small state-vector quantum simulator.
//
// Registers are fixed-size amplitude vectors over the computational basis.
// The chess engine uses one 5-qubit register per superposed square, so the
// simulator is tuned for tiny registers and synchronous, CPU-bound gate
// application rather than large circuits.
package qsim

import (
	"errors"
	"math"
	"math/cmplx"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// NormTolerance is the allowed drift of the state norm at rest.
const NormTolerance = 1e-9

// ErrDegenerateState is returned when a measurement post-selects onto a
// branch with (numerically) zero probability. The register is reset to a
// consistent basis state instead of renormalizing a zero vector.
var ErrDegenerateState = errors.New("qsim: measurement collapsed onto zero-probability branch")

// Simulator holds the state vector for a single register.
type Simulator struct {
	numQubits int
	dim       int
	state     []complex128
	rng       *rand.Rand
}

// New creates a simulator with the given number of qubits, initialized to
// the all-zero basis state. The source drives all measurement sampling;
// it must not be nil and should be seeded by the caller for reproducibility.
func New(numQubits int, src rand.Source) *Simulator {
	s := &Simulator{
		numQubits: numQubits,
		dim:       1 << numQubits,
		rng:       rand.New(src),
	}
	s.state = make([]complex128, s.dim)
	s.state[0] = 1
	return s
}

// NumQubits returns the register width.
func (s *Simulator) NumQubits() int {
	return s.numQubits
}

// Reset returns the register to the all-zero basis state.
func (s *Simulator) Reset() {
	for i := range s.state {
		s.state[i] = 0
	}
	s.state[0] = 1
}

// X applies the Pauli-X (NOT) gate to a qubit.
func (s *Simulator) X(qubit int) {
	s.applySingle(qubit, [2][2]complex128{
		{0, 1},
		{1, 0},
	})
}

// H applies the Hadamard gate to a qubit.
func (s *Simulator) H(qubit int) {
	inv := complex(1/math.Sqrt2, 0)
	s.applySingle(qubit, [2][2]complex128{
		{inv, inv},
		{inv, -inv},
	})
}

// RY applies a rotation about the Y axis by theta radians.
func (s *Simulator) RY(qubit int, theta float64) {
	c := complex(math.Cos(theta/2), 0)
	sn := complex(math.Sin(theta/2), 0)
	s.applySingle(qubit, [2][2]complex128{
		{c, -sn},
		{sn, c},
	})
}

// CX applies a controlled-X gate: the target bit is flipped on every basis
// state whose control bit is 1.
func (s *Simulator) CX(control, target int) {
	cMask := 1 << control
	tMask := 1 << target
	// Visit only states with control=1 and target=0 so each pair is
	// swapped exactly once.
	for i := 0; i < s.dim; i++ {
		if i&cMask != 0 && i&tMask == 0 {
			j := i | tMask
			s.state[i], s.state[j] = s.state[j], s.state[i]
		}
	}
}

// CSwap applies a controlled-SWAP (Fredkin) gate: the two target bits are
// exchanged on every basis state whose control bit is 1.
func (s *Simulator) CSwap(control, target1, target2 int) {
	cMask := 1 << control
	m1 := 1 << target1
	m2 := 1 << target2
	// Visit only states with target1=1 and target2=0; the mirrored index
	// is the same pair, so this avoids double-swapping.
	for i := 0; i < s.dim; i++ {
		if i&cMask != 0 && i&m1 != 0 && i&m2 == 0 {
			j := i ^ m1 ^ m2
			s.state[i], s.state[j] = s.state[j], s.state[i]
		}
	}
}

// applySingle left-multiplies a 2x2 unitary onto a qubit by partitioning
// the basis into index pairs that differ only in that bit.
func (s *Simulator) applySingle(qubit int, gate [2][2]complex128) {
	mask := 1 << qubit
	for i := 0; i < s.dim; i++ {
		if i&mask != 0 {
			continue
		}
		j := i | mask
		a0, a1 := s.state[i], s.state[j]
		s.state[i] = gate[0][0]*a0 + gate[0][1]*a1
		s.state[j] = gate[1][0]*a0 + gate[1][1]*a1
	}
}

// Probabilities returns |amplitude|^2 for every basis state, normalized to
// sum to 1.
func (s *Simulator) Probabilities() []float64 {
	probs := make([]float64, s.dim)
	for i, a := range s.state {
		m := cmplx.Abs(a)
		probs[i] = m * m
	}
	if total := floats.Sum(probs); total > 0 {
		floats.Scale(1/total, probs)
	}
	return probs
}

// Norm returns the Euclidean norm of the state vector. It is 1 within
// NormTolerance for any register at rest.
func (s *Simulator) Norm() float64 {
	sum := 0.0
	for _, a := range s.state {
		m := cmplx.Abs(a)
		sum += m * m
	}
	return math.Sqrt(sum)
}

// Measure samples the full register shots times without collapsing it.
// Each outcome is a bit vector indexed by qubit (outcome[q] is qubit q).
// This is the reporting-style measurement used for circuit statistics;
// game measurement goes through MeasureQubit/Collapse.
func (s *Simulator) Measure(shots int) [][]int {
	probs := s.Probabilities()
	dist := distuv.NewCategorical(probs, s.rng)

	results := make([][]int, shots)
	for n := 0; n < shots; n++ {
		idx := int(dist.Rand())
		bits := make([]int, s.numQubits)
		for q := 0; q < s.numQubits; q++ {
			bits[q] = (idx >> q) & 1
		}
		results[n] = bits
	}
	return results
}

// MeasureQubit destructively measures a single qubit: one Bernoulli outcome
// is drawn from P(bit=1), inconsistent amplitudes are zeroed, and the state
// is renormalized. On numeric degeneracy (post-selected norm ~0) the
// register is reset to the basis state matching the outcome and
// ErrDegenerateState is returned alongside it.
func (s *Simulator) MeasureQubit(qubit int) (int, error) {
	mask := 1 << qubit

	pOne := 0.0
	for i, a := range s.state {
		if i&mask != 0 {
			m := cmplx.Abs(a)
			pOne += m * m
		}
	}
	pOne = math.Min(math.Max(pOne, 0), 1)

	outcome := 0
	b := distuv.Bernoulli{P: pOne, Src: s.rng}
	if b.Rand() == 1 {
		outcome = 1
	}

	norm := 0.0
	for i := range s.state {
		if ((i&mask != 0) && outcome == 0) || ((i&mask == 0) && outcome == 1) {
			s.state[i] = 0
		} else {
			m := cmplx.Abs(s.state[i])
			norm += m * m
		}
	}

	if norm < NormTolerance {
		// Sampling landed on a branch the amplitudes cannot support;
		// fall back to the cleanest consistent state.
		for i := range s.state {
			s.state[i] = 0
		}
		if outcome == 1 {
			s.state[mask] = 1
		} else {
			s.state[0] = 1
		}
		return outcome, ErrDegenerateState
	}

	scale := complex(1/math.Sqrt(norm), 0)
	for i := range s.state {
		s.state[i] *= scale
	}
	return outcome, nil
}

// Collapse destructively measures every qubit in order and returns the
// resulting bit vector. After Collapse the register is a single basis state.
func (s *Simulator) Collapse() ([]int, error) {
	bits := make([]int, s.numQubits)
	var firstErr error
	for q := 0; q < s.numQubits; q++ {
		bit, err := s.MeasureQubit(q)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		bits[q] = bit
	}
	return bits, firstErr
}
