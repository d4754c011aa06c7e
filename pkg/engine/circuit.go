package engine

// CircuitInfo summarizes the quantum circuit implied by the board's
// current superpositions and entanglements.
type CircuitInfo struct {
	TotalQubits        int      `json:"total_qubits"`
	CircuitDepth       int      `json:"circuit_depth"`
	GateCount          int      `json:"gate_count"`
	SuperpositionCount int      `json:"superposition_count"`
	EntanglementCount  int      `json:"entanglement_count"`
	EstimatedRuntimeMS float64  `json:"estimated_runtime_ms"`
	Suggestions        []string `json:"optimization_suggestions"`
}

const (
	// Encoding X gates plus the RY rotation and a measurement per register.
	gatesPerSuperposition = 6
	// CNOT plus controlled phase gates per entangled pair.
	gatesPerEntanglement = 4
)

// AnalyzeCircuit derives circuit metrics from superposition and
// entanglement counts alone.
func AnalyzeCircuit(superpositions, entanglements int) CircuitInfo {
	gates := superpositions*gatesPerSuperposition + entanglements*gatesPerEntanglement
	depth := superpositions + entanglements*2
	if depth < 1 {
		depth = 1
	}
	qubits := superpositions * QubitsPerSquare

	return CircuitInfo{
		TotalQubits:        qubits,
		CircuitDepth:       depth,
		GateCount:          gates,
		SuperpositionCount: superpositions,
		EntanglementCount:  entanglements,
		EstimatedRuntimeMS: float64(gates) * 0.1,
		Suggestions:        circuitSuggestions(qubits, depth, gates),
	}
}

// CircuitInfo reports the metrics for this board's current state.
func (qb *QuantumBoard) CircuitInfo() CircuitInfo {
	return AnalyzeCircuit(qb.SuperpositionCount(), len(qb.pairs))
}

func circuitSuggestions(qubits, depth, gates int) []string {
	var out []string
	if qubits > 30 {
		out = append(out, "High qubit count: consider measuring some superpositions to reduce state space")
	}
	if depth > 20 {
		out = append(out, "Deep circuit: performance may degrade, consider reducing overlapping superpositions")
	}
	if gates > 100 {
		out = append(out, "Many gates: consider batched measurement to reset circuit complexity")
	}
	if len(out) == 0 {
		out = append(out, "Circuit complexity is within optimal bounds")
	}
	return out
}
