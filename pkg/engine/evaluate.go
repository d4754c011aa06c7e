package engine

import "math"

// Centipawn base values per piece type.
var pieceBaseValues = [6]float64{
	Pawn:   100,
	Knight: 320,
	Bishop: 330,
	Rook:   500,
	Queen:  900,
	King:   20000,
}

// Piece-square tables, from white's perspective with rank 8 first (the
// usual published orientation). Lookup mirrors by rank for black. Rook and
// queen have no table and contribute 0.
var pawnTable = [8][8]float64{
	{0, 0, 0, 0, 0, 0, 0, 0},
	{5, 5, 5, 5, 5, 5, 5, 5},
	{1, 1, 2, 3, 3, 2, 1, 1},
	{0.5, 0.5, 1, 2.5, 2.5, 1, 0.5, 0.5},
	{0, 0, 0, 2, 2, 0, 0, 0},
	{0.5, -0.5, -1, 0, 0, -1, -0.5, 0.5},
	{0.5, 1, 1, -2, -2, 1, 1, 0.5},
	{0, 0, 0, 0, 0, 0, 0, 0},
}

var knightTable = [8][8]float64{
	{-5, -4, -3, -3, -3, -3, -4, -5},
	{-4, -2, 0, 0, 0, 0, -2, -4},
	{-3, 0, 1, 1.5, 1.5, 1, 0, -3},
	{-3, 0.5, 1.5, 2, 2, 1.5, 0.5, -3},
	{-3, 0, 1.5, 2, 2, 1.5, 0, -3},
	{-3, 0.5, 1, 1.5, 1.5, 1, 0.5, -3},
	{-4, -2, 0, 0.5, 0.5, 0, -2, -4},
	{-5, -4, -3, -3, -3, -3, -4, -5},
}

var bishopTable = [8][8]float64{
	{-2, -1, -1, -1, -1, -1, -1, -2},
	{-1, 0, 0, 0, 0, 0, 0, -1},
	{-1, 0, 0.5, 1, 1, 0.5, 0, -1},
	{-1, 0.5, 0.5, 1, 1, 0.5, 0.5, -1},
	{-1, 0, 1, 1, 1, 1, 0, -1},
	{-1, 1, 1, 1, 1, 1, 1, -1},
	{-1, 0.5, 0, 0, 0, 0, 0.5, -1},
	{-2, -1, -1, -1, -1, -1, -1, -2},
}

var kingTable = [8][8]float64{
	{-3, -4, -4, -5, -5, -4, -4, -3},
	{-3, -4, -4, -5, -5, -4, -4, -3},
	{-3, -4, -4, -5, -5, -4, -4, -3},
	{-3, -4, -4, -5, -5, -4, -4, -3},
	{-2, -3, -3, -4, -4, -3, -3, -2},
	{-1, -2, -2, -2, -2, -2, -2, -1},
	{2, 2, 0, 0, 0, 0, 2, 2},
	{2, 3, 1, 0, 0, 1, 3, 2},
}

func pieceTable(t PieceType) *[8][8]float64 {
	switch t {
	case Pawn:
		return &pawnTable
	case Knight:
		return &knightTable
	case Bishop:
		return &bishopTable
	case King:
		return &kingTable
	}
	return nil
}

// EvalComponents is the per-term breakdown, in pawns (already scaled).
type EvalComponents struct {
	Material   float64 `json:"material"`
	Positional float64 `json:"positional"`
	Mobility   float64 `json:"mobility"`
	Quantum    float64 `json:"quantum"`
}

// Evaluation is a full position score from one color's perspective, in
// pawns, rounded to two decimals.
type Evaluation struct {
	ClassicalScore float64        `json:"classical_score"`
	QuantumScore   float64        `json:"quantum_score"`
	CombinedScore  float64        `json:"combined_score"`
	Components     EvalComponents `json:"components"`
}

// Evaluate scores the position for color: material weighted by presence
// probability, piece-square positional bonuses, a piece-count mobility
// proxy, and quantum terms (uncertainty peaks at p=0.5; same-color
// entanglement pairs coordinate). Centipawn totals are reported divided by
// 100 and rounded to two decimals.
func Evaluate(board Board, superposition []Square, pairs []EntanglementPair, color Color) Evaluation {
	material := materialScore(board)
	positional := positionalScore(board)
	mobility := mobilityScore(board)
	quantum := quantumScore(board, superposition, pairs)

	classical := material + positional + mobility
	combined := classical + quantum

	if color == Black {
		classical = -classical
		quantum = -quantum
		combined = -combined
	}

	return Evaluation{
		ClassicalScore: round2(classical / 100),
		QuantumScore:   round2(quantum / 100),
		CombinedScore:  round2(combined / 100),
		Components: EvalComponents{
			Material:   round2(material / 100),
			Positional: round2(positional / 100),
			Mobility:   round2(mobility / 100),
			Quantum:    round2(quantum / 100),
		},
	}
}

// evaluateRaw returns the unscaled combined centipawn score for color,
// used as the search leaf value.
func evaluateRaw(board Board, superposition []Square, pairs []EntanglementPair, color Color) float64 {
	combined := materialScore(board) + positionalScore(board) + mobilityScore(board) +
		quantumScore(board, superposition, pairs)
	if color == Black {
		combined = -combined
	}
	return combined
}

// materialScore sums base value x presence probability, white-positive.
func materialScore(board Board) float64 {
	score := 0.0
	for _, piece := range board {
		value := pieceBaseValues[piece.Type] * piece.Probability
		if piece.Color == White {
			score += value
		} else {
			score -= value
		}
	}
	return score
}

// positionalScore sums piece-square table bonuses, white-positive. Tables
// are stored rank-8-first, so white reads row 7-rank and black reads row
// rank (the mirrored lookup).
func positionalScore(board Board) float64 {
	score := 0.0
	for sq, piece := range board {
		table := pieceTable(piece.Type)
		if table == nil {
			continue
		}
		if piece.Color == White {
			score += table[7-sq.Rank()][sq.File()]
		} else {
			score -= table[sq.Rank()][sq.File()]
		}
	}
	return score * 10
}

// mobilityScore is a piece-count proxy, not a move count. Full mobility
// would need move generation at every leaf; the count difference is the
// deliberate cheap stand-in.
func mobilityScore(board Board) float64 {
	white, black := 0, 0
	for _, piece := range board {
		if piece.Color == White {
			white++
		} else {
			black++
		}
	}
	return float64(white-black) * 10
}

// quantumScore rewards uncertainty (maximal at p=0.5, zero at p 0 or 1)
// and same-color entanglement pairs, white-positive.
func quantumScore(board Board, superposition []Square, pairs []EntanglementPair) float64 {
	score := 0.0
	for _, sq := range superposition {
		piece, ok := board[sq]
		if !ok {
			continue
		}
		bonus := 50 * (1 - math.Abs(2*piece.Probability-1))
		if piece.Color == White {
			score += bonus
		} else {
			score -= bonus
		}
	}
	for _, pair := range pairs {
		a, okA := board[pair.A]
		b, okB := board[pair.B]
		if !okA || !okB || a.Color != b.Color {
			continue
		}
		if a.Color == White {
			score += 30
		} else {
			score -= 30
		}
	}
	return score
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
