package engine

import (
	"math"

	"github.com/rs/zerolog"
)

// DefaultSearchDepth is used when no depth is configured.
const DefaultSearchDepth = 3

// SearchEngine runs depth-bounded minimax with alpha-beta pruning over a
// QuantumBoard. The walk explores classical continuations only: collapse
// outcomes are never branched on, superposition and entanglement enter
// purely as static evaluation terms at the leaves.
type SearchEngine struct {
	board *QuantumBoard
	depth int
	cache *EvalCache
	log   zerolog.Logger
}

// BestMove is the result of a search. Move is nil when the side to move
// has no legal move.
type BestMove struct {
	Move  *Move
	Score float64
	Depth int
}

// NewSearchEngine creates a search over qb with the given depth. The eval
// cache is optional.
func NewSearchEngine(qb *QuantumBoard, depth int, cache *EvalCache, log zerolog.Logger) *SearchEngine {
	if depth <= 0 {
		depth = DefaultSearchDepth
	}
	return &SearchEngine{
		board: qb,
		depth: depth,
		cache: cache,
		log:   log.With().Str("component", "search").Logger(),
	}
}

// Depth returns the configured search depth.
func (s *SearchEngine) Depth() int {
	return s.depth
}

// FindBestMove searches at the configured depth for the given color.
func (s *SearchEngine) FindBestMove(color Color) BestMove {
	score, move := s.minimax(s.depth, math.Inf(-1), math.Inf(1), true, color)
	if move != nil {
		s.log.Debug().Stringer("move", move).Float64("score", score).Int("depth", s.depth).
			Msg("search complete")
	}
	return BestMove{Move: move, Score: score, Depth: s.depth}
}

// minimax walks the move tree. maximizing alternates each ply; the side
// to move is color when maximizing and its opponent otherwise. Around
// every candidate move the full quantum position is snapshotted and
// restored as one atomic unit.
func (s *SearchEngine) minimax(depth int, alpha, beta float64, maximizing bool, color Color) (float64, *Move) {
	if depth == 0 {
		return s.leafScore(color), nil
	}

	current := color
	if !maximizing {
		current = color.Opposite()
	}

	moves := s.board.AllLegalMoves(current)
	if len(moves) == 0 {
		if s.board.IsInCheck(current) {
			// The side to move is mated.
			if maximizing {
				return math.Inf(-1), nil
			}
			return math.Inf(1), nil
		}
		return 0, nil // stalemate
	}

	var best *Move
	value := math.Inf(-1)
	if !maximizing {
		value = math.Inf(1)
	}

	for i := range moves {
		move := moves[i]
		snap := s.board.snapshot()
		s.board.ApplyMove(move.From, move.To)
		score, _ := s.minimax(depth-1, alpha, beta, !maximizing, color)
		s.board.restore(snap)

		if maximizing {
			if score > value {
				value = score
				best = &moves[i]
			}
			alpha = math.Max(alpha, value)
		} else {
			if score < value {
				value = score
				best = &moves[i]
			}
			beta = math.Min(beta, value)
		}
		if beta <= alpha {
			break
		}
	}

	return value, best
}

// leafScore evaluates the current position for color, consulting the eval
// cache when one is configured.
func (s *SearchEngine) leafScore(color Color) float64 {
	if s.cache == nil {
		return evaluateRaw(s.board.board, s.board.SuperpositionSquares(), s.board.pairs, color)
	}
	key := s.board.positionKey()
	ctx := int32(color)
	if score, ok := s.cache.Lookup(key, ctx); ok {
		return score
	}
	score := evaluateRaw(s.board.board, s.board.SuperpositionSquares(), s.board.pairs, color)
	s.cache.Add(key, ctx, score)
	return score
}
