package engine

// Move generation is pseudo-legal throughout: moves that leave the mover's
// own king in check are not filtered out. Enumeration order over squares
// and over each piece's direction/offset list is fixed so that search and
// tests are deterministic.

type offset struct {
	dr int // rank delta
	df int // file delta
}

var (
	knightOffsets = [8]offset{
		{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2},
		{1, -2}, {1, 2}, {2, -1}, {2, 1},
	}
	bishopDirs = [4]offset{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	rookDirs   = [4]offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	queenDirs  = [8]offset{
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
		{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	}
	kingOffsets = [8]offset{
		{-1, -1}, {-1, 0}, {-1, 1},
		{0, -1}, {0, 1},
		{1, -1}, {1, 0}, {1, 1},
	}
)

func onBoard(rank, file int) bool {
	return rank >= 0 && rank < 8 && file >= 0 && file < 8
}

// LegalMovesFor returns the pseudo-legal target squares for the piece at
// sq, in fixed enumeration order. An empty slice is returned for empty
// squares.
func (qb *QuantumBoard) LegalMovesFor(sq Square) []Square {
	piece, ok := qb.board[sq]
	if !ok {
		return nil
	}

	switch piece.Type {
	case Pawn:
		return qb.pawnMoves(sq, piece.Color)
	case Knight:
		return qb.stepMoves(sq, piece.Color, knightOffsets[:])
	case Bishop:
		return qb.slidingMoves(sq, piece.Color, bishopDirs[:])
	case Rook:
		return qb.slidingMoves(sq, piece.Color, rookDirs[:])
	case Queen:
		return qb.slidingMoves(sq, piece.Color, queenDirs[:])
	case King:
		return qb.stepMoves(sq, piece.Color, kingOffsets[:])
	}
	return nil
}

// pawnMoves generates single/double pushes and diagonal captures. The
// double push requires the starting rank and both squares empty; diagonal
// moves require an enemy occupant.
func (qb *QuantumBoard) pawnMoves(sq Square, color Color) []Square {
	rank, file := sq.Rank(), sq.File()
	dir := 1
	startRank := 1
	if color == Black {
		dir = -1
		startRank = 6
	}

	var moves []Square
	nr := rank + dir
	if onBoard(nr, file) {
		if _, occupied := qb.board[NewSquare(file, nr)]; !occupied {
			moves = append(moves, NewSquare(file, nr))
			nr2 := rank + 2*dir
			if rank == startRank {
				if _, occupied := qb.board[NewSquare(file, nr2)]; !occupied {
					moves = append(moves, NewSquare(file, nr2))
				}
			}
		}
	}

	for _, df := range [2]int{-1, 1} {
		nf := file + df
		if !onBoard(nr, nf) {
			continue
		}
		target := NewSquare(nf, nr)
		if occupant, ok := qb.board[target]; ok && occupant.Color != color {
			moves = append(moves, target)
		}
	}
	return moves
}

// stepMoves generates fixed-offset moves (knight, king) landing on empty
// or enemy-occupied squares.
func (qb *QuantumBoard) stepMoves(sq Square, color Color, offsets []offset) []Square {
	rank, file := sq.Rank(), sq.File()
	var moves []Square
	for _, o := range offsets {
		nr, nf := rank+o.dr, file+o.df
		if !onBoard(nr, nf) {
			continue
		}
		target := NewSquare(nf, nr)
		if occupant, ok := qb.board[target]; !ok || occupant.Color != color {
			moves = append(moves, target)
		}
	}
	return moves
}

// slidingMoves ray-casts per direction until the board edge, a friendly
// piece (stop before) or an enemy piece (include, then stop).
func (qb *QuantumBoard) slidingMoves(sq Square, color Color, dirs []offset) []Square {
	rank, file := sq.Rank(), sq.File()
	var moves []Square
	for _, d := range dirs {
		nr, nf := rank+d.dr, file+d.df
		for onBoard(nr, nf) {
			target := NewSquare(nf, nr)
			occupant, ok := qb.board[target]
			if !ok {
				moves = append(moves, target)
			} else {
				if occupant.Color != color {
					moves = append(moves, target)
				}
				break
			}
			nr += d.dr
			nf += d.df
		}
	}
	return moves
}

// Move is a from-to pair in generation order.
type Move struct {
	From Square
	To   Square
}

func (m Move) String() string {
	return m.From.String() + "-" + m.To.String()
}

// AllLegalMoves returns every pseudo-legal move for color, iterating
// squares in board order for reproducible output.
func (qb *QuantumBoard) AllLegalMoves(color Color) []Move {
	var moves []Move
	for sq := Square(0); sq < 64; sq++ {
		piece, ok := qb.board[sq]
		if !ok || piece.Color != color {
			continue
		}
		for _, target := range qb.LegalMovesFor(sq) {
			moves = append(moves, Move{From: sq, To: target})
		}
	}
	return moves
}

// IsInCheck reports whether color's king square is attacked by any
// opposing piece's pseudo-legal targets. A missing king (possible after
// quantum collapse) defensively reports no check.
func (qb *QuantumBoard) IsInCheck(color Color) bool {
	var kingSq Square
	found := false
	for sq := Square(0); sq < 64; sq++ {
		if piece, ok := qb.board[sq]; ok && piece.Type == King && piece.Color == color {
			kingSq = sq
			found = true
			break
		}
	}
	if !found {
		return false
	}

	opponent := color.Opposite()
	for sq := Square(0); sq < 64; sq++ {
		piece, ok := qb.board[sq]
		if !ok || piece.Color != opponent {
			continue
		}
		for _, target := range qb.LegalMovesFor(sq) {
			if target == kingSq {
				return true
			}
		}
	}
	return false
}
