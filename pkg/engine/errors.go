package engine

import "errors"

// Failure conditions surfaced by the engine. Move execution folds these
// into structured MoveResult values so the transport layer can render
// user-facing messages without unwrapping anything.
var (
	ErrInvalidSquare         = errors.New("invalid square")
	ErrNoPieceAtSource       = errors.New("no piece at source square")
	ErrWrongTurn             = errors.New("piece belongs to the other player")
	ErrIllegalTarget         = errors.New("illegal target square")
	ErrInvalidPromotionPiece = errors.New("invalid promotion piece")
	ErrNumericDegeneracy     = errors.New("measurement hit a zero-probability branch")
	ErrGameOver              = errors.New("game is over")
)
