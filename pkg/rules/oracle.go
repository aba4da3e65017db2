// Package rules defines the move legality oracle consumed by the game core.
// The core never inspects a position itself; every rules question goes
// through this interface.
package rules

import (
	"errors"

	"github.com/pvoicu/chessroom/internal/color"
)

// ErrIllegalMove is returned when the oracle rejects a proposed move.
// Malformed move shapes are reported the same way.
var ErrIllegalMove = errors.New("illegal move")

// Position is an opaque board state. It is created and advanced only by the
// oracle; callers may only render it.
type Position interface {
	FEN() string
	PGN() string
}

// MoveRequest is a proposed move in coordinate form. Promotion is the
// lowercase piece letter ("q", "r", "b", "n") and may be empty.
type MoveRequest struct {
	From      string
	To        string
	Promotion string
}

// Accepted is the oracle's verdict on a legal move.
type Accepted struct {
	Position Position // resulting position
	SAN      string   // disambiguated algebraic notation of the executed move
}

// Oracle validates and applies moves and answers game-over queries.
type Oracle interface {
	// NewPosition returns the standard starting position.
	NewPosition() Position

	// CurrentTurn reports which side is on move.
	CurrentTurn(p Position) color.Color

	// ApplyMove validates req against p and, if legal, advances the
	// position. On rejection it returns ErrIllegalMove and leaves p
	// untouched.
	ApplyMove(p Position, req MoveRequest) (*Accepted, error)

	IsGameOver(p Position) bool
	IsCheckmate(p Position) bool
	IsStalemate(p Position) bool
	IsThreefoldRepetition(p Position) bool
	IsInsufficientMaterial(p Position) bool
}
