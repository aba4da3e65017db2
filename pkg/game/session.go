// Package game implements the session lifecycle core: the registry of
// matches, the turn and clock arbitration, chat, and the reconnection
// protocol. Everything here is owned by a single worker goroutine; see
// Manager for the threading contract.
package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/pvoicu/chessroom/internal/color"
	"github.com/pvoicu/chessroom/pkg/rules"
)

// Status is the lifecycle state of a session.
type Status string

// Session lifecycle states.
const (
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "playing"
	StatusFinished   Status = "finished"
)

// Game-end reasons.
const (
	ReasonCheckmate            = "checkmate"
	ReasonStalemate            = "stalemate"
	ReasonThreefoldRepetition  = "threefold_repetition"
	ReasonInsufficientMaterial = "insufficient_material"
	ReasonDraw                 = "draw"
	ReasonTimeout              = "timeout"
	ReasonDisconnect           = "disconnect"
)

// WinnerDraw marks a drawn result; otherwise Result.Winner is a color.
const WinnerDraw = "draw"

// Binding associates one live connection with a color slot.
type Binding struct {
	ConnID uuid.UUID
	Bound  bool
}

// Set binds the slot to a connection.
func (b *Binding) Set(connID uuid.UUID) {
	b.ConnID = connID
	b.Bound = true
}

// Clear vacates the slot.
func (b *Binding) Clear() {
	b.ConnID = uuid.Nil
	b.Bound = false
}

// Result is fixed once when a session finishes and never changes after.
type Result struct {
	Winner string
	Reason string
}

// Session is one match between two bound connections, keyed by room code.
type Session struct {
	ID     string
	Status Status

	White Binding
	Black Binding

	// Position is mutated only through the oracle's verdicts.
	Position rules.Position

	WhiteRemaining int // seconds
	BlackRemaining int

	Chat   *ChatLog
	Result *Result

	LastActivity time.Time
}

// BindingFor returns the slot for the given color.
func (s *Session) BindingFor(c color.Color) *Binding {
	if c == color.White {
		return &s.White
	}
	return &s.Black
}

// ColorOf reports which color the connection plays, if any.
func (s *Session) ColorOf(connID uuid.UUID) (color.Color, bool) {
	if s.White.Bound && s.White.ConnID == connID {
		return color.White, true
	}
	if s.Black.Bound && s.Black.ConnID == connID {
		return color.Black, true
	}
	return "", false
}

// Full reports whether both color slots are bound.
func (s *Session) Full() bool {
	return s.White.Bound && s.Black.Bound
}

// Empty reports whether neither color slot is bound.
func (s *Session) Empty() bool {
	return !s.White.Bound && !s.Black.Bound
}
