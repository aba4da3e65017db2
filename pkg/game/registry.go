package game

import (
	"strings"

	"github.com/pvoicu/chessroom/pkg/rules"
)

// Registry owns the room-code to session mapping. It is only ever touched
// from the worker goroutine, so it carries no locking.
type Registry struct {
	sessions map[string]*Session

	oracle       rules.Oracle
	clockSeconds int
	chatCapacity int
}

// NewRegistry creates an empty registry. New sessions start with clockSeconds
// on both clocks and a chat log bounded to chatCapacity entries.
func NewRegistry(oracle rules.Oracle, clockSeconds, chatCapacity int) *Registry {
	return &Registry{
		sessions:     make(map[string]*Session),
		oracle:       oracle,
		clockSeconds: clockSeconds,
		chatCapacity: chatCapacity,
	}
}

// Normalize case-folds a room code so "abc1" and "ABC1" name the same session.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GetOrCreate returns the session for the normalized code, constructing a
// fresh Waiting session if none exists. The second result reports creation.
func (r *Registry) GetOrCreate(code string) (*Session, bool) {
	code = Normalize(code)

	if session, ok := r.sessions[code]; ok {
		return session, false
	}

	session := &Session{
		ID:             code,
		Status:         StatusWaiting,
		Position:       r.oracle.NewPosition(),
		WhiteRemaining: r.clockSeconds,
		BlackRemaining: r.clockSeconds,
		Chat:           NewChatLog(r.chatCapacity),
	}
	r.sessions[code] = session

	return session, true
}

// Get returns the session for the normalized code, if present.
func (r *Registry) Get(code string) (*Session, bool) {
	session, ok := r.sessions[Normalize(code)]
	return session, ok
}

// Remove deletes the session. Removing an absent code is a no-op.
func (r *Registry) Remove(code string) {
	delete(r.sessions, Normalize(code))
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return len(r.sessions)
}
