package game

import (
	"time"

	"github.com/pvoicu/chessroom/internal/color"
)

// ChatEntry is one chat line; immutable once appended.
type ChatEntry struct {
	Color     color.Color
	Message   string
	Timestamp time.Time
}

// ChatLog is a bounded, insertion-ordered log. When full, the oldest entry
// is evicted first.
type ChatLog struct {
	entries  []ChatEntry
	capacity int
}

// NewChatLog creates an empty log holding at most capacity entries.
func NewChatLog(capacity int) *ChatLog {
	return &ChatLog{capacity: capacity}
}

// Append adds an entry, evicting the oldest if the log is at capacity.
func (l *ChatLog) Append(entry ChatEntry) {
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[1:]
	}
}

// Entries returns a copy of the log, oldest first.
func (l *ChatLog) Entries() []ChatEntry {
	out := make([]ChatEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries currently held.
func (l *ChatLog) Len() int {
	return len(l.entries)
}
