package messages

import "encoding/json"

// InboundMessage is the generic wrapper for messages coming from the client.
// The "type" field tells us the action; "payload" is the data we parse further.
type InboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Inbound message types.
const (
	TypeJoinGame    = "joinGame"
	TypeMove        = "move"
	TypeChatMessage = "chatMessage"
	TypeReconnect   = "reconnect"
)

// JoinGamePayload asks to join (or create) the session with the given room code.
type JoinGamePayload struct {
	Code string `json:"code"`
}

// MovePayload proposes a move in coordinate form.
type MovePayload struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// ChatMessagePayload carries one chat line.
type ChatMessagePayload struct {
	Msg string `json:"msg"`
}

// ReconnectPayload claims a vacated seat in a session after a drop.
type ReconnectPayload struct {
	GameCode string `json:"gameCode"`
}
