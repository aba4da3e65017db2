package messages

import "github.com/pvoicu/chessroom/internal/color"

// OutboundMessage is how we wrap responses before sending
// them to the client
type OutboundMessage struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Outbound event names.
const (
	EventConnected          = "connected"
	EventGameJoined         = "gameJoined"
	EventGameStarted        = "gameStarted"
	EventMoveExecuted       = "moveExecuted"
	EventMoveRejected       = "moveRejected"
	EventGameEnded          = "gameEnded"
	EventTimerTick          = "timerTick"
	EventChatReceived       = "chatReceived"
	EventPlayerDisconnected = "playerDisconnected"
	EventError              = "error"
)

// Error codes carried by EventError payloads.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeNotInGame      = "NOT_IN_GAME"
	CodeGameFull       = "GAME_FULL"
	CodeGameNotFound   = "GAME_NOT_FOUND"
	CodeUnknownMessage = "UNKNOWN_MESSAGE"
)

// Move rejection reasons.
const (
	RejectGameNotActive = "game_not_active"
	RejectNotYourTurn   = "not_your_turn"
	RejectIllegal       = "illegal"
)

type ConnectedPayload struct {
	ConnectionID string `json:"connection_id"`
}

// GameStatePayload is the full snapshot clients render from. It is sent on
// join, on reconnect and alongside every move and game-end broadcast.
type GameStatePayload struct {
	FEN       string             `json:"fen"`
	PGN       string             `json:"pgn"`
	WhiteTime int                `json:"whiteTime"`
	BlackTime int                `json:"blackTime"`
	Turn      color.Color        `json:"turn"`
	Status    string             `json:"status"`
	Chat      []ChatEntryPayload `json:"chat"`
	Result    *ResultPayload     `json:"result"`
}

type ChatEntryPayload struct {
	Color     color.Color `json:"color"`
	Message   string      `json:"message"`
	Timestamp int64       `json:"timestamp"`
}

type ResultPayload struct {
	Winner string `json:"winner"`
	Reason string `json:"reason"`
}

type GameJoinedPayload struct {
	Color     color.Color      `json:"color"`
	Waiting   bool             `json:"waiting"`
	GameState GameStatePayload `json:"gameState"`
}

type GameStartedPayload struct {
	GameState GameStatePayload `json:"gameState"`
}

type MoveDetailPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
	SAN  string `json:"san"`
}

type MoveExecutedPayload struct {
	Move      MoveDetailPayload `json:"move"`
	GameState GameStatePayload  `json:"gameState"`
}

// MoveRejectedPayload goes to the submitting connection only.
type MoveRejectedPayload struct {
	Reason string `json:"reason"`
}

type GameEndedPayload struct {
	Result    ResultPayload    `json:"result"`
	GameState GameStatePayload `json:"gameState"`
}

type TimerTickPayload struct {
	WhiteRemaining int         `json:"whiteRemaining"`
	BlackRemaining int         `json:"blackRemaining"`
	Turn           color.Color `json:"turn"`
}

type PlayerDisconnectedPayload struct {
	Color                   color.Color `json:"color"`
	ReconnectTimeoutSeconds int         `json:"reconnectTimeoutSeconds"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
