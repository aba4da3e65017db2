package server

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pvoicu/chessroom/pkg/game"
	"github.com/pvoicu/chessroom/pkg/messages"
)

// InboundHubMessage are the messages that the hub receives
type InboundHubMessage struct {
	Conn    *Connection             // who sent it
	Message messages.InboundMessage // decoded envelope
}

// Hub keeps track of all active connections and their room membership, and
// is the single worker the whole game core runs on: client messages,
// registrations and dispatched timer tasks are all drained by Run, one at a
// time, so session state is never touched concurrently.
type Hub struct {
	connections map[uuid.UUID]*Connection
	rooms       map[string]map[uuid.UUID]*Connection

	register   chan *Connection
	unregister chan *Connection
	inbound    chan InboundHubMessage
	tasks      chan func()

	done chan struct{}

	manager *game.Manager
	logger  *zap.Logger
}

// NewHub creates the hub and binds the manager to it.
func NewHub(manager *game.Manager, logger *zap.Logger) *Hub {
	h := &Hub{
		connections: make(map[uuid.UUID]*Connection),
		rooms:       make(map[string]map[uuid.UUID]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		inbound:     make(chan InboundHubMessage),
		tasks:       make(chan func(), 64),
		done:        make(chan struct{}),
		manager:     manager,
		logger:      logger,
	}

	manager.Bind(h, h)

	return h
}

// Run is the main execution of the hub
func (h *Hub) Run() {
	status := time.NewTicker(time.Minute)
	defer status.Stop()

	for {
		select {
		case conn := <-h.register:
			h.registerConnection(conn)

		case conn := <-h.unregister:
			h.unregisterConnection(conn)

		case msg := <-h.inbound:
			h.handleInbound(msg)

		case task := <-h.tasks:
			task()

		case <-status.C:
			sessions, players := h.manager.Stats()
			h.logger.Info("server status",
				zap.Int("active_sessions", sessions),
				zap.Int("bound_players", players))

		case <-h.done:
			return
		}
	}
}

// Register hands a new connection to the worker loop.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister hands a closed connection to the worker loop.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Dispatch implements game.Dispatcher: timer callbacks re-enter the worker
// loop like any other event.
func (h *Hub) Dispatch(task func()) {
	select {
	case h.tasks <- task:
	case <-h.done:
	}
}

// Shutdown stops the worker loop.
func (h *Hub) Shutdown() {
	close(h.done)
}

// JoinRoom implements game.Transport.
func (h *Hub) JoinRoom(code string, connID uuid.UUID) {
	conn, ok := h.connections[connID]
	if !ok {
		return
	}
	room, ok := h.rooms[code]
	if !ok {
		room = make(map[uuid.UUID]*Connection)
		h.rooms[code] = room
	}
	room[connID] = conn
}

// LeaveRoom implements game.Transport.
func (h *Hub) LeaveRoom(code string, connID uuid.UUID) {
	room, ok := h.rooms[code]
	if !ok {
		return
	}
	delete(room, connID)
	if len(room) == 0 {
		delete(h.rooms, code)
	}
}

// SendTo implements game.Transport: direct delivery to one connection.
func (h *Hub) SendTo(connID uuid.UUID, msg messages.OutboundMessage) {
	if conn, ok := h.connections[connID]; ok {
		conn.SendJSON(msg)
	}
}

// Broadcast implements game.Transport: room-scoped fan-out.
func (h *Hub) Broadcast(code string, msg messages.OutboundMessage) {
	room, ok := h.rooms[code]
	if !ok {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("error marshaling broadcast", zap.Error(err))
		return
	}

	for _, conn := range room {
		conn.Send(data)
	}
}

func (h *Hub) registerConnection(conn *Connection) {
	h.connections[conn.ID] = conn

	h.logger.Info("connection registered",
		zap.String("connection_id", conn.ID.String()),
		zap.Int("total", len(h.connections)))

	conn.SendJSON(messages.OutboundMessage{
		Event:   messages.EventConnected,
		Payload: messages.ConnectedPayload{ConnectionID: conn.ID.String()},
	})
}

func (h *Hub) unregisterConnection(conn *Connection) {
	if _, ok := h.connections[conn.ID]; !ok {
		return
	}

	h.manager.HandleDisconnect(conn.ID)

	delete(h.connections, conn.ID)
	for code, room := range h.rooms {
		delete(room, conn.ID)
		if len(room) == 0 {
			delete(h.rooms, code)
		}
	}
	close(conn.send)

	h.logger.Info("connection unregistered",
		zap.String("connection_id", conn.ID.String()),
		zap.Int("total", len(h.connections)))
}

// handleInbound decodes and routes one client message.
func (h *Hub) handleInbound(msg InboundHubMessage) {
	switch msg.Message.Type {
	case messages.TypeJoinGame:
		var payload messages.JoinGamePayload
		if err := json.Unmarshal(msg.Message.Payload, &payload); err != nil {
			h.sendError(msg.Conn, messages.CodeInvalidRequest, "invalid joinGame payload")
			return
		}
		h.manager.HandleJoin(msg.Conn.ID, payload)

	case messages.TypeMove:
		var payload messages.MovePayload
		if err := json.Unmarshal(msg.Message.Payload, &payload); err != nil {
			h.sendError(msg.Conn, messages.CodeInvalidRequest, "invalid move payload")
			return
		}
		h.manager.HandleMove(msg.Conn.ID, payload)

	case messages.TypeChatMessage:
		var payload messages.ChatMessagePayload
		if err := json.Unmarshal(msg.Message.Payload, &payload); err != nil {
			h.sendError(msg.Conn, messages.CodeInvalidRequest, "invalid chatMessage payload")
			return
		}
		h.manager.HandleChat(msg.Conn.ID, payload)

	case messages.TypeReconnect:
		var payload messages.ReconnectPayload
		if err := json.Unmarshal(msg.Message.Payload, &payload); err != nil {
			h.sendError(msg.Conn, messages.CodeInvalidRequest, "invalid reconnect payload")
			return
		}
		h.manager.HandleReconnect(msg.Conn.ID, payload)

	default:
		h.sendError(msg.Conn, messages.CodeUnknownMessage, "unknown message type")
	}
}

func (h *Hub) sendError(conn *Connection, code, message string) {
	conn.SendJSON(messages.OutboundMessage{
		Event:   messages.EventError,
		Payload: messages.ErrorPayload{Code: code, Message: message},
	})
}
