package game

import (
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/pvoicu/chessroom/internal/color"
	"github.com/pvoicu/chessroom/pkg/config"
	"github.com/pvoicu/chessroom/pkg/events"
	"github.com/pvoicu/chessroom/pkg/messages"
	"github.com/pvoicu/chessroom/pkg/rules"
)

// Transport delivers outbound messages. Implemented by the websocket hub.
// Broadcasts for a session reach every connection in its room in the order
// they were emitted.
type Transport interface {
	JoinRoom(code string, connID uuid.UUID)
	LeaveRoom(code string, connID uuid.UUID)
	SendTo(connID uuid.UUID, msg messages.OutboundMessage)
	Broadcast(code string, msg messages.OutboundMessage)
}

// Manager is the session lifecycle controller. Every Handle method, and
// every timer callback, runs on the hub's single worker goroutine; session
// state is never read or written from anywhere else, so none of it is
// locked.
type Manager struct {
	cfg      *config.Config
	oracle   rules.Oracle
	clock    clockwork.Clock
	registry *Registry

	clocks *ClockRunner
	grace  *GraceSupervisor

	transport  Transport
	dispatcher Dispatcher
	publisher  *events.Publisher

	// bindings maps a connection to the session it currently plays in.
	// A connection is in at most one session at a time.
	bindings map[uuid.UUID]string

	// cleanups holds cancel channels for pending post-finish removals.
	cleanups map[string]chan struct{}

	logger *zap.Logger
}

// NewManager creates the controller. Bind must be called before any events
// are delivered.
func NewManager(
	cfg *config.Config,
	oracle rules.Oracle,
	clock clockwork.Clock,
	publisher *events.Publisher,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		cfg:       cfg,
		oracle:    oracle,
		clock:     clock,
		registry:  NewRegistry(oracle, cfg.InitialClockSeconds, cfg.ChatHistoryLimit),
		publisher: publisher,
		bindings:  make(map[uuid.UUID]string),
		cleanups:  make(map[string]chan struct{}),
		logger:    logger,
	}
}

// Bind wires the manager to its transport and to the worker loop that timer
// events are dispatched back into.
func (m *Manager) Bind(transport Transport, dispatcher Dispatcher) {
	m.transport = transport
	m.dispatcher = dispatcher
	m.clocks = NewClockRunner(m.clock, m.cfg.TickInterval(), dispatcher, m.handleClockTick, m.logger)
	m.grace = NewGraceSupervisor(m.clock, m.cfg.ReconnectGrace(), dispatcher, m.handleGraceExpiry, m.logger)
}

// Stats returns the live session and bound player counts.
func (m *Manager) Stats() (sessions, players int) {
	return m.registry.Len(), len(m.bindings)
}

// HandleJoin processes a joinGame request.
func (m *Manager) HandleJoin(connID uuid.UUID, payload messages.JoinGamePayload) {
	code := Normalize(payload.Code)
	if code == "" {
		m.sendError(connID, messages.CodeInvalidRequest, "game code is required")
		return
	}

	// Re-joining the session you are already seated in is rejected, not
	// merged; joining a different session first vacates the old seat.
	if current, ok := m.bindings[connID]; ok {
		if current == code {
			m.sendError(connID, messages.CodeInvalidRequest, "already in this game")
			return
		}
		m.unbind(connID)
	}

	session, created := m.registry.GetOrCreate(code)
	if created {
		m.logger.Info("created session", zap.String("session_id", code))
		m.publisher.Publish(events.Event{Type: events.EventSessionCreated, SessionID: code})
	}

	if session.Status != StatusWaiting {
		m.sendError(connID, messages.CodeGameFull, "this game is already full")
		return
	}

	var assigned color.Color
	switch {
	case !session.White.Bound:
		assigned = color.White
	case !session.Black.Bound:
		assigned = color.Black
	default:
		m.sendError(connID, messages.CodeGameFull, "this game is already full")
		return
	}

	session.BindingFor(assigned).Set(connID)
	m.bindings[connID] = code
	m.transport.JoinRoom(code, connID)

	started := session.Full()
	if started {
		session.Status = StatusInProgress
	}

	m.transport.SendTo(connID, messages.OutboundMessage{
		Event: messages.EventGameJoined,
		Payload: messages.GameJoinedPayload{
			Color:     assigned,
			Waiting:   session.Status == StatusWaiting,
			GameState: m.gameState(session),
		},
	})

	m.logger.Info("player joined",
		zap.String("session_id", code),
		zap.String("connection_id", connID.String()),
		zap.String("color", string(assigned)))

	if started {
		m.clocks.Start(code)
		m.transport.Broadcast(code, messages.OutboundMessage{
			Event:   messages.EventGameStarted,
			Payload: messages.GameStartedPayload{GameState: m.gameState(session)},
		})
		m.publisher.Publish(events.Event{Type: events.EventGameStarted, SessionID: code})
	}
}

// HandleMove processes a move request from a connection.
func (m *Manager) HandleMove(connID uuid.UUID, payload messages.MovePayload) {
	code, ok := m.bindings[connID]
	if !ok {
		m.sendError(connID, messages.CodeNotInGame, "you are not in a game")
		return
	}

	session, ok := m.registry.Get(code)
	if !ok {
		m.sendError(connID, messages.CodeNotInGame, "you are not in a game")
		return
	}

	if payload.From == "" || payload.To == "" {
		m.sendError(connID, messages.CodeInvalidRequest, "move coordinates are required")
		return
	}

	if session.Status != StatusInProgress {
		m.rejectMove(connID, messages.RejectGameNotActive)
		return
	}

	side, ok := session.ColorOf(connID)
	if !ok {
		m.sendError(connID, messages.CodeNotInGame, "you are not in a game")
		return
	}

	if side != m.oracle.CurrentTurn(session.Position) {
		m.rejectMove(connID, messages.RejectNotYourTurn)
		return
	}

	accepted, err := m.oracle.ApplyMove(session.Position, rules.MoveRequest{
		From:      payload.From,
		To:        payload.To,
		Promotion: payload.Promotion,
	})
	if err != nil {
		m.rejectMove(connID, messages.RejectIllegal)
		return
	}

	session.Position = accepted.Position
	session.LastActivity = m.clock.Now()

	m.logger.Info("move executed",
		zap.String("session_id", code),
		zap.String("san", accepted.SAN))

	m.transport.Broadcast(code, messages.OutboundMessage{
		Event: messages.EventMoveExecuted,
		Payload: messages.MoveExecutedPayload{
			Move: messages.MoveDetailPayload{
				From: payload.From,
				To:   payload.To,
				SAN:  accepted.SAN,
			},
			GameState: m.gameState(session),
		},
	})

	if m.oracle.IsGameOver(session.Position) {
		m.finish(session, m.verdictResult(session, side))
	}
}

// verdictResult maps the oracle's game-over flags to a result. side is the
// color that just moved.
func (m *Manager) verdictResult(session *Session, side color.Color) Result {
	pos := session.Position
	switch {
	case m.oracle.IsCheckmate(pos):
		return Result{Winner: string(side), Reason: ReasonCheckmate}
	case m.oracle.IsStalemate(pos):
		return Result{Winner: WinnerDraw, Reason: ReasonStalemate}
	case m.oracle.IsThreefoldRepetition(pos):
		return Result{Winner: WinnerDraw, Reason: ReasonThreefoldRepetition}
	case m.oracle.IsInsufficientMaterial(pos):
		return Result{Winner: WinnerDraw, Reason: ReasonInsufficientMaterial}
	default:
		return Result{Winner: WinnerDraw, Reason: ReasonDraw}
	}
}

// HandleChat appends a chat line and broadcasts it. Unbound senders and
// empty messages are ignored. Chat stays open after the game finishes.
func (m *Manager) HandleChat(connID uuid.UUID, payload messages.ChatMessagePayload) {
	code, ok := m.bindings[connID]
	if !ok {
		return
	}

	session, ok := m.registry.Get(code)
	if !ok {
		return
	}

	side, ok := session.ColorOf(connID)
	if !ok {
		return
	}

	text := truncateMessage(payload.Msg, m.cfg.ChatMessageLimit)
	if text == "" {
		return
	}

	entry := ChatEntry{
		Color:     side,
		Message:   text,
		Timestamp: m.clock.Now(),
	}
	session.Chat.Append(entry)

	m.transport.Broadcast(code, messages.OutboundMessage{
		Event: messages.EventChatReceived,
		Payload: messages.ChatEntryPayload{
			Color:     entry.Color,
			Message:   entry.Message,
			Timestamp: entry.Timestamp.UnixMilli(),
		},
	})
}

// HandleDisconnect processes an abrupt connection loss.
func (m *Manager) HandleDisconnect(connID uuid.UUID) {
	m.unbind(connID)
}

// unbind vacates the connection's seat and applies the per-state disconnect
// policy. Shared by socket closes and seat eviction on cross-session joins.
func (m *Manager) unbind(connID uuid.UUID) {
	code, ok := m.bindings[connID]
	if !ok {
		return
	}
	delete(m.bindings, connID)

	session, ok := m.registry.Get(code)
	if !ok {
		return
	}

	side, ok := session.ColorOf(connID)
	if !ok {
		return
	}

	session.BindingFor(side).Clear()
	m.transport.LeaveRoom(code, connID)

	m.logger.Info("player left",
		zap.String("session_id", code),
		zap.String("color", string(side)))

	switch session.Status {
	case StatusWaiting:
		// No opponent to preserve the session for.
		if session.Empty() {
			m.removeSession(code)
		}
	case StatusInProgress:
		m.transport.Broadcast(code, messages.OutboundMessage{
			Event: messages.EventPlayerDisconnected,
			Payload: messages.PlayerDisconnectedPayload{
				Color:                   side,
				ReconnectTimeoutSeconds: m.cfg.ReconnectTimeoutMs / 1000,
			},
		})
		m.grace.Start(code, side)
	case StatusFinished:
		if session.Empty() {
			m.removeSession(code)
		}
	}
}

// HandleReconnect restores a vacated seat to a new connection while its
// grace window is open.
func (m *Manager) HandleReconnect(connID uuid.UUID, payload messages.ReconnectPayload) {
	code := Normalize(payload.GameCode)
	if code == "" {
		m.sendError(connID, messages.CodeInvalidRequest, "game code is required")
		return
	}

	session, ok := m.registry.Get(code)
	if !ok || session.Status != StatusInProgress {
		m.sendError(connID, messages.CodeGameNotFound, "game not found")
		return
	}

	var claimed color.Color
	var found bool
	for _, side := range []color.Color{color.White, color.Black} {
		if !session.BindingFor(side).Bound && m.grace.Pending(code, side) {
			claimed = side
			found = true
			break
		}
	}
	if !found {
		m.sendError(connID, messages.CodeGameNotFound, "game not found")
		return
	}

	if current, ok := m.bindings[connID]; ok && current != code {
		m.unbind(connID)
	}

	m.grace.Cancel(code, claimed)
	session.BindingFor(claimed).Set(connID)
	m.bindings[connID] = code
	m.transport.JoinRoom(code, connID)

	// The rejoining client gets a full snapshot, not an event replay.
	m.transport.SendTo(connID, messages.OutboundMessage{
		Event: messages.EventGameJoined,
		Payload: messages.GameJoinedPayload{
			Color:     claimed,
			Waiting:   false,
			GameState: m.gameState(session),
		},
	})

	m.logger.Info("player reconnected",
		zap.String("session_id", code),
		zap.String("color", string(claimed)))
}

// handleClockTick decrements the clock of the side on move. Runs once per
// tick interval per InProgress session, on the worker goroutine.
func (m *Manager) handleClockTick(code string) {
	session, ok := m.registry.Get(code)
	if !ok || session.Status != StatusInProgress {
		// The session ended between ticks; clean up silently.
		m.clocks.Stop(code)
		return
	}

	turn := m.oracle.CurrentTurn(session.Position)
	session.LastActivity = m.clock.Now()

	var remaining int
	if turn == color.White {
		session.WhiteRemaining = max(0, session.WhiteRemaining-1)
		remaining = session.WhiteRemaining
	} else {
		session.BlackRemaining = max(0, session.BlackRemaining-1)
		remaining = session.BlackRemaining
	}

	if remaining == 0 {
		m.finish(session, Result{Winner: string(turn.Opp()), Reason: ReasonTimeout})
		return
	}

	m.transport.Broadcast(code, messages.OutboundMessage{
		Event: messages.EventTimerTick,
		Payload: messages.TimerTickPayload{
			WhiteRemaining: session.WhiteRemaining,
			BlackRemaining: session.BlackRemaining,
			Turn:           turn,
		},
	})
}

// handleGraceExpiry forfeits the match to the side that stayed connected.
func (m *Manager) handleGraceExpiry(code string, side color.Color) {
	session, ok := m.registry.Get(code)
	if !ok || session.Status != StatusInProgress {
		return
	}
	if session.BindingFor(side).Bound {
		return
	}

	m.finish(session, Result{Winner: string(side.Opp()), Reason: ReasonDisconnect})
}

// finish moves the session to Finished exactly once, fixes its result,
// stops its timers and broadcasts the outcome.
func (m *Manager) finish(session *Session, result Result) {
	if session.Result != nil {
		return
	}

	session.Status = StatusFinished
	session.Result = &result

	m.clocks.Stop(session.ID)
	m.grace.CancelAll(session.ID)

	m.logger.Info("game ended",
		zap.String("session_id", session.ID),
		zap.String("winner", result.Winner),
		zap.String("reason", result.Reason))

	m.transport.Broadcast(session.ID, messages.OutboundMessage{
		Event: messages.EventGameEnded,
		Payload: messages.GameEndedPayload{
			Result:    messages.ResultPayload{Winner: result.Winner, Reason: result.Reason},
			GameState: m.gameState(session),
		},
	})

	m.publisher.Publish(events.Event{
		Type:      events.EventGameEnded,
		SessionID: session.ID,
		Payload:   result,
	})

	if session.Empty() {
		m.removeSession(session.ID)
		return
	}
	m.scheduleCleanup(session.ID)
}

// scheduleCleanup removes the finished session after the retention window.
func (m *Manager) scheduleCleanup(code string) {
	if _, ok := m.cleanups[code]; ok {
		return
	}

	timer := m.clock.NewTimer(m.cfg.Retention())
	cancel := make(chan struct{})
	m.cleanups[code] = cancel

	go func() {
		select {
		case <-timer.Chan():
			m.dispatcher.Dispatch(func() {
				if m.cleanups[code] != cancel {
					return
				}
				delete(m.cleanups, code)
				m.removeSession(code)
			})
		case <-cancel:
			stopAndDrainTimer(timer)
		}
	}()
}

// removeSession tears down all state owned for the session. Idempotent.
func (m *Manager) removeSession(code string) {
	session, ok := m.registry.Get(code)
	if !ok {
		return
	}

	m.clocks.Stop(code)
	m.grace.CancelAll(code)

	if cancel, ok := m.cleanups[code]; ok {
		close(cancel)
		delete(m.cleanups, code)
	}

	for _, binding := range []*Binding{&session.White, &session.Black} {
		if binding.Bound {
			delete(m.bindings, binding.ConnID)
			m.transport.LeaveRoom(code, binding.ConnID)
			binding.Clear()
		}
	}

	m.registry.Remove(code)

	m.logger.Info("removed session", zap.String("session_id", code))
	m.publisher.Publish(events.Event{Type: events.EventSessionRemoved, SessionID: code})
}

func (m *Manager) gameState(session *Session) messages.GameStatePayload {
	entries := session.Chat.Entries()
	chat := make([]messages.ChatEntryPayload, 0, len(entries))
	for _, entry := range entries {
		chat = append(chat, messages.ChatEntryPayload{
			Color:     entry.Color,
			Message:   entry.Message,
			Timestamp: entry.Timestamp.UnixMilli(),
		})
	}

	var result *messages.ResultPayload
	if session.Result != nil {
		result = &messages.ResultPayload{
			Winner: session.Result.Winner,
			Reason: session.Result.Reason,
		}
	}

	return messages.GameStatePayload{
		FEN:       session.Position.FEN(),
		PGN:       session.Position.PGN(),
		WhiteTime: session.WhiteRemaining,
		BlackTime: session.BlackRemaining,
		Turn:      m.oracle.CurrentTurn(session.Position),
		Status:    string(session.Status),
		Chat:      chat,
		Result:    result,
	}
}

func (m *Manager) sendError(connID uuid.UUID, code, message string) {
	m.transport.SendTo(connID, messages.OutboundMessage{
		Event:   messages.EventError,
		Payload: messages.ErrorPayload{Code: code, Message: message},
	})
}

func (m *Manager) rejectMove(connID uuid.UUID, reason string) {
	m.transport.SendTo(connID, messages.OutboundMessage{
		Event:   messages.EventMoveRejected,
		Payload: messages.MoveRejectedPayload{Reason: reason},
	})
}

// truncateMessage trims whitespace and caps the message at limit runes.
func truncateMessage(msg string, limit int) string {
	trimmed := []rune(strings.TrimSpace(msg))
	if len(trimmed) > limit {
		trimmed = trimmed[:limit]
	}
	return string(trimmed)
}
