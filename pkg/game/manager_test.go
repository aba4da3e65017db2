package game

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pvoicu/chessroom/internal/color"
	"github.com/pvoicu/chessroom/pkg/config"
	"github.com/pvoicu/chessroom/pkg/events"
	"github.com/pvoicu/chessroom/pkg/messages"
	"github.com/pvoicu/chessroom/pkg/rules"
)

type directMsg struct {
	connID uuid.UUID
	msg    messages.OutboundMessage
}

type broadcastMsg struct {
	code string
	msg  messages.OutboundMessage
}

// fakeTransport records every delivery so tests can assert on ordering and
// addressing.
type fakeTransport struct {
	directs    []directMsg
	broadcasts []broadcastMsg
	rooms      map[string]map[uuid.UUID]bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{rooms: make(map[string]map[uuid.UUID]bool)}
}

func (ft *fakeTransport) JoinRoom(code string, connID uuid.UUID) {
	if ft.rooms[code] == nil {
		ft.rooms[code] = make(map[uuid.UUID]bool)
	}
	ft.rooms[code][connID] = true
}

func (ft *fakeTransport) LeaveRoom(code string, connID uuid.UUID) {
	delete(ft.rooms[code], connID)
}

func (ft *fakeTransport) SendTo(connID uuid.UUID, msg messages.OutboundMessage) {
	ft.directs = append(ft.directs, directMsg{connID: connID, msg: msg})
}

func (ft *fakeTransport) Broadcast(code string, msg messages.OutboundMessage) {
	ft.broadcasts = append(ft.broadcasts, broadcastMsg{code: code, msg: msg})
}

func (ft *fakeTransport) inRoom(code string, connID uuid.UUID) bool {
	return ft.rooms[code][connID]
}

func (ft *fakeTransport) lastDirectTo(connID uuid.UUID) (messages.OutboundMessage, bool) {
	for i := len(ft.directs) - 1; i >= 0; i-- {
		if ft.directs[i].connID == connID {
			return ft.directs[i].msg, true
		}
	}
	return messages.OutboundMessage{}, false
}

func (ft *fakeTransport) broadcastEvents(code string) []string {
	var out []string
	for _, b := range ft.broadcasts {
		if b.code == code {
			out = append(out, b.msg.Event)
		}
	}
	return out
}

func (ft *fakeTransport) lastBroadcast(code, event string) (messages.OutboundMessage, bool) {
	for i := len(ft.broadcasts) - 1; i >= 0; i-- {
		if ft.broadcasts[i].code == code && ft.broadcasts[i].msg.Event == event {
			return ft.broadcasts[i].msg, true
		}
	}
	return messages.OutboundMessage{}, false
}

type managerFixture struct {
	m          *Manager
	transport  *fakeTransport
	dispatcher chanDispatcher
	clock      *clockwork.FakeClock
}

func newManagerFixture(t *testing.T) *managerFixture {
	t.Helper()

	cfg := config.Default()
	fc := clockwork.NewFakeClock()
	m := NewManager(cfg, rules.NewChessOracle(), fc, events.NewPublisher(), zap.NewNop())

	transport := newFakeTransport()
	dispatcher := make(chanDispatcher, 64)
	m.Bind(transport, dispatcher)

	return &managerFixture{m: m, transport: transport, dispatcher: dispatcher, clock: fc}
}

// joinBoth seats two fresh connections and returns them (white, black).
func (f *managerFixture) joinBoth(t *testing.T, code string) (uuid.UUID, uuid.UUID) {
	t.Helper()
	white, black := uuid.New(), uuid.New()
	f.m.HandleJoin(white, messages.JoinGamePayload{Code: code})
	f.m.HandleJoin(black, messages.JoinGamePayload{Code: code})

	session, ok := f.m.registry.Get(code)
	require.True(t, ok)
	require.Equal(t, StatusInProgress, session.Status)

	return white, black
}

func TestJoinAssignsWhiteThenBlack(t *testing.T) {
	f := newManagerFixture(t)
	white, black := uuid.New(), uuid.New()

	f.m.HandleJoin(white, messages.JoinGamePayload{Code: "abc1"})

	msg, ok := f.transport.lastDirectTo(white)
	require.True(t, ok)
	require.Equal(t, messages.EventGameJoined, msg.Event)
	joined := msg.Payload.(messages.GameJoinedPayload)
	assert.Equal(t, color.White, joined.Color)
	assert.True(t, joined.Waiting)
	assert.Equal(t, string(StatusWaiting), joined.GameState.Status)

	f.m.HandleJoin(black, messages.JoinGamePayload{Code: "ABC1"})

	msg, ok = f.transport.lastDirectTo(black)
	require.True(t, ok)
	joined = msg.Payload.(messages.GameJoinedPayload)
	assert.Equal(t, color.Black, joined.Color)
	assert.False(t, joined.Waiting)

	// Both players share the room and received the start broadcast.
	assert.True(t, f.transport.inRoom("ABC1", white))
	assert.True(t, f.transport.inRoom("ABC1", black))
	_, ok = f.transport.lastBroadcast("ABC1", messages.EventGameStarted)
	assert.True(t, ok)
	assert.True(t, f.m.clocks.Running("ABC1"))
}

func TestThirdJoinerRejectedGameFull(t *testing.T) {
	f := newManagerFixture(t)
	f.joinBoth(t, "ABC1")

	third := uuid.New()
	f.m.HandleJoin(third, messages.JoinGamePayload{Code: "abc1"})

	msg, ok := f.transport.lastDirectTo(third)
	require.True(t, ok)
	require.Equal(t, messages.EventError, msg.Event)
	assert.Equal(t, messages.CodeGameFull, msg.Payload.(messages.ErrorPayload).Code)
	assert.False(t, f.transport.inRoom("ABC1", third))
}

func TestJoinWithoutCodeRejected(t *testing.T) {
	f := newManagerFixture(t)
	conn := uuid.New()

	f.m.HandleJoin(conn, messages.JoinGamePayload{Code: "   "})

	msg, ok := f.transport.lastDirectTo(conn)
	require.True(t, ok)
	require.Equal(t, messages.EventError, msg.Event)
	assert.Equal(t, messages.CodeInvalidRequest, msg.Payload.(messages.ErrorPayload).Code)
}

func TestRejoiningSameSessionRejected(t *testing.T) {
	f := newManagerFixture(t)
	white := uuid.New()

	f.m.HandleJoin(white, messages.JoinGamePayload{Code: "ABC1"})
	f.m.HandleJoin(white, messages.JoinGamePayload{Code: "abc1"})

	msg, _ := f.transport.lastDirectTo(white)
	require.Equal(t, messages.EventError, msg.Event)

	// The seat must not have been vacated by the rejected re-join.
	session, _ := f.m.registry.Get("ABC1")
	assert.True(t, session.White.Bound)
	assert.Equal(t, white, session.White.ConnID)
}

func TestJoiningAnotherSessionVacatesOldSeat(t *testing.T) {
	f := newManagerFixture(t)
	conn := uuid.New()

	f.m.HandleJoin(conn, messages.JoinGamePayload{Code: "AAAA"})
	f.m.HandleJoin(conn, messages.JoinGamePayload{Code: "BBBB"})

	// The waiting session emptied out and was destroyed.
	_, ok := f.m.registry.Get("AAAA")
	assert.False(t, ok)

	session, ok := f.m.registry.Get("BBBB")
	require.True(t, ok)
	assert.Equal(t, conn, session.White.ConnID)
}

func TestMoveWhenNotInGame(t *testing.T) {
	f := newManagerFixture(t)
	conn := uuid.New()

	f.m.HandleMove(conn, messages.MovePayload{From: "e2", To: "e4"})

	msg, ok := f.transport.lastDirectTo(conn)
	require.True(t, ok)
	require.Equal(t, messages.EventError, msg.Event)
	assert.Equal(t, messages.CodeNotInGame, msg.Payload.(messages.ErrorPayload).Code)
}

func TestMoveBeforeGameStartsRejected(t *testing.T) {
	f := newManagerFixture(t)
	white := uuid.New()
	f.m.HandleJoin(white, messages.JoinGamePayload{Code: "ABC1"})

	f.m.HandleMove(white, messages.MovePayload{From: "e2", To: "e4"})

	msg, _ := f.transport.lastDirectTo(white)
	require.Equal(t, messages.EventMoveRejected, msg.Event)
	assert.Equal(t, messages.RejectGameNotActive, msg.Payload.(messages.MoveRejectedPayload).Reason)
}

func TestMoveOutOfTurnRejectedAndPositionUnchanged(t *testing.T) {
	f := newManagerFixture(t)
	_, black := f.joinBoth(t, "ABC1")

	session, _ := f.m.registry.Get("ABC1")
	before := session.Position.FEN()
	broadcastsBefore := len(f.transport.broadcasts)

	f.m.HandleMove(black, messages.MovePayload{From: "e7", To: "e5"})

	msg, _ := f.transport.lastDirectTo(black)
	require.Equal(t, messages.EventMoveRejected, msg.Event)
	assert.Equal(t, messages.RejectNotYourTurn, msg.Payload.(messages.MoveRejectedPayload).Reason)
	assert.Equal(t, before, session.Position.FEN())
	assert.Len(t, f.transport.broadcasts, broadcastsBefore, "rejection must not broadcast")
}

func TestIllegalMoveRejected(t *testing.T) {
	f := newManagerFixture(t)
	white, _ := f.joinBoth(t, "ABC1")

	session, _ := f.m.registry.Get("ABC1")
	before := session.Position.FEN()

	f.m.HandleMove(white, messages.MovePayload{From: "e2", To: "e6"})

	msg, _ := f.transport.lastDirectTo(white)
	require.Equal(t, messages.EventMoveRejected, msg.Event)
	assert.Equal(t, messages.RejectIllegal, msg.Payload.(messages.MoveRejectedPayload).Reason)
	assert.Equal(t, before, session.Position.FEN())
}

func TestMoveMissingCoordinatesRejected(t *testing.T) {
	f := newManagerFixture(t)
	white, _ := f.joinBoth(t, "ABC1")

	f.m.HandleMove(white, messages.MovePayload{From: "e2"})

	msg, _ := f.transport.lastDirectTo(white)
	require.Equal(t, messages.EventError, msg.Event)
	assert.Equal(t, messages.CodeInvalidRequest, msg.Payload.(messages.ErrorPayload).Code)
}

func TestLegalMoveBroadcastsExecutedState(t *testing.T) {
	f := newManagerFixture(t)
	white, _ := f.joinBoth(t, "ABC1")

	f.m.HandleMove(white, messages.MovePayload{From: "e2", To: "e4"})

	msg, ok := f.transport.lastBroadcast("ABC1", messages.EventMoveExecuted)
	require.True(t, ok)
	executed := msg.Payload.(messages.MoveExecutedPayload)
	assert.Equal(t, "e4", executed.Move.SAN)
	assert.Equal(t, color.Black, executed.GameState.Turn)
	assert.Contains(t, executed.GameState.FEN, "4P3")
	// The clock only changes on ticks, never on moves.
	assert.Equal(t, 600, executed.GameState.WhiteTime)
	assert.Equal(t, 600, executed.GameState.BlackTime)
}

func TestCheckmateFinishesSession(t *testing.T) {
	f := newManagerFixture(t)
	white, black := f.joinBoth(t, "ABC1")

	f.m.HandleMove(white, messages.MovePayload{From: "f2", To: "f3"})
	f.m.HandleMove(black, messages.MovePayload{From: "e7", To: "e5"})
	f.m.HandleMove(white, messages.MovePayload{From: "g2", To: "g4"})
	f.m.HandleMove(black, messages.MovePayload{From: "d8", To: "h4"})

	msg, ok := f.transport.lastBroadcast("ABC1", messages.EventGameEnded)
	require.True(t, ok)
	ended := msg.Payload.(messages.GameEndedPayload)
	assert.Equal(t, string(color.Black), ended.Result.Winner)
	assert.Equal(t, ReasonCheckmate, ended.Result.Reason)

	session, _ := f.m.registry.Get("ABC1")
	assert.Equal(t, StatusFinished, session.Status)
	assert.False(t, f.m.clocks.Running("ABC1"))

	// Further moves bounce off the finished session.
	f.m.HandleMove(white, messages.MovePayload{From: "a2", To: "a3"})
	rej, _ := f.transport.lastDirectTo(white)
	require.Equal(t, messages.EventMoveRejected, rej.Event)
	assert.Equal(t, messages.RejectGameNotActive, rej.Payload.(messages.MoveRejectedPayload).Reason)
}

func TestResultIsImmutableOnceSet(t *testing.T) {
	f := newManagerFixture(t)
	f.joinBoth(t, "ABC1")

	session, _ := f.m.registry.Get("ABC1")
	f.m.finish(session, Result{Winner: string(color.White), Reason: ReasonTimeout})
	f.m.finish(session, Result{Winner: string(color.Black), Reason: ReasonDisconnect})

	assert.Equal(t, string(color.White), session.Result.Winner)
	assert.Equal(t, ReasonTimeout, session.Result.Reason)
}

func TestChatAppendsAndBroadcasts(t *testing.T) {
	f := newManagerFixture(t)
	white, _ := f.joinBoth(t, "ABC1")

	f.m.HandleChat(white, messages.ChatMessagePayload{Msg: "  good luck  "})

	msg, ok := f.transport.lastBroadcast("ABC1", messages.EventChatReceived)
	require.True(t, ok)
	entry := msg.Payload.(messages.ChatEntryPayload)
	assert.Equal(t, color.White, entry.Color)
	assert.Equal(t, "good luck", entry.Message)

	session, _ := f.m.registry.Get("ABC1")
	assert.Equal(t, 1, session.Chat.Len())
}

func TestChatCapsMessageLength(t *testing.T) {
	f := newManagerFixture(t)
	white, _ := f.joinBoth(t, "ABC1")

	f.m.HandleChat(white, messages.ChatMessagePayload{Msg: strings.Repeat("x", 500)})

	msg, ok := f.transport.lastBroadcast("ABC1", messages.EventChatReceived)
	require.True(t, ok)
	assert.Len(t, msg.Payload.(messages.ChatEntryPayload).Message, config.DefaultChatMessageLimit)
}

func TestChatIgnoresEmptyAndUnbound(t *testing.T) {
	f := newManagerFixture(t)
	white, _ := f.joinBoth(t, "ABC1")

	f.m.HandleChat(white, messages.ChatMessagePayload{Msg: "   "})
	f.m.HandleChat(uuid.New(), messages.ChatMessagePayload{Msg: "hi"})

	_, ok := f.transport.lastBroadcast("ABC1", messages.EventChatReceived)
	assert.False(t, ok)
}

func TestChatStaysOpenAfterFinish(t *testing.T) {
	f := newManagerFixture(t)
	white, _ := f.joinBoth(t, "ABC1")

	session, _ := f.m.registry.Get("ABC1")
	f.m.finish(session, Result{Winner: string(color.White), Reason: ReasonTimeout})

	f.m.HandleChat(white, messages.ChatMessagePayload{Msg: "gg"})

	msg, ok := f.transport.lastBroadcast("ABC1", messages.EventChatReceived)
	require.True(t, ok)
	assert.Equal(t, "gg", msg.Payload.(messages.ChatEntryPayload).Message)
}

func TestDisconnectWhileWaitingDestroysSession(t *testing.T) {
	f := newManagerFixture(t)
	white := uuid.New()
	f.m.HandleJoin(white, messages.JoinGamePayload{Code: "ABC1"})

	f.m.HandleDisconnect(white)

	_, ok := f.m.registry.Get("ABC1")
	assert.False(t, ok)
	sessions, players := f.m.Stats()
	assert.Zero(t, sessions)
	assert.Zero(t, players)
}

func TestDisconnectInProgressStartsGrace(t *testing.T) {
	f := newManagerFixture(t)
	_, black := f.joinBoth(t, "ABC1")

	f.m.HandleDisconnect(black)

	msg, ok := f.transport.lastBroadcast("ABC1", messages.EventPlayerDisconnected)
	require.True(t, ok)
	payload := msg.Payload.(messages.PlayerDisconnectedPayload)
	assert.Equal(t, color.Black, payload.Color)
	assert.Equal(t, 30, payload.ReconnectTimeoutSeconds)

	session, _ := f.m.registry.Get("ABC1")
	assert.Equal(t, StatusInProgress, session.Status, "session survives the drop")
	assert.False(t, session.Black.Bound)
	assert.True(t, f.m.grace.Pending("ABC1", color.Black))
}

func TestGraceExpiryForfeitsToRemainingSide(t *testing.T) {
	f := newManagerFixture(t)
	_, black := f.joinBoth(t, "ABC1")

	f.m.HandleDisconnect(black)
	f.m.handleGraceExpiry("ABC1", color.Black)

	msg, ok := f.transport.lastBroadcast("ABC1", messages.EventGameEnded)
	require.True(t, ok)
	ended := msg.Payload.(messages.GameEndedPayload)
	assert.Equal(t, string(color.White), ended.Result.Winner)
	assert.Equal(t, ReasonDisconnect, ended.Result.Reason)
	assert.False(t, f.m.clocks.Running("ABC1"))
}

func TestReconnectRestoresSeat(t *testing.T) {
	f := newManagerFixture(t)
	white, black := f.joinBoth(t, "ABC1")
	f.m.HandleMove(white, messages.MovePayload{From: "e2", To: "e4"})

	f.m.HandleDisconnect(black)

	replacement := uuid.New()
	f.m.HandleReconnect(replacement, messages.ReconnectPayload{GameCode: "abc1"})

	msg, ok := f.transport.lastDirectTo(replacement)
	require.True(t, ok)
	require.Equal(t, messages.EventGameJoined, msg.Event)
	joined := msg.Payload.(messages.GameJoinedPayload)
	assert.Equal(t, color.Black, joined.Color)
	assert.False(t, joined.Waiting)
	// Snapshot, not a replay: the state already contains white's move.
	assert.Contains(t, joined.GameState.FEN, "4P3")

	session, _ := f.m.registry.Get("ABC1")
	assert.Equal(t, replacement, session.Black.ConnID)
	assert.False(t, f.m.grace.Pending("ABC1", color.Black))

	// A late expiry for the restored seat must not forfeit anything.
	f.m.handleGraceExpiry("ABC1", color.Black)
	assert.Equal(t, StatusInProgress, session.Status)
}

func TestSecondReconnectRejected(t *testing.T) {
	f := newManagerFixture(t)
	_, black := f.joinBoth(t, "ABC1")
	f.m.HandleDisconnect(black)

	first := uuid.New()
	f.m.HandleReconnect(first, messages.ReconnectPayload{GameCode: "ABC1"})

	second := uuid.New()
	f.m.HandleReconnect(second, messages.ReconnectPayload{GameCode: "ABC1"})

	msg, ok := f.transport.lastDirectTo(second)
	require.True(t, ok)
	require.Equal(t, messages.EventError, msg.Event)
	assert.Equal(t, messages.CodeGameNotFound, msg.Payload.(messages.ErrorPayload).Code)
}

func TestReconnectUnknownSessionRejected(t *testing.T) {
	f := newManagerFixture(t)
	conn := uuid.New()

	f.m.HandleReconnect(conn, messages.ReconnectPayload{GameCode: "NOPE"})

	msg, _ := f.transport.lastDirectTo(conn)
	require.Equal(t, messages.EventError, msg.Event)
	assert.Equal(t, messages.CodeGameNotFound, msg.Payload.(messages.ErrorPayload).Code)
}

func TestClockTickDecrementsOnlySideOnMove(t *testing.T) {
	f := newManagerFixture(t)
	white, _ := f.joinBoth(t, "ABC1")
	session, _ := f.m.registry.Get("ABC1")

	f.m.handleClockTick("ABC1")
	f.m.handleClockTick("ABC1")

	assert.Equal(t, 598, session.WhiteRemaining)
	assert.Equal(t, 600, session.BlackRemaining)

	msg, ok := f.transport.lastBroadcast("ABC1", messages.EventTimerTick)
	require.True(t, ok)
	tick := msg.Payload.(messages.TimerTickPayload)
	assert.Equal(t, 598, tick.WhiteRemaining)
	assert.Equal(t, 600, tick.BlackRemaining)
	assert.Equal(t, color.White, tick.Turn)

	// After white moves, the tick burns black's clock.
	f.m.HandleMove(white, messages.MovePayload{From: "e2", To: "e4"})
	f.m.handleClockTick("ABC1")

	assert.Equal(t, 598, session.WhiteRemaining)
	assert.Equal(t, 599, session.BlackRemaining)
	assert.Equal(t, 600+600-3, session.WhiteRemaining+session.BlackRemaining)
}

func TestTimeoutEndsGameForSideOnMove(t *testing.T) {
	f := newManagerFixture(t)
	f.joinBoth(t, "ABC1")
	session, _ := f.m.registry.Get("ABC1")
	session.WhiteRemaining = 1

	f.m.handleClockTick("ABC1")

	msg, ok := f.transport.lastBroadcast("ABC1", messages.EventGameEnded)
	require.True(t, ok)
	ended := msg.Payload.(messages.GameEndedPayload)
	assert.Equal(t, string(color.Black), ended.Result.Winner)
	assert.Equal(t, ReasonTimeout, ended.Result.Reason)
	assert.Equal(t, StatusFinished, session.Status)
	assert.False(t, f.m.clocks.Running("ABC1"))

	// A straggling tick after the finish is silently absorbed.
	ticks := len(f.transport.broadcastEvents("ABC1"))
	f.m.handleClockTick("ABC1")
	assert.Len(t, f.transport.broadcastEvents("ABC1"), ticks)
}

func TestFinishedSessionRemovedAfterRetention(t *testing.T) {
	f := newManagerFixture(t)
	f.joinBoth(t, "ABC1")
	session, _ := f.m.registry.Get("ABC1")

	f.m.finish(session, Result{Winner: string(color.White), Reason: ReasonTimeout})
	_, ok := f.m.registry.Get("ABC1")
	require.True(t, ok, "finished session is retained for a while")

	f.clock.Advance(config.Default().Retention())
	runNext(t, f.dispatcher)

	_, ok = f.m.registry.Get("ABC1")
	assert.False(t, ok)
	sessions, players := f.m.Stats()
	assert.Zero(t, sessions)
	assert.Zero(t, players)
}

func TestRemoveSessionIsIdempotent(t *testing.T) {
	f := newManagerFixture(t)
	f.joinBoth(t, "ABC1")

	f.m.removeSession("ABC1")
	f.m.removeSession("ABC1")

	sessions, players := f.m.Stats()
	assert.Zero(t, sessions)
	assert.Zero(t, players)
}

func TestJoinFinishedSessionRejected(t *testing.T) {
	f := newManagerFixture(t)
	f.joinBoth(t, "ABC1")
	session, _ := f.m.registry.Get("ABC1")
	f.m.finish(session, Result{Winner: string(color.White), Reason: ReasonTimeout})

	late := uuid.New()
	f.m.HandleJoin(late, messages.JoinGamePayload{Code: "ABC1"})

	msg, _ := f.transport.lastDirectTo(late)
	require.Equal(t, messages.EventError, msg.Event)
	assert.Equal(t, messages.CodeGameFull, msg.Payload.(messages.ErrorPayload).Code)
}

// Full disconnect-forfeit walkthrough: join, move, drop, no reconnect.
func TestDisconnectForfeitScenario(t *testing.T) {
	f := newManagerFixture(t)
	white, black := uuid.New(), uuid.New()

	f.m.HandleJoin(white, messages.JoinGamePayload{Code: "ABC1"})
	msg, _ := f.transport.lastDirectTo(white)
	assert.True(t, msg.Payload.(messages.GameJoinedPayload).Waiting)

	f.m.HandleJoin(black, messages.JoinGamePayload{Code: "ABC1"})
	_, started := f.transport.lastBroadcast("ABC1", messages.EventGameStarted)
	require.True(t, started)

	f.m.HandleMove(white, messages.MovePayload{From: "e2", To: "e4"})
	executed, _ := f.transport.lastBroadcast("ABC1", messages.EventMoveExecuted)
	assert.Equal(t, "e4", executed.Payload.(messages.MoveExecutedPayload).Move.SAN)

	f.m.HandleDisconnect(black)
	dropped, _ := f.transport.lastBroadcast("ABC1", messages.EventPlayerDisconnected)
	assert.Equal(t, 30, dropped.Payload.(messages.PlayerDisconnectedPayload).ReconnectTimeoutSeconds)

	f.m.handleGraceExpiry("ABC1", color.Black)
	ended, _ := f.transport.lastBroadcast("ABC1", messages.EventGameEnded)
	result := ended.Payload.(messages.GameEndedPayload).Result
	assert.Equal(t, string(color.White), result.Winner)
	assert.Equal(t, ReasonDisconnect, result.Reason)
}
