package game

import (
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/pvoicu/chessroom/internal/color"
)

type graceKey struct {
	code string
	side color.Color
}

type graceTimer struct {
	timer  clockwork.Timer
	cancel chan struct{}
}

// GraceSupervisor tracks one grace-period timer per (session, color) after
// an in-progress disconnect. Either the timer fires and onExpire runs on the
// dispatcher, or Cancel revokes it before firing; there is no half-canceled
// state. Start, Cancel and CancelAll must be called from the worker
// goroutine.
type GraceSupervisor struct {
	clock      clockwork.Clock
	grace      time.Duration
	dispatcher Dispatcher
	onExpire   func(code string, side color.Color)

	timers map[graceKey]*graceTimer

	logger *zap.Logger
}

// NewGraceSupervisor creates a supervisor with the given grace window.
func NewGraceSupervisor(
	clock clockwork.Clock,
	grace time.Duration,
	dispatcher Dispatcher,
	onExpire func(code string, side color.Color),
	logger *zap.Logger,
) *GraceSupervisor {
	return &GraceSupervisor{
		clock:      clock,
		grace:      grace,
		dispatcher: dispatcher,
		onExpire:   onExpire,
		timers:     make(map[graceKey]*graceTimer),
		logger:     logger,
	}
}

// Start begins the grace window for the departed color, replacing any timer
// already pending for the same seat.
func (s *GraceSupervisor) Start(code string, side color.Color) {
	s.Cancel(code, side)

	key := graceKey{code: code, side: side}
	gt := &graceTimer{
		timer:  s.clock.NewTimer(s.grace),
		cancel: make(chan struct{}),
	}
	s.timers[key] = gt

	go s.wait(key, gt)

	s.logger.Info("reconnect grace started",
		zap.String("session_id", code),
		zap.String("color", string(side)),
		zap.Duration("grace", s.grace))
}

// Cancel revokes a pending timer. Returns false when no timer was pending.
func (s *GraceSupervisor) Cancel(code string, side color.Color) bool {
	key := graceKey{code: code, side: side}
	gt, ok := s.timers[key]
	if !ok {
		return false
	}

	close(gt.cancel)
	// Stop the timer here rather than leaving it to the wait goroutine, so
	// it can no longer fire (and dispatch) once Cancel has returned.
	stopAndDrainTimer(gt.timer)
	delete(s.timers, key)
	return true
}

// CancelAll revokes any pending timers for the session.
func (s *GraceSupervisor) CancelAll(code string) {
	s.Cancel(code, color.White)
	s.Cancel(code, color.Black)
}

// Pending reports whether a grace window is open for the seat.
func (s *GraceSupervisor) Pending(code string, side color.Color) bool {
	_, ok := s.timers[graceKey{code: code, side: side}]
	return ok
}

func (s *GraceSupervisor) wait(key graceKey, gt *graceTimer) {
	select {
	case <-gt.timer.Chan():
		s.dispatcher.Dispatch(func() {
			// A cancel may have raced the firing; only the timer still
			// registered for this seat gets to expire.
			if s.timers[key] != gt {
				return
			}
			delete(s.timers, key)
			s.onExpire(key.code, key.side)
		})
	case <-gt.cancel:
		stopAndDrainTimer(gt.timer)
	}
}

// stopAndDrainTimer stops a timer and drains its channel if it already fired.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
