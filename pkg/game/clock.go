package game

import (
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Dispatcher re-injects timer-driven work into the single worker loop so
// session state is never touched from a timer goroutine.
type Dispatcher interface {
	Dispatch(task func())
}

// ClockRunner drives the per-session countdown. Each InProgress session has
// at most one live ticker; starting a new one supersedes any prior ticker
// for the same code. Start and Stop must be called from the worker
// goroutine, which keeps the tickers map single-owner.
type ClockRunner struct {
	clock      clockwork.Clock
	interval   time.Duration
	dispatcher Dispatcher
	onTick     func(code string)

	tickers map[string]*sessionTicker

	logger *zap.Logger
}

type sessionTicker struct {
	ticker clockwork.Ticker
	stop   chan struct{}
}

// NewClockRunner creates a runner that fires onTick on the dispatcher every
// interval for each started session.
func NewClockRunner(
	clock clockwork.Clock,
	interval time.Duration,
	dispatcher Dispatcher,
	onTick func(code string),
	logger *zap.Logger,
) *ClockRunner {
	return &ClockRunner{
		clock:      clock,
		interval:   interval,
		dispatcher: dispatcher,
		onTick:     onTick,
		tickers:    make(map[string]*sessionTicker),
		logger:     logger,
	}
}

// Start begins ticking for the session, cancelling any existing ticker for
// the same code first.
func (r *ClockRunner) Start(code string) {
	r.Stop(code)

	// The ticker is created here, not in the goroutine, so Stop can
	// revoke it before another tick can possibly fire.
	st := &sessionTicker{
		ticker: r.clock.NewTicker(r.interval),
		stop:   make(chan struct{}),
	}
	r.tickers[code] = st

	go r.run(code, st)

	r.logger.Debug("clock started", zap.String("session_id", code))
}

// Stop cancels the session's ticker if one is live. Idempotent.
func (r *ClockRunner) Stop(code string) {
	if st, ok := r.tickers[code]; ok {
		st.ticker.Stop()
		close(st.stop)
		delete(r.tickers, code)
		r.logger.Debug("clock stopped", zap.String("session_id", code))
	}
}

// Running reports whether the session currently has a live ticker.
func (r *ClockRunner) Running(code string) bool {
	_, ok := r.tickers[code]
	return ok
}

func (r *ClockRunner) run(code string, st *sessionTicker) {
	for {
		select {
		case <-st.stop:
			return
		case <-st.ticker.Chan():
			// A stop may have raced the tick; never dispatch after it.
			select {
			case <-st.stop:
				return
			default:
			}
			r.dispatcher.Dispatch(func() {
				r.onTick(code)
			})
		}
	}
}
