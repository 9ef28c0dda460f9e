package flightsim

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the lifecycle state of a Stepper.
// Transitions are one-way: idle -> running -> stopped, or idle -> stopped.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Stop reasons reported in logs.
const (
	reasonElapsed   = "run duration elapsed"
	reasonStopped   = "stopped"
	reasonCancelled = "context cancelled"
)

// Stepper advances every flight on a fixed tick and publishes one snapshot per
// flight to the feed. It stops itself RunDuration after Start.
type Stepper struct {
	clock  Clock
	feed   *Feed
	logger *zap.Logger

	// mu guards flights, state, ticks and startedAt
	mu        sync.Mutex
	flights   []*Flight
	state     State
	ticks     uint64
	startedAt time.Time

	timer    Timer
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// NewStepper creates an idle stepper that owns flights and publishes to feed.
func NewStepper(flights []*Flight, feed *Feed, clock Clock, logger *zap.Logger) *Stepper {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stepper{
		clock:   clock,
		feed:    feed,
		logger:  logger,
		flights: flights,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start schedules the repeating tick and the one-shot stop timer and returns
// immediately. It returns false if the stepper was already started or stopped.
// Cancelling ctx stops the stepper early.
func (s *Stepper) Start(ctx context.Context) bool {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return false
	}
	s.state = StateRunning
	s.startedAt = s.clock.Now()
	ticker := s.clock.NewTicker(TickInterval)
	s.timer = s.clock.AfterFunc(RunDuration, func() { s.halt(reasonElapsed) })
	s.mu.Unlock()

	s.logger.Info("Motion stepper started",
		zap.Int("flights", len(s.flights)),
		zap.Duration("tick_interval", TickInterval),
		zap.Duration("run_duration", RunDuration),
	)

	go s.loop(ctx, ticker)
	return true
}

// Stop cancels the repeating tick and waits for the tick loop to exit.
// It is safe to call more than once and before Start.
func (s *Stepper) Stop() {
	s.halt(reasonStopped)
	<-s.done
}

// Done is closed once the stepper has stopped for any reason.
func (s *Stepper) Done() <-chan struct{} {
	return s.done
}

// State returns the current lifecycle state.
func (s *Stepper) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ticks returns the number of completed ticks.
func (s *Stepper) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// StartedAt returns when the stepper was started, or the zero time.
func (s *Stepper) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

// Flights returns a copy of the current flight states in index order.
func (s *Stepper) Flights() []Flight {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Flight, len(s.flights))
	for i, f := range s.flights {
		out[i] = *f
	}
	return out
}

// loop runs the tick until the stepper is halted or ctx is cancelled.
func (s *Stepper) loop(ctx context.Context, ticker Ticker) {
	defer close(s.done)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			s.tick()
		case <-s.stopCh:
			return
		case <-ctx.Done():
			s.halt(reasonCancelled)
			return
		}
	}
}

// tick advances all flights, then queues one snapshot per flight in index
// order. Nothing is queued once the stepper has left the running state.
func (s *Stepper) tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return false
	}

	for _, f := range s.flights {
		f.Advance(Speed)
	}

	batch := make([]string, len(s.flights))
	for i, f := range s.flights {
		batch[i] = f.Snapshot()
	}
	s.feed.Push(batch...)
	s.ticks++

	if ce := s.logger.Check(zap.DebugLevel, "Tick"); ce != nil {
		ce.Write(zap.Uint64("tick", s.ticks), zap.Int("queued", len(batch)))
	}
	return true
}

// halt moves the stepper to the stopped state exactly once.
func (s *Stepper) halt(reason string) {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		prev := s.state
		s.state = StateStopped
		ticks := s.ticks
		timer := s.timer
		s.mu.Unlock()

		if timer != nil {
			timer.Stop()
		}
		close(s.stopCh)

		// Never started: no loop goroutine will close done
		if prev == StateIdle {
			close(s.done)
		}

		s.logger.Info("Motion stepper stopped",
			zap.String("reason", reason),
			zap.Uint64("ticks", ticks),
			zap.Int("queued", s.feed.Len()),
		)
	})
}
