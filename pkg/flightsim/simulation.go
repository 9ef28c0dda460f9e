// Package flightsim generates mock flights with random positions and headings,
// moves them on a fixed tick for a fixed time window, and queues a text
// snapshot of every flight per tick for consumers to poll.
package flightsim

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrAlreadyStarted is returned by Start on a simulation that was already
// started or stopped.
var ErrAlreadyStarted = errors.New("simulation already started")

// Simulation owns the flights, the motion stepper and the feed of one run.
type Simulation struct {
	id      string
	feed    *Feed
	stepper *Stepper
	logger  *zap.Logger
}

// Status is a point-in-time summary of a simulation.
type Status struct {
	ID        string    `json:"id"`
	State     string    `json:"state"`
	Flights   int       `json:"flights"`
	Ticks     uint64    `json:"ticks"`
	StartedAt time.Time `json:"started_at,omitzero"`
}

type options struct {
	src    rand.Source
	clock  Clock
	logger *zap.Logger
}

// Option customizes a Simulation.
type Option func(*options)

// WithRandSource sets the random source used to generate flights.
func WithRandSource(src rand.Source) Option {
	return func(o *options) { o.src = src }
}

// WithClock sets the clock driving the motion stepper.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New generates the flights of a new simulation. The stepper is idle until
// Start is called.
func New(opts ...Option) *Simulation {
	o := options{clock: SystemClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	id := uuid.NewString()
	logger := o.logger.With(zap.String("run_id", id))

	feed := NewFeed()
	flights := NewGenerator(o.src).Generate()
	logger.Debug("Generated flights", zap.Int("count", len(flights)))

	return &Simulation{
		id:      id,
		feed:    feed,
		stepper: NewStepper(flights, feed, o.clock, logger),
		logger:  logger,
	}
}

// ID returns the unique run identifier.
func (s *Simulation) ID() string {
	return s.id
}

// Start begins moving flights. It returns immediately.
func (s *Simulation) Start(ctx context.Context) error {
	if !s.stepper.Start(ctx) {
		return ErrAlreadyStarted
	}
	return nil
}

// Stop halts the motion stepper early. Queued snapshots remain available.
func (s *Simulation) Stop() {
	s.stepper.Stop()
}

// Done is closed when the motion stepper stops.
func (s *Simulation) Done() <-chan struct{} {
	return s.stepper.Done()
}

// NextFlight pops the oldest queued snapshot.
// The boolean is false when nothing is queued; callers poll again later.
func (s *Simulation) NextFlight() (string, bool) {
	return s.feed.Pop()
}

// Flights returns a copy of the current flight states.
func (s *Simulation) Flights() []Flight {
	return s.stepper.Flights()
}

// Status summarizes the simulation.
func (s *Simulation) Status() Status {
	return Status{
		ID:        s.id,
		State:     s.stepper.State().String(),
		Flights:   ObjectCount,
		Ticks:     s.stepper.Ticks(),
		StartedAt: s.stepper.StartedAt(),
	}
}
