package flightsim

import "time"

// Clock schedules the stepper's repeating tick and its one-shot stop timer.
// The default clock wraps the time package; tests substitute a manual one.
type Clock interface {
	// NewTicker returns a ticker firing every d.
	NewTicker(d time.Duration) Ticker

	// AfterFunc calls f in its own goroutine after d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer

	// Now returns the current time.
	Now() time.Time
}

// Ticker is a cancellable repeating timer handle.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Timer is a cancellable one-shot timer handle.
type Timer interface {
	Stop() bool
}

// SystemClock is the Clock backed by the time package.
type SystemClock struct{}

// NewTicker wraps time.NewTicker.
func (SystemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{time.NewTicker(d)}
}

// AfterFunc wraps time.AfterFunc.
func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Now wraps time.Now.
func (SystemClock) Now() time.Time {
	return time.Now()
}

type systemTicker struct {
	t *time.Ticker
}

func (s systemTicker) C() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()               { s.t.Stop() }
