package flightsim

import (
	"sync"
	"time"
)

// manualClock is a Clock whose ticks and timers fire only when the test says so.
type manualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
	timers  []*manualTimer
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *manualClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTicker{c: make(chan time.Time), interval: d}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Tick advances the clock by one interval of the first ticker and delivers
// the tick. It reports false if no tick loop received it within a second.
func (c *manualClock) Tick() bool {
	c.mu.Lock()
	if len(c.tickers) == 0 {
		c.mu.Unlock()
		return false
	}
	t := c.tickers[0]
	c.now = c.now.Add(t.interval)
	now := c.now
	c.mu.Unlock()

	select {
	case t.c <- now:
		return true
	case <-time.After(time.Second):
		return false
	}
}

// Advance moves the clock forward by d and fires every timer that is due.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.at.After(now) && t.fire() {
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

type manualTicker struct {
	c        chan time.Time
	interval time.Duration

	mu      sync.Mutex
	stopped bool
}

func (t *manualTicker) C() <-chan time.Time { return t.c }

func (t *manualTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *manualTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

type manualTimer struct {
	at time.Time
	f  func()

	mu   sync.Mutex
	done bool // fired or stopped
}

// fire marks the timer as fired; it reports false if it was already stopped.
func (t *manualTimer) fire() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}
