package flightsim

import "sync"

// compactThreshold is the number of consumed head slots after which the
// backing slice is compacted.
const compactThreshold = 4096

// Feed is the FIFO hand-off queue between the motion stepper and consumers.
// It grows without bound; nothing is dropped if consumers fall behind.
type Feed struct {
	mu      sync.Mutex
	entries []string
	head    int // index of the oldest unconsumed entry
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{}
}

// Push appends entries at the tail in order.
// All entries of one call become visible to consumers together.
func (f *Feed) Push(entries ...string) {
	if len(entries) == 0 {
		return
	}
	f.mu.Lock()
	f.entries = append(f.entries, entries...)
	f.mu.Unlock()
}

// Pop removes and returns the oldest entry.
// It returns ("", false) when the feed is empty.
func (f *Feed) Pop() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.head >= len(f.entries) {
		return "", false
	}

	entry := f.entries[f.head]
	f.entries[f.head] = ""
	f.head++

	switch {
	case f.head == len(f.entries):
		// Fully drained: reuse the backing array from the start
		f.entries = f.entries[:0]
		f.head = 0
	case f.head >= compactThreshold && f.head*2 >= len(f.entries):
		n := copy(f.entries, f.entries[f.head:])
		clear(f.entries[n:])
		f.entries = f.entries[:n]
		f.head = 0
	}

	return entry, true
}

// Len returns the number of queued entries.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries) - f.head
}
