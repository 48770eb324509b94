package nav

import (
	"sync"
	"time"
)

// DefaultNavDelay is the minimum spacing between accepted directional inputs
const DefaultNavDelay = 150 * time.Millisecond

// Debouncer rate-limits directional input. One instance is shared by every
// input source, so a d-pad press and a stick push inside the window count once.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	last  time.Time
}

// NewDebouncer creates a debouncer; a negative delay is treated as zero
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer{delay: delay}
}

// Allow reports whether an input at now is accepted, and records it if so
func (d *Debouncer) Allow(now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.last.IsZero() && now.Sub(d.last) < d.delay {
		return false
	}
	d.last = now
	return true
}

// Last returns the time of the last accepted input
func (d *Debouncer) Last() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// deferredBack is the single pending "go back at T" slot
type deferredBack struct {
	at      time.Time
	pending bool
}
