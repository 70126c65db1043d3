package connection

import (
	"sync"
	"time"
)

// DefaultRetryInterval is the delay between reconnection attempts.
const DefaultRetryInterval = 3 * time.Second

// Retry tracks reconnection attempts at a fixed interval.
type Retry struct {
	mu sync.Mutex

	interval time.Duration
	attempts int
}

// NewRetry creates a retry tracker. A non-positive interval selects
// the default.
func NewRetry(interval time.Duration) *Retry {
	if interval <= 0 {
		interval = DefaultRetryInterval
	}
	return &Retry{interval: interval}
}

// Next records an attempt and returns the delay before it.
func (r *Retry) Next() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
	return r.interval
}

// Interval returns the configured retry interval.
func (r *Retry) Interval() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.interval
}

// Reset clears the attempt counter.
// Call this after a successful connection.
func (r *Retry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = 0
}

// Attempts returns the number of attempts since the last reset.
func (r *Retry) Attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts
}
