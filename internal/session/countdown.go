package session

import (
	"context"
	"sync"
	"time"
)

// WarningThreshold is the remaining-seconds mark at which the one-time
// pre-expiry warning fires.
const WarningThreshold = 10

// Countdown produces a strictly decreasing remaining-time sequence, one
// decrement per tick, and drives the expiry submission. Ticks are injected
// (Tick or Run) so tests can simulate a full quiz in microseconds.
type Countdown struct {
	mu        sync.Mutex
	remaining int
	halted    bool
	warned    bool
	expired   bool

	onWarning func()
	onExpire  func()
}

// NewCountdown builds an engine starting at initialSeconds. onWarning fires
// exactly once when remaining hits WarningThreshold; onExpire fires exactly
// once when remaining hits zero, after which the engine halts.
func NewCountdown(initialSeconds int, onWarning, onExpire func()) *Countdown {
	if initialSeconds < 0 {
		initialSeconds = 0
	}
	return &Countdown{
		remaining: initialSeconds,
		onWarning: onWarning,
		onExpire:  onExpire,
	}
}

// Tick advances the engine by one second. Returns the remaining seconds.
func (c *Countdown) Tick() int {
	c.mu.Lock()
	if c.halted {
		remaining := c.remaining
		c.mu.Unlock()
		return remaining
	}

	if c.remaining > 0 {
		c.remaining--
	}
	remaining := c.remaining

	var fireWarning, fireExpire bool
	if remaining == WarningThreshold && !c.warned {
		c.warned = true
		fireWarning = true
	}
	if remaining == 0 && !c.expired {
		c.expired = true
		c.halted = true
		fireExpire = true
	}
	c.mu.Unlock()

	// Callbacks run outside the lock; the expiry callback re-enters the
	// session through the submission gate.
	if fireWarning && c.onWarning != nil {
		c.onWarning()
	}
	if fireExpire && c.onExpire != nil {
		c.onExpire()
	}
	return remaining
}

// Run ticks once per second until the engine halts or ctx is cancelled.
func (c *Countdown) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Tick()
			if c.Halted() {
				return
			}
		}
	}
}

// Stop halts the engine without firing expiry. Called on successful submit.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.halted = true
}

// Remaining returns the current remaining seconds. Never negative.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Halted reports whether the engine has stopped ticking.
func (c *Countdown) Halted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.halted
}
