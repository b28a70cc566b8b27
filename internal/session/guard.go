package session

import (
	"sync"
	"time"
)

// DefaultGraceWindow absorbs navigation noise fired right after arming, so a
// back event triggered by the act of entering the quiz view does not count as
// a user leaving.
const DefaultGraceWindow = time.Second

// Guard models cancellable navigation for an active session: leaving must be
// confirmed, and a confirmed leave forces submission of whatever partial
// answers exist.
type Guard struct {
	mu      sync.Mutex
	armedAt time.Time
	grace   time.Duration
	confirm func() bool
	revoked bool
	now     func() time.Time

	// onForcedLeave submits the partial answer set before navigation proceeds.
	onForcedLeave func()
}

// Capability revokes the guard. Held by the controller and revoked on clean
// submission so terminal-state navigation is unimpeded.
type Capability struct {
	g *Guard
}

// Revoke disarms the guard permanently.
func (c *Capability) Revoke() {
	if c == nil || c.g == nil {
		return
	}
	c.g.mu.Lock()
	c.g.revoked = true
	c.g.mu.Unlock()
}

// NewGuard builds a guard. now may be nil (wall clock); grace <= 0 uses
// DefaultGraceWindow.
func NewGuard(grace time.Duration, now func() time.Time, onForcedLeave func()) *Guard {
	if now == nil {
		now = time.Now
	}
	if grace <= 0 {
		grace = DefaultGraceWindow
	}
	return &Guard{grace: grace, now: now, onForcedLeave: onForcedLeave}
}

// Arm activates the guard with a confirmation callback and returns the
// revocation capability.
func (g *Guard) Arm(confirm func() bool) *Capability {
	g.mu.Lock()
	g.confirm = confirm
	g.armedAt = g.now()
	g.revoked = false
	g.mu.Unlock()
	return &Capability{g: g}
}

// RequestLeave is invoked on a back-navigation attempt. It returns true when
// navigation may proceed. Within the grace window the attempt is treated as
// mount noise and cancelled. A confirmed leave forces submission of partial
// answers first; a declined leave changes nothing.
func (g *Guard) RequestLeave() bool {
	g.mu.Lock()
	if g.revoked {
		g.mu.Unlock()
		return true
	}
	if g.now().Sub(g.armedAt) < g.grace {
		g.mu.Unlock()
		return false
	}
	confirm := g.confirm
	forced := g.onForcedLeave
	g.mu.Unlock()

	if confirm != nil && !confirm() {
		return false
	}
	if forced != nil {
		forced()
	}
	return true
}

// InterruptNotice is the unload-style path: it only reports whether the
// session is still active (so the caller can show a generic warning).
// Submission on interrupt is best-effort elsewhere and never guaranteed here.
func (g *Guard) InterruptNotice() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.revoked
}
