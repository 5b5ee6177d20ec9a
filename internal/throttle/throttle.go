// Package throttle coalesces bursty change notifications into at most one
// applied update per interval. Remote writers can publish several times per
// second during a lively game; views recompute derived state on every
// apply, so each subscription gets its own controller with an interval
// matching how fresh that view needs to be.
package throttle

import (
	"sync"
	"time"

	"github.com/beerdie/engine/internal/game"
)

// Controller throttles updates for a single subscribed session id. It holds
// at most one pending payload and one armed timer at a time: a new
// notification overwrites the pending payload, and re-arming cancels the
// prior timer. Apply is a whole-record replace, so delivering the same
// payload twice is harmless.
type Controller struct {
	mu       sync.Mutex
	interval time.Duration
	apply    func(*game.MatchSession)

	lastAppliedAt time.Time
	pending       *game.MatchSession
	timer         *time.Timer
	stopped       bool
}

// New creates a controller that invokes apply with the freshest payload at
// most once per interval. The interval is caller supplied: an actively
// scoring view wants a tight one, a passive spectator can afford a loose
// one.
func New(interval time.Duration, apply func(*game.MatchSession)) *Controller {
	return &Controller{
		interval: interval,
		apply:    apply,
	}
}

// Offer hands the controller a new version of the record. If enough time
// has passed since the last apply it is delivered immediately; otherwise it
// replaces whatever is pending and a one-shot timer delivers the freshest
// value when the interval is up.
func (c *Controller) Offer(sess *game.MatchSession) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}

	c.pending = sess

	now := time.Now()
	elapsed := now.Sub(c.lastAppliedAt)
	if elapsed >= c.interval {
		payload := c.takePendingLocked(now)
		c.mu.Unlock()
		c.apply(payload)
		return
	}

	// Re-arm: one pending timer at a time, the newest payload wins.
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.interval-elapsed, c.fire)
	c.mu.Unlock()
}

func (c *Controller) fire() {
	c.mu.Lock()
	if c.stopped || c.pending == nil {
		c.mu.Unlock()
		return
	}
	payload := c.takePendingLocked(time.Now())
	c.mu.Unlock()
	c.apply(payload)
}

// takePendingLocked transitions Pending back to Idle.
func (c *Controller) takePendingLocked(now time.Time) *game.MatchSession {
	payload := c.pending
	c.pending = nil
	c.lastAppliedAt = now
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	return payload
}

// Stop drops any pending payload and cancels the timer. A client that
// disconnects simply stops here; there is no further teardown protocol.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	c.pending = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
