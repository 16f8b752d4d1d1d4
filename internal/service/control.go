package service

import (
	"context"
	"sync"
	"time"
)

// pollController paces the poll loop. An interval change interrupts
// the pending sleep so it takes effect immediately instead of after
// the old interval elapses.
type pollController struct {
	mu       sync.RWMutex
	interval time.Duration
	notify   chan struct{}
}

func newPollController(interval time.Duration) *pollController {
	if interval <= 0 {
		interval = time.Second
	}
	return &pollController{
		interval: interval,
		notify:   make(chan struct{}, 1),
	}
}

// Wait blocks for the configured interval or until the context is
// cancelled. It returns the wake-up time.
func (c *pollController) Wait(ctx context.Context) (time.Time, error) {
	for {
		c.mu.RLock()
		interval := c.interval
		c.mu.RUnlock()

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			return time.Time{}, ctx.Err()
		case <-timer.C:
			return time.Now(), nil
		case <-c.notify:
			if !timer.Stop() {
				<-timer.C
			}
			continue
		}
	}
}

// SetInterval changes the pacing of subsequent cycles.
func (c *pollController) SetInterval(d time.Duration) {
	if d <= 0 {
		d = time.Millisecond
	}
	c.mu.Lock()
	if c.interval == d {
		c.mu.Unlock()
		return
	}
	c.interval = d
	c.mu.Unlock()
	c.signal()
}

// Interval returns the current pacing.
func (c *pollController) Interval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.interval
}

func (c *pollController) signal() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}
