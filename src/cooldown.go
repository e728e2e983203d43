package hue

import (
	"sync"
	"time"
)

// cooldown lets each user run a group of commands once per period.
type cooldown struct {
	period time.Duration
	last   map[string]time.Time
	sync.Mutex
}

func newCooldown(period time.Duration) *cooldown {
	return &cooldown{period: period, last: make(map[string]time.Time)}
}

// take records a use by userID at now. It returns zero if the use is allowed, or how long the
// user still has to wait.
func (c *cooldown) take(userID string, now time.Time) time.Duration {
	c.Lock()
	defer c.Unlock()

	if last, ok := c.last[userID]; ok {
		if wait := c.period - now.Sub(last); wait > 0 {
			return wait
		}
	}
	c.last[userID] = now

	// Forget users whose cooldown has expired so the map doesn't grow forever.
	if len(c.last) > 1024 {
		for id, t := range c.last {
			if now.Sub(t) >= c.period {
				delete(c.last, id)
			}
		}
	}
	return 0
}
