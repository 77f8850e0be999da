package playback

import (
	"math"
	"sync"
	"time"
)

// Clock is the playhead. Stopped it holds a time; running it derives the
// time from the wall clock elapsed since it was started.
type Clock struct {
	mu  sync.Mutex
	now func() time.Time

	running   bool
	time      float64
	startWall time.Time
}

// NewClock returns a stopped clock at 0. A nil now means time.Now.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Clock) Time() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeLocked()
}

func (c *Clock) timeLocked() float64 {
	if !c.running {
		return c.time
	}
	return c.time + c.now().Sub(c.startWall).Seconds()
}

func (c *Clock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.startWall = c.now()
	c.running = true
}

func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.time = c.timeLocked()
	c.running = false
}

// Seek moves the playhead to t clamped to [0, total]. A running clock keeps
// running from the new position.
func (c *Clock) Seek(t, total float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.time = clampTime(t, total)
	c.startWall = c.now()
}

// Tick advances a running clock and reports stopped=true when it reached
// total, in which case the clock is left stopped at total.
func (c *Clock) Tick(total float64) (t float64, stopped bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t = c.timeLocked()
	if c.running && t >= total {
		c.time = total
		c.running = false
		return total, true
	}
	return t, false
}

func clampTime(t, total float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if t > total {
		return total
	}
	return t
}
