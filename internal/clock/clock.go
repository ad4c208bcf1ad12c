package clock

import (
	"sync"
	"time"
)

// Clock issues server timestamps in unix milliseconds.
//
// Now and BeginWrite return a value strictly greater than any value issued before,
// even if the wall clock stalls or steps back. Watermark never advances the clock
// past the wall time, so checkpoints handed to readers stay at or below the
// timestamps of later writes, across restarts too.
// Writes register their timestamp as in-flight until they finish; Watermark never
// passes the oldest in-flight write, so a reader that uses the watermark as an upper
// bound cannot skip a write that commits after the read.
type Clock struct {
	now      func() time.Time
	inflight map[int64]int // timestamp -> number of open writes stamped with it
	last     int64
	mu       sync.Mutex
}

// New creates a clock backed by the wall clock
func New() *Clock {
	return NewWithSource(time.Now)
}

// NewWithSource creates a clock with a custom time source. Used in tests.
func NewWithSource(now func() time.Time) *Clock {
	return &Clock{
		now:      now,
		inflight: make(map[int64]int),
	}
}

// Now returns the next timestamp
func (c *Clock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.tick()
}

// BeginWrite returns the timestamp for a new write and registers it as in-flight.
// The returned function must be called exactly once when the write commits or rolls back.
func (c *Clock) BeginWrite() (int64, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := c.tick()
	c.inflight[ts]++

	var once sync.Once
	done := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()

			c.inflight[ts]--
			if c.inflight[ts] <= 0 {
				delete(c.inflight, ts)
			}
		})
	}

	return ts, done
}

// Watermark returns the highest timestamp below which no write can still commit.
// Every mutation stamped at or below the watermark is already visible to readers.
func (c *Clock) Watermark() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if wall := c.now().UnixMilli(); wall > c.last {
		c.last = wall
	}

	wm := c.last
	for ts := range c.inflight {
		if ts-1 < wm {
			wm = ts - 1
		}
	}

	return wm
}

// Observe raises the clock floor to ts.
// Used on startup with the highest persisted timestamp so that a restart with a
// lagging wall clock keeps timestamps monotonic.
func (c *Clock) Observe(ts int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ts > c.last {
		c.last = ts
	}
}

// Last returns the most recently issued timestamp without advancing the clock
func (c *Clock) Last() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.last
}

// InFlight returns the number of writes that have not finished yet
func (c *Clock) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, count := range c.inflight {
		n += count
	}
	return n
}

// tick must be called with mu held
func (c *Clock) tick() int64 {
	ts := c.now().UnixMilli()
	if ts <= c.last {
		ts = c.last + 1
	}
	c.last = ts
	return ts
}
