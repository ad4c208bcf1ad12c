package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSource returns a time source frozen at ms unless moved with the returned setter
func fixedSource(ms int64) (func() time.Time, func(int64)) {
	var mu sync.Mutex
	current := ms
	source := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return time.UnixMilli(current)
	}
	set := func(v int64) {
		mu.Lock()
		defer mu.Unlock()
		current = v
	}
	return source, set
}

func TestNew(t *testing.T) {
	c := New()

	require.NotNil(t, c)
	before := time.Now().UnixMilli()
	ts := c.Now()
	assert.GreaterOrEqual(t, ts, before)
	assert.Equal(t, ts, c.Last())
}

func TestClock_Now_StrictlyIncreasing(t *testing.T) {
	source, set := fixedSource(1000)
	c := NewWithSource(source)

	tests := []struct {
		name     string
		wall     int64
		expected int64
	}{
		{"first tick uses wall clock", 1000, 1000},
		{"stalled wall clock", 1000, 1001},
		{"stalled again", 1000, 1002},
		{"wall clock moves ahead", 2000, 2000},
		{"wall clock steps back", 1500, 2001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set(tt.wall)
			assert.Equal(t, tt.expected, c.Now())
		})
	}
}

func TestClock_Watermark_NoWrites(t *testing.T) {
	source, _ := fixedSource(5000)
	c := NewWithSource(source)

	assert.Equal(t, int64(5000), c.Watermark())
	assert.Equal(t, int64(5000), c.Watermark(), "watermark does not advance the clock")
	assert.Equal(t, int64(5001), c.Now())
	assert.Equal(t, int64(5001), c.Watermark(), "issued timestamps are covered")
}

func TestClock_Watermark_HeldByInFlightWrite(t *testing.T) {
	source, set := fixedSource(1000)
	c := NewWithSource(source)

	ts, done := c.BeginWrite()
	assert.Equal(t, int64(1000), ts)
	assert.Equal(t, 1, c.InFlight())

	set(3000)
	assert.Equal(t, int64(999), c.Watermark(), "watermark must stay below the open write")

	next := c.Now()
	assert.Greater(t, next, ts)

	done()
	assert.Equal(t, 0, c.InFlight())
	assert.Equal(t, next, c.Watermark())
}

func TestClock_BeginWrite_DoneIsIdempotent(t *testing.T) {
	source, _ := fixedSource(1000)
	c := NewWithSource(source)

	_, done1 := c.BeginWrite()
	_, done2 := c.BeginWrite()
	assert.Equal(t, 2, c.InFlight())

	done1()
	done1()
	assert.Equal(t, 1, c.InFlight())

	done2()
	assert.Equal(t, 0, c.InFlight())
}

func TestClock_Observe(t *testing.T) {
	source, _ := fixedSource(1000)
	c := NewWithSource(source)

	c.Observe(50_000)
	assert.Equal(t, int64(50_001), c.Now())

	c.Observe(10)
	assert.Equal(t, int64(50_002), c.Now(), "observing an older value is a no-op")
}

func TestClock_WatermarkNeverDecreases(t *testing.T) {
	c := New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, done := c.BeginWrite()
				done()
			}
		}()
	}

	var prev int64
	for i := 0; i < 200; i++ {
		wm := c.Watermark()
		require.GreaterOrEqual(t, wm, prev)
		prev = wm
	}

	wg.Wait()
	assert.Equal(t, 0, c.InFlight())
}

func TestClock_Watermark_StaysAtWallClock(t *testing.T) {
	source, set := fixedSource(10_000)
	c := NewWithSource(source)

	for i := 0; i < 500; i++ {
		require.Equal(t, int64(10_000), c.Watermark())
	}

	ts, done := c.BeginWrite()
	defer done()
	assert.Equal(t, int64(10_001), ts, "write after reads is stamped above their checkpoint")

	set(12_000)
	assert.Equal(t, int64(10_000), c.Watermark())
}
