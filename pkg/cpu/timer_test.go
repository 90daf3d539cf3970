package cpu

import (
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func TestTimerCountsDown(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(clock)

	timer.Set(10)
	assert.Equal(t, byte(10), timer.Read())

	clock.advance(TickPeriod - time.Millisecond)
	assert.Equal(t, byte(10), timer.Read())

	clock.advance(time.Millisecond)
	assert.Equal(t, byte(9), timer.Read())

	clock.advance(3 * TickPeriod)
	assert.Equal(t, byte(6), timer.Read())
}

func TestTimerCarriesPartialPeriod(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(clock)
	timer.Set(100)

	// Ten reads at 10ms intervals span 100ms, which is six whole periods.
	for i := 0; i < 10; i++ {
		clock.advance(10 * time.Millisecond)
		timer.Read()
	}
	if got := timer.Read(); got != 94 {
		t.Errorf("Read after 100ms: expected 94, got %d", got)
	}
}

func TestTimerFloorsAtZero(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(clock)
	timer.Set(3)

	clock.advance(time.Hour)
	assert.Equal(t, byte(0), timer.Read())
	assert.Equal(t, byte(0), timer.Read())

	// A fresh value starts its own countdown.
	clock.advance(time.Hour)
	timer.Set(2)
	clock.advance(TickPeriod)
	assert.Equal(t, byte(1), timer.Read())
}

func TestTimerNeverIncreases(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(clock)
	timer.Set(0xFF)

	last := timer.Read()
	for i := 0; i < 200; i++ {
		clock.advance(time.Duration(i%7) * time.Millisecond * 3)
		got := timer.Read()
		if got > last {
			t.Fatalf("timer went up from %d to %d", last, got)
		}
		last = got
	}
}

func TestTimerIgnoresBackwardClock(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(clock)
	timer.Set(5)

	clock.advance(-time.Second)
	assert.Equal(t, byte(5), timer.Read())
}

func TestTimerZeroValue(t *testing.T) {
	timer := NewTimer(nil)
	assert.Equal(t, byte(0), timer.Read())
}
