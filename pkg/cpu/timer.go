package cpu

import "time"

// TickPeriod is how long the delay timer takes to count down by one.
const TickPeriod = 16 * time.Millisecond

// Clock supplies the current time to the timer.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

// Timer is a pull-based countdown. Nothing ticks in the background; Read
// works out how many whole periods have passed since the baseline and
// deducts them, carrying any partial period forward.
type Timer struct {
	clock    Clock
	value    byte
	baseline time.Time
}

func NewTimer(clock Clock) *Timer {
	if clock == nil {
		clock = SystemClock
	}
	return &Timer{clock: clock, baseline: clock.Now()}
}

func (t *Timer) Set(val byte) {
	t.value = val
	t.baseline = t.clock.Now()
}

func (t *Timer) Read() byte {
	now := t.clock.Now()
	if t.value == 0 {
		t.baseline = now
		return 0
	}

	elapsed := now.Sub(t.baseline)
	if elapsed < TickPeriod {
		// also covers a clock that went backwards
		return t.value
	}

	ticks := elapsed / TickPeriod
	if ticks >= time.Duration(t.value) {
		t.value = 0
		t.baseline = now
		return 0
	}

	t.value -= byte(ticks)
	t.baseline = t.baseline.Add(ticks * TickPeriod)
	return t.value
}
