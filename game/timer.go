package game

import (
	"time"

	"github.com/richinsley/tiledl/graphics"
)

// Clock is a monotonic tick source, usually the backend.
type Clock interface {
	Ticks() time.Duration
}

// Timer measures spans on a Clock. Its results are undefined before the
// first Start.
type Timer struct {
	clock       Clock
	timing      bool
	start, stop time.Duration
}

func NewTimer(c Clock) *Timer {
	return &Timer{clock: c}
}

// Start begins a span. Starting a running timer restarts it.
func (t *Timer) Start() {
	if t.timing {
		graphics.Logger().Debug("restarting timer")
	}
	t.timing = true
	t.start = t.clock.Ticks()
}

// Stop ends the span. Stopping an idle timer does nothing.
func (t *Timer) Stop() {
	if !t.timing {
		graphics.Logger().Debug("stopping timer that is not timing")
		return
	}
	t.stop = t.clock.Ticks()
	t.timing = false
}

func (t *Timer) Timing() bool { return t.timing }

// Delta is CurrentDelta while timing and TimerDelta otherwise.
func (t *Timer) Delta() time.Duration {
	if t.timing {
		return t.CurrentDelta()
	}
	return t.TimerDelta()
}

// CurrentDelta is the time since Start.
func (t *Timer) CurrentDelta() time.Duration {
	return t.clock.Ticks() - t.start
}

// TimerDelta is the time between Start and Stop.
func (t *Timer) TimerDelta() time.Duration {
	return t.stop - t.start
}
