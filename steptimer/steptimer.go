// Package steptimer provides the per-frame timer used by the frame driver.
package steptimer

import "time"

// DefaultMaxDelta caps a single step. A debugger break or a long suspend
// then shows up as one short step instead of a jump.
const DefaultMaxDelta = 100 * time.Millisecond

// Clock returns the current time. Tests inject a fake.
type Clock func() time.Time

// Option configures a Timer.
type Option func(*Timer)

// WithClock sets the time source. The default is time.Now.
func WithClock(c Clock) Option {
	return func(t *Timer) {
		if c != nil {
			t.now = c
		}
	}
}

// WithMaxDelta sets the largest step a single Tick may take.
// Non-positive values disable clamping.
func WithMaxDelta(d time.Duration) Option {
	return func(t *Timer) {
		t.maxDelta = d
	}
}

// Timer tracks frame timing. Each Tick advances exactly one step.
type Timer struct {
	now      Clock
	maxDelta time.Duration

	last    time.Time
	elapsed time.Duration
	total   time.Duration

	frameCount       uint64
	framesThisSecond uint32
	fps              uint32
	secondCounter    time.Duration
}

// New returns a timer whose first step is measured from now.
func New(opts ...Option) *Timer {
	t := &Timer{
		now:      time.Now,
		maxDelta: DefaultMaxDelta,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.last = t.now()
	return t
}

// Tick advances the timer by one step and calls update once.
// update may be nil.
func (t *Timer) Tick(update func(*Timer)) {
	current := t.now()
	delta := current.Sub(t.last)
	t.last = current
	if delta < 0 {
		delta = 0
	}

	t.secondCounter += delta
	if t.maxDelta > 0 && delta > t.maxDelta {
		delta = t.maxDelta
	}

	t.elapsed = delta
	t.total += delta
	t.frameCount++
	if update != nil {
		update(t)
	}

	t.framesThisSecond++
	if t.secondCounter >= time.Second {
		t.fps = t.framesThisSecond
		t.framesThisSecond = 0
		t.secondCounter %= time.Second
	}
}

// ResetElapsedTime restarts step measurement from now. Call it after a
// deliberate timing discontinuity such as resuming from suspend.
func (t *Timer) ResetElapsedTime() {
	t.last = t.now()
	t.framesThisSecond = 0
	t.fps = 0
	t.secondCounter = 0
}

// Elapsed returns the duration of the last step.
func (t *Timer) Elapsed() time.Duration { return t.elapsed }

// ElapsedSeconds returns the last step in seconds.
func (t *Timer) ElapsedSeconds() float64 { return t.elapsed.Seconds() }

// Total returns the accumulated step time.
func (t *Timer) Total() time.Duration { return t.total }

// TotalSeconds returns the accumulated step time in seconds.
func (t *Timer) TotalSeconds() float64 { return t.total.Seconds() }

// FrameCount returns the number of completed steps.
func (t *Timer) FrameCount() uint64 { return t.frameCount }

// FramesPerSecond returns the frame rate measured over the last full second.
func (t *Timer) FramesPerSecond() uint32 { return t.fps }
