// Package frame drives the per-tick Update/Render sequence.
package frame

import (
	"fmt"

	"github.com/gogpu/samples/steptimer"
)

// UpdateFunc advances the simulation by one step.
type UpdateFunc func(t *steptimer.Timer) error

// RenderFunc draws the current state.
type RenderFunc func() error

// Driver pairs one Update with at most one Render per Tick.
// Render never runs before the first Update has completed.
type Driver struct {
	timer  *steptimer.Timer
	update UpdateFunc
	render RenderFunc

	renders uint64
}

// NewDriver returns a driver over timer. A nil timer gets a real-clock timer.
func NewDriver(timer *steptimer.Timer, update UpdateFunc, render RenderFunc) *Driver {
	if timer == nil {
		timer = steptimer.New()
	}
	return &Driver{timer: timer, update: update, render: render}
}

// Timer returns the driver's timer.
func (d *Driver) Timer() *steptimer.Timer { return d.timer }

// Renders returns how many times Render has run.
func (d *Driver) Renders() uint64 { return d.renders }

// Tick advances the timer one step, runs Update, then Render unless this
// is the first tick. An Update error skips Render.
func (d *Driver) Tick() error {
	first := d.timer.FrameCount() == 0

	var updateErr error
	d.timer.Tick(func(t *steptimer.Timer) {
		if d.update != nil {
			updateErr = d.update(t)
		}
	})
	if updateErr != nil {
		return fmt.Errorf("frame: update: %w", updateErr)
	}

	if first || d.render == nil {
		return nil
	}
	if err := d.render(); err != nil {
		return fmt.Errorf("frame: render: %w", err)
	}
	d.renders++
	return nil
}
