package host

import (
	"errors"
	"fmt"

	"github.com/gogpu/gogpu"
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/samples"
)

// RunWindow opens a gogpu window and drives the app from its draw
// callback until the window closes or the app asks to exit.
//
// The app renders offscreen through its own device; every presented frame
// is drawn into the window through the window's texture drawer.
func RunWindow(opts Options, newApp Factory) error {
	events := NewEvents()
	presenter := &WindowPresenter{}

	var quit func()
	app, err := newApp(Env{
		Events:    events,
		Presenter: presenter,
		Exit: func() {
			if quit != nil {
				quit()
			}
		},
	})
	if err != nil {
		return err
	}
	if app == nil {
		return ErrNoApp
	}

	width, height := opts.size(app)
	win := gogpu.NewApp(gogpu.DefaultConfig().
		WithTitle(opts.Title).
		WithSize(width, height).
		WithContinuousRender(opts.Continuous))
	quit = win.Quit

	events.Forward(win.EventSource())
	events.OnFocus(func(focused bool) {
		if focused {
			app.OnActivated()
		} else {
			app.OnDeactivated()
		}
	})

	d := &windowDriver{app: app, presenter: presenter, quit: win.Quit}
	win.OnDraw(func(dc *gogpu.Context) {
		drawer := func() gpucontext.TextureDrawer { return dc.AsTextureDrawer() }
		if d.draw(dc.Width(), dc.Height(), drawer) {
			samples.Logger().Info("host: window ready",
				"width", dc.Width(), "height", dc.Height(), "backend", dc.Backend())
		}
	})

	win.OnClose(func() {
		presenter.Release()
		app.Close()
	})

	if err := win.Run(); err != nil {
		return errors.Join(fmt.Errorf("host: run window: %w", err), d.err)
	}
	return d.err
}

// windowDriver maps window draw callbacks onto App calls. A zero-sized
// draw means the window is minimized: the app is suspended once and
// resumed on the next visible draw.
type windowDriver struct {
	app       App
	presenter *WindowPresenter
	quit      func()

	initialized bool
	suspended   bool
	err         error
}

// fail records the first error and closes the window.
func (d *windowDriver) fail(err error) {
	if d.err == nil {
		d.err = err
	}
	d.quit()
}

// draw handles one draw callback of a w×h window. It reports whether this
// draw initialized the app.
func (d *windowDriver) draw(w, h int, drawer func() gpucontext.TextureDrawer) bool {
	if d.err != nil {
		return false
	}
	if w <= 0 || h <= 0 {
		if d.initialized && !d.suspended {
			d.suspended = true
			if err := d.app.OnSuspending(); err != nil {
				d.fail(err)
			}
		}
		return false
	}

	ready := false
	switch {
	case !d.initialized:
		if err := d.app.Initialize(w, h); err != nil {
			d.fail(err)
			return false
		}
		d.initialized, ready = true, true
	default:
		if d.suspended {
			d.suspended = false
			d.app.OnResuming()
		}
		if err := d.app.OnWindowSizeChanged(w, h); err != nil {
			d.fail(err)
			return false
		}
	}

	d.presenter.begin(drawer())
	tickErr := d.app.Tick()
	if err := d.presenter.end(); err != nil {
		samples.Logger().Warn("host: draw frame", "err", err)
	}
	if tickErr != nil {
		d.fail(tickErr)
	}
	return ready
}
