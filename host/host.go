// Package host runs a sample either in a gogpu window or headless for a
// fixed number of ticks.
//
// A sample is constructed by a Factory before the window exists. It gets
// an Env whose Events fan out whatever the host delivers (window input or
// a key script) and whose Presenter receives every presented frame.
package host

import (
	"errors"
	"slices"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/samples/config"
	"github.com/gogpu/samples/device"
	"github.com/gogpu/samples/input"
)

// ErrNoApp is returned when a Factory returns neither an App nor an error.
var ErrNoApp = errors.New("host: factory returned no app")

// App is the event-handler contract of a sample.
type App interface {
	// Initialize creates the device and every resource for a w×h output.
	Initialize(width, height int) error
	// Tick runs one Update and, after the first tick, one Render.
	Tick() error
	OnWindowSizeChanged(width, height int) error
	OnActivated()
	OnDeactivated()
	OnSuspending() error
	OnResuming()
	// DefaultSize is the preferred output size.
	DefaultSize() (width, height int)
	Close()
}

// Env is what the host hands a sample.
type Env struct {
	Events    gpucontext.EventSource
	Presenter device.Presenter
	// Exit asks the host to stop after the current tick.
	Exit func()
}

// Factory builds a sample.
type Factory func(Env) (App, error)

// Options configures a run.
type Options struct {
	Title string
	// Width and Height of the output. Zero uses the app's DefaultSize.
	Width, Height int
	Continuous    bool

	// Frames is the number of headless ticks.
	Frames int
	// Keys are pressed before and released after their tick.
	Keys []ScriptedKey
	// Capture is the PNG path of the last headless frame.
	Capture string
}

// ScriptedKey is one key press in a headless run.
type ScriptedKey struct {
	Frame int
	Key   gpucontext.Key
}

// OptionsFromConfig converts sample settings. Key names were checked by
// config.Validate; unknown ones are skipped.
func OptionsFromConfig(cfg config.Config) Options {
	opts := Options{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Continuous: cfg.Window.Continuous,
		Frames:     cfg.Headless.Frames,
		Capture:    cfg.Headless.Capture,
	}
	for _, k := range cfg.Headless.Keys {
		if key, err := input.KeyByName(k.Key); err == nil {
			opts.Keys = append(opts.Keys, ScriptedKey{Frame: k.Frame, Key: key})
		}
	}
	return opts
}

func (o Options) size(app App) (int, int) {
	if o.Width > 0 && o.Height > 0 {
		return o.Width, o.Height
	}
	return app.DefaultSize()
}

// Events is an event source the host feeds. Samples subscribe to it like
// to any gpucontext.EventSource; the host calls Press, Release, Resize and
// Focus.
type Events struct {
	gpucontext.NullEventSource

	mu        sync.Mutex
	onPress   []func(gpucontext.Key, gpucontext.Modifiers)
	onRelease []func(gpucontext.Key, gpucontext.Modifiers)
	onResize  []func(int, int)
	onFocus   []func(bool)
}

var _ gpucontext.EventSource = (*Events)(nil)

// NewEvents returns an event source with no subscribers.
func NewEvents() *Events { return &Events{} }

// OnKeyPress subscribes fn to key presses.
func (e *Events) OnKeyPress(fn func(gpucontext.Key, gpucontext.Modifiers)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onPress = append(e.onPress, fn)
}

// OnKeyRelease subscribes fn to key releases.
func (e *Events) OnKeyRelease(fn func(gpucontext.Key, gpucontext.Modifiers)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onRelease = append(e.onRelease, fn)
}

// OnResize subscribes fn to size changes.
func (e *Events) OnResize(fn func(int, int)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onResize = append(e.onResize, fn)
}

// OnFocus subscribes fn to focus changes.
func (e *Events) OnFocus(fn func(bool)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onFocus = append(e.onFocus, fn)
}

// Press delivers a key press.
func (e *Events) Press(key gpucontext.Key, mods gpucontext.Modifiers) {
	e.mu.Lock()
	fns := slices.Clone(e.onPress)
	e.mu.Unlock()
	for _, fn := range fns {
		fn(key, mods)
	}
}

// Release delivers a key release.
func (e *Events) Release(key gpucontext.Key, mods gpucontext.Modifiers) {
	e.mu.Lock()
	fns := slices.Clone(e.onRelease)
	e.mu.Unlock()
	for _, fn := range fns {
		fn(key, mods)
	}
}

// Resize delivers a size change.
func (e *Events) Resize(width, height int) {
	e.mu.Lock()
	fns := slices.Clone(e.onResize)
	e.mu.Unlock()
	for _, fn := range fns {
		fn(width, height)
	}
}

// Focus delivers a focus change.
func (e *Events) Focus(focused bool) {
	e.mu.Lock()
	fns := slices.Clone(e.onFocus)
	e.mu.Unlock()
	for _, fn := range fns {
		fn(focused)
	}
}

// Forward subscribes e to src so everything src delivers reaches e's
// subscribers.
func (e *Events) Forward(src gpucontext.EventSource) {
	src.OnKeyPress(e.Press)
	src.OnKeyRelease(e.Release)
	src.OnResize(e.Resize)
	src.OnFocus(e.Focus)
}
