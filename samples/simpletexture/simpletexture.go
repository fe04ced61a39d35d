// Package simpletexture draws one textured quad in the middle of the
// window.
//
// The texture is decoded once at construction. Everything on the GPU is
// created into a scene.Set per device generation, so a lost device is
// handled by releasing the set and building a new one.
package simpletexture

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/samples"
	"github.com/gogpu/samples/device"
	"github.com/gogpu/samples/frame"
	"github.com/gogpu/samples/host"
	"github.com/gogpu/samples/imageload"
	"github.com/gogpu/samples/input"
	"github.com/gogpu/samples/lifecycle"
	"github.com/gogpu/samples/media"
	"github.com/gogpu/samples/quad"
	"github.com/gogpu/samples/scene"
	"github.com/gogpu/samples/steptimer"
)

// Default settings.
const (
	DefaultWidth   = 1280
	DefaultHeight  = 720
	DefaultTexture = "sunset.jpg"
	Title          = "SimpleTexture"
)

// Background is the linear clear color.
var Background = gputypes.Color{R: 0.052860655, G: 0.052860655, B: 0.052860655, A: 1}

// Options configures a Sample.
type Options struct {
	// Device options, appended after the presenter from the host.
	Device []device.Option
	// Finder resolves the texture and an optional shader override. Nil
	// uses media.NewFinder().
	Finder *media.Finder
	// Texture is the media name of the image. Empty uses DefaultTexture.
	Texture string
	// Timer drives Update. Nil uses a real clock.
	Timer *steptimer.Timer
}

// Sample is the textured quad sample.
type Sample struct {
	res     *device.Resources
	machine *lifecycle.Machine
	driver  *frame.Driver
	poller  *input.Poller
	exit    *input.ExitAction

	image  *imageload.Image
	shader string

	set      *scene.Set
	renderer *quad.Renderer
	texture  *quad.Texture
}

var (
	_ host.App          = (*Sample)(nil)
	_ device.Notify     = (*Sample)(nil)
	_ lifecycle.Handler = (*Sample)(nil)
)

// New decodes the texture and prepares the sample. No GPU work happens
// before Initialize.
func New(env host.Env, opts Options) (*Sample, error) {
	finder := opts.Finder
	if finder == nil {
		finder = media.NewFinder()
	}
	name := opts.Texture
	if name == "" {
		name = DefaultTexture
	}
	path, err := finder.Find(name)
	if err != nil {
		return nil, fmt.Errorf("simpletexture: %w", err)
	}
	img, err := imageload.Load(path)
	if err != nil {
		return nil, fmt.Errorf("simpletexture: %w", err)
	}
	shader, err := quad.LoadShaderSource(finder)
	if err != nil {
		return nil, fmt.Errorf("simpletexture: %w", err)
	}

	s := &Sample{image: img, shader: shader}

	devOpts := make([]device.Option, 0, len(opts.Device)+1)
	if env.Presenter != nil {
		devOpts = append(devOpts, device.WithPresenter(env.Presenter))
	}
	s.res = device.New(append(devOpts, opts.Device...)...)
	s.res.RegisterDeviceNotify(s)
	s.machine = lifecycle.New(s)

	keyboard := input.NewKeyboard()
	keyboard.Attach(env.Events)
	s.poller = input.NewPoller(
		input.WithKeyboard(keyboard),
		input.WithGamePad(input.KeyboardGamePad{Keyboard: keyboard}),
	)
	s.exit = input.NewExitAction(env.Exit)
	s.driver = frame.NewDriver(opts.Timer, s.update, s.render)

	samples.Logger().Info("simpletexture: texture loaded",
		"path", path, "width", img.Width, "height", img.Height, "source", img.Source)
	return s, nil
}

// Factory returns a host factory building the sample with opts.
func Factory(opts Options) host.Factory {
	return func(env host.Env) (host.App, error) {
		return New(env, opts)
	}
}

// Initialize creates the device and all resources for a w×h output.
func (s *Sample) Initialize(width, height int) error {
	s.res.SetWindow(width, height)
	if err := s.res.CreateDeviceResources(); err != nil {
		return err
	}
	if err := s.res.CreateWindowSizeDependentResources(); err != nil {
		return err
	}
	return s.machine.Initialize()
}

// Tick runs one Update and, from the second tick on, one Render.
func (s *Sample) Tick() error {
	return s.driver.Tick()
}

func (s *Sample) update(*steptimer.Timer) error {
	s.exit.Check(s.poller.Poll())
	return nil
}

func (s *Sample) render() error {
	if s.machine.State() != lifecycle.Ready {
		return nil
	}
	f, err := s.res.BeginFrame()
	if err != nil {
		return err
	}
	pass := f.Clear(Background)
	s.renderer.Draw(pass, s.texture)
	return s.res.Present(f)
}

// OnWindowSizeChanged rebuilds size-dependent resources unless the size
// is unchanged.
func (s *Sample) OnWindowSizeChanged(width, height int) error {
	changed, err := s.res.WindowSizeChanged(width, height)
	if err != nil {
		return err
	}
	return s.machine.WindowSizeChanged(changed)
}

// OnActivated is called when the window gains focus.
func (s *Sample) OnActivated() {}

// OnDeactivated drops held keys; their releases go to another window.
func (s *Sample) OnDeactivated() {
	s.poller.Reset()
}

// OnSuspending waits for the GPU to go idle.
func (s *Sample) OnSuspending() error {
	return s.res.WaitIdle()
}

// OnResuming restarts elapsed time so the pause is not one long frame.
func (s *Sample) OnResuming() {
	s.driver.Timer().ResetElapsedTime()
	s.poller.Reset()
}

// DefaultSize returns 1280×720.
func (s *Sample) DefaultSize() (int, int) { return DefaultWidth, DefaultHeight }

// Close releases everything.
func (s *Sample) Close() {
	s.machine.Terminate()
	s.res.Destroy()
}

// OnDeviceLost releases the scene against the dying device.
func (s *Sample) OnDeviceLost() {
	if err := s.machine.DeviceLost(); err != nil {
		samples.Logger().Warn("simpletexture: device lost", "err", err)
	}
}

// OnDeviceRestored rebuilds the scene on the new device.
func (s *Sample) OnDeviceRestored() error {
	return s.machine.DeviceRestored()
}

// CreateDeviceDependentResources builds the quad pipeline and texture.
func (s *Sample) CreateDeviceDependentResources() error {
	s.set = scene.NewSet(s.res.HalDevice(), s.res.Generation())
	queue := s.res.HalQueue()

	r, err := quad.NewRenderer(s.set, queue, quad.Config{
		ColorFormat:  s.res.BackBufferFormat(),
		DepthFormat:  s.res.DepthBufferFormat(),
		ShaderSource: s.shader,
	})
	if err != nil {
		return err
	}
	tex, err := quad.NewTexture(s.set, queue, r, s.image, "sunset")
	if err != nil {
		return err
	}
	s.renderer, s.texture = r, tex
	return nil
}

// CreateWindowSizeDependentResources has nothing to do: the quad is
// defined in clip space.
func (s *Sample) CreateWindowSizeDependentResources() error { return nil }

// ReleaseDeviceDependentResources releases the scene.
func (s *Sample) ReleaseDeviceDependentResources() {
	if s.set != nil {
		s.set.Release()
	}
	s.set, s.renderer, s.texture = nil, nil, nil
}

// Resources returns the device holder.
func (s *Sample) Resources() *device.Resources { return s.res }

// Machine returns the lifecycle machine.
func (s *Sample) Machine() *lifecycle.Machine { return s.machine }

// Scene returns the current scene set, or nil while lost.
func (s *Sample) Scene() *scene.Set { return s.set }

// Renders returns how many frames were rendered.
func (s *Sample) Renders() uint64 { return s.driver.Renders() }

// Exits returns how many exit requests were made.
func (s *Sample) Exits() int { return s.exit.Fired() }
