// Package frontpaneltext shows the raster fonts on a front-panel display.
//
// DPad left/right cycles the font family, up/down the size. Button 1
// saves the panel as PNG. The lights follow the held buttons. The panel
// is only redrawn and presented when the selection changed.
//
// The main window shows a magnified copy of the panel, drawn with gg into
// a canvas and uploaded as a window-size dependent quad texture.
package frontpaneltext

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/samples"
	"github.com/gogpu/samples/canvas"
	"github.com/gogpu/samples/device"
	"github.com/gogpu/samples/frame"
	"github.com/gogpu/samples/frontpanel"
	"github.com/gogpu/samples/host"
	"github.com/gogpu/samples/input"
	"github.com/gogpu/samples/lifecycle"
	"github.com/gogpu/samples/media"
	"github.com/gogpu/samples/quad"
	"github.com/gogpu/samples/scene"
	"github.com/gogpu/samples/steptimer"
)

// Default settings.
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
	Title         = "FrontPanelText"
)

// previewLabel prefixes the scene resources rebuilt on resize.
const previewLabel = "panel_preview"

// Background is the linear clear color.
var Background = gputypes.Color{R: 0.052860655, G: 0.052860655, B: 0.052860655, A: 1}

var sampleLines = []string{
	"The quick brown fox jumps",
	"over the lazy dog.",
	"0123456789 !?&%$#@",
}

// Options configures a Sample.
type Options struct {
	Device []device.Option
	// Finder resolves the background and an optional shader override.
	Finder *media.Finder
	// Background is the media name of an image drawn behind the preview.
	// Empty draws a plain background.
	Background string
	// Control is the panel. Nil emulates one from the keyboard.
	Control frontpanel.Control
	// Fonts is the font table. Nil uses frontpanel.DefaultFontTable.
	Fonts *frontpanel.FontTable
	// Font and Size select the initial entry. Empty picks Go Regular, or
	// the first family of a table without it, at the size closest to 16.
	Font string
	Size int
	// CaptureDir receives the Button 1 screenshots.
	CaptureDir string
	Timer      *steptimer.Timer
}

// Sample is the front-panel text sample.
type Sample struct {
	res     *device.Resources
	machine *lifecycle.Machine
	driver  *frame.Driver
	poller  *input.Poller
	exit    *input.ExitAction

	control    frontpanel.Control
	display    *frontpanel.Display
	fonts      *frontpanel.FontTable
	current    int
	redraw     bool
	lights     input.PanelButtons
	captureDir string
	captures   []string

	shader     string
	background *gg.ImageBuf
	canvas     *canvas.Canvas

	set      *scene.Set
	renderer *quad.Renderer
	preview  *quad.Texture
}

var (
	_ host.App          = (*Sample)(nil)
	_ device.Notify     = (*Sample)(nil)
	_ lifecycle.Handler = (*Sample)(nil)
)

// New builds the font table and draws the first panel frame. No GPU work
// happens before Initialize.
func New(env host.Env, opts Options) (*Sample, error) {
	finder := opts.Finder
	if finder == nil {
		finder = media.NewFinder()
	}
	fonts := opts.Fonts
	if fonts == nil {
		var err error
		if fonts, err = frontpanel.DefaultFontTable(); err != nil {
			return nil, fmt.Errorf("frontpaneltext: %w", err)
		}
	}
	if fonts.Len() == 0 {
		return nil, fmt.Errorf("frontpaneltext: %w: empty table", frontpanel.ErrFontNotFound)
	}
	shader, err := quad.LoadShaderSource(finder)
	if err != nil {
		return nil, fmt.Errorf("frontpaneltext: %w", err)
	}

	s := &Sample{
		fonts:      fonts,
		shader:     shader,
		captureDir: opts.CaptureDir,
		redraw:     true,
	}

	if opts.Background != "" {
		path, err := finder.Find(opts.Background)
		if err != nil {
			return nil, fmt.Errorf("frontpaneltext: %w", err)
		}
		img, err := imaging.Open(path, imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("frontpaneltext: background: %w", err)
		}
		s.background = gg.ImageBufFromImage(img)
	}

	name, size := opts.Font, opts.Size
	if size <= 0 {
		size = 16
	}
	if name == "" {
		name = frontpanel.FamilyGoRegular
		if _, err := fonts.FindEntry(name, size, true); err != nil {
			name = fonts.Entry(0).Name
		}
	}
	if s.current, err = fonts.FindEntry(name, size, true); err != nil {
		return nil, fmt.Errorf("frontpaneltext: %w", err)
	}

	keyboard := input.NewKeyboard()
	keyboard.Attach(env.Events)
	s.control = opts.Control
	if s.control == nil {
		s.control = frontpanel.NewKeyboardControl(keyboard, nil)
	}
	s.display = frontpanel.NewDisplay(s.control)

	s.poller = input.NewPoller(
		input.WithKeyboard(keyboard),
		input.WithGamePad(input.KeyboardGamePad{Keyboard: keyboard}),
		input.WithPanel(s.control),
	)
	s.exit = input.NewExitAction(env.Exit)

	devOpts := make([]device.Option, 0, len(opts.Device)+1)
	if env.Presenter != nil {
		devOpts = append(devOpts, device.WithPresenter(env.Presenter))
	}
	s.res = device.New(append(devOpts, opts.Device...)...)
	s.res.RegisterDeviceNotify(s)
	s.machine = lifecycle.New(s)
	s.driver = frame.NewDriver(opts.Timer, s.update, s.render)

	s.drawPanel()
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
	snap := s.poller.Poll()
	s.exit.Check(snap)

	pressed := snap.PanelPressed
	if pressed&input.PanelDPadLeft != 0 {
		s.selectFamily(-1)
	}
	if pressed&input.PanelDPadRight != 0 {
		s.selectFamily(1)
	}
	if pressed&input.PanelDPadUp != 0 {
		s.selectSize(true)
	}
	if pressed&input.PanelDPadDown != 0 {
		s.selectSize(false)
	}
	if pressed&input.PanelButton1 != 0 {
		s.capture()
	}

	if snap.Panel != s.lights {
		if err := s.control.SetLights(snap.Panel); err != nil {
			return fmt.Errorf("frontpaneltext: lights: %w", err)
		}
		s.lights = snap.Panel
	}

	if s.redraw {
		s.drawPanel()
	}
	return nil
}

// selectFamily moves to the next or previous family, keeping the size as
// close as the family allows.
func (s *Sample) selectFamily(step int) {
	names := s.fonts.Names()
	cur := s.fonts.Entry(s.current)
	i := 0
	for j, n := range names {
		if n == cur.Name {
			i = j
			break
		}
	}
	next := names[(i+step+len(names))%len(names)]
	if idx, err := s.fonts.FindEntry(next, cur.Size, true); err == nil {
		s.setCurrent(idx)
	}
}

// selectSize moves to the next bigger or smaller size of the family.
func (s *Sample) selectSize(larger bool) {
	cur := s.fonts.Entry(s.current)
	size := cur.Size - 1
	if larger {
		size = cur.Size + 1
	}
	if idx, err := s.fonts.FindEntry(cur.Name, size, larger); err == nil {
		s.setCurrent(idx)
	}
}

func (s *Sample) setCurrent(idx int) {
	if idx == s.current {
		return
	}
	s.current = idx
	s.redraw = true
	e := s.fonts.Entry(idx)
	samples.Logger().Debug("frontpaneltext: font", "name", e.Name, "size", e.Size)
}

// drawPanel renders the selected font's name and sample lines.
func (s *Sample) drawPanel() {
	s.redraw = false
	e := s.fonts.Entry(s.current)
	d := s.display
	d.Clear()

	y := 0
	e.Font.DrawString(d, 1, y, fmt.Sprintf("%s %dpx", e.Name, e.Size), 0xFF)
	y += e.Font.LineHeight()
	for _, line := range sampleLines {
		if y >= d.Height() {
			break
		}
		e.Font.DrawString(d, 1, y, line, 0xAA)
		y += e.Font.LineHeight()
	}
}

// capture saves the panel. A failed capture is logged, not fatal.
func (s *Sample) capture() {
	path := filepath.Join(s.captureDir, fmt.Sprintf("frontpanel_%03d.png", len(s.captures)))
	if err := s.display.SaveImage(path); err != nil {
		samples.Logger().Warn("frontpaneltext: capture", "err", err)
		return
	}
	s.captures = append(s.captures, path)
}

func (s *Sample) render() error {
	if s.machine.State() != lifecycle.Ready {
		return nil
	}

	presented, err := s.display.Present()
	if err != nil {
		return err
	}
	if presented {
		if err := s.refreshPreview(); err != nil {
			return err
		}
	}

	f, err := s.res.BeginFrame()
	if err != nil {
		return err
	}
	pass := f.Clear(Background)
	s.renderer.Draw(pass, s.preview)
	return s.res.Present(f)
}

// previewSize is the canvas size for the current output. The quad covers
// half the output in each direction.
func (s *Sample) previewSize() (int, int) {
	w, h := s.res.OutputSize()
	return max(w/2, 1), max(h/2, 1)
}

// drawPreview paints the background and the magnified panel.
func (s *Sample) drawPreview() error {
	w, h := s.canvas.Size()
	panel := s.panelImage(w, h)
	pb := panel.Bounds()
	x, y := float64((w-pb.Dx())/2), float64((h-pb.Dy())/2)

	return s.canvas.Draw(func(dc *gg.Context) {
		dc.ClearWithColor(gg.RGBA{R: 0.1, G: 0.1, B: 0.12, A: 1})
		if s.background != nil {
			dc.DrawImageEx(s.background, gg.DrawImageOptions{
				DstWidth:  float64(w),
				DstHeight: float64(h),
			})
		}
		dc.SetRGB(0.35, 0.35, 0.4)
		dc.DrawRectangle(x-3, y-3, float64(pb.Dx()+6), float64(pb.Dy()+6))
		_ = dc.Fill()
		dc.DrawImage(gg.ImageBufFromImage(panel), x, y)
	})
}

// panelImage scales the panel by the largest whole factor that fits,
// keeping pixels square. Outputs smaller than the panel get a smooth fit.
func (s *Sample) panelImage(w, h int) image.Image {
	gray := s.display.Image()
	scale := min(w/s.display.Width(), h/s.display.Height())
	if scale < 1 {
		return imaging.Fit(gray, w, h, imaging.Lanczos)
	}
	return imaging.Resize(gray, s.display.Width()*scale, s.display.Height()*scale, imaging.NearestNeighbor)
}

// refreshPreview redraws the canvas and uploads it into the preview
// texture.
func (s *Sample) refreshPreview() error {
	if err := s.drawPreview(); err != nil {
		return err
	}
	img, err := s.canvas.Image()
	if err != nil {
		return err
	}
	if err := s.preview.Update(s.res.HalQueue(), img); err != nil {
		return err
	}
	return nil
}

// OnWindowSizeChanged rebuilds the preview unless the size is unchanged.
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

// OnResuming restarts elapsed time and forces a panel present, since the
// panel may have been cleared while suspended.
func (s *Sample) OnResuming() {
	s.driver.Timer().ResetElapsedTime()
	s.poller.Reset()
	s.display.MarkDirty()
}

// DefaultSize returns 1280×720.
func (s *Sample) DefaultSize() (int, int) { return DefaultWidth, DefaultHeight }

// Close releases everything.
func (s *Sample) Close() {
	s.machine.Terminate()
	s.res.Destroy()
	if s.canvas != nil {
		_ = s.canvas.Close()
		s.canvas = nil
	}
}

// OnDeviceLost releases the scene against the dying device.
func (s *Sample) OnDeviceLost() {
	if err := s.machine.DeviceLost(); err != nil {
		samples.Logger().Warn("frontpaneltext: device lost", "err", err)
	}
}

// OnDeviceRestored rebuilds the scene on the new device.
func (s *Sample) OnDeviceRestored() error {
	return s.machine.DeviceRestored()
}

// CreateDeviceDependentResources builds the quad pipeline.
func (s *Sample) CreateDeviceDependentResources() error {
	s.set = scene.NewSet(s.res.HalDevice(), s.res.Generation())
	r, err := quad.NewRenderer(s.set, s.res.HalQueue(), quad.Config{
		ColorFormat:  s.res.BackBufferFormat(),
		DepthFormat:  s.res.DepthBufferFormat(),
		ShaderSource: s.shader,
	})
	if err != nil {
		return err
	}
	s.renderer = r
	return nil
}

// CreateWindowSizeDependentResources resizes the canvas and replaces the
// preview texture.
func (s *Sample) CreateWindowSizeDependentResources() error {
	w, h := s.previewSize()
	if s.canvas == nil {
		c, err := canvas.New(w, h)
		if err != nil {
			return err
		}
		s.canvas = c
	} else if err := s.canvas.Resize(w, h); err != nil {
		return err
	}

	s.set.ReleaseMatching(func(d scene.Descriptor) bool {
		return strings.HasPrefix(d.Label, previewLabel)
	})
	s.preview = nil

	if err := s.drawPreview(); err != nil {
		return err
	}
	img, err := s.canvas.Image()
	if err != nil {
		return err
	}
	tex, err := quad.NewTexture(s.set, s.res.HalQueue(), s.renderer, img, previewLabel)
	if err != nil {
		return err
	}
	s.preview = tex
	return nil
}

// ReleaseDeviceDependentResources releases the scene. The canvas is CPU
// memory and survives.
func (s *Sample) ReleaseDeviceDependentResources() {
	if s.set != nil {
		s.set.Release()
	}
	s.set, s.renderer, s.preview = nil, nil, nil
}

// Resources returns the device holder.
func (s *Sample) Resources() *device.Resources { return s.res }

// Machine returns the lifecycle machine.
func (s *Sample) Machine() *lifecycle.Machine { return s.machine }

// Scene returns the current scene set, or nil while lost.
func (s *Sample) Scene() *scene.Set { return s.set }

// Display returns the panel display.
func (s *Sample) Display() *frontpanel.Display { return s.display }

// Control returns the panel control.
func (s *Sample) Control() frontpanel.Control { return s.control }

// Current returns the selected font entry.
func (s *Sample) Current() frontpanel.FontEntry { return s.fonts.Entry(s.current) }

// Captures returns the paths of saved screenshots.
func (s *Sample) Captures() []string { return s.captures }

// Renders returns how many frames were rendered.
func (s *Sample) Renders() uint64 { return s.driver.Renders() }
