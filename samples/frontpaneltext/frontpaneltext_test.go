package frontpaneltext

import (
	"context"
	"path/filepath"
	"slices"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/samples/device"
	"github.com/gogpu/samples/frontpanel"
	"github.com/gogpu/samples/host"
	"github.com/gogpu/samples/input"
	"github.com/gogpu/samples/lifecycle"
	"github.com/gogpu/samples/media"
	"github.com/gogpu/samples/scene"
)

type harness struct {
	s      *Sample
	events *host.Events
	ctrl   *frontpanel.MemoryControl
	exits  int
}

func baseOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		Device:     []device.Option{device.WithBackend(noop.API{})},
		Finder:     media.NewFinder(media.WithoutDefaultRoots(), media.WithRoots(t.TempDir()), media.WithMaxAscent(0)),
		CaptureDir: t.TempDir(),
	}
}

// newHarness runs the sample on a memory panel at 640x360.
func newHarness(t *testing.T, tweak func(*Options)) *harness {
	t.Helper()
	hs := &harness{events: host.NewEvents(), ctrl: frontpanel.NewMemoryControl(frontpanel.Width, frontpanel.Height)}
	opts := baseOptions(t)
	opts.Control = hs.ctrl
	if tweak != nil {
		tweak(&opts)
	}
	s, err := New(host.Env{Events: hs.events, Exit: func() { hs.exits++ }}, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	if err := s.Initialize(640, 360); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	hs.s = s
	return hs
}

func (hs *harness) tick(t *testing.T, n int) {
	t.Helper()
	for range n {
		if err := hs.s.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
}

// click presses b for one tick and releases it for the next.
func (hs *harness) click(t *testing.T, b input.PanelButtons) {
	t.Helper()
	hs.ctrl.Press(b)
	hs.tick(t, 1)
	hs.ctrl.Release(b)
	hs.tick(t, 1)
}

func (hs *harness) current() (string, int) {
	e := hs.s.Current()
	return e.Name, e.Size
}

func TestInitialSelection(t *testing.T) {
	hs := newHarness(t, nil)
	if name, size := hs.current(); name != frontpanel.FamilyGoRegular || size != 16 {
		t.Errorf("current = %s %d, want Go Regular 16", name, size)
	}

	hs = newHarness(t, func(o *Options) { o.Font, o.Size = frontpanel.FamilyGoMono, 22 })
	if name, size := hs.current(); name != frontpanel.FamilyGoMono || size != 24 {
		t.Errorf("current = %s %d, want Go Mono 24", name, size)
	}
}

func TestUnknownFont(t *testing.T) {
	opts := baseOptions(t)
	opts.Font = "Comic"
	if _, err := New(host.Env{Events: host.NewEvents()}, opts); err == nil {
		t.Error("unknown font accepted")
	}
}

func TestPanelPresentedOnlyOnChange(t *testing.T) {
	hs := newHarness(t, nil)
	hs.tick(t, 5)
	if got := hs.ctrl.Presents(); got != 1 {
		t.Fatalf("presents after idle ticks = %d, want 1", got)
	}

	hs.click(t, input.PanelDPadRight)
	if got := hs.ctrl.Presents(); got != 2 {
		t.Errorf("presents after font change = %d, want 2", got)
	}

	hs.tick(t, 3)
	if got := hs.ctrl.Presents(); got != 2 {
		t.Errorf("presents after idle ticks = %d, want 2", got)
	}
	if !slices.Equal(hs.ctrl.Frame(), hs.s.Display().Buffer()) {
		t.Error("panel frame differs from display buffer")
	}
}

func TestFamilyCycling(t *testing.T) {
	hs := newHarness(t, nil)
	hs.tick(t, 1)

	steps := []struct {
		button input.PanelButtons
		name   string
		size   int
	}{
		{input.PanelDPadRight, frontpanel.FamilyInconsolata, 16},
		{input.PanelDPadRight, frontpanel.FamilyBasic, 13},
		{input.PanelDPadLeft, frontpanel.FamilyInconsolata, 16},
		{input.PanelDPadLeft, frontpanel.FamilyGoRegular, 16},
		{input.PanelDPadLeft, frontpanel.FamilyGoMono, 16},
	}
	for i, st := range steps {
		hs.click(t, st.button)
		if name, size := hs.current(); name != st.name || size != st.size {
			t.Errorf("step %d: current = %s %d, want %s %d", i, name, size, st.name, st.size)
		}
	}
}

func TestSizeCycling(t *testing.T) {
	hs := newHarness(t, nil)
	hs.tick(t, 1)

	steps := []struct {
		button input.PanelButtons
		size   int
	}{
		{input.PanelDPadUp, 20},
		{input.PanelDPadUp, 24},
		{input.PanelDPadDown, 20},
		{input.PanelDPadDown, 16},
		{input.PanelDPadDown, 12},
		{input.PanelDPadDown, 10},
		{input.PanelDPadDown, 10},
	}
	for i, st := range steps {
		hs.click(t, st.button)
		if _, size := hs.current(); size != st.size {
			t.Errorf("step %d: size = %d, want %d", i, size, st.size)
		}
	}

	presents := hs.ctrl.Presents()
	hs.click(t, input.PanelDPadDown)
	if hs.ctrl.Presents() != presents {
		t.Error("press at the smallest size presented the panel")
	}
}

func TestLightsFollowButtons(t *testing.T) {
	hs := newHarness(t, nil)
	hs.ctrl.Press(input.PanelButton3 | input.PanelButton5)
	hs.tick(t, 1)
	if got := hs.ctrl.Lights(); got != input.PanelButton3|input.PanelButton5 {
		t.Errorf("lights = %b, want buttons 3 and 5", got)
	}
	hs.ctrl.Release(input.PanelButton3)
	hs.tick(t, 1)
	if got := hs.ctrl.Lights(); got != input.PanelButton5 {
		t.Errorf("lights = %b, want button 5", got)
	}
}

func TestCaptureButton(t *testing.T) {
	hs := newHarness(t, nil)
	hs.tick(t, 1)
	hs.click(t, input.PanelButton1)
	hs.click(t, input.PanelButton1)

	caps := hs.s.Captures()
	if len(caps) != 2 || filepath.Base(caps[1]) != "frontpanel_001.png" {
		t.Fatalf("captures = %v", caps)
	}
	img, err := imaging.Open(caps[0])
	if err != nil {
		t.Fatalf("open capture: %v", err)
	}
	if b := img.Bounds(); b.Dx() != frontpanel.Width || b.Dy() != frontpanel.Height {
		t.Errorf("capture size = %v", b)
	}
}

func TestKeyboardDrivesDefaultControl(t *testing.T) {
	events := host.NewEvents()
	opts := baseOptions(t)
	s, err := New(host.Env{Events: events}, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	if err := s.Initialize(320, 180); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	events.Press(gpucontext.KeyUp, 0)
	if err := s.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	events.Release(gpucontext.KeyUp, 0)
	if e := s.Current(); e.Size != 20 {
		t.Errorf("size = %d, want 20", e.Size)
	}
	if _, ok := s.Control().(*frontpanel.KeyboardControl); !ok {
		t.Errorf("control = %T, want *frontpanel.KeyboardControl", s.Control())
	}
}

func TestExitFiresOnce(t *testing.T) {
	hs := newHarness(t, nil)
	hs.events.Press(gpucontext.KeyEscape, 0)
	hs.events.Release(gpucontext.KeyEscape, 0)
	hs.tick(t, 3)
	if hs.exits != 1 {
		t.Errorf("exits = %d, want 1", hs.exits)
	}
}

func previewTexture(t *testing.T, set *scene.Set) scene.Descriptor {
	t.Helper()
	var found []scene.Descriptor
	for _, d := range set.Descriptors() {
		if d.Kind == scene.KindTexture {
			found = append(found, d)
		}
	}
	if len(found) != 1 {
		t.Fatalf("textures = %v, want one", found)
	}
	return found[0]
}

func TestWindowSizeChangedRebuildsPreview(t *testing.T) {
	hs := newHarness(t, nil)
	s := hs.s
	if d := previewTexture(t, s.Scene()); d.Width != 320 || d.Height != 180 {
		t.Errorf("preview = %dx%d, want 320x180", d.Width, d.Height)
	}
	before := s.Scene().Descriptors()

	if err := s.OnWindowSizeChanged(640, 360); err != nil {
		t.Fatalf("OnWindowSizeChanged: %v", err)
	}
	if !slices.Equal(before, s.Scene().Descriptors()) {
		t.Error("same-size change touched the scene")
	}

	if err := s.OnWindowSizeChanged(800, 400); err != nil {
		t.Fatalf("OnWindowSizeChanged: %v", err)
	}
	if d := previewTexture(t, s.Scene()); d.Width != 400 || d.Height != 200 {
		t.Errorf("preview = %dx%d, want 400x200", d.Width, d.Height)
	}
	if got, want := s.Scene().Len(), len(before); got != want {
		t.Errorf("scene holds %d resources, want %d", got, want)
	}
	hs.tick(t, 2)
}

func TestDeviceLostRestoresIdenticalScene(t *testing.T) {
	hs := newHarness(t, nil)
	s := hs.s
	hs.tick(t, 2)
	before := s.Scene().Descriptors()

	if err := s.Resources().HandleDeviceLost(); err != nil {
		t.Fatalf("HandleDeviceLost: %v", err)
	}
	if s.Machine().State() != lifecycle.Ready {
		t.Fatalf("state = %v", s.Machine().State())
	}
	if after := s.Scene().Descriptors(); !slices.Equal(before, after) {
		t.Errorf("descriptors differ after restore:\nbefore %v\nafter  %v", before, after)
	}
	hs.tick(t, 1)
	if s.Renders() != 2 {
		t.Errorf("Renders() = %d, want 2", s.Renders())
	}
}

func TestPanelImageScaling(t *testing.T) {
	hs := newHarness(t, nil)
	tests := []struct {
		w, h         int
		wantW, wantH int
		maxW, maxH   int
	}{
		{640, 360, 512, 128, 640, 360},
		{256, 64, 256, 64, 256, 64},
		{1000, 100, 256, 64, 1000, 100},
		{100, 50, 0, 0, 100, 50},
	}
	for _, tt := range tests {
		b := hs.s.panelImage(tt.w, tt.h).Bounds()
		if tt.wantW > 0 && (b.Dx() != tt.wantW || b.Dy() != tt.wantH) {
			t.Errorf("panelImage(%d, %d) = %dx%d, want %dx%d", tt.w, tt.h, b.Dx(), b.Dy(), tt.wantW, tt.wantH)
		}
		if b.Dx() > tt.maxW || b.Dy() > tt.maxH {
			t.Errorf("panelImage(%d, %d) = %dx%d does not fit", tt.w, tt.h, b.Dx(), b.Dy())
		}
	}
}

func TestHeadlessRun(t *testing.T) {
	capture := filepath.Join(t.TempDir(), "window.png")
	opts := baseOptions(t)
	res, err := host.RunHeadless(context.Background(), host.Options{
		Width: 320, Height: 180, Frames: 6, Capture: capture,
		Keys: []host.ScriptedKey{{Frame: 2, Key: gpucontext.KeyRight}, {Frame: 3, Key: gpucontext.Key1}},
	}, Factory(opts))
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if res.Ticks != 6 || res.Presented != 5 {
		t.Errorf("result = %+v", res)
	}
	img, err := imaging.Open(capture)
	if err != nil {
		t.Fatalf("open capture: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 180 {
		t.Errorf("capture = %v, want 320x180", b)
	}
	if _, err := imaging.Open(filepath.Join(opts.CaptureDir, "frontpanel_000.png")); err != nil {
		t.Errorf("panel capture missing: %v", err)
	}
}
