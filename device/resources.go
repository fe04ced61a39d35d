package device

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/samples"
)

// Notify receives device loss and restore notifications. OnDeviceLost is
// called while the old device is still alive so resources can be
// destroyed against it; OnDeviceRestored after the new device and its
// size-dependent resources exist.
type Notify interface {
	OnDeviceLost()
	OnDeviceRestored() error
}

// Resources owns the GPU instance, adapter, device and queue, plus the
// window-size dependent render target and depth buffer.
//
// It is the samples' equivalent of a swap chain owner: the render target
// is an offscreen texture, and presenting copies it to the configured
// Presenter.
type Resources struct {
	opts options

	backend     hal.Backend
	instance    hal.Instance
	adapter     hal.Adapter
	adapterInfo gputypes.AdapterInfo
	device      hal.Device
	queue       hal.Queue

	renderTarget     hal.Texture
	renderTargetView hal.TextureView
	depthStencil     hal.Texture
	depthStencilView hal.TextureView
	readback         hal.Buffer
	readbackPitch    uint32

	width, height int
	generation    uint64
	sizeBuilds    uint64

	notify Notify
	frame  *Frame
}

// New returns unopened resources. Call SetWindow, CreateDeviceResources and
// CreateWindowSizeDependentResources before rendering.
func New(opts ...Option) *Resources {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Resources{opts: o, width: 1, height: 1}
}

// SetWindow records the output size without rebuilding anything.
func (r *Resources) SetWindow(width, height int) {
	r.width, r.height = clampSize(width, height)
}

// RegisterDeviceNotify sets the loss/restore listener.
func (r *Resources) RegisterDeviceNotify(n Notify) {
	r.notify = n
}

// CreateDeviceResources creates the instance, picks an adapter and opens
// the device and queue.
func (r *Resources) CreateDeviceResources() error {
	b := r.opts.backend
	if b == nil {
		var err error
		b, err = Select(r.opts.backendName)
		if err != nil {
			return err
		}
	}
	r.backend = b

	desc := &hal.InstanceDescriptor{Backends: gputypes.BackendsAll}
	if r.opts.debug {
		desc.Flags = gputypes.InstanceFlagsDebug
	}
	instance, err := b.CreateInstance(desc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInstanceCreation, err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return ErrNoAdapter
	}
	chosen := pickAdapter(adapters)

	open, err := chosen.Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return fmt.Errorf("%w: %w", ErrDeviceCreation, err)
	}

	r.instance = instance
	r.adapter = chosen.Adapter
	r.adapterInfo = chosen.Info
	r.device = open.Device
	r.queue = open.Queue
	if r.opts.wrapQueue != nil {
		r.queue = r.opts.wrapQueue(r.queue)
	}
	r.generation++

	samples.Logger().Info("device: created",
		"backend", b.Variant().String(),
		"adapter", chosen.Info.Name,
		"generation", r.generation)
	return nil
}

// pickAdapter prefers a discrete GPU, then an integrated one, then
// whatever came first.
func pickAdapter(adapters []hal.ExposedAdapter) hal.ExposedAdapter {
	for _, want := range []gputypes.DeviceType{gputypes.DeviceTypeDiscreteGPU, gputypes.DeviceTypeIntegratedGPU} {
		for _, a := range adapters {
			if a.Info.DeviceType == want {
				return a
			}
		}
	}
	return adapters[0]
}

// CreateWindowSizeDependentResources (re)creates the render target, the
// depth buffer and the readback buffer for the current output size.
func (r *Resources) CreateWindowSizeDependentResources() error {
	if r.device == nil {
		return ErrNotInitialized
	}
	if r.renderTarget != nil {
		if err := r.device.WaitIdle(); err != nil {
			return fmt.Errorf("device: wait idle before resize: %w", err)
		}
	}
	r.destroySizeDependent()

	w, h := uint32(r.width), uint32(r.height)
	size := hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	var err error
	r.renderTarget, r.renderTargetView, err = r.createTarget("back_buffer", size, r.opts.backBufferFormat,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc|gputypes.TextureUsageTextureBinding)
	if err != nil {
		r.destroySizeDependent()
		return err
	}

	if r.opts.depthFormat != gputypes.TextureFormatUndefined {
		r.depthStencil, r.depthStencilView, err = r.createTarget("depth_stencil", size, r.opts.depthFormat,
			gputypes.TextureUsageRenderAttachment)
		if err != nil {
			r.destroySizeDependent()
			return err
		}
	}

	if r.opts.presenter != nil {
		// Copy rows must be 256-byte aligned.
		const copyPitchAlignment = 256
		r.readbackPitch = (w*bytesPerPixel + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
		r.readback, err = r.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "back_buffer_readback",
			Size:  uint64(r.readbackPitch) * uint64(h),
			Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			r.destroySizeDependent()
			return fmt.Errorf("device: readback buffer: %w", err)
		}
	}

	r.sizeBuilds++
	samples.Logger().Debug("device: window size dependent resources",
		"width", r.width, "height", r.height, "format", r.opts.backBufferFormat.String())
	return nil
}

func (r *Resources) createTarget(label string, size hal.Extent3D, format gputypes.TextureFormat, usage gputypes.TextureUsage) (hal.Texture, hal.TextureView, error) {
	tex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrTextureCreation, label, err)
	}
	view, err := r.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		r.device.DestroyTexture(tex)
		return nil, nil, fmt.Errorf("%w: %s view: %w", ErrTextureCreation, label, err)
	}
	return tex, view, nil
}

// WindowSizeChanged applies a new output size. It returns false, and does
// nothing, when the size equals the current one.
func (r *Resources) WindowSizeChanged(width, height int) (bool, error) {
	width, height = clampSize(width, height)
	if width == r.width && height == r.height {
		return false, nil
	}
	r.width, r.height = width, height
	if r.device == nil {
		return true, nil
	}
	if err := r.CreateWindowSizeDependentResources(); err != nil {
		return true, err
	}
	return true, nil
}

// HandleDeviceLost tears the device down, recreates it and its
// size-dependent resources, and notifies the listener around the cycle.
func (r *Resources) HandleDeviceLost() error {
	samples.Logger().Warn("device: lost", "generation", r.generation)

	if r.notify != nil {
		r.notify.OnDeviceLost()
	}
	r.frame = nil
	r.destroyDevice()

	if err := r.CreateDeviceResources(); err != nil {
		return fmt.Errorf("device: recreate after loss: %w", err)
	}
	if err := r.CreateWindowSizeDependentResources(); err != nil {
		return fmt.Errorf("device: recreate after loss: %w", err)
	}

	if r.notify != nil {
		if err := r.notify.OnDeviceRestored(); err != nil {
			return fmt.Errorf("device: restore: %w", err)
		}
	}
	return nil
}

// WaitIdle blocks until the queue drained. Samples call it when suspending.
func (r *Resources) WaitIdle() error {
	if r.device == nil {
		return nil
	}
	return r.device.WaitIdle()
}

// Destroy releases everything. Safe to call more than once.
func (r *Resources) Destroy() {
	r.frame = nil
	r.destroyDevice()
}

func (r *Resources) destroyDevice() {
	if r.device != nil {
		_ = r.device.WaitIdle()
	}
	r.destroySizeDependent()
	if r.device != nil {
		r.device.Destroy()
		r.device = nil
	}
	r.queue = nil
	if r.adapter != nil {
		r.adapter.Destroy()
		r.adapter = nil
	}
	if r.instance != nil {
		r.instance.Destroy()
		r.instance = nil
	}
}

func (r *Resources) destroySizeDependent() {
	if r.device == nil {
		return
	}
	if r.readback != nil {
		r.device.DestroyBuffer(r.readback)
		r.readback = nil
	}
	if r.depthStencilView != nil {
		r.device.DestroyTextureView(r.depthStencilView)
		r.depthStencilView = nil
	}
	if r.depthStencil != nil {
		r.device.DestroyTexture(r.depthStencil)
		r.depthStencil = nil
	}
	if r.renderTargetView != nil {
		r.device.DestroyTextureView(r.renderTargetView)
		r.renderTargetView = nil
	}
	if r.renderTarget != nil {
		r.device.DestroyTexture(r.renderTarget)
		r.renderTarget = nil
	}
}

func clampSize(w, h int) (int, int) {
	return max(w, 1), max(h, 1)
}

// HalDevice returns the hal device, or nil before CreateDeviceResources.
func (r *Resources) HalDevice() hal.Device { return r.device }

// HalQueue returns the hal queue.
func (r *Resources) HalQueue() hal.Queue { return r.queue }

// BackBufferFormat returns the render target format.
func (r *Resources) BackBufferFormat() gputypes.TextureFormat { return r.opts.backBufferFormat }

// DepthBufferFormat returns the depth format, or TextureFormatUndefined.
func (r *Resources) DepthBufferFormat() gputypes.TextureFormat { return r.opts.depthFormat }

// RenderTargetView returns the back buffer view.
func (r *Resources) RenderTargetView() hal.TextureView { return r.renderTargetView }

// DepthStencilView returns the depth view, or nil.
func (r *Resources) DepthStencilView() hal.TextureView { return r.depthStencilView }

// OutputSize returns the current output size.
func (r *Resources) OutputSize() (width, height int) { return r.width, r.height }

// Generation counts device creations. It increments on every restore.
func (r *Resources) Generation() uint64 { return r.generation }

// SizeBuilds counts how often size-dependent resources were built.
func (r *Resources) SizeBuilds() uint64 { return r.sizeBuilds }

// Viewport returns the full-output viewport.
func (r *Resources) Viewport() Viewport {
	return Viewport{Width: float32(r.width), Height: float32(r.height), MaxDepth: 1}
}

// Viewport is a render pass viewport.
type Viewport struct {
	X, Y, Width, Height float32
	MinDepth, MaxDepth  float32
}
