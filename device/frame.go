package device

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/samples"
)

const bytesPerPixel = 4

// Presenter receives the pixels of each presented frame in the back
// buffer's byte order (BGRA for the default format). pix is only valid
// during the call.
type Presenter interface {
	Present(pix []byte, width, height, stride int) error
}

// Frame is one frame's command recording.
type Frame struct {
	r       *Resources
	encoder hal.CommandEncoder
	pass    hal.RenderPassEncoder
}

// BeginFrame starts recording a frame.
func (r *Resources) BeginFrame() (*Frame, error) {
	if r.device == nil || r.renderTargetView == nil {
		return nil, ErrNotInitialized
	}
	if r.frame != nil {
		return nil, ErrFrameInProgress
	}
	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "frame"})
	if err != nil {
		return nil, fmt.Errorf("device: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("frame"); err != nil {
		return nil, fmt.Errorf("device: begin encoding: %w", err)
	}
	r.frame = &Frame{r: r, encoder: encoder}
	return r.frame, nil
}

// Clear begins the frame's render pass, clearing the back buffer to c and
// depth to 1, and sets the full-output viewport. It returns the pass for
// draw recording. Calling Clear twice returns the open pass.
func (f *Frame) Clear(c gputypes.Color) hal.RenderPassEncoder {
	if f.pass != nil {
		return f.pass
	}
	r := f.r
	desc := &hal.RenderPassDescriptor{
		Label: "frame_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       r.renderTargetView,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: c,
		}},
	}
	if r.depthStencilView != nil {
		desc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:            r.depthStencilView,
			DepthLoadOp:     gputypes.LoadOpClear,
			DepthStoreOp:    gputypes.StoreOpStore,
			DepthClearValue: 1,
		}
	}
	f.pass = f.encoder.BeginRenderPass(desc)

	vp := r.Viewport()
	f.pass.SetViewport(vp.X, vp.Y, vp.Width, vp.Height, vp.MinDepth, vp.MaxDepth)
	f.pass.SetScissorRect(0, 0, uint32(r.width), uint32(r.height))
	return f.pass
}

// Pass returns the open render pass, or nil before Clear.
func (f *Frame) Pass() hal.RenderPassEncoder { return f.pass }

// Encoder returns the frame's command encoder for work recorded outside
// the render pass, such as texture uploads.
func (f *Frame) Encoder() hal.CommandEncoder { return f.encoder }

// Present ends the frame, submits it and waits for completion, then hands
// the back buffer to the Presenter if one is configured.
//
// A lost device is not an error: the loss/restore cycle runs and the frame
// is dropped.
func (r *Resources) Present(f *Frame) error {
	if f == nil || f != r.frame {
		return fmt.Errorf("device: present of unknown frame")
	}
	r.frame = nil

	if f.pass != nil {
		f.pass.End()
		f.pass = nil
	}

	withReadback := r.opts.presenter != nil && r.readback != nil
	if withReadback {
		r.recordReadback(f.encoder)
	}

	cmd, err := f.encoder.EndEncoding()
	if err != nil {
		f.encoder.DiscardEncoding()
		return r.classify(fmt.Errorf("device: end encoding: %w", err))
	}
	err = r.submit(cmd)
	r.device.FreeCommandBuffer(cmd)
	if err != nil {
		return r.classify(err)
	}

	if withReadback {
		return r.deliver()
	}
	return nil
}

func (r *Resources) submit(cmd hal.CommandBuffer) error {
	if _, err := r.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return fmt.Errorf("device: submit: %w", err)
	}
	if err := r.device.WaitIdle(); err != nil {
		return fmt.Errorf("device: wait idle: %w", err)
	}
	return nil
}

// classify runs the device-lost cycle for loss errors and returns others.
func (r *Resources) classify(err error) error {
	if !errors.Is(err, ErrDeviceLost) {
		return err
	}
	return r.HandleDeviceLost()
}

func (r *Resources) recordReadback(encoder hal.CommandEncoder) {
	w, h := uint32(r.width), uint32(r.height)
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.renderTarget,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(r.renderTarget, r.readback, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{BytesPerRow: r.readbackPitch, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: r.renderTarget, Aspect: gputypes.TextureAspectAll},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.renderTarget,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
}

func (r *Resources) deliver() error {
	size := uint64(r.readbackPitch) * uint64(r.height)
	m, err := r.device.MapBuffer(r.readback, 0, size)
	if err != nil {
		return fmt.Errorf("device: map readback: %w", err)
	}
	data := unsafe.Slice((*byte)(m.Ptr), size)
	perr := r.opts.presenter.Present(data, r.width, r.height, int(r.readbackPitch))
	if err := r.device.UnmapBuffer(r.readback); err != nil {
		samples.Logger().Warn("device: unmap readback", "err", err)
	}
	if perr != nil {
		return fmt.Errorf("device: present: %w", perr)
	}
	return nil
}
