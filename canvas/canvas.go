// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package canvas

import (
	"errors"
	"fmt"

	"github.com/gogpu/gg"
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/samples"
	"github.com/gogpu/samples/imageload"
)

// Common errors returned by Canvas operations.
var (
	// ErrCanvasClosed is returned when operations are attempted on a closed canvas.
	ErrCanvasClosed = errors.New("canvas: canvas is closed")

	// ErrInvalidDimensions is returned when width or height is invalid.
	ErrInvalidDimensions = errors.New("canvas: invalid dimensions")
)

// Canvas wraps a gg.Context and tracks whether its pixels changed since
// they were last taken.
type Canvas struct {
	ctx    *gg.Context
	blit   Blitter
	dirty  bool
	width  int
	height int
	closed bool
}

// New creates a width×height canvas.
func New(width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	c := &Canvas{
		ctx:    gg.NewContext(width, height),
		width:  width,
		height: height,
		dirty:  true,
		blit:   Blitter{Premultiplied: true},
	}
	return c, nil
}

// Context returns the gg drawing context, or nil once closed. Call
// MarkDirty after drawing through it directly.
func (c *Canvas) Context() *gg.Context {
	if c.closed {
		return nil
	}
	return c.ctx
}

// Size returns the canvas size in pixels.
func (c *Canvas) Size() (width, height int) { return c.width, c.height }

// MarkDirty flags the pixels as changed.
func (c *Canvas) MarkDirty() { c.dirty = true }

// IsDirty reports whether the pixels changed since the last Image or
// RenderTo.
func (c *Canvas) IsDirty() bool { return c.dirty }

// Draw calls fn with the gg context and marks the canvas dirty.
func (c *Canvas) Draw(fn func(*gg.Context)) error {
	if c.closed {
		return ErrCanvasClosed
	}
	fn(c.ctx)
	c.dirty = true
	return nil
}

// Resize changes the canvas size, clearing its contents. Resizing to the
// current size does nothing.
func (c *Canvas) Resize(width, height int) error {
	if c.closed {
		return ErrCanvasClosed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	if c.width == width && c.height == height {
		return nil
	}
	if err := c.ctx.Resize(width, height); err != nil {
		return fmt.Errorf("canvas: context resize: %w", err)
	}
	c.width, c.height = width, height
	c.dirty = true
	return nil
}

// pixels flushes pending accelerator work and returns the RGBA pixmap.
func (c *Canvas) pixels() []byte {
	if err := c.ctx.FlushGPU(); err != nil {
		// The CPU-rendered content is still in the pixmap.
		samples.Logger().Warn("canvas: flush accelerator", "err", err)
	}
	return c.ctx.ResizeTarget().Data()
}

// Image returns the canvas contents as BGRA and clears the dirty flag.
func (c *Canvas) Image() (*imageload.Image, error) {
	if c.closed {
		return nil, ErrCanvasClosed
	}
	rgba := c.pixels()
	img := &imageload.Image{
		Width:  c.width,
		Height: c.height,
		Stride: c.width * imageload.BytesPerPixel,
		Pix:    make([]byte, len(rgba)),
		Source: "RGBA",
	}
	for i := 0; i+3 < len(rgba); i += 4 {
		img.Pix[i+0] = rgba[i+2]
		img.Pix[i+1] = rgba[i+1]
		img.Pix[i+2] = rgba[i+0]
		img.Pix[i+3] = rgba[i+3]
	}
	c.dirty = false
	return img, nil
}

// RenderTo draws the canvas at (0, 0) of a gogpu window.
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    _ = c.RenderTo(dc.AsTextureDrawer())
//	})
func (c *Canvas) RenderTo(dc gpucontext.TextureDrawer) error {
	return c.RenderToPosition(dc, 0, 0)
}

// RenderToPosition draws the canvas at (x, y), uploading only when dirty.
func (c *Canvas) RenderToPosition(dc gpucontext.TextureDrawer, x, y float32) error {
	if c.closed {
		return ErrCanvasClosed
	}
	tex := c.blit.Texture()
	if c.dirty || tex == nil {
		var err error
		tex, err = c.blit.Upload(dc.TextureCreator(), c.width, c.height, c.pixels())
		if err != nil {
			return err
		}
		c.dirty = false
	}
	return dc.DrawTexture(tex, x, y)
}

// Close releases the texture and the gg context. Close is idempotent.
func (c *Canvas) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.blit.Release()
	if c.ctx != nil {
		_ = c.ctx.Close()
		c.ctx = nil
	}
	return nil
}
