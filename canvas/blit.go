// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package canvas

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
)

// ErrNoTextureCreator is returned when the drawer cannot create textures.
var ErrNoTextureCreator = errors.New("canvas: drawer has no texture creator")

// textureDestroyer matches gogpu.Texture.Destroy.
type textureDestroyer interface {
	Destroy()
}

// Blitter keeps one window texture in step with an RGBA pixel buffer.
// The texture is recreated when the size changes and updated in place
// otherwise.
type Blitter struct {
	tex  gpucontext.Texture
	old  gpucontext.Texture
	w, h int

	// Premultiplied marks new textures as holding premultiplied alpha.
	Premultiplied bool
}

// Upload copies rgba (width*height*4 bytes) into the texture, creating it
// through creator when needed.
func (b *Blitter) Upload(creator gpucontext.TextureCreator, width, height int, rgba []byte) (gpucontext.Texture, error) {
	if len(rgba) < width*height*4 {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d", ErrInvalidDimensions, len(rgba), width, height)
	}
	if b.tex != nil && (b.w != width || b.h != height) {
		// The old texture may still be referenced by in-flight frames.
		// It is destroyed after the next creation, which waits for the GPU.
		destroy(b.old)
		b.old, b.tex = b.tex, nil
	}

	if b.tex != nil {
		if u, ok := b.tex.(gpucontext.TextureUpdater); ok {
			if err := u.UpdateData(rgba[:width*height*4]); err != nil {
				return nil, fmt.Errorf("canvas: texture update: %w", err)
			}
			return b.tex, nil
		}
		destroy(b.tex)
		b.tex = nil
	}

	if creator == nil {
		return nil, ErrNoTextureCreator
	}
	tex, err := creator.NewTextureFromRGBA(width, height, rgba[:width*height*4])
	if err != nil {
		return nil, fmt.Errorf("canvas: create texture: %w", err)
	}
	if b.Premultiplied {
		if pt, ok := tex.(interface{ SetPremultiplied(bool) }); ok {
			pt.SetPremultiplied(true)
		}
	}
	destroy(b.old)
	b.old = nil
	b.tex, b.w, b.h = tex, width, height
	return tex, nil
}

// Blit uploads rgba through dc's texture creator and draws it at (x, y).
func (b *Blitter) Blit(dc gpucontext.TextureDrawer, width, height int, rgba []byte, x, y float32) error {
	tex, err := b.Upload(dc.TextureCreator(), width, height, rgba)
	if err != nil {
		return err
	}
	return dc.DrawTexture(tex, x, y)
}

// Texture returns the current texture, or nil before the first upload.
func (b *Blitter) Texture() gpucontext.Texture { return b.tex }

// Release destroys the textures. The Blitter can be reused afterwards.
func (b *Blitter) Release() {
	destroy(b.old)
	destroy(b.tex)
	b.old, b.tex = nil, nil
	b.w, b.h = 0, 0
}

func destroy(t gpucontext.Texture) {
	if d, ok := t.(textureDestroyer); ok {
		d.Destroy()
	}
}
