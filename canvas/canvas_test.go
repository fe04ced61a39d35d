// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package canvas

import (
	"errors"
	"testing"

	"github.com/gogpu/gg"
	"github.com/gogpu/gpucontext"
)

// mockTexture implements gpucontext.Texture and TextureUpdater.
type mockTexture struct {
	width, height int
	data          []byte
	updated       int
	destroyed     bool
	premultiplied bool
}

func (m *mockTexture) Width() int  { return m.width }
func (m *mockTexture) Height() int { return m.height }

func (m *mockTexture) UpdateData(data []byte) error {
	m.data = append(m.data[:0], data...)
	m.updated++
	return nil
}

func (m *mockTexture) Destroy()                { m.destroyed = true }
func (m *mockTexture) SetPremultiplied(p bool) { m.premultiplied = p }

// mockCreator implements gpucontext.TextureCreator.
type mockCreator struct {
	textures []*mockTexture
	failNext bool
}

func (m *mockCreator) NewTextureFromRGBA(width, height int, data []byte) (gpucontext.Texture, error) {
	if m.failNext {
		m.failNext = false
		return nil, errors.New("mock texture creation failed")
	}
	tex := &mockTexture{width: width, height: height, data: append([]byte(nil), data...)}
	m.textures = append(m.textures, tex)
	return tex, nil
}

// mockDrawer implements gpucontext.TextureDrawer.
type mockDrawer struct {
	creator   *mockCreator
	drawn     gpucontext.Texture
	x, y      float32
	drawCount int
}

func (m *mockDrawer) DrawTexture(tex gpucontext.Texture, x, y float32) error {
	m.drawn, m.x, m.y = tex, x, y
	m.drawCount++
	return nil
}

func (m *mockDrawer) TextureCreator() gpucontext.TextureCreator {
	if m.creator == nil {
		return nil
	}
	return m.creator
}

func newDrawer() *mockDrawer { return &mockDrawer{creator: &mockCreator{}} }

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantErr       error
	}{
		{"valid", 320, 200, nil},
		{"zero width", 0, 10, ErrInvalidDimensions},
		{"negative height", 10, -1, ErrInvalidDimensions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.width, tt.height)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("New() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() unexpected error = %v", err)
			}
			defer c.Close()
			if w, h := c.Size(); w != tt.width || h != tt.height {
				t.Errorf("Size() = %dx%d", w, h)
			}
			if !c.IsDirty() {
				t.Error("new canvas should be dirty")
			}
			if c.Context() == nil {
				t.Error("Context() = nil")
			}
		})
	}
}

func TestImageIsBGRA(t *testing.T) {
	c, err := New(4, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Draw(func(dc *gg.Context) {
		dc.ClearWithColor(gg.RGBA{R: 1, G: 0, B: 0, A: 1})
	}); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	img, err := c.Image()
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if img.Width != 4 || img.Height != 2 || img.Stride != 16 || len(img.Pix) != 32 {
		t.Fatalf("image geometry = %dx%d stride %d len %d", img.Width, img.Height, img.Stride, len(img.Pix))
	}
	b, g, r, a := img.At(3, 1)
	if b != 0 || g != 0 || r != 255 || a != 255 {
		t.Errorf("At(3,1) = b%d g%d r%d a%d, want pure red", b, g, r, a)
	}
	if c.IsDirty() {
		t.Error("Image should clear the dirty flag")
	}
}

func TestResize(t *testing.T) {
	c, err := New(10, 10)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if _, err := c.Image(); err != nil {
		t.Fatal(err)
	}

	if err := c.Resize(10, 10); err != nil {
		t.Fatalf("Resize same: %v", err)
	}
	if c.IsDirty() {
		t.Error("same-size Resize marked dirty")
	}

	if err := c.Resize(20, 5); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if w, h := c.Size(); w != 20 || h != 5 || !c.IsDirty() {
		t.Errorf("after Resize: %dx%d dirty=%v", w, h, c.IsDirty())
	}
	if err := c.Resize(0, 5); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("Resize(0,5) = %v", err)
	}
}

func TestRenderToUploadsOnlyWhenDirty(t *testing.T) {
	c, err := New(8, 8)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	dc := newDrawer()

	if err := c.RenderTo(dc); err != nil {
		t.Fatalf("RenderTo: %v", err)
	}
	if len(dc.creator.textures) != 1 {
		t.Fatalf("created %d textures, want 1", len(dc.creator.textures))
	}
	tex := dc.creator.textures[0]
	if !tex.premultiplied {
		t.Error("texture not marked premultiplied")
	}

	if err := c.RenderToPosition(dc, 5, 6); err != nil {
		t.Fatal(err)
	}
	if tex.updated != 0 {
		t.Errorf("clean canvas uploaded %d times", tex.updated)
	}
	if dc.x != 5 || dc.y != 6 || dc.drawCount != 2 {
		t.Errorf("draw at (%v,%v) count %d", dc.x, dc.y, dc.drawCount)
	}

	c.MarkDirty()
	if err := c.RenderTo(dc); err != nil {
		t.Fatal(err)
	}
	if tex.updated != 1 || len(dc.creator.textures) != 1 {
		t.Errorf("dirty canvas: updated %d, textures %d", tex.updated, len(dc.creator.textures))
	}
}

func TestRenderToAfterResizeRecreates(t *testing.T) {
	c, err := New(8, 8)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	dc := newDrawer()

	if err := c.RenderTo(dc); err != nil {
		t.Fatal(err)
	}
	if err := c.Resize(16, 8); err != nil {
		t.Fatal(err)
	}
	if err := c.RenderTo(dc); err != nil {
		t.Fatal(err)
	}
	if len(dc.creator.textures) != 2 {
		t.Fatalf("textures = %d, want 2", len(dc.creator.textures))
	}
	if !dc.creator.textures[0].destroyed {
		t.Error("old texture not destroyed after recreation")
	}
	if got := dc.creator.textures[1]; got.width != 16 || got.height != 8 {
		t.Errorf("new texture %dx%d", got.width, got.height)
	}
}

func TestRenderToErrors(t *testing.T) {
	c, err := New(8, 8)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.RenderTo(&mockDrawer{}); !errors.Is(err, ErrNoTextureCreator) {
		t.Errorf("no creator: %v", err)
	}

	dc := newDrawer()
	dc.creator.failNext = true
	if err := c.RenderTo(dc); err == nil {
		t.Error("expected creation failure")
	}
	if !c.IsDirty() {
		t.Error("failed upload cleared the dirty flag")
	}

	_ = c.Close()
	if err := c.RenderTo(dc); !errors.Is(err, ErrCanvasClosed) {
		t.Errorf("closed RenderTo = %v", err)
	}
	if err := c.Draw(func(*gg.Context) {}); !errors.Is(err, ErrCanvasClosed) {
		t.Errorf("closed Draw = %v", err)
	}
	if _, err := c.Image(); !errors.Is(err, ErrCanvasClosed) {
		t.Errorf("closed Image = %v", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	c, err := New(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	dc := newDrawer()
	if err := c.RenderTo(dc); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if !dc.creator.textures[0].destroyed {
		t.Error("Close did not destroy the texture")
	}
	if c.Context() != nil {
		t.Error("Context() after Close should be nil")
	}
}

func TestBlitterShortBuffer(t *testing.T) {
	var b Blitter
	if _, err := b.Upload(&mockCreator{}, 4, 4, make([]byte, 10)); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("Upload short buffer = %v", err)
	}
}

func TestBlitterBlit(t *testing.T) {
	var b Blitter
	dc := newDrawer()
	rgba := make([]byte, 2*2*4)
	if err := b.Blit(dc, 2, 2, rgba, 1, 2); err != nil {
		t.Fatal(err)
	}
	if err := b.Blit(dc, 2, 2, rgba, 1, 2); err != nil {
		t.Fatal(err)
	}
	if len(dc.creator.textures) != 1 || dc.creator.textures[0].updated != 1 {
		t.Errorf("textures %d, updates %d", len(dc.creator.textures), dc.creator.textures[0].updated)
	}
	if dc.creator.textures[0].premultiplied {
		t.Error("zero Blitter should not mark premultiplied")
	}
	b.Release()
	if b.Texture() != nil || !dc.creator.textures[0].destroyed {
		t.Error("Release left the texture alive")
	}
}
