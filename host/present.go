package host

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/samples"
	"github.com/gogpu/samples/canvas"
	"github.com/gogpu/samples/device"
)

// ErrNoFrame is returned when a capture is requested before any frame
// was presented.
var ErrNoFrame = errors.New("host: no frame presented")

// toNRGBA copies a BGRA frame into dst, reallocating it on size change.
func toNRGBA(dst *image.NRGBA, pix []byte, width, height, stride int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 || stride < width*4 || len(pix) < (height-1)*stride+width*4 {
		return dst, fmt.Errorf("host: frame %dx%d stride %d with %d bytes", width, height, stride, len(pix))
	}
	if dst == nil || dst.Rect.Dx() != width || dst.Rect.Dy() != height {
		dst = image.NewNRGBA(image.Rect(0, 0, width, height))
	}
	for y := range height {
		src := pix[y*stride : y*stride+width*4]
		row := dst.Pix[y*dst.Stride : y*dst.Stride+width*4]
		for i := 0; i < len(src); i += 4 {
			row[i+0] = src[i+2]
			row[i+1] = src[i+1]
			row[i+2] = src[i+0]
			row[i+3] = src[i+3]
		}
	}
	return dst, nil
}

// FramePresenter keeps the most recent frame. Headless runs capture it.
type FramePresenter struct {
	mu     sync.Mutex
	img    *image.NRGBA
	frames int
}

var _ device.Presenter = (*FramePresenter)(nil)

// Present stores a copy of the frame.
func (p *FramePresenter) Present(pix []byte, width, height, stride int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	img, err := toNRGBA(p.img, pix, width, height, stride)
	if err != nil {
		return err
	}
	p.img = img
	p.frames++
	return nil
}

// Frames returns how many frames were presented.
func (p *FramePresenter) Frames() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}

// Image returns a copy of the last frame, or nil.
func (p *FramePresenter) Image() *image.NRGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.img == nil {
		return nil
	}
	return imaging.Clone(p.img)
}

// SavePNG writes the last frame to path.
func (p *FramePresenter) SavePNG(path string) error {
	img := p.Image()
	if img == nil {
		return ErrNoFrame
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("host: capture %s: %w", path, err)
	}
	samples.Logger().Info("host: captured", "path", path,
		"width", img.Rect.Dx(), "height", img.Rect.Dy())
	return nil
}

// WindowPresenter draws presented frames into the gogpu window. The
// drawer is only valid inside one OnDraw callback, so frames presented
// outside of one are kept and drawn on the next callback.
type WindowPresenter struct {
	FramePresenter

	blit    canvas.Blitter
	drawer  gpucontext.TextureDrawer
	pending bool
}

// begin makes dc the target of presents until end.
func (p *WindowPresenter) begin(dc gpucontext.TextureDrawer) {
	p.drawer = dc
}

// end draws a frame presented outside of a callback and drops the drawer.
func (p *WindowPresenter) end() error {
	defer func() { p.drawer = nil }()
	if !p.pending {
		return nil
	}
	return p.draw()
}

// Present converts the frame to RGBA and draws it when a drawer is set.
func (p *WindowPresenter) Present(pix []byte, width, height, stride int) error {
	if err := p.FramePresenter.Present(pix, width, height, stride); err != nil {
		return err
	}
	if p.drawer == nil {
		p.pending = true
		return nil
	}
	return p.draw()
}

func (p *WindowPresenter) draw() error {
	p.pending = false
	p.mu.Lock()
	img := p.img
	p.mu.Unlock()
	if img == nil {
		return nil
	}
	return p.blit.Blit(p.drawer, img.Rect.Dx(), img.Rect.Dy(), img.Pix, 0, 0)
}

// Release destroys the window texture.
func (p *WindowPresenter) Release() {
	p.blit.Release()
}
