// Package frontpanel drives a small gray front-panel display: a 256×64
// pixel buffer with 16 gray levels, buttons with lights, and raster fonts
// for text.
package frontpanel

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/gogpu/samples"
)

// Panel geometry.
const (
	Width  = 256
	Height = 64
	// Levels is the number of gray levels the panel shows.
	Levels = 16
)

// Quantize maps an 8-bit gray value to the nearest of the panel levels,
// expressed back in 8 bits.
func Quantize(v uint8) uint8 {
	return uint8((uint16(v) + 8) / 0x11 * 0x11)
}

// Display is the panel's pixel buffer. It implements draw.Image so
// x/image/font can render into it directly.
//
// Present only reaches the Control when a pixel changed since the last
// present.
type Display struct {
	ctrl   Control
	width  int
	height int
	buf    []byte
	dirty  bool
}

var _ draw.Image = (*Display)(nil)

// NewDisplay returns a cleared display sized to ctrl.
func NewDisplay(ctrl Control) *Display {
	w, h := ctrl.Width(), ctrl.Height()
	return &Display{ctrl: ctrl, width: w, height: h, buf: make([]byte, w*h)}
}

// Width returns the display width.
func (d *Display) Width() int { return d.width }

// Height returns the display height.
func (d *Display) Height() int { return d.height }

// Buffer returns the pixel buffer. Writes through it must be followed by
// MarkDirty.
func (d *Display) Buffer() []byte { return d.buf }

// Dirty reports whether pixels changed since the last Present.
func (d *Display) Dirty() bool { return d.dirty }

// MarkDirty forces the next Present.
func (d *Display) MarkDirty() { d.dirty = true }

// Clear sets every pixel to black.
func (d *Display) Clear() {
	for i, v := range d.buf {
		if v != 0 {
			d.buf[i] = 0
			d.dirty = true
		}
	}
}

// SetPixel sets (x, y) to the quantized gray v. Out of range pixels are
// ignored.
func (d *Display) SetPixel(x, y int, v uint8) {
	if x < 0 || y < 0 || x >= d.width || y >= d.height {
		return
	}
	q := Quantize(v)
	i := y*d.width + x
	if d.buf[i] != q {
		d.buf[i] = q
		d.dirty = true
	}
}

// Pixel returns the gray value at (x, y), or 0 outside the display.
func (d *Display) Pixel(x, y int) uint8 {
	if x < 0 || y < 0 || x >= d.width || y >= d.height {
		return 0
	}
	return d.buf[y*d.width+x]
}

// FillRect fills r, clipped to the display, with v.
func (d *Display) FillRect(r image.Rectangle, v uint8) {
	r = r.Intersect(d.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			d.SetPixel(x, y, v)
		}
	}
}

// DrawImage converts img to gray, scales it to fit the display keeping
// its aspect ratio, and draws it centered.
func (d *Display) DrawImage(img image.Image) {
	fitted := imaging.Fit(imaging.Grayscale(img), d.width, d.height, imaging.Lanczos)
	b := fitted.Bounds()
	ox := (d.width - b.Dx()) / 2
	oy := (d.height - b.Dy()) / 2
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			// Grayscale leaves R=G=B.
			off := y*fitted.Stride + x*4
			d.SetPixel(ox+x, oy+y, fitted.Pix[off])
		}
	}
}

// LoadImage opens the image file at path and draws it.
func (d *Display) LoadImage(path string) error {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("frontpanel: load image: %w", err)
	}
	d.DrawImage(img)
	return nil
}

// Present sends the buffer to the control if it changed. It reports
// whether a present happened.
func (d *Display) Present() (bool, error) {
	if !d.dirty {
		return false, nil
	}
	if err := d.ctrl.PresentBuffer(d.buf); err != nil {
		return false, fmt.Errorf("frontpanel: present: %w", err)
	}
	d.dirty = false
	return true, nil
}

// Image returns a copy of the buffer as a gray image.
func (d *Display) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, d.width, d.height))
	copy(img.Pix, d.buf)
	return img
}

// SaveImage writes the buffer to path; the format follows the extension.
func (d *Display) SaveImage(path string) error {
	if err := imaging.Save(d.Image(), path); err != nil {
		return fmt.Errorf("frontpanel: save image: %w", err)
	}
	samples.Logger().Info("frontpanel: captured", "path", path)
	return nil
}

// ColorModel implements image.Image.
func (d *Display) ColorModel() color.Model { return color.GrayModel }

// Bounds implements image.Image.
func (d *Display) Bounds() image.Rectangle { return image.Rect(0, 0, d.width, d.height) }

// At implements image.Image.
func (d *Display) At(x, y int) color.Color { return color.Gray{Y: d.Pixel(x, y)} }

// Set implements draw.Image.
func (d *Display) Set(x, y int, c color.Color) {
	d.SetPixel(x, y, color.GrayModel.Convert(c).(color.Gray).Y)
}
