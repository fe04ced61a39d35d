// Package imageload decodes media images into 32-bit BGRA pixels at their
// native resolution.
//
// JPEG, PNG and GIF are handled through imaging; BMP, TIFF and WebP are
// registered from golang.org/x/image. EXIF orientation is applied before
// conversion.
package imageload

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	// Additional decoders for image.Decode.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/samples"
)

// Errors returned by the loader.
var (
	// ErrDecode is returned when the file cannot be decoded.
	ErrDecode = errors.New("imageload: decode failed")

	// ErrNoConversion is returned when the decoded pixel model has no
	// conversion path to BGRA.
	ErrNoConversion = errors.New("imageload: no conversion to BGRA")

	// ErrEmpty is returned for zero-sized images.
	ErrEmpty = errors.New("imageload: empty image")
)

// BytesPerPixel is the size of one BGRA pixel.
const BytesPerPixel = 4

// Image is a decoded image in straight-alpha BGRA order.
type Image struct {
	Width  int
	Height int
	// Stride is the byte distance between rows.
	Stride int
	Pix    []byte
	// Source names the decoded pixel model, such as "YCbCr" or "NRGBA".
	Source string
	// Converted is true when Source differed from BGRA/NRGBA layout and
	// the pixels went through a full conversion.
	Converted bool
}

// At returns the B, G, R, A bytes of pixel (x, y).
func (m *Image) At(x, y int) (b, g, r, a uint8) {
	i := y*m.Stride + x*BytesPerPixel
	return m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3]
}

// Load decodes the image file at path.
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imageload: %w", err)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	samples.Logger().Debug("imageload: loaded",
		"path", path, "width", m.Width, "height", m.Height,
		"source", m.Source, "converted", m.Converted)
	return m, nil
}

// Decode decodes an image stream.
func Decode(r io.Reader) (*Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return Convert(img)
}

// Convert returns img as BGRA. It fails with ErrNoConversion for pixel
// models it does not know, and returns no image in that case.
func Convert(img image.Image) (*Image, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmpty
	}

	name, ok := sourceName(img)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNoConversion, img)
	}

	var src *image.NRGBA
	converted := false
	if n, isNRGBA := img.(*image.NRGBA); isNRGBA {
		src = n
	} else {
		src = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(src, src.Bounds(), img, b.Min, draw.Src)
		converted = true
	}

	out := &Image{
		Width:     b.Dx(),
		Height:    b.Dy(),
		Stride:    b.Dx() * BytesPerPixel,
		Source:    name,
		Converted: converted,
	}
	out.Pix = make([]byte, out.Stride*out.Height)
	swizzle(out, src)
	return out, nil
}

// swizzle copies NRGBA rows into BGRA order.
func swizzle(dst *Image, src *image.NRGBA) {
	sb := src.Bounds()
	for y := 0; y < dst.Height; y++ {
		si := src.PixOffset(sb.Min.X, sb.Min.Y+y)
		row := src.Pix[si : si+dst.Width*BytesPerPixel]
		di := y * dst.Stride
		for x := 0; x < len(row); x += BytesPerPixel {
			dst.Pix[di+x+0] = row[x+2]
			dst.Pix[di+x+1] = row[x+1]
			dst.Pix[di+x+2] = row[x+0]
			dst.Pix[di+x+3] = row[x+3]
		}
	}
}

// sourceName reports the pixel model name for every type with a known
// conversion path.
func sourceName(img image.Image) (string, bool) {
	switch img.(type) {
	case *image.NRGBA:
		return "NRGBA", true
	case *image.RGBA:
		return "RGBA", true
	case *image.NRGBA64:
		return "NRGBA64", true
	case *image.RGBA64:
		return "RGBA64", true
	case *image.YCbCr:
		return "YCbCr", true
	case *image.NYCbCrA:
		return "NYCbCrA", true
	case *image.Gray:
		return "Gray", true
	case *image.Gray16:
		return "Gray16", true
	case *image.CMYK:
		return "CMYK", true
	case *image.Paletted:
		return "Paletted", true
	case *image.Alpha:
		return "Alpha", true
	case *image.Alpha16:
		return "Alpha16", true
	default:
		return "", false
	}
}
