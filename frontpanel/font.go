package frontpanel

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"slices"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrFontNotFound is returned when a table has no entry for a name.
var ErrFontNotFound = errors.New("frontpanel: font not found")

// Font is a raster font at one pixel size.
type Font struct {
	face    font.Face
	ascent  int
	descent int
}

// NewFont wraps face.
func NewFont(face font.Face) *Font {
	m := face.Metrics()
	return &Font{face: face, ascent: m.Ascent.Ceil(), descent: m.Descent.Ceil()}
}

// ParseFont rasterizes TrueType or OpenType data at size pixels.
func ParseFont(data []byte, size float64) (*Font, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("frontpanel: parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("frontpanel: font face: %w", err)
	}
	return NewFont(face), nil
}

// Face returns the underlying face.
func (f *Font) Face() font.Face { return f.face }

// LineHeight returns ascent plus descent in pixels.
func (f *Font) LineHeight() int { return f.ascent + f.descent }

// MeasureString returns the pixel size of s on one line.
func (f *Font) MeasureString(s string) (width, height int) {
	return font.MeasureString(f.face, s).Ceil(), f.LineHeight()
}

// DrawString draws s with its top-left corner at (x, y) in gray v and
// returns the x just past the last glyph.
func (f *Font) DrawString(d *Display, x, y int, s string, v uint8) int {
	dr := &font.Drawer{
		Dst:  d,
		Src:  image.NewUniform(color.Gray{Y: v}),
		Face: f.face,
		Dot:  fixed.P(x, y+f.ascent),
	}
	dr.DrawString(s)
	return dr.Dot.X.Ceil()
}

// DrawStringCentered draws s centered in r.
func (f *Font) DrawStringCentered(d *Display, r image.Rectangle, s string, v uint8) {
	w, h := f.MeasureString(s)
	f.DrawString(d, r.Min.X+(r.Dx()-w)/2, r.Min.Y+(r.Dy()-h)/2, s, v)
}

// FontEntry is one font of a table.
type FontEntry struct {
	Name string
	Size int
	Font *Font
}

// FontTable holds fonts ordered by name, then size.
type FontTable struct {
	entries []FontEntry
}

// Add inserts a font, keeping the order. An existing entry with the same
// name and size is replaced.
func (t *FontTable) Add(name string, size int, f *Font) {
	e := FontEntry{Name: name, Size: size, Font: f}
	i, found := slices.BinarySearchFunc(t.entries, e, compareEntries)
	if found {
		t.entries[i] = e
		return
	}
	t.entries = slices.Insert(t.entries, i, e)
}

// AddTTF parses data once per size and adds the results under name.
func (t *FontTable) AddTTF(name string, data []byte, sizes ...int) error {
	for _, size := range sizes {
		f, err := ParseFont(data, float64(size))
		if err != nil {
			return fmt.Errorf("%s %d: %w", name, size, err)
		}
		t.Add(name, size, f)
	}
	return nil
}

func compareEntries(a, b FontEntry) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return a.Size - b.Size
}

// Len returns the number of entries.
func (t *FontTable) Len() int { return len(t.entries) }

// Entry returns entry i.
func (t *FontTable) Entry(i int) FontEntry { return t.entries[i] }

// Names returns the distinct font names in order.
func (t *FontTable) Names() []string {
	var names []string
	for _, e := range t.entries {
		if len(names) == 0 || names[len(names)-1] != e.Name {
			names = append(names, e.Name)
		}
	}
	return names
}

// FindEntry returns the index of the name font closest to size. An exact
// size wins. Otherwise larger selects the smallest bigger size and falls
// back to the biggest smaller one; !larger does the opposite.
func (t *FontTable) FindEntry(name string, size int, larger bool) (int, error) {
	below, above := -1, -1
	for i, e := range t.entries {
		if e.Name != name {
			continue
		}
		switch {
		case e.Size == size:
			return i, nil
		case e.Size < size:
			below = i
		case above < 0:
			above = i
		}
	}
	first, second := below, above
	if larger {
		first, second = above, below
	}
	if first >= 0 {
		return first, nil
	}
	if second >= 0 {
		return second, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrFontNotFound, name)
}

// Font family names of the default table.
const (
	FamilyGoRegular   = "Go Regular"
	FamilyGoBold      = "Go Bold"
	FamilyGoMono      = "Go Mono"
	FamilyInconsolata = "Inconsolata"
	FamilyBasic       = "Basic"
)

// DefaultSizes are the pixel sizes the Go fonts are rasterized at.
var DefaultSizes = []int{10, 12, 16, 20, 24, 32}

// DefaultFontTable builds the Go fonts at DefaultSizes plus the fixed
// bitmap faces.
func DefaultFontTable() (*FontTable, error) {
	t := &FontTable{}
	for _, f := range []struct {
		name string
		ttf  []byte
	}{
		{FamilyGoRegular, goregular.TTF},
		{FamilyGoBold, gobold.TTF},
		{FamilyGoMono, gomono.TTF},
	} {
		if err := t.AddTTF(f.name, f.ttf, DefaultSizes...); err != nil {
			return nil, err
		}
	}
	t.Add(FamilyInconsolata, 16, NewFont(inconsolata.Regular8x16))
	t.Add(FamilyBasic, 13, NewFont(basicfont.Face7x13))
	return t, nil
}
