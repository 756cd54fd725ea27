// Package font provides fixed-width bitmap fonts for the 128x64 OLED.
//
// Glyphs are stored row-major, one uint16 per pixel row, MSB-first: bit 15
// is the leftmost column. Fonts cover printable ASCII 0x20..0x7E only.
package font

// Font is a fixed-width bitmap font.
type Font struct {
	Width  int
	Height int

	// rows holds Height entries per glyph, for glyphs ' '..'~' in order.
	rows []uint16
}

const (
	firstChar = 0x20
	lastChar  = 0x7E
)

// Glyph returns the pixel rows for ch. ok is false for characters outside
// the printable ASCII range.
func (f *Font) Glyph(ch byte) (rows []uint16, ok bool) {
	if ch < firstChar || ch > lastChar {
		return nil, false
	}
	i := int(ch-firstChar) * f.Height
	return f.rows[i : i+f.Height], true
}

// Advance is the cursor advance width of one glyph.
func (f *Font) Advance() int {
	return f.Width
}

// StringWidth returns the rendered width of s in pixels.
func (f *Font) StringWidth(s string) int {
	return len(s) * f.Width
}

// Scale returns a new font with every pixel of f expanded to an n×n block.
// The scaled width must still fit a 16-bit row.
func (f *Font) Scale(n int) *Font {
	if n < 1 || f.Width*n > 16 {
		panic("font: invalid scale factor")
	}
	s := &Font{
		Width:  f.Width * n,
		Height: f.Height * n,
		rows:   make([]uint16, 0, len(f.rows)*n),
	}
	for g := 0; g < len(f.rows)/f.Height; g++ {
		for r := 0; r < f.Height; r++ {
			src := f.rows[g*f.Height+r]
			var row uint16
			for c := 0; c < f.Width; c++ {
				if src&(0x8000>>uint(c)) != 0 {
					for k := 0; k < n; k++ {
						row |= 0x8000 >> uint(c*n+k)
					}
				}
			}
			for k := 0; k < n; k++ {
				s.rows = append(s.rows, row)
			}
		}
	}
	return s
}

// fromColumns builds a row-major font from column-major glyph data, where
// each glyph is width bytes and bit 0 of a column byte is the top row.
func fromColumns(width, height int, cols []byte) *Font {
	f := &Font{
		Width:  width,
		Height: height,
		rows:   make([]uint16, 0, (len(cols)/width)*height),
	}
	for g := 0; g < len(cols)/width; g++ {
		for r := 0; r < height; r++ {
			var row uint16
			for c := 0; c < width; c++ {
				if cols[g*width+c]&(1<<uint(r)) != 0 {
					row |= 0x8000 >> uint(c)
				}
			}
			f.rows = append(f.rows, row)
		}
	}
	return f
}

// Base5x8 is the classic 5x7 terminal font in an 8 pixel tall cell.
var Base5x8 = fromColumns(5, 8, base5x8Columns[:])

// Digits10x16 is Base5x8 doubled, used for the main exposure time readout.
var Digits10x16 = Base5x8.Scale(2)
