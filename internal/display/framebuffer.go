// Package display drives a 128x64 SSD1309 OLED panel: a page-organized
// monochrome framebuffer with raster primitives, and a double-buffered sync
// engine that streams complete frames to the panel through an asynchronous
// byte-stream transport.
package display

// Panel geometry. The GDDRAM is organized as 8 pages of 128 bytes; each byte
// covers 8 vertically stacked pixels of one column.
const (
	Width  = 128
	Height = 64

	NumPages     = 8
	PageSize     = 128
	BufferLength = NumPages * PageSize // 1024 bytes
)

// Color is the pixel value of the monochrome panel.
type Color uint8

const (
	Black Color = iota
	White
)

// Invert returns the complement color.
func (c Color) Invert() Color {
	if c == White {
		return Black
	}
	return White
}

// Framebuffer is one full frame of panel memory, stored flat. Page, column
// and bit offsets are computed by formula rather than by aliasing the
// memory as pages or rows.
//
// The drawing API uses 1-based coordinates in [1,Width]x[1,Height];
// anything outside that range is silently ignored.
type Framebuffer struct {
	pix [BufferLength]byte
}

// pixOffset converts 0-based panel coordinates to a byte index and bit mask.
func pixOffset(x, y int) (idx int, mask byte) {
	return (y/8)*PageSize + x, 1 << uint(y%8)
}

// inBounds reports whether 1-based (x, y) addresses a panel pixel.
func inBounds(x, y int) bool {
	return x >= 1 && x <= Width && y >= 1 && y <= Height
}

// SetPixel sets or clears the pixel at 1-based (x, y). Out-of-range
// coordinates are a no-op.
func (f *Framebuffer) SetPixel(x, y int, c Color) {
	if !inBounds(x, y) {
		return
	}
	idx, mask := pixOffset(x-1, y-1)
	if c == White {
		f.pix[idx] |= mask
	} else {
		f.pix[idx] &^= mask
	}
}

// At reads back the pixel at 1-based (x, y). Out-of-range reads return Black.
func (f *Framebuffer) At(x, y int) Color {
	if !inBounds(x, y) {
		return Black
	}
	idx, mask := pixOffset(x-1, y-1)
	if f.pix[idx]&mask != 0 {
		return White
	}
	return Black
}

// Fill sets every pixel to c.
func (f *Framebuffer) Fill(c Color) {
	b := byte(0x00)
	if c == White {
		b = 0xFF
	}
	for i := range f.pix {
		f.pix[i] = b
	}
}

// Bytes returns the raw page-addressed frame. The slice aliases the
// framebuffer storage and is exactly BufferLength bytes.
func (f *Framebuffer) Bytes() []byte {
	return f.pix[:]
}

// LoadBytes replaces the whole frame. Input shorter or longer than
// BufferLength is rejected by doing nothing.
func (f *Framebuffer) LoadBytes(raw []byte) {
	if len(raw) != BufferLength {
		return
	}
	copy(f.pix[:], raw)
}

// CopyFrom copies the contents of src into f.
func (f *Framebuffer) CopyFrom(src *Framebuffer) {
	f.pix = src.pix
}
