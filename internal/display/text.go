package display

import "nbtimer/internal/font"

// Cursor is the 0-based text insertion point. It belongs to the caller (the
// driver keeps one per display), not to any framebuffer.
type Cursor struct {
	X int
	Y int
}

// WriteChar blits one glyph at the cursor and advances it by the glyph
// width. Both set and clear glyph bits are written: foreground pixels get c
// and background pixels get the complement, so the glyph cell always
// overwrites what was underneath.
//
// Returns false, without drawing or moving the cursor, when ch is outside
// printable ASCII or the glyph would overflow the panel.
func (f *Framebuffer) WriteChar(cur *Cursor, ch byte, fnt *font.Font, c Color) bool {
	rows, ok := fnt.Glyph(ch)
	if !ok {
		return false
	}
	if cur.X+fnt.Width > Width || cur.Y+fnt.Height > Height {
		return false
	}

	bg := c.Invert()
	for i, row := range rows {
		for j := 0; j < fnt.Width; j++ {
			if (row<<uint(j))&0x8000 != 0 {
				f.SetPixel(cur.X+j+1, cur.Y+i+1, c)
			} else {
				f.SetPixel(cur.X+j+1, cur.Y+i+1, bg)
			}
		}
	}

	cur.X += fnt.Advance()
	return true
}

// WriteString writes s one glyph at a time. It stops at the first glyph
// that cannot be written and returns that character with ok=false; a fully
// written string returns (0, true).
func (f *Framebuffer) WriteString(cur *Cursor, s string, fnt *font.Font, c Color) (failed byte, ok bool) {
	for i := 0; i < len(s); i++ {
		if !f.WriteChar(cur, s[i], fnt, c) {
			return s[i], false
		}
	}
	return 0, true
}
