package display

// Raster primitives. All coordinates are 1-based panel coordinates; the
// clipping policy is deliberately forgiving: single pixels outside the panel
// are dropped, while lines and bitmaps with an out-of-range anchor reject
// the whole call. Nothing in this file reports errors.

// Point is a 1-based panel coordinate pair.
type Point struct {
	X int
	Y int
}

// arc segments per full circle, one every 10 degrees
const arcSegments = 36

// DrawLine draws a line from (x0,y0) to (x1,y1) using Bresenham's
// algorithm. Both endpoints must be on the panel or the call is a no-op.
func (f *Framebuffer) DrawLine(x0, y0, x1, y1 int, c Color) {
	if !inBounds(x0, y0) || !inBounds(x1, y1) {
		return
	}

	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := -dy / 2
	if dx > dy {
		err = dx / 2
	}

	for {
		f.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := err
		if e2 > -dx {
			err -= dy
			x0 += sx
		}
		if e2 < dy {
			err += dx
			y0 += sy
		}
	}
}

// DrawPolyline draws lines between consecutive vertices.
func (f *Framebuffer) DrawPolyline(vertices []Point, c Color) {
	for i := 1; i < len(vertices); i++ {
		f.DrawLine(vertices[i-1].X, vertices[i-1].Y, vertices[i].X, vertices[i].Y, c)
	}
}

// DrawRect draws the outline of the rectangle spanned by two corners.
func (f *Framebuffer) DrawRect(x0, y0, x1, y1 int, c Color) {
	f.DrawLine(x0, y0, x1, y0, c)
	f.DrawLine(x1, y0, x1, y1, c)
	f.DrawLine(x1, y1, x0, y1, c)
	f.DrawLine(x0, y1, x0, y0, c)
}

// FillRect fills the rectangle spanned by two corners, clipped per pixel.
func (f *Framebuffer) FillRect(x0, y0, x1, y1 int, c Color) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			f.SetPixel(x, y, c)
		}
	}
}

// DrawCircle draws a circle outline around 1-based (cx,cy) with the
// midpoint algorithm. Points off the panel are dropped individually.
func (f *Framebuffer) DrawCircle(cx, cy, r int, c Color) {
	if r < 0 {
		return
	}
	x := -r
	y := 0
	err := 2 - 2*r
	for {
		f.SetPixel(cx-x, cy+y, c)
		f.SetPixel(cx+x, cy+y, c)
		f.SetPixel(cx+x, cy-y, c)
		f.SetPixel(cx-x, cy-y, c)
		e2 := err
		if e2 <= y {
			y++
			err += y*2 + 1
			if -x == y && e2 <= x {
				e2 = 0
			}
		}
		if e2 > x {
			x++
			err += x*2 + 1
		}
		if x > 0 {
			return
		}
	}
}

// FillCircle draws a filled circle by spanning scanlines between the
// symmetric midpoint-circle points.
func (f *Framebuffer) FillCircle(cx, cy, r int, c Color) {
	if r < 0 {
		return
	}
	x := -r
	y := 0
	err := 2 - 2*r
	for {
		f.hline(cx+x, cx-x, cy+y, c)
		f.hline(cx+x, cx-x, cy-y, c)
		e2 := err
		if e2 <= y {
			y++
			err += y*2 + 1
			if -x == y && e2 <= x {
				e2 = 0
			}
		}
		if e2 > x {
			x++
			err += x*2 + 1
		}
		if x > 0 {
			return
		}
	}
}

// hline fills one scanline, clipped per pixel.
func (f *Framebuffer) hline(x0, x1, y int, c Color) {
	for x := x0; x <= x1; x++ {
		f.SetPixel(x, y, c)
	}
}

// DrawArc approximates an arc around center with straight segments, one per
// 10 degrees of sweep. Angle 0 points along +y ("south"); the horizontal
// component comes from sin and the vertical from cos. sweepDeg is capped at
// a full circle and startDeg is normalized into [0,360).
func (f *Framebuffer) DrawArc(center Point, r, startDeg, sweepDeg int, c Color) {
	if r <= 0 || sweepDeg <= 0 {
		return
	}
	startDeg %= 360
	if startDeg < 0 {
		startDeg += 360
	}
	if sweepDeg > 360 {
		sweepDeg = 360
	}

	segs := sweepDeg * arcSegments / 360
	if segs < 1 {
		segs = 1
	}
	step := sweepDeg / segs

	angle := startDeg
	for i := 0; i < segs; i++ {
		x0 := center.X + r*fxpSin(angle)/fxpScale
		y0 := center.Y + r*fxpCos(angle)/fxpScale
		x1 := center.X + r*fxpSin(angle+step)/fxpScale
		y1 := center.Y + r*fxpCos(angle+step)/fxpScale
		f.DrawLine(x0, y0, x1, y1, c)
		angle += step
	}
}

// DrawBitmap blits a 1-bit row-major MSB-first bitmap with its top-left
// pixel at 1-based (x,y). Scanlines are padded to whole bytes. An anchor
// off the panel rejects the whole call; only set bits are drawn.
func (f *Framebuffer) DrawBitmap(x, y int, data []byte, w, h int, c Color) {
	if !inBounds(x, y) {
		return
	}
	byteWidth := (w + 7) / 8
	if len(data) < byteWidth*h {
		return
	}
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			b := data[j*byteWidth+i/8]
			if b&(0x80>>uint(i%8)) != 0 {
				f.SetPixel(x+i, y+j, c)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
