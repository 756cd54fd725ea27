package display

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nbtimer/internal/font"
	"nbtimer/internal/log"
	"nbtimer/internal/transport"
)

// Driver owns a framebuffer pair and streams complete frames to the panel.
//
// Drawing always targets the front buffer. RequestSync hands a frame to the
// transport asynchronously and admits at most one transfer at a time; while
// a transfer is in flight, draw calls land in the other buffer and appear
// in the next frame, never the one on the wire.
//
// Buffer strategy: at sync time the front buffer's contents are copied into
// the back buffer and the roles are swapped, so the old front goes out on
// the bus untouched while drawing continues on an identical copy.
type Driver struct {
	t transport.Transport

	mu       sync.Mutex
	front    *Framebuffer
	back     *Framebuffer
	cur      Cursor
	enabled  bool
	inFlight bool
	dirty    bool

	frameRate int
}

// New initializes the panel through t and returns a ready driver. The
// command sequence is written synchronously; this is the only blocking
// phase of the driver's life.
func New(t transport.Transport, opts Opts) (*Driver, error) {
	if opts.Contrast == 0 {
		opts.Contrast = DefaultOpts.Contrast
	}
	if opts.FrameRate <= 0 {
		opts.FrameRate = DefaultOpts.FrameRate
	}

	d := &Driver{
		t:         t,
		front:     &Framebuffer{},
		back:      &Framebuffer{},
		frameRate: opts.FrameRate,
	}

	for _, c := range initSequence(opts) {
		if err := d.writeCommand(c); err != nil {
			return nil, fmt.Errorf("display: init sequence failed at %#02x: %w", c.Op, err)
		}
	}
	time.Sleep(100 * time.Millisecond)
	if err := d.writeCommand(cmd(cmdDisplayOn)); err != nil {
		return nil, fmt.Errorf("display: display on failed: %w", err)
	}

	d.enabled = true
	// Force the first frame out even before anything was drawn, so the
	// panel RAM and the (zeroed) framebuffer agree.
	d.dirty = true

	log.Info("display initialized", "size", fmt.Sprintf("%dx%d", Width, Height), "fps", opts.FrameRate)
	return d, nil
}

// writeCommand serializes one command to the transport.
func (d *Driver) writeCommand(c Command) error {
	buf := []byte{c.Op}
	if c.HasParam {
		buf = append(buf, c.Param)
	}
	return d.t.WriteCommand(buf)
}

// Run drives the periodic sync at the configured frame rate until ctx is
// canceled.
func (d *Driver) Run(ctx context.Context) {
	tick := time.NewTicker(time.Second / time.Duration(d.frameRate))
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			d.RequestSync()
		}
	}
}

// RequestSync starts an asynchronous frame transfer if the driver is
// enabled, the buffer was modified since the last sync, and no transfer is
// already in flight. It never blocks; the return value reports whether a
// transfer was issued.
func (d *Driver) RequestSync() bool {
	d.mu.Lock()
	if !d.enabled || d.inFlight || !d.dirty {
		d.mu.Unlock()
		return false
	}
	d.inFlight = true
	d.dirty = false

	tx := d.front
	d.back.CopyFrom(d.front)
	d.front, d.back = d.back, d.front
	d.mu.Unlock()

	d.t.TransferBlock(tx.Bytes(), d.onTransferComplete)
	return true
}

// onTransferComplete runs on the transport's completion goroutine. A failed
// transfer re-arms the dirty flag so the next periodic sync sends a fresh
// frame; the error itself is dropped, the worst outcome is a stale panel.
func (d *Driver) onTransferComplete(ok bool) {
	d.mu.Lock()
	d.inFlight = false
	if !ok {
		d.dirty = true
	}
	d.mu.Unlock()
}

// Power turns the panel on or off. While off, syncs are suppressed but the
// framebuffer still accepts draws.
func (d *Driver) Power(on bool) error {
	op := byte(cmdDisplayOff)
	if on {
		op = cmdDisplayOn
	}
	if err := d.writeCommand(cmd(op)); err != nil {
		return err
	}
	d.mu.Lock()
	d.enabled = on
	if on {
		d.dirty = true
	}
	d.mu.Unlock()
	return nil
}

// SetContrast changes the panel contrast.
func (d *Driver) SetContrast(level byte) error {
	return d.writeCommand(cmdP(cmdSetContrast, level))
}

// Invert switches between normal and inverse video.
func (d *Driver) Invert(invert bool) error {
	op := byte(cmdNormalDisplay)
	if invert {
		op = cmdInverseDisplay
	}
	return d.writeCommand(cmd(op))
}

// Close releases the transport.
func (d *Driver) Close() error {
	return d.t.Close()
}

// Snapshot returns a copy of the current front buffer contents.
func (d *Driver) Snapshot() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]byte, BufferLength)
	copy(out, d.front.Bytes())
	return out
}

// Drawing wrappers. Each one mutates the front buffer under the driver
// lock and marks the frame dirty for the sync engine.

func (d *Driver) draw(fn func(f *Framebuffer)) {
	d.mu.Lock()
	fn(d.front)
	d.dirty = true
	d.mu.Unlock()
}

func (d *Driver) Clear(c Color) {
	d.draw(func(f *Framebuffer) { f.Fill(c) })
}

func (d *Driver) SetPixel(x, y int, c Color) {
	d.draw(func(f *Framebuffer) { f.SetPixel(x, y, c) })
}

func (d *Driver) DrawLine(x0, y0, x1, y1 int, c Color) {
	d.draw(func(f *Framebuffer) { f.DrawLine(x0, y0, x1, y1, c) })
}

func (d *Driver) DrawPolyline(vertices []Point, c Color) {
	d.draw(func(f *Framebuffer) { f.DrawPolyline(vertices, c) })
}

func (d *Driver) DrawRect(x0, y0, x1, y1 int, c Color) {
	d.draw(func(f *Framebuffer) { f.DrawRect(x0, y0, x1, y1, c) })
}

func (d *Driver) FillRect(x0, y0, x1, y1 int, c Color) {
	d.draw(func(f *Framebuffer) { f.FillRect(x0, y0, x1, y1, c) })
}

func (d *Driver) DrawCircle(cx, cy, r int, c Color) {
	d.draw(func(f *Framebuffer) { f.DrawCircle(cx, cy, r, c) })
}

func (d *Driver) FillCircle(cx, cy, r int, c Color) {
	d.draw(func(f *Framebuffer) { f.FillCircle(cx, cy, r, c) })
}

func (d *Driver) DrawArc(center Point, r, startDeg, sweepDeg int, c Color) {
	d.draw(func(f *Framebuffer) { f.DrawArc(center, r, startDeg, sweepDeg, c) })
}

func (d *Driver) DrawBitmap(x, y int, data []byte, w, h int, c Color) {
	d.draw(func(f *Framebuffer) { f.DrawBitmap(x, y, data, w, h, c) })
}

// SetCursor moves the text insertion point (0-based pixels).
func (d *Driver) SetCursor(x, y int) {
	d.mu.Lock()
	d.cur = Cursor{X: x, Y: y}
	d.mu.Unlock()
}

// WriteString renders s at the cursor. See Framebuffer.WriteString.
func (d *Driver) WriteString(s string, fnt *font.Font, c Color) (failed byte, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	failed, ok = d.front.WriteString(&d.cur, s, fnt, c)
	d.dirty = true
	return failed, ok
}
