package display

import (
	"bytes"
	"sync"
	"testing"

	"nbtimer/internal/font"
)

// fakeTransport records command and data traffic and lets the test decide
// when (and how) a block transfer completes.
type fakeTransport struct {
	mu        sync.Mutex
	commands  [][]byte
	transfers [][]byte
	pending   []func(ok bool)
}

func (t *fakeTransport) WriteCommand(cmds []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.commands = append(t.commands, append([]byte(nil), cmds...))
	return nil
}

func (t *fakeTransport) TransferBlock(data []byte, done func(ok bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.transfers = append(t.transfers, append([]byte(nil), data...))
	t.pending = append(t.pending, done)
}

func (t *fakeTransport) Close() error { return nil }

func (t *fakeTransport) transferCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.transfers)
}

func (t *fakeTransport) lastTransfer() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transfers[len(t.transfers)-1]
}

// complete fires the oldest pending completion callback, standing in for
// the bus interrupt.
func (t *fakeTransport) complete(ok bool) {
	t.mu.Lock()
	done := t.pending[0]
	t.pending = t.pending[1:]
	t.mu.Unlock()
	done(ok)
}

func newTestDriver(t *testing.T) (*Driver, *fakeTransport) {
	t.Helper()
	ft := &fakeTransport{}
	d, err := New(ft, Opts{Contrast: 0x6F, FrameRate: 30})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Drain the initial full-frame sync so tests start from a clean slate.
	if !d.RequestSync() {
		t.Fatal("initial sync not issued")
	}
	ft.complete(true)
	return d, ft
}

func TestInitSequenceWire(t *testing.T) {
	ft := &fakeTransport{}
	if _, err := New(ft, Opts{}); err != nil {
		t.Fatalf("New: %v", err)
	}

	var stream []byte
	for _, c := range ft.commands {
		stream = append(stream, c...)
	}

	if ft.commands[0][0] != 0xAE {
		t.Errorf("first command = %#02x, want display off (0xAE)", ft.commands[0][0])
	}
	if last := ft.commands[len(ft.commands)-1]; last[0] != 0xAF {
		t.Errorf("last command = %#02x, want display on (0xAF)", last[0])
	}
	if !bytes.Contains(stream, []byte{0x20, 0x00}) {
		t.Error("init sequence does not set horizontal addressing (0x20 0x00)")
	}
	for _, op := range []byte{0xA8, 0xD3, 0x40, 0xAD, 0x81, 0xD9, 0xDB, 0x2E, 0xA4, 0xA6} {
		if !bytes.Contains(stream, []byte{op}) {
			t.Errorf("init sequence missing command %#02x", op)
		}
	}
}

func TestInitSequenceChargePumpVariant(t *testing.T) {
	ft := &fakeTransport{}
	if _, err := New(ft, Opts{ChargePump: true}); err != nil {
		t.Fatalf("New: %v", err)
	}
	var stream []byte
	for _, c := range ft.commands {
		stream = append(stream, c...)
	}
	if !bytes.Contains(stream, []byte{0x8D, 0x14}) {
		t.Error("charge pump variant missing 0x8D 0x14")
	}
	if bytes.Contains(stream, []byte{0xAD, 0x8E}) {
		t.Error("charge pump variant still sends master config")
	}
}

func TestRequestSyncAdmissionControl(t *testing.T) {
	d, ft := newTestDriver(t)

	d.SetPixel(5, 5, White)
	if !d.RequestSync() {
		t.Fatal("first sync not issued")
	}
	// Second call before completion must be a no-op, not a queued retry.
	if d.RequestSync() {
		t.Error("second sync issued while transfer in flight")
	}
	if n := ft.transferCount(); n != 1 {
		t.Fatalf("transport saw %d transfers, want 1", n)
	}

	ft.complete(true)
	// Buffer unchanged since the issued sync: nothing to send.
	if d.RequestSync() {
		t.Error("sync issued with clean buffer")
	}
}

func TestRequestSyncSkipsUnmodifiedBuffer(t *testing.T) {
	d, ft := newTestDriver(t)

	if d.RequestSync() {
		t.Fatal("sync issued with no draws at all")
	}
	d.DrawLine(1, 1, 10, 10, White)
	if !d.RequestSync() {
		t.Fatal("sync not issued after draw")
	}
	ft.complete(true)
	if d.RequestSync() {
		t.Error("sync issued again without an intervening draw")
	}
}

func TestTransferLengthAndContent(t *testing.T) {
	d, ft := newTestDriver(t)

	d.FillRect(1, 1, 10, 10, White)
	d.RequestSync()

	frame := ft.lastTransfer()
	if len(frame) != BufferLength {
		t.Fatalf("transfer length = %d, want %d", len(frame), BufferLength)
	}
	if !bytes.Equal(frame, d.Snapshot()) {
		t.Error("transmitted frame does not match the drawn frame")
	}
}

func TestDrawsDuringFlightLandInNextFrame(t *testing.T) {
	d, ft := newTestDriver(t)

	d.SetPixel(1, 1, White)
	d.RequestSync()
	inFlight := ft.lastTransfer()

	// Draw while the transfer is still pending.
	d.SetPixel(2, 1, White)

	if inFlight[1] != 0 {
		t.Error("draw during flight mutated the in-flight frame")
	}
	if got := ft.lastTransfer()[1]; got != 0 {
		t.Error("transport buffer changed under a pending transfer")
	}

	ft.complete(true)
	if !d.RequestSync() {
		t.Fatal("follow-up sync not issued")
	}
	next := ft.lastTransfer()
	if next[0] != 0x01 || next[1] != 0x01 {
		t.Errorf("next frame = %#02x %#02x, want both pixels present", next[0], next[1])
	}
}

func TestTransferFailureRearmsWithoutBlocking(t *testing.T) {
	d, ft := newTestDriver(t)

	d.SetPixel(64, 32, White)
	d.RequestSync()
	ft.complete(false)

	// No retry happened on its own...
	if n := ft.transferCount(); n != 2 { // initial sync + failed one
		t.Fatalf("transport saw %d transfers, want 2", n)
	}
	// ...but the next periodic attempt sends the frame again.
	if !d.RequestSync() {
		t.Fatal("sync after failure not issued")
	}
	ft.complete(true)
}

func TestPowerSuppressesSync(t *testing.T) {
	d, ft := newTestDriver(t)

	if err := d.Power(false); err != nil {
		t.Fatalf("Power(false): %v", err)
	}
	d.SetPixel(1, 1, White)
	if d.RequestSync() {
		t.Error("sync issued while panel is off")
	}

	if err := d.Power(true); err != nil {
		t.Fatalf("Power(true): %v", err)
	}
	if !d.RequestSync() {
		t.Error("sync not issued after power on")
	}
	ft.complete(true)
}

func TestDriverTextAndSnapshot(t *testing.T) {
	d, ft := newTestDriver(t)

	d.SetCursor(0, 0)
	if failed, ok := d.WriteString("Hi", font.Base5x8, White); !ok {
		t.Fatalf("WriteString failed at %q", failed)
	}

	var want Framebuffer
	cur := Cursor{}
	want.WriteString(&cur, "Hi", font.Base5x8, White)

	if !bytes.Equal(d.Snapshot(), want.Bytes()) {
		t.Error("driver text rendering does not match framebuffer rendering")
	}

	d.RequestSync()
	ft.complete(true)
}

func TestContrastInvertWire(t *testing.T) {
	d, ft := newTestDriver(t)

	if err := d.SetContrast(0x42); err != nil {
		t.Fatal(err)
	}
	if err := d.Invert(true); err != nil {
		t.Fatal(err)
	}
	if err := d.Invert(false); err != nil {
		t.Fatal(err)
	}

	ft.mu.Lock()
	n := len(ft.commands)
	tail := ft.commands[n-3:]
	ft.mu.Unlock()

	if !bytes.Equal(tail[0], []byte{0x81, 0x42}) {
		t.Errorf("contrast command = %v", tail[0])
	}
	if tail[1][0] != 0xA7 || tail[2][0] != 0xA6 {
		t.Errorf("invert commands = %#02x %#02x, want 0xA7 0xA6", tail[1][0], tail[2][0])
	}
}
