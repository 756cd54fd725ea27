package transport

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"nbtimer/internal/log"
)

// SPI talks to the panel over 4-wire SPI with a data/command pin and a
// hardware reset line.
type SPI struct {
	port spi.PortCloser
	conn conn.Conn
	dc   gpio.PinOut
	rst  gpio.PinOut

	// The D/C pin is shared between command and data writes. Serialize
	// around it so an in-flight frame transfer and a command write cannot
	// interleave on the wire.
	busMu sync.Mutex
}

// NewSPI opens the named SPI port ("" for the first available), resolves
// the D/C and reset pins by name (e.g. "GPIO25"), and pulses the reset line
// so the controller is in a known state.
func NewSPI(portName, dcPin, rstPin string) (*SPI, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("transport: host init failed: %w", err)
	}

	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to open SPI port %q: %w", portName, err)
	}
	c, err := port.Connect(8*physic.MegaHertz, spi.Mode3, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("transport: SPI connect failed: %w", err)
	}

	dc := gpioreg.ByName(dcPin)
	if dc == nil {
		_ = port.Close()
		return nil, fmt.Errorf("transport: D/C pin %q not found", dcPin)
	}
	if err := dc.Out(gpio.Low); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("transport: D/C pin setup failed: %w", err)
	}

	t := &SPI{port: port, conn: c, dc: dc}

	if rstPin != "" {
		rst := gpioreg.ByName(rstPin)
		if rst == nil {
			_ = port.Close()
			return nil, fmt.Errorf("transport: reset pin %q not found", rstPin)
		}
		t.rst = rst
		if err := t.reset(); err != nil {
			_ = port.Close()
			return nil, err
		}
	}

	log.Info("SPI transport open", "port", port.String(), "dc", dcPin, "rst", rstPin)
	return t, nil
}

// reset pulses the hardware reset line and waits for the controller to
// settle.
func (t *SPI) reset() error {
	if err := t.rst.Out(gpio.Low); err != nil {
		return fmt.Errorf("transport: reset assert failed: %w", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := t.rst.Out(gpio.High); err != nil {
		return fmt.Errorf("transport: reset release failed: %w", err)
	}
	time.Sleep(500 * time.Millisecond)
	return nil
}

// WriteCommand sends a command stream with the D/C line low.
func (t *SPI) WriteCommand(cmds []byte) error {
	t.busMu.Lock()
	defer t.busMu.Unlock()

	if err := t.dc.Out(gpio.Low); err != nil {
		return err
	}
	return t.conn.Tx(cmds, nil)
}

// TransferBlock streams a full data block with the D/C line high. done runs
// on the transfer goroutine once the bus transaction finished.
func (t *SPI) TransferBlock(data []byte, done func(ok bool)) {
	go func() {
		t.busMu.Lock()
		err := t.dc.Out(gpio.High)
		if err == nil {
			err = t.conn.Tx(data, nil)
		}
		t.busMu.Unlock()

		if err != nil {
			log.Debug("SPI block transfer failed", "err", err)
		}
		done(err == nil)
	}()
}

func (t *SPI) Close() error {
	return t.port.Close()
}
