package transport

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"nbtimer/internal/log"
)

// I2C control bytes. The first byte of every transaction tells the
// controller whether a command or data stream follows.
const (
	i2cCtrlCommand = 0x00
	i2cCtrlData    = 0x40
)

// DefaultI2CAddr is the 7-bit bus address most SSD1309 boards strap to.
const DefaultI2CAddr = 0x3C

// I2C talks to the panel over an I2C bus. The panel reset line is not
// wired in this configuration; power-cycle the board to reset it.
type I2C struct {
	bus i2c.BusCloser
	dev *i2c.Dev
}

// NewI2C opens the named I2C bus ("" for the first available) and returns a
// transport bound to the display address.
func NewI2C(busName string, addr uint16) (*I2C, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("transport: host init failed: %w", err)
	}
	if addr == 0 {
		addr = DefaultI2CAddr
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to open I2C bus %q: %w", busName, err)
	}

	log.Info("I2C transport open", "bus", bus.String(), "addr", fmt.Sprintf("%#02x", addr))
	return &I2C{
		bus: bus,
		dev: &i2c.Dev{Bus: bus, Addr: addr},
	}, nil
}

// WriteCommand sends a command stream, prefixed with the command control byte.
func (t *I2C) WriteCommand(cmds []byte) error {
	return t.dev.Tx(append([]byte{i2cCtrlCommand}, cmds...), nil)
}

// TransferBlock streams a full data block in the background. done runs on
// the transfer goroutine once the bus transaction finished.
func (t *I2C) TransferBlock(data []byte, done func(ok bool)) {
	go func() {
		err := t.dev.Tx(append([]byte{i2cCtrlData}, data...), nil)
		if err != nil {
			log.Debug("I2C block transfer failed", "err", err)
		}
		done(err == nil)
	}()
}

func (t *I2C) Close() error {
	return t.bus.Close()
}
