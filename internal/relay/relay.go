// Package relay drives the enlarger lamp relay on a single GPIO line.
package relay

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"nbtimer/internal/log"
)

// Relay switches the lamp. It is safe for concurrent use; the exposure
// controller and the focus toggle can share one instance.
type Relay struct {
	pin       gpio.PinOut
	activeLow bool

	mu sync.Mutex
	on bool
}

// New wraps pin. activeLow inverts the drive for boards that energize on a
// low level. The relay starts switched off.
func New(pin gpio.PinOut, activeLow bool) (*Relay, error) {
	r := &Relay{pin: pin, activeLow: activeLow}
	if err := r.Set(false); err != nil {
		return nil, fmt.Errorf("relay: initial off failed: %w", err)
	}
	return r, nil
}

// Open resolves a GPIO by name and wraps it.
func Open(name string, activeLow bool) (*Relay, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("relay: no such gpio %q", name)
	}
	return New(pin, activeLow)
}

// Set switches the lamp on or off.
func (r *Relay) Set(on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	level := gpio.Level(on != r.activeLow)
	if err := r.pin.Out(level); err != nil {
		return fmt.Errorf("relay: %s: %w", r.pin.Name(), err)
	}
	if on != r.on {
		log.Debug("relay switched", "on", on)
	}
	r.on = on
	return nil
}

// On reports whether the lamp is currently switched on.
func (r *Relay) On() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.on
}

// Close forces the lamp off.
func (r *Relay) Close() error {
	return r.Set(false)
}
