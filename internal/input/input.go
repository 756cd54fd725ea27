// Package input watches the front-panel buttons and the footswitch and
// turns GPIO edges into events on a channel.
package input

import (
	"context"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"nbtimer/internal/log"
)

// Event identifies a front-panel control.
type Event int

const (
	Run Event = iota
	Focus
	Up
	Down
	Cancel
)

func (e Event) String() string {
	switch e {
	case Run:
		return "run"
	case Focus:
		return "focus"
	case Up:
		return "up"
	case Down:
		return "down"
	case Cancel:
		return "cancel"
	}
	return "?"
}

// Binding attaches one event to one input pin.
type Binding struct {
	Event Event
	Pin   gpio.PinIn
}

// Watcher fans button edges from any number of pins into a single channel.
type Watcher struct {
	bindings []Binding
	events   chan Event
	wg       sync.WaitGroup
}

// New configures every bound pin as a pulled-up input triggering on the
// falling edge (buttons switch to ground).
func New(bindings []Binding) (*Watcher, error) {
	for _, b := range bindings {
		if err := b.Pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
			return nil, fmt.Errorf("input: %s: %w", b.Pin.Name(), err)
		}
	}
	return &Watcher{
		bindings: bindings,
		events:   make(chan Event, 8),
	}, nil
}

// Resolve looks up a pin by GPIO name; empty names are skipped by the
// caller, unknown names are an error.
func Resolve(name string) (gpio.PinIn, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("input: no such gpio %q", name)
	}
	return pin, nil
}

// Events returns the channel the watcher delivers on. Events are dropped,
// not queued unboundedly, when the consumer falls behind.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run watches all bound pins until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) {
	for _, b := range w.bindings {
		w.wg.Add(1)
		go w.watch(ctx, b)
	}
	w.wg.Wait()
	close(w.events)
}

func (w *Watcher) watch(ctx context.Context, b Binding) {
	defer w.wg.Done()
	for {
		if ctx.Err() != nil {
			return
		}
		// The timeout bounds how long shutdown can lag ctx cancellation.
		if !b.Pin.WaitForEdge(500 * time.Millisecond) {
			continue
		}
		select {
		case w.events <- b.Event:
		default:
			log.Debug("input event dropped", "event", b.Event)
		}
	}
}
