// Package exposure runs the darkroom timing session: focus mode, timed
// exposures through the lamp relay, f-stop time adjustment and test-strip
// sequencing.
package exposure

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"nbtimer/internal/fstop"
	"nbtimer/internal/log"
)

// Lamp is the slice of the relay the controller needs.
type Lamp interface {
	Set(on bool) error
	On() bool
}

// State is the controller's current mode.
type State int

const (
	Idle State = iota
	Focusing
	Exposing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Focusing:
		return "focusing"
	case Exposing:
		return "exposing"
	}
	return "?"
}

var (
	// ErrBusy is returned when an exposure is requested while the lamp is
	// already committed to one.
	ErrBusy = errors.New("exposure: already exposing")

	// ErrNotExposing is returned by Cancel when there is nothing to cancel.
	ErrNotExposing = errors.New("exposure: no exposure in progress")
)

// Status is a point-in-time snapshot for the panel and the HTTP API.
type Status struct {
	State       State
	BaseMS      uint32
	Resolution  fstop.Resolution
	RemainingMS uint32

	// Strip holds the remaining test-strip times when a strip run is
	// active; nil otherwise. Strip[0] is the next exposure.
	Strip []uint32
}

// Controller owns the lamp during a session. All methods are safe for
// concurrent use; an exposure runs on its own goroutine and can be
// canceled at any time.
type Controller struct {
	lamp Lamp

	mu        sync.Mutex
	state     State
	baseMS    uint32
	res       fstop.Resolution
	strip     []uint32
	stripStep int
	started   time.Time
	running   uint32
	cancel    context.CancelFunc
	done      chan struct{}

	// Changed is signaled (best effort) whenever the visible state moved,
	// so the UI loop can redraw promptly instead of only on its tick.
	Changed chan struct{}
}

// New returns an idle controller with the given starting time and step
// resolution.
func New(lamp Lamp, baseMS uint32, res fstop.Resolution) *Controller {
	return &Controller{
		lamp:    lamp,
		state:   Idle,
		baseMS:  baseMS,
		res:     res,
		Changed: make(chan struct{}, 1),
	}
}

func (c *Controller) notify() {
	select {
	case c.Changed <- struct{}{}:
	default:
	}
}

// Status returns a snapshot of the session.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Status{
		State:      c.state,
		BaseMS:     c.baseMS,
		Resolution: c.res,
	}
	if c.state == Exposing {
		elapsed := uint32(time.Since(c.started) / time.Millisecond)
		if elapsed < c.running {
			s.RemainingMS = c.running - elapsed
		}
	}
	if c.strip != nil {
		s.Strip = append([]uint32(nil), c.strip[c.stripStep:]...)
	}
	return s
}

// BaseMS returns the current base exposure time.
func (c *Controller) BaseMS() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseMS
}

// Adjust steps the base time one f-stop up (longer) or down. The session
// must not be exposing. Stepping also abandons a pending test strip.
func (c *Controller) Adjust(up bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Exposing {
		return ErrBusy
	}
	c.baseMS = fstop.Next(c.baseMS, !up, c.res)
	c.strip = nil
	c.stripStep = 0
	log.Debug("base time adjusted", "up", up, "ms", c.baseMS)
	c.notify()
	return nil
}

// SetResolution changes the f-stop step size.
func (c *Controller) SetResolution(res fstop.Resolution) {
	c.mu.Lock()
	c.res = res
	c.mu.Unlock()
	c.notify()
}

// Focus toggles focus mode: the lamp runs continuously so the print can be
// framed and focused. Toggling during an exposure is rejected.
func (c *Controller) Focus() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case Exposing:
		return ErrBusy
	case Focusing:
		if err := c.lamp.Set(false); err != nil {
			return err
		}
		c.state = Idle
	default:
		if err := c.lamp.Set(true); err != nil {
			return err
		}
		c.state = Focusing
	}
	log.Info("focus mode", "state", c.state)
	c.notify()
	return nil
}

// StartStrip arms a test-strip sequence around the base time. Each
// following Run exposes the next strip time until the strip is exhausted.
func (c *Controller) StartStrip(steps int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Exposing {
		return ErrBusy
	}
	c.strip = fstop.TestStrip(c.baseMS, steps, c.res)
	c.stripStep = 0
	log.Info("test strip armed", "times", fmt.Sprint(c.strip))
	c.notify()
	return nil
}

// Run starts the next exposure: the pending test-strip step if a strip is
// armed, the base time otherwise. It returns immediately; the exposure
// completes (or is canceled) on a background goroutine.
func (c *Controller) Run() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Exposing {
		return ErrBusy
	}
	if c.state == Focusing {
		// Leaving the lamp on would add uncontrolled exposure.
		if err := c.lamp.Set(false); err != nil {
			return err
		}
	}

	ms := c.baseMS
	if c.strip != nil {
		ms = c.strip[c.stripStep]
	}

	if err := c.lamp.Set(true); err != nil {
		return fmt.Errorf("exposure: lamp on: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.state = Exposing
	c.started = time.Now()
	c.running = ms
	c.cancel = cancel
	c.done = make(chan struct{})

	log.Info("exposure started", "ms", ms)
	go c.expose(ctx, ms, c.done)
	c.notify()
	return nil
}

func (c *Controller) expose(ctx context.Context, ms uint32, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer timer.Stop()

	completed := false
	select {
	case <-timer.C:
		completed = true
	case <-ctx.Done():
	}

	if err := c.lamp.Set(false); err != nil {
		log.Error("lamp off failed after exposure", err)
	}

	c.mu.Lock()
	c.state = Idle
	c.cancel = nil
	if completed {
		log.Info("exposure finished", "ms", ms)
		if c.strip != nil {
			c.stripStep++
			if c.stripStep >= len(c.strip) {
				c.strip = nil
				c.stripStep = 0
				log.Info("test strip complete")
			}
		}
	} else {
		log.Info("exposure canceled", "ms", ms)
	}
	c.mu.Unlock()
	c.notify()
}

// Cancel aborts a running exposure and switches the lamp off. The armed
// test strip, if any, stays on the current step so it can be retried.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	if c.state != Exposing || c.cancel == nil {
		c.mu.Unlock()
		return ErrNotExposing
	}
	cancel := c.cancel
	done := c.done
	c.mu.Unlock()

	cancel()
	<-done
	return nil
}

// Wait blocks until the current exposure settles. It is a no-op when idle.
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Close cancels any running exposure and forces the lamp off.
func (c *Controller) Close() error {
	if err := c.Cancel(); err != nil && !errors.Is(err, ErrNotExposing) {
		return err
	}
	return c.lamp.Set(false)
}
