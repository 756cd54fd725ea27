package input

import (
	"context"
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestEdgeDeliversEvent(t *testing.T) {
	pin := &gpiotest.Pin{N: "RUN", EdgesChan: make(chan gpio.Level, 1)}
	w, err := New([]Binding{{Event: Run, Pin: pin}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	pin.EdgesChan <- gpio.Low

	select {
	case ev := <-w.Events():
		if ev != Run {
			t.Errorf("event = %v, want run", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestMultiplePinsShareChannel(t *testing.T) {
	up := &gpiotest.Pin{N: "UP", EdgesChan: make(chan gpio.Level, 1)}
	down := &gpiotest.Pin{N: "DOWN", EdgesChan: make(chan gpio.Level, 1)}
	w, err := New([]Binding{{Event: Up, Pin: up}, {Event: Down, Pin: down}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	up.EdgesChan <- gpio.Low
	down.EdgesChan <- gpio.Low

	got := map[Event]bool{}
	for i := 0; i < 2; i++ {
		select {
		case ev := <-w.Events():
			got[ev] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d events", i)
		}
	}
	if !got[Up] || !got[Down] {
		t.Errorf("events seen: %v", got)
	}
}

func TestEventString(t *testing.T) {
	if Run.String() != "run" || Cancel.String() != "cancel" {
		t.Error("event labels wrong")
	}
}
