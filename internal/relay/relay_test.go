package relay

import (
	"testing"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestActiveHighDrive(t *testing.T) {
	pin := &gpiotest.Pin{N: "LAMP"}
	r, err := New(pin, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if pin.L != gpio.Low {
		t.Error("relay not driven off at startup")
	}

	if err := r.Set(true); err != nil {
		t.Fatal(err)
	}
	if pin.L != gpio.High || !r.On() {
		t.Error("on did not drive high")
	}

	if err := r.Set(false); err != nil {
		t.Fatal(err)
	}
	if pin.L != gpio.Low || r.On() {
		t.Error("off did not drive low")
	}
}

func TestActiveLowDrive(t *testing.T) {
	pin := &gpiotest.Pin{N: "LAMP"}
	r, err := New(pin, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if pin.L != gpio.High {
		t.Error("active-low relay not driven high (off) at startup")
	}

	if err := r.Set(true); err != nil {
		t.Fatal(err)
	}
	if pin.L != gpio.Low {
		t.Error("active-low on did not drive low")
	}
}

func TestCloseForcesOff(t *testing.T) {
	pin := &gpiotest.Pin{N: "LAMP"}
	r, err := New(pin, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.Set(true); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if pin.L != gpio.Low || r.On() {
		t.Error("Close left the lamp on")
	}
}
