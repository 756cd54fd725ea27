package main

import (
	"testing"

	"nbtimer/internal/exposure"
	"nbtimer/internal/fstop"
	"nbtimer/internal/input"
)

type nopLamp struct{ on bool }

func (l *nopLamp) Set(on bool) error { l.on = on; return nil }
func (l *nopLamp) On() bool          { return l.on }

func TestFormatSeconds(t *testing.T) {
	cases := []struct {
		ms   uint32
		want string
	}{
		{0, "0.0"},
		{100, "0.1"},
		{8000, "8.0"},
		{12600, "12.6"},
		{90000, "90.0"},
	}
	for _, c := range cases {
		if got := formatSeconds(c.ms); got != c.want {
			t.Errorf("formatSeconds(%d) = %q, want %q", c.ms, got, c.want)
		}
	}
}

func TestHandleEventMapping(t *testing.T) {
	session := exposure.New(&nopLamp{}, 8000, fstop.Full)

	handleEvent(session, input.Up, 2)
	if got := session.BaseMS(); got != 16000 {
		t.Errorf("up: base = %d, want 16000", got)
	}
	handleEvent(session, input.Down, 2)
	if got := session.BaseMS(); got != 8000 {
		t.Errorf("down: base = %d, want 8000", got)
	}

	// Cancel while idle arms a test strip.
	handleEvent(session, input.Cancel, 2)
	if st := session.Status(); len(st.Strip) != 5 {
		t.Errorf("idle cancel: strip = %v, want 5 entries", st.Strip)
	}

	handleEvent(session, input.Focus, 2)
	if session.Status().State != exposure.Focusing {
		t.Error("focus event did not enter focus mode")
	}
	handleEvent(session, input.Focus, 2)
	if session.Status().State != exposure.Idle {
		t.Error("second focus event did not leave focus mode")
	}
}

func TestParseResolution(t *testing.T) {
	if parseResolution("full") != fstop.Full || parseResolution("sixth") != fstop.Sixth {
		t.Error("named resolutions wrong")
	}
	if parseResolution("") != fstop.Third || parseResolution("nonsense") != fstop.Third {
		t.Error("fallback resolution wrong")
	}
}
