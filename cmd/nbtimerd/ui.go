package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nbtimer/internal/display"
	"nbtimer/internal/exposure"
	"nbtimer/internal/font"
	"nbtimer/internal/input"
	appLog "nbtimer/internal/log"
)

// uiLoop owns the panel contents: it redraws on every session change and on
// a slow tick (for the countdown), and maps button events onto the session.
func uiLoop(ctx context.Context, panel *display.Driver, session *exposure.Controller, events <-chan input.Event, stripSteps int) {
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	redraw(panel, session)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			handleEvent(session, ev, stripSteps)
		case <-session.Changed:
			redraw(panel, session)
		case <-tick.C:
			if session.Status().State == exposure.Exposing {
				redraw(panel, session)
			}
		}
	}
}

func handleEvent(session *exposure.Controller, ev input.Event, stripSteps int) {
	var err error
	switch ev {
	case input.Run:
		err = session.Run()
	case input.Focus:
		err = session.Focus()
	case input.Up:
		err = session.Adjust(true)
	case input.Down:
		err = session.Adjust(false)
	case input.Cancel:
		err = session.Cancel()
		if errors.Is(err, exposure.ErrNotExposing) {
			// Idle cancel arms a test strip instead.
			err = session.StartStrip(stripSteps)
		}
	}
	if err != nil && !errors.Is(err, exposure.ErrBusy) {
		appLog.Error("input action failed", err, "event", ev)
	}
}

// redraw paints the whole screen for the current session state. The layout:
// state line on top, the time in large digits in the middle, step size and
// strip info at the bottom, and a countdown ring while exposing.
func redraw(panel *display.Driver, session *exposure.Controller) {
	st := session.Status()

	panel.Clear(display.Black)

	panel.SetCursor(2, 0)
	panel.WriteString(st.State.String(), font.Base5x8, display.White)
	panel.DrawLine(1, 10, display.Width, 10, display.White)

	ms := st.BaseMS
	if st.State == exposure.Exposing {
		ms = st.RemainingMS
	} else if st.Strip != nil {
		ms = st.Strip[0]
	}

	text := formatSeconds(ms)
	x := (display.Width - font.Digits10x16.StringWidth(text)) / 2
	panel.SetCursor(x, 22)
	panel.WriteString(text, font.Digits10x16, display.White)

	panel.SetCursor(2, 54)
	panel.WriteString("f "+st.Resolution.String(), font.Base5x8, display.White)

	if st.Strip != nil {
		label := fmt.Sprintf("strip %d", len(st.Strip))
		panel.SetCursor(display.Width-font.Base5x8.StringWidth(label)-2, 54)
		panel.WriteString(label, font.Base5x8, display.White)
	}

	if st.State == exposure.Exposing {
		drawCountdownRing(panel, st)
	}
}

// drawCountdownRing sweeps an arc clockwise from south as the exposure
// progresses.
func drawCountdownRing(panel *display.Driver, st exposure.Status) {
	total := st.BaseMS
	if st.Strip != nil {
		total = st.Strip[0]
	}
	if total == 0 {
		return
	}
	sweep := int(360 * (total - st.RemainingMS) / total)
	center := display.Point{X: 116, Y: 32}
	panel.DrawCircle(center.X, center.Y, 11, display.White)
	panel.DrawArc(center, 8, 0, sweep, display.White)
}

// formatSeconds renders milliseconds as seconds with one decimal, the
// resolution the relay can hold.
func formatSeconds(ms uint32) string {
	return fmt.Sprintf("%d.%d", ms/1000, (ms%1000)/100)
}
