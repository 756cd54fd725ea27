package fstop

import (
	"reflect"
	"testing"
)

func TestNext(t *testing.T) {
	cases := []struct {
		name    string
		startMS uint32
		reverse bool
		res     Resolution
		want    uint32
	}{
		{"full up doubles", 10000, false, Full, 20000},
		{"full down halves", 10000, true, Full, 5000},
		{"half up", 10000, false, Half, 14100},
		{"half down rounds up", 10000, true, Half, 7100},
		{"third up rounds up", 10000, false, Third, 12600},
		{"third down", 10000, true, Third, 7900},
		{"sixth up", 10000, false, Sixth, 11200},
		{"sixth down", 10000, true, Sixth, 8700},
		{"exact half-step remainder rounds down", 300, true, Full, 100},
		{"zero stays zero", 0, false, Full, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Next(c.startMS, c.reverse, c.res); got != c.want {
				t.Errorf("Next(%d, %v, %v) = %d, want %d", c.startMS, c.reverse, c.res, got, c.want)
			}
		})
	}
}

func TestNextAlwaysOnResolutionGrid(t *testing.T) {
	for _, res := range []Resolution{Full, Half, Third, Sixth} {
		start := uint32(1300)
		for i := 0; i < 10; i++ {
			start = Next(start, false, res)
			if start%100 != 0 {
				t.Fatalf("resolution %v step %d: %d ms is off the 100 ms grid", res, i, start)
			}
		}
	}
}

func TestTimeTableAccumulatesRoundedSteps(t *testing.T) {
	got := TimeTable(10000, false, 3, Half)
	want := []uint32{14100, 19900, 28100}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TimeTable = %v, want %v", got, want)
	}
}

func TestTestStripLayout(t *testing.T) {
	got := TestStrip(10000, 2, Full)
	want := []uint32{2500, 5000, 10000, 20000, 40000}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TestStrip = %v, want %v", got, want)
	}
}

func TestTestStripIsMonotonic(t *testing.T) {
	for _, res := range []Resolution{Half, Third, Sixth} {
		strip := TestStrip(8000, 3, res)
		if len(strip) != 7 {
			t.Fatalf("resolution %v: strip length %d, want 7", res, len(strip))
		}
		for i := 1; i < len(strip); i++ {
			if strip[i] <= strip[i-1] {
				t.Errorf("resolution %v: strip not strictly increasing at %d: %v", res, i, strip)
			}
		}
		if strip[3] != 8000 {
			t.Errorf("resolution %v: base time not centered: %v", res, strip)
		}
	}
}

func TestResolutionString(t *testing.T) {
	if Full.String() != "1" || Sixth.String() != "1/6" {
		t.Error("Resolution String labels wrong")
	}
}
