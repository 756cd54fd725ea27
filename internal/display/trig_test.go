package display

import "testing"

func TestFxpCosKnownAngles(t *testing.T) {
	cases := []struct {
		deg  int
		want int
	}{
		{0, 1024},
		{60, 512},
		{90, 0},
		{180, -1024},
		{270, 0},
		{360, 1024},
		{-90, 0},
		{-360, 1024},
		{720, 1024},
		{45, 724},
	}
	for _, c := range cases {
		if got := fxpCos(c.deg); got != c.want {
			t.Errorf("fxpCos(%d) = %d, want %d", c.deg, got, c.want)
		}
	}
}

func TestFxpSinKnownAngles(t *testing.T) {
	cases := []struct {
		deg  int
		want int
	}{
		{0, 0},
		{30, 512},
		{90, 1024},
		{180, 0},
		{270, -1024},
		{-90, -1024},
	}
	for _, c := range cases {
		if got := fxpSin(c.deg); got != c.want {
			t.Errorf("fxpSin(%d) = %d, want %d", c.deg, got, c.want)
		}
	}
}

func TestTrigTableSymmetry(t *testing.T) {
	for deg := 0; deg < 360; deg += 5 {
		if fxpCos(deg) != fxpCos(-deg) {
			t.Errorf("cos(%d) != cos(-%d)", deg, deg)
		}
		if fxpSin(deg) != -fxpSin(-deg) {
			t.Errorf("sin(%d) != -sin(-%d)", deg, deg)
		}
		if fxpCos(deg) != fxpCos(deg+360) {
			t.Errorf("cos not periodic at %d", deg)
		}
	}
}
