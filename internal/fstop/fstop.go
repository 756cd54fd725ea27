// Package fstop implements f-stop exposure arithmetic in fixed-point
// integer math. Times are milliseconds, multipliers are scaled by 1024,
// and every result is rounded to the 100 ms resolution the relay can
// actually hold.
package fstop

// Resolution selects the f-stop step size.
type Resolution int

const (
	Full Resolution = iota
	Half
	Third
	Sixth
)

func (r Resolution) String() string {
	switch r {
	case Full:
		return "1"
	case Half:
		return "1/2"
	case Third:
		return "1/3"
	case Sixth:
		return "1/6"
	}
	return "?"
}

const (
	scaleFactor = 1024
	maxResMS    = 100
)

// Multipliers precomputed at the 1024 scale.
const (
	plusSixth = 1149 // 1.1225
	plusThird = 1290 // 1.2599
	plusHalf  = 1448 // 1.4142
	plusFull  = 2048 // 2.0

	minusSixth = 891 // 0.8700
	minusThird = 814 // 0.7943
	minusHalf  = 724 // 0.7071
	minusFull  = 512 // 0.5
)

// Next returns the exposure time one f-stop step away from startMS, longer
// when reverse is false and shorter when it is true, rounded to the nearest
// 100 ms.
func Next(startMS uint32, reverse bool, res Resolution) uint32 {
	var mul uint32
	switch res {
	case Full:
		mul = plusFull
		if reverse {
			mul = minusFull
		}
	case Half:
		mul = plusHalf
		if reverse {
			mul = minusHalf
		}
	case Third:
		mul = plusThird
		if reverse {
			mul = minusThird
		}
	case Sixth:
		mul = plusSixth
		if reverse {
			mul = minusSixth
		}
	default:
		return 0
	}

	t := (startMS * mul) >> 10

	mod := t % maxResMS
	if mod > maxResMS/2 {
		return t + (maxResMS - mod)
	}
	return t - mod
}

// TimeTable fills a table of successive f-stop steps starting from (and
// excluding) startMS. Each entry is derived from the previous rounded one,
// matching how a stepwise adjustment on the panel would accumulate.
func TimeTable(startMS uint32, reverse bool, steps int, res Resolution) []uint32 {
	out := make([]uint32, steps)
	cur := startMS
	for i := range out {
		cur = Next(cur, reverse, res)
		out[i] = cur
	}
	return out
}

// TestStrip returns 2*steps+1 exposure times centered on baseMS: steps
// shorter times in ascending order, the base time, then steps longer times.
func TestStrip(baseMS uint32, steps int, res Resolution) []uint32 {
	out := make([]uint32, 0, steps*2+1)

	lower := TimeTable(baseMS, true, steps, res)
	for i := len(lower) - 1; i >= 0; i-- {
		out = append(out, lower[i])
	}

	out = append(out, baseMS)
	out = append(out, TimeTable(baseMS, false, steps, res)...)
	return out
}
