package display

// Fixed-point trigonometry for arc drawing. Values are scaled by 1024 and
// looked up in a full-circle cosine table at 5 degree resolution, so no
// floating point is involved anywhere in the raster path.

const fxpScale = 1024

// cosLUT holds cos(i*5deg) * 1024 for i in [0,72).
var cosLUT = [72]int{
	1024, 1020, 1008, 989, 962, 928, 887, 839, 784, 724, 658, 587,
	512, 433, 350, 265, 178, 89, 0, -89, -178, -265, -350, -433,
	-512, -587, -658, -724, -784, -839, -887, -928, -962, -989, -1008, -1020,
	-1024, -1020, -1008, -989, -962, -928, -887, -839, -784, -724, -658, -587,
	-512, -433, -350, -265, -178, -89, 0, 89, 178, 265, 350, 433,
	512, 587, 658, 724, 784, 839, 887, 928, 962, 989, 1008, 1020,
}

// fxpCos returns cos(deg) * 1024. Degrees are normalized into [0,360);
// 0 maps to 0, not 360.
func fxpCos(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return cosLUT[deg/5]
}

// fxpSin returns sin(deg) * 1024.
func fxpSin(deg int) int {
	return fxpCos(deg + 270)
}
