package vector_math

import "github.com/chewxy/math32"

// ToRad turns degree into radians
func ToRad(deg float32) float32 {
	return deg * math32.Pi / 180
}

// ToDeg turns radians into degree
func ToDeg(rad float32) float32 {
	return rad * 180 / math32.Pi
}

// EdgeFunction returns twice the signed area of the triangle (a, b, p).
func EdgeFunction(a, b, p Vec2) float32 {
	return b.Sub(a).Cross(p.Sub(a))
}
