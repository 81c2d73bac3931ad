package vector_math

import "github.com/chewxy/math32"

func NewRotX(rad float32) Mat4 {
	s, c := math32.Sin(rad), math32.Cos(rad)
	return FromRows([4][4]float32{
		{1, 0, 0, 0},
		{0, c, -s, 0},
		{0, s, c, 0},
		{0, 0, 0, 1},
	})
}

func NewRotY(rad float32) Mat4 {
	s, c := math32.Sin(rad), math32.Cos(rad)
	return FromRows([4][4]float32{
		{c, 0, s, 0},
		{0, 1, 0, 0},
		{-s, 0, c, 0},
		{0, 0, 0, 1},
	})
}

func NewRotZ(rad float32) Mat4 {
	s, c := math32.Sin(rad), math32.Cos(rad)
	return FromRows([4][4]float32{
		{c, -s, 0, 0},
		{s, c, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	})
}

// NewRotation rotates counter clockwise by rad around axis (right hand rule).
// The axis is normalized if it is not a unit vector already.
func NewRotation(rad float32, axis Vec3) Mat4 {
	if axis.Dot(axis) != 1 {
		axis = axis.Norm()
	}
	ux, uy, uz := axis.X, axis.Y, axis.Z
	sinT, cosT := math32.Sin(rad), math32.Cos(rad)
	oc := 1 - cosT
	return FromRows([4][4]float32{
		{cosT + ux*ux*oc, ux*uy*oc - uz*sinT, ux*uz*oc + uy*sinT, 0},
		{uy*ux*oc + uz*sinT, cosT + uy*uy*oc, uy*uz*oc - ux*sinT, 0},
		{uz*ux*oc - uy*sinT, uz*uy*oc + ux*sinT, cosT + uz*uz*oc, 0},
		{0, 0, 0, 1},
	})
}

func NewScale(s Vec3) Mat4 {
	m := Identity()
	m[0][0] = s.X
	m[1][1] = s.Y
	m[2][2] = s.Z
	return m
}

func NewTranslation(t Vec3) Mat4 {
	m := Identity()
	m[3][0] = t.X
	m[3][1] = t.Y
	m[3][2] = t.Z
	return m
}

// DepthZeroToOne remaps OpenGL clip depth [-w, w] to [0, w].
func DepthZeroToOne() Mat4 {
	return FromRows([4][4]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0.5, 0.5},
		{0, 0, 0, 1},
	})
}

// FlipY mirrors clip space vertically, turning y-up clip coordinates into
// Vulkan's y-down convention.
func FlipY() Mat4 {
	m := Identity()
	m[1][1] = -1
	return m
}
