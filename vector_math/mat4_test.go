package vector_math

import (
	"testing"

	"github.com/xlab/linmath"
)

const eps = 1e-5

// TestIdentity confirms the unit matrix leaves vectors and matrices untouched
func TestIdentity(t *testing.T) {
	id := Identity()
	v := Vec4{X: 1.5, Y: -2, Z: 3.25, W: 1}
	if got := id.MulVec4(v); got != v {
		t.Errorf("I*v should equal v: %v != %v", got, v)
	}
	m := FromRows([4][4]float32{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
		{13, 14, 15, 16},
	})
	if !id.Mult(m).Equals(m) || !m.Mult(id).Equals(m) {
		t.Errorf("I*m and m*I should equal m:\n%s", m.ToString())
	}
}

func TestColumnMajorStorage(t *testing.T) {
	m := FromRows([4][4]float32{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
		{13, 14, 15, 16},
	})
	if m.At(0, 3) != 4 || m.At(3, 0) != 13 {
		t.Errorf("At(row, col) mismatch:\n%s", m.Describe())
	}
	want := []float32{1, 5, 9, 13, 2, 6, 10, 14, 3, 7, 11, 15, 4, 8, 12, 16}
	got := m.Unroll()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Unroll should emit columns one after another: %v", got)
		}
	}
	if m.Row(1) != (Vec4{5, 6, 7, 8}) || m.Col(1) != (Vec4{2, 6, 10, 14}) {
		t.Errorf("Row/Col mismatch: %v %v", m.Row(1), m.Col(1))
	}
	if !m.Transpose().Transpose().Equals(m) {
		t.Errorf("double transpose should be a no-op")
	}
}

func TestMulVec4(t *testing.T) {
	cases := []struct {
		name string
		m    Mat4
		v    Vec4
		want Vec4
	}{
		{"identity", Identity(), Vec4{1, 2, 3, 1}, Vec4{1, 2, 3, 1}},
		{"translation", NewTranslation(Vec3{X: 1, Y: -2, Z: 3}), Vec4{1, 1, 1, 1}, Vec4{2, -1, 4, 1}},
		{"translation ignores directions", NewTranslation(Vec3{X: 1, Y: -2, Z: 3}), Vec4{1, 1, 1, 0}, Vec4{1, 1, 1, 0}},
		{"scale", NewScale(Vec3{X: 2, Y: 3, Z: 4}), Vec4{1, 1, 1, 1}, Vec4{2, 3, 4, 1}},
		{"rows", FromRows([4][4]float32{
			{1, 2, 3, 4},
			{0, 1, 0, 0},
			{0, 0, 1, 0},
			{0, 0, 1, 0},
		}), Vec4{1, 1, 2, 1}, Vec4{11, 1, 2, 2}},
	}
	for _, c := range cases {
		if got := c.m.MulVec4(c.v); got != c.want {
			t.Errorf("%s: expected %v but got %v", c.name, c.want, got)
		}
	}
}

func TestMultOrder(t *testing.T) {
	tr := NewTranslation(Vec3{X: 1})
	sc := NewScale(Vec3{X: 2, Y: 2, Z: 2})
	p := Vec3{X: 1}
	// scale first, then translate
	if got := tr.Mult(sc).Apply(p, 1); got != (Vec3{X: 3}) {
		t.Errorf("T*S should scale before translating, got %v", got)
	}
	if got := sc.Mult(tr).Apply(p, 1); got != (Vec3{X: 4}) {
		t.Errorf("S*T should translate before scaling, got %v", got)
	}
}

func TestRotationAxes(t *testing.T) {
	rad := ToRad(90)
	pairs := []struct {
		name    string
		special Mat4
		generic Mat4
	}{
		{"x", NewRotX(rad), NewRotation(rad, Vec3{X: 1})},
		{"y", NewRotY(rad), NewRotation(rad, Vec3{Y: 1})},
		{"z", NewRotZ(rad), NewRotation(rad, Vec3{Z: 1})},
	}
	for _, p := range pairs {
		if !p.special.ApproxEquals(p.generic, eps) {
			t.Errorf(
				"Rot%s not equal to generic rotation. special: \n%s\n generic: \n%s",
				p.name, p.special.ToString(), p.generic.ToString(),
			)
		}
	}
	if got := NewRotZ(rad).Apply(Vec3{X: 1}, 0); got.Sub(Vec3{Y: 1}).Len() > eps {
		t.Errorf("rotating x by 90 degree around z should give y, got %v", got)
	}
}

func TestArbitraryRotation(t *testing.T) {
	mr := NewRotation(ToRad(-74), Vec3{X: -0.5, Y: 1, Z: 1})
	mrExample := FromRows([4][4]float32{
		{0.3561221, 0.47987163, -0.8018106, 0},
		{-0.8018106, 0.5975763, 0.0015183985, 0},
		{0.47987163, 0.6423595, 0.5975763, 0},
		{0, 0, 0, 1},
	})
	if !mr.ApproxEquals(mrExample, eps) {
		t.Errorf(
			"Arbitrary rotation didnt match expectations. expectation: \n%s\n actual: \n%s",
			mrExample.ToString(),
			mr.ToString(),
		)
	}
}

func TestLinmathRoundTrip(t *testing.T) {
	var l linmath.Mat4x4
	l.Translate(1, 2, 3)
	m := FromLinmath(&l)
	if !m.Equals(NewTranslation(Vec3{X: 1, Y: 2, Z: 3})) {
		t.Errorf("linmath translation should land in the fourth column:\n%s", m.ToString())
	}
	back := m.Linmath()
	if back != l {
		t.Errorf("conversion back to linmath changed the matrix")
	}
}

func TestDepthZeroToOne(t *testing.T) {
	d := DepthZeroToOne()
	near := d.MulVec4(Vec4{Z: -2, W: 2})
	far := d.MulVec4(Vec4{Z: 2, W: 2})
	if near.Z != 0 || far.Z != 2 {
		t.Errorf("expected depth 0 and w, got %f and %f", near.Z, far.Z)
	}
}
