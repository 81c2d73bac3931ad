package vector_math

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"github.com/xlab/linmath"
)

// Mat4 is a 4x4 float32 matrix stored column-major: m[c][r] is the element in
// column c and row r. Unrolled, the columns follow each other in memory, which
// is the layout a shader mat4 expects in a uniform buffer.
type Mat4 [4][4]float32

// Identity returns the 4x4 unit matrix.
func Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// FromRows builds a matrix from rows as they are written on paper.
func FromRows(rows [4][4]float32) Mat4 {
	var m Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[c][r] = rows[r][c]
		}
	}
	return m
}

// FromLinmath copies a linmath matrix. Both share the column-major layout.
func FromLinmath(l *linmath.Mat4x4) Mat4 {
	var m Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			m[c][r] = l[c][r]
		}
	}
	return m
}

func (m Mat4) Linmath() linmath.Mat4x4 {
	var l linmath.Mat4x4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			l[c][r] = m[c][r]
		}
	}
	return l
}

// At returns the element at row r, column c.
func (m Mat4) At(r, c int) float32 {
	return m[c][r]
}

func (m Mat4) Row(r int) Vec4 {
	return Vec4{X: m[0][r], Y: m[1][r], Z: m[2][r], W: m[3][r]}
}

func (m Mat4) Col(c int) Vec4 {
	return Vec4{X: m[c][0], Y: m[c][1], Z: m[c][2], W: m[c][3]}
}

// Mult returns m·b, so b is applied to a vector first.
func (m Mat4) Mult(b Mat4) Mat4 {
	var res Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k][r] * b[c][k]
			}
			res[c][r] = sum
		}
	}
	return res
}

// MulVec4 returns m·v.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		X: m[0][0]*v.X + m[1][0]*v.Y + m[2][0]*v.Z + m[3][0]*v.W,
		Y: m[0][1]*v.X + m[1][1]*v.Y + m[2][1]*v.Z + m[3][1]*v.W,
		Z: m[0][2]*v.X + m[1][2]*v.Y + m[2][2]*v.Z + m[3][2]*v.W,
		W: m[0][3]*v.X + m[1][3]*v.Y + m[2][3]*v.Z + m[3][3]*v.W,
	}
}

// Apply transforms a point (w = 1) or a direction (w = 0) and drops the
// homogeneous coordinate.
func (m Mat4) Apply(v Vec3, w float32) Vec3 {
	return m.MulVec4(v.Extend(w)).XYZ()
}

func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			t[r][c] = m[c][r]
		}
	}
	return t
}

func (m Mat4) Equals(b Mat4) bool {
	return m == b
}

// ApproxEquals compares element wise with an absolute tolerance.
func (m Mat4) ApproxEquals(b Mat4, eps float32) bool {
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			if math32.Abs(m[c][r]-b[c][r]) > eps {
				return false
			}
		}
	}
	return true
}

// Unroll flattens the matrix column by column.
func (m Mat4) Unroll() []float32 {
	f := make([]float32, 0, 16)
	for c := 0; c < 4; c++ {
		f = append(f, m[c][:]...)
	}
	return f
}

func (m Mat4) ByteSize() int {
	return 16 * 4
}

func (m Mat4) ToString() string {
	mStr := strings.Builder{}
	for r := 0; r < 4; r++ {
		if r > 0 {
			mStr.WriteString("\n")
		}
		mStr.WriteString(fmt.Sprintf("%v", [4]float32{m[0][r], m[1][r], m[2][r], m[3][r]}))
	}
	return mStr.String()
}

func (m Mat4) Describe() string {
	return fmt.Sprintf("4x4 Matrix, %d Bytes in memory:\n%s", m.ByteSize(), m.ToString())
}
