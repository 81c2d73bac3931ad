package model

import (
	"github.com/chewxy/math32"

	vm "artifact_renderer/vector_math"
)

var (
	Red   = vm.Vec3{X: 1}
	Green = vm.Vec3{Y: 1}
	Blue  = vm.Vec3{Z: 1}
	White = vm.Vec3{X: 1, Y: 1, Z: 1}
)

// cubeIndices cover a unit cube with outward facing, counter clockwise triangles.
var cubeIndices = []uint32{
	0, 1, 2, 2, 3, 0, // front
	1, 5, 6, 6, 2, 1, // right
	5, 4, 7, 7, 6, 5, // back
	4, 0, 3, 3, 7, 4, // left
	3, 2, 6, 6, 7, 3, // top
	4, 5, 1, 1, 0, 4, // bottom
}

// NewCube returns a unit cube standing on the xz plane. The four corners of
// each z slice are colored red, green, blue and white.
func NewCube() *Mesh {
	colors := [4]vm.Vec3{Red, Green, Blue, White}
	return newCube(func(i int) vm.Vec3 { return colors[i%4] })
}

// NewSolidCube returns the same cube as NewCube in a single color.
func NewSolidCube(color vm.Vec3) *Mesh {
	return newCube(func(int) vm.Vec3 { return color })
}

func newCube(color func(i int) vm.Vec3) *Mesh {
	corners := []vm.Vec3{
		{X: -0.5, Y: 0, Z: 0.5},
		{X: 0.5, Y: 0, Z: 0.5},
		{X: 0.5, Y: 1, Z: 0.5},
		{X: -0.5, Y: 1, Z: 0.5},
		{X: -0.5, Y: 0, Z: -0.5},
		{X: 0.5, Y: 0, Z: -0.5},
		{X: 0.5, Y: 1, Z: -0.5},
		{X: -0.5, Y: 1, Z: -0.5},
	}
	v := make([]Vertex, len(corners))
	for i, c := range corners {
		v[i] = Vertex{Pos: c, Color: color(i)}
	}
	idx := make([]uint32, len(cubeIndices))
	copy(idx, cubeIndices)
	return NewMesh(v, idx)
}

// NewFloor returns a square of half extent size in the y = 0 plane, facing up.
func NewFloor(size float32, color vm.Vec3) *Mesh {
	v := []Vertex{
		{Pos: vm.Vec3{X: -size, Z: -size}, Color: color},
		{Pos: vm.Vec3{X: size, Z: -size}, Color: color},
		{Pos: vm.Vec3{X: size, Z: size}, Color: color},
		{Pos: vm.Vec3{X: -size, Z: size}, Color: color},
	}
	return NewMesh(v, []uint32{0, 2, 1, 0, 3, 2})
}

// NewArtifactRing places count white cubes evenly on a circle of the given
// radius around the origin.
func NewArtifactRing(count int, radius float32) *Mesh {
	cube := NewSolidCube(White)
	cubes := make([]*Mesh, 0, count)
	for i := 0; i < count; i++ {
		angle := float32(i) / float32(count) * 2 * math32.Pi
		offset := vm.Vec3{X: radius * math32.Cos(angle), Z: radius * math32.Sin(angle)}
		cubes = append(cubes, cube.Transformed(vm.NewTranslation(offset)))
	}
	return MergeMeshes(cubes...)
}

// NewTriangle returns the single triangle (0,0,0), (1,0,0), (0,1,0) facing +z.
func NewTriangle(color vm.Vec3) *Mesh {
	v := []Vertex{
		{Pos: vm.Vec3{}, Color: color},
		{Pos: vm.Vec3{X: 1}, Color: color},
		{Pos: vm.Vec3{Y: 1}, Color: color},
	}
	return NewMesh(v, []uint32{0, 1, 2})
}
