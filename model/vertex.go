package model

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	vm "artifact_renderer/vector_math"
)

// Vertex layout as seen by the vertex stage. Both attributes are three tightly
// packed float32 values, the buffer holds vertices back to back.
const (
	VertexStride = 24

	PositionLocation = 0
	PositionOffset   = 0
	ColorLocation    = 1
	ColorOffset      = 12
)

var ErrVertexStride = errors.New("vertex buffer size is not a multiple of the vertex stride")

type Vertex struct {
	Pos   vm.Vec3
	Color vm.Vec3
}

// EncodeVertices writes vertices into a little endian vertex buffer.
func EncodeVertices(vertices []Vertex) []byte {
	buf := make([]byte, len(vertices)*VertexStride)
	for i, v := range vertices {
		b := buf[i*VertexStride:]
		putVec3(b[PositionOffset:], v.Pos)
		putVec3(b[ColorOffset:], v.Color)
	}
	return buf
}

// DecodeVertices reads a vertex buffer written by EncodeVertices or by any
// other producer following the same layout.
func DecodeVertices(buf []byte) ([]Vertex, error) {
	if len(buf)%VertexStride != 0 {
		return nil, fmt.Errorf("%w: %d bytes, stride %d", ErrVertexStride, len(buf), VertexStride)
	}
	vertices := make([]Vertex, len(buf)/VertexStride)
	for i := range vertices {
		b := buf[i*VertexStride:]
		vertices[i] = Vertex{
			Pos:   readVec3(b[PositionOffset:]),
			Color: readVec3(b[ColorOffset:]),
		}
	}
	return vertices, nil
}

func putFloat32(b []byte, f float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(f))
}

func readFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func putVec3(b []byte, v vm.Vec3) {
	putFloat32(b[0:], v.X)
	putFloat32(b[4:], v.Y)
	putFloat32(b[8:], v.Z)
}

func readVec3(b []byte) vm.Vec3 {
	return vm.Vec3{X: readFloat32(b[0:]), Y: readFloat32(b[4:]), Z: readFloat32(b[8:])}
}
