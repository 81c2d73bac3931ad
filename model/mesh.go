package model

import (
	"encoding/binary"
	"errors"
	"fmt"

	vm "artifact_renderer/vector_math"
)

var (
	ErrIndexCount = errors.New("index count is not a multiple of 3")
	ErrIndexRange = errors.New("index out of vertex range")
	ErrEmptyMesh  = errors.New("mesh has no triangles")
)

// IndexSize is the byte size of one uint32 index.
const IndexSize = 4

// Mesh is an indexed triangle list. Triangles are wound counter clockwise
// when seen from their front side.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

func NewMesh(v []Vertex, idx []uint32) *Mesh {
	return &Mesh{
		Vertices: v,
		Indices:  idx,
	}
}

func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

func (m *Mesh) Validate() error {
	if len(m.Indices) == 0 {
		return ErrEmptyMesh
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices", ErrIndexCount, len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return fmt.Errorf("%w: index %d at %d, %d vertices", ErrIndexRange, idx, i, len(m.Vertices))
		}
	}
	return nil
}

// VertexBytes returns the vertex buffer contents of the mesh.
func (m *Mesh) VertexBytes() []byte {
	return EncodeVertices(m.Vertices)
}

// IndexBytes returns the index buffer contents of the mesh as little endian uint32.
func (m *Mesh) IndexBytes() []byte {
	buf := make([]byte, len(m.Indices)*IndexSize)
	for i, idx := range m.Indices {
		binary.LittleEndian.PutUint32(buf[i*IndexSize:], idx)
	}
	return buf
}

// Transformed returns a copy with every position multiplied by mat. Colors
// are kept.
func (m *Mesh) Transformed(mat vm.Mat4) *Mesh {
	v := make([]Vertex, len(m.Vertices))
	for i, vert := range m.Vertices {
		v[i] = Vertex{Pos: mat.Apply(vert.Pos, 1), Color: vert.Color}
	}
	idx := make([]uint32, len(m.Indices))
	copy(idx, m.Indices)
	return NewMesh(v, idx)
}

// MergeMeshes concatenates meshes into one, rebasing the indices of every
// mesh onto its vertices in the result.
func MergeMeshes(meshes ...*Mesh) *Mesh {
	res := &Mesh{}
	for _, m := range meshes {
		base := uint32(len(res.Vertices))
		res.Vertices = append(res.Vertices, m.Vertices...)
		for _, idx := range m.Indices {
			res.Indices = append(res.Indices, base+idx)
		}
	}
	return res
}
