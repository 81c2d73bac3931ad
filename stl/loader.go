// Package stl reads binary STL files into meshes.
package stl

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"

	"artifact_renderer/model"
	vm "artifact_renderer/vector_math"
)

const (
	headerSize   = 80
	countSize    = 4
	triangleSize = 50
)

var ErrTruncated = errors.New("stl data shorter than announced triangle count")

// ReadFile loads a binary STL file. Each vertex takes the absolute value of
// its facet normal as color, so faces pointing along different axes are
// told apart without lighting.
func ReadFile(path string) (*model.Mesh, error) {
	log.Printf("Reading stl file %s", path)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stl %s: %w", path, err)
	}
	m, err := Decode(b)
	if err != nil {
		return nil, fmt.Errorf("decode stl %s: %w", path, err)
	}
	log.Printf("Successfully read stl file, Header: '%s', Triangle Count: %d", trimHeader(b[:headerSize]), m.TriangleCount())
	return m, nil
}

func Read(r io.Reader) (*model.Mesh, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(b)
}

func Decode(b []byte) (*model.Mesh, error) {
	if len(b) < headerSize+countSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(b))
	}
	tCnt := binary.LittleEndian.Uint32(b[headerSize : headerSize+countSize])
	body := b[headerSize+countSize:]
	if uint64(len(body)) < uint64(tCnt)*triangleSize {
		return nil, fmt.Errorf("%w: %d triangles announced, %d bytes present", ErrTruncated, tCnt, len(body))
	}
	return toMesh(body, tCnt), nil
}

func toMesh(bytes []byte, triangleCnt uint32) *model.Mesh {
	v := make([]model.Vertex, 0, triangleCnt*3)
	id := make([]uint32, 0, triangleCnt*3)
	for t := uint32(0); t < triangleCnt; t++ {
		rec := bytes[t*triangleSize:]
		color := toVec3(rec[0:12]).Abs()
		for corner := 0; corner < 3; corner++ {
			off := 12 + corner*12
			id = append(id, uint32(len(v)))
			v = append(v, model.Vertex{
				Pos:   toVec3(rec[off : off+12]),
				Color: color,
			})
		}
		// the trailing 2 byte attribute count is unused
	}
	return model.NewMesh(v, id)
}

// Encode writes m as binary STL, computing facet normals from the winding.
func Encode(w io.Writer, header string, m *model.Mesh) error {
	buf := make([]byte, headerSize+countSize, headerSize+countSize+m.TriangleCount()*triangleSize)
	copy(buf[:headerSize], header)
	binary.LittleEndian.PutUint32(buf[headerSize:], uint32(m.TriangleCount()))
	rec := make([]byte, triangleSize)
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a := m.Vertices[m.Indices[i]].Pos
		b := m.Vertices[m.Indices[i+1]].Pos
		c := m.Vertices[m.Indices[i+2]].Pos
		n := b.Sub(a).Cross(c.Sub(a)).Norm()
		for j, p := range []vm.Vec3{n, a, b, c} {
			putVec3(rec[j*12:], p)
		}
		rec[48], rec[49] = 0, 0
		buf = append(buf, rec...)
	}
	_, err := w.Write(buf)
	return err
}

func trimHeader(h []byte) string {
	for i, c := range h {
		if c == 0 {
			return string(h[:i])
		}
	}
	return string(h)
}

func toVec3(bytes []byte) vm.Vec3 {
	return vm.Vec3{
		X: toFloat32(bytes[:4]),
		Y: toFloat32(bytes[4:8]),
		Z: toFloat32(bytes[8:12]),
	}
}

func toFloat32(bytes []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(bytes))
}

func putVec3(b []byte, v vm.Vec3) {
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(v.X))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(v.Y))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(v.Z))
}
