package stl

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artifact_renderer/model"
	vm "artifact_renderer/vector_math"
)

func TestEncodeDecodeTriangle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, "triangle", model.NewTriangle(model.White)))
	assert.Equal(t, headerSize+countSize+triangleSize, buf.Len())

	m, err := Decode(buf.Bytes())
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	assert.Equal(t, 1, m.TriangleCount())
	assert.Equal(t, vm.Vec3{X: 1}, m.Vertices[1].Pos)
	// the triangle faces +z, so the normal derived color is blue
	for _, v := range m.Vertices {
		assert.Equal(t, vm.Vec3{Z: 1}, v.Color)
	}
}

func TestReadFileCube(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.stl")
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, "cube", model.NewCube()))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	m, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 12, m.TriangleCount())
	assert.Len(t, m.Vertices, 36)
	assert.NoError(t, m.Validate())
}

func TestDecodeTruncated(t *testing.T) {
	_, err := Decode(make([]byte, 10))
	assert.ErrorIs(t, err, ErrTruncated)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, "cube", model.NewCube()))
	_, err = Decode(buf.Bytes()[:buf.Len()-1])
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.stl"))
	assert.Error(t, err)
}
