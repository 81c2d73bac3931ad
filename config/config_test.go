package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sceneYaml = `
backend: software
output: frame.png
window:
  title: beacon
  width: 320
  height: 240
camera:
  fov: 45
  position: [0, 2, 6]
  target: [0, 0, 0]
artifacts:
  - name: floor
    shape: floor
    intensity: 1
  - name: ring
    shape: ring
    beacon:
      rate: 5
  - name: model
    shape: stl
    path: model.stl
    offset: [1, 0, 0]
`

func TestParse(t *testing.T) {
	c, err := Parse(strings.NewReader(sceneYaml))
	require.NoError(t, err)

	assert.Equal(t, BackendSoftware, c.Backend)
	assert.Equal(t, 320, c.Window.Width)
	assert.Equal(t, float32(45), c.Camera.Fov)
	assert.Equal(t, float32(0.1), c.Camera.Near, "default near plane")
	assert.Equal(t, float32(100), c.Camera.Far, "default far plane")
	require.NotNil(t, c.Camera.Target)
	assert.Equal(t, [3]float32{0, 2, 6}, c.Camera.Position)
	assert.Equal(t, []float32{0.1, 0.1, 0.1, 1}, c.ClearColor)

	require.Len(t, c.Artifacts, 3)
	floor := c.Artifacts[0]
	assert.Equal(t, float32(20), floor.Size)
	require.NotNil(t, floor.Intensity)
	assert.Equal(t, float32(1), *floor.Intensity)

	ring := c.Artifacts[1]
	assert.Equal(t, 28, ring.Count)
	assert.Equal(t, float32(3), ring.Radius)
	require.NotNil(t, ring.Beacon)
	assert.Equal(t, float32(5), *ring.Beacon.Rate)
	assert.Equal(t, float32(0.2), *ring.Beacon.Base)
	assert.Equal(t, float32(0.8), *ring.Beacon.Amplitude)
	assert.Equal(t, float32(3), *ring.Beacon.Radius)

	assert.Equal(t, [3]float32{1, 0, 0}, c.Artifacts[2].Offset)
}

func TestParseKeepsExplicitZeroBeacon(t *testing.T) {
	src := "artifacts:\n  - name: ring\n    shape: ring\n    beacon:\n      base: 0\n      amplitude: 0\n"
	c, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	b := c.Artifacts[0].Beacon
	require.NotNil(t, b)
	assert.Equal(t, float32(0), *b.Base)
	assert.Equal(t, float32(0), *b.Amplitude)
	assert.Equal(t, float32(3), *b.Rate, "unset fields still get defaults")
}

func TestParseEmpty(t *testing.T) {
	c, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, BackendSoftware, c.Backend)
	assert.Equal(t, 800, c.Window.Width)
	assert.Empty(t, c.Artifacts)
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"backend":    "backend: opengl\n",
		"projection": "camera:\n  projection: fisheye\n",
		"planes":     "camera:\n  near: 5\n  far: 1\n",
		"clear":      "clearColor: [1, 1]\n",
		"cull":       "cull: sideways\n",
		"shape":      "artifacts:\n  - name: x\n    shape: sphere\n",
		"stl path":   "artifacts:\n  - name: x\n    shape: stl\n",
		"no name":    "artifacts:\n  - shape: cube\n",
		"duplicate":  "artifacts:\n  - name: x\n    shape: cube\n  - name: x\n    shape: cube\n",
	}
	for name, src := range cases {
		_, err := Parse(strings.NewReader(src))
		assert.ErrorIs(t, err, ErrInvalid, name)
	}

	_, err := Parse(strings.NewReader("unknownKey: 1\n"))
	assert.Error(t, err)
}

func TestWriteLoadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Default()))

	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
