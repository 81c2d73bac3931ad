// Package raster is a software implementation of the unlit pipeline: it runs
// the shading stages on the CPU and rasterizes into a float color target.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/chewxy/math32"

	vm "artifact_renderer/vector_math"
)

var ErrTargetSize = errors.New("render target needs a positive size")

// ClearColor is the background of a freshly cleared target.
var ClearColor = vm.Vec4{X: 0.1, Y: 0.1, Z: 0.1, W: 1}

// Target is a color attachment of unclamped float RGBA values plus a depth
// attachment. Row 0 is the top of the image.
type Target struct {
	Width  int
	Height int

	color []vm.Vec4
	depth []float32
}

func NewTarget(width, height int) (*Target, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrTargetSize, width, height)
	}
	t := &Target{
		Width:  width,
		Height: height,
		color:  make([]vm.Vec4, width*height),
		depth:  make([]float32, width*height),
	}
	t.Clear(ClearColor, 1)
	return t, nil
}

func (t *Target) Clear(c vm.Vec4, depth float32) {
	for i := range t.color {
		t.color[i] = c
		t.depth[i] = depth
	}
}

func (t *Target) At(x, y int) vm.Vec4 {
	return t.color[y*t.Width+x]
}

func (t *Target) DepthAt(x, y int) float32 {
	return t.depth[y*t.Width+x]
}

// Image converts the target for display, clamping every channel to [0, 1].
func (t *Target) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.Width, t.Height))
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			c := t.At(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: toByte(c.X),
				G: toByte(c.Y),
				B: toByte(c.Z),
				A: toByte(c.W),
			})
		}
	}
	return img
}

// RGBA8 returns the display converted pixels, tightly packed row by row.
func (t *Target) RGBA8() []byte {
	return t.Image().Pix
}

func (t *Target) WritePNG(w io.Writer) error {
	return png.Encode(w, t.Image())
}

// SavePNG writes the target to a png file. A failing close is reported, it
// may be the write that did not make it to disk.
func (t *Target) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.WritePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func toByte(f float32) uint8 {
	f = math32.Max(0, math32.Min(1, f))
	return uint8(f*255 + 0.5)
}

// FrameDiff returns the fraction of bytes that differ between two frames of
// the same size.
func FrameDiff(a, b []byte) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("frame sizes differ: %d != %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}
	diff := 0
	for i := range a {
		if a[i] != b[i] {
			diff++
		}
	}
	return float64(diff) / float64(len(a)), nil
}
