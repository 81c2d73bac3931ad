package model

import (
	"errors"
	"fmt"

	vm "artifact_renderer/vector_math"
)

const (
	// CameraUniformSize is one 4x4 float32 matrix.
	CameraUniformSize = 64
	// ArtifactUniformSize is the bound size of the artifact block. Only the
	// first 4 bytes carry data, uniform blocks are padded to 16 bytes.
	ArtifactUniformSize   = 16
	ArtifactIntensitySize = 4
)

var (
	ErrCameraSize   = errors.New("camera uniform must be exactly 64 bytes")
	ErrArtifactSize = errors.New("artifact uniform must be at least 16 bytes")
)

// CameraUniform is the per frame binding: the combined view projection matrix
// taking world space positions into clip space.
type CameraUniform struct {
	ViewProj vm.Mat4
}

func NewCameraUniform(viewProj vm.Mat4) CameraUniform {
	return CameraUniform{ViewProj: viewProj}
}

// Bytes returns the matrix column by column as little endian float32.
func (u CameraUniform) Bytes() []byte {
	buf := make([]byte, CameraUniformSize)
	for i, f := range u.ViewProj.Unroll() {
		putFloat32(buf[i*4:], f)
	}
	return buf
}

func DecodeCameraUniform(buf []byte) (CameraUniform, error) {
	if len(buf) != CameraUniformSize {
		return CameraUniform{}, fmt.Errorf("%w: got %d", ErrCameraSize, len(buf))
	}
	var m vm.Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			m[c][r] = readFloat32(buf[(c*4+r)*4:])
		}
	}
	return CameraUniform{ViewProj: m}, nil
}

// ArtifactUniform is the per draw binding. Intensity scales the color of
// every fragment of the draw and is never clamped.
type ArtifactUniform struct {
	Intensity float32
}

func NewArtifactUniform(intensity float32) ArtifactUniform {
	return ArtifactUniform{Intensity: intensity}
}

func (u ArtifactUniform) Bytes() []byte {
	buf := make([]byte, ArtifactUniformSize)
	putFloat32(buf, u.Intensity)
	return buf
}

// DecodeArtifactUniform reads the intensity from a bound block. Bytes past
// the intensity are padding and ignored.
func DecodeArtifactUniform(buf []byte) (ArtifactUniform, error) {
	if len(buf) < ArtifactUniformSize {
		return ArtifactUniform{}, fmt.Errorf("%w: got %d", ErrArtifactSize, len(buf))
	}
	return ArtifactUniform{Intensity: readFloat32(buf)}, nil
}
