// Package shading holds the two programmable stages of the unlit pipeline
// and the layout contract both stages are compiled against.
package shading

import (
	"artifact_renderer/model"
	vm "artifact_renderer/vector_math"
)

const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// VSOut is what the vertex stage hands to the rasterizer.
type VSOut struct {
	// Position is in clip space, the rasterizer divides by W.
	Position vm.Vec4
	// Color is interpolated across the triangle.
	Color vm.Vec3
}

// Varyings is the interpolated fragment stage input.
type Varyings struct {
	Color vm.Vec3
}

// ShadeVertex transforms a vertex by the camera matrix and passes its color on.
func ShadeVertex(v model.Vertex, cam model.CameraUniform) VSOut {
	return VSOut{
		Position: cam.ViewProj.MulVec4(v.Pos.Extend(1)),
		Color:    v.Color,
	}
}

// ShadeFragment scales the interpolated color by the artifact intensity. The
// result is not clamped, alpha is always 1.
func ShadeFragment(in Varyings, art model.ArtifactUniform) vm.Vec4 {
	return in.Color.ScalarMul(art.Intensity).Extend(1)
}
