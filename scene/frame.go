package scene

import (
	"context"

	"artifact_renderer/model"
	vm "artifact_renderer/vector_math"
)

// DrawCall is one draw with its own artifact binding.
type DrawCall struct {
	Name     string
	Mesh     *model.Mesh
	Artifact model.ArtifactUniform
}

// Frame holds everything a backend needs for one image: the camera binding
// shared by all draws and the draws in submission order.
type Frame struct {
	Camera     model.CameraUniform
	ClearColor vm.Vec4
	Draws      []DrawCall
}

// Backend renders frames. The camera group is bound once per frame, the
// artifact group once per draw.
type Backend interface {
	RenderFrame(ctx context.Context, f *Frame) error
}
