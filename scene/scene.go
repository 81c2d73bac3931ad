// Package scene drives the pipeline: it owns the camera and the artifacts
// and turns them into frames for a backend.
package scene

import (
	"context"
	"errors"
	"fmt"

	"artifact_renderer/model"
	vm "artifact_renderer/vector_math"
)

var ErrDuplicateArtifact = errors.New("artifact name already in scene")

type Artifact struct {
	Name      string
	Mesh      *model.Mesh
	Intensity float32
	// Beacon, when set, overrides Intensity on every update.
	Beacon *Beacon
	Hidden bool
}

type Scene struct {
	Camera     *model.Camera
	ClearColor vm.Vec4
	Artifacts  []*Artifact
}

func New(cam *model.Camera) *Scene {
	return &Scene{
		Camera:     cam,
		ClearColor: vm.Vec4{X: 0.1, Y: 0.1, Z: 0.1, W: 1},
	}
}

// Add appends an artifact. Artifacts are drawn in the order they were added.
func (s *Scene) Add(a *Artifact) error {
	if s.Find(a.Name) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateArtifact, a.Name)
	}
	if err := a.Mesh.Validate(); err != nil {
		return fmt.Errorf("artifact %s: %w", a.Name, err)
	}
	s.Artifacts = append(s.Artifacts, a)
	return nil
}

func (s *Scene) Find(name string) *Artifact {
	for _, a := range s.Artifacts {
		if a.Name == name {
			return a
		}
	}
	return nil
}

func (s *Scene) Remove(name string) bool {
	for i, a := range s.Artifacts {
		if a.Name == name {
			s.Artifacts = append(s.Artifacts[:i], s.Artifacts[i+1:]...)
			return true
		}
	}
	return false
}

// Update advances all beacons by dt seconds.
func (s *Scene) Update(dt float32) {
	for _, a := range s.Artifacts {
		if a.Beacon != nil {
			a.Intensity = a.Beacon.Update(dt, s.Camera.Pos)
		}
	}
}

// Frame snapshots the scene. The camera matrix is computed once for all draws.
func (s *Scene) Frame() *Frame {
	f := &Frame{
		Camera:     s.Camera.Uniform(),
		ClearColor: s.ClearColor,
		Draws:      make([]DrawCall, 0, len(s.Artifacts)),
	}
	for _, a := range s.Artifacts {
		if a.Hidden {
			continue
		}
		f.Draws = append(f.Draws, DrawCall{
			Name:     a.Name,
			Mesh:     a.Mesh,
			Artifact: model.NewArtifactUniform(a.Intensity),
		})
	}
	return f
}

// Render updates the scene and hands the resulting frame to b.
func (s *Scene) Render(ctx context.Context, b Backend, dt float32) error {
	s.Update(dt)
	return b.RenderFrame(ctx, s.Frame())
}
