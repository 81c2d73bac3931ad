package scene

import (
	"fmt"

	"artifact_renderer/config"
	"artifact_renderer/model"
	"artifact_renderer/stl"
	vm "artifact_renderer/vector_math"
)

// FromConfig builds the camera and artifacts described by c.
func FromConfig(c config.Config) (*Scene, error) {
	cam := model.NewCamera(c.Camera.Fov, c.Camera.Near, c.Camera.Far)
	if c.Camera.Projection == "orthographic" {
		cam.ProjectionType = model.CAM_ORTHOGRAPHIC_PROJECTION
	}
	cam.SetAspect(c.Window.Width, c.Window.Height)
	cam.Pos = toVec3(c.Camera.Position)
	if c.Camera.Target != nil {
		cam.SetTarget(toVec3(*c.Camera.Target))
	}

	s := New(cam)
	s.ClearColor = vm.Vec4{X: c.ClearColor[0], Y: c.ClearColor[1], Z: c.ClearColor[2], W: c.ClearColor[3]}
	for _, ac := range c.Artifacts {
		a, err := buildArtifact(ac)
		if err != nil {
			return nil, err
		}
		if err := s.Add(a); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func buildArtifact(ac config.ArtifactConfig) (*Artifact, error) {
	var mesh *model.Mesh
	color := model.White
	if ac.Color != nil {
		color = toVec3(*ac.Color)
	}
	switch ac.Shape {
	case config.ShapeCube:
		if ac.Color != nil {
			mesh = model.NewSolidCube(color)
		} else {
			mesh = model.NewCube()
		}
	case config.ShapeFloor:
		mesh = model.NewFloor(ac.Size, color)
	case config.ShapeRing:
		mesh = model.NewArtifactRing(ac.Count, ac.Radius)
	case config.ShapeTriangle:
		mesh = model.NewTriangle(color)
	case config.ShapeSTL:
		m, err := stl.ReadFile(ac.Path)
		if err != nil {
			return nil, fmt.Errorf("artifact %s: %w", ac.Name, err)
		}
		mesh = m
	default:
		return nil, fmt.Errorf("artifact %s: unknown shape %q", ac.Name, ac.Shape)
	}
	offset := toVec3(ac.Offset)
	if offset != (vm.Vec3{}) {
		mesh = mesh.Transformed(vm.NewTranslation(offset))
	}

	a := &Artifact{Name: ac.Name, Mesh: mesh, Intensity: 1}
	if ac.Intensity != nil {
		a.Intensity = *ac.Intensity
	}
	if ac.Beacon != nil {
		b := NewBeacon(offset)
		setIf(&b.Radius, ac.Beacon.Radius)
		setIf(&b.Base, ac.Beacon.Base)
		setIf(&b.Amplitude, ac.Beacon.Amplitude)
		setIf(&b.Rate, ac.Beacon.Rate)
		a.Beacon = b
		a.Intensity = b.Base
	}
	return a, nil
}

func setIf(dst *float32, v *float32) {
	if v != nil {
		*dst = *v
	}
}

func toVec3(v [3]float32) vm.Vec3 {
	return vm.Vec3{X: v[0], Y: v[1], Z: v[2]}
}
