package model

import (
	"log"

	"github.com/xlab/linmath"

	vm "artifact_renderer/vector_math"
)

const (
	CAM_PERSPECTIVE_PROJECTION  = iota
	CAM_ORTHOGRAPHIC_PROJECTION = iota
)

// Camera produces the view projection matrix of the camera binding. World
// space is right handed with y up, the camera looks along LookDir (or at
// LookTarget when set) and clip depth runs from 0 at Near to 1 at Far.
type Camera struct {
	ProjectionType int

	Fov    float32 // vertical, degree
	Aspect float32
	Near   float32
	Far    float32
	// OrthoHeight is the visible world height for orthographic projection.
	OrthoHeight float32

	Pos        vm.Vec3
	LookDir    vm.Vec3
	LookTarget *vm.Vec3
	Up         vm.Vec3
}

func NewCamera(fov float32, near float32, far float32) *Camera {
	return &Camera{
		Fov:         fov,
		Aspect:      1,
		Near:        near,
		Far:         far,
		OrthoHeight: 2,
		LookDir:     vm.Vec3{Z: -1},
		LookTarget:  nil,
		Up:          vm.Vec3{Y: 1},
	}
}

func (c *Camera) Move(v vm.Vec3) {
	c.Pos = c.Pos.Add(v)
}

func (c *Camera) Turn(deg float32, axis vm.Vec3) {
	rm := vm.NewRotation(vm.ToRad(deg), axis)
	c.LookDir = rm.Apply(c.LookDir, 0)
}

func (c *Camera) SetTarget(v vm.Vec3) {
	c.LookTarget = &v
}

func (c *Camera) ClearTarget() {
	c.LookTarget = nil
}

func (c *Camera) SetAspect(width, height int) {
	if height == 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// Forward is the horizontal viewing direction, used for walking.
func (c *Camera) Forward() vm.Vec3 {
	d := c.viewDir()
	d.Y = 0
	return d.Norm()
}

func (c *Camera) Right() vm.Vec3 {
	return c.Forward().Cross(c.Up).Norm()
}

func (c *Camera) viewDir() vm.Vec3 {
	if c.LookTarget != nil {
		return c.LookTarget.Sub(c.Pos)
	}
	return c.LookDir
}

func (c *Camera) GetProjection() vm.Mat4 {
	var p linmath.Mat4x4
	switch c.ProjectionType {
	case CAM_PERSPECTIVE_PROJECTION:
		p.Perspective(linmath.DegreesToRadians(c.Fov), c.Aspect, c.Near, c.Far)
	case CAM_ORTHOGRAPHIC_PROJECTION:
		h := c.OrthoHeight / 2
		p.Ortho(-h*c.Aspect, h*c.Aspect, -h, h, c.Near, c.Far)
	default:
		log.Printf("Failed to select projection type, returning identity.")
		return vm.Identity()
	}
	return vm.DepthZeroToOne().Mult(vm.FromLinmath(&p))
}

func (c *Camera) GetView() vm.Mat4 {
	if c.LookTarget != nil {
		return NewTargetView(c.Pos, *c.LookTarget, c.Up)
	}
	return NewDirectionView(c.Pos, c.LookDir, c.Up)
}

// ViewProj is projection * view, the matrix uploaded to the camera binding.
func (c *Camera) ViewProj() vm.Mat4 {
	return c.GetProjection().Mult(c.GetView())
}

func (c *Camera) Uniform() CameraUniform {
	return NewCameraUniform(c.ViewProj())
}

func NewDirectionView(pos vm.Vec3, dir vm.Vec3, up vm.Vec3) vm.Mat4 {
	return NewTargetView(pos, pos.Add(dir), up)
}

func NewTargetView(pos vm.Vec3, target vm.Vec3, up vm.Vec3) vm.Mat4 {
	if target.Sub(pos).Len() == 0 {
		log.Printf("Failed to calculate view direction, target - position = [0,0,0]. Looking along -z.")
		target = pos.Add(vm.Vec3{Z: -1})
	}
	eye := toLinmath(pos)
	center := toLinmath(target)
	u := toLinmath(up)
	var m linmath.Mat4x4
	m.LookAt(&eye, &center, &u)
	return vm.FromLinmath(&m)
}

func toLinmath(v vm.Vec3) linmath.Vec3 {
	return linmath.Vec3{v.X, v.Y, v.Z}
}
