package raster

import (
	"context"
	"errors"
	"fmt"

	"artifact_renderer/model"
	"artifact_renderer/shading"
)

var (
	ErrUnknownGroup = errors.New("no bind group with this index in the pipeline layout")
	ErrUnbound      = errors.New("draw issued before all bind groups were bound")
	ErrNoVertices   = errors.New("draw issued without a vertex buffer")
)

type drawCmd struct {
	camera   model.CameraUniform
	artifact model.ArtifactUniform
	vertices []model.Vertex
	indices  []uint32
}

// Pass records draws against a target. Every draw captures the bind group
// values current at the time it is recorded, rebinding a group afterwards
// only affects later draws. Nothing is rasterized before Submit.
type Pass struct {
	target *Target
	state  PipelineState
	// Workers bounds the number of concurrently shaded bands, 0 means
	// GOMAXPROCS.
	Workers int

	camera   *model.CameraUniform
	artifact *model.ArtifactUniform
	vertices []model.Vertex
	cmds     []drawCmd
}

func NewPass(target *Target, state PipelineState) (*Pass, error) {
	if err := state.Layout.Validate(); err != nil {
		return nil, err
	}
	return &Pass{target: target, state: state}, nil
}

// SetBindGroup binds the raw contents of a uniform buffer to a bind group.
// The buffer must cover the bound size of the group's binding.
func (p *Pass) SetBindGroup(group uint32, data []byte) error {
	switch group {
	case shading.CameraBinding.Group:
		u, err := model.DecodeCameraUniform(data)
		if err != nil {
			return fmt.Errorf("bind group %d: %w", group, err)
		}
		p.camera = &u
	case shading.ArtifactBinding.Group:
		u, err := model.DecodeArtifactUniform(data)
		if err != nil {
			return fmt.Errorf("bind group %d: %w", group, err)
		}
		p.artifact = &u
	default:
		return fmt.Errorf("%w: %d", ErrUnknownGroup, group)
	}
	return nil
}

func (p *Pass) BindCamera(u model.CameraUniform) error {
	return p.SetBindGroup(shading.CameraBinding.Group, u.Bytes())
}

func (p *Pass) BindArtifact(u model.ArtifactUniform) error {
	return p.SetBindGroup(shading.ArtifactBinding.Group, u.Bytes())
}

func (p *Pass) SetVertexBuffer(buf []byte) error {
	v, err := model.DecodeVertices(buf)
	if err != nil {
		return err
	}
	p.vertices = v
	return nil
}

// Draw records a non indexed draw of the first count vertices.
func (p *Pass) Draw(count int) error {
	if count > len(p.vertices) {
		return fmt.Errorf("%w: draw of %d vertices, %d bound", model.ErrIndexRange, count, len(p.vertices))
	}
	idx := make([]uint32, count)
	for i := range idx {
		idx[i] = uint32(i)
	}
	return p.DrawIndexed(idx)
}

func (p *Pass) DrawIndexed(indices []uint32) error {
	if p.camera == nil || p.artifact == nil {
		return ErrUnbound
	}
	if len(p.vertices) == 0 {
		return ErrNoVertices
	}
	m := model.Mesh{Vertices: p.vertices, Indices: indices}
	if err := m.Validate(); err != nil {
		return err
	}
	idx := make([]uint32, len(indices))
	copy(idx, indices)
	p.cmds = append(p.cmds, drawCmd{
		camera:   *p.camera,
		artifact: *p.artifact,
		vertices: p.vertices,
		indices:  idx,
	})
	return nil
}

// Submit executes the recorded draws in order and resets the recording.
// Bindings stay in place for further draws.
func (p *Pass) Submit(ctx context.Context) error {
	vp := viewport{width: float32(p.target.Width), height: float32(p.target.Height)}
	var tris []setupTriangle
	for _, cmd := range p.cmds {
		if err := ctx.Err(); err != nil {
			return err
		}
		// vertex stage runs once per vertex of the bound buffer
		shaded := make([]shading.VSOut, len(cmd.vertices))
		for i, v := range cmd.vertices {
			shaded[i] = shading.ShadeVertex(v, cmd.camera)
		}
		for i := 0; i+2 < len(cmd.indices); i += 3 {
			in := [3]shading.VSOut{
				shaded[cmd.indices[i]],
				shaded[cmd.indices[i+1]],
				shaded[cmd.indices[i+2]],
			}
			tris = p.state.assemble(tris, vp, in, cmd.artifact)
		}
	}
	p.cmds = p.cmds[:0]
	return p.state.rasterize(ctx, p.target, tris, p.Workers)
}
