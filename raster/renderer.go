package raster

import (
	"context"

	"artifact_renderer/model"
	"artifact_renderer/scene"
)

// Renderer draws scene frames with the software pipeline.
type Renderer struct {
	Target *Target
	State  PipelineState
	// Workers is handed to every pass, see Pass.Workers.
	Workers int

	vertexBuffers map[string]cachedVertices
}

// cachedVertices is the encoded vertex buffer of the mesh last drawn under a
// name.
type cachedVertices struct {
	src *model.Mesh
	buf []byte
}

func NewRenderer(width, height int) (*Renderer, error) {
	t, err := NewTarget(width, height)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		Target:        t,
		State:         DefaultPipelineState(),
		vertexBuffers: map[string]cachedVertices{},
	}, nil
}

// Resize replaces the target when the size changed.
func (r *Renderer) Resize(width, height int) error {
	if r.Target.Width == width && r.Target.Height == height {
		return nil
	}
	t, err := NewTarget(width, height)
	if err != nil {
		return err
	}
	r.Target = t
	return nil
}

// RenderFrame clears the target, binds the camera once and then rebinds the
// artifact group before each draw. Draws without triangles are skipped.
func (r *Renderer) RenderFrame(ctx context.Context, f *scene.Frame) error {
	r.Target.Clear(f.ClearColor, 1)
	pass, err := NewPass(r.Target, r.State)
	if err != nil {
		return err
	}
	pass.Workers = r.Workers
	if err := pass.BindCamera(f.Camera); err != nil {
		return err
	}
	for _, d := range f.Draws {
		if d.Mesh == nil || len(d.Mesh.Vertices) == 0 || len(d.Mesh.Indices) == 0 {
			continue
		}
		if err := pass.BindArtifact(d.Artifact); err != nil {
			return err
		}
		if err := pass.SetVertexBuffer(r.vertexBuffer(d.Name, d.Mesh)); err != nil {
			return err
		}
		if err := pass.DrawIndexed(d.Mesh.Indices); err != nil {
			return err
		}
	}
	r.pruneVertexBuffers(f)
	return pass.Submit(ctx)
}

// vertexBuffer returns the encoded vertices of the mesh drawn under name,
// encoding again when a different mesh shows up under that name.
func (r *Renderer) vertexBuffer(name string, m *model.Mesh) []byte {
	if c, ok := r.vertexBuffers[name]; ok && c.src == m {
		return c.buf
	}
	buf := m.VertexBytes()
	r.vertexBuffers[name] = cachedVertices{src: m, buf: buf}
	return buf
}

// pruneVertexBuffers drops the buffers of names not drawn in f.
func (r *Renderer) pruneVertexBuffers(f *scene.Frame) {
	drawn := make(map[string]bool, len(f.Draws))
	for _, d := range f.Draws {
		drawn[d.Name] = true
	}
	for name := range r.vertexBuffers {
		if !drawn[name] {
			delete(r.vertexBuffers, name)
		}
	}
}
