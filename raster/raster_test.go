package raster

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artifact_renderer/config"
	"artifact_renderer/model"
	"artifact_renderer/scene"
	"artifact_renderer/shading"
	vm "artifact_renderer/vector_math"
)

func newPass(t *testing.T, w, h int) (*Target, *Pass) {
	t.Helper()
	target, err := NewTarget(w, h)
	require.NoError(t, err)
	pass, err := NewPass(target, DefaultPipelineState())
	require.NoError(t, err)
	return target, pass
}

func drawMesh(t *testing.T, p *Pass, m *model.Mesh, intensity float32) {
	t.Helper()
	require.NoError(t, p.BindArtifact(model.NewArtifactUniform(intensity)))
	require.NoError(t, p.SetVertexBuffer(m.VertexBytes()))
	require.NoError(t, p.DrawIndexed(m.Indices))
}

// coveredPixels returns every pixel a draw wrote depth to.
func coveredPixels(target *Target) [][2]int {
	var res [][2]int
	for y := 0; y < target.Height; y++ {
		for x := 0; x < target.Width; x++ {
			if target.DepthAt(x, y) < 1 {
				res = append(res, [2]int{x, y})
			}
		}
	}
	return res
}

func TestTriangleHalfIntensity(t *testing.T) {
	target, pass := newPass(t, 64, 64)
	require.NoError(t, pass.BindCamera(model.NewCameraUniform(vm.Identity())))
	drawMesh(t, pass, model.NewTriangle(model.White), 0.5)
	require.NoError(t, pass.Submit(context.Background()))

	covered := coveredPixels(target)
	require.NotEmpty(t, covered)
	want := vm.Vec4{X: 0.5, Y: 0.5, Z: 0.5, W: 1}
	for _, p := range covered {
		assert.Equal(t, want, target.At(p[0], p[1]), "pixel %v", p)
	}
	// inside: ndc (0.27, 0.36)
	assert.Equal(t, want, target.At(40, 20))
	// outside: left of x = 0 and beyond the hypotenuse
	assert.Equal(t, ClearColor, target.At(10, 10))
	assert.Equal(t, ClearColor, target.At(60, 5))
}

func TestTriangleZeroIntensity(t *testing.T) {
	target, pass := newPass(t, 32, 32)
	require.NoError(t, pass.BindCamera(model.NewCameraUniform(vm.Identity())))
	drawMesh(t, pass, model.NewTriangle(vm.Vec3{X: 0.9, Y: 0.6, Z: 0.3}), 0)
	require.NoError(t, pass.Submit(context.Background()))

	covered := coveredPixels(target)
	require.NotEmpty(t, covered)
	for _, p := range covered {
		assert.Equal(t, vm.Vec4{W: 1}, target.At(p[0], p[1]))
	}
}

func TestTwoDrawsScaleIndependently(t *testing.T) {
	target, pass := newPass(t, 64, 64)
	require.NoError(t, pass.BindCamera(model.NewCameraUniform(vm.Identity())))

	color := vm.Vec3{X: 0.2, Y: 0.4, Z: 0.3}
	left := model.NewTriangle(color).Transformed(vm.NewTranslation(vm.Vec3{X: -1}))
	right := model.NewTriangle(color)
	drawMesh(t, pass, left, 1)
	drawMesh(t, pass, right, 2)
	require.NoError(t, pass.Submit(context.Background()))

	checked := 0
	for _, p := range coveredPixels(target) {
		if p[0] >= 32 {
			continue
		}
		a := target.At(p[0], p[1])
		b := target.At(p[0]+32, p[1])
		require.Less(t, target.DepthAt(p[0]+32, p[1]), float32(1), "pixel %v has no partner", p)
		assert.Equal(t, 2*a.X, b.X)
		assert.Equal(t, 2*a.Y, b.Y)
		assert.Equal(t, 2*a.Z, b.Z)
		assert.Equal(t, float32(1), a.W)
		assert.Equal(t, float32(1), b.W)
		checked++
	}
	assert.Greater(t, checked, 0)
}

func TestDrawCapturesBindingsAtRecordTime(t *testing.T) {
	target, pass := newPass(t, 16, 16)
	require.NoError(t, pass.BindCamera(model.NewCameraUniform(vm.Identity())))
	drawMesh(t, pass, model.NewTriangle(model.White), 1)
	// rebinding after the draw was recorded must not change it
	require.NoError(t, pass.BindArtifact(model.NewArtifactUniform(0.25)))
	require.NoError(t, pass.BindCamera(model.NewCameraUniform(vm.NewTranslation(vm.Vec3{X: -5}))))
	require.NoError(t, pass.Submit(context.Background()))

	assert.Equal(t, vm.Vec4{X: 1, Y: 1, Z: 1, W: 1}, target.At(10, 5))
}

func TestCameraRebindKeepsArtifact(t *testing.T) {
	target, pass := newPass(t, 16, 16)
	require.NoError(t, pass.BindCamera(model.NewCameraUniform(vm.NewTranslation(vm.Vec3{X: -5}))))
	require.NoError(t, pass.BindArtifact(model.NewArtifactUniform(0.5)))
	require.NoError(t, pass.BindCamera(model.NewCameraUniform(vm.Identity())))
	require.NoError(t, pass.SetVertexBuffer(model.NewTriangle(model.White).VertexBytes()))
	require.NoError(t, pass.Draw(3))
	require.NoError(t, pass.Submit(context.Background()))

	assert.Equal(t, vm.Vec4{X: 0.5, Y: 0.5, Z: 0.5, W: 1}, target.At(10, 5))
}

func TestDepthTest(t *testing.T) {
	target, pass := newPass(t, 32, 32)
	require.NoError(t, pass.BindCamera(model.NewCameraUniform(vm.Identity())))
	near := model.NewTriangle(model.Red).Transformed(vm.NewTranslation(vm.Vec3{Z: 0.2}))
	far := model.NewTriangle(model.Green).Transformed(vm.NewTranslation(vm.Vec3{Z: 0.5}))
	drawMesh(t, pass, near, 1)
	drawMesh(t, pass, far, 1)
	require.NoError(t, pass.Submit(context.Background()))

	assert.Equal(t, vm.Vec4{X: 1, W: 1}, target.At(20, 10))
	assert.InDelta(t, 0.2, target.DepthAt(20, 10), 1e-6)
}

func TestBackFaceCulling(t *testing.T) {
	cw := model.NewMesh(model.NewTriangle(model.White).Vertices, []uint32{0, 2, 1})

	target, pass := newPass(t, 16, 16)
	require.NoError(t, pass.BindCamera(model.NewCameraUniform(vm.Identity())))
	drawMesh(t, pass, cw, 1)
	require.NoError(t, pass.Submit(context.Background()))
	assert.Empty(t, coveredPixels(target))

	state := DefaultPipelineState()
	state.Cull = CullNone
	pass, err := NewPass(target, state)
	require.NoError(t, err)
	require.NoError(t, pass.BindCamera(model.NewCameraUniform(vm.Identity())))
	drawMesh(t, pass, cw, 1)
	require.NoError(t, pass.Submit(context.Background()))
	assert.NotEmpty(t, coveredPixels(target))

	state.Cull = CullFront
	target.Clear(ClearColor, 1)
	pass, err = NewPass(target, state)
	require.NoError(t, err)
	require.NoError(t, pass.BindCamera(model.NewCameraUniform(vm.Identity())))
	drawMesh(t, pass, model.NewTriangle(model.White), 1)
	require.NoError(t, pass.Submit(context.Background()))
	assert.Empty(t, coveredPixels(target))
}

func TestNearPlaneClipping(t *testing.T) {
	target, pass := newPass(t, 32, 32)
	require.NoError(t, pass.BindCamera(model.NewCameraUniform(vm.Identity())))
	m := model.NewMesh([]model.Vertex{
		{Pos: vm.Vec3{Z: -0.5}, Color: model.White},
		{Pos: vm.Vec3{X: 1, Z: 0.5}, Color: model.White},
		{Pos: vm.Vec3{Y: 1, Z: 0.5}, Color: model.White},
	}, []uint32{0, 1, 2})
	drawMesh(t, pass, m, 1)
	require.NoError(t, pass.Submit(context.Background()))

	covered := coveredPixels(target)
	require.NotEmpty(t, covered)
	for _, p := range covered {
		assert.GreaterOrEqual(t, target.DepthAt(p[0], p[1]), float32(0))
	}
	// the corner behind the near plane is cut away
	assert.Equal(t, ClearColor, target.At(16, 15))
}

func TestPerspectiveCamera(t *testing.T) {
	cam := model.NewCamera(60, 0.1, 100)
	cam.Pos = vm.Vec3{Y: 0.5, Z: 3}
	cam.SetTarget(vm.Vec3{Y: 0.5})
	target, pass := newPass(t, 48, 48)
	require.NoError(t, pass.BindCamera(cam.Uniform()))
	drawMesh(t, pass, model.NewCube(), 1)
	require.NoError(t, pass.Submit(context.Background()))

	// looking straight at the front face
	c := target.At(24, 24)
	assert.NotEqual(t, ClearColor, c)
	assert.Equal(t, float32(1), c.W)
	assert.Equal(t, ClearColor, target.At(0, 0))
}

func TestSharedEdgeCoveredOnce(t *testing.T) {
	vp := viewport{width: 20, height: 20}
	state := DefaultPipelineState()
	quad := []shading.VSOut{
		{Position: vm.Vec4{X: -0.7, Y: -0.6, W: 1}},
		{Position: vm.Vec4{X: 0.8, Y: -0.7, W: 1}},
		{Position: vm.Vec4{X: 0.6, Y: 0.9, W: 1}},
		{Position: vm.Vec4{X: -0.8, Y: 0.5, W: 1}},
	}
	var tris []setupTriangle
	tris = state.assemble(tris, vp, [3]shading.VSOut{quad[0], quad[1], quad[2]}, model.ArtifactUniform{})
	tris = state.assemble(tris, vp, [3]shading.VSOut{quad[0], quad[2], quad[3]}, model.ArtifactUniform{})
	require.Len(t, tris, 2)

	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			p := vm.Vec2{X: float32(x) + 0.5, Y: float32(y) + 0.5}
			n := 0
			for _, tri := range tris {
				a, b, c := tri.v[0].pos, tri.v[1].pos, tri.v[2].pos
				if covered(vm.EdgeFunction(b, c, p), tri.owns[0]) &&
					covered(vm.EdgeFunction(c, a, p), tri.owns[1]) &&
					covered(vm.EdgeFunction(a, b, p), tri.owns[2]) {
					n++
				}
			}
			assert.LessOrEqual(t, n, 1, "pixel %d,%d covered twice", x, y)
		}
	}
}

func TestTopLeftFillRule(t *testing.T) {
	// On a 4x4 target ndc ±0.75 lands exactly on pixel centers.
	cases := []struct {
		name     string
		tri      [3]vm.Vec3
		covered  [][2]int
		excluded [][2]int
	}{
		{
			name:     "top edge",
			tri:      [3]vm.Vec3{{X: -0.75, Y: 0.75}, {X: 0, Y: -1}, {X: 0.75, Y: 0.75}},
			covered:  [][2]int{{1, 0}, {2, 0}},
			excluded: nil,
		},
		{
			name:     "bottom edge",
			tri:      [3]vm.Vec3{{X: -0.75, Y: -0.75}, {X: 0.75, Y: -0.75}, {X: 0, Y: 1}},
			covered:  [][2]int{{1, 2}},
			excluded: [][2]int{{1, 3}, {2, 3}},
		},
		{
			name:     "left edge",
			tri:      [3]vm.Vec3{{X: -0.75, Y: 0.75}, {X: -0.75, Y: -0.75}, {X: 0.75, Y: 0}},
			covered:  [][2]int{{0, 1}, {0, 2}},
			excluded: nil,
		},
		{
			name:     "right edge",
			tri:      [3]vm.Vec3{{X: 0.75, Y: 0.75}, {X: -0.75, Y: 0}, {X: 0.75, Y: -0.75}},
			covered:  [][2]int{{2, 1}},
			excluded: [][2]int{{3, 1}, {3, 2}},
		},
	}
	for _, c := range cases {
		target, pass := newPass(t, 4, 4)
		require.NoError(t, pass.BindCamera(model.NewCameraUniform(vm.Identity())))
		require.NoError(t, pass.BindArtifact(model.NewArtifactUniform(1)))
		verts := make([]model.Vertex, 3)
		for i, p := range c.tri {
			verts[i] = model.Vertex{Pos: p, Color: model.White}
		}
		require.NoError(t, pass.SetVertexBuffer(model.EncodeVertices(verts)))
		require.NoError(t, pass.Draw(3))
		require.NoError(t, pass.Submit(context.Background()))

		for _, px := range c.covered {
			assert.Equal(t, vm.Vec4{X: 1, Y: 1, Z: 1, W: 1}, target.At(px[0], px[1]), "%s: pixel %v", c.name, px)
		}
		for _, px := range c.excluded {
			assert.Equal(t, ClearColor, target.At(px[0], px[1]), "%s: pixel %v", c.name, px)
		}
	}
}

func TestPassErrors(t *testing.T) {
	_, pass := newPass(t, 8, 8)
	tri := model.NewTriangle(model.White)

	assert.ErrorIs(t, pass.DrawIndexed([]uint32{0, 1, 2}), ErrUnbound)
	assert.ErrorIs(t, pass.SetBindGroup(0, make([]byte, 32)), model.ErrCameraSize)
	assert.ErrorIs(t, pass.SetBindGroup(1, make([]byte, 4)), model.ErrArtifactSize)
	assert.ErrorIs(t, pass.SetBindGroup(2, make([]byte, 16)), ErrUnknownGroup)
	assert.ErrorIs(t, pass.SetVertexBuffer(make([]byte, 25)), model.ErrVertexStride)

	require.NoError(t, pass.BindCamera(model.NewCameraUniform(vm.Identity())))
	require.NoError(t, pass.BindArtifact(model.NewArtifactUniform(1)))
	assert.ErrorIs(t, pass.DrawIndexed([]uint32{0, 1, 2}), ErrNoVertices)

	require.NoError(t, pass.SetVertexBuffer(tri.VertexBytes()))
	assert.ErrorIs(t, pass.DrawIndexed([]uint32{0, 1, 3}), model.ErrIndexRange)
	assert.ErrorIs(t, pass.DrawIndexed([]uint32{0, 1}), model.ErrIndexCount)
	assert.ErrorIs(t, pass.Draw(4), model.ErrIndexRange)

	_, err := NewTarget(0, 10)
	assert.ErrorIs(t, err, ErrTargetSize)

	bad := DefaultPipelineState()
	bad.Layout.Bindings = []shading.UniformBinding{shading.CameraBinding, shading.CameraBinding}
	_, err = NewPass(&Target{}, bad)
	assert.ErrorIs(t, err, shading.ErrInvalidLayout)
}

func TestSubmitCanceled(t *testing.T) {
	_, pass := newPass(t, 8, 8)
	require.NoError(t, pass.BindCamera(model.NewCameraUniform(vm.Identity())))
	drawMesh(t, pass, model.NewTriangle(model.White), 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pass.Submit(ctx), context.Canceled)
}

func TestImageClampsForDisplay(t *testing.T) {
	target, pass := newPass(t, 16, 16)
	require.NoError(t, pass.BindCamera(model.NewCameraUniform(vm.Identity())))
	drawMesh(t, pass, model.NewTriangle(vm.Vec3{X: 0.8, Y: 0.4}), 2)
	require.NoError(t, pass.Submit(context.Background()))

	// the float target keeps the overbright value
	assert.InDelta(t, 1.6, target.At(10, 5).X, 1e-6)

	img := target.Image()
	c := img.RGBAAt(10, 5)
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(204), c.G)
	assert.Equal(t, uint8(0), c.B)
	assert.Equal(t, uint8(255), c.A)

	var buf bytes.Buffer
	require.NoError(t, target.WritePNG(&buf))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}

func TestRendererFrameStability(t *testing.T) {
	s, err := scene.FromConfig(config.Default())
	require.NoError(t, err)
	s.Camera.SetAspect(96, 72)

	render := func(workers int) []byte {
		r, err := NewRenderer(96, 72)
		require.NoError(t, err)
		r.Workers = workers
		require.NoError(t, s.Render(context.Background(), r, 0))
		return r.Target.RGBA8()
	}
	serial := render(1)
	parallel := render(8)
	diff, err := FrameDiff(serial, parallel)
	require.NoError(t, err)
	assert.Zero(t, diff)

	// the floor fills the lower half of the view
	r, err := NewRenderer(96, 72)
	require.NoError(t, err)
	require.NoError(t, r.RenderFrame(context.Background(), s.Frame()))
	floor := r.Target.At(48, 70)
	assert.InDelta(t, 0.3, floor.X, 1e-5)
	assert.Equal(t, scene.New(s.Camera).ClearColor, r.Target.At(48, 0))

	require.NoError(t, r.Resize(32, 24))
	assert.Equal(t, 32, r.Target.Width)
	_, err = FrameDiff(serial, r.Target.RGBA8())
	assert.Error(t, err)
}

func TestParseCullMode(t *testing.T) {
	for s, want := range map[string]CullMode{"none": CullNone, "back": CullBack, "": CullBack, "front": CullFront} {
		got, err := ParseCullMode(s)
		require.NoError(t, err)
		assert.Equal(t, want, got, s)
	}
	_, err := ParseCullMode("both")
	assert.Error(t, err)
}

func TestRendererSkipsEmptyDraws(t *testing.T) {
	r, err := NewRenderer(8, 8)
	require.NoError(t, err)
	f := &scene.Frame{
		Camera:     model.NewCameraUniform(vm.Identity()),
		ClearColor: vm.Vec4{W: 1},
		Draws: []scene.DrawCall{
			{Name: "nil"},
			{Name: "empty", Mesh: model.NewMesh(nil, nil), Artifact: model.NewArtifactUniform(1)},
		},
	}
	require.NoError(t, r.RenderFrame(context.Background(), f))
	assert.Equal(t, vm.Vec4{W: 1}, r.Target.At(4, 4))
}

func TestRendererVertexBufferCache(t *testing.T) {
	r, err := NewRenderer(8, 8)
	require.NoError(t, err)
	cube, tri := model.NewCube(), model.NewTriangle(model.White)
	frame := func(draws ...scene.DrawCall) *scene.Frame {
		return &scene.Frame{Camera: model.NewCameraUniform(vm.Identity()), Draws: draws}
	}
	ctx := context.Background()

	require.NoError(t, r.RenderFrame(ctx, frame(
		scene.DrawCall{Name: "a", Mesh: cube, Artifact: model.NewArtifactUniform(1)},
		scene.DrawCall{Name: "b", Mesh: tri, Artifact: model.NewArtifactUniform(1)},
	)))
	assert.Len(t, r.vertexBuffers, 2)

	// b removed from the scene, a rebuilt with a new mesh
	require.NoError(t, r.RenderFrame(ctx, frame(
		scene.DrawCall{Name: "a", Mesh: tri, Artifact: model.NewArtifactUniform(1)},
	)))
	require.Len(t, r.vertexBuffers, 1)
	assert.Same(t, tri, r.vertexBuffers["a"].src)
	assert.Equal(t, tri.VertexBytes(), r.vertexBuffers["a"].buf)
}

func TestSavePNG(t *testing.T) {
	target, err := NewTarget(5, 3)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, target.SavePNG(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 5, img.Bounds().Dx())
	assert.Equal(t, 3, img.Bounds().Dy())

	assert.Error(t, target.SavePNG(filepath.Join(t.TempDir(), "missing", "frame.png")))
}
