package shading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"artifact_renderer/model"
	vm "artifact_renderer/vector_math"
)

func TestShadeVertexGolden(t *testing.T) {
	m := vm.FromRows([4][4]float32{
		{2, 0, 0, 1},
		{0, 3, 0, 0},
		{0, 0, 1, -1},
		{0, 0, -1, 0},
	})
	cases := []struct {
		name string
		cam  vm.Mat4
		pos  vm.Vec3
		want vm.Vec4
	}{
		{"identity", vm.Identity(), vm.Vec3{X: 1, Y: 2, Z: 3}, vm.Vec4{X: 1, Y: 2, Z: 3, W: 1}},
		{"identity origin", vm.Identity(), vm.Vec3{}, vm.Vec4{W: 1}},
		{"mixed", m, vm.Vec3{X: 1, Y: 2, Z: 3}, vm.Vec4{X: 3, Y: 6, Z: 2, W: -3}},
		{"translation", vm.NewTranslation(vm.Vec3{X: 0.5, Y: -1}), vm.Vec3{X: 1}, vm.Vec4{X: 1.5, Y: -1, W: 1}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v := model.Vertex{Pos: c.pos, Color: vm.Vec3{X: 0.1, Y: 0.2, Z: 0.3}}
			out := ShadeVertex(v, model.NewCameraUniform(c.cam))
			assert.Equal(t, c.want, out.Position)
			assert.Equal(t, v.Color, out.Color, "color passes through unchanged")
		})
	}
}

func TestShadeVertexMatchesMatrixProduct(t *testing.T) {
	cam := model.NewCamera(60, 0.1, 100)
	cam.Pos = vm.Vec3{X: 2, Y: 1.5, Z: 6}
	cam.SetTarget(vm.Vec3{Y: 0.5})
	u := cam.Uniform()
	for _, v := range model.NewCube().Vertices {
		out := ShadeVertex(v, u)
		assert.Equal(t, u.ViewProj.MulVec4(v.Pos.Extend(1)), out.Position)
	}
}

func TestShadeFragment(t *testing.T) {
	in := Varyings{Color: vm.Vec3{X: 0.2, Y: 0.4, Z: 0.6}}
	cases := []struct {
		k    float32
		want vm.Vec4
	}{
		{0, vm.Vec4{W: 1}},
		{1, vm.Vec4{X: 0.2, Y: 0.4, Z: 0.6, W: 1}},
		{2, vm.Vec4{X: 0.4, Y: 0.8, Z: 1.2, W: 1}},
		{0.5, vm.Vec4{X: 0.1, Y: 0.2, Z: 0.3, W: 1}},
	}
	for _, c := range cases {
		got := ShadeFragment(in, model.NewArtifactUniform(c.k))
		assert.InDelta(t, c.want.X, got.X, 1e-6, "k=%v", c.k)
		assert.InDelta(t, c.want.Y, got.Y, 1e-6, "k=%v", c.k)
		assert.InDelta(t, c.want.Z, got.Z, 1e-6, "k=%v", c.k)
		assert.Equal(t, float32(1), got.W, "alpha is always 1")
	}

	// overbright values are kept
	hot := ShadeFragment(Varyings{Color: model.White}, model.NewArtifactUniform(3))
	assert.Equal(t, vm.Vec4{X: 3, Y: 3, Z: 3, W: 1}, hot)
}

func TestBindingIndependence(t *testing.T) {
	v := model.Vertex{Pos: vm.Vec3{X: 0.3, Y: -0.7, Z: 0.1}, Color: vm.Vec3{X: 0.9, Y: 0.5, Z: 0.1}}
	cam := model.NewCameraUniform(vm.NewScale(vm.Vec3{X: 2, Y: 2, Z: 2}))
	otherCam := model.NewCameraUniform(vm.NewRotY(1))
	art := model.NewArtifactUniform(0.75)

	// another camera moves the vertex but leaves color and fragment untouched
	vsA := ShadeVertex(v, cam)
	vsB := ShadeVertex(v, otherCam)
	assert.NotEqual(t, vsA.Position, vsB.Position)
	assert.Equal(t, vsA.Color, vsB.Color)
	assert.Equal(t, ShadeFragment(Varyings{Color: vsA.Color}, art), ShadeFragment(Varyings{Color: vsB.Color}, art))

	// another artifact changes only the fragment, by exactly its factor
	in := Varyings{Color: vsA.Color}
	before := ShadeFragment(in, art)
	brighter := ShadeFragment(in, model.NewArtifactUniform(1.5))
	assert.InDelta(t, 2*before.X, brighter.X, 1e-6)
	assert.InDelta(t, 2*before.Y, brighter.Y, 1e-6)
	assert.InDelta(t, 2*before.Z, brighter.Z, 1e-6)
	assert.Equal(t, before.W, brighter.W)
}

func TestUnlitLayout(t *testing.T) {
	l := UnlitLayout()
	assert.NoError(t, l.Validate())
	assert.Equal(t, uint32(2), l.GroupCount())

	cam := l.Group(0)
	if assert.Len(t, cam, 1) {
		assert.Equal(t, "camera", cam[0].Name)
		assert.Equal(t, 64, cam[0].Size)
		assert.Equal(t, VisibleVertex, cam[0].Visibility)
	}
	art := l.Group(1)
	if assert.Len(t, art, 1) {
		assert.Equal(t, 4, art[0].Size)
		assert.Equal(t, 16, art[0].BoundSize)
		assert.Equal(t, VisibleFragment, art[0].Visibility)
	}
	assert.Equal(t, uint32(24), l.VertexStride)
	assert.Equal(t, uint32(12), l.Attributes[1].Offset)
	assert.Equal(t, "vs_main", l.VertexEntry)
	assert.Equal(t, "fs_main", l.FragmentEntry)
}

func TestLayoutValidateRejects(t *testing.T) {
	shared := UnlitLayout()
	shared.Bindings[1].Group = 0
	assert.ErrorIs(t, shared.Validate(), ErrInvalidLayout)

	unpadded := UnlitLayout()
	unpadded.Bindings[1].BoundSize = 4
	assert.ErrorIs(t, unpadded.Validate(), ErrInvalidLayout)

	gap := UnlitLayout()
	gap.Bindings[1].Group = 2
	assert.ErrorIs(t, gap.Validate(), ErrInvalidLayout)

	overflow := UnlitLayout()
	overflow.Attributes[1].Offset = 16
	assert.ErrorIs(t, overflow.Validate(), ErrInvalidLayout)

	dup := UnlitLayout()
	dup.Attributes[1].Location = 0
	assert.ErrorIs(t, dup.Validate(), ErrInvalidLayout)
}
