package raster

import (
	"context"
	"runtime"

	"github.com/chewxy/math32"
	"golang.org/x/sync/errgroup"

	"artifact_renderer/model"
	"artifact_renderer/shading"
	vm "artifact_renderer/vector_math"
)

// clipEpsilon keeps clipped vertices strictly in front of the eye.
const clipEpsilon = 1e-6

// bandHeight is the number of rows one worker shades at a time.
const bandHeight = 16

// screenVertex is a vertex after the perspective divide and viewport transform.
type screenVertex struct {
	pos   vm.Vec2
	depth float32
	invW  float32
	color vm.Vec3
}

// setupTriangle is ready for scan conversion: positively oriented in screen
// space with the fill rule ownership of its edges resolved.
type setupTriangle struct {
	v        [3]screenVertex
	area     float32
	owns     [3]bool
	minX     int
	maxX     int
	minY     int
	maxY     int
	artifact model.ArtifactUniform
}

// clipPlane returns the signed distance of a clip space position to a
// clipping plane, inside is >= 0.
type clipPlane func(p vm.Vec4) float32

var clipPlanes = []clipPlane{
	func(p vm.Vec4) float32 { return p.W - clipEpsilon },
	func(p vm.Vec4) float32 { return p.Z },
}

func lerpVSOut(a, b shading.VSOut, t float32) shading.VSOut {
	return shading.VSOut{
		Position: a.Position.Lerp(b.Position, t),
		Color:    a.Color.Add(b.Color.Sub(a.Color).ScalarMul(t)),
	}
}

// clipPolygon clips a convex polygon against the near planes of the clip
// volume. Sides are handled by the bounding box and the depth range by the
// per fragment depth clip.
func clipPolygon(poly []shading.VSOut) []shading.VSOut {
	for _, plane := range clipPlanes {
		if len(poly) == 0 {
			return nil
		}
		out := make([]shading.VSOut, 0, len(poly)+1)
		for i := range poly {
			cur := poly[i]
			next := poly[(i+1)%len(poly)]
			dc, dn := plane(cur.Position), plane(next.Position)
			if dc >= 0 {
				out = append(out, cur)
			}
			if (dc >= 0) != (dn >= 0) {
				out = append(out, lerpVSOut(cur, next, dc/(dc-dn)))
			}
		}
		poly = out
	}
	return poly
}

type viewport struct {
	width  float32
	height float32
}

func (vp viewport) project(v shading.VSOut) screenVertex {
	invW := 1 / v.Position.W
	ndc := v.Position.XYZ().ScalarMul(invW)
	return screenVertex{
		pos: vm.Vec2{
			X: (ndc.X*0.5 + 0.5) * vp.width,
			Y: (0.5 - ndc.Y*0.5) * vp.height,
		},
		depth: ndc.Z,
		invW:  invW,
		color: v.Color,
	}
}

// ownsEdge implements the top-left fill rule for triangles wound clockwise on
// screen (positive area with y down): samples exactly on a top edge
// (horizontal, running right) or a left edge (running up) are covered. A
// shared edge runs in opposite directions in its two triangles, so exactly
// one of them owns it.
func ownsEdge(a, b vm.Vec2) bool {
	d := b.Sub(a)
	return d.Y < 0 || (d.Y == 0 && d.X > 0)
}

// assemble clips, projects and culls one triangle, appending the surviving
// pieces to tris.
func (s *PipelineState) assemble(tris []setupTriangle, vp viewport, in [3]shading.VSOut, art model.ArtifactUniform) []setupTriangle {
	poly := clipPolygon(in[:])
	if len(poly) < 3 {
		return tris
	}
	projected := make([]screenVertex, len(poly))
	for i, v := range poly {
		projected[i] = vp.project(v)
	}
	for i := 1; i+1 < len(projected); i++ {
		a, b, c := projected[0], projected[i], projected[i+1]
		// screen space y points down, so counter clockwise in NDC is
		// negative here
		area := vm.EdgeFunction(a.pos, b.pos, c.pos)
		if area == 0 {
			continue
		}
		front := area < 0
		if (s.Cull == CullBack && !front) || (s.Cull == CullFront && front) {
			continue
		}
		if area < 0 {
			b, c = c, b
			area = -area
		}
		t := setupTriangle{
			v:        [3]screenVertex{a, b, c},
			area:     area,
			artifact: art,
			owns: [3]bool{
				ownsEdge(b.pos, c.pos),
				ownsEdge(c.pos, a.pos),
				ownsEdge(a.pos, b.pos),
			},
		}
		minX := math32.Min(a.pos.X, math32.Min(b.pos.X, c.pos.X))
		maxX := math32.Max(a.pos.X, math32.Max(b.pos.X, c.pos.X))
		minY := math32.Min(a.pos.Y, math32.Min(b.pos.Y, c.pos.Y))
		maxY := math32.Max(a.pos.Y, math32.Max(b.pos.Y, c.pos.Y))
		t.minX = clampInt(int(math32.Floor(minX)), 0, int(vp.width)-1)
		t.maxX = clampInt(int(math32.Ceil(maxX)), 0, int(vp.width)-1)
		t.minY = clampInt(int(math32.Floor(minY)), 0, int(vp.height)-1)
		t.maxY = clampInt(int(math32.Ceil(maxY)), 0, int(vp.height)-1)
		tris = append(tris, t)
	}
	return tris
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func covered(w float32, owned bool) bool {
	return w > 0 || (w == 0 && owned)
}

// shadeBand scan converts all triangles in order for the rows [y0, y1).
func (s *PipelineState) shadeBand(t *Target, tris []setupTriangle, y0, y1 int) {
	for i := range tris {
		tri := &tris[i]
		if tri.maxY < y0 || tri.minY >= y1 {
			continue
		}
		rowStart := max(tri.minY, y0)
		rowEnd := min(tri.maxY, y1-1)
		a, b, c := tri.v[0], tri.v[1], tri.v[2]
		for y := rowStart; y <= rowEnd; y++ {
			for x := tri.minX; x <= tri.maxX; x++ {
				p := vm.Vec2{X: float32(x) + 0.5, Y: float32(y) + 0.5}
				w0 := vm.EdgeFunction(b.pos, c.pos, p)
				w1 := vm.EdgeFunction(c.pos, a.pos, p)
				w2 := vm.EdgeFunction(a.pos, b.pos, p)
				if !covered(w0, tri.owns[0]) || !covered(w1, tri.owns[1]) || !covered(w2, tri.owns[2]) {
					continue
				}
				l0, l1, l2 := w0/tri.area, w1/tri.area, w2/tri.area
				depth := l0*a.depth + l1*b.depth + l2*c.depth
				if depth < 0 || depth > 1 {
					continue
				}
				idx := y*t.Width + x
				if s.DepthTest && !(depth < t.depth[idx]) {
					continue
				}
				var col vm.Vec3
				switch s.Interpolation {
				case InterpolateLinear:
					col = a.color.ScalarMul(l0).Add(b.color.ScalarMul(l1)).Add(c.color.ScalarMul(l2))
				default:
					p0, p1, p2 := l0*a.invW, l1*b.invW, l2*c.invW
					sum := p0 + p1 + p2
					num := a.color.ScalarMul(p0).Add(b.color.ScalarMul(p1)).Add(c.color.ScalarMul(p2))
					col = vm.Vec3{X: num.X / sum, Y: num.Y / sum, Z: num.Z / sum}
				}
				t.color[idx] = shading.ShadeFragment(shading.Varyings{Color: col}, tri.artifact)
				if s.DepthWrite {
					t.depth[idx] = depth
				}
			}
		}
	}
}

// rasterize shades all triangles into t. Rows are split into bands that are
// processed concurrently, each band keeps the submission order.
func (s *PipelineState) rasterize(ctx context.Context, t *Target, tris []setupTriangle, workers int) error {
	if len(tris) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y0 := 0; y0 < t.Height; y0 += bandHeight {
		y1 := min(y0+bandHeight, t.Height)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.shadeBand(t, tris, y0, y1)
			return nil
		})
	}
	return g.Wait()
}
