package render

import (
	"math"

	"github.com/taigrr/softraster/pkg/math3d"
)

// epsilon guards divisions by areas and interpolation denominators.
const epsilon = 1e-9

// Triangle is a view over three consecutive screen vertices.
type Triangle struct {
	v []ScreenVertex
}

// TriangleAt returns the i-th triangle of a flat vertex list.
func TriangleAt(verts []ScreenVertex, i int) Triangle {
	return Triangle{v: verts[3*i : 3*i+3 : 3*i+3]}
}

// TriangleCount returns how many whole triangles a flat vertex list holds.
func TriangleCount(verts []ScreenVertex) int {
	return len(verts) / 3
}

func (t Triangle) V0() *ScreenVertex { return &t.v[0] }
func (t Triangle) V1() *ScreenVertex { return &t.v[1] }
func (t Triangle) V2() *ScreenVertex { return &t.v[2] }

// InFrustum reports whether every vertex lies inside the screen rectangle,
// inside the [0, 1] depth range and in front of the camera. The test rejects
// whole triangles; nothing is clipped.
func (t Triangle) InFrustum(width, height int) bool {
	w, h := float64(width), float64(height)
	for i := range t.v {
		p := t.v[i].Position
		if p.W <= 0 ||
			p.X < 0 || p.X > w ||
			p.Y < 0 || p.Y > h ||
			p.Z < 0 || p.Z > 1 {
			return false
		}
	}
	return true
}

// Area returns twice the signed screen-space area. Positive means the
// triangle faces the camera.
func (t Triangle) Area() float64 {
	p0, p1, p2 := t.xy(0), t.xy(1), t.xy(2)
	return p1.Sub(p0).Cross(p2.Sub(p0))
}

// Bounds returns the pixel rectangle covering the triangle, clamped to a
// width×height target. Max coordinates are inclusive.
func (t Triangle) Bounds(width, height int) (minX, minY, maxX, maxY int) {
	x0, x1, x2 := t.v[0].Position.X, t.v[1].Position.X, t.v[2].Position.X
	y0, y1, y2 := t.v[0].Position.Y, t.v[1].Position.Y, t.v[2].Position.Y

	minX = clampInt(int(math.Floor(min(x0, x1, x2))), 0, width-1)
	maxX = clampInt(int(math.Ceil(max(x0, x1, x2))), 0, width-1)
	minY = clampInt(int(math.Floor(min(y0, y1, y2))), 0, height-1)
	maxY = clampInt(int(math.Ceil(max(y0, y1, y2))), 0, height-1)
	return minX, minY, maxX, maxY
}

// Barycentric tests the point p against the three directed edges
// v0→v1, v1→v2, v2→v0 in that order and stops at the first edge p lies
// outside of. For covered points it returns the normalized weights of
// v0, v1 and v2.
func (t Triangle) Barycentric(p math3d.Vec2) (b [3]float64, ok bool) {
	p0, p1, p2 := t.xy(0), t.xy(1), t.xy(2)

	// Each edge's result weights the vertex opposite it.
	w2 := p1.Sub(p0).Cross(p.Sub(p0))
	if w2 < 0 {
		return b, false
	}
	w0 := p2.Sub(p1).Cross(p.Sub(p1))
	if w0 < 0 {
		return b, false
	}
	w1 := p0.Sub(p2).Cross(p.Sub(p2))
	if w1 < 0 {
		return b, false
	}

	sum := w0 + w1 + w2
	if math.Abs(sum) < epsilon {
		return b, false
	}
	return [3]float64{w0 / sum, w1 / sum, w2 / sum}, true
}

// Fragment holds the attributes interpolated at one pixel.
type Fragment struct {
	Depth   float64
	Color   ColorRGB
	UV      math3d.Vec2
	Normal  math3d.Vec3
	Tangent math3d.Vec3
	ViewDir math3d.Vec3
}

// Interpolate computes perspective-correct attributes for screen-space
// weights b: each attribute is weighted by b_i/w_i and divided by the sum of
// b_i/w_i. It reports false when that sum is too close to zero.
func (t Triangle) Interpolate(b [3]float64) (Fragment, bool) {
	var pw [3]float64
	var denom float64
	for i := range pw {
		pw[i] = b[i] / t.v[i].Position.W
		denom += pw[i]
	}
	if math.Abs(denom) < epsilon {
		return Fragment{}, false
	}
	for i := range pw {
		pw[i] /= denom
	}

	v0, v1, v2 := t.V0(), t.V1(), t.V2()
	return Fragment{
		Depth: pw[0]*v0.Position.Z + pw[1]*v1.Position.Z + pw[2]*v2.Position.Z,
		Color: ColorRGB{
			R: pw[0]*v0.Color.R + pw[1]*v1.Color.R + pw[2]*v2.Color.R,
			G: pw[0]*v0.Color.G + pw[1]*v1.Color.G + pw[2]*v2.Color.G,
			B: pw[0]*v0.Color.B + pw[1]*v1.Color.B + pw[2]*v2.Color.B,
		},
		UV: math3d.V2(
			pw[0]*v0.UV.X+pw[1]*v1.UV.X+pw[2]*v2.UV.X,
			pw[0]*v0.UV.Y+pw[1]*v1.UV.Y+pw[2]*v2.UV.Y,
		),
		Normal:  math3d.Weighted(v0.Normal, v1.Normal, v2.Normal, pw[0], pw[1], pw[2]).Normalize(),
		Tangent: math3d.Weighted(v0.Tangent, v1.Tangent, v2.Tangent, pw[0], pw[1], pw[2]).Normalize(),
		ViewDir: math3d.Weighted(v0.ViewDir, v1.ViewDir, v2.ViewDir, pw[0], pw[1], pw[2]).Normalize(),
	}, true
}

func (t Triangle) xy(i int) math3d.Vec2 {
	return math3d.V2(t.v[i].Position.X, t.v[i].Position.Y)
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
