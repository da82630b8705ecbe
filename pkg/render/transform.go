package render

import (
	"github.com/taigrr/softraster/pkg/math3d"
	"golang.org/x/sync/errgroup"
)

// vertexChunk is the number of vertices one transform task handles.
const vertexChunk = 1024

// ViewParams is the camera state a frame is rendered with.
type ViewParams struct {
	View       math3d.Mat4
	Projection math3d.Mat4
	Origin     math3d.Vec3 // Camera position in world space
}

// ScreenVertex is a vertex after transformation. Position holds pixel x/y,
// post-divide depth in z, and the clip-space w kept for perspective-correct
// interpolation.
type ScreenVertex struct {
	Position math3d.Vec4
	Color    ColorRGB
	UV       math3d.Vec2
	Normal   math3d.Vec3 // World-space, normalized
	Tangent  math3d.Vec3 // World-space, normalized
	ViewDir  math3d.Vec3 // Normalized direction from the vertex to the camera
}

// TransformVertices moves vertices from object space to screen space for a
// width×height target. Work is split into fixed-size chunks run by at most
// workers goroutines; workers <= 1 transforms on the calling goroutine.
func TransformVertices(verts []Vertex, world math3d.Mat4, view ViewParams, width, height, workers int) []ScreenVertex {
	out := make([]ScreenVertex, len(verts))
	if len(verts) == 0 {
		return out
	}

	wvp := view.Projection.Mul(view.View).Mul(world)
	w, h := float64(width), float64(height)

	run := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i] = transformVertex(&verts[i], world, wvp, view.Origin, w, h)
		}
	}

	if workers <= 1 || len(verts) <= vertexChunk {
		run(0, len(verts))
		return out
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < len(verts); lo += vertexChunk {
		hi := min(lo+vertexChunk, len(verts))
		g.Go(func() error {
			run(lo, hi)
			return nil
		})
	}
	_ = g.Wait() // tasks never fail
	return out
}

func transformVertex(v *Vertex, world, wvp math3d.Mat4, origin math3d.Vec3, width, height float64) ScreenVertex {
	ndc := wvp.MulVec4(math3d.V4FromV3(v.Position, 1)).PerspectiveDivide()
	worldPos := world.MulVec3(v.Position)

	return ScreenVertex{
		Position: math3d.V4(
			(ndc.X+1)/2*width,
			(1-ndc.Y)/2*height,
			ndc.Z,
			ndc.W,
		),
		Color:   v.Color,
		UV:      v.UV,
		Normal:  world.MulVec3Dir(v.Normal).Normalize(),
		Tangent: world.MulVec3Dir(v.Tangent).Normalize(),
		ViewDir: origin.Sub(worldPos).Normalize(),
	}
}
