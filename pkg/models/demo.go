package models

import (
	"math"

	"github.com/taigrr/softraster/pkg/math3d"
	"github.com/taigrr/softraster/pkg/render"
)

// DemoScene returns the built-in scene used when no model file is given: two
// overlapping vertex-colored triangles in front of a checkered, normal-mapped
// backdrop drawn as a triangle strip. It is framed for a camera at (0, 0, 10)
// looking at the origin.
func DemoScene() *Model {
	triangles := render.NewMesh("triangles")
	forward := math3d.V3(0, 0, 1)
	red := render.RGBf(1, 0, 0)
	triangles.Vertices = []render.Vertex{
		{Position: math3d.V3(0, 2, 0), Color: red, Normal: forward},
		{Position: math3d.V3(1.5, -1, 0), Color: red, Normal: forward},
		{Position: math3d.V3(-1.5, -1, 0), Color: red, Normal: forward},

		{Position: math3d.V3(0, 4, -2), Color: red, Normal: forward},
		{Position: math3d.V3(3, -2, -2), Color: render.RGBf(0, 1, 0), Normal: forward},
		{Position: math3d.V3(-3, -2, -2), Color: render.RGBf(0, 0, 1), Normal: forward},
	}
	triangles.Indices = []uint32{0, 1, 2, 3, 4, 5}

	backdrop := render.NewMesh("backdrop")
	backdrop.Topology = render.TriangleStrip
	right := math3d.V3(1, 0, 0)
	backdrop.Vertices = []render.Vertex{
		{Position: math3d.V3(-4, -3, -3), UV: math3d.V2(0, 1), Normal: forward, Tangent: right, Color: render.Grey(1)},
		{Position: math3d.V3(-4, 3, -3), UV: math3d.V2(0, 0), Normal: forward, Tangent: right, Color: render.Grey(1)},
		{Position: math3d.V3(4, -3, -3), UV: math3d.V2(1, 1), Normal: forward, Tangent: right, Color: render.Grey(1)},
		{Position: math3d.V3(4, 3, -3), UV: math3d.V2(1, 0), Normal: forward, Tangent: right, Color: render.Grey(1)},
	}
	backdrop.Indices = []uint32{0, 1, 2, 3}
	backdrop.Material = &render.Material{
		Name:     "checker",
		Diffuse:  render.NewCheckerTexture(64, 64, 8, render.Grey(0.8), render.Grey(0.2)),
		Specular: render.Uniform(render.Grey(0.4)),
		Gloss:    render.Uniform(render.Grey(0.6)),
		Normal:   NewRippleNormalMap(64, 4),
	}

	meshes := []*render.Mesh{triangles, backdrop}
	return &Model{
		Name:      "demo",
		Meshes:    meshes,
		Materials: []*render.Material{backdrop.Material},
		Bounds:    CalculateBounds(meshes),
	}
}

// NewRippleNormalMap creates a tangent-space normal map of concentric
// ripples, encoded as colors in [0, 1].
func NewRippleNormalMap(size int, rings float64) *render.Texture {
	tex := render.NewTexture(size, size)
	for y := range size {
		for x := range size {
			u := (float64(x)+0.5)/float64(size) - 0.5
			v := (float64(y)+0.5)/float64(size) - 0.5
			r := math.Hypot(u, v)

			// Slope of a sine ripple, tilting the normal radially.
			slope := 0.5 * math.Cos(r*rings*2*math.Pi)
			var dx, dy float64
			if r > 0 {
				dx, dy = slope*u/r, slope*v/r
			}
			n := math3d.V3(dx, dy, 1).Normalize()
			tex.SetPixel(x, y, render.RGBf(n.X*0.5+0.5, n.Y*0.5+0.5, n.Z*0.5+0.5))
		}
	}
	return tex
}
