package render

import (
	"github.com/taigrr/softraster/pkg/math3d"
	"golang.org/x/sync/errgroup"
)

// Tile dimensions used to split rasterization between workers.
const (
	TileWidth  = 64
	TileHeight = 64
)

// DefaultDepthRemapMin is the depth mapped to black in depth visualization.
// Perspective depth crowds toward 1, so only the top of the range is shown.
const DefaultDepthRemapMin = 0.97

// PixelShader computes the color of one covered, depth-accepted pixel.
type PixelShader interface {
	Shade(s Surface) ColorRGB
}

// FrameStats counts what happened to the triangles of a frame.
type FrameStats struct {
	Triangles       int // Triangles submitted
	FrustumRejected int // Dropped by the whole-triangle frustum test
	BackFacing      int // Dropped for facing away from the camera
	Degenerate      int // Dropped for having no screen-space area
	PixelsWritten   int // Fragments that passed the depth test
}

// Add accumulates o into s.
func (s *FrameStats) Add(o FrameStats) {
	s.Triangles += o.Triangles
	s.FrustumRejected += o.FrustumRejected
	s.BackFacing += o.BackFacing
	s.Degenerate += o.Degenerate
	s.PixelsWritten += o.PixelsWritten
}

// Rasterizer turns screen-space triangles into shaded pixels of a
// framebuffer.
//
// The target is split into TileWidth×TileHeight tiles. Triangles are binned
// into every tile their bounding box touches, in submission order, and each
// tile is drawn by exactly one worker. Every pixel therefore has a single
// writer and the output does not depend on the worker count.
type Rasterizer struct {
	fb *Framebuffer

	Workers        int     // Concurrent tile workers; <= 1 draws serially
	VisualizeDepth bool    // Write remapped depth instead of shading
	DepthRemapMin  float64 // Depth shown as black when VisualizeDepth is set

	Stats FrameStats // Totals since the last ResetStats
}

// NewRasterizer creates a rasterizer drawing into fb.
func NewRasterizer(fb *Framebuffer) *Rasterizer {
	return &Rasterizer{
		fb:            fb,
		Workers:       1,
		DepthRemapMin: DefaultDepthRemapMin,
	}
}

// Framebuffer returns the target framebuffer.
func (r *Rasterizer) Framebuffer() *Framebuffer {
	return r.fb
}

// ResetStats zeroes the frame statistics.
func (r *Rasterizer) ResetStats() {
	r.Stats = FrameStats{}
}

// setup is a triangle that survived culling, with its clamped bounds.
type setup struct {
	tri                    Triangle
	mat                    *Material
	minX, minY, maxX, maxY int
}

// Rasterize draws every triangle of verts (three vertices each). The i-th
// triangle is shaded with materials[i]; missing or nil entries shade with
// vertex colors only.
func (r *Rasterizer) Rasterize(verts []ScreenVertex, materials []*Material, shader PixelShader) {
	fb := r.fb
	if fb == nil || fb.Width == 0 || fb.Height == 0 {
		return
	}

	var stats FrameStats
	n := TriangleCount(verts)
	stats.Triangles = n

	setups := make([]setup, 0, n)
	for i := range n {
		tri := TriangleAt(verts, i)
		if !tri.InFrustum(fb.Width, fb.Height) {
			stats.FrustumRejected++
			continue
		}
		area := tri.Area()
		switch {
		case area > -epsilon && area < epsilon:
			stats.Degenerate++
			continue
		case area < 0:
			stats.BackFacing++
			continue
		}

		s := setup{tri: tri}
		if i < len(materials) {
			s.mat = materials[i]
		}
		s.minX, s.minY, s.maxX, s.maxY = tri.Bounds(fb.Width, fb.Height)
		setups = append(setups, s)
	}

	tilesX := (fb.Width + TileWidth - 1) / TileWidth
	tilesY := (fb.Height + TileHeight - 1) / TileHeight
	bins := make([][]int32, tilesX*tilesY)
	for i := range setups {
		s := &setups[i]
		for ty := s.minY / TileHeight; ty <= s.maxY/TileHeight; ty++ {
			for tx := s.minX / TileWidth; tx <= s.maxX/TileWidth; tx++ {
				bins[ty*tilesX+tx] = append(bins[ty*tilesX+tx], int32(i))
			}
		}
	}

	written := make([]int, len(bins))
	drawTile := func(t int) {
		if len(bins[t]) == 0 {
			return
		}
		x0, y0 := (t%tilesX)*TileWidth, (t/tilesX)*TileHeight
		x1, y1 := min(x0+TileWidth, fb.Width)-1, min(y0+TileHeight, fb.Height)-1
		for _, si := range bins[t] {
			written[t] += r.drawTriangle(&setups[si], shader, x0, y0, x1, y1)
		}
	}

	if r.Workers <= 1 {
		for t := range bins {
			drawTile(t)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(r.Workers)
		for t := range bins {
			g.Go(func() error {
				drawTile(t)
				return nil
			})
		}
		_ = g.Wait() // tile tasks never fail
	}

	for _, w := range written {
		stats.PixelsWritten += w
	}
	r.Stats.Add(stats)
}

// drawTriangle rasterizes the part of s inside the inclusive pixel rectangle
// [x0,x1]×[y0,y1] and returns the number of pixels written.
func (r *Rasterizer) drawTriangle(s *setup, shader PixelShader, x0, y0, x1, y1 int) int {
	minX, maxX := max(s.minX, x0), min(s.maxX, x1)
	minY, maxY := max(s.minY, y0), min(s.maxY, y1)

	written := 0
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			b, ok := s.tri.Barycentric(math3d.V2(float64(x)+0.5, float64(y)+0.5))
			if !ok {
				continue
			}
			frag, ok := s.tri.Interpolate(b)
			if !ok {
				continue
			}
			if !r.fb.TestAndSetDepth(x, y, frag.Depth) {
				continue
			}

			var c ColorRGB
			switch {
			case r.VisualizeDepth:
				c = DepthColor(frag.Depth, r.DepthRemapMin)
			case shader != nil:
				c = shader.Shade(frag.Surface(s.mat))
			default:
				c = frag.Color
			}
			r.fb.Write(x, y, c)
			written++
		}
	}
	return written
}

// DepthColor maps depth linearly from [remapMin, 1] to a grey level, black
// at remapMin and white at the far plane.
func DepthColor(depth, remapMin float64) ColorRGB {
	if remapMin >= 1 {
		return Grey(clamp01(depth))
	}
	return Grey(clamp01((depth - remapMin) / (1 - remapMin)))
}
