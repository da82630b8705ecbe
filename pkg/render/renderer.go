package render

import (
	"errors"
	"fmt"
	"image/color"
	"runtime"
)

// Renderer draws whole frames: it assembles each mesh, transforms its
// vertices and rasterizes the result into the framebuffer.
type Renderer struct {
	fb     *Framebuffer
	raster *Rasterizer

	Shader     *Shader
	ClearColor color.RGBA

	// Workers bounds the goroutines used for vertex transformation and tile
	// rasterization. Zero means GOMAXPROCS.
	Workers int
}

// NewRenderer creates a renderer drawing into fb with the given shader. A nil
// shader is replaced by NewShader().
func NewRenderer(fb *Framebuffer, shader *Shader) *Renderer {
	if shader == nil {
		shader = NewShader()
	}
	return &Renderer{
		fb:         fb,
		raster:     NewRasterizer(fb),
		Shader:     shader,
		ClearColor: ColorGray,
	}
}

// Framebuffer returns the render target.
func (r *Renderer) Framebuffer() *Framebuffer {
	return r.fb
}

// Rasterizer exposes the rasterizer for debug toggles.
func (r *Renderer) Rasterizer() *Rasterizer {
	return r.raster
}

// SetVisualizeDepth switches between shaded output and the depth view.
func (r *Renderer) SetVisualizeDepth(on bool) {
	r.raster.VisualizeDepth = on
}

// VisualizeDepth reports whether the depth view is active.
func (r *Renderer) VisualizeDepth() bool {
	return r.raster.VisualizeDepth
}

// Stats returns the statistics of the last frame.
func (r *Renderer) Stats() FrameStats {
	return r.raster.Stats
}

// Resize replaces the framebuffer with one of the given size.
func (r *Renderer) Resize(width, height int) {
	if r.fb != nil && r.fb.Width == width && r.fb.Height == height {
		return
	}
	r.fb = NewFramebuffer(width, height)
	r.raster.fb = r.fb
}

func (r *Renderer) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// RenderFrame resets the framebuffer and draws every mesh with vp.
//
// Bad mesh data does not stop the frame: triangles with invalid indices are
// dropped, the rest of the frame is drawn, and the data errors are returned
// joined once the frame is complete.
func (r *Renderer) RenderFrame(meshes []*Mesh, vp ViewParams) error {
	r.fb.Reset(r.ClearColor)
	r.raster.ResetStats()
	r.raster.Workers = r.workers()

	var errs []error
	for _, m := range meshes {
		if m == nil {
			continue
		}
		if err := r.drawMesh(m, vp); err != nil {
			errs = append(errs, err)
		}
	}

	stats := r.raster.Stats
	Logger().Debug("frame rendered",
		"triangles", stats.Triangles,
		"frustumRejected", stats.FrustumRejected,
		"backFacing", stats.BackFacing,
		"degenerate", stats.Degenerate,
		"pixels", stats.PixelsWritten,
	)

	err := errors.Join(errs...)
	if err != nil {
		Logger().Warn("frame drawn with bad mesh data", "err", err)
	}
	return err
}

func (r *Renderer) drawMesh(m *Mesh, vp ViewParams) error {
	verts, err := AssembleTriangles(m)
	if err != nil {
		err = fmt.Errorf("assemble %q: %w", m.Name, err)
	}
	if len(verts) == 0 {
		return err
	}

	screen := TransformVertices(verts, m.World, vp, r.fb.Width, r.fb.Height, r.raster.Workers)

	materials := make([]*Material, TriangleCount(screen))
	for i := range materials {
		materials[i] = m.Material
	}

	var shader PixelShader
	if r.Shader != nil {
		shader = r.Shader
	}
	r.raster.Rasterize(screen, materials, shader)
	return err
}
