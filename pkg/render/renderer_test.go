package render

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/softraster/pkg/math3d"
)

func testCamera(width, height int) *Camera {
	cam := NewCamera()
	cam.SetPosition(math3d.V3(0, 0, 10))
	cam.LookAt(math3d.V3(0, 0, 0))
	cam.SetAspectRatio(float64(width) / float64(height))
	return cam
}

// quadMesh is a 2×2 square at depth z facing a camera on the +Z axis.
func quadMesh(z float64, c ColorRGB) *Mesh {
	m := NewMesh("quad")
	n := math3d.V3(0, 0, 1)
	m.Vertices = []Vertex{
		{Position: math3d.V3(-1, -1, z), Normal: n, Color: c},
		{Position: math3d.V3(-1, 1, z), Normal: n, Color: c},
		{Position: math3d.V3(1, -1, z), Normal: n, Color: c},
		{Position: math3d.V3(1, 1, z), Normal: n, Color: c},
	}
	m.Indices = []uint32{0, 1, 2, 3}
	m.Topology = TriangleStrip
	return m
}

func TestTransformVertices(t *testing.T) {
	const width, height = 80, 60
	cam := testCamera(width, height)
	verts := []Vertex{
		{Position: math3d.V3(0, 0, 0), Normal: math3d.V3(0, 0, 2)},
		{Position: math3d.V3(0, 0, 5)},
	}

	for _, workers := range []int{1, 4} {
		out := TransformVertices(verts, math3d.Identity(), cam.ViewParams(), width, height, workers)
		p := out[0].Position
		if math.Abs(p.X-width/2) > 1e-9 || math.Abs(p.Y-height/2) > 1e-9 {
			t.Errorf("origin mapped to (%v,%v), want screen center", p.X, p.Y)
		}
		if math.Abs(p.W-10) > 1e-9 {
			t.Errorf("clip w = %v, want view distance 10", p.W)
		}
		if p.Z <= 0 || p.Z >= 1 {
			t.Errorf("depth = %v, want within (0,1)", p.Z)
		}
		if out[1].Position.Z >= p.Z {
			t.Errorf("nearer vertex depth %v should be below %v", out[1].Position.Z, p.Z)
		}
		if out[0].Normal != math3d.V3(0, 0, 1) {
			t.Errorf("normal = %v, want normalized", out[0].Normal)
		}
		if out[0].ViewDir != math3d.V3(0, 0, 1) {
			t.Errorf("view dir = %v, want toward camera", out[0].ViewDir)
		}
	}
}

func TestTransformVerticesParallelChunks(t *testing.T) {
	verts := make([]Vertex, 3*vertexChunk+17)
	for i := range verts {
		verts[i].Position = math3d.V3(float64(i%13)-6, float64(i%7)-3, -float64(i%5))
	}
	cam := testCamera(64, 64)

	serial := TransformVertices(verts, math3d.Identity(), cam.ViewParams(), 64, 64, 1)
	parallel := TransformVertices(verts, math3d.Identity(), cam.ViewParams(), 64, 64, 8)
	for i := range serial {
		if serial[i] != parallel[i] {
			t.Fatalf("vertex %d differs: %v vs %v", i, serial[i], parallel[i])
		}
	}
}

func TestRenderFrameDrawsScene(t *testing.T) {
	const width, height = 64, 48
	fb := NewFramebuffer(width, height)
	r := NewRenderer(fb, nil)
	r.Shader = nil // vertex colors only
	cam := testCamera(width, height)

	if err := r.RenderFrame([]*Mesh{quadMesh(0, RGBf(1, 0, 0))}, cam.ViewParams()); err != nil {
		t.Fatalf("RenderFrame() = %v", err)
	}

	// Off the quad's diagonal, where both triangles share an edge.
	if got := fb.GetPixel(width/2-2, height/2+1); got != RGB(255, 0, 0) {
		t.Errorf("center pixel = %v, want red", got)
	}
	if got := fb.GetPixel(0, 0); got != ColorGray {
		t.Errorf("corner pixel = %v, want clear color", got)
	}
	stats := r.Stats()
	if stats.Triangles != 2 || stats.PixelsWritten == 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRenderFrameDepthOrder(t *testing.T) {
	const width, height = 64, 48
	fb := NewFramebuffer(width, height)
	r := NewRenderer(fb, nil)
	r.Shader = nil
	cam := testCamera(width, height)

	near := quadMesh(1, RGBf(0, 0, 1))
	far := quadMesh(-1, RGBf(0, 1, 0))
	for _, meshes := range [][]*Mesh{{near, far}, {far, near}} {
		if err := r.RenderFrame(meshes, cam.ViewParams()); err != nil {
			t.Fatal(err)
		}
		if got := fb.GetPixel(width/2-2, height/2+1); got != RGB(0, 0, 255) {
			t.Errorf("center pixel = %v, want the nearer quad", got)
		}
	}
}

func TestRenderFrameReportsBadIndices(t *testing.T) {
	const width, height = 64, 48
	fb := NewFramebuffer(width, height)
	r := NewRenderer(fb, nil)
	r.Shader = nil
	cam := testCamera(width, height)

	bad := quadMesh(0, RGBf(1, 1, 1))
	bad.Topology = TriangleList
	bad.Indices = []uint32{0, 1, 2, 2, 1, 42}

	err := r.RenderFrame([]*Mesh{bad, nil}, cam.ViewParams())
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if r.Stats().PixelsWritten == 0 {
		t.Error("valid triangle should still be drawn")
	}
}

func TestRenderFrameRejectsBehindCamera(t *testing.T) {
	fb := NewFramebuffer(32, 32)
	r := NewRenderer(fb, nil)
	cam := testCamera(32, 32)

	if err := r.RenderFrame([]*Mesh{quadMesh(20, RGBf(1, 1, 1))}, cam.ViewParams()); err != nil {
		t.Fatal(err)
	}
	if s := r.Stats(); s.PixelsWritten != 0 || s.FrustumRejected != 2 {
		t.Errorf("stats = %+v, want both triangles rejected", s)
	}
}

func TestCameraWorldToScreen(t *testing.T) {
	cam := testCamera(100, 100)
	cam.SetAspectRatio(1)

	x, y, depth, ok := cam.WorldToScreen(math3d.V3(0, 0, 0), 100, 100)
	if !ok {
		t.Fatal("origin should be visible")
	}
	if math.Abs(x-50) > 1e-9 || math.Abs(y-50) > 1e-9 {
		t.Errorf("origin at (%v,%v), want (50,50)", x, y)
	}
	if depth <= 0 || depth >= 1 {
		t.Errorf("depth = %v", depth)
	}

	if _, _, _, ok := cam.WorldToScreen(math3d.V3(0, 0, 20), 100, 100); ok {
		t.Error("point behind camera should not be visible")
	}
}
