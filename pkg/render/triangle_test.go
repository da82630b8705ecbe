package render

import (
	"math"
	"testing"

	"github.com/taigrr/softraster/pkg/math3d"
)

const tolerance = 1e-9

func sv(x, y, z, w float64) ScreenVertex {
	return ScreenVertex{Position: math3d.V4(x, y, z, w)}
}

// frontTriangle faces the camera: positive area in pixel space.
func frontTriangle(z float64) []ScreenVertex {
	return []ScreenVertex{
		sv(10, 10, z, 1),
		sv(50, 10, z, 1),
		sv(10, 50, z, 1),
	}
}

func TestBarycentricSumsToOne(t *testing.T) {
	tri := TriangleAt(frontTriangle(0.5), 0)
	inside := 0
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			b, ok := tri.Barycentric(math3d.V2(float64(x)+0.5, float64(y)+0.5))
			if !ok {
				continue
			}
			inside++
			if sum := b[0] + b[1] + b[2]; math.Abs(sum-1) > tolerance {
				t.Fatalf("weights at (%d,%d) sum to %v", x, y, sum)
			}
			for i, w := range b {
				if w < 0 {
					t.Fatalf("weight %d at (%d,%d) is negative: %v", i, x, y, w)
				}
			}
		}
	}
	if inside == 0 {
		t.Fatal("no pixel was covered")
	}
}

func TestBarycentricWeightsMatchVertices(t *testing.T) {
	tri := TriangleAt(frontTriangle(0.5), 0)

	tests := []struct {
		name     string
		p        math3d.Vec2
		expected [3]float64
	}{
		{"vertex 0", math3d.V2(10, 10), [3]float64{1, 0, 0}},
		{"vertex 1", math3d.V2(50, 10), [3]float64{0, 1, 0}},
		{"vertex 2", math3d.V2(10, 50), [3]float64{0, 0, 1}},
		{"edge midpoint", math3d.V2(30, 10), [3]float64{0.5, 0.5, 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, ok := tri.Barycentric(tc.p)
			if !ok {
				t.Fatalf("point %v should be covered", tc.p)
			}
			for i := range b {
				if math.Abs(b[i]-tc.expected[i]) > tolerance {
					t.Errorf("Barycentric(%v) = %v, want %v", tc.p, b, tc.expected)
					break
				}
			}
		})
	}

	t.Run("outside", func(t *testing.T) {
		if _, ok := tri.Barycentric(math3d.V2(45, 45)); ok {
			t.Error("point beyond the hypotenuse should not be covered")
		}
	})
}

func TestBarycentricBackFacing(t *testing.T) {
	verts := frontTriangle(0.5)
	verts[1], verts[2] = verts[2], verts[1]
	tri := TriangleAt(verts, 0)

	if tri.Area() >= 0 {
		t.Fatalf("swapped triangle should have negative area, got %v", tri.Area())
	}
	if _, ok := tri.Barycentric(math3d.V2(20.5, 20.5)); ok {
		t.Error("back-facing triangle should cover nothing")
	}
}

func TestInterpolateAtVertex(t *testing.T) {
	verts := []ScreenVertex{
		{
			Position: math3d.V4(10, 10, 0.2, 2),
			Color:    RGBf(1, 0, 0),
			UV:       math3d.V2(0, 0),
			Normal:   math3d.V3(0, 0, 1),
			ViewDir:  math3d.V3(0, 0, 1),
		},
		{
			Position: math3d.V4(50, 10, 0.5, 5),
			Color:    RGBf(0, 1, 0),
			UV:       math3d.V2(1, 0),
			Normal:   math3d.V3(0, 1, 0),
			ViewDir:  math3d.V3(0, 1, 0),
		},
		{
			Position: math3d.V4(10, 50, 0.8, 9),
			Color:    RGBf(0, 0, 1),
			UV:       math3d.V2(0, 1),
			Normal:   math3d.V3(1, 0, 0),
			ViewDir:  math3d.V3(1, 0, 0),
		},
	}
	tri := TriangleAt(verts, 0)

	for i := range 3 {
		var b [3]float64
		b[i] = 1
		frag, ok := tri.Interpolate(b)
		if !ok {
			t.Fatalf("vertex %d: interpolation failed", i)
		}
		v := verts[i]
		if math.Abs(frag.Depth-v.Position.Z) > tolerance {
			t.Errorf("vertex %d: depth = %v, want %v", i, frag.Depth, v.Position.Z)
		}
		if frag.Color != v.Color {
			t.Errorf("vertex %d: color = %v, want %v", i, frag.Color, v.Color)
		}
		if frag.UV != v.UV {
			t.Errorf("vertex %d: uv = %v, want %v", i, frag.UV, v.UV)
		}
		if frag.Normal != v.Normal {
			t.Errorf("vertex %d: normal = %v, want %v", i, frag.Normal, v.Normal)
		}
	}
}

func TestInterpolatePerspectiveCorrect(t *testing.T) {
	// Halfway across the screen between a near (w=1) and far (w=3) vertex,
	// the attribute is pulled toward the near vertex.
	verts := []ScreenVertex{
		{Position: math3d.V4(0, 0, 0.1, 1), UV: math3d.V2(0, 0)},
		{Position: math3d.V4(10, 0, 0.9, 3), UV: math3d.V2(1, 0)},
		{Position: math3d.V4(0, 10, 0.1, 1), UV: math3d.V2(0, 0)},
	}
	frag, ok := TriangleAt(verts, 0).Interpolate([3]float64{0.5, 0.5, 0})
	if !ok {
		t.Fatal("interpolation failed")
	}
	// (0.5*0/1 + 0.5*1/3) / (0.5/1 + 0.5/3) = 0.25
	if math.Abs(frag.UV.X-0.25) > tolerance {
		t.Errorf("u = %v, want 0.25", frag.UV.X)
	}
}

func TestInFrustum(t *testing.T) {
	tests := []struct {
		name     string
		verts    []ScreenVertex
		expected bool
	}{
		{"inside", frontTriangle(0.5), true},
		{"negative depth", frontTriangle(-0.1), false},
		{"beyond far", frontTriangle(1.1), false},
		{"off screen", []ScreenVertex{sv(10, 10, 0.5, 1), sv(150, 10, 0.5, 1), sv(10, 50, 0.5, 1)}, false},
		{"behind camera", []ScreenVertex{sv(10, 10, 0.5, -1), sv(50, 10, 0.5, 1), sv(10, 50, 0.5, 1)}, false},
		{"zero w", []ScreenVertex{sv(10, 10, 0.5, 0), sv(50, 10, 0.5, 1), sv(10, 50, 0.5, 1)}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := TriangleAt(tc.verts, 0).InFrustum(100, 100); got != tc.expected {
				t.Errorf("InFrustum() = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestBoundsClamped(t *testing.T) {
	verts := []ScreenVertex{sv(-5.5, 2.2, 0.5, 1), sv(40.1, 3, 0.5, 1), sv(10, 120, 0.5, 1)}
	minX, minY, maxX, maxY := TriangleAt(verts, 0).Bounds(32, 64)
	if minX != 0 || minY != 2 || maxX != 31 || maxY != 63 {
		t.Errorf("Bounds() = (%d,%d)-(%d,%d), want (0,2)-(31,63)", minX, minY, maxX, maxY)
	}
}
