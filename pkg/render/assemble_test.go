package render

import (
	"errors"
	"reflect"
	"testing"

	"github.com/taigrr/softraster/pkg/math3d"
)

func meshWithVertices(n int, topo Topology, indices ...uint32) *Mesh {
	m := NewMesh("test")
	m.Topology = topo
	m.Indices = indices
	m.Vertices = make([]Vertex, n)
	for i := range m.Vertices {
		m.Vertices[i].Position = math3d.V3(float64(i), 0, 0)
	}
	return m
}

func TestTriangleIndices(t *testing.T) {
	tests := []struct {
		name     string
		topo     Topology
		indices  []uint32
		flip     bool
		expected [][3]uint32
	}{
		{
			name:     "list",
			topo:     TriangleList,
			indices:  []uint32{0, 1, 2, 3, 4, 5},
			expected: [][3]uint32{{0, 1, 2}, {3, 4, 5}},
		},
		{
			name:     "list ignores trailing indices",
			topo:     TriangleList,
			indices:  []uint32{0, 1, 2, 3, 4},
			expected: [][3]uint32{{0, 1, 2}},
		},
		{
			name:     "strip alternates winding",
			topo:     TriangleStrip,
			indices:  []uint32{0, 1, 2, 3, 4, 5},
			expected: [][3]uint32{{0, 1, 2}, {1, 3, 2}, {2, 3, 4}, {3, 5, 4}},
		},
		{
			name:     "flip winding",
			topo:     TriangleList,
			indices:  []uint32{0, 1, 2},
			flip:     true,
			expected: [][3]uint32{{0, 2, 1}},
		},
		{
			name:     "flipped strip",
			topo:     TriangleStrip,
			indices:  []uint32{0, 1, 2, 3},
			flip:     true,
			expected: [][3]uint32{{0, 2, 1}, {1, 2, 3}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := meshWithVertices(6, tc.topo, tc.indices...)
			m.FlipWinding = tc.flip
			got, err := TriangleIndices(m)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("TriangleIndices() = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestTriangleIndicesTooShort(t *testing.T) {
	for _, topo := range []Topology{TriangleList, TriangleStrip} {
		t.Run(topo.String(), func(t *testing.T) {
			m := meshWithVertices(3, topo, 0, 1)
			got, err := TriangleIndices(m)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if len(got) != 0 {
				t.Errorf("expected no triangles, got %v", got)
			}
		})
	}
}

func TestTriangleIndicesOutOfRange(t *testing.T) {
	m := meshWithVertices(4, TriangleList, 0, 1, 2, 0, 7, 3, 1, 2, 3, 9, 9, 9)
	got, err := TriangleIndices(m)

	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	want := [][3]uint32{{0, 1, 2}, {1, 2, 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("surviving triangles = %v, want %v", got, want)
	}

	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) || len(joined.Unwrap()) != 2 {
		t.Errorf("expected one error per dropped triangle, got %v", err)
	}
}

func TestAssembleTriangles(t *testing.T) {
	m := meshWithVertices(4, TriangleStrip, 0, 1, 2, 3)
	verts, err := AssembleTriangles(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(verts)%3 != 0 {
		t.Fatalf("assembled length %d is not a multiple of 3", len(verts))
	}

	// Second strip triangle is (1, 3, 2).
	wantX := []float64{0, 1, 2, 1, 3, 2}
	for i, v := range verts {
		if v.Position.X != wantX[i] {
			t.Errorf("vertex %d: x = %v, want %v", i, v.Position.X, wantX[i])
		}
	}
}
