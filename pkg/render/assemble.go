package render

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is reported when a mesh index does not refer to one of
// its vertices.
var ErrIndexOutOfRange = errors.New("index out of range")

// TriangleIndices expands the mesh's index list into vertex index triples,
// honoring its topology and FlipWinding.
//
// Triangles referencing a missing vertex are dropped. Each dropped triangle
// contributes an error wrapping ErrIndexOutOfRange; assembly continues and
// the surviving triangles are returned together with the joined errors.
func TriangleIndices(m *Mesh) ([][3]uint32, error) {
	n := m.TriangleCount()
	if n == 0 {
		return nil, nil
	}

	out := make([][3]uint32, 0, n)
	var errs []error
	for k := range n {
		tri := triangleAt(m.Indices, m.Topology, k)
		if err := checkTriangle(m, k, tri); err != nil {
			errs = append(errs, err)
			continue
		}
		if m.FlipWinding {
			tri[1], tri[2] = tri[2], tri[1]
		}
		out = append(out, tri)
	}
	return out, errors.Join(errs...)
}

// triangleAt returns the k-th triangle of an index list. Odd strip triangles
// swap their last two indices to keep a consistent winding.
func triangleAt(idx []uint32, topo Topology, k int) [3]uint32 {
	if topo == TriangleStrip {
		if k%2 == 1 {
			return [3]uint32{idx[k], idx[k+2], idx[k+1]}
		}
		return [3]uint32{idx[k], idx[k+1], idx[k+2]}
	}
	return [3]uint32{idx[3*k], idx[3*k+1], idx[3*k+2]}
}

func checkTriangle(m *Mesh, k int, tri [3]uint32) error {
	for _, i := range tri {
		if int(i) >= len(m.Vertices) {
			return fmt.Errorf("mesh %q triangle %d: index %d of %d vertices: %w",
				m.Name, k, i, len(m.Vertices), ErrIndexOutOfRange)
		}
	}
	return nil
}

// AssembleTriangles returns the mesh's triangles as a flat vertex list, three
// vertices per triangle, in submission order. Error semantics match
// TriangleIndices.
func AssembleTriangles(m *Mesh) ([]Vertex, error) {
	tris, err := TriangleIndices(m)
	out := make([]Vertex, 0, len(tris)*3)
	for _, tri := range tris {
		out = append(out, m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]])
	}
	return out, err
}
