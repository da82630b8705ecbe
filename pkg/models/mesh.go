// Package models loads renderable meshes: glTF files, a built-in demo scene,
// and the geometry utilities (bounds, normals, tangents) they need.
package models

import (
	"errors"

	"github.com/taigrr/softraster/pkg/math3d"
	"github.com/taigrr/softraster/pkg/render"
)

// Model is a set of meshes loaded together along with the materials they
// reference. The model owns the materials.
type Model struct {
	Name      string
	Meshes    []*render.Mesh
	Materials []*render.Material
	Bounds    Bounds
}

// Close releases every material texture. Safe to call more than once.
func (m *Model) Close() error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, mat := range m.Materials {
		if err := mat.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetWorld places every mesh of the model with the same world matrix.
func (m *Model) SetWorld(world math3d.Mat4) {
	for _, mesh := range m.Meshes {
		mesh.World = world
	}
}

// TriangleCount returns the number of triangles across all meshes.
func (m *Model) TriangleCount() int {
	n := 0
	for _, mesh := range m.Meshes {
		n += mesh.TriangleCount()
	}
	return n
}

// VertexCount returns the number of vertices across all meshes.
func (m *Model) VertexCount() int {
	n := 0
	for _, mesh := range m.Meshes {
		n += len(mesh.Vertices)
	}
	return n
}

// Bounds is an axis-aligned bounding box in object space.
type Bounds struct {
	Min, Max math3d.Vec3
}

// Center returns the center of the bounding box.
func (b Bounds) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (b Bounds) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

// CalculateBounds computes the box enclosing every vertex of the meshes.
// Empty input yields the zero box.
func CalculateBounds(meshes []*render.Mesh) Bounds {
	var b Bounds
	first := true
	for _, m := range meshes {
		for _, v := range m.Vertices {
			if first {
				b.Min, b.Max = v.Position, v.Position
				first = false
				continue
			}
			b.Min = b.Min.Min(v.Position)
			b.Max = b.Max.Max(v.Position)
		}
	}
	return b
}

// FitTransform returns a matrix that centers b on the origin and scales it
// uniformly so its largest dimension equals extent.
func FitTransform(b Bounds, extent float64) math3d.Mat4 {
	size := b.Size()
	largest := max(size.X, size.Y, size.Z)
	scale := 1.0
	if largest > 0 {
		scale = extent / largest
	}
	return math3d.ScaleUniform(scale).Mul(math3d.Translate(b.Center().Negate()))
}

// HasNormals reports whether any vertex carries a usable normal.
func HasNormals(m *render.Mesh) bool {
	for _, v := range m.Vertices {
		if v.Normal.LenSq() > 1e-6 {
			return true
		}
	}
	return false
}

// CalculateSmoothNormals replaces vertex normals with the area-weighted
// average of the adjacent face normals. Front faces wind clockwise as seen
// from the camera, so the face normal is e2 × e1. Triangles with invalid
// indices are skipped.
func CalculateSmoothNormals(m *render.Mesh) {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Vec3{}
	}

	tris, _ := render.TriangleIndices(m)
	for _, tri := range tris {
		v0 := m.Vertices[tri[0]].Position
		v1 := m.Vertices[tri[1]].Position
		v2 := m.Vertices[tri[2]].Position

		// Not normalized: larger faces weigh more.
		n := v2.Sub(v0).Cross(v1.Sub(v0))
		for _, idx := range tri {
			m.Vertices[idx].Normal = m.Vertices[idx].Normal.Add(n)
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// CalculateFlatNormals assigns each triangle's face normal to its vertices.
// Vertices shared between faces end up with the normal of the last face.
func CalculateFlatNormals(m *render.Mesh) {
	tris, _ := render.TriangleIndices(m)
	for _, tri := range tris {
		v0 := m.Vertices[tri[0]].Position
		v1 := m.Vertices[tri[1]].Position
		v2 := m.Vertices[tri[2]].Position

		n := v2.Sub(v0).Cross(v1.Sub(v0)).Normalize()
		for _, idx := range tri {
			m.Vertices[idx].Normal = n
		}
	}
}
