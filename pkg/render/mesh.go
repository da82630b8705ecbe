package render

import "github.com/taigrr/softraster/pkg/math3d"

// Topology describes how a mesh's index list forms triangles.
type Topology int

const (
	TriangleList  Topology = iota // Every three indices form a triangle
	TriangleStrip                 // Each index after the second forms a triangle with the previous two
)

func (t Topology) String() string {
	switch t {
	case TriangleList:
		return "list"
	case TriangleStrip:
		return "strip"
	default:
		return "unknown"
	}
}

// Vertex is an object-space vertex with all attributes the pipeline uses.
type Vertex struct {
	Position math3d.Vec3 // Object-space position
	Color    ColorRGB    // Vertex color, used when no diffuse texture is bound
	UV       math3d.Vec2 // Texture coordinates
	Normal   math3d.Vec3 // Object-space normal
	Tangent  math3d.Vec3 // Object-space tangent for normal mapping
}

// Mesh is an indexed triangle mesh ready for rendering.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Topology Topology

	// World places the mesh in the scene.
	World math3d.Mat4

	// FlipWinding reverses every assembled triangle. Sources whose front
	// faces wind the other way around set it instead of rewriting indices.
	FlipWinding bool

	// Material may be nil, in which case vertex colors are used.
	Material *Material
}

// NewMesh creates an empty triangle-list mesh with an identity world matrix.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:  name,
		World: math3d.Identity(),
	}
}

// TriangleCount returns the number of triangles the index list describes,
// before validation.
func (m *Mesh) TriangleCount() int {
	n := len(m.Indices)
	if n < 3 {
		return 0
	}
	if m.Topology == TriangleStrip {
		return n - 2
	}
	return n / 3
}
