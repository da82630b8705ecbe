package models

import (
	"math"

	"github.com/taigrr/softraster/pkg/math3d"
	"github.com/taigrr/softraster/pkg/render"
)

// HasTangents reports whether any vertex carries a usable tangent.
func HasTangents(m *render.Mesh) bool {
	for _, v := range m.Vertices {
		if v.Tangent.LenSq() > 1e-6 {
			return true
		}
	}
	return false
}

// GenerateTangents computes per-vertex tangents from UV derivatives, for
// meshes whose source supplies none. Normals must already be set. Each
// tangent is orthogonalized against its normal; vertices whose triangles
// have no UV area get an arbitrary tangent perpendicular to the normal.
func GenerateTangents(m *render.Mesh) {
	for i := range m.Vertices {
		m.Vertices[i].Tangent = math3d.Vec3{}
	}

	tris, _ := render.TriangleIndices(m)
	for _, tri := range tris {
		v0, v1, v2 := m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)
		duv1 := v1.UV.Sub(v0.UV)
		duv2 := v2.UV.Sub(v0.UV)

		denom := duv1.Cross(duv2)
		if math.Abs(denom) < 1e-12 {
			continue
		}
		t := e1.Scale(duv2.Y).Sub(e2.Scale(duv1.Y)).Scale(1 / denom)
		for _, idx := range tri {
			m.Vertices[idx].Tangent = m.Vertices[idx].Tangent.Add(t)
		}
	}

	for i := range m.Vertices {
		v := &m.Vertices[i]
		n := v.Normal
		// Gram-Schmidt: T = T - N(N·T)
		t := v.Tangent.Sub(n.Scale(n.Dot(v.Tangent)))
		if t.LenSq() < 1e-8 {
			if math.Abs(n.X) < 0.9 {
				t = math3d.V3(1, 0, 0).Sub(n.Scale(n.X))
			} else {
				t = math3d.V3(0, 1, 0).Sub(n.Scale(n.Y))
			}
		}
		v.Tangent = t.Normalize()
	}
}
