package math3d

import "math"

// Mat4 is a 4x4 matrix stored column by column:
//
//	| 0  4  8  12 |
//	| 1  5  9  13 |
//	| 2  6  10 14 |
//	| 3  7  11 15 |
//
// It multiplies column vectors, so the chain a vertex goes through
// (world, then view, then projection) is built as proj.Mul(view).Mul(world).
type Mat4 [16]float64

// FromCols builds a matrix from its four columns.
func FromCols(c0, c1, c2, c3 Vec4) Mat4 {
	return Mat4{
		c0.X, c0.Y, c0.Z, c0.W,
		c1.X, c1.Y, c1.Z, c1.W,
		c2.X, c2.Y, c2.Z, c2.W,
		c3.X, c3.Y, c3.Z, c3.W,
	}
}

// Col returns column i.
func (m Mat4) Col(i int) Vec4 {
	return Vec4{m[i*4], m[i*4+1], m[i*4+2], m[i*4+3]}
}

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Scale(V3(1, 1, 1))
}

// Translate moves points by v.
func Translate(v Vec3) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = v.X, v.Y, v.Z
	return m
}

// Scale scales each axis by the matching component of v.
func Scale(v Vec3) Mat4 {
	return Mat4{0: v.X, 5: v.Y, 10: v.Z, 15: 1}
}

func ScaleUniform(s float64) Mat4 {
	return Scale(V3(s, s, s))
}

// Rotate returns a counter-clockwise rotation by angle radians about the
// unit axis, looking down the axis toward the origin.
func Rotate(axis Vec3, angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	t := 1 - c
	x, y, z := axis.X, axis.Y, axis.Z
	return FromCols(
		Vec4{t*x*x + c, t*x*y + s*z, t*x*z - s*y, 0},
		Vec4{t*x*y - s*z, t*y*y + c, t*y*z + s*x, 0},
		Vec4{t*x*z + s*y, t*y*z - s*x, t*z*z + c, 0},
		Vec4{0, 0, 0, 1},
	)
}

func RotateX(angle float64) Mat4 { return Rotate(V3(1, 0, 0), angle) }
func RotateY(angle float64) Mat4 { return Rotate(V3(0, 1, 0), angle) }
func RotateZ(angle float64) Mat4 { return Rotate(V3(0, 0, 1), angle) }

// View returns the world-to-camera matrix of a camera at eye whose
// orthonormal axes are right, up and back (back points away from what the
// camera sees).
func View(right, up, back, eye Vec3) Mat4 {
	return FromCols(
		Vec4{right.X, up.X, back.X, 0},
		Vec4{right.Y, up.Y, back.Y, 0},
		Vec4{right.Z, up.Z, back.Z, 0},
		Vec4{-right.Dot(eye), -up.Dot(eye), -back.Dot(eye), 1},
	)
}

// PerspectiveZO is a right-handed perspective projection with vertical field
// of view fovy (radians). After the divide, depth runs from 0 at the near
// plane to 1 at the far plane, and clip w is the view-space distance -z.
func PerspectiveZO(fovy, aspect, near, far float64) Mat4 {
	focal := 1 / math.Tan(fovy/2)
	depth := 1 / (near - far)
	return FromCols(
		Vec4{X: focal / aspect},
		Vec4{Y: focal},
		Vec4{Z: far * depth, W: -1},
		Vec4{Z: far * near * depth},
	)
}

// Mul returns the product a·b, which applies b first.
func (a Mat4) Mul(b Mat4) Mat4 {
	return FromCols(
		a.MulVec4(b.Col(0)),
		a.MulVec4(b.Col(1)),
		a.MulVec4(b.Col(2)),
		a.MulVec4(b.Col(3)),
	)
}

// MulVec4 transforms a homogeneous vector.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return m.Col(0).Scale(v.X).
		Add(m.Col(1).Scale(v.Y)).
		Add(m.Col(2).Scale(v.Z)).
		Add(m.Col(3).Scale(v.W))
}

// MulVec3 transforms a point, dividing by the resulting w unless it is zero.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	return m.MulVec4(V4FromV3(v, 1)).PerspectiveDivide().Vec3()
}

// MulVec3Dir transforms a direction, ignoring translation.
func (m Mat4) MulVec3Dir(v Vec3) Vec3 {
	return m.MulVec4(V4FromV3(v, 0)).Vec3()
}
