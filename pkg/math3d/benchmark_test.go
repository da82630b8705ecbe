package math3d

import (
	"math"
	"testing"
)

// The vertex stage runs these per vertex, the pixel stage per fragment.

func BenchmarkTransformPoint(b *testing.B) {
	wvp := PerspectiveZO(math.Pi/3, 4.0/3, 0.1, 100).
		Mul(Translate(V3(0, 0, -10))).
		Mul(RotateY(0.5))
	p := V4(1, 2, 3, 1)

	for b.Loop() {
		_ = wvp.MulVec4(p).PerspectiveDivide()
	}
}

func BenchmarkComposeWVP(b *testing.B) {
	world := RotateY(0.5).Mul(ScaleUniform(2))
	view := View(V3(1, 0, 0), V3(0, 1, 0), V3(0, 0, 1), V3(0, 0, 10))
	proj := PerspectiveZO(math.Pi/3, 4.0/3, 0.1, 100)

	for b.Loop() {
		_ = proj.Mul(view).Mul(world)
	}
}

func BenchmarkNormalTransform(b *testing.B) {
	world := Rotate(V3(1, 1, 0).Normalize(), 0.3)
	n := V3(0, 0, 1)

	for b.Loop() {
		_ = world.MulVec3Dir(n).Normalize()
	}
}

func BenchmarkInterpolateAttribute(b *testing.B) {
	v0, v1, v2 := V3(1, 0, 0), V3(0, 1, 0), V3(0, 0, 1)

	for b.Loop() {
		_ = Weighted(v0, v1, v2, 0.2, 0.3, 0.5).Normalize()
	}
}

func BenchmarkSpecularReflect(b *testing.B) {
	light := V3(0.577, -0.577, -0.577)
	n := V3(0, 0, 1)

	for b.Loop() {
		_ = light.Reflect(n)
	}
}
