package render

import (
	"math"

	"github.com/taigrr/softraster/pkg/math3d"
)

// Camera is a perspective camera oriented by pitch, yaw and roll. With all
// three at zero it looks down -Z with +Y up. Its matrices are rebuilt lazily
// when a setter changes the pose or lens.
type Camera struct {
	Position math3d.Vec3

	Pitch float64 // Up/down, radians, clamped short of straight up or down
	Yaw   float64 // Left/right about +Y, radians
	Roll  float64 // Tilt about the view direction, radians

	FOV         float64 // Vertical field of view, radians
	AspectRatio float64 // Width / height of the target
	Near, Far   float64 // Clip distances along the view direction

	view, proj           math3d.Mat4
	viewDirty, projDirty bool
}

const maxPitch = math.Pi/2 - 0.01

// NewCamera creates a camera ten units in front of the origin, looking down
// -Z with a 60° field of view.
func NewCamera() *Camera {
	return &Camera{
		Position:    math3d.V3(0, 0, 10),
		FOV:         math.Pi / 3,
		AspectRatio: 16.0 / 9.0,
		Near:        0.1,
		Far:         100,
		viewDirty:   true,
		projDirty:   true,
	}
}

func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.viewDirty = true
}

// SetRotation sets pitch, yaw and roll in radians.
func (c *Camera) SetRotation(pitch, yaw, roll float64) {
	c.Pitch, c.Yaw, c.Roll = pitch, yaw, roll
	c.viewDirty = true
}

func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.projDirty = true
}

func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.projDirty = true
}

func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near, c.Far = near, far
	c.projDirty = true
}

// Forward is the unit view direction. It ignores roll.
func (c *Camera) Forward() math3d.Vec3 {
	sp, cp := math.Sincos(c.Pitch)
	sy, cy := math.Sincos(c.Yaw)
	return math3d.V3(-sy*cp, sp, -cy*cp)
}

// Right is the unit horizontal axis to the right of the view direction. It
// ignores roll.
func (c *Camera) Right() math3d.Vec3 {
	sy, cy := math.Sincos(c.Yaw)
	return math3d.V3(cy, 0, -sy)
}

// Up completes the right-handed basis with Right and Forward.
func (c *Camera) Up() math3d.Vec3 {
	return c.Right().Cross(c.Forward())
}

// basis returns the camera axes with roll applied.
func (c *Camera) basis() (right, up, back math3d.Vec3) {
	right, up, back = c.Right(), c.Up(), c.Forward().Negate()
	if c.Roll == 0 {
		return right, up, back
	}
	sr, cr := math.Sincos(c.Roll)
	return right.Scale(cr).Add(up.Scale(sr)), up.Scale(cr).Sub(right.Scale(sr)), back
}

func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		right, up, back := c.basis()
		c.view = math3d.View(right, up, back, c.Position)
		c.viewDirty = false
	}
	return c.view
}

// ProjectionMatrix maps view space to clip space with depth in [0, 1], as
// the rasterizer's depth test expects.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.proj = math3d.PerspectiveZO(c.FOV, c.AspectRatio, c.Near, c.Far)
		c.projDirty = false
	}
	return c.proj
}

func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// ViewParams returns the matrices and origin a frame is rendered with.
func (c *Camera) ViewParams() ViewParams {
	return ViewParams{
		View:       c.ViewMatrix(),
		Projection: c.ProjectionMatrix(),
		Origin:     c.Position,
	}
}

// MoveForward moves along the view direction; negative distances back away.
func (c *Camera) MoveForward(distance float64) {
	c.SetPosition(c.Position.Add(c.Forward().Scale(distance)))
}

func (c *Camera) MoveRight(distance float64) {
	c.SetPosition(c.Position.Add(c.Right().Scale(distance)))
}

// MoveUp moves along world +Y regardless of orientation.
func (c *Camera) MoveUp(distance float64) {
	c.SetPosition(c.Position.Add(math3d.V3(0, distance, 0)))
}

// Rotate adds to the current angles. Pitch is clamped.
func (c *Camera) Rotate(deltaPitch, deltaYaw, deltaRoll float64) {
	c.SetRotation(
		math.Max(-maxPitch, math.Min(maxPitch, c.Pitch+deltaPitch)),
		c.Yaw+deltaYaw,
		c.Roll+deltaRoll,
	)
}

// LookAt turns the camera toward target and clears roll. A target at the
// camera position leaves the orientation unchanged.
func (c *Camera) LookAt(target math3d.Vec3) {
	dir := target.Sub(c.Position).Normalize()
	if dir == (math3d.Vec3{}) {
		return
	}
	c.SetRotation(math.Asin(dir.Y), math.Atan2(-dir.X, -dir.Z), 0)
}

// WorldToScreen projects a world point to pixel coordinates and depth. It
// reports false for points behind the camera or outside the view volume.
func (c *Camera) WorldToScreen(p math3d.Vec3, width, height int) (x, y, depth float64, visible bool) {
	clip := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(p, 1))
	if clip.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clip.PerspectiveDivide()
	if math.Abs(ndc.X) > 1 || math.Abs(ndc.Y) > 1 || ndc.Z < 0 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x = (ndc.X + 1) * 0.5 * float64(width)
	y = (1 - ndc.Y) * 0.5 * float64(height)
	return x, y, ndc.Z, true
}
