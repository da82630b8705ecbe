// Package viewer holds the interactive state of the terminal viewer: model
// spin, camera zoom, debug toggles and the HUD. It is independent of the
// terminal itself so it can be driven by scripted input in tests.
package viewer

import (
	"math/rand/v2"

	"github.com/taigrr/softraster/pkg/math3d"
	"github.com/taigrr/softraster/pkg/models"
	"github.com/taigrr/softraster/pkg/render"
)

const (
	torqueStrength = 3.0
	torqueDecay    = 0.9
	spinImpulse    = 1.5
	dragImpulse    = 0.03

	zoomStep    = 0.5
	minDistance = 1.0
	maxDistance = 50.0
)

// Options configure a Viewer.
type Options struct {
	// FPS is the frame rate the rotation springs step at.
	FPS int
	// Target is the point the camera orbits and zooms toward.
	Target math3d.Vec3
	// FitExtent, when positive, centers the model and scales its largest
	// dimension to this size.
	FitExtent float64
}

// Status is the viewer state shown in the HUD.
type Status struct {
	Name          string
	Triangles     int
	Mode          render.ShadingMode
	DepthView     bool
	NormalMapping bool
	Wireframe     bool
}

// Viewer drives a renderer from user actions.
type Viewer struct {
	Rotation       *RotationState
	Bindings       []Binding
	Wireframe      bool
	ShowHUD        bool
	WireframeColor render.Color

	renderer *render.Renderer
	camera   *render.Camera
	model    *models.Model
	fit      math3d.Mat4
	target   math3d.Vec3

	homePosition       math3d.Vec3
	homePitch, homeYaw float64

	torque struct{ pitch, yaw, roll float64 }
}

// New creates a viewer for model, which may be nil for an empty scene.
func New(r *render.Renderer, cam *render.Camera, model *models.Model, opts Options) *Viewer {
	fit := math3d.Identity()
	if model != nil && opts.FitExtent > 0 {
		fit = models.FitTransform(model.Bounds, opts.FitExtent)
	}
	v := &Viewer{
		Rotation:       NewRotationState(opts.FPS),
		Bindings:       DefaultBindings,
		WireframeColor: render.RGB(0, 255, 128),
		renderer:       r,
		camera:         cam,
		model:          model,
		fit:            fit,
		target:         opts.Target,
		homePosition:   cam.Position,
		homePitch:      cam.Pitch,
		homeYaw:        cam.Yaw,
	}
	if model != nil {
		model.SetWorld(fit)
	}
	return v
}

// Camera returns the camera being driven.
func (v *Viewer) Camera() *render.Camera {
	return v.camera
}

// Renderer returns the renderer being driven.
func (v *Viewer) Renderer() *render.Renderer {
	return v.renderer
}

// Apply performs a key-press action. It reports whether the viewer should
// quit.
func (v *Viewer) Apply(a Action) bool {
	shader := v.renderer.Shader
	switch a {
	case ActionPitchUp:
		v.torque.pitch = -torqueStrength
	case ActionPitchDown:
		v.torque.pitch = torqueStrength
	case ActionYawLeft:
		v.torque.yaw = -torqueStrength
	case ActionYawRight:
		v.torque.yaw = torqueStrength
	case ActionRollLeft:
		v.torque.roll = -torqueStrength
	case ActionRollRight:
		v.torque.roll = torqueStrength
	case ActionSpin:
		v.Rotation.ApplyImpulse(
			(rand.Float64()-0.5)*spinImpulse,
			(rand.Float64()-0.5)*spinImpulse,
			(rand.Float64()-0.5)*spinImpulse,
		)
	case ActionReset:
		v.Reset()
	case ActionZoomIn:
		v.zoom(zoomStep)
	case ActionZoomOut:
		v.zoom(-zoomStep)
	case ActionWireframe:
		v.Wireframe = !v.Wireframe
	case ActionDepthView:
		v.renderer.SetVisualizeDepth(!v.renderer.VisualizeDepth())
	case ActionNextMode:
		if shader != nil {
			shader.Mode = shader.Mode.Next()
		}
	case ActionNormalMapping:
		if shader != nil {
			shader.NormalMapping = !shader.NormalMapping
		}
	case ActionHUD:
		v.ShowHUD = !v.ShowHUD
	case ActionQuit:
		return true
	}
	return false
}

// Release stops the torque started by a key-press action.
func (v *Viewer) Release(a Action) {
	switch a {
	case ActionPitchUp, ActionPitchDown:
		v.torque.pitch = 0
	case ActionYawLeft, ActionYawRight:
		v.torque.yaw = 0
	case ActionRollLeft, ActionRollRight:
		v.torque.roll = 0
	}
}

// Drag spins the model by a mouse movement in cells.
func (v *Viewer) Drag(dx, dy int) {
	v.Rotation.ApplyImpulse(float64(dy)*dragImpulse, float64(dx)*dragImpulse, 0)
}

// Reset restores the initial rotation and camera.
func (v *Viewer) Reset() {
	v.Rotation.Reset()
	v.torque.pitch, v.torque.yaw, v.torque.roll = 0, 0, 0
	v.camera.SetPosition(v.homePosition)
	v.camera.SetRotation(v.homePitch, v.homeYaw, 0)
}

// Distance returns the camera's distance from the orbit target.
func (v *Viewer) Distance() float64 {
	return v.camera.Position.Sub(v.target).Len()
}

func (v *Viewer) zoom(step float64) {
	d := v.Distance() - step
	if d < minDistance || d > maxDistance {
		return
	}
	v.camera.MoveForward(step)
}

// Step advances the spin by dt seconds and places the model. Key release
// events are unreliable on many terminals, so held torque decays on its own.
func (v *Viewer) Step(dt float64) {
	dt = min(dt, 0.1)
	v.Rotation.ApplyImpulse(v.torque.pitch*dt, v.torque.yaw*dt, v.torque.roll*dt)
	v.torque.pitch *= torqueDecay
	v.torque.yaw *= torqueDecay
	v.torque.roll *= torqueDecay

	v.Rotation.Update()
	if v.model != nil {
		v.model.SetWorld(v.Rotation.Matrix().Mul(v.fit))
	}
}

// Resize adapts the framebuffer and camera aspect to a new size in pixels.
func (v *Viewer) Resize(width, height int) {
	v.renderer.Resize(width, height)
	if height > 0 {
		v.camera.SetAspectRatio(float64(width) / float64(height))
	}
}

// Render draws one frame and, when enabled, the wireframe overlay. Mesh data
// errors are returned after the frame is complete.
func (v *Viewer) Render() error {
	var meshes []*render.Mesh
	if v.model != nil {
		meshes = v.model.Meshes
	}
	vp := v.camera.ViewParams()
	err := v.renderer.RenderFrame(meshes, vp)

	if v.Wireframe {
		fb := v.renderer.Framebuffer()
		for _, m := range meshes {
			verts, _ := render.AssembleTriangles(m)
			screen := render.TransformVertices(verts, m.World, vp, fb.Width, fb.Height, 1)
			fb.DrawWireframe(screen, v.WireframeColor)
		}
	}
	return err
}

// Status reports the state shown in the HUD.
func (v *Viewer) Status() Status {
	st := Status{
		DepthView: v.renderer.VisualizeDepth(),
		Wireframe: v.Wireframe,
	}
	if v.model != nil {
		st.Name = v.model.Name
		st.Triangles = v.model.TriangleCount()
	}
	if s := v.renderer.Shader; s != nil {
		st.Mode = s.Mode
		st.NormalMapping = s.NormalMapping
	}
	return st
}
