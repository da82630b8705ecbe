package viewer

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/taigrr/softraster/pkg/math3d"
	"github.com/taigrr/softraster/pkg/models"
	"github.com/taigrr/softraster/pkg/render"
)

func newTestViewer(t *testing.T) *Viewer {
	t.Helper()
	fb := render.NewFramebuffer(64, 48)
	r := render.NewRenderer(fb, nil)
	r.Workers = 2
	cam := render.NewCamera()
	cam.SetAspectRatio(64.0 / 48.0)
	cam.LookAt(math3d.V3(0, 0, 0))
	return New(r, cam, models.DemoScene(), Options{FPS: 60})
}

func TestKeyBindings(t *testing.T) {
	tests := []struct {
		key  string
		want Action
	}{
		{"w", ActionPitchUp},
		{"up", ActionPitchUp},
		{"d", ActionYawRight},
		{"q", ActionRollLeft},
		{"space", ActionSpin},
		{"=", ActionZoomIn},
		{"x", ActionWireframe},
		{"z", ActionDepthView},
		{"m", ActionNextMode},
		{"n", ActionNormalMapping},
		{"?", ActionHUD},
		{"esc", ActionQuit},
		{"ctrl+c", ActionQuit},
		{"k", ActionNone},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			if got := Key(DefaultBindings, tc.key); got != tc.want {
				t.Errorf("Key(%q) = %v, want %v", tc.key, got, tc.want)
			}
		})
	}
}

func TestToggles(t *testing.T) {
	v := newTestViewer(t)
	shader := v.Renderer().Shader

	if v.Apply(ActionNextMode) {
		t.Fatal("next mode should not quit")
	}
	if shader.Mode != render.ObservedArea {
		t.Errorf("mode after Combined = %v, want %v", shader.Mode, render.ObservedArea)
	}

	v.Apply(ActionNormalMapping)
	v.Apply(ActionDepthView)
	v.Apply(ActionWireframe)
	v.Apply(ActionHUD)

	st := v.Status()
	if st.NormalMapping || !st.DepthView || !st.Wireframe || !v.ShowHUD {
		t.Errorf("status after toggles = %+v, hud=%v", st, v.ShowHUD)
	}
	if st.Triangles != 4 {
		t.Errorf("triangles = %d, want 4", st.Triangles)
	}

	if !v.Apply(ActionQuit) {
		t.Error("quit action should report quit")
	}
}

func TestZoomAndReset(t *testing.T) {
	v := newTestViewer(t)
	start := v.Distance()

	v.Apply(ActionZoomIn)
	if got := v.Distance(); math.Abs(got-(start-zoomStep)) > 1e-9 {
		t.Errorf("distance after zoom in = %v, want %v", got, start-zoomStep)
	}

	for range 100 {
		v.Apply(ActionZoomIn)
	}
	if got := v.Distance(); got < minDistance {
		t.Errorf("distance %v went below %v", got, minDistance)
	}

	v.Apply(ActionSpin)
	v.Step(1.0 / 60)
	v.Apply(ActionReset)
	if got := v.Distance(); math.Abs(got-start) > 1e-9 {
		t.Errorf("distance after reset = %v, want %v", got, start)
	}
	if v.Rotation.Yaw.Position != 0 || v.Rotation.Yaw.Velocity != 0 {
		t.Errorf("rotation not reset: %+v", v.Rotation.Yaw)
	}
}

func TestTorqueSpinsAndDecays(t *testing.T) {
	v := newTestViewer(t)

	v.Apply(ActionYawRight)
	for range 10 {
		v.Step(1.0 / 60)
	}
	if v.Rotation.Yaw.Position <= 0 {
		t.Errorf("yaw = %v, want positive", v.Rotation.Yaw.Position)
	}
	if v.Rotation.Pitch.Position != 0 {
		t.Errorf("pitch = %v, want 0", v.Rotation.Pitch.Position)
	}

	v.Release(ActionYawRight)
	for range 600 {
		v.Step(1.0 / 60)
	}
	if math.Abs(v.Rotation.Yaw.Velocity) > 1e-3 {
		t.Errorf("yaw velocity = %v, want decayed", v.Rotation.Yaw.Velocity)
	}
}

func TestRenderWithWireframe(t *testing.T) {
	v := newTestViewer(t)
	v.Wireframe = true
	v.Step(1.0 / 60)

	if err := v.Render(); err != nil {
		t.Fatalf("Render() = %v", err)
	}
	if v.Renderer().Stats().PixelsWritten == 0 {
		t.Error("no pixels written")
	}

	fb := v.Renderer().Framebuffer()
	found := false
	for _, p := range fb.Pixels {
		if p == v.WireframeColor {
			found = true
			break
		}
	}
	if !found {
		t.Error("wireframe overlay not drawn")
	}
}

func TestResizeUpdatesAspect(t *testing.T) {
	v := newTestViewer(t)
	v.Resize(100, 50)
	if fb := v.Renderer().Framebuffer(); fb.Width != 100 || fb.Height != 50 {
		t.Errorf("framebuffer = %dx%d", fb.Width, fb.Height)
	}
	if v.Camera().AspectRatio != 2 {
		t.Errorf("aspect = %v, want 2", v.Camera().AspectRatio)
	}
}

func TestFitExtent(t *testing.T) {
	fb := render.NewFramebuffer(8, 8)
	model := models.DemoScene()
	New(render.NewRenderer(fb, nil), render.NewCamera(), model, Options{FPS: 30, FitExtent: 2})

	// The demo scene spans 8 units; fitted to 2 it scales by a quarter.
	if got := model.Meshes[0].World.MulVec3(math3d.V3(1, 0, 0)); got.X >= 1 {
		t.Errorf("fitted x = %v, want scaled down", got.X)
	}
}

func TestHUD(t *testing.T) {
	start := time.Unix(0, 0)
	h := NewHUD(start)
	for i := range 30 {
		h.Tick(start.Add(time.Duration(i+1) * time.Second / 30))
	}
	if math.Abs(h.FPS()-30) > 1e-6 {
		t.Errorf("FPS = %v, want 30", h.FPS())
	}

	st := Status{Name: "duck.glb", Triangles: 42, Mode: render.Specular, NormalMapping: true}
	segs := h.Segments(80, 24, st)
	var all strings.Builder
	for _, s := range segs {
		if s.Row != 1 && s.Row != 24 {
			t.Errorf("segment on row %d", s.Row)
		}
		if s.Col < 1 || s.Col > 80 {
			t.Errorf("segment at column %d", s.Col)
		}
		all.WriteString(s.Text)
	}
	for _, want := range []string{"30 FPS", "duck.glb", "42 tris", "specular", "[✓] normal map"} {
		if !strings.Contains(all.String(), want) {
			t.Errorf("HUD missing %q", want)
		}
	}

	var hidden strings.Builder
	if err := h.Render(&hidden, 80, 24, st, false); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(hidden.String(), "FPS") {
		t.Error("hidden HUD should only clear its rows")
	}

	var shown strings.Builder
	if err := h.Render(&shown, 80, 24, st, true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(shown.String(), "duck.glb") {
		t.Error("shown HUD missing title")
	}
}
