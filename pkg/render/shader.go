package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/taigrr/softraster/pkg/math3d"
)

// ShadingMode selects which lighting terms reach the framebuffer.
type ShadingMode int

const (
	ObservedArea ShadingMode = iota // Greyscale Lambert cosine
	Diffuse                         // Diffuse term only
	Specular                        // Specular term only
	Combined                        // Ambient + diffuse + specular

	numShadingModes
)

var shadingModeNames = [numShadingModes]string{
	ObservedArea: "observed-area",
	Diffuse:      "diffuse",
	Specular:     "specular",
	Combined:     "combined",
}

func (m ShadingMode) String() string {
	if m < 0 || m >= numShadingModes {
		return fmt.Sprintf("ShadingMode(%d)", int(m))
	}
	return shadingModeNames[m]
}

// Next returns the following mode in the cycle
// observed-area → diffuse → specular → combined → observed-area.
func (m ShadingMode) Next() ShadingMode {
	return (m + 1) % numShadingModes
}

// ShadingModes returns every mode in cycle order.
func ShadingModes() []ShadingMode {
	modes := make([]ShadingMode, numShadingModes)
	for i := range modes {
		modes[i] = ShadingMode(i)
	}
	return modes
}

// ParseShadingMode parses a mode name as printed by String.
func ParseShadingMode(s string) (ShadingMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range shadingModeNames {
		if name == s {
			return ShadingMode(i), nil
		}
	}
	return ObservedArea, fmt.Errorf("unknown shading mode %q", s)
}

// lightTerms are the per-pixel lighting quantities a mode combines.
type lightTerms struct {
	ambient  ColorRGB
	observed float64  // Lambert cosine, > 0
	diffuse  ColorRGB // Diffuse BRDF
	specular ColorRGB
}

var modeFuncs = [numShadingModes]func(lightTerms) ColorRGB{
	ObservedArea: func(t lightTerms) ColorRGB {
		return Grey(t.observed)
	},
	Diffuse: func(t lightTerms) ColorRGB {
		return t.diffuse.Scale(t.observed)
	},
	Specular: func(t lightTerms) ColorRGB {
		return t.specular
	},
	Combined: func(t lightTerms) ColorRGB {
		return t.ambient.Add(t.diffuse.Scale(t.observed)).Add(t.specular)
	},
}

// Surface is everything the shader knows about one pixel.
type Surface struct {
	Normal   math3d.Vec3
	Tangent  math3d.Vec3
	UV       math3d.Vec2
	ViewDir  math3d.Vec3
	Color    ColorRGB
	Material *Material // May be nil
}

// Surface pairs the fragment with the material of its triangle.
func (f Fragment) Surface(mat *Material) Surface {
	return Surface{
		Normal:   f.Normal,
		Tangent:  f.Tangent,
		UV:       f.UV,
		ViewDir:  f.ViewDir,
		Color:    f.Color,
		Material: mat,
	}
}

// Default lighting parameters.
const (
	DefaultAmbient        = 0.025
	DefaultLightIntensity = 7.0
	DefaultShininess      = 25.0
)

// DefaultLightDirection points from the light into the scene: down, to the
// right and away from a camera looking down -Z.
var DefaultLightDirection = math3d.V3(0.577, -0.577, -0.577)

// Shader is a single directional light with Lambert diffuse and Phong
// specular terms and optional tangent-space normal mapping.
type Shader struct {
	Ambient        ColorRGB
	LightDirection math3d.Vec3 // Direction the light travels
	LightIntensity float64
	Shininess      float64
	Mode           ShadingMode
	NormalMapping  bool
}

// NewShader returns a shader with the default light in combined mode with
// normal mapping enabled.
func NewShader() *Shader {
	return &Shader{
		Ambient:        Grey(DefaultAmbient),
		LightDirection: DefaultLightDirection,
		LightIntensity: DefaultLightIntensity,
		Shininess:      DefaultShininess,
		Mode:           Combined,
		NormalMapping:  true,
	}
}

// Shade implements PixelShader. Pixels facing away from the light receive
// only the ambient term, whatever the mode.
func (s *Shader) Shade(surf Surface) ColorRGB {
	light := s.LightDirection.Normalize()
	n := s.normal(surf)

	observed := n.Dot(light.Negate())
	if observed <= 0 {
		return s.Ambient
	}

	fn := modeFuncs[Combined]
	if s.Mode >= 0 && s.Mode < numShadingModes {
		fn = modeFuncs[s.Mode]
	}
	return fn(lightTerms{
		ambient:  s.Ambient,
		observed: observed,
		diffuse:  s.diffuse(surf),
		specular: s.specular(surf, n, light),
	})
}

// normal returns the shading normal, perturbed by the normal map when one is
// bound, mapping is enabled and the surface has a tangent.
func (s *Shader) normal(surf Surface) math3d.Vec3 {
	n := surf.Normal
	mat := surf.Material
	if !s.NormalMapping || mat == nil || mat.Normal == nil || surf.Tangent.LenSq() == 0 {
		return n
	}

	texel := mat.Normal.Sample(surf.UV)
	t := surf.Tangent
	b := n.Cross(t)
	mapped := t.Scale(2*texel.R - 1).
		Add(b.Scale(2*texel.G - 1)).
		Add(n.Scale(2*texel.B - 1))
	return mapped.Normalize()
}

func (s *Shader) diffuse(surf Surface) ColorRGB {
	albedo := surf.Color
	if mat := surf.Material; mat != nil && mat.Diffuse != nil {
		albedo = mat.Diffuse.Sample(surf.UV)
	}
	return albedo.Scale(s.LightIntensity / math.Pi)
}

func (s *Shader) specular(surf Surface, n, light math3d.Vec3) ColorRGB {
	mat := surf.Material
	if mat == nil || mat.Specular == nil || mat.Gloss == nil {
		return ColorRGB{}
	}
	cos := light.Reflect(n).Dot(surf.ViewDir)
	if cos <= 0 {
		return ColorRGB{}
	}
	exp := mat.Gloss.Sample(surf.UV).R * s.Shininess
	return mat.Specular.Sample(surf.UV).Scale(math.Pow(cos, exp))
}
