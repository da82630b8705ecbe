// Package config holds the scene and rendering settings shared by the
// terminal viewer and the headless renderer. Settings come from defaults,
// optionally overlaid by a YAML file, then by command-line flags.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/softraster/pkg/math3d"
	"github.com/taigrr/softraster/pkg/render"
	"gopkg.in/yaml.v3"
)

// Config is the full set of rendering settings.
type Config struct {
	Width         int           `yaml:"width"`
	Height        int           `yaml:"height"`
	ClearColor    string        `yaml:"clearColor"`
	Workers       int           `yaml:"workers"`
	Camera        CameraConfig  `yaml:"camera"`
	Light         LightConfig   `yaml:"light"`
	Shading       string        `yaml:"shading"`
	NormalMapping bool          `yaml:"normalMapping"`
	DepthRemapMin float64       `yaml:"depthRemapMin"`
	Textures      TextureConfig `yaml:"textures"`
	LogLevel      string        `yaml:"logLevel"`
}

type CameraConfig struct {
	Position   []float64 `yaml:"position,flow"`
	Target     []float64 `yaml:"target,flow"`
	FOVDegrees float64   `yaml:"fovDegrees"`
	Near       float64   `yaml:"near"`
	Far        float64   `yaml:"far"`
}

type LightConfig struct {
	Direction []float64 `yaml:"direction,flow"`
	Intensity float64   `yaml:"intensity"`
	Ambient   float64   `yaml:"ambient"`
	Shininess float64   `yaml:"shininess"`
}

// TextureConfig names image files that override a model's material.
type TextureConfig struct {
	Diffuse  string `yaml:"diffuse,omitempty"`
	Specular string `yaml:"specular,omitempty"`
	Gloss    string `yaml:"gloss,omitempty"`
	Normal   string `yaml:"normal,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	d := render.DefaultLightDirection
	return Config{
		Width:      640,
		Height:     480,
		ClearColor: "#646464",
		Camera: CameraConfig{
			Position:   []float64{0, 0, 10},
			Target:     []float64{0, 0, 0},
			FOVDegrees: 60,
			Near:       0.1,
			Far:        100,
		},
		Light: LightConfig{
			Direction: []float64{d.X, d.Y, d.Z},
			Intensity: render.DefaultLightIntensity,
			Ambient:   render.DefaultAmbient,
			Shininess: render.DefaultShininess,
		},
		Shading:       render.Combined.String(),
		NormalMapping: true,
		DepthRemapMin: render.DefaultDepthRemapMin,
		LogLevel:      "info",
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. Keys that
// are absent keep their default values.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("size %dx%d must be positive", c.Width, c.Height))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d must not be negative", c.Workers))
	}
	if _, err := c.ClearRGBA(); err != nil {
		errs = append(errs, err)
	}
	if len(c.Camera.Position) != 3 || len(c.Camera.Target) != 3 {
		errs = append(errs, errors.New("camera position and target need three components"))
	}
	if c.Camera.FOVDegrees <= 0 || c.Camera.FOVDegrees >= 180 {
		errs = append(errs, fmt.Errorf("camera fovDegrees %v must be within (0, 180)", c.Camera.FOVDegrees))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("camera planes near=%v far=%v need 0 < near < far", c.Camera.Near, c.Camera.Far))
	}
	if len(c.Light.Direction) != 3 || vec3(c.Light.Direction).LenSq() == 0 {
		errs = append(errs, errors.New("light direction needs three components, not all zero"))
	}
	if _, err := render.ParseShadingMode(c.Shading); err != nil {
		errs = append(errs, err)
	}
	if c.DepthRemapMin < 0 || c.DepthRemapMin >= 1 {
		errs = append(errs, fmt.Errorf("depthRemapMin %v must be within [0, 1)", c.DepthRemapMin))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Write encodes the configuration as YAML.
func (c Config) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(&c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close config: %w", err)
	}
	return nil
}

// Marshal returns the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(&c)
}

// ClearRGBA parses the clear color, a CSS-style hex string.
func (c Config) ClearRGBA() (color.RGBA, error) {
	col, err := colorful.Hex(c.ClearColor)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("clearColor %q: %w", c.ClearColor, err)
	}
	r, g, b := col.RGB255()
	return color.RGBA{r, g, b, 255}, nil
}

// ShadingMode returns the configured initial shading mode.
func (c Config) ShadingMode() (render.ShadingMode, error) {
	return render.ParseShadingMode(c.Shading)
}

// SlogLevel parses the log level name (debug, info, warn, error).
func (c Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("logLevel: %w", err)
	}
	return l, nil
}

// Shader builds the pixel shader described by the light and shading
// settings.
func (c Config) Shader() (*render.Shader, error) {
	mode, err := c.ShadingMode()
	if err != nil {
		return nil, err
	}
	s := render.NewShader()
	s.Ambient = render.Grey(c.Light.Ambient)
	s.LightDirection = vec3(c.Light.Direction).Normalize()
	s.LightIntensity = c.Light.Intensity
	s.Shininess = c.Light.Shininess
	s.Mode = mode
	s.NormalMapping = c.NormalMapping
	return s, nil
}

// NewCamera builds the configured camera for a target of the given aspect
// ratio.
func (c Config) NewCamera(aspect float64) *render.Camera {
	cam := render.NewCamera()
	cam.SetFOV(c.Camera.FOVDegrees * math.Pi / 180)
	cam.SetAspectRatio(aspect)
	cam.SetClipPlanes(c.Camera.Near, c.Camera.Far)
	cam.SetPosition(vec3(c.Camera.Position))
	cam.LookAt(vec3(c.Camera.Target))
	return cam
}

// TexturePaths returns the texture overrides, or false when none is set.
func (c Config) TexturePaths() (render.TexturePaths, bool) {
	t := c.Textures
	p := render.TexturePaths{Diffuse: t.Diffuse, Specular: t.Specular, Gloss: t.Gloss, Normal: t.Normal}
	return p, p != (render.TexturePaths{})
}

func vec3(v []float64) math3d.Vec3 {
	if len(v) != 3 {
		return math3d.Vec3{}
	}
	return math3d.V3(v[0], v[1], v[2])
}
