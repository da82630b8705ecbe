package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/taigrr/softraster/pkg/config"
	"github.com/taigrr/softraster/pkg/models"
	"github.com/taigrr/softraster/pkg/render"
)

// Loaded models are scaled so their largest dimension spans this many world
// units in front of the default camera.
const modelExtent = 5.0

// sceneFlags are the persistent flags that override the configuration file.
type sceneFlags struct {
	configPath    string
	width, height int
	workers       int
	clearColor    string
	shading       string
	normalMapping bool
	logLevel      string
	textures      config.TextureConfig
}

func (f *sceneFlags) register(cmd *cobra.Command) {
	d := config.Default()
	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "YAML configuration file")
	pf.IntVar(&f.width, "width", d.Width, "frame width in pixels (headless)")
	pf.IntVar(&f.height, "height", d.Height, "frame height in pixels (headless)")
	pf.IntVar(&f.workers, "workers", d.Workers, "worker goroutines, 0 for one per CPU")
	pf.StringVar(&f.clearColor, "bg", d.ClearColor, "background color as hex")
	pf.StringVar(&f.shading, "shading", d.Shading, "shading mode: observed-area, diffuse, specular, combined")
	pf.BoolVar(&f.normalMapping, "normal-map", d.NormalMapping, "apply normal maps")
	pf.StringVar(&f.logLevel, "log-level", d.LogLevel, "log level: debug, info, warn, error")
	pf.StringVar(&f.textures.Diffuse, "diffuse", "", "diffuse texture overriding the model's")
	pf.StringVar(&f.textures.Specular, "specular", "", "specular texture")
	pf.StringVar(&f.textures.Gloss, "gloss", "", "gloss texture")
	pf.StringVar(&f.textures.Normal, "normal", "", "tangent-space normal map")
}

// resolve loads the configuration file, if any, and applies the flags the
// user set explicitly.
func (f *sceneFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return config.Config{}, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("width") {
		cfg.Width = f.width
	}
	if changed("height") {
		cfg.Height = f.height
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("bg") {
		cfg.ClearColor = f.clearColor
	}
	if changed("shading") {
		cfg.Shading = f.shading
	}
	if changed("normal-map") {
		cfg.NormalMapping = f.normalMapping
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("diffuse") {
		cfg.Textures.Diffuse = f.textures.Diffuse
	}
	if changed("specular") {
		cfg.Textures.Specular = f.textures.Specular
	}
	if changed("gloss") {
		cfg.Textures.Gloss = f.textures.Gloss
	}
	if changed("normal") {
		cfg.Textures.Normal = f.textures.Normal
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// setupLogging routes the library logger to w at the configured level.
func setupLogging(w io.Writer, cfg config.Config) *slog.Logger {
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	render.SetLogger(logger)
	return logger
}

// newRenderer builds a renderer and camera for a frame of the given size.
func newRenderer(cfg config.Config, width, height int) (*render.Renderer, *render.Camera, error) {
	shader, err := cfg.Shader()
	if err != nil {
		return nil, nil, err
	}
	clear, err := cfg.ClearRGBA()
	if err != nil {
		return nil, nil, err
	}

	r := render.NewRenderer(render.NewFramebuffer(width, height), shader)
	r.ClearColor = clear
	r.Workers = cfg.Workers
	r.Rasterizer().DepthRemapMin = cfg.DepthRemapMin

	cam := cfg.NewCamera(float64(width) / float64(height))
	return r, cam, nil
}

// loadScene loads the model named by args, or the demo scene when there is
// none, and applies texture overrides. It also returns the extent the model
// should be fitted to, zero for the demo scene.
func loadScene(logger *slog.Logger, cfg config.Config, args []string) (*models.Model, float64, error) {
	var (
		model  *models.Model
		extent float64
	)
	if len(args) == 0 {
		model = models.DemoScene()
	} else {
		var err error
		if model, err = models.LoadGLTF(args[0]); err != nil {
			return nil, 0, fmt.Errorf("load model: %w", err)
		}
		extent = modelExtent
	}

	if paths, ok := cfg.TexturePaths(); ok {
		mat, err := render.LoadMaterial("override", paths)
		if err != nil {
			logger.Warn("texture override incomplete", "err", err)
		}
		for _, m := range model.Meshes {
			m.Material = mat
		}
		model.Materials = append(model.Materials, mat)
	}

	for _, mat := range model.Materials {
		if missing := mat.Missing(); len(missing) > 0 {
			logger.Warn("material degraded", "material", mat.Name, "missing", missing)
		}
	}

	logger.Info("model loaded",
		"name", model.Name,
		"meshes", len(model.Meshes),
		"vertices", model.VertexCount(),
		"triangles", model.TriangleCount(),
	)
	return model, extent, nil
}
