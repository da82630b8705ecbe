package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/taigrr/softraster/pkg/math3d"
	"github.com/taigrr/softraster/pkg/models"
	"github.com/taigrr/softraster/pkg/render"
)

var errUnsupportedFormat = errors.New("unsupported image format")

type turntable struct {
	frames  int
	degrees float64
	out     string
	depth   bool
}

func newRenderCmd(scene *sceneFlags) *cobra.Command {
	t := &turntable{}
	cmd := &cobra.Command{
		Use:   "render [model.gltf|model.glb]",
		Short: "Render a turntable of frames to PNG or BMP files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := scene.resolve(cmd)
			if err != nil {
				return err
			}
			logger := setupLogging(cmd.ErrOrStderr(), cfg)

			model, extent, err := loadScene(logger, cfg, args)
			if err != nil {
				return err
			}
			defer model.Close()

			r, cam, err := newRenderer(cfg, cfg.Width, cfg.Height)
			if err != nil {
				return err
			}
			r.SetVisualizeDepth(t.depth)

			return t.run(cmd.Context(), logger, r, cam, model, extent)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&t.frames, "frames", "n", 1, "number of frames")
	f.Float64Var(&t.degrees, "degrees", 360, "total turntable rotation in degrees")
	f.StringVarP(&t.out, "out", "o", "frame.png", "output file; a %d verb or a frame suffix numbers the frames")
	f.BoolVar(&t.depth, "depth", false, "write the depth visualization instead of shading")
	return cmd
}

func (t *turntable) run(ctx context.Context, logger *slog.Logger, r *render.Renderer, cam *render.Camera, model *models.Model, extent float64) error {
	if t.frames < 1 {
		return fmt.Errorf("frames %d must be positive", t.frames)
	}

	fit := math3d.Identity()
	if extent > 0 {
		fit = models.FitTransform(model.Bounds, extent)
	}
	step := t.degrees * math.Pi / 180 / float64(t.frames)
	vp := cam.ViewParams()

	bar := progressbar.Default(int64(t.frames), "rendering")
	defer bar.Close()

	var dataErr error
	for i := range t.frames {
		if err := ctx.Err(); err != nil {
			return err
		}

		model.SetWorld(math3d.RotateY(step * float64(i)).Mul(fit))
		if err := r.RenderFrame(model.Meshes, vp); err != nil && dataErr == nil {
			dataErr = err
		}

		path := framePath(t.out, i, t.frames)
		if err := saveFrame(r.Framebuffer(), path); err != nil {
			return err
		}
		logger.Debug("frame written", "path", path, "pixels", r.Stats().PixelsWritten)
		_ = bar.Add(1)
	}

	logger.Info("frames written", "count", t.frames, "out", t.out)
	if dataErr != nil {
		logger.Warn("model has bad mesh data", "err", dataErr)
	}
	return nil
}

// framePath names frame i of n. A pattern with a formatting verb is expanded
// with the frame number; otherwise multi-frame runs get a numeric suffix
// before the extension.
func framePath(pattern string, i, n int) string {
	if strings.Contains(pattern, "%") {
		return fmt.Sprintf(pattern, i)
	}
	if n == 1 {
		return pattern
	}
	ext := filepath.Ext(pattern)
	return fmt.Sprintf("%s-%03d%s", strings.TrimSuffix(pattern, ext), i, ext)
}

func saveFrame(fb *render.Framebuffer, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return fb.SavePNG(path)
	case ".bmp":
		return fb.SaveBMP(path)
	default:
		return fmt.Errorf("%s: %w (use .png or .bmp)", path, errUnsupportedFormat)
	}
}
