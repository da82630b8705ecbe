package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
	"github.com/taigrr/softraster/pkg/config"
	"github.com/taigrr/softraster/pkg/models"
	"github.com/taigrr/softraster/pkg/viewer"
)

type viewFlags struct {
	fps     int
	logFile string
}

func newViewCmd(scene *sceneFlags) *cobra.Command {
	vf := &viewFlags{}
	cmd := &cobra.Command{
		Use:   "view [model.gltf|model.glb]",
		Short: "View a model interactively in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := scene.resolve(cmd)
			if err != nil {
				return err
			}

			logOut, err := os.OpenFile(vf.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer logOut.Close()
			logger := setupLogging(logOut, cfg)

			// A model that fails to load is reported and leaves an empty scene.
			model, extent, loadErr := loadScene(logger, cfg, args)
			if loadErr != nil {
				logger.Error("model unavailable", "err", loadErr)
			}
			defer model.Close()

			if err := vf.run(cmd.Context(), cfg, model, extent, loadErr); err != nil {
				return err
			}
			if loadErr != nil {
				return loadErr
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&vf.fps, "fps", 60, "target frames per second")
	f.StringVar(&vf.logFile, "log-file", "softraster.log", "file receiving log output")
	return cmd
}

func (vf *viewFlags) run(ctx context.Context, cfg config.Config, model *models.Model, extent float64, loadErr error) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)
	fmt.Fprint(os.Stdout, ansi.SetModeMouseAnyEvent+ansi.SetModeMouseExtSgr)

	cleanup := func() {
		fmt.Fprint(os.Stdout, ansi.ResetModeMouseAnyEvent+ansi.ResetModeMouseExtSgr)
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	// Each cell holds two vertically stacked pixels.
	r, cam, err := newRenderer(cfg, width, height*2)
	if err != nil {
		return err
	}
	v := viewer.New(r, cam, model, viewer.Options{FPS: vf.fps, FitExtent: extent})
	hud := viewer.NewHUD(time.Now())
	if loadErr != nil {
		v.ShowHUD = true
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	var (
		mouseDown          bool
		lastMouseX, lastMouseY int
	)
	handle := func(ev uv.Event) bool {
		switch ev := ev.(type) {
		case uv.WindowSizeEvent:
			width, height = ev.Width, ev.Height
			term.Erase()
			term.Resize(width, height)
			v.Resize(width, height*2)
		case uv.KeyPressEvent:
			return v.Apply(viewer.Lookup(v.Bindings, ev.MatchString))
		case uv.KeyReleaseEvent:
			v.Release(viewer.Lookup(v.Bindings, ev.MatchString))
		case uv.MouseClickEvent:
			mouseDown = true
			lastMouseX, lastMouseY = ev.X, ev.Y
		case uv.MouseReleaseEvent:
			mouseDown = false
		case uv.MouseMotionEvent:
			if mouseDown {
				v.Drag(ev.X-lastMouseX, ev.Y-lastMouseY)
				lastMouseX, lastMouseY = ev.X, ev.Y
			}
		case uv.MouseWheelEvent:
			switch ev.Button {
			case uv.MouseWheelUp:
				v.Apply(viewer.ActionZoomIn)
			case uv.MouseWheelDown:
				v.Apply(viewer.ActionZoomOut)
			}
		}
		return false
	}

	targetDuration := time.Second / time.Duration(max(vf.fps, 1))
	lastFrame := time.Now()
	events := term.Events()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

	drain:
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return nil
				}
				if handle(ev) {
					return nil
				}
			default:
				break drain
			}
		}

		now := time.Now()
		v.Step(now.Sub(lastFrame).Seconds())
		lastFrame = now

		// Bad mesh data is logged by the renderer; the frame is still shown.
		_ = v.Render()

		v.Renderer().Framebuffer().Draw(term, uv.Rect(0, 0, width, height))
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}

		hud.Tick(now)
		st := v.Status()
		if loadErr != nil {
			st.Name = "failed to load model, see " + vf.logFile
		}
		if err := hud.Render(os.Stdout, width, height, st, v.ShowHUD); err != nil {
			return fmt.Errorf("hud: %w", err)
		}

		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
