package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/softraster/pkg/render"
)

func TestFramePath(t *testing.T) {
	tests := []struct {
		pattern string
		i, n    int
		want    string
	}{
		{"frame.png", 0, 1, "frame.png"},
		{"frame.png", 3, 10, "frame-003.png"},
		{"out/spin.bmp", 12, 36, "out/spin-012.bmp"},
		{"f%04d.png", 7, 10, "f0007.png"},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := framePath(tc.pattern, tc.i, tc.n); got != tc.want {
				t.Errorf("framePath(%q, %d, %d) = %q, want %q", tc.pattern, tc.i, tc.n, got, tc.want)
			}
		})
	}
}

func TestSaveFrameFormat(t *testing.T) {
	fb := render.NewFramebuffer(4, 4)
	err := saveFrame(fb, filepath.Join(t.TempDir(), "frame.gif"))
	if !errors.Is(err, errUnsupportedFormat) {
		t.Errorf("saveFrame(.gif) = %v, want %v", err, errUnsupportedFormat)
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(cfgPath, []byte("width: 16\nheight: 16\nshading: diffuse\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	root := newRootCmd()
	root.SetErr(&stderr)
	root.SetArgs([]string{
		"render", "--config", cfgPath, "--width", "32", "--height", "24",
		"--frames", "2", "--out", filepath.Join(dir, "f.bmp"),
	})
	if err := root.Execute(); err != nil {
		t.Fatalf("render: %v\n%s", err, stderr.String())
	}

	for _, name := range []string{"f-000.bmp", "f-001.bmp"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing frame %s: %v", name, err)
		}
	}
	if !strings.Contains(stderr.String(), "frames written") {
		t.Errorf("log output missing completion: %q", stderr.String())
	}
}

func TestRenderCommandMissingModel(t *testing.T) {
	root := newRootCmd()
	root.SetErr(new(bytes.Buffer))
	root.SetOut(new(bytes.Buffer))
	root.SetArgs([]string{"render", filepath.Join(t.TempDir(), "missing.glb")})
	if err := root.Execute(); err == nil {
		t.Error("expected error for missing model")
	}
}

func TestResolveFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(cfgPath, []byte("width: 100\nshading: specular\nnormalMapping: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	root := newRootCmd()
	cmd, _, err := root.Find([]string{"render"})
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.ParseFlags([]string{"--config", cfgPath, "--shading", "combined", "--normal-map=false"}); err != nil {
		t.Fatal(err)
	}

	opts := &sceneFlags{}
	opts.configPath = cfgPath
	opts.shading = "combined"
	opts.normalMapping = false
	cfg, err := opts.resolve(cmd)
	if err != nil {
		t.Fatalf("resolve() = %v", err)
	}
	if cfg.Width != 100 {
		t.Errorf("width = %d, want 100 from config", cfg.Width)
	}
	if cfg.Shading != "combined" || cfg.NormalMapping {
		t.Errorf("flags not applied: shading=%q normalMapping=%v", cfg.Shading, cfg.NormalMapping)
	}
}

func TestConfigCommand(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"config"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "width: 640") {
		t.Errorf("config output = %q", out.String())
	}
}
