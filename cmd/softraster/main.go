// softraster - CPU software rasterizer
// Renders glTF models in the terminal or headlessly to image files.
//
// Viewer controls:
//
//	Mouse drag  - Rotate model
//	Scroll      - Zoom in/out
//	W/S/A/D     - Pitch and yaw
//	Q/E         - Roll left/right
//	Space       - Random spin
//	R           - Reset view
//	+/-         - Zoom
//	X           - Wireframe overlay
//	Z           - Depth view
//	M           - Next shading mode
//	N           - Toggle normal mapping
//	?           - Toggle HUD
//	Esc         - Quit
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/taigrr/softraster/pkg/config"
)

var version = "dev"

func main() {
	if err := fang.Execute(context.Background(), newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &sceneFlags{}
	root := &cobra.Command{
		Use:   "softraster",
		Short: "CPU software rasterizer for glTF models",
		Long: "softraster draws triangle meshes on the CPU with perspective-correct " +
			"shading, normal mapping and a depth buffer. Without a model it renders " +
			"a built-in demo scene.",
		SilenceUsage: true,
	}
	opts.register(root)

	root.AddCommand(newViewCmd(opts), newRenderCmd(opts), newConfigCmd())
	return root
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config [file]",
		Short: "Print the default configuration or write it to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if len(args) == 1 {
				return cfg.Write(args[0])
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
