package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/lumen/cmd"
	"github.com/achilleasa/lumen/renderer"
	"github.com/achilleasa/lumen/scene"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "lumen"
	app.Usage = "render scenes using progressive path tracing"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}

	sceneUsage := fmt.Sprintf("[scene]\n\n   scene may be a built-in scene %v or the path/URL to a scene file (default: %s)", scene.BuiltinNames(), scene.DefaultSceneName)

	app.Commands = []cli.Command{
		{
			Name:   "list-devices",
			Usage:  "list available devices",
			Action: cmd.ListDevices,
		},
		{
			Name:      "scene",
			Usage:     "display scene contents",
			ArgsUsage: sceneUsage,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Usage: "if specified, write the scene in text format to this file",
				},
			},
			Action: cmd.ShowSceneInfo,
		},
		{
			Name:   "render",
			Usage:  "render scene",
			Action: nil,
			Subcommands: []cli.Command{
				{
					Name:  "frame",
					Usage: "render scene to an image file",
					Description: `
Accumulate the requested number of samples per pixel and write the tonemapped
result to a PNG file. The normalized radiance may optionally be exported as
an OpenEXR image.`,
					ArgsUsage: sceneUsage,
					Flags: append(renderFlags(),
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame.png",
							Usage: "image filename for the rendered frame",
						},
						cli.StringFlag{
							Name:  "exr",
							Usage: "if specified, also write the normalized radiance to this OpenEXR file",
						},
					),
					Action: cmd.RenderFrame,
				},
				{
					Name:  "interactive",
					Usage: "render scene progressively and serve previews over http",
					Description: `
Keep accumulating samples while serving the current frame at /frame.png and
render statistics at /stats. POST /reset discards accumulated samples and
POST /camera updates the aperture_size and focal_plane camera settings.
Setting --frames to 0 accumulates samples until interrupted.`,
					ArgsUsage: sceneUsage,
					Flags: append(renderFlags(),
						cli.StringFlag{
							Name:  "listen",
							Value: renderer.DefaultOptions().ListenAddr,
							Usage: "address for the preview server",
						},
					),
					Action: cmd.RenderInteractive,
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}

// Flags shared by the render subcommands.
func renderFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: int(renderer.DefaultFrameW),
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: int(renderer.DefaultFrameH),
			Usage: "frame height",
		},
		cli.IntFlag{
			Name:  "frames, spp",
			Value: int(renderer.DefaultNumFrames),
			Usage: "number of progressive frames (samples per pixel)",
		},
		cli.IntFlag{
			Name:  "tracers",
			Value: 1,
			Usage: "number of tracers to spawn per device",
		},
		cli.Float64Flag{
			Name:  "gamma",
			Value: 2.2,
			Usage: "gamma for tone-mapping",
		},
		cli.Float64Flag{
			Name:  "exposure",
			Value: 1.0,
			Usage: "camera exposure for tone-mapping",
		},
		cli.Float64Flag{
			Name:  "aperture",
			Usage: "override the camera lens aperture",
		},
		cli.Float64Flag{
			Name:  "focal-plane",
			Usage: "override the camera focal plane distance",
		},
		cli.Int64Flag{
			Name:  "seed",
			Usage: "seed for the per-frame random seeds; 0 selects a time-based seed",
		},
		cli.StringSliceFlag{
			Name:  "disable, d",
			Value: &cli.StringSlice{},
			Usage: "disable integrator feature (light, bounce, throughput, halton, importance-sampling, aa)",
		},
		cli.StringSliceFlag{
			Name:  "enable, e",
			Value: &cli.StringSlice{},
			Usage: "enable integrator feature (jitter)",
		},
		cli.StringSliceFlag{
			Name:  "blacklist, b",
			Value: &cli.StringSlice{},
			Usage: "blacklist devices whose names contain this value",
		},
		cli.BoolFlag{
			Name:  "perfect-scheduler",
			Usage: "balance blocks using measured tracer render times",
		},
	}
}
