package main

import (
	"os"

	"github.com/urfave/cli"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "oxytrace"
	app.Usage = "progressive compute ray tracing of instanced triangle scenes"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load settings from a .toml or .yaml file",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render frames headless",
			Description: `
Load a scene (or the built-in demo scene), upload it to the selected backend and
run the progressive ray tracer for a number of frames. Dispatches stop once the
accumulation counter passes the sample ceiling and resume whenever the scene
changes. With --watch, edits to the scene file are applied between frames.`,
			ArgsUsage: "[scene_file]",
			Flags:     append(pipelineFlags(), renderFlags()...),
			Action:    renderScene,
		},
		{
			Name:  "validate-kernel",
			Usage: "check the ray tracing kernel against its binding contract",
			Description: `
Expand the kernel source for a tile size, compare every declared binding with the
host-side layouts and GPU record sizes, and compile it with naga.`,
			Flags: []cli.Flag{
				cli.UintFlag{
					Name:  "tile",
					Usage: "tile edge length in pixels (default from config)",
				},
			},
			Action: validateKernel,
		},
		{
			Name:      "inspect",
			Usage:     "print the deduplicated tables extracted from a scene",
			ArgsUsage: "[scene_file]",
			Action:    inspectScene,
		},
	}
	return app
}
