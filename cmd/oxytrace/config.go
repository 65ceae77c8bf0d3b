package main

import (
	"github.com/urfave/cli"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/config"
)

func pipelineFlags() []cli.Flag {
	return []cli.Flag{
		cli.UintFlag{Name: "width", Usage: "output image width"},
		cli.UintFlag{Name: "height", Usage: "output image height"},
		cli.UintFlag{Name: "tile", Usage: "tile edge length in pixels, a multiple of 8"},
		cli.UintFlag{Name: "ceiling", Usage: "accumulated frames after which dispatches stop"},
		cli.BoolFlag{Name: "allow-partial-tiles", Usage: "accept images that are not a multiple of the tile size"},
		cli.StringFlag{Name: "backend, b", Usage: "gpu backend: wgpu or recording"},
		cli.BoolFlag{Name: "fallback-adapter", Usage: "request a software adapter from the wgpu backend"},
		cli.IntFlag{Name: "workers", Usage: "goroutines used to marshal dirty tables"},
	}
}

func renderFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{Name: "frames, n", Usage: "number of frames to render; 0 runs until interrupted"},
		cli.BoolFlag{Name: "watch, w", Usage: "reload the scene file when it changes"},
		cli.BoolFlag{Name: "animate-light", Usage: "orbit the light around the scene"},
		cli.Float64Flag{Name: "profile", Usage: "seconds between profiler reports; 0 disables them"},
	}
}

// loadConfig builds the configuration from defaults, the optional --config file, command flags
// and the optional scene argument, in increasing priority, and validates it.
func loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := ctx.GlobalString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	if ctx.IsSet("width") {
		cfg.Image = common.Extent{Width: uint32(ctx.Uint("width")), Height: cfg.Image.Height}
	}
	if ctx.IsSet("height") {
		cfg.Image.Height = uint32(ctx.Uint("height"))
	}
	if ctx.IsSet("tile") {
		cfg.TileSize = uint32(ctx.Uint("tile"))
	}
	if ctx.IsSet("ceiling") {
		cfg.SampleCeiling = uint32(ctx.Uint("ceiling"))
	}
	if ctx.Bool("allow-partial-tiles") {
		cfg.AllowPartialTiles = true
	}
	if ctx.IsSet("backend") {
		cfg.Backend = ctx.String("backend")
	}
	if ctx.Bool("fallback-adapter") {
		cfg.ForceFallbackAdapter = true
	}
	if ctx.IsSet("workers") {
		cfg.ComputeWorkers = ctx.Int("workers")
	}
	if ctx.IsSet("frames") {
		cfg.Frames = ctx.Int("frames")
	}
	if ctx.Bool("animate-light") {
		cfg.AnimateLight = true
	}
	if ctx.IsSet("profile") {
		cfg.ProfileSeconds = ctx.Float64("profile")
	}
	if ctx.NArg() > 0 {
		cfg.Scene = ctx.Args().First()
	}

	return cfg, cfg.Validate()
}
