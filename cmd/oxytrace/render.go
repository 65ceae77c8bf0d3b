package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli"

	"github.com/Carmen-Shannon/oxy-trace/engine"
	"github.com/Carmen-Shannon/oxy-trace/engine/config"
	"github.com/Carmen-Shannon/oxy-trace/engine/kernel"
	"github.com/Carmen-Shannon/oxy-trace/engine/light"
	"github.com/Carmen-Shannon/oxy-trace/engine/raytracer"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
	"github.com/Carmen-Shannon/oxy-trace/engine/scene"
)

// Render frames headless.
func renderScene(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	setupLogging(ctx, cfg.LogLevel)
	if err != nil {
		return err
	}

	if _, err := kernel.Validate(cfg.TileSize); err != nil {
		return err
	}

	s, loaded, err := loadScene(cfg.Scene)
	if err != nil {
		return err
	}
	sun := light.NewDirectional()
	animate := cfg.AnimateLight
	if loaded.Light != nil {
		d := loaded.Light.Direction
		sun.SetDirection(d[0], d[1], d[2])
		animate = animate || loaded.Light.Animate
	}

	backend, err := renderer.ParseBackendType(cfg.Backend)
	if err != nil {
		return err
	}
	device, err := renderer.NewDevice(backend,
		renderer.WithForceSoftwareRenderer(cfg.ForceFallbackAdapter),
		renderer.WithLabel("oxytrace"),
	)
	if err != nil {
		return err
	}
	defer device.Release()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	options := []engine.EngineBuilderOption{
		engine.WithScene(s),
		engine.WithLight(sun, animate),
		engine.WithProfiling(cfg.ProfileSeconds > 0, time.Duration(cfg.ProfileSeconds*float64(time.Second))),
		engine.WithPipelineOptions(pipelineOptions(cfg)...),
	}
	if ctx.Bool("watch") {
		if cfg.Scene == "" {
			return errors.New("--watch needs a scene file")
		}
		w, err := scene.NewWatcher(cfg.Scene)
		if err != nil {
			return err
		}
		go w.Run(runCtx)
		options = append(options, engine.WithSceneUpdates(w.Changes()))
	}

	e, err := engine.NewEngine(device, options...)
	if err != nil {
		return err
	}
	defer e.Release()

	start := time.Now()
	err = e.Run(runCtx, uint64(cfg.Frames))
	displayFrameStats(ctx.App.Writer, e.Profiler().Total(), e.Pipeline().Counter(), time.Since(start))
	return err
}

// pipelineOptions maps the configuration onto ray tracing pipeline options.
func pipelineOptions(cfg config.Config) []raytracer.PipelineBuilderOption {
	options := []raytracer.PipelineBuilderOption{
		raytracer.WithImageSize(cfg.Image),
		raytracer.WithTileSize(cfg.TileSize),
		raytracer.WithCeiling(cfg.SampleCeiling),
		raytracer.WithComputeWorkers(cfg.ComputeWorkers),
	}
	if cfg.AllowPartialTiles {
		options = append(options, raytracer.WithAllowPartialTiles())
	}
	return options
}

// loadScene populates a new scene from path, or with the demo scene when path is empty.
func loadScene(path string) (scene.Scene, *scene.Loaded, error) {
	if path == "" {
		s := scene.NewScene(scene.WithName("demo"))
		return s, scene.Demo(s), nil
	}
	f, err := scene.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	s := scene.NewScene(scene.WithName(f.Name))
	loaded, err := f.ApplyTo(s)
	if err != nil {
		return nil, nil, err
	}
	return s, loaded, nil
}
