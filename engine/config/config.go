// Package config holds the runtime configuration of the ray tracing pipeline and the loaders for
// TOML and YAML configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/log"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Backend names accepted by Config.Backend.
const (
	BackendWGPU      = "wgpu"
	BackendRecording = "recording"
)

// Defaults applied by Default.
const (
	DefaultWidth         uint32 = 1024
	DefaultHeight        uint32 = 768
	DefaultTileSize      uint32 = 32
	DefaultSampleCeiling uint32 = 100
)

var (
	// ErrImageNotTileAligned is returned when the output image is not an exact multiple of the tile size.
	ErrImageNotTileAligned = errors.New("config: image dimensions are not a multiple of the tile size")

	// ErrUnsupportedFormat is returned by Load for file extensions other than .toml, .yaml and .yml.
	ErrUnsupportedFormat = errors.New("config: unsupported config file format")
)

// Config is the full set of knobs for a pipeline run.
type Config struct {
	// Image is the size of the output image written by the kernel.
	Image common.Extent `toml:"image" yaml:"image"`
	// TileSize is the edge length in pixels covered by one dispatched workgroup.
	TileSize uint32 `toml:"tile_size" yaml:"tile_size"`
	// SampleCeiling is the accumulation count after which dispatches stop until the next reset.
	SampleCeiling uint32 `toml:"sample_ceiling" yaml:"sample_ceiling"`
	// AllowPartialTiles disables the startup tile-multiple check. Dispatch bounds still use integer
	// division, so trailing pixels are never shaded.
	AllowPartialTiles bool `toml:"allow_partial_tiles" yaml:"allow_partial_tiles"`

	// Backend selects the GPU device implementation ("wgpu" or "recording").
	Backend string `toml:"backend" yaml:"backend"`
	// ForceFallbackAdapter requests a software adapter from the wgpu backend.
	ForceFallbackAdapter bool `toml:"force_fallback_adapter" yaml:"force_fallback_adapter"`

	// ComputeWorkers is the number of goroutines used to marshal dirty tables.
	ComputeWorkers int `toml:"compute_workers" yaml:"compute_workers"`
	// LogLevel is one of debug, info, notice, warning or error.
	LogLevel string `toml:"log_level" yaml:"log_level"`
	// ProfileSeconds is the interval in seconds between profiler reports; 0 disables them.
	ProfileSeconds float64 `toml:"profile_seconds" yaml:"profile_seconds"`

	// Scene is an optional scene description file. The built-in demo scene is used when empty.
	Scene string `toml:"scene" yaml:"scene"`
	// Frames is the number of frames a headless run renders.
	Frames int `toml:"frames" yaml:"frames"`
	// AnimateLight rotates the directional light around the scene as frames advance.
	AnimateLight bool `toml:"animate_light" yaml:"animate_light"`
}

// Default returns the configuration used when no file or flag overrides a value.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Image:          common.Extent{Width: DefaultWidth, Height: DefaultHeight},
		TileSize:       DefaultTileSize,
		SampleCeiling:  DefaultSampleCeiling,
		Backend:        BackendRecording,
		ComputeWorkers: 2,
		LogLevel:       "notice",
		ProfileSeconds: 1,
		Frames:         120,
	}
}

// Load reads a configuration file on top of Default. The format is chosen by extension.
//
// Parameters:
//   - path: the path of a .toml, .yaml or .yml file
//
// Returns:
//   - Config: the merged configuration (not yet validated)
//   - error: an error if the file cannot be read or decoded
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return cfg, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the pipeline cannot run with.
//
// Returns:
//   - error: the first problem found, or nil
func (c Config) Validate() error {
	if c.Image.Width == 0 || c.Image.Height == 0 {
		return fmt.Errorf("config: image dimensions must be positive, got %s", c.Image)
	}
	if c.TileSize == 0 || c.TileSize%8 != 0 {
		return fmt.Errorf("config: tile size must be a positive multiple of 8, got %d", c.TileSize)
	}
	if !c.AllowPartialTiles && (c.Image.Width%c.TileSize != 0 || c.Image.Height%c.TileSize != 0) {
		return fmt.Errorf("%w: %s with tile %d", ErrImageNotTileAligned, c.Image, c.TileSize)
	}
	if c.SampleCeiling == 0 {
		return errors.New("config: sample ceiling must be positive")
	}
	switch c.Backend {
	case BackendWGPU, BackendRecording:
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	if c.ComputeWorkers < 1 {
		return errors.New("config: compute workers must be at least 1")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.ProfileSeconds < 0 {
		return errors.New("config: profile interval must not be negative")
	}
	if c.Frames < 0 {
		return errors.New("config: frames must not be negative")
	}
	return nil
}
