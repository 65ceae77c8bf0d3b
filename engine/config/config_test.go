package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, common.Extent{Width: 1024, Height: 768}, cfg.Image)
	assert.Equal(t, uint32(32), cfg.TileSize)
	assert.Equal(t, uint32(100), cfg.SampleCeiling)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "rt.toml", `
backend = "wgpu"
sample_ceiling = 64
log_level = "debug"

[image]
width = 512
height = 256
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendWGPU, cfg.Backend)
	assert.Equal(t, uint32(64), cfg.SampleCeiling)
	assert.Equal(t, common.Extent{Width: 512, Height: 256}, cfg.Image)
	// untouched keys keep their defaults
	assert.Equal(t, uint32(32), cfg.TileSize)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "rt.yaml", `
image:
  width: 64
  height: 64
frames: 5
animate_light: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Frames)
	assert.True(t, cfg.AnimateLight)
	assert.Equal(t, common.Extent{Width: 64, Height: 64}, cfg.Image)
}

func TestLoadUnsupported(t *testing.T) {
	path := writeFile(t, "rt.json", `{}`)
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestValidate(t *testing.T) {
	specs := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"zero width", func(c *Config) { c.Image.Width = 0 }, false},
		{"unaligned", func(c *Config) { c.Image.Width = 1000 }, false},
		{"unaligned allowed", func(c *Config) { c.Image.Width = 1000; c.AllowPartialTiles = true }, true},
		{"tile not multiple of 8", func(c *Config) { c.TileSize = 12; c.AllowPartialTiles = true }, false},
		{"tile 16", func(c *Config) { c.TileSize = 16 }, true},
		{"zero ceiling", func(c *Config) { c.SampleCeiling = 0 }, false},
		{"bad backend", func(c *Config) { c.Backend = "vulkan" }, false},
		{"no workers", func(c *Config) { c.ComputeWorkers = 0 }, false},
		{"bad level", func(c *Config) { c.LogLevel = "chatty" }, false},
	}

	for _, s := range specs {
		cfg := Default()
		s.mutate(&cfg)
		err := cfg.Validate()
		if s.ok {
			assert.NoError(t, err, s.name)
		} else {
			assert.Error(t, err, s.name)
		}
	}

	cfg := Default()
	cfg.Image.Height = 770
	assert.ErrorIs(t, cfg.Validate(), ErrImageNotTileAligned)
}
