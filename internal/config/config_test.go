package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/image-framer/pkg/types"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 500*time.Millisecond, cfg.Batch.Delay)
	assert.Equal(t, "-framed", cfg.Output.Suffix)
	assert.Equal(t, 15.0, cfg.Frame.MarginMM)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Frame.CaptionText = "Summer"
	cfg.Frame.Rounded = true
	cfg.Batch.Delay = 750 * time.Millisecond
	cfg.Caption.Backend = "gemini"
	require.NoError(t, cfg.SaveToFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "delay: 750ms")

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("frame:\n  margin_mm: 20\noutput:\n  format: webp\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 20.0, cfg.Frame.MarginMM)
	assert.Equal(t, "webp", cfg.Output.Format)
	assert.Equal(t, 24.0, cfg.Frame.FontSizePt)
	assert.Equal(t, "ollama", cfg.Caption.Backend)
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"frame": {"line_color": "#ff0000"}}`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", cfg.Frame.LineColor)
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.yaml")

	_, err := LoadFromFile(missing)
	assert.Error(t, err)

	cfg, err := Load(missing)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvCaptionBackend, "llamacpp")
	t.Setenv(EnvCaptionURL, "http://gpu-box:8080")
	t.Setenv(EnvCaptionModel, "qwen2-vl")
	t.Setenv(EnvOutputDir, "/tmp/prints")

	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, "llamacpp", cfg.Caption.Backend)
	assert.Equal(t, "http://gpu-box:8080", cfg.Caption.URL)
	assert.Equal(t, "qwen2-vl", cfg.Caption.Model)
	assert.Equal(t, "/tmp/prints", cfg.Output.Dir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"nan margin", func(c *Config) { c.Frame.MarginMM = math.NaN() }},
		{"bad color", func(c *Config) { c.Frame.TextColor = "teal" }},
		{"format", func(c *Config) { c.Output.Format = "jpg" }},
		{"delay", func(c *Config) { c.Batch.Delay = -time.Second }},
		{"backend", func(c *Config) { c.Caption.Backend = "openai" }},
		{"quality", func(c *Config) { c.Caption.Quality = 0 }},
		{"send size", func(c *Config) { c.Caption.SendSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	cfg.Frame.MarginMM = math.NaN()
	assert.True(t, errors.Is(cfg.Validate(), types.ErrInvalidConfig))
}

func TestGetConfigPath(t *testing.T) {
	assert.Equal(t, "config.yaml", filepath.Base(GetConfigPath()))
}
