package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/menta2k/image-framer/internal/utils"
	"github.com/menta2k/image-framer/pkg/types"
)

// Config holds the application configuration
type Config struct {
	Frame   types.FrameConfig `yaml:"frame"`
	Output  OutputConfig      `yaml:"output"`
	Batch   BatchConfig       `yaml:"batch"`
	Caption CaptionConfig     `yaml:"caption"`
	Fonts   FontsConfig       `yaml:"fonts"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // png or webp, both lossless
	Suffix string `yaml:"suffix"`
}

// BatchConfig holds configuration for batch export
type BatchConfig struct {
	Delay time.Duration `yaml:"delay"`
}

// CaptionConfig holds configuration for caption suggestion
type CaptionConfig struct {
	Backend    string        `yaml:"backend"` // ollama, llamacpp or gemini
	URL        string        `yaml:"url"`
	Model      string        `yaml:"model"`
	Prompt     string        `yaml:"prompt,omitempty"`
	SendFormat string        `yaml:"send_format"`
	SendSize   int           `yaml:"send_size"`
	Quality    int           `yaml:"quality"`
	Timeout    time.Duration `yaml:"timeout"`
}

// FontsConfig holds configuration for caption font lookup
type FontsConfig struct {
	Dirs       []string `yaml:"dirs,omitempty"`
	SystemScan bool     `yaml:"system_scan"`
}

// Environment variables that override file values
const (
	EnvCaptionBackend = "IMAGE_FRAMER_CAPTION_BACKEND"
	EnvCaptionURL     = "IMAGE_FRAMER_CAPTION_URL"
	EnvCaptionModel   = "IMAGE_FRAMER_CAPTION_MODEL"
	EnvOutputDir      = "IMAGE_FRAMER_OUTPUT_DIR"
)

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Frame: types.DefaultFrameConfig(),
		Output: OutputConfig{
			Dir:    "./framed",
			Format: "png",
			Suffix: "-framed",
		},
		Batch: BatchConfig{
			Delay: 500 * time.Millisecond,
		},
		Caption: CaptionConfig{
			Backend:    "ollama",
			URL:        "http://localhost:11434",
			Model:      "llava",
			SendFormat: "jpg",
			SendSize:   768,
			Quality:    85,
			Timeout:    2 * time.Minute,
		},
		Fonts: FontsConfig{
			SystemScan: true,
		},
	}
}

// LoadFromFile loads configuration from a YAML file. Fields missing from the
// file keep their defaults. JSON is valid YAML, so JSON files load too.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load reads filename when it exists and falls back to defaults otherwise.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}
	return LoadFromFile(filename)
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(filename string) error {
	if err := utils.EnsureDir(filepath.Dir(filename)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides file values with IMAGE_FRAMER_* environment variables
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvCaptionBackend); v != "" {
		c.Caption.Backend = v
	}
	if v := os.Getenv(EnvCaptionURL); v != "" {
		c.Caption.URL = v
	}
	if v := os.Getenv(EnvCaptionModel); v != "" {
		c.Caption.Model = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.Output.Dir = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Frame.Validate(); err != nil {
		return fmt.Errorf("frame: %w", err)
	}

	switch strings.ToLower(c.Output.Format) {
	case "png", "webp":
	default:
		return fmt.Errorf("output.format must be png or webp, got %q", c.Output.Format)
	}

	if c.Batch.Delay < 0 {
		return fmt.Errorf("batch.delay must not be negative")
	}

	switch c.Caption.Backend {
	case "ollama", "llamacpp", "gemini":
	default:
		return fmt.Errorf("caption.backend must be ollama, llamacpp or gemini, got %q", c.Caption.Backend)
	}

	if c.Caption.Quality < 1 || c.Caption.Quality > 100 {
		return fmt.Errorf("caption.quality must be between 1 and 100")
	}

	if c.Caption.SendSize < 1 {
		return fmt.Errorf("caption.send_size must be positive")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.yaml"
	}
	return filepath.Join(home, ".config", "image-framer", "config.yaml")
}
