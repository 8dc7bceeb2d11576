package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	// Silence detection settings
	Detect DetectConfig `yaml:"detect"`

	// Cache settings
	Cache CacheConfig `yaml:"cache"`

	// File extensions handled in directory mode
	Extensions []string `yaml:"extensions" validate:"min=1,dive,startswith=."`

	// Name of the output subdirectory created next to the input
	OutputDirName string `yaml:"output_dir_name" env:"TRIM_OUTPUT_DIR" validate:"required"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path" env:"TRIM_FFMPEG_PATH"`
	ProbePath  string `yaml:"probe_path" env:"TRIM_FFPROBE_PATH"`
}

type DetectConfig struct {
	// NoiseDb is the silencedetect threshold in dB; audio below it counts
	// as silence. Always negative.
	NoiseDb float64 `yaml:"noise_db" env:"TRIM_NOISE_DB" validate:"lt=0"`

	// MinSilence is the shortest quiet passage, in seconds, reported as
	// a silence interval.
	MinSilence float64 `yaml:"min_silence" env:"TRIM_MIN_SILENCE" validate:"gt=0"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads configuration from file or returns defaults. Environment
// variables override file values; the result is validated before use.
// A caller-named path must exist; only the discovered candidate locations
// may be silently absent.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		path = findConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case explicit || !os.IsNotExist(err):
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config env overrides: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Matches reports whether a path carries one of the configured extensions.
func (c *Config) Matches(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range c.Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

func defaultConfig() *Config {
	return &Config{
		FFmpeg: FFmpegConfig{
			BinaryPath: "",
			ProbePath:  "",
		},
		Detect: DetectConfig{
			NoiseDb:    -40,
			MinSilence: 2.0,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Extensions:    []string{".mkv", ".mp4", ".mov", ".m4v", ".webm"},
		OutputDirName: "trimmed",
	}
}

func findConfigFile() string {
	candidates := []string{
		"./trimvideo.yaml",
		"./trimvideo.yml",
		filepath.Join(os.Getenv("HOME"), ".trimvideo", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
