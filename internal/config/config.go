package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/inamate/arsketch/internal/sketch"
)

type Config struct {
	Port               int     `envconfig:"PORT" default:"8080" toml:"port" yaml:"port" json:"port"`
	AllowedOrigins     string  `envconfig:"ALLOWED_ORIGINS" default:"localhost:5173,localhost:3000" toml:"allowed_origins" yaml:"allowed_origins" json:"allowedOrigins"`
	LogLevel           string  `envconfig:"LOG_LEVEL" default:"info" toml:"log_level" yaml:"log_level" json:"logLevel"`
	LineDiameter       float64 `envconfig:"LINE_DIAMETER" default:"0.02" toml:"line_diameter" yaml:"line_diameter" json:"lineDiameter"`
	InterpolationSteps int     `envconfig:"INTERPOLATION_STEPS" default:"5" toml:"interpolation_steps" yaml:"interpolation_steps" json:"interpolationSteps"`
	MinPointDistance   float64 `envconfig:"MIN_POINT_DISTANCE" default:"0.02" toml:"min_point_distance" yaml:"min_point_distance" json:"minPointDistance"`
	PointOffset        float64 `envconfig:"POINT_OFFSET" default:"0.3" toml:"point_offset" yaml:"point_offset" json:"pointOffset"`
	RefineThreshold    int     `envconfig:"REFINE_THRESHOLD" default:"2" toml:"refine_threshold" yaml:"refine_threshold" json:"refineThreshold"`

	// ConfigFile names an optional TOML, YAML or JSON file. Keys present in
	// the file override the environment.
	ConfigFile string `envconfig:"CONFIG_FILE" toml:"-" yaml:"-" json:"-"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.ConfigFile != "" {
		if err := loadFile(cfg.ConfigFile, &cfg); err != nil {
			return nil, err
		}
	}
	if cfg.LineDiameter <= 0 || cfg.InterpolationSteps <= 0 {
		return nil, errors.New("line diameter and interpolation steps must be positive")
	}
	if cfg.MinPointDistance < 0 {
		return nil, errors.New("minimum point distance must not be negative")
	}
	return &cfg, nil
}

// loadFile decodes path over cfg based on its extension.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch ext := filepath.Ext(path); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("decode TOML: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file extension %q", ext)
	}
	return nil
}

// Origins returns the websocket origin patterns.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Level parses LogLevel, falling back to info.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Sketch returns the sketch settings for new sessions. Screen width is
// reported by each device when it connects.
func (c *Config) Sketch() sketch.Settings {
	s := sketch.DefaultSettings()
	s.LineDiameter = c.LineDiameter
	s.InterpolationSteps = c.InterpolationSteps
	s.MinPointDistance = c.MinPointDistance
	s.PointOffset = c.PointOffset
	s.RefineThreshold = c.RefineThreshold
	return s
}
