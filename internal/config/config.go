// Package config loads fitsview settings from a YAML file. A missing file
// yields the defaults; values given on the command line override it.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/AnyUserName/fitsview/internal/encoder"
	"github.com/AnyUserName/fitsview/internal/profile"
)

// DefaultFile is looked up in the working directory when --config is not given.
const DefaultFile = "fitsview.yaml"

// Config is the contents of fitsview.yaml.
type Config struct {
	// Profile names the render profile used when --profile is not given.
	Profile string `yaml:"profile"`

	// Out is the default output directory of render.
	Out string `yaml:"out"`

	// Workers bounds parallel rendering; 0 means one per CPU.
	Workers int `yaml:"workers"`

	// Seed fixes the zscale sampling. 0 draws a fresh seed per run.
	Seed int64 `yaml:"seed"`

	// Contrast overrides the profile contrast when non-zero.
	Contrast float64 `yaml:"contrast,omitempty"`

	// Profiles adds named profiles or replaces built-in ones.
	Profiles map[string]profile.Profile `yaml:"profiles,omitempty"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Profile: profile.Default,
		Out:     "./fitsview_out",
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating the parent directory if needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate rejects settings the renderer cannot use.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if err := checkContrast(c.Contrast); err != nil {
		return err
	}
	for name, p := range c.Profiles {
		if name == "" {
			return errors.New("profile with empty name")
		}
		if len(p.Formats) == 0 {
			return fmt.Errorf("profile %q: no formats", name)
		}
		for _, f := range p.Formats {
			if !encoder.Supported(f) {
				return fmt.Errorf("profile %q: unknown format %q", name, f)
			}
		}
		if p.Quality < 0 || p.Quality > 100 {
			return fmt.Errorf("profile %q: quality %d outside 0-100", name, p.Quality)
		}
		if err := checkContrast(p.Contrast); err != nil {
			return fmt.Errorf("profile %q: %w", name, err)
		}
	}
	return nil
}

// ResolveProfile returns the named profile, or the configured default
// when name is empty.
func (c *Config) ResolveProfile(name string) profile.Profile {
	if name == "" {
		name = c.Profile
	}
	if name == "" {
		name = profile.Default
	}
	return profile.Resolve(name, c.Profiles)
}

func checkContrast(v float64) error {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("contrast must be finite and >= 0, got %v", v)
	}
	return nil
}
