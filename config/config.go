// Package config loads YAML run configuration for training and evaluation.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/davbzh/lstm-wikipedia/learning"
)

// Config describes one training or evaluation run.
type Config struct {
	// Mode is "quality" or "existence".
	Mode string `yaml:"mode"`
	// Bits is the number of encoder output bits fed to the predictor:
	// -1 uses the whole output, 0 disables the encoder.
	Bits int `yaml:"bits"`
	// FixedBits substitutes a constant vector for the encoder bits,
	// probing the predictor independent of the encoder. When set it takes
	// precedence over Bits.
	FixedBits []float64 `yaml:"fixed_bits"`
	// Iterations is the training iteration count.
	Iterations int `yaml:"iterations"`
	// Weighted enables size-of-change weighted learning.
	Weighted bool `yaml:"weighted"`
	// Balanced rebalances the training classes before training.
	Balanced bool `yaml:"balanced"`
	// Seed seeds the shared random source; 0 seeds from the clock.
	Seed int64 `yaml:"seed"`
	// DataPath is the SQLite dataset file.
	DataPath string `yaml:"data_path"`
	// ResultsDir receives persisted model artifacts.
	ResultsDir string `yaml:"results_dir"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Mode:       "quality",
		Bits:       -1,
		Iterations: 1000,
		Balanced:   true,
		DataPath:   "data/authors.db",
		ResultsDir: "results",
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	if c.Mode != "quality" && c.Mode != "existence" {
		return fmt.Errorf("config: mode must be quality or existence, got %q", c.Mode)
	}
	if c.Bits < -1 {
		return fmt.Errorf("config: bits must be -1, 0 or positive, got %d", c.Bits)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("config: negative iterations %d", c.Iterations)
	}
	return nil
}

// Quality reports whether the run uses the quality feature convention.
func (c Config) Quality() bool { return c.Mode == "quality" }

// Usage maps the configured bit count onto an encoder usage mode.
func (c Config) Usage() learning.EncoderUsage {
	switch {
	case len(c.FixedBits) > 0:
		return learning.UseFixed(c.FixedBits...)
	case c.Bits < 0:
		return learning.UseFull()
	case c.Bits == 0:
		return learning.Disabled()
	default:
		return learning.UseSlice(c.Bits)
	}
}
