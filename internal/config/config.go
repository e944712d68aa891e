// Package config loads sweep settings from a single YAML file.
//
// The file is named by the --config flag or the SWEEP_CONFIG environment
// variable. There is no discovery: without either, built-in defaults
// apply. Command-line flags override file values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable consulted when --config is unset.
const EnvVar = "SWEEP_CONFIG"

// Config is the complete sweep configuration.
type Config struct {
	Chart  ChartConfig  `yaml:"chart"`
	Source SourceConfig `yaml:"source"`
}

// ChartConfig sizes the chart and its projection.
type ChartConfig struct {
	// Capacity is the device buffer size in vertices.
	Capacity int `yaml:"capacity"`

	// RingCapacity bounds samples waiting for the next frame. Power of two.
	RingCapacity int `yaml:"ring_capacity"`

	// TimeRangeMs is the width of the sweep window.
	TimeRangeMs float64 `yaml:"time_range_ms"`

	MinY float64 `yaml:"min_y"`
	MaxY float64 `yaml:"max_y"`

	// Primitive is one of points, line-strip, lines.
	Primitive string `yaml:"primitive"`

	// FPS is the render tick rate.
	FPS int `yaml:"fps"`
}

// SourceConfig selects and tunes the signal producer.
type SourceConfig struct {
	// Kind is ecg, sine or file.
	Kind string `yaml:"kind"`

	// Path is the recording for kind file.
	Path string `yaml:"path"`

	// RateHz is the output sample rate.
	RateHz float64 `yaml:"rate_hz"`

	HeartRate   float64 `yaml:"heart_rate"`
	FrequencyHz float64 `yaml:"frequency_hz"`
	Amplitude   float64 `yaml:"amplitude"`

	// Play sends file sources to the audio device.
	Play bool `yaml:"play"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Chart: ChartConfig{
			Capacity:     2048,
			RingCapacity: 4096,
			TimeRangeMs:  4000,
			MinY:         -1.5,
			MaxY:         2.0,
			Primitive:    "line-strip",
			FPS:          30,
		},
		Source: SourceConfig{
			Kind:        "ecg",
			RateHz:      250,
			HeartRate:   72,
			FrequencyHz: 1.0,
			Amplitude:   1.0,
		},
	}
}

// Path returns the config file to load: flagPath if set, else the
// SWEEP_CONFIG environment variable. Empty means use defaults.
func Path(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	return os.Getenv(EnvVar)
}

// Load returns defaults merged with the file at path. An empty path
// yields the defaults alone.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := cfg.decode(data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// decode merges YAML into c. Unknown keys are rejected so typos surface.
func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	ch := c.Chart
	if ch.Capacity < 1 {
		errs = append(errs, fmt.Errorf("chart.capacity must be positive, got %d", ch.Capacity))
	}
	if ch.RingCapacity < 1 || ch.RingCapacity&(ch.RingCapacity-1) != 0 {
		errs = append(errs, fmt.Errorf("chart.ring_capacity must be a power of two, got %d", ch.RingCapacity))
	}
	if ch.TimeRangeMs <= 0 {
		errs = append(errs, fmt.Errorf("chart.time_range_ms must be positive, got %v", ch.TimeRangeMs))
	}
	if ch.MinY >= ch.MaxY {
		errs = append(errs, fmt.Errorf("chart.min_y (%v) must be below chart.max_y (%v)", ch.MinY, ch.MaxY))
	}
	switch ch.Primitive {
	case "points", "line-strip", "lines":
	default:
		errs = append(errs, fmt.Errorf("chart.primitive must be points, line-strip or lines, got %q", ch.Primitive))
	}
	if ch.FPS < 1 || ch.FPS > 240 {
		errs = append(errs, fmt.Errorf("chart.fps must be between 1 and 240, got %d", ch.FPS))
	}

	src := c.Source
	switch src.Kind {
	case "ecg":
		if src.HeartRate <= 0 {
			errs = append(errs, fmt.Errorf("source.heart_rate must be positive, got %v", src.HeartRate))
		}
	case "sine":
		if src.FrequencyHz <= 0 {
			errs = append(errs, fmt.Errorf("source.frequency_hz must be positive, got %v", src.FrequencyHz))
		}
	case "file":
		if src.Path == "" {
			errs = append(errs, errors.New("source.path is required for kind file"))
		}
	default:
		errs = append(errs, fmt.Errorf("source.kind must be ecg, sine or file, got %q", src.Kind))
	}
	if src.RateHz <= 0 {
		errs = append(errs, fmt.Errorf("source.rate_hz must be positive, got %v", src.RateHz))
	}

	return errors.Join(errs...)
}
