// Package config handles converter configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/rawscene/pkg/encoding"
	"github.com/Faultbox/rawscene/pkg/raw"
)

// Config holds all converter settings.
type Config struct {
	Convert  ConvertConfig  `yaml:"convert" toml:"convert"`
	Textures TexturesConfig `yaml:"textures" toml:"textures"`
	Names    NamesConfig    `yaml:"names" toml:"names"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// ConvertConfig holds the geometry pass settings.
type ConvertConfig struct {
	ComputeNormals string   `yaml:"compute_normals" toml:"compute_normals"` // never, broken, missing, always
	ShortIndices   bool     `yaml:"short_indices" toml:"short_indices"`
	KeepAttribs    []string `yaml:"keep_attribs" toml:"keep_attribs"` // empty keeps everything
	ForceDiscrete  bool     `yaml:"force_discrete" toml:"force_discrete"`
	FlipV          bool     `yaml:"flip_v" toml:"flip_v"`
}

// TexturesConfig holds texture lookup settings.
type TexturesConfig struct {
	SearchPaths []string `yaml:"search_paths" toml:"search_paths"`
	Probe       bool     `yaml:"probe" toml:"probe"`               // read image headers
	DetectAlpha bool     `yaml:"detect_alpha" toml:"detect_alpha"` // decode pixels to find transparency
}

// NamesConfig holds legacy name decoding settings.
type NamesConfig struct {
	Encoding string `yaml:"encoding" toml:"encoding"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level" toml:"level"`
	LogFile    string `yaml:"log_file" toml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" toml:"max_backups"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			ComputeNormals: "broken",
			ShortIndices:   false,
			ForceDiscrete:  false,
		},
		Textures: TexturesConfig{
			Probe:       true,
			DetectAlpha: true,
		},
		Names: NamesConfig{
			Encoding: "utf-8",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
	}
}

// ComputeNormalsOption parses Convert.ComputeNormals.
func (c *ConvertConfig) ComputeNormalsOption() (raw.ComputeNormalsOption, error) {
	if c.ComputeNormals == "" {
		return raw.ComputeNormalsNever, nil
	}
	return raw.ParseComputeNormalsOption(c.ComputeNormals)
}

// KeepAttributes parses Convert.KeepAttribs into a mask.
func (c *ConvertConfig) KeepAttributes() (raw.VertexAttribute, error) {
	if len(c.KeepAttribs) == 0 {
		return raw.AttribAll, nil
	}
	var mask raw.VertexAttribute
	for _, name := range c.KeepAttribs {
		attr, ok := raw.ParseVertexAttribute(name)
		if !ok {
			return 0, fmt.Errorf("keep_attribs: unknown attribute %q", name)
		}
		mask |= attr
	}
	return mask, nil
}

// Validate checks every enumerated setting.
func (c *Config) Validate() error {
	if _, err := c.Convert.ComputeNormalsOption(); err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	if _, err := c.Convert.KeepAttributes(); err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	if _, err := encoding.NewDecoder(c.Names.Encoding); err != nil {
		return fmt.Errorf("names: %w", err)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging: unknown level %q", c.Logging.Level)
	}
	return nil
}
