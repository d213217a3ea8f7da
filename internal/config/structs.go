// Package config loads application configuration from files, environment
// variables and defaults.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete configuration for the fieldex application.
// It covers all commands (extract, serve, schema) and supports loading from
// configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output" json:"output"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server" json:"server"`
}

// PipelineConfig contains extraction pipeline settings.
type PipelineConfig struct {
	Language      string        `mapstructure:"language" yaml:"language" json:"language"`
	SchemaFile    string        `mapstructure:"schema_file" yaml:"schema_file" json:"schema_file"`
	IoUThreshold  float64       `mapstructure:"iou_threshold" yaml:"iou_threshold" json:"iou_threshold"`
	EngineTimeout time.Duration `mapstructure:"engine_timeout" yaml:"engine_timeout" json:"engine_timeout"`
	StreamDelay   time.Duration `mapstructure:"stream_delay" yaml:"stream_delay" json:"stream_delay"`
	Suggestions   bool          `mapstructure:"suggestions" yaml:"suggestions" json:"suggestions"`

	// Engines lists replay engines backed by recognition output files.
	Engines []EngineConfig `mapstructure:"engines" yaml:"engines" json:"engines"`
}

// EngineConfig describes one configured recognition engine.
type EngineConfig struct {
	Name        string `mapstructure:"name" yaml:"name" json:"name"`
	RegionsFile string `mapstructure:"regions_file" yaml:"regions_file" json:"regions_file"`
}

// OutputConfig contains result output settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"` // json, text or csv
	File   string `mapstructure:"file" yaml:"file" json:"file"`       // empty writes to stdout
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string        `mapstructure:"host" yaml:"host" json:"host"`
	Port           int           `mapstructure:"port" yaml:"port" json:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" json:"write_timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes" json:"max_upload_bytes"`
	CORSEnabled    bool          `mapstructure:"cors_enabled" yaml:"cors_enabled" json:"cors_enabled"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Pipeline: PipelineConfig{
			Language:      "en",
			IoUThreshold:  0.5,
			EngineTimeout: 30 * time.Second,
			StreamDelay:   50 * time.Millisecond,
			Suggestions:   true,
		},
		Output: OutputConfig{
			Format: "json",
		},
		Server: ServerConfig{
			Host:           "localhost",
			Port:           8080,
			ReadTimeout:    60 * time.Second,
			WriteTimeout:   60 * time.Second,
			MaxUploadBytes: 50 << 20,
			CORSEnabled:    true,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %q", c.LogLevel)
	}

	if c.Pipeline.Language == "" && c.Pipeline.SchemaFile == "" {
		return fmt.Errorf("pipeline.language or pipeline.schema_file must be set")
	}
	if c.Pipeline.IoUThreshold <= 0 || c.Pipeline.IoUThreshold >= 1 {
		return fmt.Errorf("pipeline.iou_threshold must be in (0, 1), got %v", c.Pipeline.IoUThreshold)
	}
	if c.Pipeline.EngineTimeout <= 0 {
		return fmt.Errorf("pipeline.engine_timeout must be positive, got %v", c.Pipeline.EngineTimeout)
	}
	if c.Pipeline.StreamDelay < 0 {
		return fmt.Errorf("pipeline.stream_delay must not be negative, got %v", c.Pipeline.StreamDelay)
	}

	switch c.Output.Format {
	case "json", "text", "csv":
	default:
		return fmt.Errorf("invalid output.format: %q", c.Output.Format)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	return nil
}
