package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "en", cfg.Pipeline.Language)
	assert.InDelta(t, 0.5, cfg.Pipeline.IoUThreshold, 1e-9)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"no language or schema file", func(c *Config) { c.Pipeline.Language = "" }},
		{"iou out of range", func(c *Config) { c.Pipeline.IoUThreshold = 1.5 }},
		{"zero engine timeout", func(c *Config) { c.Pipeline.EngineTimeout = 0 }},
		{"negative stream delay", func(c *Config) { c.Pipeline.StreamDelay = -time.Second }},
		{"bad output format", func(c *Config) { c.Output.Format = "xml" }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"zero upload limit", func(c *Config) { c.Server.MaxUploadBytes = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSchemaFileAlone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pipeline.Language = ""
	cfg.Pipeline.SchemaFile = "custom.yaml"
	assert.NoError(t, cfg.Validate())
}

func TestLoaderDefaults(t *testing.T) {
	l := NewLoaderWith(viper.New())
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Pipeline.Language, cfg.Pipeline.Language)
	assert.Equal(t, DefaultConfig().Server.Port, cfg.Server.Port)
}

func TestLoaderWithFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fieldex.yaml")
	content := []byte(`
log_level: debug
pipeline:
  language: hi
  iou_threshold: 0.6
server:
  port: 9090
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := NewLoaderWith(viper.New()).LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "hi", cfg.Pipeline.Language)
	assert.InDelta(t, 0.6, cfg.Pipeline.IoUThreshold, 1e-9)
	assert.Equal(t, 9090, cfg.Server.Port)
	// untouched keys keep defaults
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoaderWithMissingFile(t *testing.T) {
	_, err := NewLoaderWith(viper.New()).LoadWithFile("no-such-file.yaml")
	assert.Error(t, err)
}

func TestLoaderEnvOverride(t *testing.T) {
	t.Setenv("FIELDEX_PIPELINE_LANGUAGE", "hi")

	cfg, err := NewLoaderWith(viper.New()).Load()
	require.NoError(t, err)
	assert.Equal(t, "hi", cfg.Pipeline.Language)
}

func TestLoaderRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fieldex.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: xml\n"), 0o600))

	_, err := NewLoaderWith(viper.New()).LoadWithFile(path)
	assert.Error(t, err)
}
