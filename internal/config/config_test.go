package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, "json", cfg.Reporting.Format)
	assert.True(t, cfg.Security.RequireConfirmation)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wipesim.yaml")

	cfg := Default()
	cfg.Server.Listen = ":9090"
	cfg.Simulation.SSDStepDelayMs = 1
	cfg.Simulation.Operator = "ops@corp.local"
	cfg.Reporting.Format = "csv"

	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [не карта"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty listen", func(c *Config) { c.Server.Listen = "" }},
		{"bad shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = "year" }},
		{"negative ssd delay", func(c *Config) { c.Simulation.SSDStepDelayMs = -1 }},
		{"huge hdd delay", func(c *Config) { c.Simulation.HDDStepDelayMs = 5000 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "TRACE" }},
		{"bad report format", func(c *Config) { c.Reporting.Format = "pdf" }},
		{"empty report path", func(c *Config) { c.Reporting.LocalPath = "" }},
		{"empty confirmation token", func(c *Config) { c.Security.ConfirmationToken = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestDelayAccessors(t *testing.T) {
	cfg := Default()
	cfg.Simulation.SSDStepDelayMs = 2
	cfg.Simulation.HDDStepDelayMs = 6

	assert.Equal(t, 2*time.Millisecond, cfg.SSDStepDelay())
	assert.Equal(t, 6*time.Millisecond, cfg.HDDStepDelay())
	assert.Less(t, cfg.SSDStepDelay(), cfg.HDDStepDelay())
}

func TestGetShutdownTimeoutFallback(t *testing.T) {
	cfg := Default()
	cfg.Server.ShutdownTimeout = ""
	assert.Equal(t, 10*time.Second, cfg.GetShutdownTimeout())

	cfg.Server.ShutdownTimeout = "30s"
	assert.Equal(t, 30*time.Second, cfg.GetShutdownTimeout())
}
