package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patient-monitor/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		config.EnvIngestHost, config.EnvIngestPort, config.EnvIngestBindAttempts,
		config.EnvIngestBindBackoff, config.EnvHTTPPort, config.EnvGRPCPort, config.EnvLogLevel,
	} {
		t.Setenv(key, "")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Ingest.Host)
	assert.Equal(t, 65432, cfg.Ingest.Port)
	assert.Equal(t, 5, cfg.Ingest.BindAttempts)
	assert.Equal(t, time.Second, cfg.Ingest.BindBackoff)
	assert.Equal(t, 5000, cfg.HTTPPort)
	assert.Equal(t, 50051, cfg.GRPCPort)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv(config.EnvIngestHost, "0.0.0.0")
	t.Setenv(config.EnvIngestPort, "7000")
	t.Setenv(config.EnvIngestBindBackoff, "250ms")
	t.Setenv(config.EnvIngestMaxConnections, "8")
	t.Setenv(config.EnvGRPCPort, "0")
	t.Setenv(config.EnvLogLevel, "warning")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Ingest.Host)
	assert.Equal(t, 7000, cfg.Ingest.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Ingest.BindBackoff)
	assert.Equal(t, 8, cfg.Ingest.MaxConnections)
	assert.Equal(t, 0, cfg.GRPCPort)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	tests := map[string]string{
		config.EnvIngestPort:         "not-a-port",
		config.EnvHTTPPort:           "70000",
		config.EnvIngestBindAttempts: "0",
		config.EnvIngestBindBackoff:  "soon",
	}

	for key, value := range tests {
		key, value := key, value
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)

			_, err := config.Load()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestLoadDevice(t *testing.T) {
	t.Setenv(config.EnvDeviceAddr, "10.0.0.1:65432")
	t.Setenv(config.EnvDeviceIDs, "3")
	t.Setenv(config.EnvDeviceInterval, "")
	t.Setenv(config.EnvDeviceRetryBackoff, "2s")

	cfg, err := config.LoadDevice()
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.1:65432", cfg.Addr)
	assert.Equal(t, 3, cfg.DeviceCount)
	assert.Equal(t, time.Second, cfg.Interval)
	assert.Equal(t, 2*time.Second, cfg.RetryBackoff)
}
