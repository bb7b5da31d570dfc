package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Ingest contains the TCP ingestion listener settings.
type Ingest struct {
	Host           string
	Port           int
	BindAttempts   int
	BindBackoff    time.Duration
	MaxConnections int
	MaxFrameBytes  int
}

// Config holds the server settings loaded from the environment.
type Config struct {
	Ingest          Ingest
	HTTPPort        int
	GRPCPort        int
	LogLevel        string
	ShutdownTimeout time.Duration
}

// Device holds the simulator settings.
type Device struct {
	Addr         string
	DeviceCount  int
	Interval     time.Duration
	RetryBackoff time.Duration
	LogLevel     string
}

// Load reads the server configuration, falling back to defaults for unset variables.
func Load() (*Config, error) {
	port, err := getEnvPort(EnvIngestPort, DefaultIngestPort)
	if err != nil {
		return nil, err
	}

	attempts, err := getEnvInt(EnvIngestBindAttempts, DefaultIngestBindAttempts)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvIngestBindAttempts, err)
	}
	if attempts < 1 {
		return nil, fmt.Errorf("invalid %s: must be at least 1", EnvIngestBindAttempts)
	}

	backoff, err := getEnvDuration(EnvIngestBindBackoff, DefaultIngestBindBackoff)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvIngestBindBackoff, err)
	}

	maxConnections, err := getEnvInt(EnvIngestMaxConnections, DefaultIngestMaxConnections)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvIngestMaxConnections, err)
	}

	maxFrame, err := getEnvInt(EnvIngestMaxFrameBytes, DefaultIngestMaxFrameBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvIngestMaxFrameBytes, err)
	}

	httpPort, err := getEnvPort(EnvHTTPPort, DefaultHTTPPort)
	if err != nil {
		return nil, err
	}

	grpcPort, err := getEnvPort(EnvGRPCPort, DefaultGRPCPort)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvShutdownTimeout, err)
	}

	return &Config{
		Ingest: Ingest{
			Host:           getEnvString(EnvIngestHost, DefaultIngestHost),
			Port:           port,
			BindAttempts:   attempts,
			BindBackoff:    backoff,
			MaxConnections: maxConnections,
			MaxFrameBytes:  maxFrame,
		},
		HTTPPort:        httpPort,
		GRPCPort:        grpcPort,
		LogLevel:        normalizeLogLevel(getEnvString(EnvLogLevel, DefaultLogLevel)),
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

// LoadDevice reads the simulator configuration.
func LoadDevice() (*Device, error) {
	count, err := getEnvInt(EnvDeviceIDs, DefaultDeviceIDs)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvDeviceIDs, err)
	}
	if count < 1 {
		return nil, fmt.Errorf("invalid %s: must be at least 1", EnvDeviceIDs)
	}

	interval, err := getEnvDuration(EnvDeviceInterval, DefaultDeviceInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvDeviceInterval, err)
	}

	backoff, err := getEnvDuration(EnvDeviceRetryBackoff, DefaultDeviceRetryBackoff)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvDeviceRetryBackoff, err)
	}

	return &Device{
		Addr:         getEnvString(EnvDeviceAddr, DefaultDeviceAddr),
		DeviceCount:  count,
		Interval:     interval,
		RetryBackoff: backoff,
		LogLevel:     normalizeLogLevel(getEnvString(EnvLogLevel, DefaultLogLevel)),
	}, nil
}

// getEnvString returns the variable or the default when it is unset.
func getEnvString(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}

func getEnvPort(key string, defaultValue int) (int, error) {
	port, err := getEnvInt(key, defaultValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if port < 0 || port > 65535 {
		return 0, fmt.Errorf("invalid %s: port %d out of range", key, port)
	}
	return port, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return time.ParseDuration(value)
}

func normalizeLogLevel(level string) string {
	switch level {
	case "debug", "info", "warn", "error":
		return level
	case "warning":
		return "warn"
	default:
		return DefaultLogLevel
	}
}
