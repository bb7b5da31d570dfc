package config

import "time"

const (
	EnvIngestHost           = "INGEST_HOST"
	EnvIngestPort           = "INGEST_PORT"
	EnvIngestBindAttempts   = "INGEST_BIND_ATTEMPTS"
	EnvIngestBindBackoff    = "INGEST_BIND_BACKOFF"
	EnvIngestMaxConnections = "INGEST_MAX_CONNECTIONS"
	EnvIngestMaxFrameBytes  = "INGEST_MAX_FRAME_BYTES"
	EnvHTTPPort             = "HTTP_PORT"
	EnvGRPCPort             = "GRPC_PORT"
	EnvLogLevel             = "LOG_LEVEL"
	EnvShutdownTimeout      = "SHUTDOWN_TIMEOUT"

	EnvDeviceAddr         = "DEVICE_ADDR"
	EnvDeviceIDs          = "DEVICE_IDS"
	EnvDeviceInterval     = "DEVICE_INTERVAL"
	EnvDeviceRetryBackoff = "DEVICE_RETRY_BACKOFF"

	DefaultIngestHost           = "127.0.0.1"
	DefaultIngestPort           = 65432
	DefaultIngestBindAttempts   = 5
	DefaultIngestBindBackoff    = time.Second
	DefaultIngestMaxConnections = 1024
	DefaultIngestMaxFrameBytes  = 64 * 1024
	DefaultHTTPPort             = 5000
	DefaultGRPCPort             = 50051
	DefaultLogLevel             = "info"
	DefaultShutdownTimeout      = 10 * time.Second

	DefaultDeviceAddr         = "127.0.0.1:65432"
	DefaultDeviceIDs          = 5
	DefaultDeviceInterval     = time.Second
	DefaultDeviceRetryBackoff = 5 * time.Second
)
