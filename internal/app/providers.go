package app

import (
	"net"
	"strconv"

	"github.com/google/wire"

	grpcapi "patient-monitor/internal/api/grpc"
	httpapi "patient-monitor/internal/api/http"
	"patient-monitor/internal/application/ingest"
	"patient-monitor/internal/application/vitals"
	"patient-monitor/internal/config"
	"patient-monitor/internal/domain"
	"patient-monitor/internal/infrastructure/metrics"
	"patient-monitor/internal/logging"
)

const serviceName = "vitals-server"

// ProviderSet wires the server process together.
var ProviderSet = wire.NewSet(
	provideConfig,
	provideLogger,
	provideMetrics,
	provideIngestConfig,
	ingest.NewServer,
	wire.Bind(new(vitals.StoreSource), new(*ingest.Server)),
	vitals.New,
	wire.Bind(new(domain.SnapshotService), new(*vitals.Service)),
	httpapi.NewServer,
	grpcapi.NewHandler,
	provideGRPCServer,
	provideShutdownManager,
	New,
)

func provideConfig() (*config.Config, error) { return config.Load() }

func provideLogger(cfg *config.Config) (*logging.Logger, error) {
	return logging.New(cfg.LogLevel, logging.WithService(serviceName))
}

func provideMetrics() *metrics.Metrics { return metrics.New() }

func provideIngestConfig(cfg *config.Config) ingest.Config {
	return ingest.Config{
		Bind: ingest.BindConfig{
			Host:     cfg.Ingest.Host,
			Port:     cfg.Ingest.Port,
			Attempts: cfg.Ingest.BindAttempts,
			Backoff:  cfg.Ingest.BindBackoff,
		},
		MaxConnections: cfg.Ingest.MaxConnections,
		MaxFrameBytes:  cfg.Ingest.MaxFrameBytes,
	}
}

// provideGRPCServer returns nil when GRPC_PORT is 0.
func provideGRPCServer(cfg *config.Config, logger *logging.Logger, handler *grpcapi.Handler, m *metrics.Metrics) (*grpcapi.Server, error) {
	if cfg.GRPCPort == 0 {
		return nil, nil
	}
	return grpcapi.NewServer(logger, handler, grpcapi.Options{
		Address:         net.JoinHostPort("", strconv.Itoa(cfg.GRPCPort)),
		ShutdownTimeout: cfg.ShutdownTimeout,
		Registerer:      m.Registerer(),
	})
}

func provideShutdownManager(cfg *config.Config, l *logging.Logger) *ShutdownManager {
	return NewShutdownManager(cfg.ShutdownTimeout, l)
}
