package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"patient-monitor/internal/application/device"
	"patient-monitor/internal/application/generator"
	"patient-monitor/internal/config"
	"patient-monitor/internal/logging"
)

func main() {
	cfg, err := config.LoadDevice()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, logging.WithService("vitals-device"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := generator.New(generator.Config{
		Interval:    cfg.Interval,
		DeviceCount: cfg.DeviceCount,
	}, logger)

	client := device.New(device.Config{
		Addr:         cfg.Addr,
		RetryBackoff: cfg.RetryBackoff,
	}, source, logger)

	logger.Info("starting device simulator", "addr", cfg.Addr, "devices", cfg.DeviceCount, "interval", cfg.Interval.String())

	if err := client.Run(ctx); err != nil {
		logger.Error("device simulator stopped", logging.AttachError(err)...)
		os.Exit(1)
	}
}
