package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tomz197/bolas/internal/arena"
	"github.com/tomz197/bolas/internal/config"
	"github.com/tomz197/bolas/internal/logging"
	"github.com/tomz197/bolas/internal/metrics"
	"github.com/tomz197/bolas/internal/transport"
	"github.com/tomz197/bolas/internal/version"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatal("failed to load .env", "err", err)
	}
	settings, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", "err", err)
	}
	if err := settings.ValidateListeners(); err != nil {
		log.Fatal("invalid configuration", "err", err)
	}

	logger, err := logging.New(os.Stderr, settings.LogLevel, "bolas")
	if err != nil {
		log.Fatal("invalid configuration", "err", err)
	}
	v := version.Get()
	logger.Info("starting web server", "version", v.Version, "revision", v.GitRevision,
		"refresh", settings.RefreshRate(), "algorithm", settings.Algorithm)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler, err := transport.NewHandler(transport.Options{
		Arena: arena.Config{
			RefreshRate:           settings.RefreshRate(),
			VelocityScalingFactor: settings.VelocityScalingFactor(),
			Algorithm:             settings.Algorithm,
			Metrics:               metrics.NewRecorder(reg),
			Logger:                logger,
		},
		StaticFilePath: settings.StaticFilePath,
		Metrics:        metrics.Handler(reg),
		Logger:         logger,
	})
	if err != nil {
		logger.Fatal("failed to build handler", "err", err)
	}

	listeners, err := transport.Listen(settings.TCPAddrs, settings.UnixAddrs)
	if err != nil {
		logger.Fatal("failed to listen", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := transport.Serve(ctx, handler, listeners, logger); err != nil {
		logger.Fatal("server error", "err", err)
	}
	logger.Info("server stopped")
}
