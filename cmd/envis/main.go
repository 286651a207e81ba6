package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/envis/internal/adapter/boundary"
	httpadapter "github.com/couchcryptid/envis/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/envis/internal/adapter/kafka"
	"github.com/couchcryptid/envis/internal/adapter/netcdf"
	"github.com/couchcryptid/envis/internal/config"
	"github.com/couchcryptid/envis/internal/observability"
	"github.com/couchcryptid/envis/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	for _, dir := range []string{cfg.UploadDir, cfg.DataDir, cfg.GeoJSONDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create directory", "dir", dir, "error", err)
			os.Exit(1)
		}
	}

	layers, err := boundary.NewCachedLoader(boundary.FileLoader{}, cfg.BoundaryCacheSize, metrics)
	if err != nil {
		logger.Error("failed to create boundary cache", "error", err)
		os.Exit(1)
	}
	boundaries := boundary.Set{
		LandPath:      cfg.LandMaskPath,
		CoastlinePath: cfg.CoastlinePath,
		StatesPath:    cfg.StateMaskPath,
		Loader:        layers,
	}

	// Artifact events are feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var notifier pipeline.Notifier
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		notifier = publisher
		metrics.KafkaEnabled.Set(1)
		logger.Info("artifact events enabled", "topic", cfg.KafkaArtifactTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("artifact events disabled")
	}

	svc := pipeline.New(netcdf.NewReader(), boundaries, notifier, logger, metrics)
	srv := httpadapter.NewServer(cfg, svc, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
