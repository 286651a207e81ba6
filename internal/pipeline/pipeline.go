package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/envis/internal/domain"
	"github.com/couchcryptid/envis/internal/observability"
	"github.com/couchcryptid/envis/internal/render"
)

// GridSource reads gridded datasets and their metadata.
type GridSource interface {
	ReadGrid(path, variable string) (domain.Grid, error)
	Describe(path, variable string) (domain.DatasetInfo, error)
	ReadFixedGrid(path, variable string) (domain.Table, error)
}

// BoundaryLoader supplies the layers drawn over every overlay.
type BoundaryLoader interface {
	LoadBoundaries(ctx context.Context) (render.Boundaries, error)
}

// Notifier announces written artifacts to downstream consumers.
type Notifier interface {
	Notify(ctx context.Context, event domain.ArtifactEvent) error
}

// Service turns datasets and uploaded tables into overlay images, GeoJSON
// point layers and flattened CSV exports. Every operation reads its input
// fresh from disk and writes exactly one artifact.
type Service struct {
	grids      GridSource
	boundaries BoundaryLoader
	notifier   Notifier
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// New creates a Service. notifier may be nil to disable artifact events.
func New(grids GridSource, boundaries BoundaryLoader, notifier Notifier, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		grids:      grids,
		boundaries: boundaries,
		notifier:   notifier,
		logger:     logger,
		metrics:    metrics,
	}
}

// CheckReadiness reports whether the boundary layers can be loaded, which
// every overlay needs.
func (s *Service) CheckReadiness(ctx context.Context) error {
	if _, err := s.boundaries.LoadBoundaries(ctx); err != nil {
		return fmt.Errorf("boundary layers unavailable: %w", err)
	}
	return nil
}

// DescribeDataset returns metadata for one variable of a gridded dataset.
func (s *Service) DescribeDataset(ctx context.Context, path, variable string) (domain.DatasetInfo, error) {
	if err := ctx.Err(); err != nil {
		return domain.DatasetInfo{}, err
	}
	info, err := s.grids.Describe(path, variable)
	if err != nil {
		return domain.DatasetInfo{}, fmt.Errorf("describe %s: %w", variable, err)
	}
	return info, nil
}

// finish records metrics and logs for one artifact, then publishes its event
// when the artifact was written. Publish failures are logged only.
func (s *Service) finish(ctx context.Context, kind string, start time.Time, err error, event func() domain.ArtifactEvent) {
	elapsed := time.Since(start)
	s.metrics.ArtifactDuration.WithLabelValues(kind).Observe(elapsed.Seconds())

	if err != nil {
		s.metrics.ArtifactsGenerated.WithLabelValues(kind, "error").Inc()
		level := slog.LevelError
		if domain.IsInputError(err) {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "artifact failed", "kind", kind, "error", err)
		return
	}
	s.metrics.ArtifactsGenerated.WithLabelValues(kind, "success").Inc()

	e := event()
	s.logger.Info("artifact written", "kind", kind, "path", e.Path, "count", e.Count, "duration", elapsed)

	if s.notifier == nil {
		return
	}
	if nerr := s.notifier.Notify(ctx, e); nerr != nil {
		s.metrics.EventsPublished.WithLabelValues("error").Inc()
		s.logger.Error("artifact event publish failed", "event_id", e.ID, "error", nerr)
		return
	}
	s.metrics.EventsPublished.WithLabelValues("success").Inc()
}

// writeFile replaces path with data, creating parent directories on demand.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// requireFile fails with InputNotFoundError when path does not exist.
func requireFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return inputError(path, err)
	}
	return nil
}

func inputError(path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return &domain.InputNotFoundError{Path: path}
	}
	return err
}
