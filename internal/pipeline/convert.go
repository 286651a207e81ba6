package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/couchcryptid/envis/internal/domain"
)

// ConvertRequest turns an uploaded CSV table into a GeoJSON point layer.
type ConvertRequest struct {
	Path      string
	Value     string
	Output    string
	MaxPoints int // defaults to domain.DefaultMaxPoints
}

// ConvertResult describes a written GeoJSON artifact.
type ConvertResult struct {
	Output    string
	Variable  string
	Features  int
	ValidRows int
	Sampled   bool
}

// ConvertTable writes req.Path's rows as Point features to req.Output,
// replacing any existing file.
func (s *Service) ConvertTable(ctx context.Context, req ConvertRequest) (res ConvertResult, err error) {
	start := time.Now()
	defer func() {
		s.finish(ctx, domain.ArtifactGeoJSON, start, err, func() domain.ArtifactEvent {
			return domain.NewArtifactEvent(domain.ArtifactGeoJSON, res.Output, res.Variable, res.Features)
		})
	}()

	limit := req.MaxPoints
	if limit <= 0 {
		limit = domain.DefaultMaxPoints
	}

	t, err := s.readTable(req.Path)
	if err != nil {
		return ConvertResult{}, err
	}
	conv, err := domain.ConvertToFeatures(t, req.Value, limit)
	if err != nil {
		return ConvertResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return ConvertResult{}, err
	}

	data, err := conv.Features.MarshalJSON()
	if err != nil {
		return ConvertResult{}, fmt.Errorf("encode geojson: %w", err)
	}
	if err := writeFile(req.Output, data); err != nil {
		return ConvertResult{}, fmt.Errorf("write %s: %w", req.Output, err)
	}

	n := len(conv.Features.Features)
	s.metrics.FeaturesEmitted.Add(float64(n))
	s.metrics.RowsDownsampled.Add(float64(conv.ValidRows - n))
	if conv.Sampled {
		s.logger.Info("table downsampled", "valid_rows", conv.ValidRows, "kept", n)
	}

	return ConvertResult{
		Output:    req.Output,
		Variable:  conv.Selection.Value,
		Features:  n,
		ValidRows: conv.ValidRows,
		Sampled:   conv.Sampled,
	}, nil
}
