package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/couchcryptid/envis/internal/adapter/csvfile"
	"github.com/couchcryptid/envis/internal/domain"
)

// ExportDatasetCSV flattens a gridded variable to (lat, lon, variable) rows,
// dropping missing cells, and writes them to output. It returns the row count.
func (s *Service) ExportDatasetCSV(ctx context.Context, path, variable, output string) (rows int, err error) {
	start := time.Now()
	defer func() {
		s.finish(ctx, domain.ArtifactCSV, start, err, func() domain.ArtifactEvent {
			return domain.NewArtifactEvent(domain.ArtifactCSV, output, variable, rows)
		})
	}()

	if err := requireFile(path); err != nil {
		return 0, err
	}
	g, err := s.grids.ReadGrid(path, variable)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", variable, err)
	}
	records, err := domain.FlattenGrid(g)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, domain.ErrEmptyDataset
	}

	t := domain.Table{Columns: []string{"lat", "lon", variable}, Rows: make([][]string, len(records))}
	for i, r := range records {
		t.Rows[i] = []string{formatFloat(r.Lat), formatFloat(r.Lon), formatFloat(r.Value)}
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := csvfile.WriteTable(output, t); err != nil {
		return 0, err
	}
	return t.Len(), nil
}

// ExportFixedGridCSV projects a GOES fixed-grid variable to lat/lon rows,
// downsamples them to maxRows with the fixed seed and writes output.
func (s *Service) ExportFixedGridCSV(ctx context.Context, path, variable, output string, maxRows int) (rows int, err error) {
	start := time.Now()
	defer func() {
		s.finish(ctx, domain.ArtifactCSV, start, err, func() domain.ArtifactEvent {
			return domain.NewArtifactEvent(domain.ArtifactCSV, output, variable, rows)
		})
	}()

	if maxRows <= 0 {
		maxRows = domain.FixedGridMaxPoints
	}
	if err := requireFile(path); err != nil {
		return 0, err
	}
	t, err := s.grids.ReadFixedGrid(path, variable)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", variable, err)
	}
	if t.Len() == 0 {
		return 0, domain.ErrEmptyDataset
	}

	sampled := t.Sample(maxRows, domain.DefaultSampleSeed)
	s.metrics.RowsDownsampled.Add(float64(t.Len() - sampled.Len()))
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := csvfile.WriteTable(output, sampled); err != nil {
		return 0, err
	}
	return sampled.Len(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
