package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/couchcryptid/envis/internal/adapter/csvfile"
	"github.com/couchcryptid/envis/internal/domain"
	"github.com/couchcryptid/envis/internal/render"
)

// DatasetOverlayRequest renders one variable of a gridded dataset.
type DatasetOverlayRequest struct {
	Path     string
	Variable string
	Output   string
	Colormap string // defaults to jet
	DPI      int    // defaults to render.DefaultDPI
}

// TableOverlayRequest renders a lat/lon/value table reconstructed into a grid.
// The output is OutputDir/Prefix_YYYY_MM_DD.png.
type TableOverlayRequest struct {
	Path      string
	Value     string
	OutputDir string
	Prefix    string
	Date      domain.Date // zero value means today
	Colormap  string
	DPI       int
}

// RenderDataset reads a grid, moves longitudes into [-180, 180), sorts
// latitude ascending and writes the boundary overlay PNG.
func (s *Service) RenderDataset(ctx context.Context, req DatasetOverlayRequest) (err error) {
	start := time.Now()
	defer func() {
		s.finish(ctx, domain.ArtifactDatasetOverlay, start, err, func() domain.ArtifactEvent {
			return domain.NewArtifactEvent(domain.ArtifactDatasetOverlay, req.Output, req.Variable, 0)
		})
	}()

	if err := requireFile(req.Path); err != nil {
		return err
	}
	g, err := s.grids.ReadGrid(req.Path, req.Variable)
	if err != nil {
		return fmt.Errorf("read %s: %w", req.Variable, err)
	}
	g, err = domain.Normalize(g)
	if err != nil {
		return err
	}
	return s.renderGrid(ctx, g, req.Output, render.Options{Colormap: req.Colormap, DPI: req.DPI})
}

// RenderTable reads a CSV table, drops rows with a null coordinate or value,
// reconstructs the dense grid and writes a date-stamped overlay PNG. It
// returns the path written.
func (s *Service) RenderTable(ctx context.Context, req TableOverlayRequest) (output string, err error) {
	start := time.Now()
	var cells int
	defer func() {
		s.finish(ctx, domain.ArtifactTableOverlay, start, err, func() domain.ArtifactEvent {
			return domain.NewArtifactEvent(domain.ArtifactTableOverlay, output, req.Value, cells)
		})
	}()

	t, err := s.readTable(req.Path)
	if err != nil {
		return "", err
	}
	t = t.NormalizeColumns()
	sel, err := domain.ResolveColumns(t, req.Value)
	if err != nil {
		return "", err
	}
	if err := t.CheckNumeric(sel.Lat, sel.Lon, sel.Value); err != nil {
		return "", err
	}
	t, err = t.Project(sel.Names())
	if err != nil {
		return "", err
	}
	if t.Len() == 0 {
		return "", domain.ErrEmptyResult
	}
	records, err := t.Records(sel)
	if err != nil {
		return "", err
	}
	cells = len(records)

	g, err := domain.ReconstructGrid(records)
	if err != nil {
		return "", err
	}
	if g, err = domain.Normalize(g); err != nil {
		return "", err
	}

	date := req.Date
	if date == (domain.Date{}) {
		date = domain.Today()
	}
	output = filepath.Join(req.OutputDir, domain.ArtifactName(req.Prefix, date, "png"))
	if err := s.renderGrid(ctx, g, output, render.Options{Colormap: req.Colormap, DPI: req.DPI}); err != nil {
		return "", err
	}
	return output, nil
}

func (s *Service) renderGrid(ctx context.Context, g domain.Grid, output string, opts render.Options) error {
	b, err := s.boundaries.LoadBoundaries(ctx)
	if err != nil {
		return fmt.Errorf("load boundaries: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	img, err := render.Overlay(g, b, opts)
	if err != nil {
		return err
	}
	if err := render.WritePNG(output, img); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	return nil
}

func (s *Service) readTable(path string) (domain.Table, error) {
	t, err := csvfile.ReadTable(path)
	if err != nil {
		return domain.Table{}, inputError(path, err)
	}
	s.metrics.RowsRead.Add(float64(t.Len()))
	return t, nil
}
