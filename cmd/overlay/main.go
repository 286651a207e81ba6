// Command overlay renders a boundary overlay PNG from either a gridded
// netCDF variable or a lat/lon/value CSV table.
//
// Usage:
//
//	go run ./cmd/overlay -dataset data/sst_today.nc -variable sst \
//	  -out data/sst_today_overlay.png
//
//	go run ./cmd/overlay -dataset MERRA2.nc4 -variable DUCMASS \
//	  -colormap ylorrd -out data/ducmass_overlay.png
//
//	go run ./cmd/overlay -table predicted_sst_2025_07_01.csv -value pred_sst \
//	  -date 2025/07/01 -prefix predicted_sst -out-dir data
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/couchcryptid/envis/internal/adapter/boundary"
	kafkaadapter "github.com/couchcryptid/envis/internal/adapter/kafka"
	"github.com/couchcryptid/envis/internal/adapter/netcdf"
	"github.com/couchcryptid/envis/internal/config"
	"github.com/couchcryptid/envis/internal/domain"
	"github.com/couchcryptid/envis/internal/observability"
	"github.com/couchcryptid/envis/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dataset := flag.String("dataset", "", "netCDF file to render")
	variable := flag.String("variable", "sst", "data variable in -dataset")
	out := flag.String("out", "", "output PNG for -dataset")
	table := flag.String("table", "", "CSV table with lat/lon/value columns to render")
	value := flag.String("value", "pred_sst", "value column in -table")
	date := flag.String("date", "", "date for the output filename, YYYY/MM/DD (default today)")
	prefix := flag.String("prefix", "predicted_sst", "output filename prefix for -table")
	outDir := flag.String("out-dir", "", "output directory for -table (default DATA_DIR)")
	colormap := flag.String("colormap", "jet", "color map: jet or ylorrd")
	dpi := flag.Int("dpi", 0, "output resolution (default OVERLAY_DPI, or DUST_OVERLAY_DPI with -colormap ylorrd)")
	flag.Parse()

	if (*dataset == "") == (*table == "") {
		flag.Usage()
		return fmt.Errorf("exactly one of -dataset or -table is required")
	}
	if *dataset != "" && *out == "" {
		flag.Usage()
		return fmt.Errorf("-out is required with -dataset")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	*dpi = resolveDPI(*dpi, *colormap, cfg)

	var notifier pipeline.Notifier
	if cfg.KafkaEnabled {
		publisher := kafkaadapter.NewPublisher(cfg, logger)
		defer publisher.Close()
		notifier = publisher
	}

	boundaries := boundary.Set{
		LandPath:      cfg.LandMaskPath,
		CoastlinePath: cfg.CoastlinePath,
		StatesPath:    cfg.StateMaskPath,
	}
	svc := pipeline.New(netcdf.NewReader(), boundaries, notifier, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *dataset != "" {
		return svc.RenderDataset(ctx, pipeline.DatasetOverlayRequest{
			Path:     *dataset,
			Variable: *variable,
			Output:   *out,
			Colormap: *colormap,
			DPI:      *dpi,
		})
	}

	req := pipeline.TableOverlayRequest{
		Path:      *table,
		Value:     *value,
		OutputDir: *outDir,
		Prefix:    *prefix,
		Colormap:  *colormap,
		DPI:       *dpi,
	}
	if req.OutputDir == "" {
		req.OutputDir = cfg.DataDir
	}
	if *date != "" {
		if req.Date, err = domain.ParseDate(*date); err != nil {
			return err
		}
	}
	path, err := svc.RenderTable(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, path)
	return nil
}

// resolveDPI returns flagDPI when set, otherwise the configured default for
// the palette. The dust palette renders at DUST_OVERLAY_DPI.
func resolveDPI(flagDPI int, colormap string, cfg *config.Config) int {
	switch {
	case flagDPI > 0:
		return flagDPI
	case strings.EqualFold(colormap, "ylorrd"):
		return cfg.DustOverlayDPI
	default:
		return cfg.OverlayDPI
	}
}
