// Command nc2csv flattens a netCDF variable to lat,lon,value CSV rows.
// With -fixed-grid it reads a GOES ABI fixed-grid product instead, projects
// every pixel to lat/lon and keeps a fixed-seed sample of -max-rows rows.
//
// Usage:
//
//	go run ./cmd/nc2csv -in data/sst_today.nc -variable sst -out sst_data.csv
//	go run ./cmd/nc2csv -fixed-grid -in OR_ABI-L2-ACMC.nc -variable ACM -out acm.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"github.com/couchcryptid/envis/internal/adapter/boundary"
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
	in := flag.String("in", "", "input netCDF file")
	variable := flag.String("variable", "sst", "data variable to export")
	out := flag.String("out", "", "output CSV (default: input name with .csv)")
	fixedGrid := flag.Bool("fixed-grid", false, "input is a GOES ABI fixed-grid product")
	maxRows := flag.Int("max-rows", domain.FixedGridMaxPoints, "row cap for -fixed-grid exports")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -in")
	}
	if *out == "" {
		*out = strings.TrimSuffix(*in, ".nc") + ".csv"
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg)
	svc := pipeline.New(netcdf.NewReader(), boundary.Set{}, nil, logger, observability.NewMetrics())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var n int
	if *fixedGrid {
		n, err = svc.ExportFixedGridCSV(ctx, *in, *variable, *out, *maxRows)
	} else {
		n, err = svc.ExportDatasetCSV(ctx, *in, *variable, *out)
	}
	if err != nil {
		return err
	}
	log.Printf("saved %s with %d records", *out, n)
	return nil
}
