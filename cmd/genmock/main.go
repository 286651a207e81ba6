// Command genmock writes a synthetic next-day SST prediction grid as CSV.
// The field is a smooth function of latitude, longitude and day of year, so
// the overlay and conversion paths can be exercised without a trained model.
//
// Usage:
//
//	go run ./cmd/genmock -date 2025/07/01 -out-dir data/mock
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/envis/internal/adapter/csvfile"
	"github.com/couchcryptid/envis/internal/domain"
)

const (
	gridStep = 0.5
	latFirst = -89.75
	lonFirst = -179.75
	latCount = 360
	lonCount = 720
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	date := flag.String("date", "", "prediction date, YYYY/MM/DD (default today)")
	outDir := flag.String("out-dir", ".", "output directory")
	flag.Parse()

	d := domain.Today()
	if *date != "" {
		var err error
		if d, err = domain.ParseDate(*date); err != nil {
			return err
		}
	}

	t := predictionGrid(d)
	out := filepath.Join(*outDir, domain.ArtifactName("predicted_sst", d, "csv"))
	if err := csvfile.WriteTable(out, t); err != nil {
		return fmt.Errorf("writing prediction grid: %w", err)
	}
	log.Printf("wrote %s: %d rows", out, t.Len())
	return nil
}

// predictionGrid builds the lat/lon/pred_sst table on the 0.5 degree grid,
// latitude-major like the model output it stands in for.
func predictionGrid(d domain.Date) domain.Table {
	doy := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC).YearDay()
	season := math.Sin(2 * math.Pi * float64(doy-80) / 365)

	t := domain.Table{
		Columns: []string{"lat", "lon", "pred_sst"},
		Rows:    make([][]string, 0, latCount*lonCount),
	}
	for i := range latCount {
		lat := latFirst + float64(i)*gridStep
		for j := range lonCount {
			lon := lonFirst + float64(j)*gridStep
			t.Rows = append(t.Rows, []string{
				formatFloat(lat),
				formatFloat(lon),
				strconv.FormatFloat(syntheticSST(lat, lon, season), 'f', 3, 64),
			})
		}
	}
	return t
}

// syntheticSST is warm at the equator, near freezing at the poles, with the
// summer hemisphere shifted warmer and a weak zonal ripple.
func syntheticSST(lat, lon, season float64) float64 {
	phi := lat * math.Pi / 180
	lambda := lon * math.Pi / 180
	c := math.Cos(phi)
	return -1.8 + 30*c*c + 2*season*math.Sin(phi) + 0.5*math.Sin(3*lambda)*c
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
