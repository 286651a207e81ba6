// Command validate checks a GeoJSON point artifact against the CSV table it
// was generated from: structure, feature cap, coordinate ranges, and that
// every feature carries exactly the lat/lon/value of a valid source row.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -csv uploads/observations.csv \
//	  -geojson uploads/processed.geojson \
//	  -variable sst
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/couchcryptid/envis/internal/adapter/csvfile"
	"github.com/couchcryptid/envis/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// maxReported caps per-phase error detail so one systematic fault does not
// flood the report.
const maxReported = 20

func main() {
	csvPath := flag.String("csv", "", "source CSV table")
	geojsonPath := flag.String("geojson", "", "GeoJSON artifact generated from -csv")
	variable := flag.String("variable", "", "value column used for the conversion")
	maxPoints := flag.Int("max-points", domain.DefaultMaxPoints, "feature cap used for the conversion")
	flag.Parse()

	if *csvPath == "" || *geojsonPath == "" || *variable == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*csvPath, *geojsonPath, *variable, *maxPoints); code != 0 {
		os.Exit(code)
	}
}

func run(csvPath, geojsonPath, variable string, maxPoints int) int {
	fmt.Println("=== GeoJSON Artifact Validation ===")
	fmt.Println()

	source, err := csvfile.ReadTable(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load source CSV: %v\n", err)
		return 1
	}
	data, err := os.ReadFile(geojsonPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load GeoJSON: %v\n", err)
		return 1
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse GeoJSON: %v\n", err)
		return 1
	}

	source = source.NormalizeColumns()
	sel, err := domain.ResolveColumns(source, variable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: resolve columns: %v\n", err)
		return 1
	}
	valid, err := source.Project(sel.Names())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: filter source rows: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateStructure(fc),
		validateCount(fc, valid.Len(), maxPoints),
		validateCoordinates(fc),
		validateProperties(fc, valid, sel),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d source rows, %d valid rows, %d features\n", source.Len(), valid.Len(), len(fc.Features))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxReported {
				fmt.Printf("  ... %d more\n", len(p.errors)-maxReported)
				break
			}
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func validateStructure(fc *geojson.FeatureCollection) *phase {
	p := &phase{name: "Phase 1: Feature structure"}
	for i, f := range fc.Features {
		if _, ok := f.Geometry.(orb.Point); !ok {
			p.errorf("feature %d: geometry is %T, want Point", i, f.Geometry)
		}
		if f.Properties == nil {
			p.errorf("feature %d: no properties", i)
		}
	}
	return p
}

func validateCount(fc *geojson.FeatureCollection, validRows, maxPoints int) *phase {
	p := &phase{name: "Phase 2: Feature count"}
	want := min(validRows, maxPoints)
	if len(fc.Features) != want {
		p.errorf("got %d features, want %d (valid rows %d, cap %d)", len(fc.Features), want, validRows, maxPoints)
	}
	return p
}

func validateCoordinates(fc *geojson.FeatureCollection) *phase {
	p := &phase{name: "Phase 3: Coordinate ranges"}
	for i, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		if pt.Lat() < -90 || pt.Lat() > 90 {
			p.errorf("feature %d: latitude %g out of range", i, pt.Lat())
		}
		if pt.Lon() < -180 || pt.Lon() >= 360 {
			p.errorf("feature %d: longitude %g out of range", i, pt.Lon())
		}
	}
	return p
}

type triple struct{ lat, lon, value float64 }

// validateProperties checks each feature's properties are exactly the three
// selected columns, agree with its geometry, and match a valid source row.
func validateProperties(fc *geojson.FeatureCollection, valid domain.Table, sel domain.ColumnSelection) *phase {
	p := &phase{name: "Phase 4: Property parity with source"}

	remaining := make(map[triple]int, valid.Len())
	for i := range valid.Rows {
		var tr triple
		var err error
		if tr.lat, err = valid.Float(i, sel.Lat); err != nil {
			p.errorf("source %v", err)
			continue
		}
		if tr.lon, err = valid.Float(i, sel.Lon); err != nil {
			p.errorf("source %v", err)
			continue
		}
		if tr.value, err = valid.Float(i, sel.Value); err != nil {
			// Non-numeric values still appear as string properties; skip parity.
			continue
		}
		remaining[tr]++
	}

	for i, f := range fc.Features {
		if len(f.Properties) != len(valid.Columns) {
			p.errorf("feature %d: %d properties, want %v", i, len(f.Properties), valid.Columns)
		}
		var tr triple
		var ok bool
		if tr.lat, ok = number(f.Properties, sel.Lat); !ok {
			p.errorf("feature %d: property %q missing or not numeric", i, sel.Lat)
			continue
		}
		if tr.lon, ok = number(f.Properties, sel.Lon); !ok {
			p.errorf("feature %d: property %q missing or not numeric", i, sel.Lon)
			continue
		}
		if tr.value, ok = number(f.Properties, sel.Value); !ok {
			continue
		}
		if pt, isPoint := f.Geometry.(orb.Point); isPoint && (pt.Lat() != tr.lat || pt.Lon() != tr.lon) {
			p.errorf("feature %d: geometry %v disagrees with properties (%g, %g)", i, pt, tr.lon, tr.lat)
		}
		if remaining[tr] == 0 {
			p.errorf("feature %d: (%g, %g, %g) not found among valid source rows", i, tr.lat, tr.lon, tr.value)
			continue
		}
		remaining[tr]--
	}
	return p
}

func number(props geojson.Properties, key string) (float64, bool) {
	switch v := props[key].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}
