package domain

import (
	"slices"
)

// Record is one (lat, lon, value) sample of a flattened grid.
type Record struct {
	Lat   float64
	Lon   float64
	Value float64
}

// ReconstructGrid rebuilds a dense grid from flattened records. The axes are
// the sorted unique latitudes and longitudes (exact equality). Cells with no
// record stay NaN; when several records share a coordinate pair the last one
// wins.
func ReconstructGrid(records []Record) (Grid, error) {
	lats := make([]float64, len(records))
	lons := make([]float64, len(records))
	for i, r := range records {
		lats[i] = r.Lat
		lons[i] = r.Lon
	}
	latAxis := uniqueSorted(lats)
	lonAxis := uniqueSorted(lons)

	latIndex := indexOf(latAxis)
	lonIndex := indexOf(lonAxis)

	g := NewGrid(latAxis, lonAxis)
	for _, r := range records {
		i, ok := latIndex[r.Lat]
		if !ok {
			return Grid{}, &CoordinateLookupError{Axis: "lat", Value: r.Lat}
		}
		j, ok := lonIndex[r.Lon]
		if !ok {
			return Grid{}, &CoordinateLookupError{Axis: "lon", Value: r.Lon}
		}
		g.Values[i][j] = r.Value
	}
	return g, nil
}

// FlattenGrid is the inverse of ReconstructGrid: it emits one record per
// finite cell in row-major order.
func FlattenGrid(g Grid) ([]Record, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	out := make([]Record, 0, g.Rows()*g.Cols())
	for i, row := range g.Values {
		for j, v := range row {
			if !isFinite(v) {
				continue
			}
			out = append(out, Record{Lat: g.Lat[i], Lon: g.Lon[j], Value: v})
		}
	}
	return out, nil
}

func uniqueSorted(xs []float64) []float64 {
	out := slices.Clone(xs)
	slices.Sort(out)
	return slices.Compact(out)
}

// indexOf maps each axis value to its position. NaN never matches a map key,
// so records with NaN coordinates surface as lookup errors.
func indexOf(axis []float64) map[float64]int {
	m := make(map[float64]int, len(axis))
	for i, v := range axis {
		m[v] = i
	}
	return m
}
