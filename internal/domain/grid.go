package domain

import (
	"math"
	"slices"
	"sort"
)

// Grid is a dense 2-D raster indexed [lat][lon], labelled by its coordinate
// axes. Missing samples are NaN.
type Grid struct {
	Lat    []float64
	Lon    []float64
	Values [][]float64
}

// NewGrid allocates a grid for the given axes with every cell set to NaN.
func NewGrid(lat, lon []float64) Grid {
	values := make([][]float64, len(lat))
	for i := range values {
		row := make([]float64, len(lon))
		for j := range row {
			row[j] = math.NaN()
		}
		values[i] = row
	}
	return Grid{Lat: lat, Lon: lon, Values: values}
}

// Rows returns the number of latitude rows.
func (g Grid) Rows() int { return len(g.Values) }

// Cols returns the number of longitude columns, taken from the first row.
func (g Grid) Cols() int {
	if len(g.Values) == 0 {
		return 0
	}
	return len(g.Values[0])
}

// Validate checks that both axes match the grid dimensions and that the grid
// is rectangular.
func (g Grid) Validate() error {
	if len(g.Lat) != g.Rows() {
		return &ShapeMismatchError{Axis: "lat", Expected: g.Rows(), Actual: len(g.Lat)}
	}
	cols := g.Cols()
	for _, row := range g.Values {
		if len(row) != cols {
			return &ShapeMismatchError{Axis: "lon", Expected: cols, Actual: len(row)}
		}
	}
	if len(g.Lon) != cols {
		return &ShapeMismatchError{Axis: "lon", Expected: cols, Actual: len(g.Lon)}
	}
	return nil
}

// FiniteRange returns the minimum and maximum finite cell values, ignoring NaN
// and infinities. It fails with ErrEmptyDataset when no finite cell exists.
func (g Grid) FiniteRange() (vmin, vmax float64, err error) {
	vmin, vmax = math.Inf(1), math.Inf(-1)
	found := false
	for _, row := range g.Values {
		for _, v := range row {
			if !isFinite(v) {
				continue
			}
			found = true
			vmin = math.Min(vmin, v)
			vmax = math.Max(vmax, v)
		}
	}
	if !found {
		return 0, 0, ErrEmptyDataset
	}
	return vmin, vmax, nil
}

// Extent returns the min/max of each axis: [lonMin, lonMax, latMin, latMax].
// It panics on an empty axis.
func (g Grid) Extent() [4]float64 {
	return [4]float64{slices.Min(g.Lon), slices.Max(g.Lon), slices.Min(g.Lat), slices.Max(g.Lat)}
}

// WrapLongitude maps a longitude onto [-180, 180). Values already in range
// are returned unchanged so normalization is idempotent.
func WrapLongitude(lon float64) float64 {
	if lon >= -180 && lon < 180 {
		return lon
	}
	m := math.Mod(lon+180, 360)
	if m < 0 {
		m += 360
	}
	return m - 180
}

// NormalizeLongitude converts the longitude axis from the [0, 360) convention
// to [-180, 180) and reorders every row so the axis ascends. Ties keep their
// original order. The input grid is not modified.
func NormalizeLongitude(g Grid) (Grid, error) {
	if err := g.Validate(); err != nil {
		return Grid{}, err
	}

	wrapped := make([]float64, len(g.Lon))
	for i, lon := range g.Lon {
		wrapped[i] = WrapLongitude(lon)
	}

	order := make([]int, len(wrapped))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return wrapped[order[a]] < wrapped[order[b]]
	})

	out := Grid{
		Lat:    slices.Clone(g.Lat),
		Lon:    make([]float64, len(order)),
		Values: make([][]float64, len(g.Values)),
	}
	for j, src := range order {
		out.Lon[j] = wrapped[src]
	}
	for i, row := range g.Values {
		dst := make([]float64, len(order))
		for j, src := range order {
			dst[j] = row[src]
		}
		out.Values[i] = dst
	}
	return out, nil
}

// SortLatitude reorders the rows so the latitude axis is non-decreasing. A
// descending axis is reversed; an already ascending one is returned as a copy.
func SortLatitude(g Grid) (Grid, error) {
	if err := g.Validate(); err != nil {
		return Grid{}, err
	}

	order := make([]int, len(g.Lat))
	for i := range order {
		order[i] = i
	}
	switch {
	case sort.Float64sAreSorted(g.Lat):
	case len(g.Lat) > 0 && g.Lat[0] > g.Lat[len(g.Lat)-1] && isNonIncreasing(g.Lat):
		slices.Reverse(order)
	default:
		sort.SliceStable(order, func(a, b int) bool {
			return g.Lat[order[a]] < g.Lat[order[b]]
		})
	}

	out := Grid{
		Lat:    make([]float64, len(order)),
		Lon:    slices.Clone(g.Lon),
		Values: make([][]float64, len(order)),
	}
	for i, src := range order {
		out.Lat[i] = g.Lat[src]
		out.Values[i] = slices.Clone(g.Values[src])
	}
	return out, nil
}

// Normalize applies NormalizeLongitude then SortLatitude, producing a grid
// ready for rendering.
func Normalize(g Grid) (Grid, error) {
	g, err := NormalizeLongitude(g)
	if err != nil {
		return Grid{}, err
	}
	return SortLatitude(g)
}

func isNonIncreasing(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i] > xs[i-1] {
			return false
		}
	}
	return true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
