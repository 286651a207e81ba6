package netcdf

import (
	"fmt"
	"math"
	"strconv"

	"github.com/couchcryptid/envis/internal/domain"
	"github.com/fhs/go-netcdf/netcdf"
)

const projectionVar = "goes_imager_projection"

// ReadFixedGrid reads a GOES ABI fixed-grid product and returns one
// (lat, lon, variable) row per on-disk pixel with a finite value.
func (r *Reader) ReadFixedGrid(path, variable string) (domain.Table, error) {
	ds, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return domain.Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer ds.Close()

	proj, err := readProjection(ds)
	if err != nil {
		return domain.Table{}, err
	}
	x, err := readScaledVar(ds, "x")
	if err != nil {
		return domain.Table{}, err
	}
	y, err := readScaledVar(ds, "y")
	if err != nil {
		return domain.Table{}, err
	}

	v, err := ds.Var(variable)
	if err != nil {
		return domain.Table{}, &domain.MissingColumnError{Column: variable}
	}
	_, shape, err := dims(v)
	if err != nil {
		return domain.Table{}, fmt.Errorf("read %s dimensions: %w", variable, err)
	}
	if len(shape) != 2 {
		return domain.Table{}, &domain.ShapeMismatchError{Axis: "dims", Expected: 2, Actual: len(shape)}
	}
	if shape[0] != len(y) {
		return domain.Table{}, &domain.ShapeMismatchError{Axis: "y", Expected: shape[0], Actual: len(y)}
	}
	if shape[1] != len(x) {
		return domain.Table{}, &domain.ShapeMismatchError{Axis: "x", Expected: shape[1], Actual: len(x)}
	}

	data, err := readScaled(v)
	if err != nil {
		return domain.Table{}, fmt.Errorf("read %s: %w", variable, err)
	}

	t := domain.Table{Columns: []string{"lat", "lon", variable}}
	for i, yv := range y {
		for j, xv := range x {
			value := data[i*len(x)+j]
			if math.IsNaN(value) {
				continue
			}
			lat, lon := proj.ToLatLon(xv, yv)
			if math.IsNaN(lat) || math.IsNaN(lon) {
				continue
			}
			t.Rows = append(t.Rows, []string{formatFloat(lat), formatFloat(lon), formatFloat(value)})
		}
	}
	return t, nil
}

func readProjection(ds netcdf.Dataset) (domain.GeosProjection, error) {
	v, err := ds.Var(projectionVar)
	if err != nil {
		return domain.GeosProjection{}, &domain.MissingColumnError{Column: projectionVar}
	}

	var p domain.GeosProjection
	for name, dst := range map[string]*float64{
		"perspective_point_height":       &p.PerspectiveHeight,
		"semi_major_axis":                &p.SemiMajor,
		"semi_minor_axis":                &p.SemiMinor,
		"longitude_of_projection_origin": &p.LonOrigin,
	} {
		value, ok := attrFloat(v.Attr(name))
		if !ok {
			return domain.GeosProjection{}, fmt.Errorf("%s: missing attribute %s", projectionVar, name)
		}
		*dst = value
	}
	p.SweepAxis = attrString(v.Attr("sweep_angle_axis"))

	if err := p.Validate(); err != nil {
		return domain.GeosProjection{}, fmt.Errorf("%s: %w", projectionVar, err)
	}
	return p, nil
}

func readScaledVar(ds netcdf.Dataset, name string) ([]float64, error) {
	v, err := ds.Var(name)
	if err != nil {
		return nil, &domain.MissingColumnError{Column: name}
	}
	values, err := readScaled(v)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return values, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
