// Package netcdf reads gridded datasets from netCDF (classic and netCDF-4)
// files into domain types.
package netcdf

import (
	"fmt"
	"math"
	"strings"

	"github.com/couchcryptid/envis/internal/domain"
	"github.com/fhs/go-netcdf/netcdf"
)

// Reader loads grids and fixed-grid scans from netCDF files.
// It implements pipeline.GridSource.
type Reader struct{}

// NewReader creates a netCDF reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadGrid reads variable from path as a lat/lon grid. Leading dimensions
// (time, level) are reduced to their first index; the trailing two must be
// the latitude and longitude dimensions.
func (r *Reader) ReadGrid(path, variable string) (domain.Grid, error) {
	ds, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return domain.Grid{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer ds.Close()

	latName, lat, err := readAxis(ds, domain.LatitudeAliases)
	if err != nil {
		return domain.Grid{}, err
	}
	lonName, lon, err := readAxis(ds, domain.LongitudeAliases)
	if err != nil {
		return domain.Grid{}, err
	}

	v, err := ds.Var(variable)
	if err != nil {
		return domain.Grid{}, &domain.MissingColumnError{Column: variable}
	}
	names, shape, err := dims(v)
	if err != nil {
		return domain.Grid{}, fmt.Errorf("read %s dimensions: %w", variable, err)
	}
	if len(names) < 2 || names[len(names)-2] != latName || names[len(names)-1] != lonName {
		return domain.Grid{}, fmt.Errorf("%s dimensions %v do not end in (%s, %s): %w",
			variable, names, latName, lonName, &domain.ShapeMismatchError{Axis: "dims", Expected: 2, Actual: len(names)})
	}
	if shape[len(shape)-2] != len(lat) {
		return domain.Grid{}, &domain.ShapeMismatchError{Axis: "lat", Expected: shape[len(shape)-2], Actual: len(lat)}
	}
	if shape[len(shape)-1] != len(lon) {
		return domain.Grid{}, &domain.ShapeMismatchError{Axis: "lon", Expected: shape[len(shape)-1], Actual: len(lon)}
	}

	data, err := readScaled(v)
	if err != nil {
		return domain.Grid{}, fmt.Errorf("read %s: %w", variable, err)
	}

	g := domain.Grid{Lat: lat, Lon: lon, Values: make([][]float64, len(lat))}
	for i := range lat {
		g.Values[i] = data[i*len(lon) : (i+1)*len(lon)]
	}
	return g, nil
}

// Describe summarizes variable without reading its data.
func (r *Reader) Describe(path, variable string) (domain.DatasetInfo, error) {
	ds, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return domain.DatasetInfo{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer ds.Close()

	v, err := ds.Var(variable)
	if err != nil {
		return domain.DatasetInfo{}, &domain.MissingColumnError{Column: variable}
	}
	names, shape, err := dims(v)
	if err != nil {
		return domain.DatasetInfo{}, fmt.Errorf("read %s dimensions: %w", variable, err)
	}
	return domain.DatasetInfo{
		Variable:    variable,
		LongName:    attrString(v.Attr("long_name")),
		Units:       attrString(v.Attr("units")),
		Institution: attrString(ds.Attr("institution")),
		Source:      attrString(ds.Attr("source")),
		Dimensions:  names,
		Shape:       shape,
	}, nil
}

func readAxis(ds netcdf.Dataset, aliases []string) (string, []float64, error) {
	for _, name := range aliases {
		v, err := ds.Var(name)
		if err != nil {
			continue
		}
		values, err := readRaw(v)
		if err != nil {
			return "", nil, fmt.Errorf("read %s: %w", name, err)
		}
		return name, values, nil
	}
	return "", nil, &domain.MissingColumnError{Column: strings.Join(aliases, "|")}
}

func dims(v netcdf.Var) ([]string, []int, error) {
	ds, err := v.Dims()
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, len(ds))
	shape := make([]int, len(ds))
	for i, d := range ds {
		if names[i], err = d.Name(); err != nil {
			return nil, nil, err
		}
		n, err := d.Len()
		if err != nil {
			return nil, nil, err
		}
		shape[i] = int(n)
	}
	return names, shape, nil
}

// readScaled reads a variable as float64, mapping fill and missing values to
// NaN and applying CF scale_factor/add_offset packing.
func readScaled(v netcdf.Var) ([]float64, error) {
	data, err := readRaw(v)
	if err != nil {
		return nil, err
	}
	scale, hasScale := attrFloat(v.Attr("scale_factor"))
	offset, hasOffset := attrFloat(v.Attr("add_offset"))
	fill, hasFill := attrFloat(v.Attr("_FillValue"))
	missing, hasMissing := attrFloat(v.Attr("missing_value"))
	isUnsigned := attrString(v.Attr("_Unsigned")) == "true"

	for i, x := range data {
		if (hasFill && sameRaw(x, fill, isUnsigned)) || (hasMissing && sameRaw(x, missing, isUnsigned)) || math.IsInf(x, 0) {
			data[i] = math.NaN()
			continue
		}
		if hasScale {
			x *= scale
		}
		if hasOffset {
			x += offset
		}
		data[i] = x
	}
	return data, nil
}

// readRaw reads the whole variable, widening numeric types to float64.
func readRaw(v netcdf.Var) ([]float64, error) {
	n, err := v.Len()
	if err != nil {
		return nil, err
	}
	t, err := v.Type()
	if err != nil {
		return nil, err
	}

	switch t {
	case netcdf.DOUBLE:
		buf := make([]float64, n)
		if err := v.ReadFloat64s(buf); err != nil {
			return nil, err
		}
		return buf, nil
	case netcdf.FLOAT:
		buf := make([]float32, n)
		if err := v.ReadFloat32s(buf); err != nil {
			return nil, err
		}
		return widen(buf), nil
	case netcdf.INT:
		buf := make([]int32, n)
		if err := v.ReadInt32s(buf); err != nil {
			return nil, err
		}
		return widen(buf), nil
	case netcdf.SHORT:
		buf := make([]int16, n)
		if err := v.ReadInt16s(buf); err != nil {
			return nil, err
		}
		if attrString(v.Attr("_Unsigned")) == "true" {
			return unsigned(widen(buf), 1<<16), nil
		}
		return widen(buf), nil
	case netcdf.BYTE:
		buf := make([]int8, n)
		if err := v.ReadInt8s(buf); err != nil {
			return nil, err
		}
		if attrString(v.Attr("_Unsigned")) == "true" {
			return unsigned(widen(buf), 1<<8), nil
		}
		return widen(buf), nil
	case netcdf.UBYTE:
		buf := make([]uint8, n)
		if err := v.ReadUint8s(buf); err != nil {
			return nil, err
		}
		return widen(buf), nil
	}
	return nil, fmt.Errorf("unsupported netCDF type %v", t)
}

func attrFloat(a netcdf.Attr) (float64, bool) {
	n, err := a.Len()
	if err != nil || n == 0 {
		return 0, false
	}
	t, err := a.Type()
	if err != nil {
		return 0, false
	}

	switch t {
	case netcdf.DOUBLE:
		buf := make([]float64, n)
		if a.ReadFloat64s(buf) != nil {
			return 0, false
		}
		return buf[0], true
	case netcdf.FLOAT:
		buf := make([]float32, n)
		if a.ReadFloat32s(buf) != nil {
			return 0, false
		}
		return float64(buf[0]), true
	case netcdf.INT:
		buf := make([]int32, n)
		if a.ReadInt32s(buf) != nil {
			return 0, false
		}
		return float64(buf[0]), true
	case netcdf.SHORT:
		buf := make([]int16, n)
		if a.ReadInt16s(buf) != nil {
			return 0, false
		}
		return float64(buf[0]), true
	case netcdf.BYTE:
		buf := make([]int8, n)
		if a.ReadInt8s(buf) != nil {
			return 0, false
		}
		return float64(buf[0]), true
	}
	return 0, false
}

func attrString(a netcdf.Attr) string {
	n, err := a.Len()
	if err != nil || n == 0 {
		return ""
	}
	if t, err := a.Type(); err != nil || t != netcdf.CHAR {
		return ""
	}
	buf := make([]byte, n)
	if err := a.ReadBytes(buf); err != nil {
		return ""
	}
	return strings.TrimRight(string(buf), "\x00")
}

// sameRaw compares a packed value against a sentinel attribute, which is
// stored signed even when the variable is flagged _Unsigned.
func sameRaw(x, ref float64, isUnsigned bool) bool {
	if x == ref {
		return true
	}
	return isUnsigned && ref < 0 && (x == ref+(1<<8) || x == ref+(1<<16))
}

// unsigned reinterprets negative packed values for variables flagged with
// the _Unsigned convention.
func unsigned(xs []float64, span float64) []float64 {
	for i, x := range xs {
		if x < 0 {
			xs[i] = x + span
		}
	}
	return xs
}

func widen[T int8 | uint8 | int16 | int32 | float32](xs []T) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}
