package domain

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// PointConversion describes a finished table-to-features conversion.
type PointConversion struct {
	Features  *geojson.FeatureCollection
	Selection ColumnSelection
	// ValidRows counts rows left after null filtering, before sampling.
	ValidRows int
	// Sampled is true when ValidRows exceeded the cap.
	Sampled bool
}

// ConvertToFeatures turns a table into a point FeatureCollection:
// column names are normalized, the lat/lon/value columns resolved, rows with
// a null among them dropped, the remainder downsampled to maxPoints, and each
// row emitted as a Point (lon, lat) carrying the three columns as properties.
// Coordinates are checked before filtering, so a ValueParseError names the
// row of t.
func ConvertToFeatures(t Table, value string, maxPoints int) (PointConversion, error) {
	t = t.NormalizeColumns()

	sel, err := ResolveColumns(t, value)
	if err != nil {
		return PointConversion{}, err
	}

	if err := t.CheckNumeric(sel.Lat, sel.Lon); err != nil {
		return PointConversion{}, err
	}

	projected, err := t.Project(sel.Names())
	if err != nil {
		return PointConversion{}, err
	}
	valid := projected.Len()
	sampled := projected.Sample(maxPoints, DefaultSampleSeed)

	if sampled.Len() == 0 {
		return PointConversion{}, ErrEmptyResult
	}

	fc, err := EncodeFeatures(sampled, sel)
	if err != nil {
		return PointConversion{}, err
	}
	return PointConversion{
		Features:  fc,
		Selection: sel,
		ValidRows: valid,
		Sampled:   sampled.Len() < valid,
	}, nil
}

// EncodeFeatures emits one Point feature per row. Geometry is (lon, lat);
// properties hold every column of the row.
func EncodeFeatures(t Table, sel ColumnSelection) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	fc.Features = make([]*geojson.Feature, 0, t.Len())

	for i, row := range t.Rows {
		lat, err := t.Float(i, sel.Lat)
		if err != nil {
			return nil, err
		}
		lon, err := t.Float(i, sel.Lon)
		if err != nil {
			return nil, err
		}
		if math.IsInf(lat, 0) || math.IsInf(lon, 0) {
			return nil, &ValueParseError{Column: sel.Lat + "/" + sel.Lon, Row: i, Value: fmt.Sprintf("%g,%g", lat, lon)}
		}

		f := geojson.NewFeature(orb.Point{lon, lat})
		for j, col := range t.Columns {
			f.Properties[col] = cellValue(row[j])
		}
		fc.Append(f)
	}
	return fc, nil
}
