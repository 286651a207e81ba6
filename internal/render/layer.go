package render

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Layer is a read-only set of boundary geometries in lon/lat degrees.
type Layer struct {
	Name       string
	Geometries []orb.Geometry
}

// Boundaries are the three overlay layers, drawn land, coastline, states.
type Boundaries struct {
	Land      Layer
	Coastline Layer
	States    Layer
}

// ParseLayer decodes a GeoJSON FeatureCollection into a Layer.
func ParseLayer(name string, data []byte) (Layer, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return Layer{}, fmt.Errorf("parse %s layer: %w", name, err)
	}
	layer := Layer{Name: name, Geometries: make([]orb.Geometry, 0, len(fc.Features))}
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		layer.Geometries = append(layer.Geometries, f.Geometry)
	}
	return layer, nil
}

// LoadLayer reads and parses a GeoJSON file.
func LoadLayer(name, path string) (Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layer{}, fmt.Errorf("read %s layer: %w", name, err)
	}
	return ParseLayer(name, data)
}

// lines flattens a geometry to the polylines that outline it. Polygons yield
// their rings; points yield nothing.
func lines(g orb.Geometry) []orb.LineString {
	switch g := g.(type) {
	case orb.LineString:
		return []orb.LineString{g}
	case orb.MultiLineString:
		return g
	case orb.Ring:
		return []orb.LineString{orb.LineString(g)}
	case orb.Polygon:
		out := make([]orb.LineString, len(g))
		for i, r := range g {
			out[i] = orb.LineString(r)
		}
		return out
	case orb.MultiPolygon:
		var out []orb.LineString
		for _, p := range g {
			out = append(out, lines(p)...)
		}
		return out
	case orb.Collection:
		var out []orb.LineString
		for _, c := range g {
			out = append(out, lines(c)...)
		}
		return out
	}
	return nil
}
