package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sstTable(rows ...[]string) Table {
	return Table{Columns: []string{"Lat", "LON", "SST"}, Rows: rows}
}

func TestResolveColumns(t *testing.T) {
	t.Run("short aliases", func(t *testing.T) {
		tbl := sstTable().NormalizeColumns()
		sel, err := ResolveColumns(tbl, "SST")
		require.NoError(t, err)
		assert.Equal(t, ColumnSelection{Lat: "lat", Lon: "lon", Value: "sst"}, sel)
	})

	t.Run("long aliases", func(t *testing.T) {
		tbl := Table{Columns: []string{"Latitude", "Longitude", "dust"}}.NormalizeColumns()
		sel, err := ResolveColumns(tbl, "dust")
		require.NoError(t, err)
		assert.Equal(t, ColumnSelection{Lat: "latitude", Lon: "longitude", Value: "dust"}, sel)
	})

	t.Run("missing coordinates", func(t *testing.T) {
		tbl := Table{Columns: []string{"x", "y", "sst"}}
		_, err := ResolveColumns(tbl, "sst")
		var missing *MissingColumnError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "lat|latitude", missing.Column)
		assert.Equal(t, []string{"x", "y", "sst"}, missing.Available)
	})

	t.Run("missing value column lists available", func(t *testing.T) {
		tbl := sstTable().NormalizeColumns()
		_, err := ResolveColumns(tbl, "chlorophyll")
		var missing *MissingColumnError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "chlorophyll", missing.Column)
		assert.Contains(t, err.Error(), "Available: [lat, lon, sst]")
	})
}

func TestConvertToFeatures(t *testing.T) {
	t.Run("drops rows with null value", func(t *testing.T) {
		tbl := sstTable(
			[]string{"10.0", "20.0", "25.5"},
			[]string{"11.0", "21.0", ""},
			[]string{"12.0", "22.0", "26.0"},
		)
		conv, err := ConvertToFeatures(tbl, "sst", DefaultMaxPoints)
		require.NoError(t, err)

		require.Len(t, conv.Features.Features, 2)
		assert.Equal(t, 2, conv.ValidRows)
		assert.False(t, conv.Sampled)

		first := conv.Features.Features[0]
		assert.Equal(t, orb.Point{20.0, 10.0}, first.Geometry)
		assert.Equal(t, 25.5, first.Properties["sst"])
		assert.Equal(t, 10.0, first.Properties["lat"])
		assert.Equal(t, 20.0, first.Properties["lon"])
	})

	t.Run("missing columns fail before geometry", func(t *testing.T) {
		tbl := Table{Columns: []string{"x", "y", "sst"}, Rows: [][]string{{"not", "numbers", "1"}}}
		_, err := ConvertToFeatures(tbl, "sst", DefaultMaxPoints)
		var missing *MissingColumnError
		require.ErrorAs(t, err, &missing)
	})

	t.Run("all rows null is an empty result", func(t *testing.T) {
		tbl := sstTable(
			[]string{"10.0", "NaN", "1"},
			[]string{"NA", "20", "2"},
		)
		_, err := ConvertToFeatures(tbl, "sst", DefaultMaxPoints)
		assert.ErrorIs(t, err, ErrEmptyResult)
	})

	t.Run("non-numeric coordinate", func(t *testing.T) {
		tbl := sstTable([]string{"north", "20", "2"})
		_, err := ConvertToFeatures(tbl, "sst", DefaultMaxPoints)
		var parse *ValueParseError
		require.ErrorAs(t, err, &parse)
		assert.Equal(t, "lat", parse.Column)
		assert.Equal(t, 0, parse.Row)
	})

	t.Run("coordinate errors name the source row", func(t *testing.T) {
		rows := make([][]string, 40)
		for i := range rows {
			rows[i] = []string{strconv.Itoa(i % 90), strconv.Itoa(i), "1"}
		}
		rows[0][2] = "NA"
		rows[33][0] = "inf"
		_, err := ConvertToFeatures(sstTable(rows...), "sst", 5)
		var parse *ValueParseError
		require.ErrorAs(t, err, &parse)
		assert.Equal(t, "lat", parse.Column)
		assert.Equal(t, 33, parse.Row)
		assert.Equal(t, "inf", parse.Value)
	})

	t.Run("caps features at the limit", func(t *testing.T) {
		rows := make([][]string, 50)
		for i := range rows {
			rows[i] = []string{strconv.Itoa(i % 90), strconv.Itoa(i), fmt.Sprintf("%d.5", i)}
		}
		conv, err := ConvertToFeatures(sstTable(rows...), "sst", 10)
		require.NoError(t, err)
		assert.Len(t, conv.Features.Features, 10)
		assert.Equal(t, 50, conv.ValidRows)
		assert.True(t, conv.Sampled)
	})

	t.Run("encodes as GeoJSON", func(t *testing.T) {
		conv, err := ConvertToFeatures(sstTable([]string{"10", "20", "25.5"}), "sst", DefaultMaxPoints)
		require.NoError(t, err)

		data, err := json.Marshal(conv.Features)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"type": "FeatureCollection",
			"features": [{
				"type": "Feature",
				"geometry": {"type": "Point", "coordinates": [20, 10]},
				"properties": {"lat": 10, "lon": 20, "sst": 25.5}
			}]
		}`, string(data))
	})
}
