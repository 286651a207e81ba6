package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var latLonSST = ColumnSelection{Lat: "lat", Lon: "lon", Value: "sst"}

func TestTable_Records(t *testing.T) {
	t.Run("parses rows", func(t *testing.T) {
		tbl := Table{Columns: []string{"lat", "lon", "sst"}, Rows: [][]string{{"10", " 20 ", "25.5"}}}
		records, err := tbl.Records(latLonSST)
		require.NoError(t, err)
		assert.Equal(t, []Record{{Lat: 10, Lon: 20, Value: 25.5}}, records)
	})

	t.Run("rejects infinite coordinates", func(t *testing.T) {
		for _, row := range [][]string{{"inf", "20", "1"}, {"10", "-Inf", "1"}} {
			tbl := Table{Columns: []string{"lat", "lon", "sst"}, Rows: [][]string{row}}
			_, err := tbl.Records(latLonSST)
			var parse *ValueParseError
			require.ErrorAs(t, err, &parse, "row %v", row)
			assert.Equal(t, 0, parse.Row)
		}
	})
}

func TestTable_CheckNumeric(t *testing.T) {
	tbl := Table{
		Columns: []string{"lat", "lon", "sst"},
		Rows: [][]string{
			{"NA", "inf", "1"}, // skipped: null lat
			{"10", "20", "1"},
			{"11", "+Inf", "2"},
		},
	}

	err := tbl.CheckNumeric("lat", "lon")
	var parse *ValueParseError
	require.ErrorAs(t, err, &parse)
	assert.Equal(t, "lon", parse.Column)
	assert.Equal(t, 2, parse.Row)
	assert.Equal(t, "+Inf", parse.Value)

	assert.NoError(t, tbl.CheckNumeric("lat", "sst"))

	var missing *MissingColumnError
	assert.ErrorAs(t, tbl.CheckNumeric("depth"), &missing)
}
