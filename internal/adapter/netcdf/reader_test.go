package netcdf

import (
	"math"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/couchcryptid/envis/internal/domain"
	"github.com/fhs/go-netcdf/netcdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSSTFile creates a packed (time, lat, lon) SST variable with a fill
// value in the first time step.
func writeSSTFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sst.nc")

	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	require.NoError(t, err)
	defer ds.Close()

	timeDim, err := ds.AddDim("time", 2)
	require.NoError(t, err)
	latDim, err := ds.AddDim("lat", 2)
	require.NoError(t, err)
	lonDim, err := ds.AddDim("lon", 3)
	require.NoError(t, err)

	latVar, err := ds.AddVar("lat", netcdf.DOUBLE, []netcdf.Dim{latDim})
	require.NoError(t, err)
	lonVar, err := ds.AddVar("lon", netcdf.DOUBLE, []netcdf.Dim{lonDim})
	require.NoError(t, err)
	sst, err := ds.AddVar("sst", netcdf.SHORT, []netcdf.Dim{timeDim, latDim, lonDim})
	require.NoError(t, err)
	swapped, err := ds.AddVar("swapped", netcdf.DOUBLE, []netcdf.Dim{lonDim, latDim})
	require.NoError(t, err)

	require.NoError(t, sst.Attr("scale_factor").WriteFloat32s([]float32{0.5}))
	require.NoError(t, sst.Attr("add_offset").WriteFloat32s([]float32{10}))
	require.NoError(t, sst.Attr("_FillValue").WriteInt16s([]int16{-999}))
	require.NoError(t, sst.Attr("units").WriteBytes([]byte("degC")))
	require.NoError(t, sst.Attr("long_name").WriteBytes([]byte("sea surface temperature")))
	require.NoError(t, ds.Attr("institution").WriteBytes([]byte("NOAA")))
	require.NoError(t, ds.EndDef())

	require.NoError(t, latVar.WriteFloat64s([]float64{-10, 10}))
	require.NoError(t, lonVar.WriteFloat64s([]float64{0, 90, 270}))
	require.NoError(t, sst.WriteInt16s([]int16{
		0, 2, -999,
		4, 6, 8,
		100, 100, 100,
		100, 100, 100,
	}))
	require.NoError(t, swapped.WriteFloat64s(make([]float64, 6)))
	return path
}

func writeFixedGridFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "acm.nc")

	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	require.NoError(t, err)
	defer ds.Close()

	yDim, err := ds.AddDim("y", 2)
	require.NoError(t, err)
	xDim, err := ds.AddDim("x", 3)
	require.NoError(t, err)

	xVar, err := ds.AddVar("x", netcdf.DOUBLE, []netcdf.Dim{xDim})
	require.NoError(t, err)
	yVar, err := ds.AddVar("y", netcdf.DOUBLE, []netcdf.Dim{yDim})
	require.NoError(t, err)
	acm, err := ds.AddVar("ACM", netcdf.SHORT, []netcdf.Dim{yDim, xDim})
	require.NoError(t, err)
	oneDim, err := ds.AddDim("one", 1)
	require.NoError(t, err)
	proj, err := ds.AddVar(projectionVar, netcdf.INT, []netcdf.Dim{oneDim})
	require.NoError(t, err)

	require.NoError(t, acm.Attr("_FillValue").WriteInt16s([]int16{-1}))
	require.NoError(t, proj.Attr("perspective_point_height").WriteFloat64s([]float64{35786023}))
	require.NoError(t, proj.Attr("semi_major_axis").WriteFloat64s([]float64{6378137}))
	require.NoError(t, proj.Attr("semi_minor_axis").WriteFloat64s([]float64{6356752.31414}))
	require.NoError(t, proj.Attr("longitude_of_projection_origin").WriteFloat64s([]float64{-75}))
	require.NoError(t, proj.Attr("sweep_angle_axis").WriteBytes([]byte("x")))
	require.NoError(t, ds.EndDef())

	// The third column points past the limb of the Earth.
	require.NoError(t, xVar.WriteFloat64s([]float64{0, -0.024052, 0.2}))
	require.NoError(t, yVar.WriteFloat64s([]float64{0.095340, 0}))
	require.NoError(t, acm.WriteInt16s([]int16{
		-1, 3, 1,
		2, 1, 1,
	}))
	return path
}

func TestReadGrid_UnpacksFirstTimeStep(t *testing.T) {
	g, err := NewReader().ReadGrid(writeSSTFile(t), "sst")
	require.NoError(t, err)

	assert.Equal(t, []float64{-10, 10}, g.Lat)
	assert.Equal(t, []float64{0, 90, 270}, g.Lon)
	require.Len(t, g.Values, 2)
	assert.Equal(t, []float64{12, 13, 14}, g.Values[1])
	assert.Equal(t, 10.0, g.Values[0][0])
	assert.Equal(t, 11.0, g.Values[0][1])
	assert.True(t, math.IsNaN(g.Values[0][2]), "fill value should read as NaN")
}

func TestReadGrid_MissingVariable(t *testing.T) {
	_, err := NewReader().ReadGrid(writeSSTFile(t), "chlor_a")

	var missing *domain.MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "chlor_a", missing.Column)
}

func TestReadGrid_RejectsNonGeographicLayout(t *testing.T) {
	_, err := NewReader().ReadGrid(writeSSTFile(t), "swapped")

	var shape *domain.ShapeMismatchError
	require.ErrorAs(t, err, &shape)
}

func TestReadGrid_MissingFile(t *testing.T) {
	_, err := NewReader().ReadGrid(filepath.Join(t.TempDir(), "absent.nc"), "sst")
	require.Error(t, err)
}

func TestDescribe(t *testing.T) {
	info, err := NewReader().Describe(writeSSTFile(t), "sst")
	require.NoError(t, err)

	assert.Equal(t, "sst", info.Variable)
	assert.Equal(t, "sea surface temperature", info.LongName)
	assert.Equal(t, "degC", info.Units)
	assert.Equal(t, "NOAA", info.Institution)
	assert.Equal(t, []string{"time", "lat", "lon"}, info.Dimensions)
	assert.Equal(t, []int{2, 2, 3}, info.Shape)
}

func TestReadFixedGrid_ProjectsOnDiskPixels(t *testing.T) {
	tbl, err := NewReader().ReadFixedGrid(writeFixedGridFile(t), "ACM")
	require.NoError(t, err)

	assert.Equal(t, []string{"lat", "lon", "ACM"}, tbl.Columns)
	// One fill value and two off-disk pixels are dropped.
	require.Len(t, tbl.Rows, 3)

	pug := parseRow(t, tbl.Rows[0])
	assert.InDelta(t, 33.846162, pug[0], 1e-3)
	assert.InDelta(t, -84.690932, pug[1], 1e-3)
	assert.Equal(t, 3.0, pug[2])

	nadir := parseRow(t, tbl.Rows[1])
	assert.InDelta(t, 0, nadir[0], 1e-9)
	assert.InDelta(t, -75, nadir[1], 1e-9)
	assert.Equal(t, 2.0, nadir[2])
}

func TestReadFixedGrid_RequiresProjection(t *testing.T) {
	_, err := NewReader().ReadFixedGrid(writeSSTFile(t), "sst")

	var missing *domain.MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, projectionVar, missing.Column)
}

func TestSameRaw_UnsignedSentinel(t *testing.T) {
	assert.True(t, sameRaw(255, -1, true))
	assert.True(t, sameRaw(65535, -1, true))
	assert.False(t, sameRaw(255, -1, false))
	assert.True(t, sameRaw(-1, -1, false))
}

func parseRow(t *testing.T, row []string) [3]float64 {
	t.Helper()
	var out [3]float64
	for i, cell := range row {
		v, err := strconv.ParseFloat(cell, 64)
		require.NoError(t, err)
		out[i] = v
	}
	return out
}
