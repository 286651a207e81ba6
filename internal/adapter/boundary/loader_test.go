package boundary

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/envis/internal/observability"
	"github.com/couchcryptid/envis/internal/render"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lineLayer = `{"type":"FeatureCollection","features":[
  {"type":"Feature","properties":{},"geometry":{"type":"LineString","coordinates":[[-10,0],[10,0]]}}
]}`

// --- mock for cache tests ---

type countingLoader struct {
	calls int
}

func (m *countingLoader) LoadLayer(ctx context.Context, name, path string) (render.Layer, error) {
	m.calls++
	return FileLoader{}.LoadLayer(ctx, name, path)
}

func writeLayer(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(lineLayer), 0o644))
	return path
}

func TestFileLoader_LoadLayer(t *testing.T) {
	path := writeLayer(t, t.TempDir(), "coast.geojson")

	layer, err := FileLoader{}.LoadLayer(context.Background(), CoastlineLayer, path)
	require.NoError(t, err)
	assert.Equal(t, CoastlineLayer, layer.Name)
	assert.Len(t, layer.Geometries, 1)
}

func TestFileLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FileLoader{}.LoadLayer(ctx, CoastlineLayer, "unused")
	require.ErrorIs(t, err, context.Canceled)
}

func TestCachedLoader_Hit(t *testing.T) {
	path := writeLayer(t, t.TempDir(), "coast.geojson")
	inner := &countingLoader{}
	metrics := observability.NewMetricsForTesting()
	cached, err := NewCachedLoader(inner, 4, metrics)
	require.NoError(t, err)

	for range 3 {
		_, err := cached.LoadLayer(context.Background(), CoastlineLayer, path)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.BoundaryCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.BoundaryCache.WithLabelValues("miss")), 0)
}

func TestCachedLoader_ReloadsModifiedFile(t *testing.T) {
	path := writeLayer(t, t.TempDir(), "coast.geojson")
	inner := &countingLoader{}
	cached, err := NewCachedLoader(inner, 4, nil)
	require.NoError(t, err)

	_, err = cached.LoadLayer(context.Background(), CoastlineLayer, path)
	require.NoError(t, err)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	_, err = cached.LoadLayer(context.Background(), CoastlineLayer, path)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedLoader_Eviction(t *testing.T) {
	dir := t.TempDir()
	a := writeLayer(t, dir, "a.geojson")
	b := writeLayer(t, dir, "b.geojson")
	inner := &countingLoader{}
	cached, err := NewCachedLoader(inner, 1, nil)
	require.NoError(t, err)

	ctx := context.Background()
	_, _ = cached.LoadLayer(ctx, "a", a)
	_, _ = cached.LoadLayer(ctx, "b", b)
	_, _ = cached.LoadLayer(ctx, "a", a)

	assert.Equal(t, 3, inner.calls)
	assert.Equal(t, 1, cached.Len())
}

func TestCachedLoader_MissingFileNotCached(t *testing.T) {
	inner := &countingLoader{}
	cached, err := NewCachedLoader(inner, 4, nil)
	require.NoError(t, err)

	_, err = cached.LoadLayer(context.Background(), StatesLayer, filepath.Join(t.TempDir(), "absent.geojson"))
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Zero(t, inner.calls)
	assert.Zero(t, cached.Len())
}

func TestNewCachedLoader_InvalidSize(t *testing.T) {
	_, err := NewCachedLoader(FileLoader{}, 0, nil)
	require.Error(t, err)
}

func TestSet_LoadBoundaries(t *testing.T) {
	dir := t.TempDir()
	set := Set{
		LandPath:      writeLayer(t, dir, "land.geojson"),
		CoastlinePath: writeLayer(t, dir, "coast.geojson"),
		StatesPath:    writeLayer(t, dir, "states.geojson"),
	}

	b, err := set.LoadBoundaries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, LandLayer, b.Land.Name)
	assert.Equal(t, CoastlineLayer, b.Coastline.Name)
	assert.Equal(t, StatesLayer, b.States.Name)
}

func TestSet_MissingLayer(t *testing.T) {
	dir := t.TempDir()
	set := Set{
		LandPath:      writeLayer(t, dir, "land.geojson"),
		CoastlinePath: filepath.Join(dir, "absent.geojson"),
		StatesPath:    writeLayer(t, dir, "states.geojson"),
	}

	_, err := set.LoadBoundaries(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), CoastlineLayer)
}
