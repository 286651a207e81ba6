// Package boundary loads the coastline, land and state layers drawn over
// every overlay.
package boundary

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/couchcryptid/envis/internal/observability"
	"github.com/couchcryptid/envis/internal/render"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Layer names as they appear in logs and errors.
const (
	LandLayer      = "land_mask"
	CoastlineLayer = "coastline"
	StatesLayer    = "state_mask"
)

// LayerLoader reads one boundary layer from a path.
type LayerLoader interface {
	LoadLayer(ctx context.Context, name, path string) (render.Layer, error)
}

// FileLoader reads GeoJSON layers from the local filesystem.
type FileLoader struct{}

// LoadLayer reads path on every call.
func (FileLoader) LoadLayer(ctx context.Context, name, path string) (render.Layer, error) {
	if err := ctx.Err(); err != nil {
		return render.Layer{}, err
	}
	return render.LoadLayer(name, path)
}

// CachedLoader wraps a LayerLoader with an in-memory LRU cache keyed by path
// and modification time, so an edited layer file is picked up on next use.
type CachedLoader struct {
	inner   LayerLoader
	cache   *lru.Cache[string, render.Layer]
	metrics *observability.Metrics
	mu      sync.Mutex
}

// NewCachedLoader creates a cache decorator holding up to maxEntries layers.
func NewCachedLoader(inner LayerLoader, maxEntries int, metrics *observability.Metrics) (*CachedLoader, error) {
	cache, err := lru.New[string, render.Layer](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("boundary cache: %w", err)
	}
	return &CachedLoader{inner: inner, cache: cache, metrics: metrics}, nil
}

func (c *CachedLoader) LoadLayer(ctx context.Context, name, path string) (render.Layer, error) {
	info, err := os.Stat(path)
	if err != nil {
		return render.Layer{}, fmt.Errorf("read %s layer: %w", name, err)
	}
	key := fmt.Sprintf("%s@%d", path, info.ModTime().UnixNano())

	// Serialize misses so concurrent renders parse each file once.
	c.mu.Lock()
	defer c.mu.Unlock()

	if layer, ok := c.cache.Get(key); ok {
		c.observe("hit")
		return layer, nil
	}
	c.observe("miss")

	layer, err := c.inner.LoadLayer(ctx, name, path)
	if err != nil {
		return render.Layer{}, err
	}
	c.cache.Add(key, layer)
	return layer, nil
}

// Len returns the number of cached layers.
func (c *CachedLoader) Len() int {
	return c.cache.Len()
}

func (c *CachedLoader) observe(result string) {
	if c.metrics != nil {
		c.metrics.BoundaryCache.WithLabelValues(result).Inc()
	}
}

// Set names the three layer files that make up the overlay boundaries.
type Set struct {
	LandPath      string
	CoastlinePath string
	StatesPath    string
	Loader        LayerLoader
}

// LoadBoundaries reads all three layers. Any missing layer fails the load.
func (s Set) LoadBoundaries(ctx context.Context) (render.Boundaries, error) {
	loader := s.Loader
	if loader == nil {
		loader = FileLoader{}
	}

	var b render.Boundaries
	for _, l := range []struct {
		name, path string
		dst        *render.Layer
	}{
		{LandLayer, s.LandPath, &b.Land},
		{CoastlineLayer, s.CoastlinePath, &b.Coastline},
		{StatesLayer, s.StatesPath, &b.States},
	} {
		layer, err := loader.LoadLayer(ctx, l.name, l.path)
		if err != nil {
			return render.Boundaries{}, err
		}
		*l.dst = layer
	}
	return b, nil
}
