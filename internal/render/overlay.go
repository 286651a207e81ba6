// Package render draws gridded datasets as color-mapped rasters on a fixed
// full-globe frame with boundary overlays.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/couchcryptid/envis/internal/domain"
	"github.com/paulmach/orb"
	"golang.org/x/image/vector"
)

// Default figure size in inches (14 x 7 keeps the 2:1 lon/lat aspect).
const (
	DefaultWidthInches  = 14.0
	DefaultHeightInches = 7.0
	DefaultDPI          = 300
)

// Options control one overlay render.
type Options struct {
	Colormap     string
	DPI          int
	WidthInches  float64
	HeightInches float64
}

func (o Options) withDefaults() Options {
	if o.Colormap == "" {
		o.Colormap = "jet"
	}
	if o.DPI <= 0 {
		o.DPI = DefaultDPI
	}
	if o.WidthInches <= 0 {
		o.WidthInches = DefaultWidthInches
	}
	if o.HeightInches <= 0 {
		o.HeightInches = DefaultHeightInches
	}
	return o
}

// Size returns the output image size in pixels. It depends only on the
// options, never on the grid.
func (o Options) Size() (width, height int) {
	o = o.withDefaults()
	return int(math.Round(o.WidthInches * float64(o.DPI))), int(math.Round(o.HeightInches * float64(o.DPI)))
}

// lineStyle is a boundary stroke: width in points (1/72 inch).
type lineStyle struct {
	color color.RGBA
	width float64
}

var (
	landStyle      = lineStyle{color: color.RGBA{128, 128, 128, 255}, width: 0.5}
	coastlineStyle = lineStyle{color: color.RGBA{0, 0, 0, 255}, width: 0.7}
	statesStyle    = lineStyle{color: color.RGBA{0, 0, 0, 255}, width: 0.4}
)

// Overlay renders g over the globe (lon -180..180, lat -90..90) and strokes
// the boundaries on top. g must be normalized (ascending axes). The color
// range spans the finite values of g; a grid with none fails with
// domain.ErrEmptyDataset.
func Overlay(g domain.Grid, b Boundaries, opts Options) (*image.RGBA, error) {
	opts = opts.withDefaults()
	if err := g.Validate(); err != nil {
		return nil, err
	}
	vmin, vmax, err := g.FiniteRange()
	if err != nil {
		return nil, err
	}
	cm, err := LookupColormap(opts.Colormap)
	if err != nil {
		return nil, err
	}

	w, h := opts.Size()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	paintRaster(img, g, cm, vmin, vmax)

	scale := float64(opts.DPI) / 72
	strokeLayer(img, b.Land, landStyle, scale)
	strokeLayer(img, b.Coastline, coastlineStyle, scale)
	strokeLayer(img, b.States, statesStyle, scale)
	return img, nil
}

// paintRaster fills every pixel whose center falls inside the grid extent
// with the color of the nearest cell. NaN cells leave the background.
func paintRaster(img *image.RGBA, g domain.Grid, cm Colormap, vmin, vmax float64) {
	ext := g.Extent()
	lonMin, lonMax, latMin, latMax := ext[0], ext[1], ext[2], ext[3]
	if lonMax <= lonMin || latMax <= latMin {
		return
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	cols := make([]int, w)
	for px := range cols {
		lon := -180 + (float64(px)+0.5)*360/float64(w)
		cols[px] = cellIndex(lon, lonMin, lonMax, g.Cols())
	}
	rows := make([]int, h)
	for py := range rows {
		lat := 90 - (float64(py)+0.5)*180/float64(h)
		rows[py] = cellIndex(lat, latMin, latMax, g.Rows())
	}

	span := vmax - vmin
	for py, r := range rows {
		if r < 0 {
			continue
		}
		row := g.Values[r]
		for px, c := range cols {
			if c < 0 {
				continue
			}
			v := row[c]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			t := 0.0
			if span > 0 {
				t = (v - vmin) / span
			}
			img.SetRGBA(px, py, cm.At(t))
		}
	}
}

// cellIndex maps a coordinate to a cell of n equal cells spanning [lo, hi],
// or -1 when outside.
func cellIndex(v, lo, hi float64, n int) int {
	if v < lo || v > hi {
		return -1
	}
	i := int((v - lo) / (hi - lo) * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// strokeLayer draws every outline of the layer as anti-aliased square-capped
// segments. Segments jumping more than half the globe (antimeridian
// crossings) are skipped.
func strokeLayer(img *image.RGBA, layer Layer, style lineStyle, pxPerPoint float64) {
	if len(layer.Geometries) == 0 {
		return
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	half := style.width * pxPerPoint / 2

	project := func(p orb.Point) (float64, float64) {
		return (p.Lon() + 180) / 360 * float64(w), (90 - p.Lat()) / 180 * float64(h)
	}

	z := vector.NewRasterizer(w, h)
	drawn := false
	for _, geom := range layer.Geometries {
		for _, ls := range lines(geom) {
			for i := 1; i < len(ls); i++ {
				if math.Abs(ls[i].Lon()-ls[i-1].Lon()) > 180 {
					continue
				}
				x0, y0 := project(ls[i-1])
				x1, y1 := project(ls[i])
				if segment(z, x0, y0, x1, y1, half) {
					drawn = true
				}
			}
		}
	}
	if drawn {
		z.Draw(img, img.Bounds(), image.NewUniform(style.color), image.Point{})
	}
}

// segment adds one segment as a quad to the rasterizer path. All quads share
// the same winding so overlaps accumulate instead of cancelling.
func segment(z *vector.Rasterizer, x0, y0, x1, y1, half float64) bool {
	dx, dy := x1-x0, y1-y0
	l := math.Hypot(dx, dy)
	if l == 0 {
		return false
	}
	ux, uy := dx/l*half, dy/l*half // along
	nx, ny := -uy, ux              // normal

	z.MoveTo(float32(x0-ux+nx), float32(y0-uy+ny))
	z.LineTo(float32(x1+ux+nx), float32(y1+uy+ny))
	z.LineTo(float32(x1+ux-nx), float32(y1+uy-ny))
	z.LineTo(float32(x0-ux-nx), float32(y0-uy-ny))
	z.ClosePath()
	return true
}

// WritePNG encodes img to path, creating parent directories as needed. The
// write is not atomic.
func WritePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
