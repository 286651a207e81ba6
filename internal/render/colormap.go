package render

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/couchcryptid/envis/internal/domain"
)

// Colormap maps a normalized value in [0, 1] to a color.
type Colormap interface {
	At(t float64) color.RGBA
}

// stops is a piecewise-linear colormap over evenly spaced color stops.
type stops []color.RGBA

func (s stops) At(t float64) color.RGBA {
	if math.IsNaN(t) {
		return color.RGBA{}
	}
	t = math.Max(0, math.Min(1, t))
	pos := t * float64(len(s)-1)
	i := int(pos)
	if i >= len(s)-1 {
		return s[len(s)-1]
	}
	f := pos - float64(i)
	a, b := s[i], s[i+1]
	return color.RGBA{
		R: lerp(a.R, b.R, f),
		G: lerp(a.G, b.G, f),
		B: lerp(a.B, b.B, f),
		A: 0xff,
	}
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}

// jet samples the classic rainbow map at eighths: dark blue, blue, cyan,
// yellow, red, dark red.
var jet = stops{
	{0, 0, 128, 255},
	{0, 0, 255, 255},
	{0, 128, 255, 255},
	{0, 255, 255, 255},
	{128, 255, 128, 255},
	{255, 255, 0, 255},
	{255, 128, 0, 255},
	{255, 0, 0, 255},
	{128, 0, 0, 255},
}

// ylOrRd is the 9-class ColorBrewer yellow-orange-red sequential scheme.
var ylOrRd = stops{
	{255, 255, 204, 255},
	{255, 237, 160, 255},
	{254, 217, 118, 255},
	{254, 178, 76, 255},
	{253, 141, 60, 255},
	{252, 78, 42, 255},
	{227, 26, 28, 255},
	{189, 0, 38, 255},
	{128, 0, 38, 255},
}

var colormaps = map[string]Colormap{
	"jet":    jet,
	"ylorrd": ylOrRd,
}

// LookupColormap resolves a colormap by case-insensitive name.
func LookupColormap(name string) (Colormap, error) {
	cm, ok := colormaps[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownColormap, name)
	}
	return cm, nil
}
