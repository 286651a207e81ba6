package domain

import (
	"fmt"
	"math"
)

// GeosProjection holds the geostationary projection parameters of a GOES ABI
// fixed grid (the goes_imager_projection variable).
type GeosProjection struct {
	PerspectiveHeight float64 // satellite height above the ellipsoid, meters
	SemiMajor         float64 // meters
	SemiMinor         float64 // meters
	LonOrigin         float64 // degrees
	SweepAxis         string  // "x" for GOES-R
}

// Validate rejects parameter sets the inverse projection cannot handle.
func (p GeosProjection) Validate() error {
	if p.SweepAxis != "x" {
		return fmt.Errorf("unsupported sweep angle axis %q", p.SweepAxis)
	}
	if p.PerspectiveHeight <= 0 || p.SemiMajor <= 0 || p.SemiMinor <= 0 {
		return fmt.Errorf("invalid geostationary projection parameters")
	}
	return nil
}

// ToLatLon converts fixed-grid scan angles (radians) to geodetic degrees. Scan
// angles that miss the Earth's disk return NaN for both outputs.
func (p GeosProjection) ToLatLon(x, y float64) (lat, lon float64) {
	h := p.PerspectiveHeight + p.SemiMajor
	req2 := p.SemiMajor * p.SemiMajor
	rpol2 := p.SemiMinor * p.SemiMinor

	sinX, cosX := math.Sincos(x)
	sinY, cosY := math.Sincos(y)

	a := sinX*sinX + cosX*cosX*(cosY*cosY+req2/rpol2*sinY*sinY)
	b := -2 * h * cosX * cosY
	c := h*h - req2

	disc := b*b - 4*a*c
	if disc < 0 {
		return math.NaN(), math.NaN()
	}

	rs := (-b - math.Sqrt(disc)) / (2 * a)
	sx := rs * cosX * cosY
	sy := -rs * sinX
	sz := rs * cosX * sinY

	latRad := math.Atan(req2 / rpol2 * sz / math.Hypot(h-sx, sy))
	lonRad := p.LonOrigin*math.Pi/180 - math.Atan(sy/(h-sx))
	return latRad * 180 / math.Pi, WrapLongitude(lonRad * 180 / math.Pi)
}
