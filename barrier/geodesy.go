package barrier

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// metersPerDegreeLat is the length of one degree of latitude. Longitude
// degrees shrink by the cosine of the latitude.
const metersPerDegreeLat = 111320.0

// localPlane maps lon/lat coordinates into a local planar frame measured in
// meters, using an equirectangular scale fixed at a reference latitude. All
// meter-valued parameters (buffer distance, fragment length, tile size) are
// applied through one plane per run so every stage agrees on scale. The
// approximation is accurate to well under a percent at incident-scale
// extents (tens of kilometers).
type localPlane struct {
	cosLat float64
}

// newLocalPlane creates a plane anchored at the given latitude.
func newLocalPlane(refLat float64) localPlane {
	c := math.Cos(refLat * math.Pi / 180)
	// Near-polar degenerate case: fall back to latitude scale.
	if c < 1e-6 {
		c = 1e-6
	}
	return localPlane{cosLat: c}
}

// planeForBound anchors a plane at the vertical center of a bound.
func planeForBound(b orb.Bound) localPlane {
	return newLocalPlane(b.Center()[1])
}

// toPlane converts a lon/lat point to local meters.
func (lp localPlane) toPlane(p orb.Point) orb.Point {
	return orb.Point{
		p[0] * metersPerDegreeLat * lp.cosLat,
		p[1] * metersPerDegreeLat,
	}
}

// metersToDegreesLat converts a meter distance to degrees of latitude, the
// conservative (larger) degree equivalent for bound padding.
func metersToDegreesLat(m float64) float64 {
	return m / metersPerDegreeLat
}

// metersToDegreesLon converts a meter distance to degrees of longitude at
// the plane's reference latitude.
func (lp localPlane) metersToDegreesLon(m float64) float64 {
	return m / (metersPerDegreeLat * lp.cosLat)
}

// lineMeters returns the geodesic length of a line in meters.
func lineMeters(ls orb.LineString) float64 {
	var total float64
	for i := 1; i < len(ls); i++ {
		total += geo.DistanceHaversine(ls[i-1], ls[i])
	}
	return total
}

// geometryMeters returns the geodesic length of a line-typed geometry,
// summed over all parts. Non-line geometries report zero length.
func geometryMeters(geom *Geometry) float64 {
	var total float64
	for _, part := range geometryLines(geom) {
		total += lineMeters(part)
	}
	return total
}

// pointSegmentMeters returns the distance in meters from point p to the
// segment [a, b], computed in the local plane. orb offers no geodesic
// point-to-segment distance, so the projection is done here.
func (lp localPlane) pointSegmentMeters(p, a, b orb.Point) float64 {
	return planePointSegment(lp.toPlane(p), lp.toPlane(a), lp.toPlane(b))
}

// planePointSegment is the standard planar point-to-segment distance.
func planePointSegment(p, a, b orb.Point) float64 {
	abx := b[0] - a[0]
	aby := b[1] - a[1]
	apx := p[0] - a[0]
	apy := p[1] - a[1]

	segLenSq := abx*abx + aby*aby
	if segLenSq == 0 {
		return math.Hypot(apx, apy)
	}

	t := (apx*abx + apy*aby) / segLenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	dx := p[0] - (a[0] + t*abx)
	dy := p[1] - (a[1] + t*aby)
	return math.Hypot(dx, dy)
}

// lerpPoint linearly interpolates between two lon/lat points. At the spans
// involved in crossing refinement (a few meters) the chord and the geodesic
// are indistinguishable.
func lerpPoint(a, b orb.Point, t float64) orb.Point {
	return orb.Point{
		a[0] + t*(b[0]-a[0]),
		a[1] + t*(b[1]-a[1]),
	}
}
