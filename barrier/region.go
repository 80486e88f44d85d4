package barrier

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// Region is a point-membership test over lon/lat space. The clip and erase
// stages are both expressed as splitting lines against a region: the area of
// interest keeps what falls inside, the reference buffer removes it.
type Region interface {
	Contains(p orb.Point) bool
}

// cellKey addresses one cell of a segment index grid.
type cellKey struct {
	x, y int
}

// planeSegment is a line segment in local plane coordinates (meters).
type planeSegment struct {
	a, b orb.Point
}

// segmentIndex is a uniform grid hash over line segments in the local plane.
// Segments are inserted into every cell their bounding box overlaps, so a
// window query padded by the search radius sees every candidate.
type segmentIndex struct {
	plane localPlane
	cell  float64
	cells map[cellKey][]planeSegment
	count int
}

// newSegmentIndex creates an index with the given cell size in meters.
func newSegmentIndex(plane localPlane, cellMeters float64) *segmentIndex {
	if cellMeters <= 0 {
		cellMeters = 50
	}
	return &segmentIndex{
		plane: plane,
		cell:  cellMeters,
		cells: make(map[cellKey][]planeSegment),
	}
}

// addLine inserts every segment of a lon/lat line.
func (idx *segmentIndex) addLine(ls orb.LineString) {
	for i := 1; i < len(ls); i++ {
		a := idx.plane.toPlane(ls[i-1])
		b := idx.plane.toPlane(ls[i])
		seg := planeSegment{a: a, b: b}

		minX := int(math.Floor(math.Min(a[0], b[0]) / idx.cell))
		maxX := int(math.Floor(math.Max(a[0], b[0]) / idx.cell))
		minY := int(math.Floor(math.Min(a[1], b[1]) / idx.cell))
		maxY := int(math.Floor(math.Max(a[1], b[1]) / idx.cell))

		for x := minX; x <= maxX; x++ {
			for y := minY; y <= maxY; y++ {
				key := cellKey{x, y}
				idx.cells[key] = append(idx.cells[key], seg)
			}
		}
		idx.count++
	}
}

// addCollection inserts every line part of every feature.
func (idx *segmentIndex) addCollection(fc *FeatureCollection) {
	for _, f := range fc.Features {
		for _, part := range geometryLines(f.Geometry) {
			idx.addLine(part)
		}
	}
}

// withinDistance reports whether any indexed segment lies within d meters of
// the lon/lat point p.
func (idx *segmentIndex) withinDistance(p orb.Point, d float64) bool {
	if idx.count == 0 || d < 0 {
		return false
	}
	pp := idx.plane.toPlane(p)

	minX := int(math.Floor((pp[0] - d) / idx.cell))
	maxX := int(math.Floor((pp[0] + d) / idx.cell))
	minY := int(math.Floor((pp[1] - d) / idx.cell))
	maxY := int(math.Floor((pp[1] + d) / idx.cell))

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for _, seg := range idx.cells[cellKey{x, y}] {
				if planePointSegment(pp, seg.a, seg.b) <= d {
					return true
				}
			}
		}
	}
	return false
}

// lineBufferRegion is the set of points within a fixed distance of any
// segment in a reference line set. Membership in this region is exactly
// membership in the dissolved buffer polygon of the reference at that
// distance, without constructing the polygon.
type lineBufferRegion struct {
	idx  *segmentIndex
	dist float64
}

// newLineBufferRegion builds a buffer region over all line geometry in the
// given collections.
func newLineBufferRegion(plane localPlane, dist float64, fcs ...*FeatureCollection) *lineBufferRegion {
	idx := newSegmentIndex(plane, math.Max(dist, 50))
	for _, fc := range fcs {
		idx.addCollection(fc)
	}
	return &lineBufferRegion{idx: idx, dist: dist}
}

func (r *lineBufferRegion) Contains(p orb.Point) bool {
	return r.idx.withinDistance(p, r.dist)
}

// expandedPolygonRegion is a polygon set grown outward by a margin: a point
// is a member if it is inside any polygon or within the margin of any
// polygon boundary.
type expandedPolygonRegion struct {
	polys  []orb.Polygon
	edges  *segmentIndex
	margin float64
}

// newExpandedPolygonRegion builds the region from polygon geometries.
func newExpandedPolygonRegion(plane localPlane, margin float64, polys []orb.Polygon) *expandedPolygonRegion {
	edges := newSegmentIndex(plane, math.Max(margin, 50))
	for _, poly := range polys {
		for _, ring := range poly {
			edges.addLine(orb.LineString(ring))
		}
	}
	return &expandedPolygonRegion{polys: polys, edges: edges, margin: margin}
}

func (r *expandedPolygonRegion) Contains(p orb.Point) bool {
	for _, poly := range r.polys {
		if planar.PolygonContains(poly, p) {
			return true
		}
	}
	return r.margin > 0 && r.edges.withinDistance(p, r.margin)
}

// crossingRefineMeters is the bisection tolerance for locating a region
// boundary crossing along a segment. Well under source data precision.
const crossingRefineMeters = 0.01

// splitLineByRegion cuts a line against a region and returns the parts where
// membership matches keepInside. Segments are sampled at stepMeters to catch
// interior crossings; each detected crossing is refined by bisection so cut
// points land on the region boundary. Kept runs follow the original line
// exactly (samples lie on it) but are densified to the sample spacing.
func splitLineByRegion(ls orb.LineString, region Region, keepInside bool, stepMeters float64) []orb.LineString {
	if len(ls) < 2 {
		return nil
	}
	if stepMeters <= 0 {
		stepMeters = 10
	}

	keep := func(p orb.Point) bool {
		if keepInside {
			return region.Contains(p)
		}
		return !region.Contains(p)
	}

	type sample struct {
		p    orb.Point
		keep bool
	}

	samples := make([]sample, 0, len(ls))
	samples = append(samples, sample{ls[0], keep(ls[0])})
	for i := 1; i < len(ls); i++ {
		a, b := ls[i-1], ls[i]
		n := int(geo.DistanceHaversine(a, b) / stepMeters)
		for j := 1; j <= n; j++ {
			p := lerpPoint(a, b, float64(j)/float64(n+1))
			samples = append(samples, sample{p, keep(p)})
		}
		samples = append(samples, sample{b, keep(b)})
	}

	var parts []orb.LineString
	var run orb.LineString

	flush := func() {
		if len(run) >= 2 {
			parts = append(parts, run)
		}
		run = nil
	}

	if samples[0].keep {
		run = orb.LineString{samples[0].p}
	}
	for i := 1; i < len(samples); i++ {
		prev, cur := samples[i-1], samples[i]
		switch {
		case prev.keep && cur.keep:
			run = append(run, cur.p)
		case prev.keep && !cur.keep:
			run = append(run, refineCrossing(prev.p, cur.p, keep))
			flush()
		case !prev.keep && cur.keep:
			run = orb.LineString{refineCrossing(cur.p, prev.p, keep), cur.p}
		}
	}
	flush()

	return parts
}

// refineCrossing bisects between a kept point and a dropped point until the
// boundary is located within crossingRefineMeters. The returned point is on
// the kept side.
func refineCrossing(kept, dropped orb.Point, keep func(orb.Point) bool) orb.Point {
	for geo.DistanceHaversine(kept, dropped) > crossingRefineMeters {
		mid := lerpPoint(kept, dropped, 0.5)
		if keep(mid) {
			kept = mid
		} else {
			dropped = mid
		}
	}
	return kept
}

// lineTouchesRegion reports whether any sampled point of the line is a
// member of the region, at the same sampling the split uses.
func lineTouchesRegion(ls orb.LineString, region Region, stepMeters float64) bool {
	if stepMeters <= 0 {
		stepMeters = 10
	}
	if len(ls) > 0 && region.Contains(ls[0]) {
		return true
	}
	for i := 1; i < len(ls); i++ {
		a, b := ls[i-1], ls[i]
		n := int(geo.DistanceHaversine(a, b) / stepMeters)
		for j := 1; j <= n; j++ {
			if region.Contains(lerpPoint(a, b, float64(j)/float64(n+1))) {
				return true
			}
		}
		if region.Contains(b) {
			return true
		}
	}
	return false
}

// lineInsideRegion reports whether every sampled point of the line is a
// member of the region.
func lineInsideRegion(ls orb.LineString, region Region, stepMeters float64) bool {
	if stepMeters <= 0 {
		stepMeters = 10
	}
	if len(ls) > 0 && !region.Contains(ls[0]) {
		return false
	}
	for i := 1; i < len(ls); i++ {
		a, b := ls[i-1], ls[i]
		n := int(geo.DistanceHaversine(a, b) / stepMeters)
		for j := 1; j <= n; j++ {
			if !region.Contains(lerpPoint(a, b, float64(j)/float64(n+1))) {
				return false
			}
		}
		if !region.Contains(b) {
			return false
		}
	}
	return true
}

// splitFeatureByRegion applies splitLineByRegion to every line part of a
// feature. Returns a clone carrying the surviving parts, or nil when nothing
// survives. Attributes are preserved.
func splitFeatureByRegion(f *Feature, region Region, keepInside bool, stepMeters float64) *Feature {
	var kept []orb.LineString
	for _, part := range geometryLines(f.Geometry) {
		kept = append(kept, splitLineByRegion(part, region, keepInside, stepMeters)...)
	}
	geom := multiLineStringToGeometry(kept)
	if geom == nil {
		return nil
	}
	out := f.Clone()
	out.Geometry = geom
	return out
}
