package barrier

import (
	"math"

	"github.com/paulmach/orb"
)

// segKey is a canonical, direction-independent key for one line segment.
// Coordinates are quantized to ~0.1 mm so that exact duplicates hash equal
// regardless of float formatting, while distinct digitizations never
// collide.
type segKey struct {
	ax, ay, bx, by int64
}

func quantize(v float64) int64 {
	return int64(math.Round(v * 1e9))
}

func canonicalSegKey(a, b orb.Point) segKey {
	ax, ay := quantize(a[0]), quantize(a[1])
	bx, by := quantize(b[0]), quantize(b[1])
	if bx < ax || (bx == ax && by < ay) {
		ax, ay, bx, by = bx, by, ax, ay
	}
	return segKey{ax, ay, bx, by}
}

// segmentSet collects the canonical segment keys of every line part in the
// given collections.
func segmentSet(fcs ...*FeatureCollection) map[segKey]struct{} {
	set := make(map[segKey]struct{})
	for _, fc := range fcs {
		for _, f := range fc.Features {
			for _, part := range geometryLines(f.Geometry) {
				for i := 1; i < len(part); i++ {
					set[canonicalSegKey(part[i-1], part[i])] = struct{}{}
				}
			}
		}
	}
	return set
}

// EraseExactDuplicates removes from the lower-priority collection every
// segment whose coordinates exactly coincide with a segment of the
// higher-priority collection, in either direction. The higher-priority
// collection always wins ties and is never modified. Attributes are carried,
// not merged: surviving geometry keeps its own feature's attributes.
//
// This resolves only verbatim duplication; geometry representing the same
// road digitized with different vertices is handled by EraseWithinDistance.
// Features that coincide entirely are dropped. Partial coincidence can leave
// short remnants, which the caller prunes.
func EraseExactDuplicates(high, low *FeatureCollection) *FeatureCollection {
	set := segmentSet(high)
	out := NewFeatureCollection()

	for _, f := range low.Features {
		var kept []orb.LineString
		changed := false

		for _, part := range geometryLines(f.Geometry) {
			var run orb.LineString
			for i := 1; i < len(part); i++ {
				if _, dup := set[canonicalSegKey(part[i-1], part[i])]; dup {
					changed = true
					if len(run) >= 2 {
						kept = append(kept, run)
					}
					run = nil
					continue
				}
				if run == nil {
					run = orb.LineString{part[i-1]}
				}
				run = append(run, part[i])
			}
			if len(run) >= 2 {
				kept = append(kept, run)
			}
		}

		if !changed {
			out.AddFeature(f.Clone())
			continue
		}
		geom := multiLineStringToGeometry(kept)
		if geom == nil {
			continue
		}
		nf := f.Clone()
		nf.Geometry = geom
		out.AddFeature(nf)
	}
	return out
}
