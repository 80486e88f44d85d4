package barrier

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
)

// clipSampleStepMeters is the sampling interval used when locating area of
// interest boundary crossings.
const clipSampleStepMeters = 25

// ClipToArea restricts a collection to the area of interest. Geometries
// straddling the boundary are truncated at it, not dropped whole; features
// wholly inside pass through with their original vertices. Everything in the
// result lies inside the area of interest.
func ClipToArea(fc *FeatureCollection, aoi *AreaOfInterest) *FeatureCollection {
	out := NewFeatureCollection()
	for _, f := range fc.Features {
		b, ok := geometryBound(f.Geometry)
		if !ok {
			continue
		}
		if !b.Intersects(aoi.Bound()) {
			continue
		}

		parts := geometryLines(f.Geometry)
		if len(parts) == 0 {
			continue
		}

		// Cheap trim against the padded bound first so the exact split never
		// samples geometry far outside the area.
		parts = clipPartsToBound(parts, aoi.Bound())

		inside := true
		for _, part := range parts {
			if !lineInsideRegion(part, aoi.region, clipSampleStepMeters) {
				inside = false
				break
			}
		}
		if inside {
			if len(parts) == 0 {
				continue
			}
			nf := f.Clone()
			nf.Geometry = multiLineStringToGeometry(parts)
			out.AddFeature(nf)
			continue
		}

		var kept []orb.LineString
		for _, part := range parts {
			kept = append(kept, splitLineByRegion(part, aoi.region, true, clipSampleStepMeters)...)
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

// clipPartsToBound trims line parts to a bounding box.
func clipPartsToBound(parts []orb.LineString, b orb.Bound) []orb.LineString {
	var out []orb.LineString
	for _, part := range parts {
		if partBound := part.Bound(); !b.Contains(partBound.Min) || !b.Contains(partBound.Max) {
			clipped := clip.Geometry(b, orb.MultiLineString{part})
			switch g := clipped.(type) {
			case orb.LineString:
				if len(g) >= 2 {
					out = append(out, g)
				}
			case orb.MultiLineString:
				for _, ls := range g {
					if len(ls) >= 2 {
						out = append(out, ls)
					}
				}
			}
			continue
		}
		out = append(out, part)
	}
	return out
}
