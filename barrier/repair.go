package barrier

import "github.com/paulmach/orb"

// RepairGeometry returns a copy of the collection with null and empty
// geometries removed and minor topological defects corrected. The repair
// rule is deterministic: repeated vertices collapse to one, backtracking
// spikes (A-B-A) collapse to the turning point, and parts left with fewer
// than two distinct vertices are dropped. Features with no surviving part
// are removed. Repairing an already-valid collection is a no-op up to
// geometry re-encoding, so the operation is idempotent.
func RepairGeometry(fc *FeatureCollection) *FeatureCollection {
	out := NewFeatureCollection()
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		var kept []orb.LineString
		for _, part := range geometryLines(f.Geometry) {
			if cleaned := repairLine(part); len(cleaned) >= 2 {
				kept = append(kept, cleaned)
			}
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

// repairLine removes repeated vertices and backtracking spikes until the
// line is stable. Terminates because every pass that changes anything
// shortens the vertex list.
func repairLine(ls orb.LineString) orb.LineString {
	for {
		cleaned := dropRepeats(ls)
		cleaned = dropSpikes(cleaned)
		if len(cleaned) == len(ls) {
			return cleaned
		}
		ls = cleaned
	}
}

func dropRepeats(ls orb.LineString) orb.LineString {
	if len(ls) == 0 {
		return ls
	}
	out := orb.LineString{ls[0]}
	for i := 1; i < len(ls); i++ {
		if ls[i] != out[len(out)-1] {
			out = append(out, ls[i])
		}
	}
	return out
}

func dropSpikes(ls orb.LineString) orb.LineString {
	if len(ls) < 3 {
		return ls
	}
	out := orb.LineString{ls[0]}
	for i := 1; i < len(ls); i++ {
		// A-B-A backtrack: drop B.
		if len(out) >= 2 && ls[i] == out[len(out)-2] {
			out = out[:len(out)-1]
			continue
		}
		out = append(out, ls[i])
	}
	return out
}
