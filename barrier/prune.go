package barrier

// DefaultMinFragmentMeters is the minimum geodesic length a feature must
// reach to survive fragment pruning.
const DefaultMinFragmentMeters = 100

// PruneShortFragments returns a copy of the collection without features
// whose total geodesic length falls below minMeters. Erase operations leave
// slivers at buffer boundaries that have no standalone meaning as barriers;
// this runs after every destructive erase, before the result feeds another
// buffer or erase stage.
func PruneShortFragments(fc *FeatureCollection, minMeters float64) *FeatureCollection {
	if minMeters <= 0 {
		minMeters = DefaultMinFragmentMeters
	}
	out := NewFeatureCollection()
	for _, f := range fc.Features {
		if geometryMeters(f.Geometry) < minMeters {
			continue
		}
		out.AddFeature(f.Clone())
	}
	return out
}
