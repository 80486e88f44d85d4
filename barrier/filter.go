package barrier

import (
	"math"
	"strings"
)

// RemoveByCode returns a copy of the collection without the features whose
// numeric classification attribute matches one of the given codes. Features
// missing the attribute are kept. The survey road source drops ferry and
// tunnel segments (codes 7 and 8) this way.
func RemoveByCode(fc *FeatureCollection, field string, codes ...float64) *FeatureCollection {
	out := NewFeatureCollection()
	for _, f := range fc.Features {
		v, ok := f.NumberProp(field)
		if ok && codeMatches(v, codes) {
			continue
		}
		out.AddFeature(f.Clone())
	}
	return out
}

func codeMatches(v float64, codes []float64) bool {
	for _, c := range codes {
		if math.Abs(v-c) < 1e-9 {
			return true
		}
	}
	return false
}

// RemoveByTextContains returns a copy of the collection without the features
// whose text attribute contains the given substring, case-insensitively.
// Matches the original source's LIKE '%Water%' trail filter. Features
// missing the attribute are kept.
func RemoveByTextContains(fc *FeatureCollection, field, substr string) *FeatureCollection {
	needle := strings.ToLower(substr)
	out := NewFeatureCollection()
	for _, f := range fc.Features {
		s, ok := f.StringProp(field)
		if ok && strings.Contains(strings.ToLower(s), needle) {
			continue
		}
		out.AddFeature(f.Clone())
	}
	return out
}
