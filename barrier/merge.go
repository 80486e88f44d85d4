package barrier

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paulmach/orb"
)

// SourceAttr is the output attribute carrying the source tag.
const SourceAttr = "Source"

// SourceTag labels the provenance of a finalized feature.
type SourceTag string

const (
	SourceSurveyRoad  SourceTag = "SurveyRoad"
	SourceSurveyTrail SourceTag = "SurveyTrail"
	SourceSurveyRail  SourceTag = "SurveyRail"
	SourceAgencyRoad  SourceTag = "AgencyRoad"
)

// PriorityOrder is the declared total order among sources, highest
// precedence first, used when resolving geometric coincidence: survey roads
// beat survey trails, and the merged survey group beats the agency roads.
// The dedup stages consume this order rather than encoding it in call
// sequence.
func PriorityOrder() []SourceTag {
	return []SourceTag{SourceSurveyRoad, SourceSurveyTrail, SourceSurveyRail, SourceAgencyRoad}
}

// MergeCollections unions the given collections into one. Features are
// cloned; attribute schemas are carried as-is.
func MergeCollections(fcs ...*FeatureCollection) *FeatureCollection {
	out := NewFeatureCollection()
	for _, fc := range fcs {
		if fc == nil {
			continue
		}
		for _, f := range fc.Features {
			out.AddFeature(f.Clone())
		}
	}
	return out
}

// TagSource returns a copy of the collection with the Source attribute set
// on every feature.
func TagSource(fc *FeatureCollection, tag SourceTag) *FeatureCollection {
	out := NewFeatureCollection()
	for _, f := range fc.Features {
		nf := f.Clone()
		nf.Properties[SourceAttr] = string(tag)
		out.AddFeature(nf)
	}
	return out
}

// Dissolve merges all features sharing identical values of the key
// attributes into one multi-part feature per key. Parts that touch at an
// endpoint are chained into continuous lines, so geometrically adjacent
// features collapse rather than merely co-residing in one geometry. Output
// features carry only the key attributes; order is deterministic (sorted by
// key).
func Dissolve(fc *FeatureCollection, keys ...string) *FeatureCollection {
	type group struct {
		props map[string]interface{}
		parts []orb.LineString
	}

	groups := make(map[string]*group)
	for _, f := range fc.Features {
		parts := geometryLines(f.Geometry)
		if len(parts) == 0 {
			continue
		}
		id := dissolveKey(f, keys)
		g, ok := groups[id]
		if !ok {
			props := make(map[string]interface{}, len(keys))
			for _, k := range keys {
				props[k] = f.Properties[k]
			}
			g = &group{props: props}
			groups[id] = g
		}
		g.parts = append(g.parts, parts...)
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := NewFeatureCollection()
	for _, id := range ids {
		g := groups[id]
		geom := multiLineStringToGeometry(chainParts(g.parts))
		if geom == nil {
			continue
		}
		out.AddFeature(NewFeature(geom, g.props))
	}
	return out
}

// dissolveKey formats the key attribute values of a feature into a stable
// grouping identifier.
func dissolveKey(f *Feature, keys []string) string {
	vals := make([]string, len(keys))
	for i, k := range keys {
		vals[i] = fmt.Sprintf("%s=%v", k, f.Properties[k])
	}
	return strings.Join(vals, "|")
}

// endpointKey quantizes a point for endpoint matching during chaining.
type endpointKey struct {
	x, y int64
}

func pointKey(p orb.Point) endpointKey {
	return endpointKey{quantize(p[0]), quantize(p[1])}
}

// chainParts joins line parts that share an endpoint into longer continuous
// lines. Greedy and deterministic: parts are consumed in input order and the
// lowest-index continuation wins. Duplicate parts (identical quantized
// endpoints and interior) survive as separate chains only if both remain
// unconsumed; coincident same-key geometry therefore collapses when one part
// continues the other.
func chainParts(parts []orb.LineString) []orb.LineString {
	if len(parts) <= 1 {
		return parts
	}

	// Endpoint adjacency: key -> indices of parts starting or ending there.
	adj := make(map[endpointKey][]int)
	for i, p := range parts {
		adj[pointKey(p[0])] = append(adj[pointKey(p[0])], i)
		adj[pointKey(p[len(p)-1])] = append(adj[pointKey(p[len(p)-1])], i)
	}

	used := make([]bool, len(parts))
	var chains []orb.LineString

	// next finds the lowest-index unused part incident to key, oriented to
	// start there.
	next := func(key endpointKey) (orb.LineString, bool) {
		for _, idx := range adj[key] {
			if used[idx] {
				continue
			}
			p := parts[idx]
			used[idx] = true
			if pointKey(p[0]) == key {
				return p, true
			}
			return reverseLine(p), true
		}
		return nil, false
	}

	for i := range parts {
		if used[i] {
			continue
		}
		used[i] = true
		chain := make(orb.LineString, len(parts[i]))
		copy(chain, parts[i])

		// Extend forward from the tail.
		for {
			cont, ok := next(pointKey(chain[len(chain)-1]))
			if !ok {
				break
			}
			chain = append(chain, cont[1:]...)
		}
		// Extend backward from the head.
		for {
			cont, ok := next(pointKey(chain[0]))
			if !ok {
				break
			}
			chain = append(reverseLine(cont), chain[1:]...)
		}

		chains = append(chains, chain)
	}
	return chains
}

func reverseLine(ls orb.LineString) orb.LineString {
	out := make(orb.LineString, len(ls))
	for i, p := range ls {
		out[len(ls)-1-i] = p
	}
	return out
}
