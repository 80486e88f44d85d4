package barrier

import (
	"encoding/json"

	"github.com/paulmach/orb"
)

// orbLineString converts a Geometry of type LineString to an orb.LineString.
// Returns nil if the geometry is nil, not a LineString, or has invalid
// coordinates.
func orbLineString(geom *Geometry) orb.LineString {
	if geom == nil || geom.Type != GeometryLineString {
		return nil
	}
	var coords [][2]float64
	if err := json.Unmarshal(geom.Coordinates, &coords); err != nil {
		return nil
	}
	ls := make(orb.LineString, len(coords))
	for i, c := range coords {
		ls[i] = orb.Point{c[0], c[1]}
	}
	return ls
}

// orbMultiLineString converts a Geometry of type MultiLineString to an
// orb.MultiLineString.
func orbMultiLineString(geom *Geometry) orb.MultiLineString {
	if geom == nil || geom.Type != GeometryMultiLineString {
		return nil
	}
	var lines [][][2]float64
	if err := json.Unmarshal(geom.Coordinates, &lines); err != nil {
		return nil
	}
	mls := make(orb.MultiLineString, len(lines))
	for i, line := range lines {
		ls := make(orb.LineString, len(line))
		for j, c := range line {
			ls[j] = orb.Point{c[0], c[1]}
		}
		mls[i] = ls
	}
	return mls
}

// orbPolygon converts a Geometry of type Polygon to an orb.Polygon.
func orbPolygon(geom *Geometry) orb.Polygon {
	if geom == nil || geom.Type != GeometryPolygon {
		return nil
	}
	var rings [][][2]float64
	if err := json.Unmarshal(geom.Coordinates, &rings); err != nil {
		return nil
	}
	poly := make(orb.Polygon, len(rings))
	for i, ring := range rings {
		r := make(orb.Ring, len(ring))
		for j, c := range ring {
			r[j] = orb.Point{c[0], c[1]}
		}
		poly[i] = r
	}
	return poly
}

// orbMultiPolygon converts a Geometry of type MultiPolygon to an
// orb.MultiPolygon.
func orbMultiPolygon(geom *Geometry) orb.MultiPolygon {
	if geom == nil || geom.Type != GeometryMultiPolygon {
		return nil
	}
	var polys [][][][2]float64
	if err := json.Unmarshal(geom.Coordinates, &polys); err != nil {
		return nil
	}
	mp := make(orb.MultiPolygon, len(polys))
	for i, rings := range polys {
		poly := make(orb.Polygon, len(rings))
		for j, ring := range rings {
			r := make(orb.Ring, len(ring))
			for k, c := range ring {
				r[k] = orb.Point{c[0], c[1]}
			}
			poly[j] = r
		}
		mp[i] = poly
	}
	return mp
}

// geometryLines extracts all line parts from a line-typed geometry.
// LineString yields one part, MultiLineString yields each part. Other
// geometry types yield nil.
func geometryLines(geom *Geometry) []orb.LineString {
	if geom == nil {
		return nil
	}
	switch geom.Type {
	case GeometryLineString:
		ls := orbLineString(geom)
		if len(ls) == 0 {
			return nil
		}
		return []orb.LineString{ls}
	case GeometryMultiLineString:
		mls := orbMultiLineString(geom)
		var parts []orb.LineString
		for _, ls := range mls {
			if len(ls) > 0 {
				parts = append(parts, ls)
			}
		}
		return parts
	default:
		return nil
	}
}

// geometryPolygons extracts all polygons from a polygon-typed geometry.
func geometryPolygons(geom *Geometry) []orb.Polygon {
	if geom == nil {
		return nil
	}
	switch geom.Type {
	case GeometryPolygon:
		p := orbPolygon(geom)
		if p == nil {
			return nil
		}
		return []orb.Polygon{p}
	case GeometryMultiPolygon:
		mp := orbMultiPolygon(geom)
		var polys []orb.Polygon
		for _, p := range mp {
			if p != nil {
				polys = append(polys, p)
			}
		}
		return polys
	default:
		return nil
	}
}

// lineStringToGeometry converts an orb.LineString back to a Geometry.
func lineStringToGeometry(ls orb.LineString) *Geometry {
	coords := make([][2]float64, len(ls))
	for i, p := range ls {
		coords[i] = [2]float64{p[0], p[1]}
	}
	coordsJSON, _ := json.Marshal(coords)
	return &Geometry{
		Type:        GeometryLineString,
		Coordinates: coordsJSON,
	}
}

// multiLineStringToGeometry converts multiple line parts back to a Geometry.
// A single part becomes a LineString, more become a MultiLineString, and an
// empty slice yields nil.
func multiLineStringToGeometry(parts []orb.LineString) *Geometry {
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return lineStringToGeometry(parts[0])
	}
	lines := make([][][2]float64, len(parts))
	for i, ls := range parts {
		coords := make([][2]float64, len(ls))
		for j, p := range ls {
			coords[j] = [2]float64{p[0], p[1]}
		}
		lines[i] = coords
	}
	coordsJSON, _ := json.Marshal(lines)
	return &Geometry{
		Type:        GeometryMultiLineString,
		Coordinates: coordsJSON,
	}
}

// polygonToGeometry converts an orb.Polygon back to a Geometry.
func polygonToGeometry(poly orb.Polygon) *Geometry {
	rings := make([][][2]float64, len(poly))
	for i, ring := range poly {
		r := make([][2]float64, len(ring))
		for j, p := range ring {
			r[j] = [2]float64{p[0], p[1]}
		}
		rings[i] = r
	}
	coordsJSON, _ := json.Marshal(rings)
	return &Geometry{
		Type:        GeometryPolygon,
		Coordinates: coordsJSON,
	}
}

// geometryBound computes the bounding box of a Geometry by parsing its
// coordinates. Supports all line and polygon types.
func geometryBound(geom *Geometry) (orb.Bound, bool) {
	if geom == nil {
		return orb.Bound{}, false
	}

	switch geom.Type {
	case GeometryPoint:
		var coords [2]float64
		if err := json.Unmarshal(geom.Coordinates, &coords); err != nil {
			return orb.Bound{}, false
		}
		p := orb.Point{coords[0], coords[1]}
		return p.Bound(), true

	case GeometryLineString:
		ls := orbLineString(geom)
		if len(ls) == 0 {
			return orb.Bound{}, false
		}
		return ls.Bound(), true

	case GeometryMultiLineString:
		mls := orbMultiLineString(geom)
		if len(mls) == 0 {
			return orb.Bound{}, false
		}
		return mls.Bound(), true

	case GeometryPolygon:
		poly := orbPolygon(geom)
		if len(poly) == 0 {
			return orb.Bound{}, false
		}
		return poly.Bound(), true

	case GeometryMultiPolygon:
		mp := orbMultiPolygon(geom)
		if len(mp) == 0 {
			return orb.Bound{}, false
		}
		return mp.Bound(), true
	}

	return orb.Bound{}, false
}

// collectionBound computes the bounding box over every feature geometry in
// the collection. The bool reports whether any feature had a valid bound.
func collectionBound(fc *FeatureCollection) (orb.Bound, bool) {
	var bound orb.Bound
	found := false
	for _, f := range fc.Features {
		b, ok := geometryBound(f.Geometry)
		if !ok {
			continue
		}
		if !found {
			bound = b
			found = true
		} else {
			bound = bound.Union(b)
		}
	}
	return bound, found
}
