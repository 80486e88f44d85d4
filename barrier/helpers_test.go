package barrier

import (
	"encoding/json"
	"testing"
)

// Test fixtures sit around lon -120, lat 39. At that latitude one degree of
// longitude is about 86.5 km and one degree of latitude about 111.3 km, so
// 0.002 degrees of latitude is a comfortably prunable ~222 m line.

func lineFeature(props map[string]interface{}, coords ...[2]float64) *Feature {
	coordsJSON, err := json.Marshal(coords)
	if err != nil {
		panic(err)
	}
	geom := &Geometry{Type: GeometryLineString, Coordinates: coordsJSON}
	return NewFeature(geom, props)
}

func multiLineFeature(props map[string]interface{}, lines ...[][2]float64) *Feature {
	coordsJSON, err := json.Marshal(lines)
	if err != nil {
		panic(err)
	}
	geom := &Geometry{Type: GeometryMultiLineString, Coordinates: coordsJSON}
	return NewFeature(geom, props)
}

func polygonFeature(props map[string]interface{}, ring ...[2]float64) *Feature {
	coordsJSON, err := json.Marshal([][][2]float64{ring})
	if err != nil {
		panic(err)
	}
	geom := &Geometry{Type: GeometryPolygon, Coordinates: coordsJSON}
	return NewFeature(geom, props)
}

func collection(features ...*Feature) *FeatureCollection {
	fc := NewFeatureCollection()
	for _, f := range features {
		fc.AddFeature(f)
	}
	return fc
}

// squarePerimeter builds a perimeter collection with a square polygon of the
// given half-size in degrees centered on (lon, lat), carrying the incident
// name attribute.
func squarePerimeter(incident string, lon, lat, half float64) *FeatureCollection {
	return collection(polygonFeature(
		map[string]interface{}{IncidentNameAttr: incident},
		[2]float64{lon - half, lat - half},
		[2]float64{lon + half, lat - half},
		[2]float64{lon + half, lat + half},
		[2]float64{lon - half, lat + half},
		[2]float64{lon - half, lat - half},
	))
}

func totalMeters(fc *FeatureCollection) float64 {
	var total float64
	for _, f := range fc.Features {
		total += geometryMeters(f.Geometry)
	}
	return total
}

func assertFeatureCount(t *testing.T, fc *FeatureCollection, want int) {
	t.Helper()
	if fc.Len() != want {
		t.Fatalf("feature count = %d, want %d", fc.Len(), want)
	}
}
