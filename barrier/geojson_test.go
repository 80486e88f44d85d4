package barrier

import (
	"encoding/json"
	"testing"
)

func TestParseFeatureCollection(t *testing.T) {
	data := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{
				"type": "Feature",
				"geometry": {"type": "LineString", "coordinates": [[-120.0, 39.0], [-120.0, 39.01]]},
				"properties": {"tnmfrc": 2, "name": "Forest Route 21"}
			}
		]
	}`)

	fc, err := ParseFeatureCollection(data)
	if err != nil {
		t.Fatal(err)
	}
	assertFeatureCount(t, fc, 1)

	f := fc.Features[0]
	if f.Geometry.Type != GeometryLineString {
		t.Errorf("geometry type = %s, want LineString", f.Geometry.Type)
	}
	if v, ok := f.NumberProp("tnmfrc"); !ok || v != 2 {
		t.Errorf("tnmfrc = %v (%v), want 2", v, ok)
	}
	if s, ok := f.StringProp("name"); !ok || s != "Forest Route 21" {
		t.Errorf("name = %q, want Forest Route 21", s)
	}
}

func TestParseFeatureCollectionInvalidJSON(t *testing.T) {
	if _, err := ParseFeatureCollection([]byte(`{"type":`)); err == nil {
		t.Error("invalid JSON accepted")
	}
}

func TestParseFeatureCollectionEmptyFeatures(t *testing.T) {
	fc, err := ParseFeatureCollection([]byte(`{"type": "FeatureCollection"}`))
	if err != nil {
		t.Fatal(err)
	}
	if fc.Features == nil {
		t.Error("features slice not initialized")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	fc := collection(lineFeature(map[string]interface{}{"Width": 20.0, "Source": "SurveyRoad"},
		[2]float64{-120, 39}, [2]float64{-120, 39.01}))

	data, err := fc.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	back, err := ParseFeatureCollection(data)
	if err != nil {
		t.Fatal(err)
	}
	assertFeatureCount(t, back, 1)
	if w, _ := back.Features[0].NumberProp("Width"); w != 20 {
		t.Errorf("width after round trip = %v, want 20", w)
	}
}

func TestFeatureCloneIsDeep(t *testing.T) {
	f := lineFeature(map[string]interface{}{"name": "original"},
		[2]float64{-120, 39}, [2]float64{-120, 39.01})
	c := f.Clone()

	c.Properties["name"] = "mutated"
	c.Geometry.Coordinates[0] = 'X'

	if n, _ := f.StringProp("name"); n != "original" {
		t.Error("clone shares the properties map")
	}
	if f.Geometry.Coordinates[0] == 'X' {
		t.Error("clone shares the coordinate bytes")
	}
}

func TestNumberPropTypes(t *testing.T) {
	f := lineFeature(map[string]interface{}{
		"f": 2.5,
		"i": 3,
		"n": json.Number("4"),
		"s": "5",
	}, [2]float64{-120, 39}, [2]float64{-120, 39.01})

	if v, ok := f.NumberProp("f"); !ok || v != 2.5 {
		t.Errorf("float prop = %v (%v)", v, ok)
	}
	if v, ok := f.NumberProp("i"); !ok || v != 3 {
		t.Errorf("int prop = %v (%v)", v, ok)
	}
	if v, ok := f.NumberProp("n"); !ok || v != 4 {
		t.Errorf("json.Number prop = %v (%v)", v, ok)
	}
	if _, ok := f.NumberProp("s"); ok {
		t.Error("string coerced to number")
	}
	if _, ok := f.NumberProp("absent"); ok {
		t.Error("absent prop reported present")
	}
}
