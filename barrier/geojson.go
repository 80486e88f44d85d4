package barrier

import "encoding/json"

// GeometryType represents the GeoJSON geometry type
type GeometryType string

const (
	GeometryPoint           GeometryType = "Point"
	GeometryLineString      GeometryType = "LineString"
	GeometryPolygon         GeometryType = "Polygon"
	GeometryMultiPoint      GeometryType = "MultiPoint"
	GeometryMultiLineString GeometryType = "MultiLineString"
	GeometryMultiPolygon    GeometryType = "MultiPolygon"
)

// Geometry represents a GeoJSON geometry object. Coordinates stay as raw JSON
// so that features pass through attribute-only stages without a decode/encode
// round trip.
type Geometry struct {
	Type        GeometryType    `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Feature represents a GeoJSON feature with geometry and properties
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   *Geometry              `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
	ID         interface{}            `json:"id,omitempty"`
}

// FeatureCollection represents a GeoJSON FeatureCollection
type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
}

// NewFeatureCollection creates a new empty FeatureCollection
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]*Feature, 0),
	}
}

// AddFeature appends a feature to the collection
func (fc *FeatureCollection) AddFeature(f *Feature) {
	fc.Features = append(fc.Features, f)
}

// Len returns the number of features in the collection
func (fc *FeatureCollection) Len() int {
	if fc == nil {
		return 0
	}
	return len(fc.Features)
}

// NewFeature creates a Feature with the given geometry and properties
func NewFeature(geom *Geometry, props map[string]interface{}) *Feature {
	if props == nil {
		props = make(map[string]interface{})
	}
	return &Feature{
		Type:       "Feature",
		Geometry:   geom,
		Properties: props,
	}
}

// Clone returns a deep copy of the feature. Geometry coordinates are raw
// JSON, so copying the byte slice is a full copy.
func (f *Feature) Clone() *Feature {
	if f == nil {
		return nil
	}
	clone := &Feature{Type: f.Type, ID: f.ID}
	if f.Geometry != nil {
		coords := make(json.RawMessage, len(f.Geometry.Coordinates))
		copy(coords, f.Geometry.Coordinates)
		clone.Geometry = &Geometry{Type: f.Geometry.Type, Coordinates: coords}
	}
	clone.Properties = make(map[string]interface{}, len(f.Properties))
	for k, v := range f.Properties {
		clone.Properties[k] = v
	}
	return clone
}

// Clone returns a deep copy of the collection. Stages that rewrite features
// operate on clones so their inputs stay untouched.
func (fc *FeatureCollection) Clone() *FeatureCollection {
	out := NewFeatureCollection()
	if fc == nil {
		return out
	}
	for _, f := range fc.Features {
		out.AddFeature(f.Clone())
	}
	return out
}

// StringProp extracts a string-valued property. The bool reports whether the
// property exists and is non-nil; numeric values are not coerced.
func (f *Feature) StringProp(name string) (string, bool) {
	if f == nil || f.Properties == nil {
		return "", false
	}
	v, ok := f.Properties[name]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// NumberProp extracts a numeric property. Source data mixes float64 (JSON
// default), int, and json.Number for classification codes.
func (f *Feature) NumberProp(name string) (float64, bool) {
	if f == nil || f.Properties == nil {
		return 0, false
	}
	switch v := f.Properties[name].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		n, err := v.Float64()
		return n, err == nil
	default:
		return 0, false
	}
}

// HasProp reports whether the property exists with a non-nil value.
func (f *Feature) HasProp(name string) bool {
	if f == nil || f.Properties == nil {
		return false
	}
	v, ok := f.Properties[name]
	return ok && v != nil
}

// ParseFeatureCollection decodes a GeoJSON FeatureCollection document.
func ParseFeatureCollection(data []byte) (*FeatureCollection, error) {
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, err
	}
	if fc.Features == nil {
		fc.Features = make([]*Feature, 0)
	}
	return &fc, nil
}

// Marshal encodes the collection as a GeoJSON document.
func (fc *FeatureCollection) Marshal() ([]byte, error) {
	return json.Marshal(fc)
}
