package barrier

import (
	"encoding/json"
	"testing"
)

func TestRepairGeometryDropsNullAndEmptyGeometries(t *testing.T) {
	empty, _ := json.Marshal([][2]float64{})
	fc := collection(
		NewFeature(nil, nil),
		NewFeature(&Geometry{Type: GeometryLineString, Coordinates: empty}, nil),
		lineFeature(nil, [2]float64{-120, 39}, [2]float64{-120, 39.001}),
	)

	out := RepairGeometry(fc)
	assertFeatureCount(t, out, 1)
}

func TestRepairGeometryCollapsesRepeatedVertices(t *testing.T) {
	fc := collection(lineFeature(nil,
		[2]float64{-120, 39},
		[2]float64{-120, 39},
		[2]float64{-120, 39.001},
		[2]float64{-120, 39.001},
		[2]float64{-120, 39.002},
	))

	out := RepairGeometry(fc)
	parts := geometryLines(out.Features[0].Geometry)
	if len(parts) != 1 || len(parts[0]) != 3 {
		t.Fatalf("repaired line has %d parts / %d vertices, want 1 part with 3", len(parts), len(parts[0]))
	}
}

func TestRepairGeometryRemovesBacktrackSpikes(t *testing.T) {
	fc := collection(lineFeature(nil,
		[2]float64{-120, 39},
		[2]float64{-120, 39.001},
		[2]float64{-120.001, 39.001}, // spike out
		[2]float64{-120, 39.001},     // and back
		[2]float64{-120, 39.002},
	))

	out := RepairGeometry(fc)
	parts := geometryLines(out.Features[0].Geometry)
	if len(parts) != 1 {
		t.Fatalf("parts = %d, want 1", len(parts))
	}
	for _, p := range parts[0] {
		if p[0] == -120.001 {
			t.Fatalf("spike vertex survived repair: %v", parts[0])
		}
	}
}

func TestRepairGeometryIsIdempotent(t *testing.T) {
	fc := collection(
		lineFeature(nil,
			[2]float64{-120, 39},
			[2]float64{-120, 39},
			[2]float64{-120, 39.001},
			[2]float64{-120, 39},
			[2]float64{-120, 39.001},
		),
		lineFeature(nil, [2]float64{-119.99, 39}, [2]float64{-119.99, 39.002}),
	)

	once := RepairGeometry(fc)
	twice := RepairGeometry(once)

	if once.Len() != twice.Len() {
		t.Fatalf("second repair changed feature count: %d -> %d", once.Len(), twice.Len())
	}
	for i := range once.Features {
		a := geometryLines(once.Features[i].Geometry)
		b := geometryLines(twice.Features[i].Geometry)
		if len(a) != len(b) {
			t.Fatalf("feature %d: part count changed on second repair", i)
		}
		for j := range a {
			if len(a[j]) != len(b[j]) {
				t.Fatalf("feature %d part %d: vertex count changed on second repair", i, j)
			}
		}
	}
}

func TestRepairGeometryDropsDegeneratePart(t *testing.T) {
	// Collapses to a single point, so the whole feature goes.
	fc := collection(lineFeature(nil,
		[2]float64{-120, 39},
		[2]float64{-120, 39},
	))

	out := RepairGeometry(fc)
	assertFeatureCount(t, out, 0)
}
