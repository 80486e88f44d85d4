package barrier

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestBuildAreaOfInterestErrors(t *testing.T) {
	if _, err := BuildAreaOfInterest(nil, 1000); err == nil {
		t.Error("nil perimeter accepted")
	}
	if _, err := BuildAreaOfInterest(NewFeatureCollection(), 1000); err == nil {
		t.Error("empty perimeter accepted")
	}

	noPoly := collection(lineFeature(nil, [2]float64{-120, 39}, [2]float64{-120, 39.001}))
	if _, err := BuildAreaOfInterest(noPoly, 1000); err == nil {
		t.Error("line-only perimeter accepted")
	}
}

func TestAreaOfInterestContainsMargin(t *testing.T) {
	// Square roughly 2.2 km on a side, 1 km margin.
	perimeter := squarePerimeter("Test Fire", -120, 39, 0.01)
	aoi, err := BuildAreaOfInterest(perimeter, 1000)
	if err != nil {
		t.Fatal(err)
	}

	if !aoi.Contains(orb.Point{-120, 39}) {
		t.Error("perimeter center excluded")
	}
	// ~500 m north of the polygon edge: inside the margin.
	if !aoi.Contains(orb.Point{-120, 39.0145}) {
		t.Error("point within the margin excluded")
	}
	// ~5 km north of the polygon edge: well outside.
	if aoi.Contains(orb.Point{-120, 39.055}) {
		t.Error("point far outside the margin included")
	}
}

func TestAreaOfInterestBoundEnclosesMargin(t *testing.T) {
	perimeter := squarePerimeter("Test Fire", -120, 39, 0.01)
	aoi, err := BuildAreaOfInterest(perimeter, 1000)
	if err != nil {
		t.Fatal(err)
	}

	b := aoi.Bound()
	if !b.Contains(orb.Point{-120, 39.018}) {
		t.Error("bound does not cover the margin band")
	}
	if b.Min[1] > 38.99 || b.Max[1] < 39.01 {
		t.Errorf("bound does not cover the polygon: %v", b)
	}
}

func TestIncidentNameStripsSpaces(t *testing.T) {
	perimeter := squarePerimeter("North Complex Fire", -120, 39, 0.01)
	name, err := IncidentName(perimeter)
	if err != nil {
		t.Fatal(err)
	}
	if name != "NorthComplexFire" {
		t.Errorf("name = %q, want NorthComplexFire", name)
	}
}

func TestIncidentNameMissingAttribute(t *testing.T) {
	perimeter := collection(polygonFeature(nil,
		[2]float64{-120.01, 38.99},
		[2]float64{-119.99, 38.99},
		[2]float64{-119.99, 39.01},
		[2]float64{-120.01, 39.01},
		[2]float64{-120.01, 38.99},
	))
	if _, err := IncidentName(perimeter); err == nil {
		t.Error("missing incident name attribute accepted")
	}
	if _, err := IncidentName(nil); err == nil {
		t.Error("nil perimeter accepted")
	}
}
