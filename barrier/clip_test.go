package barrier

import (
	"bytes"
	"testing"

	"github.com/paulmach/orb"
)

func clipTestAOI(t *testing.T) *AreaOfInterest {
	t.Helper()
	aoi, err := BuildAreaOfInterest(squarePerimeter("Test Fire", -120, 39, 0.01), 1000)
	if err != nil {
		t.Fatal(err)
	}
	return aoi
}

func TestClipToAreaKeepsInteriorFeaturesVerbatim(t *testing.T) {
	aoi := clipTestAOI(t)
	f := lineFeature(map[string]interface{}{"name": "interior"},
		[2]float64{-120.005, 38.995}, [2]float64{-120.005, 39.005})
	original := make([]byte, len(f.Geometry.Coordinates))
	copy(original, f.Geometry.Coordinates)

	out := ClipToArea(collection(f), aoi)
	assertFeatureCount(t, out, 1)
	if !bytes.Equal(out.Features[0].Geometry.Coordinates, original) {
		t.Error("interior feature was re-encoded instead of passed through")
	}
}

func TestClipToAreaDropsExteriorFeatures(t *testing.T) {
	aoi := clipTestAOI(t)
	far := lineFeature(nil, [2]float64{-121, 39}, [2]float64{-121, 39.01})

	out := ClipToArea(collection(far), aoi)
	assertFeatureCount(t, out, 0)
}

func TestClipToAreaTruncatesStraddlingFeatures(t *testing.T) {
	aoi := clipTestAOI(t)
	// North-south line running far past the area on both ends.
	straddling := lineFeature(map[string]interface{}{"name": "highway"},
		[2]float64{-120, 38.9}, [2]float64{-120, 39.1})

	out := ClipToArea(collection(straddling), aoi)
	assertFeatureCount(t, out, 1)

	f := out.Features[0]
	if name, _ := f.StringProp("name"); name != "highway" {
		t.Error("attributes lost during clipping")
	}
	for _, part := range geometryLines(f.Geometry) {
		// End vertices may sit exactly on the area boundary; interior ones
		// must be strict members.
		for _, p := range part[1 : len(part)-1] {
			if !aoi.Contains(p) {
				t.Fatalf("clipped vertex %v lies outside the area of interest", p)
			}
		}
		// The line enters near the south edge and leaves near the north edge;
		// everything beyond the margin is gone.
		if part[0][1] < 38.9805 || part[len(part)-1][1] > 39.0195 {
			t.Errorf("clipped line still reaches %v .. %v", part[0], part[len(part)-1])
		}
	}

	clippedLen := totalMeters(out)
	originalLen := lineMeters(orb.LineString{{-120, 38.9}, {-120, 39.1}})
	if clippedLen >= originalLen {
		t.Errorf("clipped length %v not shorter than original %v", clippedLen, originalLen)
	}
}

func TestClipToAreaSkipsNonLineGeometry(t *testing.T) {
	aoi := clipTestAOI(t)
	poly := polygonFeature(nil,
		[2]float64{-120.001, 38.999},
		[2]float64{-119.999, 38.999},
		[2]float64{-119.999, 39.001},
		[2]float64{-120.001, 38.999},
	)

	out := ClipToArea(collection(poly), aoi)
	assertFeatureCount(t, out, 0)
}
