package barrier

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// DefaultAOIMarginMeters is the outward expansion applied to the fire
// perimeter when deriving the area of interest.
const DefaultAOIMarginMeters = 1000

// IncidentNameAttr is the perimeter attribute carrying the incident name.
const IncidentNameAttr = "attr_IncidentName"

// AreaOfInterest bounds all downstream processing. It is the fire perimeter
// grown outward by a fixed margin; everything retained by the pipeline lies
// strictly inside it.
type AreaOfInterest struct {
	plane  localPlane
	region *expandedPolygonRegion
	bound  orb.Bound
}

// BuildAreaOfInterest derives the area of interest from the perimeter
// feature set. The perimeter must carry at least one polygon geometry.
func BuildAreaOfInterest(perimeter *FeatureCollection, marginMeters float64) (*AreaOfInterest, error) {
	if perimeter == nil || perimeter.Len() == 0 {
		return nil, fmt.Errorf("input perimeter not found")
	}
	if marginMeters <= 0 {
		marginMeters = DefaultAOIMarginMeters
	}

	var polys []orb.Polygon
	for _, f := range perimeter.Features {
		polys = append(polys, geometryPolygons(f.Geometry)...)
	}
	if len(polys) == 0 {
		return nil, fmt.Errorf("perimeter contains no polygon geometry")
	}

	var bound orb.Bound
	for i, poly := range polys {
		if i == 0 {
			bound = poly.Bound()
		} else {
			bound = bound.Union(poly.Bound())
		}
	}

	plane := planeForBound(bound)
	padded := orb.Bound{
		Min: orb.Point{
			bound.Min[0] - plane.metersToDegreesLon(marginMeters),
			bound.Min[1] - metersToDegreesLat(marginMeters),
		},
		Max: orb.Point{
			bound.Max[0] + plane.metersToDegreesLon(marginMeters),
			bound.Max[1] + metersToDegreesLat(marginMeters),
		},
	}

	return &AreaOfInterest{
		plane:  plane,
		region: newExpandedPolygonRegion(plane, marginMeters, polys),
		bound:  padded,
	}, nil
}

// Contains reports whether a point falls inside the area of interest.
func (aoi *AreaOfInterest) Contains(p orb.Point) bool {
	return aoi.region.Contains(p)
}

// Bound returns a bounding box enclosing the area of interest, padded by the
// margin. Used for cheap feature rejection before exact clipping.
func (aoi *AreaOfInterest) Bound() orb.Bound {
	return aoi.bound
}

// IncidentName extracts the incident name from the perimeter feature set,
// with spaces stripped for use in output names.
func IncidentName(perimeter *FeatureCollection) (string, error) {
	if perimeter == nil || perimeter.Len() == 0 {
		return "", fmt.Errorf("input perimeter not found")
	}
	for _, f := range perimeter.Features {
		if name, ok := f.StringProp(IncidentNameAttr); ok && name != "" {
			return strings.ReplaceAll(name, " ", ""), nil
		}
	}
	return "", fmt.Errorf("perimeter has no %s attribute", IncidentNameAttr)
}
