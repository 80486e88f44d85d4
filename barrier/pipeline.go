package barrier

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Classification attributes consumed from the input schemas.
const (
	SurveyRoadClassAttr = "tnmfrc"
	TrailTypeAttr       = "trailtype"
	TrailVehicleAttr    = "ohvover50inches"
	AgencyLanesAttr     = "LANES"
)

// Ferry and tunnel functional class codes dropped from the survey roads.
var ferryTunnelCodes = []float64{7, 8}

// waterTrailText marks trail types excluded from the trail source.
const waterTrailText = "Water"

// Inputs are the five feature sets a run consumes.
type Inputs struct {
	Perimeter   *FeatureCollection
	SurveyRail  *FeatureCollection
	SurveyTrail *FeatureCollection
	SurveyRoad  *FeatureCollection
	AgencyRoad  *FeatureCollection
}

func (in Inputs) validate() error {
	checks := []struct {
		name string
		fc   *FeatureCollection
	}{
		{"perimeter", in.Perimeter},
		{"survey rail", in.SurveyRail},
		{"survey trail", in.SurveyTrail},
		{"survey road", in.SurveyRoad},
		{"agency road", in.AgencyRoad},
	}
	for _, c := range checks {
		if c.fc == nil {
			return fmt.Errorf("input %s collection not found", c.name)
		}
	}
	return nil
}

// Params are the run tunables.
type Params struct {
	BufferMeters      float64
	MinFragmentMeters float64
	AOIMarginMeters   float64
	Tiles             TileOptions
}

func (p Params) withDefaults() Params {
	if p.BufferMeters <= 0 {
		p.BufferMeters = DefaultBufferMeters
	}
	if p.MinFragmentMeters <= 0 {
		p.MinFragmentMeters = DefaultMinFragmentMeters
	}
	if p.AOIMarginMeters <= 0 {
		p.AOIMarginMeters = DefaultAOIMarginMeters
	}
	p.Tiles = p.Tiles.withDefaults()
	return p
}

// Result describes a completed run.
type Result struct {
	Incident   string
	OutputPath string
	Output     *FeatureCollection
}

// Pipeline runs the full deduplication and attribution sequence: filter,
// clip, exact-duplicate erase, buffered near-duplicate erase, repair, prune,
// width classification, and the final merge/dissolve. Stages run strictly in
// order; each consumes the fully materialized output of its predecessor.
type Pipeline struct {
	ws       *Workspace
	log      zerolog.Logger
	reporter Reporter
	now      func() time.Time
}

// NewPipeline creates a pipeline over the given workspace. A nil reporter
// defaults to the log reporter.
func NewPipeline(ws *Workspace, log zerolog.Logger, reporter Reporter) *Pipeline {
	if reporter == nil {
		reporter = NewLogReporter(log)
	}
	return &Pipeline{ws: ws, log: log, reporter: reporter, now: time.Now}
}

// Run executes the pipeline and publishes the output collection. Any stage
// failure aborts the whole run: every intermediate written so far is
// released before the error propagates, so a rerun never collides with
// partial state. No partial output is ever published.
func (p *Pipeline) Run(in Inputs, params Params) (*Result, error) {
	params = params.withDefaults()

	if err := in.validate(); err != nil {
		return nil, err
	}
	incident, err := IncidentName(in.Perimeter)
	if err != nil {
		return nil, err
	}
	p.log.Info().Str("incident", incident).Msg("Incident identified")

	// All intermediates are released on every exit path. Cleanup is
	// idempotent, so the phase that already failed cleanly loses nothing.
	defer func() {
		p.ws.CleanupStages(dedupStageNames...)
		p.ws.CleanupStages(mergeStageNames...)
	}()

	aoi, err := BuildAreaOfInterest(in.Perimeter, params.AOIMarginMeters)
	if err != nil {
		p.reporter.RunFailed(incident, err)
		return nil, err
	}

	road, trail, rail, agency, err := p.deduplicate(in, aoi, params)
	if err != nil {
		p.ws.CleanupStages(dedupStageNames...)
		err = fmt.Errorf("deduplication phase: %w", err)
		p.reporter.RunFailed(incident, err)
		return nil, err
	}

	final, err := p.attribute(road, trail, rail, agency)
	if err != nil {
		p.ws.CleanupStages(mergeStageNames...)
		err = fmt.Errorf("attribution phase: %w", err)
		p.reporter.RunFailed(incident, err)
		return nil, err
	}

	path, err := p.ws.WriteOutput(incident, p.now(), final)
	if err != nil {
		err = fmt.Errorf("publishing output: %w", err)
		p.reporter.RunFailed(incident, err)
		return nil, err
	}

	p.reporter.RunCompleted(incident, path, final.Len())
	return &Result{Incident: incident, OutputPath: path, Output: final}, nil
}

// deduplicate is the first phase: attribute filtering, clipping, and both
// duplicate-removal passes. Returns the four cleaned source collections.
func (p *Pipeline) deduplicate(in Inputs, aoi *AreaOfInterest, params Params) (road, trail, rail, agency *FeatureCollection, err error) {
	p.reporter.StageStarted("attribute_filter")
	roadFiltered := RemoveByCode(in.SurveyRoad, SurveyRoadClassAttr, ferryTunnelCodes...)
	trailFiltered := RemoveByTextContains(in.SurveyTrail, TrailTypeAttr, waterTrailText)
	p.reporter.StageCompleted("attribute_filter", roadFiltered.Len()+trailFiltered.Len())

	p.reporter.StageStarted("clip")
	cols := map[SourceTag]*FeatureCollection{
		SourceSurveyRoad:  ClipToArea(roadFiltered, aoi),
		SourceSurveyTrail: ClipToArea(trailFiltered, aoi),
		SourceSurveyRail:  ClipToArea(in.SurveyRail, aoi),
		SourceAgencyRoad:  ClipToArea(in.AgencyRoad, aoi),
	}
	saves := []struct {
		name string
		tag  SourceTag
	}{
		{"aoi_clip_road", SourceSurveyRoad},
		{"aoi_clip_trail", SourceSurveyTrail},
		{"aoi_clip_rail", SourceSurveyRail},
		{"aoi_clip_agency", SourceAgencyRoad},
	}
	total := 0
	for _, s := range saves {
		if err := p.ws.SaveIntermediate(s.name, cols[s.tag]); err != nil {
			return nil, nil, nil, nil, err
		}
		total += cols[s.tag].Len()
	}
	p.reporter.StageCompleted("clip", total)

	// Exact-duplicate erase consumes the declared priority order: each
	// source loses the segments that verbatim coincide with any
	// higher-precedence source. Every erase is followed by repair and
	// fragment pruning before the result feeds another spatial stage.
	p.reporter.StageStarted("exact_duplicates")
	var higher []*FeatureCollection
	for _, tag := range PriorityOrder() {
		fc := cols[tag]
		if len(higher) > 0 {
			fc = EraseExactDuplicates(MergeCollections(higher...), fc)
			fc = PruneShortFragments(RepairGeometry(fc), params.MinFragmentMeters)
			cols[tag] = fc
		}
		higher = append(higher, fc)
	}
	if err := p.ws.SaveIntermediate("trails_roads_erased", cols[SourceSurveyTrail]); err != nil {
		return nil, nil, nil, nil, err
	}
	if err := p.ws.SaveIntermediate("agency_exact_erased", cols[SourceAgencyRoad]); err != nil {
		return nil, nil, nil, nil, err
	}
	p.reporter.StageCompleted("exact_duplicates", cols[SourceSurveyTrail].Len()+cols[SourceAgencyRoad].Len())

	// Buffered near-duplicate erase: the merged survey group absorbs agency
	// geometry digitized with jittered vertices.
	p.reporter.StageStarted("buffer_erase")
	p.log.Info().
		Float64("bufferMeters", params.BufferMeters).
		Msg("Removing agency roads with similar geometry in the survey data")
	reference := MergeCollections(cols[SourceSurveyTrail], cols[SourceSurveyRoad], cols[SourceSurveyRail])
	erased := EraseWithinDistance(cols[SourceAgencyRoad], reference, params.BufferMeters, params.Tiles)
	erased = PruneShortFragments(RepairGeometry(erased), params.MinFragmentMeters)
	if err := p.ws.SaveIntermediate("agency_buffer_erased", erased); err != nil {
		return nil, nil, nil, nil, err
	}
	cols[SourceAgencyRoad] = erased
	p.reporter.StageCompleted("buffer_erase", erased.Len())

	return cols[SourceSurveyRoad], cols[SourceSurveyTrail], cols[SourceSurveyRail], cols[SourceAgencyRoad], nil
}

// attribute is the second phase: width classification, source tagging, and
// the hierarchical merge/dissolve into the final collection.
func (p *Pipeline) attribute(road, trail, rail, agency *FeatureCollection) (*FeatureCollection, error) {
	p.reporter.StageStarted("width_classification")

	roadW, roadMisses := ClassifyWidths(road, func(f *Feature) ClassValue {
		return ClassFromCode(f, SurveyRoadClassAttr)
	}, SurveyRoadWidths())
	agencyW, agencyMisses := ClassifyWidths(agency, func(f *Feature) ClassValue {
		return ClassFromLaneCount(f, AgencyLanesAttr)
	}, AgencyRoadWidths())
	railW, _ := ClassifyWidths(rail, func(*Feature) ClassValue {
		return MissingClass()
	}, RailWidths())
	trailW, trailMisses := ClassifyWidths(trail, func(f *Feature) ClassValue {
		return ClassFromFlag(f, TrailVehicleAttr)
	}, TrailWidths())

	if n := roadMisses + agencyMisses + trailMisses; n > 0 {
		p.log.Info().Int("features", n).Msg("Classification values outside the width tables, fallback width applied")
	}
	p.reporter.StageCompleted("width_classification", roadW.Len()+agencyW.Len()+railW.Len()+trailW.Len())

	p.reporter.StageStarted("merge_dissolve")
	tagged := []struct {
		name string
		tag  SourceTag
		fc   *FeatureCollection
	}{
		{"survey_road_width", SourceSurveyRoad, roadW},
		{"trail_width", SourceSurveyTrail, trailW},
		{"rail_width", SourceSurveyRail, railW},
		{"agency_road_width", SourceAgencyRoad, agencyW},
	}

	var sources []*FeatureCollection
	for _, t := range tagged {
		// Per-source dissolve on the width key collapses duplicate geometry
		// inside one source before the cross-source merge.
		fc := TagSource(Dissolve(t.fc, WidthAttr), t.tag)
		if err := p.ws.SaveIntermediate(t.name, fc); err != nil {
			return nil, err
		}
		sources = append(sources, fc)
	}

	merged := MergeCollections(sources...)
	if err := p.ws.SaveIntermediate("merged_all", merged); err != nil {
		return nil, err
	}
	final := Dissolve(merged, SourceAttr, WidthAttr)
	p.reporter.StageCompleted("merge_dissolve", final.Len())

	return final, nil
}
