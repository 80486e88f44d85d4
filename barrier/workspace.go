package barrier

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Fixed intermediate names, one per pipeline stage, mirroring the scratch
// layout reruns rely on. A rerun reuses the same names, so a run must hold
// the workspace exclusively and clear the names before writing.
var (
	dedupStageNames = []string{
		"aoi_clip_rail",
		"aoi_clip_trail",
		"aoi_clip_road",
		"aoi_clip_agency",
		"trails_roads_erased",
		"agency_exact_erased",
		"agency_buffer_erased",
	}
	mergeStageNames = []string{
		"survey_road_width",
		"agency_road_width",
		"rail_width",
		"trail_width",
		"merged_all",
	}
)

const lockFileName = ".containline.lock"

// Workspace owns the scratch directory holding per-stage intermediates and
// the output store. Opening acquires an exclusive lock (single-writer: only
// one run may target a scratch workspace at a time) and clears every fixed
// stage name left by a previous run.
type Workspace struct {
	scratchDir string
	outputDir  string
	lockPath   string
}

// OpenWorkspace prepares the scratch and output directories and acquires
// the workspace lock.
func OpenWorkspace(scratchDir, outputDir string) (*Workspace, error) {
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating scratch workspace: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output store: %w", err)
	}

	lockPath := filepath.Join(scratchDir, lockFileName)
	lock, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("scratch workspace %s is held by another run (remove %s if stale)", scratchDir, lockPath)
		}
		return nil, fmt.Errorf("locking scratch workspace: %w", err)
	}
	_ = lock.Close()

	ws := &Workspace{
		scratchDir: scratchDir,
		outputDir:  outputDir,
		lockPath:   lockPath,
	}
	// Names are fixed per stage; make sure a prior run's leftovers are gone
	// before this run writes anything.
	ws.CleanupStages(dedupStageNames...)
	ws.CleanupStages(mergeStageNames...)
	return ws, nil
}

// Close releases the workspace lock.
func (w *Workspace) Close() error {
	if err := os.Remove(w.lockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("releasing workspace lock: %w", err)
	}
	return nil
}

func (w *Workspace) stagePath(name string) string {
	return filepath.Join(w.scratchDir, name+".geojson")
}

// SaveIntermediate writes a stage's output collection under its fixed name.
func (w *Workspace) SaveIntermediate(name string, fc *FeatureCollection) error {
	data, err := fc.Marshal()
	if err != nil {
		return fmt.Errorf("encoding intermediate %s: %w", name, err)
	}
	if err := os.WriteFile(w.stagePath(name), data, 0o644); err != nil {
		return fmt.Errorf("writing intermediate %s: %w", name, err)
	}
	return nil
}

// LoadIntermediate reads a stage intermediate back while a run is in flight.
func (w *Workspace) LoadIntermediate(name string) (*FeatureCollection, error) {
	data, err := os.ReadFile(w.stagePath(name))
	if err != nil {
		return nil, fmt.Errorf("reading intermediate %s: %w", name, err)
	}
	fc, err := ParseFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing intermediate %s: %w", name, err)
	}
	return fc, nil
}

// CleanupStages removes the named intermediates. Missing names are ignored,
// so cleanup is idempotent and safe to run on every exit path.
func (w *Workspace) CleanupStages(names ...string) {
	for _, name := range names {
		_ = os.Remove(w.stagePath(name))
	}
}

// OutputName builds the deterministic output file name from the incident
// name and run timestamp.
func OutputName(incident string, ts time.Time) string {
	return fmt.Sprintf("transprtn_cntmnt_%s_%s.geojson", incident, ts.Format("20060102_1504"))
}

// WriteOutput publishes the final collection to the output store and returns
// its path.
func (w *Workspace) WriteOutput(incident string, ts time.Time, fc *FeatureCollection) (string, error) {
	data, err := fc.Marshal()
	if err != nil {
		return "", fmt.Errorf("encoding output: %w", err)
	}
	path := filepath.Join(w.outputDir, OutputName(incident, ts))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing output: %w", err)
	}
	return path, nil
}
