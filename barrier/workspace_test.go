package barrier

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceLockExclusivity(t *testing.T) {
	scratch := t.TempDir()
	output := t.TempDir()

	ws, err := OpenWorkspace(scratch, output)
	require.NoError(t, err)

	_, err = OpenWorkspace(scratch, output)
	require.Error(t, err, "second open of a held workspace must fail")
	assert.Contains(t, err.Error(), "held by another run")

	require.NoError(t, ws.Close())

	// Released lock allows a new run.
	ws2, err := OpenWorkspace(scratch, output)
	require.NoError(t, err)
	require.NoError(t, ws2.Close())
}

func TestWorkspaceIntermediateRoundTrip(t *testing.T) {
	ws, err := OpenWorkspace(t.TempDir(), t.TempDir())
	require.NoError(t, err)
	defer func() { _ = ws.Close() }()

	fc := collection(lineFeature(map[string]interface{}{"tnmfrc": 2.0},
		[2]float64{-120, 39}, [2]float64{-120, 39.01}))

	require.NoError(t, ws.SaveIntermediate("aoi_clip_road", fc))

	back, err := ws.LoadIntermediate("aoi_clip_road")
	require.NoError(t, err)
	assert.Equal(t, 1, back.Len())

	v, ok := back.Features[0].NumberProp("tnmfrc")
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)
}

func TestWorkspaceCleanupIsIdempotent(t *testing.T) {
	ws, err := OpenWorkspace(t.TempDir(), t.TempDir())
	require.NoError(t, err)
	defer func() { _ = ws.Close() }()

	require.NoError(t, ws.SaveIntermediate("merged_all", NewFeatureCollection()))

	ws.CleanupStages("merged_all")
	_, err = ws.LoadIntermediate("merged_all")
	assert.Error(t, err, "cleaned intermediate still loadable")

	// Second cleanup of the same names is a no-op.
	ws.CleanupStages("merged_all", "never_written")
}

func TestOpenWorkspaceClearsStaleIntermediates(t *testing.T) {
	scratch := t.TempDir()
	output := t.TempDir()

	stale := filepath.Join(scratch, "merged_all.geojson")
	require.NoError(t, os.WriteFile(stale, []byte(`{"type":"FeatureCollection","features":[]}`), 0o644))

	ws, err := OpenWorkspace(scratch, output)
	require.NoError(t, err)
	defer func() { _ = ws.Close() }()

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale intermediate survived workspace open")
}

func TestOutputName(t *testing.T) {
	ts := time.Date(2026, 8, 29, 13, 45, 0, 0, time.UTC)
	assert.Equal(t, "transprtn_cntmnt_TestFire_20260829_1345.geojson", OutputName("TestFire", ts))
}

func TestWriteOutput(t *testing.T) {
	outputDir := t.TempDir()
	ws, err := OpenWorkspace(t.TempDir(), outputDir)
	require.NoError(t, err)
	defer func() { _ = ws.Close() }()

	fc := collection(lineFeature(map[string]interface{}{SourceAttr: "SurveyRail", WidthAttr: 8.0},
		[2]float64{-120, 39}, [2]float64{-120, 39.01}))

	ts := time.Date(2026, 8, 29, 13, 45, 0, 0, time.UTC)
	path, err := ws.WriteOutput("TestFire", ts, fc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outputDir, "transprtn_cntmnt_TestFire_20260829_1345.geojson"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	back, err := ParseFeatureCollection(data)
	require.NoError(t, err)
	assert.Equal(t, 1, back.Len())
}
