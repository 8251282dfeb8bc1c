package plot

import (
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"abd-bench-plots/internal/config"
	"abd-bench-plots/internal/logging"
	"abd-bench-plots/internal/plot/figure"
	"abd-bench-plots/internal/plot/mappings"
	"abd-bench-plots/internal/results"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDPI = 40

const datasetJSON = `{
  "1": {"90%_GETs": {"abd": {"20": {"throughput": 300, "get_median": 1000, "get_p95": 2000, "put_median": 3000, "put_p95": 4000}}}},
  "3": {
    "90%_GETs": {"abd": {"20": {"throughput": 1000}}, "blocking": {"20": {"throughput": 800}}},
    "90%_PUTs": {"abd": {"40": {"put_median": 9000}}, "blocking": {"40": {"put_median": 4000}}}
  }
}`

type countingSource struct {
	ds    results.Dataset
	err   error
	loads int32
}

func (s *countingSource) Load(ctx context.Context) (results.Dataset, error) {
	atomic.AddInt32(&s.loads, 1)
	return s.ds, s.err
}

func (s *countingSource) Close() {}

func newSource(t *testing.T) *countingSource {
	t.Helper()
	ds, err := results.Decode(strings.NewReader(datasetJSON))
	require.NoError(t, err)
	return &countingSource{ds: ds}
}

func newManager(t *testing.T, src results.Source, parallel bool, opts ...RendererOption) (*PlotManager, string) {
	t.Helper()
	dir := t.TempDir()
	pm, err := NewPlotManager(ManagerOptions{
		Source:   src,
		OutDir:   dir,
		Parallel: parallel,
		Renderer: append([]RendererOption{WithDPI(testDPI)}, opts...),
	})
	require.NoError(t, err)
	t.Cleanup(pm.Close)
	return pm, dir
}

func TestRenderManifest_DefaultBattery(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		src := newSource(t)
		pm, dir := newManager(t, src, parallel)

		paths, err := pm.RenderManifest(context.Background(), config.Default())
		require.NoError(t, err)
		require.Len(t, paths, 6)

		for i, spec := range config.Default().Plots {
			assert.Equal(t, filepath.Join(dir, spec.File), paths[i])
			f, err := os.Open(paths[i])
			require.NoError(t, err)
			cfg, err := png.DecodeConfig(f)
			f.Close()
			require.NoError(t, err)
			// Three panels of 6in at the test DPI.
			assert.Equal(t, 3*6*testDPI, cfg.Width)
		}
		assert.EqualValues(t, 1, atomic.LoadInt32(&src.loads), "dataset must be loaded once")
	}
}

func TestRenderManifest_LoadFailureWritesNothing(t *testing.T) {
	src := &countingSource{err: os.ErrNotExist}
	pm, dir := newManager(t, src, false)

	_, err := pm.RenderManifest(context.Background(), config.Default())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRenderManifest_UnknownTypeFails(t *testing.T) {
	pm, _ := newManager(t, newSource(t), false)

	m := config.Default()
	m.Plots = []config.PlotSpec{{Workload: "90%_GETs", Type: "p99", File: "bad.png"}}
	_, err := pm.RenderManifest(context.Background(), m)
	assert.ErrorIs(t, err, figure.ErrUnknownPlotType)
}

func TestRenderManifest_Cancelled(t *testing.T) {
	pm, dir := newManager(t, newSource(t), false)
	_, err := pm.Results(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = pm.RenderManifest(ctx, config.Default())
	assert.True(t, errors.Is(err, context.Canceled))

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestRenderPlot_SparseServers(t *testing.T) {
	pm, dir := newManager(t, newSource(t), false)

	path, err := pm.RenderPlot(context.Background(), []int{1, 3}, "90%_GETs",
		mappings.PlotTypeThroughput, "Sparse", "sparse.png", []int{20})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sparse.png"), path)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestRenderer_WithTikz(t *testing.T) {
	pm, dir := newManager(t, newSource(t), false, WithTikz(true))

	_, err := pm.RenderPlot(context.Background(), []int{3}, "90%_PUTs",
		mappings.PlotTypePutLatency, "PUT", "put.png", []int{40})
	require.NoError(t, err)

	tikzOut, err := os.ReadFile(filepath.Join(dir, "put.tikz"))
	require.NoError(t, err)
	assert.Contains(t, string(tikzOut), "(40,9.000000)")
	assert.Contains(t, string(tikzOut), "(40,4.000000)")

	_, err = os.Stat(filepath.Join(dir, "put-wrapper.tex"))
	require.NoError(t, err)
}

func TestRenderer_BuildIsPure(t *testing.T) {
	src := newSource(t)
	r := NewRenderer(logging.GetLogger(), WithDPI(testDPI))
	dir := t.TempDir()

	req := figure.Request{
		Results:        src.ds,
		Servers:        []int{1, 3, 5},
		Workload:       "90%_GETs",
		PlotType:       mappings.PlotTypeGetLatency,
		Title:          "GET",
		AllowedClients: config.DefaultAllowedClients,
	}

	req.OutputPath = filepath.Join(dir, "a.png")
	a, err := r.Build(req)
	require.NoError(t, err)
	_, err = r.Render(context.Background(), req)
	require.NoError(t, err)

	req.OutputPath = filepath.Join(dir, "b.png")
	b, err := r.Build(req)
	require.NoError(t, err)
	_, err = r.Render(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, b.Panels, 3)
	assert.Equal(t, 12, b.SeriesCount())
	assert.Equal(t, 1.0, b.Panels[0].Series[0].Points[0].Y)
	assert.Equal(t, 2.0, b.Panels[0].Series[1].Points[0].Y)
}

func TestRenderer_OmitMissing(t *testing.T) {
	src := newSource(t)
	r := NewRenderer(logging.GetLogger(), WithOmitMissing(true))

	fig, err := r.Build(figure.Request{
		Results:        src.ds,
		Servers:        []int{3},
		Workload:       "90%_PUTs",
		PlotType:       mappings.PlotTypePutLatency,
		AllowedClients: []int{40},
	})
	require.NoError(t, err)
	series := fig.Panels[0].Series
	assert.Len(t, series[0].Points, 1)
	assert.Empty(t, series[1].Points)
}

func TestNewPlotManager_RequiresSource(t *testing.T) {
	_, err := NewPlotManager(ManagerOptions{})
	assert.Error(t, err)
}
