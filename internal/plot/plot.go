package plot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"abd-bench-plots/internal/config"
	"abd-bench-plots/internal/logging"
	"abd-bench-plots/internal/plot/figure"
	"abd-bench-plots/internal/plot/mappings"
	"abd-bench-plots/internal/results"

	"github.com/sirupsen/logrus"
)

// PlotManager loads the results once and renders manifest entries against
// them.
type PlotManager struct {
	source   results.Source
	renderer *Renderer
	dataset  results.Dataset
	outDir   string
	parallel bool
	logger   *logrus.Logger
}

type ManagerOptions struct {
	Source   results.Source
	OutDir   string
	Parallel bool
	Renderer []RendererOption
}

func NewPlotManager(opts ManagerOptions) (*PlotManager, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("no results source configured")
	}

	logger := logging.GetLogger()
	outDir := opts.OutDir
	if outDir == "" {
		outDir = "."
	}

	return &PlotManager{
		source:   opts.Source,
		renderer: NewRenderer(logger, opts.Renderer...),
		outDir:   outDir,
		parallel: opts.Parallel,
		logger:   logger,
	}, nil
}

func (pm *PlotManager) Close() {
	if pm.source != nil {
		pm.source.Close()
	}
}

// Results loads the dataset on first use.
func (pm *PlotManager) Results(ctx context.Context) (results.Dataset, error) {
	if pm.dataset != nil {
		return pm.dataset, nil
	}

	ds, err := pm.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	pm.dataset = ds
	return ds, nil
}

// Request resolves one manifest entry into a render request.
func (pm *PlotManager) Request(ds results.Dataset, m *config.Manifest, spec config.PlotSpec) figure.Request {
	return figure.Request{
		Results:        ds,
		Servers:        m.ServersFor(spec),
		Workload:       spec.Workload,
		PlotType:       spec.Type,
		Title:          spec.Title,
		OutputPath:     pm.outputPath(spec.File),
		AllowedClients: m.ClientsFor(spec),
	}
}

func (pm *PlotManager) outputPath(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(pm.outDir, file)
}

// RenderManifest renders every plot of m and returns the written paths in
// manifest order.
func (pm *PlotManager) RenderManifest(ctx context.Context, m *config.Manifest) ([]string, error) {
	ds, err := pm.Results(ctx)
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(m.Plots))
	errs := make([]error, len(m.Plots))

	render := func(i int) {
		spec := m.Plots[i]
		path, err := pm.renderer.Render(ctx, pm.Request(ds, m, spec))
		if err != nil {
			pm.logger.WithField("file", spec.File).WithError(err).Error("Failed to render plot")
			errs[i] = fmt.Errorf("%s: %w", spec.File, err)
			return
		}
		paths[i] = path
	}

	if pm.parallel {
		var wg sync.WaitGroup
		for i := range m.Plots {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				render(idx)
			}(i)
		}
		wg.Wait()
	} else {
		for i := range m.Plots {
			render(i)
			if errs[i] != nil {
				break
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return paths, nil
}

// RenderPlot renders a single ad-hoc chart.
func (pm *PlotManager) RenderPlot(
	ctx context.Context,
	servers []int,
	workload string,
	plotType mappings.PlotType,
	title string,
	output string,
	allowedClients []int,
) (string, error) {
	ds, err := pm.Results(ctx)
	if err != nil {
		return "", err
	}

	return pm.renderer.Render(ctx, figure.Request{
		Results:        ds,
		Servers:        servers,
		Workload:       workload,
		PlotType:       plotType,
		Title:          title,
		OutputPath:     pm.outputPath(output),
		AllowedClients: allowedClients,
	})
}
