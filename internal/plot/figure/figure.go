// Package figure builds the data model of a comparison chart: one panel per
// replica-count configuration, each holding the ABD and Blocking series
// selected by the plot type. Nothing here draws; the model is consumed by the
// raster and TikZ backends.
package figure

import (
	"errors"
	"fmt"

	"abd-bench-plots/internal/plot/mappings"
	"abd-bench-plots/internal/results"

	"gonum.org/v1/plot/plotter"
)

var ErrUnknownPlotType = errors.New("unknown plot type")

// Request carries the inputs of one chart.
type Request struct {
	Results        results.Dataset
	Servers        []int
	Workload       string
	PlotType       mappings.PlotType
	Title          string
	OutputPath     string
	AllowedClients []int
}

type Options struct {
	// OmitMissing drops points whose field is absent instead of plotting 0.
	OmitMissing bool
}

type Series struct {
	Protocol results.Protocol
	Role     mappings.SeriesRole
	Label    string
	Style    mappings.PlotStyle
	Points   plotter.XYs
}

type Panel struct {
	Servers int
	Title   string
	XLabel  string
	YLabel  string
	Series  []Series
}

type Figure struct {
	Title    string
	Workload string
	PlotType mappings.PlotType
	Panels   []Panel
}

// Build resolves every panel of the request. Missing data never fails the
// build; it produces empty series.
func Build(req Request, opts Options) (*Figure, error) {
	info, ok := mappings.GetPlotTypeInfo(req.PlotType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlotType, req.PlotType)
	}

	fig := &Figure{
		Title:    req.Title,
		Workload: req.Workload,
		PlotType: req.PlotType,
		Panels:   make([]Panel, 0, len(req.Servers)),
	}
	for _, servers := range req.Servers {
		fig.Panels = append(fig.Panels, buildPanel(req, info, servers, opts))
	}
	return fig, nil
}

func buildPanel(req Request, info mappings.PlotTypeInfo, servers int, opts Options) Panel {
	panel := Panel{
		Servers: servers,
		Title:   PanelTitle(servers),
		XLabel:  info.XLabel,
		YLabel:  info.YLabel,
	}

	for _, protocol := range results.Protocols {
		points := req.Results.Series(servers, req.Workload, protocol).Points(req.AllowedClients)
		for _, spec := range info.Series {
			panel.Series = append(panel.Series, Series{
				Protocol: protocol,
				Role:     spec.Role,
				Label:    mappings.GetProtocolLabel(protocol) + spec.LabelSuffix,
				Style:    mappings.GetSeriesStyle(protocol, spec.Role),
				Points:   extract(points, spec.Field, info.Divisor, opts),
			})
		}
	}
	return panel
}

func extract(points []results.Point, field string, divisor float64, opts Options) plotter.XYs {
	xys := make(plotter.XYs, 0, len(points))
	for _, p := range points {
		v, ok := p.Record.Lookup(field)
		if !ok && opts.OmitMissing {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(p.Clients), Y: v / divisor})
	}
	return xys
}

func PanelTitle(servers int) string {
	return fmt.Sprintf("%d Server(s)", servers)
}

// SeriesCount is the number of series across all panels.
func (f *Figure) SeriesCount() int {
	n := 0
	for _, p := range f.Panels {
		n += len(p.Series)
	}
	return n
}
