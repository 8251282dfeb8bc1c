package plot

import (
	"context"
	"fmt"

	"abd-bench-plots/internal/plot/figure"
	"abd-bench-plots/internal/plot/raster"
	"abd-bench-plots/internal/plot/tikz"

	"github.com/sirupsen/logrus"
)

// Renderer turns one request into one multi-panel image.
type Renderer struct {
	logger      *logrus.Logger
	rasterizer  *raster.Rasterizer
	tikz        *tikz.Generator
	omitMissing bool
}

type RendererOption func(*Renderer)

func WithDPI(dpi int) RendererOption {
	return func(r *Renderer) {
		r.rasterizer = raster.New(dpi)
	}
}

// WithOmitMissing drops points whose field is missing instead of plotting 0.
func WithOmitMissing(omit bool) RendererOption {
	return func(r *Renderer) {
		r.omitMissing = omit
	}
}

// WithTikz also writes a pgfplots version next to every image.
func WithTikz(enabled bool) RendererOption {
	return func(r *Renderer) {
		if enabled {
			r.tikz = tikz.NewGenerator(r.logger)
		} else {
			r.tikz = nil
		}
	}
}

func NewRenderer(logger *logrus.Logger, opts ...RendererOption) *Renderer {
	r := &Renderer{
		logger:     logger,
		rasterizer: raster.New(raster.DefaultDPI),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Build returns the figure model of req without drawing it.
func (r *Renderer) Build(req figure.Request) (*figure.Figure, error) {
	return figure.Build(req, figure.Options{OmitMissing: r.omitMissing})
}

// Render draws req and writes it to req.OutputPath, which is returned on
// success.
func (r *Renderer) Render(ctx context.Context, req figure.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.logger.WithFields(logrus.Fields{
		"workload":  req.Workload,
		"plot_type": req.PlotType,
		"servers":   req.Servers,
		"output":    req.OutputPath,
	}).Debug("Rendering plot")

	fig, err := r.Build(req)
	if err != nil {
		return "", err
	}

	for _, panel := range fig.Panels {
		points := 0
		for _, s := range panel.Series {
			points += len(s.Points)
		}
		if points == 0 {
			r.logger.WithFields(logrus.Fields{
				"servers":  panel.Servers,
				"workload": req.Workload,
			}).Debug("Panel has no data")
		}
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := r.rasterizer.Save(fig, req.OutputPath); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", req.OutputPath, err)
	}

	if r.tikz != nil {
		if _, err := r.tikz.WriteFiles(fig, req.OutputPath); err != nil {
			return "", fmt.Errorf("failed to write TikZ for %s: %w", req.OutputPath, err)
		}
	}

	return req.OutputPath, nil
}
