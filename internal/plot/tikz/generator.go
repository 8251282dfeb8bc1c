// Package tikz renders a figure.Figure as a pgfplots groupplot plus a LaTeX
// figure wrapper, for reports that typeset the charts instead of embedding
// the PNG.
package tikz

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"abd-bench-plots/internal/plot/figure"
	"abd-bench-plots/internal/plot/mappings"
	plotTemplate "abd-bench-plots/internal/plot/tikz/templates/plot"
	wrapperTemplate "abd-bench-plots/internal/plot/tikz/templates/wrapper"

	"github.com/sirupsen/logrus"
)

type Generator struct {
	logger *logrus.Logger
	now    func() time.Time
}

func NewGenerator(logger *logrus.Logger) *Generator {
	return &Generator{
		logger: logger,
		now:    time.Now,
	}
}

// Generate returns the groupplot and the wrapper for fig. imagePath names the
// PNG the figure was rasterised to; its base name is reused for the TikZ file.
func (g *Generator) Generate(fig *figure.Figure, imagePath string) (string, string, error) {
	g.logger.WithFields(logrus.Fields{
		"title":  fig.Title,
		"panels": len(fig.Panels),
	}).Debug("Generating TikZ figure")

	plotOutput, err := g.renderPlot(g.preparePlotData(fig, imagePath))
	if err != nil {
		return "", "", fmt.Errorf("failed to render plot: %w", err)
	}

	wrapperOutput, err := g.renderWrapper(g.prepareWrapperData(fig, imagePath))
	if err != nil {
		return "", "", fmt.Errorf("failed to render wrapper: %w", err)
	}

	return plotOutput, wrapperOutput, nil
}

// WriteFiles writes <base>.tikz and <base>-wrapper.tex next to imagePath.
func (g *Generator) WriteFiles(fig *figure.Figure, imagePath string) ([]string, error) {
	plotTikz, wrapperTex, err := g.Generate(fig, imagePath)
	if err != nil {
		return nil, err
	}

	plotPath, wrapperPath := Paths(imagePath)
	if err := os.WriteFile(plotPath, []byte(plotTikz), 0644); err != nil {
		return nil, err
	}
	if err := os.WriteFile(wrapperPath, []byte(wrapperTex), 0644); err != nil {
		return nil, err
	}
	return []string{plotPath, wrapperPath}, nil
}

// Paths returns the TikZ and wrapper file paths belonging to imagePath.
func Paths(imagePath string) (string, string) {
	base := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
	return base + ".tikz", base + "-wrapper.tex"
}

func (g *Generator) preparePlotData(fig *figure.Figure, imagePath string) *plotTemplate.PlotData {
	data := &plotTemplate.PlotData{
		GeneratedDate: g.now().Format("2006-01-02 15:04:05"),
		Title:         escapeTeX(fig.Title),
		Workload:      escapeTeX(fig.Workload),
		PlotType:      string(fig.PlotType),
		ImageFileName: filepath.Base(imagePath),
	}

	seen := make(map[string]bool)
	for _, panel := range fig.Panels {
		if data.XLabel == "" {
			data.XLabel = escapeTeX(panel.XLabel)
		}

		pd := plotTemplate.PanelData{
			Servers: panel.Servers,
			Title:   escapeTeX(panel.Title),
			YLabel:  escapeTeX(panel.YLabel),
		}
		for _, s := range panel.Series {
			if !seen[s.Style.ColorName] {
				seen[s.Style.ColorName] = true
				data.Colors = append(data.Colors, plotTemplate.ColorDefinition{
					Name: s.Style.ColorName,
					Hex:  s.Style.Hex(),
				})
			}

			series := plotTemplate.PlotSeries{
				Protocol:    string(s.Protocol),
				Role:        string(s.Role),
				Style:       s.Style.ToTikzOptions(),
				LegendEntry: escapeTeX(s.Label),
				Coordinates: make([]string, 0, len(s.Points)),
			}
			for _, xy := range s.Points {
				series.Coordinates = append(series.Coordinates, fmt.Sprintf("(%.0f,%.6f)", xy.X, xy.Y))
			}
			pd.Series = append(pd.Series, series)
		}
		data.Panels = append(data.Panels, pd)
	}
	return data
}

func (g *Generator) prepareWrapperData(fig *figure.Figure, imagePath string) *wrapperTemplate.WrapperData {
	plotPath, _ := Paths(imagePath)
	base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))

	shortCaption := string(fig.PlotType)
	if info, ok := mappings.GetPlotTypeInfo(fig.PlotType); ok {
		shortCaption = info.ShortLabel
	}

	return &wrapperTemplate.WrapperData{
		GeneratedDate: g.now().Format("2006-01-02 15:04:05"),
		Workload:      fig.Workload,
		PlotType:      string(fig.PlotType),
		PlotFileName:  filepath.Base(plotPath),
		ShortCaption:  escapeTeX(shortCaption),
		Caption:       escapeTeX(fig.Title),
		Label:         strings.ReplaceAll(base, "_", "-"),
	}
}

func (g *Generator) renderPlot(data *plotTemplate.PlotData) (string, error) {
	tmpl, err := template.New("plot").Parse(plotTemplate.PlotTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse plot template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute plot template: %w", err)
	}

	return buf.String(), nil
}

func (g *Generator) renderWrapper(data *wrapperTemplate.WrapperData) (string, error) {
	tmpl, err := template.New("wrapper").Parse(wrapperTemplate.WrapperTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse wrapper template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute wrapper template: %w", err)
	}

	return buf.String(), nil
}

var texReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`%`, `\%`,
	`_`, `\_`,
	`&`, `\&`,
	`#`, `\#`,
	`$`, `\$`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

func escapeTeX(s string) string {
	return texReplacer.Replace(s)
}
