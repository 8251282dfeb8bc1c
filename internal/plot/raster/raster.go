// Package raster draws a figure.Figure into a PNG image with gonum/plot.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"abd-bench-plots/internal/plot/figure"
	"abd-bench-plots/internal/plot/mappings"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	DefaultDPI = 300

	PanelWidth  = 6 * vg.Inch
	PanelHeight = 5 * vg.Inch
)

var ErrRenderingUnavailable = errors.New("rendering backend unavailable")

var (
	suptitleSize   = vg.Points(16)
	panelTitleSize = vg.Points(14)
	axisLabelSize  = vg.Points(12)
	legendSize     = vg.Points(9)

	gridColor = color.RGBA{R: 0, G: 0, B: 0, A: 77}
	dashes    = []vg.Length{vg.Points(6), vg.Points(3)}
)

type Rasterizer struct {
	DPI int
}

func New(dpi int) *Rasterizer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Rasterizer{DPI: dpi}
}

// Save draws the figure and writes it to path. The file is only created once
// the whole image has been encoded.
func (r *Rasterizer) Save(fig *figure.Figure, path string) error {
	var buf bytes.Buffer
	if err := r.Encode(fig, &buf); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Encode draws the figure as PNG into w. The canvas lives only for the
// duration of the call.
func (r *Rasterizer) Encode(fig *figure.Figure, w io.Writer) error {
	if len(fig.Panels) == 0 {
		return fmt.Errorf("figure %q has no panels", fig.Title)
	}

	row := make([]*plot.Plot, len(fig.Panels))
	for i := range fig.Panels {
		p, err := newPanelPlot(&fig.Panels[i])
		if err != nil {
			return fmt.Errorf("failed to build panel %q: %w", fig.Panels[i].Title, err)
		}
		row[i] = p
	}

	img := vgimg.NewWith(
		vgimg.UseWH(PanelWidth*vg.Length(len(row)), PanelHeight),
		vgimg.UseDPI(r.DPI),
		vgimg.UseBackgroundColor(color.White),
	)
	dc := draw.New(img)

	body := drawSuptitle(dc, fig.Title)

	tiles := draw.Tiles{
		Rows:      1,
		Cols:      len(row),
		PadX:      6 * vg.Millimeter,
		PadTop:    2 * vg.Millimeter,
		PadBottom: 2 * vg.Millimeter,
		PadLeft:   2 * vg.Millimeter,
		PadRight:  4 * vg.Millimeter,
	}
	canvases := plot.Align([][]*plot.Plot{row}, tiles, body)
	for i, p := range row {
		p.Draw(canvases[0][i])
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// drawSuptitle writes the figure title across the top and returns the
// remaining canvas.
func drawSuptitle(dc draw.Canvas, title string) draw.Canvas {
	if title == "" {
		return dc
	}
	sty := boldStyle(suptitleSize)
	sty.XAlign = text.XCenter
	sty.YAlign = text.YTop

	pad := 3 * vg.Millimeter
	dc.FillText(sty, vg.Point{X: (dc.Min.X + dc.Max.X) / 2, Y: dc.Max.Y - pad}, title)
	return draw.Crop(dc, 0, 0, 0, -(sty.Height(title) + 2*pad))
}

func newPanelPlot(panel *figure.Panel) (*plot.Plot, error) {
	p := plot.New()

	p.Title.Text = panel.Title
	p.Title.TextStyle.Font.Size = panelTitleSize
	p.Title.TextStyle.Font.Weight = xfont.WeightBold
	p.X.Label.Text = panel.XLabel
	p.Y.Label.Text = panel.YLabel
	p.X.Label.TextStyle.Font.Size = axisLabelSize
	p.Y.Label.TextStyle.Font.Size = axisLabelSize

	grid := plotter.NewGrid()
	grid.Vertical.Color = gridColor
	grid.Horizontal.Color = gridColor
	p.Add(grid)

	for _, s := range panel.Series {
		line, points, err := plotter.NewLinePoints(s.Points)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", s.Label, err)
		}
		applyStyle(line, points, s.Style)
		// Empty series keep their legend entry but add nothing to the axes.
		if len(s.Points) > 0 {
			p.Add(line, points)
		}
		p.Legend.Add(s.Label, line, points)
	}

	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.TextStyle.Font.Size = legendSize
	p.Legend.Padding = 1 * vg.Millimeter

	return p, nil
}

func applyStyle(line *plotter.Line, points *plotter.Scatter, style mappings.PlotStyle) {
	line.LineStyle.Color = style.Color
	line.LineStyle.Width = vg.Points(style.LineWidth)
	if style.Dashed {
		line.LineStyle.Dashes = dashes
	}

	points.GlyphStyle.Color = style.Color
	points.GlyphStyle.Radius = vg.Points(style.MarkSize / 2)
	switch style.Marker {
	case mappings.MarkerSquare:
		points.GlyphStyle.Shape = draw.SquareGlyph{}
	default:
		points.GlyphStyle.Shape = draw.CircleGlyph{}
	}
}

func boldStyle(size vg.Length) text.Style {
	fnt := font.From(plot.DefaultFont, size)
	fnt.Weight = xfont.WeightBold
	return text.Style{
		Color:   color.Black,
		Font:    fnt,
		Handler: plot.DefaultTextHandler,
	}
}

// CheckCapability verifies that the fonts used for titles and labels resolve
// and that a PNG can be encoded. It touches no files.
func CheckCapability() error {
	regular := plot.DefaultFont
	bold := regular
	bold.Weight = xfont.WeightBold

	for _, fnt := range []font.Font{regular, bold} {
		if !font.DefaultCache.Has(fnt) {
			return fmt.Errorf("%w: font %s %s (weight %d) not found",
				ErrRenderingUnavailable, fnt.Typeface, fnt.Variant, fnt.Weight)
		}
	}

	png := vgimg.PngCanvas{Canvas: vgimg.New(vg.Points(1), vg.Points(1))}
	if _, err := png.WriteTo(io.Discard); err != nil {
		return fmt.Errorf("%w: %v", ErrRenderingUnavailable, err)
	}
	return nil
}
