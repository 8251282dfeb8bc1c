package mappings

import (
	"fmt"
	"image/color"

	"abd-bench-plots/internal/results"
)

// SeriesRole distinguishes the central series of a protocol from its tail
// latency series.
type SeriesRole string

const (
	RoleCentral SeriesRole = "central"
	RoleP95     SeriesRole = "p95"
)

type Marker string

const (
	MarkerCircle Marker = "circle"
	MarkerSquare Marker = "square"
)

type PlotStyle struct {
	ColorName string
	Color     color.RGBA
	Marker    Marker
	Dashed    bool
	LineWidth float64 // points
	MarkSize  float64 // points
}

type styleKey struct {
	protocol results.Protocol
	role     SeriesRole
}

// Every figure draws from this table so the protocols keep their colours
// across throughput and latency charts.
var seriesStyles = map[styleKey]PlotStyle{
	{results.ProtocolABD, RoleCentral}: {
		ColorName: "abdmain", Color: rgb(0x4A, 0x90, 0xE2),
		Marker: MarkerCircle, LineWidth: 2, MarkSize: 6,
	},
	{results.ProtocolABD, RoleP95}: {
		ColorName: "abdtail", Color: rgb(0x7B, 0xB3, 0xF0),
		Marker: MarkerCircle, Dashed: true, LineWidth: 2, MarkSize: 6,
	},
	{results.ProtocolBlocking, RoleCentral}: {
		ColorName: "blockingmain", Color: rgb(0x7E, 0xD3, 0x21),
		Marker: MarkerSquare, LineWidth: 2, MarkSize: 6,
	},
	{results.ProtocolBlocking, RoleP95}: {
		ColorName: "blockingtail", Color: rgb(0xA5, 0xE8, 0x5C),
		Marker: MarkerSquare, Dashed: true, LineWidth: 2, MarkSize: 6,
	},
}

var fallbackStyle = PlotStyle{
	ColorName: "otherseries", Color: rgb(0x80, 0x80, 0x80),
	Marker: MarkerCircle, LineWidth: 2, MarkSize: 6,
}

var protocolLabels = map[results.Protocol]string{
	results.ProtocolABD:      "ABD",
	results.ProtocolBlocking: "Blocking",
}

func GetSeriesStyle(protocol results.Protocol, role SeriesRole) PlotStyle {
	if s, ok := seriesStyles[styleKey{protocol, role}]; ok {
		return s
	}
	return fallbackStyle
}

// GetProtocolLabel returns the legend name of a protocol.
func GetProtocolLabel(protocol results.Protocol) string {
	if l, ok := protocolLabels[protocol]; ok {
		return l
	}
	return string(protocol)
}

// Hex returns the colour as six upper-case hex digits.
func (ps PlotStyle) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", ps.Color.R, ps.Color.G, ps.Color.B)
}

func (ps PlotStyle) ToTikzOptions() string {
	options := "color=" + ps.ColorName
	if ps.Dashed {
		options += ",dashed"
	} else {
		options += ",solid"
	}
	if ps.LineWidth > 0 {
		options += fmt.Sprintf(",line width=%gpt", ps.LineWidth/2)
	}
	switch ps.Marker {
	case MarkerCircle:
		options += ",mark=*"
	case MarkerSquare:
		options += ",mark=square*"
	}
	options += ",mark options={solid,fill=" + ps.ColorName + "}"
	return options
}

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
