package mappings

import "abd-bench-plots/internal/results"

type PlotType string

const (
	PlotTypeThroughput PlotType = "throughput"
	PlotTypeGetLatency PlotType = "get_latency"
	PlotTypePutLatency PlotType = "put_latency"
)

// SeriesSpec describes one series drawn per protocol.
type SeriesSpec struct {
	Role        SeriesRole
	Field       string
	LabelSuffix string
}

// PlotTypeInfo is the display and extraction information of a plot type.
type PlotTypeInfo struct {
	Type       PlotType
	ShortLabel string
	XLabel     string
	YLabel     string
	// Raw values are divided by Divisor before plotting.
	Divisor float64
	Series  []SeriesSpec
}

const clientsLabel = "Number of Clients"

var plotTypes = map[PlotType]PlotTypeInfo{
	PlotTypeThroughput: {
		Type:       PlotTypeThroughput,
		ShortLabel: "Throughput",
		XLabel:     clientsLabel,
		YLabel:     "Throughput (ops/sec)",
		Divisor:    1,
		Series: []SeriesSpec{
			{Role: RoleCentral, Field: results.FieldThroughput},
		},
	},
	PlotTypeGetLatency: {
		Type:       PlotTypeGetLatency,
		ShortLabel: "GET Latency",
		XLabel:     clientsLabel,
		YLabel:     "Latency (ms)",
		Divisor:    1000,
		Series: []SeriesSpec{
			{Role: RoleCentral, Field: results.FieldGetMedian, LabelSuffix: " Median"},
			{Role: RoleP95, Field: results.FieldGetP95, LabelSuffix: " 95th"},
		},
	},
	PlotTypePutLatency: {
		Type:       PlotTypePutLatency,
		ShortLabel: "PUT Latency",
		XLabel:     clientsLabel,
		YLabel:     "Latency (ms)",
		Divisor:    1000,
		Series: []SeriesSpec{
			{Role: RoleCentral, Field: results.FieldPutMedian, LabelSuffix: " Median"},
			{Role: RoleP95, Field: results.FieldPutP95, LabelSuffix: " 95th"},
		},
	},
}

// GetPlotTypeInfo returns the information for a plot type.
func GetPlotTypeInfo(t PlotType) (PlotTypeInfo, bool) {
	info, ok := plotTypes[t]
	return info, ok
}

// PlotTypes lists the supported plot types in a fixed order.
func PlotTypes() []PlotType {
	return []PlotType{PlotTypeThroughput, PlotTypeGetLatency, PlotTypePutLatency}
}
