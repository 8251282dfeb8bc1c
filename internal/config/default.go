package config

import (
	"abd-bench-plots/internal/plot/mappings"
)

const (
	WorkloadReadHeavy  = "90%_GETs"
	WorkloadWriteHeavy = "90%_PUTs"
)

var (
	DefaultServers        = []int{1, 3, 5}
	DefaultAllowedClients = []int{20, 30, 40, 50, 60, 70, 80}
)

// Default returns the built-in battery: three plot types for each of the
// read-heavy and write-heavy mixes.
func Default() *Manifest {
	return &Manifest{
		AllowedClients: append([]int(nil), DefaultAllowedClients...),
		Servers:        append([]int(nil), DefaultServers...),
		Plots: []PlotSpec{
			{
				Workload: WorkloadReadHeavy,
				Type:     mappings.PlotTypeThroughput,
				Title:    "Throughput vs Number of Clients (90% GETs, 10% PUTs)",
				File:     "plot_throughput_90pct_gets.png",
			},
			{
				Workload: WorkloadReadHeavy,
				Type:     mappings.PlotTypeGetLatency,
				Title:    "GET Latency vs Number of Clients (90% GETs, 10% PUTs)",
				File:     "plot_get_latency_90pct_gets.png",
			},
			{
				Workload: WorkloadReadHeavy,
				Type:     mappings.PlotTypePutLatency,
				Title:    "PUT Latency vs Number of Clients (90% GETs, 10% PUTs)",
				File:     "plot_put_latency_90pct_gets.png",
			},
			{
				Workload: WorkloadWriteHeavy,
				Type:     mappings.PlotTypeThroughput,
				Title:    "Throughput vs Number of Clients (10% GETs, 90% PUTs)",
				File:     "plot_throughput_90pct_puts.png",
			},
			{
				Workload: WorkloadWriteHeavy,
				Type:     mappings.PlotTypeGetLatency,
				Title:    "GET Latency vs Number of Clients (10% GETs, 90% PUTs)",
				File:     "plot_get_latency_90pct_puts.png",
			},
			{
				Workload: WorkloadWriteHeavy,
				Type:     mappings.PlotTypePutLatency,
				Title:    "PUT Latency vs Number of Clients (10% GETs, 90% PUTs)",
				File:     "plot_put_latency_90pct_puts.png",
			},
		},
	}
}
