package cmd

import (
	"fmt"

	"abd-bench-plots/internal/config"
	"abd-bench-plots/internal/logging"
	"abd-bench-plots/internal/plot/mappings"
	"abd-bench-plots/internal/plot/raster"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRenderCommand(opts *options) *cobra.Command {
	var servers []int
	var clients []int
	var workload, plotType, title, output string

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render a single chart",
		Long:  "Render one ad-hoc comparison chart for the given servers, workload and plot type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger()

			pt := mappings.PlotType(plotType)
			if _, ok := mappings.GetPlotTypeInfo(pt); !ok {
				return fmt.Errorf("unknown plot type %q (want one of %v)", plotType, mappings.PlotTypes())
			}
			if len(servers) == 0 {
				return fmt.Errorf("at least one server configuration is required")
			}

			if err := raster.CheckCapability(); err != nil {
				logger.WithError(err).Error("Plot rendering is not available")
				return err
			}

			pm, err := newPlotManager(opts)
			if err != nil {
				return err
			}
			defer pm.Close()

			logger.WithFields(logrus.Fields{
				"servers":  servers,
				"workload": workload,
				"type":     plotType,
			}).Debug("Rendering single plot")

			path, err := pm.RenderPlot(cmd.Context(), servers, workload, pt, title, output, clients)
			if err != nil {
				logger.WithError(err).Error("Failed to generate plot")
				return fmt.Errorf("failed to generate plot: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Generated: %s\n", path)
			return nil
		},
	}

	renderCmd.Flags().IntSliceVar(&servers, "servers", config.DefaultServers, "Comma-separated replica counts, one panel each")
	renderCmd.Flags().StringVar(&workload, "workload", "", "Workload key, e.g. 90%_GETs")
	renderCmd.Flags().StringVar(&plotType, "type", string(mappings.PlotTypeThroughput), "Plot type (throughput, get_latency, put_latency)")
	renderCmd.Flags().StringVar(&title, "title", "", "Figure title")
	renderCmd.Flags().StringVarP(&output, "output", "o", "", "Output PNG file")
	renderCmd.Flags().IntSliceVar(&clients, "clients", config.DefaultAllowedClients, "Comma-separated client counts to plot")
	renderCmd.MarkFlagRequired("workload")
	renderCmd.MarkFlagRequired("output")
	addRenderFlags(renderCmd, opts)

	return renderCmd
}
