package cmd

import (
	"fmt"
	"io"
	"strings"

	"abd-bench-plots/internal/config"
	"abd-bench-plots/internal/logging"
	"abd-bench-plots/internal/results"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newValidateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the manifest and report dataset coverage",
		Long:  "Load the plot manifest and the results dataset and report which series are available, without writing any file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger()

			manifest, err := config.LoadManifest(opts.configPath)
			if err != nil {
				return err
			}

			ds, err := loadDataset(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			writeCoverage(out, ds.Coverage())

			missing := 0
			for _, spec := range manifest.Plots {
				gaps := manifestGaps(ds, manifest, spec)
				if len(gaps) > 0 {
					missing += len(gaps)
					logger.WithFields(logrus.Fields{
						"file": spec.File,
						"gaps": gaps,
					}).Warn("Plot will contain empty series")
				}
			}

			fmt.Fprintf(out, "\nManifest: %d plots, %d empty series\n", len(manifest.Plots), missing)
			return nil
		},
	}
}

func writeCoverage(w io.Writer, entries []results.CoverageEntry) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Servers", "Workload", "Protocol", "Clients"})
	table.SetAutoWrapText(false)
	for _, e := range entries {
		table.Append([]string{e.Servers, e.Workload, e.Protocol, strings.Join(e.Clients, ",")})
	}
	table.Render()
}

// manifestGaps lists the series of a manifest entry that have no point inside the
// allow-list.
func manifestGaps(ds results.Dataset, m *config.Manifest, spec config.PlotSpec) []string {
	var gaps []string
	allowed := m.ClientsFor(spec)
	for _, servers := range m.ServersFor(spec) {
		for _, p := range results.Protocols {
			if len(ds.Series(servers, spec.Workload, p).Clients(allowed)) == 0 {
				gaps = append(gaps, fmt.Sprintf("%d/%s", servers, p))
			}
		}
	}
	return gaps
}
