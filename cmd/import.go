package cmd

import (
	"fmt"
	"time"

	"abd-bench-plots/internal/logging"
	"abd-bench-plots/internal/results"

	"github.com/spf13/cobra"
)

func newImportCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Copy the results file into InfluxDB",
		Long:  "Load the JSON results dataset and write every measurement to the InfluxDB bucket read by --source influx",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger()
			ctx := cmd.Context()

			ds, err := results.NewFileSource(opts.resultsPath).Load(ctx)
			if err != nil {
				return err
			}

			loadEnvironment()
			sink, err := results.NewInfluxSource(logger)
			if err != nil {
				return fmt.Errorf("failed to connect to InfluxDB: %w", err)
			}
			defer sink.Close()

			if err := sink.Ping(ctx); err != nil {
				return err
			}

			n, err := sink.Write(ctx, ds, time.Now())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d measurements from %s\n", n, opts.resultsPath)
			return nil
		},
	}
}
