package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"abd-bench-plots/internal/config"
	"abd-bench-plots/internal/logging"
	"abd-bench-plots/internal/plot"
	"abd-bench-plots/internal/plot/raster"
	"abd-bench-plots/internal/results"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const Version = "1.0.0"

const (
	sourceJSON   = "json"
	sourceInflux = "influx"
)

type options struct {
	logLevel    string
	resultsPath string
	source      string
	configPath  string
	outDir      string
	parallel    bool
	omitMissing bool
	tikz        bool
	dpi         int
}

func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the command tree. Running it without a subcommand
// renders every plot of the manifest.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "abd-bench-plots",
		Short:         "Render ABD vs. Blocking benchmark charts",
		Long:          "Render throughput and latency comparison charts for the ABD and Blocking protocols from a benchmark results dataset",
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logLevel != "" {
				if err := logging.SetLogLevel(opts.logLevel); err != nil {
					return fmt.Errorf("invalid log level: %w", err)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return renderAll(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "", "Set log level (trace, debug, info, warn, error)")
	flags.StringVar(&opts.resultsPath, "results", results.DefaultResultsFile, "Path to the results dataset (JSON source)")
	flags.StringVar(&opts.source, "source", sourceJSON, "Results source (json, influx)")
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to a plot manifest (default: built-in battery)")
	flags.StringVar(&opts.outDir, "out-dir", ".", "Directory for generated files")

	rootCmd.Flags().BoolVar(&opts.parallel, "parallel", false, "Render plots concurrently")
	addRenderFlags(rootCmd, opts)

	rootCmd.AddCommand(newRenderCommand(opts))
	rootCmd.AddCommand(newValidateCommand(opts))
	rootCmd.AddCommand(newImportCommand(opts))

	return rootCmd
}

func addRenderFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().IntVar(&opts.dpi, "dpi", raster.DefaultDPI, "Output resolution")
	cmd.Flags().BoolVar(&opts.omitMissing, "omit-missing", false, "Skip points whose metric is missing instead of plotting 0")
	cmd.Flags().BoolVar(&opts.tikz, "tikz", false, "Also write a pgfplots version of every figure")
}

func renderAll(cmd *cobra.Command, opts *options) error {
	logger := logging.GetLogger()

	if err := raster.CheckCapability(); err != nil {
		logger.WithError(err).Error("Plot rendering is not available")
		return err
	}

	manifest, err := config.LoadManifest(opts.configPath)
	if err != nil {
		return err
	}

	pm, err := newPlotManager(opts)
	if err != nil {
		return err
	}
	defer pm.Close()

	paths, err := pm.RenderManifest(cmd.Context(), manifest)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, path := range paths {
		fmt.Fprintf(out, "Generated: %s\n", path)
	}
	fmt.Fprintf(out, "\nAll %d plots generated successfully!\n", len(paths))
	return nil
}

func newPlotManager(opts *options) (*plot.PlotManager, error) {
	source, err := openSource(opts)
	if err != nil {
		return nil, err
	}

	pm, err := plot.NewPlotManager(plot.ManagerOptions{
		Source:   source,
		OutDir:   opts.outDir,
		Parallel: opts.parallel,
		Renderer: []plot.RendererOption{
			plot.WithDPI(opts.dpi),
			plot.WithOmitMissing(opts.omitMissing),
			plot.WithTikz(opts.tikz),
		},
	})
	if err != nil {
		source.Close()
		return nil, fmt.Errorf("failed to create plot manager: %w", err)
	}
	return pm, nil
}

func openSource(opts *options) (results.Source, error) {
	switch opts.source {
	case sourceJSON, "":
		return results.NewFileSource(opts.resultsPath), nil
	case sourceInflux:
		loadEnvironment()
		source, err := results.NewInfluxSource(logging.GetLogger())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to InfluxDB: %w", err)
		}
		return source, nil
	default:
		return nil, fmt.Errorf("unknown results source %q (want %s or %s)", opts.source, sourceJSON, sourceInflux)
	}
}

func loadDataset(ctx context.Context, opts *options) (results.Dataset, error) {
	source, err := openSource(opts)
	if err != nil {
		return nil, err
	}
	defer source.Close()
	return source.Load(ctx)
}

func loadEnvironment() {
	logger := logging.GetLogger()

	envFile := ".env"
	if _, err := os.Stat(envFile); err != nil {
		execPath, err := os.Executable()
		if err != nil {
			return
		}
		envFile = filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(envFile); err != nil {
			return
		}
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.WithField("file", envFile).WithError(err).Warn("Error loading .env file")
		return
	}
	logger.WithField("file", envFile).Debug("Loaded environment variables")
}
