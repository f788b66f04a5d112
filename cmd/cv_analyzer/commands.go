package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/user/cv_analyzer_go/internal/config"
)

// cliOptions holds the flag values of one command tree.
type cliOptions struct {
	configPath string
	logLevel   string

	window          int
	degree          int
	noSmoothing     bool
	intersections   bool
	measurementType string
	outDir          string
	prefix          string
	noPDF           bool
	noCSV           bool
	png             bool

	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:   "cv_analyzer",
		Short: "Analyze cyclic voltammetry measurements",
		Long: `cv_analyzer smooths a cyclic voltammogram, measures the oxidation and reduction
peaks against their baselines, computes E1/2 and locates the zero crossings of the
first and second derivatives.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
				return fmt.Errorf("invalid --log-level %q: %w", opts.logLevel, err)
			}
			opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [data file]",
		Short: "Analyze a data file and write tables, charts and the PDF report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			_, err = NewApp(cfg, opts.logger).Run(args[0])
			return err
		},
	}

	crossingsCmd := &cobra.Command{
		Use:   "crossings [data file]",
		Short: "Print derivative zero crossings and branch intersections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			res, err := NewApp(cfg, opts.logger).Analyze(args[0])
			if err != nil {
				return err
			}
			PrintCrossings(cmd.OutOrStdout(), res)
			return nil
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch [data file]",
		Short: "Re-run the analysis whenever the data or config file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			reload := func() (config.Config, error) { return opts.loadConfig(cmd) }
			return NewApp(cfg, opts.logger).Watch(cmd.Context(), args[0], opts.configPath, reload)
		},
	}

	for _, c := range []*cobra.Command{analyzeCmd, crossingsCmd, watchCmd} {
		opts.addAnalysisFlags(c)
	}
	for _, c := range []*cobra.Command{analyzeCmd, watchCmd} {
		opts.addOutputFlags(c)
	}
	rootCmd.AddCommand(analyzeCmd, crossingsCmd, watchCmd)
	return rootCmd
}

func (o *cliOptions) addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&o.window, "window", 15, "Savitzky-Golay window length")
	cmd.Flags().IntVar(&o.degree, "degree", 3, "Savitzky-Golay polynomial degree")
	cmd.Flags().BoolVar(&o.noSmoothing, "no-smoothing", false, "analyze the raw curves")
	cmd.Flags().BoolVar(&o.intersections, "intersections", false, "locate intersections of the two branches")
	cmd.Flags().StringVar(&o.measurementType, "measurement-type", "oxidation", "which file column holds the oxidation branch (oxidation, reduction)")
}

func (o *cliOptions) addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.outDir, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&o.prefix, "prefix", "cv", "output file name prefix")
	cmd.Flags().BoolVar(&o.noPDF, "no-pdf", false, "skip the PDF report")
	cmd.Flags().BoolVar(&o.noCSV, "no-csv", false, "skip the CSV tables")
	cmd.Flags().BoolVar(&o.png, "png", false, "also write each chart as a PNG file")
}

// loadConfig reads --config (or the defaults) and applies the flags the user set.
func (o *cliOptions) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return config.Config{}, err
		}
		o.logger.Debug("Configuration loaded", "file", o.configPath)
	}

	flags := cmd.Flags()
	if flags.Changed("window") {
		cfg.Analysis.Smoothing.WindowLength = o.window
	}
	if flags.Changed("degree") {
		cfg.Analysis.Smoothing.PolyDegree = o.degree
	}
	if flags.Changed("no-smoothing") {
		cfg.Analysis.Smoothing.Enabled = !o.noSmoothing
	}
	if flags.Changed("intersections") {
		cfg.Analysis.Intersections.Enabled = o.intersections
	}
	if flags.Changed("measurement-type") {
		cfg.Input.MeasurementType = o.measurementType
	}
	if flags.Changed("out") {
		cfg.Output.Dir = o.outDir
	}
	if flags.Changed("prefix") {
		cfg.Output.Prefix = o.prefix
	}
	if flags.Changed("no-pdf") {
		cfg.Output.PDF = !o.noPDF
	}
	if flags.Changed("no-csv") {
		cfg.Output.CSV = !o.noCSV
	}
	if flags.Changed("png") {
		cfg.Output.PNG = o.png
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
