// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ChrisMcGann/PeakMatch/pkg/config"
	"github.com/ChrisMcGann/PeakMatch/pkg/logging"
	"github.com/ChrisMcGann/PeakMatch/pkg/tolerance"
)

var (
	// Global flags
	configFile string
	debug      bool

	// Tolerance flags shared by match and annotate
	tolUnit = tolerance.PPM
	tolLow  float64
	tolHigh float64

	// Output flags shared by match and annotate
	outputFile string
	jsonOutput bool

	// Set up by PersistentPreRunE
	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "peakmatch",
	Short: "PeakMatch - peak matching and fragment annotation for MS/MS spectra",
	Long: `PeakMatch pairs the peaks of two fragment spectra within an m/z tolerance and
annotates spectra with the theoretical fragments of a peptide.

Spectra can be read from:
- MSP and SPTXT spectral libraries (entry chosen by name)
- plain peak lists (one "mz intensity" pair per line)
- PROXI repositories, by USI (usi:mzspec:...)`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(ionsCmd)
	rootCmd.AddCommand(modsCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup loads .env, the config file and environment overrides, then builds the logger
func setup() error {
	config.LoadDotEnv()

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return err
	}
	if debug {
		cfg.Debug = true
	}

	l, err := logging.New(cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	logger = l
	return nil
}

// addToleranceFlags registers --tol-unit, --tol-low and --tol-high on fs. Unset flags
// keep the configured value.
func addToleranceFlags(fs *pflag.FlagSet) {
	fs.Var(&tolUnit, "tol-unit", "Tolerance unit: Da, ppm or mmu; unset keeps the configured unit")
	fs.Float64Var(&tolLow, "tol-low", 0, "Lower tolerance bound, signed, e.g. --tol-low=-10; unset keeps the configured bound")
	fs.Float64Var(&tolHigh, "tol-high", 0, "Upper tolerance bound, signed; unset keeps the configured bound")
}

// toleranceWindow returns the configured window with every tolerance flag that was set
// on the command line applied on top of it
func toleranceWindow(fs *pflag.FlagSet) (tolerance.Window, error) {
	window, err := cfg.Tolerance.Window()
	if err != nil {
		return tolerance.Window{}, err
	}
	if fs.Changed("tol-unit") {
		window.Unit = tolUnit
	}
	if fs.Changed("tol-low") {
		window.Low = tolLow
	}
	if fs.Changed("tol-high") {
		window.High = tolHigh
	}
	return tolerance.New(window.Unit, window.Low, window.High)
}

// addOutputFlags registers --out and --json on fs
func addOutputFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&outputFile, "out", "o", "", "Export results to a SQLite (.db, .sqlite) or Excel (.xlsx) file")
	fs.BoolVar(&jsonOutput, "json", false, "Print results as JSON")
}
