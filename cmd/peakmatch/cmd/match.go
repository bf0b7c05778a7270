package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ChrisMcGann/PeakMatch/pkg/filter"
	"github.com/ChrisMcGann/PeakMatch/pkg/match"
	"github.com/ChrisMcGann/PeakMatch/pkg/writer"
)

var (
	// Match flags
	queryFile       string
	referenceFile   string
	queryName       string
	referenceName   string
	queryFormat     string
	referenceFormat string
	strategy        string
	workers         int
	strict          bool

	// Filter flags
	topN          int
	cutoffPercent float64
	ionTypes      string
	dropZero      bool
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match the peaks of a query spectrum against a reference spectrum",
	Long: `Pair query peaks with reference peaks inside the tolerance window.

Each side may be a library file (MSP, SPTXT), a peak list, or a USI prefixed
with "usi:". Library entries are chosen with --query-name/--reference-name;
the first entry is used otherwise.

Filters (--drop-zero, --top-n, --cutoff, --ion-types) are applied to both spectra before
matching. Reported indices refer to the filtered peak lists.`,
	Example: `  peakmatch match --query run1.msp --query-name PEPTIDEK/2 --reference lib.sptxt --tol-unit Da --tol-low=-0.02 --tol-high 0.02
  peakmatch match --query usi:mzspec:PXD000561:Adult_Frontalcortex_bRP_Elite_85_f09:scan:17555 --reference peaks.txt --out result.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMatch(cmd)
	},
}

func init() {
	matchCmd.Flags().StringVarP(&queryFile, "query", "q", "", "Query spectrum: file path or usi:<USI> (required)")
	matchCmd.Flags().StringVarP(&referenceFile, "reference", "r", "", "Reference spectrum: file path or usi:<USI> (required)")
	matchCmd.Flags().StringVar(&queryName, "query-name", "", "Library entry to use as query (default: first)")
	matchCmd.Flags().StringVar(&referenceName, "reference-name", "", "Library entry to use as reference (default: first)")
	matchCmd.Flags().StringVar(&queryFormat, "query-format", formatAutoString, "Query file format: auto, msp, sptxt, peaks")
	matchCmd.Flags().StringVar(&referenceFormat, "reference-format", formatAutoString, "Reference file format: auto, msp, sptxt, peaks")
	matchCmd.Flags().StringVar(&strategy, "strategy", "", "Conflict resolution: single-pass or greedy (default from config)")
	matchCmd.Flags().IntVar(&workers, "workers", 0, "Parallel candidate selection workers (default from config)")
	matchCmd.Flags().BoolVar(&strict, "strict", false, "Fail when a NaN intensity has to be ranked")

	matchCmd.Flags().IntVarP(&topN, "top-n", "n", 0, "Keep only top N most intense peaks (0 = no limit)")
	matchCmd.Flags().Float64VarP(&cutoffPercent, "cutoff", "c", 0, "Intensity cutoff as % of base peak (0 = no cutoff)")
	matchCmd.Flags().StringVar(&ionTypes, "ion-types", "", "Keep only annotated peaks of these ion types (comma-separated, e.g., b,y)")
	matchCmd.Flags().BoolVar(&dropZero, "drop-zero", false, "Remove peaks with zero or negative intensity")

	addToleranceFlags(matchCmd.Flags())
	addOutputFlags(matchCmd.Flags())

	matchCmd.MarkFlagRequired("query")
	matchCmd.MarkFlagRequired("reference")
}

func runMatch(cmd *cobra.Command) error {
	window, err := toleranceWindow(cmd.Flags())
	if err != nil {
		return fmt.Errorf("invalid tolerance: %w", err)
	}

	matchCfg, err := cfg.Match.Config()
	if err != nil {
		return err
	}
	if strategy != "" {
		if matchCfg.Strategy, err = match.ParseStrategy(strategy); err != nil {
			return err
		}
	}
	if workers > 0 {
		matchCfg.Workers = workers
	}
	if cmd.Flags().Changed("strict") {
		matchCfg.Strict = strict
	}

	filterConfig := &filter.Config{
		TopN:            topN,
		IntensityCutoff: cutoffPercent,
		DropZero:        dropZero,
	}
	if ionTypes != "" {
		filterConfig.IonTypes = strings.Split(ionTypes, ",")
		for i := range filterConfig.IonTypes {
			filterConfig.IonTypes[i] = strings.TrimSpace(filterConfig.IonTypes[i])
		}
	}
	if err := filterConfig.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	query, err := loadSpectrum(ctx, queryFile, queryFormat, queryName)
	if err != nil {
		return err
	}
	reference, err := loadSpectrum(ctx, referenceFile, referenceFormat, referenceName)
	if err != nil {
		return err
	}

	if filterConfig.Active() {
		if err := filterConfig.Apply(query); err != nil {
			return fmt.Errorf("failed to filter query: %w", err)
		}
		if err := filterConfig.Apply(reference); err != nil {
			return fmt.Errorf("failed to filter reference: %w", err)
		}
	}

	logger.Info("matching",
		zap.String("query", query.Label()),
		zap.Int("query_peaks", len(query.Peaks)),
		zap.String("reference", reference.Label()),
		zap.Int("reference_peaks", len(reference.Peaks)),
		zap.Stringer("tolerance", window),
		zap.String("strategy", string(matchCfg.Strategy)))

	result, err := match.Match(query.Peaks, reference.Peaks, window, match.WithConfig(matchCfg))
	if err != nil {
		return fmt.Errorf("matching failed: %w", err)
	}
	if result.NonComparable > 0 {
		logger.Warn("NaN intensities ranked lowest", zap.Int("count", result.NonComparable))
	}

	run := writer.NewRun(writer.KindMatch, window)
	run.Strategy = string(matchCfg.Strategy)
	run.Query = query
	run.Reference = reference

	if outputFile != "" {
		exp, err := newExporter(outputFile)
		if err != nil {
			return err
		}
		if err := exp.WriteMatches(run, result.Matches); err != nil {
			exp.Close()
			return fmt.Errorf("failed to export matches: %w", err)
		}
		if err := exp.Close(); err != nil {
			return fmt.Errorf("failed to finalize %s: %w", outputFile, err)
		}
		logger.Info("exported matches", zap.String("output", outputFile), zap.String("run", run.ID))
	}

	if jsonOutput {
		if result.Matches == nil {
			result.Matches = []match.Index{}
		}
		return printJSON(os.Stdout, result)
	}
	printMatches(os.Stdout, run, result)
	return nil
}
