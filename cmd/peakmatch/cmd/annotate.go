package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ChrisMcGann/PeakMatch/pkg/annotate"
	"github.com/ChrisMcGann/PeakMatch/pkg/fragment"
	"github.com/ChrisMcGann/PeakMatch/pkg/writer"
)

var (
	// Annotate flags
	sequence       string
	spectrumFile   string
	spectrumName   string
	spectrumFormat string
	seriesList     string
	charges        []int
	modString      string
)

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Annotate a spectrum with the theoretical fragments of a peptide",
	Long: `Compute the fragment ions of a peptide and assign each one the most intense
peak inside the tolerance window.

The peptide defaults to the sequence and modifications of the library entry.
Modifications use the "name@position" syntax, e.g. "Oxidation@M3;Acetyl@N-term".`,
	Example: `  peakmatch annotate --spectrum lib.msp --spectrum-name PEPTIDEK/2
  peakmatch annotate --sequence PEPTIDEK --spectrum peaks.txt --series b,y,a --charges 1,2 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnnotate(cmd)
	},
}

func init() {
	annotateCmd.Flags().StringVarP(&sequence, "sequence", "s", "", "Peptide sequence (default: sequence of the library entry)")
	annotateCmd.Flags().StringVarP(&spectrumFile, "spectrum", "i", "", "Spectrum: file path or usi:<USI> (required)")
	annotateCmd.Flags().StringVar(&spectrumName, "spectrum-name", "", "Library entry to annotate (default: first)")
	annotateCmd.Flags().StringVar(&spectrumFormat, "format", formatAutoString, "File format: auto, msp, sptxt, peaks")
	annotateCmd.Flags().StringVar(&seriesList, "series", "", "Fragment series, comma-separated (default from config)")
	annotateCmd.Flags().IntSliceVar(&charges, "charges", nil, "Fragment charges, comma-separated (default from config)")
	annotateCmd.Flags().StringVar(&modString, "mods", "", "Modifications, e.g. Oxidation@M3;Carbamidomethyl@C5")

	addToleranceFlags(annotateCmd.Flags())
	addOutputFlags(annotateCmd.Flags())

	annotateCmd.MarkFlagRequired("spectrum")
}

func runAnnotate(cmd *cobra.Command) error {
	window, err := toleranceWindow(cmd.Flags())
	if err != nil {
		return fmt.Errorf("invalid tolerance: %w", err)
	}

	opts, err := cfg.Annotate.Options()
	if err != nil {
		return err
	}
	if seriesList != "" {
		series, err := fragment.ParseSeriesList(seriesList)
		if err != nil {
			return err
		}
		opts = append(opts, annotate.WithSeries(series...))
	}
	if len(charges) > 0 {
		opts = append(opts, annotate.WithCharges(charges...))
	}

	spec, err := loadSpectrum(cmd.Context(), spectrumFile, spectrumFormat, spectrumName)
	if err != nil {
		return err
	}

	seq := sequence
	mods := spec.Modifications
	if seq == "" {
		seq = spec.Sequence
	} else if seq != spec.Sequence {
		// Library modifications belong to the library sequence
		mods = nil
	}
	if seq == "" {
		return fmt.Errorf("no sequence given and %s carries none: use --sequence", spec.Label())
	}
	if modString != "" {
		mods, err = loadModDatabase().ParseModString(modString, seq)
		if err != nil {
			return fmt.Errorf("invalid modifications: %w", err)
		}
	}
	if len(mods) > 0 {
		opts = append(opts, annotate.WithModifications(mods))
	}

	logger.Info("annotating",
		zap.String("spectrum", spec.Label()),
		zap.String("sequence", seq),
		zap.Int("modifications", len(mods)),
		zap.Int("peaks", len(spec.Peaks)),
		zap.Stringer("tolerance", window))

	records, err := annotate.Peaks(seq, spec.Peaks, window, opts...)
	if err != nil {
		return fmt.Errorf("annotation failed: %w", err)
	}

	run := writer.NewRun(writer.KindAnnotate, window)
	run.Sequence = seq
	run.Query = spec

	if outputFile != "" {
		exp, err := newExporter(outputFile)
		if err != nil {
			return err
		}
		if err := exp.WriteAnnotations(run, records); err != nil {
			exp.Close()
			return fmt.Errorf("failed to export annotations: %w", err)
		}
		if err := exp.Close(); err != nil {
			return fmt.Errorf("failed to finalize %s: %w", outputFile, err)
		}
		logger.Info("exported annotations", zap.String("output", outputFile), zap.String("run", run.ID))
	}

	if jsonOutput {
		if records == nil {
			records = []annotate.MatchedFragmentPeak{}
		}
		return printJSON(os.Stdout, annotateOutput{Sequence: seq, Records: records})
	}
	printAnnotations(os.Stdout, run, records)
	return nil
}

type annotateOutput struct {
	Sequence string                         `json:"sequence"`
	Records  []annotate.MatchedFragmentPeak `json:"records"`
}
