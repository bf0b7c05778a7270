package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ChrisMcGann/PeakMatch/pkg/annotate"
	"github.com/ChrisMcGann/PeakMatch/pkg/core"
	"github.com/ChrisMcGann/PeakMatch/pkg/match"
	"github.com/ChrisMcGann/PeakMatch/pkg/tolerance"
	"github.com/ChrisMcGann/PeakMatch/pkg/writer"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

func printMatches(w io.Writer, run *writer.Run, result *match.Result) {
	unit := run.Tolerance.Unit

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "query\treference\tquery m/z\treference m/z\tquery int\treference int\terror (%s)\n", unit)
	for _, row := range run.MatchRows(result.Matches) {
		fmt.Fprintf(tw, "%d\t%d\t%.5f\t%.5f\t%.4g\t%.4g\t%.3f\n",
			row.QueryIndex, row.ReferenceIndex, row.QueryMZ, row.ReferenceMZ,
			row.QueryIntensity, row.ReferenceIntensity, row.Error)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nMatched: %d pairs (%d candidates, %d forward, %d backward)\n",
		len(result.Matches), result.Candidates, result.Forward, result.Backward)
	fmt.Fprintf(w, "Tolerance: %s, strategy: %s\n", run.Tolerance, run.Strategy)
}

func printAnnotations(w io.Writer, run *writer.Run, records []annotate.MatchedFragmentPeak) {
	unit := run.Tolerance.Unit

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "peak\tm/z\tintensity\tlabel\ttheoretical\terror (%s)\tposition\n", unit)
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%.5f\t%.4g\t%s\t%.5f\t%.3f\t%d\n",
			r.PeakIndex, r.PeakMZ, r.PeakIntensity, r.Label, r.TheoMZ,
			tolerance.ConvertError(float64(r.MZError), r.TheoMZ, unit), r.AAPosition)
	}
	tw.Flush()

	explained := make(map[int]struct{}, len(records))
	for _, r := range records {
		explained[r.PeakIndex] = struct{}{}
	}
	fmt.Fprintf(w, "\nAnnotated: %d fragments on %d of %d peaks\n", len(records), len(explained), len(run.Query.Peaks))
}

func printPeaks(w io.Writer, spec *core.Spectrum) {
	fmt.Fprintf(w, "# %s\n", spec.Label())
	if spec.PrecursorMZ > 0 {
		fmt.Fprintf(w, "# precursor m/z %.5f, charge %d\n", spec.PrecursorMZ, spec.Charge)
	}
	for _, p := range spec.Peaks {
		fmt.Fprintf(w, "%.5f\t%g\n", p.MZ, p.Intensity)
	}
}
