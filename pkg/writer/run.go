// Package writer holds the run description shared by the result exporters.
package writer

import (
	"time"

	"github.com/google/uuid"

	"github.com/ChrisMcGann/PeakMatch/pkg/annotate"
	"github.com/ChrisMcGann/PeakMatch/pkg/core"
	"github.com/ChrisMcGann/PeakMatch/pkg/match"
	"github.com/ChrisMcGann/PeakMatch/pkg/tolerance"
)

// Run kinds
const (
	KindMatch    = "match"
	KindAnnotate = "annotate"
)

// Run describes one matching or annotation invocation.
type Run struct {
	ID        string
	Kind      string
	CreatedAt time.Time
	Tolerance tolerance.Window
	Strategy  string // matching only
	Sequence  string // annotation only

	Query     *core.Spectrum
	Reference *core.Spectrum // nil for annotation runs
}

// NewRun creates a run with a fresh id.
func NewRun(kind string, tol tolerance.Window) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
		Tolerance: tol,
	}
}

// MatchRow is one matched pair resolved against the peak lists.
type MatchRow struct {
	QueryIndex         int
	ReferenceIndex     int
	QueryMZ            float64
	QueryIntensity     float64
	ReferenceMZ        float64
	ReferenceIntensity float64
	ErrorDa            float64 // query - reference
	Error              float64 // ErrorDa in the run's tolerance unit
}

// MatchRows resolves index pairs against the run's spectra.
func (r *Run) MatchRows(matches []match.Index) []MatchRow {
	rows := make([]MatchRow, 0, len(matches))
	for _, m := range matches {
		q := r.Query.Peaks[m.Query]
		ref := r.Reference.Peaks[m.Reference]
		errDa := q.MZ - ref.MZ
		rows = append(rows, MatchRow{
			QueryIndex:         m.Query,
			ReferenceIndex:     m.Reference,
			QueryMZ:            q.MZ,
			QueryIntensity:     q.Intensity,
			ReferenceMZ:        ref.MZ,
			ReferenceIntensity: ref.Intensity,
			ErrorDa:            errDa,
			Error:              tolerance.ConvertError(errDa, ref.MZ, r.Tolerance.Unit),
		})
	}
	return rows
}

// Exporter persists runs and their results.
type Exporter interface {
	WriteMatches(run *Run, matches []match.Index) error
	WriteAnnotations(run *Run, records []annotate.MatchedFragmentPeak) error
	Close() error
}
