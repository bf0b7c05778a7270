// Package annotate is the caller-facing annotateSpectrum operation: it builds the
// fragment table of a peptide, annotates observed peaks against it and returns flat
// records with stable ion type labels.
package annotate

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/ChrisMcGann/PeakMatch/pkg/core"
	"github.com/ChrisMcGann/PeakMatch/pkg/fragment"
	"github.com/ChrisMcGann/PeakMatch/pkg/tolerance"
)

// MatchedFragmentPeak is one observed peak explained by one theoretical fragment.
type MatchedFragmentPeak struct {
	PeakIndex     int     `json:"peak_index"`
	PeakMZ        float64 `json:"peak_mz"`
	PeakIntensity float64 `json:"peak_intensity"`
	TheoMZ        float64 `json:"theo_mz"`
	MZError       float32 `json:"mz_error"` // observed - theoretical, Da
	Charge        int8    `json:"charge"`
	IonType       string  `json:"ion_type"`
	FragIndex     uint16  `json:"frag_index"`  // row in the fragment table, 0-based
	AAPosition    uint16  `json:"aa_position"` // residue position, 1-based
	IonNumber     uint16  `json:"ion_number"`
	Label         string  `json:"label"` // e.g. "y3^2"
}

// MarshalJSON writes a NaN or infinite peak intensity as null, which encoding/json
// cannot represent as a number.
func (p MatchedFragmentPeak) MarshalJSON() ([]byte, error) {
	type plain MatchedFragmentPeak
	out := struct {
		plain
		PeakIntensity *float64 `json:"peak_intensity"`
	}{plain: plain(p)}
	if !math.IsNaN(p.PeakIntensity) && !math.IsInf(p.PeakIntensity, 0) {
		out.PeakIntensity = &p.PeakIntensity
	}
	return json.Marshal(out)
}

// Default policy: b and y ions at charges 1 to 4, no modifications.
var (
	DefaultSeries  = []fragment.Series{fragment.B, fragment.Y}
	DefaultCharges = []int{1, 2, 3, 4}
)

// PeakColors maps ion types to the colours used when plotting annotated spectra.
var PeakColors = map[string]string{
	"b": "#0000ff",
	"y": "#ff0000",
}

type settings struct {
	series  []fragment.Series
	charges []int
	mods    []core.Modification
}

// Option extends the default annotation policy.
type Option func(*settings)

// WithSeries replaces the fragment series.
func WithSeries(series ...fragment.Series) Option {
	return func(s *settings) { s.series = series }
}

// WithCharges replaces the fragment charges.
func WithCharges(charges ...int) Option {
	return func(s *settings) { s.charges = charges }
}

// WithModifications applies modifications to the peptide.
func WithModifications(mods []core.Modification) Option {
	return func(s *settings) { s.mods = mods }
}

// Spectrum annotates the peaks given as parallel arrays against the fragments of sequence.
func Spectrum(sequence string, mzs, intensities []float64, window tolerance.Window, opts ...Option) ([]MatchedFragmentPeak, error) {
	peaks, err := core.PeaksFromArrays(mzs, intensities)
	if err != nil {
		return nil, err
	}
	return Peaks(sequence, peaks, window, opts...)
}

// Peaks annotates peaks against the fragments of sequence.
func Peaks(sequence string, peaks []core.Peak, window tolerance.Window, opts ...Option) ([]MatchedFragmentPeak, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	s := settings{series: DefaultSeries, charges: DefaultCharges}
	for _, opt := range opts {
		opt(&s)
	}

	table, err := fragment.ComputeTable(sequence, s.series, s.charges, s.mods)
	if err != nil {
		return nil, fmt.Errorf("failed to compute fragment table: %w", err)
	}

	matches := fragment.Annotate(peaks, table, window)
	out := make([]MatchedFragmentPeak, 0, len(matches))
	for _, m := range matches {
		out = append(out, Record(m))
	}
	return out, nil
}

// Record converts an annotator match into the caller-facing record.
func Record(m fragment.Match) MatchedFragmentPeak {
	f := m.Fragment
	return MatchedFragmentPeak{
		PeakIndex:     m.PeakIndex,
		PeakMZ:        m.Peak.MZ,
		PeakIntensity: m.Peak.Intensity,
		TheoMZ:        f.MZ,
		MZError:       float32(m.Error()),
		Charge:        int8(f.Charge),
		IonType:       f.Series.Label(),
		FragIndex:     uint16(f.Index),
		AAPosition:    uint16(f.Position),
		IonNumber:     uint16(f.Number),
		Label:         f.Name(),
	}
}

// IonType describes one entry of the ion label table.
type IonType struct {
	Label     string `json:"label"`
	Terminus  string `json:"terminus"`
	Supported bool   `json:"supported"`
	Color     string `json:"color,omitempty"`
}

// IonTypes returns the full ion label table in declaration order.
func IonTypes() []IonType {
	out := make([]IonType, 0, len(fragment.AllSeries))
	for _, s := range fragment.AllSeries {
		_, err := fragment.ComputeTable("GG", []fragment.Series{s}, []int{1}, nil)
		out = append(out, IonType{
			Label:     s.Label(),
			Terminus:  terminusName(s.Terminus()),
			Supported: err == nil,
			Color:     PeakColors[s.Label()],
		})
	}
	return out
}

func terminusName(t fragment.Terminus) string {
	switch t {
	case fragment.NTerminal:
		return "N"
	case fragment.CTerminal:
		return "C"
	default:
		return "internal"
	}
}
