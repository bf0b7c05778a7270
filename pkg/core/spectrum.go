// Package core provides the peak and spectrum models shared by the matcher, the annotator
// and the library readers of PeakMatch.
package core

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Spectrum represents a single fragment spectrum with the metadata PeakMatch uses.
type Spectrum struct {
	Name        string  // Entry name as found in the source (e.g., "PEPTIDE/2")
	Sequence    string  // Peptide sequence, empty when unknown
	Charge      int     // Precursor charge state, 0 when unknown
	PrecursorMZ float64 // Precursor m/z, 0 when unknown
	Peaks       []Peak

	Modifications []Modification
	RetentionTime *float64

	// Where the spectrum came from
	Source       string // file path or USI
	SourceFormat string // msp, sptxt, peaks, proxi
}

// Peak represents a single m/z, intensity pair. A peak is identified by its index in
// the list it belongs to, never by value.
type Peak struct {
	MZ         float64
	Intensity  float64
	Annotation string // Ion annotation from a library file (e.g., "y3", "b2^2")
	Charge     int    // Fragment charge (if available)
}

// Modification represents a peptide modification with position and mass shift.
type Modification struct {
	Mass     float64
	Position int    // 0-based position; -1 for N-term, len(seq) for C-term
	Name     string // Modification name (e.g., "Carbamidomethyl", "Oxidation")
}

// ValidationError represents an error found during spectrum validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// PeaksFromArrays zips parallel m/z and intensity arrays into peaks.
func PeaksFromArrays(mzs, intensities []float64) ([]Peak, error) {
	if len(mzs) != len(intensities) {
		return nil, fmt.Errorf("%d m/z values, %d intensities: %w", len(mzs), len(intensities), ErrLengthMismatch)
	}

	peaks := make([]Peak, len(mzs))
	for i := range mzs {
		peaks[i] = Peak{MZ: mzs[i], Intensity: intensities[i]}
	}
	return peaks, nil
}

// MZs returns the m/z values of the spectrum in peak order.
func (s *Spectrum) MZs() []float64 {
	out := make([]float64, len(s.Peaks))
	for i, p := range s.Peaks {
		out[i] = p.MZ
	}
	return out
}

// Intensities returns the intensity values of the spectrum in peak order.
func (s *Spectrum) Intensities() []float64 {
	out := make([]float64, len(s.Peaks))
	for i, p := range s.Peaks {
		out[i] = p.Intensity
	}
	return out
}

// Validate checks that a spectrum can be used as matcher or annotator input.
// Unsorted peaks are accepted; NaN intensities are reported because they cannot be ranked.
func (s *Spectrum) Validate() error {
	var errs []string

	if len(s.Peaks) == 0 {
		errs = append(errs, "at least one peak is required")
	}
	if s.Charge < 0 {
		errs = append(errs, "charge must not be negative")
	}

	for i, peak := range s.Peaks {
		if math.IsNaN(peak.MZ) || math.IsInf(peak.MZ, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid m/z", i))
		} else if peak.MZ <= 0 {
			errs = append(errs, fmt.Sprintf("peak %d m/z must be positive", i))
		}
		if math.IsNaN(peak.Intensity) || math.IsInf(peak.Intensity, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid intensity", i))
		} else if peak.Intensity < 0 {
			errs = append(errs, fmt.Sprintf("peak %d intensity must be non-negative", i))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Spectrum",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// ArePeaksSorted checks if peaks are sorted by m/z in ascending order.
func (s *Spectrum) ArePeaksSorted() bool {
	for i := 1; i < len(s.Peaks); i++ {
		if s.Peaks[i].MZ < s.Peaks[i-1].MZ {
			return false
		}
	}
	return true
}

// SortPeaks sorts peaks by m/z in ascending order. Peak indices change, so never call it
// between matching and reporting.
func (s *Spectrum) SortPeaks() {
	sort.SliceStable(s.Peaks, func(i, j int) bool {
		return s.Peaks[i].MZ < s.Peaks[j].MZ
	})
}

// BasePeak returns the index of the most intense peak, or -1 for an empty spectrum.
func (s *Spectrum) BasePeak() int {
	best := -1
	for i, p := range s.Peaks {
		if math.IsNaN(p.Intensity) {
			continue
		}
		if best < 0 || p.Intensity > s.Peaks[best].Intensity {
			best = i
		}
	}
	return best
}

// ModString returns a string representation of modifications in format "mass@pos;mass@pos;..."
func (s *Spectrum) ModString() string {
	if len(s.Modifications) == 0 {
		return ""
	}

	var parts []string
	for _, mod := range s.Modifications {
		parts = append(parts, fmt.Sprintf("%.6f@%d", mod.Mass, mod.Position))
	}
	return strings.Join(parts, ";")
}

// Label returns the entry name, falling back to "Sequence/Charge" and then the source.
func (s *Spectrum) Label() string {
	switch {
	case s.Name != "":
		return s.Name
	case s.Sequence != "":
		return fmt.Sprintf("%s/%d", s.Sequence, s.Charge)
	default:
		return s.Source
	}
}
