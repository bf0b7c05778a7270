// Package filter provides peak filtering applied to spectra before matching
package filter

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"

	"github.com/ChrisMcGann/PeakMatch/pkg/core"
)

// Config holds filtering configuration
type Config struct {
	TopN            int      // Keep only top N most intense peaks (0 = no limit)
	IntensityCutoff float64  // Keep only peaks at or above this % of base peak (0 = no cutoff)
	IonTypes        []string // Keep only annotated peaks of these ion types (nil = all)
	DropZero        bool     // Remove peaks with zero or negative intensity
}

// Validate checks the configuration ranges
func (c *Config) Validate() error {
	if c.TopN < 0 {
		return &core.ValidationError{Field: "top-n", Message: fmt.Sprintf("must not be negative, got %d", c.TopN)}
	}
	if c.IntensityCutoff < 0 || c.IntensityCutoff > 100 {
		return &core.ValidationError{Field: "cutoff", Message: fmt.Sprintf("must be within 0..100, got %g", c.IntensityCutoff)}
	}
	return nil
}

// Active reports whether any filter is configured
func (c *Config) Active() bool {
	return c.TopN > 0 || c.IntensityCutoff > 0 || len(c.IonTypes) > 0 || c.DropZero
}

// Apply applies all configured filters to a spectrum. Surviving peaks keep their
// relative order, so peak indices stay meaningful against the filtered list.
func (c *Config) Apply(spec *core.Spectrum) error {
	if err := c.Validate(); err != nil {
		return err
	}

	if c.DropZero {
		RemoveZeroIntensityPeaks(spec)
	}

	// Then by ion type
	if len(c.IonTypes) > 0 {
		spec.Peaks = keep(spec.Peaks, func(p core.Peak) bool {
			return matchesIonType(p.Annotation, c.IonTypes)
		})
	}

	if c.IntensityCutoff > 0 {
		spec.Peaks = filterByIntensity(spec, c.IntensityCutoff)
	}

	if c.TopN > 0 {
		spec.Peaks = filterTopN(spec.Peaks, c.TopN)
	}

	return nil
}

func keep(peaks []core.Peak, pred func(core.Peak) bool) []core.Peak {
	filtered := make([]core.Peak, 0, len(peaks))
	for _, p := range peaks {
		if pred(p) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// matchesIonType checks if an annotation's ion type is one of the allowed types
func matchesIonType(annotation string, ionTypes []string) bool {
	info, err := parseIonAnnotation(annotation)
	if err != nil {
		return false
	}
	for _, ionType := range ionTypes {
		if info.ionType == ionType {
			return true
		}
	}
	return false
}

// filterByIntensity removes peaks below the intensity cutoff percentage of the base peak
func filterByIntensity(spec *core.Spectrum, cutoff float64) []core.Peak {
	base := spec.BasePeak()
	if base < 0 {
		return spec.Peaks
	}

	maxIntensity := math.Max(spec.Peaks[base].Intensity, 0)
	threshold := (cutoff / 100.0) * maxIntensity

	return keep(spec.Peaks, func(p core.Peak) bool { return p.Intensity >= threshold })
}

// filterTopN keeps the N most intense peaks in their original order
func filterTopN(peaks []core.Peak, n int) []core.Peak {
	if len(peaks) <= n {
		return peaks
	}

	order := make([]int, len(peaks))
	for i := range order {
		order[i] = i
	}
	// stable: among equal intensities the earlier peak survives
	sort.SliceStable(order, func(a, b int) bool {
		return peaks[order[a]].Intensity > peaks[order[b]].Intensity
	})

	chosen := order[:n]
	sort.Ints(chosen)

	out := make([]core.Peak, 0, n)
	for _, i := range chosen {
		out = append(out, peaks[i])
	}
	return out
}

// ionAnnotationInfo stores parsed ion annotation
type ionAnnotationInfo struct {
	ionType string
	number  int
	charge  int
}

// Matches annotations like "y3", "b2^2", "y4-H2O^2/0.01"
var annotationPattern = regexp.MustCompile(`^([a-z]+)(\d+)(-H2O|-NH3)?(?:\^(\d+))?`)

// parseIonAnnotation parses the leading ion of a library peak annotation
func parseIonAnnotation(annotation string) (*ionAnnotationInfo, error) {
	matches := annotationPattern.FindStringSubmatch(annotation)
	if matches == nil {
		return nil, fmt.Errorf("invalid ion annotation format: %q", annotation)
	}

	info := &ionAnnotationInfo{
		ionType: matches[1] + matches[3],
		charge:  1,
	}

	var err error
	if info.number, err = strconv.Atoi(matches[2]); err != nil {
		return nil, fmt.Errorf("invalid ion number in annotation %s: %w", annotation, err)
	}
	if matches[4] != "" {
		if info.charge, err = strconv.Atoi(matches[4]); err != nil {
			return nil, fmt.Errorf("invalid charge in annotation %s: %w", annotation, err)
		}
	}

	return info, nil
}

// RemoveZeroIntensityPeaks removes peaks with zero or negative intensity
func RemoveZeroIntensityPeaks(spec *core.Spectrum) {
	spec.Peaks = keep(spec.Peaks, func(p core.Peak) bool { return p.Intensity > 0 })
}
