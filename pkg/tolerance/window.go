// Package tolerance provides the m/z tolerance window used to decide whether two peaks
// are the same. A window is configured in Da, ppm or mmu with independent low and high
// bounds, so asymmetric windows such as -10/+20 ppm are supported.
package tolerance

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrUnknownUnit is returned when a unit name cannot be parsed.
	ErrUnknownUnit = errors.New("unknown tolerance unit")

	// ErrInvalidBounds is returned when a window has low > high or non-finite bounds.
	ErrInvalidBounds = errors.New("invalid tolerance bounds")
)

// Unit is the kind of tolerance window.
type Unit int

const (
	Da Unit = iota
	PPM
	MMU
)

// String returns the canonical unit name.
func (u Unit) String() string {
	switch u {
	case Da:
		return "Da"
	case PPM:
		return "ppm"
	case MMU:
		return "mmu"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// ParseUnit parses a unit name, case-insensitively.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "da", "dalton", "th":
		return Da, nil
	case "ppm":
		return PPM, nil
	case "mmu":
		return MMU, nil
	default:
		return 0, fmt.Errorf("%w: %q (want Da, ppm or mmu)", ErrUnknownUnit, s)
	}
}

// Unit codes used by numeric callers such as the browser build.
const (
	CodePPM = 0
	CodeDa  = 1
	CodeMMU = 2
)

// UnitFromCode maps a numeric unit code (0 ppm, 1 Da, 2 mmu) to a Unit.
func UnitFromCode(code int) (Unit, error) {
	switch code {
	case CodePPM:
		return PPM, nil
	case CodeDa:
		return Da, nil
	case CodeMMU:
		return MMU, nil
	default:
		return 0, fmt.Errorf("%w: code %d (want 0 ppm, 1 Da or 2 mmu)", ErrUnknownUnit, code)
	}
}

// Set implements pflag.Value.
func (u *Unit) Set(s string) error {
	parsed, err := ParseUnit(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// Type implements pflag.Value.
func (u *Unit) Type() string {
	return "unit"
}

// MarshalText encodes the unit name for JSON and YAML.
func (u Unit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText decodes a unit name from JSON and YAML.
func (u *Unit) UnmarshalText(text []byte) error {
	return u.Set(string(text))
}

// Window is an m/z acceptance band around a center value. Low and High are signed
// offsets in Unit, so a symmetric 10 ppm window is {PPM, -10, 10}.
type Window struct {
	Unit Unit    `json:"unit" yaml:"unit"`
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// New returns a validated window.
func New(unit Unit, low, high float64) (Window, error) {
	w := Window{Unit: unit, Low: low, High: high}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Symmetric returns a window of +/- tol in unit.
func Symmetric(unit Unit, tol float64) Window {
	tol = math.Abs(tol)
	return Window{Unit: unit, Low: -tol, High: tol}
}

// Validate checks the unit and the ordering of the bounds.
func (w Window) Validate() error {
	if w.Unit != Da && w.Unit != PPM && w.Unit != MMU {
		return fmt.Errorf("%w: %v", ErrUnknownUnit, w.Unit)
	}
	if math.IsNaN(w.Low) || math.IsNaN(w.High) || math.IsInf(w.Low, 0) || math.IsInf(w.High, 0) {
		return fmt.Errorf("%w: bounds must be finite", ErrInvalidBounds)
	}
	if w.Low > w.High {
		return fmt.Errorf("%w: low %g > high %g", ErrInvalidBounds, w.Low, w.High)
	}
	return nil
}

// scale converts one Unit step to Da at center.
func (w Window) scale(center float64) float64 {
	switch w.Unit {
	case PPM:
		return center / 1e6
	case MMU:
		return 1e-3
	default:
		return 1
	}
}

// Bounds returns the inclusive [lo, hi] m/z range accepted around center.
func (w Window) Bounds(center float64) (float64, float64) {
	s := w.scale(center)
	return center + w.Low*s, center + w.High*s
}

// Contains reports whether value lies inside the window around center. Both bounds are
// inclusive. The window is computed from center, so the argument order matters for ppm.
func (w Window) Contains(center, value float64) bool {
	lo, hi := w.Bounds(center)
	return value >= lo && value <= hi
}

// String renders the window, e.g. "-10/+20 ppm".
func (w Window) String() string {
	return fmt.Sprintf("%g/%+g %s", w.Low, w.High, w.Unit)
}

// ConvertError expresses an m/z error given in Da in the requested unit, relative to
// referenceMZ for ppm.
func ConvertError(errDa, referenceMZ float64, unit Unit) float64 {
	switch unit {
	case PPM:
		return errDa / referenceMZ * 1e6
	case MMU:
		return errDa * 1e3
	default:
		return errDa
	}
}
