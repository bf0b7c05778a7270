// Package fragment computes theoretical fragment ion tables for peptides and annotates
// observed peaks against them.
package fragment

import (
	"fmt"
	"strings"
)

// Series is a fragment ion series.
type Series int

// The variants are a closed set; Label must cover every one of them.
const (
	A Series = iota
	AH2O
	ANH3
	B
	BH2O
	BNH3
	C
	CDot
	CM1
	CP1
	CP2
	CH2O
	CNH3
	D
	V
	W
	X
	XH2O
	XNH3
	Y
	YH2O
	YNH3
	YA
	YB
	Z
	ZH2O
	ZNH3
	ZDot
	ZP1
	ZP2
	ZP3
	Immonium
)

// AllSeries lists every series in declaration order.
var AllSeries = []Series{
	A, AH2O, ANH3, B, BH2O, BNH3, C, CDot, CM1, CP1, CP2, CH2O, CNH3, D, V, W,
	X, XH2O, XNH3, Y, YH2O, YNH3, YA, YB, Z, ZH2O, ZNH3, ZDot, ZP1, ZP2, ZP3, Immonium,
}

// Label returns the caller-facing name of the series. It panics on a value outside
// the declared set.
func (s Series) Label() string {
	switch s {
	case A:
		return "a"
	case AH2O:
		return "a-H2O"
	case ANH3:
		return "a-NH3"
	case B:
		return "b"
	case BH2O:
		return "b-H2O"
	case BNH3:
		return "b-NH3"
	case C:
		return "c"
	case CDot:
		return "c_dot"
	case CM1:
		return "c_m1"
	case CP1:
		return "c_p1"
	case CP2:
		return "c_p2"
	case CH2O:
		return "c-H2O"
	case CNH3:
		return "c-NH3"
	case D:
		return "d"
	case V:
		return "v"
	case W:
		return "w"
	case X:
		return "x"
	case XH2O:
		return "x-H2O"
	case XNH3:
		return "x-NH3"
	case Y:
		return "y"
	case YH2O:
		return "y-H2O"
	case YNH3:
		return "y-NH3"
	case YA:
		return "ya"
	case YB:
		return "yb"
	case Z:
		return "z"
	case ZH2O:
		return "z-H2O"
	case ZNH3:
		return "z-NH3"
	case ZDot:
		return "z_dot"
	case ZP1:
		return "z_p1"
	case ZP2:
		return "z_p2"
	case ZP3:
		return "z_p3"
	case Immonium:
		return "immonium"
	}
	panic(fmt.Sprintf("fragment: no label for series %d", int(s)))
}

// String implements fmt.Stringer.
func (s Series) String() string {
	return s.Label()
}

// ParseSeries returns the series with the given label.
func ParseSeries(label string) (Series, error) {
	label = strings.TrimSpace(label)
	for _, s := range AllSeries {
		if s.Label() == label {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSeries, label)
}

// ParseSeriesList parses a comma-separated list such as "b,y,y-H2O".
func ParseSeriesList(list string) ([]Series, error) {
	var out []Series
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		s, err := ParseSeries(part)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Terminus tells which end of the peptide a fragment series contains.
type Terminus int

const (
	NTerminal Terminus = iota
	CTerminal
	Internal
)

// Terminus returns the peptide end contained in fragments of the series.
func (s Series) Terminus() Terminus {
	switch s {
	case A, AH2O, ANH3, B, BH2O, BNH3, C, CDot, CM1, CP1, CP2, CH2O, CNH3, D:
		return NTerminal
	case V, W, X, XH2O, XNH3, Y, YH2O, YNH3, Z, ZH2O, ZNH3, ZDot, ZP1, ZP2, ZP3:
		return CTerminal
	default:
		return Internal
	}
}
