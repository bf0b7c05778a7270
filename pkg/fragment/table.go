package fragment

import (
	"errors"
	"fmt"
	"math"

	"github.com/ChrisMcGann/PeakMatch/pkg/core"
)

var (
	// ErrInvalidSequence is returned for empty sequences or unknown residues.
	ErrInvalidSequence = errors.New("invalid peptide sequence")

	// ErrUnknownSeries is returned when a series label is not recognised.
	ErrUnknownSeries = errors.New("unknown fragment series")

	// ErrUnsupportedSeries is returned for series without a mass rule (d, v, w, ya, yb).
	ErrUnsupportedSeries = errors.New("unsupported fragment series")

	// ErrInvalidCharge is returned for charges outside 1..127.
	ErrInvalidCharge = errors.New("invalid fragment charge")
)

// Fragment is one theoretical ion.
type Fragment struct {
	Series   Series
	Charge   int
	Index    int     // row in the series table, 0-based from the N-terminus
	Position int     // residue position, 1-based
	Number   int     // ion number as written in annotations (the 3 of y3)
	MZ       float64 // theoretical m/z
}

// Name renders the fragment as "y3" or "b2^2".
func (f Fragment) Name() string {
	if f.Series == Immonium {
		return fmt.Sprintf("immonium%d", f.Position)
	}
	name := fmt.Sprintf("%s%d", f.Series.Label(), f.Number)
	if f.Charge > 1 {
		name = fmt.Sprintf("%s^%d", name, f.Charge)
	}
	return name
}

// Table is the theoretical fragment table of a peptide.
type Table struct {
	Sequence  string
	Fragments []Fragment // ordered by requested series, then charge, then row
}

// Neutral mass shifts applied to the b (N-terminal) or y (C-terminal) backbone mass.
var massShift = map[Series]float64{
	A:    -core.MassCO,
	AH2O: -core.MassCO - core.MassH2O,
	ANH3: -core.MassCO - core.MassNH3,
	B:    0,
	BH2O: -core.MassH2O,
	BNH3: -core.MassNH3,
	C:    core.MassNH3,
	CDot: core.MassNH3 + core.MassH,
	CM1:  core.MassNH3 - core.MassH,
	CP1:  core.MassNH3 + core.MassH,
	CP2:  core.MassNH3 + 2*core.MassH,
	CH2O: core.MassNH3 - core.MassH2O,
	CNH3: 0,
	X:    core.MassCO - 2*core.MassH,
	XH2O: core.MassCO - 2*core.MassH - core.MassH2O,
	XNH3: core.MassCO - 2*core.MassH - core.MassNH3,
	Y:    0,
	YH2O: -core.MassH2O,
	YNH3: -core.MassNH3,
	Z:    -core.MassNH3,
	ZH2O: -core.MassNH3 - core.MassH2O,
	ZNH3: -2 * core.MassNH3,
	ZDot: -core.MassNH3 + core.MassH,
	ZP1:  -core.MassNH3 + core.MassH,
	ZP2:  -core.MassNH3 + 2*core.MassH,
	ZP3:  -core.MassNH3 + 3*core.MassH,
	// immonium: residue - CO
	Immonium: -core.MassCO,
}

// ComputeTable builds the fragment table of sequence for the given series and charges.
// mods use core.Modification positions (0-based, -1 N-term, len(sequence) C-term).
func ComputeTable(sequence string, series []Series, charges []int, mods []core.Modification) (*Table, error) {
	if sequence == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSequence, core.ErrEmptySequence)
	}
	for _, z := range charges {
		if z < 1 || z > math.MaxInt8 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidCharge, z)
		}
	}

	residues, err := residueMasses(sequence, mods)
	if err != nil {
		return nil, err
	}
	n := len(residues)

	// prefix[k] is the neutral mass of residues 1..k, suffix[k] of the last k residues,
	// both including terminal modifications.
	prefix := make([]float64, n+1)
	suffix := make([]float64, n+1)
	prefix[0], suffix[0] = terminalMods(mods, n)
	for k := 1; k <= n; k++ {
		prefix[k] = prefix[k-1] + residues[k-1]
		suffix[k] = suffix[k-1] + residues[n-k]
	}

	table := &Table{Sequence: sequence}
	for _, s := range series {
		shift, ok := massShift[s]
		if !ok {
			if s < A || s > Immonium {
				return nil, fmt.Errorf("%w: %d", ErrUnknownSeries, int(s))
			}
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedSeries, s.Label())
		}

		for _, z := range charges {
			switch s.Terminus() {
			case NTerminal:
				for k := 0; k < n-1; k++ {
					mass := prefix[k+1] + shift
					table.Fragments = append(table.Fragments, Fragment{
						Series: s, Charge: z, Index: k, Position: k + 1, Number: k + 1,
						MZ: core.MassToMZ(mass, z),
					})
				}
			case CTerminal:
				for k := 0; k < n-1; k++ {
					number := n - k - 1
					mass := suffix[number] + core.MassH2O + shift
					table.Fragments = append(table.Fragments, Fragment{
						Series: s, Charge: z, Index: k, Position: k + 1, Number: number,
						MZ: core.MassToMZ(mass, z),
					})
				}
			default:
				for k := 0; k < n; k++ {
					table.Fragments = append(table.Fragments, Fragment{
						Series: s, Charge: z, Index: k, Position: k + 1, Number: k + 1,
						MZ: core.MassToMZ(residues[k]+shift, z),
					})
				}
			}
		}
	}

	return table, nil
}

// residueMasses returns per-residue masses with side-chain modifications applied.
func residueMasses(sequence string, mods []core.Modification) ([]float64, error) {
	var masses []float64
	for i, aa := range sequence {
		m, ok := core.ResidueMass(aa)
		if !ok {
			return nil, fmt.Errorf("%w: unknown residue %q at position %d", ErrInvalidSequence, aa, i+1)
		}
		masses = append(masses, m)
	}

	for _, mod := range mods {
		if mod.Position >= 0 && mod.Position < len(masses) {
			masses[mod.Position] += mod.Mass
		}
	}
	return masses, nil
}

// terminalMods sums N-terminal and C-terminal modification masses.
func terminalMods(mods []core.Modification, n int) (nterm, cterm float64) {
	for _, mod := range mods {
		switch {
		case mod.Position < 0:
			nterm += mod.Mass
		case mod.Position >= n:
			cterm += mod.Mass
		}
	}
	return nterm, cterm
}
