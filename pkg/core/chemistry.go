// Package core provides chemistry calculations for peptide and fragment masses
package core

import (
	"fmt"
	"math"
)

// Atomic masses (monoisotopic)
const (
	MassH = 1.0078250321
	MassC = 12.0000000000
	MassN = 14.0030740052
	MassO = 15.9949146221
	MassS = 31.9720706900
	MassP = 30.9737615100

	// Proton mass for charge calculations
	ProtonMass = 1.00727646688
)

// Neutral group masses used by fragment ion rules
const (
	MassH2O = 2*MassH + MassO
	MassNH3 = MassN + 3*MassH
	MassCO  = MassC + MassO
)

// AminoAcidComposition stores elemental composition
type AminoAcidComposition struct {
	C, H, N, O, S int
}

// Mass returns the monoisotopic mass of the composition.
func (c AminoAcidComposition) Mass() float64 {
	return float64(c.C)*MassC +
		float64(c.H)*MassH +
		float64(c.N)*MassN +
		float64(c.O)*MassO +
		float64(c.S)*MassS
}

// AminoAcidMasses maps amino acid one-letter codes to residue elemental composition
var AminoAcidMasses = map[rune]AminoAcidComposition{
	'A': {C: 3, H: 5, N: 1, O: 1, S: 0},
	'R': {C: 6, H: 12, N: 4, O: 1, S: 0},
	'N': {C: 4, H: 6, N: 2, O: 2, S: 0},
	'D': {C: 4, H: 5, N: 1, O: 3, S: 0},
	'C': {C: 3, H: 5, N: 1, O: 1, S: 1},
	'E': {C: 5, H: 7, N: 1, O: 3, S: 0},
	'Q': {C: 5, H: 8, N: 2, O: 2, S: 0},
	'G': {C: 2, H: 3, N: 1, O: 1, S: 0},
	'H': {C: 6, H: 7, N: 3, O: 1, S: 0},
	'I': {C: 6, H: 11, N: 1, O: 1, S: 0},
	'L': {C: 6, H: 11, N: 1, O: 1, S: 0},
	'K': {C: 6, H: 12, N: 2, O: 1, S: 0},
	'M': {C: 5, H: 9, N: 1, O: 1, S: 1},
	'F': {C: 9, H: 9, N: 1, O: 1, S: 0},
	'P': {C: 5, H: 7, N: 1, O: 1, S: 0},
	'S': {C: 3, H: 5, N: 1, O: 2, S: 0},
	'T': {C: 4, H: 7, N: 1, O: 2, S: 0},
	'W': {C: 11, H: 10, N: 2, O: 1, S: 0},
	'Y': {C: 9, H: 9, N: 1, O: 2, S: 0},
	'V': {C: 5, H: 9, N: 1, O: 1, S: 0},
}

// ResidueMass returns the monoisotopic residue mass of an amino acid.
func ResidueMass(aa rune) (float64, bool) {
	comp, ok := AminoAcidMasses[aa]
	if !ok {
		return 0, false
	}
	return comp.Mass(), true
}

// NeutralMass computes the neutral monoisotopic mass of a peptide including modifications.
// Unknown residues are an error.
func NeutralMass(sequence string, modifications []Modification) (float64, error) {
	if sequence == "" {
		return 0, ErrEmptySequence
	}

	mass := MassH2O
	for i, aa := range sequence {
		m, ok := ResidueMass(aa)
		if !ok {
			return 0, fmt.Errorf("unknown residue %q at position %d", aa, i+1)
		}
		mass += m
	}

	for _, mod := range modifications {
		mass += mod.Mass
	}

	return mass, nil
}

// PrecursorMZ returns the m/z of a peptide at the given charge state.
func PrecursorMZ(sequence string, charge int, modifications []Modification) (float64, error) {
	if charge <= 0 {
		return 0, fmt.Errorf("charge must be positive, got %d", charge)
	}
	mass, err := NeutralMass(sequence, modifications)
	if err != nil {
		return 0, err
	}
	return MassToMZ(mass, charge), nil
}

// MassToMZ converts a neutral mass to m/z: (mass + charge * proton) / charge
func MassToMZ(mass float64, charge int) float64 {
	return (mass + float64(charge)*ProtonMass) / float64(charge)
}

// RoundFloat rounds a float to n decimal places
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
