package core

import (
	"errors"
	"math"
	"testing"
)

func TestPrecursorMZ(t *testing.T) {
	tests := []struct {
		name          string
		sequence      string
		charge        int
		modifications []Modification
		wantMZ        float64
		tolerance     float64
	}{
		{
			name:      "simple peptide charge 1",
			sequence:  "AAA",
			charge:    1,
			wantMZ:    232.129, // Approximate
			tolerance: 0.1,
		},
		{
			name:      "simple peptide charge 2",
			sequence:  "AAA",
			charge:    2,
			wantMZ:    116.569, // Approximate
			tolerance: 0.1,
		},
		{
			name:     "peptide with modification",
			sequence: "PEPTIDE",
			charge:   2,
			modifications: []Modification{
				{Mass: 57.021464, Position: 0},
			},
			wantMZ:    429.2, // Approximate
			tolerance: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PrecursorMZ(tt.sequence, tt.charge, tt.modifications)
			if err != nil {
				t.Fatalf("PrecursorMZ() error = %v", err)
			}
			if math.Abs(got-tt.wantMZ) > tt.tolerance {
				t.Errorf("PrecursorMZ() = %.3f, want %.3f (within %.3f)", got, tt.wantMZ, tt.tolerance)
			}
		})
	}
}

func TestPrecursorMZErrors(t *testing.T) {
	if _, err := PrecursorMZ("AAA", 0, nil); err == nil {
		t.Error("expected error for zero charge")
	}
	if _, err := PrecursorMZ("", 1, nil); !errors.Is(err, ErrEmptySequence) {
		t.Errorf("expected ErrEmptySequence, got %v", err)
	}
	if _, err := PrecursorMZ("AXA", 1, nil); err == nil {
		t.Error("expected error for unknown residue")
	}
}

func TestNeutralMass(t *testing.T) {
	tests := []struct {
		name          string
		sequence      string
		modifications []Modification
		wantMass      float64
		tolerance     float64
	}{
		{
			name:      "simple tripeptide",
			sequence:  "AAA",
			wantMass:  231.121, // Approximate neutral mass
			tolerance: 0.1,
		},
		{
			name:     "with modification",
			sequence: "AAA",
			modifications: []Modification{
				{Mass: 57.021464, Position: 0},
			},
			wantMass:  288.143, // Approximate
			tolerance: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NeutralMass(tt.sequence, tt.modifications)
			if err != nil {
				t.Fatalf("NeutralMass() error = %v", err)
			}
			if math.Abs(got-tt.wantMass) > tt.tolerance {
				t.Errorf("NeutralMass() = %.3f, want %.3f (within %.3f)", got, tt.wantMass, tt.tolerance)
			}
		})
	}
}

func TestResidueMass(t *testing.T) {
	m, ok := ResidueMass('G')
	if !ok || math.Abs(m-57.02146) > 1e-4 {
		t.Errorf("ResidueMass('G') = %.5f, %v", m, ok)
	}
	if _, ok := ResidueMass('B'); ok {
		t.Error("ResidueMass('B') should be unknown")
	}
}

func TestRoundFloat(t *testing.T) {
	tests := []struct {
		name      string
		val       float64
		precision int
		want      float64
	}{
		{"round to 2 decimals", 3.14159, 2, 3.14},
		{"round to 4 decimals", 3.14159, 4, 3.1416},
		{"round to 0 decimals", 3.6, 0, 4.0},
		{"round negative", -3.14159, 2, -3.14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundFloat(tt.val, tt.precision)
			if got != tt.want {
				t.Errorf("RoundFloat() = %v, want %v", got, tt.want)
			}
		})
	}
}
