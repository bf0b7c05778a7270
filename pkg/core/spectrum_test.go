package core

import (
	"errors"
	"math"
	"testing"
)

func TestSpectrumValidation(t *testing.T) {
	tests := []struct {
		name    string
		spec    *Spectrum
		wantErr bool
	}{
		{
			name: "valid spectrum",
			spec: &Spectrum{
				Sequence: "PEPTIDE",
				Charge:   2,
				Peaks: []Peak{
					{MZ: 100.0, Intensity: 1000.0},
					{MZ: 200.0, Intensity: 2000.0},
				},
			},
			wantErr: false,
		},
		{
			name: "unsorted peaks are accepted",
			spec: &Spectrum{
				Peaks: []Peak{
					{MZ: 200.0, Intensity: 2000.0},
					{MZ: 100.0, Intensity: 1000.0},
				},
			},
			wantErr: false,
		},
		{
			name:    "no peaks",
			spec:    &Spectrum{Peaks: []Peak{}},
			wantErr: true,
		},
		{
			name: "negative charge",
			spec: &Spectrum{
				Charge: -1,
				Peaks:  []Peak{{MZ: 100.0, Intensity: 1000.0}},
			},
			wantErr: true,
		},
		{
			name: "NaN m/z",
			spec: &Spectrum{
				Peaks: []Peak{{MZ: math.NaN(), Intensity: 1000.0}},
			},
			wantErr: true,
		},
		{
			name: "NaN intensity",
			spec: &Spectrum{
				Peaks: []Peak{{MZ: 100.0, Intensity: math.NaN()}},
			},
			wantErr: true,
		},
		{
			name: "negative intensity",
			spec: &Spectrum{
				Peaks: []Peak{{MZ: 100.0, Intensity: -1}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			var verr *ValidationError
			if err != nil && !errors.As(err, &verr) {
				t.Errorf("Validate() error type = %T, want *ValidationError", err)
			}
		})
	}
}

func TestPeaksFromArrays(t *testing.T) {
	peaks, err := PeaksFromArrays([]float64{100, 200}, []float64{5, 6})
	if err != nil {
		t.Fatalf("PeaksFromArrays() error = %v", err)
	}
	if len(peaks) != 2 || peaks[1].MZ != 200 || peaks[1].Intensity != 6 {
		t.Errorf("unexpected peaks: %+v", peaks)
	}

	_, err = PeaksFromArrays([]float64{100, 200}, []float64{5})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestSortPeaks(t *testing.T) {
	spec := &Spectrum{
		Peaks: []Peak{
			{MZ: 300.0, Intensity: 100.0},
			{MZ: 100.0, Intensity: 200.0},
			{MZ: 200.0, Intensity: 150.0},
		},
	}

	if spec.ArePeaksSorted() {
		t.Fatal("expected unsorted peaks")
	}
	spec.SortPeaks()

	expected := []float64{100.0, 200.0, 300.0}
	for i, peak := range spec.Peaks {
		if peak.MZ != expected[i] {
			t.Errorf("Peak %d: expected m/z %.1f, got %.1f", i, expected[i], peak.MZ)
		}
	}
}

func TestBasePeak(t *testing.T) {
	spec := &Spectrum{
		Peaks: []Peak{
			{MZ: 100.0, Intensity: 10},
			{MZ: 200.0, Intensity: math.NaN()},
			{MZ: 300.0, Intensity: 30},
		},
	}
	if got := spec.BasePeak(); got != 2 {
		t.Errorf("BasePeak() = %d, want 2", got)
	}
	if got := (&Spectrum{}).BasePeak(); got != -1 {
		t.Errorf("BasePeak() on empty spectrum = %d, want -1", got)
	}
}

func TestMZsAndIntensities(t *testing.T) {
	spec := &Spectrum{Peaks: []Peak{{MZ: 1, Intensity: 2}, {MZ: 3, Intensity: 4}}}
	mzs, ints := spec.MZs(), spec.Intensities()
	if mzs[0] != 1 || mzs[1] != 3 || ints[0] != 2 || ints[1] != 4 {
		t.Errorf("MZs() = %v, Intensities() = %v", mzs, ints)
	}
}

func TestSpectrumLabel(t *testing.T) {
	tests := []struct {
		spec *Spectrum
		want string
	}{
		{&Spectrum{Name: "entry", Sequence: "PEPTIDE", Charge: 2}, "entry"},
		{&Spectrum{Sequence: "PEPTIDE", Charge: 2}, "PEPTIDE/2"},
		{&Spectrum{Source: "peaks.txt"}, "peaks.txt"},
	}
	for _, tt := range tests {
		if got := tt.spec.Label(); got != tt.want {
			t.Errorf("Label() = %q, want %q", got, tt.want)
		}
	}
}

func TestModString(t *testing.T) {
	spec := &Spectrum{
		Modifications: []Modification{
			{Mass: 57.021464, Position: 3},
			{Mass: 15.994915, Position: 7},
		},
	}

	if got, want := spec.ModString(), "57.021464@3;15.994915@7"; got != want {
		t.Errorf("ModString() = %q, want %q", got, want)
	}
}
