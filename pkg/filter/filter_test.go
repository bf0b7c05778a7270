package filter

import (
	"testing"

	"github.com/ChrisMcGann/PeakMatch/pkg/core"
)

func peaks(ints ...float64) []core.Peak {
	out := make([]core.Peak, len(ints))
	for i, v := range ints {
		out[i] = core.Peak{MZ: float64(100 + i), Intensity: v}
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		in      []float64
		wantMZs []float64
	}{
		{"no filters", Config{}, []float64{1, 2, 3}, []float64{100, 101, 102}},
		{"top 2 keeps original order", Config{TopN: 2}, []float64{50, 10, 80, 30}, []float64{100, 102}},
		{"top n larger than list", Config{TopN: 10}, []float64{5, 1}, []float64{100, 101}},
		{"top n ties keep earlier", Config{TopN: 1}, []float64{7, 7}, []float64{100}},
		{"cutoff 50 percent", Config{IntensityCutoff: 50}, []float64{100, 49, 50, 10}, []float64{100, 102}},
		{"cutoff then top n", Config{IntensityCutoff: 20, TopN: 1}, []float64{10, 100, 30}, []float64{101}},
		{"drop zero", Config{DropZero: true}, []float64{0, 4, -1, 2}, []float64{101, 103}},
		{"drop zero then top n", Config{DropZero: true, TopN: 1}, []float64{0, 4, 9}, []float64{102}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := &core.Spectrum{Peaks: peaks(tt.in...)}
			if err := tt.config.Apply(spec); err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if len(spec.Peaks) != len(tt.wantMZs) {
				t.Fatalf("got %d peaks, want %d", len(spec.Peaks), len(tt.wantMZs))
			}
			for i, mz := range tt.wantMZs {
				if spec.Peaks[i].MZ != mz {
					t.Errorf("peak %d m/z = %v, want %v", i, spec.Peaks[i].MZ, mz)
				}
			}
		})
	}
}

func TestApplyIonTypes(t *testing.T) {
	spec := &core.Spectrum{Peaks: []core.Peak{
		{MZ: 100, Intensity: 1, Annotation: "y3/0.01"},
		{MZ: 110, Intensity: 1, Annotation: "b2^2/-0.02"},
		{MZ: 120, Intensity: 1, Annotation: "y4-H2O/0.00"},
		{MZ: 130, Intensity: 1, Annotation: "?"},
		{MZ: 140, Intensity: 1},
	}}
	config := Config{IonTypes: []string{"y", "b"}}
	if err := config.Apply(spec); err != nil {
		t.Fatal(err)
	}
	if len(spec.Peaks) != 2 || spec.Peaks[0].MZ != 100 || spec.Peaks[1].MZ != 110 {
		t.Errorf("filtered peaks = %+v", spec.Peaks)
	}
}

func TestValidate(t *testing.T) {
	for _, c := range []Config{{TopN: -1}, {IntensityCutoff: -5}, {IntensityCutoff: 101}} {
		if err := c.Validate(); err == nil {
			t.Errorf("Validate(%+v) expected error", c)
		}
		if err := c.Apply(&core.Spectrum{}); err == nil {
			t.Errorf("Apply(%+v) expected error", c)
		}
	}
	if (&Config{}).Active() {
		t.Error("empty config should be inactive")
	}
	if !(&Config{DropZero: true}).Active() {
		t.Error("DropZero config should be active")
	}
}

func TestParseIonAnnotation(t *testing.T) {
	tests := []struct {
		in       string
		wantType string
		wantNum  int
		wantZ    int
		wantErr  bool
	}{
		{"y3", "y", 3, 1, false},
		{"b2^2/0.01", "b", 2, 2, false},
		{"y10-NH3^3", "y-NH3", 10, 3, false},
		{"?", "", 0, 0, true},
		{"", "", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			info, err := parseIonAnnotation(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseIonAnnotation(%q) error = %v", tt.in, err)
			}
			if err != nil {
				return
			}
			if info.ionType != tt.wantType || info.number != tt.wantNum || info.charge != tt.wantZ {
				t.Errorf("parseIonAnnotation(%q) = %+v", tt.in, info)
			}
		})
	}
}

func TestRemoveZeroIntensityPeaks(t *testing.T) {
	spec := &core.Spectrum{Peaks: peaks(0, 5, -1, 2)}
	RemoveZeroIntensityPeaks(spec)
	if len(spec.Peaks) != 2 || spec.Peaks[0].MZ != 101 || spec.Peaks[1].MZ != 103 {
		t.Errorf("peaks = %+v", spec.Peaks)
	}
}
