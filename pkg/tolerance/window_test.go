package tolerance

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestParseUnit(t *testing.T) {
	tests := []struct {
		in      string
		want    Unit
		wantErr bool
	}{
		{"Da", Da, false},
		{"da", Da, false},
		{" PPM ", PPM, false},
		{"mmu", MMU, false},
		{"percent", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUnit(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseUnit(%q) error = %v", tt.in, err)
			}
			if err != nil && !errors.Is(err, ErrUnknownUnit) {
				t.Errorf("expected ErrUnknownUnit, got %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseUnit(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestUnitFromCode(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		want    Unit
		wantErr bool
	}{
		{"ppm", 0, PPM, false},
		{"Da", 1, Da, false},
		{"mmu", 2, MMU, false},
		{"negative", -1, 0, true},
		{"out of range", 3, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnitFromCode(tt.code)
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnitFromCode(%d) error = %v", tt.code, err)
			}
			if err != nil && !errors.Is(err, ErrUnknownUnit) {
				t.Errorf("expected ErrUnknownUnit, got %v", err)
			}
			if got != tt.want {
				t.Errorf("UnitFromCode(%d) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestNewValidates(t *testing.T) {
	if _, err := New(Da, 0.1, -0.1); !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("expected ErrInvalidBounds for low > high, got %v", err)
	}
	if _, err := New(Unit(7), -1, 1); !errors.Is(err, ErrUnknownUnit) {
		t.Errorf("expected ErrUnknownUnit, got %v", err)
	}
	if _, err := New(PPM, math.NaN(), 1); !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("expected ErrInvalidBounds for NaN, got %v", err)
	}
	if _, err := New(PPM, -10, 20); err != nil {
		t.Errorf("asymmetric window rejected: %v", err)
	}
}

func TestContainsBoundaryInclusive(t *testing.T) {
	const query = 500.0
	tests := []struct {
		name   string
		window Window
	}{
		{"Da", Symmetric(Da, 0.02)},
		{"ppm", Symmetric(PPM, 10)},
		{"mmu", Symmetric(MMU, 5)},
		{"asymmetric ppm", Window{Unit: PPM, Low: -10, High: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := tt.window.Bounds(query)
			if !tt.window.Contains(query, hi) {
				t.Errorf("upper bound %v not included", hi)
			}
			if !tt.window.Contains(query, lo) {
				t.Errorf("lower bound %v not included", lo)
			}
			if tt.window.Contains(query, math.Nextafter(hi, math.Inf(1))) {
				t.Errorf("value just above %v included", hi)
			}
			if tt.window.Contains(query, math.Nextafter(lo, math.Inf(-1))) {
				t.Errorf("value just below %v included", lo)
			}
		})
	}
}

func TestBoundsScaling(t *testing.T) {
	approx := func(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

	lo, hi := Symmetric(Da, 0.001).Bounds(100)
	if !approx(lo, 99.999) || !approx(hi, 100.001) {
		t.Errorf("Da bounds = [%v, %v]", lo, hi)
	}

	lo, hi = Window{Unit: PPM, Low: -10, High: 20}.Bounds(1000)
	if !approx(lo, 999.99) || !approx(hi, 1000.02) {
		t.Errorf("ppm bounds = [%v, %v]", lo, hi)
	}

	lo, hi = Symmetric(MMU, 5).Bounds(1000)
	if !approx(lo, 999.995) || !approx(hi, 1000.005) {
		t.Errorf("mmu bounds = [%v, %v]", lo, hi)
	}
}

func TestContainsArgumentOrder(t *testing.T) {
	w := Window{Unit: Da, Low: 0, High: 0.5}
	if !w.Contains(100, 100.3) {
		t.Error("expected 100.3 inside [100, 100.5]")
	}
	if w.Contains(100.3, 100) {
		t.Error("expected 100 outside [100.3, 100.8]")
	}
}

func TestUnitJSON(t *testing.T) {
	var w Window
	if err := json.Unmarshal([]byte(`{"unit":"ppm","low":-5,"high":5}`), &w); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if w.Unit != PPM || w.Low != -5 || w.High != 5 {
		t.Errorf("unexpected window %+v", w)
	}
	out, err := json.Marshal(w)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"unit":"ppm","low":-5,"high":5}` {
		t.Errorf("Marshal() = %s", out)
	}
}

func TestConvertError(t *testing.T) {
	if got := ConvertError(0.001, 1000, PPM); math.Abs(got-1) > 1e-9 {
		t.Errorf("ppm = %v, want 1", got)
	}
	if got := ConvertError(0.001, 1000, MMU); math.Abs(got-1) > 1e-9 {
		t.Errorf("mmu = %v, want 1", got)
	}
	if got := ConvertError(0.001, 1000, Da); got != 0.001 {
		t.Errorf("Da = %v, want 0.001", got)
	}
}

func TestString(t *testing.T) {
	if got := (Window{Unit: PPM, Low: -10, High: 20}).String(); got != "-10/+20 ppm" {
		t.Errorf("String() = %q", got)
	}
}
