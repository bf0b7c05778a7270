package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/ChrisMcGann/PeakMatch/pkg/annotate"
	"github.com/ChrisMcGann/PeakMatch/pkg/config"
	"github.com/ChrisMcGann/PeakMatch/pkg/core"
	"github.com/ChrisMcGann/PeakMatch/pkg/match"
	"github.com/ChrisMcGann/PeakMatch/pkg/tolerance"
	"github.com/ChrisMcGann/PeakMatch/pkg/writer"
)

func TestIsUSI(t *testing.T) {
	tests := []struct {
		source string
		want   bool
	}{
		{"usi:mzspec:PXD000561:f09:scan:17555", true},
		{"mzspec:PXD000561:f09:scan:17555", true},
		{"library.msp", false},
		{"/data/usi/peaks.txt", false},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			if got := isUSI(tt.source); got != tt.want {
				t.Errorf("isUSI(%q) = %v, want %v", tt.source, got, tt.want)
			}
		})
	}
}

func TestToleranceWindow(t *testing.T) {
	cfg = config.Default()
	cfg.Tolerance = config.ToleranceConfig{Unit: "Da", Low: -0.05, High: 0.05}

	tests := []struct {
		name string
		args []string
		want tolerance.Window
	}{
		{"config window", nil, tolerance.Window{Unit: tolerance.Da, Low: -0.05, High: 0.05}},
		{"flags", []string{"--tol-unit", "mmu", "--tol-low=-5", "--tol-high", "20"}, tolerance.Window{Unit: tolerance.MMU, Low: -5, High: 20}},
		{"unit only keeps bounds", []string{"--tol-unit", "mmu"}, tolerance.Window{Unit: tolerance.MMU, Low: -0.05, High: 0.05}},
		{"high only keeps unit and low", []string{"--tol-high", "0.03"}, tolerance.Window{Unit: tolerance.Da, Low: -0.05, High: 0.03}},
		{"low only keeps unit and high", []string{"--tol-low=-0.01"}, tolerance.Window{Unit: tolerance.Da, Low: -0.01, High: 0.05}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tolUnit = tolerance.PPM
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			addToleranceFlags(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatal(err)
			}

			got, err := toleranceWindow(fs)
			if err != nil {
				t.Fatalf("toleranceWindow() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("toleranceWindow() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestToleranceWindowInvalid(t *testing.T) {
	cfg = config.Default()
	tests := []struct {
		name string
		args []string
	}{
		{"inverted bounds", []string{"--tol-low", "5", "--tol-high=-5"}},
		{"low above configured high", []string{"--tol-low", "20"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tolUnit = tolerance.PPM
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			addToleranceFlags(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatal(err)
			}
			if _, err := toleranceWindow(fs); err == nil {
				t.Error("expected error for inverted bounds")
			}
		})
	}
}

func TestLoadSpectrumPeakList(t *testing.T) {
	cfg = config.Default()
	path := filepath.Join(t.TempDir(), "peaks.txt")
	if err := os.WriteFile(path, []byte("m/z\tintensity\n100.0\t10\n200.0\t20\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	spec, err := loadSpectrum(context.Background(), path, "auto", "")
	if err != nil {
		t.Fatalf("loadSpectrum() error = %v", err)
	}
	if len(spec.Peaks) != 2 || spec.Peaks[1].MZ != 200.0 {
		t.Errorf("peaks = %+v", spec.Peaks)
	}

	if _, err := loadSpectrum(context.Background(), path, "mgf", ""); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestLoadSpectrumValidation(t *testing.T) {
	cfg = config.Default()
	dir := t.TempDir()
	tests := []struct {
		name      string
		content   string
		wantPeaks int
		wantErr   bool
	}{
		{"no peaks", "# empty\n", 0, true},
		{"header only", "mz intensity\n", 0, true},
		{"negative intensity is a warning", "100.0 -5\n200.0 20\n", 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".txt")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			spec, err := loadSpectrum(context.Background(), path, "peaks", "")
			if (err != nil) != tt.wantErr {
				t.Fatalf("loadSpectrum() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var vErr *core.ValidationError
				if !errors.As(err, &vErr) {
					t.Errorf("error type = %T, want *core.ValidationError", err)
				}
				return
			}
			if len(spec.Peaks) != tt.wantPeaks {
				t.Errorf("peaks = %d, want %d", len(spec.Peaks), tt.wantPeaks)
			}
		})
	}
}

func TestNewExporter(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		file    string
		wantErr bool
	}{
		{"out.db", false},
		{"out.SQLITE", false},
		{"out.xlsx", false},
		{"out.csv", true},
		{"out", true},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			exp, err := newExporter(filepath.Join(dir, tt.file))
			if (err != nil) != tt.wantErr {
				t.Fatalf("newExporter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if exp != nil {
				if err := exp.Close(); err != nil {
					t.Errorf("Close() error = %v", err)
				}
			}
		})
	}
}

func TestPrintMatches(t *testing.T) {
	cfg = config.Default()
	path := filepath.Join(t.TempDir(), "peaks.txt")
	if err := os.WriteFile(path, []byte("100.0 10\n200.0 20\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	spec, err := loadSpectrum(context.Background(), path, "peaks", "")
	if err != nil {
		t.Fatal(err)
	}

	run := writer.NewRun(writer.KindMatch, tolerance.Symmetric(tolerance.PPM, 10))
	run.Strategy = string(match.StrategySinglePass)
	run.Query = spec
	run.Reference = spec

	result, err := match.Match(spec.Peaks, spec.Peaks, run.Tolerance)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	printMatches(&buf, run, result)
	out := buf.String()
	if !strings.Contains(out, "error (ppm)") || !strings.Contains(out, "Matched: 2 pairs") {
		t.Errorf("output = %s", out)
	}
}

func TestPrintAnnotations(t *testing.T) {
	window := tolerance.Window{Unit: tolerance.MMU, Low: -10, High: 10}
	spec := &core.Spectrum{Name: "AK/1", Sequence: "AK", Charge: 1, Peaks: []core.Peak{
		{MZ: 72.04439, Intensity: 100},
		{MZ: 500, Intensity: 1},
	}}
	records, err := annotate.Peaks(spec.Sequence, spec.Peaks, window)
	if err != nil {
		t.Fatal(err)
	}

	run := writer.NewRun(writer.KindAnnotate, window)
	run.Sequence = spec.Sequence
	run.Query = spec

	var buf bytes.Buffer
	printAnnotations(&buf, run, records)
	out := buf.String()
	if !strings.Contains(out, "b1") || !strings.Contains(out, "error (mmu)") {
		t.Errorf("output = %s", out)
	}
	if !strings.Contains(out, "on 1 of 2 peaks") {
		t.Errorf("output = %s", out)
	}
}

func TestPrintPeaks(t *testing.T) {
	spec := &core.Spectrum{Name: "PEPTIDEK/2", PrecursorMZ: 464.72, Charge: 2, Peaks: []core.Peak{{MZ: 147.1128, Intensity: 30}}}
	var buf bytes.Buffer
	printPeaks(&buf, spec)
	want := "# PEPTIDEK/2\n# precursor m/z 464.72000, charge 2\n147.11280\t30\n"
	if got := buf.String(); got != want {
		t.Errorf("printPeaks() = %q, want %q", got, want)
	}
}
