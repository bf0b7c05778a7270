package core

import (
	"strings"
	"testing"
)

func TestParseModString(t *testing.T) {
	db := DefaultModDatabase()

	tests := []struct {
		name    string
		mods    string
		wantPos []int
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"named with residue", "Oxidation@M3", []int{2}, false},
		{"direct mass", "57.021464@2", []int{1}, false},
		{"n-term and c-term", "TMT@N-term;Amidated@C-term", []int{-1, 5}, false},
		{"residue mismatch", "Oxidation@K3", nil, true},
		{"position out of range", "Oxidation@9", nil, true},
		{"unknown name", "Nonsense@2", nil, true},
		{"missing position", "Oxidation", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mods, err := db.ParseModString(tt.mods, "PEMTK")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseModString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(mods) != len(tt.wantPos) {
				t.Fatalf("got %d mods, want %d", len(mods), len(tt.wantPos))
			}
			for i, mod := range mods {
				if mod.Position != tt.wantPos[i] {
					t.Errorf("mod %d position = %d, want %d", i, mod.Position, tt.wantPos[i])
				}
			}
		})
	}
}

func TestLoadFromCSV(t *testing.T) {
	db := NewModDatabase()
	csv := "mod,massshift,aa\nCustom,12.5,K\n\nOther,-1.25,S\n"
	if err := db.LoadFromCSV(strings.NewReader(csv)); err != nil {
		t.Fatalf("LoadFromCSV() error = %v", err)
	}
	if m, ok := db.GetMass("Custom"); !ok || m != 12.5 {
		t.Errorf("Custom mass = %v, %v", m, ok)
	}
	if got := db.Names(); len(got) != 2 || got[0] != "Custom" {
		t.Errorf("Names() = %v", got)
	}

	if err := db.LoadFromCSV(strings.NewReader("h\nBroken,abc\n")); err == nil {
		t.Error("expected error for invalid mass")
	}
}
