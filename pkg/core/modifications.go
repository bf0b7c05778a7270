// Package core provides modification parsing and management
package core

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// ModDatabase stores modification definitions
type ModDatabase struct {
	mods map[string]float64 // name -> mass shift
}

// NewModDatabase creates an empty modification database
func NewModDatabase() *ModDatabase {
	return &ModDatabase{
		mods: make(map[string]float64),
	}
}

// LoadFromCSV loads modifications from a CSV stream (header line, then "name,massshift[,aa]")
func (db *ModDatabase) LoadFromCSV(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum == 1 {
			continue
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			return fmt.Errorf("line %d: invalid format, expected at least 2 comma-separated fields", lineNum)
		}

		name := strings.TrimSpace(parts[0])
		massStr := strings.TrimSpace(parts[1])
		mass, err := strconv.ParseFloat(massStr, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid mass value '%s': %w", lineNum, massStr, err)
		}

		db.mods[name] = mass
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading CSV: %w", err)
	}

	return nil
}

// GetMass returns the mass shift for a modification name
func (db *ModDatabase) GetMass(name string) (float64, bool) {
	mass, ok := db.mods[name]
	return mass, ok
}

// Add adds or updates a modification
func (db *ModDatabase) Add(name string, mass float64) {
	db.mods[name] = mass
}

// Names returns the known modification names in sorted order.
func (db *ModDatabase) Names() []string {
	names := make([]string, 0, len(db.mods))
	for name := range db.mods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseModString parses "Oxidation@M3;57.021464@C2;TMT@N-term" against sequence.
// Positions in the string are 1-based; the returned positions are 0-based, with -1 for the
// N-terminus and len(sequence) for the C-terminus.
func (db *ModDatabase) ParseModString(modStr string, sequence string) ([]Modification, error) {
	if strings.TrimSpace(modStr) == "" {
		return nil, nil
	}

	var mods []Modification
	for _, part := range strings.Split(modStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		nameOrMass, posStr, ok := strings.Cut(part, "@")
		if !ok {
			return nil, fmt.Errorf("invalid modification format '%s', expected 'name@position' or 'mass@position'", part)
		}
		nameOrMass = strings.TrimSpace(nameOrMass)

		// A number is a direct mass shift, anything else a database name
		mass, err := strconv.ParseFloat(nameOrMass, 64)
		if err != nil {
			var known bool
			mass, known = db.GetMass(nameOrMass)
			if !known {
				return nil, fmt.Errorf("unknown modification '%s'", nameOrMass)
			}
		}

		position, err := parsePosition(posStr, sequence)
		if err != nil {
			return nil, fmt.Errorf("invalid position '%s': %w", posStr, err)
		}

		mods = append(mods, Modification{
			Mass:     mass,
			Position: position,
			Name:     nameOrMass,
		})
	}

	return mods, nil
}

// parsePosition accepts "3", "M3", "N-term"/"-1" and "C-term".
func parsePosition(posStr string, sequence string) (int, error) {
	posStr = strings.TrimSpace(posStr)

	switch strings.ToLower(posStr) {
	case "n-term", "nterm", "-1", "0":
		return -1, nil
	case "c-term", "cterm":
		return len(sequence), nil
	}

	var residue byte
	if posStr != "" && posStr[0] >= 'A' && posStr[0] <= 'Z' {
		residue = posStr[0]
		posStr = posStr[1:]
	}

	pos, err := strconv.Atoi(posStr)
	if err != nil {
		return 0, fmt.Errorf("invalid position number: %w", err)
	}
	if pos < 1 || pos > len(sequence) {
		return 0, fmt.Errorf("position %d outside sequence of length %d", pos, len(sequence))
	}
	if residue != 0 && sequence[pos-1] != residue {
		return 0, fmt.Errorf("residue %c expected at position %d, found %c", residue, pos, sequence[pos-1])
	}

	return pos - 1, nil
}

// DefaultModDatabase returns a ModDatabase pre-loaded with common modifications
func DefaultModDatabase() *ModDatabase {
	db := NewModDatabase()

	// Common modifications from unimod
	db.Add("Acetyl", 42.010565)
	db.Add("Amidated", -0.984016)
	db.Add("Carbamidomethyl", 57.021464)
	db.Add("Carbamyl", 43.005814)
	db.Add("Deamidated", 0.984016)
	db.Add("Dehydrated", -18.010565)
	db.Add("Dimethyl", 28.0313)
	db.Add("Gln->pyro-Glu", -17.026549)
	db.Add("Glu->pyro-Glu", -18.010565)
	db.Add("GlyGly", 114.042927)
	db.Add("Methyl", 14.01565)
	db.Add("Oxidation", 15.994915)
	db.Add("Phospho", 79.966331)
	db.Add("Propionamide", 71.037114)
	db.Add("TMT", 229.162932)
	db.Add("TMT6plex", 229.162932)
	db.Add("TMTPro", 304.207146)
	db.Add("TMT_Pro", 304.207146)
	db.Add("iTRAQ4plex", 144.102063)
	db.Add("iTRAQ8plex", 304.205360)

	return db
}
