package reader

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/PeakMatch/pkg/core"
)

// dialect captures the header differences between MSP and SPTXT entries
type dialect struct {
	format        Format
	numPeaksKey   string
	inlineMods    bool // SPTXT names carry n[305]PEPC[160]TIDE style masses
	commentPrefix string
}

var (
	mspDialect   = dialect{format: FormatMSP, numPeaksKey: "Num peaks"}
	sptxtDialect = dialect{format: FormatSPTXT, numPeaksKey: "NumPeaks", inlineMods: true, commentPrefix: "###"}
)

// LibraryReader provides streaming access to MSP and SPTXT spectral libraries
type LibraryReader struct {
	scanner     *bufio.Scanner
	dialect     dialect
	modDB       *core.ModDatabase
	source      string
	lineNum     int
	currentSpec *core.Spectrum
	err         error
}

// NewMSPReader creates a reader for MSP (NIST/Prosit) libraries
func NewMSPReader(r io.Reader, modDB *core.ModDatabase) *LibraryReader {
	return newLibraryReader(r, mspDialect, modDB)
}

// NewSPTXTReader creates a reader for SPTXT (SpectraST) libraries
func NewSPTXTReader(r io.Reader, modDB *core.ModDatabase) *LibraryReader {
	return newLibraryReader(r, sptxtDialect, modDB)
}

func newLibraryReader(r io.Reader, d dialect, modDB *core.ModDatabase) *LibraryReader {
	if modDB == nil {
		modDB = core.DefaultModDatabase()
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return &LibraryReader{
		scanner: scanner,
		dialect: d,
		modDB:   modDB,
	}
}

// Next advances to the next spectrum. Returns false when no more spectra or error.
func (r *LibraryReader) Next() bool {
	r.currentSpec = nil

	spec, err := r.readSpectrum()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return false
	}

	// Entries without a precursor get the one computed from the peptide
	if spec.PrecursorMZ == 0 && spec.Sequence != "" && spec.Charge > 0 {
		if mz, err := core.PrecursorMZ(spec.Sequence, spec.Charge, spec.Modifications); err == nil {
			spec.PrecursorMZ = mz
		}
	}

	r.currentSpec = spec
	return true
}

// Spectrum returns the current spectrum
func (r *LibraryReader) Spectrum() *core.Spectrum {
	return r.currentSpec
}

// Err returns any error encountered during reading
func (r *LibraryReader) Err() error {
	return r.err
}

func (r *LibraryReader) setSource(source string) { r.source = source }

// readSpectrum reads a single entry, from its Name line to its last peak
func (r *LibraryReader) readSpectrum() (*core.Spectrum, error) {
	spec := &core.Spectrum{
		Source:       r.source,
		SourceFormat: r.dialect.format.String(),
		Peaks:        []core.Peak{},
	}

	numPeaks := -1
	started := false

	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimSpace(r.scanner.Text())

		if line == "" {
			continue
		}
		if r.dialect.commentPrefix != "" && strings.HasPrefix(line, r.dialect.commentPrefix) {
			continue
		}

		if numPeaks >= 0 {
			peak, err := parsePeakLine(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
			}
			spec.Peaks = append(spec.Peaks, peak)
			if len(spec.Peaks) >= numPeaks {
				return spec, nil
			}
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: expected header field, got %q", r.lineNum, line)
		}
		value = strings.TrimSpace(value)

		switch key {
		case "Name":
			started = true
			if err := r.parseName(spec, value); err != nil {
				return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
			}
		case "PrecursorMZ":
			if mz, err := strconv.ParseFloat(value, 64); err == nil {
				spec.PrecursorMZ = mz
			}
		case "Comment":
			r.parseComment(spec, value)
		case r.dialect.numPeaksKey:
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("line %d: invalid num peaks %q", r.lineNum, value)
			}
			numPeaks = n
			if n == 0 {
				return spec, nil
			}
		default:
			// MW, LibID, Status and the like are not needed
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	// A truncated last entry still yields what was read
	if started {
		return spec, nil
	}

	return nil, io.EOF
}

// parseName keeps the full entry name and extracts sequence and charge from "SEQUENCE/CHARGE"
func (r *LibraryReader) parseName(spec *core.Spectrum, name string) error {
	spec.Name = name

	rawSeq, chargeStr, ok := strings.Cut(name, "/")
	if !ok {
		return nil
	}
	// trailing "_xx" suffixes from some MSP exporters
	chargeStr, _, _ = strings.Cut(chargeStr, "_")

	charge, err := strconv.Atoi(chargeStr)
	if err != nil {
		return fmt.Errorf("invalid charge in name '%s': %w", name, err)
	}
	spec.Charge = charge

	if !r.dialect.inlineMods {
		spec.Sequence = rawSeq
		return nil
	}

	sequence, mods, err := parseInlineModifications(rawSeq)
	if err != nil {
		return fmt.Errorf("failed to parse modifications from sequence: %w", err)
	}
	spec.Sequence = sequence
	spec.Modifications = mods
	return nil
}

// Matches a residue (or n/c terminus) followed by a bracketed mass
var inlineModPattern = regexp.MustCompile(`([a-zA-Z]?)\[(\d+(?:\.\d+)?)\]`)

// parseInlineModifications parses sequences like n[305]PEPC[160]TIDE. SPTXT brackets hold
// the modified residue mass, so the unmodified residue mass is subtracted.
func parseInlineModifications(rawSeq string) (string, []core.Modification, error) {
	var sequence strings.Builder
	var mods []core.Modification

	lastIdx := 0
	for _, match := range inlineModPattern.FindAllStringSubmatchIndex(rawSeq, -1) {
		sequence.WriteString(rawSeq[lastIdx:match[0]])

		aa := rawSeq[match[2]:match[3]]
		massStr := rawSeq[match[4]:match[5]]
		mass, err := strconv.ParseFloat(massStr, 64)
		if err != nil {
			return "", nil, fmt.Errorf("invalid modification mass '%s': %w", massStr, err)
		}

		switch aa {
		case "n", "":
			// n[mass] is the modified N-terminal hydrogen
			mods = append(mods, core.Modification{Mass: mass - core.MassH, Position: -1, Name: massStr})
		case "c":
			mods = append(mods, core.Modification{Mass: mass - core.MassH2O + core.MassH, Position: sequence.Len(), Name: massStr})
		default:
			pos := sequence.Len()
			sequence.WriteString(aa)
			residue, ok := core.ResidueMass(rune(aa[0]))
			if !ok {
				return "", nil, fmt.Errorf("unknown residue %q before modification", aa)
			}
			mods = append(mods, core.Modification{Mass: mass - residue, Position: pos, Name: massStr})
		}

		lastIdx = match[1]
	}
	sequence.WriteString(rawSeq[lastIdx:])

	return sequence.String(), mods, nil
}

// parseComment extracts metadata from the Comment field (key=value key=value ...)
func (r *LibraryReader) parseComment(spec *core.Spectrum, comment string) {
	hasMods := len(spec.Modifications) > 0

	for _, field := range strings.Fields(comment) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}

		switch key {
		case "Parent":
			if spec.PrecursorMZ == 0 {
				if mz, err := strconv.ParseFloat(value, 64); err == nil {
					spec.PrecursorMZ = mz
				}
			}
		case "iRT", "RetentionTime":
			// may be a comma-separated list, take the first value
			first, _, _ := strings.Cut(value, ",")
			if rt, err := strconv.ParseFloat(first, 64); err == nil {
				spec.RetentionTime = &rt
			}
		case "Mods":
			mods := r.parseMods(value)
			if !hasMods {
				spec.Modifications = mods
				continue
			}
			// inline masses are already applied, only adopt the names
			for _, named := range mods {
				for j := range spec.Modifications {
					if spec.Modifications[j].Position == named.Position {
						spec.Modifications[j].Name = named.Name
					}
				}
			}
		}
	}
}

// parseMods parses "2/-1,A,iTRAQ8plex/17,C,Carbamidomethyl": a count, then
// position,residue,name triples with 0-based positions and -1 for the N-terminus.
// Unknown modification names are skipped.
func (r *LibraryReader) parseMods(modsStr string) []core.Modification {
	parts := strings.Split(modsStr, "/")
	if len(parts) < 2 {
		return nil
	}

	var mods []core.Modification
	for _, part := range parts[1:] {
		fields := strings.Split(part, ",")
		if len(fields) != 3 {
			continue
		}
		pos, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		mass, ok := r.modDB.GetMass(fields[2])
		if !ok {
			continue
		}
		mods = append(mods, core.Modification{Mass: mass, Position: pos, Name: fields[2]})
	}
	return mods
}

// parsePeakLine parses "mz<ws>intensity[<ws>annotation...]"; annotations may be quoted
// and carry an error suffix ("y3/0.01") which is kept
func parsePeakLine(line string) (core.Peak, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return core.Peak{}, fmt.Errorf("invalid peak format, expected at least 2 fields")
	}

	mz, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return core.Peak{}, fmt.Errorf("invalid m/z value: %w", err)
	}

	intensity, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return core.Peak{}, fmt.Errorf("invalid intensity value: %w", err)
	}

	peak := core.Peak{MZ: mz, Intensity: intensity}
	if len(fields) >= 3 {
		peak.Annotation = strings.Trim(fields[2], "\"")
	}

	return peak, nil
}
