package reader

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ChrisMcGann/PeakMatch/pkg/core"
)

// PeakListReader reads a plain peak list: one "mz intensity" pair per line, separated
// by whitespace or a comma, with "#" comments. The whole file is one spectrum.
type PeakListReader struct {
	r      io.Reader
	source string
	done   bool
	spec   *core.Spectrum
	err    error
}

// NewPeakListReader creates a peak list reader
func NewPeakListReader(r io.Reader) *PeakListReader {
	return &PeakListReader{r: r}
}

func (p *PeakListReader) setSource(source string) { p.source = source }

// Next reads the spectrum on the first call and reports false afterwards
func (p *PeakListReader) Next() bool {
	if p.done {
		p.spec = nil
		return false
	}
	p.done = true

	spec, err := ReadPeakList(p.r)
	if err != nil {
		p.err = err
		return false
	}
	spec.Source = p.source
	spec.Name = p.source
	p.spec = spec
	return true
}

// Spectrum returns the current spectrum
func (p *PeakListReader) Spectrum() *core.Spectrum {
	return p.spec
}

// Err returns any error encountered during reading
func (p *PeakListReader) Err() error {
	return p.err
}

// ReadPeakList parses a whole peak list. Peaks keep file order.
func ReadPeakList(r io.Reader) (*core.Spectrum, error) {
	spec := &core.Spectrum{
		SourceFormat: FormatPeakList.String(),
		Peaks:        []core.Peak{},
	}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	headerAllowed := true
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		peak, err := parsePeakLine(strings.ReplaceAll(line, ",", " "))
		if err != nil {
			// a header row like "mz,intensity" is tolerated before the first peak
			if headerAllowed && isHeader(line) {
				headerAllowed = false
				continue
			}
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		headerAllowed = false
		spec.Peaks = append(spec.Peaks, peak)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading peak list: %w", err)
	}

	return spec, nil
}

func isHeader(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "mz") || strings.Contains(lower, "m/z") || strings.Contains(lower, "intensity")
}
