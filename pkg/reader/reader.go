// Package reader loads spectra from MSP and SPTXT spectral libraries and from plain
// peak list files.
package reader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChrisMcGann/PeakMatch/pkg/core"
)

var (
	// ErrUnknownFormat is returned when a format name or file extension is not recognised.
	ErrUnknownFormat = errors.New("unknown spectrum format")

	// ErrEntryNotFound is returned when no library entry has the requested name.
	ErrEntryNotFound = errors.New("library entry not found")
)

// Format identifies an input file format.
type Format int

const (
	FormatAuto Format = iota
	FormatMSP
	FormatSPTXT
	FormatPeakList
)

func (f Format) String() string {
	switch f {
	case FormatMSP:
		return "msp"
	case FormatSPTXT:
		return "sptxt"
	case FormatPeakList:
		return "peaks"
	default:
		return "auto"
	}
}

// ParseFormat parses a format name; the empty string means auto-detect.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "msp":
		return FormatMSP, nil
	case "sptxt":
		return FormatSPTXT, nil
	case "peaks", "txt", "tsv", "csv":
		return FormatPeakList, nil
	}
	return FormatAuto, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".msp":
		return FormatMSP, nil
	case ".sptxt":
		return FormatSPTXT, nil
	case ".txt", ".tsv", ".csv", ".peaks", ".mgf.txt":
		return FormatPeakList, nil
	default:
		return FormatAuto, fmt.Errorf("%w: cannot auto-detect format from extension '%s'", ErrUnknownFormat, ext)
	}
}

// Reader streams spectra from a source.
type Reader interface {
	Next() bool
	Spectrum() *core.Spectrum
	Err() error
}

// NewReader creates a streaming reader of the given (non-auto) format over r.
func NewReader(r io.Reader, format Format, modDB *core.ModDatabase) (Reader, error) {
	switch format {
	case FormatMSP:
		return NewMSPReader(r, modDB), nil
	case FormatSPTXT:
		return NewSPTXTReader(r, modDB), nil
	case FormatPeakList:
		return NewPeakListReader(r), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// File is a Reader over an opened file.
type File struct {
	Reader
	file *os.File
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.file.Close()
}

// Open opens path as a spectrum source, detecting the format from the extension when
// format is FormatAuto.
func Open(path string, format Format, modDB *core.ModDatabase) (*File, error) {
	if format == FormatAuto {
		var err error
		if format, err = DetectFormat(path); err != nil {
			return nil, err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	r, err := NewReader(f, format, modDB)
	if err != nil {
		f.Close()
		return nil, err
	}
	if s, ok := r.(interface{ setSource(string) }); ok {
		s.setSource(path)
	}

	return &File{Reader: r, file: f}, nil
}

// Find returns the first spectrum whose name or label equals name, or the first spectrum
// when name is empty.
func Find(r Reader, name string) (*core.Spectrum, error) {
	for r.Next() {
		spec := r.Spectrum()
		if name == "" || spec.Name == name || spec.Label() == name {
			return spec, nil
		}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("error reading input file: %w", err)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: source is empty", ErrEntryNotFound)
	}
	return nil, fmt.Errorf("%w: %q", ErrEntryNotFound, name)
}

// Load opens path and returns the entry called name (the first entry when name is empty).
func Load(path string, format Format, name string, modDB *core.ModDatabase) (*core.Spectrum, error) {
	f, err := Open(path, format, modDB)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Find(f, name)
}
