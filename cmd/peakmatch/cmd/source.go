package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ChrisMcGann/PeakMatch/pkg/core"
	"github.com/ChrisMcGann/PeakMatch/pkg/proxi"
	"github.com/ChrisMcGann/PeakMatch/pkg/reader"
	"github.com/ChrisMcGann/PeakMatch/pkg/writer"
	"github.com/ChrisMcGann/PeakMatch/pkg/writer/sqlite"
	"github.com/ChrisMcGann/PeakMatch/pkg/writer/xlsx"
)

const (
	usiPrefix        = "usi:"
	mzspecPrefix     = "mzspec:"
	customModsFile   = "unimod_custom.csv"
	formatAutoString = "auto"
)

// isUSI reports whether source names a remote spectrum rather than a file
func isUSI(source string) bool {
	return strings.HasPrefix(source, usiPrefix) || strings.HasPrefix(source, mzspecPrefix)
}

// loadModDatabase returns the built-in modifications plus unimod_custom.csv when present
func loadModDatabase() *core.ModDatabase {
	modDB := core.DefaultModDatabase()

	if _, err := os.Stat(customModsFile); err == nil {
		f, err := os.Open(customModsFile)
		if err == nil {
			if err := modDB.LoadFromCSV(f); err != nil {
				logger.Warn("failed to load custom modifications", zap.String("file", customModsFile), zap.Error(err))
			}
			f.Close()
		}
	}
	return modDB
}

// loadSpectrum reads one spectrum from a library file, a peak list or a PROXI repository
func loadSpectrum(ctx context.Context, source, format, name string) (*core.Spectrum, error) {
	if isUSI(source) {
		usi := strings.TrimPrefix(source, usiPrefix)
		opts, err := cfg.Proxi.ClientOptions()
		if err != nil {
			return nil, err
		}
		client := proxi.NewClient(append(opts, proxi.WithLogger(logger))...)
		spec, err := client.Fetch(ctx, usi)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", usi, err)
		}
		return checkSpectrum(spec)
	}

	f, err := reader.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	spec, err := reader.Load(source, f, name, loadModDatabase())
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", source, err)
	}

	logger.Debug("loaded spectrum",
		zap.String("source", source),
		zap.String("name", spec.Name),
		zap.Int("peaks", len(spec.Peaks)))
	return checkSpectrum(spec)
}

// checkSpectrum rejects spectra without peaks. Other validation findings (NaN or
// negative values) are data-quality warnings: the matcher ranks NaN intensities lowest.
func checkSpectrum(spec *core.Spectrum) (*core.Spectrum, error) {
	if len(spec.Peaks) == 0 {
		return nil, &core.ValidationError{Field: "Spectrum", Message: fmt.Sprintf("%s has no peaks", spec.Label())}
	}
	if err := spec.Validate(); err != nil {
		logger.Warn("spectrum failed validation",
			zap.String("spectrum", spec.Label()),
			zap.Error(err))
	}
	return spec, nil
}

// newExporter picks the result exporter from the output file extension
func newExporter(path string) (writer.Exporter, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		w, err := sqlite.NewWriter(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create output database: %w", err)
		}
		return w, nil
	case ".xlsx":
		w, err := xlsx.NewWriter(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create workbook: %w", err)
		}
		return w, nil
	default:
		return nil, fmt.Errorf("unsupported output file %q: use .db, .sqlite or .xlsx", path)
	}
}
