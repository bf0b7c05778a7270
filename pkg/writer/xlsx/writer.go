// Package xlsx exports matching and annotation runs as an Excel report.
package xlsx

import (
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ChrisMcGann/PeakMatch/pkg/annotate"
	"github.com/ChrisMcGann/PeakMatch/pkg/match"
	"github.com/ChrisMcGann/PeakMatch/pkg/writer"
)

// Sheet names
const (
	SheetRun         = "Run"
	SheetMatches     = "Matches"
	SheetAnnotations = "Annotations"
)

var headers = map[string][]any{
	SheetRun: {"RunId", "Kind", "CreationDate", "Tolerance", "Strategy", "Sequence",
		"Query", "QueryPeaks", "Reference", "ReferencePeaks", "Results"},
	SheetMatches: {"RunId", "QueryIndex", "ReferenceIndex", "QueryMZ", "QueryIntensity",
		"ReferenceMZ", "ReferenceIntensity", "ErrorDa", "Error", "ErrorUnit"},
	SheetAnnotations: {"RunId", "PeakIndex", "PeakMZ", "PeakIntensity", "TheoreticalMZ",
		"ErrorDa", "Charge", "IonType", "FragIndex", "AAPosition", "IonNumber", "Label"},
}

// Writer accumulates runs into a workbook that is saved on Close.
type Writer struct {
	file       *excelize.File
	outputPath string
	nextRow    map[string]int
	closed     bool
}

// NewWriter creates a report writer for outputPath.
func NewWriter(outputPath string) (*Writer, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetRun); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet %s: %w", SheetRun, err)
	}
	for _, sheet := range []string{SheetMatches, SheetAnnotations} {
		if _, err := f.NewSheet(sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	w := &Writer{file: f, outputPath: outputPath, nextRow: make(map[string]int)}
	for sheet, header := range headers {
		if err := w.appendRow(sheet, header); err != nil {
			f.Close()
			return nil, err
		}
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to style header of %s: %w", sheet, err)
		}
	}

	return w, nil
}

func (w *Writer) appendRow(sheet string, values []any) error {
	row := w.nextRow[sheet] + 1
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	w.nextRow[sheet] = row
	return nil
}

func (w *Writer) writeRun(run *writer.Run, results int) error {
	var query, reference string
	var queryPeaks, referencePeaks int
	if run.Query != nil {
		query, queryPeaks = run.Query.Label(), len(run.Query.Peaks)
	}
	if run.Reference != nil {
		reference, referencePeaks = run.Reference.Label(), len(run.Reference.Peaks)
	}

	return w.appendRow(SheetRun, []any{
		run.ID,
		run.Kind,
		run.CreatedAt.Format(time.RFC3339),
		run.Tolerance.String(),
		run.Strategy,
		run.Sequence,
		query,
		queryPeaks,
		reference,
		referencePeaks,
		results,
	})
}

// WriteMatches appends a matching run and its pairs.
func (w *Writer) WriteMatches(run *writer.Run, matches []match.Index) error {
	if run.Query == nil || run.Reference == nil {
		return errors.New("match run needs query and reference spectra")
	}
	if err := w.writeRun(run, len(matches)); err != nil {
		return err
	}

	unit := run.Tolerance.Unit.String()
	for _, row := range run.MatchRows(matches) {
		err := w.appendRow(SheetMatches, []any{
			run.ID,
			row.QueryIndex,
			row.ReferenceIndex,
			row.QueryMZ,
			row.QueryIntensity,
			row.ReferenceMZ,
			row.ReferenceIntensity,
			row.ErrorDa,
			row.Error,
			unit,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteAnnotations appends an annotation run and its records.
func (w *Writer) WriteAnnotations(run *writer.Run, records []annotate.MatchedFragmentPeak) error {
	if err := w.writeRun(run, len(records)); err != nil {
		return err
	}

	for _, rec := range records {
		err := w.appendRow(SheetAnnotations, []any{
			run.ID,
			rec.PeakIndex,
			rec.PeakMZ,
			rec.PeakIntensity,
			rec.TheoMZ,
			float64(rec.MZError),
			int(rec.Charge),
			rec.IonType,
			int(rec.FragIndex),
			int(rec.AAPosition),
			int(rec.IonNumber),
			rec.Label,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Close saves the workbook and releases it.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.file.SaveAs(w.outputPath); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to save report: %w", err)
	}
	return w.file.Close()
}
