// Package sqlite exports matching and annotation runs to SQLite database files
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ChrisMcGann/PeakMatch/pkg/annotate"
	"github.com/ChrisMcGann/PeakMatch/pkg/match"
	"github.com/ChrisMcGann/PeakMatch/pkg/writer"
)

const (
	// Date format for HeaderTable (ISO 8601)
	headerDateFormat = "2006-01-02"
	// Schema version written to HeaderTable
	schemaVersion = 1
)

// Writer handles writing runs to SQLite database files
type Writer struct {
	db             *sql.DB
	outputPath     string
	runStmt        *sql.Stmt
	matchStmt      *sql.Stmt
	annotationStmt *sql.Stmt
	runs           int
	closed         bool
}

// NewWriter creates a new SQLite writer
func NewWriter(outputPath string) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS RunTable (
		RunId TEXT PRIMARY KEY,
		Kind TEXT NOT NULL,
		CreationDate TEXT,
		ToleranceUnit TEXT,
		ToleranceLow DOUBLE,
		ToleranceHigh DOUBLE,
		Strategy TEXT,
		Sequence TEXT,
		Modifications TEXT,
		QueryName TEXT,
		QuerySource TEXT,
		QueryPrecursorMass DOUBLE,
		ReferenceName TEXT,
		ReferenceSource TEXT,
		ReferencePrecursorMass DOUBLE,
		blobQueryMass BLOB,
		blobQueryIntensity BLOB,
		blobReferenceMass BLOB,
		blobReferenceIntensity BLOB
	);

	CREATE TABLE IF NOT EXISTS MatchTable (
		RunId TEXT REFERENCES RunTable(RunId),
		QueryIndex INTEGER,
		ReferenceIndex INTEGER,
		QueryMass DOUBLE,
		QueryIntensity DOUBLE,
		ReferenceMass DOUBLE,
		ReferenceIntensity DOUBLE,
		ErrorDa DOUBLE,
		Error DOUBLE
	);

	CREATE TABLE IF NOT EXISTS AnnotationTable (
		RunId TEXT REFERENCES RunTable(RunId),
		PeakIndex INTEGER,
		PeakMass DOUBLE,
		PeakIntensity DOUBLE,
		TheoreticalMass DOUBLE,
		ErrorDa DOUBLE,
		Charge INTEGER,
		IonType TEXT,
		FragIndex INTEGER,
		AAPosition INTEGER,
		IonNumber INTEGER,
		Label TEXT
	);

	CREATE TABLE IF NOT EXISTS HeaderTable (
		version INTEGER NOT NULL DEFAULT 0,
		CreationDate TEXT,
		LastModifiedDate TEXT,
		NoofRuns INTEGER,
		Description TEXT
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.runStmt, err = w.db.Prepare(`
		INSERT INTO RunTable (
			RunId, Kind, CreationDate, ToleranceUnit, ToleranceLow, ToleranceHigh,
			Strategy, Sequence, Modifications, QueryName, QuerySource, QueryPrecursorMass,
			ReferenceName, ReferenceSource, ReferencePrecursorMass,
			blobQueryMass, blobQueryIntensity, blobReferenceMass, blobReferenceIntensity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare run statement: %w", err)
	}

	w.matchStmt, err = w.db.Prepare(`
		INSERT INTO MatchTable (
			RunId, QueryIndex, ReferenceIndex, QueryMass, QueryIntensity,
			ReferenceMass, ReferenceIntensity, ErrorDa, Error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare match statement: %w", err)
	}

	w.annotationStmt, err = w.db.Prepare(`
		INSERT INTO AnnotationTable (
			RunId, PeakIndex, PeakMass, PeakIntensity, TheoreticalMass, ErrorDa,
			Charge, IonType, FragIndex, AAPosition, IonNumber, Label
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare annotation statement: %w", err)
	}

	return nil
}

// WriteMatches writes a matching run and its pairs in one transaction
func (w *Writer) WriteMatches(run *writer.Run, matches []match.Index) error {
	if run.Query == nil || run.Reference == nil {
		return errors.New("match run needs query and reference spectra")
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := w.insertRun(tx, run); err != nil {
		return err
	}

	stmt := tx.Stmt(w.matchStmt)
	for _, row := range run.MatchRows(matches) {
		_, err := stmt.Exec(
			run.ID,
			row.QueryIndex,
			row.ReferenceIndex,
			row.QueryMZ,
			row.QueryIntensity,
			row.ReferenceMZ,
			row.ReferenceIntensity,
			row.ErrorDa,
			row.Error,
		)
		if err != nil {
			return fmt.Errorf("failed to insert match: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}
	w.runs++
	return nil
}

// WriteAnnotations writes an annotation run and its records in one transaction
func (w *Writer) WriteAnnotations(run *writer.Run, records []annotate.MatchedFragmentPeak) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := w.insertRun(tx, run); err != nil {
		return err
	}

	stmt := tx.Stmt(w.annotationStmt)
	for _, rec := range records {
		_, err := stmt.Exec(
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
		)
		if err != nil {
			return fmt.Errorf("failed to insert annotation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}
	w.runs++
	return nil
}

// insertRun writes the RunTable row, peaks encoded as binary blobs
func (w *Writer) insertRun(tx *sql.Tx, run *writer.Run) error {
	var (
		queryName, querySource string
		queryPrecursor         any
		queryMass, queryInt    []byte
		refName, refSource     string
		refPrecursor           any
		refMass, refInt        []byte
		strategy, sequence     any
		mods                   any
	)

	if run.Query != nil {
		queryName, querySource = run.Query.Label(), run.Query.Source
		queryPrecursor = nullableMass(run.Query.PrecursorMZ)
		queryMass = encodeFloat64(run.Query.MZs())
		queryInt = encodeFloat64(run.Query.Intensities())
		if m := run.Query.ModString(); m != "" {
			mods = m
		}
	}
	if run.Reference != nil {
		refName, refSource = run.Reference.Label(), run.Reference.Source
		refPrecursor = nullableMass(run.Reference.PrecursorMZ)
		refMass = encodeFloat64(run.Reference.MZs())
		refInt = encodeFloat64(run.Reference.Intensities())
	}
	if run.Strategy != "" {
		strategy = run.Strategy
	}
	if run.Sequence != "" {
		sequence = run.Sequence
	}

	_, err := tx.Stmt(w.runStmt).Exec(
		run.ID,
		run.Kind,
		run.CreatedAt.Format(time.RFC3339),
		run.Tolerance.Unit.String(),
		run.Tolerance.Low,
		run.Tolerance.High,
		strategy,
		sequence,
		mods,
		queryName,
		querySource,
		queryPrecursor,
		refName,
		refSource,
		refPrecursor,
		queryMass,
		queryInt,
		refMass,
		refInt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}
	return nil
}

func nullableMass(mz float64) any {
	if mz == 0 {
		return nil
	}
	return mz
}

// encodeFloat64 encodes values as a little-endian float64 blob
func encodeFloat64(values []float64) []byte {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

// DecodePeaksFloat64 decodes a blob written by the exporter
func DecodePeaksFloat64(blob []byte) ([]float64, error) {
	if len(blob)%8 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 8", len(blob))
	}
	values := make([]float64, len(blob)/8)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return values, nil
}

// Finalize writes the header table and closes the database
func (w *Writer) Finalize() error {
	if w.closed {
		return nil
	}
	w.closed = true

	now := time.Now().Format(headerDateFormat)
	_, err := w.db.Exec(`
		INSERT INTO HeaderTable (version, CreationDate, LastModifiedDate, NoofRuns, Description)
		VALUES (?, ?, ?, ?, ?)
	`, schemaVersion, now, now, w.runs, "PeakMatch results")
	if err != nil {
		w.db.Close()
		return fmt.Errorf("failed to insert header: %w", err)
	}

	// Close prepared statements
	for _, stmt := range []*sql.Stmt{w.runStmt, w.matchStmt, w.annotationStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// Close closes the database connection (alias for Finalize)
func (w *Writer) Close() error {
	return w.Finalize()
}
