package core

import "errors"

// Precondition errors shared across packages. Callers match them with errors.Is.
var (
	// ErrLengthMismatch is returned when parallel m/z and intensity arrays differ in length.
	ErrLengthMismatch = errors.New("m/z and intensity arrays differ in length")

	// ErrEmptySequence is returned when a peptide sequence is required but missing.
	ErrEmptySequence = errors.New("peptide sequence is empty")
)
