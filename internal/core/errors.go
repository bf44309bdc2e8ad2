package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNoInputFiles means discovery matched zero files across all sources.
	ErrNoInputFiles = errors.New("no input files found")

	// ErrEmptyLedger means analysis was attempted on a ledger with no records.
	ErrEmptyLedger = errors.New("ledger is empty")
)

// MalformedInputError identifies a bad row or column in a source file.
// Row is 1-based and counts the header; a zero Row means the file as a
// whole was unusable (e.g. missing a required column).
type MalformedInputError struct {
	File   string
	Row    int
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("malformed input in %s row %d: %s", e.File, e.Row, e.Reason)
	}
	return fmt.Sprintf("malformed input in %s: %s", e.File, e.Reason)
}

// PersistenceError reports a failure writing the consolidated ledger.
// Any previously persisted ledger at Path is left untouched.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist ledger to %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
