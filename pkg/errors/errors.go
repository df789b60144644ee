package errors

import "errors"

// ErrFileLocked is returned when an output file cannot be written, typically
// because it is open in another application.
var ErrFileLocked = errors.New("output file is locked by another application")

// ErrSourceNotFound is returned when an input file cannot be resolved.
var ErrSourceNotFound = errors.New("source file not found")

// ErrMissingColumn is returned when a table lacks a configured column.
var ErrMissingColumn = errors.New("missing column")
