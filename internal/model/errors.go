package model

import "errors"

// Sentinel errors callers branch on. Per-file conditions are reported
// on the diagnostic channel and skip the file; they never abort a run.
var (
	// ErrBinaryFile marks a file whose first kilobyte contains a zero byte.
	ErrBinaryFile = errors.New("binary file")

	// ErrFileTooLarge marks a file above the configured size ceiling.
	ErrFileTooLarge = errors.New("file too large")

	// ErrUnknownLens is returned when a named lens does not exist.
	ErrUnknownLens = errors.New("unknown lens")

	// ErrInvalidPattern is returned for globs that cannot be compiled.
	ErrInvalidPattern = errors.New("invalid glob pattern")
)
