package ports

import "errors"

var (
	// ErrNotFound reports that the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict reports that a conditional write lost: the record
	// changed after the version the write was conditioned on was read. The
	// caller must re-read and re-validate before trying again.
	ErrVersionConflict = errors.New("version conflict")
)
