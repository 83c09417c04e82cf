package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// Row-level errors. Each one rejects a single row and is collected into
// Result.Rejected; processing of the remaining rows continues.
var (
	ErrInvalidNumber     = errors.New("invalid number")
	ErrInvalidDate       = errors.New("invalid date")
	ErrNonPositiveAmount = errors.New("non-positive amount")
)

// MissingRequiredColumnError is the single file-fatal error of the
// pipeline: the header row resolved to no column for one or more required
// roles. The whole file is aborted before any row is processed.
type MissingRequiredColumnError struct {
	Roles []Role
}

func (e *MissingRequiredColumnError) Error() string {
	names := make([]string, len(e.Roles))
	for i, r := range e.Roles {
		names[i] = string(r)
	}
	return fmt.Sprintf("missing required column(s): %s", strings.Join(names, ", "))
}

// RowError pairs a zero-based row index with the reason that row was
// rejected.
type RowError struct {
	RowIndex int
	Err      error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.RowIndex, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }
