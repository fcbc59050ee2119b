package panel

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedObservation indicates a record rejected at ingestion.
	ErrMalformedObservation = errors.New("panel: malformed observation")

	// ErrDuplicateObservation indicates a second record for an (area, year) pair.
	ErrDuplicateObservation = errors.New("panel: duplicate observation")
)

// MalformedError wraps ErrMalformedObservation with the offending record.
type MalformedError struct {
	Index       int
	Observation Observation
	Reason      string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("panel: record %d (area=%q year=%d): %s", e.Index, e.Observation.Area, e.Observation.Year, e.Reason)
}

func (e *MalformedError) Unwrap() error {
	return ErrMalformedObservation
}
