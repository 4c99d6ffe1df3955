package store

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable aborts a whole batch: the backend could not be read or written.
	// Records committed before the failure stay committed.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrMalformedRecord matches every *MalformedRecordError.
	ErrMalformedRecord = errors.New("malformed record")
)

// MalformedRecordError explains why a single record was rejected at ingestion.
type MalformedRecordError struct {
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record: %s %s", e.Field, e.Reason)
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}
