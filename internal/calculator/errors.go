package calculator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWindow is returned for windows shorter than two observations.
	ErrInvalidWindow = errors.New("window must be at least 2")

	// ErrMinimumData matches every *MinimumDataError.
	ErrMinimumData = errors.New("insufficient history")

	// ErrMalformedInput matches every *MalformedInputError.
	ErrMalformedInput = errors.New("malformed input series")
)

// MinimumDataError reports a series shorter than one full window.
// Callers skip the symbol; it does not fail sibling symbols.
type MinimumDataError struct {
	Symbol string
	Have   int
	Need   int
}

func (e *MinimumDataError) Error() string {
	return fmt.Sprintf("%s: insufficient history: have %d records, need %d", e.Symbol, e.Have, e.Need)
}

func (e *MinimumDataError) Is(target error) bool { return target == ErrMinimumData }

// MalformedInputError points at the first record that breaks the series ordering.
type MalformedInputError struct {
	Index  int
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input series at index %d: %s", e.Index, e.Reason)
}

func (e *MalformedInputError) Is(target error) bool { return target == ErrMalformedInput }
