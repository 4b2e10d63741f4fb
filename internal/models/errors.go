package models

import (
	"errors"
	"fmt"
)

// Sentinel fetch failures. Their messages are what ends up in the error
// column of a result row, so they are user-facing.
var (
	ErrNoPricingData            = errors.New("No pricing data found")
	ErrOriginalInstanceNotFound = errors.New("Original instance pricing not found")
	ErrNoGravitonMatch          = errors.New("No exact Graviton match found")
)

// ValidationError is a malformed input row.
// Row is 1-based; zero means the row number is unknown.
type ValidationError struct {
	Row    int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ProviderCallError wraps any transport, auth, or response-shape failure
// from the pricing or inventory APIs.
type ProviderCallError struct {
	Op  string
	Err error
}

func (e *ProviderCallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProviderCallError) Unwrap() error { return e.Err }

// WithRow returns a copy of err with Row set when err is a *ValidationError.
// Other errors are returned unchanged.
func WithRow(err error, row int) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		cp := *ve
		cp.Row = row
		return &cp
	}
	return err
}
