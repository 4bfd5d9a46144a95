package ledger

import (
	"errors"
	"fmt"
)

// Error taxonomy. Validation errors are detected before any mutation intent
// is issued; partial-batch errors surface after some intents already applied.
var (
	// ErrValidation marks an operation rejected before any mutation.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a missing posting, occurrence, definition or holding.
	ErrNotFound = errors.New("not found")
	// ErrPartialBatch marks a batch where a later sub-request failed after
	// earlier ones succeeded. Nothing is rolled back; a fresh reload reveals
	// the actual partially-mutated state.
	ErrPartialBatch = errors.New("batch partially applied")
)

// invalidf builds a validation error with a formatted cause.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
