package contextstore

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates no entry exists under the requested id.
var ErrNotFound = errors.New("contextstore: context not found")

// TooLargeError reports a payload whose estimated token count exceeds the
// per-entry ceiling. The store is left untouched by the rejected write.
type TooLargeError struct {
	// Tokens is the estimated size of the rejected payload.
	Tokens int

	// Max is the configured per-entry ceiling.
	Max int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("contextstore: context too large (%d tokens, max %d)", e.Tokens, e.Max)
}
