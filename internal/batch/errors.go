package batch

import "errors"

// ErrEmptyInput indicates Process was called with no items.
var ErrEmptyInput = errors.New("batch: no items to process")
