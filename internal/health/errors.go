package health

import "errors"

// ErrCircuitOpen is returned when the circuit breaker is open and not
// accepting outcome reports.
var ErrCircuitOpen = errors.New("health: circuit breaker is open")
