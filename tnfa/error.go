package tnfa

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Builder and NFA operations.
var (
	// ErrInvalidState indicates an out-of-range state ID was referenced.
	ErrInvalidState = errors.New("tnfa: invalid state")
	// ErrTooComplex indicates a rule set produced more states or tags than
	// the compiler's configured limits allow.
	ErrTooComplex = errors.New("tnfa: pattern too complex")
	// ErrDuplicateCapture indicates the same capture name was declared by
	// two different rules sharing one lexer's tag namespace.
	ErrDuplicateCapture = errors.New("tnfa: duplicate capture name")
)

// BuildError wraps a Builder construction failure with the offending state.
type BuildError struct {
	Message string
	State   StateID
}

func (e *BuildError) Error() string {
	if e.State != InvalidState {
		return fmt.Sprintf("tnfa: build error at state %d: %s", e.State, e.Message)
	}
	return fmt.Sprintf("tnfa: build error: %s", e.Message)
}
