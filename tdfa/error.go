package tdfa

import "errors"

// Sentinel errors returned by Determinize.
var (
	// ErrNoRules indicates the NFA folds in zero rules; nothing to
	// determinize.
	ErrNoRules = errors.New("tdfa: no rules to determinize")
	// ErrTooComplex indicates the subset construction exceeded its state
	// budget (Determinize's maxStates), almost always a schema producing
	// pathological ambiguity rather than a legitimate large ruleset.
	ErrTooComplex = errors.New("tdfa: determinization exceeded state budget")
)
