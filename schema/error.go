package schema

import "errors"

var (
	// errEmptyDelimiters is returned when a schema declares a `delimiters:`
	// line with an empty charset (spec.md §7.3 "delimiters must name at
	// least one byte").
	errEmptyDelimiters = errors.New("schema: delimiters charset is empty")

	// ErrNoDelimiters is returned by Compile when the schema declares at
	// least one non-timestamp variable but no delimiters line (spec.md
	// §7.3: "exactly one delimiters line is required once any
	// non-timestamp variable is present").
	ErrNoDelimiters = errors.New("schema: non-timestamp variables require a delimiters line")

	// ErrDuplicateVariable's text is the message of the *ParseError Compile
	// returns when two variables share a name.
	ErrDuplicateVariable = errors.New("schema: duplicate variable name")

	// ErrTimestampReused's text is the message of the *ParseError Compile
	// returns when more than one variable is named "timestamp" (spec.md §4.1 rewrite 3 singles this name out).
	ErrTimestampReused = errors.New("schema: at most one variable may be named \"timestamp\"")
)
