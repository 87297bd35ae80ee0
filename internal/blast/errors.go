package blast

import "fmt"

// ToolInvocationError is returned when blastn, or its database, can't be
// found or blastn exits with a non-zero status. It is fatal.
type ToolInvocationError struct {
	// Tool is the executable that was run
	Tool string

	// Output is blastn's combined stdout and stderr, if it ran
	Output string

	// Err is the underlying failure
	Err error
}

func (e *ToolInvocationError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("failed to execute %s: %v: %s", e.Tool, e.Err, e.Output)
	}
	return fmt.Sprintf("failed to execute %s: %v", e.Tool, e.Err)
}

func (e *ToolInvocationError) Unwrap() error { return e.Err }

// ParseError is a row of tabular output that couldn't be parsed into a Hit.
type ParseError struct {
	// Line number in the output (1-based)
	Line int

	// Text of the row
	Text string

	// Err describes what was wrong with the row
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed BLAST row at line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
