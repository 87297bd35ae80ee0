package layout

import (
	"fmt"

	"github.com/Honglongwu/picobio/internal/blast"
)

// InvalidReferenceError is returned when the reference can't be used as
// the coordinate track: it's unreadable, empty, or has no length. It is fatal.
type InvalidReferenceError struct {
	// Path of the reference file, if known
	Path string

	// ID of the reference, if known
	ID string

	// Err is the underlying failure
	Err error
}

func (e *InvalidReferenceError) Error() string {
	name := e.ID
	if e.Path != "" {
		name = e.Path
	}
	if name == "" {
		return fmt.Sprintf("invalid reference: %v", e.Err)
	}
	return fmt.Sprintf("invalid reference %s: %v", name, e.Err)
}

func (e *InvalidReferenceError) Unwrap() error { return e.Err }

// InvalidFragmentError describes a hit that was discarded: its fragment
// isn't in the assembly, its subject isn't the reference, or it lies
// outside the reference. The run continues without it.
type InvalidFragmentError struct {
	// Hit that was discarded
	Hit blast.Hit

	// Reason it was discarded
	Reason string
}

func (e *InvalidFragmentError) Error() string {
	return fmt.Sprintf(
		"discarding hit %s:%d-%d on %s:%d-%d: %s",
		e.Hit.QueryID, e.Hit.QueryStart, e.Hit.QueryEnd,
		e.Hit.RefID, e.Hit.RefStart, e.Hit.RefEnd,
		e.Reason,
	)
}
