package etl

import (
	"errors"
	"fmt"
)

// ErrCriticalFindings is returned by Run when StopOnCritical is set
// and the first validation pass produced critical findings.
var ErrCriticalFindings = errors.New("validation produced critical findings")

// ExtractError marks a fatal failure of the extract stage: the source
// is missing, unreadable, or unparseable. The pipeline halts and no
// partial output is written.
type ExtractError struct {
	Source string
	Err    error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Source, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// LoadError marks a fatal failure of the load stage: the destination
// could not be written. Sinks are all-or-nothing, so the destination
// is left untouched.
type LoadError struct {
	Destination string
	Err         error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Destination, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// capture invokes a collaborator and converts a panic into an error,
// so a misbehaving loader or sink can never crash the pipeline.
func capture(stage Stage, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", stage, r)
		}
	}()
	return fn()
}
