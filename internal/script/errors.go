package script

import "fmt"

// TraceEntry records one call-chain step of a raised error, outermost
// first.
type TraceEntry struct {
	Fn   string // function name, "" for top-level code
	File string
	Line int
}

// Raised is a script-level error: a message plus the source location
// where it was raised and the call chain that led there. It replaces
// the host interpreter's separate type/value/traceback slots with one
// value.
type Raised struct {
	Message string
	File    string
	Line    int
	Trace   []TraceEntry

	// Cause is the host error this raise was adapted from, nil for
	// script-originated raises. It keeps errors.Is working across
	// the host boundary.
	Cause error
}

// Error implements the error interface.
func (r *Raised) Error() string {
	if r.File == "" && r.Line == 0 {
		return r.Message
	}
	return fmt.Sprintf("%s at %s:%d", r.Message, r.File, r.Line)
}

// Unwrap exposes the host error this raise was adapted from.
func (r *Raised) Unwrap() error {
	return r.Cause
}

// NewRaised creates a Raised with a formatted message and no trace.
func NewRaised(file string, line int, format string, args ...any) *Raised {
	return &Raised{
		Message: fmt.Sprintf(format, args...),
		File:    file,
		Line:    line,
	}
}

// raisedFrom adapts an arbitrary error to a Raised at the given
// location. An error that already is a Raised passes through
// unchanged, keeping its original location and trace.
func raisedFrom(err error, file string, line int) *Raised {
	if r, ok := err.(*Raised); ok {
		return r
	}
	return &Raised{Message: err.Error(), File: file, Line: line, Cause: err}
}
