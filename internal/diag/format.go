// Package diag renders script failures as single-line diagnostics for
// the host's logs. The format is fixed: "<message> [<file>:<line>]",
// with empty message, empty file, and line zero when no structured
// information is available. Diagnostics are log-only; script code
// never sees them.
package diag

import (
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/cybermatrixco/strand/internal/script"
)

// Format renders err as "<message> [<file>:<line>]". A *script.Raised
// anywhere in the chain contributes its message and innermost
// location; any other error contributes only its text. Text is
// NFC-normalized so the same diagnostic always byte-compares equal
// regardless of how the source spelled its characters.
func Format(err error) string {
	var text, file string
	var line int

	var r *script.Raised
	switch {
	case errors.As(err, &r):
		text = r.Message
		file = r.File
		line = r.Line
	case err != nil:
		text = err.Error()
	}

	text = norm.NFC.String(text)
	file = norm.NFC.String(file)

	return fmt.Sprintf("%s [%s:%d]", text, file, line)
}

// FormatTrace renders the call chain of a raised error, one
// "<fn> at <file>:<line>" entry per line, outermost first. Errors
// without a trace render as the empty string.
func FormatTrace(err error) string {
	var r *script.Raised
	if !errors.As(err, &r) || len(r.Trace) == 0 {
		return ""
	}
	out := ""
	for _, e := range r.Trace {
		fn := e.Fn
		if fn == "" {
			fn = "(top level)"
		}
		out += fmt.Sprintf("%s at %s:%d\n", fn, norm.NFC.String(e.File), e.Line)
	}
	return out
}
