package engine

import (
	"errors"
	"fmt"
)

// ErrNotInTask is returned by Suspend when no task is active: either
// code running outside the engine entirely, or configuration-time
// evaluation, which is always synchronous.
var ErrNotInTask = errors.New("blocking calls are not allowed")

// ErrTerminated is returned by Suspend inside a task whose owner has
// requested forced unwind. It is meant to propagate: a body that
// catches it and keeps suspending keeps its cleanup loop spinning.
var ErrTerminated = errors.New("terminated")

// SwitchError reports a failure of the control-transfer primitive
// itself. It is fatal to the step that hit it: the task's state can
// no longer be trusted and the task must not be stepped again.
type SwitchError struct {
	Reason string
}

// Error implements the error interface.
func (e *SwitchError) Error() string {
	return fmt.Sprintf("context switch failed: %s", e.Reason)
}

// IsTerminated reports whether err is (or wraps) a termination
// signal.
func IsTerminated(err error) bool {
	return errors.Is(err, ErrTerminated)
}

// IsSwitchError reports whether err is (or wraps) a failure of the
// switch primitive.
func IsSwitchError(err error) bool {
	var se *SwitchError
	return errors.As(err, &se)
}
