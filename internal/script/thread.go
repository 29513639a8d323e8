package script

// Frame is one entry in the live call chain. Frames form a singly
// linked list from the innermost call outward, mirroring how the
// evaluator pushes and pops them.
type Frame struct {
	Fn   string // called function name, "" for top-level code
	File string
	Line int // call-site line, updated as the frame executes
	Prev *Frame
}

// Thread holds the mutable per-runtime interpreter state that script
// execution depends on: the recursion counter, the innermost active
// frame, and the pending raised error. Exactly one body may run
// against a Thread at any instant; code that multiplexes several
// paused executions over one Thread must exchange this state with
// Swap around every transfer of control.
type Thread struct {
	Depth    int     // live recursion depth
	MaxDepth int     // calls beyond this raise a recursion error
	Frame    *Frame  // innermost active frame, nil when idle
	Pending  *Raised // in-flight raised error, nil when none
}

// Snapshot is the saved form of a Thread's mutable fields. It is a
// plain value: copying it copies the whole saved state.
type Snapshot struct {
	Depth   int
	Frame   *Frame
	Pending *Raised
}

// NewThread creates an idle Thread with the given recursion limit.
func NewThread(maxDepth int) *Thread {
	return &Thread{MaxDepth: maxDepth}
}

// Swap installs s as the live state and returns what was live before.
// All fields move together; there is no partial swap.
func (t *Thread) Swap(s Snapshot) Snapshot {
	old := Snapshot{Depth: t.Depth, Frame: t.Frame, Pending: t.Pending}
	t.Depth = s.Depth
	t.Frame = s.Frame
	t.Pending = s.Pending
	return old
}

// push enters a new frame, counting it against the recursion limit.
// Returns nil and leaves the thread unchanged if the limit is hit.
func (t *Thread) push(fn, file string, line int) *Frame {
	if t.MaxDepth > 0 && t.Depth >= t.MaxDepth {
		return nil
	}
	t.Depth++
	f := &Frame{Fn: fn, File: file, Line: line, Prev: t.Frame}
	t.Frame = f
	return f
}

// pop leaves the innermost frame.
func (t *Thread) pop() {
	if t.Frame == nil {
		return
	}
	t.Frame = t.Frame.Prev
	t.Depth--
}

// trace captures the live call chain as TraceEntry values, outermost
// first. Used when a raise happens so the error keeps its context
// after the frames unwind.
func (t *Thread) trace() []TraceEntry {
	n := 0
	for f := t.Frame; f != nil; f = f.Prev {
		n++
	}
	entries := make([]TraceEntry, n)
	i := n
	for f := t.Frame; f != nil; f = f.Prev {
		i--
		entries[i] = TraceEntry{Fn: f.Fn, File: f.File, Line: f.Line}
	}
	return entries
}
