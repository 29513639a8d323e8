// Package engine implements the cooperative task engine at the heart
// of strand.
//
// The engine lets sequential-looking script code run inside a
// single-threaded, event-driven host without blocking the host's
// reactor loop. Each script invocation becomes a Task with its own
// flow of control; the body may call Suspend mid-execution, handing
// control back to the reactor, and is later resumed exactly where it
// stopped. From the script's point of view a suspension is
// indistinguishable from a blocking call returning.
//
// ARCHITECTURE:
//
// Control transfer:
// A Task owns a coroutine: a parked goroutine plus a pair of
// rendezvous channels that enforce strict alternation between the
// driver's flow and the task's flow. Exactly one flow executes at any
// instant; the channel hand-offs order every access to shared state.
//
// Interpreter state:
// The interpreter keeps per-thread mutable state (recursion depth,
// active frame, pending error) in a script.Thread. Only one task's
// body may be live in it at a time, while arbitrarily many tasks sit
// suspended. Runtime.Step protects it with a four-part swap around
// every switch: install the task's snapshot, transfer control,
// capture the task's mutations back into its snapshot, restore the
// caller's state. The active-task pointer is bracketed the same way,
// so stepping task B from inside task A's body chains rather than
// corrupts.
//
// Scheduling:
// The engine makes no scheduling decisions and has no time source.
// A suspending body arranges, before it suspends, that some external
// event will post the task's wake handle; the reactor turns that into
// another Step. Cancellation is cooperative: Close sets the terminate
// flag and re-steps the task until it completes, and the body only
// observes the flag at its next Suspend. A body that suspends in a
// loop without propagating the termination error keeps that cleanup
// loop spinning; owners must ensure bodies let the error unwind.
package engine
