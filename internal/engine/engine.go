package engine

import (
	"log/slog"

	"github.com/cybermatrixco/strand/internal/diag"
	"github.com/cybermatrixco/strand/internal/script"
)

// DefaultStackSize is the per-task stack budget used when the
// configuration does not set one.
const DefaultStackSize = 32768

// frameCost is the approximate interpreter footprint of one script
// call frame. The configured stack size divided by it gives the
// recursion limit, so runaway recursion fails the way it would on a
// fixed-size stack.
const frameCost = 64

// Runtime is the driver side of the engine. It owns the single live
// interpreter thread state and the "currently active task" pointer,
// and steps tasks on behalf of the host reactor.
//
// A Runtime is confined to one goroutine: the reactor's. "Many tasks
// at once" means many coroutines parked in switchBack, never two
// flows executing simultaneously. The snapshot swap in Step is the
// only discipline protecting the shared thread state, and it brackets
// every switch in both directions.
type Runtime struct {
	thread    *script.Thread
	active    *Task
	stackSize int
}

// NewRuntime creates a runtime whose tasks get the given stack
// budget. Sizes of zero or below fall back to DefaultStackSize.
func NewRuntime(stackSize int) *Runtime {
	if stackSize <= 0 {
		stackSize = DefaultStackSize
	}
	return &Runtime{
		thread:    script.NewThread(stackSize / frameCost),
		stackSize: stackSize,
	}
}

// Thread returns the live interpreter state. Exposed for the host
// glue and tests; the snapshot dance in Step is the only place that
// should swap it.
func (r *Runtime) Thread() *script.Thread {
	return r.thread
}

// StackSize returns the configured per-task stack budget.
func (r *Runtime) StackSize() int {
	return r.stackSize
}

// Active returns the currently running task, or nil when control is
// on the reactor side (or inside configuration-time evaluation).
func (r *Runtime) Active() *Task {
	return r.active
}

// setActive installs t as the active task and returns the previous
// one. Every Step brackets itself with a pair of these so reentrant
// drives chain instead of clobbering each other.
func (r *Runtime) setActive(t *Task) *Task {
	prev := r.active
	r.active = t
	return prev
}

// Step drives t once and reports whether it finished. prog is only
// meaningful on a task's first step; wake is kept for Wakeup until
// the task completes.
//
// With a wake handle, the step enters the task's coroutine: the
// task's saved interpreter state is swapped in, control transfers,
// and on the way out whatever the body mutated is captured back into
// the task's snapshot before the caller's state is restored. The
// four-part swap runs on every step, including reentrant ones.
//
// With a nil wake the evaluation is synchronous: no coroutine, no
// snapshot dance, Suspend unreachable. Configuration-time evaluation
// uses this mode. Both modes report results identically through the
// task's result slot.
func (r *Runtime) Step(t *Task, prog *script.Program, wake Wake) bool {
	if t.state == TaskDone {
		return true
	}

	if wake == nil && t.state == TaskNew {
		return r.stepSync(t, prog)
	}

	if t.state == TaskNew {
		t.prog = prog
		t.wake = wake
		t.co = startCoroutine(t.entry)
		t.state = TaskPending
	}
	t.steps++

	prev := r.setActive(t)
	saved := r.thread.Swap(t.snap)

	if err := t.co.switchInto(); err != nil {
		// The task's flow is in an unknown state; poison it so it is
		// never stepped again.
		slog.Error("task switch failed", "task", t.id, "error", err)
		t.state = TaskDone
		t.value = nil
		t.err = err
	}

	t.snap = r.thread.Swap(saved)
	r.setActive(prev)

	if t.state == TaskPending {
		return false
	}
	t.prog = nil
	t.wake = nil
	return true
}

// stepSync evaluates prog directly on the caller's flow.
func (r *Runtime) stepSync(t *Task, prog *script.Program) bool {
	t.steps++
	prev := r.setActive(nil)
	v, err := prog.Eval(r.thread, t.ns)
	r.setActive(prev)

	t.state = TaskDone
	t.value = v
	t.err = err
	if err != nil {
		slog.Error("script error", "task", t.id, "diagnostic", diag.Format(err))
	}
	return true
}

// entry is the routine at the top of each task's coroutine. It runs
// once, on the task's own flow, evaluates the body, and stores the
// outcome; returning from it is the final switch back to the driver.
func (t *Task) entry() {
	slog.Debug("task start", "task", t.id, "namespace", t.ns.Name())

	v, err := t.prog.Eval(t.rt.thread, t.ns)
	t.value = v
	t.err = err
	t.state = TaskDone
	if err != nil {
		slog.Error("script error", "task", t.id, "diagnostic", diag.Format(err))
	}
}

// Suspend yields the running task back to whoever stepped it. It is
// the only way a body gives up control voluntarily.
//
// Outside a task there is nothing to suspend, so the call fails with
// ErrNotInTask; that covers configuration-time evaluation too. On
// resumption the termination flag is checked first: a terminated task
// gets ErrTerminated so its own unwind paths run.
func (r *Runtime) Suspend() error {
	t := r.active
	if t == nil {
		return ErrNotInTask
	}

	slog.Debug("task yield", "task", t.id)
	t.co.switchBack()
	slog.Debug("task regain", "task", t.id)

	if t.terminate {
		return ErrTerminated
	}
	return nil
}
