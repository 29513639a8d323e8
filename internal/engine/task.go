package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/cybermatrixco/strand/internal/script"
)

// TaskState tracks a task's result slot.
//
// The transitions are one-way: TaskNew -> TaskPending -> TaskDone.
// TaskPending is the sentinel that tells the driver "still suspended,
// wait for the wake handle"; once TaskDone, the task is never stepped
// again.
type TaskState int

const (
	// TaskNew means the task has never been stepped.
	TaskNew TaskState = iota
	// TaskPending means the task started and is suspended.
	TaskPending
	// TaskDone means the task produced a value or an error.
	TaskDone
)

// Wake is the opaque handle a suspended task hands to the host
// reactor so it can be driven again later. Post marks it ready;
// posting must be idempotent and safe even after the task has been
// terminated.
type Wake interface {
	Post()
}

// Task is one suspendable script execution. It owns a coroutine (its
// private flow of control), the saved interpreter state it holds
// while suspended, a tri-state result slot, and a termination flag.
//
// Tasks are confined to the reactor's goroutine: every method except
// the engine-internal hand-offs must be called from the same flow
// that calls Runtime.Step.
type Task struct {
	id string
	rt *Runtime
	ns *script.Namespace

	co   *coroutine
	snap script.Snapshot

	state TaskState
	value script.Value
	err   error

	terminate bool

	// prog and wake are only meaningful while the task is live; the
	// driver clears them when the result arrives.
	prog *script.Program
	wake Wake

	// resolver is opaque to the engine; host builtins interpret it.
	resolver        any
	resolverTimeout time.Duration

	steps int
}

// NewTask creates a task that will run against ns. The task has not
// started; the first Runtime.Step with a wake handle starts it.
func NewTask(rt *Runtime, ns *script.Namespace) *Task {
	return &Task{
		id: uuid.Must(uuid.NewV7()).String(),
		rt: rt,
		ns: ns,
	}
}

// ID returns the task's unique identifier, used in logs and the
// evaluation audit trail.
func (t *Task) ID() string {
	return t.id
}

// State returns the result slot's current state.
func (t *Task) State() TaskState {
	return t.state
}

// Value returns the produced value. Only meaningful once State is
// TaskDone and Err is nil.
func (t *Task) Value() script.Value {
	return t.value
}

// Err returns the script failure, if any. The diagnostic has already
// been logged by the driver; Err exists for callers that branch on
// the outcome.
func (t *Task) Err() error {
	return t.err
}

// Steps returns how many times the driver has stepped this task.
func (t *Task) Steps() int {
	return t.steps
}

// Namespace returns the environment the task's body runs against.
func (t *Task) Namespace() *script.Namespace {
	return t.ns
}

// Wake returns the task's current wake handle, nil when the task is
// not live.
func (t *Task) Wake() Wake {
	return t.wake
}

// Wakeup posts the task's wake handle so the reactor drives it again.
// A terminated task is never woken: its owner is already stepping it
// to completion.
func (t *Task) Wakeup() {
	if !t.terminate && t.wake != nil {
		t.wake.Post()
	}
}

// SetResolver attaches a name-resolution handle and timeout to the
// task. The engine never touches them beyond storage.
func (t *Task) SetResolver(r any, timeout time.Duration) {
	t.resolver = r
	t.resolverTimeout = timeout
}

// Resolver returns the attached resolver handle and timeout.
func (t *Task) Resolver() (any, time.Duration) {
	return t.resolver, t.resolverTimeout
}

// SetValue injects a named binding into the task's namespace for the
// duration of one evaluation. An existing binding wins: the value is
// only set when the name is absent, and the previous state comes back
// so ResetValue can undo the injection exactly.
func (t *Task) SetValue(name string, v script.Value) (old script.Value, existed bool) {
	old, existed = t.ns.Get(name)
	if !existed {
		t.ns.Set(name, v)
	}
	return old, existed
}

// ResetValue undoes a SetValue: if the name was absent before
// injection it is removed again, returning the namespace to its prior
// state bit for bit.
func (t *Task) ResetValue(name string, existed bool) {
	if !existed {
		t.ns.Delete(name)
	}
}

// Close tears the task down. A pending task is first forced through
// termination: the flag is set and the task re-stepped until its body
// unwinds past its next Suspend and the result slot leaves the
// pending state. Whatever value or error that produces is discarded.
//
// A body that keeps suspending without propagating the termination
// error can keep this loop spinning; that matches the host's
// semantics and is the owner's risk to avoid.
func (t *Task) Close() error {
	if t.state == TaskPending {
		t.terminate = true
		for t.state == TaskPending {
			t.rt.Step(t, nil, nil)
		}
	}
	t.value = nil
	t.err = nil
	return nil
}
