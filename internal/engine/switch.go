package engine

// coroutine is the control-transfer primitive under a Task. It runs
// an entry function on its own flow of control and hands execution
// back and forth with the driver through two rendezvous channels.
//
// The protocol is strict alternation. switchInto blocks the driver
// until the task either calls switchBack or returns from its entry
// function; switchBack blocks the task until the next switchInto.
// Exactly one side is running between any pair of hand-offs, which is
// what lets the surrounding code share interpreter state without
// locks: every access is ordered by a channel operation.
//
// Returning from the entry function behaves as a final switchBack
// that can never be resumed; the driver observes it through done.
type coroutine struct {
	resume chan struct{} // driver -> task hand-off
	yield  chan struct{} // task -> driver hand-off

	// running and finished are touched only from the driver side.
	// done is written by the task flow before its final yield send,
	// so the channel receive orders it for the driver.
	running  bool
	finished bool
	done     bool
}

// startCoroutine creates a coroutine parked at the top of entry. No
// code runs until the first switchInto.
func startCoroutine(entry func()) *coroutine {
	c := &coroutine{
		resume: make(chan struct{}),
		yield:  make(chan struct{}),
	}
	go func() {
		<-c.resume
		entry()
		c.done = true
		c.yield <- struct{}{}
	}()
	return c
}

// switchInto transfers control to the task flow and blocks until it
// yields or finishes. Called only from the driver side.
func (c *coroutine) switchInto() error {
	if c == nil {
		return &SwitchError{Reason: "no coroutine started"}
	}
	if c.finished {
		return &SwitchError{Reason: "switch into a finished coroutine"}
	}
	if c.running {
		return &SwitchError{Reason: "switch into a running coroutine"}
	}
	c.running = true
	c.resume <- struct{}{}
	<-c.yield
	c.running = false
	if c.done {
		c.finished = true
	}
	return nil
}

// switchBack transfers control to the driver and blocks until the
// next switchInto. Called only from inside the entry function.
func (c *coroutine) switchBack() {
	c.yield <- struct{}{}
	<-c.resume
}
