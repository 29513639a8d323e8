// Package host wires the engine into a reactor: it installs the
// builtins that make scripts look blocking (sleep, resolve) plus a
// structured log builtin. This is the per-worker initialization the
// host performs once a namespace exists.
package host

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cybermatrixco/strand/internal/engine"
	"github.com/cybermatrixco/strand/internal/reactor"
	"github.com/cybermatrixco/strand/internal/script"
)

// Install registers the host builtins into ns. Suspending builtins
// find their task through rt's active-task pointer, so they fail with
// the not-allowed error during configuration-time evaluation, which
// runs with no active task.
func Install(ns *script.Namespace, rt *engine.Runtime, loop *reactor.Loop) {
	ns.Set("sleep", &script.Builtin{Name: "sleep", Fn: sleepFn(rt, loop)})
	ns.Set("resolve", &script.Builtin{Name: "resolve", Fn: resolveFn(rt)})
	ns.Set("log", &script.Builtin{Name: "log", Fn: logFn})
}

// sleepFn suspends the running task for the given number of
// milliseconds. The timer posts the task's wake handle; the loop
// turns that into another step. Resuming early (a stray post) just
// re-arms for the remainder.
func sleepFn(rt *engine.Runtime, loop *reactor.Loop) func(args []script.Value) (script.Value, error) {
	return func(args []script.Value) (script.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("sleep takes 1 argument, got %d", len(args))
		}
		ms, ok := args[0].(script.Int)
		if !ok || ms < 0 {
			return nil, fmt.Errorf("sleep needs a non-negative number of milliseconds")
		}

		t := rt.Active()
		if t == nil {
			return nil, engine.ErrNotInTask
		}
		wake, ok := t.Wake().(*reactor.Event)
		if !ok {
			return nil, engine.ErrNotInTask
		}

		deadline := time.Now().Add(time.Duration(ms) * time.Millisecond)
		for {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return script.Null{}, nil
			}
			timer := loop.After(remaining, wake)
			err := rt.Suspend()
			timer.Stop()
			if err != nil {
				return nil, err
			}
		}
	}
}

// resolveFn resolves a host name through the task's attached resolver
// handle, suspending until the lookup posts the wake. The result is a
// list of address strings.
func resolveFn(rt *engine.Runtime) func(args []script.Value) (script.Value, error) {
	return func(args []script.Value) (script.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("resolve takes 1 argument, got %d", len(args))
		}
		name, ok := args[0].(script.Str)
		if !ok {
			return nil, fmt.Errorf("resolve needs a host name string")
		}

		t := rt.Active()
		if t == nil {
			return nil, engine.ErrNotInTask
		}
		wake, ok := t.Wake().(*reactor.Event)
		if !ok {
			return nil, engine.ErrNotInTask
		}
		handle, timeout := t.Resolver()
		resolver, ok := handle.(*reactor.Resolver)
		if !ok {
			return nil, fmt.Errorf("no resolver configured")
		}

		resolution := resolver.Start(string(name), timeout, wake)
		for !resolution.Done() {
			if err := rt.Suspend(); err != nil {
				return nil, err
			}
		}

		addrs, err := resolution.Result()
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", name, err)
		}
		out := make(script.List, len(addrs))
		for i, a := range addrs {
			out[i] = script.Str(a)
		}
		return out, nil
	}
}

// logFn writes its arguments to the host log. Available in both
// synchronous and task evaluation.
func logFn(args []script.Value) (script.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = script.Render(a)
	}
	slog.Info("script log", "msg", strings.Join(parts, " "))
	return script.Null{}, nil
}
