package script

import (
	"fmt"
	"sync/atomic"
)

// namespace names are generated from a process-wide counter so every
// configured script block gets isolated global bindings.
var nsCounter atomic.Uint64

// Namespace is a dictionary-like container of global bindings. The
// engine treats namespaces as opaque handles; only the evaluator and
// host glue interpret their contents.
type Namespace struct {
	name string
	vars map[string]Value
}

// NewNamespace creates an empty namespace with a unique generated
// name.
func NewNamespace() *Namespace {
	return &Namespace{
		name: fmt.Sprintf("ns%d", nsCounter.Add(1)),
		vars: make(map[string]Value),
	}
}

// Name returns the namespace's generated name. Used in logs.
func (ns *Namespace) Name() string {
	return ns.name
}

// Get returns the binding for name and whether it exists.
func (ns *Namespace) Get(name string) (Value, bool) {
	v, ok := ns.vars[name]
	return v, ok
}

// Set binds name to v, replacing any previous binding.
func (ns *Namespace) Set(name string, v Value) {
	ns.vars[name] = v
}

// Delete removes the binding for name if present.
func (ns *Namespace) Delete(name string) {
	delete(ns.vars, name)
}

// Len returns the number of bindings.
func (ns *Namespace) Len() int {
	return len(ns.vars)
}
