package script

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Value is a sealed interface over the types a script expression can
// produce. Only Null, Bool, Int, Str, List, Object, Func, and Builtin
// implement it.
type Value interface {
	scriptValue() // sealed
}

// Null represents the absence of a value.
type Null struct{}

func (Null) scriptValue() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) scriptValue() {}

// Int represents an integer value. Script numbers are always int64.
type Int int64

func (Int) scriptValue() {}

// Str represents a string value.
type Str string

func (Str) scriptValue() {}

// List represents an ordered sequence of values.
type List []Value

func (List) scriptValue() {}

// Object represents a map of string keys to values.
type Object map[string]Value

func (Object) scriptValue() {}

// Func is a script-defined function. Calling one pushes a frame and
// counts against the thread's recursion limit.
type Func struct {
	Name   string
	Params []string
	Body   []Stmt
	File   string
	Line   int
}

func (*Func) scriptValue() {}

// Builtin is a host-provided function. Builtins may block the script
// by suspending the surrounding task; the evaluator treats them as
// opaque calls.
type Builtin struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

func (*Builtin) scriptValue() {}

// Truthy reports whether v counts as true in a condition.
// Null, false, 0, "", and empty lists/objects are false.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case Null:
		return false
	case Bool:
		return bool(x)
	case Int:
		return x != 0
	case Str:
		return x != ""
	case List:
		return len(x) > 0
	case Object:
		return len(x) > 0
	default:
		return true
	}
}

// Equal reports deep equality of two values. Functions and builtins
// compare by identity.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Int:
		y, ok := b.(Int)
		return ok && x == y
	case Str:
		y, ok := b.(Str)
		return ok && x == y
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Object:
		y, ok := b.(Object)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, v := range x {
			w, present := y[k]
			if !present || !Equal(v, w) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// Render produces a human-readable representation of v for logs and
// the REPL. Object keys are rendered in sorted order so output is
// deterministic.
func Render(v Value) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case Null:
		return "null"
	case Bool:
		if x {
			return "true"
		}
		return "false"
	case Int:
		return strconv.FormatInt(int64(x), 10)
	case Str:
		return string(x)
	case List:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = renderQuoted(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Object:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + renderQuoted(x[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *Func:
		return fmt.Sprintf("func %s/%d", x.Name, len(x.Params))
	case *Builtin:
		return fmt.Sprintf("builtin %s", x.Name)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// renderQuoted is Render except strings gain quotes, so nested values
// stay unambiguous.
func renderQuoted(v Value) string {
	if s, ok := v.(Str); ok {
		return strconv.Quote(string(s))
	}
	return Render(v)
}
