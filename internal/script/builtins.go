package script

import (
	"fmt"
	"sort"
)

// RegisterCore installs the language's own small builtin set into ns.
// Host-level builtins (sleep, resolve, log) are installed separately
// by the host glue; these are the ones every namespace gets.
func RegisterCore(ns *Namespace) {
	ns.Set("len", &Builtin{Name: "len", Fn: builtinLen})
	ns.Set("str", &Builtin{Name: "str", Fn: builtinStr})
	ns.Set("push", &Builtin{Name: "push", Fn: builtinPush})
	ns.Set("keys", &Builtin{Name: "keys", Fn: builtinKeys})
}

func builtinLen(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("len takes 1 argument, got %d", len(args))
	}
	switch v := args[0].(type) {
	case Str:
		return Int(len(v)), nil
	case List:
		return Int(len(v)), nil
	case Object:
		return Int(len(v)), nil
	default:
		return nil, fmt.Errorf("len needs a string, list, or object, got %s", typeName(args[0]))
	}
}

func builtinStr(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("str takes 1 argument, got %d", len(args))
	}
	return Str(Render(args[0])), nil
}

// builtinPush returns a new list with the value appended; the input
// list is never mutated.
func builtinPush(args []Value) (Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("push takes 2 arguments, got %d", len(args))
	}
	l, ok := args[0].(List)
	if !ok {
		return nil, fmt.Errorf("push needs a list, got %s", typeName(args[0]))
	}
	out := make(List, 0, len(l)+1)
	out = append(out, l...)
	out = append(out, args[1])
	return out, nil
}

func builtinKeys(args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("keys takes 1 argument, got %d", len(args))
	}
	o, ok := args[0].(Object)
	if !ok {
		return nil, fmt.Errorf("keys needs an object, got %s", typeName(args[0]))
	}
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(List, 0, len(keys))
	for _, k := range keys {
		out = append(out, Str(k))
	}
	return out, nil
}
