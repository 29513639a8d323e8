package script

import "fmt"

// Program is a compiled script body. Programs are immutable after
// compilation and may be evaluated any number of times.
type Program struct {
	File  string
	Stmts []Stmt
}

// Compile parses src into a Program. The file name is recorded for
// source locations; for inline sources callers pass a synthetic name
// such as "strand.yaml:12". Parse failures come back as *Raised with
// the offending location.
func Compile(src, file string) (*Program, error) {
	p, err := newParser(src, file)
	if err != nil {
		return nil, err
	}
	stmts, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	return &Program{File: file, Stmts: stmts}, nil
}

// Eval runs the program against ns using th as the live interpreter
// state. The result is the value of the last expression statement
// executed, or Null when there is none. A script failure is returned
// as *Raised and also left in th.Pending, mirroring how the thread's
// error slot tracks an in-flight error.
func (p *Program) Eval(th *Thread, ns *Namespace) (Value, error) {
	ev := &evaluator{th: th, ns: ns, file: p.File}

	frame := th.push("", p.File, 0)
	if frame == nil {
		r := NewRaised(p.File, 0, "maximum recursion depth exceeded")
		th.Pending = r
		return nil, r
	}
	defer th.pop()

	var last Value = Null{}
	for _, s := range p.Stmts {
		v, err := ev.execStmt(s, nil)
		if err != nil {
			if _, ok := err.(returnSignal); ok {
				return nil, ev.raisef(0, "return outside function")
			}
			return nil, err
		}
		if v != nil {
			last = v
		}
	}
	return last, nil
}

// evaluator walks the AST. Statement and expression methods carry a
// locals map: nil at top level, where names live directly in the
// namespace, and a per-call binding map inside a function.
type evaluator struct {
	th   *Thread
	ns   *Namespace
	file string
}

// returnSignal unwinds a function body on return. It is internal
// control flow, never surfaced to callers.
type returnSignal struct {
	val Value
}

func (returnSignal) Error() string { return "return outside function" }

// raise records r as the thread's pending error and returns it.
func (ev *evaluator) raise(r *Raised) error {
	if len(r.Trace) == 0 {
		r.Trace = ev.th.trace()
	}
	ev.th.Pending = r
	return r
}

func (ev *evaluator) raisef(line int, format string, args ...any) error {
	return ev.raise(NewRaised(ev.file, line, format, args...))
}

// execStmt executes one statement. The returned value is non-nil only
// for expression statements; the driver keeps the last one as the
// program result.
func (ev *evaluator) execStmt(s Stmt, locals map[string]Value) (Value, error) {
	switch st := s.(type) {
	case *LetStmt:
		ev.mark(st.Line)
		v, err := ev.eval(st.Expr, locals)
		if err != nil {
			return nil, err
		}
		if locals != nil {
			locals[st.Name] = v
		} else {
			ev.ns.Set(st.Name, v)
		}
		return nil, nil

	case *AssignStmt:
		ev.mark(st.Line)
		return nil, ev.execAssign(st, locals)

	case *IfStmt:
		ev.mark(st.Line)
		cond, err := ev.eval(st.Cond, locals)
		if err != nil {
			return nil, err
		}
		if Truthy(cond) {
			return ev.execBlock(st.Then, locals)
		}
		return ev.execBlock(st.Else, locals)

	case *WhileStmt:
		for {
			ev.mark(st.Line)
			cond, err := ev.eval(st.Cond, locals)
			if err != nil {
				return nil, err
			}
			if !Truthy(cond) {
				return nil, nil
			}
			if _, err := ev.execBlock(st.Body, locals); err != nil {
				return nil, err
			}
		}

	case *FuncStmt:
		if locals != nil {
			locals[st.Fn.Name] = st.Fn
		} else {
			ev.ns.Set(st.Fn.Name, st.Fn)
		}
		return nil, nil

	case *ReturnStmt:
		ev.mark(st.Line)
		var v Value = Null{}
		if st.Expr != nil {
			var err error
			v, err = ev.eval(st.Expr, locals)
			if err != nil {
				return nil, err
			}
		}
		return nil, returnSignal{val: v}

	case *RaiseStmt:
		ev.mark(st.Line)
		v, err := ev.eval(st.Expr, locals)
		if err != nil {
			return nil, err
		}
		return nil, ev.raisef(st.Line, "%s", Render(v))

	case *TryStmt:
		_, err := ev.execBlock(st.Body, locals)
		if err == nil {
			return nil, nil
		}
		if _, ok := err.(returnSignal); ok {
			return nil, err
		}
		r := raisedFrom(err, ev.file, st.Line)
		// caught: the pending slot clears before the handler runs
		ev.th.Pending = nil
		if locals != nil {
			locals[st.CatchName] = Str(r.Message)
		} else {
			ev.ns.Set(st.CatchName, Str(r.Message))
		}
		return ev.execBlock(st.Catch, locals)

	case *ExprStmt:
		ev.mark(st.Line)
		return ev.eval(st.Expr, locals)

	default:
		return nil, fmt.Errorf("unknown statement %T", s)
	}
}

// mark keeps the live frame's line current so traces point at the
// statement being executed.
func (ev *evaluator) mark(line int) {
	if ev.th.Frame != nil {
		ev.th.Frame.Line = line
	}
}

func (ev *evaluator) execBlock(stmts []Stmt, locals map[string]Value) (Value, error) {
	var last Value
	for _, s := range stmts {
		v, err := ev.execStmt(s, locals)
		if err != nil {
			return nil, err
		}
		if v != nil {
			last = v
		}
	}
	return last, nil
}

func (ev *evaluator) execAssign(st *AssignStmt, locals map[string]Value) error {
	v, err := ev.eval(st.Value, locals)
	if err != nil {
		return err
	}
	switch target := st.Target.(type) {
	case *IdentExpr:
		if locals != nil {
			if _, ok := locals[target.Name]; ok {
				locals[target.Name] = v
				return nil
			}
		}
		if _, ok := ev.ns.Get(target.Name); ok {
			ev.ns.Set(target.Name, v)
			return nil
		}
		return ev.raisef(st.Line, "assignment to undefined name %q", target.Name)

	case *IndexExpr:
		recv, err := ev.eval(target.Recv, locals)
		if err != nil {
			return err
		}
		idx, err := ev.eval(target.Index, locals)
		if err != nil {
			return err
		}
		switch r := recv.(type) {
		case List:
			i, ok := idx.(Int)
			if !ok {
				return ev.raisef(st.Line, "list index must be a number")
			}
			if i < 0 || int(i) >= len(r) {
				return ev.raisef(st.Line, "list index %d out of range", i)
			}
			r[i] = v
			return nil
		case Object:
			k, ok := idx.(Str)
			if !ok {
				return ev.raisef(st.Line, "object key must be a string")
			}
			r[string(k)] = v
			return nil
		default:
			return ev.raisef(st.Line, "cannot index into %s", typeName(recv))
		}

	default:
		return ev.raisef(st.Line, "cannot assign to this expression")
	}
}

func (ev *evaluator) eval(e Expr, locals map[string]Value) (Value, error) {
	switch x := e.(type) {
	case *LitExpr:
		return x.Val, nil

	case *IdentExpr:
		if locals != nil {
			if v, ok := locals[x.Name]; ok {
				return v, nil
			}
		}
		if v, ok := ev.ns.Get(x.Name); ok {
			return v, nil
		}
		return nil, ev.raisef(x.Line, "undefined name %q", x.Name)

	case *CallExpr:
		return ev.evalCall(x, locals)

	case *IndexExpr:
		recv, err := ev.eval(x.Recv, locals)
		if err != nil {
			return nil, err
		}
		idx, err := ev.eval(x.Index, locals)
		if err != nil {
			return nil, err
		}
		switch r := recv.(type) {
		case List:
			i, ok := idx.(Int)
			if !ok {
				return nil, ev.raisef(x.Line, "list index must be a number")
			}
			if i < 0 || int(i) >= len(r) {
				return nil, ev.raisef(x.Line, "list index %d out of range", i)
			}
			return r[i], nil
		case Object:
			k, ok := idx.(Str)
			if !ok {
				return nil, ev.raisef(x.Line, "object key must be a string")
			}
			v, ok := r[string(k)]
			if !ok {
				return Null{}, nil
			}
			return v, nil
		case Str:
			i, ok := idx.(Int)
			if !ok {
				return nil, ev.raisef(x.Line, "string index must be a number")
			}
			if i < 0 || int(i) >= len(r) {
				return nil, ev.raisef(x.Line, "string index %d out of range", i)
			}
			return Str(r[i : i+1]), nil
		default:
			return nil, ev.raisef(x.Line, "cannot index into %s", typeName(recv))
		}

	case *BinExpr:
		return ev.evalBinary(x, locals)

	case *UnaryExpr:
		v, err := ev.eval(x.X, locals)
		if err != nil {
			return nil, err
		}
		switch x.Op {
		case tokMinus:
			n, ok := v.(Int)
			if !ok {
				return nil, ev.raisef(x.Line, "unary - needs a number, got %s", typeName(v))
			}
			return -n, nil
		case tokNot:
			return Bool(!Truthy(v)), nil
		}
		return nil, ev.raisef(x.Line, "unknown unary operator")

	case *ListExpr:
		out := make(List, len(x.Elems))
		for i, el := range x.Elems {
			v, err := ev.eval(el, locals)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case *ObjectExpr:
		out := make(Object, len(x.Keys))
		for i, k := range x.Keys {
			v, err := ev.eval(x.Vals[i], locals)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unknown expression %T", e)
	}
}

func (ev *evaluator) evalCall(x *CallExpr, locals map[string]Value) (Value, error) {
	callee, err := ev.eval(x.Callee, locals)
	if err != nil {
		return nil, err
	}
	args := make([]Value, len(x.Args))
	for i, a := range x.Args {
		v, err := ev.eval(a, locals)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	switch fn := callee.(type) {
	case *Builtin:
		v, err := fn.Fn(args)
		if err != nil {
			return nil, ev.raise(raisedFrom(err, ev.file, x.Line))
		}
		if v == nil {
			v = Null{}
		}
		return v, nil

	case *Func:
		if len(args) != len(fn.Params) {
			return nil, ev.raisef(x.Line, "%s takes %d arguments, got %d",
				fn.Name, len(fn.Params), len(args))
		}
		frame := ev.th.push(fn.Name, fn.File, fn.Line)
		if frame == nil {
			return nil, ev.raisef(x.Line, "maximum recursion depth exceeded")
		}
		defer ev.th.pop()

		callLocals := make(map[string]Value, len(fn.Params))
		for i, p := range fn.Params {
			callLocals[p] = args[i]
		}
		_, err := ev.execBlock(fn.Body, callLocals)
		if err != nil {
			if ret, ok := err.(returnSignal); ok {
				return ret.val, nil
			}
			return nil, err
		}
		return Null{}, nil

	default:
		return nil, ev.raisef(x.Line, "%s is not callable", typeName(callee))
	}
}

func (ev *evaluator) evalBinary(x *BinExpr, locals map[string]Value) (Value, error) {
	// && and || short-circuit
	switch x.Op {
	case tokAnd:
		l, err := ev.eval(x.L, locals)
		if err != nil {
			return nil, err
		}
		if !Truthy(l) {
			return Bool(false), nil
		}
		r, err := ev.eval(x.R, locals)
		if err != nil {
			return nil, err
		}
		return Bool(Truthy(r)), nil
	case tokOr:
		l, err := ev.eval(x.L, locals)
		if err != nil {
			return nil, err
		}
		if Truthy(l) {
			return Bool(true), nil
		}
		r, err := ev.eval(x.R, locals)
		if err != nil {
			return nil, err
		}
		return Bool(Truthy(r)), nil
	}

	l, err := ev.eval(x.L, locals)
	if err != nil {
		return nil, err
	}
	r, err := ev.eval(x.R, locals)
	if err != nil {
		return nil, err
	}

	switch x.Op {
	case tokEq:
		return Bool(Equal(l, r)), nil
	case tokNe:
		return Bool(!Equal(l, r)), nil
	}

	// + concatenates strings and lists
	if x.Op == tokPlus {
		if ls, ok := l.(Str); ok {
			if rs, ok := r.(Str); ok {
				return ls + rs, nil
			}
		}
		if ll, ok := l.(List); ok {
			if rl, ok := r.(List); ok {
				out := make(List, 0, len(ll)+len(rl))
				out = append(out, ll...)
				out = append(out, rl...)
				return out, nil
			}
		}
	}

	ln, lok := l.(Int)
	rn, rok := r.(Int)
	if !lok || !rok {
		return nil, ev.raisef(x.Line, "operator %q needs numbers, got %s and %s",
			opText(x.Op), typeName(l), typeName(r))
	}

	switch x.Op {
	case tokPlus:
		return ln + rn, nil
	case tokMinus:
		return ln - rn, nil
	case tokStar:
		return ln * rn, nil
	case tokSlash:
		if rn == 0 {
			return nil, ev.raisef(x.Line, "division by zero")
		}
		return ln / rn, nil
	case tokPercent:
		if rn == 0 {
			return nil, ev.raisef(x.Line, "division by zero")
		}
		return ln % rn, nil
	case tokLt:
		return Bool(ln < rn), nil
	case tokLe:
		return Bool(ln <= rn), nil
	case tokGt:
		return Bool(ln > rn), nil
	case tokGe:
		return Bool(ln >= rn), nil
	}
	return nil, ev.raisef(x.Line, "unknown operator")
}

func typeName(v Value) string {
	switch v.(type) {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "number"
	case Str:
		return "string"
	case List:
		return "list"
	case Object:
		return "object"
	case *Func:
		return "function"
	case *Builtin:
		return "builtin"
	default:
		return "value"
	}
}

func opText(k tokenKind) string {
	switch k {
	case tokPlus:
		return "+"
	case tokMinus:
		return "-"
	case tokStar:
		return "*"
	case tokSlash:
		return "/"
	case tokPercent:
		return "%"
	case tokLt:
		return "<"
	case tokLe:
		return "<="
	case tokGt:
		return ">"
	case tokGe:
		return ">="
	default:
		return "?"
	}
}
