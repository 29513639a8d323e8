package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalSrc(t *testing.T, src string) (Value, error) {
	t.Helper()
	prog, err := Compile(src, "test.str")
	require.NoError(t, err)
	ns := NewNamespace()
	RegisterCore(ns)
	return prog.Eval(NewThread(256), ns)
}

func mustEval(t *testing.T, src string) Value {
	t.Helper()
	v, err := evalSrc(t, src)
	require.NoError(t, err)
	return v
}

func TestEval_Literals(t *testing.T) {
	assert.Equal(t, Int(42), mustEval(t, "42"))
	assert.Equal(t, Str("hi"), mustEval(t, `"hi"`))
	assert.Equal(t, Bool(true), mustEval(t, "true"))
	assert.Equal(t, Null{}, mustEval(t, "null"))
}

func TestEval_Arithmetic(t *testing.T) {
	assert.Equal(t, Int(7), mustEval(t, "1 + 2 * 3"))
	assert.Equal(t, Int(9), mustEval(t, "(1 + 2) * 3"))
	assert.Equal(t, Int(2), mustEval(t, "7 % 5"))
	assert.Equal(t, Int(-4), mustEval(t, "-4"))
	assert.Equal(t, Str("ab"), mustEval(t, `"a" + "b"`))
}

func TestEval_DivisionByZero(t *testing.T) {
	_, err := evalSrc(t, "1 / 0")
	require.Error(t, err)
	var r *Raised
	require.ErrorAs(t, err, &r)
	assert.Contains(t, r.Message, "division by zero")
	assert.Equal(t, "test.str", r.File)
	assert.Equal(t, 1, r.Line)
}

func TestEval_Comparison(t *testing.T) {
	assert.Equal(t, Bool(true), mustEval(t, "1 < 2"))
	assert.Equal(t, Bool(false), mustEval(t, "2 <= 1"))
	assert.Equal(t, Bool(true), mustEval(t, `"a" == "a"`))
	assert.Equal(t, Bool(true), mustEval(t, "[1, 2] == [1, 2]"))
	assert.Equal(t, Bool(true), mustEval(t, "1 != 2"))
}

func TestEval_ShortCircuit(t *testing.T) {
	// the right side would raise if evaluated
	assert.Equal(t, Bool(false), mustEval(t, "false && (1 / 0)"))
	assert.Equal(t, Bool(true), mustEval(t, "true || (1 / 0)"))
}

func TestEval_LetAndAssign(t *testing.T) {
	v := mustEval(t, `
let x = 1
x = x + 2
x
`)
	assert.Equal(t, Int(3), v)
}

func TestEval_TopLevelNamesLandInNamespace(t *testing.T) {
	prog, err := Compile("let x = 5", "test.str")
	require.NoError(t, err)
	ns := NewNamespace()
	_, err = prog.Eval(NewThread(256), ns)
	require.NoError(t, err)

	v, ok := ns.Get("x")
	require.True(t, ok)
	assert.Equal(t, Int(5), v)
}

func TestEval_UndefinedName(t *testing.T) {
	_, err := evalSrc(t, "nope")
	var r *Raised
	require.ErrorAs(t, err, &r)
	assert.Contains(t, r.Message, `undefined name "nope"`)
}

func TestEval_IfElse(t *testing.T) {
	v := mustEval(t, `
let x = 0
if 1 < 2 {
	x = 10
} else {
	x = 20
}
x
`)
	assert.Equal(t, Int(10), v)
}

func TestEval_ElseIfChain(t *testing.T) {
	v := mustEval(t, `
let x = 5
let out = ""
if x < 3 {
	out = "low"
} else if x < 10 {
	out = "mid"
} else {
	out = "high"
}
out
`)
	assert.Equal(t, Str("mid"), v)
}

func TestEval_While(t *testing.T) {
	v := mustEval(t, `
let sum = 0
let i = 1
while i <= 10 {
	sum = sum + i
	i = i + 1
}
sum
`)
	assert.Equal(t, Int(55), v)
}

func TestEval_Function(t *testing.T) {
	v := mustEval(t, `
func add(a, b) {
	return a + b
}
add(2, 3)
`)
	assert.Equal(t, Int(5), v)
}

func TestEval_FunctionWithoutReturnYieldsNull(t *testing.T) {
	v := mustEval(t, `
func noop() {
	let x = 1
}
noop()
`)
	assert.Equal(t, Null{}, v)
}

func TestEval_Recursion(t *testing.T) {
	v := mustEval(t, `
func fib(n) {
	if n < 2 {
		return n
	}
	return fib(n - 1) + fib(n - 2)
}
fib(10)
`)
	assert.Equal(t, Int(55), v)
}

func TestEval_ArityMismatch(t *testing.T) {
	_, err := evalSrc(t, `
func f(a) {
	return a
}
f(1, 2)
`)
	var r *Raised
	require.ErrorAs(t, err, &r)
	assert.Contains(t, r.Message, "takes 1 arguments, got 2")
}

func TestEval_RecursionLimit(t *testing.T) {
	prog, err := Compile(`
func spin() {
	return spin()
}
spin()
`, "test.str")
	require.NoError(t, err)

	ns := NewNamespace()
	th := NewThread(8)
	_, err = prog.Eval(th, ns)
	var r *Raised
	require.ErrorAs(t, err, &r)
	assert.Contains(t, r.Message, "maximum recursion depth exceeded")
	// the unwind restores the depth to zero
	assert.Equal(t, 0, th.Depth)
}

func TestEval_LocalsShadowNamespace(t *testing.T) {
	v := mustEval(t, `
let x = 1
func f(x) {
	return x * 10
}
f(5) + x
`)
	assert.Equal(t, Int(51), v)
}

func TestEval_RaiseAndCatch(t *testing.T) {
	v := mustEval(t, `
let msg = ""
try {
	raise "boom"
} catch e {
	msg = e
}
msg
`)
	assert.Equal(t, Str("boom"), v)
}

func TestEval_CatchClearsPending(t *testing.T) {
	prog, err := Compile(`
try {
	raise "boom"
} catch e {
	let ok = 1
}
`, "test.str")
	require.NoError(t, err)

	th := NewThread(256)
	_, err = prog.Eval(th, NewNamespace())
	require.NoError(t, err)
	assert.Nil(t, th.Pending)
}

func TestEval_UncaughtRaiseLeavesPending(t *testing.T) {
	prog, err := Compile(`raise "boom"`, "test.str")
	require.NoError(t, err)

	th := NewThread(256)
	_, err = prog.Eval(th, NewNamespace())
	require.Error(t, err)
	require.NotNil(t, th.Pending)
	assert.Equal(t, "boom", th.Pending.Message)
}

func TestEval_ReturnOutsideFunction(t *testing.T) {
	_, err := evalSrc(t, "return 1")
	var r *Raised
	require.ErrorAs(t, err, &r)
	assert.Contains(t, r.Message, "return outside function")
}

func TestEval_ReturnNotCaughtByTry(t *testing.T) {
	v := mustEval(t, `
func f() {
	try {
		return 1
	} catch e {
		return 2
	}
}
f()
`)
	assert.Equal(t, Int(1), v)
}

func TestEval_ListIndex(t *testing.T) {
	assert.Equal(t, Int(2), mustEval(t, "[1, 2, 3][1]"))

	_, err := evalSrc(t, "[1][5]")
	var r *Raised
	require.ErrorAs(t, err, &r)
	assert.Contains(t, r.Message, "out of range")
}

func TestEval_ObjectIndex(t *testing.T) {
	v := mustEval(t, `
let o = {"a": 1, "b": 2}
o["a"]
`)
	assert.Equal(t, Int(1), v)

	// missing keys read as null
	assert.Equal(t, Null{}, mustEval(t, `{"a": 1}["z"]`))
}

func TestEval_IndexAssignment(t *testing.T) {
	v := mustEval(t, `
let xs = [1, 2, 3]
xs[0] = 9
let o = {}
o["k"] = "v"
[xs[0], o["k"]]
`)
	assert.Equal(t, List{Int(9), Str("v")}, v)
}

func TestEval_Builtins(t *testing.T) {
	assert.Equal(t, Int(3), mustEval(t, `len([1, 2, 3])`))
	assert.Equal(t, Int(2), mustEval(t, `len("ab")`))
	assert.Equal(t, Str("42"), mustEval(t, `str(42)`))
	assert.Equal(t, List{Int(1), Int(2)}, mustEval(t, `push([1], 2)`))
	assert.Equal(t, List{Str("a"), Str("b")}, mustEval(t, `keys({"b": 1, "a": 2})`))
}

func TestEval_BuiltinErrorCarriesCallSite(t *testing.T) {
	_, err := evalSrc(t, "\n\nlen(5)")
	var r *Raised
	require.ErrorAs(t, err, &r)
	assert.Equal(t, "test.str", r.File)
	assert.Equal(t, 3, r.Line)
}

func TestEval_LastExpressionWins(t *testing.T) {
	v := mustEval(t, `
1 + 1
let x = 99
"final"
`)
	assert.Equal(t, Str("final"), v)
}

func TestEval_EmptyProgramIsNull(t *testing.T) {
	assert.Equal(t, Null{}, mustEval(t, ""))
	assert.Equal(t, Null{}, mustEval(t, "# just a comment"))
}

func TestEval_ProgramReusableAcrossNamespaces(t *testing.T) {
	prog, err := Compile("let x = 1\nx + 1", "test.str")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		ns := NewNamespace()
		v, err := prog.Eval(NewThread(256), ns)
		require.NoError(t, err)
		assert.Equal(t, Int(2), v)
	}
}
