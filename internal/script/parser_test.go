package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_StatementsSeparatedByNewlines(t *testing.T) {
	prog, err := Compile("let a = 1\nlet b = 2\na + b", "t")
	require.NoError(t, err)
	assert.Len(t, prog.Stmts, 3)
}

func TestCompile_StatementsSeparatedBySemicolons(t *testing.T) {
	prog, err := Compile("let a = 1; let b = 2; a + b", "t")
	require.NoError(t, err)
	assert.Len(t, prog.Stmts, 3)
}

func TestCompile_CommentsIgnored(t *testing.T) {
	prog, err := Compile("# header\nlet a = 1 # trailing\n", "t")
	require.NoError(t, err)
	assert.Len(t, prog.Stmts, 1)
}

func TestCompile_FuncDeclaration(t *testing.T) {
	prog, err := Compile("func f(a, b) {\n\treturn a\n}", "t")
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 1)

	fn, ok := prog.Stmts[0].(*FuncStmt)
	require.True(t, ok)
	assert.Equal(t, "f", fn.Fn.Name)
	assert.Equal(t, []string{"a", "b"}, fn.Fn.Params)
}

func TestCompile_ErrorsAreRaised(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"unclosed block", "if true {"},
		{"unclosed string", `let s = "abc`},
		{"missing operand", "1 +"},
		{"let without name", "let = 1"},
		{"stray closing brace", "}"},
		{"catch without name", "try { 1 } catch { 2 }"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compile(tc.src, "bad.str")
			require.Error(t, err)
			var r *Raised
			require.ErrorAs(t, err, &r)
			assert.Equal(t, "bad.str", r.File)
		})
	}
}

func TestCompile_ErrorLine(t *testing.T) {
	_, err := Compile("let a = 1\nlet b =\n", "t")
	var r *Raised
	require.ErrorAs(t, err, &r)
	assert.Equal(t, 2, r.Line)
}

func TestCompile_NestedExpressions(t *testing.T) {
	_, err := Compile(`let v = {"xs": [1, [2, 3]], "f": g(h(1), 2)}`, "t")
	require.NoError(t, err)
}

func TestCompile_EscapedStrings(t *testing.T) {
	v := mustEval(t, `"a\"b\n"`)
	assert.Equal(t, Str("a\"b\n"), v)
}
