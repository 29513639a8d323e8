package script

// Stmt is a sealed interface over statement nodes.
type Stmt interface {
	stmtNode()
}

// Expr is a sealed interface over expression nodes.
type Expr interface {
	exprNode()
	pos() int
}

// LetStmt introduces or rebinds a name: let x = expr.
type LetStmt struct {
	Name string
	Expr Expr
	Line int
}

// AssignStmt assigns to an existing name or an index target.
type AssignStmt struct {
	Target Expr // IdentExpr or IndexExpr
	Value  Expr
	Line   int
}

// IfStmt is a conditional with an optional else block.
type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
	Line int
}

// WhileStmt is a pre-tested loop.
type WhileStmt struct {
	Cond Expr
	Body []Stmt
	Line int
}

// FuncStmt binds a function definition in the enclosing namespace.
type FuncStmt struct {
	Fn   *Func
	Line int
}

// ReturnStmt leaves the current function. Expr may be nil.
type ReturnStmt struct {
	Expr Expr
	Line int
}

// RaiseStmt raises a script error built from its expression.
type RaiseStmt struct {
	Expr Expr
	Line int
}

// TryStmt runs Body; a raise inside it transfers to Catch with the
// error's message bound to CatchName.
type TryStmt struct {
	Body      []Stmt
	CatchName string
	Catch     []Stmt
	Line      int
}

// ExprStmt evaluates an expression for its effect. Its value becomes
// the program result when it is the last statement executed.
type ExprStmt struct {
	Expr Expr
	Line int
}

func (*LetStmt) stmtNode()    {}
func (*AssignStmt) stmtNode() {}
func (*IfStmt) stmtNode()     {}
func (*WhileStmt) stmtNode()  {}
func (*FuncStmt) stmtNode()   {}
func (*ReturnStmt) stmtNode() {}
func (*RaiseStmt) stmtNode()  {}
func (*TryStmt) stmtNode()    {}
func (*ExprStmt) stmtNode()   {}

// LitExpr is a literal value.
type LitExpr struct {
	Val  Value
	Line int
}

// IdentExpr reads a name from the namespace or current locals.
type IdentExpr struct {
	Name string
	Line int
}

// CallExpr calls a function or builtin.
type CallExpr struct {
	Callee Expr
	Args   []Expr
	Line   int
}

// IndexExpr reads an element of a list or object.
type IndexExpr struct {
	Recv  Expr
	Index Expr
	Line  int
}

// BinExpr is a binary operator application.
type BinExpr struct {
	Op   tokenKind
	L, R Expr
	Line int
}

// UnaryExpr is a unary operator application (- or !).
type UnaryExpr struct {
	Op   tokenKind
	X    Expr
	Line int
}

// ListExpr is a list literal.
type ListExpr struct {
	Elems []Expr
	Line  int
}

// ObjectExpr is an object literal with ordered keys.
type ObjectExpr struct {
	Keys []string
	Vals []Expr
	Line int
}

func (*LitExpr) exprNode()    {}
func (*IdentExpr) exprNode()  {}
func (*CallExpr) exprNode()   {}
func (*IndexExpr) exprNode()  {}
func (*BinExpr) exprNode()    {}
func (*UnaryExpr) exprNode()  {}
func (*ListExpr) exprNode()   {}
func (*ObjectExpr) exprNode() {}

func (e *LitExpr) pos() int    { return e.Line }
func (e *IdentExpr) pos() int  { return e.Line }
func (e *CallExpr) pos() int   { return e.Line }
func (e *IndexExpr) pos() int  { return e.Line }
func (e *BinExpr) pos() int    { return e.Line }
func (e *UnaryExpr) pos() int  { return e.Line }
func (e *ListExpr) pos() int   { return e.Line }
func (e *ObjectExpr) pos() int { return e.Line }
