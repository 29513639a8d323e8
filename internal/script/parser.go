package script

import "strconv"

// parser builds an AST from tokens with one token of lookahead.
// Statements are separated by newlines or semicolons; both are
// interchangeable and runs of them collapse.
type parser struct {
	lex  *lexer
	tok  token
	file string
}

func newParser(src, file string) (*parser, error) {
	p := &parser{lex: newLexer(src, file), file: file}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) errf(format string, args ...any) *Raised {
	return NewRaised(p.file, p.tok.line, format, args...)
}

// skipSeparators consumes any run of newlines and semicolons.
func (p *parser) skipSeparators() error {
	for p.tok.kind == tokNewline || p.tok.kind == tokSemi {
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

// skipNewlines consumes newlines only. Used inside bracketed
// constructs where a line break is not a statement boundary.
func (p *parser) skipNewlines() error {
	for p.tok.kind == tokNewline {
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	if p.tok.kind != kind {
		return token{}, p.errf("expected %s, found %q", what, p.tok.text)
	}
	t := p.tok
	if err := p.advance(); err != nil {
		return token{}, err
	}
	return t, nil
}

// parseProgram parses statements until EOF.
func (p *parser) parseProgram() ([]Stmt, error) {
	var stmts []Stmt
	for {
		if err := p.skipSeparators(); err != nil {
			return nil, err
		}
		if p.tok.kind == tokEOF {
			return stmts, nil
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
		if err := p.endOfStmt(); err != nil {
			return nil, err
		}
	}
}

// endOfStmt requires a statement boundary: newline, semicolon, EOF,
// or a closing brace left for the caller.
func (p *parser) endOfStmt() error {
	switch p.tok.kind {
	case tokNewline, tokSemi:
		return p.advance()
	case tokEOF, tokRBrace:
		return nil
	default:
		return p.errf("expected end of statement, found %q", p.tok.text)
	}
}

func (p *parser) parseStmt() (Stmt, error) {
	switch p.tok.kind {
	case tokLet:
		return p.parseLet()
	case tokIf:
		return p.parseIf()
	case tokWhile:
		return p.parseWhile()
	case tokFunc:
		return p.parseFunc()
	case tokReturn:
		return p.parseReturn()
	case tokRaise:
		return p.parseRaise()
	case tokTry:
		return p.parseTry()
	default:
		return p.parseSimple()
	}
}

func (p *parser) parseLet() (Stmt, error) {
	line := p.tok.line
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.expect(tokIdent, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokAssign, `"="`); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &LetStmt{Name: name.text, Expr: e, Line: line}, nil
}

func (p *parser) parseIf() (Stmt, error) {
	line := p.tok.line
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var els []Stmt
	if p.tok.kind == tokElse {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind == tokIf {
			nested, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			els = []Stmt{nested}
		} else {
			els, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		}
	}
	return &IfStmt{Cond: cond, Then: then, Else: els, Line: line}, nil
}

func (p *parser) parseWhile() (Stmt, error) {
	line := p.tok.line
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Cond: cond, Body: body, Line: line}, nil
}

func (p *parser) parseFunc() (Stmt, error) {
	line := p.tok.line
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.expect(tokIdent, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLParen, `"("`); err != nil {
		return nil, err
	}
	var params []string
	for p.tok.kind != tokRParen {
		param, err := p.expect(tokIdent, "parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, param.text)
		if p.tok.kind == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.advance(); err != nil { // ')'
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	fn := &Func{Name: name.text, Params: params, Body: body, File: p.file, Line: line}
	return &FuncStmt{Fn: fn, Line: line}, nil
}

func (p *parser) parseReturn() (Stmt, error) {
	line := p.tok.line
	if err := p.advance(); err != nil {
		return nil, err
	}
	switch p.tok.kind {
	case tokNewline, tokSemi, tokEOF, tokRBrace:
		return &ReturnStmt{Line: line}, nil
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ReturnStmt{Expr: e, Line: line}, nil
}

func (p *parser) parseRaise() (Stmt, error) {
	line := p.tok.line
	if err := p.advance(); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &RaiseStmt{Expr: e, Line: line}, nil
}

func (p *parser) parseTry() (Stmt, error) {
	line := p.tok.line
	if err := p.advance(); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokCatch, `"catch"`); err != nil {
		return nil, err
	}
	name, err := p.expect(tokIdent, "catch variable")
	if err != nil {
		return nil, err
	}
	catch, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &TryStmt{Body: body, CatchName: name.text, Catch: catch, Line: line}, nil
}

// parseSimple parses an expression statement or an assignment.
func (p *parser) parseSimple() (Stmt, error) {
	line := p.tok.line
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind == tokAssign {
		switch e.(type) {
		case *IdentExpr, *IndexExpr:
		default:
			return nil, p.errf("cannot assign to this expression")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &AssignStmt{Target: e, Value: v, Line: line}, nil
	}
	return &ExprStmt{Expr: e, Line: line}, nil
}

func (p *parser) parseBlock() ([]Stmt, error) {
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLBrace, `"{"`); err != nil {
		return nil, err
	}
	var stmts []Stmt
	for {
		if err := p.skipSeparators(); err != nil {
			return nil, err
		}
		if p.tok.kind == tokRBrace {
			if err := p.advance(); err != nil {
				return nil, err
			}
			return stmts, nil
		}
		if p.tok.kind == tokEOF {
			return nil, p.errf(`expected "}"`)
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
		if err := p.endOfStmt(); err != nil {
			return nil, err
		}
	}
}

// Expression grammar, loosest binding first:
//
//	or:      and ("||" and)*
//	and:     cmp ("&&" cmp)*
//	cmp:     add (("=="|"!="|"<"|"<="|">"|">=") add)?
//	add:     mul (("+"|"-") mul)*
//	mul:     unary (("*"|"/"|"%") unary)*
//	unary:   ("-"|"!") unary | postfix
//	postfix: primary ("(" args ")" | "[" expr "]")*
func (p *parser) parseExpr() (Expr, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOr {
		line := p.tok.line
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinExpr{Op: tokOr, L: left, R: right, Line: line}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseCmp()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokAnd {
		line := p.tok.line
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseCmp()
		if err != nil {
			return nil, err
		}
		left = &BinExpr{Op: tokAnd, L: left, R: right, Line: line}
	}
	return left, nil
}

func (p *parser) parseCmp() (Expr, error) {
	left, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	switch p.tok.kind {
	case tokEq, tokNe, tokLt, tokLe, tokGt, tokGe:
		op := p.tok.kind
		line := p.tok.line
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		return &BinExpr{Op: op, L: left, R: right, Line: line}, nil
	}
	return left, nil
}

func (p *parser) parseAdd() (Expr, error) {
	left, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokPlus || p.tok.kind == tokMinus {
		op := p.tok.kind
		line := p.tok.line
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		left = &BinExpr{Op: op, L: left, R: right, Line: line}
	}
	return left, nil
}

func (p *parser) parseMul() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokStar || p.tok.kind == tokSlash || p.tok.kind == tokPercent {
		op := p.tok.kind
		line := p.tok.line
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinExpr{Op: op, L: left, R: right, Line: line}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.tok.kind == tokMinus || p.tok.kind == tokNot {
		op := p.tok.kind
		line := p.tok.line
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op, X: x, Line: line}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.tok.kind {
		case tokLParen:
			line := p.tok.line
			if err := p.advance(); err != nil {
				return nil, err
			}
			var args []Expr
			for {
				if err := p.skipNewlines(); err != nil {
					return nil, err
				}
				if p.tok.kind == tokRParen {
					break
				}
				a, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if err := p.skipNewlines(); err != nil {
					return nil, err
				}
				if p.tok.kind == tokComma {
					if err := p.advance(); err != nil {
						return nil, err
					}
				}
			}
			if err := p.advance(); err != nil { // ')'
				return nil, err
			}
			e = &CallExpr{Callee: e, Args: args, Line: line}
		case tokLBracket:
			line := p.tok.line
			if err := p.advance(); err != nil {
				return nil, err
			}
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokRBracket, `"]"`); err != nil {
				return nil, err
			}
			e = &IndexExpr{Recv: e, Index: idx, Line: line}
		default:
			return e, nil
		}
	}
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.tok
	switch t.kind {
	case tokInt:
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, p.errf("number out of range: %s", t.text)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &LitExpr{Val: Int(n), Line: t.line}, nil
	case tokString:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &LitExpr{Val: Str(t.text), Line: t.line}, nil
	case tokTrue:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &LitExpr{Val: Bool(true), Line: t.line}, nil
	case tokFalse:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &LitExpr{Val: Bool(false), Line: t.line}, nil
	case tokNull:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &LitExpr{Val: Null{}, Line: t.line}, nil
	case tokIdent:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &IdentExpr{Name: t.text, Line: t.line}, nil
	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		return e, nil
	case tokLBracket:
		if err := p.advance(); err != nil {
			return nil, err
		}
		var elems []Expr
		for {
			if err := p.skipNewlines(); err != nil {
				return nil, err
			}
			if p.tok.kind == tokRBracket {
				break
			}
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
			if err := p.skipNewlines(); err != nil {
				return nil, err
			}
			if p.tok.kind == tokComma {
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
		}
		if err := p.advance(); err != nil { // ']'
			return nil, err
		}
		return &ListExpr{Elems: elems, Line: t.line}, nil
	case tokLBrace:
		if err := p.advance(); err != nil {
			return nil, err
		}
		var keys []string
		var vals []Expr
		for {
			if err := p.skipNewlines(); err != nil {
				return nil, err
			}
			if p.tok.kind == tokRBrace {
				break
			}
			var key string
			switch p.tok.kind {
			case tokIdent, tokString:
				key = p.tok.text
			default:
				return nil, p.errf("expected object key, found %q", p.tok.text)
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			if _, err := p.expect(tokColon, `":"`); err != nil {
				return nil, err
			}
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
			vals = append(vals, v)
			if err := p.skipNewlines(); err != nil {
				return nil, err
			}
			if p.tok.kind == tokComma {
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
		}
		if err := p.advance(); err != nil { // '}'
			return nil, err
		}
		return &ObjectExpr{Keys: keys, Vals: vals, Line: t.line}, nil
	}
	return nil, p.errf("unexpected %q", t.text)
}
