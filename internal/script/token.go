package script

import "fmt"

// tokenKind identifies a lexical token.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNewline
	tokIdent
	tokInt
	tokString

	// keywords
	tokLet
	tokIf
	tokElse
	tokWhile
	tokFunc
	tokReturn
	tokRaise
	tokTry
	tokCatch
	tokTrue
	tokFalse
	tokNull

	// punctuation and operators
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokComma
	tokColon
	tokSemi
	tokAssign
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPercent
	tokEq
	tokNe
	tokLt
	tokLe
	tokGt
	tokGe
	tokAnd
	tokOr
	tokNot
)

var keywords = map[string]tokenKind{
	"let":    tokLet,
	"if":     tokIf,
	"else":   tokElse,
	"while":  tokWhile,
	"func":   tokFunc,
	"return": tokReturn,
	"raise":  tokRaise,
	"try":    tokTry,
	"catch":  tokCatch,
	"true":   tokTrue,
	"false":  tokFalse,
	"null":   tokNull,
}

// token is one lexical token with its source line.
type token struct {
	kind tokenKind
	text string
	line int
}

// lexer produces tokens from script source. It is a plain byte
// scanner; scripts are expected to be UTF-8 and the lexer passes
// multi-byte runes through inside strings and identifiers untouched.
type lexer struct {
	file string
	src  string
	pos  int
	line int
}

func newLexer(src, file string) *lexer {
	return &lexer{file: file, src: src, line: 1}
}

func (l *lexer) errf(line int, format string, args ...any) *Raised {
	return NewRaised(l.file, line, format, args...)
}

// next returns the next token, or an error for malformed input.
func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '\n':
			l.pos++
			l.line++
			return token{kind: tokNewline, line: l.line - 1}, nil
		default:
			return l.scan()
		}
	}
	return token{kind: tokEOF, line: l.line}, nil
}

func (l *lexer) scan() (token, error) {
	c := l.src[l.pos]

	if isIdentStart(c) {
		start := l.pos
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		text := l.src[start:l.pos]
		if kw, ok := keywords[text]; ok {
			return token{kind: kw, text: text, line: l.line}, nil
		}
		return token{kind: tokIdent, text: text, line: l.line}, nil
	}

	if c >= '0' && c <= '9' {
		start := l.pos
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			l.pos++
		}
		return token{kind: tokInt, text: l.src[start:l.pos], line: l.line}, nil
	}

	if c == '"' {
		return l.scanString()
	}

	line := l.line
	two := ""
	if l.pos+1 < len(l.src) {
		two = l.src[l.pos : l.pos+2]
	}
	switch two {
	case "==":
		l.pos += 2
		return token{kind: tokEq, text: two, line: line}, nil
	case "!=":
		l.pos += 2
		return token{kind: tokNe, text: two, line: line}, nil
	case "<=":
		l.pos += 2
		return token{kind: tokLe, text: two, line: line}, nil
	case ">=":
		l.pos += 2
		return token{kind: tokGe, text: two, line: line}, nil
	case "&&":
		l.pos += 2
		return token{kind: tokAnd, text: two, line: line}, nil
	case "||":
		l.pos += 2
		return token{kind: tokOr, text: two, line: line}, nil
	}

	l.pos++
	switch c {
	case '(':
		return token{kind: tokLParen, text: "(", line: line}, nil
	case ')':
		return token{kind: tokRParen, text: ")", line: line}, nil
	case '{':
		return token{kind: tokLBrace, text: "{", line: line}, nil
	case '}':
		return token{kind: tokRBrace, text: "}", line: line}, nil
	case '[':
		return token{kind: tokLBracket, text: "[", line: line}, nil
	case ']':
		return token{kind: tokRBracket, text: "]", line: line}, nil
	case ',':
		return token{kind: tokComma, text: ",", line: line}, nil
	case ':':
		return token{kind: tokColon, text: ":", line: line}, nil
	case ';':
		return token{kind: tokSemi, text: ";", line: line}, nil
	case '=':
		return token{kind: tokAssign, text: "=", line: line}, nil
	case '+':
		return token{kind: tokPlus, text: "+", line: line}, nil
	case '-':
		return token{kind: tokMinus, text: "-", line: line}, nil
	case '*':
		return token{kind: tokStar, text: "*", line: line}, nil
	case '/':
		return token{kind: tokSlash, text: "/", line: line}, nil
	case '%':
		return token{kind: tokPercent, text: "%", line: line}, nil
	case '<':
		return token{kind: tokLt, text: "<", line: line}, nil
	case '>':
		return token{kind: tokGt, text: ">", line: line}, nil
	case '!':
		return token{kind: tokNot, text: "!", line: line}, nil
	}
	return token{}, l.errf(line, "unexpected character %q", string(c))
}

func (l *lexer) scanString() (token, error) {
	line := l.line
	l.pos++ // opening quote
	var out []byte
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case '"':
			l.pos++
			return token{kind: tokString, text: string(out), line: line}, nil
		case '\n':
			return token{}, l.errf(line, "unterminated string")
		case '\\':
			if l.pos+1 >= len(l.src) {
				return token{}, l.errf(line, "unterminated string")
			}
			l.pos++
			switch e := l.src[l.pos]; e {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case '"':
				out = append(out, '"')
			case '\\':
				out = append(out, '\\')
			default:
				return token{}, l.errf(line, "unknown escape %q", string(e))
			}
			l.pos++
		default:
			out = append(out, c)
			l.pos++
		}
	}
	return token{}, l.errf(line, "unterminated string")
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokNewline:
		return "newline"
	case tokIdent:
		return "identifier"
	case tokInt:
		return "number"
	case tokString:
		return "string"
	default:
		return fmt.Sprintf("token(%d)", int(k))
	}
}
