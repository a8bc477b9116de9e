package jmespath

import "fmt"

// TokenType is the closed set of lexical categories produced by the lexer.
type TokenType int

const (
	tEOF TokenType = iota
	tIdentifier
	tNumber
	tLiteral
	tDot
	tStar
	tLbracket
	tRbracket
	tLbrace
	tRbrace
	tColon
	tComma
	tPipe
	tOr
	tOperator
	tFunction
	tFilter
	tMerge
	tAt
	tLparen
	tRparen
)

func (t TokenType) String() string {
	switch t {
	case tEOF:
		return "eof"
	case tIdentifier:
		return "identifier"
	case tNumber:
		return "number"
	case tLiteral:
		return "literal"
	case tDot:
		return "dot"
	case tStar:
		return "star"
	case tLbracket:
		return "lbracket"
	case tRbracket:
		return "rbracket"
	case tLbrace:
		return "lbrace"
	case tRbrace:
		return "rbrace"
	case tColon:
		return "colon"
	case tComma:
		return "comma"
	case tPipe:
		return "pipe"
	case tOr:
		return "or"
	case tOperator:
		return "operator"
	case tFunction:
		return "function"
	case tFilter:
		return "filter"
	case tMerge:
		return "merge"
	case tAt:
		return "at"
	case tLparen:
		return "lparen"
	case tRparen:
		return "rparen"
	default:
		return fmt.Sprintf("tokentype(%d)", int(t))
	}
}

// Token is an immutable record produced by the lexer. Value holds the
// decoded payload for identifier, literal, number and operator tokens;
// it is unused (nil) for purely structural tokens such as dot or comma.
type Token struct {
	Type     TokenType
	Value    any
	Raw      string
	Position int
}

func (t Token) String() string {
	if t.Raw != "" {
		return fmt.Sprintf("%s(%q)@%d", t.Type, t.Raw, t.Position)
	}
	return fmt.Sprintf("%s@%d", t.Type, t.Position)
}

// eofToken is returned by the token stream past end-of-input; its value is
// empty per the lexer contract in spec.md §6.
var eofToken = Token{Type: tEOF}
