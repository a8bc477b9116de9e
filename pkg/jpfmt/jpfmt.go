// Package jpfmt is a canonical source formatter for JMESPath expressions,
// grounded on the teacher's pkg/jqfmt package. Unlike jqfmt (which
// round-trips through an AST type with its own String() method), this
// package's compiler never builds an AST — it re-lexes the source and
// re-emits it token by token with normalized spacing, the formatting
// strategy a single-pass compiler makes available.
package jpfmt

import (
	"encoding/json"
	"fmt"
	"strings"

	jmespath "github.com/nozzle/jmespath"
)

// Format re-lexes expression and renders it back to canonical source text.
// A malformed expression's *jmespath.SyntaxError is returned unchanged.
func Format(expression string) (string, error) {
	if _, err := jmespath.Compile(expression); err != nil {
		return "", err
	}
	toks, err := jmespath.Tokens(expression)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i, tok := range toks {
		if tok.Type.String() == "eof" {
			break
		}
		if i > 0 && needsSpaceBefore(toks[i-1], tok) {
			b.WriteByte(' ')
		}
		b.WriteString(render(tok))
	}
	return b.String(), nil
}

// render produces the canonical text for a single token. Dispatch is keyed
// on TokenType's String() form rather than the unexported constants
// themselves, which this package (outside the root jmespath package) has
// no access to.
func render(tok jmespath.Token) string {
	switch tok.Type.String() {
	case "identifier":
		return renderIdentifier(tok)
	case "number":
		return fmt.Sprintf("%v", tok.Value)
	case "literal":
		return renderLiteral(tok)
	default:
		return tok.Raw
	}
}

func renderIdentifier(tok jmespath.Token) string {
	name, _ := tok.Value.(string)
	if isBareIdentifier(name) {
		return name
	}
	out, _ := json.Marshal(name)
	return string(out)
}

func isBareIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// renderLiteral always canonicalizes to a backtick JSON literal: the
// lexer collapses both backtick-JSON and single-quoted raw-string syntax
// into one tLiteral token type and discards which form the source used,
// so there is no way to recover the original spelling — picking one
// canonical spelling is the point of a formatter anyway.
func renderLiteral(tok jmespath.Token) string {
	out, err := json.Marshal(tok.Value)
	if err != nil {
		return "`null`"
	}
	return "`" + string(out) + "`"
}

// needsSpaceBefore decides whether cur should be preceded by a single
// space, given the previous rendered token prev. Structural tokens that
// chain directly onto their neighbor (dot, brackets, function-call
// parens, the unary filter/merge compounds) get none; everything else
// that can stand next to an identifier or literal does.
func needsSpaceBefore(prev, cur jmespath.Token) bool {
	switch cur.Type.String() {
	case "dot", "lbracket", "rbracket", "rbrace", "rparen", "comma", "colon", "filter", "merge":
		return false
	case "lparen":
		// "(" directly follows a function name; elsewhere (grouping) it
		// follows an operator/pipe/comma that already forced a space.
		return prev.Type.String() != "function"
	}
	switch prev.Type.String() {
	case "dot", "lbracket", "lbrace", "lparen", "filter", "at":
		return false
	case "comma", "colon":
		return true
	}
	return true
}
