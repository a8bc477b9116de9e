package jmespath

import (
	"fmt"
	"strings"

	"github.com/kr/text"
)

// SyntaxError is raised during Compile. It carries enough context for a
// caller to render a caret diagnostic: the full source text, the offending
// token, and either an expected-token set or a free-form message.
type SyntaxError struct {
	Source   string
	Token    Token
	Expected []TokenType
	Message  string
}

func (e *SyntaxError) Error() string {
	var msg string
	switch {
	case e.Message != "":
		msg = e.Message
	case len(e.Expected) == 1:
		msg = fmt.Sprintf("expected %s, found %s", e.Expected[0], e.Token.Type)
	case len(e.Expected) > 1:
		names := make([]string, len(e.Expected))
		for i, t := range e.Expected {
			names[i] = t.String()
		}
		msg = fmt.Sprintf("expected one of [%s], found %s", strings.Join(names, ", "), e.Token.Type)
	default:
		msg = fmt.Sprintf("unexpected token %s", e.Token.Type)
	}
	header := fmt.Sprintf("syntax error: %s at position %d", msg, e.Token.Position)
	if e.Source == "" {
		return header
	}
	return header + "\n" + text.Indent(caretLine(e.Source, e.Token.Position), "    ")
}

func caretLine(src string, pos int) string {
	if pos < 0 || pos > len(src) {
		return src
	}
	caret := strings.Repeat(" ", pos) + "^"
	return src + "\n" + caret
}

// RuntimeError is raised during Evaluate, exclusively from function calls:
// an unknown function, an arity mismatch, a non-"null" failure policy, or
// an error returned by the function itself (spec.md §7).
type RuntimeError struct {
	Function string
	ArgIndex int // -1 when the failure is not a per-argument type mismatch
	Expected string
	Actual   string
	Message  string
}

func (e *RuntimeError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("runtime error: %s: %s", e.Function, e.Message)
	}
	return fmt.Sprintf("runtime error: %s: argument %d: expected %s, got %s",
		e.Function, e.ArgIndex, e.Expected, e.Actual)
}
