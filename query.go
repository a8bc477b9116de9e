package jmespath

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/nozzle/jmespath/registry"
)

// defaultRegistry backs Search and any Compile result evaluated through
// Evaluate without an explicit registry override.
var defaultRegistry registry.Registry = registry.NewDefault()

// Compile parses and compiles a JMESPath expression into a reusable
// Program. A *SyntaxError is returned on malformed input.
func Compile(expression string) (*Program, error) {
	p, err := compileProgram(expression)
	if err != nil {
		return nil, err
	}
	return &Program{prog: p, src: expression}, nil
}

// Evaluate runs program against input using the default function registry.
// A Program is immutable once returned by Compile, so concurrent Evaluate
// calls against the same Program are independent and data-race free
// (spec.md §5): each call allocates its own vm with its own registers.
func Evaluate(program *Program, input Value) (Value, error) {
	return EvaluateWith(program, input, defaultRegistry)
}

// EvaluateWith runs program against input using reg in place of the
// default registry, letting callers extend or replace the standard
// function library per call.
func EvaluateWith(program *Program, input Value, reg registry.Registry) (Value, error) {
	m := newVM(program.prog, reg, input)
	return m.run()
}

// EvaluateWithOptions is EvaluateWith with an explicit registry.Options,
// letting a caller (cmd/jmespath's --strict-types and --max-args flags)
// tighten function-call typechecking or the argument-count ceiling without
// forking the registry.
func EvaluateWithOptions(program *Program, input Value, reg registry.Registry, opts registry.Options) (Value, error) {
	m := newVMWithOptions(program.prog, reg, input, opts)
	return m.run()
}

// Search compiles expression and evaluates it against input in one step,
// the convenience entry point for one-off queries.
func Search(expression string, input Value) (Value, error) {
	program, err := Compile(expression)
	if err != nil {
		return nil, err
	}
	return Evaluate(program, input)
}

// Tokens lexes expression and returns its token stream, including the
// trailing eof token, without compiling it. Used by pkg/jpfmt to re-emit
// normalized source text and by diagnostic tooling that wants token
// positions without a full Program.
func Tokens(expression string) ([]Token, error) {
	return lex(expression)
}

// EvaluateAll runs the same compiled program over many inputs concurrently,
// the direct exercise of spec.md §5's "concurrent evaluations of the same
// program are independent" invariant. Results preserve the order of
// inputs; the first error encountered cancels the remaining work and is
// returned, in the style of golang.org/x/sync/errgroup's fail-fast group.
func EvaluateAll(ctx context.Context, program *Program, inputs []Value) ([]Value, error) {
	results := make([]Value, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			v, err := Evaluate(program, input)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
