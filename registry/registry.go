// Package registry implements the function-registry contract of spec.md
// §4.3: the VM's opCall instruction looks up a function by name, checks its
// arity and per-argument types, and applies it. The core package never
// enumerates the standard function set itself — it only depends on this
// interface — but a Registry implementation is required for any program
// that calls a function to actually run, so this package also ships the
// default standard-library registry (builtins.go).
package registry

import "fmt"

// FailurePolicy controls what happens when an argument's runtime type does
// not match its declared type list.
type FailurePolicy int

const (
	// FailRaise makes CallWithOptions return a *TypeError without calling
	// Apply.
	FailRaise FailurePolicy = iota
	// FailNull substitutes JSON null for the mismatched argument's
	// position in the result, without raising.
	FailNull
)

// ArgSpec declares the accepted runtime types for one argument position
// and what happens when the actual argument does not match.
type ArgSpec struct {
	Types   []string // any of "null","boolean","number","string","array","object","array_or_string","any"
	Failure FailurePolicy
}

// Func is one registered function: its arity bounds, per-argument
// contracts, and the callback that computes its result.
type Func struct {
	// Name is the function's JMESPath identifier, e.g. "length".
	Name string
	// Min and Max bound the accepted argument count; Max < 0 means
	// unbounded (variadic beyond Min).
	Min, Max int
	// Args declares the type contract per positional argument; a call
	// with more arguments than len(Args) reuses the last entry (for
	// variadic functions like not_null).
	Args []ArgSpec
	// Apply computes the function's result from already-typechecked
	// arguments (a null substituted by FailNull policy is a valid value
	// Apply will see, exactly like a literal JSON null argument).
	Apply func(args []any) (any, error)
}

// Registry looks up callable functions by name.
type Registry interface {
	Lookup(name string) (*Func, bool)
}

// ArityError is returned by Call when argc falls outside a function's
// declared bounds.
type ArityError struct {
	Name           string
	Got, Min, Max  int
}

func (e *ArityError) Error() string {
	if e.Max < 0 {
		return fmt.Sprintf("%s() takes at least %d argument(s), got %d", e.Name, e.Min, e.Got)
	}
	if e.Min == e.Max {
		return fmt.Sprintf("%s() takes %d argument(s), got %d", e.Name, e.Min, e.Got)
	}
	return fmt.Sprintf("%s() takes %d to %d argument(s), got %d", e.Name, e.Min, e.Max, e.Got)
}

// TypeError is returned by Call when an argument's declared failure policy
// is FailRaise and the runtime type does not match.
type TypeError struct {
	Name     string
	ArgIndex int
	Expected []string
	Actual   string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s(): argument %d: expected %v, got %s", e.Name, e.ArgIndex, e.Expected, e.Actual)
}

// NotFoundError is returned by Call when name has no registered function.
type NotFoundError struct{ Name string }

func (e *NotFoundError) Error() string { return fmt.Sprintf("unknown function: %s", e.Name) }

// Call resolves name in r and applies it using DefaultOptions. The VM's
// opCall instruction does not use it: it calls CallWithOptions, passing
// DefaultOptions when no override was configured.
func Call(r Registry, name string, args []any) (any, error) {
	return CallWithOptions(r, name, args, DefaultOptions())
}

// CallWithOptions is Call with an explicit Options, letting a caller (e.g.
// cmd/jmespath's --strict-types flag) tighten the failure policy or the
// hard argument-count ceiling without forking the registry.
func CallWithOptions(r Registry, name string, args []any, opts Options) (any, error) {
	if opts.MaxArgs > 0 && len(args) > opts.MaxArgs {
		return nil, &ArityError{Name: name, Got: len(args), Min: 0, Max: opts.MaxArgs}
	}
	fn, ok := r.Lookup(name)
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	if len(args) < fn.Min || (fn.Max >= 0 && len(args) > fn.Max) {
		return nil, &ArityError{Name: name, Got: len(args), Min: fn.Min, Max: fn.Max}
	}
	checked := make([]any, len(args))
	for i, a := range args {
		spec := argSpecFor(fn, i)
		if spec == nil || typeMatches(spec.Types, a) {
			checked[i] = a
			continue
		}
		failure := spec.Failure
		if opts.StrictTypes {
			failure = FailRaise
		}
		switch failure {
		case FailNull:
			checked[i] = nil
		default:
			return nil, &TypeError{Name: name, ArgIndex: i, Expected: spec.Types, Actual: jsonTypeName(a)}
		}
	}
	return fn.Apply(checked)
}

func argSpecFor(fn *Func, i int) *ArgSpec {
	if len(fn.Args) == 0 {
		return nil
	}
	if i < len(fn.Args) {
		return &fn.Args[i]
	}
	return &fn.Args[len(fn.Args)-1]
}

func typeMatches(types []string, v any) bool {
	if len(types) == 0 {
		return true
	}
	actual := jsonTypeName(v)
	for _, t := range types {
		if t == "any" || t == actual {
			return true
		}
		if t == "array_or_string" && (actual == "array" || actual == "string") {
			return true
		}
		if t == "expref" && actual == "expref" {
			return true
		}
	}
	return false
}

func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "any"
	}
}
