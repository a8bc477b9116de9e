package registry

// Options configures how a Registry is built and how Call behaves at its
// edges. Grouped and defaulted the way the teacher's
// schemaexec.SchemaExecOptions is, trimmed to what a concrete-value
// function registry actually needs (no widening/memoization knobs — those
// are schemashape concerns, not registry ones).
type Options struct {
	// MaxArgs caps how many arguments Call will typecheck before giving up
	// with an ArityError, independent of any individual Func's own Max.
	// Guards against pathological expressions, not real JMESPath input.
	MaxArgs int

	// StrictTypes, if true, ignores a Func's declared FailNull policy and
	// always raises a TypeError on mismatch — useful for validating a
	// function library during development.
	StrictTypes bool

	// LogLevel records the verbosity cmd/jmespath's logger runs at ("error",
	// "warn", "info", "debug"). Nothing in this package reads it, and the
	// CLI builds its logger from its own flag, not from this field.
	LogLevel string
}

// DefaultOptions returns the configuration Evaluate, EvaluateWith and
// Search use when a caller doesn't supply one.
func DefaultOptions() Options {
	return Options{
		MaxArgs:     32,
		StrictTypes: false,
		LogLevel:    "warn",
	}
}
