// Package schemashape is the symbolic counterpart of Evaluate: instead of
// running a compiled Program against a concrete Value, it propagates a
// *oas3.Schema through the same instruction sequence to infer the *shape*
// of the projected output without any data, in the spirit of the teacher's
// schemaexec extension (a second interpreter for the same bytecode,
// specialized to a different value domain).
package schemashape

import "github.com/speakeasy-api/openapi/jsonschema/oas3"

// Options configures Infer, grouped and defaulted the way the teacher's
// SchemaExecOptions is, trimmed to the knobs a projection-shape inferrer
// over this package's smaller opcode set actually needs — no $ref
// resolution or anyOf/enum widening limits, since this module never
// constructs those schema shapes itself.
type Options struct {
	// MaxDepth is carried for callers but Infer does not read it: no
	// limit on field/index/projection chain length is applied.
	MaxDepth int

	// StrictMode, if true, returns an error the first time an opcode has
	// no schema-shape rule (a function call, for instance); if false
	// (the default) Infer widens to Top and records a warning instead.
	StrictMode bool

	// EnableWarnings controls whether precision-loss events (widening to
	// Top at a function call, a branch, or a projection source) are
	// collected at all; a field access on a non-object widens silently.
	EnableWarnings bool
}

// DefaultOptions returns the configuration Infer uses when a caller
// doesn't supply one.
func DefaultOptions() Options {
	return Options{
		MaxDepth:       100,
		StrictMode:     false,
		EnableWarnings: true,
	}
}

// Result is Infer's output: the inferred output shape plus any
// precision-loss warnings collected along the way.
type Result struct {
	Schema   *oas3.Schema
	Warnings []string
}
