// Package transform parses and applies the "x-transform-jmespath" YAML
// extension, grounded on the teacher's pkg/playground package
// (ParseTransformExtension's key/value-pair mapping scan) but narrowed to
// plain YAML documents instead of a full OpenAPI walk — this module has no
// openapi.Walk caller, only pkg/schemashape's narrower *oas3.Schema surface.
package transform

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	jmespath "github.com/nozzle/jmespath"
)

// Kind is the transformer family. Only "jmespath" exists, mirroring the
// teacher's single-member TransformerType enum; ParseExtension always sets
// KindJMESPath and does not read a "type" key.
type Kind string

const KindJMESPath Kind = "jmespath"

// Func is one parsed, compiled "x-transform-jmespath" extension: an
// expression plus the Program it compiles to, so repeated Apply calls
// against many documents don't recompile it.
type Func struct {
	Kind       Kind
	Expression string
	program    *jmespath.Program
}

// ParseExtension reads a "x-transform-jmespath" node, which must be a
// YAML mapping with a required "expression" scalar key, and compiles its
// expression immediately so a malformed extension fails at parse time
// rather than at first use.
func ParseExtension(node *yaml.Node) (*Func, error) {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("x-transform-jmespath must be an object")
	}

	var expr string
	found := false
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if key.Value != "expression" {
			continue
		}
		if val.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("x-transform-jmespath: 'expression' value must be a string")
		}
		expr = strings.TrimSpace(val.Value)
		found = true
		break
	}
	if !found {
		return nil, fmt.Errorf("x-transform-jmespath requires an 'expression' key")
	}
	if expr == "" {
		return nil, fmt.Errorf("x-transform-jmespath: 'expression' must not be empty")
	}

	program, err := jmespath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("x-transform-jmespath: %q is not a valid jmespath expression: %w", expr, err)
	}

	return &Func{Kind: KindJMESPath, Expression: expr, program: program}, nil
}

// Apply decodes doc into a concrete Value, runs fn's compiled expression
// against it, and re-encodes the result as a *yaml.Node so the caller can
// splice it back into a larger document the way the teacher's
// transformSchema replaces a *oas3.JSONSchema node in place.
func Apply(fn *Func, doc *yaml.Node) (*yaml.Node, error) {
	var input any
	if err := doc.Decode(&input); err != nil {
		return nil, fmt.Errorf("x-transform-jmespath: decoding document: %w", err)
	}
	result, err := jmespath.Evaluate(fn.program, input)
	if err != nil {
		return nil, fmt.Errorf("x-transform-jmespath %q: %w", fn.Expression, err)
	}
	var out yaml.Node
	if err := out.Encode(result); err != nil {
		return nil, fmt.Errorf("x-transform-jmespath: encoding result: %w", err)
	}
	return &out, nil
}
