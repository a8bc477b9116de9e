package schemashape

import (
	"fmt"

	"github.com/speakeasy-api/openapi/jsonschema/oas3"
	"github.com/speakeasy-api/openapi/sequencedmap"

	jmespath "github.com/nozzle/jmespath"
)

// top returns a schema that matches any value, the shape-inference
// equivalent of widening to "unknown" — grounded on schemaexec.Top.
func top() *oas3.Schema { return &oas3.Schema{} }

func scalarType(t oas3.SchemaType) *oas3.Schema {
	return &oas3.Schema{Type: oas3.NewTypeFromString(t)}
}

func arrayOf(items *oas3.Schema) *oas3.Schema {
	s := &oas3.Schema{Type: oas3.NewTypeFromString(oas3.SchemaTypeArray)}
	s.Items = oas3.NewJSONSchemaFromSchema[oas3.Referenceable](items)
	return s
}

func objectOf(props map[string]*oas3.Schema, order []string) *oas3.Schema {
	s := &oas3.Schema{Type: oas3.NewTypeFromString(oas3.SchemaTypeObject)}
	m := sequencedmap.New[string, *oas3.JSONSchema[oas3.Referenceable]]()
	for _, k := range order {
		m.Set(k, oas3.NewJSONSchemaFromSchema[oas3.Referenceable](props[k]))
	}
	s.Properties = m
	return s
}

func singleType(s *oas3.Schema) (oas3.SchemaType, bool) {
	if s == nil {
		return "", false
	}
	types := s.GetType()
	if len(types) != 1 {
		return "", false
	}
	return types[0], true
}

// property looks up key on an object-shaped schema, widening to Top for
// anything schemashape can't resolve (a $ref, additionalProperties, or a
// schema that isn't known to be an object at all) — the conservative side
// of the teacher's GetProperty.
func property(obj *oas3.Schema, key string) *oas3.Schema {
	if obj == nil || obj.Properties == nil {
		return top()
	}
	propSchema, ok := obj.Properties.Get(key)
	if !ok {
		return top()
	}
	if propSchema.Left != nil {
		return propSchema.Left
	}
	return top()
}

// literalShape infers the exact shape of an opPush immediate: a decoded
// JSON value for a backtick/raw-string literal, or a float64 for a bare
// number token.
func literalShape(v any) *oas3.Schema {
	switch v.(type) {
	case nil:
		return scalarType(oas3.SchemaTypeNull)
	case bool:
		return scalarType(oas3.SchemaTypeBoolean)
	case float64, int:
		return scalarType(oas3.SchemaTypeNumber)
	case string:
		return scalarType(oas3.SchemaTypeString)
	case []any:
		return arrayOf(top())
	case map[string]any:
		return objectOf(nil, nil)
	default:
		return top()
	}
}

// unionOrTop returns the common scalar type of schemas when every element
// agrees, or Top when the set is empty, mixed, or any element is itself
// non-scalar — this package has no general schema-union helper, so a
// multi-select-list with mixed-type elements simply widens.
func unionOrTop(schemas []*oas3.Schema) *oas3.Schema {
	if len(schemas) == 0 {
		return top()
	}
	first, ok := singleType(schemas[0])
	if !ok {
		return top()
	}
	for _, s := range schemas[1:] {
		t, ok := singleType(s)
		if !ok || t != first {
			return top()
		}
	}
	return scalarType(first)
}

// items returns the element schema of an array-shaped schema.
func items(arr *oas3.Schema) *oas3.Schema {
	if arr == nil || arr.Items == nil || arr.Items.Left == nil {
		return top()
	}
	return arr.Items.Left
}

// engine mirrors vm's register set, but over schema shapes: current is the
// live shape instead of a concrete Value, and there is no loops stack with
// real iteration counts — a projection body is walked exactly once,
// symbolically, against the element shape.
type engine struct {
	prog     *jmespath.Program
	ins      []instructionView
	opts     Options
	current  *oas3.Schema
	values   []*oas3.Schema
	marks    []*oas3.Schema
	loops    []loopMark
	warnings []string
}

// loopMark is pushed when the engine enters a projection's each instruction
// and popped when it reaches that each's own back-edge jump, so the body's
// symbolic result (computed against the element shape) can be rewrapped as
// an array before control resumes past the loop.
type loopMark struct {
	eachIdx    int
	exitTarget int
}

type instructionView struct {
	op     string
	value  any
	target int
	hasJmp bool
}

// Infer propagates input through program's compiled instructions and
// returns the inferred shape of its result. Function calls and other
// opcodes schemashape has no shape rule for widen to Top; in StrictMode
// they return an error instead.
func Infer(program *jmespath.Program, input *oas3.Schema, opts Options) (*Result, error) {
	raw := program.Instructions()
	views := make([]instructionView, len(raw))
	for i, r := range raw {
		views[i] = instructionView{op: r.Op, value: r.Value, target: r.Target, hasJmp: r.HasJmp}
	}
	e := &engine{prog: program, ins: views, opts: opts, current: input}
	if err := e.run(); err != nil {
		return nil, err
	}
	return &Result{Schema: e.current, Warnings: e.warnings}, nil
}

func (e *engine) warn(format string, args ...any) {
	if e.opts.EnableWarnings {
		e.warnings = append(e.warnings, fmt.Sprintf(format, args...))
	}
}

func (e *engine) widen(reason string) (*oas3.Schema, error) {
	if e.opts.StrictMode {
		return nil, fmt.Errorf("schemashape: %s has no shape rule (strict mode)", reason)
	}
	e.warn("widened to an unconstrained shape: %s", reason)
	return top(), nil
}

func (e *engine) push(v *oas3.Schema)  { e.values = append(e.values, v) }
func (e *engine) pop() *oas3.Schema {
	n := len(e.values)
	v := e.values[n-1]
	e.values = e.values[:n-1]
	return v
}
func (e *engine) mark()    { e.marks = append(e.marks, e.current) }
func (e *engine) peek() *oas3.Schema { return e.marks[len(e.marks)-1] }
func (e *engine) drop()   { e.marks = e.marks[:len(e.marks)-1] }

func (e *engine) run() error {
	ip := 0
	for ip < len(e.ins) {
		in := e.ins[ip]
		switch in.op {
		case "stop":
			return nil

		case "nop", "push", "field", "index", "slice", "merge", "is_null", "is_array", "eq", "not", "gt", "gte", "lt", "lte", "make_array", "store_key", "call":
			if err := e.step(in); err != nil {
				return err
			}
			ip++

		case "push_current":
			e.push(e.current)
			ip++
		case "pop":
			e.current = e.pop()
			ip++
		case "mark_current":
			e.mark()
			ip++
		case "pop_current":
			e.current = e.peek()
			ip++
		case "drop_mark":
			e.drop()
			ip++

		case "jump":
			if n := len(e.loops); n > 0 && e.loops[n-1].eachIdx == in.target {
				loop := e.loops[n-1]
				e.loops = e.loops[:n-1]
				e.current = arrayOf(e.current)
				ip = loop.exitTarget
				break
			}
			if in.target > ip {
				// A forward jump skips the other side of a conditional
				// (||, a multi-select null guard, a filter's keep/drop);
				// both sides meet at its target, so widen there.
				e.current = top()
				e.warn("branch join widened to an unconstrained shape")
			}
			ip = in.target
		case "jump_if_true", "jump_if_false":
			// This engine tracks one live shape, not a set of shapes per
			// branch, so it can't evaluate the condition and follow only
			// the taken side without risking silently reporting the
			// *other* branch's shape as if it were the only outcome (||,
			// a multi-select null guard, and a filter's keep/drop both
			// produce materially different shapes on each side). Widening
			// to Top here is the conservative, always-safe answer; the
			// branches reconverge a few instructions later either way.
			e.pop()
			e.current = top()
			e.warn("branch point widened to an unconstrained shape")
			ip++

		case "each":
			// A projection's body executes once, symbolically, against
			// the element shape instead of runEach's real per-item loop
			// (there is no concrete item count to drive here). in.target
			// is the same patched exit address runEach itself jumps to
			// once exhausted (code.go's jumpTarget treats "each" as a
			// jump-carrying op for exactly this reason); loopMark records
			// it so the back-edge below knows where to resume once the
			// body's result is wrapped back into an array.
			e.loops = append(e.loops, loopMark{eachIdx: ip, exitTarget: in.target})
			e.current = e.projectionElement()
			ip++

		default:
			return fmt.Errorf("schemashape: unhandled opcode %q", in.op)
		}
	}
	return nil
}

// projectionElement infers the per-item shape a projection iterates over:
// an array's items, or an object's property values unioned together (this
// package has no schema-union helper of its own, so it widens to Top for
// an object source rather than reinventing one).
func (e *engine) projectionElement() *oas3.Schema {
	if e.current == nil {
		return top()
	}
	t, ok := singleType(e.current)
	if !ok {
		e.warn("projection source has no single known type, widened element shape")
		return top()
	}
	switch t {
	case oas3.SchemaTypeArray:
		return items(e.current)
	case oas3.SchemaTypeObject:
		e.warn("object projection element shape widened (no property-union helper)")
		return top()
	default:
		e.warn("projection over a %s-shaped value widened to Top", t)
		return top()
	}
}

// step executes the opcodes that don't touch control flow or the mark
// stack, mirroring vm.run's switch but over shapes instead of values.
func (e *engine) step(in instructionView) error {
	switch in.op {
	case "nop":
	case "push":
		e.current = literalShape(in.value)
	case "field":
		key, _ := in.value.(string)
		if t, ok := singleType(e.current); ok && t == oas3.SchemaTypeObject {
			e.current = property(e.current, key)
		} else {
			e.current = top()
		}
	case "index":
		if t, ok := singleType(e.current); ok && t == oas3.SchemaTypeArray {
			e.current = items(e.current)
		} else {
			e.current = top()
		}
	case "slice":
		if t, ok := singleType(e.current); ok && t == oas3.SchemaTypeArray {
			e.current = arrayOf(items(e.current))
		} else {
			e.current = top()
		}
	case "merge":
		if t, ok := singleType(e.current); ok && t == oas3.SchemaTypeArray {
			e.current = arrayOf(items(items(e.current)))
		} else {
			e.current = top()
		}
	case "is_null", "is_array":
		e.push(scalarType(oas3.SchemaTypeBoolean))
	case "eq", "gt", "gte", "lt", "lte":
		e.pop()
		e.current = scalarType(oas3.SchemaTypeBoolean)
	case "not":
		e.current = scalarType(oas3.SchemaTypeBoolean)
	case "make_array":
		count, _ := in.value.(int)
		elems := make([]*oas3.Schema, count)
		for i := count - 1; i >= 0; i-- {
			elems[i] = e.pop()
		}
		e.current = arrayOf(unionOrTop(elems))
	case "store_key":
		keys, _ := in.value.([]string)
		vals := make([]*oas3.Schema, len(keys))
		for i := len(keys) - 1; i >= 0; i-- {
			vals[i] = e.pop()
		}
		props := make(map[string]*oas3.Schema, len(keys))
		for i, k := range keys {
			props[k] = vals[i]
		}
		e.current = objectOf(props, keys)
	case "call":
		w, err := e.widen("function call result")
		if err != nil {
			return err
		}
		e.current = w
	}
	return nil
}
