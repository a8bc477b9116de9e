package jmespath

import (
	"sort"
	"strings"

	"github.com/nozzle/jmespath/registry"
)

// loopFrame tracks one active projection loop. Frames nest (a projection
// body may itself contain another projection), so the VM keeps a stack of
// them keyed by the "each" instruction's address.
type loopFrame struct {
	ip    int
	items []any
	idx   int
	acc   []any
}

// vm is the stack machine described in spec.md §4.2: an instruction
// pointer, a "current" focus register, a value stack used both as scratch
// storage and as the accumulator for multi-select/function-call argument
// lists, and a mark stack used to let an outer value be recovered after a
// nested sub-expression has overwritten `current`. Grounded in loop shape
// on other_examples/itchyny-gojq__execute.go's fetch-decode-execute loop.
type vm struct {
	prog    *program
	reg     registry.Registry
	opts    registry.Options
	ip      int
	current Value
	values  []Value
	marks   []Value
	loops   []loopFrame
}

func newVM(p *program, reg registry.Registry, input Value) *vm {
	return newVMWithOptions(p, reg, input, registry.DefaultOptions())
}

func newVMWithOptions(p *program, reg registry.Registry, input Value, opts registry.Options) *vm {
	return &vm{prog: p, reg: reg, opts: opts, current: input}
}

func (m *vm) pushValue(v Value) { m.values = append(m.values, v) }

func (m *vm) popValue() Value {
	n := len(m.values)
	v := m.values[n-1]
	m.values = m.values[:n-1]
	return v
}

func (m *vm) pushMark(v Value) { m.marks = append(m.marks, v) }

func (m *vm) peekMark() Value { return m.marks[len(m.marks)-1] }

func (m *vm) dropMark() { m.marks = m.marks[:len(m.marks)-1] }

// run executes the program to completion and returns the final `current`.
func (m *vm) run() (Value, error) {
	for {
		ins := m.prog.instructions[m.ip]
		switch ins.op {
		case opStop:
			return m.current, nil

		case opNop:
			m.ip++

		case opPush:
			m.current = ins.v
			m.ip++

		case opPushCurrent:
			m.pushValue(m.current)
			m.ip++

		case opPop:
			m.current = m.popValue()
			m.ip++

		case opMarkCurrent:
			m.pushMark(m.current)
			m.ip++

		case opPopCurrent:
			m.current = m.peekMark()
			m.ip++

		case opDropMark:
			m.dropMark()
			m.ip++

		case opField:
			key := ins.v.(string)
			if obj, ok := m.current.(map[string]any); ok {
				m.current = obj[key]
			} else {
				m.current = nil
			}
			m.ip++

		case opIndex:
			n := ins.v.(int)
			if arr, ok := m.current.([]any); ok {
				if i, ok := normalizeIndex(n, len(arr)); ok {
					m.current = arr[i]
				} else {
					m.current = nil
				}
			} else {
				m.current = nil
			}
			m.ip++

		case opSlice:
			sa := ins.v.(sliceArgs)
			if arr, ok := m.current.([]any); ok {
				m.current = applySlice(arr, sa.start, sa.stop, sa.step)
			} else {
				m.current = nil
			}
			m.ip++

		case opMerge:
			if arr, ok := m.current.([]any); ok {
				m.current = flattenOneLevel(arr)
			} else {
				m.current = nil
			}
			m.ip++

		case opIsNull:
			m.pushValue(isNull(m.current))
			m.ip++

		case opIsArray:
			// repurposed as a nullish guard for multi-select constructs,
			// per SPEC_FULL.md §5 design note (b).
			m.pushValue(isNull(m.current))
			m.ip++

		case opJumpIfTrue:
			if isTruthy(m.popValue()) {
				m.ip = ins.v.(int)
			} else {
				m.ip++
			}

		case opJumpIfFalse:
			if !isTruthy(m.popValue()) {
				m.ip = ins.v.(int)
			} else {
				m.ip++
			}

		case opJump:
			m.ip = ins.v.(int)

		case opEach:
			m.ip = m.runEach(m.ip, ins.v.(eachArgs))

		case opEq:
			lhs := m.popValue()
			m.current = valuesEqual(lhs, m.current)
			m.ip++

		case opNot:
			m.current = !isTruthy(m.current)
			m.ip++

		case opGt, opGte, opLt, opLte:
			lhs := m.popValue()
			cmp, ok := compareOrdered(lhs, m.current)
			if !ok {
				m.current = nil
				m.ip++
				break
			}
			switch ins.op {
			case opGt:
				m.current = cmp > 0
			case opGte:
				m.current = cmp >= 0
			case opLt:
				m.current = cmp < 0
			case opLte:
				m.current = cmp <= 0
			}
			m.ip++

		case opMakeArray:
			n := ins.v.(int)
			arr := make([]any, n)
			for i := n - 1; i >= 0; i-- {
				arr[i] = m.popValue()
			}
			m.current = arr
			m.ip++

		case opStoreKey:
			keys := ins.v.([]string)
			vals := make([]any, len(keys))
			for i := len(keys) - 1; i >= 0; i-- {
				vals[i] = m.popValue()
			}
			obj := make(map[string]any, len(keys))
			for i, k := range keys {
				obj[k] = vals[i]
			}
			m.current = obj
			m.ip++

		case opCall:
			ca := ins.v.(callArgs)
			args := make([]any, ca.argc)
			for i := ca.argc - 1; i >= 0; i-- {
				args[i] = m.popValue()
			}
			result, err := registry.CallWithOptions(m.reg, ca.name, args, m.opts)
			if err != nil {
				rerr := &RuntimeError{Function: ca.name, ArgIndex: -1, Message: err.Error()}
				if te, ok := err.(*registry.TypeError); ok {
					rerr = &RuntimeError{Function: ca.name, ArgIndex: te.ArgIndex, Expected: strings.Join(te.Expected, " or "), Actual: te.Actual}
				}
				return nil, rerr
			}
			m.current = result
			m.ip++

		default:
			panic("jmespath: unhandled opcode in vm.run")
		}
	}
}

// runEach advances (or, on first entry, initializes) the projection loop
// rooted at instruction ip. It returns the next instruction pointer: either
// ip+1 to enter the loop body with the next element in `current`, or the
// loop's patched exit target once the source is exhausted or was never a
// projectable container. A plain wildcard/flatten projection (e.keepNulls)
// accumulates every per-element result, including a legitimately null one;
// a filter loop accumulates only non-nil results, since its reject branch
// uses an explicit nil as a drop signal rather than projected data.
func (m *vm) runEach(ip int, e eachArgs) int {
	var fr *loopFrame
	if n := len(m.loops); n > 0 && m.loops[n-1].ip == ip {
		fr = &m.loops[n-1]
		if e.keepNulls || m.current != nil {
			fr.acc = append(fr.acc, m.current)
		}
	} else {
		items, ok := projectableItems(m.current, e.container)
		if !ok {
			m.current = nil
			return e.patch
		}
		m.loops = append(m.loops, loopFrame{ip: ip, items: items})
		fr = &m.loops[len(m.loops)-1]
	}
	if fr.idx >= len(fr.items) {
		result := fr.acc
		if result == nil {
			result = []any{}
		}
		m.loops = m.loops[:len(m.loops)-1]
		m.current = result
		return e.patch
	}
	item := fr.items[fr.idx]
	fr.idx++
	m.current = item
	return ip + 1
}

// projectableItems turns v into the ordered item sequence a projection
// iterates, per the container selector the compiler recorded on the each
// instruction. An object projection visits values ordered by key so that
// repeated evaluations of the same program are deterministic.
func projectableItems(v Value, container string) ([]any, bool) {
	switch container {
	case "object":
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		items := make([]any, len(keys))
		for i, k := range keys {
			items[i] = obj[k]
		}
		return items, true
	default:
		arr, ok := v.([]any)
		if !ok {
			return nil, false
		}
		return arr, true
	}
}

// flattenOneLevel splices one level of nested arrays into their parent,
// leaving non-array elements untouched, per the "[]" flatten operator.
func flattenOneLevel(arr []any) []any {
	out := make([]any, 0, len(arr))
	for _, v := range arr {
		if nested, ok := v.([]any); ok {
			out = append(out, nested...)
		} else {
			out = append(out, v)
		}
	}
	return out
}
