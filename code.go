package jmespath

import "fmt"

// opcode is the closed set of VM instructions described in spec.md §4.2.
type opcode int

const (
	opPushCurrent opcode = iota
	opPopCurrent
	opMarkCurrent
	opPop
	opPush
	opField
	opIndex
	opSlice
	opStoreKey
	opMerge
	opEach
	opJump
	opJumpIfTrue
	opJumpIfFalse
	opIsNull
	opIsArray
	opEq
	opNot
	opGt
	opGte
	opLt
	opLte
	opCall
	opMakeArray
	opDropMark
	opStop
	opNop // emitted for "@" (current is left as is); executes as a no-op
)

func (op opcode) String() string {
	switch op {
	case opPushCurrent:
		return "push_current"
	case opPopCurrent:
		return "pop_current"
	case opMarkCurrent:
		return "mark_current"
	case opPop:
		return "pop"
	case opPush:
		return "push"
	case opField:
		return "field"
	case opIndex:
		return "index"
	case opSlice:
		return "slice"
	case opStoreKey:
		return "store_key"
	case opMerge:
		return "merge"
	case opEach:
		return "each"
	case opJump:
		return "jump"
	case opJumpIfTrue:
		return "jump_if_true"
	case opJumpIfFalse:
		return "jump_if_false"
	case opIsNull:
		return "is_null"
	case opIsArray:
		return "is_array"
	case opEq:
		return "eq"
	case opNot:
		return "not"
	case opGt:
		return "gt"
	case opGte:
		return "gte"
	case opLt:
		return "lt"
	case opLte:
		return "lte"
	case opCall:
		return "call"
	case opMakeArray:
		return "make_array"
	case opDropMark:
		return "drop_mark"
	case opStop:
		return "stop"
	case opNop:
		return "nop"
	default:
		panic(fmt.Sprintf("jmespath: unknown opcode %d", int(op)))
	}
}

// instruction is a single tagged program step. v holds the opcode's
// immediate operand(s); its concrete type depends on op (see the per-op
// comments in vm.go). Jump-carrying ops hold the target as an int.
type instruction struct {
	op opcode
	v  any
}

// sliceArgs is the immediate for opSlice: each bound is nil when omitted.
type sliceArgs struct {
	start, stop, step *int
}

// eachArgs is the immediate for opEach: patch is the instruction index to
// jump to once the loop is exhausted, back-patched once the loop body's
// length is known; container selects how the projected value is turned
// into an item sequence ("array", "object" iterates sorted values, or the
// flatten form already reduced by a preceding opMerge). keepNulls
// distinguishes a plain wildcard/flatten projection, where every per-element
// result is accumulated even when it is null, from a filter's keep/drop
// loop, where the reject branch pushes an explicit nil onto `current` as its
// drop signal and keepNulls is false so that signal is skipped instead of
// appended.
type eachArgs struct {
	patch     int
	container string
	keepNulls bool
}

// callArgs is the immediate for opCall: the registered function name and
// the number of arguments the compiler emitted ahead of it on the stack.
type callArgs struct {
	name string
	argc int
}

// program is the flat, read-only, reusable output of Compile.
type program struct {
	instructions []instruction
}

// Program is a compiled JMESPath expression, safe for concurrent Evaluate
// calls (spec.md §5): it is immutable after Compile returns.
type Program struct {
	prog *program
	src  string
}

// Instructions returns the compiled instruction sequence for introspection
// (used by cmd/bytecode-dump and pkg/schemashape); the returned slice must not be
// mutated by callers.
func (p *Program) Instructions() []struct {
	Op     string
	Value  any
	Target int
	HasJmp bool
} {
	out := make([]struct {
		Op     string
		Value  any
		Target int
		HasJmp bool
	}, len(p.prog.instructions))
	for i, ins := range p.prog.instructions {
		out[i].Op = ins.op.String()
		out[i].Value = ins.v
		if t, ok := jumpTarget(ins); ok {
			out[i].Target = t
			out[i].HasJmp = true
		}
	}
	return out
}

func jumpTarget(ins instruction) (int, bool) {
	switch ins.op {
	case opJump, opJumpIfTrue, opJumpIfFalse:
		t, ok := ins.v.(int)
		return t, ok
	case opEach:
		e, ok := ins.v.(eachArgs)
		return e.patch, ok
	default:
		return 0, false
	}
}
