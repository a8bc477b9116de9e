package jmespath

import "fmt"

// compiler is a Pratt (top-down operator precedence) parser that emits
// bytecode directly instead of building an intermediate tree, grounded in
// structure on other_examples/itchyny-gojq__compiler.go's lazy-patch style
// (pc cursor into a flat instruction slice, a closure-free forward patch by
// index instead of a linked jump list).
//
// The VM's `current` register carries "the value under evaluation" the way
// a Forth-style stack machine carries its top of stack; mark_stack is used
// purely to let a later instruction recover an earlier value of `current`
// without consuming it (opPopCurrent is a non-destructive peek-restore), so
// a single opMarkCurrent emitted at the start of parseExpr makes every
// binary operator parsed within that call able to re-read the operand both
// sides are relative to, however many infix operators chain at that level.
type compiler struct {
	toks []Token
	pos  int
	src  string
	ins  []instruction
}

// compileProgram parses and compiles src into a flat instruction sequence,
// terminated by opStop.
func compileProgram(src string) (*program, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	c := &compiler{toks: toks, src: src}
	if err := c.parseExpr(0); err != nil {
		return nil, err
	}
	if c.peek().Type != tEOF {
		return nil, &SyntaxError{Source: c.src, Token: c.peek(), Message: "unexpected trailing input"}
	}
	c.emit(opStop, nil)
	return &program{instructions: c.ins}, nil
}

func (c *compiler) peek() Token {
	if c.pos >= len(c.toks) {
		return eofToken
	}
	return c.toks[c.pos]
}

func (c *compiler) advance() Token {
	tok := c.peek()
	if c.pos < len(c.toks) {
		c.pos++
	}
	return tok
}

func (c *compiler) expect(tt TokenType) error {
	if c.peek().Type != tt {
		return &SyntaxError{Source: c.src, Token: c.peek(), Expected: []TokenType{tt}}
	}
	c.advance()
	return nil
}

func (c *compiler) emit(op opcode, v any) int {
	c.ins = append(c.ins, instruction{op: op, v: v})
	return len(c.ins) - 1
}

func (c *compiler) patch(idx, target int) {
	switch c.ins[idx].op {
	case opEach:
		e := c.ins[idx].v.(eachArgs)
		e.patch = target
		c.ins[idx].v = e
	default:
		c.ins[idx].v = target
	}
}

// lbp is the left binding power of tok when it appears in led position;
// tokens that never lead (or only appear as nud) bind at 0, which always
// stops the Pratt loop.
func (c *compiler) lbp(tok Token) int {
	switch tok.Type {
	case tPipe:
		return 1
	case tOr:
		return 2
	case tOperator:
		return 5
	case tMerge:
		return 9
	case tFilter:
		return 21
	case tDot:
		return 40
	case tLbracket:
		return 55
	default:
		return 0
	}
}

// parseExpr parses one expression, stopping at the first token whose lbp is
// <= rbp. It wraps itself in a mark/drop pair so any infix operator parsed
// within can recover the value `current` held on entry.
func (c *compiler) parseExpr(rbp int) error {
	c.emit(opMarkCurrent, nil)
	tok := c.advance()
	if err := c.nud(tok); err != nil {
		return err
	}
	for c.lbp(c.peek()) > rbp {
		tok = c.advance()
		if err := c.led(tok); err != nil {
			return err
		}
	}
	c.emit(opDropMark, nil)
	return nil
}

func (c *compiler) nud(tok Token) error {
	switch tok.Type {
	case tIdentifier:
		c.emit(opField, tok.Value.(string))
		return nil
	case tNumber:
		c.emit(opPush, float64(tok.Value.(int)))
		return nil
	case tLiteral:
		c.emit(opPush, tok.Value)
		return nil
	case tAt:
		// "@" denotes the already-current value; emitted as a no-op so
		// bytecode-dump still shows where "@" sits in the instruction
		// sequence.
		c.emit(opNop, "@")
		return nil
	case tStar:
		return c.compileObjectProjection()
	case tFilter:
		return c.compileFilter()
	case tMerge:
		return c.compileFlatten()
	case tLbracket:
		return c.compileBracket()
	case tLbrace:
		return c.compileMultiSelectHash()
	case tFunction:
		return c.compileFunctionCall(tok.Value.(string))
	case tLparen:
		if err := c.parseExpr(0); err != nil {
			return err
		}
		return c.expect(tRparen)
	default:
		return &SyntaxError{Source: c.src, Token: tok, Message: fmt.Sprintf("unexpected %s in expression position", tok.Type)}
	}
}

func (c *compiler) led(tok Token) error {
	switch tok.Type {
	case tDot:
		return c.ledDot()
	case tPipe:
		return c.parseExpr(1)
	case tOr:
		return c.ledOr()
	case tOperator:
		return c.ledComparison(tok.Value.(string))
	case tLbracket:
		return c.compileBracket()
	case tMerge:
		return c.compileFlatten()
	case tFilter:
		return c.compileFilter()
	default:
		return &SyntaxError{Source: c.src, Token: tok, Message: fmt.Sprintf("unexpected %s", tok.Type)}
	}
}

// ledDot compiles the "." sub-expression production: identifier, "*",
// multi-select-hash, multi-select-list or function-call.
func (c *compiler) ledDot() error {
	tok := c.advance()
	switch tok.Type {
	case tIdentifier:
		c.emit(opField, tok.Value.(string))
		return nil
	case tStar:
		return c.compileObjectProjection()
	case tLbrace:
		return c.compileMultiSelectHash()
	case tLbracket:
		return c.compileMultiSelectListContents()
	case tFunction:
		return c.compileFunctionCall(tok.Value.(string))
	default:
		return &SyntaxError{
			Source:   c.src,
			Token:    tok,
			Expected: []TokenType{tIdentifier, tStar, tLbrace, tLbracket, tFunction},
		}
	}
}

// ledOr compiles "lhs || rhs": a null-coalescing operator, not a general
// boolean or. rhs is evaluated only when lhs is null, and both sides are
// relative to the same outer value (the one parseExpr marked on entry).
func (c *compiler) ledOr() error {
	c.emit(opPushCurrent, nil) // stack: [lhsVal]
	c.emit(opIsNull, nil)      // stack: [lhsVal, isNull(lhsVal)]
	jmpNotNull := c.emit(opJumpIfFalse, -1)

	c.emit(opPop, nil)       // discard lhsVal; current irrelevant until next line
	c.emit(opPopCurrent, nil) // current := outer
	if err := c.parseExpr(1); err != nil {
		return err
	}
	jmpEnd := c.emit(opJump, -1)

	c.patch(jmpNotNull, len(c.ins))
	c.emit(opPop, nil) // current := lhsVal

	c.patch(jmpEnd, len(c.ins))
	return nil
}

// ledComparison compiles a binary comparison. Both operands are relative
// to the outer value; the comparison opcode itself pops the left operand
// off the value stack and compares it against the right operand sitting in
// `current`.
func (c *compiler) ledComparison(op string) error {
	c.emit(opPushCurrent, nil) // stack: [lhsVal]
	c.emit(opPopCurrent, nil)  // current := outer
	if err := c.parseExpr(5); err != nil {
		return err
	}
	switch op {
	case "==":
		c.emit(opEq, nil)
	case "!=":
		c.emit(opEq, nil)
		c.emit(opNot, nil)
	case ">":
		c.emit(opGt, nil)
	case ">=":
		c.emit(opGte, nil)
	case "<":
		c.emit(opLt, nil)
	case "<=":
		c.emit(opLte, nil)
	default:
		return &SyntaxError{Source: c.src, Message: fmt.Sprintf("unknown comparison operator %q", op)}
	}
	return nil
}

// compileBracket handles "[" appearing directly after an expression (or at
// the start of one): array projection ("[*]"), index/slice (a leading
// number or colon), or otherwise a multi-select-list.
func (c *compiler) compileBracket() error {
	switch c.peek().Type {
	case tStar:
		c.advance()
		if err := c.expect(tRbracket); err != nil {
			return err
		}
		return c.compileArrayProjection()
	case tNumber, tColon:
		return c.compileIndexOrSlice()
	default:
		return c.compileMultiSelectListContents()
	}
}

func (c *compiler) compileIndexOrSlice() error {
	var start, stop, step *int
	if c.peek().Type == tNumber {
		n := c.advance().Value.(int)
		start = &n
	}
	if c.peek().Type == tRbracket {
		c.advance()
		if start == nil {
			return &SyntaxError{Source: c.src, Token: c.peek(), Message: "empty index expression"}
		}
		c.emit(opIndex, *start)
		return nil
	}
	slots := [2]**int{&stop, &step}
	for _, slot := range slots {
		if c.peek().Type != tColon {
			break
		}
		c.advance()
		if c.peek().Type == tNumber {
			n := c.advance().Value.(int)
			*slot = &n
		}
	}
	if err := c.expect(tRbracket); err != nil {
		return err
	}
	c.emit(opSlice, sliceArgs{start: start, stop: stop, step: step})
	return nil
}

// compileObjectProjection compiles a bare "*" wildcard (object-values
// projection).
func (c *compiler) compileObjectProjection() error {
	idx := c.emit(opEach, eachArgs{container: "object", keepNulls: true})
	if err := c.projectionBody(); err != nil {
		return err
	}
	c.closeEach(idx)
	return nil
}

// compileArrayProjection compiles "[*]".
func (c *compiler) compileArrayProjection() error {
	idx := c.emit(opEach, eachArgs{container: "array", keepNulls: true})
	if err := c.projectionBody(); err != nil {
		return err
	}
	c.closeEach(idx)
	return nil
}

// compileFlatten compiles "[]": flatten current by one level, then project
// over the flattened array exactly like "[*]".
func (c *compiler) compileFlatten() error {
	c.emit(opMerge, nil)
	idx := c.emit(opEach, eachArgs{container: "array", keepNulls: true})
	if err := c.projectionBody(); err != nil {
		return err
	}
	c.closeEach(idx)
	return nil
}

// compileFilter compiles "[?cond]": an array projection whose body first
// evaluates cond against each element, keeping the element unchanged when
// truthy and dropping it otherwise. The dropped branch pushes an explicit
// null as its reject signal; keepNulls is left false so runEach treats that
// signal as "skip" instead of accumulating it, unlike a plain projection's
// legitimately-null per-element results.
func (c *compiler) compileFilter() error {
	idx := c.emit(opEach, eachArgs{container: "array"})

	c.emit(opMarkCurrent, nil)
	if err := c.parseExpr(0); err != nil {
		return err
	}
	if err := c.expect(tRbracket); err != nil {
		return err
	}
	c.emit(opPushCurrent, nil)
	dropJump := c.emit(opJumpIfFalse, -1)

	c.emit(opPopCurrent, nil) // current := element
	c.emit(opDropMark, nil)
	if err := c.projectionBody(); err != nil {
		return err
	}
	endJump := c.emit(opJump, -1)

	c.patch(dropJump, len(c.ins))
	c.emit(opPush, nil) // current := null
	c.emit(opDropMark, nil)

	c.patch(endJump, len(c.ins))
	c.closeEach(idx)
	return nil
}

// projectionBody parses the chain of steps applied to each projected
// element: only "." ,"[", "[?" and "[]" continue a projection; anything
// else (pipe, or, a comparison, a closing bracket/brace/paren, comma,
// colon, eof) ends it and leaves the element unchanged.
func (c *compiler) projectionBody() error {
	for {
		switch c.peek().Type {
		case tDot:
			c.advance()
			if err := c.ledDot(); err != nil {
				return err
			}
		case tLbracket:
			c.advance()
			if err := c.compileBracket(); err != nil {
				return err
			}
		case tFilter:
			c.advance()
			if err := c.compileFilter(); err != nil {
				return err
			}
		case tMerge:
			c.advance()
			if err := c.compileFlatten(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// closeEach ends a projection loop body: it emits the back edge and
// back-patches the each instruction's exit target.
func (c *compiler) closeEach(eachIdx int) {
	c.emit(opJump, eachIdx)
	c.patch(eachIdx, len(c.ins))
}

// compileMultiSelectListContents compiles the comma-separated expression
// list inside "[" ... "]" (or ".[" ... "]"), guarded so a null current
// short-circuits to null per design note (b) in SPEC_FULL.md §5.
func (c *compiler) compileMultiSelectListContents() error {
	c.emit(opIsArray, nil) // reads as "is current nullish" per design note (b)
	skipJump := c.emit(opJumpIfTrue, -1)

	c.emit(opMarkCurrent, nil)
	count := 0
	first := true
	for {
		if !first {
			c.emit(opPopCurrent, nil)
		}
		first = false
		if err := c.parseExpr(0); err != nil {
			return err
		}
		c.emit(opPushCurrent, nil)
		count++
		if c.peek().Type == tComma {
			c.advance()
			continue
		}
		break
	}
	if err := c.expect(tRbracket); err != nil {
		return err
	}
	c.emit(opDropMark, nil)
	c.emit(opMakeArray, count)
	endJump := c.emit(opJump, -1)

	c.patch(skipJump, len(c.ins))
	c.patch(endJump, len(c.ins))
	return nil
}

// compileMultiSelectHash compiles "{" key ":" expr ("," key ":" expr)* "}",
// with the same null short-circuit as a multi-select-list.
func (c *compiler) compileMultiSelectHash() error {
	c.emit(opIsArray, nil)
	skipJump := c.emit(opJumpIfTrue, -1)

	c.emit(opMarkCurrent, nil)
	var keys []string
	first := true
	for {
		if !first {
			c.emit(opPopCurrent, nil)
		}
		first = false
		keyTok := c.advance()
		if keyTok.Type != tIdentifier {
			return &SyntaxError{Source: c.src, Token: keyTok, Expected: []TokenType{tIdentifier}, Message: "expected a key name in multi-select hash"}
		}
		if err := c.expect(tColon); err != nil {
			return err
		}
		if err := c.parseExpr(0); err != nil {
			return err
		}
		c.emit(opPushCurrent, nil)
		keys = append(keys, keyTok.Value.(string))
		if c.peek().Type == tComma {
			c.advance()
			continue
		}
		break
	}
	if err := c.expect(tRbrace); err != nil {
		return err
	}
	c.emit(opDropMark, nil)
	c.emit(opStoreKey, keys)
	endJump := c.emit(opJump, -1)

	c.patch(skipJump, len(c.ins))
	c.patch(endJump, len(c.ins))
	return nil
}

// compileFunctionCall compiles "name(" arg ("," arg)* ")"; the lexer has
// already folded the identifier into the tFunction token, so the opening
// paren is still pending in the stream.
func (c *compiler) compileFunctionCall(name string) error {
	if err := c.expect(tLparen); err != nil {
		return err
	}
	c.emit(opMarkCurrent, nil)
	argc := 0
	if c.peek().Type != tRparen {
		first := true
		for {
			if !first {
				c.emit(opPopCurrent, nil)
			}
			first = false
			if err := c.parseExpr(0); err != nil {
				return err
			}
			c.emit(opPushCurrent, nil)
			argc++
			if c.peek().Type == tComma {
				c.advance()
				continue
			}
			break
		}
	}
	if err := c.expect(tRparen); err != nil {
		return err
	}
	c.emit(opDropMark, nil)
	c.emit(opCall, callArgs{name: name, argc: argc})
	return nil
}
