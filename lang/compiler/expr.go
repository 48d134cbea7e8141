package compiler

import (
	"strconv"

	"github.com/mna/diwa/lang/token"
	"github.com/mna/diwa/lang/value"
)

func (c *Compiler) number(canAssign bool) {
	n, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.errorAtPrevious("Hindi wastong numero.")
		return
	}
	c.emitConstant(value.NumberValue(n))
}

func (c *Compiler) stringLiteral(canAssign bool) {
	c.emitConstant(value.ObjValue(c.intern(c.previous.Lexeme)))
}

func (c *Compiler) literal(canAssign bool) {
	switch c.previous.Kind {
	case token.FALSE:
		c.emitOp(value.OpFalse)
	case token.TRUE:
		c.emitOp(value.OpTrue)
	case token.NULL:
		c.emitOp(value.OpNull)
	}
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(token.RPAREN, "Inaasahan ang ')' pagkatapos ng expression.")
}

func (c *Compiler) unary(canAssign bool) {
	opKind := c.previous.Kind
	c.parsePrecedence(precUnary)
	switch opKind {
	case token.MINUS:
		c.emitOp(value.OpNegate)
	case token.BANG:
		c.emitOp(value.OpNot)
	}
}

func (c *Compiler) binary(canAssign bool) {
	opKind := c.previous.Kind
	r := getRule(opKind)
	c.parsePrecedence(r.precedence + 1)

	switch opKind {
	case token.PLUS:
		c.emitOp(value.OpAdd)
	case token.MINUS:
		c.emitOp(value.OpSubtract)
	case token.STAR:
		c.emitOp(value.OpMultiply)
	case token.SLASH:
		c.emitOp(value.OpDivide)
	case token.PERCENT:
		c.emitOp(value.OpModulo)
	case token.BANGEQ:
		c.emitOps(value.OpEqual, value.OpNot)
	case token.EQEQ:
		c.emitOp(value.OpEqual)
	case token.GT:
		c.emitOp(value.OpGreater)
	case token.GE:
		c.emitOps(value.OpLess, value.OpNot)
	case token.LT:
		c.emitOp(value.OpLess)
	case token.LE:
		c.emitOps(value.OpGreater, value.OpNot)
	}
}

func (c *Compiler) and(canAssign bool) {
	endJump := c.emitJump(value.OpJumpIfFalse)
	c.emitOp(value.OpPop)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or(canAssign bool) {
	elseJump := c.emitJump(value.OpJumpIfFalse)
	endJump := c.emitJump(value.OpJump)
	c.patchJump(elseJump)
	c.emitOp(value.OpPop)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

// variable compiles an identifier reference, resolving it as a local, an
// upvalue, or a global (in that order), and compiles it as an assignment
// target if canAssign and an `=`, `++` or `--` follows.
func (c *Compiler) variable(canAssign bool) { c.namedVariable(c.previous, canAssign) }

func (c *Compiler) namedVariable(tok token.Token, canAssign bool) {
	var getOp, setOp value.Opcode
	var arg int

	if local := c.resolveLocal(c.fn, tok.Lexeme); local != -1 {
		getOp, setOp, arg = value.OpGetLocal, value.OpSetLocal, local
	} else if up := c.resolveUpvalue(c.fn, tok.Lexeme); up != -1 {
		getOp, setOp, arg = value.OpGetUpvalue, value.OpSetUpvalue, up
	} else {
		arg = c.identifierConstant(tok)
		getOp, setOp = value.OpGetGlobal, value.OpSetGlobal
	}

	switch {
	case canAssign && c.match(token.EQ):
		c.expression()
		c.emitOp(setOp)
		c.emitUint24(arg)
	case canAssign && (c.check(token.PLUSPLUS) || c.check(token.MINUSMINUS)):
		// Postfix ++/-- on an identifier: leave the pre-increment value on
		// the stack, then store the updated one. Increment/decrement is
		// identifier-only sugar, not a general l-value expression.
		incr := c.current.Kind == token.PLUSPLUS
		c.advance()
		c.emitOp(getOp)
		c.emitUint24(arg)
		c.emitOp(value.OpDup)
		c.emitConstant(value.NumberValue(1))
		if incr {
			c.emitOp(value.OpAdd)
		} else {
			c.emitOp(value.OpSubtract)
		}
		c.emitOp(setOp)
		c.emitUint24(arg)
		c.emitOp(value.OpPop)
	default:
		c.emitOp(getOp)
		c.emitUint24(arg)
	}
}

// prefixIncDecIdent compiles `++name`/`--name`, storing and leaving the
// post-increment value.
func (c *Compiler) prefixIncDecIdent(incr bool) {
	c.consume(token.IDENT, "Inaasahan ang pangalan ng variable pagkatapos ng '++'/'--'.")
	tok := c.previous
	var getOp, setOp value.Opcode
	var arg int
	if local := c.resolveLocal(c.fn, tok.Lexeme); local != -1 {
		getOp, setOp, arg = value.OpGetLocal, value.OpSetLocal, local
	} else if up := c.resolveUpvalue(c.fn, tok.Lexeme); up != -1 {
		getOp, setOp, arg = value.OpGetUpvalue, value.OpSetUpvalue, up
	} else {
		arg = c.identifierConstant(tok)
		getOp, setOp = value.OpGetGlobal, value.OpSetGlobal
	}
	c.emitOp(getOp)
	c.emitUint24(arg)
	c.emitConstant(value.NumberValue(1))
	if incr {
		c.emitOp(value.OpAdd)
	} else {
		c.emitOp(value.OpSubtract)
	}
	c.emitOp(setOp)
	c.emitUint24(arg)
}

func (c *Compiler) this(canAssign bool) {
	if c.class == nil {
		c.errorAtPrevious("Hindi magagamit ang 'ito' sa labas ng isang uri.")
		return
	}
	c.variable(false)
}

func (c *Compiler) super(canAssign bool) {
	if c.class == nil {
		c.errorAtPrevious("Hindi magagamit ang 'mula' sa labas ng isang uri.")
		return
	} else if !c.class.hasSuperclass {
		c.errorAtPrevious("Hindi magagamit ang 'mula' sa isang uri na walang superclass.")
	}
	c.consume(token.DOT, "Inaasahan ang '.' pagkatapos ng 'mula'.")
	c.consume(token.IDENT, "Inaasahan ang pangalan ng pamamaraan ng superclass.")
	nameIdx := c.identifierConstant(c.previous)

	c.namedVariable(token.Token{Kind: token.IDENT, Lexeme: "ito"}, false)
	if c.match(token.LPAREN) {
		argCount := c.argumentList()
		c.namedVariable(token.Token{Kind: token.IDENT, Lexeme: "mula"}, false)
		c.emitOp(value.OpSuperInvoke)
		c.emitUint24(nameIdx)
		c.emitByte(byte(argCount))
		return
	}
	c.namedVariable(token.Token{Kind: token.IDENT, Lexeme: "mula"}, false)
	c.emitOp(value.OpGetSuper)
	c.emitUint24(nameIdx)
}

func (c *Compiler) call(canAssign bool) {
	argCount := c.argumentList()
	c.emitOp(value.OpCall)
	c.emitByte(byte(argCount))
}

func (c *Compiler) argumentList() int {
	argCount := 0
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			if argCount == 255 {
				c.errorAtPrevious("Hindi maaaring lumampas sa 255 na argumento.")
			}
			argCount++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Inaasahan ang ')' pagkatapos ng mga argumento.")
	return argCount
}

func (c *Compiler) dot(canAssign bool) {
	c.consume(token.IDENT, "Inaasahan ang pangalan ng katangian pagkatapos ng '.'.")
	nameIdx := c.identifierConstant(c.previous)

	if canAssign && c.match(token.EQ) {
		c.expression()
		c.emitOp(value.OpSetProperty)
		c.emitUint24(nameIdx)
		return
	}
	if c.match(token.LPAREN) {
		argCount := c.argumentList()
		c.emitOp(value.OpInvoke)
		c.emitUint24(nameIdx)
		c.emitByte(byte(argCount))
		return
	}
	c.emitOp(value.OpGetProperty)
	c.emitUint24(nameIdx)
}

// arrayLiteral compiles a `[e1, e2, ...]` literal as a prefix expression.
func (c *Compiler) arrayLiteral(canAssign bool) {
	count := 0
	if !c.check(token.RBRACK) {
		for {
			c.expression()
			count++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RBRACK, "Inaasahan ang ']' pagkatapos ng mga elemento ng hanay.")
	c.emitOp(value.OpDefineArray)
	c.emitUint16(count)
}

// index compiles `[` as an infix operator: subscripting an already-parsed
// array expression, or assigning into one of its slots.
func (c *Compiler) index(canAssign bool) {
	c.expression()
	c.consume(token.RBRACK, "Inaasahan ang ']' pagkatapos ng index.")
	if canAssign && c.match(token.EQ) {
		c.expression()
		c.emitOp(value.OpSetElement)
		return
	}
	c.emitOp(value.OpGetElement)
}

// prefixIncDec handles `++`/`--` only as a prefix operator on an identifier
// (postfix forms are resolved inside namedVariable, where the target's
// local/upvalue/global slot is already known).
func (c *Compiler) prefixIncDec(canAssign bool) {
	c.prefixIncDecIdent(c.previous.Kind == token.PLUSPLUS)
}
