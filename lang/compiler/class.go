package compiler

import (
	"github.com/mna/diwa/lang/token"
	"github.com/mna/diwa/lang/value"
)

// classDeclaration compiles `uri Name ( '<' Super )? { method* }`, emitting
// CLASS, an optional INHERIT against a resolved superclass, and one METHOD
// per member.
func (c *Compiler) classDeclaration() {
	c.consume(token.IDENT, "Inaasahan ang pangalan ng uri.")
	nameTok := c.previous
	nameIdx := c.identifierConstant(nameTok)
	c.declareVariable(nameTok)

	c.emitOp(value.OpClass)
	c.emitUint24(nameIdx)
	c.defineVariable(nameIdx)

	cs := &classState{enclosing: c.class}
	c.class = cs

	if c.match(token.LT) {
		c.consume(token.IDENT, "Inaasahan ang pangalan ng superclass.")
		if c.previous.Lexeme == nameTok.Lexeme {
			c.errorAtPrevious("Hindi maaaring magmana ang isang uri mula sa sarili nito.")
		}
		c.variable(false) // push the superclass value

		// `mula` lives in a synthetic scope wrapping every method, so it
		// resolves as an upvalue inside them without a source occurrence.
		c.beginScope()
		c.addLocal(token.Token{Kind: token.IDENT, Lexeme: "mula"})
		c.markInitialized()

		c.namedVariable(nameTok, false)
		c.emitOp(value.OpInherit)
		cs.hasSuperclass = true
	}

	c.namedVariable(nameTok, false)
	c.consume(token.LBRACE, "Inaasahan ang '{' bago ang katawan ng uri.")
	for !c.check(token.RBRACE) && !c.check(token.DONE) {
		c.method()
	}
	c.consume(token.RBRACE, "Inaasahan ang '}' pagkatapos ng katawan ng uri.")
	c.emitOp(value.OpPop) // discard the duplicated class value pushed above

	if cs.hasSuperclass {
		c.endScope()
	}
	c.class = cs.enclosing
}

// method parses a single class member. The implicit constructor's name,
// `sim`, is its own keyword token (INIT) rather than an identifier, so it
// is accepted alongside IDENT here.
func (c *Compiler) method() {
	if !c.check(token.IDENT) && !c.check(token.INIT) {
		c.errorAtCurrent("Inaasahan ang pangalan ng pamamaraan.")
		return
	}
	c.advance()
	nameTok := c.previous
	nameIdx := c.identifierConstant(nameTok)

	kind := typeMethod
	if nameTok.Kind == token.INIT {
		kind = typeInitializer
	}
	c.function(kind)

	c.emitOp(value.OpMethod)
	c.emitUint24(nameIdx)
}
