package compiler

import (
	"github.com/mna/diwa/lang/token"
	"github.com/mna/diwa/lang/value"
)

func (c *Compiler) beginScope() { c.fn.scopeDepth++ }

func (c *Compiler) endScope() {
	c.fn.scopeDepth--
	fs := c.fn
	for len(fs.locals) > 0 && fs.locals[len(fs.locals)-1].depth > fs.scopeDepth {
		last := fs.locals[len(fs.locals)-1]
		if last.isCaptured {
			c.emitOp(value.OpCloseUpvalue)
		} else {
			c.emitOp(value.OpPop)
		}
		fs.locals = fs.locals[:len(fs.locals)-1]
	}
}

// declareVariable registers tok as a new local in the current scope (a
// no-op at global scope, where names resolve dynamically by identifier
// string instead), rejecting a redeclaration within the same scope.
func (c *Compiler) declareVariable(tok token.Token) {
	if c.fn.scopeDepth == 0 {
		return
	}
	fs := c.fn
	for i := len(fs.locals) - 1; i >= 0; i-- {
		l := fs.locals[i]
		if l.depth != -1 && l.depth < fs.scopeDepth {
			break
		}
		if l.name == tok.Lexeme {
			c.errorAtPrevious("Mayroon nang variable na may ganitong pangalan sa scope na ito.")
		}
	}
	c.addLocal(tok)
}

func (c *Compiler) addLocal(tok token.Token) {
	fs := c.fn
	if len(fs.locals) >= maxLocals {
		c.errorAtPrevious("Masyadong maraming lokal na variable sa isang function.")
		return
	}
	fs.locals = append(fs.locals, local{name: tok.Lexeme, depth: -1})
}

// markInitialized commits the most recently declared local so it becomes
// visible to its own initializer's subsequent siblings.
func (c *Compiler) markInitialized() {
	if c.fn.scopeDepth == 0 {
		return
	}
	c.fn.locals[len(c.fn.locals)-1].depth = c.fn.scopeDepth
}

// parseVariable consumes an identifier, declares it if we are in a local
// scope, and returns the global-name constant index to use if we are not.
func (c *Compiler) parseVariable(message string) int {
	c.consume(token.IDENT, message)
	c.declareVariable(c.previous)
	if c.fn.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous)
}

func (c *Compiler) defineVariable(globalIdx int) {
	if c.fn.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOp(value.OpDefineGlobal)
	c.emitUint24(globalIdx)
}

// resolveLocal searches fs's locals from innermost to outermost, returning
// its slot index, or -1 if name is not a local of fs. A local found with
// depth -1 is still being initialized by its own declaration, e.g.
// `kilalanin a = a;`, which is a compile error rather than a fall-through
// to an enclosing upvalue or global of the same name.
func (c *Compiler) resolveLocal(fs *funcState, name string) int {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if fs.locals[i].name == name {
			if fs.locals[i].depth == -1 {
				c.errorAtPrevious("Hindi mabasa ang lokal na variable sa sarili nitong initializer.")
				return -1
			}
			return i
		}
	}
	return -1
}

// resolveUpvalue searches fs's enclosing function chain for name, adding an
// upvalue entry to fs (and to every function between fs and where name was
// found as a local) so the closure created for fs can capture it. This
// mirrors the runtime's open/closed upvalue capture algorithm, but resolved
// here at compile time.
func (c *Compiler) resolveUpvalue(fs *funcState, name string) int {
	if fs.enclosing == nil {
		return -1
	}
	if local := c.resolveLocal(fs.enclosing, name); local != -1 {
		fs.enclosing.locals[local].isCaptured = true
		return c.addUpvalue(fs, uint8(local), true)
	}
	if up := c.resolveUpvalue(fs.enclosing, name); up != -1 {
		return c.addUpvalue(fs, uint8(up), false)
	}
	return -1
}

const maxUpvalues = 256

func (c *Compiler) addUpvalue(fs *funcState, index uint8, isLocal bool) int {
	for i, u := range fs.upvalues {
		if u.index == index && u.isLocal == isLocal {
			return i
		}
	}
	if len(fs.upvalues) >= maxUpvalues {
		c.errorAtPrevious("Masyadong maraming upvalue sa isang function.")
		return 0
	}
	fs.upvalues = append(fs.upvalues, upvalue{index: index, isLocal: isLocal})
	fs.function.UpvalueCount = len(fs.upvalues)
	return len(fs.upvalues) - 1
}
