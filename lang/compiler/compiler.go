// Package compiler turns diwa source text directly into bytecode, without
// building an intermediate syntax tree: a single Pratt-parsing pass scans
// tokens, resolves variables against the lexical scope it is walking, and
// emits instructions as it goes. Scanning, parsing and name resolution
// collapse into one pass by design; the emission helpers, the opcode
// table and the pseudo-assembly shape are shared with the disassembler and
// machine packages.
package compiler

import (
	"fmt"
	"io"

	"github.com/mna/diwa/lang/lexer"
	"github.com/mna/diwa/lang/token"
	"github.com/mna/diwa/lang/value"
)

// Error is a single compile-time diagnostic, with the source line and
// lexeme it was reported against.
type Error struct {
	Line    int
	Where   string
	Message string
}

func (e Error) Error() string {
	if e.Where == "" {
		return fmt.Sprintf("[linya %d] Mali: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("[linya %d] Mali sa '%s': %s", e.Line, e.Where, e.Message)
}

// Compiler drives one top-level compilation: it owns the token stream and
// the stack of funcState/classState/loopState frames active while walking
// nested functions, classes and loops.
type Compiler struct {
	lex lexer.Lexer

	previous token.Token
	current  token.Token

	hadError  bool
	panicMode bool
	errs      []Error

	strings *value.Strings
	objs    *value.HeapObject // all-objects list head, shared with the machine

	fn    *funcState
	class *classState
	loop  *loopState
}

// New creates a Compiler that interns strings into strs and links every
// heap object it allocates (function prototypes, string constants) into
// objs, the list the machine's garbage collector walks.
func New(strs *value.Strings, objs *value.HeapObject) *Compiler {
	return &Compiler{strings: strs, objs: objs}
}

// Compile compiles src as a top-level script and returns the resulting
// Function (whose Chunk holds the bytecode for diwa's implicit main
// script), or reports the diagnostics collected during panic-mode recovery.
func (c *Compiler) Compile(src string) (*value.Function, []Error) {
	c.lex.Init(src)
	c.fn = newFuncState(nil, typeScript)
	c.class = nil
	c.loop = nil
	c.hadError = false
	c.panicMode = false
	c.errs = nil

	c.advance()
	for !c.match(token.DONE) {
		c.declaration()
	}
	fn, _ := c.endFunction()
	if c.hadError {
		return nil, c.errs
	}
	return fn, nil
}

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.lex.Scan()
		if c.current.Kind != token.PROBLEM {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(k token.Kind) bool { return c.current.Kind == k }

func (c *Compiler) match(k token.Kind) bool {
	if !c.check(k) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(k token.Kind, message string) {
	if c.current.Kind == k {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

func (c *Compiler) errorAtCurrent(message string) { c.errorAt(c.current, message) }
func (c *Compiler) errorAtPrevious(message string) { c.errorAt(c.previous, message) }

func (c *Compiler) errorAt(tok token.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	where := tok.Lexeme
	if tok.Kind == token.DONE {
		where = "dulo"
	}
	c.errs = append(c.errs, Error{Line: int(tok.Line), Where: where, Message: message})
}

// synchronize discards tokens until it reaches a plausible statement
// boundary, so one compile error does not cascade into spurious ones
//.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Kind != token.DONE {
		if c.previous.Kind == token.SEMI {
			return
		}
		switch c.current.Kind {
		case token.CLASS, token.FUNCTION, token.VAR, token.FOR, token.IF,
			token.WHILE, token.PRINT, token.RETURN, token.SWITCH:
			return
		}
		c.advance()
	}
}

// intern wraps a scanned lexeme into a shared String constant, linking any
// newly allocated String into the machine's object list.
func (c *Compiler) intern(s string) *value.String {
	return c.strings.Intern(s, c.objs)
}

func (c *Compiler) identifierConstant(tok token.Token) int {
	return c.makeConstant(value.ObjValue(c.intern(tok.Lexeme)))
}

func (c *Compiler) parsePrecedence(prec precedence) {
	c.advance()
	r := getRule(c.previous.Kind)
	if r.prefix == nil {
		c.errorAtPrevious("Inaasahan ang expression.")
		return
	}
	canAssign := prec <= precAssignment
	r.prefix(c, canAssign)

	for prec <= getRule(c.current.Kind).precedence {
		c.advance()
		infix := getRule(c.previous.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.EQ) {
		c.errorAtPrevious("Hindi wastong target ng pagtatalaga.")
	}
}

func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }

// writeErrors prints each diagnostic on its own line to w. Nothing in the
// repository calls it; Compile itself returns structured Errors.
func writeErrors(w io.Writer, errs []Error) {
	for _, e := range errs {
		fmt.Fprintln(w, e.Error())
	}
}
