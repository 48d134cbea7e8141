package compiler

import "github.com/mna/diwa/lang/value"

// chunk returns the Chunk currently being written to: the innermost
// function's code.
func (c *Compiler) chunk() *value.Chunk { return &c.fn.function.Chunk }

func (c *Compiler) emitByte(b byte) {
	c.chunk().Write(b, int(c.previous.Line))
}

func (c *Compiler) emitOp(op value.Opcode) { c.emitByte(byte(op)) }

func (c *Compiler) emitOps(op1, op2 value.Opcode) {
	c.emitOp(op1)
	c.emitOp(op2)
}

// emitUint24 appends a 24-bit big-endian operand, used by LONG_CONSTANT, by
// local/upvalue slot and name-index operands, and by INVOKE/SUPER_INVOKE's
// name index (their argument count, like CALL's, is a single byte).
func (c *Compiler) emitUint24(x int) {
	c.emitByte(byte(x >> 16))
	c.emitByte(byte(x >> 8))
	c.emitByte(byte(x))
}

func (c *Compiler) emitUint16(x int) {
	c.emitByte(byte(x >> 8))
	c.emitByte(byte(x))
}

// makeConstant interns v into the current function's constant pool and
// returns its index, failing compilation if the pool overflows 24 bits.
func (c *Compiler) makeConstant(v value.Value) int {
	idx := c.chunk().AddConstant(v)
	if idx > 0xFFFFFF {
		c.errorAtPrevious("Masyadong maraming constant sa isang gawain.")
		return 0
	}
	return idx
}

// emitConstant pushes v onto the stack, choosing the one-byte CONSTANT form
// when the pool index fits in a byte and falling back to the 24-bit
// LONG_CONSTANT form otherwise.
func (c *Compiler) emitConstant(v value.Value) {
	idx := c.makeConstant(v)
	if idx < 256 {
		c.emitOp(value.OpConstant)
		c.emitByte(byte(idx))
		return
	}
	c.emitOp(value.OpLongConstant)
	c.emitUint24(idx)
}

// emitJump writes a jump opcode followed by a placeholder 16-bit offset and
// returns the offset of the placeholder, to be patched later by patchJump.
func (c *Compiler) emitJump(op value.Opcode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.chunk().Code) - 2
}

// patchJump backfills the placeholder written by emitJump with the distance
// from just after the placeholder to the current end of the chunk.
func (c *Compiler) patchJump(placeholder int) {
	jump := len(c.chunk().Code) - placeholder - 2
	if jump > 0xFFFF {
		c.errorAtPrevious("Masyadong mahaba ang tatalunin na code.")
		return
	}
	c.chunk().Code[placeholder] = byte(jump >> 8)
	c.chunk().Code[placeholder+1] = byte(jump)
}

// emitLoop writes a LOOP instruction that jumps backward to loopStart.
func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(value.OpLoop)
	offset := len(c.chunk().Code) - loopStart + 2
	if offset > 0xFFFF {
		c.errorAtPrevious("Masyadong mahaba ang loop body.")
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset))
}

func (c *Compiler) emitReturn() {
	if c.fn.kind == typeInitializer {
		// implicit `ibalik ito` at the end of sim()
		c.emitOp(value.OpGetLocal)
		c.emitUint24(0)
	} else {
		c.emitOp(value.OpNull)
	}
	c.emitOp(value.OpReturn)
}
