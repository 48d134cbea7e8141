// Package disasm renders a compiled Chunk as human-readable pseudo-assembly,
// one line per instruction, for the `disasm` CLI subcommand and for tests
// that want to assert on emitted bytecode without decoding it by hand: a
// small writer type accumulating into a bytes.Buffer, one function per
// instruction category, offsets and operands rendered as fixed-width
// decimal fields followed by a trailing comment.
package disasm

import (
	"bytes"
	"fmt"

	"github.com/mna/diwa/lang/value"
)

// Function disassembles fn and, recursively, every nested function found in
// its constant pool, producing a single textual listing in depth-first
// order. Nested functions appear after the function that defines them,
// matching the order the compiler would have compiled them in.
func Function(fn *value.Function) string {
	var buf bytes.Buffer
	d := &disasm{buf: &buf}
	d.writeFunction(fn)
	return buf.String()
}

// Instruction disassembles the single instruction starting at offset in
// chunk, returning its textual form and the offset of the next
// instruction. It is exported separately from Function so callers that
// want an instruction-by-instruction walk (e.g. a future step-debugger) do
// not need to re-render the whole chunk.
func Instruction(chunk *value.Chunk, offset int) (string, int) {
	d := &disasm{buf: new(bytes.Buffer)}
	next := d.instruction(chunk, offset)
	return d.buf.String(), next
}

type disasm struct {
	buf *bytes.Buffer
}

func (d *disasm) writeFunction(fn *value.Function) {
	name := "<skrip>"
	if fn.Name != nil {
		name = fn.Name.Chars
	}
	fmt.Fprintf(d.buf, "== %s (arity %d, upvalues %d) ==\n", name, fn.Arity, fn.UpvalueCount)

	chunk := &fn.Chunk
	offset := 0
	for offset < len(chunk.Code) {
		offset = d.instruction(chunk, offset)
	}

	// nested functions, collected from the constant pool in pool order
	for _, c := range chunk.Constants {
		if !c.IsObj() {
			continue
		}
		if nested, ok := c.AsObj().(*value.Function); ok {
			d.buf.WriteByte('\n')
			d.writeFunction(nested)
		}
	}
}

// instruction decodes and writes the instruction at offset, returning the
// offset of the next one. Layout follows the operand widths fixed by the
// compiler's emit helpers (lang/compiler/emit.go): most indices are 24-bit
// big-endian, jumps are 16-bit, argument counts and CLOSURE's per-upvalue
// descriptors are single bytes.
func (d *disasm) instruction(chunk *value.Chunk, offset int) int {
	fmt.Fprintf(d.buf, "%04d ", offset)
	if line := chunk.Line(offset); offset > 0 && line == chunk.Line(offset-1) {
		d.buf.WriteString("   | ")
	} else {
		fmt.Fprintf(d.buf, "%4d ", line)
	}

	op := value.Opcode(chunk.Code[offset])
	switch op {
	case value.OpConstant:
		return d.constantInstruction(op, chunk, offset, 1)
	case value.OpLongConstant:
		return d.constantInstruction(op, chunk, offset, 3)

	case value.OpNull, value.OpTrue, value.OpFalse, value.OpPop, value.OpDup,
		value.OpEqual, value.OpGreater, value.OpLess,
		value.OpAdd, value.OpSubtract, value.OpMultiply, value.OpDivide, value.OpModulo,
		value.OpNot, value.OpNegate, value.OpPrint, value.OpCloseUpvalue, value.OpReturn,
		value.OpInherit, value.OpDeclareArray, value.OpGetElement, value.OpSetElement:
		return d.simpleInstruction(op, offset)

	case value.OpGetLocal, value.OpSetLocal, value.OpGetUpvalue, value.OpSetUpvalue:
		return d.uint24Instruction(op, chunk, offset, "slot")

	case value.OpGetGlobal, value.OpDefineGlobal, value.OpSetGlobal,
		value.OpGetProperty, value.OpSetProperty, value.OpGetSuper,
		value.OpClass, value.OpMethod:
		return d.constantInstruction(op, chunk, offset, 3)

	case value.OpJump, value.OpJumpIfFalse:
		return d.jumpInstruction(op, chunk, offset, 1)
	case value.OpLoop:
		return d.jumpInstruction(op, chunk, offset, -1)

	case value.OpCall:
		return d.byteInstruction(op, chunk, offset, "args")

	case value.OpInvoke, value.OpSuperInvoke:
		return d.invokeInstruction(op, chunk, offset)

	case value.OpClosure:
		return d.closureInstruction(chunk, offset)

	case value.OpDefineArray:
		return d.uint16Instruction(op, chunk, offset, "count")
	case value.OpMultiArray:
		return d.uint16Instruction(op, chunk, offset, "dims")

	default:
		fmt.Fprintf(d.buf, "illegal op (%d)\n", op)
		return offset + 1
	}
}

func (d *disasm) simpleInstruction(op value.Opcode, offset int) int {
	fmt.Fprintf(d.buf, "%s\n", op)
	return offset + 1
}

func (d *disasm) byteInstruction(op value.Opcode, chunk *value.Chunk, offset int, label string) int {
	b := chunk.Code[offset+1]
	fmt.Fprintf(d.buf, "%-14s %4d\t# %s\n", op, b, label)
	return offset + 2
}

func (d *disasm) uint16Instruction(op value.Opcode, chunk *value.Chunk, offset int, label string) int {
	v := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	fmt.Fprintf(d.buf, "%-14s %4d\t# %s\n", op, v, label)
	return offset + 3
}

func (d *disasm) uint24Instruction(op value.Opcode, chunk *value.Chunk, offset int, label string) int {
	v := int(chunk.Code[offset+1])<<16 | int(chunk.Code[offset+2])<<8 | int(chunk.Code[offset+3])
	fmt.Fprintf(d.buf, "%-14s %4d\t# %s\n", op, v, label)
	return offset + 4
}

func (d *disasm) constantInstruction(op value.Opcode, chunk *value.Chunk, offset int, operandWidth int) int {
	var idx int
	switch operandWidth {
	case 1:
		idx = int(chunk.Code[offset+1])
	default:
		idx = int(chunk.Code[offset+1])<<16 | int(chunk.Code[offset+2])<<8 | int(chunk.Code[offset+3])
	}
	v := chunk.Constants[idx]
	fmt.Fprintf(d.buf, "%-14s %4d\t# %s\n", op, idx, v.String())
	return offset + 1 + operandWidth
}

// jumpInstruction renders JUMP/JUMP_IF_FALSE (sign +1) and LOOP (sign -1),
// resolving the 16-bit operand to an absolute target offset for readability.
func (d *disasm) jumpInstruction(op value.Opcode, chunk *value.Chunk, offset int, sign int) int {
	jump := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	target := offset + 3 + sign*jump
	fmt.Fprintf(d.buf, "%-14s %4d -> %d\n", op, offset, target)
	return offset + 3
}

func (d *disasm) invokeInstruction(op value.Opcode, chunk *value.Chunk, offset int) int {
	idx := int(chunk.Code[offset+1])<<16 | int(chunk.Code[offset+2])<<8 | int(chunk.Code[offset+3])
	argCount := chunk.Code[offset+4]
	name := chunk.Constants[idx]
	fmt.Fprintf(d.buf, "%-14s %4d (%d args)\t# %s\n", op, idx, argCount, name.String())
	return offset + 5
}

func (d *disasm) closureInstruction(chunk *value.Chunk, offset int) int {
	idx := int(chunk.Code[offset+1])<<16 | int(chunk.Code[offset+2])<<8 | int(chunk.Code[offset+3])
	fnVal := chunk.Constants[idx]
	fmt.Fprintf(d.buf, "%-14s %4d\t# %s\n", value.OpClosure, idx, fnVal.String())
	offset += 4

	fn, ok := fnVal.AsObj().(*value.Function)
	if !ok {
		return offset
	}
	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := chunk.Code[offset]
		index := chunk.Code[offset+1]
		kind := "upvalue"
		if isLocal == 1 {
			kind = "local"
		}
		fmt.Fprintf(d.buf, "%04d      |                     %s %d\n", offset, kind, index)
		offset += 2
	}
	return offset
}
