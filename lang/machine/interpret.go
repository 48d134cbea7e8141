package machine

import (
	"fmt"

	"github.com/mna/diwa/lang/value"
)

// Interpret runs fn (the top-level script Function produced by the
// compiler) as the machine's first and only call frame, returning a
// RuntimeError if execution fails.
func (m *Machine) Interpret(fn *value.Function) error {
	m.resetStack()
	closure := m.allocClosure(fn)
	if err := m.push(value.ObjValue(closure)); err != nil {
		return err
	}
	m.frames = append(m.frames, frame{closure: closure, ip: 0, slots: 0})
	return m.run()
}

func (m *Machine) currentFrame() *frame { return &m.frames[len(m.frames)-1] }

func (m *Machine) readByte(fr *frame) byte {
	b := fr.closure.Function.Chunk.Code[fr.ip]
	fr.ip++
	return b
}

func (m *Machine) readUint16(fr *frame) int {
	hi := m.readByte(fr)
	lo := m.readByte(fr)
	return int(hi)<<8 | int(lo)
}

func (m *Machine) readUint24(fr *frame) int {
	b0 := m.readByte(fr)
	b1 := m.readByte(fr)
	b2 := m.readByte(fr)
	return int(b0)<<16 | int(b1)<<8 | int(b2)
}

func (m *Machine) readConstant(fr *frame, idx int) value.Value {
	return fr.closure.Function.Chunk.Constants[idx]
}

// run is the dispatch loop: a direct switch over the fetched opcode. `ip` is
// read and advanced directly on the current frame record (there is no
// separate local copy to write back), and the frame pointer is re-fetched
// after every operation that pushes or pops a frame.
func (m *Machine) run() error {
	fr := m.currentFrame()

	for {
		op := value.Opcode(m.readByte(fr))
		switch op {
		case value.OpConstant:
			idx := int(m.readByte(fr))
			if err := m.push(m.readConstant(fr, idx)); err != nil {
				return err
			}

		case value.OpLongConstant:
			idx := m.readUint24(fr)
			if err := m.push(m.readConstant(fr, idx)); err != nil {
				return err
			}

		case value.OpNull:
			if err := m.push(value.NullValue); err != nil {
				return err
			}
		case value.OpTrue:
			if err := m.push(value.BoolValue(true)); err != nil {
				return err
			}
		case value.OpFalse:
			if err := m.push(value.BoolValue(false)); err != nil {
				return err
			}
		case value.OpPop:
			m.pop()
		case value.OpDup:
			if err := m.push(m.peek(0)); err != nil {
				return err
			}

		case value.OpGetLocal:
			slot := m.readUint24(fr)
			if err := m.push(m.stack[fr.slots+slot]); err != nil {
				return err
			}
		case value.OpSetLocal:
			slot := m.readUint24(fr)
			m.stack[fr.slots+slot] = m.peek(0)

		case value.OpGetGlobal:
			idx := m.readUint24(fr)
			name := m.readConstant(fr, idx).AsObj().(*value.String)
			v, ok := m.globals.Get(name.Chars)
			if !ok {
				return m.runtimeError("Hindi kilala ang lagayan '%s'.", name.Chars)
			}
			if err := m.push(v); err != nil {
				return err
			}
		case value.OpDefineGlobal:
			idx := m.readUint24(fr)
			name := m.readConstant(fr, idx).AsObj().(*value.String)
			m.globals.Put(name.Chars, m.peek(0))
			m.pop()
		case value.OpSetGlobal:
			idx := m.readUint24(fr)
			name := m.readConstant(fr, idx).AsObj().(*value.String)
			if _, ok := m.globals.Get(name.Chars); !ok {
				return m.runtimeError("Hindi kilala ang lagayan '%s'.", name.Chars)
			}
			m.globals.Put(name.Chars, m.peek(0))

		case value.OpGetUpvalue:
			slot := m.readUint24(fr)
			if err := m.push(fr.closure.Upvalues[slot].Get()); err != nil {
				return err
			}
		case value.OpSetUpvalue:
			slot := m.readUint24(fr)
			fr.closure.Upvalues[slot].Set(m.peek(0))

		case value.OpGetProperty:
			if err := m.getProperty(fr); err != nil {
				return err
			}
		case value.OpSetProperty:
			if err := m.setProperty(fr); err != nil {
				return err
			}
		case value.OpGetSuper:
			idx := m.readUint24(fr)
			name := m.readConstant(fr, idx).AsObj().(*value.String)
			super := m.pop().AsObj().(*value.Class)
			receiver := m.pop()
			if err := m.bindMethod(super, name.Chars, receiver); err != nil {
				return err
			}

		case value.OpEqual:
			b := m.pop()
			a := m.pop()
			if err := m.push(value.BoolValue(a.Equal(b))); err != nil {
				return err
			}
		case value.OpGreater:
			if err := m.numericBinary(fr, func(a, b float64) value.Value { return value.BoolValue(a > b) }); err != nil {
				return err
			}
		case value.OpLess:
			if err := m.numericBinary(fr, func(a, b float64) value.Value { return value.BoolValue(a < b) }); err != nil {
				return err
			}

		case value.OpAdd:
			if err := m.add(); err != nil {
				return err
			}
		case value.OpSubtract:
			if err := m.numericBinary(fr, func(a, b float64) value.Value { return value.NumberValue(a - b) }); err != nil {
				return err
			}
		case value.OpMultiply:
			if err := m.numericBinary(fr, func(a, b float64) value.Value { return value.NumberValue(a * b) }); err != nil {
				return err
			}
		case value.OpDivide:
			if err := m.numericBinary(fr, func(a, b float64) value.Value { return value.NumberValue(a / b) }); err != nil {
				return err
			}
		case value.OpModulo:
			if err := m.modulo(); err != nil {
				return err
			}

		case value.OpNot:
			if err := m.push(value.BoolValue(m.pop().Falsey())); err != nil {
				return err
			}
		case value.OpNegate:
			if !m.peek(0).IsNumber() {
				return m.runtimeError("Ang operand ay dapat na numero.")
			}
			if err := m.push(value.NumberValue(-m.pop().AsNumber())); err != nil {
				return err
			}

		case value.OpPrint:
			v := m.pop()
			fmt.Fprintln(m.opts.Stdout, m.stringify(v))

		case value.OpJump:
			offset := m.readUint16(fr)
			fr.ip += offset
		case value.OpJumpIfFalse:
			offset := m.readUint16(fr)
			if m.peek(0).Falsey() {
				fr.ip += offset
			}
		case value.OpLoop:
			offset := m.readUint16(fr)
			fr.ip -= offset

		case value.OpCall:
			argCount := int(m.readByte(fr))
			if err := m.callValue(m.peek(argCount), argCount); err != nil {
				return err
			}
			fr = m.currentFrame()

		case value.OpInvoke:
			idx := m.readUint24(fr)
			name := m.readConstant(fr, idx).AsObj().(*value.String)
			argCount := int(m.readByte(fr))
			if err := m.invoke(name.Chars, argCount); err != nil {
				return err
			}
			fr = m.currentFrame()

		case value.OpSuperInvoke:
			idx := m.readUint24(fr)
			name := m.readConstant(fr, idx).AsObj().(*value.String)
			argCount := int(m.readByte(fr))
			super := m.pop().AsObj().(*value.Class)
			if err := m.invokeFromClass(super, name.Chars, argCount); err != nil {
				return err
			}
			fr = m.currentFrame()

		case value.OpClosure:
			idx := m.readUint24(fr)
			fn := m.readConstant(fr, idx).AsObj().(*value.Function)
			closure := m.allocClosure(fn)
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := m.readByte(fr)
				index := m.readByte(fr)
				if isLocal == 1 {
					closure.Upvalues[i] = m.captureUpvalue(fr.slots + int(index))
				} else {
					closure.Upvalues[i] = fr.closure.Upvalues[index]
				}
			}
			if err := m.push(value.ObjValue(closure)); err != nil {
				return err
			}

		case value.OpCloseUpvalue:
			m.closeUpvalues(len(m.stack) - 1)
			m.pop()

		case value.OpReturn:
			result := m.pop()
			base := fr.slots
			m.closeUpvalues(base)
			m.frames = m.frames[:len(m.frames)-1]
			if len(m.frames) == 0 {
				m.pop()
				return nil
			}
			m.stack = m.stack[:base]
			if err := m.push(result); err != nil {
				return err
			}
			fr = m.currentFrame()

		case value.OpClass:
			idx := m.readUint24(fr)
			name := m.readConstant(fr, idx).AsObj().(*value.String)
			if err := m.push(value.ObjValue(m.allocClass(name))); err != nil {
				return err
			}
		case value.OpInherit:
			if err := m.inherit(); err != nil {
				return err
			}
		case value.OpMethod:
			idx := m.readUint24(fr)
			name := m.readConstant(fr, idx).AsObj().(*value.String)
			m.defineMethod(name.Chars)

		case value.OpDefineArray:
			count := m.readUint16(fr)
			if err := m.defineArray(count); err != nil {
				return err
			}
		case value.OpDeclareArray:
			if err := m.declareArray(); err != nil {
				return err
			}
		case value.OpMultiArray:
			dims := m.readUint16(fr)
			if err := m.multiArray(dims); err != nil {
				return err
			}
		case value.OpGetElement:
			if err := m.getElement(); err != nil {
				return err
			}
		case value.OpSetElement:
			if err := m.setElement(); err != nil {
				return err
			}

		default:
			return m.runtimeError("Hindi kilalang opcode: %v.", op)
		}
	}
}
