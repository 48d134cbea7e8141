package machine

import "github.com/mna/diwa/lang/value"

func (m *Machine) numericBinary(fr *frame, op func(a, b float64) value.Value) error {
	bv := m.peek(0)
	av := m.peek(1)
	if !av.IsNumber() || !bv.IsNumber() {
		return m.runtimeError("Ang mga operand ay dapat na numero.")
	}
	b := m.pop().AsNumber()
	a := m.pop().AsNumber()
	return m.push(op(a, b))
}

// add implements ADD: numeric addition when both operands are numbers,
// otherwise string concatenation, coercing either side to its canonical
// string form first.
func (m *Machine) add() error {
	b := m.peek(0)
	a := m.peek(1)
	if a.IsNumber() && b.IsNumber() {
		bn := m.pop().AsNumber()
		an := m.pop().AsNumber()
		return m.push(value.NumberValue(an + bn))
	}
	m.pop()
	m.pop()
	concatenated := m.stringify(a) + m.stringify(b)
	return m.push(value.ObjValue(m.intern(concatenated)))
}

// modulo converts both operands to integers before applying Go's %, giving
// an integer-truncating MODULO.
func (m *Machine) modulo() error {
	bv := m.peek(0)
	av := m.peek(1)
	if !av.IsNumber() || !bv.IsNumber() {
		return m.runtimeError("Ang mga operand ay dapat na numero.")
	}
	b := int64(m.pop().AsNumber())
	a := int64(m.pop().AsNumber())
	if b == 0 {
		return m.runtimeError("Hindi maaaring hatiin sa zero.")
	}
	return m.push(value.NumberValue(float64(a % b)))
}

// stringify renders v in the language's canonical textual form, used both
// by PRINT and by string-concatenation coercion.
func (m *Machine) stringify(v value.Value) string { return v.String() }
