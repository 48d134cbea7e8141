package machine

import "github.com/mna/diwa/lang/value"

// defineArray builds an array literal from the `count` elements the
// compiler just pushed in source order; DEFINE_ARRAY's operand is the
// element count.
func (m *Machine) defineArray(count int) error {
	elems := make([]value.Value, count)
	copy(elems, m.stack[len(m.stack)-count:])
	m.stack = m.stack[:len(m.stack)-count]
	return m.push(value.ObjValue(m.allocArray(elems)))
}

// declareArray allocates a flat array of null slots sized by the popped
// dimension expression, e.g. `kilalanin xs[5];`.
func (m *Machine) declareArray() error {
	sizeVal := m.pop()
	if !sizeVal.IsNumber() {
		return m.runtimeError("Ang laki ng hanay ay dapat na numero.")
	}
	n := int(sizeVal.AsNumber())
	if n < 0 {
		return m.runtimeError("Hindi maaaring negatibo ang laki ng hanay.")
	}
	elems := make([]value.Value, n)
	for i := range elems {
		elems[i] = value.NullValue
	}
	return m.push(value.ObjValue(m.allocArray(elems)))
}

// multiArray builds a nested array from `dims` popped dimension sizes,
// allocating a distinct inner array per outer slot rather than sharing one
// inner array by reference.
func (m *Machine) multiArray(dims int) error {
	sizes := make([]int, dims)
	for i := dims - 1; i >= 0; i-- {
		v := m.pop()
		if !v.IsNumber() {
			return m.runtimeError("Ang laki ng hanay ay dapat na numero.")
		}
		n := int(v.AsNumber())
		if n < 0 {
			return m.runtimeError("Hindi maaaring negatibo ang laki ng hanay.")
		}
		sizes[i] = n
	}
	return m.push(value.ObjValue(m.buildNestedArray(sizes)))
}

func (m *Machine) buildNestedArray(sizes []int) *value.Array {
	n := sizes[0]
	elems := make([]value.Value, n)
	if len(sizes) == 1 {
		for i := range elems {
			elems[i] = value.NullValue
		}
	} else {
		for i := range elems {
			elems[i] = value.ObjValue(m.buildNestedArray(sizes[1:]))
		}
	}
	return m.allocArray(elems)
}

// arrayIndex resolves idxVal against arr's bounds, accepting negative
// indices that count from the end.
func (m *Machine) arrayIndex(arr *value.Array, idxVal value.Value) (int, error) {
	if !idxVal.IsNumber() {
		return 0, m.runtimeError("Ang index ng hanay ay dapat na numero.")
	}
	idx := int(idxVal.AsNumber())
	if idx < 0 {
		idx += len(arr.Elems)
	}
	if idx < 0 || idx >= len(arr.Elems) {
		return 0, m.runtimeError("Wala sa saklaw ang index ng hanay.")
	}
	return idx, nil
}

func (m *Machine) getElement() error {
	idxVal := m.pop()
	arrVal := m.pop()
	arr, ok := arrVal.AsObj().(*value.Array)
	if !arrVal.IsObj() || !ok {
		return m.runtimeError("Tanging mga hanay lamang ang maaaring i-index.")
	}
	idx, err := m.arrayIndex(arr, idxVal)
	if err != nil {
		return err
	}
	return m.push(arr.Elems[idx])
}

func (m *Machine) setElement() error {
	val := m.pop()
	idxVal := m.pop()
	arrVal := m.pop()
	arr, ok := arrVal.AsObj().(*value.Array)
	if !arrVal.IsObj() || !ok {
		return m.runtimeError("Tanging mga hanay lamang ang maaaring i-index.")
	}
	idx, err := m.arrayIndex(arr, idxVal)
	if err != nil {
		return err
	}
	arr.Elems[idx] = val
	return m.push(val)
}
