package machine

import "github.com/mna/diwa/lang/value"

// callValue inspects callee's heap type and dispatches accordingly.
func (m *Machine) callValue(callee value.Value, argCount int) error {
	if !callee.IsObj() {
		return m.runtimeError("Tanging mga gawain at uri lamang ang maaaring tawagin.")
	}
	switch o := callee.AsObj().(type) {
	case *value.Closure:
		return m.call(o, argCount)
	case *value.Native:
		args := m.stack[len(m.stack)-argCount:]
		result := o.Fn(args)
		m.stack = m.stack[:len(m.stack)-argCount-1]
		return m.push(result)
	case *value.Class:
		inst := m.allocInstance(o)
		m.stack[len(m.stack)-argCount-1] = value.ObjValue(inst)
		if init, ok := o.FindMethod(m.initName); ok {
			return m.call(init, argCount)
		}
		if argCount != 0 {
			return m.runtimeError("Umaasa ng 0 argumento ngunit may %d.", argCount)
		}
		return nil
	case *value.BoundMethod:
		m.stack[len(m.stack)-argCount-1] = o.Receiver
		return m.call(o.Method, argCount)
	case *value.Array:
		if argCount != 1 {
			return m.runtimeError("Umaasa ng 1 argumento para sa pag-index ng hanay.")
		}
		idxVal := m.pop()
		m.pop() // the array itself
		idx, err := m.arrayIndex(o, idxVal)
		if err != nil {
			return err
		}
		return m.push(o.Elems[idx])
	default:
		return m.runtimeError("Tanging mga gawain at uri lamang ang maaaring tawagin.")
	}
}

func (m *Machine) call(closure *value.Closure, argCount int) error {
	if argCount != closure.Function.Arity {
		return m.runtimeError("Umaasa ng %d argumento ngunit may %d.", closure.Function.Arity, argCount)
	}
	if len(m.frames) >= m.opts.MaxFrames {
		return m.runtimeError("Umaapaw ang salansan.")
	}
	m.frames = append(m.frames, frame{
		closure: closure,
		ip:      0,
		slots:   len(m.stack) - argCount - 1,
	})
	return nil
}

// invoke resolves name on the instance `argCount` slots below the stack
// top and calls it directly, without first materializing a BoundMethod.
// Fields shadow methods.
func (m *Machine) invoke(name string, argCount int) error {
	receiver := m.peek(argCount)
	inst, ok := receiver.AsObj().(*value.Instance)
	if !ok || !receiver.IsObj() {
		return m.runtimeError("Tanging instansya lamang ang may katangian.")
	}
	if field, ok := inst.Fields.Get(name); ok {
		m.stack[len(m.stack)-argCount-1] = field
		return m.callValue(field, argCount)
	}
	return m.invokeFromClass(inst.Class, name, argCount)
}

func (m *Machine) invokeFromClass(class *value.Class, name string, argCount int) error {
	method, ok := class.FindMethod(name)
	if !ok {
		return m.runtimeError("Walang tinukoy na katangian na '%s'.", name)
	}
	return m.call(method, argCount)
}

func (m *Machine) bindMethod(class *value.Class, name string, receiver value.Value) error {
	method, ok := class.FindMethod(name)
	if !ok {
		return m.runtimeError("Walang tinukoy na katangian na '%s'.", name)
	}
	bound := m.allocBoundMethod(receiver, method)
	return m.push(value.ObjValue(bound))
}

func (m *Machine) getProperty(fr *frame) error {
	idx := m.readUint24(fr)
	name := m.readConstant(fr, idx).AsObj().(*value.String)

	recv := m.peek(0)
	inst, ok := recv.AsObj().(*value.Instance)
	if !recv.IsObj() || !ok {
		return m.runtimeError("Tanging instansya lamang ang may katangian.")
	}
	if field, ok := inst.Fields.Get(name.Chars); ok {
		m.pop()
		return m.push(field)
	}
	m.pop()
	return m.bindMethod(inst.Class, name.Chars, recv)
}

func (m *Machine) setProperty(fr *frame) error {
	idx := m.readUint24(fr)
	name := m.readConstant(fr, idx).AsObj().(*value.String)

	recv := m.peek(1)
	inst, ok := recv.AsObj().(*value.Instance)
	if !recv.IsObj() || !ok {
		return m.runtimeError("Tanging instansya lamang ang may katangian.")
	}
	val := m.pop()
	m.pop()
	inst.Fields.Put(name.Chars, val)
	return m.push(val)
}

func (m *Machine) inherit() error {
	superVal := m.peek(1)
	super, ok := superVal.AsObj().(*value.Class)
	if !superVal.IsObj() || !ok {
		return m.runtimeError("Ang superclass ay dapat na isang uri.")
	}
	sub := m.peek(0).AsObj().(*value.Class)
	super.Methods.Iter(func(name string, method *value.Closure) bool {
		sub.Methods.Put(name, method)
		return false
	})
	m.pop() // drop the subclass copy; the superclass stays as the `mula` local
	return nil
}

func (m *Machine) defineMethod(name string) {
	method := m.peek(0).AsObj().(*value.Closure)
	class := m.peek(1).AsObj().(*value.Class)
	class.Methods.Put(name, method)
	m.pop()
}
