package machine

import (
	"github.com/dolthub/swiss"
	"github.com/mna/diwa/lang/value"
)

// allocWeight is a fixed, approximate per-object cost used to decide when
// to collect. diwa does not track exact byte sizes of heap objects; a
// constant weight per allocation is a reasonable proxy for triggering
// collection at a roughly steady cadence.
const allocWeight = 64

func (m *Machine) trackAllocation(o value.HeapObject) {
	value.SetNext(o, m.objects)
	m.objects = o
	m.bytesAllocated += allocWeight
	if !m.opts.DisableGC && m.bytesAllocated > m.nextGC {
		m.Collect()
	}
}

func (m *Machine) intern(s string) *value.String {
	before := m.strings.Len()
	str := m.strings.Intern(s, &m.objects)
	if m.strings.Len() != before {
		m.bytesAllocated += allocWeight
	}
	return str
}

func (m *Machine) allocClosure(fn *value.Function) *value.Closure {
	c := &value.Closure{Function: fn, Upvalues: make([]*value.Upvalue, fn.UpvalueCount)}
	m.trackAllocation(c)
	return c
}

func (m *Machine) allocClass(name *value.String) *value.Class {
	c := &value.Class{Name: name, Methods: swiss.NewMap[string, *value.Closure](8)}
	m.trackAllocation(c)
	return c
}

func (m *Machine) allocInstance(class *value.Class) *value.Instance {
	i := &value.Instance{Class: class, Fields: swiss.NewMap[string, value.Value](8)}
	m.trackAllocation(i)
	return i
}

func (m *Machine) allocArray(elems []value.Value) *value.Array {
	a := &value.Array{Elems: elems}
	m.trackAllocation(a)
	return a
}

func (m *Machine) allocBoundMethod(receiver value.Value, method *value.Closure) *value.BoundMethod {
	b := &value.BoundMethod{Receiver: receiver, Method: method}
	m.trackAllocation(b)
	return b
}

// Collect runs one full mark-sweep cycle: mark every root-reachable
// object, drain the gray worklist, sweep the weak-referenced intern table,
// then sweep the all-objects list.
func (m *Machine) Collect() {
	m.gray = m.gray[:0]
	m.markRoots()
	m.traceReferences()
	m.strings.RemoveWhite()
	m.sweep()
	m.nextGC = m.bytesAllocated * gcGrowthFactor
}

func (m *Machine) markValue(v value.Value) {
	if v.IsObj() {
		m.markObject(v.AsObj())
	}
}

func (m *Machine) markObject(o value.HeapObject) {
	if o == nil || value.IsMarked(o) {
		return
	}
	value.SetMark(o, true)
	m.gray = append(m.gray, o)
}

func (m *Machine) markRoots() {
	for _, v := range m.stack {
		m.markValue(v)
	}
	for i := range m.frames {
		m.markObject(m.frames[i].closure)
	}
	for up := m.openUpvalues; up != nil; up = up.NextOpen {
		m.markObject(up)
	}
	m.globals.Iter(func(_ string, v value.Value) bool {
		m.markValue(v)
		return false
	})
}

// traceReferences blackens each gray object by marking the objects it
// refers to, growing the gray worklist until it drains.
func (m *Machine) traceReferences() {
	for len(m.gray) > 0 {
		o := m.gray[len(m.gray)-1]
		m.gray = m.gray[:len(m.gray)-1]
		m.blacken(o)
	}
}

func (m *Machine) blacken(o value.HeapObject) {
	switch v := o.(type) {
	case *value.Function:
		if v.Name != nil {
			m.markObject(v.Name)
		}
		for _, c := range v.Chunk.Constants {
			m.markValue(c)
		}
	case *value.Closure:
		m.markObject(v.Function)
		for _, up := range v.Upvalues {
			m.markObject(up)
		}
	case *value.Upvalue:
		if !v.IsOpen() {
			m.markValue(v.Closed)
		}
	case *value.Class:
		m.markObject(v.Name)
		v.Methods.Iter(func(_ string, method *value.Closure) bool {
			m.markObject(method)
			return false
		})
	case *value.Instance:
		m.markObject(v.Class)
		v.Fields.Iter(func(_ string, field value.Value) bool {
			m.markValue(field)
			return false
		})
	case *value.BoundMethod:
		m.markValue(v.Receiver)
		m.markObject(v.Method)
	case *value.Array:
		for _, e := range v.Elems {
			m.markValue(e)
		}
	case *value.String, *value.Native:
		// no outgoing references
	}
}

// sweep walks the intrusive all-objects list, dropping every object that
// was not reached from a root and clearing the mark bit on survivors for
// the next cycle.
func (m *Machine) sweep() {
	var prev value.HeapObject
	cur := m.objects
	for cur != nil {
		next := value.Next(cur)
		if value.IsMarked(cur) {
			value.SetMark(cur, false)
			prev = cur
		} else {
			if prev == nil {
				m.objects = next
			} else {
				value.SetNext(prev, next)
			}
		}
		cur = next
	}
}
