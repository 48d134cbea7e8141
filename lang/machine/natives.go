package machine

import (
	"strconv"
	"strings"
	"time"

	"github.com/mna/diwa/lang/value"
)

// defineNative interns name, allocates the Native wrapper, and installs it
// into globals. Both the interned name and the freshly allocated Native
// are pushed onto the value stack before the table insert and popped only
// afterward, so a GC cycle triggered mid-allocation cannot reclaim either
// one.
func (m *Machine) defineNative(name string, fn value.NativeFn) {
	nameStr := m.intern(name)
	if err := m.push(value.ObjValue(nameStr)); err != nil {
		panic(err)
	}
	native := &value.Native{Name: name, Fn: fn}
	m.trackAllocation(native)
	if err := m.push(value.ObjValue(native)); err != nil {
		panic(err)
	}
	m.globals.Put(nameStr.Chars, m.peek(0))
	m.pop()
	m.pop()
}

func (m *Machine) registerNatives() {
	m.defineNative("oras", m.nativeOras)
	m.defineNative("basahin", m.nativeBasahin)
	m.defineNative("mayKatangian", nativeMayKatangian)
}

// oras approximates seconds of process CPU time as wall-clock elapsed since
// the Machine was created: Go's standard library exposes no
// portable per-process CPU-time counter, and this VM is single-threaded and
// runs to completion without blocking, so elapsed wall time and CPU time
// coincide for the scripts this language runs.
func (m *Machine) nativeOras(args []value.Value) value.Value {
	return value.NumberValue(time.Since(m.started).Seconds())
}

// basahin reads a single line from standard input (without its trailing
// newline), returning it as a Number if it is wholly digits with an
// optional decimal point, otherwise as a String.
func (m *Machine) nativeBasahin(args []value.Value) value.Value {
	line, err := m.stdin.ReadString('\n')
	if err != nil && line == "" {
		return value.NullValue
	}
	line = strings.TrimRight(line, "\r\n")
	if looksNumeric(line) {
		if n, err := strconv.ParseFloat(line, 64); err == nil {
			return value.NumberValue(n)
		}
	}
	return value.ObjValue(m.intern(line))
}

// looksNumeric reports whether s is composed entirely of digits with at
// most one decimal point, the coercion test basahin applies before trying
// to parse a line as a Number.
func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	seenDot := false
	seenDigit := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
		case r == '.' && !seenDot:
			seenDot = true
		default:
			return false
		}
	}
	return seenDigit
}

// mayKatangian(instance, name) reports whether `name` is a key in
// instance's own field table, without raising a runtime error the way
// GET_PROPERTY would for a missing name. Method names do not count: a
// method is not a field until the instance has been assigned one under
// that name.
func nativeMayKatangian(args []value.Value) value.Value {
	if len(args) != 2 || !args[0].IsObj() {
		return value.BoolValue(false)
	}
	inst, ok := args[0].AsObj().(*value.Instance)
	if !ok || !args[1].IsObj() {
		return value.BoolValue(false)
	}
	name, ok := args[1].AsObj().(*value.String)
	if !ok {
		return value.BoolValue(false)
	}
	_, ok = inst.Fields.Get(name.Chars)
	return value.BoolValue(ok)
}
