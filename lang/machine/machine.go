// Package machine executes the bytecode produced by the compiler: a
// stack-based interpreter with closures, classes, bound methods, arrays and
// a mark-sweep collector, built around a config struct, a call-frame stack,
// and direct switch dispatch over a hot instruction pointer.
package machine

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dolthub/swiss"
	"github.com/mna/diwa/lang/value"
)

const (
	defaultStackSize  = 16384
	defaultMaxFrames  = 64
	initGCThreshold   = 1 << 20 // 1 MiB of tracked allocation before first sweep
	gcGrowthFactor    = 2
)

// Options configures a Machine: zero values fall back to sane defaults
// rather than requiring every caller to populate every field.
type Options struct {
	// Stdout is where `ipakita` output is written. Stderr is stored but the
	// machine writes nothing to it: runtime errors are returned from
	// Interpret as *RuntimeError. Default os.Stdout / os.Stderr.
	Stdout io.Writer
	Stderr io.Writer

	// Stdin feeds the `basahin` native. Default os.Stdin.
	Stdin io.Reader

	// MaxStack caps the value stack's slot count. Default defaultStackSize.
	MaxStack int

	// MaxFrames caps call nesting depth. Default defaultMaxFrames.
	MaxFrames int

	// DisableGC turns off automatic collection, running the collector only
	// when Collect is called explicitly. Useful for deterministic tests.
	DisableGC bool
}

func (o *Options) init() {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.MaxStack <= 0 {
		o.MaxStack = defaultStackSize
	}
	if o.MaxFrames <= 0 {
		o.MaxFrames = defaultMaxFrames
	}
}

// frame is a single call-frame record: which closure is executing, its
// instruction pointer, and where its locals begin on the value stack.
type frame struct {
	closure *value.Closure
	ip      int
	slots   int // index into vm.stack of local slot 0
}

// Machine is one instance of the virtual machine: its value stack, frame
// stack, globals, shared intern table, heap object list and GC state.
type Machine struct {
	opts Options

	stack    []value.Value
	frames   []frame
	globals  *swiss.Map[string, value.Value]

	strings *value.Strings
	objects value.HeapObject // head of the intrusive all-objects list

	openUpvalues *value.Upvalue // descending-address sorted list

	gray           []value.HeapObject
	bytesAllocated int
	nextGC         int

	initName string // cached "sim", compared on every instantiation call
	stdin    *bufio.Reader
	started  time.Time // Machine creation time, used by the `oras` native
}

// New creates a Machine ready to Interpret programs. strs and objs must be
// the same intern table and object-list root the compiler used, so that
// string identity and GC rooting are shared between compile time and run
// time.
func New(opts Options, strs *value.Strings, objs *value.HeapObject) *Machine {
	opts.init()
	m := &Machine{
		opts:     opts,
		stack:    make([]value.Value, 0, opts.MaxStack),
		globals:  swiss.NewMap[string, value.Value](64),
		strings:  strs,
		nextGC:   initGCThreshold,
		initName: "sim",
		stdin:    bufio.NewReader(opts.Stdin),
		started:  time.Now(),
	}
	if objs != nil {
		m.objects = *objs
	}
	m.registerNatives()
	return m
}

// Objects returns the current head of the all-objects list, so a caller
// (typically the compiler, for a REPL that keeps reusing the same Machine)
// can keep linking newly allocated objects into the same list the
// collector walks.
func (m *Machine) Objects() *value.HeapObject { return &m.objects }

// RuntimeError is raised by the dispatch loop and carries the formatted
// stack trace.
type RuntimeError struct {
	Message string
	Trace   string
}

func (e *RuntimeError) Error() string { return e.Message + "\n" + e.Trace }

// push appends to the value stack, reporting overflow rather than growing
// past the stack's initial capacity: per-frame expression temporaries on
// top of locals and call arguments can exceed MaxStack well before
// MaxFrames*maxLocals locals alone would, so capacity is checked on every
// push, not just call()/declareVariable. Because the backing array is
// never reallocated, open Upvalues' raw *Value pointers into it stay valid
// for as long as they are open.
func (m *Machine) push(v value.Value) error {
	if len(m.stack) >= cap(m.stack) {
		return m.runtimeError("Umaapaw ang salansan.")
	}
	m.stack = append(m.stack, v)
	return nil
}

func (m *Machine) pop() value.Value {
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v
}

func (m *Machine) peek(distance int) value.Value {
	return m.stack[len(m.stack)-1-distance]
}

func (m *Machine) resetStack() {
	m.stack = m.stack[:0]
	m.frames = m.frames[:0]
	m.openUpvalues = nil
}

// runtimeError formats a RuntimeError as `[linya N] Mali: MESSAGE` followed
// by one `sa NAME()`/`sa skrip` line per active frame, innermost first.
func (m *Machine) runtimeError(format string, args ...any) *RuntimeError {
	msg := fmt.Sprintf(format, args...)
	line := m.currentLine()

	var trace string
	for i := len(m.frames) - 1; i >= 0; i-- {
		fr := &m.frames[i]
		fn := fr.closure.Function
		frameLine := fn.Chunk.Line(fr.ip - 1)
		if fn.Name == nil {
			trace += fmt.Sprintf("[linya %d] sa skrip\n", frameLine)
		} else {
			trace += fmt.Sprintf("[linya %d] sa %s()\n", frameLine, fn.Name.Chars)
		}
	}
	m.resetStack()
	return &RuntimeError{Message: fmt.Sprintf("[linya %d] Mali: %s", line, msg), Trace: trace}
}

func (m *Machine) currentLine() int {
	if len(m.frames) == 0 {
		return 0
	}
	fr := &m.frames[len(m.frames)-1]
	return fr.closure.Function.Chunk.Line(fr.ip - 1)
}
