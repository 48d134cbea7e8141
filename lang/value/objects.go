package value

import (
	"fmt"

	"github.com/dolthub/swiss"
)

// String is an immutable interned byte sequence. Two Strings with
// equal bytes are always the same object; Hash is precomputed at creation
// with FNV-1a-32.
type String struct {
	Header
	Chars string
	Hash  uint32
}

func (s *String) Kind() ObjKind  { return ObjString }
func (s *String) header() *Header { return &s.Header }
func (s *String) String() string  { return s.Chars }

// FNV1a32 computes the 32-bit FNV-1a hash of s. It is computed once when a
// string is first interned and stored in its Hash field; intern-table
// lookups key on the bytes themselves, not on this hash.
func FNV1a32(s string) uint32 {
	const (
		offsetBasis = 2166136261
		prime       = 16777619
	)
	h := uint32(offsetBasis)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime
	}
	return h
}

// Chunk is a function's compiled bytecode: the instruction stream, its
// constant pool, and a run-length-encoded line table.
type Chunk struct {
	Code      []byte
	Constants []Value
	lines     []lineRun // run-length: first byte offset at which `Line` starts
}

type lineRun struct {
	FirstOffset int
	Line        int
}

// Write appends a single bytecode byte produced while compiling source line
// `line`, updating the run-length line table only when the line changes.
func (c *Chunk) Write(b byte, line int) {
	if len(c.lines) == 0 || c.lines[len(c.lines)-1].Line != line {
		c.lines = append(c.lines, lineRun{FirstOffset: len(c.Code), Line: line})
	}
	c.Code = append(c.Code, b)
}

// AddConstant appends v to the constant pool and returns its index.
func (c *Chunk) AddConstant(v Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// Line performs an O(log runs) binary search over the run-length line table
// to find the source line of instruction offset.
func (c *Chunk) Line(offset int) int {
	lo, hi := 0, len(c.lines)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if c.lines[mid].FirstOffset <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	if lo < 0 || lo >= len(c.lines) {
		return 0
	}
	return c.lines[lo].Line
}

// Function is a compiled function: its arity, upvalue count, optional name,
// and owned Chunk. Functions are created once by the compiler and are never
// mutated afterwards.
type Function struct {
	Header
	Arity        int
	UpvalueCount int
	Name         *String // nil for the top-level script
	Chunk        Chunk
}

func (f *Function) Kind() ObjKind  { return ObjFunction }
func (f *Function) header() *Header { return &f.Header }
func (f *Function) String() string {
	if f.Name == nil {
		return "<skrip>"
	}
	return fmt.Sprintf("<gwn %s>", f.Name.Chars)
}

// NativeFn is the signature of an opaque native callable: it receives the
// slice of argument Values and returns a result Value.
type NativeFn func(args []Value) Value

// Native wraps a host-supplied function so it can be called like any other
// value.
type Native struct {
	Header
	Name string
	Fn   NativeFn
}

func (n *Native) Kind() ObjKind  { return ObjNative }
func (n *Native) header() *Header { return &n.Header }
func (n *Native) String() string  { return fmt.Sprintf("<kttb %s>", n.Name) }

// Upvalue is either open (Location points into a live stack slot) or closed
// (it owns Closed, moved off the stack). Open upvalues form a singly-linked
// list sorted by descending stack address, rooted at the VM.
type Upvalue struct {
	Header
	Location *Value // points into the value stack while open
	Slot     int     // stack index Location refers to, valid only while open
	Closed   Value   // owns the value once closed
	NextOpen *Upvalue
}

func (u *Upvalue) Kind() ObjKind  { return ObjUpvalue }
func (u *Upvalue) header() *Header { return &u.Header }
func (u *Upvalue) String() string  { return "<upvalue>" }

// IsOpen reports whether the upvalue still indirects into the stack.
func (u *Upvalue) IsOpen() bool { return u.Location != nil }

// Get returns the current value of the upvalue, whether open or closed.
func (u *Upvalue) Get() Value {
	if u.Location != nil {
		return *u.Location
	}
	return u.Closed
}

// Set stores v into the upvalue, whether open or closed.
func (u *Upvalue) Set(v Value) {
	if u.Location != nil {
		*u.Location = v
		return
	}
	u.Closed = v
}

// Close moves the current value off the stack and severs the indirection.
func (u *Upvalue) Close() {
	u.Closed = *u.Location
	u.Location = nil
}

// Closure pairs a Function with the fixed set of Upvalues it captured from
// its enclosing scopes.
type Closure struct {
	Header
	Function *Function
	Upvalues []*Upvalue
}

func (c *Closure) Kind() ObjKind  { return ObjClosure }
func (c *Closure) header() *Header { return &c.Header }
func (c *Closure) String() string  { return c.Function.String() }

// Class is a named type with a method table. Methods is keyed by
// the interned method-name String's bytes, backed by the same
// open-addressed swiss.Map the intern table and VM globals use.
type Class struct {
	Header
	Name    *String
	Methods *swiss.Map[string, *Closure]
}

func (c *Class) Kind() ObjKind  { return ObjClass }
func (c *Class) header() *Header { return &c.Header }
func (c *Class) String() string  { return fmt.Sprintf("<uri %s>", c.Name.Chars) }

// FindMethod looks up name in c's method table, then its superclass chain is
// handled by the caller (classes do not store a superclass link themselves;
// the INHERIT opcode copies the superclass's method table into the
// subclass's at class-definition time, so lookups never chain).
func (c *Class) FindMethod(name string) (*Closure, bool) {
	return c.Methods.Get(name)
}

// Instance is a Class reference plus a field table, also backed
// by swiss.Map.
type Instance struct {
	Header
	Class  *Class
	Fields *swiss.Map[string, Value]
}

func (i *Instance) Kind() ObjKind  { return ObjInstance }
func (i *Instance) header() *Header { return &i.Header }
func (i *Instance) String() string  { return fmt.Sprintf("%s instansya", i.Class.Name.Chars) }

// BoundMethod pairs a receiver Instance with the Closure to invoke when the
// bound method is called.
type BoundMethod struct {
	Header
	Receiver Value
	Method   *Closure
}

func (b *BoundMethod) Kind() ObjKind  { return ObjBoundMethod }
func (b *BoundMethod) header() *Header { return &b.Header }
func (b *BoundMethod) String() string  { return b.Method.String() }

// Array is a dynamic vector of Values.
type Array struct {
	Header
	Elems []Value
}

func (a *Array) Kind() ObjKind  { return ObjArray }
func (a *Array) header() *Header { return &a.Header }
func (a *Array) String() string {
	if len(a.Elems) == 0 {
		return "[]"
	}
	s := "[ "
	for i, e := range a.Elems {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s + " ]"
}
