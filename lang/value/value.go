// Package value defines the runtime data model shared by the compiler and
// the machine: the tagged Value union, the closed set of heap object
// variants, the bytecode Chunk, and the string intern table. Sharing this
// package lets the compiler intern string constants into the very same
// table the machine consults at run time.
package value

import "fmt"

// Kind discriminates the four Value variants.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	Obj
)

// Value is a tagged union: Bool(b), Null, Number(f64) or Obj(heap_ref). It is
// comparable, which lets it be used directly as a map key (e.g. for array
// index values or identity-keyed sets), and is deliberately small enough to
// pass by value everywhere.
type Value struct {
	kind Kind
	b    bool
	n    float64
	o    HeapObject
}

// NullValue is the single Value of kind Null.
var NullValue = Value{kind: Null}

// BoolValue returns a Value wrapping b.
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// NumberValue returns a Value wrapping n.
func NumberValue(n float64) Value { return Value{kind: Number, n: n} }

// ObjValue returns a Value wrapping the given heap object.
func ObjValue(o HeapObject) Value { return Value{kind: Obj, o: o} }

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsNull() bool  { return v.kind == Null }
func (v Value) IsBool() bool  { return v.kind == Bool }
func (v Value) IsNumber() bool { return v.kind == Number }
func (v Value) IsObj() bool   { return v.kind == Obj }

func (v Value) AsBool() bool         { return v.b }
func (v Value) AsNumber() float64    { return v.n }
func (v Value) AsObj() HeapObject    { return v.o }

// Falsey reports whether v is one of the language's two falsey values: null
// or the boolean false. Every other value (including 0 and "") is truthy.
func (v Value) Falsey() bool {
	return v.kind == Null || (v.kind == Bool && !v.b)
}

// Equal implements value equality: numbers and booleans compare by value,
// null equals only null, and objects compare by identity except for
// strings, which compare by identity too but are guaranteed equal-by-bytes
// strings are always the same object thanks to interning.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case Bool:
		return v.b == other.b
	case Number:
		return v.n == other.n
	case Obj:
		return v.o == other.o
	}
	return false
}

func (v Value) String() string {
	switch v.kind {
	case Null:
		return "null"
	case Bool:
		if v.b {
			return "tama"
		}
		return "mali"
	case Number:
		return fmt.Sprintf("%g", v.n)
	case Obj:
		return v.o.String()
	}
	return "?"
}

// ObjKind is the closed set of heap object variants.
type ObjKind uint8

const (
	ObjString ObjKind = iota
	ObjFunction
	ObjNative
	ObjClosure
	ObjUpvalue
	ObjClass
	ObjInstance
	ObjBoundMethod
	ObjArray
)

func (k ObjKind) String() string {
	switch k {
	case ObjString:
		return "string"
	case ObjFunction:
		return "gawain"
	case ObjNative:
		return "katutubo"
	case ObjClosure:
		return "saradong-gawain"
	case ObjUpvalue:
		return "upvalue"
	case ObjClass:
		return "uri"
	case ObjInstance:
		return "instansya"
	case ObjBoundMethod:
		return "gapos-na-pamamaraan"
	case ObjArray:
		return "hanay"
	}
	return "?"
}

// Header is embedded in every heap object. It carries the GC mark bit and
// the intrusive next-object pointer that roots the all-objects list at the
// VM.
type Header struct {
	Marked bool
	Next   HeapObject
}

// HeapObject is implemented by every heap object variant. The set is closed
// and must never be extended outside this package: Obj is a closed,
// non-user-extensible tagged variant.
type HeapObject interface {
	fmt.Stringer
	Kind() ObjKind
	header() *Header
}

// SetMark sets the object's GC mark bit.
func SetMark(o HeapObject, marked bool) { o.header().Marked = marked }

// IsMarked reports the object's GC mark bit.
func IsMarked(o HeapObject) bool { return o.header().Marked }

// Next returns the object's position in the intrusive all-objects list.
func Next(o HeapObject) HeapObject { return o.header().Next }

// SetNext sets the object's position in the intrusive all-objects list.
func SetNext(o HeapObject, next HeapObject) { o.header().Next = next }
