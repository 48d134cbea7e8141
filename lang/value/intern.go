package value

import "github.com/dolthub/swiss"

// Strings is the global string intern table. The compiler and the machine
// share one instance: the compiler interns every
// identifier and string literal it emits as a constant, and the machine
// interns every string it produces at run time (concatenation, coercion),
// so that any two strings with equal bytes are always the same object.
//
// The table holds a weak reference to each entry: during a GC sweep, any
// String that was not marked is removed from the table before its memory is
// otherwise reclaimed.
type Strings struct {
	m *swiss.Map[string, *String]
}

// NewStrings returns an empty intern table.
func NewStrings() *Strings {
	return &Strings{m: swiss.NewMap[string, *String](64)}
}

// Intern returns the unique String object for the given bytes, allocating
// and registering a new one (and linking it into objs, the all-objects
// list) if this is the first time these bytes are seen.
func (s *Strings) Intern(chars string, objs *HeapObject) *String {
	if existing, ok := s.m.Get(chars); ok {
		return existing
	}
	str := &String{Chars: chars, Hash: FNV1a32(chars)}
	s.m.Put(chars, str)
	SetNext(str, *objs)
	*objs = str
	return str
}

// Get returns the interned String for chars, if any, without creating one.
func (s *Strings) Get(chars string) (*String, bool) {
	return s.m.Get(chars)
}

// RemoveWhite deletes every entry whose String is not marked, implementing
// the intern table's weak-reference discipline during a sweep.
func (s *Strings) RemoveWhite() {
	var dead []string
	s.m.Iter(func(k string, v *String) bool {
		if !IsMarked(v) {
			dead = append(dead, k)
		}
		return false
	})
	for _, k := range dead {
		s.m.Delete(k)
	}
}

// Len returns the number of interned strings.
func (s *Strings) Len() int { return int(s.m.Count()) }
