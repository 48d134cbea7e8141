package machine

import "github.com/mna/diwa/lang/value"

// captureUpvalue returns the open Upvalue pointing at stack slot `slot`,
// reusing an existing one if already open, else allocating a new one and
// inserting it into the descending-slot-sorted open list.
func (m *Machine) captureUpvalue(slot int) *value.Upvalue {
	var prev *value.Upvalue
	cur := m.openUpvalues
	for cur != nil && cur.Slot > slot {
		prev = cur
		cur = cur.NextOpen
	}
	if cur != nil && cur.Slot == slot {
		return cur
	}

	created := &value.Upvalue{Location: &m.stack[slot], Slot: slot}
	m.trackAllocation(created)
	created.NextOpen = cur
	if prev == nil {
		m.openUpvalues = created
	} else {
		prev.NextOpen = created
	}
	return created
}

// closeUpvalues closes every open upvalue at or above stack index
// threshold, moving its value off the stack. Used both by OP_CLOSE_UPVALUE
// and when a scope or call frame exits.
func (m *Machine) closeUpvalues(threshold int) {
	for m.openUpvalues != nil && m.openUpvalues.Slot >= threshold {
		up := m.openUpvalues
		up.Close()
		m.openUpvalues = up.NextOpen
	}
}
