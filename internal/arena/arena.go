// Package arena provides a slot arena addressed by generation-tagged handles.
//
// A handle stays valid until the value it points to is removed; after that the slot's
// generation is bumped, so stale handles are rejected even when the slot is reused.
package arena

import "fmt"

// Handle identifies a value stored in an Arena. The zero Handle is never valid.
type Handle struct {
	index      uint32
	generation uint32
}

func (h Handle) Index() uint32      { return h.index }
func (h Handle) Generation() uint32 { return h.generation }

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.generation == 0 }

func (h Handle) String() string {
	return fmt.Sprintf("%d#%d", h.index, h.generation)
}

type slot[T any] struct {
	value      T
	generation uint32
	alive      bool
}

// Arena stores values of type T. It is not safe for concurrent use.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

// Insert stores v and returns its handle.
func (a *Arena[T]) Insert(v T) Handle {
	var index uint32
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		index = uint32(len(a.slots))
		a.slots = append(a.slots, slot[T]{})
	}

	s := &a.slots[index]
	s.generation++
	s.value = v
	s.alive = true
	a.count++

	return Handle{index: index, generation: s.generation}
}

// Get returns the value for h, or false when h is unknown or stale.
func (a *Arena[T]) Get(h Handle) (T, bool) {
	if !a.Contains(h) {
		var zero T
		return zero, false
	}
	return a.slots[h.index].value, true
}

// Contains reports whether h points to a live value.
func (a *Arena[T]) Contains(h Handle) bool {
	if h.generation == 0 || int(h.index) >= len(a.slots) {
		return false
	}
	s := a.slots[h.index]
	return s.alive && s.generation == h.generation
}

// Remove deletes the value for h and returns it.
func (a *Arena[T]) Remove(h Handle) (T, bool) {
	var zero T
	if !a.Contains(h) {
		return zero, false
	}

	s := &a.slots[h.index]
	v := s.value
	s.value = zero
	s.alive = false
	a.free = append(a.free, h.index)
	a.count--

	return v, true
}

// Len is the number of live values.
func (a *Arena[T]) Len() int {
	return a.count
}

// Each calls fn for every live value in slot order until fn returns false.
func (a *Arena[T]) Each(fn func(Handle, T) bool) {
	for i := range a.slots {
		s := a.slots[i]
		if !s.alive {
			continue
		}
		if !fn(Handle{index: uint32(i), generation: s.generation}, s.value) {
			return
		}
	}
}

// Clear removes every value. Generations are kept so old handles stay invalid.
func (a *Arena[T]) Clear() {
	var zero T
	a.free = a.free[:0]
	for i := len(a.slots) - 1; i >= 0; i-- {
		a.slots[i].value = zero
		a.slots[i].alive = false
		a.free = append(a.free, uint32(i))
	}
	a.count = 0
}
