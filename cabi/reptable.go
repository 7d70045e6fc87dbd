package cabi

import "sync"

// Reps are index+1 in the low bits and a generation in the high bits, so a
// stale rep for a reused slot is rejected.
const (
	repIndexBits = 24
	repIndexMask = 1<<repIndexBits - 1
	repGenMask   = 1<<(32-repIndexBits) - 1
)

// Dropper is implemented by representations that release state when their
// resource is destroyed.
type Dropper interface {
	Drop()
}

// RepTable holds the guest-side representations of an exported resource.
// Rep 0 is never issued.
type RepTable[T any] struct {
	entries  []repEntry[T]
	freeList []uint32
	mu       sync.Mutex
}

type repEntry[T any] struct {
	value T
	gen   uint32
	valid bool
}

// Insert stores v and returns its rep.
func (t *RepTable[T]) Insert(v T) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n := len(t.freeList); n > 0 {
		idx := t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		e := &t.entries[idx]
		e.value, e.valid = v, true
		return makeRep(idx, e.gen)
	}

	if len(t.entries) >= repIndexMask {
		panic("cabi: resource table full")
	}
	t.entries = append(t.entries, repEntry[T]{value: v, valid: true})
	return makeRep(uint32(len(t.entries)-1), 0)
}

// Get returns the value for rep.
func (t *RepTable[T]) Get(rep uint32) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.lookup(rep)
	if e == nil {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Must returns the value for rep and panics if rep is not live.
func (t *RepTable[T]) Must(rep uint32) T {
	v, ok := t.Get(rep)
	if !ok {
		panic("cabi: invalid resource rep")
	}
	return v
}

// Remove frees rep and returns its value.
func (t *RepTable[T]) Remove(rep uint32) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	e := t.lookup(rep)
	if e == nil {
		return zero, false
	}
	v := e.value
	e.value, e.valid = zero, false
	e.gen = (e.gen + 1) & repGenMask
	t.freeList = append(t.freeList, rep&repIndexMask-1)
	return v, true
}

// Drop removes rep and calls Drop on its value when it is a Dropper.
func (t *RepTable[T]) Drop(rep uint32) {
	v, ok := t.Remove(rep)
	if !ok {
		return
	}
	if d, ok := any(v).(Dropper); ok {
		d.Drop()
	}
}

// Len returns the number of live reps.
func (t *RepTable[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries) - len(t.freeList)
}

func (t *RepTable[T]) lookup(rep uint32) *repEntry[T] {
	idx := rep & repIndexMask
	if idx == 0 || int(idx) > len(t.entries) {
		return nil
	}
	e := &t.entries[idx-1]
	if !e.valid || e.gen != rep>>repIndexBits {
		return nil
	}
	return e
}

func makeRep(idx, gen uint32) uint32 {
	return gen<<repIndexBits | (idx + 1)
}
