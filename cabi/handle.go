package cabi

// Handle is the ownership state of a resource handle. Generated wrappers
// hold it by pointer so every copy of a wrapper sees a move or a drop.
type Handle struct {
	value int32
	owned bool
	gone  bool
}

// NewHandle records a handle received from the host. owned is false for
// borrows, which the guest must not drop or pass on as owned.
func NewHandle(value int32, owned bool) *Handle {
	return &Handle{value: value, owned: owned}
}

// Borrow returns the handle for passing as a borrow.
func (h *Handle) Borrow() int32 {
	if h.gone {
		panic("cabi: use of moved or dropped handle")
	}
	return h.value
}

// Take returns the handle and gives up ownership of it. Later calls to
// Borrow, Take or Release see the handle as gone.
func (h *Handle) Take() int32 {
	if h.gone {
		panic("cabi: use of moved or dropped handle")
	}
	if !h.owned {
		panic("cabi: borrowed handle passed as owned")
	}
	h.owned = false
	h.gone = true
	return h.value
}

// Release marks the handle gone and reports whether the caller still owned
// it and must drop it. Releasing a borrow or a moved handle is a no-op.
func (h *Handle) Release() (int32, bool) {
	if h.gone {
		return 0, false
	}
	owned := h.owned
	h.owned = false
	h.gone = owned
	return h.value, owned
}

// Owned reports whether the guest is still responsible for dropping the
// handle.
func (h *Handle) Owned() bool { return h.owned }
