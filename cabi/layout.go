package cabi

// Layout is the size and alignment of a guest allocation.
type Layout struct {
	Size  uint32
	Align uint32
}

// Cleanup is an allocation to free when a call returns.
type Cleanup struct {
	Ptr    int32
	Layout Layout
}

// Words returns how many 8-byte words back an allocation of l.
func (l Layout) Words() int {
	return int((l.Size + 7) / 8)
}
