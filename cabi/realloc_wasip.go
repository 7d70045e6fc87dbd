//go:build wasip1 || wasip2

package cabi

import "unsafe"

//go:wasmexport cabi_realloc
func cabiRealloc(oldPtr, oldSize, align, newSize int32) int32 {
	ptr := Alloc(Layout{Size: uint32(newSize), Align: uint32(align)})
	if oldPtr != 0 && oldSize > 0 && newSize > 0 {
		n := min(oldSize, newSize)
		copy(unsafe.Slice((*byte)(addr(ptr, 0)), n), unsafe.Slice((*byte)(addr(oldPtr, 0)), n))
		Free(oldPtr, Layout{})
	}
	return ptr
}
