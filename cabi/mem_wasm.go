//go:build wasm

package cabi

import (
	"runtime"
	"unicode/utf8"
	"unsafe"
)

// pinned keeps Go memory handed to the host reachable until it is freed.
var pinned = make(map[int32]any)

func addr(base, off int32) unsafe.Pointer {
	return unsafe.Pointer(uintptr(base) + uintptr(off))
}

// AddrOf returns the linear-memory address of p.
func AddrOf[T any](p *T) int32 {
	return int32(uintptr(unsafe.Pointer(p)))
}

// Alloc returns zeroed memory for l that stays live until Free.
func Alloc(l Layout) int32 {
	if l.Size == 0 {
		return int32(l.Align)
	}
	buf := make([]uint64, l.Words())
	ptr := int32(uintptr(unsafe.Pointer(&buf[0])))
	pinned[ptr] = buf
	return ptr
}

// Free releases memory returned by Alloc, PinSlice or PinString, or
// received from the host through cabi_realloc. Unknown pointers are ignored.
func Free(ptr int32, _ Layout) {
	delete(pinned, ptr)
}

// FreeAll frees every entry of list.
func FreeAll(list []Cleanup) {
	for _, c := range list {
		Free(c.Ptr, c.Layout)
	}
}

func slicePtr[T any](s []T) int32 {
	if len(s) == 0 {
		return 0
	}
	return int32(uintptr(unsafe.Pointer(unsafe.SliceData(s))))
}

func stringPtr(s string) int32 {
	if len(s) == 0 {
		return 0
	}
	return int32(uintptr(unsafe.Pointer(unsafe.StringData(s))))
}

// BorrowSlice pins s's backing array with p and returns its address for a
// borrowed lowering. The memory stays put until p.Unpin.
func BorrowSlice[T any](p *runtime.Pinner, s []T) int32 {
	if len(s) == 0 {
		return 0
	}
	p.Pin(unsafe.SliceData(s))
	return slicePtr(s)
}

// BorrowString is BorrowSlice for strings.
func BorrowString(p *runtime.Pinner, s string) int32 {
	if len(s) == 0 {
		return 0
	}
	p.Pin(unsafe.StringData(s))
	return stringPtr(s)
}

// PinSlice lowers s and keeps it live until Free is called on the pointer.
func PinSlice[T any](s []T) int32 {
	ptr := slicePtr(s)
	if ptr != 0 {
		pinned[ptr] = s
	}
	return ptr
}

// PinString is PinSlice for strings.
func PinString(s string) int32 {
	ptr := stringPtr(s)
	if ptr != 0 {
		pinned[ptr] = s
	}
	return ptr
}

// LiftSlice takes ownership of n elements at ptr.
func LiftSlice[T any](ptr, n int32) []T {
	if n == 0 {
		Free(ptr, Layout{})
		return nil
	}
	s := unsafe.Slice((*T)(addr(ptr, 0)), n)
	Free(ptr, Layout{})
	return s
}

// LiftString takes ownership of n bytes at ptr.
func LiftString(ptr, n int32) string {
	if n == 0 {
		Free(ptr, Layout{})
		return ""
	}
	s := unsafe.String((*byte)(addr(ptr, 0)), n)
	Free(ptr, Layout{})
	return s
}

// LiftStringChecked is LiftString with UTF-8 validation.
func LiftStringChecked(ptr, n int32) string {
	s := LiftString(ptr, n)
	if !utf8.ValidString(s) {
		panic("cabi: invalid utf-8 string")
	}
	return s
}

func LoadI32(base, off int32) int32     { return *(*int32)(addr(base, off)) }
func LoadU8(base, off int32) int32      { return int32(*(*uint8)(addr(base, off))) }
func LoadS8(base, off int32) int32      { return int32(*(*int8)(addr(base, off))) }
func LoadU16(base, off int32) int32     { return int32(*(*uint16)(addr(base, off))) }
func LoadS16(base, off int32) int32     { return int32(*(*int16)(addr(base, off))) }
func LoadI64(base, off int32) int64     { return *(*int64)(addr(base, off)) }
func LoadF32(base, off int32) float32   { return *(*float32)(addr(base, off)) }
func LoadF64(base, off int32) float64   { return *(*float64)(addr(base, off)) }
func StoreI32(base, off int32, v int32) { *(*int32)(addr(base, off)) = v }
func StoreU8(base, off int32, v int32)  { *(*uint8)(addr(base, off)) = uint8(v) }
func StoreU16(base, off int32, v int32) { *(*uint16)(addr(base, off)) = uint16(v) }
func StoreI64(base, off int32, v int64) { *(*int64)(addr(base, off)) = v }
func StoreF32(base, off int32, v float32) {
	*(*float32)(addr(base, off)) = v
}
func StoreF64(base, off int32, v float64) {
	*(*float64)(addr(base, off)) = v
}
