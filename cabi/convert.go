package cabi

import (
	"math"
	"unicode/utf8"
)

// BoolFromI32 lifts a bool, panicking on anything but 0 or 1.
func BoolFromI32(v int32) bool {
	switch v {
	case 0:
		return false
	case 1:
		return true
	}
	panic("cabi: invalid bool discriminant")
}

// BoolToI32 lowers a bool.
func BoolToI32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// CharFromI32 lifts a char, panicking on surrogates and out-of-range values.
func CharFromI32(v int32) rune {
	r := rune(v)
	if !utf8.ValidRune(r) {
		panic("cabi: invalid char")
	}
	return r
}

// Bitcasts between joined variant payload slots and case values.

func F32ToI32(f float32) int32 { return int32(math.Float32bits(f)) }
func I32ToF32(i int32) float32 { return math.Float32frombits(uint32(i)) }
func F64ToI64(f float64) int64 { return int64(math.Float64bits(f)) }
func I64ToF64(i int64) float64 { return math.Float64frombits(uint64(i)) }
func F32ToI64(f float32) int64 { return int64(math.Float32bits(f)) }
func I64ToF32(i int64) float32 { return math.Float32frombits(uint32(i)) }
func I32ToI64(i int32) int64   { return int64(uint32(i)) }
func I64ToI32(i int64) int32   { return int32(i) }
