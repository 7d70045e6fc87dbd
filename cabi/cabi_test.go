package cabi

import (
	"math"
	"testing"

	"go.bytecodealliance.org/cm"
)

func TestOption(t *testing.T) {
	o := Some(42)
	if o.None() || o.Some() == nil || *o.Some() != 42 {
		t.Errorf("Some(42) = %+v", o)
	}

	n := None[string]()
	if !n.None() || n.Some() != nil {
		t.Errorf("None = %+v", n)
	}
	var zero cm.Option[string]
	if !zero.None() {
		t.Error("zero option is not None")
	}
}

func TestTuple(t *testing.T) {
	if MaxTupleArity != cm.MaxTuple {
		t.Errorf("MaxTupleArity = %d, cm.MaxTuple = %d", MaxTupleArity, cm.MaxTuple)
	}
	pair := Tuple2[uint32, string]{F0: 7, F1: "x"}
	if pair.F0 != 7 || pair.F1 != "x" {
		t.Errorf("Tuple2 = %+v", pair)
	}
	one := Tuple1[bool]{F0: true}
	if !one.F0 {
		t.Errorf("Tuple1 = %+v", one)
	}
}

func TestResult(t *testing.T) {
	ok := Ok[int, string](7)
	if !ok.IsOk() || ok.IsErr() || ok.OK() != 7 || ok.Err() != "" {
		t.Errorf("Ok(7) = %+v", ok)
	}

	bad := Err[int, string]("boom")
	if bad.IsOk() || bad.Err() != "boom" {
		t.Errorf("Err(boom) = %+v", bad)
	}
	if _, e, isErr := bad.Unwrap(); !isErr || e != "boom" {
		t.Errorf("Unwrap() = %q, %v", e, isErr)
	}

	unit := Ok[struct{}, struct{}](struct{}{})
	if !unit.IsOk() {
		t.Error("unit result should be ok")
	}
}

func TestBoolFromI32(t *testing.T) {
	if BoolFromI32(0) || !BoolFromI32(1) {
		t.Error("0/1 should lift to false/true")
	}
	defer func() {
		if recover() == nil {
			t.Error("BoolFromI32(2) should panic")
		}
	}()
	BoolFromI32(2)
}

func TestCharFromI32(t *testing.T) {
	if CharFromI32('λ') != 'λ' {
		t.Error("valid rune should round-trip")
	}
	for _, v := range []int32{0xD800, 0x110000, -1} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("CharFromI32(%#x) should panic", v)
				}
			}()
			CharFromI32(v)
		}()
	}
}

func TestBitcasts(t *testing.T) {
	if got := I32ToF32(F32ToI32(1.5)); got != 1.5 {
		t.Errorf("f32 round trip = %v", got)
	}
	if got := I64ToF64(F64ToI64(math.Pi)); got != math.Pi {
		t.Errorf("f64 round trip = %v", got)
	}
	if got := I64ToF32(F32ToI64(-2.25)); got != -2.25 {
		t.Errorf("f32 via i64 = %v", got)
	}
	if got := I64ToI32(I32ToI64(-1)); got != -1 {
		t.Errorf("i32 via i64 = %d", got)
	}
}

type dropCounter struct{ n *int }

func (d dropCounter) Drop() { *d.n++ }

func TestRepTable_Basic(t *testing.T) {
	var table RepTable[string]

	rep := table.Insert("a")
	if rep == 0 {
		t.Fatal("expected non-zero rep")
	}
	if v, ok := table.Get(rep); !ok || v != "a" {
		t.Fatalf("Get = %q, %v", v, ok)
	}
	if table.Must(rep) != "a" {
		t.Fatal("Must returned wrong value")
	}
	if _, ok := table.Get(0); ok {
		t.Error("rep 0 must be invalid")
	}

	v, ok := table.Remove(rep)
	if !ok || v != "a" {
		t.Fatalf("Remove = %q, %v", v, ok)
	}
	if table.Len() != 0 {
		t.Errorf("Len() = %d after Remove", table.Len())
	}
	if _, ok := table.Remove(rep); ok {
		t.Error("double Remove should fail")
	}
}

func TestRepTable_StaleRep(t *testing.T) {
	var table RepTable[int]

	first := table.Insert(1)
	table.Remove(first)
	second := table.Insert(2)

	if first&repIndexMask != second&repIndexMask {
		t.Fatalf("slot should be reused: %#x vs %#x", first, second)
	}
	if first == second {
		t.Fatal("reused slot must carry a new generation")
	}
	if _, ok := table.Get(first); ok {
		t.Error("stale rep must not resolve")
	}
	if v, ok := table.Get(second); !ok || v != 2 {
		t.Errorf("Get(second) = %d, %v", v, ok)
	}
}

func TestRepTable_MustPanics(t *testing.T) {
	var table RepTable[int]
	defer func() {
		if recover() == nil {
			t.Error("Must on unknown rep should panic")
		}
	}()
	table.Must(99)
}

func TestRepTable_Drop(t *testing.T) {
	var table RepTable[dropCounter]
	n := 0
	rep := table.Insert(dropCounter{&n})
	table.Drop(rep)
	table.Drop(rep)
	if n != 1 {
		t.Errorf("Drop called %d times, want 1", n)
	}
}

func TestLayoutWords(t *testing.T) {
	tests := []struct {
		l    Layout
		want int
	}{
		{Layout{0, 1}, 0},
		{Layout{1, 1}, 1},
		{Layout{8, 8}, 1},
		{Layout{12, 4}, 2},
	}
	for _, tt := range tests {
		if got := tt.l.Words(); got != tt.want {
			t.Errorf("%+v.Words() = %d, want %d", tt.l, got, tt.want)
		}
	}
}

func mustPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s should panic", name)
		}
	}()
	f()
}

func TestHandle_MoveIsShared(t *testing.T) {
	type wrapper struct{ h *Handle }
	w := wrapper{NewHandle(5, true)}
	cp := w

	if got := w.h.Take(); got != 5 {
		t.Fatalf("Take() = %d, want 5", got)
	}
	// The copy sees the move, so dropping it must not drop the handle the
	// host now owns.
	if _, ok := cp.h.Release(); ok {
		t.Error("Release after Take reported an owned handle")
	}
	if cp.h.Owned() {
		t.Error("copy still owned after Take")
	}
	mustPanic(t, "Take after Take", func() { cp.h.Take() })
	mustPanic(t, "Borrow after Take", func() { cp.h.Borrow() })
}

func TestHandle_ReleaseOnce(t *testing.T) {
	h := NewHandle(9, true)
	if v, ok := h.Release(); !ok || v != 9 {
		t.Fatalf("Release() = %d, %v, want 9, true", v, ok)
	}
	if _, ok := h.Release(); ok {
		t.Error("second Release reported an owned handle")
	}
	mustPanic(t, "Borrow after Release", func() { h.Borrow() })
}

func TestHandle_Borrowed(t *testing.T) {
	h := NewHandle(3, false)
	if _, ok := h.Release(); ok {
		t.Error("Release of a borrow reported an owned handle")
	}
	if got := h.Borrow(); got != 3 {
		t.Errorf("Borrow() = %d, want 3", got)
	}
	mustPanic(t, "Take of a borrow", func() { h.Take() })
}
