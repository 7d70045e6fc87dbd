package graph

import (
	"testing"

	"go.bytecodealliance.org/wit"
)

func TestFromWIT_Primitives(t *testing.T) {
	b := NewBuilder()
	tests := []struct {
		in   wit.Type
		want Type
	}{
		{wit.Bool{}, Bool},
		{wit.U8{}, U8},
		{wit.S32{}, S32},
		{wit.F64{}, F64},
		{wit.Char{}, Char},
		{wit.String{}, String},
	}
	for _, tt := range tests {
		got, err := b.FromWIT(Owner{}, tt.in)
		if err != nil {
			t.Fatalf("FromWIT(%T): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("FromWIT(%T) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFromWIT_Anonymous(t *testing.T) {
	b := NewBuilder()
	list := &wit.TypeDef{Kind: &wit.List{Type: wit.U32{}}}
	res := &wit.TypeDef{Kind: &wit.Result{OK: wit.S32{}, Err: wit.String{}}}
	opt := &wit.TypeDef{Kind: &wit.Option{Type: list}}
	tup := &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.U8{}, wit.Char{}}}}

	for _, td := range []*wit.TypeDef{list, res, opt, tup} {
		if _, err := b.FromWIT(Owner{}, td); err != nil {
			t.Fatalf("FromWIT: %v", err)
		}
	}

	r := b.Resolve()
	got, _ := b.FromWIT(Owner{}, opt)
	if s := r.TypeString(got); s != "option<list<u32>>" {
		t.Errorf("option type = %q", s)
	}
	got, _ = b.FromWIT(Owner{}, res)
	if s := r.TypeString(got); s != "result<s32, string>" {
		t.Errorf("result type = %q", s)
	}
	again, _ := b.FromWIT(Owner{}, list)
	first, _ := b.FromWIT(Owner{}, list)
	if again != first {
		t.Error("same TypeDef should convert to the same TypeID")
	}
}

func TestFromWIT_Named(t *testing.T) {
	b := NewBuilder()
	iface := b.Interface(NoPackage, "types")
	owner := b.InInterface(iface)

	recName, enumName, flagsName, varName := "point", "color", "perms", "shape"
	rec := &wit.TypeDef{Name: &recName, Kind: &wit.Record{Fields: []wit.Field{
		{Name: "x", Type: wit.U32{}},
		{Name: "y", Type: wit.U32{}},
	}}}
	enum := &wit.TypeDef{Name: &enumName, Kind: &wit.Enum{Cases: []wit.EnumCase{{Name: "red"}, {Name: "green"}}}}
	flags := &wit.TypeDef{Name: &flagsName, Kind: &wit.Flags{Flags: []wit.Flag{{Name: "read"}, {Name: "write"}}}}
	variant := &wit.TypeDef{Name: &varName, Kind: &wit.Variant{Cases: []wit.Case{
		{Name: "circle", Type: wit.F32{}},
		{Name: "point", Type: rec},
		{Name: "none", Type: nil},
	}}}

	got, err := b.FromWIT(owner, variant)
	if err != nil {
		t.Fatalf("FromWIT: %v", err)
	}
	for _, td := range []*wit.TypeDef{enum, flags} {
		if _, err := b.FromWIT(owner, td); err != nil {
			t.Fatalf("FromWIT: %v", err)
		}
	}

	r := b.Resolve()
	v, ok := r.Type(got.(TypeID)).Kind.(*Variant)
	if !ok {
		t.Fatalf("expected variant, got %T", r.Type(got.(TypeID)).Kind)
	}
	if len(v.Cases) != 3 || v.Cases[2].Type != nil {
		t.Fatalf("unexpected cases %+v", v.Cases)
	}
	pointID := v.Cases[1].Type.(TypeID)
	if r.Type(pointID).Name != "point" {
		t.Errorf("nested record name = %q", r.Type(pointID).Name)
	}
	if n := len(r.Interface(iface).Types); n != 4 {
		t.Errorf("interface should declare 4 named types, got %d", n)
	}
}
