package graph

import "testing"

func newTestGraph() (*Builder, InterfaceID, WorldID) {
	b := NewBuilder()
	pkg := b.Package(PackageName{Namespace: "my", Name: "pkg", Version: "0.1.0"})
	iface := b.Interface(pkg, "types")
	w := b.World(pkg, "app")
	b.ImportInterface(w, iface)
	return b, iface, w
}

func TestResolve_InterfaceID(t *testing.T) {
	b, iface, w := newTestGraph()
	r := b.Resolve()

	if got := r.InterfaceID(iface); got != "my:pkg/types@0.1.0" {
		t.Errorf("InterfaceID = %q", got)
	}
	if got := r.NameWorldKey(r.World(w).Imports[0].Key); got != "my:pkg/types@0.1.0" {
		t.Errorf("NameWorldKey = %q", got)
	}

	loose := b.Interface(NoPackage, "host")
	if got := r.InterfaceID(loose); got != "host" {
		t.Errorf("InterfaceID(no package) = %q", got)
	}
	if got := r.NameWorldKey(WorldKey{Name: "host"}); got != "host" {
		t.Errorf("NameWorldKey(name) = %q", got)
	}
}

func TestResolve_FindWorld(t *testing.T) {
	b, _, w := newTestGraph()
	r := b.Resolve()

	for _, name := range []string{"app", "my:pkg/app", "my:pkg@0.1.0/app"} {
		got, ok := r.FindWorld(name)
		if !ok || got != w {
			t.Errorf("FindWorld(%q) = %v, %v", name, got, ok)
		}
	}
	if _, ok := r.FindWorld("other"); ok {
		t.Error("FindWorld should fail for unknown world")
	}
}

func TestResolve_Dealias(t *testing.T) {
	b, iface, _ := newTestGraph()
	owner := b.InInterface(iface)
	rec := b.Record(owner, "point", Field{Name: "x", Type: U32})
	a1 := b.Alias(owner, "pt", rec)
	a2 := b.Alias(owner, "pt2", a1)
	r := b.Resolve()

	if got := r.Dealias(a2); got != Type(rec) {
		t.Errorf("Dealias = %v, want %v", got, rec)
	}
	if got := r.Dealias(U8); got != Type(U8) {
		t.Errorf("Dealias(primitive) = %v", got)
	}
}

func TestResolve_AllBitsValid(t *testing.T) {
	b, iface, _ := newTestGraph()
	owner := b.InInterface(iface)
	numeric := b.Record(owner, "numeric", Field{Name: "a", Type: U32}, Field{Name: "b", Type: F64})
	withBool := b.Record(owner, "with-bool", Field{Name: "a", Type: Bool})
	tup := b.Tuple(U8, S64)
	r := b.Resolve()

	tests := []struct {
		name string
		typ  Type
		want bool
	}{
		{"u8", U8, true},
		{"f32", F32, true},
		{"bool", Bool, false},
		{"char", Char, false},
		{"string", String, false},
		{"numeric record", numeric, true},
		{"record with bool", withBool, false},
		{"numeric tuple", tup, true},
		{"list", b.List(U8), false},
		{"option", b.Option(U8), false},
	}
	for _, tt := range tests {
		if got := r.AllBitsValid(tt.typ); got != tt.want {
			t.Errorf("%s: AllBitsValid = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestResolve_TypeString(t *testing.T) {
	b, iface, _ := newTestGraph()
	owner := b.InInterface(iface)
	res := b.Resource(owner, "counter")
	r := b.Resolve()

	tests := []struct {
		typ  Type
		want string
	}{
		{b.List(String), "list<string>"},
		{b.Option(b.List(U8)), "option<list<u8>>"},
		{b.Result(nil, nil), "result"},
		{b.Result(U32, nil), "result<u32>"},
		{b.Result(nil, String), "result<_, string>"},
		{b.Tuple(U8, Char), "tuple<u8, char>"},
		{b.Own(res), "own<counter>"},
		{b.Borrow(res), "borrow<counter>"},
		{res, "counter"},
	}
	for _, tt := range tests {
		if got := r.TypeString(tt.typ); got != tt.want {
			t.Errorf("TypeString = %q, want %q", got, tt.want)
		}
	}
}

func TestBuilder_AnonymousDedup(t *testing.T) {
	b, iface, _ := newTestGraph()
	res := b.Resource(b.InInterface(iface), "file")

	if b.List(U8) != b.List(U8) {
		t.Error("list<u8> should be interned")
	}
	if b.Own(res) != b.Own(res) {
		t.Error("own<file> should be interned")
	}
	if b.Own(res) == b.Borrow(res) {
		t.Error("own and borrow must differ")
	}
	if len(b.Resolve().Interface(iface).Types) != 1 {
		t.Errorf("anonymous types must not join the interface, got %d", len(b.Resolve().Interface(iface).Types))
	}
}

func TestFunction_ItemName(t *testing.T) {
	b, iface, _ := newTestGraph()
	res := b.Resource(b.InInterface(iface), "counter")

	ctor := b.Constructor(iface, res, Param{Name: "init", Type: U32})
	m := b.Method(iface, res, "get", nil, []Param{{Type: U32}})
	s := b.Static(iface, res, "merge", nil, nil)
	f := b.Func(iface, &Function{Name: "plain"})

	tests := []struct {
		fn   *Function
		name string
		item string
	}{
		{ctor, "[constructor]counter", "new"},
		{m, "[method]counter.get", "get"},
		{s, "[static]counter.merge", "merge"},
		{f, "plain", "plain"},
	}
	for _, tt := range tests {
		if tt.fn.Name != tt.name {
			t.Errorf("Name = %q, want %q", tt.fn.Name, tt.name)
		}
		if got := tt.fn.ItemName(); got != tt.item {
			t.Errorf("ItemName(%q) = %q, want %q", tt.fn.Name, got, tt.item)
		}
	}
	if len(m.Params) != 1 || m.Params[0].Name != "self" {
		t.Errorf("method should carry implicit self, got %+v", m.Params)
	}
}

func TestPrimitiveByName(t *testing.T) {
	for _, name := range []string{"bool", "u8", "s64", "f32", "float64", "char", "string"} {
		if _, ok := PrimitiveByName(name); !ok {
			t.Errorf("PrimitiveByName(%q) failed", name)
		}
	}
	if _, ok := PrimitiveByName("point"); ok {
		t.Error("PrimitiveByName should reject named types")
	}
}
