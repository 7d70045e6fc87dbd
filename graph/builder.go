package graph

import (
	"strconv"

	"go.bytecodealliance.org/wit"
)

// Builder assembles a Resolve.
type Builder struct {
	r        *Resolve
	anon     map[string]TypeID
	witCache map[*wit.TypeDef]TypeID
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		r:    &Resolve{},
		anon: make(map[string]TypeID),
	}
}

// Resolve returns the graph built so far.
func (b *Builder) Resolve() *Resolve {
	return b.r
}

// Package adds a package.
func (b *Builder) Package(name PackageName) PackageID {
	b.r.Packages = append(b.r.Packages, &Package{Name: name})
	return PackageID(len(b.r.Packages) - 1)
}

// Interface adds an interface to pkg, which may be NoPackage.
func (b *Builder) Interface(pkg PackageID, name string) InterfaceID {
	b.r.Interfaces = append(b.r.Interfaces, &Interface{Name: name, Package: pkg})
	id := InterfaceID(len(b.r.Interfaces) - 1)
	if p := b.r.Package(pkg); p != nil {
		p.Interfaces = append(p.Interfaces, id)
	}
	return id
}

// World adds a world to pkg.
func (b *Builder) World(pkg PackageID, name string) WorldID {
	b.r.Worlds = append(b.r.Worlds, &World{Name: name, Package: pkg})
	id := WorldID(len(b.r.Worlds) - 1)
	if p := b.r.Package(pkg); p != nil {
		p.Worlds = append(p.Worlds, id)
	}
	return id
}

// InInterface returns an owner for types declared in iface.
func (b *Builder) InInterface(iface InterfaceID) Owner {
	return Owner{Kind: OwnerInterface, Interface: iface}
}

// InWorld returns an owner for types declared in world.
func (b *Builder) InWorld(world WorldID) Owner {
	return Owner{Kind: OwnerWorld, World: world}
}

// Define adds a TypeDef. Named interface types join the interface's type list.
func (b *Builder) Define(owner Owner, name string, kind Kind) TypeID {
	b.r.Types = append(b.r.Types, &TypeDef{Name: name, Kind: kind, Owner: owner})
	id := TypeID(len(b.r.Types) - 1)
	if name != "" && owner.Kind == OwnerInterface {
		iface := b.r.Interfaces[owner.Interface]
		iface.Types = append(iface.Types, id)
	}
	return id
}

// Docs attaches documentation to a type.
func (b *Builder) Docs(id TypeID, docs string) TypeID {
	b.r.Types[id].Docs = docs
	return id
}

// Record defines a named record.
func (b *Builder) Record(owner Owner, name string, fields ...Field) TypeID {
	return b.Define(owner, name, &Record{Fields: fields})
}

// Variant defines a named variant.
func (b *Builder) Variant(owner Owner, name string, cases ...Case) TypeID {
	return b.Define(owner, name, &Variant{Cases: cases})
}

// Union defines a named union.
func (b *Builder) Union(owner Owner, name string, types ...Type) TypeID {
	cases := make([]UnionCase, len(types))
	for i, t := range types {
		cases[i] = UnionCase{Type: t}
	}
	return b.Define(owner, name, &Union{Cases: cases})
}

// Enum defines a named enum.
func (b *Builder) Enum(owner Owner, name string, cases ...string) TypeID {
	ec := make([]EnumCase, len(cases))
	for i, c := range cases {
		ec[i] = EnumCase{Name: c}
	}
	return b.Define(owner, name, &Enum{Cases: ec})
}

// Flags defines a named flags type.
func (b *Builder) Flags(owner Owner, name string, flags ...string) TypeID {
	fs := make([]Flag, len(flags))
	for i, f := range flags {
		fs[i] = Flag{Name: f}
	}
	return b.Define(owner, name, &Flags{Flags: fs})
}

// Resource defines a named resource.
func (b *Builder) Resource(owner Owner, name string) TypeID {
	return b.Define(owner, name, &Resource{})
}

// Alias defines a named alias of t.
func (b *Builder) Alias(owner Owner, name string, t Type) TypeID {
	return b.Define(owner, name, &Alias{Type: t})
}

// List returns the anonymous list<t>.
func (b *Builder) List(t Type) TypeID {
	return b.anonymous("list<"+typeKey(t)+">", &List{Type: t})
}

// Option returns the anonymous option<t>.
func (b *Builder) Option(t Type) TypeID {
	return b.anonymous("option<"+typeKey(t)+">", &Option{Type: t})
}

// Result returns the anonymous result<ok, err>; either arm may be nil.
func (b *Builder) Result(ok, err Type) TypeID {
	return b.anonymous("result<"+typeKey(ok)+","+typeKey(err)+">", &Result{OK: ok, Err: err})
}

// Tuple returns the anonymous tuple of types.
func (b *Builder) Tuple(types ...Type) TypeID {
	key := "tuple<"
	for _, t := range types {
		key += typeKey(t) + ","
	}
	return b.anonymous(key+">", &Tuple{Types: types})
}

// Own returns the anonymous own<resource>.
func (b *Builder) Own(resource TypeID) TypeID {
	return b.anonymous("own<"+typeKey(resource)+">", &Handle{Resource: resource})
}

// Borrow returns the anonymous borrow<resource>.
func (b *Builder) Borrow(resource TypeID) TypeID {
	return b.anonymous("borrow<"+typeKey(resource)+">", &Handle{Borrow: true, Resource: resource})
}

func (b *Builder) anonymous(key string, kind Kind) TypeID {
	if id, ok := b.anon[key]; ok {
		return id
	}
	id := b.Define(Owner{}, "", kind)
	b.anon[key] = id
	return id
}

func typeKey(t Type) string {
	switch t := t.(type) {
	case nil:
		return "_"
	case Primitive:
		return t.String()
	case TypeID:
		return "#" + strconv.Itoa(int(t))
	}
	return "?"
}

// Func adds a freestanding function to iface.
func (b *Builder) Func(iface InterfaceID, fn *Function) *Function {
	i := b.r.Interfaces[iface]
	i.Functions = append(i.Functions, fn)
	return fn
}

// Constructor adds "[constructor]r" returning own<r>.
func (b *Builder) Constructor(iface InterfaceID, resource TypeID, params ...Param) *Function {
	return b.Func(iface, &Function{
		Name:     "[constructor]" + b.r.Types[resource].Name,
		Kind:     Constructor,
		Resource: resource,
		Params:   params,
		Results:  []Param{{Type: b.Own(resource)}},
	})
}

// Method adds "[method]r.name" with an implicit self: borrow<r> parameter.
func (b *Builder) Method(iface InterfaceID, resource TypeID, name string, params []Param, results []Param) *Function {
	all := append([]Param{{Name: "self", Type: b.Borrow(resource)}}, params...)
	return b.Func(iface, &Function{
		Name:     "[method]" + b.r.Types[resource].Name + "." + name,
		Kind:     Method,
		Resource: resource,
		Params:   all,
		Results:  results,
	})
}

// Static adds "[static]r.name".
func (b *Builder) Static(iface InterfaceID, resource TypeID, name string, params []Param, results []Param) *Function {
	return b.Func(iface, &Function{
		Name:     "[static]" + b.r.Types[resource].Name + "." + name,
		Kind:     Static,
		Resource: resource,
		Params:   params,
		Results:  results,
	})
}

// ImportInterface adds iface to the world's imports keyed by interface.
func (b *Builder) ImportInterface(w WorldID, iface InterfaceID) {
	world := b.r.Worlds[w]
	world.Imports = append(world.Imports, WorldItem{
		Key:       WorldKey{Interface: iface, IsInterface: true},
		Kind:      ItemInterface,
		Interface: iface,
	})
}

// ExportInterface adds iface to the world's exports keyed by interface.
func (b *Builder) ExportInterface(w WorldID, iface InterfaceID) {
	world := b.r.Worlds[w]
	world.Exports = append(world.Exports, WorldItem{
		Key:       WorldKey{Interface: iface, IsInterface: true},
		Kind:      ItemInterface,
		Interface: iface,
	})
}

// ImportNamedInterface imports iface under a plain name key.
func (b *Builder) ImportNamedInterface(w WorldID, name string, iface InterfaceID) {
	world := b.r.Worlds[w]
	world.Imports = append(world.Imports, WorldItem{
		Key:       WorldKey{Name: name},
		Kind:      ItemInterface,
		Interface: iface,
	})
}

// ExportNamedInterface exports iface under a plain name key.
func (b *Builder) ExportNamedInterface(w WorldID, name string, iface InterfaceID) {
	world := b.r.Worlds[w]
	world.Exports = append(world.Exports, WorldItem{
		Key:       WorldKey{Name: name},
		Kind:      ItemInterface,
		Interface: iface,
	})
}

// ImportFunction adds a world-level imported function.
func (b *Builder) ImportFunction(w WorldID, fn *Function) {
	world := b.r.Worlds[w]
	world.Imports = append(world.Imports, WorldItem{
		Key:      WorldKey{Name: fn.Name},
		Kind:     ItemFunction,
		Function: fn,
	})
}

// ExportFunction adds a world-level exported function.
func (b *Builder) ExportFunction(w WorldID, fn *Function) {
	world := b.r.Worlds[w]
	world.Exports = append(world.Exports, WorldItem{
		Key:      WorldKey{Name: fn.Name},
		Kind:     ItemFunction,
		Function: fn,
	})
}

// ImportType adds a world-level type.
func (b *Builder) ImportType(w WorldID, id TypeID) {
	world := b.r.Worlds[w]
	world.Imports = append(world.Imports, WorldItem{
		Key:  WorldKey{Name: b.r.Types[id].Name},
		Kind: ItemType,
		Type: id,
	})
}
