package metadata

import "github.com/wippyai/witgen/graph"

// Version is the encoding version written by Encode.
const Version = 1

// Kind identifies a type descriptor. Values follow the component model
// type opcodes where one exists.
type Kind byte

const (
	KindRecord   Kind = 0x72
	KindVariant  Kind = 0x71
	KindList     Kind = 0x70
	KindTuple    Kind = 0x6f
	KindFlags    Kind = 0x6e
	KindEnum     Kind = 0x6d
	KindUnion    Kind = 0x6c
	KindOption   Kind = 0x6b
	KindResult   Kind = 0x6a
	KindOwn      Kind = 0x69
	KindBorrow   Kind = 0x68
	KindAlias    Kind = 0x67
	KindResource Kind = 0x3f
)

func (k Kind) valid() bool {
	switch k {
	case KindRecord, KindVariant, KindList, KindTuple, KindFlags, KindEnum, KindUnion,
		KindOption, KindResult, KindOwn, KindBorrow, KindAlias, KindResource:
		return true
	}
	return false
}

// TypeRef is an index into Descriptor.Types, a primitive, or NoType.
// Primitives are encoded as -1-p.
type TypeRef int32

// NoType marks an absent payload.
const NoType TypeRef = -1

// Prim returns the reference to a primitive type.
func Prim(p graph.Primitive) TypeRef {
	return TypeRef(-1 - int32(p))
}

// Primitive reports the primitive t refers to, if any.
func (t TypeRef) Primitive() (graph.Primitive, bool) {
	if t >= NoType {
		return 0, false
	}
	return graph.Primitive(-1 - int32(t)), true
}

// Field is a named member: a record field, variant case, flag, enum case,
// parameter or result. Type is NoType where there is none.
type Field struct {
	Name string
	Type TypeRef
}

// TypeDesc describes one type definition.
type TypeDesc struct {
	Name  string
	Owner string
	Kind  Kind
	// Fields holds record fields, variant cases, flags and enum cases.
	Fields []Field
	// Types holds tuple and union members, and the single referenced type
	// of lists, options, handles and aliases. Results hold ok then err.
	Types []TypeRef
}

// Func describes a function signature.
type Func struct {
	Name    string
	Params  []Field
	Results []Field
}

// ItemKind tells what a world item carries.
type ItemKind byte

const (
	ItemInterface ItemKind = iota
	ItemFunction
	ItemType
)

// Item is one world import or export.
type Item struct {
	Kind ItemKind
	Name string
	// Types and Funcs are an interface's contents; a function item has
	// exactly one Func, a type item exactly one Type.
	Types []TypeRef
	Funcs []Func
}

// Descriptor is the encodable form of a world.
type Descriptor struct {
	Version uint8
	Package string
	World   string
	Types   []TypeDesc
	Imports []Item
	Exports []Item
}

// Describe builds the descriptor of world. Types are numbered in the order
// a depth-first walk of the imports, then the exports, first reaches them.
func Describe(r *graph.Resolve, world graph.WorldID) *Descriptor {
	w := r.World(world)
	d := &describer{resolve: r, index: make(map[graph.TypeID]TypeRef)}
	desc := &Descriptor{Version: Version, World: w.Name}
	if p := r.Package(w.Package); p != nil {
		desc.Package = p.Name.String()
	}
	for _, item := range w.Imports {
		desc.Imports = append(desc.Imports, d.item(item))
	}
	for _, item := range w.Exports {
		desc.Exports = append(desc.Exports, d.item(item))
	}
	desc.Types = d.types
	return desc
}

type describer struct {
	resolve *graph.Resolve
	index   map[graph.TypeID]TypeRef
	types   []TypeDesc
}

func (d *describer) item(item graph.WorldItem) Item {
	out := Item{Name: d.resolve.NameWorldKey(item.Key)}
	switch item.Kind {
	case graph.ItemInterface:
		out.Kind = ItemInterface
		iface := d.resolve.Interface(item.Interface)
		for _, t := range iface.Types {
			out.Types = append(out.Types, d.ref(t))
		}
		for _, fn := range iface.Functions {
			out.Funcs = append(out.Funcs, d.function(fn))
		}
	case graph.ItemFunction:
		out.Kind = ItemFunction
		out.Name = item.Function.Name
		out.Funcs = append(out.Funcs, d.function(item.Function))
	case graph.ItemType:
		out.Kind = ItemType
		out.Name = d.resolve.Type(item.Type).Name
		out.Types = append(out.Types, d.ref(item.Type))
	}
	return out
}

func (d *describer) function(fn *graph.Function) Func {
	out := Func{Name: fn.Name}
	for _, p := range fn.Params {
		out.Params = append(out.Params, Field{Name: p.Name, Type: d.ref(p.Type)})
	}
	for _, r := range fn.Results {
		out.Results = append(out.Results, Field{Name: r.Name, Type: d.ref(r.Type)})
	}
	return out
}

func (d *describer) ref(t graph.Type) TypeRef {
	switch t := t.(type) {
	case nil:
		return NoType
	case graph.Primitive:
		return Prim(t)
	case graph.TypeID:
		if ref, ok := d.index[t]; ok {
			return ref
		}
		// Reserve the slot before visiting children so cycles through
		// handles terminate.
		ref := TypeRef(len(d.types))
		d.index[t] = ref
		d.types = append(d.types, TypeDesc{})
		desc := d.typeDesc(t)
		d.types[ref] = desc
		return ref
	}
	return NoType
}

func (d *describer) typeDesc(id graph.TypeID) TypeDesc {
	def := d.resolve.Type(id)
	out := TypeDesc{Name: def.Name}
	switch def.Owner.Kind {
	case graph.OwnerInterface:
		out.Owner = d.resolve.InterfaceID(def.Owner.Interface)
	case graph.OwnerWorld:
		out.Owner = d.resolve.World(def.Owner.World).Name
	}
	switch k := def.Kind.(type) {
	case *graph.Record:
		out.Kind = KindRecord
		for _, f := range k.Fields {
			out.Fields = append(out.Fields, Field{Name: f.Name, Type: d.ref(f.Type)})
		}
	case *graph.Variant:
		out.Kind = KindVariant
		for _, c := range k.Cases {
			out.Fields = append(out.Fields, Field{Name: c.Name, Type: d.ref(c.Type)})
		}
	case *graph.Union:
		out.Kind = KindUnion
		for _, c := range k.Cases {
			out.Types = append(out.Types, d.ref(c.Type))
		}
	case *graph.Enum:
		out.Kind = KindEnum
		for _, c := range k.Cases {
			out.Fields = append(out.Fields, Field{Name: c.Name, Type: NoType})
		}
	case *graph.Flags:
		out.Kind = KindFlags
		for _, f := range k.Flags {
			out.Fields = append(out.Fields, Field{Name: f.Name, Type: NoType})
		}
	case *graph.Tuple:
		out.Kind = KindTuple
		for _, t := range k.Types {
			out.Types = append(out.Types, d.ref(t))
		}
	case *graph.List:
		out.Kind = KindList
		out.Types = append(out.Types, d.ref(k.Type))
	case *graph.Option:
		out.Kind = KindOption
		out.Types = append(out.Types, d.ref(k.Type))
	case *graph.Result:
		out.Kind = KindResult
		out.Types = append(out.Types, d.ref(k.OK), d.ref(k.Err))
	case *graph.Handle:
		out.Kind = KindOwn
		if k.Borrow {
			out.Kind = KindBorrow
		}
		out.Types = append(out.Types, d.ref(k.Resource))
	case *graph.Alias:
		out.Kind = KindAlias
		out.Types = append(out.Types, d.ref(k.Type))
	case *graph.Resource:
		out.Kind = KindResource
	}
	return out
}
