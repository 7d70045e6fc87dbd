package graph

import (
	"fmt"
	"strings"
)

type (
	PackageID   int
	InterfaceID int
	WorldID     int
)

// NoPackage marks an interface or world outside any package.
const NoPackage PackageID = -1

// PackageName is namespace:name@version.
type PackageName struct {
	Namespace string
	Name      string
	Version   string
}

func (n PackageName) String() string {
	s := n.Namespace + ":" + n.Name
	if n.Version != "" {
		s += "@" + n.Version
	}
	return s
}

// Package groups interfaces and worlds.
type Package struct {
	Name       PackageName
	Interfaces []InterfaceID
	Worlds     []WorldID
	Docs       string
}

// Interface is a named collection of types and functions.
type Interface struct {
	Name      string
	Package   PackageID
	Types     []TypeID
	Functions []*Function
	Docs      string
}

// FunctionKind distinguishes the four call shapes.
type FunctionKind uint8

const (
	Freestanding FunctionKind = iota
	Method
	Static
	Constructor
)

// Param is a named parameter or result.
type Param struct {
	Name string
	Type Type
}

// Function is an interface or world function.
//
// Method, static and constructor names use the "[method]r.name",
// "[static]r.name" and "[constructor]r" spellings.
type Function struct {
	Name     string
	Kind     FunctionKind
	Resource TypeID
	Params   []Param
	// Results holds either a single unnamed result or named results.
	Results []Param
	Docs    string
}

// ItemName returns the name without resource qualification.
func (f *Function) ItemName() string {
	switch f.Kind {
	case Constructor:
		return "new"
	case Method, Static:
		if _, after, ok := strings.Cut(f.Name, "."); ok {
			return after
		}
	}
	return f.Name
}

// ResultTypes returns the result types in order.
func (f *Function) ResultTypes() []Type {
	out := make([]Type, len(f.Results))
	for i, r := range f.Results {
		out[i] = r.Type
	}
	return out
}

// ParamTypes returns the parameter types in order.
func (f *Function) ParamTypes() []Type {
	out := make([]Type, len(f.Params))
	for i, p := range f.Params {
		out[i] = p.Type
	}
	return out
}

// WorldKey names a world import or export.
type WorldKey struct {
	Name      string
	Interface InterfaceID
	// IsInterface is set when the key is an interface reference.
	IsInterface bool
}

// WorldItemKind tells what a world item carries.
type WorldItemKind uint8

const (
	ItemInterface WorldItemKind = iota
	ItemFunction
	ItemType
)

// WorldItem is one import or export of a world.
type WorldItem struct {
	Key       WorldKey
	Kind      WorldItemKind
	Interface InterfaceID
	Function  *Function
	Type      TypeID
}

// World is the unit of generation.
type World struct {
	Name    string
	Package PackageID
	Imports []WorldItem
	Exports []WorldItem
	Docs    string
}

// Resolve owns the whole resolved graph.
type Resolve struct {
	Packages   []*Package
	Interfaces []*Interface
	Worlds     []*World
	Types      []*TypeDef
}

// Type returns the definition for id.
func (r *Resolve) Type(id TypeID) *TypeDef {
	return r.Types[id]
}

// Interface returns the interface for id.
func (r *Resolve) Interface(id InterfaceID) *Interface {
	return r.Interfaces[id]
}

// World returns the world for id.
func (r *Resolve) World(id WorldID) *World {
	return r.Worlds[id]
}

// Package returns the package for id, or nil for NoPackage.
func (r *Resolve) Package(id PackageID) *Package {
	if id == NoPackage {
		return nil
	}
	return r.Packages[id]
}

// FindWorld looks up a world by name, optionally qualified by "ns:pkg/".
func (r *Resolve) FindWorld(name string) (WorldID, bool) {
	for i, w := range r.Worlds {
		if w.Name == name {
			return WorldID(i), true
		}
		if p := r.Package(w.Package); p != nil {
			qualified := p.Name.Namespace + ":" + p.Name.Name + "/" + w.Name
			if name == qualified || name == p.Name.String()+"/"+w.Name {
				return WorldID(i), true
			}
		}
	}
	return 0, false
}

// InterfaceID returns the interface's canonical ID string:
// "ns:pkg/iface@version", or the bare name outside a package.
func (r *Resolve) InterfaceID(id InterfaceID) string {
	iface := r.Interfaces[id]
	p := r.Package(iface.Package)
	if p == nil {
		return iface.Name
	}
	s := p.Name.Namespace + ":" + p.Name.Name + "/" + iface.Name
	if p.Name.Version != "" {
		s += "@" + p.Name.Version
	}
	return s
}

// NameWorldKey returns the import/export module name for a key.
func (r *Resolve) NameWorldKey(key WorldKey) string {
	if key.IsInterface {
		return r.InterfaceID(key.Interface)
	}
	return key.Name
}

// Dealias follows Alias chains to the underlying type.
func (r *Resolve) Dealias(t Type) Type {
	for {
		id, ok := t.(TypeID)
		if !ok {
			return t
		}
		a, ok := r.Types[id].Kind.(*Alias)
		if !ok {
			return t
		}
		t = a.Type
	}
}

// AllBitsValid reports whether every bit pattern of t's memory
// representation is a valid value, making lists of t canonical.
func (r *Resolve) AllBitsValid(t Type) bool {
	switch t := t.(type) {
	case Primitive:
		switch t {
		case Bool, Char, String:
			return false
		}
		return true
	case TypeID:
		switch k := r.Types[t].Kind.(type) {
		case *Alias:
			return r.AllBitsValid(k.Type)
		case *Record:
			for _, f := range k.Fields {
				if !r.AllBitsValid(f.Type) {
					return false
				}
			}
			return true
		case *Tuple:
			for _, e := range k.Types {
				if !r.AllBitsValid(e) {
					return false
				}
			}
			return true
		}
	}
	return false
}

// TypeString renders t in WIT syntax.
func (r *Resolve) TypeString(t Type) string {
	switch t := t.(type) {
	case nil:
		return "_"
	case Primitive:
		return t.String()
	case TypeID:
		def := r.Types[t]
		if def.Name != "" {
			return def.Name
		}
		switch k := def.Kind.(type) {
		case *List:
			return "list<" + r.TypeString(k.Type) + ">"
		case *Option:
			return "option<" + r.TypeString(k.Type) + ">"
		case *Result:
			switch {
			case k.OK == nil && k.Err == nil:
				return "result"
			case k.Err == nil:
				return "result<" + r.TypeString(k.OK) + ">"
			default:
				return "result<" + r.TypeString(k.OK) + ", " + r.TypeString(k.Err) + ">"
			}
		case *Tuple:
			parts := make([]string, len(k.Types))
			for i, e := range k.Types {
				parts[i] = r.TypeString(e)
			}
			return "tuple<" + strings.Join(parts, ", ") + ">"
		case *Handle:
			name := r.Types[k.Resource].Name
			if k.Borrow {
				return "borrow<" + name + ">"
			}
			return "own<" + name + ">"
		case *Alias:
			return r.TypeString(k.Type)
		}
		return fmt.Sprintf("type#%d", int(t))
	}
	return "invalid"
}
