package gen

import (
	"strconv"
	"strings"

	"github.com/wippyai/witgen/abi"
	"github.com/wippyai/witgen/cabi"
	"github.com/wippyai/witgen/errors"
	"github.com/wippyai/witgen/graph"
	"github.com/wippyai/witgen/resource"
)

// CabiPath is the import path of the runtime support package.
const CabiPath = "github.com/wippyai/witgen/cabi"

// typeMode selects between the borrowed and owned shape of a type.
type typeMode uint8

const (
	modeOwned typeMode = iota
	modeParam
)

func (e *interfaceEmitter) cabi() string {
	return e.imports.add(CabiPath, "cabi")
}

// typeName renders t as a Go type usable in e's package.
func (e *interfaceEmitter) typeName(t graph.Type, mode typeMode) string {
	switch t := t.(type) {
	case nil:
		return "struct{}"
	case graph.Primitive:
		return e.primitiveName(t)
	case graph.TypeID:
		def := e.g.resolve.Type(t)
		if h, ok := def.Kind.(*graph.Handle); ok && def.Name == "" {
			return e.handleName(t, h)
		}
		if def.Name != "" {
			return e.qualify(def.Owner, e.g.declName(t, mode), false)
		}
		return e.anonymousName(def.Kind, mode)
	}
	panic(errors.Internal("unexpected type %T", t))
}

func (e *interfaceEmitter) primitiveName(p graph.Primitive) string {
	switch p {
	case graph.Bool:
		return "bool"
	case graph.S8:
		return "int8"
	case graph.U8:
		return "uint8"
	case graph.S16:
		return "int16"
	case graph.U16:
		return "uint16"
	case graph.S32:
		return "int32"
	case graph.U32:
		return "uint32"
	case graph.S64:
		return "int64"
	case graph.U64:
		return "uint64"
	case graph.F32:
		return "float32"
	case graph.F64:
		return "float64"
	case graph.Char:
		return "rune"
	case graph.String:
		if e.g.opts.RawStrings {
			return "[]byte"
		}
		return "string"
	}
	panic(errors.Internal("unknown primitive %d", p))
}

func (e *interfaceEmitter) anonymousName(kind graph.Kind, mode typeMode) string {
	switch k := kind.(type) {
	case *graph.List:
		return "[]" + e.typeName(k.Type, mode)
	case *graph.Option:
		return e.cabi() + ".Option[" + e.typeName(k.Type, mode) + "]"
	case *graph.Result:
		return e.cabi() + ".Result[" + e.typeName(k.OK, mode) + ", " + e.typeName(k.Err, mode) + "]"
	case *graph.Tuple:
		if len(k.Types) == 0 {
			return "struct{}"
		}
		if len(k.Types) > cabi.MaxTupleArity {
			elems := make([]string, len(k.Types))
			for i, t := range k.Types {
				elems[i] = e.g.resolve.TypeString(t)
			}
			panic(errors.New(errors.PhaseGenerate, errors.KindUnsupported).
				WitType("tuple<" + strings.Join(elems, ", ") + ">").
				GoType("cabi.Tuple" + strconv.Itoa(len(k.Types))).
				Detail("tuple of %d elements exceeds cabi.Tuple%d", len(k.Types), cabi.MaxTupleArity).
				Build())
		}
		parts := make([]string, len(k.Types))
		for i, t := range k.Types {
			parts[i] = e.typeName(t, mode)
		}
		return e.cabi() + ".Tuple" + strconv.Itoa(len(k.Types)) + "[" + strings.Join(parts, ", ") + "]"
	case *graph.Alias:
		return e.typeName(k.Type, mode)
	}
	panic(errors.Internal("unnamed %T has no Go type", kind))
}

// handleName renders own<R> or borrow<R>. Exported resources are reached
// through OwnR for owned handles and the R contract for borrows.
func (e *interfaceEmitter) handleName(id graph.TypeID, h *graph.Handle) string {
	def := e.g.resolve.Type(h.Resource)
	name := exportedName(def.Name)
	if e.g.registry.Direction(h.Resource) == resource.Import {
		return e.qualify(def.Owner, name, false)
	}
	if h.Borrow {
		return e.qualify(def.Owner, name, true)
	}
	if err := e.g.registry.RegisterOwn(h.Resource, id); err != nil {
		panic(err)
	}
	return e.qualify(def.Owner, "Own"+name, true)
}

// paramType renders the Go type of an import parameter.
func (e *interfaceEmitter) paramType(t graph.Type) string {
	if e.g.opts.Ownership != Owning && e.variant == abi.GuestImport && e.g.types.isRecord(t) {
		return "*" + e.typeName(t, modeParam)
	}
	if e.variant == abi.GuestImport {
		return e.typeName(t, modeParam)
	}
	return e.typeName(t, modeOwned)
}

// qualify returns name as referenced from e, importing the package that
// declares it when needed.
func (e *interfaceEmitter) qualify(owner graph.Owner, name string, export bool) string {
	switch owner.Kind {
	case graph.OwnerInterface:
		loc := e.g.location(owner.Interface, export)
		if loc == nil {
			panic(errors.Internal("interface %s has no output location", e.g.resolve.InterfaceID(owner.Interface)))
		}
		if loc == e {
			return name
		}
		return e.imports.add(loc.path, loc.pkg) + "." + name
	case graph.OwnerWorld:
		root := e.g.root
		if e == root {
			return name
		}
		return e.imports.add(root.path, root.pkg) + "." + name
	}
	return name
}

// declName is the Go name of a named type in the given mode.
func (g *Generator) declName(id graph.TypeID, mode typeMode) string {
	name := exportedName(g.resolve.Type(id).Name)
	borrowed, owned := g.types.shapes(id, g.opts.Ownership)
	if borrowed && owned {
		if mode == modeParam {
			return name + "Param"
		}
		return name + "Result"
	}
	return name
}
