package graph

import (
	"fmt"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/witgen/errors"
)

// FromWIT converts a wit.Type into this graph. Named typedefs are declared
// under owner; each *wit.TypeDef is converted once per builder.
func (b *Builder) FromWIT(owner Owner, t wit.Type) (Type, error) {
	switch t := t.(type) {
	case nil:
		return nil, nil
	case wit.Bool:
		return Bool, nil
	case wit.U8:
		return U8, nil
	case wit.U16:
		return U16, nil
	case wit.U32:
		return U32, nil
	case wit.U64:
		return U64, nil
	case wit.S8:
		return S8, nil
	case wit.S16:
		return S16, nil
	case wit.S32:
		return S32, nil
	case wit.S64:
		return S64, nil
	case wit.F32:
		return F32, nil
	case wit.F64:
		return F64, nil
	case wit.Char:
		return Char, nil
	case wit.String:
		return String, nil
	case *wit.TypeDef:
		if t == nil {
			return nil, nil
		}
		return b.fromWITTypeDef(owner, t)
	}
	return nil, errors.Unsupported(errors.PhaseResolve, fmt.Sprintf("wit type %T", t))
}

func (b *Builder) fromWITTypeDef(owner Owner, td *wit.TypeDef) (Type, error) {
	if b.witCache == nil {
		b.witCache = make(map[*wit.TypeDef]TypeID)
	}
	if id, ok := b.witCache[td]; ok {
		return id, nil
	}

	name := ""
	if td.Name != nil {
		name = *td.Name
	}

	var (
		id  TypeID
		err error
	)
	if name == "" {
		id, err = b.anonymousFromWIT(owner, td.Kind)
	} else {
		id, err = b.namedFromWIT(owner, name, td)
	}
	if err != nil {
		return nil, err
	}
	b.witCache[td] = id
	return id, nil
}

func (b *Builder) anonymousFromWIT(owner Owner, kind any) (TypeID, error) {
	switch k := kind.(type) {
	case *wit.List:
		elem, err := b.FromWIT(owner, k.Type)
		if err != nil {
			return 0, err
		}
		return b.List(elem), nil
	case *wit.Option:
		elem, err := b.FromWIT(owner, k.Type)
		if err != nil {
			return 0, err
		}
		return b.Option(elem), nil
	case *wit.Result:
		ok, err := b.FromWIT(owner, k.OK)
		if err != nil {
			return 0, err
		}
		e, err := b.FromWIT(owner, k.Err)
		if err != nil {
			return 0, err
		}
		return b.Result(ok, e), nil
	case *wit.Tuple:
		types, err := b.fromWITList(owner, k.Types)
		if err != nil {
			return 0, err
		}
		return b.Tuple(types...), nil
	case *wit.Own:
		res, err := b.handleTarget(owner, k.Type)
		if err != nil {
			return 0, err
		}
		return b.Own(res), nil
	case *wit.Borrow:
		res, err := b.handleTarget(owner, k.Type)
		if err != nil {
			return 0, err
		}
		return b.Borrow(res), nil
	}
	return 0, errors.Unsupported(errors.PhaseResolve, fmt.Sprintf("anonymous wit kind %T", kind))
}

func (b *Builder) namedFromWIT(owner Owner, name string, td *wit.TypeDef) (TypeID, error) {
	switch k := td.Kind.(type) {
	case *wit.Record:
		fields := make([]Field, len(k.Fields))
		for i, f := range k.Fields {
			ft, err := b.FromWIT(owner, f.Type)
			if err != nil {
				return 0, err
			}
			fields[i] = Field{Name: f.Name, Type: ft}
		}
		return b.Record(owner, name, fields...), nil
	case *wit.Variant:
		cases := make([]Case, len(k.Cases))
		for i, c := range k.Cases {
			ct, err := b.FromWIT(owner, c.Type)
			if err != nil {
				return 0, err
			}
			cases[i] = Case{Name: c.Name, Type: ct}
		}
		return b.Variant(owner, name, cases...), nil
	case *wit.Enum:
		cases := make([]string, len(k.Cases))
		for i, c := range k.Cases {
			cases[i] = c.Name
		}
		return b.Enum(owner, name, cases...), nil
	case *wit.Flags:
		flags := make([]string, len(k.Flags))
		for i, f := range k.Flags {
			flags[i] = f.Name
		}
		return b.Flags(owner, name, flags...), nil
	case wit.Type:
		target, err := b.FromWIT(owner, k)
		if err != nil {
			return 0, err
		}
		return b.Alias(owner, name, target), nil
	}
	// Named lists, options and the like become aliases of the anonymous shape.
	target, err := b.anonymousFromWIT(owner, td.Kind)
	if err != nil {
		return 0, err
	}
	return b.Alias(owner, name, target), nil
}

func (b *Builder) fromWITList(owner Owner, types []wit.Type) ([]Type, error) {
	out := make([]Type, len(types))
	for i, t := range types {
		ct, err := b.FromWIT(owner, t)
		if err != nil {
			return nil, err
		}
		out[i] = ct
	}
	return out, nil
}

func (b *Builder) handleTarget(owner Owner, t wit.Type) (TypeID, error) {
	if t == nil {
		return 0, errors.InvalidData(errors.PhaseResolve, nil, "handle without resource")
	}
	res, err := b.FromWIT(owner, t)
	if err != nil {
		return 0, err
	}
	id, ok := res.(TypeID)
	if !ok {
		return 0, errors.InvalidData(errors.PhaseResolve, nil, "handle of non-resource type")
	}
	return id, nil
}
