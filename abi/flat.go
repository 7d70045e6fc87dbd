package abi

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/witgen/graph"
)

// WasmType is a core value type of the flattened calling convention.
type WasmType = api.ValueType

// Flattening limits of the canonical ABI.
const (
	MaxFlatParams  = 16
	MaxFlatResults = 1
)

// Flatten returns the core value types representing t.
func Flatten(r *graph.Resolve, t graph.Type) []WasmType {
	return appendFlat(r, t, nil)
}

// FlattenTypes flattens a sequence of types.
func FlattenTypes(r *graph.Resolve, types []graph.Type) []WasmType {
	var out []WasmType
	for _, t := range types {
		out = appendFlat(r, t, out)
	}
	return out
}

func appendFlat(r *graph.Resolve, t graph.Type, out []WasmType) []WasmType {
	switch t := t.(type) {
	case nil:
		return out
	case graph.Primitive:
		switch t {
		case graph.U64, graph.S64:
			return append(out, api.ValueTypeI64)
		case graph.F32:
			return append(out, api.ValueTypeF32)
		case graph.F64:
			return append(out, api.ValueTypeF64)
		case graph.String:
			return append(out, api.ValueTypeI32, api.ValueTypeI32)
		default:
			return append(out, api.ValueTypeI32)
		}
	case graph.TypeID:
		switch k := r.Type(t).Kind.(type) {
		case *graph.Alias:
			return appendFlat(r, k.Type, out)
		case *graph.Record:
			for _, f := range k.Fields {
				out = appendFlat(r, f.Type, out)
			}
			return out
		case *graph.Tuple:
			for _, e := range k.Types {
				out = appendFlat(r, e, out)
			}
			return out
		case *graph.Flags:
			for i := 0; i < k.Repr().Count(); i++ {
				out = append(out, api.ValueTypeI32)
			}
			return out
		case *graph.Enum, *graph.Handle, *graph.Resource:
			return append(out, api.ValueTypeI32)
		case *graph.List:
			return append(out, api.ValueTypeI32, api.ValueTypeI32)
		case *graph.Variant:
			cases := make([]graph.Type, len(k.Cases))
			for i, c := range k.Cases {
				cases[i] = c.Type
			}
			return appendVariantFlat(r, k.Tag(), cases, out)
		case *graph.Union:
			cases := make([]graph.Type, len(k.Cases))
			for i, c := range k.Cases {
				cases[i] = c.Type
			}
			return appendVariantFlat(r, k.Tag(), cases, out)
		case *graph.Option:
			return appendVariantFlat(r, graph.IntU8, []graph.Type{nil, k.Type}, out)
		case *graph.Result:
			return appendVariantFlat(r, graph.IntU8, []graph.Type{k.OK, k.Err}, out)
		}
	}
	return out
}

func appendVariantFlat(r *graph.Resolve, tag graph.Int, cases []graph.Type, out []WasmType) []WasmType {
	if tag == graph.IntU64 {
		out = append(out, api.ValueTypeI64)
	} else {
		out = append(out, api.ValueTypeI32)
	}
	start := len(out)
	for _, c := range cases {
		for i, ft := range Flatten(r, c) {
			if start+i < len(out) {
				out[start+i] = join(out[start+i], ft)
			} else {
				out = append(out, ft)
			}
		}
	}
	return out
}

func join(a, b WasmType) WasmType {
	if a == b {
		return a
	}
	if (a == api.ValueTypeI32 && b == api.ValueTypeF32) || (a == api.ValueTypeF32 && b == api.ValueTypeI32) {
		return api.ValueTypeI32
	}
	return api.ValueTypeI64
}

// Bitcast converts between joined variant payload slots and case types.
type Bitcast uint8

const (
	BitcastNone Bitcast = iota
	BitcastI32ToI64
	BitcastF32ToI32
	BitcastF64ToI64
	BitcastI64ToI32
	BitcastI32ToF32
	BitcastI64ToF64
	BitcastF32ToI64
	BitcastI64ToF32
)

func cast(from, to WasmType) Bitcast {
	switch {
	case from == to:
		return BitcastNone
	case from == api.ValueTypeI32 && to == api.ValueTypeI64:
		return BitcastI32ToI64
	case from == api.ValueTypeF32 && to == api.ValueTypeI32:
		return BitcastF32ToI32
	case from == api.ValueTypeF64 && to == api.ValueTypeI64:
		return BitcastF64ToI64
	case from == api.ValueTypeI64 && to == api.ValueTypeI32:
		return BitcastI64ToI32
	case from == api.ValueTypeI32 && to == api.ValueTypeF32:
		return BitcastI32ToF32
	case from == api.ValueTypeI64 && to == api.ValueTypeF64:
		return BitcastI64ToF64
	case from == api.ValueTypeF32 && to == api.ValueTypeI64:
		return BitcastF32ToI64
	case from == api.ValueTypeI64 && to == api.ValueTypeF32:
		return BitcastI64ToF32
	}
	panic(errInternal("no bitcast from %s to %s", api.ValueTypeName(from), api.ValueTypeName(to)))
}
