package abi

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/witgen/errors"
	"github.com/wippyai/witgen/graph"
)

// Variant selects which side of the boundary the guest is on.
type Variant uint8

const (
	// GuestImport: generated code calls a function the host provides.
	GuestImport Variant = iota
	// GuestExport: the host calls a function generated code provides.
	GuestExport
)

func (v Variant) String() string {
	if v == GuestExport {
		return "export"
	}
	return "import"
}

// LiftLower selects the direction values travel through a call.
type LiftLower uint8

const (
	// LowerArgsLiftResults is the caller's view.
	LowerArgsLiftResults LiftLower = iota
	// LiftArgsLowerResults is the callee's view.
	LiftArgsLowerResults
)

// WasmSignature is the core function type of a component function.
type WasmSignature struct {
	Params         []WasmType
	Results        []WasmType
	IndirectParams bool
	Retptr         bool
}

// Signature computes the flattened core signature of fn.
func Signature(r *graph.Resolve, variant Variant, fn *graph.Function) WasmSignature {
	params := FlattenTypes(r, fn.ParamTypes())
	indirect := false
	if len(params) > MaxFlatParams {
		params = []WasmType{api.ValueTypeI32}
		indirect = true
	}

	results := FlattenTypes(r, fn.ResultTypes())
	retptr := false
	if len(results) > MaxFlatResults {
		retptr = true
		results = nil
		switch variant {
		case GuestImport:
			params = append(params, api.ValueTypeI32)
		case GuestExport:
			results = []WasmType{api.ValueTypeI32}
		}
	}

	return WasmSignature{
		Params:         params,
		Results:        results,
		IndirectParams: indirect,
		Retptr:         retptr,
	}
}

// NeedsPostReturn reports whether a returned value of type t owns memory
// that must be released after the caller has read it.
func NeedsPostReturn(r *graph.Resolve, t graph.Type) bool {
	switch t := t.(type) {
	case graph.Primitive:
		return t == graph.String
	case graph.TypeID:
		switch k := r.Type(t).Kind.(type) {
		case *graph.Alias:
			return NeedsPostReturn(r, k.Type)
		case *graph.List:
			return true
		case *graph.Record:
			for _, f := range k.Fields {
				if NeedsPostReturn(r, f.Type) {
					return true
				}
			}
		case *graph.Tuple:
			for _, e := range k.Types {
				if NeedsPostReturn(r, e) {
					return true
				}
			}
		case *graph.Variant:
			for _, c := range k.Cases {
				if c.Type != nil && NeedsPostReturn(r, c.Type) {
					return true
				}
			}
		case *graph.Union:
			for _, c := range k.Cases {
				if NeedsPostReturn(r, c.Type) {
					return true
				}
			}
		case *graph.Option:
			return NeedsPostReturn(r, k.Type)
		case *graph.Result:
			return (k.OK != nil && NeedsPostReturn(r, k.OK)) || (k.Err != nil && NeedsPostReturn(r, k.Err))
		}
	}
	return false
}

// GuestExportNeedsPostReturn reports whether an exported fn needs a
// cabi_post_ companion.
func GuestExportNeedsPostReturn(r *graph.Resolve, fn *graph.Function) bool {
	for _, t := range fn.ResultTypes() {
		if NeedsPostReturn(r, t) {
			return true
		}
	}
	return false
}

// contractError carries a broken instruction-contract invariant through panic.
type contractError struct {
	err *errors.Error
}

func errInternal(format string, args ...any) contractError {
	return contractError{err: errors.Internal(format, args...)}
}
