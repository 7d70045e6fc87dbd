package abi

import "github.com/wippyai/witgen/graph"

// Instruction is one step of a lower/lift sequence. Arity reports how many
// operands it pops and how many results it pushes.
type Instruction interface {
	Arity() (operands, results int)
}

// MemKind is the width and signedness of a memory access.
type MemKind uint8

const (
	MemI32 MemKind = iota
	MemI32U8
	MemI32S8
	MemI32U16
	MemI32S16
	MemI64
	MemF32
	MemF64
)

// CoerceOp is a scalar conversion between interface and core types.
type CoerceOp uint8

const (
	// Lowering conversions.
	I32FromChar CoerceOp = iota
	I64FromU64
	I64FromS64
	I32FromU32
	I32FromS32
	I32FromU16
	I32FromS16
	I32FromU8
	I32FromS8
	F32FromFloat32
	F64FromFloat64
	I32FromBool

	// Lifting conversions.
	S8FromI32
	U8FromI32
	S16FromI32
	U16FromI32
	S32FromI32
	U32FromI32
	S64FromI64
	U64FromI64
	CharFromI32
	Float32FromF32
	Float64FromF64
	BoolFromI32
)

// Realloc is the name of the reallocation export handed ownership of lists.
const Realloc = "cabi_realloc"

type (
	// GetArg pushes the nth function argument.
	GetArg struct{ Nth int }
	// I32Const pushes a constant.
	I32Const struct{ Val int32 }
	// Bitcasts reinterprets each operand.
	Bitcasts struct{ Casts []Bitcast }
	// ConstZero pushes a zero of each type.
	ConstZero struct{ Types []WasmType }

	// Load pops an address and pushes the value at Offset.
	Load struct {
		Kind   MemKind
		Offset int32
	}
	// Store pops a value and an address and writes the value at Offset.
	Store struct {
		Kind   MemKind
		Offset int32
	}

	// Coerce converts one scalar.
	Coerce struct{ Op CoerceOp }

	// ListCanonLower pops a list of canonical elements, pushes ptr and len.
	// Realloc is empty when the caller keeps ownership.
	ListCanonLower struct {
		Element graph.Type
		Realloc string
	}
	// StringLower pops a string, pushes ptr and len.
	StringLower struct{ Realloc string }
	// ListLower pops a list and uses the preceding block to store each
	// element; pushes ptr and len.
	ListLower struct {
		Element graph.Type
		Realloc string
	}
	// ListCanonLift pops ptr and len.
	ListCanonLift struct {
		Element graph.Type
		Type    graph.TypeID
	}
	// StringLift pops ptr and len.
	StringLift struct{}
	// ListLift pops ptr and len and uses the preceding block to read each element.
	ListLift struct {
		Element graph.Type
		Type    graph.TypeID
	}
	// IterElem pushes the current element inside a list block.
	IterElem struct{ Element graph.Type }
	// IterBasePointer pushes the current element address inside a list block.
	IterBasePointer struct{}

	RecordLower struct {
		Record *graph.Record
		Name   string
		Type   graph.TypeID
	}
	RecordLift struct {
		Record *graph.Record
		Name   string
		Type   graph.TypeID
	}

	// HandleLower and HandleLift carry the resource name in Name.
	HandleLower struct {
		Handle *graph.Handle
		Name   string
		Type   graph.TypeID
	}
	HandleLift struct {
		Handle *graph.Handle
		Name   string
		Type   graph.TypeID
	}

	TupleLower struct {
		Tuple *graph.Tuple
		Type  graph.TypeID
	}
	TupleLift struct {
		Tuple *graph.Tuple
		Type  graph.TypeID
	}

	FlagsLower struct {
		Flags *graph.Flags
		Name  string
		Type  graph.TypeID
	}
	FlagsLift struct {
		Flags *graph.Flags
		Name  string
		Type  graph.TypeID
	}

	// VariantPayloadName pushes the name bound to the active case payload.
	VariantPayloadName struct{}

	// VariantLower consumes one block per case.
	VariantLower struct {
		Variant *graph.Variant
		Name    string
		Type    graph.TypeID
		Results []WasmType
	}
	// VariantLift pops the discriminant and consumes one block per case.
	VariantLift struct {
		Variant *graph.Variant
		Name    string
		Type    graph.TypeID
	}

	UnionLower struct {
		Union   *graph.Union
		Name    string
		Type    graph.TypeID
		Results []WasmType
	}
	UnionLift struct {
		Union *graph.Union
		Name  string
		Type  graph.TypeID
	}

	EnumLower struct {
		Enum *graph.Enum
		Name string
		Type graph.TypeID
	}
	EnumLift struct {
		Enum *graph.Enum
		Name string
		Type graph.TypeID
	}

	// OptionLower consumes the none block then the some block.
	OptionLower struct {
		Payload graph.Type
		Type    graph.TypeID
		Results []WasmType
	}
	OptionLift struct {
		Payload graph.Type
		Type    graph.TypeID
	}

	// ResultLower consumes the ok block then the err block.
	ResultLower struct {
		Result  *graph.Result
		Type    graph.TypeID
		Results []WasmType
	}
	ResultLift struct {
		Result *graph.Result
		Type   graph.TypeID
	}

	// CallWasm calls the core function Name with Sig.
	CallWasm struct {
		Name string
		Sig  *WasmSignature
	}
	// CallInterface calls the local implementation of Func.
	CallInterface struct{ Func *graph.Function }

	// Return pops Amt values and returns them.
	Return struct {
		Amt  int
		Func *graph.Function
	}

	// Malloc pushes a fresh allocation.
	Malloc struct {
		Realloc string
		Size    uint32
		Align   uint32
	}
	// GuestDeallocate frees a fixed-size allocation.
	GuestDeallocate struct {
		Size  uint32
		Align uint32
	}
	// GuestDeallocateString pops ptr and len.
	GuestDeallocateString struct{}
	// GuestDeallocateList pops ptr and len and uses the preceding block per element.
	GuestDeallocateList struct{ Element graph.Type }
	// GuestDeallocateVariant pops a discriminant and consumes Blocks blocks.
	GuestDeallocateVariant struct{ Blocks int }
)

func (GetArg) Arity() (int, int)                 { return 0, 1 }
func (I32Const) Arity() (int, int)               { return 0, 1 }
func (i Bitcasts) Arity() (int, int)             { return len(i.Casts), len(i.Casts) }
func (i ConstZero) Arity() (int, int)            { return 0, len(i.Types) }
func (Load) Arity() (int, int)                   { return 1, 1 }
func (Store) Arity() (int, int)                  { return 2, 0 }
func (Coerce) Arity() (int, int)                 { return 1, 1 }
func (ListCanonLower) Arity() (int, int)         { return 1, 2 }
func (StringLower) Arity() (int, int)            { return 1, 2 }
func (ListLower) Arity() (int, int)              { return 1, 2 }
func (ListCanonLift) Arity() (int, int)          { return 2, 1 }
func (StringLift) Arity() (int, int)             { return 2, 1 }
func (ListLift) Arity() (int, int)               { return 2, 1 }
func (IterElem) Arity() (int, int)               { return 0, 1 }
func (IterBasePointer) Arity() (int, int)        { return 0, 1 }
func (i RecordLower) Arity() (int, int)          { return 1, len(i.Record.Fields) }
func (i RecordLift) Arity() (int, int)           { return len(i.Record.Fields), 1 }
func (HandleLower) Arity() (int, int)            { return 1, 1 }
func (HandleLift) Arity() (int, int)             { return 1, 1 }
func (i TupleLower) Arity() (int, int)           { return 1, len(i.Tuple.Types) }
func (i TupleLift) Arity() (int, int)            { return len(i.Tuple.Types), 1 }
func (i FlagsLower) Arity() (int, int)           { return 1, i.Flags.Repr().Count() }
func (i FlagsLift) Arity() (int, int)            { return i.Flags.Repr().Count(), 1 }
func (VariantPayloadName) Arity() (int, int)     { return 0, 1 }
func (i VariantLower) Arity() (int, int)         { return 1, len(i.Results) }
func (VariantLift) Arity() (int, int)            { return 1, 1 }
func (i UnionLower) Arity() (int, int)           { return 1, len(i.Results) }
func (UnionLift) Arity() (int, int)              { return 1, 1 }
func (EnumLower) Arity() (int, int)              { return 1, 1 }
func (EnumLift) Arity() (int, int)               { return 1, 1 }
func (i OptionLower) Arity() (int, int)          { return 1, len(i.Results) }
func (OptionLift) Arity() (int, int)             { return 1, 1 }
func (i ResultLower) Arity() (int, int)          { return 1, len(i.Results) }
func (ResultLift) Arity() (int, int)             { return 1, 1 }
func (i CallWasm) Arity() (int, int)             { return len(i.Sig.Params), len(i.Sig.Results) }
func (i CallInterface) Arity() (int, int)        { return len(i.Func.Params), len(i.Func.Results) }
func (i Return) Arity() (int, int)               { return i.Amt, 0 }
func (Malloc) Arity() (int, int)                 { return 0, 1 }
func (GuestDeallocate) Arity() (int, int)        { return 1, 0 }
func (GuestDeallocateString) Arity() (int, int)  { return 2, 0 }
func (GuestDeallocateList) Arity() (int, int)    { return 2, 0 }
func (GuestDeallocateVariant) Arity() (int, int) { return 1, 0 }
