package abi

import (
	"github.com/wippyai/witgen/errors"
	"github.com/wippyai/witgen/graph"
)

// Bindgen receives the instruction stream for one function and renders it.
//
// O is the operand representation; code generators use source expressions.
// Emit returns exactly as many results as the instruction's Arity declares.
// Instructions that consume blocks (variants, lists, deallocation) take them
// from the blocks completed by FinishBlock, most recent last.
type Bindgen[O any] interface {
	Emit(inst Instruction, operands []O) []O
	ReturnPointer(size, align uint32) O
	PushBlock()
	FinishBlock(operands []O)
	Sizes() *graph.SizeAlign
	IsListCanonical(element graph.Type) bool
}

// Call emits the instruction sequence for calling or implementing fn.
func Call[O any](r *graph.Resolve, variant Variant, ll LiftLower, fn *graph.Function, bg Bindgen[O]) (err error) {
	g := &generator[O]{resolve: r, variant: variant, liftLower: ll, bindgen: bg}
	defer g.recover(&err)
	g.call(fn)
	return nil
}

// PostReturn emits the sequence that frees what an exported fn returned.
func PostReturn[O any](r *graph.Resolve, variant Variant, fn *graph.Function, bg Bindgen[O]) (err error) {
	g := &generator[O]{resolve: r, variant: variant, liftLower: LiftArgsLowerResults, bindgen: bg}
	defer g.recover(&err)
	g.postReturn(fn)
	return nil
}

type generator[O any] struct {
	resolve   *graph.Resolve
	variant   Variant
	liftLower LiftLower
	bindgen   Bindgen[O]

	stack     []O
	retPtr    O
	hasRetPtr bool
}

func (g *generator[O]) recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	switch e := r.(type) {
	case contractError:
		*err = e.err
	case *errors.Error:
		*err = e
	default:
		panic(r)
	}
}

func (g *generator[O]) fail(format string, args ...any) {
	panic(errInternal(format, args...))
}

func (g *generator[O]) sizes() *graph.SizeAlign {
	return g.bindgen.Sizes()
}

func (g *generator[O]) call(fn *graph.Function) {
	sig := Signature(g.resolve, g.variant, fn)

	switch g.liftLower {
	case LowerArgsLiftResults:
		if !sig.IndirectParams {
			for i, p := range fn.Params {
				g.emit(GetArg{Nth: i})
				g.lower(p.Type)
			}
		} else {
			types := fn.ParamTypes()
			layout := g.sizes().Params(types)
			var ptr O
			switch g.variant {
			case GuestImport:
				ptr = g.bindgen.ReturnPointer(layout.Size, layout.Align)
			case GuestExport:
				g.emit(Malloc{Realloc: Realloc, Size: layout.Size, Align: layout.Align})
				ptr = g.pop()
			}
			for i, fo := range g.sizes().FieldOffsets(types) {
				g.emit(GetArg{Nth: i})
				g.writeToMemory(fo.Type, ptr, int32(fo.Offset))
			}
			g.push(ptr)
		}

		if g.variant == GuestImport && sig.Retptr {
			layout := g.sizes().Params(fn.ResultTypes())
			ptr := g.bindgen.ReturnPointer(layout.Size, layout.Align)
			g.retPtr, g.hasRetPtr = ptr, true
			g.push(ptr)
		}

		if len(g.stack) != len(sig.Params) {
			g.fail("%s: %d values prepared for %d core params", fn.Name, len(g.stack), len(sig.Params))
		}
		g.emit(CallWasm{Name: fn.Name, Sig: &sig})

		if !sig.Retptr {
			for _, t := range fn.ResultTypes() {
				g.lift(t)
			}
		} else {
			var ptr O
			switch g.variant {
			case GuestImport:
				ptr = g.retPtr
				g.hasRetPtr = false
			case GuestExport:
				ptr = g.pop()
			}
			g.readFieldsFromMemory(fn.ResultTypes(), ptr, 0)
		}

		g.emit(Return{Func: fn, Amt: len(fn.Results)})

	case LiftArgsLowerResults:
		if !sig.IndirectParams {
			nth := 0
			for _, p := range fn.Params {
				for range Flatten(g.resolve, p.Type) {
					g.emit(GetArg{Nth: nth})
					nth++
				}
				g.lift(p.Type)
			}
		} else {
			g.emit(GetArg{Nth: 0})
			ptr := g.pop()
			for _, fo := range g.sizes().FieldOffsets(fn.ParamTypes()) {
				g.readFromMemory(fo.Type, ptr, int32(fo.Offset))
			}
		}

		g.emit(CallInterface{Func: fn})

		if g.variant == GuestExport && sig.IndirectParams {
			layout := g.sizes().Params(fn.ParamTypes())
			g.emit(GetArg{Nth: 0})
			g.emit(GuestDeallocate{Size: layout.Size, Align: layout.Align})
		}

		if !sig.Retptr {
			results := g.drain(len(fn.Results))
			for i, t := range fn.ResultTypes() {
				g.push(results[i])
				g.lower(t)
			}
		} else {
			switch g.variant {
			case GuestImport:
				g.emit(GetArg{Nth: len(sig.Params) - 1})
				ptr := g.pop()
				g.writeFieldsToMemory(fn.ResultTypes(), ptr, 0)
			case GuestExport:
				layout := g.sizes().Params(fn.ResultTypes())
				ptr := g.bindgen.ReturnPointer(layout.Size, layout.Align)
				g.writeFieldsToMemory(fn.ResultTypes(), ptr, 0)
				g.push(ptr)
			}
		}

		g.emit(Return{Func: fn, Amt: len(sig.Results)})
	}

	if len(g.stack) != 0 {
		g.fail("%s: stack has %d items remaining", fn.Name, len(g.stack))
	}
}

func (g *generator[O]) postReturn(fn *graph.Function) {
	sig := Signature(g.resolve, g.variant, fn)
	if !sig.Retptr {
		g.fail("%s: post-return requires a return pointer", fn.Name)
	}
	g.emit(GetArg{Nth: 0})
	addr := g.pop()
	for _, fo := range g.sizes().FieldOffsets(fn.ResultTypes()) {
		g.deallocate(fo.Type, addr, int32(fo.Offset))
	}
	g.emit(Return{Func: fn, Amt: 0})

	if len(g.stack) != 0 {
		g.fail("%s: stack has %d items remaining", fn.Name, len(g.stack))
	}
}

func (g *generator[O]) emit(inst Instruction) {
	nOps, nRes := inst.Arity()
	if len(g.stack) < nOps {
		g.fail("not enough operands on stack for %T: have %d, need %d", inst, len(g.stack), nOps)
	}
	operands := g.drain(nOps)
	results := g.bindgen.Emit(inst, operands)
	if len(results) != nRes {
		g.fail("%T expected %d results, got %d", inst, nRes, len(results))
	}
	g.stack = append(g.stack, results...)
}

func (g *generator[O]) push(op O) {
	g.stack = append(g.stack, op)
}

func (g *generator[O]) pop() O {
	if len(g.stack) == 0 {
		g.fail("pop from empty operand stack")
	}
	op := g.stack[len(g.stack)-1]
	g.stack = g.stack[:len(g.stack)-1]
	return op
}

// drain removes and returns the top n operands in push order.
func (g *generator[O]) drain(n int) []O {
	if n > len(g.stack) {
		g.fail("not enough operands on stack: have %d, need %d", len(g.stack), n)
	}
	out := make([]O, n)
	copy(out, g.stack[len(g.stack)-n:])
	g.stack = g.stack[:len(g.stack)-n]
	return out
}

func (g *generator[O]) pushBlock() {
	g.bindgen.PushBlock()
}

func (g *generator[O]) finishBlock(n int) {
	g.bindgen.FinishBlock(g.drain(n))
}

func (g *generator[O]) listRealloc() string {
	if g.variant == GuestImport && g.liftLower == LowerArgsLiftResults {
		return ""
	}
	return Realloc
}

func (g *generator[O]) typeName(id graph.TypeID) string {
	return g.resolve.Type(id).Name
}

func caseTypes(k graph.Kind) []graph.Type {
	switch k := k.(type) {
	case *graph.Variant:
		out := make([]graph.Type, len(k.Cases))
		for i, c := range k.Cases {
			out[i] = c.Type
		}
		return out
	case *graph.Union:
		out := make([]graph.Type, len(k.Cases))
		for i, c := range k.Cases {
			out[i] = c.Type
		}
		return out
	case *graph.Option:
		return []graph.Type{nil, k.Type}
	case *graph.Result:
		return []graph.Type{k.OK, k.Err}
	}
	return nil
}

func recordTypes(r *graph.Record) []graph.Type {
	out := make([]graph.Type, len(r.Fields))
	for i, f := range r.Fields {
		out[i] = f.Type
	}
	return out
}

func (g *generator[O]) lower(t graph.Type) {
	switch t := t.(type) {
	case graph.Primitive:
		switch t {
		case graph.Bool:
			g.emit(Coerce{Op: I32FromBool})
		case graph.S8:
			g.emit(Coerce{Op: I32FromS8})
		case graph.U8:
			g.emit(Coerce{Op: I32FromU8})
		case graph.S16:
			g.emit(Coerce{Op: I32FromS16})
		case graph.U16:
			g.emit(Coerce{Op: I32FromU16})
		case graph.S32:
			g.emit(Coerce{Op: I32FromS32})
		case graph.U32:
			g.emit(Coerce{Op: I32FromU32})
		case graph.S64:
			g.emit(Coerce{Op: I64FromS64})
		case graph.U64:
			g.emit(Coerce{Op: I64FromU64})
		case graph.Char:
			g.emit(Coerce{Op: I32FromChar})
		case graph.F32:
			g.emit(Coerce{Op: F32FromFloat32})
		case graph.F64:
			g.emit(Coerce{Op: F64FromFloat64})
		case graph.String:
			g.emit(StringLower{Realloc: g.listRealloc()})
		}
	case graph.TypeID:
		switch k := g.resolve.Type(t).Kind.(type) {
		case *graph.Alias:
			g.lower(k.Type)
		case *graph.List:
			realloc := g.listRealloc()
			if g.bindgen.IsListCanonical(k.Type) {
				g.emit(ListCanonLower{Element: k.Type, Realloc: realloc})
			} else {
				g.pushBlock()
				g.emit(IterElem{Element: k.Type})
				g.emit(IterBasePointer{})
				addr := g.pop()
				g.writeToMemory(k.Type, addr, 0)
				g.finishBlock(0)
				g.emit(ListLower{Element: k.Type, Realloc: realloc})
			}
		case *graph.Handle:
			g.emit(HandleLower{Handle: k, Name: g.typeName(k.Resource), Type: t})
		case *graph.Record:
			g.emit(RecordLower{Record: k, Name: g.typeName(t), Type: t})
			values := g.drain(len(k.Fields))
			for i, f := range k.Fields {
				g.push(values[i])
				g.lower(f.Type)
			}
		case *graph.Tuple:
			g.emit(TupleLower{Tuple: k, Type: t})
			values := g.drain(len(k.Types))
			for i, e := range k.Types {
				g.push(values[i])
				g.lower(e)
			}
		case *graph.Flags:
			g.emit(FlagsLower{Flags: k, Name: g.typeName(t), Type: t})
		case *graph.Enum:
			g.emit(EnumLower{Enum: k, Name: g.typeName(t), Type: t})
		case *graph.Variant:
			results := g.lowerVariantArms(t, caseTypes(k))
			g.emit(VariantLower{Variant: k, Name: g.typeName(t), Type: t, Results: results})
		case *graph.Union:
			results := g.lowerVariantArms(t, caseTypes(k))
			g.emit(UnionLower{Union: k, Name: g.typeName(t), Type: t, Results: results})
		case *graph.Option:
			results := g.lowerVariantArms(t, caseTypes(k))
			g.emit(OptionLower{Payload: k.Type, Type: t, Results: results})
		case *graph.Result:
			results := g.lowerVariantArms(t, caseTypes(k))
			g.emit(ResultLower{Result: k, Type: t, Results: results})
		default:
			g.fail("cannot lower %s", g.resolve.TypeString(t))
		}
	}
}

func (g *generator[O]) lowerVariantArms(t graph.Type, cases []graph.Type) []WasmType {
	results := Flatten(g.resolve, t)
	for i, c := range cases {
		g.pushBlock()
		g.emit(VariantPayloadName{})
		payload := g.pop()
		g.emit(I32Const{Val: int32(i)})
		pushed := 1
		if c != nil {
			g.push(payload)
			g.lower(c)

			flat := Flatten(g.resolve, c)
			pushed += len(flat)

			casts := make([]Bitcast, len(flat))
			needed := false
			for j, actual := range flat {
				casts[j] = cast(actual, results[1+j])
				if casts[j] != BitcastNone {
					needed = true
				}
			}
			if needed {
				g.emit(Bitcasts{Casts: casts})
			}
		}
		if pushed < len(results) {
			g.emit(ConstZero{Types: results[pushed:]})
		}
		g.finishBlock(len(results))
	}
	return results
}

func (g *generator[O]) lift(t graph.Type) {
	switch t := t.(type) {
	case graph.Primitive:
		switch t {
		case graph.Bool:
			g.emit(Coerce{Op: BoolFromI32})
		case graph.S8:
			g.emit(Coerce{Op: S8FromI32})
		case graph.U8:
			g.emit(Coerce{Op: U8FromI32})
		case graph.S16:
			g.emit(Coerce{Op: S16FromI32})
		case graph.U16:
			g.emit(Coerce{Op: U16FromI32})
		case graph.S32:
			g.emit(Coerce{Op: S32FromI32})
		case graph.U32:
			g.emit(Coerce{Op: U32FromI32})
		case graph.S64:
			g.emit(Coerce{Op: S64FromI64})
		case graph.U64:
			g.emit(Coerce{Op: U64FromI64})
		case graph.Char:
			g.emit(Coerce{Op: CharFromI32})
		case graph.F32:
			g.emit(Coerce{Op: Float32FromF32})
		case graph.F64:
			g.emit(Coerce{Op: Float64FromF64})
		case graph.String:
			g.emit(StringLift{})
		}
	case graph.TypeID:
		switch k := g.resolve.Type(t).Kind.(type) {
		case *graph.Alias:
			g.lift(k.Type)
		case *graph.List:
			if g.bindgen.IsListCanonical(k.Type) {
				g.emit(ListCanonLift{Element: k.Type, Type: t})
			} else {
				g.pushBlock()
				g.emit(IterBasePointer{})
				addr := g.pop()
				g.readFromMemory(k.Type, addr, 0)
				g.finishBlock(1)
				g.emit(ListLift{Element: k.Type, Type: t})
			}
		case *graph.Handle:
			g.emit(HandleLift{Handle: k, Name: g.typeName(k.Resource), Type: t})
		case *graph.Record:
			g.liftFields(t, recordTypes(k))
			g.emit(RecordLift{Record: k, Name: g.typeName(t), Type: t})
		case *graph.Tuple:
			g.liftFields(t, k.Types)
			g.emit(TupleLift{Tuple: k, Type: t})
		case *graph.Flags:
			g.emit(FlagsLift{Flags: k, Name: g.typeName(t), Type: t})
		case *graph.Enum:
			g.emit(EnumLift{Enum: k, Name: g.typeName(t), Type: t})
		case *graph.Variant:
			g.liftVariantArms(t, caseTypes(k))
			g.emit(VariantLift{Variant: k, Name: g.typeName(t), Type: t})
		case *graph.Union:
			g.liftVariantArms(t, caseTypes(k))
			g.emit(UnionLift{Union: k, Name: g.typeName(t), Type: t})
		case *graph.Option:
			g.liftVariantArms(t, caseTypes(k))
			g.emit(OptionLift{Payload: k.Type, Type: t})
		case *graph.Result:
			g.liftVariantArms(t, caseTypes(k))
			g.emit(ResultLift{Result: k, Type: t})
		default:
			g.fail("cannot lift %s", g.resolve.TypeString(t))
		}
	}
}

// liftFields lifts each field from its slice of the aggregate's flat values.
func (g *generator[O]) liftFields(t graph.Type, fields []graph.Type) {
	args := g.drain(len(Flatten(g.resolve, t)))
	for _, f := range fields {
		n := len(Flatten(g.resolve, f))
		g.stack = append(g.stack, args[:n]...)
		args = args[n:]
		g.lift(f)
	}
}

func (g *generator[O]) liftVariantArms(t graph.Type, cases []graph.Type) {
	params := Flatten(g.resolve, t)
	// The discriminant stays on the stack for the lift instruction.
	inputs := g.drain(len(params) - 1)
	for _, c := range cases {
		g.pushBlock()
		if c != nil {
			flat := Flatten(g.resolve, c)
			g.stack = append(g.stack, inputs[:len(flat)]...)

			casts := make([]Bitcast, len(flat))
			needed := false
			for j, actual := range flat {
				casts[j] = cast(params[1+j], actual)
				if casts[j] != BitcastNone {
					needed = true
				}
			}
			if needed {
				g.emit(Bitcasts{Casts: casts})
			}
			g.lift(c)
			g.finishBlock(1)
		} else {
			g.finishBlock(0)
		}
	}
}

func (g *generator[O]) writeToMemory(t graph.Type, addr O, offset int32) {
	switch t := t.(type) {
	case graph.Primitive:
		switch t {
		case graph.Bool, graph.U8, graph.S8:
			g.lowerAndEmit(t, addr, Store{Kind: MemI32U8, Offset: offset})
		case graph.U16, graph.S16:
			g.lowerAndEmit(t, addr, Store{Kind: MemI32U16, Offset: offset})
		case graph.U32, graph.S32, graph.Char:
			g.lowerAndEmit(t, addr, Store{Kind: MemI32, Offset: offset})
		case graph.U64, graph.S64:
			g.lowerAndEmit(t, addr, Store{Kind: MemI64, Offset: offset})
		case graph.F32:
			g.lowerAndEmit(t, addr, Store{Kind: MemF32, Offset: offset})
		case graph.F64:
			g.lowerAndEmit(t, addr, Store{Kind: MemF64, Offset: offset})
		case graph.String:
			g.writeListToMemory(t, addr, offset)
		}
	case graph.TypeID:
		switch k := g.resolve.Type(t).Kind.(type) {
		case *graph.Alias:
			g.writeToMemory(k.Type, addr, offset)
		case *graph.List:
			g.writeListToMemory(t, addr, offset)
		case *graph.Handle:
			g.lowerAndEmit(t, addr, Store{Kind: MemI32, Offset: offset})
		case *graph.Record:
			g.emit(RecordLower{Record: k, Name: g.typeName(t), Type: t})
			g.writeFieldsToMemory(recordTypes(k), addr, offset)
		case *graph.Tuple:
			g.emit(TupleLower{Tuple: k, Type: t})
			g.writeFieldsToMemory(k.Types, addr, offset)
		case *graph.Flags:
			g.lower(t)
			repr := k.Repr()
			switch repr.Int {
			case graph.IntU8:
				g.push(addr)
				g.storeIntRepr(offset, graph.IntU8)
			case graph.IntU16:
				g.push(addr)
				g.storeIntRepr(offset, graph.IntU16)
			default:
				for i := repr.Words - 1; i >= 0; i-- {
					g.push(addr)
					g.emit(Store{Kind: MemI32, Offset: offset + int32(i)*4})
				}
			}
		case *graph.Enum:
			g.lower(t)
			g.push(addr)
			g.storeIntRepr(offset, k.Tag())
		case *graph.Variant:
			g.writeVariantArmsToMemory(offset, addr, k.Tag(), caseTypes(k))
			g.emit(VariantLower{Variant: k, Name: g.typeName(t), Type: t})
		case *graph.Union:
			g.writeVariantArmsToMemory(offset, addr, k.Tag(), caseTypes(k))
			g.emit(UnionLower{Union: k, Name: g.typeName(t), Type: t})
		case *graph.Option:
			g.writeVariantArmsToMemory(offset, addr, graph.IntU8, caseTypes(k))
			g.emit(OptionLower{Payload: k.Type, Type: t})
		case *graph.Result:
			g.writeVariantArmsToMemory(offset, addr, graph.IntU8, caseTypes(k))
			g.emit(ResultLower{Result: k, Type: t})
		default:
			g.fail("cannot store %s", g.resolve.TypeString(t))
		}
	}
}

func (g *generator[O]) writeVariantArmsToMemory(offset int32, addr O, tag graph.Int, cases []graph.Type) {
	payloadOffset := offset + int32(g.sizes().PayloadOffset(tag, cases))
	for i, c := range cases {
		g.pushBlock()
		g.emit(VariantPayloadName{})
		payload := g.pop()
		g.emit(I32Const{Val: int32(i)})
		g.push(addr)
		g.storeIntRepr(offset, tag)
		if c != nil {
			g.push(payload)
			g.writeToMemory(c, addr, payloadOffset)
		}
		g.finishBlock(0)
	}
}

// writeListToMemory stores the pointer at offset and the length after it.
func (g *generator[O]) writeListToMemory(t graph.Type, addr O, offset int32) {
	g.lower(t)
	g.push(addr)
	g.emit(Store{Kind: MemI32, Offset: offset + 4})
	g.push(addr)
	g.emit(Store{Kind: MemI32, Offset: offset})
}

func (g *generator[O]) writeFieldsToMemory(types []graph.Type, addr O, offset int32) {
	fields := g.drain(len(types))
	for i, fo := range g.sizes().FieldOffsets(types) {
		g.push(fields[i])
		g.writeToMemory(fo.Type, addr, offset+int32(fo.Offset))
	}
}

func (g *generator[O]) lowerAndEmit(t graph.Type, addr O, inst Instruction) {
	g.lower(t)
	g.push(addr)
	g.emit(inst)
}

func (g *generator[O]) readFromMemory(t graph.Type, addr O, offset int32) {
	switch t := t.(type) {
	case graph.Primitive:
		switch t {
		case graph.Bool, graph.U8:
			g.emitAndLift(t, addr, Load{Kind: MemI32U8, Offset: offset})
		case graph.S8:
			g.emitAndLift(t, addr, Load{Kind: MemI32S8, Offset: offset})
		case graph.U16:
			g.emitAndLift(t, addr, Load{Kind: MemI32U16, Offset: offset})
		case graph.S16:
			g.emitAndLift(t, addr, Load{Kind: MemI32S16, Offset: offset})
		case graph.U32, graph.S32, graph.Char:
			g.emitAndLift(t, addr, Load{Kind: MemI32, Offset: offset})
		case graph.U64, graph.S64:
			g.emitAndLift(t, addr, Load{Kind: MemI64, Offset: offset})
		case graph.F32:
			g.emitAndLift(t, addr, Load{Kind: MemF32, Offset: offset})
		case graph.F64:
			g.emitAndLift(t, addr, Load{Kind: MemF64, Offset: offset})
		case graph.String:
			g.readListFromMemory(t, addr, offset)
		}
	case graph.TypeID:
		switch k := g.resolve.Type(t).Kind.(type) {
		case *graph.Alias:
			g.readFromMemory(k.Type, addr, offset)
		case *graph.List:
			g.readListFromMemory(t, addr, offset)
		case *graph.Handle:
			g.emitAndLift(t, addr, Load{Kind: MemI32, Offset: offset})
		case *graph.Record:
			g.readFieldsFromMemory(recordTypes(k), addr, offset)
			g.emit(RecordLift{Record: k, Name: g.typeName(t), Type: t})
		case *graph.Tuple:
			g.readFieldsFromMemory(k.Types, addr, offset)
			g.emit(TupleLift{Tuple: k, Type: t})
		case *graph.Flags:
			repr := k.Repr()
			switch repr.Int {
			case graph.IntU8:
				g.push(addr)
				g.loadIntRepr(offset, graph.IntU8)
			case graph.IntU16:
				g.push(addr)
				g.loadIntRepr(offset, graph.IntU16)
			default:
				for i := 0; i < repr.Words; i++ {
					g.push(addr)
					g.emit(Load{Kind: MemI32, Offset: offset + int32(i)*4})
				}
			}
			g.lift(t)
		case *graph.Enum:
			g.push(addr)
			g.loadIntRepr(offset, k.Tag())
			g.lift(t)
		case *graph.Variant:
			g.push(addr)
			g.loadIntRepr(offset, k.Tag())
			g.readVariantArmsFromMemory(offset, addr, k.Tag(), caseTypes(k))
			g.emit(VariantLift{Variant: k, Name: g.typeName(t), Type: t})
		case *graph.Union:
			g.push(addr)
			g.loadIntRepr(offset, k.Tag())
			g.readVariantArmsFromMemory(offset, addr, k.Tag(), caseTypes(k))
			g.emit(UnionLift{Union: k, Name: g.typeName(t), Type: t})
		case *graph.Option:
			g.push(addr)
			g.loadIntRepr(offset, graph.IntU8)
			g.readVariantArmsFromMemory(offset, addr, graph.IntU8, caseTypes(k))
			g.emit(OptionLift{Payload: k.Type, Type: t})
		case *graph.Result:
			g.push(addr)
			g.loadIntRepr(offset, graph.IntU8)
			g.readVariantArmsFromMemory(offset, addr, graph.IntU8, caseTypes(k))
			g.emit(ResultLift{Result: k, Type: t})
		default:
			g.fail("cannot load %s", g.resolve.TypeString(t))
		}
	}
}

func (g *generator[O]) readVariantArmsFromMemory(offset int32, addr O, tag graph.Int, cases []graph.Type) {
	payloadOffset := offset + int32(g.sizes().PayloadOffset(tag, cases))
	for _, c := range cases {
		g.pushBlock()
		if c != nil {
			g.readFromMemory(c, addr, payloadOffset)
			g.finishBlock(1)
		} else {
			g.finishBlock(0)
		}
	}
}

func (g *generator[O]) readListFromMemory(t graph.Type, addr O, offset int32) {
	g.push(addr)
	g.emit(Load{Kind: MemI32, Offset: offset})
	g.push(addr)
	g.emit(Load{Kind: MemI32, Offset: offset + 4})
	g.lift(t)
}

func (g *generator[O]) readFieldsFromMemory(types []graph.Type, addr O, offset int32) {
	for _, fo := range g.sizes().FieldOffsets(types) {
		g.readFromMemory(fo.Type, addr, offset+int32(fo.Offset))
	}
}

func (g *generator[O]) emitAndLift(t graph.Type, addr O, inst Instruction) {
	g.push(addr)
	g.emit(inst)
	g.lift(t)
}

func (g *generator[O]) loadIntRepr(offset int32, repr graph.Int) {
	switch repr {
	case graph.IntU64:
		g.emit(Load{Kind: MemI64, Offset: offset})
	case graph.IntU32:
		g.emit(Load{Kind: MemI32, Offset: offset})
	case graph.IntU16:
		g.emit(Load{Kind: MemI32U16, Offset: offset})
	default:
		g.emit(Load{Kind: MemI32U8, Offset: offset})
	}
}

func (g *generator[O]) storeIntRepr(offset int32, repr graph.Int) {
	switch repr {
	case graph.IntU64:
		g.emit(Store{Kind: MemI64, Offset: offset})
	case graph.IntU32:
		g.emit(Store{Kind: MemI32, Offset: offset})
	case graph.IntU16:
		g.emit(Store{Kind: MemI32U16, Offset: offset})
	default:
		g.emit(Store{Kind: MemI32U8, Offset: offset})
	}
}

func (g *generator[O]) deallocate(t graph.Type, addr O, offset int32) {
	if !NeedsPostReturn(g.resolve, t) {
		return
	}
	switch t := t.(type) {
	case graph.Primitive:
		if t == graph.String {
			g.push(addr)
			g.emit(Load{Kind: MemI32, Offset: offset})
			g.push(addr)
			g.emit(Load{Kind: MemI32, Offset: offset + 4})
			g.emit(GuestDeallocateString{})
		}
	case graph.TypeID:
		switch k := g.resolve.Type(t).Kind.(type) {
		case *graph.Alias:
			g.deallocate(k.Type, addr, offset)
		case *graph.List:
			g.pushBlock()
			g.emit(IterBasePointer{})
			elem := g.pop()
			g.deallocate(k.Type, elem, 0)
			g.finishBlock(0)

			g.push(addr)
			g.emit(Load{Kind: MemI32, Offset: offset})
			g.push(addr)
			g.emit(Load{Kind: MemI32, Offset: offset + 4})
			g.emit(GuestDeallocateList{Element: k.Type})
		case *graph.Record:
			g.deallocateFields(recordTypes(k), addr, offset)
		case *graph.Tuple:
			g.deallocateFields(k.Types, addr, offset)
		case *graph.Variant:
			g.deallocateVariant(offset, addr, k.Tag(), caseTypes(k))
			g.emit(GuestDeallocateVariant{Blocks: len(k.Cases)})
		case *graph.Union:
			g.deallocateVariant(offset, addr, k.Tag(), caseTypes(k))
			g.emit(GuestDeallocateVariant{Blocks: len(k.Cases)})
		case *graph.Option:
			g.deallocateVariant(offset, addr, graph.IntU8, caseTypes(k))
			g.emit(GuestDeallocateVariant{Blocks: 2})
		case *graph.Result:
			g.deallocateVariant(offset, addr, graph.IntU8, caseTypes(k))
			g.emit(GuestDeallocateVariant{Blocks: 2})
		}
	}
}

func (g *generator[O]) deallocateVariant(offset int32, addr O, tag graph.Int, cases []graph.Type) {
	payloadOffset := offset + int32(g.sizes().PayloadOffset(tag, cases))
	g.push(addr)
	g.loadIntRepr(offset, tag)
	for _, c := range cases {
		g.pushBlock()
		if c != nil {
			g.deallocate(c, addr, payloadOffset)
		}
		g.finishBlock(0)
	}
}

func (g *generator[O]) deallocateFields(types []graph.Type, addr O, offset int32) {
	for _, fo := range g.sizes().FieldOffsets(types) {
		g.deallocate(fo.Type, addr, offset+int32(fo.Offset))
	}
}
