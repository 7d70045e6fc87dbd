package gen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/witgen/abi"
	"github.com/wippyai/witgen/errors"
	"github.com/wippyai/witgen/graph"
	"github.com/wippyai/witgen/resource"
)

// cleanup is an allocation freed when the function returns.
type cleanup struct {
	ptr    string
	layout string
}

// frame is the output of the innermost open block.
type frame struct {
	body     strings.Builder
	cleanups []cleanup
}

// block is a finished frame waiting for the instruction that consumes it.
type block struct {
	body  string
	exprs []string
}

// interpreter renders one function's instruction sequence as Go source.
// It implements abi.Bindgen[string]; operands are Go expressions.
type interpreter struct {
	e       *interfaceEmitter
	fn      *graph.Function
	variant abi.Variant
	params  []string

	// wasm names the //go:wasmimport prototype CallWasm calls.
	wasm wasmImport
	// call renders CallInterface for the operands.
	call func(operands []string) string

	frames []*frame
	blocks []block
	tmp    int

	needsCleanupList bool
	// pinned is set when Go memory is passed to the host by pointer. The
	// function then declares a runtime.Pinner released on return.
	pinned bool
}

// wasmImport is a core function imported with //go:wasmimport.
type wasmImport struct {
	module string
	name   string
	ident  string
}

func newInterpreter(e *interfaceEmitter, fn *graph.Function, variant abi.Variant, params []string) *interpreter {
	return &interpreter{
		e:       e,
		fn:      fn,
		variant: variant,
		params:  params,
		frames:  []*frame{{}},
	}
}

// source returns the rendered function body.
func (in *interpreter) source() string {
	body := in.frames[0].body.String()
	if in.needsCleanupList {
		body = "var cleanupList []" + in.e.cabi() + ".Cleanup\n" + body
	}
	if in.pinned {
		body = "var pinner " + in.e.imports.add("runtime", "runtime") + ".Pinner\n" + body
	}
	return body
}

func (in *interpreter) checked() bool {
	return in.e.g.opts.Validation == Checked
}

func (in *interpreter) top() *frame {
	return in.frames[len(in.frames)-1]
}

func (in *interpreter) line(format string, args ...any) {
	fmt.Fprintf(&in.top().body, format, args...)
	in.top().body.WriteByte('\n')
}

func (in *interpreter) temp(prefix string) string {
	name := prefix + strconv.Itoa(in.tmp)
	in.tmp++
	return name
}

// bind assigns expr to a fresh temporary and returns its name.
func (in *interpreter) bind(prefix, expr string) string {
	name := in.temp(prefix)
	in.line("%s := %s", name, expr)
	return name
}

func (in *interpreter) takeBlocks(n int) []block {
	if n > len(in.blocks) {
		panic(errors.Internal("%s: need %d blocks, have %d", in.fn.Name, n, len(in.blocks)))
	}
	out := in.blocks[len(in.blocks)-n:]
	in.blocks = in.blocks[:len(in.blocks)-n]
	return out
}

func (in *interpreter) PushBlock() {
	in.frames = append(in.frames, &frame{})
}

func (in *interpreter) FinishBlock(operands []string) {
	f := in.top()
	in.frames = in.frames[:len(in.frames)-1]
	body := f.body.String()
	if len(f.cleanups) > 0 {
		// Allocations inside a block are not reachable from the return
		// statement, so they go on the runtime list.
		in.needsCleanupList = true
		var b strings.Builder
		b.WriteString(body)
		for _, c := range f.cleanups {
			fmt.Fprintf(&b, "cleanupList = append(cleanupList, %s.Cleanup{Ptr: %s, Layout: %s})\n", in.e.cabi(), c.ptr, c.layout)
		}
		body = b.String()
	}
	in.blocks = append(in.blocks, block{body: body, exprs: operands})
}

func (in *interpreter) Sizes() *graph.SizeAlign {
	return in.e.g.sizes
}

func (in *interpreter) IsListCanonical(element graph.Type) bool {
	return in.e.g.resolve.AllBitsValid(element) &&
		!in.e.g.types.containsBorrowedShape(element, in.e.g.opts.Ownership)
}

func (in *interpreter) ReturnPointer(size, align uint32) string {
	cabi := in.e.cabi()
	if in.variant == abi.GuestExport {
		in.e.noteReturnArea(size, align)
		return in.bind("ptr", cabi+".AddrOf(&retArea)")
	}
	// The area lives on the heap so its address survives stack growth
	// while the host writes results into it.
	layout := layoutLit(cabi, strconv.Itoa(int(size)), align)
	ptr := in.bind("ptr", cabi+".Alloc("+layout+")")
	f := in.top()
	f.cleanups = append(f.cleanups, cleanup{ptr: ptr, layout: layout})
	return ptr
}

func (in *interpreter) Emit(inst abi.Instruction, ops []string) []string {
	cabi := in.e.cabi()
	switch inst := inst.(type) {
	case abi.GetArg:
		return []string{in.params[inst.Nth]}
	case abi.I32Const:
		return []string{strconv.Itoa(int(inst.Val))}
	case abi.ConstZero:
		out := make([]string, len(inst.Types))
		for i := range out {
			out[i] = "0"
		}
		return out
	case abi.Bitcasts:
		out := make([]string, len(ops))
		for i, op := range ops {
			out[i] = in.bitcast(inst.Casts[i], op)
		}
		return out

	case abi.Coerce:
		return []string{in.coerce(inst.Op, ops[0])}

	case abi.Load:
		return []string{in.bind("l", fmt.Sprintf("%s.%s(%s, %d)", cabi, loadFunc(inst.Kind), ops[0], inst.Offset))}
	case abi.Store:
		in.line("%s.%s(%s, %d, %s)", cabi, storeFunc(inst.Kind), ops[1], inst.Offset, ops[0])
		return nil

	case abi.ListCanonLower:
		return in.lowerCanonical(ops[0], inst.Realloc, false)
	case abi.StringLower:
		return in.lowerCanonical(ops[0], inst.Realloc, !in.e.g.opts.RawStrings)
	case abi.ListLower:
		return in.listLower(inst, ops[0])
	case abi.ListCanonLift:
		elem := in.e.typeName(inst.Element, modeOwned)
		return []string{fmt.Sprintf("%s.LiftSlice[%s](%s, %s)", cabi, elem, ops[0], ops[1])}
	case abi.StringLift:
		switch {
		case in.e.g.opts.RawStrings:
			return []string{fmt.Sprintf("%s.LiftSlice[byte](%s, %s)", cabi, ops[0], ops[1])}
		case in.checked():
			return []string{fmt.Sprintf("%s.LiftStringChecked(%s, %s)", cabi, ops[0], ops[1])}
		}
		return []string{fmt.Sprintf("%s.LiftString(%s, %s)", cabi, ops[0], ops[1])}
	case abi.ListLift:
		return in.listLift(inst, ops[0], ops[1])
	case abi.IterElem:
		return []string{"e"}
	case abi.IterBasePointer:
		return []string{"base"}

	case abi.RecordLower:
		out := make([]string, len(inst.Record.Fields))
		for i, f := range inst.Record.Fields {
			out[i] = ops[0] + "." + exportedName(f.Name)
		}
		return out
	case abi.RecordLift:
		parts := make([]string, len(inst.Record.Fields))
		for i, f := range inst.Record.Fields {
			parts[i] = exportedName(f.Name) + ": " + ops[i]
		}
		return []string{in.e.typeName(inst.Type, modeOwned) + "{" + strings.Join(parts, ", ") + "}"}
	case abi.TupleLower:
		out := make([]string, len(inst.Tuple.Types))
		for i := range out {
			out[i] = ops[0] + ".F" + strconv.Itoa(i)
		}
		return out
	case abi.TupleLift:
		if len(ops) == 0 {
			return []string{"struct{}{}"}
		}
		parts := make([]string, len(ops))
		for i, op := range ops {
			parts[i] = "F" + strconv.Itoa(i) + ": " + op
		}
		return []string{in.e.typeName(inst.Type, modeOwned) + "{" + strings.Join(parts, ", ") + "}"}

	case abi.FlagsLower:
		return in.flagsLower(inst.Flags, ops[0])
	case abi.FlagsLift:
		return []string{in.flagsLift(inst, ops)}

	case abi.EnumLower:
		return []string{"int32(" + ops[0] + ")"}
	case abi.EnumLift:
		name := in.e.typeName(inst.Type, modeOwned)
		if !in.checked() {
			return []string{name + "(" + ops[0] + ")"}
		}
		v := in.bind("enum", ops[0])
		in.line("if uint32(%s) >= %d {\npanic(\"invalid enum discriminant\")\n}", v, len(inst.Enum.Cases))
		return []string{name + "(" + v + ")"}

	case abi.HandleLower:
		if inst.Handle.Borrow {
			return []string{ops[0] + ".Handle()"}
		}
		return []string{ops[0] + ".IntoHandle()"}
	case abi.HandleLift:
		return []string{in.handleLift(inst, ops[0])}

	case abi.VariantPayloadName:
		return []string{"e"}
	case abi.VariantLower:
		arms := make([]arm, len(inst.Variant.Cases))
		for i, c := range inst.Variant.Cases {
			arms[i] = arm{payload: c.Type != nil, access: ops[0] + "." + caseAccessor(c.Name) + "()"}
		}
		return in.switchLower(ops[0]+".Tag()", arms, inst.Results)
	case abi.UnionLower:
		arms := make([]arm, len(inst.Union.Cases))
		for i := range inst.Union.Cases {
			arms[i] = arm{payload: true, access: ops[0] + "." + unionCase(i) + "()"}
		}
		return in.switchLower(ops[0]+".Tag()", arms, inst.Results)
	case abi.OptionLower:
		blocks := in.takeBlocks(2)
		return in.ifLower(ops[0]+".None()",
			arm{}, blocks[0],
			arm{payload: true, access: "*" + ops[0] + ".Some()"}, blocks[1], inst.Results)
	case abi.ResultLower:
		blocks := in.takeBlocks(2)
		return in.ifLower(ops[0]+".IsErr()",
			arm{payload: inst.Result.Err != nil, access: ops[0] + ".Err()"}, blocks[1],
			arm{payload: inst.Result.OK != nil, access: ops[0] + ".OK()"}, blocks[0], inst.Results)

	case abi.VariantLift:
		name := in.e.typeName(inst.Type, modeOwned)
		ctors := make([]string, len(inst.Variant.Cases))
		for i, c := range inst.Variant.Cases {
			ctors[i] = in.e.qualify(in.e.g.resolve.Type(inst.Type).Owner, exportedName(inst.Name)+exportedName(c.Name), false)
		}
		return []string{in.switchLift(ops[0], "variant", name, ctors)}
	case abi.UnionLift:
		name := in.e.typeName(inst.Type, modeOwned)
		ctors := make([]string, len(inst.Union.Cases))
		for i := range inst.Union.Cases {
			ctors[i] = in.e.qualify(in.e.g.resolve.Type(inst.Type).Owner, exportedName(inst.Name)+unionCase(i), false)
		}
		return []string{in.switchLift(ops[0], "variant", name, ctors)}
	case abi.OptionLift:
		name := in.e.typeName(inst.Type, modeOwned)
		payload := in.e.typeName(inst.Payload, modeOwned)
		return []string{in.switchLift(ops[0], "option", name, []string{
			cabi + ".None[" + payload + "]",
			cabi + ".Some[" + payload + "]",
		})}
	case abi.ResultLift:
		name := in.e.typeName(inst.Type, modeOwned)
		targs := "[" + in.e.typeName(inst.Result.OK, modeOwned) + ", " + in.e.typeName(inst.Result.Err, modeOwned) + "]"
		return []string{in.switchLift(ops[0], "result", name, []string{
			cabi + ".Ok" + targs,
			cabi + ".Err" + targs,
		})}

	case abi.CallWasm:
		in.e.declareWasmImport(in.wasm, inst.Sig)
		call := in.wasm.ident + "(" + strings.Join(ops, ", ") + ")"
		if len(inst.Sig.Results) == 0 {
			in.line("%s", call)
			return nil
		}
		return []string{in.bind("ret", call)}
	case abi.CallInterface:
		call := in.call(ops)
		switch n := len(inst.Func.Results); n {
		case 0:
			in.line("%s", call)
			return nil
		case 1:
			return []string{in.bind("result", call)}
		default:
			names := make([]string, n)
			for i := range names {
				names[i] = in.temp("result")
			}
			in.line("%s := %s", strings.Join(names, ", "), call)
			return names
		}
	case abi.Return:
		in.ret(ops)
		return nil

	case abi.Malloc:
		return []string{in.bind("ptr", fmt.Sprintf("%s.Alloc(%s)", cabi, layoutLit(cabi, strconv.Itoa(int(inst.Size)), inst.Align)))}
	case abi.GuestDeallocate:
		in.line("%s.Free(%s, %s)", cabi, ops[0], layoutLit(cabi, strconv.Itoa(int(inst.Size)), inst.Align))
		return nil
	case abi.GuestDeallocateString:
		in.line("%s.Free(%s, %s)", cabi, ops[0], layoutLit(cabi, "uint32("+ops[1]+")", 1))
		return nil
	case abi.GuestDeallocateList:
		in.deallocateList(inst.Element, ops[0], ops[1])
		return nil
	case abi.GuestDeallocateVariant:
		blocks := in.takeBlocks(inst.Blocks)
		var b strings.Builder
		for i, blk := range blocks {
			if blk.body == "" {
				continue
			}
			fmt.Fprintf(&b, "case %d:\n%s", i, blk.body)
		}
		if b.Len() == 0 {
			in.line("_ = %s", ops[0])
			return nil
		}
		in.line("switch %s {\n%s}", ops[0], b.String())
		return nil
	}
	panic(errors.Internal("%s: unhandled instruction %T", in.fn.Name, inst))
}

func (in *interpreter) bitcast(c abi.Bitcast, op string) string {
	cabi := in.e.cabi()
	switch c {
	case abi.BitcastNone:
		return op
	case abi.BitcastI32ToI64:
		return cabi + ".I32ToI64(" + op + ")"
	case abi.BitcastF32ToI32:
		return cabi + ".F32ToI32(" + op + ")"
	case abi.BitcastF64ToI64:
		return cabi + ".F64ToI64(" + op + ")"
	case abi.BitcastI64ToI32:
		return cabi + ".I64ToI32(" + op + ")"
	case abi.BitcastI32ToF32:
		return cabi + ".I32ToF32(" + op + ")"
	case abi.BitcastI64ToF64:
		return cabi + ".I64ToF64(" + op + ")"
	case abi.BitcastF32ToI64:
		return cabi + ".F32ToI64(" + op + ")"
	case abi.BitcastI64ToF32:
		return cabi + ".I64ToF32(" + op + ")"
	}
	panic(errors.Internal("unknown bitcast %d", c))
}

func (in *interpreter) coerce(op abi.CoerceOp, v string) string {
	switch op {
	case abi.I32FromChar, abi.I32FromU32, abi.I32FromS32, abi.I32FromU16,
		abi.I32FromS16, abi.I32FromU8, abi.I32FromS8:
		return "int32(" + v + ")"
	case abi.I64FromU64, abi.I64FromS64:
		return "int64(" + v + ")"
	case abi.F32FromFloat32:
		return "float32(" + v + ")"
	case abi.F64FromFloat64:
		return "float64(" + v + ")"
	case abi.I32FromBool:
		return in.e.cabi() + ".BoolToI32(" + v + ")"
	case abi.S8FromI32:
		return "int8(" + v + ")"
	case abi.U8FromI32:
		return "uint8(" + v + ")"
	case abi.S16FromI32:
		return "int16(" + v + ")"
	case abi.U16FromI32:
		return "uint16(" + v + ")"
	case abi.S32FromI32:
		return "int32(" + v + ")"
	case abi.U32FromI32:
		return "uint32(" + v + ")"
	case abi.S64FromI64:
		return "int64(" + v + ")"
	case abi.U64FromI64:
		return "uint64(" + v + ")"
	case abi.Float32FromF32:
		return "float32(" + v + ")"
	case abi.Float64FromF64:
		return "float64(" + v + ")"
	case abi.CharFromI32:
		if in.checked() {
			return in.e.cabi() + ".CharFromI32(" + v + ")"
		}
		return "rune(" + v + ")"
	case abi.BoolFromI32:
		if in.checked() {
			return in.e.cabi() + ".BoolFromI32(" + v + ")"
		}
		return "(" + v + " != 0)"
	}
	panic(errors.Internal("unknown coercion %d", op))
}

func (in *interpreter) lowerCanonical(v, realloc string, isString bool) []string {
	cabi := in.e.cabi()
	borrowFunc, pinFunc := "BorrowSlice", "PinSlice"
	if isString {
		borrowFunc, pinFunc = "BorrowString", "PinString"
	}
	length := "int32(len(" + v + "))"
	if realloc == "" {
		in.pinned = true
		return []string{cabi + "." + borrowFunc + "(&pinner, " + v + ")", length}
	}
	ptr := in.bind("ptr", cabi+"."+pinFunc+"("+v+")")
	return []string{ptr, length}
}

func (in *interpreter) listLower(inst abi.ListLower, v string) []string {
	cabi := in.e.cabi()
	blk := in.takeBlocks(1)[0]
	size := in.e.g.sizes.Size(inst.Element)
	align := in.e.g.sizes.Align(inst.Element)

	vec := in.bind("vec", v)
	length := in.bind("len", "int32(len("+vec+"))")
	layout := layoutLit(cabi, fmt.Sprintf("uint32(%s) * %d", length, size), align)
	result := in.bind("result", cabi+".Alloc("+layout+")")

	in.line("%s {", rangeClause(vec, usesIdent(blk.body, "base"), usesIdent(blk.body, "e")))
	if usesIdent(blk.body, "base") {
		in.line("base := %s + int32(i)*%d", result, size)
	}
	in.top().body.WriteString(blk.body)
	in.line("}")

	if inst.Realloc == "" {
		f := in.top()
		f.cleanups = append(f.cleanups, cleanup{ptr: result, layout: layout})
	}
	return []string{result, length}
}

func rangeClause(vec string, index, elem bool) string {
	switch {
	case elem:
		return "for i, e := range " + vec
	case index:
		return "for i := range " + vec
	}
	return "for range " + vec
}

func (in *interpreter) listLift(inst abi.ListLift, ptr, length string) []string {
	cabi := in.e.cabi()
	blk := in.takeBlocks(1)[0]
	size := in.e.g.sizes.Size(inst.Element)
	align := in.e.g.sizes.Align(inst.Element)
	elem := in.e.typeName(inst.Element, modeOwned)

	base := in.bind("base", ptr)
	n := in.bind("len", length)
	result := in.bind("result", "make([]"+elem+", "+n+")")
	if usesIdent(blk.body+strings.Join(blk.exprs, " "), "base") {
		in.line("for i := range %s {", result)
		in.line("base := %s + int32(i)*%d", base, size)
	} else {
		in.line("for i := range %s {", result)
	}
	in.top().body.WriteString(blk.body)
	in.line("%s[i] = %s", result, blk.exprs[0])
	in.line("}")
	in.line("%s.Free(%s, %s)", cabi, base, layoutLit(cabi, fmt.Sprintf("uint32(%s) * %d", n, size), align))
	return []string{result}
}

func (in *interpreter) deallocateList(element graph.Type, ptr, length string) {
	cabi := in.e.cabi()
	blk := in.takeBlocks(1)[0]
	size := in.e.g.sizes.Size(element)
	align := in.e.g.sizes.Align(element)

	base := in.bind("base", ptr)
	n := in.bind("len", length)
	if blk.body != "" {
		in.line("for i := range %s {", n)
		in.line("base := %s + int32(i)*%d", base, size)
		in.top().body.WriteString(blk.body)
		in.line("}")
	}
	in.line("%s.Free(%s, %s)", cabi, base, layoutLit(cabi, fmt.Sprintf("uint32(%s) * %d", n, size), align))
}

func (in *interpreter) flagsLower(f *graph.Flags, v string) []string {
	repr := f.Repr()
	n := len(f.Flags)
	switch {
	case repr.Words == 0:
		return nil
	case n <= 32:
		return []string{"int32(" + v + ")"}
	case n <= 64:
		return []string{"int32(uint32(" + v + "))", "int32(uint32(" + v + " >> 32))"}
	}
	out := make([]string, repr.Words)
	for i := range out {
		out[i] = fmt.Sprintf("int32(%s[%d])", v, i)
	}
	return out
}

func (in *interpreter) flagsLift(inst abi.FlagsLift, ops []string) string {
	name := in.e.typeName(inst.Type, modeOwned)
	n := len(inst.Flags.Flags)
	switch {
	case len(ops) == 0:
		return name + "(0)"
	case n <= 32:
		return name + "(" + ops[0] + ")"
	case n <= 64:
		return fmt.Sprintf("%s(uint64(uint32(%s)) | uint64(uint32(%s))<<32)", name, ops[0], ops[1])
	}
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = "uint32(" + op + ")"
	}
	return name + "{" + strings.Join(parts, ", ") + "}"
}

func (in *interpreter) handleLift(inst abi.HandleLift, v string) string {
	res := inst.Handle.Resource
	info, err := in.e.g.registry.Lookup(res)
	if err != nil {
		panic(err)
	}
	owner := in.e.g.resolve.Type(res).Owner
	name := exportedName(inst.Name)
	if info.Direction == resource.Export {
		if inst.Handle.Borrow {
			return in.e.qualify(owner, name+"Reps", true) + ".Must(uint32(" + v + "))"
		}
		if err := in.e.g.registry.RegisterOwn(res, inst.Type); err != nil {
			panic(err)
		}
		return in.e.qualify(owner, "Own"+name+"FromHandle", true) + "(" + v + ")"
	}
	return in.e.qualify(owner, name+"FromHandle", false) + "(" + v + ", " + strconv.FormatBool(!inst.Handle.Borrow) + ")"
}

// arm describes how a lowering arm binds its payload.
type arm struct {
	payload bool
	access  string
}

// armBody renders one lowering arm: payload binding, block body and
// assignment of the joined results.
func armBody(a arm, blk block, results []string) string {
	var b strings.Builder
	used := blk.body + strings.Join(blk.exprs, " ")
	if a.payload && usesIdent(used, "e") {
		b.WriteString("e := " + a.access + "\n")
	}
	b.WriteString(blk.body)
	for i, r := range results {
		b.WriteString(r + " = " + blk.exprs[i] + "\n")
	}
	return b.String()
}

func (in *interpreter) declareResults(results []abi.WasmType) []string {
	names := make([]string, len(results))
	if len(results) == 0 {
		return names
	}
	base := in.temp("variant")
	for i, t := range results {
		names[i] = base + "_" + strconv.Itoa(i)
		in.line("var %s %s", names[i], wasmGoType(t))
	}
	return names
}

func (in *interpreter) switchLower(tag string, arms []arm, results []abi.WasmType) []string {
	blocks := in.takeBlocks(len(arms))
	names := in.declareResults(results)
	var b strings.Builder
	for i, a := range arms {
		fmt.Fprintf(&b, "case %d:\n%s", i, armBody(a, blocks[i], names))
	}
	in.line("switch %s {\n%s}", tag, b.String())
	return names
}

func (in *interpreter) ifLower(cond string, then arm, thenBlk block, els arm, elsBlk block, results []abi.WasmType) []string {
	names := in.declareResults(results)
	thenSrc := armBody(then, thenBlk, names)
	elseSrc := armBody(els, elsBlk, names)
	switch {
	case thenSrc == "" && elseSrc == "":
	case elseSrc == "":
		in.line("if %s {\n%s}", cond, thenSrc)
	case thenSrc == "":
		in.line("if !%s {\n%s}", cond, elseSrc)
	default:
		in.line("if %s {\n%s} else {\n%s}", cond, thenSrc, elseSrc)
	}
	return names
}

// switchLift renders a discriminant switch that builds a typ value with
// one constructor per block.
func (in *interpreter) switchLift(disc, prefix, typ string, ctors []string) string {
	blocks := in.takeBlocks(len(ctors))
	v := in.temp(prefix)
	var b strings.Builder
	for i, blk := range blocks {
		label := "case " + strconv.Itoa(i) + ":"
		if !in.checked() && i == len(blocks)-1 {
			label = "default:"
		}
		b.WriteString(label + "\n")
		b.WriteString(blk.body)
		payload := ""
		if len(blk.exprs) > 0 {
			payload = blk.exprs[0]
		} else if strings.HasSuffix(ctors[i], "]") && !strings.Contains(ctors[i], ".None[") {
			payload = "struct{}{}"
		}
		fmt.Fprintf(&b, "%s = %s(%s)\n", v, ctors[i], payload)
	}
	if in.checked() {
		fmt.Fprintf(&b, "default:\npanic(\"invalid %s discriminant\")\n", prefix)
	}
	in.line("var %s %s", v, typ)
	in.line("switch %s {\n%s}", disc, b.String())
	return v
}

func (in *interpreter) ret(ops []string) {
	cabi := in.e.cabi()
	for _, c := range in.top().cleanups {
		in.line("%s.Free(%s, %s)", cabi, c.ptr, c.layout)
	}
	if in.needsCleanupList {
		in.line("%s.FreeAll(cleanupList)", cabi)
	}
	if in.pinned {
		in.line("pinner.Unpin()")
	}
	if len(ops) > 0 {
		in.line("return %s", strings.Join(ops, ", "))
	}
}

func layoutLit(cabi, size string, align uint32) string {
	return fmt.Sprintf("%s.Layout{Size: %s, Align: %d}", cabi, size, align)
}

func caseAccessor(name string) string {
	n := exportedName(name)
	if n == "Tag" {
		return "Tag_"
	}
	return n
}

func unionCase(i int) string {
	return "F" + strconv.Itoa(i)
}

func loadFunc(k abi.MemKind) string {
	switch k {
	case abi.MemI32U8:
		return "LoadU8"
	case abi.MemI32S8:
		return "LoadS8"
	case abi.MemI32U16:
		return "LoadU16"
	case abi.MemI32S16:
		return "LoadS16"
	case abi.MemI64:
		return "LoadI64"
	case abi.MemF32:
		return "LoadF32"
	case abi.MemF64:
		return "LoadF64"
	}
	return "LoadI32"
}

func storeFunc(k abi.MemKind) string {
	switch k {
	case abi.MemI32U8, abi.MemI32S8:
		return "StoreU8"
	case abi.MemI32U16, abi.MemI32S16:
		return "StoreU16"
	case abi.MemI64:
		return "StoreI64"
	case abi.MemF32:
		return "StoreF32"
	case abi.MemF64:
		return "StoreF64"
	}
	return "StoreI32"
}

const i32 = api.ValueTypeI32

func wasmGoType(t api.ValueType) string {
	switch t {
	case api.ValueTypeI64:
		return "int64"
	case api.ValueTypeF32:
		return "float32"
	case api.ValueTypeF64:
		return "float64"
	}
	return "int32"
}
