package gen

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/witgen/abi"
	"github.com/wippyai/witgen/errors"
	"github.com/wippyai/witgen/graph"
)

// Header starts every generated file.
const Header = "// Code generated by witgen. DO NOT EDIT.\n"

// interfaceEmitter writes one generated Go package: an imported or
// exported interface, or the world root.
type interfaceEmitter struct {
	g       *Generator
	variant abi.Variant
	iface   graph.InterfaceID
	isWorld bool
	key     graph.WorldKey
	module  string

	dir  string
	pkg  string
	path string
	file string

	src  strings.Builder
	std  strings.Builder
	wasm strings.Builder

	imports    *importSet
	stdImports *importSet

	declaredWasm map[string]bool
	retSize      uint32
	retAlign     uint32

	// exports collects freestanding functions for the Interface contract.
	exports []*graph.Function
}

func (g *Generator) newEmitter(variant abi.Variant, dir, pkg string) *interfaceEmitter {
	path := g.opts.PackagePath
	if dir != "" {
		path += "/" + dir
	}
	return &interfaceEmitter{
		g:            g,
		variant:      variant,
		dir:          dir,
		pkg:          pkg,
		path:         path,
		imports:      newImportSet(),
		stdImports:   newImportSet(),
		declaredWasm: make(map[string]bool),
	}
}

// name returns the interface's canonical ID, or the world name for the root.
func (e *interfaceEmitter) name() string {
	if e.isWorld {
		return e.g.world().Name
	}
	return e.g.resolve.InterfaceID(e.iface)
}

func (e *interfaceEmitter) line(format string, args ...any) {
	fmt.Fprintf(&e.src, format, args...)
	e.src.WriteByte('\n')
}

// docComment renders docs as a Go comment, or nothing for empty docs.
func docComment(b *strings.Builder, docs string) {
	docs = strings.TrimSpace(docs)
	if docs == "" {
		return
	}
	for _, l := range strings.Split(docs, "\n") {
		l = strings.TrimRight(l, " \t")
		if l == "" {
			b.WriteString("//\n")
			continue
		}
		b.WriteString("// " + l + "\n")
	}
}

// funcIdent is the Go identifier of fn as a package-level function.
func (e *interfaceEmitter) funcIdent(fn *graph.Function) string {
	switch fn.Kind {
	case graph.Constructor:
		return "New" + e.resourceName(fn)
	case graph.Method, graph.Static:
		return e.resourceName(fn) + exportedName(fn.ItemName())
	}
	return exportedName(fn.Name)
}

func (e *interfaceEmitter) resourceName(fn *graph.Function) string {
	return exportedName(e.g.resolve.Type(fn.Resource).Name)
}

// params renders fn's Go parameter names and types, skipping the method
// receiver.
func (e *interfaceEmitter) params(fn *graph.Function) (names []string, list string) {
	var parts []string
	for i, p := range fn.Params {
		name := localName(p.Name)
		if fn.Kind == graph.Method && i == 0 {
			name = "self"
		}
		names = append(names, name)
		if fn.Kind == graph.Method && i == 0 {
			continue
		}
		var typ string
		if e.variant == abi.GuestImport {
			typ = e.paramType(p.Type)
		} else {
			typ = e.typeName(p.Type, modeOwned)
		}
		parts = append(parts, name+" "+typ)
	}
	return names, strings.Join(parts, ", ")
}

// results renders fn's Go result list.
func (e *interfaceEmitter) results(fn *graph.Function) string {
	switch len(fn.Results) {
	case 0:
		return ""
	case 1:
		return " " + e.typeName(fn.Results[0].Type, modeOwned)
	}
	parts := make([]string, len(fn.Results))
	for i, r := range fn.Results {
		parts[i] = e.typeName(r.Type, modeOwned)
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// importFunction emits a Go wrapper that lowers its arguments, calls the
// host import and lifts the results.
func (e *interfaceEmitter) importFunction(fn *graph.Function) error {
	e.variant = abi.GuestImport
	names, params := e.params(fn)
	ident := e.funcIdent(fn)

	in := newInterpreter(e, fn, abi.GuestImport, names)
	in.wasm = wasmImport{module: e.module, name: fn.Name, ident: "wasmimport_" + ident}
	if err := abi.Call[string](e.g.resolve, abi.GuestImport, abi.LowerArgsLiftResults, fn, in); err != nil {
		return functionError(fn, err)
	}

	docComment(&e.src, fn.Docs)
	switch fn.Kind {
	case graph.Method:
		e.line("func (self %s) %s(%s)%s {", e.resourceName(fn), exportedName(fn.ItemName()), params, e.results(fn))
	default:
		e.line("func %s(%s)%s {", ident, params, e.results(fn))
	}
	e.src.WriteString(in.source())
	e.line("}\n")
	Logger().Debug("emitted import", zap.String("interface", e.name()), zap.String("function", fn.Name))
	return nil
}

// exportFunction emits the //go:wasmexport thunk for fn, and its
// post-return function when the results own memory.
func (e *interfaceEmitter) exportFunction(fn *graph.Function) error {
	e.variant = abi.GuestExport
	sig := abi.Signature(e.g.resolve, abi.GuestExport, fn)
	ident := e.funcIdent(fn)
	exportName := e.exportName(fn.Name)

	args := make([]string, len(sig.Params))
	for i := range args {
		args[i] = fmt.Sprintf("arg%d", i)
	}
	in := newInterpreter(e, fn, abi.GuestExport, args)
	in.call = e.exportCall(fn)
	if err := abi.Call[string](e.g.resolve, abi.GuestExport, abi.LiftArgsLowerResults, fn, in); err != nil {
		return functionError(fn, err)
	}

	e.line("//go:wasmexport %s", exportName)
	e.line("func wasmexport_%s(%s)%s {", ident, coreParams(args, sig.Params), coreResults(sig.Results))
	e.src.WriteString(in.source())
	e.line("}\n")

	if abi.GuestExportNeedsPostReturn(e.g.resolve, fn) {
		post := newInterpreter(e, fn, abi.GuestExport, []string{"arg0"})
		if err := abi.PostReturn[string](e.g.resolve, abi.GuestExport, fn, post); err != nil {
			return functionError(fn, err)
		}
		e.line("//go:wasmexport %s", e.g.opts.ExportPrefix+"cabi_post_"+e.exportSymbol(fn.Name))
		e.line("func wasmexport_post_%s(arg0 int32) {", ident)
		e.src.WriteString(post.source())
		e.line("}\n")
	}

	if fn.Kind == graph.Freestanding {
		e.exports = append(e.exports, fn)
	}
	Logger().Debug("emitted export", zap.String("interface", e.name()), zap.String("export", exportName))
	return nil
}

// functionError attaches the function name to a generation failure.
func functionError(fn *graph.Function, err error) error {
	if e, ok := err.(*errors.Error); ok {
		e.Path = append([]string{fn.Name}, e.Path...)
		return e
	}
	return errors.Wrap(errors.PhaseGenerate, errors.KindInternal, err, fn.Name)
}

// exportSymbol is the export name of fn without the configured prefix.
func (e *interfaceEmitter) exportSymbol(fn string) string {
	if e.isWorld {
		return fn
	}
	return e.module + "#" + fn
}

func (e *interfaceEmitter) exportName(fn string) string {
	return e.g.opts.ExportPrefix + e.exportSymbol(fn)
}

// exportCall returns the renderer for the call into the implementation.
func (e *interfaceEmitter) exportCall(fn *graph.Function) func([]string) string {
	return func(ops []string) string {
		switch fn.Kind {
		case graph.Method:
			return ops[0] + "." + exportedName(fn.ItemName()) + "(" + strings.Join(ops[1:], ", ") + ")"
		case graph.Static:
			return e.staticsVar(fn.Resource) + "." + exportedName(fn.ItemName()) + "(" + strings.Join(ops, ", ") + ")"
		case graph.Constructor:
			own, ok := fn.Results[0].Type.(graph.TypeID)
			if ok {
				if err := e.g.registry.RegisterOwn(fn.Resource, own); err != nil {
					panic(err)
				}
			}
			return "NewOwn" + e.resourceName(fn) + "(" + e.staticsVar(fn.Resource) + ".New(" + strings.Join(ops, ", ") + "))"
		}
		return "impl." + exportedName(fn.Name) + "(" + strings.Join(ops, ", ") + ")"
	}
}

func (e *interfaceEmitter) staticsVar(res graph.TypeID) string {
	return localName(e.g.resolve.Type(res).Name) + "Statics"
}

func coreParams(names []string, types []abi.WasmType) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n + " " + wasmGoType(types[i])
	}
	return strings.Join(parts, ", ")
}

func coreResults(types []abi.WasmType) string {
	switch len(types) {
	case 0:
		return ""
	case 1:
		return " " + wasmGoType(types[0])
	}
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = wasmGoType(t)
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// declareWasmImport writes the //go:wasmimport prototype once.
func (e *interfaceEmitter) declareWasmImport(w wasmImport, sig *abi.WasmSignature) {
	if e.declaredWasm[w.ident] {
		return
	}
	e.declaredWasm[w.ident] = true
	params := make([]string, len(sig.Params))
	for i := range params {
		params[i] = fmt.Sprintf("arg%d", i)
	}
	fmt.Fprintf(&e.wasm, "//go:wasmimport %s %s\n", w.module, w.name)
	fmt.Fprintf(&e.wasm, "func %s(%s)%s\n\n", w.ident, coreParams(params, sig.Params), coreResults(sig.Results))
}

// noteReturnArea grows the static export return area to fit size bytes.
func (e *interfaceEmitter) noteReturnArea(size, align uint32) {
	if size > e.retSize {
		e.retSize = size
	}
	if align > e.retAlign {
		e.retAlign = align
	}
}

// render assembles the package's main file.
func (e *interfaceEmitter) render() []byte {
	var b strings.Builder
	b.WriteString(Header + "\n")
	if e.isWorld {
		docComment(&b, e.g.world().Docs)
	} else {
		docComment(&b, e.g.resolve.Interface(e.iface).Docs)
	}
	fmt.Fprintf(&b, "package %s\n\n", e.pkg)
	if e.imports.len() > 0 {
		b.WriteString(e.imports.render() + "\n")
	}
	b.WriteString(e.src.String())
	if e.retSize > 0 {
		fmt.Fprintf(&b, "var retArea [%d]uint64\n\n", (e.retSize+7)/8)
	}
	b.WriteString(e.wasm.String())
	return []byte(b.String())
}

// renderStd assembles the witgen_std companion file, or nil when empty.
func (e *interfaceEmitter) renderStd() []byte {
	if e.std.Len() == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(Header + "\n")
	b.WriteString("//go:build witgen_std\n\n")
	fmt.Fprintf(&b, "package %s\n\n", e.pkg)
	if e.stdImports.len() > 0 {
		b.WriteString(e.stdImports.render() + "\n")
	}
	b.WriteString(e.std.String())
	return []byte(b.String())
}
