package gen

import (
	"github.com/wippyai/witgen/abi"
	"github.com/wippyai/witgen/graph"
)

// declareImportResource writes the handle wrapper for a resource the host
// implements. Its methods are emitted with the interface's functions.
func (e *interfaceEmitter) declareImportResource(id graph.TypeID, def *graph.TypeDef) {
	name := exportedName(def.Name)
	drop := "wasmimport_" + name + "Drop"

	cabi := e.cabi()
	docComment(&e.src, def.Docs)
	e.line("type %s struct {\nh *%s.Handle\n}\n", name, cabi)
	e.line("// %sFromHandle wraps a handle received from the host.", name)
	e.line("func %sFromHandle(handle int32, owned bool) %s {\nreturn %s{h: %s.NewHandle(handle, owned)}\n}\n", name, name, name, cabi)
	e.line("// Handle returns the handle for passing as a borrow.")
	e.line("func (self %s) Handle() int32 { return self.h.Borrow() }\n", name)
	e.line("// IntoHandle gives ownership of the handle to the host. The value must not be used afterwards.")
	e.line("func (self %s) IntoHandle() int32 { return self.h.Take() }\n", name)
	e.line("// Drop releases an owned handle. Borrowed and moved handles are left alone.")
	e.line("func (self %s) Drop() {\nif handle, ok := self.h.Release(); ok {\n%s(handle)\n}\n}\n", name, drop)

	e.declareWasmImport(wasmImport{module: e.module, name: "[resource-drop]" + def.Name, ident: drop},
		&abi.WasmSignature{Params: []abi.WasmType{i32}})
}

// declareExportResource writes the contract an exported resource is
// implemented against, its rep table and its destructor.
func (e *interfaceEmitter) declareExportResource(id graph.TypeID, def *graph.TypeDef) {
	name := exportedName(def.Name)
	saved := e.variant
	e.variant = abi.GuestExport
	defer func() { e.variant = saved }()

	methods, statics := e.resourceFunctions(id)

	docComment(&e.src, def.Docs)
	e.line("type %s interface {", name)
	for _, fn := range methods {
		docComment(&e.src, fn.Docs)
		e.line("%s", e.contractMethod(fn))
	}
	e.line("}\n")

	if len(statics) > 0 {
		e.line("// %sStatics constructs %s values and implements its static functions.", name, name)
		e.line("type %sStatics interface {", name)
		for _, fn := range statics {
			docComment(&e.src, fn.Docs)
			e.line("%s", e.contractMethod(fn))
		}
		e.line("}\n")
	}

	e.line("// %sReps holds the live %s representations handed to the host.", name, name)
	e.line("var %sReps %s.RepTable[%s]\n", name, e.cabi(), name)

	e.line("//go:wasmexport %s", e.exportName("[dtor]"+def.Name))
	e.line("func wasmexport_%sDtor(rep int32) {\n%sReps.Drop(uint32(rep))\n}\n", name, name)
}

// resourceFunctions splits the functions of resource id into methods and
// constructor-or-static functions.
func (e *interfaceEmitter) resourceFunctions(id graph.TypeID) (methods, statics []*graph.Function) {
	owner := e.g.resolve.Type(id).Owner
	if owner.Kind != graph.OwnerInterface {
		return nil, nil
	}
	for _, fn := range e.g.resolve.Interface(owner.Interface).Functions {
		if fn.Resource != id || fn.Kind == graph.Freestanding || e.g.opts.skipped(fn.Name) {
			continue
		}
		if fn.Kind == graph.Method {
			methods = append(methods, fn)
		} else {
			statics = append(statics, fn)
		}
	}
	return methods, statics
}

// contractMethod renders fn as an interface method. Constructors return
// the resource itself; the generated thunk wraps it in a new handle.
func (e *interfaceEmitter) contractMethod(fn *graph.Function) string {
	_, params := e.params(fn)
	switch fn.Kind {
	case graph.Constructor:
		return "New(" + params + ") " + e.resourceName(fn)
	case graph.Method, graph.Static:
		return exportedName(fn.ItemName()) + "(" + params + ")" + e.results(fn)
	}
	return exportedName(fn.Name) + "(" + params + ")" + e.results(fn)
}

// declareOwn writes OwnR, the owned handle to an exported resource, and
// the canonical built-ins it is made of.
func (e *interfaceEmitter) declareOwn(id graph.TypeID) {
	def := e.g.resolve.Type(id)
	name := exportedName(def.Name)
	own := "Own" + name
	module := "[export]" + e.module
	newFn := "wasmimport_" + name + "New"
	repFn := "wasmimport_" + name + "Rep"
	dropFn := "wasmimport_" + name + "DropOwn"

	cabi := e.cabi()
	e.line("// %s is an owned handle to a %s exported by this component.", own, name)
	e.line("type %s struct {\nh *%s.Handle\n}\n", own, cabi)
	e.line("// New%s stores rep and returns a handle the host can hold.", own)
	e.line("func New%s(rep %s) %s {\nreturn %sFromHandle(%s(int32(%sReps.Insert(rep))))\n}\n", own, name, own, own, newFn, name)
	e.line("// %sFromHandle wraps a handle received from the host.", own)
	e.line("func %sFromHandle(handle int32) %s {\nreturn %s{h: %s.NewHandle(handle, true)}\n}\n", own, own, own, cabi)
	e.line("func (h %s) Handle() int32 { return h.h.Borrow() }\n", own)
	e.line("// IntoHandle gives ownership of the handle to the host.")
	e.line("func (h %s) IntoHandle() int32 { return h.h.Take() }\n", own)
	e.line("// Rep returns the value the handle refers to.")
	e.line("func (h %s) Rep() %s {\nreturn %sReps.Must(uint32(%s(h.h.Borrow())))\n}\n", own, name, name, repFn)
	e.line("// Drop releases the handle unless it was moved. The host runs the destructor once the last handle is gone.")
	e.line("func (h %s) Drop() {\nif handle, ok := h.h.Release(); ok {\n%s(handle)\n}\n}\n", own, dropFn)

	e.declareWasmImport(wasmImport{module: module, name: "[resource-new]" + def.Name, ident: newFn},
		&abi.WasmSignature{Params: []abi.WasmType{i32}, Results: []abi.WasmType{i32}})
	e.declareWasmImport(wasmImport{module: module, name: "[resource-rep]" + def.Name, ident: repFn},
		&abi.WasmSignature{Params: []abi.WasmType{i32}, Results: []abi.WasmType{i32}})
	e.declareWasmImport(wasmImport{module: module, name: "[resource-drop]" + def.Name, ident: dropFn},
		&abi.WasmSignature{Params: []abi.WasmType{i32}})
}
