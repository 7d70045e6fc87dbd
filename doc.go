// Package witgen generates Go guest bindings for WebAssembly components.
//
// Given a resolved interface graph and a world, witgen writes the
// Canonical ABI glue a Go component needs: wrappers that call host imports
// through //go:wasmimport and thunks that expose the component's exports
// through //go:wasmexport, together with the Go types, resource handles
// and capability contracts they use.
//
// # Architecture Overview
//
//	witgen/
//	├── cmd/witgen/   CLI: flags, config, manifest loading and an interactive preview
//	├── config/       Generation options loaded with viper
//	├── manifest/     YAML world manifests resolved into a graph
//	├── graph/        Resolved interface graph, sizes and alignments, wit adapter
//	├── abi/          Flattening, signatures and lower/lift instruction sequences
//	├── resource/     Resource direction registry
//	├── gen/          Instruction interpreter, interface emitters and module assembly
//	├── metadata/     World type descriptor and its core wasm carrier object
//	├── cabi/         Runtime support imported by generated code
//	└── errors/       Structured error types
//
// # Quick Start
//
// Generate bindings from a manifest:
//
//	witgen -wit app.yaml -pkg example.com/app/bindings -out bindings -stubs
//
// Or from Go:
//
//	m, err := manifest.Load("app.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r, err := m.Resolve()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	world, _ := r.FindWorld("app")
//	files, err := gen.Generate(r, world, gen.Options{
//	    PackagePath: "example.com/app/bindings",
//	    InterfaceExports: map[string]string{
//	        "demo:app/store": "example.com/app/impl.Store",
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	files.WriteTo("bindings")
//
// # Ownership and Validation
//
// Options.Ownership controls how import parameters are passed: by value,
// by pointer for struct-shaped types, or by pointer with separate
// parameter and result declarations for types used both ways.
// Options.Validation controls whether lifted discriminants, bools, chars
// and strings are checked. Checked code panics on invalid values coming
// across the boundary.
//
// # Resources
//
// Resources implemented by the host become handle wrappers with a Drop
// method. Resources the component exports become Go interfaces whose
// values live in a cabi.RepTable; the host holds reps into that table and
// the generated destructor export removes them.
package witgen
