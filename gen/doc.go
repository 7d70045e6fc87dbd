// Package gen renders Go bindings for a world.
//
// Generate walks a world in a fixed order and writes one Go package per
// imported interface, one per exported interface below exports/, and a root
// package for world-level items:
//
//	files, err := gen.Generate(r, world, gen.Options{
//	    PackagePath: "example.com/app/bindings",
//	    Stubs:       true,
//	})
//	if err != nil {
//	    return err
//	}
//	return files.WriteTo("bindings")
//
// Import wrappers lower their Go arguments, call a //go:wasmimport
// prototype and lift the results. Borrowed argument memory is pinned for
// the call and the return area is heap allocated, since the host holds
// raw addresses across code that may grow the stack. Export thunks are //go:wasmexport
// functions that lift core arguments, call the bound implementation and
// lower its results into a package-level return area, with a cabi_post_
// function that frees what the host has copied out.
//
// Each function body is produced by an interpreter that implements
// abi.Bindgen over Go source expressions. Blocks become nested statement
// lists, allocations made inside them go on a cleanup list freed at
// return, and lifted discriminants are checked unless Validation is
// Unchecked.
//
// Exported interfaces are bound to implementations through Options: a
// "path.Type" or bare "Type" per world, interface or resource. With Stubs
// set, missing implementations get panicking stub types instead of
// failing the run.
//
// The root package also carries the world's encoded type metadata, and
// the metadata object is emitted next to it as ComponentTypeFile(world).
// Go cannot write custom sections, so that object is what
// wasm-tools component embed links into the final component.
package gen
