// Package metadata encodes the type information of a world so component
// tooling can rebuild the component type of a core module built from the
// generated bindings.
//
// Describe flattens the part of a resolved graph a world reaches into a
// Descriptor. Encode and Decode convert it to and from a compact,
// versioned binary form; equal inputs always encode to equal bytes.
// Object wraps the encoding in a minimal core wasm module whose custom
// section "component-type:<world>" carries it, next to a producers
// section. Verify loads that module with wazero and checks the section
// decodes.
package metadata
