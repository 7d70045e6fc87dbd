// Package cabi is the runtime support imported by generated bindings.
//
// It provides the Go shapes of WIT's generic types, the RepTable arena that
// maps exported resource reps to guest values, shared handle ownership for
// resource wrappers, and the conversion helpers the generated lift and
// lower code calls. Option and Tuple2 through Tuple16 are the host-layout
// types of go.bytecodealliance.org/cm; Result and Tuple1 are declared here.
//
// Built for wasm it also provides linear-memory access: Load and Store
// helpers, Alloc and Free for guest allocations, pinning for Go memory
// handed to the host, and the cabi_realloc export used by the host to place
// lists and strings into guest memory. Allocations stay reachable until
// freed, so the host may hold their addresses across calls.
package cabi
