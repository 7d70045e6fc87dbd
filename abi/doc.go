// Package abi produces Canonical ABI instruction sequences.
//
// A component function is flattened to core value types (Flatten, Signature)
// and its call is described as a sequence of Instructions: coercions, memory
// loads and stores, aggregate lowering and lifting, list handling, calls and
// returns. Call drives that sequence for one function in one direction and
// hands each instruction to a Bindgen, which renders it. PostReturn does the
// same for the teardown of an exported function's results.
//
// The Bindgen sees a stack machine. Each instruction pops the operands its
// Arity declares and pushes as many results. Variant, list and deallocation
// instructions consume the blocks completed just before them with
// PushBlock/FinishBlock.
//
// # Contents
//
//   - flat.go: flattening, joins and bitcasts
//   - signature.go: core signatures and post-return analysis
//   - instruction.go: the instruction set
//   - generator.go: the Bindgen contract and the Call/PostReturn driver
package abi
