package cabi

import "go.bytecodealliance.org/cm"

// Option is option<T>. Generated code tests it with Some() != nil and
// None() and reads the payload through Some().
type Option[T any] = cm.Option[T]

// Some returns an option holding v.
func Some[T any](v T) Option[T] { return cm.Some(v) }

// None returns an empty option.
func None[T any]() Option[T] { return cm.None[T]() }
