package cabi

// Result is result<T, E>. Arms without a payload use struct{}.
type Result[T, E any] struct {
	ok    T
	err   E
	isErr bool
}

// Ok returns a successful result.
func Ok[T, E any](v T) Result[T, E] {
	return Result[T, E]{ok: v}
}

// Err returns a failed result.
func Err[T, E any](e E) Result[T, E] {
	return Result[T, E]{err: e, isErr: true}
}

// IsOk reports whether r succeeded.
func (r Result[T, E]) IsOk() bool { return !r.isErr }

// IsErr reports whether r failed.
func (r Result[T, E]) IsErr() bool { return r.isErr }

// OK returns the success payload, or the zero value on failure.
func (r Result[T, E]) OK() T { return r.ok }

// Err returns the error payload, or the zero value on success.
func (r Result[T, E]) Err() E { return r.err }

// Unwrap returns both payloads and whether r failed.
func (r Result[T, E]) Unwrap() (T, E, bool) { return r.ok, r.err, r.isErr }
