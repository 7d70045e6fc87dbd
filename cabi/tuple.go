package cabi

import "go.bytecodealliance.org/cm"

// MaxTupleArity is the largest tuple with a Go type in this package. It
// matches cm.MaxTuple.
const MaxTupleArity = 16

// Tuple1 is tuple<T0>, which cm has no type for.
type Tuple1[T0 any] struct {
	F0 T0
}

// Tuple2 is tuple<T0, T1>. It and the wider tuples are cm's host-layout
// tuples, with fields F0 through F15.
type Tuple2[T0, T1 any] = cm.Tuple[T0, T1]

type Tuple3[T0, T1, T2 any] = cm.Tuple3[T0, T1, T2]

type Tuple4[T0, T1, T2, T3 any] = cm.Tuple4[T0, T1, T2, T3]

type Tuple5[T0, T1, T2, T3, T4 any] = cm.Tuple5[T0, T1, T2, T3, T4]

type Tuple6[T0, T1, T2, T3, T4, T5 any] = cm.Tuple6[T0, T1, T2, T3, T4, T5]

type Tuple7[T0, T1, T2, T3, T4, T5, T6 any] = cm.Tuple7[T0, T1, T2, T3, T4, T5, T6]

type Tuple8[T0, T1, T2, T3, T4, T5, T6, T7 any] = cm.Tuple8[T0, T1, T2, T3, T4, T5, T6, T7]

type Tuple9[T0, T1, T2, T3, T4, T5, T6, T7, T8 any] = cm.Tuple9[T0, T1, T2, T3, T4, T5, T6, T7, T8]

type Tuple10[T0, T1, T2, T3, T4, T5, T6, T7, T8, T9 any] = cm.Tuple10[T0, T1, T2, T3, T4, T5, T6, T7, T8, T9]

type Tuple11[T0, T1, T2, T3, T4, T5, T6, T7, T8, T9, T10 any] = cm.Tuple11[T0, T1, T2, T3, T4, T5, T6, T7, T8, T9, T10]

type Tuple12[T0, T1, T2, T3, T4, T5, T6, T7, T8, T9, T10, T11 any] = cm.Tuple12[T0, T1, T2, T3, T4, T5, T6, T7, T8, T9, T10, T11]

type Tuple13[T0, T1, T2, T3, T4, T5, T6, T7, T8, T9, T10, T11, T12 any] = cm.Tuple13[T0, T1, T2, T3, T4, T5, T6, T7, T8, T9, T10, T11, T12]

type Tuple14[T0, T1, T2, T3, T4, T5, T6, T7, T8, T9, T10, T11, T12, T13 any] = cm.Tuple14[T0, T1, T2, T3, T4, T5, T6, T7, T8, T9, T10, T11, T12, T13]

type Tuple15[T0, T1, T2, T3, T4, T5, T6, T7, T8, T9, T10, T11, T12, T13, T14 any] = cm.Tuple15[T0, T1, T2, T3, T4, T5, T6, T7, T8, T9, T10, T11, T12, T13, T14]

type Tuple16[T0, T1, T2, T3, T4, T5, T6, T7, T8, T9, T10, T11, T12, T13, T14, T15 any] = cm.Tuple16[T0, T1, T2, T3, T4, T5, T6, T7, T8, T9, T10, T11, T12, T13, T14, T15]
