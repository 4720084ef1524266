package midlang

import "math"

func NewUndefined() Value      { return Value{kind: KindUndefined} }
func NewBool(b bool) Value     { return Value{kind: KindBool, data: b} }
func NewInt(i int64) Value     { return Value{kind: KindInt, data: i} }
func NewFloat(f float64) Value { return Value{kind: KindFloat, data: f} }
func NewString(s string) Value { return Value{kind: KindString, data: s} }

// NaN is the sentinel produced by an expression that could not be evaluated.
func NaN() Value { return NewFloat(math.NaN()) }
