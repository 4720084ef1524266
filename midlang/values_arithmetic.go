package midlang

import (
	"errors"
	"fmt"
	"math"
)

// Int results that leave the int64 range are promoted to Float.

func addValues(left, right Value) (Value, error) {
	switch {
	case left.Kind() == KindInt && right.Kind() == KindInt:
		a, b := left.Int(), right.Int()
		sum := a + b
		if (a^sum)&(b^sum) < 0 {
			return NewFloat(float64(a) + float64(b)), nil
		}
		return NewInt(sum), nil
	case left.IsNumber() && right.IsNumber():
		return NewFloat(left.Float() + right.Float()), nil
	case left.Kind() == KindString || right.Kind() == KindString:
		return NewString(left.String() + right.String()), nil
	default:
		return NaN(), fmt.Errorf("unsupported addition operands %s and %s", left.Kind(), right.Kind())
	}
}

func subtractValues(left, right Value) (Value, error) {
	switch {
	case left.Kind() == KindInt && right.Kind() == KindInt:
		a, b := left.Int(), right.Int()
		diff := a - b
		if (a^b)&(a^diff) < 0 {
			return NewFloat(float64(a) - float64(b)), nil
		}
		return NewInt(diff), nil
	case left.IsNumber() && right.IsNumber():
		return NewFloat(left.Float() - right.Float()), nil
	default:
		return NaN(), fmt.Errorf("unsupported subtraction operands %s and %s", left.Kind(), right.Kind())
	}
}

func multiplyValues(left, right Value) (Value, error) {
	switch {
	case left.Kind() == KindInt && right.Kind() == KindInt:
		a, b := left.Int(), right.Int()
		product := a * b
		if a != 0 && (product/a != b || (a == -1 && b == math.MinInt64)) {
			return NewFloat(float64(a) * float64(b)), nil
		}
		return NewInt(product), nil
	case left.IsNumber() && right.IsNumber():
		return NewFloat(left.Float() * right.Float()), nil
	default:
		return NaN(), fmt.Errorf("unsupported multiplication operands %s and %s", left.Kind(), right.Kind())
	}
}

func divideValues(left, right Value) (Value, error) {
	if !left.IsNumber() || !right.IsNumber() {
		return NaN(), fmt.Errorf("unsupported division operands %s and %s", left.Kind(), right.Kind())
	}
	if right.Float() == 0 {
		return NaN(), errors.New("division by zero")
	}
	return NewFloat(left.Float() / right.Float()), nil
}

func negateValue(right Value) (Value, error) {
	switch right.Kind() {
	case KindInt:
		if right.Int() == math.MinInt64 {
			return NewFloat(-float64(right.Int())), nil
		}
		return NewInt(-right.Int()), nil
	case KindFloat:
		return NewFloat(-right.Float()), nil
	default:
		return NaN(), fmt.Errorf("unsupported unary - operand %s", right.Kind())
	}
}

func compareValues(left, right Value, cmp func(int) bool) (Value, error) {
	switch {
	case left.Kind() == KindInt && right.Kind() == KindInt:
		return NewBool(cmp(compareOrdered(left.Int(), right.Int()))), nil
	case left.IsNumber() && right.IsNumber():
		if left.IsNaN() || right.IsNaN() {
			return NewBool(false), nil
		}
		return NewBool(cmp(compareOrdered(left.Float(), right.Float()))), nil
	case left.Kind() == KindString && right.Kind() == KindString:
		return NewBool(cmp(compareOrdered(left.String(), right.String()))), nil
	default:
		return NaN(), fmt.Errorf("unsupported comparison operands %s and %s", left.Kind(), right.Kind())
	}
}

func compareOrdered[T int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func binaryOp(operator TokenType, left, right Value) (Value, error) {
	switch operator {
	case tokenPlus:
		return addValues(left, right)
	case tokenMinus:
		return subtractValues(left, right)
	case tokenAsterisk:
		return multiplyValues(left, right)
	case tokenSlash:
		return divideValues(left, right)
	case tokenEQ:
		return NewBool(left.Equal(right)), nil
	case tokenNotEQ:
		return NewBool(!left.Equal(right)), nil
	case tokenLT:
		return compareValues(left, right, func(c int) bool { return c < 0 })
	case tokenLTE:
		return compareValues(left, right, func(c int) bool { return c <= 0 })
	case tokenGT:
		return compareValues(left, right, func(c int) bool { return c > 0 })
	case tokenGTE:
		return compareValues(left, right, func(c int) bool { return c >= 0 })
	default:
		return NaN(), fmt.Errorf("unsupported operator %s", operator)
	}
}
