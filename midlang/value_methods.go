package midlang

import (
	"fmt"
	"math"
	"strconv"
)

func (k ValueKind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

// IsNumber reports whether the value is an int or a float.
func (v Value) IsNumber() bool { return v.kind == KindInt || v.kind == KindFloat }

// IsNaN reports whether the value is the not-a-number sentinel.
func (v Value) IsNaN() bool {
	return v.kind == KindFloat && math.IsNaN(v.data.(float64))
}

func (v Value) Bool() bool {
	if v.kind != KindBool {
		return false
	}
	return v.data.(bool)
}

func (v Value) Int() int64 {
	switch v.kind {
	case KindInt:
		return v.data.(int64)
	case KindFloat:
		return int64(v.data.(float64))
	default:
		return 0
	}
}

func (v Value) Float() float64 {
	switch v.kind {
	case KindInt:
		return float64(v.data.(int64))
	case KindFloat:
		return v.data.(float64)
	default:
		return 0
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.data.(string)
	case KindUndefined:
		return "undefined"
	case KindBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.data.(int64), 10)
	case KindFloat:
		return formatFloat(v.data.(float64))
	default:
		return fmt.Sprintf("<%v>", v.kind)
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (v Value) Truthy() bool {
	switch v.kind {
	case KindUndefined:
		return false
	case KindBool:
		return v.Bool()
	case KindInt:
		return v.data.(int64) != 0
	case KindFloat:
		f := v.data.(float64)
		return f != 0 && !math.IsNaN(f)
	case KindString:
		return v.data.(string) != ""
	default:
		return false
	}
}

// Equal compares values of the same kind; numbers compare across int and float.
func (v Value) Equal(other Value) bool {
	if v.IsNumber() && other.IsNumber() {
		if v.kind == KindInt && other.kind == KindInt {
			return v.Int() == other.Int()
		}
		return v.Float() == other.Float()
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindUndefined:
		return true
	case KindBool:
		return v.Bool() == other.Bool()
	case KindString:
		return v.String() == other.String()
	default:
		return false
	}
}
