package midlang

import (
	"fmt"
	"strings"
)

// evaluate resolves expression text against env. A text that is exactly a
// bound variable name wins over any parse of it, so names such as `x+1`
// bound by `let` stay reachable.
func evaluate(env *Env, text string) (Value, error) {
	trimmed := strings.TrimSpace(text)
	if val, ok := env.Get(trimmed); ok {
		return val, nil
	}
	expr, err := ParseExpression(trimmed)
	if err != nil {
		return NaN(), err
	}
	return evalExpression(env, expr)
}

func evalExpression(env *Env, expr Expression) (Value, error) {
	switch e := expr.(type) {
	case *Literal:
		return e.Value, nil
	case *VariableRef:
		val, ok := env.Get(e.Name)
		if !ok {
			return NaN(), fmt.Errorf("undefined variable %s", e.Name)
		}
		return val, nil
	case *UnaryExpr:
		right, err := evalExpression(env, e.Right)
		if err != nil {
			return NaN(), err
		}
		return negateValue(right)
	case *BinaryExpr:
		left, err := evalExpression(env, e.Left)
		if err != nil {
			return NaN(), err
		}
		right, err := evalExpression(env, e.Right)
		if err != nil {
			return NaN(), err
		}
		return binaryOp(e.Operator, left, right)
	case *InterpolatedExpr:
		return evalInterpolation(env, e)
	default:
		return NaN(), fmt.Errorf("unsupported expression %T", expr)
	}
}

// evalInterpolation concatenates the rendered parts with the source gaps
// between them. A bare name that is not bound is kept as a quoted fragment.
func evalInterpolation(env *Env, e *InterpolatedExpr) (Value, error) {
	var b strings.Builder
	for i, part := range e.Parts {
		if i > 0 {
			b.WriteString(e.Gaps[i-1])
		}
		if ref, ok := part.(*VariableRef); ok {
			if _, bound := env.Get(ref.Name); !bound {
				b.WriteString(`"` + ref.Name + `"`)
				continue
			}
		}
		val, err := evalExpression(env, part)
		if err != nil {
			return NaN(), err
		}
		b.WriteString(val.String())
	}
	return NewString(b.String()), nil
}
