package midlang

type ValueKind int

const (
	KindUndefined ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

// Value is the result of evaluating an expression. Values are plain data and
// are copied on assignment.
type Value struct {
	kind ValueKind
	data any
}
