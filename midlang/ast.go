package midlang

// Expression is a tagged expression form produced by ParseExpression.
// Offset is the byte offset of the node within the expression text.
type Expression interface {
	Offset() int
	exprNode()
}

// Literal is a number, quoted string or boolean written in the source.
type Literal struct {
	Value  Value
	offset int
}

func (e *Literal) exprNode()   {}
func (e *Literal) Offset() int { return e.offset }

// VariableRef names a variable resolved at evaluation time.
type VariableRef struct {
	Name   string
	offset int
}

func (e *VariableRef) exprNode()   {}
func (e *VariableRef) Offset() int { return e.offset }

type UnaryExpr struct {
	Operator TokenType
	Right    Expression
	offset   int
}

func (e *UnaryExpr) exprNode()   {}
func (e *UnaryExpr) Offset() int { return e.offset }

// BinaryExpr covers the arithmetic and relational operators.
type BinaryExpr struct {
	Left     Expression
	Operator TokenType
	Right    Expression
	offset   int
}

func (e *BinaryExpr) exprNode()   {}
func (e *BinaryExpr) Offset() int { return e.offset }

// InterpolatedExpr is a run of juxtaposed operands such as `"total:" x`.
// Gaps[i] is the source text between Parts[i] and Parts[i+1].
type InterpolatedExpr struct {
	Parts  []Expression
	Gaps   []string
	offset int
}

func (e *InterpolatedExpr) exprNode()   {}
func (e *InterpolatedExpr) Offset() int { return e.offset }
