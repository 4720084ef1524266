package midlang

import (
	"strconv"
	"strings"
)

type (
	prefixParseFn func() Expression
	infixParseFn  func(Expression) Expression
)

type parser struct {
	l *lexer

	curToken  Token
	peekToken Token

	errors []error

	prefixFns map[TokenType]prefixParseFn
	infixFns  map[TokenType]infixParseFn
}

func newParser(input string) *parser {
	l := newLexer(input)
	p := &parser{l: l}

	p.prefixFns = map[TokenType]prefixParseFn{
		tokenIdent:  p.parseVariableRef,
		tokenInt:    p.parseIntegerLiteral,
		tokenFloat:  p.parseFloatLiteral,
		tokenString: p.parseStringLiteral,
		tokenTrue:   p.parseBooleanLiteral,
		tokenFalse:  p.parseBooleanLiteral,
		tokenLParen: p.parseGroupedExpression,
		tokenMinus:  p.parsePrefixExpression,
	}
	p.infixFns = make(map[TokenType]infixParseFn, len(precedences))
	for tt := range precedences {
		p.infixFns[tt] = p.parseInfixExpression
	}

	p.nextToken()
	p.nextToken()

	return p
}

func (p *parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *parser) expectPeek(tt TokenType) bool {
	if p.peekToken.Type == tt {
		p.nextToken()
		return true
	}
	p.errorExpected(p.peekToken, strconv.Quote(string(tt)))
	return false
}

// ParseExpression parses expression text into its tagged form. Juxtaposed
// operands produce an *InterpolatedExpr, but only when the text contains a
// double quote; otherwise juxtaposition is a syntax error. Anything else is a
// single literal, variable reference or operator tree.
func ParseExpression(input string) (Expression, error) {
	p := newParser(input)
	expr := p.parseInterpolation()
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	return expr, nil
}

func (p *parser) parseInterpolation() Expression {
	if p.curToken.Type == tokenEOF {
		p.addParseError(0, "empty expression")
		return nil
	}
	start := p.curToken.Offset
	first := p.parseExpression(lowestPrec)
	if first == nil {
		return nil
	}

	parts := []Expression{first}
	var gaps []string
	for p.peekToken.Type != tokenEOF {
		if !startsOperand(p.peekToken.Type) || !strings.ContainsRune(p.l.input, '"') {
			p.errorUnexpected(p.peekToken)
			return nil
		}
		prevEnd := p.curToken.End
		p.nextToken()
		gaps = append(gaps, p.l.input[prevEnd:p.curToken.Offset])
		part := p.parseExpression(lowestPrec)
		if part == nil {
			return nil
		}
		parts = append(parts, part)
	}

	if len(parts) == 1 {
		return first
	}
	return &InterpolatedExpr{Parts: parts, Gaps: gaps, offset: start}
}

func (p *parser) parseExpression(precedence int) Expression {
	prefix := p.prefixFns[p.curToken.Type]
	if prefix == nil {
		p.errorUnexpected(p.curToken)
		return nil
	}

	left := prefix()
	if left == nil {
		return nil
	}

	for p.peekToken.Type != tokenEOF && precedence < p.peekPrecedence() {
		infix := p.infixFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
		if left == nil {
			return nil
		}
	}

	return left
}

func (p *parser) parseVariableRef() Expression {
	return &VariableRef{Name: p.curToken.Literal, offset: p.curToken.Offset}
}

func (p *parser) parseIntegerLiteral() Expression {
	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err == nil {
		return &Literal{Value: NewInt(value), offset: p.curToken.Offset}
	}
	// Out of int64 range: keep the magnitude as a float.
	f, ferr := strconv.ParseFloat(p.curToken.Literal, 64)
	if ferr != nil {
		p.addParseError(p.curToken.Offset, "invalid integer literal")
		return nil
	}
	return &Literal{Value: NewFloat(f), offset: p.curToken.Offset}
}

func (p *parser) parseFloatLiteral() Expression {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addParseError(p.curToken.Offset, "invalid float literal")
		return nil
	}
	return &Literal{Value: NewFloat(value), offset: p.curToken.Offset}
}

func (p *parser) parseStringLiteral() Expression {
	return &Literal{Value: NewString(p.curToken.Literal), offset: p.curToken.Offset}
}

func (p *parser) parseBooleanLiteral() Expression {
	return &Literal{Value: NewBool(p.curToken.Type == tokenTrue), offset: p.curToken.Offset}
}

func (p *parser) parseGroupedExpression() Expression {
	p.nextToken()
	expr := p.parseExpression(lowestPrec)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(tokenRParen) {
		return nil
	}
	return expr
}

func (p *parser) parsePrefixExpression() Expression {
	offset := p.curToken.Offset
	operator := p.curToken.Type
	p.nextToken()
	right := p.parseExpression(precPrefix)
	if right == nil {
		return nil
	}
	return &UnaryExpr{Operator: operator, Right: right, offset: offset}
}

func (p *parser) parseInfixExpression(left Expression) Expression {
	offset := p.curToken.Offset
	operator := p.curToken.Type
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	return &BinaryExpr{Left: left, Operator: operator, Right: right, offset: offset}
}
