package midlang

const (
	lowestPrec = iota
	precEquality
	precComparison
	precSum
	precProduct
	precPrefix
)

var precedences = map[TokenType]int{
	tokenEQ:       precEquality,
	tokenNotEQ:    precEquality,
	tokenLT:       precComparison,
	tokenLTE:      precComparison,
	tokenGT:       precComparison,
	tokenGTE:      precComparison,
	tokenPlus:     precSum,
	tokenMinus:    precSum,
	tokenSlash:    precProduct,
	tokenAsterisk: precProduct,
}

func (p *parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return lowestPrec
}

func (p *parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return lowestPrec
}

// startsOperand reports whether a token can open a new interpolation part.
func startsOperand(tt TokenType) bool {
	switch tt {
	case tokenIdent, tokenInt, tokenFloat, tokenString, tokenTrue, tokenFalse, tokenLParen:
		return true
	default:
		return false
	}
}
