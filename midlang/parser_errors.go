package midlang

import (
	"fmt"
	"strings"
)

type parseError struct {
	offset int
	msg    string
}

func (e *parseError) Error() string {
	return fmt.Sprintf("parse error at column %d: %s", e.offset+1, e.msg)
}

// Column returns the 1-based column of the error within the expression.
func (e *parseError) Column() int { return e.offset + 1 }

func (p *parser) errorExpected(tok Token, expected string) {
	p.addParseError(tok.Offset, fmt.Sprintf("expected %s, got %s", expected, tokenLabel(tok)))
}

func (p *parser) errorUnexpected(tok Token) {
	p.addParseError(tok.Offset, fmt.Sprintf("unexpected %s", tokenLabel(tok)))
}

func (p *parser) addParseError(offset int, msg string) {
	p.errors = append(p.errors, &parseError{offset: offset, msg: msg})
}

func tokenLabel(tok Token) string {
	switch tok.Type {
	case tokenIllegal:
		if tok.Literal == "unterminated string" {
			return tok.Literal
		}
		return fmt.Sprintf("character %q", tok.Literal)
	case tokenEOF:
		return "end of expression"
	case tokenIdent:
		return fmt.Sprintf("identifier %s", tok.Literal)
	case tokenInt, tokenFloat:
		return fmt.Sprintf("number %s", tok.Literal)
	case tokenString:
		return "string"
	case tokenTrue, tokenFalse:
		return fmt.Sprintf("'%s'", strings.ToLower(string(tok.Type)))
	default:
		return fmt.Sprintf("%q", string(tok.Type))
	}
}
