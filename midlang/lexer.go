package midlang

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// eof marks the end of input; a literal NUL in the source is an ordinary
// (illegal) character.
const eof rune = -1

type lexer struct {
	input string

	// offset is the byte offset just past ch; start is where ch begins.
	offset int
	start  int
	width  int

	ch rune
}

func newLexer(input string) *lexer {
	l := &lexer{input: input}
	l.readRune()
	return l
}

func (l *lexer) readRune() {
	l.start = l.offset
	if l.offset >= len(l.input) {
		l.width = 0
		l.ch = eof
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.offset:])
	l.width = w
	l.offset += w
	l.ch = r
}

func (l *lexer) peekRune() rune {
	if l.offset >= len(l.input) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.offset:])
	return r
}

func (l *lexer) NextToken() Token {
	l.skipWhitespace()

	begin := l.start
	var tok Token

	switch l.ch {
	case eof:
		tok = Token{Type: tokenEOF}
	case '+':
		tok = l.single(tokenPlus)
	case '-':
		tok = l.single(tokenMinus)
	case '*':
		tok = l.single(tokenAsterisk)
	case '/':
		tok = l.single(tokenSlash)
	case '(':
		tok = l.single(tokenLParen)
	case ')':
		tok = l.single(tokenRParen)
	case '<':
		tok = l.withEquals(tokenLT, tokenLTE)
	case '>':
		tok = l.withEquals(tokenGT, tokenGTE)
	case '=':
		if l.peekRune() == '=' {
			l.readRune()
			l.readRune()
			tok = Token{Type: tokenEQ, Literal: "=="}
		} else {
			tok = l.single(tokenIllegal)
		}
	case '!':
		if l.peekRune() == '=' {
			l.readRune()
			l.readRune()
			tok = Token{Type: tokenNotEQ, Literal: "!="}
		} else {
			tok = l.single(tokenIllegal)
		}
	case '"':
		tok = l.readString()
	default:
		switch {
		case isDigit(l.ch):
			tok = l.readNumber()
		case isIdentifierStart(l.ch):
			literal := l.readWhile(isIdentifierRune)
			tokType := tokenIdent
			if kw, ok := keywords[literal]; ok {
				tokType = kw
			}
			tok = Token{Type: tokType, Literal: literal}
		default:
			tok = l.single(tokenIllegal)
		}
	}

	tok.Offset = begin
	tok.End = l.start
	return tok
}

func (l *lexer) single(tt TokenType) Token {
	tok := Token{Type: tt, Literal: string(l.ch)}
	l.readRune()
	return tok
}

func (l *lexer) withEquals(plain, withEq TokenType) Token {
	first := l.ch
	if l.peekRune() == '=' {
		l.readRune()
		l.readRune()
		return Token{Type: withEq, Literal: string(first) + "="}
	}
	l.readRune()
	return Token{Type: plain, Literal: string(first)}
}

func (l *lexer) readWhile(pred func(rune) bool) string {
	begin := l.start
	for l.ch != eof && pred(l.ch) {
		l.readRune()
	}
	return l.input[begin:l.start]
}

// readNumber consumes digits with an optional fraction and exponent. A
// fraction or exponent makes the literal a float.
func (l *lexer) readNumber() Token {
	begin := l.start
	tokType := tokenInt
	l.readWhile(isDigit)
	if l.ch == '.' && isDigit(l.peekRune()) {
		l.readRune()
		l.readWhile(isDigit)
		tokType = tokenFloat
	}
	if (l.ch == 'e' || l.ch == 'E') && l.exponentFollows() {
		l.readRune()
		if l.ch == '+' || l.ch == '-' {
			l.readRune()
		}
		l.readWhile(isDigit)
		tokType = tokenFloat
	}
	return Token{Type: tokType, Literal: l.input[begin:l.start]}
}

// exponentFollows reports whether the text after the current 'e' is a valid
// exponent: digits, optionally signed.
func (l *lexer) exponentFollows() bool {
	rest := l.input[l.offset:]
	if rest != "" && (rest[0] == '+' || rest[0] == '-') {
		rest = rest[1:]
	}
	return rest != "" && isDigit(rune(rest[0]))
}

// readString consumes a double-quoted literal. Backslash escapes \" \\ \n and
// \t are honoured; an unterminated literal yields an illegal token.
func (l *lexer) readString() Token {
	l.readRune()
	var b strings.Builder
	for {
		switch l.ch {
		case eof:
			return Token{Type: tokenIllegal, Literal: "unterminated string"}
		case '"':
			l.readRune()
			return Token{Type: tokenString, Literal: b.String()}
		case '\\':
			l.readRune()
			switch l.ch {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case eof:
				return Token{Type: tokenIllegal, Literal: "unterminated string"}
			default:
				b.WriteRune(l.ch)
			}
		default:
			b.WriteRune(l.ch)
		}
		l.readRune()
	}
}

func (l *lexer) skipWhitespace() {
	for l.ch != eof && unicode.IsSpace(l.ch) {
		l.readRune()
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentifierStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentifierRune(r rune) bool {
	return isIdentifierStart(r) || unicode.IsDigit(r)
}
