package midlang

// TokenType identifies the lexical category of an expression token.
type TokenType string

const (
	tokenIllegal TokenType = "ILLEGAL"
	tokenEOF     TokenType = "EOF"

	tokenIdent  TokenType = "IDENT"
	tokenInt    TokenType = "INT"
	tokenFloat  TokenType = "FLOAT"
	tokenString TokenType = "STRING"

	tokenPlus     TokenType = "+"
	tokenMinus    TokenType = "-"
	tokenAsterisk TokenType = "*"
	tokenSlash    TokenType = "/"
	tokenLT       TokenType = "<"
	tokenGT       TokenType = ">"
	tokenLTE      TokenType = "<="
	tokenGTE      TokenType = ">="
	tokenEQ       TokenType = "=="
	tokenNotEQ    TokenType = "!="
	tokenLParen   TokenType = "("
	tokenRParen   TokenType = ")"

	tokenTrue  TokenType = "TRUE"
	tokenFalse TokenType = "FALSE"
)

// Token captures lexical information for the expression parser. Offset and
// End are byte offsets into the expression text.
type Token struct {
	Type    TokenType
	Literal string
	Offset  int
	End     int
}

var keywords = map[string]TokenType{
	"true":  tokenTrue,
	"false": tokenFalse,
}
