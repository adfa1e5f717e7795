package parser

import "fmt"

type TokenType int

const (
	TokenEOF TokenType = iota
	TokenString
	TokenNumber
	TokenIdentifier

	// Keywords
	TokenConfig
	TokenBaseURL
	TokenHeader
	TokenLet
	TokenTest
	TokenGet
	TokenPost
	TokenPut
	TokenDelete
	TokenExpect
	TokenStatus
	TokenBody
	TokenContains

	// Symbols
	TokenLeftBrace
	TokenRightBrace
	TokenLeftParen
	TokenRightParen
	TokenSemicolon
	TokenEquals
	TokenDot
	TokenDotDot
)

// keywords maps reserved words to their token types. Lookup is case-sensitive.
var keywords = map[string]TokenType{
	"config":   TokenConfig,
	"base_url": TokenBaseURL,
	"header":   TokenHeader,
	"let":      TokenLet,
	"test":     TokenTest,
	"GET":      TokenGet,
	"POST":     TokenPost,
	"PUT":      TokenPut,
	"DELETE":   TokenDelete,
	"expect":   TokenExpect,
	"status":   TokenStatus,
	"body":     TokenBody,
	"contains": TokenContains,
}

var symbols = map[rune]TokenType{
	'{': TokenLeftBrace,
	'}': TokenRightBrace,
	'(': TokenLeftParen,
	')': TokenRightParen,
	';': TokenSemicolon,
	'=': TokenEquals,
}

var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenString:     "STRING",
	TokenNumber:     "NUMBER",
	TokenIdentifier: "IDENTIFIER",
	TokenConfig:     "'config'",
	TokenBaseURL:    "'base_url'",
	TokenHeader:     "'header'",
	TokenLet:        "'let'",
	TokenTest:       "'test'",
	TokenGet:        "'GET'",
	TokenPost:       "'POST'",
	TokenPut:        "'PUT'",
	TokenDelete:     "'DELETE'",
	TokenExpect:     "'expect'",
	TokenStatus:     "'status'",
	TokenBody:       "'body'",
	TokenContains:   "'contains'",
	TokenLeftBrace:  "'{'",
	TokenRightBrace: "'}'",
	TokenLeftParen:  "'('",
	TokenRightParen: "')'",
	TokenSemicolon:  "';'",
	TokenEquals:     "'='",
	TokenDot:        "'.'",
	TokenDotDot:     "'..'",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// IsKeyword reports whether t is one of the reserved words.
func (t TokenType) IsKeyword() bool {
	return t >= TokenConfig && t <= TokenContains
}

// IsMethod reports whether t names an HTTP method.
func (t TokenType) IsMethod() bool {
	switch t {
	case TokenGet, TokenPost, TokenPut, TokenDelete:
		return true
	}
	return false
}

// LookupKeyword returns the keyword token type for ident, or TokenIdentifier.
func LookupKeyword(ident string) TokenType {
	if tt, ok := keywords[ident]; ok {
		return tt
	}
	return TokenIdentifier
}

// Token is a single lexeme. Text is the raw source slice; Value is the decoded
// content (string literals are unescaped, everything else equals Text).
type Token struct {
	Type   TokenType
	Text   string
	Value  string
	Int    int
	Line   int
	Column int
}

// Describe renders the token for diagnostics.
func (t Token) Describe() string {
	switch t.Type {
	case TokenEOF:
		return "end of input"
	case TokenString:
		return fmt.Sprintf("string %q", t.Value)
	case TokenNumber:
		return "number " + t.Text
	case TokenIdentifier:
		return "identifier '" + t.Text + "'"
	}
	return t.Type.String()
}

func (t Token) Pos() Position {
	return Position{Line: t.Line, Column: t.Column}
}
