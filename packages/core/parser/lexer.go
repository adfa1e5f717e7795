package parser

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// WarnFunc receives non-fatal diagnostics.
type WarnFunc func(format string, args ...any)

type Lexer struct {
	input    string
	file     string
	pos      int // byte offset of ch
	readPos  int // byte offset after ch
	ch       rune
	line     int
	column   int
	warnings []*LexicalWarning
	warnFunc WarnFunc
}

const eof = rune(-1)

func NewLexer(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// SetFile names the source for diagnostics.
func (l *Lexer) SetFile(name string) {
	l.file = name
}

// SetWarnFunc installs a hook called for every skipped character.
func (l *Lexer) SetWarnFunc(fn WarnFunc) {
	l.warnFunc = fn
}

func (l *Lexer) Warnings() []*LexicalWarning {
	return l.warnings
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	l.pos = l.readPos
	if l.readPos >= len(l.input) {
		l.ch = eof
		l.column++
		return
	}
	r, width := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.readPos += width
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// NextToken scans the next token. Once the input is exhausted it keeps
// returning TokenEOF.
func (l *Lexer) NextToken() (Token, error) {
	for {
		l.skipWhitespace()
		if l.ch == '/' && l.peekChar() == '/' {
			l.skipLineComment()
			continue
		}

		line, col, start := l.line, l.column, l.pos

		switch {
		case l.ch == eof:
			return Token{Type: TokenEOF, Line: line, Column: col}, nil
		case l.ch == '"':
			return l.readString()
		case isLetter(l.ch):
			ident := l.readIdentifier()
			return Token{Type: LookupKeyword(ident), Text: ident, Value: ident, Line: line, Column: col}, nil
		case isDigit(l.ch):
			return l.readNumber()
		case l.ch == '.':
			l.readChar()
			if l.ch == '.' {
				l.readChar()
				return Token{Type: TokenDotDot, Text: "..", Value: "..", Line: line, Column: col}, nil
			}
			return Token{Type: TokenDot, Text: ".", Value: ".", Line: line, Column: col}, nil
		}

		if tt, ok := symbols[l.ch]; ok {
			l.readChar()
			text := l.input[start:l.pos]
			return Token{Type: tt, Text: text, Value: text, Line: line, Column: col}, nil
		}

		w := &LexicalWarning{Char: l.ch, Line: line, Column: col}
		l.warnings = append(l.warnings, w)
		if l.warnFunc != nil {
			l.warnFunc("%s", w.String())
		}
		l.readChar()
	}
}

func (l *Lexer) skipWhitespace() {
	for l.ch != eof && unicode.IsSpace(l.ch) {
		l.readChar()
	}
}

func (l *Lexer) skipLineComment() {
	for l.ch != eof && l.ch != '\n' {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readNumber() (Token, error) {
	line, col, start := l.line, l.column, l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	text := l.input[start:l.pos]
	n, err := strconv.Atoi(text)
	if err != nil {
		return Token{}, &LexError{
			Kind:    NumberOutOfRange,
			File:    l.file,
			Line:    line,
			Column:  col,
			Literal: text,
			Snippet: snippet(l.input, line, col),
		}
	}
	return Token{Type: TokenNumber, Text: text, Value: text, Int: n, Line: line, Column: col}, nil
}

func (l *Lexer) readString() (Token, error) {
	line, col, start := l.line, l.column, l.pos
	l.readChar()

	var builder strings.Builder
	for l.ch != '"' {
		if l.ch == eof {
			return Token{}, &LexError{
				Kind:    UnterminatedString,
				File:    l.file,
				Line:    line,
				Column:  col,
				Snippet: snippet(l.input, line, col),
			}
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case eof:
				continue
			case 'n':
				builder.WriteByte('\n')
			case 't':
				builder.WriteByte('\t')
			case 'r':
				builder.WriteByte('\r')
			default:
				// \\, \" and unknown escapes all yield the escaped character
				builder.WriteRune(l.ch)
			}
			l.readChar()
			continue
		}
		builder.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar()

	return Token{
		Type:   TokenString,
		Text:   l.input[start:l.pos],
		Value:  builder.String(),
		Line:   line,
		Column: col,
	}, nil
}

func isLetter(ch rune) bool {
	return ch != eof && unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize scans the whole input. The returned slice always ends with a
// single TokenEOF unless a fatal LexError is returned.
func Tokenize(input string) ([]Token, []*LexicalWarning, error) {
	l := NewLexer(input)
	return l.All()
}

// All drains the lexer.
func (l *Lexer) All() ([]Token, []*LexicalWarning, error) {
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, l.warnings, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, l.warnings, nil
		}
	}
}
