package parser

import (
	"fmt"
	"strconv"
	"strings"
)

type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// ParseError is the first grammar violation found in a source text.
type ParseError struct {
	File     string
	Line     int
	Column   int
	Message  string
	Expected string
	Actual   string
	Snippet  string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return e.File + ":" + strconv.Itoa(e.Line) + ":" + strconv.Itoa(e.Column) + ": " + e.Message
	}
	return "line " + strconv.Itoa(e.Line) + ", column " + strconv.Itoa(e.Column) + ": " + e.Message
}

type LexErrorKind int

const (
	UnterminatedString LexErrorKind = iota
	NumberOutOfRange
)

func (k LexErrorKind) String() string {
	switch k {
	case UnterminatedString:
		return "unterminated string"
	case NumberOutOfRange:
		return "number out of range"
	default:
		return "lexical error"
	}
}

// LexError is a fatal tokenizer failure on a malformed literal.
type LexError struct {
	Kind    LexErrorKind
	File    string
	Line    int
	Column  int
	Literal string
	Snippet string
}

func (e *LexError) Error() string {
	msg := e.Kind.String()
	if e.Kind == NumberOutOfRange {
		msg += ": " + e.Literal
	}
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, msg)
	}
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, msg)
}

// LexicalWarning records a character the tokenizer skipped.
type LexicalWarning struct {
	Char   rune
	Line   int
	Column int
}

func (w *LexicalWarning) String() string {
	return fmt.Sprintf("unknown character %q at line %d, column %d", w.Char, w.Line, w.Column)
}

// snippet returns the source line containing pos with a caret under the column.
func snippet(src string, line, column int) string {
	lines := strings.Split(src, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	text := strings.TrimRight(lines[line-1], "\r")
	pad := column - 1
	if pad < 0 {
		pad = 0
	}
	var b strings.Builder
	b.WriteString(text)
	b.WriteByte('\n')
	for i, r := range []rune(text) {
		if i >= pad {
			break
		}
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteByte('^')
	return b.String()
}
