package parser

import (
	"fmt"
	"os"
)

type Parser struct {
	source   string
	file     string
	tokens   []Token
	pos      int
	curToken Token
	warnings []*LexicalWarning
	warnFunc WarnFunc
}

func NewParser(input string) *Parser {
	return &Parser{source: input}
}

func ParseFile(path string) (*CompilationUnit, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(content), path)
}

func Parse(input, filename string) (*CompilationUnit, error) {
	p := NewParser(input)
	p.SetFile(filename)
	return p.ParseUnit()
}

func (p *Parser) SetFile(name string) {
	p.file = name
}

// SetWarnFunc forwards lexical warnings as they are found.
func (p *Parser) SetWarnFunc(fn WarnFunc) {
	p.warnFunc = fn
}

// Warnings returns the lexical warnings collected by the last ParseUnit call.
func (p *Parser) Warnings() []*LexicalWarning {
	return p.warnings
}

// ParseUnit tokenizes the whole source and parses it into a CompilationUnit.
// Parsing stops at the first error; no partial unit is returned.
func (p *Parser) ParseUnit() (*CompilationUnit, error) {
	lexer := NewLexer(p.source)
	lexer.SetFile(p.file)
	lexer.SetWarnFunc(p.warnFunc)

	tokens, warnings, err := lexer.All()
	p.warnings = warnings
	if err != nil {
		return nil, err
	}
	p.tokens = tokens
	p.pos = 0
	p.curToken = p.tokens[0]

	return p.parseUnit()
}

func (p *Parser) nextToken() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.curToken = p.tokens[p.pos]
}

func (p *Parser) errorAt(tok Token, expected, format string, args ...any) *ParseError {
	return &ParseError{
		File:     p.file,
		Line:     tok.Line,
		Column:   tok.Column,
		Message:  fmt.Sprintf(format, args...),
		Expected: expected,
		Actual:   tok.Describe(),
		Snippet:  snippet(p.source, tok.Line, tok.Column),
	}
}

func (p *Parser) unexpected(expected string) *ParseError {
	return p.errorAt(p.curToken, expected, "expected %s, got %s", expected, p.curToken.Describe())
}

// expect consumes the current token if it has type tt.
func (p *Parser) expect(tt TokenType, context string) (Token, error) {
	if p.curToken.Type != tt {
		expected := tt.String()
		if context != "" {
			expected += " " + context
		}
		return Token{}, p.unexpected(expected)
	}
	tok := p.curToken
	p.nextToken()
	return tok, nil
}

func (p *Parser) parseUnit() (*CompilationUnit, error) {
	unit := &CompilationUnit{
		Path:      p.file,
		Variables: NewOrderedMap[*Variable](),
	}

	if p.curToken.Type == TokenConfig {
		cfg, err := p.parseConfig()
		if err != nil {
			return nil, err
		}
		unit.Config = cfg
	}

	for p.curToken.Type == TokenLet {
		if err := p.parseLet(unit); err != nil {
			return nil, err
		}
	}

	for p.curToken.Type == TokenTest {
		tc, err := p.parseTest()
		if err != nil {
			return nil, err
		}
		unit.TestCases = append(unit.TestCases, tc)
	}

	switch p.curToken.Type {
	case TokenEOF:
		return unit, nil
	case TokenConfig:
		return nil, p.errorAt(p.curToken, "'let', 'test' or end of input",
			"config block must appear before any let or test")
	case TokenLet:
		return nil, p.errorAt(p.curToken, "'test' or end of input",
			"let statements must precede the first test block")
	}
	if len(unit.TestCases) == 0 {
		return nil, p.unexpected("'config', 'let', 'test' or end of input")
	}
	return nil, p.unexpected("'test' or end of input")
}

func (p *Parser) parseConfig() (*ConfigBlock, error) {
	cfg := &ConfigBlock{
		DefaultHeaders: NewOrderedMap[string](),
		Line:           p.curToken.Line,
	}
	p.nextToken()

	if _, err := p.expect(TokenLeftBrace, "after 'config'"); err != nil {
		return nil, err
	}

	for p.curToken.Type != TokenRightBrace {
		switch p.curToken.Type {
		case TokenBaseURL:
			p.nextToken()
			if _, err := p.expect(TokenEquals, "after 'base_url'"); err != nil {
				return nil, err
			}
			tok, err := p.expect(TokenString, "(base URL)")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenSemicolon, "after base_url value"); err != nil {
				return nil, err
			}
			value := tok.Value
			cfg.BaseURL = &value
		case TokenHeader:
			name, value, err := p.parseHeaderStmt()
			if err != nil {
				return nil, err
			}
			cfg.DefaultHeaders.Set(name, value)
		default:
			return nil, p.unexpected("'base_url', 'header' or '}'")
		}
	}
	p.nextToken()

	return cfg, nil
}

// parseHeaderStmt parses `header STRING = STRING ;`.
func (p *Parser) parseHeaderStmt() (string, string, error) {
	p.nextToken()
	name, err := p.expect(TokenString, "(header name)")
	if err != nil {
		return "", "", err
	}
	if _, err := p.expect(TokenEquals, "after header name"); err != nil {
		return "", "", err
	}
	value, err := p.expect(TokenString, "(header value)")
	if err != nil {
		return "", "", err
	}
	if _, err := p.expect(TokenSemicolon, "after header value"); err != nil {
		return "", "", err
	}
	return name.Value, value.Value, nil
}

func (p *Parser) parseLet(unit *CompilationUnit) error {
	line := p.curToken.Line
	p.nextToken()

	name, err := p.expect(TokenIdentifier, "(variable name)")
	if err != nil {
		return err
	}
	if _, err := p.expect(TokenEquals, "after variable name"); err != nil {
		return err
	}

	v := &Variable{Name: name.Value, Line: line}
	switch p.curToken.Type {
	case TokenString:
		v.Value = p.curToken.Value
		v.IsString = true
	case TokenNumber:
		v.Value = p.curToken.Text
	default:
		return p.unexpected("STRING or NUMBER")
	}
	p.nextToken()

	if _, err := p.expect(TokenSemicolon, "after variable value"); err != nil {
		return err
	}

	unit.Variables.Set(v.Name, v)
	return nil
}

func (p *Parser) parseTest() (*TestCase, error) {
	tc := &TestCase{Line: p.curToken.Line}
	p.nextToken()

	name, err := p.expect(TokenIdentifier, "(test name)")
	if err != nil {
		return nil, err
	}
	tc.Name = name.Value

	if _, err := p.expect(TokenLeftBrace, "after test name"); err != nil {
		return nil, err
	}

	for p.curToken.Type != TokenRightBrace {
		switch {
		case p.curToken.Type.IsMethod():
			req, err := p.parseRequest()
			if err != nil {
				return nil, err
			}
			tc.Requests = append(tc.Requests, req)
		case p.curToken.Type == TokenExpect:
			a, err := p.parseAssertion()
			if err != nil {
				return nil, err
			}
			tc.Assertions = append(tc.Assertions, a)
		default:
			return nil, p.unexpected("HTTP method, 'expect' or '}'")
		}
	}
	p.nextToken()

	return tc, nil
}

func (p *Parser) parseRequest() (*Request, error) {
	req := &Request{
		Method:  Method(p.curToken.Text),
		Headers: NewOrderedMap[string](),
		Line:    p.curToken.Line,
	}
	p.nextToken()

	path, err := p.expect(TokenString, "(request path)")
	if err != nil {
		return nil, err
	}
	req.Path = path.Value

	if p.curToken.Type != TokenLeftBrace {
		if _, err := p.expect(TokenSemicolon, "after request path"); err != nil {
			return nil, err
		}
		return req, nil
	}
	p.nextToken()

	for p.curToken.Type != TokenRightBrace {
		switch p.curToken.Type {
		case TokenHeader:
			name, value, err := p.parseHeaderStmt()
			if err != nil {
				return nil, err
			}
			req.Headers.Set(name, value)
		case TokenBody:
			p.nextToken()
			if _, err := p.expect(TokenEquals, "after 'body'"); err != nil {
				return nil, err
			}
			tok, err := p.expect(TokenString, "(request body)")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenSemicolon, "after request body"); err != nil {
				return nil, err
			}
			body := tok.Value
			req.Body = &body
		default:
			return nil, p.unexpected("'header', 'body' or '}'")
		}
	}
	p.nextToken()

	// A closing brace ends the request; a trailing semicolon is optional.
	if p.curToken.Type == TokenSemicolon {
		p.nextToken()
	}

	return req, nil
}

func (p *Parser) parseAssertion() (*Assertion, error) {
	a := &Assertion{Line: p.curToken.Line}
	p.nextToken()

	switch p.curToken.Type {
	case TokenStatus:
		p.nextToken()
		if _, err := p.expect(TokenEquals, "after 'status'"); err != nil {
			return nil, err
		}
		num, err := p.expect(TokenNumber, "(status code)")
		if err != nil {
			return nil, err
		}
		a.Kind = AssertStatusEquals
		a.Status = num.Int
	case TokenHeader:
		p.nextToken()
		name, err := p.expect(TokenString, "(header name)")
		if err != nil {
			return nil, err
		}
		a.Name = name.Value
		switch p.curToken.Type {
		case TokenEquals:
			a.Kind = AssertHeaderEquals
		case TokenContains:
			a.Kind = AssertHeaderContains
		default:
			return nil, p.unexpected("'=' or 'contains'")
		}
		p.nextToken()
		value, err := p.expect(TokenString, "(expected header value)")
		if err != nil {
			return nil, err
		}
		a.Value = value.Value
	case TokenBody:
		p.nextToken()
		if _, err := p.expect(TokenContains, "after 'body'"); err != nil {
			return nil, err
		}
		value, err := p.expect(TokenString, "(expected body text)")
		if err != nil {
			return nil, err
		}
		a.Kind = AssertBodyContains
		a.Value = value.Value
	default:
		return nil, p.unexpected("'status', 'header' or 'body'")
	}

	if _, err := p.expect(TokenSemicolon, "after assertion"); err != nil {
		return nil, err
	}
	return a, nil
}
