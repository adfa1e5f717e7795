package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_FullUnit(t *testing.T) {
	input := `config {
  base_url = "http://api.test";
  header "Accept" = "application/json";
  header "X-Client" = "testlang";
}

let user = "admin";
let retries = 3;

test login {
  POST "/login" {
    header "Content-Type" = "application/json";
    body = "{\"user\":\"$user\"}";
  }
  expect status = 200;
  expect header "Content-Type" contains "json";
  expect header "X-Request" = "1";
  expect body contains "token";
}

test health {
  GET "/health";
  expect status = 204;
}`

	unit, err := Parse(input, "login.tl")
	require.NoError(t, err)
	assert.Equal(t, "login.tl", unit.Path)

	require.NotNil(t, unit.Config)
	base, ok := unit.BaseURL()
	require.True(t, ok)
	assert.Equal(t, "http://api.test", base)
	assert.Equal(t, []string{"Accept", "X-Client"}, unit.Config.DefaultHeaders.Keys())

	assert.Equal(t, []string{"user", "retries"}, unit.Variables.Keys())
	user, _ := unit.Variables.Get("user")
	assert.True(t, user.IsString)
	assert.Equal(t, "admin", user.Value)
	retries, _ := unit.Variables.Get("retries")
	assert.False(t, retries.IsString)
	assert.Equal(t, "3", retries.Value)

	require.Len(t, unit.TestCases, 2)
	login := unit.TestCases[0]
	assert.Equal(t, "login", login.Name)
	require.Len(t, login.Requests, 1)
	req := login.Requests[0]
	assert.Equal(t, MethodPost, req.Method)
	assert.Equal(t, "/login", req.Path)
	require.NotNil(t, req.Body)
	assert.Equal(t, `{"user":"$user"}`, *req.Body)
	ct, ok := req.Headers.Get("Content-Type")
	require.True(t, ok)
	assert.Equal(t, "application/json", ct)

	require.Len(t, login.Assertions, 4)
	assert.Equal(t, AssertStatusEquals, login.Assertions[0].Kind)
	assert.Equal(t, 200, login.Assertions[0].Status)
	assert.Equal(t, AssertHeaderContains, login.Assertions[1].Kind)
	assert.Equal(t, "Content-Type", login.Assertions[1].Name)
	assert.Equal(t, "json", login.Assertions[1].Value)
	assert.Equal(t, AssertHeaderEquals, login.Assertions[2].Kind)
	assert.Equal(t, AssertBodyContains, login.Assertions[3].Kind)
	assert.Equal(t, "token", login.Assertions[3].Value)

	health := unit.TestCases[1]
	assert.Equal(t, "health", health.Name)
	require.Len(t, health.Requests, 1)
	assert.Nil(t, health.Requests[0].Body)
	assert.Equal(t, 0, health.Requests[0].Headers.Len())
}

func TestParser_EmptyInput(t *testing.T) {
	unit, err := Parse("", "")
	require.NoError(t, err)
	assert.Nil(t, unit.Config)
	assert.Equal(t, 0, unit.Variables.Len())
	assert.Empty(t, unit.TestCases)

	_, ok := unit.BaseURL()
	assert.False(t, ok)
}

func TestParser_EmptyConfig(t *testing.T) {
	unit, err := Parse(`config { }`, "")
	require.NoError(t, err)
	require.NotNil(t, unit.Config)
	assert.Nil(t, unit.Config.BaseURL)
	assert.Equal(t, 0, unit.Config.DefaultHeaders.Len())
}

func TestParser_RedeclaredVariableKeepsSlot(t *testing.T) {
	unit, err := Parse(`let a = "1"; let b = "x"; let a = "2";`, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, unit.Variables.Keys())
	value, ok := unit.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "2", value)
}

func TestParser_DuplicateHeaderLastWins(t *testing.T) {
	input := `config { header "A" = "1"; header "B" = "2"; header "A" = "3"; }`

	unit, err := Parse(input, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, unit.Config.DefaultHeaders.Keys())
	a, _ := unit.Config.DefaultHeaders.Get("A")
	assert.Equal(t, "3", a)
}

func TestParser_RequestSemicolons(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"block without semicolon", `test t { GET "/x" { header "H" = "v"; } expect status = 200; }`},
		{"block with semicolon", `test t { GET "/x" { header "H" = "v"; }; expect status = 200; }`},
		{"no block", `test t { GET "/x"; expect status = 200; }`},
		{"empty block", `test t { DELETE "/x" { } }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, err := Parse(tt.input, "")
			require.NoError(t, err)
			require.Len(t, unit.TestCases, 1)
			assert.Len(t, unit.TestCases[0].Requests, 1)
		})
	}
}

func TestParser_SequentialRequests(t *testing.T) {
	input := `test flow {
  POST "/items" { body = "a"; }
  GET "/items/1";
  expect status = 200;
}`

	unit, err := Parse(input, "")
	require.NoError(t, err)

	tc := unit.TestCases[0]
	require.Len(t, tc.Requests, 2)
	assert.Equal(t, MethodPost, tc.Requests[0].Method)
	assert.Equal(t, MethodGet, tc.Requests[1].Method)
	assert.Len(t, tc.Assertions, 1)
}

func TestParser_EmptyTest(t *testing.T) {
	unit, err := Parse(`test nothing { }`, "")
	require.NoError(t, err)
	require.Len(t, unit.TestCases, 1)
	assert.Empty(t, unit.TestCases[0].Requests)
	assert.Empty(t, unit.TestCases[0].Assertions)
}

func TestParser_DuplicateTestNamesKept(t *testing.T) {
	unit, err := Parse(`test a { } test a { }`, "")
	require.NoError(t, err)
	assert.Len(t, unit.TestCases, 2)
}

func TestParser_MissingPath(t *testing.T) {
	unit, err := Parse("test t { GET ; }", "bad.tl")
	require.Error(t, err)
	assert.Nil(t, unit)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 1, parseErr.Line)
	assert.Equal(t, 14, parseErr.Column)
	assert.Equal(t, "';'", parseErr.Actual)
	assert.Contains(t, parseErr.Expected, "STRING")
	assert.Equal(t, "bad.tl:1:14: "+parseErr.Message, parseErr.Error())
	assert.Equal(t, "test t { GET ; }\n             ^", parseErr.Snippet)
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		line     int
		column   int
		contains string
	}{
		{
			name:     "config after let",
			input:    `let a = "1"; config { }`,
			line:     1,
			column:   14,
			contains: "config block must appear before",
		},
		{
			name:     "let after test",
			input:    "test t { }\nlet a = \"1\";",
			line:     2,
			column:   1,
			contains: "let statements must precede",
		},
		{
			name:     "trailing garbage",
			input:    `test t { } GET`,
			line:     1,
			column:   12,
			contains: "expected 'test' or end of input",
		},
		{
			name:     "missing semicolon after request",
			input:    `test t { GET "/x" expect status = 200; }`,
			line:     1,
			column:   19,
			contains: "after request path",
		},
		{
			name:     "let without value",
			input:    `let a = ;`,
			line:     1,
			column:   9,
			contains: "STRING or NUMBER",
		},
		{
			name:     "keyword as test name",
			input:    `test status { }`,
			line:     1,
			column:   6,
			contains: "test name",
		},
		{
			name:     "bad assertion subject",
			input:    `test t { expect code = 1; }`,
			line:     1,
			column:   17,
			contains: "'status', 'header' or 'body'",
		},
		{
			name:     "header assertion without operator",
			input:    `test t { expect header "H" "v"; }`,
			line:     1,
			column:   28,
			contains: "'=' or 'contains'",
		},
		{
			name:     "status with string",
			input:    `test t { expect status = "200"; }`,
			line:     1,
			column:   26,
			contains: "status code",
		},
		{
			name:     "body equals",
			input:    `test t { expect body = "x"; }`,
			line:     1,
			column:   22,
			contains: "'contains'",
		},
		{
			name:     "unclosed test",
			input:    `test t { GET "/x";`,
			line:     1,
			column:   19,
			contains: "end of input",
		},
		{
			name:     "unknown statement in config",
			input:    `config { timeout = "1"; }`,
			line:     1,
			column:   10,
			contains: "'base_url', 'header' or '}'",
		},
		{
			name:     "unknown statement in request block",
			input:    `test t { GET "/x" { status = 1; } }`,
			line:     1,
			column:   21,
			contains: "'header', 'body' or '}'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, err := Parse(tt.input, "")
			require.Error(t, err)
			assert.Nil(t, unit)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "got %T: %v", err, err)
			assert.Equal(t, tt.line, parseErr.Line)
			assert.Equal(t, tt.column, parseErr.Column)
			assert.Contains(t, parseErr.Message, tt.contains)
		})
	}
}

func TestParser_LexErrorSurfaces(t *testing.T) {
	_, err := Parse(`let a = "open;`, "x.tl")
	require.Error(t, err)

	var lexErr *LexError
	require.True(t, errors.As(err, &lexErr))
	assert.Equal(t, "x.tl", lexErr.File)
}

func TestParser_Warnings(t *testing.T) {
	var warned int
	p := NewParser("let a = \"1\" ~;")
	p.SetWarnFunc(func(format string, args ...any) { warned++ })

	unit, err := p.ParseUnit()
	require.NoError(t, err)
	assert.Equal(t, 1, unit.Variables.Len())
	require.Len(t, p.Warnings(), 1)
	assert.Equal(t, '~', p.Warnings()[0].Char)
	assert.Equal(t, 1, warned)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ping.tl")
	content := `config { base_url = "http://api.test"; }
test ping { GET "/ping"; expect status = 200; }`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	unit, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, unit.Path)
	require.Len(t, unit.TestCases, 1)
	assert.Equal(t, "ping", unit.TestCases[0].Name)

	_, err = ParseFile(filepath.Join(dir, "missing.tl"))
	assert.Error(t, err)
}
