package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/testlang/packages/core/config"
	"github.com/abdul-hamid-achik/testlang/packages/core/env"
	"github.com/abdul-hamid-achik/testlang/packages/core/parser"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"explicit", &ExitError{Code: ExitNetworkError}, ExitNetworkError},
		{"parse error", fmt.Errorf("parsing file: %w", &parser.ParseError{Line: 1, Column: 2}), ExitParseError},
		{"lex error", &parser.LexError{Line: 3, Column: 1}, ExitParseError},
		{"config", &config.ValidationError{Problems: []string{"bad"}}, ExitConfigError},
		{"unknown command", errors.New(`unknown command "frob" for "testlangc"`), ExitUsageError},
		{"other", errors.New("boom"), ExitTestFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestExitError(t *testing.T) {
	silent := &ExitError{Code: 1}
	assert.Equal(t, "exit status 1", silent.Error())

	inner := errors.New("inner")
	wrapped := &ExitError{Code: 3, Err: inner}
	assert.Equal(t, "inner", wrapped.Error())
	assert.True(t, errors.Is(wrapped, inner))

	assert.Equal(t, ExitUsageError, exitCode(usageError("bad %s", "flag")))
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join("tests", "users.tl")

	assert.Equal(t, filepath.Join("tests", "GeneratedTests.java"),
		outputPath("", "", src, "GeneratedTests.java", false))
	assert.Equal(t, filepath.Join("build", "GeneratedTests.java"),
		outputPath("", "build", src, "GeneratedTests.java", false))
	assert.Equal(t, "Out.java",
		outputPath("Out.java", "build", src, "GeneratedTests.java", false))
	assert.Equal(t, filepath.Join(dir, "GeneratedTests.java"),
		outputPath(dir, "", src, "GeneratedTests.java", false), "existing directory")
	assert.Equal(t, filepath.Join(dir, "users", "GeneratedTests.java"),
		outputPath(dir, "", src, "GeneratedTests.java", true))
}

func TestWriteOutputCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "X.java")
	require.NoError(t, writeOutput(path, "class X {}"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "class X {}", string(data))
}

func TestValidTargetAndReporter(t *testing.T) {
	assert.True(t, validTarget("junit"))
	assert.True(t, validTarget("gotest"))
	assert.False(t, validTarget("cobol"))

	assert.True(t, validReporter("tap"))
	assert.False(t, validReporter("html"))
}

func bindingValue(bindings []env.Binding, name string) (string, bool) {
	for _, b := range bindings {
		if b.Name == name {
			return b.Value, true
		}
	}
	return "", false
}

func TestSeedVariablesPrecedence(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("token=file\nhost=file\nonly_file=1\n"), 0644))
	t.Setenv("TESTLANG_VAR_host", "environ")

	cfg := config.DefaultConfig()
	cfg.Variables = map[string]string{"token": "config", "only_config": "1"}

	bindings, err := seedVariables(cfg, envFile, []string{"token=flag"})
	require.NoError(t, err)

	for name, want := range map[string]string{
		"token":       "flag",
		"host":        "environ",
		"only_file":   "1",
		"only_config": "1",
	} {
		got, ok := bindingValue(bindings, name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
}

func TestSeedVariablesErrors(t *testing.T) {
	cfg := config.DefaultConfig()

	_, err := seedVariables(cfg, "", []string{"novalue"})
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, exitCode(err))

	_, err = seedVariables(cfg, filepath.Join(t.TempDir(), "missing.env"), nil)
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, exitCode(err))
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := collectFiles([]string{dir})
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, exitCode(err))

	src := filepath.Join(dir, "a.tl")
	require.NoError(t, os.WriteFile(src, []byte(`test t { }`), 0644))
	files, err := collectFiles([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{src}, files)
}

func TestIsSourceFile(t *testing.T) {
	assert.True(t, isSourceFile("x/a.tl"))
	assert.False(t, isSourceFile("x/a.go"))
}

func TestExitCodesCommand(t *testing.T) {
	var buf bytes.Buffer
	exitCodesCmd.SetOut(&buf)
	exitCodesCmd.Run(exitCodesCmd, nil)

	assert.Contains(t, buf.String(), " 64  invalid command line usage")
	assert.Contains(t, buf.String(), "  2  lexical or syntax error")
}

func TestDocsCommand(t *testing.T) {
	var buf bytes.Buffer
	docsCmd.SetOut(&buf)
	docsCmd.Run(docsCmd, nil)

	assert.Contains(t, buf.String(), "# testlang")
	assert.Contains(t, buf.String(), "expect status = N;")
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "request", plural(1, "request"))
	assert.Equal(t, "requests", plural(0, "request"))
	assert.Equal(t, "requests", plural(2, "request"))
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)

	assert.Contains(t, buf.String(), "testlangc version "+version)
	assert.Contains(t, buf.String(), "Targets: gotest, junit")
}
