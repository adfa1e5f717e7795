package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/testlang/packages/core/compiler"
	"github.com/abdul-hamid-achik/testlang/packages/core/parser"
)

// parseSource reads and parses one file, returning lexical warnings even
// when parsing fails.
func parseSource(c *compiler.Compiler, path string) (*parser.CompilationUnit, []compiler.Diagnostic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading source: %w", err)
	}
	return c.Parse(string(data), path)
}

// reportError prints err to stderr, followed by the offending source line
// when err points into a source file.
func reportError(w io.Writer, err error) {
	printError(w, "%v", err)

	var snippet string
	var parseErr *parser.ParseError
	var lexErr *parser.LexError
	switch {
	case errors.As(err, &parseErr):
		snippet = parseErr.Snippet
	case errors.As(err, &lexErr):
		snippet = lexErr.Snippet
	}
	if snippet == "" {
		return
	}
	for _, line := range strings.Split(snippet, "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
}
