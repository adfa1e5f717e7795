package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/abdul-hamid-achik/testlang/packages/codegen"
	"github.com/abdul-hamid-achik/testlang/packages/core/config"
	"github.com/abdul-hamid-achik/testlang/packages/core/env"
	"github.com/abdul-hamid-achik/testlang/packages/core/parser"
)

// SourceExt is the file extension of testlang sources.
const SourceExt = ".tl"

type Diagnostic struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", d.File, d.Line, d.Column, d.Message)
	}
	if d.File != "" {
		return d.File + ": " + d.Message
	}
	return d.Message
}

// Result is the outcome of compiling one source text.
type Result struct {
	Source   string
	Unit     *parser.CompilationUnit
	Output   string
	FileName string
	Warnings []Diagnostic
}

type Options struct {
	Target         string
	ClassName      string
	Package        string
	RequestTimeout int
	ConnectTimeout int
	DefaultBaseURL string
	Variables      []env.Binding
}

// OptionsFromConfig maps a loaded config onto compile options.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := Options{
		Target:         cfg.Target,
		ClassName:      cfg.ClassName,
		Package:        cfg.Package,
		RequestTimeout: cfg.RequestTimeout,
		ConnectTimeout: cfg.ConnectTimeout,
		DefaultBaseURL: cfg.DefaultBaseURL,
	}
	names := make([]string, 0, len(cfg.Variables))
	for name := range cfg.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		opts.Variables = append(opts.Variables, env.Binding{Name: name, Value: cfg.Variables[name]})
	}
	return opts
}

type Compiler struct {
	opts Options
}

func New(opts Options) *Compiler {
	return &Compiler{opts: opts}
}

func (c *Compiler) generator(warn codegen.WarnFunc) *codegen.Generator {
	return codegen.New(
		codegen.WithTarget(c.opts.Target),
		codegen.WithClassName(c.opts.ClassName),
		codegen.WithPackage(c.opts.Package),
		codegen.WithTimeouts(c.opts.RequestTimeout, c.opts.ConnectTimeout),
		codegen.WithDefaultBaseURL(c.opts.DefaultBaseURL),
		codegen.WithVariables(c.opts.Variables),
		codegen.WithWarnFunc(warn),
	)
}

// Parse tokenizes and parses src, collecting lexical warnings.
func (c *Compiler) Parse(src, filename string) (*parser.CompilationUnit, []Diagnostic, error) {
	p := parser.NewParser(src)
	p.SetFile(filename)
	unit, err := p.ParseUnit()

	var warnings []Diagnostic
	for _, w := range p.Warnings() {
		warnings = append(warnings, Diagnostic{
			File:    filename,
			Line:    w.Line,
			Column:  w.Column,
			Message: fmt.Sprintf("unknown character %q skipped", w.Char),
		})
	}
	return unit, warnings, err
}

// Compile runs the whole pipeline on src. On error Result is nil, so no
// partial output can escape.
func (c *Compiler) Compile(src, filename string) (*Result, error) {
	unit, warnings, err := c.Parse(src, filename)
	if err != nil {
		return nil, err
	}

	res := &Result{Source: filename, Unit: unit, Warnings: warnings}
	gen := c.generator(func(format string, args ...any) {
		res.Warnings = append(res.Warnings, Diagnostic{File: filename, Message: fmt.Sprintf(format, args...)})
	})

	out, err := gen.Generate(unit)
	if err != nil {
		return nil, err
	}
	res.Output = out
	res.FileName = gen.FileName()
	return res, nil
}

func (c *Compiler) CompileFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	return c.Compile(string(data), path)
}

// Lower parses src and returns the resolved suite, as used by the runner.
func (c *Compiler) Lower(src, filename string) (*codegen.Suite, []Diagnostic, error) {
	unit, warnings, err := c.Parse(src, filename)
	if err != nil {
		return nil, warnings, err
	}
	suite := c.generator(func(format string, args ...any) {
		warnings = append(warnings, Diagnostic{File: filename, Message: fmt.Sprintf(format, args...)})
	}).Lower(unit)
	return suite, warnings, nil
}

func (c *Compiler) LowerFile(path string) (*codegen.Suite, []Diagnostic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading source: %w", err)
	}
	return c.Lower(string(data), path)
}

// FileResult pairs a path with its compilation outcome.
type FileResult struct {
	Path   string
	Result *Result
	Err    error
}

// CompileFiles compiles paths concurrently with at most concurrency workers.
// Results are returned in input order.
func (c *Compiler) CompileFiles(paths []string, concurrency int) []FileResult {
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]FileResult, len(paths))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := c.CompileFile(path)
			results[i] = FileResult{Path: path, Result: res, Err: err}
		}(i, path)
	}

	wg.Wait()
	return results
}

// FindSources expands directories into the .tl files they contain. Plain
// file arguments are kept as given.
func FindSources(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, SourceExt) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// Position extracts the source position from a pipeline error.
func Position(err error) (line, column int, ok bool) {
	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Line, parseErr.Column, true
	}
	var lexErr *parser.LexError
	if errors.As(err, &lexErr) {
		return lexErr.Line, lexErr.Column, true
	}
	return 0, 0, false
}

// IsSourceError reports whether err was caused by malformed source text.
func IsSourceError(err error) bool {
	_, _, ok := Position(err)
	return ok
}
