package codegen

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/abdul-hamid-achik/testlang/packages/core/env"
	"github.com/abdul-hamid-achik/testlang/packages/core/parser"
)

// WarnFunc receives generator warnings.
type WarnFunc func(format string, args ...any)

const (
	TargetJUnit  = "junit"
	TargetGoTest = "gotest"

	DefaultClassName      = "GeneratedTests"
	DefaultPackage        = "generated_test"
	DefaultRequestTimeout = 10
	DefaultConnectTimeout = 5
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type target struct {
	template string
	ext      string
}

var targets = map[string]target{
	TargetJUnit:  {template: "junit.tmpl", ext: ".java"},
	TargetGoTest: {template: "gotest.tmpl", ext: "_test.go"},
}

// Targets lists the supported emission targets.
func Targets() []string {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var funcs = template.FuncMap{
	"java":    escapeJava,
	"goquote": strconv.Quote,
}

type Generator struct {
	target         string
	className      string
	pkg            string
	requestTimeout int
	connectTimeout int
	defaultBaseURL string
	seed           []env.Binding
	warnFunc       WarnFunc
}

type Option func(*Generator)

func New(opts ...Option) *Generator {
	g := &Generator{
		target:         TargetJUnit,
		className:      DefaultClassName,
		pkg:            DefaultPackage,
		requestTimeout: DefaultRequestTimeout,
		connectTimeout: DefaultConnectTimeout,
		defaultBaseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func WithTarget(name string) Option {
	return func(g *Generator) {
		if name != "" {
			g.target = name
		}
	}
}

func WithClassName(name string) Option {
	return func(g *Generator) {
		if name != "" {
			g.className = name
		}
	}
}

func WithPackage(name string) Option {
	return func(g *Generator) {
		if name != "" {
			g.pkg = name
		}
	}
}

// WithTimeouts sets the per-request and connect timeouts in seconds.
// Non-positive values keep the defaults.
func WithTimeouts(request, connect int) Option {
	return func(g *Generator) {
		if request > 0 {
			g.requestTimeout = request
		}
		if connect > 0 {
			g.connectTimeout = connect
		}
	}
}

func WithDefaultBaseURL(url string) Option {
	return func(g *Generator) {
		if url != "" {
			g.defaultBaseURL = url
		}
	}
}

// WithVariables seeds the variable table. let statements override seeds.
func WithVariables(bindings []env.Binding) Option {
	return func(g *Generator) {
		g.seed = bindings
	}
}

func WithWarnFunc(fn WarnFunc) Option {
	return func(g *Generator) {
		g.warnFunc = fn
	}
}

func (g *Generator) Target() string {
	return g.target
}

// FileName is the conventional output file name for the current target.
func (g *Generator) FileName() string {
	t, ok := targets[g.target]
	if !ok {
		return g.className
	}
	if g.target == TargetGoTest {
		return strings.ToLower(g.className) + t.ext
	}
	return g.className + t.ext
}

func (g *Generator) validate() error {
	if _, ok := targets[g.target]; !ok {
		return fmt.Errorf("unknown target %q (supported: %s)", g.target, strings.Join(Targets(), ", "))
	}
	if !validJavaClass(g.className) {
		return fmt.Errorf("invalid class name %q", g.className)
	}
	if g.target == TargetGoTest && !validGoPackage(g.pkg) {
		return fmt.Errorf("invalid package name %q", g.pkg)
	}
	return nil
}

// Lower produces the target-independent form of unit.
func (g *Generator) Lower(unit *parser.CompilationUnit) *Suite {
	return Lower(unit, LowerOptions{
		DefaultBaseURL: g.defaultBaseURL,
		Seed:           g.seed,
		WarnFunc:       g.warnFunc,
	})
}

type templateData struct {
	Suite          *Suite
	ClassName      string
	Package        string
	RequestTimeout int
	ConnectTimeout int
}

// GenerateTo renders unit for the configured target into w.
func (g *Generator) GenerateTo(w io.Writer, unit *parser.CompilationUnit) error {
	if err := g.validate(); err != nil {
		return err
	}

	tmpl, err := template.New(targets[g.target].template).
		Funcs(funcs).
		ParseFS(templateFS, "templates/"+targets[g.target].template)
	if err != nil {
		return fmt.Errorf("failed to parse %s template: %w", g.target, err)
	}

	data := templateData{
		Suite:          g.Lower(unit),
		ClassName:      g.className,
		Package:        g.pkg,
		RequestTimeout: g.requestTimeout,
		ConnectTimeout: g.connectTimeout,
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render %s template: %w", g.target, err)
	}
	return nil
}

// Generate renders unit and returns the module text. On error no partial
// output is returned.
func (g *Generator) Generate(unit *parser.CompilationUnit) (string, error) {
	var buf bytes.Buffer
	if err := g.GenerateTo(&buf, unit); err != nil {
		return "", err
	}
	return buf.String(), nil
}
