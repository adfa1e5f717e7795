package codegen

import (
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/testlang/packages/core/env"
	"github.com/abdul-hamid-achik/testlang/packages/core/parser"
)

// DefaultBaseURL is emitted when a unit has no config base_url.
const DefaultBaseURL = "http://localhost:8080"

type Header struct {
	Name  string
	Value string
}

// Suite is a compilation unit with URLs resolved and variables substituted.
// Both the templates and the in-process runner consume it.
type Suite struct {
	Source         string
	BaseURL        string
	DefaultHeaders []Header
	Tests          []*TestPlan
}

type TestPlan struct {
	Name       string
	FuncName   string
	Line       int
	Requests   []*RequestPlan
	Assertions []*AssertionPlan
	// MissingRequest is set when assertions exist but no request precedes them.
	MissingRequest bool
}

type RequestPlan struct {
	Method    string
	URL       string
	Body      string
	SendsBody bool
	Headers   []Header
	// First marks the request that declares the response slot.
	First bool
	Line  int
}

type AssertionPlan struct {
	Kind   parser.AssertionKind
	Status int
	Name   string
	Value  string
	Line   int
}

// Describe renders the assertion the way it was written.
func (a *AssertionPlan) Describe() string {
	switch a.Kind {
	case parser.AssertStatusEquals:
		return "status = " + strconv.Itoa(a.Status)
	case parser.AssertHeaderEquals:
		return "header " + strconv.Quote(a.Name) + " = " + strconv.Quote(a.Value)
	case parser.AssertHeaderContains:
		return "header " + strconv.Quote(a.Name) + " contains " + strconv.Quote(a.Value)
	case parser.AssertBodyContains:
		return "body contains " + strconv.Quote(a.Value)
	}
	return a.Kind.String()
}

// ResolveURL prefixes path with the unit's base URL when path is
// root-relative and a base URL is configured. Otherwise path is returned as is.
func ResolveURL(unit *parser.CompilationUnit, path string) string {
	base, ok := unit.BaseURL()
	if ok && strings.HasPrefix(path, "/") {
		return base + path
	}
	return path
}

// LowerOptions controls how a unit is lowered.
type LowerOptions struct {
	DefaultBaseURL string
	// Seed bindings are visible to substitution but lose to let statements.
	Seed     []env.Binding
	WarnFunc WarnFunc
}

// NewResolver builds the variable table for unit: seed bindings first, then
// the unit's let statements in declaration order.
func NewResolver(unit *parser.CompilationUnit, seed []env.Binding) *env.Resolver {
	r := env.NewResolver()
	r.SetBindings(seed)
	unit.Variables.Each(func(name string, v *parser.Variable) {
		r.SetVariable(name, v.Value)
	})
	return r
}

// Lower resolves and substitutes every request in unit. It never fails;
// dropped bodies and unbound variables are reported through WarnFunc.
func Lower(unit *parser.CompilationUnit, opts LowerOptions) *Suite {
	warn := func(format string, args ...any) {
		if opts.WarnFunc != nil {
			opts.WarnFunc(format, args...)
		}
	}

	resolver := NewResolver(unit, opts.Seed)
	resolver.SetWarnFunc(warn)

	suite := &Suite{Source: unit.Path}

	if base, ok := unit.BaseURL(); ok {
		suite.BaseURL = base
	} else if opts.DefaultBaseURL != "" {
		suite.BaseURL = opts.DefaultBaseURL
	} else {
		suite.BaseURL = DefaultBaseURL
	}

	if unit.Config != nil {
		unit.Config.DefaultHeaders.Each(func(name, value string) {
			suite.DefaultHeaders = append(suite.DefaultHeaders, Header{Name: name, Value: value})
		})
	}

	for _, tc := range unit.TestCases {
		plan := &TestPlan{
			Name:     tc.Name,
			FuncName: "test_" + tc.Name,
			Line:     tc.Line,
		}

		for i, req := range tc.Requests {
			plan.Requests = append(plan.Requests, lowerRequest(unit, resolver, tc, req, i == 0, warn))
		}

		for _, a := range tc.Assertions {
			plan.Assertions = append(plan.Assertions, &AssertionPlan{
				Kind:   a.Kind,
				Status: a.Status,
				Name:   a.Name,
				Value:  a.Value,
				Line:   a.Line,
			})
		}

		if len(plan.Requests) == 0 && len(plan.Assertions) > 0 {
			plan.MissingRequest = true
			warn("test %s (line %d): assertions without a request always fail", tc.Name, tc.Line)
		}

		suite.Tests = append(suite.Tests, plan)
	}

	return suite
}

func lowerRequest(unit *parser.CompilationUnit, resolver *env.Resolver, tc *parser.TestCase, req *parser.Request, first bool, warn WarnFunc) *RequestPlan {
	plan := &RequestPlan{
		Method:    string(req.Method),
		URL:       resolver.Resolve(ResolveURL(unit, req.Path)),
		SendsBody: req.Method.AllowsBody(),
		First:     first,
		Line:      req.Line,
	}

	if req.Body != nil {
		if plan.SendsBody {
			plan.Body = resolver.Resolve(*req.Body)
		} else {
			warn("test %s (line %d): body on %s request is ignored", tc.Name, req.Line, req.Method)
		}
	}

	req.Headers.Each(func(name, value string) {
		plan.Headers = append(plan.Headers, Header{Name: name, Value: resolver.Resolve(value)})
	})

	return plan
}
