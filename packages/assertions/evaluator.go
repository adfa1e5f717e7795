package assertions

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/abdul-hamid-achik/testlang/packages/codegen"
	"github.com/abdul-hamid-achik/testlang/packages/core/parser"
	"github.com/abdul-hamid-achik/testlang/packages/http"
)

// maxActualLen bounds how much of a response body is echoed in a result.
const maxActualLen = 200

type Result struct {
	Passed   bool
	Message  string
	Expected any
	Actual   any
	Subject  string
	Operator string
	Line     int
}

type Evaluator struct {
	response *http.Response
}

func NewEvaluator(resp *http.Response) *Evaluator {
	return &Evaluator{response: resp}
}

func (e *Evaluator) Evaluate(a *codegen.AssertionPlan) *Result {
	result := &Result{Line: a.Line}

	switch a.Kind {
	case parser.AssertStatusEquals:
		result.Subject = "status"
		result.Operator = "equals"
		result.Expected = a.Status
		result.Actual = e.response.StatusCode
		result.Passed = e.response.StatusCode == a.Status

	case parser.AssertHeaderEquals:
		actual := e.response.Header(a.Name)
		result.Subject = "header " + a.Name
		result.Operator = "equals"
		result.Expected = a.Value
		result.Actual = actual
		result.Passed = actual == a.Value

	case parser.AssertHeaderContains:
		actual := e.response.Header(a.Name)
		result.Subject = "header " + a.Name
		result.Operator = "contains"
		result.Expected = a.Value
		result.Actual = actual
		result.Passed = strings.Contains(actual, a.Value)

	case parser.AssertBodyContains:
		body := e.response.BodyString()
		result.Subject = "body"
		result.Operator = "contains"
		result.Expected = a.Value
		result.Actual = truncate(body, maxActualLen)
		result.Passed = strings.Contains(body, a.Value)

	default:
		result.Message = fmt.Sprintf("unsupported assertion kind %s", a.Kind)
		return result
	}

	if !result.Passed {
		result.Message = failureMessage(result)
	}
	return result
}

// EvaluateAll checks every assertion against the same response, in order.
func (e *Evaluator) EvaluateAll(plans []*codegen.AssertionPlan) []*Result {
	results := make([]*Result, 0, len(plans))
	for _, a := range plans {
		results = append(results, e.Evaluate(a))
	}
	return results
}

func failureMessage(r *Result) string {
	if r.Operator == "contains" {
		return fmt.Sprintf("expected %s to contain %s, got %s", r.Subject, quote(r.Expected), quote(r.Actual))
	}
	return fmt.Sprintf("expected %s to equal %s, got %s", r.Subject, quote(r.Expected), quote(r.Actual))
}

func quote(v any) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprintf("%v", v)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// AllPassed reports whether every result passed.
func AllPassed(results []*Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
