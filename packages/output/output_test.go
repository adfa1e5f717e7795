package output

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	nethttp "net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/testlang/packages/assertions"
	"github.com/abdul-hamid-achik/testlang/packages/core/runner"
	"github.com/abdul-hamid-achik/testlang/packages/http"
)

func sampleResult() *runner.RunResult {
	req := http.NewRequest("GET", "http://api.test/ping").SetHeader("Accept", "text/plain")
	resp := &http.Response{StatusCode: 500, Headers: nethttp.Header{}, Duration: 12 * time.Millisecond}

	return &runner.RunResult{
		File:     "ping.tl",
		Duration: 40 * time.Millisecond,
		Passed:   1,
		Failed:   2,
		Skipped:  1,
		Results: []*runner.TestResult{
			{Name: "ok", Line: 1, Passed: true, Duration: 5 * time.Millisecond},
			{
				Name:      "broken",
				Line:      2,
				Exchanges: []*runner.Exchange{{Request: req, Response: resp, Duration: resp.Duration}},
				Response:  resp,
				Assertions: []*assertions.Result{{
					Subject:  "status",
					Operator: "equals",
					Expected: 200,
					Actual:   500,
					Line:     3,
					Message:  "expected status to equal 200, got 500",
				}},
			},
			{Name: "down", Line: 4, Error: errors.New("GET http://down: connection refused")},
			{Name: "later", Skipped: true, SkipReason: "filtered out"},
		},
		Metrics: &runner.Summary{TotalRequests: 2, SuccessCount: 1, ErrorCount: 1, P50: 12 * time.Millisecond, P95: 12 * time.Millisecond, P99: 12 * time.Millisecond, Max: 12 * time.Millisecond},
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	for _, name := range Names {
		f, err := New(name, &buf, false, true)
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}

	f, err := New("", &buf, false, true)
	require.NoError(t, err)
	assert.IsType(t, &ConsoleFormatter{}, f)

	_, err = New("html", &buf, false, true)
	assert.Error(t, err)
}

func TestConsoleFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true), WithVerbose(true))
	f.FormatResult(sampleResult())
	out := buf.String()

	assert.Contains(t, out, "Running: ping.tl")
	assert.Contains(t, out, "✓ ok")
	assert.Contains(t, out, "✗ broken")
	assert.Contains(t, out, "GET http://api.test/ping -> 500 (12ms)")
	assert.Contains(t, out, "Expected: 200")
	assert.Contains(t, out, "Actual:   500")
	assert.Contains(t, out, "at line 3")
	assert.Contains(t, out, "connection refused")
	assert.Contains(t, out, "- later\n")
	assert.Contains(t, out, "1 passed, 2 failed, 1 skipped, 4 total")
	assert.Contains(t, out, "p50 12ms")
}

func TestConsoleFormatter_HeaderAndError(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))
	f.FormatHeader("1.0.0")
	f.FormatError(errors.New("boom"))

	assert.Equal(t, "testlang 1.0.0\nError: boom\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf), JSONWithRunID("run-1"))
	f.FormatResult(sampleResult())
	require.NoError(t, f.Flush(time.Second))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, "run-1", out.RunID)
	assert.Equal(t, JSONSummary{Total: 4, Passed: 1, Failed: 2, Skipped: 1}, out.Summary)
	require.Len(t, out.Tests, 4)

	broken := out.Tests[1]
	assert.Equal(t, 2, broken.Line)
	require.Len(t, broken.Requests, 1)
	assert.Equal(t, "text/plain", broken.Requests[0].Headers["Accept"])
	assert.Equal(t, 500, broken.Requests[0].StatusCode)
	require.Len(t, broken.Assertions, 1)
	assert.Equal(t, 3, broken.Assertions[0].Line)

	assert.Contains(t, out.Tests[2].Error, "connection refused")
	assert.Empty(t, out.Tests[3].SkipReason)

	require.NotNil(t, out.Latency)
	assert.Equal(t, int64(2), out.Latency.Requests)
	assert.Equal(t, 12.0, out.Latency.P99)
	assert.Equal(t, 1000.0, out.Duration)
}

func TestJSONFormatter_GeneratesRunID(t *testing.T) {
	a := NewJSONFormatter()
	b := NewJSONFormatter()
	assert.Len(t, a.RunID(), 36)
	assert.NotEqual(t, a.RunID(), b.RunID())
}

func TestJUnitFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJUnitFormatter(JUnitWithWriter(&buf))
	f.FormatResult(sampleResult())
	require.NoError(t, f.Flush(time.Second))

	require.True(t, strings.HasPrefix(buf.String(), `<?xml version="1.0" encoding="UTF-8"?>`))

	var report JUnitReport
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &report))

	assert.Equal(t, "testlang", report.Name)
	assert.Equal(t, 4, report.Tests)
	assert.Equal(t, 1, report.Failures)
	assert.Equal(t, 1, report.Errors)
	assert.Equal(t, 1, report.Skipped)

	require.Len(t, report.Suites, 1)
	suite := report.Suites[0]
	assert.Equal(t, "ping.tl", suite.Name)
	assert.Contains(t, suite.Properties, JUnitProperty{Name: "requests", Value: "2"})

	cases := suite.Cases
	require.Len(t, cases, 4)
	assert.Equal(t, "test_ok", cases[0].Name)
	assert.Equal(t, "ping", cases[0].ClassName)
	assert.Nil(t, cases[0].Failure)

	require.NotNil(t, cases[1].Failure)
	assert.Equal(t, "AssertionFailedError", cases[1].Failure.Type)
	assert.Equal(t, "expected status to equal 200, got 500", cases[1].Failure.Message)
	assert.Contains(t, cases[1].Failure.Content, "line 3:")
	assert.Contains(t, cases[1].SystemOut, "GET http://api.test/ping -> 500 (12ms)")

	require.NotNil(t, cases[2].Error)
	assert.Equal(t, "IllegalStateException", cases[2].Error.Type)
	require.NotNil(t, cases[3].Skipped)
	assert.Equal(t, "filtered out", cases[3].Skipped.Message)
}

func TestJUnitFormatter_RequestErrorAndFileError(t *testing.T) {
	var buf bytes.Buffer
	f := NewJUnitFormatter(JUnitWithWriter(&buf))
	f.FormatResult(&runner.RunResult{
		File: "tests/users.tl",
		Results: []*runner.TestResult{{
			Name:  "down",
			Error: &runner.RequestError{Method: "GET", URL: "http://down", Err: errors.New("refused")},
		}},
	})
	f.FormatError(errors.New("bad.tl:1:14: expected string"))
	require.NoError(t, f.Flush(time.Second))

	var report JUnitReport
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &report))

	require.Len(t, report.Suites, 2)
	assert.Equal(t, 2, report.Errors)
	assert.Equal(t, "tests.users", report.Suites[0].Cases[0].ClassName)
	assert.Equal(t, "IOException", report.Suites[0].Cases[0].Error.Type)
	assert.Equal(t, "CompilationError", report.Suites[1].Cases[0].Error.Type)
}

func TestTAPFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewTAPFormatter(TAPWithWriter(&buf))
	f.FormatResult(sampleResult())
	require.NoError(t, f.Flush(time.Second))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "TAP version 13\n1..4\n# ping.tl\n"))
	assert.Contains(t, out, "ok 1 - ok\n")
	assert.Contains(t, out, "not ok 2 - broken\n  ---\n")
	assert.Contains(t, out, "expected status to equal 200, got 500")
	assert.Contains(t, out, "severity: fail")
	assert.Contains(t, out, "at: ping.tl:2")
	assert.Contains(t, out, "- GET http://api.test/ping -> 500")
	assert.Contains(t, out, "check: status equals")
	assert.Contains(t, out, "not ok 3 - down\n")
	assert.Contains(t, out, "connection refused")
	assert.Contains(t, out, "severity: error")
	assert.Contains(t, out, "ok 4 - later # SKIP filtered out\n")
	assert.Contains(t, out, "# time 1.000s\n")
}

func TestTAPFormatter_FileError(t *testing.T) {
	var buf bytes.Buffer
	f := NewTAPFormatter(TAPWithWriter(&buf))
	f.FormatError(errors.New("bad.tl:1:14: expected string\nsnippet"))
	require.NoError(t, f.Flush(0))

	assert.Equal(t, "TAP version 13\n1..0\n# error: bad.tl:1:14: expected string\n# time 0.000s\n", buf.String())
}

func TestJSONFormatter_FileError(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))
	f.FormatError(errors.New("parsing file: bad.tl:1:1: unexpected"))
	require.NoError(t, f.Flush(0))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, []string{"parsing file: bad.tl:1:1: unexpected"}, out.Errors)
	assert.Empty(t, out.Tests)
}

func TestConsoleFormatter_VerboseBody(t *testing.T) {
	resp := &http.Response{
		StatusCode: 404,
		Headers:    nethttp.Header{"Content-Type": []string{"application/json"}},
		Body:       []byte(`{"error":"not found"}`),
	}
	result := &runner.RunResult{
		File:   "users.tl",
		Failed: 1,
		Results: []*runner.TestResult{{
			Name:     "missing",
			Response: resp,
			Assertions: []*assertions.Result{{
				Subject: "status", Operator: "equals", Expected: 200, Actual: 404,
			}},
		}},
	}

	var quiet, verbose bytes.Buffer
	NewConsoleFormatter(WithWriter(&quiet), WithNoColor(true)).FormatResult(result)
	NewConsoleFormatter(WithWriter(&verbose), WithNoColor(true), WithVerbose(true)).FormatResult(result)

	assert.NotContains(t, quiet.String(), "Response body:")
	assert.Contains(t, verbose.String(), "Response body:")
	assert.Contains(t, verbose.String(), `"error": "not found"`)
}
