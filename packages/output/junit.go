package output

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/testlang/packages/core/runner"
)

// JUnitReport is the <testsuites> document. Each source file becomes one
// suite and each test case a <testcase> named like its generated method.
type JUnitReport struct {
	XMLName   xml.Name     `xml:"testsuites"`
	Name      string       `xml:"name,attr,omitempty"`
	Tests     int          `xml:"tests,attr"`
	Failures  int          `xml:"failures,attr"`
	Errors    int          `xml:"errors,attr"`
	Skipped   int          `xml:"skipped,attr"`
	Time      float64      `xml:"time,attr"`
	Timestamp string       `xml:"timestamp,attr,omitempty"`
	Suites    []JUnitSuite `xml:"testsuite"`
}

type JUnitSuite struct {
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr,omitempty"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	Cases      []JUnitCase     `xml:"testcase"`
}

type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type JUnitCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitProblem `xml:"failure,omitempty"`
	Error     *JUnitProblem `xml:"error,omitempty"`
	Skipped   *JUnitSkip    `xml:"skipped,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

// JUnitProblem is the body of a <failure> or <error> element.
type JUnitProblem struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

type JUnitSkip struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitFormatter buffers suites and writes a single XML document on Flush.
type JUnitFormatter struct {
	writer io.Writer
	suites []JUnitSuite
}

type JUnitOption func(*JUnitFormatter)

func NewJUnitFormatter(opts ...JUnitOption) *JUnitFormatter {
	f := &JUnitFormatter{writer: os.Stdout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JUnitWithWriter(w io.Writer) JUnitOption {
	return func(f *JUnitFormatter) {
		f.writer = w
	}
}

// junitClassName turns a source path into a dotted class name:
// tests/users.tl becomes tests.users.
func junitClassName(file string) string {
	stem := strings.TrimSuffix(filepath.ToSlash(file), filepath.Ext(file))
	stem = strings.TrimPrefix(stem, "./")
	return strings.ReplaceAll(stem, "/", ".")
}

func (f *JUnitFormatter) FormatResult(result *runner.RunResult) {
	suite := JUnitSuite{
		Name:      result.File,
		Time:      result.Duration.Seconds(),
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if m := result.Metrics; m != nil && m.TotalRequests > 0 {
		suite.Properties = []JUnitProperty{
			{Name: "requests", Value: fmt.Sprint(m.TotalRequests)},
			{Name: "latency.p50", Value: m.P50.String()},
			{Name: "latency.p95", Value: m.P95.String()},
		}
	}

	className := junitClassName(result.File)
	for _, r := range result.Results {
		suite.Cases = append(suite.Cases, junitCase(className, r))
	}
	suite.tally()

	f.suites = append(f.suites, suite)
}

func junitCase(className string, r *runner.TestResult) JUnitCase {
	tc := JUnitCase{
		Name:      "test_" + r.Name,
		ClassName: className,
		Time:      r.Duration.Seconds(),
	}

	var out strings.Builder
	for _, ex := range r.Exchanges {
		fmt.Fprintf(&out, "%s %s -> %d (%dms)\n", ex.Request.Method, ex.Request.URL, ex.Response.StatusCode, ex.Duration.Milliseconds())
	}
	tc.SystemOut = out.String()

	switch {
	case r.Skipped:
		tc.Skipped = &JUnitSkip{Message: r.SkipReason}
	case r.Error != nil:
		kind := "IllegalStateException"
		var reqErr *runner.RequestError
		if errors.As(r.Error, &reqErr) {
			kind = "IOException"
		}
		tc.Error = &JUnitProblem{Message: r.Error.Error(), Type: kind}
	case !r.Passed:
		problem := &JUnitProblem{Type: "AssertionFailedError"}
		var lines strings.Builder
		for _, a := range r.Assertions {
			if a.Passed {
				continue
			}
			if problem.Message == "" {
				problem.Message = a.Message
			}
			fmt.Fprintf(&lines, "line %d: %s\n", a.Line, a.Message)
		}
		problem.Content = lines.String()
		tc.Failure = problem
	}
	return tc
}

// tally derives the suite counters from its cases.
func (s *JUnitSuite) tally() {
	s.Tests = len(s.Cases)
	s.Failures, s.Errors, s.Skipped = 0, 0, 0
	for _, c := range s.Cases {
		switch {
		case c.Skipped != nil:
			s.Skipped++
		case c.Error != nil:
			s.Errors++
		case c.Failure != nil:
			s.Failures++
		}
	}
}

// FormatError records a source file that could not be run as a suite
// holding a single errored case.
func (f *JUnitFormatter) FormatError(err error) {
	suite := JUnitSuite{
		Name:      "testlang",
		Timestamp: time.Now().Format(time.RFC3339),
		Cases: []JUnitCase{{
			Name:      "compile",
			ClassName: "testlang",
			Error:     &JUnitProblem{Message: firstLine(err.Error()), Type: "CompilationError", Content: err.Error()},
		}},
	}
	suite.tally()
	f.suites = append(f.suites, suite)
}

func (f *JUnitFormatter) FormatHeader(version string) {}

// Flush writes the accumulated JUnit XML output
func (f *JUnitFormatter) Flush(totalDuration time.Duration) error {
	report := JUnitReport{
		Name:      "testlang",
		Time:      totalDuration.Seconds(),
		Timestamp: time.Now().Format(time.RFC3339),
		Suites:    f.suites,
	}
	for _, s := range f.suites {
		report.Tests += s.Tests
		report.Failures += s.Failures
		report.Errors += s.Errors
		report.Skipped += s.Skipped
	}

	if _, err := io.WriteString(f.writer, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(f.writer)
	enc.Indent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding JUnit report: %w", err)
	}
	_, err := io.WriteString(f.writer, "\n")
	return err
}
