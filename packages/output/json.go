package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/abdul-hamid-achik/testlang/packages/core/runner"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	RunID    string       `json:"runId"`
	Summary  JSONSummary  `json:"summary"`
	Tests    []JSONTest   `json:"tests"`
	Latency  *JSONLatency `json:"latency,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
	Duration float64      `json:"duration"`
	Time     string       `json:"time"`
}

type JSONSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// JSONLatency holds request latency percentiles in milliseconds
type JSONLatency struct {
	Requests int64   `json:"requests"`
	Errors   int64   `json:"errors"`
	P50      float64 `json:"p50"`
	P95      float64 `json:"p95"`
	P99      float64 `json:"p99"`
	Max      float64 `json:"max"`
}

type JSONTest struct {
	Name       string          `json:"name"`
	File       string          `json:"file"`
	Line       int             `json:"line,omitempty"`
	Passed     bool            `json:"passed"`
	Skipped    bool            `json:"skipped,omitempty"`
	SkipReason string          `json:"skipReason,omitempty"`
	Duration   float64         `json:"duration"`
	Error      string          `json:"error,omitempty"`
	Requests   []JSONExchange  `json:"requests,omitempty"`
	Assertions []JSONAssertion `json:"assertions,omitempty"`
}

// JSONExchange is one request of a test together with its response
type JSONExchange struct {
	Method     string            `json:"method"`
	URL        string            `json:"url"`
	Headers    map[string]string `json:"headers,omitempty"`
	StatusCode int               `json:"statusCode"`
	Duration   float64           `json:"duration"`
}

type JSONAssertion struct {
	Subject  string `json:"subject"`
	Operator string `json:"operator"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
	Passed   bool   `json:"passed"`
	Line     int    `json:"line,omitempty"`
	Message  string `json:"message,omitempty"`
}

// JSONFormatter formats test results as JSON
type JSONFormatter struct {
	writer  io.Writer
	runID   string
	results []JSONTest
	errors  []string
	latency *JSONLatency
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:  os.Stdout,
		runID:   uuid.NewString(),
		results: make([]JSONTest, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

// JSONWithRunID overrides the generated run identifier.
func JSONWithRunID(id string) JSONOption {
	return func(f *JSONFormatter) {
		f.runID = id
	}
}

// RunID returns the identifier written in the output.
func (f *JSONFormatter) RunID() string {
	return f.runID
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	for _, r := range result.Results {
		test := JSONTest{
			Name:     r.Name,
			File:     result.File,
			Line:     r.Line,
			Passed:   r.Passed,
			Skipped:  r.Skipped,
			Duration: float64(r.Duration.Milliseconds()),
		}

		if r.SkipReason != "" && r.SkipReason != "filtered out" {
			test.SkipReason = r.SkipReason
		}

		if r.Error != nil {
			test.Error = r.Error.Error()
		}

		for _, ex := range r.Exchanges {
			var headers map[string]string
			if len(ex.Request.Headers) > 0 {
				headers = make(map[string]string, len(ex.Request.Headers))
				for _, h := range ex.Request.Headers {
					headers[h.Name] = h.Value
				}
			}
			test.Requests = append(test.Requests, JSONExchange{
				Method:     ex.Request.Method,
				URL:        ex.Request.URL,
				Headers:    headers,
				StatusCode: ex.Response.StatusCode,
				Duration:   float64(ex.Duration.Milliseconds()),
			})
		}

		if len(r.Assertions) > 0 {
			test.Assertions = make([]JSONAssertion, len(r.Assertions))
			for i, a := range r.Assertions {
				test.Assertions[i] = JSONAssertion{
					Subject:  a.Subject,
					Operator: a.Operator,
					Expected: a.Expected,
					Actual:   a.Actual,
					Passed:   a.Passed,
					Line:     a.Line,
					Message:  a.Message,
				}
			}
		}

		f.results = append(f.results, test)
	}

	if m := result.Metrics; m != nil && m.TotalRequests > 0 {
		if f.latency == nil {
			f.latency = &JSONLatency{}
		}
		f.latency.Requests += m.TotalRequests
		f.latency.Errors += m.ErrorCount
		// percentiles of the slowest file win when several files are reported
		f.latency.P50 = maxMs(f.latency.P50, m.P50)
		f.latency.P95 = maxMs(f.latency.P95, m.P95)
		f.latency.P99 = maxMs(f.latency.P99, m.P99)
		f.latency.Max = maxMs(f.latency.Max, m.Max)
	}
}

func maxMs(cur float64, d time.Duration) float64 {
	ms := float64(d.Microseconds()) / 1000
	if ms > cur {
		return ms
	}
	return cur
}

// FormatError records a file that could not be run. Failures inside a
// test are reported on the test itself.
func (f *JSONFormatter) FormatError(err error) {
	f.errors = append(f.errors, err.Error())
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	var passed, failed, skipped int
	for _, t := range f.results {
		if t.Skipped {
			skipped++
		} else if t.Passed {
			passed++
		} else {
			failed++
		}
	}

	output := JSONOutput{
		RunID: f.runID,
		Summary: JSONSummary{
			Total:   len(f.results),
			Passed:  passed,
			Failed:  failed,
			Skipped: skipped,
		},
		Tests:    f.results,
		Latency:  f.latency,
		Errors:   f.errors,
		Duration: float64(totalDuration.Milliseconds()),
		Time:     time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
