package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/abdul-hamid-achik/testlang/packages/assertions"
	"github.com/abdul-hamid-achik/testlang/packages/codegen"
	"github.com/abdul-hamid-achik/testlang/packages/core/compiler"
	"github.com/abdul-hamid-achik/testlang/packages/core/env"
	"github.com/abdul-hamid-achik/testlang/packages/http"
)

const (
	// DefaultConcurrency is the default number of concurrent tests in parallel mode
	DefaultConcurrency = 5
)

// WarnFunc receives non-fatal diagnostics produced while lowering a source file.
type WarnFunc func(format string, args ...any)

type Runner struct {
	config  *Config
	limiter *rate.Limiter
}

type Config struct {
	Verbose        bool
	Timeout        time.Duration
	ConnectTimeout time.Duration
	// FollowRedirect is off by default: generated tests assert on the 3xx
	// response itself.
	FollowRedirect bool
	Bail           bool
	NameFilter     string
	Parallel       bool
	Concurrency    int
	// Rate caps outgoing requests per second across every test. Zero disables it.
	Rate           float64
	DefaultBaseURL string
	Variables      []env.Binding
	WarnFunc       WarnFunc
}

func NewRunner(cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{}
	}

	r := &Runner{config: cfg}
	if cfg.Rate > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}
	return r
}

type RunResult struct {
	File     string
	Results  []*TestResult
	Duration time.Duration
	Passed   int
	Failed   int
	Skipped  int
	Metrics  *Summary
}

// HasNetworkErrors reports whether any test failed because a request
// could not be sent or its response could not be read.
func (r *RunResult) HasNetworkErrors() bool {
	for _, t := range r.Results {
		var reqErr *RequestError
		if errors.As(t.Error, &reqErr) {
			return true
		}
	}
	return false
}

type TestResult struct {
	Name       string
	Line       int
	Passed     bool
	Skipped    bool
	SkipReason string
	Duration   time.Duration
	Exchanges  []*Exchange
	// Response is the last response received; assertions run against it.
	Response   *http.Response
	Assertions []*assertions.Result
	Error      error
}

// Exchange is one request sent by a test and what came back.
type Exchange struct {
	Request  *http.Request
	Response *http.Response
	Duration time.Duration
}

// RequestError wraps a transport failure with the request that caused it.
type RequestError struct {
	Method string
	URL    string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// RunFile lowers the source at path and runs the resulting suite.
func (r *Runner) RunFile(ctx context.Context, path string) (*RunResult, error) {
	c := compiler.New(compiler.Options{
		DefaultBaseURL: r.config.DefaultBaseURL,
		Variables:      r.config.Variables,
	})

	suite, warnings, err := c.LowerFile(path)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}
	if r.config.WarnFunc != nil {
		for _, w := range warnings {
			r.config.WarnFunc("%s", w.String())
		}
	}

	return r.RunSuite(ctx, suite)
}

// RunSuite executes every test in suite. Requests inside a test run in
// order; tests themselves run concurrently when Parallel is set.
func (r *Runner) RunSuite(ctx context.Context, suite *codegen.Suite) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{File: suite.Source}
	metrics := NewMetrics()

	client := r.client(suite)

	var selected []*codegen.TestPlan
	for _, tp := range suite.Tests {
		if !matchesPattern(tp.Name, r.config.NameFilter) {
			result.Results = append(result.Results, &TestResult{
				Name:       tp.Name,
				Line:       tp.Line,
				Skipped:    true,
				SkipReason: "filtered out",
			})
			result.Skipped++
			continue
		}
		selected = append(selected, tp)
	}

	if r.config.Parallel {
		for _, tr := range r.runParallel(ctx, client, metrics, selected) {
			result.Results = append(result.Results, tr)
			result.count(tr)
		}
	} else {
		for _, tp := range selected {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			tr := r.runTest(ctx, client, metrics, tp)
			result.Results = append(result.Results, tr)
			result.count(tr)

			if !tr.Passed && r.config.Bail {
				break
			}
		}
	}

	result.Duration = time.Since(start)
	result.Metrics = metrics.Summary()
	return result, nil
}

func (res *RunResult) count(tr *TestResult) {
	switch {
	case tr.Skipped:
		res.Skipped++
	case tr.Passed:
		res.Passed++
	default:
		res.Failed++
	}
}

func (r *Runner) client(suite *codegen.Suite) *http.Client {
	opts := []http.ClientOption{
		http.WithDefaultHeaders(suite.DefaultHeaders),
		http.WithFollowRedirects(r.config.FollowRedirect),
	}
	if r.config.Timeout > 0 {
		opts = append(opts, http.WithTimeout(r.config.Timeout))
	}
	if r.config.ConnectTimeout > 0 {
		opts = append(opts, http.WithConnectTimeout(r.config.ConnectTimeout))
	}
	if r.limiter != nil {
		opts = append(opts, http.WithLimiter(r.limiter))
	}
	return http.NewClient(opts...)
}

func (r *Runner) runParallel(ctx context.Context, client *http.Client, metrics *Metrics, tests []*codegen.TestPlan) []*TestResult {
	concurrency := r.config.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]*TestResult, len(tests))
	var wg sync.WaitGroup
	var bailed atomic.Bool
	sem := make(chan struct{}, concurrency)

	for i, tp := range tests {
		wg.Add(1)
		sem <- struct{}{} // acquire semaphore

		go func(idx int, plan *codegen.TestPlan) {
			defer wg.Done()
			defer func() { <-sem }() // release semaphore

			if bailed.Load() {
				results[idx] = &TestResult{
					Name:       plan.Name,
					Line:       plan.Line,
					Skipped:    true,
					SkipReason: "bail after earlier failure",
				}
				return
			}

			tr := r.runTest(ctx, client, metrics, plan)
			if !tr.Passed && r.config.Bail {
				bailed.Store(true)
			}
			results[idx] = tr
		}(i, tp)
	}

	wg.Wait()
	return results
}

func (r *Runner) runTest(ctx context.Context, client *http.Client, metrics *Metrics, tp *codegen.TestPlan) *TestResult {
	result := &TestResult{
		Name: tp.Name,
		Line: tp.Line,
	}
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	if tp.MissingRequest {
		result.Error = errors.New("assertions without a preceding request")
		return result
	}

	for _, plan := range tp.Requests {
		req := http.FromPlan(plan)
		resp, err := client.Do(ctx, req)
		if err != nil {
			metrics.Record(0, err)
			result.Error = &RequestError{Method: req.Method, URL: req.URL, Err: err}
			return result
		}
		metrics.Record(resp.Duration, nil)

		result.Exchanges = append(result.Exchanges, &Exchange{
			Request:  req,
			Response: resp,
			Duration: resp.Duration,
		})
		result.Response = resp
	}

	if result.Response != nil && len(tp.Assertions) > 0 {
		result.Assertions = assertions.NewEvaluator(result.Response).EvaluateAll(tp.Assertions)
	}
	result.Passed = assertions.AllPassed(result.Assertions)
	return result
}

// matchesPattern supports exact names and a leading or trailing '*'.
func matchesPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	prefix := strings.HasPrefix(pattern, "*")
	suffix := len(pattern) > 1 && strings.HasSuffix(pattern, "*")
	core := strings.TrimSuffix(strings.TrimPrefix(pattern, "*"), "*")

	switch {
	case prefix && suffix:
		return strings.Contains(name, core)
	case prefix:
		return strings.HasSuffix(name, core)
	case suffix:
		return strings.HasPrefix(name, core)
	}
	return name == pattern
}
