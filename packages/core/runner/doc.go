// Package runner executes lowered testlang suites against live servers.
//
// Each test sends its requests in order and checks its assertions against
// the last response. Tests run sequentially by default, or concurrently
// with a bounded semaphore when Parallel is set. A shared token-bucket
// limiter can cap the request rate across every test, and per-run latency
// percentiles are collected in an HDR histogram.
package runner
